package storage

import (
	"context"
	"errors"

	"rate-comparison/models"
)

// ErrSnapshotNotFound is returned when no snapshot exists or the stored one
// was written under a different schema version.
var ErrSnapshotNotFound = errors.New("storage: snapshot not found")

// ObservationStore is the interface any rate observation backend must satisfy.
type ObservationStore interface {
	SaveStores(ctx context.Context, stores []models.Store) error
	SaveObservations(ctx context.Context, obs []models.RateObservation) error
	FetchObservations(ctx context.Context, storeIDs []string) ([]models.RateObservation, error)
	Close() error
}

// SnapshotStore persists the wizard state under a single fixed key.
type SnapshotStore interface {
	Save(ctx context.Context, state models.WizardState) (*Snapshot, error)
	Load(ctx context.Context) (*Snapshot, error)
	Clear(ctx context.Context) error
}

var (
	_ ObservationStore = (*PostgresStore)(nil)
	_ SnapshotStore    = (*RedisSnapshotStore)(nil)
	_ SnapshotStore    = (*FileSnapshotStore)(nil)
)
