package services

import (
	"context"

	"rate-comparison/models"
)

// ObservationSource supplies rate observations for a set of stores. An
// empty storeIDs asks for everything the source has.
type ObservationSource interface {
	Observations(ctx context.Context, storeIDs []string) ([]models.RateObservation, error)
}

// SourceFunc adapts a fetch function to ObservationSource.
type SourceFunc func(ctx context.Context, storeIDs []string) ([]models.RateObservation, error)

func (f SourceFunc) Observations(ctx context.Context, storeIDs []string) ([]models.RateObservation, error) {
	return f(ctx, storeIDs)
}

// StoreSearcher finds facilities near a free-text location for the wizard's
// search step.
type StoreSearcher interface {
	SearchStores(ctx context.Context, query string, radiusMiles float64) ([]models.Store, error)
}
