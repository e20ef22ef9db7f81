package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/redis/go-redis/v9"

	"rate-comparison/models"
)

const (
	// SnapshotKey is the single key the wizard state lives under.
	SnapshotKey = "rca_wizard_state"
	// SchemaVersion is bumped whenever WizardState changes incompatibly.
	SchemaVersion = "1.0"
)

// Snapshot is a versioned capture of the wizard state.
type Snapshot struct {
	Version    string             `json:"version"`
	CapturedAt time.Time          `json:"captured_at"`
	State      models.WizardState `json:"state"`
}

// NewSnapshot stamps state with the current schema version.
func NewSnapshot(state models.WizardState, at time.Time) *Snapshot {
	return &Snapshot{Version: SchemaVersion, CapturedAt: at.UTC(), State: state}
}

// EncodeSnapshot serialises a snapshot to JSON.
func EncodeSnapshot(s *Snapshot) ([]byte, error) {
	b, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("snapshot: encode: %w", err)
	}
	return b, nil
}

// DecodeSnapshot parses a snapshot, returning ErrSnapshotNotFound when it
// was written under another schema version.
func DecodeSnapshot(b []byte) (*Snapshot, error) {
	var s Snapshot
	if err := json.Unmarshal(b, &s); err != nil {
		return nil, fmt.Errorf("snapshot: decode: %w", err)
	}
	if s.Version != SchemaVersion {
		return nil, fmt.Errorf("snapshot: version %q, want %q: %w", s.Version, SchemaVersion, ErrSnapshotNotFound)
	}
	return &s, nil
}

// RedisSnapshotStore keeps the snapshot in Redis.
type RedisSnapshotStore struct {
	rdb *redis.Client
	key string
	ttl time.Duration
	now func() time.Time
}

// NewRedisSnapshotStore connects to Redis. A zero ttl keeps the snapshot
// until cleared.
func NewRedisSnapshotStore(addr, password string, db int, ttl time.Duration) *RedisSnapshotStore {
	rdb := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
	return &RedisSnapshotStore{rdb: rdb, key: SnapshotKey, ttl: ttl, now: time.Now}
}

func (r *RedisSnapshotStore) Ping(ctx context.Context) error {
	return r.rdb.Ping(ctx).Err()
}

func (r *RedisSnapshotStore) Save(ctx context.Context, state models.WizardState) (*Snapshot, error) {
	snap := NewSnapshot(state, r.now())
	b, err := EncodeSnapshot(snap)
	if err != nil {
		return nil, err
	}
	if err := r.rdb.Set(ctx, r.key, b, r.ttl).Err(); err != nil {
		return nil, fmt.Errorf("snapshot: redis set: %w", err)
	}
	return snap, nil
}

func (r *RedisSnapshotStore) Load(ctx context.Context) (*Snapshot, error) {
	b, err := r.rdb.Get(ctx, r.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSnapshotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("snapshot: redis get: %w", err)
	}
	return DecodeSnapshot(b)
}

func (r *RedisSnapshotStore) Clear(ctx context.Context) error {
	if err := r.rdb.Del(ctx, r.key).Err(); err != nil {
		return fmt.Errorf("snapshot: redis del: %w", err)
	}
	return nil
}

func (r *RedisSnapshotStore) Close() error {
	return r.rdb.Close()
}

// FileSnapshotStore keeps the snapshot in a JSON file, for runs without Redis.
type FileSnapshotStore struct {
	path string
	now  func() time.Time
}

func NewFileSnapshotStore(path string) *FileSnapshotStore {
	return &FileSnapshotStore{path: path, now: time.Now}
}

func (f *FileSnapshotStore) Save(_ context.Context, state models.WizardState) (*Snapshot, error) {
	snap := NewSnapshot(state, f.now())
	b, err := EncodeSnapshot(snap)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(f.path), 0755); err != nil {
		return nil, fmt.Errorf("snapshot: create dir: %w", err)
	}
	if err := os.WriteFile(f.path, b, 0644); err != nil {
		return nil, fmt.Errorf("snapshot: write %q: %w", f.path, err)
	}
	return snap, nil
}

func (f *FileSnapshotStore) Load(_ context.Context) (*Snapshot, error) {
	b, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrSnapshotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("snapshot: read %q: %w", f.path, err)
	}
	return DecodeSnapshot(b)
}

func (f *FileSnapshotStore) Clear(_ context.Context) error {
	if err := os.Remove(f.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("snapshot: remove %q: %w", f.path, err)
	}
	return nil
}
