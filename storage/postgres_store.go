package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"rate-comparison/models"
)

// PostgresStore persists stores and rate observations to PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore opens a connection to PostgreSQL, runs schema migrations,
// and returns a ready-to-use PostgresStore.
func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	for i := 0; i < 10; i++ {
		if err = db.PingContext(ctx); err == nil {
			break
		}
		select {
		case <-ctx.Done():
			_ = db.Close()
			return nil, fmt.Errorf("postgres: ping: %w", ctx.Err())
		case <-time.After(2 * time.Second):
		}
	}
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: ping failed after retries: %w", err)
	}

	ps := &PostgresStore{db: db}
	if err := ps.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}

	return ps, nil
}

func (ps *PostgresStore) migrate(ctx context.Context) error {
	_, err := ps.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS stores (
			id         TEXT PRIMARY KEY,
			name       TEXT         NOT NULL DEFAULT '',
			address    TEXT         NOT NULL DEFAULT '',
			distance   NUMERIC(8,2) NOT NULL DEFAULT 0,
			rates_url  TEXT         NOT NULL DEFAULT '',
			updated_at TIMESTAMPTZ  NOT NULL DEFAULT NOW()
		);

		CREATE TABLE IF NOT EXISTS rate_observations (
			id          SERIAL PRIMARY KEY,
			store_id    TEXT          NOT NULL,
			unit_size   TEXT          NOT NULL,
			drive_up    BOOLEAN       NOT NULL DEFAULT FALSE,
			elevator    BOOLEAN       NOT NULL DEFAULT FALSE,
			outdoor     BOOLEAN       NOT NULL DEFAULT FALSE,
			climate     BOOLEAN       NOT NULL DEFAULT FALSE,
			humidity    BOOLEAN       NOT NULL DEFAULT FALSE,
			observed_at TIMESTAMPTZ   NOT NULL,
			asking      NUMERIC(10,2),
			in_store    NUMERIC(10,2),
			created_at  TIMESTAMPTZ   NOT NULL DEFAULT NOW()
		);

		CREATE INDEX IF NOT EXISTS idx_rate_obs_store    ON rate_observations(store_id);
		CREATE INDEX IF NOT EXISTS idx_rate_obs_observed ON rate_observations(observed_at);
	`)
	return err
}

// SaveStores upserts store records.
func (ps *PostgresStore) SaveStores(ctx context.Context, stores []models.Store) error {
	for _, s := range stores {
		_, err := ps.db.ExecContext(ctx, `
			INSERT INTO stores (id, name, address, distance, rates_url)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (id) DO UPDATE
			SET name = EXCLUDED.name, address = EXCLUDED.address,
			    distance = EXCLUDED.distance, rates_url = EXCLUDED.rates_url, updated_at = NOW()
		`, s.ID, s.Name, s.Address, s.Distance, s.RatesURL)
		if err != nil {
			return fmt.Errorf("postgres: save store %s: %w", s.ID, err)
		}
	}
	return nil
}

// SaveObservations replaces the stored observations of every store present
// in obs, then batch-inserts them.
func (ps *PostgresStore) SaveObservations(ctx context.Context, obs []models.RateObservation) error {
	if len(obs) == 0 {
		return nil
	}

	seen := make(map[string]struct{})
	var storeIDs []string
	for _, o := range obs {
		if _, ok := seen[o.StoreID]; !ok {
			seen[o.StoreID] = struct{}{}
			storeIDs = append(storeIDs, o.StoreID)
		}
	}

	tx, err := ps.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("postgres: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM rate_observations WHERE store_id = ANY($1)`, pq.Array(storeIDs)); err != nil {
		return fmt.Errorf("postgres: clear observations: %w", err)
	}

	const batchSize = 50
	for i := 0; i < len(obs); i += batchSize {
		end := i + batchSize
		if end > len(obs) {
			end = len(obs)
		}
		if err := insertBatch(ctx, tx, obs[i:end]); err != nil {
			return fmt.Errorf("postgres: insert observations: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("postgres: commit: %w", err)
	}
	return nil
}

const observationColumns = 10

func insertBatch(ctx context.Context, tx *sql.Tx, batch []models.RateObservation) error {
	valueStrings := make([]string, 0, len(batch))
	valueArgs := make([]interface{}, 0, len(batch)*observationColumns)

	for idx, o := range batch {
		base := idx * observationColumns
		placeholders := make([]string, observationColumns)
		for c := range placeholders {
			placeholders[c] = fmt.Sprintf("$%d", base+c+1)
		}
		valueStrings = append(valueStrings, "("+strings.Join(placeholders, ",")+")")
		valueArgs = append(valueArgs,
			o.StoreID, o.Size, o.DriveUp, o.Elevator, o.Outdoor,
			o.Climate, o.Humidity, o.Date, nullFloat(o.Asking), nullFloat(o.InStore))
	}

	query := fmt.Sprintf(`
		INSERT INTO rate_observations
			(store_id, unit_size, drive_up, elevator, outdoor, climate, humidity, observed_at, asking, in_store)
		VALUES %s
	`, strings.Join(valueStrings, ","))

	_, err := tx.ExecContext(ctx, query, valueArgs...)
	return err
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

// FetchObservations retrieves the observations of the given stores, or of
// every store when storeIDs is empty.
func (ps *PostgresStore) FetchObservations(ctx context.Context, storeIDs []string) ([]models.RateObservation, error) {
	query := `
		SELECT id, store_id, unit_size, drive_up, elevator, outdoor, climate, humidity, observed_at, asking, in_store
		FROM rate_observations`
	var args []interface{}
	if len(storeIDs) > 0 {
		query += ` WHERE store_id = ANY($1)`
		args = append(args, pq.Array(storeIDs))
	}
	query += ` ORDER BY id`

	rows, err := ps.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: fetch observations: %w", err)
	}
	defer rows.Close()

	var out []models.RateObservation
	for rows.Next() {
		var o models.RateObservation
		var asking, inStore sql.NullFloat64
		if err := rows.Scan(
			&o.ID, &o.StoreID, &o.Size, &o.DriveUp, &o.Elevator, &o.Outdoor,
			&o.Climate, &o.Humidity, &o.Date, &asking, &inStore,
		); err != nil {
			return nil, fmt.Errorf("postgres: scan row: %w", err)
		}
		o.Asking = floatPtr(asking)
		o.InStore = floatPtr(inStore)
		out = append(out, o)
	}
	return out, rows.Err()
}

func floatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

func (ps *PostgresStore) Close() error {
	return ps.db.Close()
}
