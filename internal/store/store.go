package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"truckspec/internal/catalog"
	"truckspec/internal/worker"
)

// DB is the subset of *pgxpool.Pool the store needs.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

var _ DB = (*pgxpool.Pool)(nil)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS truck_models (
	brand TEXT NOT NULL,
	model TEXT NOT NULL,
	PRIMARY KEY (brand, model)
);
CREATE TABLE IF NOT EXISTS truck_engines (
	code        TEXT PRIMARY KEY,
	brand       TEXT NOT NULL,
	model       TEXT NOT NULL,
	name        TEXT NOT NULL,
	rated_power TEXT NOT NULL,
	torque      TEXT NOT NULL,
	rpm_limit   TEXT NOT NULL DEFAULT '',
	FOREIGN KEY (brand, model) REFERENCES truck_models (brand, model) ON DELETE CASCADE
);
CREATE TABLE IF NOT EXISTS truck_transmissions (
	code     TEXT PRIMARY KEY,
	brand    TEXT NOT NULL,
	model    TEXT NOT NULL,
	name     TEXT NOT NULL,
	speeds   INTEGER NOT NULL,
	retarder BOOLEAN NOT NULL,
	ratio    TEXT NOT NULL,
	FOREIGN KEY (brand, model) REFERENCES truck_models (brand, model) ON DELETE CASCADE
);`

const (
	upsertModelSQL = `INSERT INTO truck_models (brand, model) VALUES ($1, $2)
ON CONFLICT (brand, model) DO NOTHING`

	upsertEngineSQL = `INSERT INTO truck_engines (code, brand, model, name, rated_power, torque, rpm_limit)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (code) DO UPDATE SET
	brand = EXCLUDED.brand, model = EXCLUDED.model, name = EXCLUDED.name,
	rated_power = EXCLUDED.rated_power, torque = EXCLUDED.torque, rpm_limit = EXCLUDED.rpm_limit`

	upsertTransmissionSQL = `INSERT INTO truck_transmissions (code, brand, model, name, speeds, retarder, ratio)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (code) DO UPDATE SET
	brand = EXCLUDED.brand, model = EXCLUDED.model, name = EXCLUDED.name,
	speeds = EXCLUDED.speeds, retarder = EXCLUDED.retarder, ratio = EXCLUDED.ratio`
)

// CatalogStore persists a catalogue in PostgreSQL.
type CatalogStore struct {
	db        DB
	batchSize int
}

// NewCatalogStore creates a store sending at most batchSize models per batch.
func NewCatalogStore(db DB, batchSize int) *CatalogStore {
	if batchSize < 1 {
		batchSize = 1
	}
	return &CatalogStore{db: db, batchSize: batchSize}
}

// Connect opens and pings a pool for databaseURL.
func Connect(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect PostgreSQL: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping PostgreSQL: %w", err)
	}
	log.Info().Msg("Connected to PostgreSQL")
	return pool, nil
}

// EnsureSchema creates the catalogue tables.
func (s *CatalogStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create catalogue tables: %w", err)
	}
	return nil
}

// Publish upserts every model and component of doc. Rows are keyed by code,
// so publishing the same tree twice is idempotent.
func (s *CatalogStore) Publish(ctx context.Context, doc catalog.Document) (int, error) {
	var entries []catalog.ModelEntry
	for _, brand := range doc.Brands() {
		entries = append(entries, doc[brand]...)
	}

	rows := 0
	for _, chunk := range worker.Batch(entries, s.batchSize) {
		batch := buildBatch(chunk)
		if err := s.db.SendBatch(ctx, batch).Close(); err != nil {
			return rows, fmt.Errorf("upsert catalogue batch: %w", err)
		}
		rows += batch.Len()
	}

	log.Info().Int("models", len(entries)).Int("rows", rows).Msg("Published catalogue to PostgreSQL")
	return rows, nil
}

func buildBatch(entries []catalog.ModelEntry) *pgx.Batch {
	batch := &pgx.Batch{}
	for _, m := range entries {
		batch.Queue(upsertModelSQL, m.Brand, m.Model)
		for _, e := range m.Engines {
			batch.Queue(upsertEngineSQL, e.Code, m.Brand, m.Model, e.Name, e.RatedPower, e.Torque, e.RPMLimit)
		}
		for _, t := range m.Transmissions {
			batch.Queue(upsertTransmissionSQL, t.Code, m.Brand, m.Model, t.Name, t.Speeds, t.Retarder, t.Ratio)
		}
	}
	return batch
}
