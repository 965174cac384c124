package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/VorpalBlade/smartmirror/internal/document"
	"github.com/VorpalBlade/smartmirror/internal/typeid"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS sketch_snapshots (
	id         TEXT PRIMARY KEY,
	sketch_id  TEXT NOT NULL,
	version    INTEGER NOT NULL,
	document   JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE (sketch_id, version)
)`

type PostgresRepository struct {
	pool *pgxpool.Pool
}

// OpenPostgres connects to the database at url and migrates it.
func OpenPostgres(ctx context.Context, url string) (*PostgresRepository, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("create snapshot table: %w", err)
	}

	slog.Info("postgres snapshot store ready")
	return &PostgresRepository{pool: pool}, nil
}

func (r *PostgresRepository) Save(ctx context.Context, sketchID string, sk *document.Sketch) (int, error) {
	docJSON, err := json.Marshal(sk)
	if err != nil {
		return 0, fmt.Errorf("marshal sketch: %w", err)
	}

	var version int
	err = pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		// serialise concurrent saves of the same sketch
		if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, sketchID); err != nil {
			return fmt.Errorf("lock sketch: %w", err)
		}
		if err := tx.QueryRow(ctx,
			`SELECT COALESCE(MAX(version), 0) + 1 FROM sketch_snapshots WHERE sketch_id = $1`, sketchID,
		).Scan(&version); err != nil {
			return fmt.Errorf("read current version: %w", err)
		}
		_, err := tx.Exec(ctx,
			`INSERT INTO sketch_snapshots (id, sketch_id, version, document) VALUES ($1, $2, $3, $4)`,
			typeid.NewSnapshotID(), sketchID, version, docJSON,
		)
		if err != nil {
			return fmt.Errorf("insert snapshot: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return version, nil
}

func (r *PostgresRepository) Latest(ctx context.Context, sketchID string) (*Snapshot, error) {
	var (
		snap    Snapshot
		docJSON []byte
	)
	err := r.pool.QueryRow(ctx,
		`SELECT id, sketch_id, version, document, created_at FROM sketch_snapshots
		 WHERE sketch_id = $1 ORDER BY version DESC LIMIT 1`, sketchID,
	).Scan(&snap.ID, &snap.SketchID, &snap.Version, &docJSON, &snap.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("query latest snapshot: %w", err)
	}

	if err := json.Unmarshal(docJSON, &snap.Sketch); err != nil {
		return nil, fmt.Errorf("unmarshal sketch: %w", err)
	}
	return &snap, nil
}

func (r *PostgresRepository) Close() error {
	r.pool.Close()
	return nil
}
