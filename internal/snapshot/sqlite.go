package snapshot

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	_ "modernc.org/sqlite"

	"github.com/VorpalBlade/smartmirror/internal/document"
	"github.com/VorpalBlade/smartmirror/internal/typeid"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS sketch_snapshots (
	id         TEXT PRIMARY KEY,
	sketch_id  TEXT NOT NULL,
	version    INTEGER NOT NULL,
	document   TEXT NOT NULL,
	created_at TEXT NOT NULL,
	UNIQUE (sketch_id, version)
)`

type SQLiteRepository struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the SQLite database at dsn and migrates it.
func OpenSQLite(ctx context.Context, dsn string) (*SQLiteRepository, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// a single connection keeps :memory: databases alive and serialises writers
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create snapshot table: %w", err)
	}

	slog.Info("sqlite snapshot store ready", "dsn", dsn)
	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Save(ctx context.Context, sketchID string, sk *document.Sketch) (int, error) {
	docJSON, err := json.Marshal(sk)
	if err != nil {
		return 0, fmt.Errorf("marshal sketch: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	var current int
	err = tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(version), 0) FROM sketch_snapshots WHERE sketch_id = ?`, sketchID,
	).Scan(&current)
	if err != nil {
		return 0, fmt.Errorf("read current version: %w", err)
	}

	next := current + 1
	_, err = tx.ExecContext(ctx,
		`INSERT INTO sketch_snapshots (id, sketch_id, version, document, created_at) VALUES (?, ?, ?, ?, ?)`,
		typeid.NewSnapshotID(), sketchID, next, string(docJSON), time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return 0, fmt.Errorf("insert snapshot: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return next, nil
}

func (r *SQLiteRepository) Latest(ctx context.Context, sketchID string) (*Snapshot, error) {
	var (
		snap      Snapshot
		docJSON   string
		createdAt string
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT id, sketch_id, version, document, created_at FROM sketch_snapshots
		 WHERE sketch_id = ? ORDER BY version DESC LIMIT 1`, sketchID,
	).Scan(&snap.ID, &snap.SketchID, &snap.Version, &docJSON, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query latest snapshot: %w", err)
	}

	if err := json.Unmarshal([]byte(docJSON), &snap.Sketch); err != nil {
		return nil, fmt.Errorf("unmarshal sketch: %w", err)
	}
	if snap.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	return &snap, nil
}

func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}
