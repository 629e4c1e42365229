// Package history keeps an append-only SQLite record of import runs and the
// folders each run created. Nothing reads it back to make import decisions.
package history

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

type DB struct {
	db *sql.DB
}

// Open opens or creates the database at path and applies the schema
func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	instance := &DB{db: db}
	if err := instance.Migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}

	return instance, nil
}

func (d *DB) Close() error {
	if d == nil || d.db == nil {
		return nil
	}
	return d.db.Close()
}

func (d *DB) Migrate(ctx context.Context) error {
	_, err := d.db.ExecContext(ctx, schemaSQL)
	return err
}

const schemaSQL = `
CREATE TABLE IF NOT EXISTS import_runs (
	id TEXT PRIMARY KEY,
	data_dir TEXT NOT NULL,
	galaxy_url TEXT NOT NULL,
	library_name TEXT NOT NULL,
	library_id TEXT,
	deleted_libraries TEXT,
	status TEXT NOT NULL,
	error TEXT,
	started_at INTEGER NOT NULL,
	finished_at INTEGER
);

CREATE TABLE IF NOT EXISTS import_folders (
	run_id TEXT NOT NULL,
	path TEXT NOT NULL,
	folder_id TEXT NOT NULL,
	file_count INTEGER NOT NULL,
	created_at INTEGER NOT NULL,
	PRIMARY KEY (run_id, path),
	FOREIGN KEY (run_id) REFERENCES import_runs(id)
);

CREATE INDEX IF NOT EXISTS idx_import_runs_started ON import_runs(started_at);
`
