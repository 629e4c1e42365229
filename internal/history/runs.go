package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"
)

// StartRun inserts run with status running
func (d *DB) StartRun(ctx context.Context, run Run) error {
	if d == nil {
		return nil
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now()
	}
	_, err := d.db.ExecContext(ctx, `
		INSERT INTO import_runs (id, data_dir, galaxy_url, library_name, status, started_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, run.ID, run.DataDir, run.GalaxyURL, run.LibraryName, StatusRunning, run.StartedAt.UnixMilli())
	return err
}

// SetLibrary records the library a run created and the ones it deleted
func (d *DB) SetLibrary(ctx context.Context, runID, libraryID string, deleted []string) error {
	if d == nil {
		return nil
	}
	encoded, err := json.Marshal(deleted)
	if err != nil {
		return err
	}
	_, err = d.db.ExecContext(ctx, `
		UPDATE import_runs SET library_id = ?, deleted_libraries = ? WHERE id = ?
	`, libraryID, string(encoded), runID)
	return err
}

// RecordFolder stores a created folder
func (d *DB) RecordFolder(ctx context.Context, folder Folder) error {
	if d == nil {
		return nil
	}
	if folder.CreatedAt.IsZero() {
		folder.CreatedAt = time.Now()
	}
	_, err := d.db.ExecContext(ctx, `
		INSERT INTO import_folders (run_id, path, folder_id, file_count, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(run_id, path) DO UPDATE SET
			folder_id=excluded.folder_id,
			file_count=excluded.file_count,
			created_at=excluded.created_at
	`, folder.RunID, folder.Path, folder.FolderID, folder.FileCount, folder.CreatedAt.UnixMilli())
	return err
}

// FinishRun marks a run succeeded, or failed with runErr
func (d *DB) FinishRun(ctx context.Context, runID string, runErr error) error {
	if d == nil {
		return nil
	}
	status := StatusSucceeded
	var message sql.NullString
	if runErr != nil {
		status = StatusFailed
		message = sql.NullString{String: runErr.Error(), Valid: true}
	}
	_, err := d.db.ExecContext(ctx, `
		UPDATE import_runs SET status = ?, error = ?, finished_at = ? WHERE id = ?
	`, status, message, time.Now().UnixMilli(), runID)
	return err
}

// ListRuns returns the most recent runs first, at most limit of them
func (d *DB) ListRuns(ctx context.Context, limit int) (runs []Run, err error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := d.db.QueryContext(ctx, `
		SELECT id, data_dir, galaxy_url, library_name, library_id, deleted_libraries, status, error, started_at, finished_at
		FROM import_runs ORDER BY started_at DESC, id LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	for rows.Next() {
		var run Run
		var libraryID, deleted, message sql.NullString
		var started int64
		var finished sql.NullInt64
		if err := rows.Scan(&run.ID, &run.DataDir, &run.GalaxyURL, &run.LibraryName, &libraryID, &deleted,
			&run.Status, &message, &started, &finished); err != nil {
			return nil, err
		}
		run.LibraryID = libraryID.String
		run.Error = message.String
		run.StartedAt = time.UnixMilli(started)
		if finished.Valid {
			run.FinishedAt = time.UnixMilli(finished.Int64)
		}
		if deleted.String != "" {
			if err := json.Unmarshal([]byte(deleted.String), &run.DeletedLibraries); err != nil {
				return nil, err
			}
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return runs, nil
}

// ListFolders returns the folders recorded for runID in path order
func (d *DB) ListFolders(ctx context.Context, runID string) (folders []Folder, err error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT run_id, path, folder_id, file_count, created_at
		FROM import_folders WHERE run_id = ? ORDER BY path
	`, runID)
	if err != nil {
		return nil, err
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	for rows.Next() {
		var f Folder
		var created int64
		if err := rows.Scan(&f.RunID, &f.Path, &f.FolderID, &f.FileCount, &created); err != nil {
			return nil, err
		}
		f.CreatedAt = time.UnixMilli(created)
		folders = append(folders, f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return folders, nil
}
