package library

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

var ErrWatchedFolderNotFound = errors.New("watched folder not found")

// WatchedFolder is a library folder scheduled for rescans, both on demand and
// through the filesystem watcher.
type WatchedFolder struct {
	ID        int64  `json:"id"`
	Path      string `json:"path"`
	Enabled   bool   `json:"enabled"`
	CreatedAt string `json:"createdAt"`
}

type WatchedFolderRepository struct {
	db *sql.DB
}

func NewWatchedFolderRepository(database *sql.DB) *WatchedFolderRepository {
	return &WatchedFolderRepository{db: database}
}

func (r *WatchedFolderRepository) List(ctx context.Context) ([]WatchedFolder, error) {
	rows, err := r.db.QueryContext(
		ctx,
		"SELECT id, path, enabled, created_at FROM watched_folders ORDER BY path COLLATE NOCASE",
	)
	if err != nil {
		return nil, fmt.Errorf("list watched folders: %w", err)
	}
	defer rows.Close()

	folders := make([]WatchedFolder, 0)
	for rows.Next() {
		var folder WatchedFolder
		var enabledInt int
		if err := rows.Scan(&folder.ID, &folder.Path, &enabledInt, &folder.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan watched folder row: %w", err)
		}
		folder.Enabled = enabledInt == 1
		folders = append(folders, folder)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate watched folder rows: %w", err)
	}

	return folders, nil
}

// ListEnabled returns only the folders eligible for rescans.
func (r *WatchedFolderRepository) ListEnabled(ctx context.Context) ([]WatchedFolder, error) {
	folders, err := r.List(ctx)
	if err != nil {
		return nil, err
	}

	enabled := make([]WatchedFolder, 0, len(folders))
	for _, folder := range folders {
		if folder.Enabled {
			enabled = append(enabled, folder)
		}
	}

	return enabled, nil
}

func (r *WatchedFolderRepository) Add(ctx context.Context, path string) (WatchedFolder, error) {
	if strings.TrimSpace(path) == "" {
		return WatchedFolder{}, errors.New("path is required")
	}

	result, err := r.db.ExecContext(
		ctx,
		"INSERT INTO watched_folders(path, enabled) VALUES (?, 1)",
		path,
	)
	if err != nil {
		return WatchedFolder{}, fmt.Errorf("insert watched folder: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return WatchedFolder{}, fmt.Errorf("read watched folder id: %w", err)
	}

	return r.GetByID(ctx, id)
}

func (r *WatchedFolderRepository) GetByID(ctx context.Context, id int64) (WatchedFolder, error) {
	var folder WatchedFolder
	var enabledInt int
	err := r.db.QueryRowContext(
		ctx,
		"SELECT id, path, enabled, created_at FROM watched_folders WHERE id = ?",
		id,
	).Scan(&folder.ID, &folder.Path, &enabledInt, &folder.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return WatchedFolder{}, ErrWatchedFolderNotFound
		}
		return WatchedFolder{}, fmt.Errorf("get watched folder %d: %w", id, err)
	}

	folder.Enabled = enabledInt == 1
	return folder, nil
}

func (r *WatchedFolderRepository) SetEnabled(ctx context.Context, id int64, enabled bool) error {
	enabledInt := 0
	if enabled {
		enabledInt = 1
	}

	result, err := r.db.ExecContext(
		ctx,
		"UPDATE watched_folders SET enabled = ? WHERE id = ?",
		enabledInt,
		id,
	)
	if err != nil {
		return fmt.Errorf("update watched folder %d: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("read updated watched folder count: %w", err)
	}
	if rowsAffected == 0 {
		return ErrWatchedFolderNotFound
	}

	return nil
}

func (r *WatchedFolderRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM watched_folders WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete watched folder %d: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("read deleted watched folder count: %w", err)
	}
	if rowsAffected == 0 {
		return ErrWatchedFolderNotFound
	}

	return nil
}
