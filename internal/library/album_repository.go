package library

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

type AlbumRepository struct {
	db *sql.DB
}

func NewAlbumRepository(database *sql.DB) *AlbumRepository {
	return &AlbumRepository{db: database}
}

// Get returns the stored album, or nil when no record exists for the id.
func (r *AlbumRepository) Get(ctx context.Context, id string) (*Album, error) {
	var data string
	err := r.db.QueryRowContext(ctx, "SELECT data FROM albums WHERE id = ?", id).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get album %s: %w", id, err)
	}

	var album Album
	if err := json.Unmarshal([]byte(data), &album); err != nil {
		return nil, fmt.Errorf("decode album %s: %w", id, err)
	}

	return &album, nil
}

// Put upserts a single album document.
func (r *AlbumRepository) Put(ctx context.Context, album Album) error {
	if strings.TrimSpace(album.ID) == "" {
		return errors.New("album id is required")
	}

	data, err := json.Marshal(album)
	if err != nil {
		return fmt.Errorf("encode album %s: %w", album.ID, err)
	}

	if _, err := r.db.ExecContext(
		ctx,
		upsertAlbumSQL,
		album.ID,
		album.Artist,
		album.Title,
		string(data),
		time.Now().UTC().Format(time.RFC3339),
	); err != nil {
		return fmt.Errorf("put album %s: %w", album.ID, err)
	}

	return nil
}

// BulkPut writes every album in one transaction. This is the aggregation
// batch write: at most one write per distinct album per import run.
func (r *AlbumRepository) BulkPut(ctx context.Context, albums []Album) error {
	if len(albums) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin album bulk put: %w", err)
	}

	now := time.Now().UTC().Format(time.RFC3339)
	for _, album := range albums {
		if strings.TrimSpace(album.ID) == "" {
			tx.Rollback()
			return errors.New("album id is required")
		}

		data, err := json.Marshal(album)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("encode album %s: %w", album.ID, err)
		}

		if _, err := tx.ExecContext(
			ctx,
			upsertAlbumSQL,
			album.ID,
			album.Artist,
			album.Title,
			string(data),
			now,
		); err != nil {
			tx.Rollback()
			return fmt.Errorf("put album %s: %w", album.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit album bulk put: %w", err)
	}

	return nil
}

// All returns every stored album, unordered.
func (r *AlbumRepository) All(ctx context.Context) ([]Album, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT data FROM albums")
	if err != nil {
		return nil, fmt.Errorf("list albums: %w", err)
	}
	defer rows.Close()

	albums := make([]Album, 0)
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("scan album row: %w", err)
		}

		var album Album
		if err := json.Unmarshal([]byte(data), &album); err != nil {
			return nil, fmt.Errorf("decode album row: %w", err)
		}
		albums = append(albums, album)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate album rows: %w", err)
	}

	return albums, nil
}

const upsertAlbumSQL = `INSERT INTO albums(id, artist, title, data, updated_at)
 VALUES (?, ?, ?, ?, ?)
 ON CONFLICT(id) DO UPDATE SET
	artist = excluded.artist,
	title = excluded.title,
	data = excluded.data,
	updated_at = excluded.updated_at`
