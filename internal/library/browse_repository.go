package library

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
)

// BrowseRepository serves the read-only listing queries used by the CLI.
// Ordering happens on the extracted index columns; the documents themselves
// come from the JSON data column.
type BrowseRepository struct {
	db *sql.DB
}

func NewBrowseRepository(database *sql.DB) *BrowseRepository {
	return &BrowseRepository{db: database}
}

func (r *BrowseRepository) ListAlbums(ctx context.Context, limit int) ([]Album, error) {
	rows, err := r.db.QueryContext(
		ctx,
		`SELECT data FROM albums
		 ORDER BY artist COLLATE NOCASE, title COLLATE NOCASE
		 LIMIT ?`,
		normalizeLimit(limit),
	)
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

func (r *BrowseRepository) ListSongs(ctx context.Context, limit int) ([]Song, error) {
	rows, err := r.db.QueryContext(
		ctx,
		`SELECT data FROM songs
		 ORDER BY artist COLLATE NOCASE, album COLLATE NOCASE, title COLLATE NOCASE
		 LIMIT ?`,
		normalizeLimit(limit),
	)
	if err != nil {
		return nil, fmt.Errorf("list songs: %w", err)
	}
	defer rows.Close()

	songs := make([]Song, 0)
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("scan song row: %w", err)
		}

		var song Song
		if err := json.Unmarshal([]byte(data), &song); err != nil {
			return nil, fmt.Errorf("decode song row: %w", err)
		}
		songs = append(songs, song)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate song rows: %w", err)
	}

	return songs, nil
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return 100
	}

	return limit
}
