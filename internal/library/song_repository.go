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

// pictureEntryIDs are the raw tag ids that carry embedded picture blobs.
// They are stripped before persistence: the blobs are consumed by artwork
// resolution and far too large to keep in the song document.
var pictureEntryIDs = map[string]struct{}{
	"METADATA_BLOCK_PICTURE": {},
	"PICTURE":                {},
	"APIC":                   {},
	"covr":                   {},
}

type SongRepository struct {
	db *sql.DB
}

func NewSongRepository(database *sql.DB) *SongRepository {
	return &SongRepository{db: database}
}

// Get returns the stored song, or nil when no record exists for the id.
func (r *SongRepository) Get(ctx context.Context, id string) (*Song, error) {
	var data string
	err := r.db.QueryRowContext(ctx, "SELECT data FROM songs WHERE id = ?", id).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get song %s: %w", id, err)
	}

	var song Song
	if err := json.Unmarshal([]byte(data), &song); err != nil {
		return nil, fmt.Errorf("decode song %s: %w", id, err)
	}

	return &song, nil
}

// Put upserts the song document. The embedded-picture metadata entries are
// always stripped first.
func (r *SongRepository) Put(ctx context.Context, song Song) error {
	if strings.TrimSpace(song.ID) == "" {
		return errors.New("song id is required")
	}

	song.Metadata = stripPictureEntries(song.Metadata)
	song.Artwork = nil

	data, err := json.Marshal(song)
	if err != nil {
		return fmt.Errorf("encode song %s: %w", song.ID, err)
	}

	if _, err := r.db.ExecContext(
		ctx,
		`INSERT INTO songs(id, artist, album, title, album_key, data, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			artist = excluded.artist,
			album = excluded.album,
			title = excluded.title,
			album_key = excluded.album_key,
			data = excluded.data,
			updated_at = excluded.updated_at`,
		song.ID,
		song.Artist,
		song.Album,
		song.Title,
		song.AlbumKey(),
		string(data),
		time.Now().UTC().Format(time.RFC3339),
	); err != nil {
		return fmt.Errorf("put song %s: %w", song.ID, err)
	}

	return nil
}

// All returns every stored song, unordered.
func (r *SongRepository) All(ctx context.Context) ([]Song, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT data FROM songs")
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

// Count reports the number of stored songs.
func (r *SongRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(1) FROM songs").Scan(&count); err != nil {
		return 0, fmt.Errorf("count songs: %w", err)
	}

	return count, nil
}

func stripPictureEntries(entries []MetadataEntry) []MetadataEntry {
	kept := make([]MetadataEntry, 0, len(entries))
	for _, entry := range entries {
		if _, isPicture := pictureEntryIDs[entry.ID]; isPicture {
			continue
		}
		kept = append(kept, entry)
	}

	return kept
}
