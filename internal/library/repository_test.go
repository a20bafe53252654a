package library

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"muse/internal/db"
)

func TestSongPutIsUpsertByID(t *testing.T) {
	t.Parallel()

	database := bootstrapForTest(t)
	repo := NewSongRepository(database)
	ctx := context.Background()

	song := songForTest("Track", "Artist", "Album")
	if err := repo.Put(ctx, song); err != nil {
		t.Fatalf("first put: %v", err)
	}

	song.Title = "Track (Remastered)"
	if err := repo.Put(ctx, song); err != nil {
		t.Fatalf("second put: %v", err)
	}

	count, err := repo.Count(ctx)
	if err != nil {
		t.Fatalf("count songs: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected one record after re-import, got %d", count)
	}

	stored, err := repo.Get(ctx, song.ID)
	if err != nil {
		t.Fatalf("get song: %v", err)
	}
	if stored == nil || stored.Title != "Track (Remastered)" {
		t.Fatalf("expected refreshed title, got %+v", stored)
	}
}

func TestSongPutStripsPictureEntriesAndArtwork(t *testing.T) {
	t.Parallel()

	database := bootstrapForTest(t)
	repo := NewSongRepository(database)
	ctx := context.Background()

	song := songForTest("Track", "Artist", "Album")
	song.Metadata = []MetadataEntry{
		{GenericID: "title", ID: "TITLE", Value: "Track"},
		{GenericID: "picture", ID: "METADATA_BLOCK_PICTURE", Value: "base64..."},
	}
	song.Artwork = &EmbeddedArtwork{Data: []byte{0xFF, 0xD8}, Format: "image/jpeg"}

	if err := repo.Put(ctx, song); err != nil {
		t.Fatalf("put song: %v", err)
	}

	stored, err := repo.Get(ctx, song.ID)
	if err != nil {
		t.Fatalf("get song: %v", err)
	}
	if stored.Artwork != nil {
		t.Fatalf("expected transient artwork dropped at persistence")
	}
	for _, entry := range stored.Metadata {
		if entry.ID == "METADATA_BLOCK_PICTURE" {
			t.Fatalf("expected picture entry stripped, got %v", stored.Metadata)
		}
	}
	if len(stored.Metadata) != 1 {
		t.Fatalf("expected one surviving metadata entry, got %d", len(stored.Metadata))
	}
}

func TestSongGetMissingReturnsNil(t *testing.T) {
	t.Parallel()

	database := bootstrapForTest(t)
	repo := NewSongRepository(database)

	stored, err := repo.Get(context.Background(), "no-such-id")
	if err != nil {
		t.Fatalf("get missing song: %v", err)
	}
	if stored != nil {
		t.Fatalf("expected nil for missing song, got %+v", stored)
	}
}

func TestSongPutRejectsBlankID(t *testing.T) {
	t.Parallel()

	database := bootstrapForTest(t)
	repo := NewSongRepository(database)

	song := songForTest("Track", "Artist", "Album")
	song.ID = ""
	if err := repo.Put(context.Background(), song); err == nil {
		t.Fatalf("expected error for blank song id")
	}
}

func TestAlbumBulkPutWritesAllInOneBatch(t *testing.T) {
	t.Parallel()

	database := bootstrapForTest(t)
	repo := NewAlbumRepository(database)
	ctx := context.Background()

	first := MergeAlbum(songForTest("One", "Artist", "Album A"), nil)
	second := MergeAlbum(songForTest("Two", "Artist", "Album B"), nil)

	if err := repo.BulkPut(ctx, []Album{first, second}); err != nil {
		t.Fatalf("bulk put: %v", err)
	}

	albums, err := repo.All(ctx)
	if err != nil {
		t.Fatalf("list albums: %v", err)
	}
	if len(albums) != 2 {
		t.Fatalf("expected two albums, got %d", len(albums))
	}

	stored, err := repo.Get(ctx, first.ID)
	if err != nil {
		t.Fatalf("get album: %v", err)
	}
	if stored == nil || stored.Title != "Album A" {
		t.Fatalf("expected album A stored, got %+v", stored)
	}
}

func TestWatchedFolderLifecycle(t *testing.T) {
	t.Parallel()

	database := bootstrapForTest(t)
	repo := NewWatchedFolderRepository(database)
	ctx := context.Background()

	folder, err := repo.Add(ctx, "/music/incoming")
	if err != nil {
		t.Fatalf("add watched folder: %v", err)
	}

	if err := repo.SetEnabled(ctx, folder.ID, false); err != nil {
		t.Fatalf("disable watched folder: %v", err)
	}

	enabled, err := repo.ListEnabled(ctx)
	if err != nil {
		t.Fatalf("list enabled folders: %v", err)
	}
	if len(enabled) != 0 {
		t.Fatalf("expected no enabled folders, got %d", len(enabled))
	}

	if err := repo.Delete(ctx, folder.ID); err != nil {
		t.Fatalf("delete watched folder: %v", err)
	}
	if err := repo.Delete(ctx, folder.ID); err != ErrWatchedFolderNotFound {
		t.Fatalf("expected not-found on second delete, got %v", err)
	}
}

func bootstrapForTest(t *testing.T) *sql.DB {
	t.Helper()

	database, err := db.Bootstrap(filepath.Join(t.TempDir(), "library.db"))
	if err != nil {
		t.Fatalf("bootstrap test database: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	return database
}
