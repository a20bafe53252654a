package db

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestBootstrapAppliesMigrationsOnce(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "library.db")

	first, err := Bootstrap(path)
	if err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	first.Close()

	second, err := Bootstrap(path)
	if err != nil {
		t.Fatalf("second bootstrap: %v", err)
	}
	defer second.Close()

	var applied int
	if err := second.QueryRow(
		"SELECT COUNT(*) FROM schema_migrations WHERE name = ?", "0001_init.sql",
	).Scan(&applied); err != nil {
		t.Fatalf("query schema_migrations: %v", err)
	}
	if applied != 1 {
		t.Fatalf("expected migration recorded once, got %d", applied)
	}

	for _, table := range []string{"songs", "albums", "watched_folders"} {
		var count int
		if err := second.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&count); err != nil {
			t.Fatalf("expected table %s usable after re-bootstrap: %v", table, err)
		}
	}
}

func TestBootstrapEnablesWAL(t *testing.T) {
	t.Parallel()

	database, err := Bootstrap(filepath.Join(t.TempDir(), "library.db"))
	if err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	defer database.Close()

	var mode string
	if err := database.QueryRow("PRAGMA journal_mode").Scan(&mode); err != nil {
		t.Fatalf("query journal_mode: %v", err)
	}
	if !strings.EqualFold(mode, "wal") {
		t.Fatalf("expected WAL journal mode, got %q", mode)
	}
}
