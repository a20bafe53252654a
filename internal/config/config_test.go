package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := Load(filepath.Join(t.TempDir(), "config.toml"))
	if err != nil {
		t.Fatalf("load missing config: %v", err)
	}

	if cfg.Import.WorkerCount != defaultWorkerCount {
		t.Fatalf("expected default worker count %d, got %d", defaultWorkerCount, cfg.Import.WorkerCount)
	}
	if cfg.Import.ChunkSize != defaultChunkSize {
		t.Fatalf("expected default chunk size %d, got %d", defaultChunkSize, cfg.Import.ChunkSize)
	}
	if len(cfg.Artwork.Filenames) == 0 {
		t.Fatalf("expected default artwork filenames")
	}
}

func TestLoadAppliesDefaultsForUnsetFields(t *testing.T) {
	t.Parallel()

	path := writeConfigForTest(t, `
[artwork]
filenames = ["cover.jpg", "folder.jpg"]
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if cfg.Import.WorkerCount != defaultWorkerCount {
		t.Fatalf("expected default worker count, got %d", cfg.Import.WorkerCount)
	}
	if len(cfg.Artwork.Filenames) != 2 || cfg.Artwork.Filenames[1] != "folder.jpg" {
		t.Fatalf("expected configured filenames in order, got %v", cfg.Artwork.Filenames)
	}
}

func TestLoadRejectsPathSeparatorsInArtworkFilenames(t *testing.T) {
	t.Parallel()

	path := writeConfigForTest(t, `
[artwork]
filenames = ["covers/cover.jpg"]
`)

	if _, err := Load(path); err == nil {
		t.Fatalf("expected validation error for filename with path separator")
	}
}

func writeConfigForTest(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	return path
}
