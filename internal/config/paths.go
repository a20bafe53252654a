package config

import (
	"fmt"
	"os"
	"path/filepath"
)

type Paths struct {
	BaseDir     string
	DBPath      string
	ArtCacheDir string
	ConfigPath  string
	LockPath    string
}

func ResolvePaths(appSlug string) (Paths, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return Paths{}, fmt.Errorf("resolve user config dir: %w", err)
	}

	baseDir := filepath.Join(configDir, appSlug)
	artCacheDir := filepath.Join(baseDir, "artwork")

	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return Paths{}, fmt.Errorf("create app config dir: %w", err)
	}

	if err := os.MkdirAll(artCacheDir, 0o755); err != nil {
		return Paths{}, fmt.Errorf("create artwork cache dir: %w", err)
	}

	return Paths{
		BaseDir:     baseDir,
		DBPath:      filepath.Join(baseDir, "library.db"),
		ArtCacheDir: artCacheDir,
		ConfigPath:  filepath.Join(baseDir, "config.toml"),
		LockPath:    filepath.Join(baseDir, "muse.lock"),
	}, nil
}
