package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

const (
	defaultWorkerCount = 4
	defaultChunkSize   = 50
)

// defaultArtworkFilenames is ordered: when several candidates exist in a
// folder, the one latest in this list wins.
var defaultArtworkFilenames = []string{
	"cover.jpg",
	"Cover.jpg",
	"folder.jpg",
	"Folder.jpg",
	"front.jpg",
	"album.jpg",
	"artwork.jpg",
}

type Config struct {
	Import  Import  `toml:"import"`
	Artwork Artwork `toml:"artwork"`
}

type Import struct {
	WorkerCount int `toml:"worker_count"`
	ChunkSize   int `toml:"chunk_size"`
}

type Artwork struct {
	Filenames []string `toml:"filenames"`
}

func Default() Config {
	return Config{
		Import: Import{
			WorkerCount: defaultWorkerCount,
			ChunkSize:   defaultChunkSize,
		},
		Artwork: Artwork{
			Filenames: append([]string(nil), defaultArtworkFilenames...),
		},
	}
}

// Load reads the TOML config at path, applying defaults for anything the
// file leaves unset. A missing file yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	body, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := toml.Unmarshal(body, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}

	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return Config{}, fmt.Errorf("validate config %s: %w", path, err)
	}

	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Import.WorkerCount <= 0 {
		c.Import.WorkerCount = defaultWorkerCount
	}
	if c.Import.ChunkSize <= 0 {
		c.Import.ChunkSize = defaultChunkSize
	}
	if len(c.Artwork.Filenames) == 0 {
		c.Artwork.Filenames = append([]string(nil), defaultArtworkFilenames...)
	}
}

func (c *Config) validate() error {
	for _, name := range c.Artwork.Filenames {
		if strings.TrimSpace(name) == "" {
			return errors.New("artwork filename entries must not be blank")
		}
		if strings.ContainsAny(name, "/\\") {
			return fmt.Errorf("artwork filename %q must be a bare filename", name)
		}
	}

	return nil
}
