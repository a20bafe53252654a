package artwork

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/gen2brain/avif"
)

var extensionsByFormat = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
	"image/avif": ".avif",
	"image/bmp":  ".bmp",
}

// Cache stores extracted artwork blobs on disk, keyed by album id. Writing
// the same (albumID, format, bytes) again lands on the same path with the
// same content.
type Cache struct {
	dir    string
	logger *slog.Logger
}

func NewCache(dir string, logger *slog.Logger) *Cache {
	if logger == nil {
		logger = slog.Default()
	}

	return &Cache{dir: strings.TrimSpace(dir), logger: logger}
}

// Write persists an artwork blob and returns its cache path. Blobs that do
// not decode as an image are rejected. Thumbnail variants are derived
// best-effort; their failures never fail the write.
func (c *Cache) Write(data []byte, albumID, format string) (string, error) {
	if c.dir == "" {
		return "", fmt.Errorf("artwork cache dir is not configured")
	}
	if len(data) == 0 {
		return "", fmt.Errorf("artwork blob is empty")
	}
	if strings.TrimSpace(albumID) == "" {
		return "", fmt.Errorf("album id is required")
	}

	decoded, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("decode artwork for album %s: %w", albumID, err)
	}

	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return "", fmt.Errorf("create artwork cache dir: %w", err)
	}

	path := filepath.Join(c.dir, albumID+extensionForFormat(format))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write artwork for album %s: %w", albumID, err)
	}

	c.writeVariants(decoded, albumID)

	return path, nil
}

func extensionForFormat(format string) string {
	if ext, ok := extensionsByFormat[strings.ToLower(strings.TrimSpace(format))]; ok {
		return ext
	}

	return ".jpg"
}
