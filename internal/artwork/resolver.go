// Package artwork resolves cover art for albums: sibling files in the song's
// folder first, then any image in the folder, then the embedded picture blob
// from the song's tags as a last resort.
package artwork

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"muse/internal/library"
	"muse/internal/scanner"
)

// DisplaySize is a display hint, not the decoded image size.
const DisplaySize = 200

var imageFormatsByExtension = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
	".avif": "image/avif",
	".bmp":  "image/bmp",
}

// Result is a located folder artwork file.
type Result struct {
	Src           string `json:"artworkSrc"`
	Format        string `json:"artworkFormat"`
	FilenameMatch string `json:"artworkFilenameMatch"`
}

type Resolver struct {
	candidates []string
	cache      *Cache
	source     scanner.Source
	logger     *slog.Logger
}

// NewResolver builds a resolver over the ordered candidate filename list.
// When several candidates exist in a folder, the one latest in the list wins.
func NewResolver(candidates []string, cache *Cache, source scanner.Source, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}

	return &Resolver{
		candidates: append([]string(nil), candidates...),
		cache:      cache,
		source:     source,
		logger:     logger,
	}
}

// LookForArt searches the song's containing folder. The candidate list is
// iterated without short-circuit: the last existing candidate wins. The same
// trailing-match rule applies to the any-image fallback. Returns nil when
// nothing is found; all filesystem errors count as "not found".
func (r *Resolver) LookForArt(songPath, songFileName string) *Result {
	folder := containingFolder(songPath, songFileName)

	var found *Result
	for _, filename := range r.candidates {
		candidate := filepath.Join(folder, filename)
		info, err := os.Stat(candidate)
		if err != nil || info.IsDir() {
			continue
		}
		found = &Result{
			Src:           candidate,
			Format:        "image/jpeg",
			FilenameMatch: filename,
		}
	}

	if found != nil {
		return found
	}

	entries, err := os.ReadDir(folder)
	if err != nil {
		return nil
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		format, isImage := imageFormatsByExtension[strings.ToLower(filepath.Ext(entry.Name()))]
		if !isImage {
			continue
		}
		found = &Result{
			Src:           filepath.Join(folder, entry.Name()),
			Format:        format,
			FilenameMatch: entry.Name(),
		}
	}

	return found
}

// AddAlbumArtworkFromSong resolves artwork for album using song: folder art
// first, then the song's embedded blob written through the cache.
func (r *Resolver) AddAlbumArtworkFromSong(song library.Song, album *library.Album) {
	if result := r.LookForArt(song.Path, song.File); result != nil {
		album.Artwork = &library.AlbumArtwork{
			Src:    result.Src,
			Format: result.Format,
			Size:   library.ArtworkSize{Width: DisplaySize, Height: DisplaySize},
		}
		return
	}

	if song.Artwork == nil || len(song.Artwork.Data) == 0 || song.Artwork.Format == "" {
		return
	}

	cachedPath, err := r.cache.Write(song.Artwork.Data, album.ID, song.Artwork.Format)
	if err != nil {
		r.logger.Warn("caching embedded artwork failed", "album", album.ID, "error", err)
		return
	}

	album.Artwork = &library.AlbumArtwork{
		Src:    cachedPath,
		Format: song.Artwork.Format,
		Size:   library.ArtworkSize{Width: DisplaySize, Height: DisplaySize},
	}
}

// RescanAlbumArtwork re-scans the album's folder (non-recursive) and re-runs
// resolution against the first returned song. When folder art is missing,
// embedded artwork is attempted from every returned song concurrently and the
// last write wins; the winner is intentionally nondeterministic, only the
// assignment itself is guarded.
func (r *Resolver) RescanAlbumArtwork(ctx context.Context, album *library.Album) error {
	chunks, err := r.source.Scan(ctx, scanner.ScanRequest{Paths: []string{album.Path}, Recursive: false})
	if err != nil {
		return fmt.Errorf("rescan album folder %s: %w", album.Path, err)
	}

	songs := make([]library.Song, 0)
	for chunk := range chunks {
		songs = append(songs, chunk.Songs...)
	}
	if len(songs) == 0 {
		return fmt.Errorf("rescan album folder %s: no songs found", album.Path)
	}

	if result := r.LookForArt(songs[0].Path, songs[0].File); result != nil {
		album.Artwork = &library.AlbumArtwork{
			Src:    result.Src,
			Format: result.Format,
			Size:   library.ArtworkSize{Width: DisplaySize, Height: DisplaySize},
		}
		return nil
	}

	var mu sync.Mutex
	var wg sync.WaitGroup
	for _, song := range songs {
		if song.Artwork == nil || len(song.Artwork.Data) == 0 || song.Artwork.Format == "" {
			continue
		}

		wg.Add(1)
		go func(song library.Song) {
			defer wg.Done()

			cachedPath, err := r.cache.Write(song.Artwork.Data, album.ID, song.Artwork.Format)
			if err != nil {
				r.logger.Warn("caching embedded artwork failed", "album", album.ID, "song", song.ID, "error", err)
				return
			}

			mu.Lock()
			album.Artwork = &library.AlbumArtwork{
				Src:    cachedPath,
				Format: song.Artwork.Format,
				Size:   library.ArtworkSize{Width: DisplaySize, Height: DisplaySize},
			}
			mu.Unlock()
		}(song)
	}
	wg.Wait()

	return nil
}

func containingFolder(songPath, songFileName string) string {
	if songFileName != "" && strings.HasSuffix(songPath, songFileName) {
		return filepath.Clean(strings.TrimSuffix(songPath, songFileName))
	}

	return filepath.Dir(songPath)
}
