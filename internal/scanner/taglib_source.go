package scanner

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"go.senan.xyz/taglib"

	"muse/internal/library"
)

var supportedExtensions = map[string]struct{}{
	".aac":  {},
	".aif":  {},
	".aiff": {},
	".alac": {},
	".flac": {},
	".m4a":  {},
	".mp3":  {},
	".ogg":  {},
	".opus": {},
	".wav":  {},
	".wma":  {},
}

var losslessCodecs = map[string]struct{}{
	"aif":  {},
	"aiff": {},
	"alac": {},
	"flac": {},
	"wav":  {},
}

// TagLibSource reads metadata through taglib and streams songs in chunks.
type TagLibSource struct {
	chunkSize int
	logger    *slog.Logger
}

func NewTagLibSource(chunkSize int, logger *slog.Logger) *TagLibSource {
	if chunkSize <= 0 {
		chunkSize = 50
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &TagLibSource{chunkSize: chunkSize, logger: logger}
}

func (s *TagLibSource) Scan(ctx context.Context, req ScanRequest) (<-chan Chunk, error) {
	if len(req.Paths) == 0 {
		return nil, fmt.Errorf("scan: no paths given")
	}

	files, err := discoverAudioFiles(req.Paths, req.Recursive)
	if err != nil {
		return nil, fmt.Errorf("scan: %w", err)
	}

	chunks := make(chan Chunk, 1)
	go s.stream(ctx, files, chunks)
	return chunks, nil
}

func (s *TagLibSource) stream(ctx context.Context, files []string, chunks chan<- Chunk) {
	defer close(chunks)

	total := len(files)
	if total == 0 {
		deliver(ctx, chunks, Chunk{Songs: []library.Song{}, Progress: TerminalProgress})
		return
	}

	batch := make([]library.Song, 0, s.chunkSize)
	processed := 0

	for _, path := range files {
		if ctx.Err() != nil {
			return
		}

		processed++
		song, err := s.ReadSong(ctx, path, true)
		if err != nil {
			// Parse failures skip the file, never the run.
			s.logger.Warn("skipping unreadable file", "path", path, "error", err)
		} else {
			batch = append(batch, song)
		}

		if len(batch) < s.chunkSize && processed < total {
			continue
		}

		progress := processed * 100 / total
		if processed == total {
			progress = TerminalProgress
		}
		if !deliver(ctx, chunks, Chunk{Songs: batch, Progress: progress}) {
			return
		}
		batch = make([]library.Song, 0, s.chunkSize)
	}
}

func deliver(ctx context.Context, chunks chan<- Chunk, chunk Chunk) bool {
	select {
	case chunks <- chunk:
		return true
	case <-ctx.Done():
		return false
	}
}

// ReadSong parses a single audio file into a song record. Embedded artwork is
// attached only for imports; it is transient and consumed by artwork
// resolution.
func (s *TagLibSource) ReadSong(ctx context.Context, path string, isImport bool) (library.Song, error) {
	if err := ctx.Err(); err != nil {
		return library.Song{}, err
	}

	cleanPath := filepath.Clean(path)
	fileName := filepath.Base(cleanPath)
	if !IsAudioFile(fileName) {
		return library.Song{}, fmt.Errorf("read song %s: not an audio file", cleanPath)
	}

	tags, err := taglib.ReadTags(cleanPath)
	if err != nil {
		return library.Song{}, fmt.Errorf("read tags %s: %w", cleanPath, err)
	}

	codec := codecFromPath(cleanPath)
	_, lossless := losslessCodecs[codec]
	song := library.Song{
		ID:          library.SongID(cleanPath),
		Path:        cleanPath,
		File:        fileName,
		Title:       firstTagValue(tags, taglib.Title, "TITLE"),
		Artist:      firstTagValue(tags, taglib.Artist, "ARTIST"),
		Album:       firstTagValue(tags, taglib.Album, "ALBUM"),
		Genre:       allTagValues(tags, taglib.Genre, "GENRE"),
		Composer:    allTagValues(tags, "COMPOSER", "TCOM"),
		TrackNumber: -1,
		Duration:    library.FormatDuration(0),
		Metadata:    mapMetadataEntries(tags),
		FileInfo: library.FileInfo{
			Codec:    codec,
			Lossless: lossless,
		},
		DateAdded: time.Now().UnixMilli(),
	}

	if song.Title == "" {
		song.Title = fileName
	}
	if trackNo := parseNumericTag(firstTagValue(tags, taglib.TrackNumber, "TRACKNUMBER", "TRCK")); trackNo > 0 {
		song.TrackNumber = trackNo
	}
	if year := parseYearTag(firstTagValue(tags, taglib.Date, "DATE", "YEAR", "ORIGINALDATE")); year > 0 {
		song.Year = year
	}

	properties, err := taglib.ReadProperties(cleanPath)
	if err != nil {
		s.logger.Warn("reading audio properties failed", "path", cleanPath, "error", err)
	} else {
		song.Duration = library.FormatDuration(properties.Length.Seconds())
		song.FileInfo.SampleRate = int(properties.SampleRate)
		song.FileInfo.Bitrate = int(properties.Bitrate)
	}

	if isImport {
		if imageData, imageErr := taglib.ReadImage(cleanPath); imageErr == nil && len(imageData) > 0 {
			song.Artwork = &library.EmbeddedArtwork{
				Data:   imageData,
				Format: http.DetectContentType(imageData),
			}
		}
	}

	return song, nil
}

func discoverAudioFiles(paths []string, recursive bool) ([]string, error) {
	files := make([]string, 0)

	for _, root := range paths {
		cleanRoot := filepath.Clean(root)
		info, err := os.Stat(cleanRoot)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", cleanRoot, err)
		}

		if !info.IsDir() {
			if IsAudioFile(filepath.Base(cleanRoot)) {
				files = append(files, cleanRoot)
			}
			continue
		}

		if recursive {
			walkErr := filepath.WalkDir(cleanRoot, func(path string, entry fs.DirEntry, err error) error {
				if err != nil {
					return nil
				}
				if entry.IsDir() {
					if strings.HasPrefix(entry.Name(), ".") && path != cleanRoot {
						return filepath.SkipDir
					}
					return nil
				}
				if strings.HasPrefix(entry.Name(), ".") {
					return nil
				}
				if IsAudioFile(entry.Name()) {
					files = append(files, path)
				}
				return nil
			})
			if walkErr != nil {
				return nil, fmt.Errorf("walk %s: %w", cleanRoot, walkErr)
			}
			continue
		}

		entries, err := os.ReadDir(cleanRoot)
		if err != nil {
			return nil, fmt.Errorf("read dir %s: %w", cleanRoot, err)
		}
		for _, entry := range entries {
			if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
				continue
			}
			if IsAudioFile(entry.Name()) {
				files = append(files, filepath.Join(cleanRoot, entry.Name()))
			}
		}
	}

	return files, nil
}

// IsAudioFile reports whether the filename carries a supported audio
// extension.
func IsAudioFile(fileName string) bool {
	_, ok := supportedExtensions[strings.ToLower(filepath.Ext(fileName))]
	return ok
}

func codecFromPath(path string) string {
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
}

func firstTagValue(tags map[string][]string, keys ...string) string {
	for _, key := range keys {
		for _, value := range tags[key] {
			if trimmed := strings.TrimSpace(value); trimmed != "" {
				return trimmed
			}
		}
	}

	return ""
}

func allTagValues(tags map[string][]string, keys ...string) []string {
	for _, key := range keys {
		values := make([]string, 0, len(tags[key]))
		for _, value := range tags[key] {
			if trimmed := strings.TrimSpace(value); trimmed != "" {
				values = append(values, trimmed)
			}
		}
		if len(values) > 0 {
			return values
		}
	}

	return []string{}
}

func parseNumericTag(value string) int {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return 0
	}

	// Track tags often come as "3/12".
	if separator := strings.IndexAny(trimmed, "/-"); separator > 0 {
		trimmed = trimmed[:separator]
	}

	parsed, err := strconv.Atoi(strings.TrimSpace(trimmed))
	if err != nil || parsed <= 0 {
		return 0
	}

	return parsed
}

func parseYearTag(value string) int {
	trimmed := strings.TrimSpace(value)
	if len(trimmed) < 4 {
		return 0
	}

	parsed, err := strconv.Atoi(trimmed[:4])
	if err != nil || parsed < 1000 || parsed > 3000 {
		return 0
	}

	return parsed
}
