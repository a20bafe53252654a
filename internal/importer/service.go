// Package importer coordinates an import run: chunked ingestion from the
// scan source, concurrent off-path persistence of songs, album aggregation
// once every chunk has settled, and artwork resolution for albums that lack
// it. Callers are never blocked beyond enqueueing work.
package importer

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"muse/internal/artwork"
	"muse/internal/library"
	"muse/internal/scanner"
)

type Service struct {
	songs    *library.SongRepository
	albums   *library.AlbumRepository
	folders  *library.WatchedFolderRepository
	source   scanner.Source
	resolver *artwork.Resolver
	tracker  *Tracker
	workers  int
	logger   *slog.Logger
}

func NewService(
	songs *library.SongRepository,
	albums *library.AlbumRepository,
	folders *library.WatchedFolderRepository,
	source scanner.Source,
	resolver *artwork.Resolver,
	tracker *Tracker,
	workers int,
	logger *slog.Logger,
) *Service {
	if workers < 1 {
		workers = 1
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Service{
		songs:    songs,
		albums:   albums,
		folders:  folders,
		source:   source,
		resolver: resolver,
		tracker:  tracker,
		workers:  workers,
		logger:   logger,
	}
}

// Run is a handle on one in-progress import.
type Run struct {
	ID   string
	done chan struct{}
}

// Done is closed once the run has finished album aggregation, or once it has
// been abandoned.
func (r *Run) Done() <-chan struct{} {
	return r.done
}

// Tracker exposes the status tracker for observers.
func (s *Service) Tracker() *Tracker {
	return s.tracker
}

// ImportPaths starts an import run over the given paths and returns as soon
// as the scan stream is established. The run continues in the background;
// wait on the returned handle for completion. An error is returned only when
// the scan itself cannot start; on that path the status is deliberately left
// in its importing state.
func (s *Service) ImportPaths(ctx context.Context, paths []string, background bool) (*Run, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("import: no paths given")
	}

	run := &Run{ID: uuid.NewString(), done: make(chan struct{})}
	logger := s.logger.With("run", run.ID)

	s.tracker.StartRun(paths[0], background)
	if background {
		s.tracker.Notify(PhaseReading, 0)
	}

	chunks, err := s.source.Scan(ctx, scanner.ScanRequest{Paths: paths, Recursive: true})
	if err != nil {
		return nil, fmt.Errorf("start scan: %w", err)
	}

	logger.Info("import started", "paths", paths, "background", background)
	go s.consume(ctx, logger, run, chunks, background)
	return run, nil
}

// consume drains the chunk stream. Chunks persist concurrently on the worker
// pool; album aggregation fires exactly once, after the in-flight set is
// empty and the terminal chunk has been observed.
func (s *Service) consume(ctx context.Context, logger *slog.Logger, run *Run, chunks <-chan scanner.Chunk, background bool) {
	defer close(run.done)

	workers := newPool(s.workers)

	var (
		mu         sync.Mutex
		inFlight   int
		terminal   bool
		aggregated bool
		allSongs   []library.Song
	)

	// Reports whether this caller won the right to aggregate.
	settle := func() bool {
		mu.Lock()
		defer mu.Unlock()
		if aggregated || !terminal || inFlight > 0 {
			return false
		}
		aggregated = true
		return true
	}

	for chunk := range chunks {
		s.tracker.SetPhase(PhaseWriting)
		s.tracker.SetPercent(chunk.Progress)

		mu.Lock()
		if chunk.Terminal() {
			terminal = true
		}
		if len(chunk.Songs) > 0 {
			inFlight++
			allSongs = append(allSongs, chunk.Songs...)
		}
		imported := len(allSongs)
		mu.Unlock()

		if background && imported > 0 {
			s.tracker.Notify(fmt.Sprintf("Updating library (%d imported)", imported), 0)
		}

		if len(chunk.Songs) == 0 {
			continue
		}

		s.tracker.AddTotal(len(chunk.Songs))
		job := chunk
		workers.submit(func() {
			s.persistChunk(ctx, logger, job)

			mu.Lock()
			inFlight--
			mu.Unlock()

			if settle() {
				mu.Lock()
				songs := allSongs
				mu.Unlock()
				s.finishRun(ctx, logger, songs, background)
			}
		})
	}

	// The stream is closed; drain the pool so every chunk has settled.
	workers.close()

	if settle() {
		s.finishRun(ctx, logger, allSongs, background)
		return
	}

	mu.Lock()
	abandoned := !aggregated
	mu.Unlock()
	if abandoned {
		// Cancelled or failed mid-stream: persisted songs are left without
		// album aggregation; a later repair run links them up.
		logger.Warn("import abandoned before terminal chunk")
	}
}

// persistChunk merges and persists every song in the chunk. Failures are
// absorbed per song: a single corrupt record never fails a folder import.
func (s *Service) persistChunk(ctx context.Context, logger *slog.Logger, chunk scanner.Chunk) {
	for _, song := range chunk.Songs {
		existing, err := s.songs.Get(ctx, song.ID)
		if err != nil {
			logger.Error("loading existing song failed", "path", song.Path, "error", err)
			continue
		}

		if err := s.songs.Put(ctx, library.MergeSong(song, existing)); err != nil {
			logger.Error("persisting song failed", "path", song.Path, "error", err)
			continue
		}

		s.tracker.AddImported(1)
	}
}

func (s *Service) finishRun(ctx context.Context, logger *slog.Logger, songs []library.Song, background bool) {
	s.aggregateAlbums(ctx, logger, songs, background)
	s.tracker.FinishRun()
	s.tracker.ClearNotification()
	logger.Info("import finished", "songs", len(songs))
}

// aggregateAlbums groups the run's songs into album records, resolves artwork
// for albums that lack it, and writes every staged album in one batch: at
// most one album write per distinct album per run.
func (s *Service) aggregateAlbums(ctx context.Context, logger *slog.Logger, songs []library.Song, background bool) {
	if len(songs) == 0 {
		return
	}

	s.tracker.SetPhase(PhaseAlbums)
	if background {
		s.tracker.Notify(PhaseAlbums, 0)
	}

	staged := make(map[string]library.Album)
	var mu sync.Mutex
	var wg sync.WaitGroup

	for _, song := range songs {
		wg.Add(1)
		go func(song library.Song) {
			defer wg.Done()

			albumID := library.AlbumID(song.Artist, song.Album)
			fromStore, err := s.albums.Get(ctx, albumID)
			if err != nil {
				logger.Error("loading album failed", "album", albumID, "error", err)
				return
			}

			mu.Lock()
			base := fromStore
			if stagedAlbum, ok := staged[albumID]; ok {
				base = &stagedAlbum
			}
			merged := library.MergeAlbum(song, base)
			staged[albumID] = merged
			needsArtwork := merged.Artwork == nil
			mu.Unlock()

			if !needsArtwork {
				return
			}

			s.resolver.AddAlbumArtworkFromSong(song, &merged)
			if merged.Artwork == nil {
				return
			}

			mu.Lock()
			current := staged[albumID]
			if current.Artwork == nil {
				current.Artwork = merged.Artwork
				staged[albumID] = current
			}
			mu.Unlock()
		}(song)
	}
	wg.Wait()

	albums := make([]library.Album, 0, len(staged))
	for _, album := range staged {
		albums = append(albums, album)
	}

	if err := s.albums.BulkPut(ctx, albums); err != nil {
		logger.Error("bulk album write failed", "albums", len(albums), "error", err)
		return
	}

	logger.Info("albums aggregated", "albums", len(albums))
}

// RunWatchedScan imports every enabled watched folder in background mode,
// one after another.
func (s *Service) RunWatchedScan(ctx context.Context) error {
	folders, err := s.folders.ListEnabled(ctx)
	if err != nil {
		return err
	}

	for _, folder := range folders {
		s.tracker.Notify(fmt.Sprintf("Scanning %s ...", folder.Path), 2000)

		run, err := s.ImportPaths(ctx, []string{folder.Path}, true)
		if err != nil {
			return fmt.Errorf("scan watched folder %s: %w", folder.Path, err)
		}

		select {
		case <-run.Done():
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	return nil
}

// RescanAlbumArtwork re-resolves artwork for one album and persists the
// result.
func (s *Service) RescanAlbumArtwork(ctx context.Context, albumID string) error {
	album, err := s.albums.Get(ctx, albumID)
	if err != nil {
		return err
	}
	if album == nil {
		return fmt.Errorf("album %s not found", albumID)
	}

	if err := s.resolver.RescanAlbumArtwork(ctx, album); err != nil {
		return err
	}

	return s.albums.Put(ctx, *album)
}

// Repair re-runs album aggregation over every persisted song whose album
// record is missing or does not reference it. Idempotent; covers runs
// abandoned before aggregation, which keep their songs but not their albums.
func (s *Service) Repair(ctx context.Context) (int, error) {
	songs, err := s.songs.All(ctx)
	if err != nil {
		return 0, err
	}

	orphaned := make([]library.Song, 0)
	for _, song := range songs {
		albumID := library.AlbumID(song.Artist, song.Album)
		album, err := s.albums.Get(ctx, albumID)
		if err != nil {
			return 0, err
		}
		if album == nil || !albumContains(album, song.ID) {
			orphaned = append(orphaned, song)
		}
	}

	if len(orphaned) == 0 {
		return 0, nil
	}

	s.aggregateAlbums(ctx, s.logger.With("run", "repair"), orphaned, false)
	return len(orphaned), nil
}

func albumContains(album *library.Album, songID string) bool {
	for _, id := range album.TracksIDs {
		if id == songID {
			return true
		}
	}

	return false
}
