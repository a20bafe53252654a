package main

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/gofrs/flock"

	"muse/internal/artwork"
	"muse/internal/config"
	"muse/internal/db"
	"muse/internal/importer"
	"muse/internal/library"
	"muse/internal/scanner"
	"muse/internal/watcher"
)

// app wires the process together: paths, config, the sqlite library, the
// scan/import pipeline, and the folder watcher. One instance per process,
// guarded by a file lock so concurrent invocations do not share the
// database mid-import.
type app struct {
	paths  config.Paths
	cfg    config.Config
	logger *slog.Logger

	database *sql.DB
	lock     *flock.Flock

	songs   *library.SongRepository
	albums  *library.AlbumRepository
	browse  *library.BrowseRepository
	folders *library.WatchedFolderRepository

	imports *importer.Service
	watch   *watcher.Service
}

func openApp(configPath string, verbose bool) (*app, error) {
	paths, err := config.ResolvePaths("muse")
	if err != nil {
		return nil, err
	}
	if configPath == "" {
		configPath = paths.ConfigPath
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	lock := flock.New(paths.LockPath)
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock %s: %w", paths.LockPath, err)
	}
	if !locked {
		return nil, errors.New("another muse instance is already running")
	}

	database, err := db.Bootstrap(paths.DBPath)
	if err != nil {
		_ = lock.Unlock()
		return nil, err
	}

	songs := library.NewSongRepository(database)
	albums := library.NewAlbumRepository(database)
	browse := library.NewBrowseRepository(database)
	folders := library.NewWatchedFolderRepository(database)

	source := scanner.NewTagLibSource(cfg.Import.ChunkSize, logger)
	cache := artwork.NewCache(paths.ArtCacheDir, logger)
	resolver := artwork.NewResolver(cfg.Artwork.Filenames, cache, source, logger)

	imports := importer.NewService(
		songs,
		albums,
		folders,
		source,
		resolver,
		importer.NewTracker(),
		cfg.Import.WorkerCount,
		logger,
	)

	return &app{
		paths:    paths,
		cfg:      cfg,
		logger:   logger,
		database: database,
		lock:     lock,
		songs:    songs,
		albums:   albums,
		browse:   browse,
		folders:  folders,
		imports:  imports,
		watch:    watcher.NewService(folders, imports, logger),
	}, nil
}

func (a *app) Close() {
	if a.database != nil {
		_ = a.database.Close()
	}
	if a.lock != nil {
		_ = a.lock.Unlock()
	}
}
