// Package watcher reacts to filesystem changes under the watched folders and
// schedules periodic full rescans. Change bursts are batched: events only
// mark folders dirty, and the import fires once the batch window goes quiet.
package watcher

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"muse/internal/importer"
	"muse/internal/library"
	"muse/internal/scanner"
)

const defaultBatchInterval = 10 * time.Second

type Service struct {
	folders       *library.WatchedFolderRepository
	imports       *importer.Service
	batchInterval time.Duration
	logger        *slog.Logger
}

func NewService(folders *library.WatchedFolderRepository, imports *importer.Service, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}

	return &Service{
		folders:       folders,
		imports:       imports,
		batchInterval: defaultBatchInterval,
		logger:        logger.With("component", "watcher"),
	}
}

// Watch blocks until the context is cancelled, importing changed folders as
// batches settle and running a full watched scan on every tick of
// rescanInterval. A rescanInterval of zero disables scheduled rescans.
func (s *Service) Watch(ctx context.Context, rescanInterval time.Duration) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	folders, err := s.folders.ListEnabled(ctx)
	if err != nil {
		return fmt.Errorf("list watched folders: %w", err)
	}
	for _, folder := range folders {
		if err := watchTree(watcher, folder.Path); err != nil {
			s.logger.Warn("watch folder", "path", folder.Path, "error", err)
		}
	}

	batch := time.NewTimer(s.batchInterval)
	batch.Stop()
	defer batch.Stop()

	var rescan <-chan time.Time
	if rescanInterval > 0 {
		ticker := time.NewTicker(rescanInterval)
		defer ticker.Stop()
		rescan = ticker.C
	}

	dirty := map[string]struct{}{}
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
				continue
			}
			folder, ok := s.folderForEvent(watcher, event.Name)
			if !ok {
				continue
			}
			dirty[folder] = struct{}{}
			restartTimer(batch, s.batchInterval)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.logger.Warn("watch events", "error", err)

		case <-batch.C:
			s.importDirty(ctx, dirty)
			clear(dirty)

		case <-rescan:
			if err := s.imports.RunWatchedScan(ctx); err != nil {
				s.logger.Warn("scheduled rescan", "error", err)
			}
		}
	}
}

// folderForEvent maps a change event to the folder to re-import. Newly
// created directories also join the watch so later writes inside them are
// seen.
func (s *Service) folderForEvent(watcher *fsnotify.Watcher, name string) (string, bool) {
	info, err := os.Stat(name)
	if err != nil {
		// Renamed-away or already gone; re-import the parent so stale
		// entries surface on the next repair.
		return filepath.Dir(name), true
	}
	if info.IsDir() {
		if err := watchTree(watcher, name); err != nil {
			s.logger.Warn("watch new folder", "path", name, "error", err)
		}
		return name, true
	}
	if !scanner.IsAudioFile(name) && !artworkCandidateFile(name) {
		return "", false
	}
	return filepath.Dir(name), true
}

func (s *Service) importDirty(ctx context.Context, dirty map[string]struct{}) {
	for folder := range dirty {
		run, err := s.imports.ImportPaths(ctx, []string{folder}, true)
		if err != nil {
			s.logger.Warn("import changed folder", "path", folder, "error", err)
			continue
		}
		select {
		case <-run.Done():
		case <-ctx.Done():
			return
		}
	}
}

// watchTree registers every directory under root, skipping dot directories
// the scan would skip anyway.
func watchTree(watcher *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !entry.IsDir() {
			return nil
		}
		if name := entry.Name(); path != root && len(name) > 0 && name[0] == '.' {
			return filepath.SkipDir
		}
		return watcher.Add(path)
	})
}

// restartTimer drains a possibly-fired timer before resetting it, so an
// already-expired tick cannot fire the batch once more after the reset.
func restartTimer(timer *time.Timer, d time.Duration) {
	if !timer.Stop() {
		select {
		case <-timer.C:
		default:
		}
	}
	timer.Reset(d)
}

func artworkCandidateFile(name string) bool {
	switch filepath.Ext(name) {
	case ".jpg", ".jpeg", ".png", ".webp", ".gif", ".avif", ".bmp":
		return true
	}
	return false
}
