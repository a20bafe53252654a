// Package scanner discovers audio files and turns them into library song
// records, delivered as bounded chunks with a progress percentage. The chunk
// stream always terminates with a chunk at 100%, which may be empty.
package scanner

import (
	"context"

	"muse/internal/library"
)

// TerminalProgress marks the final chunk of a scan.
const TerminalProgress = 100

type ScanRequest struct {
	Paths     []string `json:"paths"`
	Recursive bool     `json:"recursive"`
}

// Chunk is the unit of streaming transfer from a scan: a bounded batch of
// parsed songs plus a progress percentage, non-decreasing across one run.
type Chunk struct {
	Songs    []library.Song `json:"songs"`
	Progress int            `json:"progress"`
}

// Terminal reports whether this is the last chunk of the run.
func (c Chunk) Terminal() bool {
	return c.Progress >= TerminalProgress
}

// Source emits song records for a path set. Scan returns immediately; chunks
// arrive on the returned channel, which is closed after the terminal chunk.
// Scan itself only fails when the run cannot start at all.
type Source interface {
	Scan(ctx context.Context, req ScanRequest) (<-chan Chunk, error)
	ReadSong(ctx context.Context, path string, isImport bool) (library.Song, error)
}
