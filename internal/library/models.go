package library

import (
	"fmt"
	"path/filepath"

	"muse/internal/fingerprint"
)

// MetadataEntry is one raw tag entry mapped to a generic field name. Only
// textual values survive the mapping; the embedded-picture entry is stripped
// before a song is persisted.
type MetadataEntry struct {
	GenericID string `json:"genericId"`
	ID        string `json:"id"`
	Value     string `json:"value"`
}

// FileInfo carries the technical format data reported by the tag reader.
type FileInfo struct {
	Codec      string `json:"codec"`
	Lossless   bool   `json:"lossless"`
	SampleRate int    `json:"sampleRate,omitempty"`
	Bitrate    int    `json:"bitrate,omitempty"`
	BitDepth   int    `json:"bitDepth,omitempty"`
}

// EmbeddedArtwork is the raw picture blob lifted from a song's tags during
// import. It only exists in memory: artwork resolution consumes it once and
// it is never serialized with the song.
type EmbeddedArtwork struct {
	Data   []byte
	Format string
}

type Song struct {
	ID          string          `json:"id"`
	Path        string          `json:"path"`
	File        string          `json:"file"`
	Title       string          `json:"title"`
	Artist      string          `json:"artist"`
	Album       string          `json:"album"`
	Year        int             `json:"year"`
	Genre       []string        `json:"genre"`
	Composer    []string        `json:"composer"`
	TrackNumber int             `json:"trackNumber"`
	Duration    string          `json:"duration"`
	Metadata    []MetadataEntry `json:"metadata"`
	FileInfo    FileInfo        `json:"fileInfo"`

	// User-owned fields, preserved across re-imports.
	IsFavourite   bool   `json:"isFavourite"`
	PlayCount     int    `json:"playCount"`
	DateAdded     int64  `json:"dateAdded"`
	OriginCountry string `json:"originCountry,omitempty"`
	SongProjectID string `json:"songProjectId,omitempty"`

	Artwork *EmbeddedArtwork `json:"-"`
}

type ArtworkSize struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

type AlbumArtwork struct {
	Src    string      `json:"src"`
	Format string      `json:"format"`
	Size   ArtworkSize `json:"size"`
}

type Album struct {
	ID         string        `json:"id"`
	Title      string        `json:"title"`
	Artist     string        `json:"artist"`
	Genre      []string      `json:"genre"`
	Duration   string        `json:"duration"`
	Path       string        `json:"path"`
	Year       int           `json:"year"`
	TrackCount int           `json:"trackCount"`
	TracksIDs  []string      `json:"tracksIds"`
	Lossless   bool          `json:"lossless"`
	Artwork    *AlbumArtwork `json:"artwork,omitempty"`
}

// SongID derives a song's identifier from its absolute path. A pure
// function: importing the same path twice always merges into one record.
func SongID(path string) string {
	return fingerprint.Fingerprint(path)
}

// AlbumID derives an album's identifier from the normalized artist/album key.
func AlbumID(artist, album string) string {
	return fingerprint.Fingerprint(fingerprint.AlbumKey(artist, album))
}

// AlbumKey exposes the grouping key for a song's album.
func (s Song) AlbumKey() string {
	return fingerprint.AlbumKey(s.Artist, s.Album)
}

// Folder is the directory containing the song file.
func (s Song) Folder() string {
	return filepath.Dir(s.Path)
}

// FormatDuration renders a duration in seconds as zero-padded MM:SS with
// integer truncation: 125.7 seconds becomes "02:05".
func FormatDuration(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}

	total := int(seconds)
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}
