// Package fingerprint derives stable content-addressed identifiers for
// library records. The same input always yields the same id; hash-space
// collisions are accepted as negligible.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Fingerprint returns the lowercase hex SHA-256 of s.
func Fingerprint(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

// AlbumKey builds the normalized grouping key for an album. Identity is
// derived solely from the artist and album text: case-insensitive, Unicode
// NFC-normalized. Blank fields collide silently, which mirrors how the
// records are tagged rather than validating them.
func AlbumKey(artist, album string) string {
	return strings.ToLower(norm.NFC.String(artist + " - " + album))
}
