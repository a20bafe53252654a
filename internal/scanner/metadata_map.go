package scanner

import (
	"sort"
	"strings"

	"muse/internal/library"
)

// genericTagIDs maps raw tag keys to the generic field names carried on
// MetadataEntry. Unknown keys map to "unknown" rather than being dropped.
var genericTagIDs = map[string]string{
	"TITLE":                  "title",
	"ARTIST":                 "artist",
	"ALBUM":                  "album",
	"ALBUMARTIST":            "albumArtist",
	"GENRE":                  "genre",
	"COMPOSER":               "composer",
	"DATE":                   "year",
	"YEAR":                   "year",
	"ORIGINALDATE":           "originalYear",
	"TRACKNUMBER":            "trackNumber",
	"DISCNUMBER":             "discNumber",
	"COMMENT":                "comment",
	"LYRICS":                 "lyrics",
	"LABEL":                  "label",
	"BPM":                    "bpm",
	"COPYRIGHT":              "copyright",
	"ENCODEDBY":              "encodedBy",
	"METADATA_BLOCK_PICTURE": "picture",
	"PICTURE":                "picture",
	"APIC":                   "picture",
}

// mapMetadataEntries turns the raw tag map into the ordered metadata entry
// list stored on a song. Entries are ordered by tag key so the sequence is
// stable across scans; picture entries are excluded here already since their
// values are binary, not text.
func mapMetadataEntries(tags map[string][]string) []library.MetadataEntry {
	keys := make([]string, 0, len(tags))
	for key := range tags {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	entries := make([]library.MetadataEntry, 0, len(keys))
	for _, key := range keys {
		if genericIDForTag(key) == "picture" {
			continue
		}
		for _, value := range tags[key] {
			trimmed := strings.TrimSpace(value)
			if trimmed == "" {
				continue
			}
			entries = append(entries, library.MetadataEntry{
				GenericID: genericIDForTag(key),
				ID:        key,
				Value:     trimmed,
			})
		}
	}

	return entries
}

func genericIDForTag(key string) string {
	if generic, ok := genericTagIDs[strings.ToUpper(strings.TrimSpace(key))]; ok {
		return generic
	}

	return "unknown"
}
