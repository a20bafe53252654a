package library

// MergeSong produces the record to persist when incoming has just been
// scanned. Without an existing record the incoming song is stored as-is.
// Otherwise every descriptive and technical field is refreshed from the new
// scan while the user-owned fields are carried over from the existing record,
// so re-importing a file never resets play counts, favourites, or the
// original add timestamp.
func MergeSong(incoming Song, existing *Song) Song {
	if existing == nil {
		return incoming
	}

	merged := incoming
	merged.IsFavourite = existing.IsFavourite
	merged.PlayCount = existing.PlayCount
	merged.DateAdded = existing.DateAdded
	merged.OriginCountry = existing.OriginCountry
	merged.SongProjectID = existing.SongProjectID
	return merged
}

// MergeAlbum folds a song into its album record. With no existing record a
// new album is constructed from the song. With an existing record the song id
// is appended and the track count incremented, unless the song is already a
// member (keeps re-imports idempotent). The lossless flag is a conjunction
// across contributing songs, and artwork already present is left untouched.
func MergeAlbum(song Song, existing *Album) Album {
	if existing == nil {
		return Album{
			ID:         AlbumID(song.Artist, song.Album),
			Title:      song.Album,
			Artist:     song.Artist,
			Genre:      song.Genre,
			Duration:   song.Duration,
			Path:       song.Folder(),
			Year:       song.Year,
			TrackCount: 1,
			TracksIDs:  []string{song.ID},
			Lossless:   song.FileInfo.Lossless,
		}
	}

	merged := *existing
	if !containsID(merged.TracksIDs, song.ID) {
		merged.TracksIDs = append(append([]string(nil), merged.TracksIDs...), song.ID)
		merged.TrackCount++
	}
	merged.Lossless = merged.Lossless && song.FileInfo.Lossless
	return merged
}

func containsID(ids []string, id string) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}

	return false
}
