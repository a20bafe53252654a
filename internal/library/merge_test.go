package library

import "testing"

func TestMergeSongWithoutExistingReturnsIncoming(t *testing.T) {
	t.Parallel()

	incoming := songForTest("Title", "Artist", "Album")
	merged := MergeSong(incoming, nil)

	if merged.ID != incoming.ID || merged.Title != incoming.Title {
		t.Fatalf("expected incoming song unchanged, got %+v", merged)
	}
	if merged.PlayCount != 0 || merged.IsFavourite {
		t.Fatalf("expected zero user fields on fresh import")
	}
}

func TestMergeSongPreservesUserOwnedFields(t *testing.T) {
	t.Parallel()

	existing := songForTest("Old Title", "Artist", "Album")
	existing.IsFavourite = true
	existing.PlayCount = 42
	existing.DateAdded = 1700000000000
	existing.OriginCountry = "IS"
	existing.SongProjectID = "project-1"

	incoming := songForTest("Retagged Title", "Artist", "Album")
	incoming.DateAdded = 1800000000000

	merged := MergeSong(incoming, &existing)

	if merged.Title != "Retagged Title" {
		t.Fatalf("expected descriptive fields refreshed, got title %q", merged.Title)
	}
	if !merged.IsFavourite {
		t.Fatalf("expected favourite flag preserved")
	}
	if merged.PlayCount != 42 {
		t.Fatalf("expected play count preserved, got %d", merged.PlayCount)
	}
	if merged.DateAdded != 1700000000000 {
		t.Fatalf("expected original add timestamp preserved, got %d", merged.DateAdded)
	}
	if merged.OriginCountry != "IS" || merged.SongProjectID != "project-1" {
		t.Fatalf("expected origin country and project id preserved")
	}
}

func TestMergeAlbumConstructsNewRecord(t *testing.T) {
	t.Parallel()

	song := songForTest("Track", "Artist", "Album")
	song.FileInfo.Lossless = true

	album := MergeAlbum(song, nil)

	if album.ID != AlbumID("Artist", "Album") {
		t.Fatalf("expected album id derived from artist and album")
	}
	if album.TrackCount != 1 {
		t.Fatalf("expected track count 1, got %d", album.TrackCount)
	}
	if len(album.TracksIDs) != 1 || album.TracksIDs[0] != song.ID {
		t.Fatalf("expected tracks ids [%s], got %v", song.ID, album.TracksIDs)
	}
	if !album.Lossless {
		t.Fatalf("expected lossless album from lossless song")
	}
	if album.Path != song.Folder() {
		t.Fatalf("expected album path %q, got %q", song.Folder(), album.Path)
	}
}

func TestMergeAlbumAppendsAndIncrements(t *testing.T) {
	t.Parallel()

	first := songForTest("One", "Artist", "Album")
	first.FileInfo.Lossless = true
	album := MergeAlbum(first, nil)

	second := songForTest("Two", "Artist", "Album")
	second.Path = "/music/Artist/Album/02 Two.mp3"
	second.ID = SongID(second.Path)

	merged := MergeAlbum(second, &album)

	if merged.TrackCount != 2 {
		t.Fatalf("expected track count 2, got %d", merged.TrackCount)
	}
	if len(merged.TracksIDs) != 2 || merged.TracksIDs[1] != second.ID {
		t.Fatalf("expected appended song id, got %v", merged.TracksIDs)
	}
	if merged.Lossless {
		t.Fatalf("expected lossless cleared after lossy member joined")
	}
}

func TestMergeAlbumIgnoresRepeatedSong(t *testing.T) {
	t.Parallel()

	song := songForTest("One", "Artist", "Album")
	album := MergeAlbum(song, nil)

	merged := MergeAlbum(song, &album)

	if merged.TrackCount != 1 {
		t.Fatalf("expected re-import to keep track count 1, got %d", merged.TrackCount)
	}
	if len(merged.TracksIDs) != 1 {
		t.Fatalf("expected no duplicate tracks ids, got %v", merged.TracksIDs)
	}
}

func TestMergeAlbumLeavesArtworkUntouched(t *testing.T) {
	t.Parallel()

	song := songForTest("One", "Artist", "Album")
	album := MergeAlbum(song, nil)
	album.Artwork = &AlbumArtwork{Src: "/covers/a.jpg", Format: "image/jpeg", Size: ArtworkSize{Width: 200, Height: 200}}

	second := songForTest("Two", "Artist", "Album")
	second.Path = "/music/Artist/Album/02 Two.mp3"
	second.ID = SongID(second.Path)

	merged := MergeAlbum(second, &album)

	if merged.Artwork == nil || merged.Artwork.Src != "/covers/a.jpg" {
		t.Fatalf("expected artwork preserved through merge")
	}
}

func TestFormatDuration(t *testing.T) {
	t.Parallel()

	cases := []struct {
		seconds float64
		want    string
	}{
		{125.7, "02:05"},
		{59.9, "00:59"},
		{0, "00:00"},
		{3600, "60:00"},
	}

	for _, tc := range cases {
		if got := FormatDuration(tc.seconds); got != tc.want {
			t.Fatalf("FormatDuration(%v) = %q, want %q", tc.seconds, got, tc.want)
		}
	}
}

func songForTest(title, artist, album string) Song {
	path := "/music/" + artist + "/" + album + "/01 " + title + ".flac"
	return Song{
		ID:          SongID(path),
		Path:        path,
		File:        "01 " + title + ".flac",
		Title:       title,
		Artist:      artist,
		Album:       album,
		Genre:       []string{"Rock"},
		TrackNumber: 1,
		Duration:    "03:30",
	}
}
