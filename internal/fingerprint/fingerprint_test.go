package fingerprint

import "testing"

func TestFingerprintDeterministic(t *testing.T) {
	t.Parallel()

	first := Fingerprint("/music/artist/album/01 track.flac")
	second := Fingerprint("/music/artist/album/01 track.flac")
	if first != second {
		t.Fatalf("expected identical fingerprints, got %q and %q", first, second)
	}

	if len(first) != 64 {
		t.Fatalf("expected 64 hex chars, got %d", len(first))
	}
}

func TestFingerprintDistinctInputs(t *testing.T) {
	t.Parallel()

	if Fingerprint("/a/one.mp3") == Fingerprint("/a/two.mp3") {
		t.Fatalf("expected distinct fingerprints for distinct paths")
	}
}

func TestAlbumKeyCaseInsensitive(t *testing.T) {
	t.Parallel()

	if AlbumKey("Artist", "Album") != AlbumKey("artist", "album") {
		t.Fatalf("expected album key to be case-insensitive")
	}
}

func TestAlbumKeyWhitespaceStable(t *testing.T) {
	t.Parallel()

	if AlbumKey("Artist", "Album") == AlbumKey("Artist ", "Album") {
		t.Fatalf("expected whitespace to be significant in album keys")
	}
}
