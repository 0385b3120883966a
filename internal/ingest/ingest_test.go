package ingest

import (
	"os"
	"path/filepath"
	"testing"
)

const sampleFile = `[
  {
    "ts": "2023-06-15T08:30:00Z",
    "ms_played": 180000,
    "spotify_track_uri": "spotify:track:abc",
    "master_metadata_track_name": "Y",
    "master_metadata_album_artist_name": "X",
    "master_metadata_album_album_name": "Album"
  },
  {
    "ts": "2023-06-15T09:00:00Z",
    "ms_played": 4000,
    "spotify_track_uri": "spotify:track:def",
    "master_metadata_track_name": "Short",
    "master_metadata_album_artist_name": "X"
  },
  {
    "ts": "2023-06-16T10:00:00Z",
    "ms_played": 600000,
    "spotify_episode_uri": "spotify:episode:ghi",
    "episode_name": "Episode 1",
    "episode_show_name": "Some Show"
  },
  {
    "ts": "2023-06-17T10:00:00Z",
    "ms_played": 900000,
    "audiobook_uri": "spotify:audiobook:jkl",
    "audiobook_title": "Book",
    "audiobook_chapter_uri": "spotify:chapter:mno",
    "audiobook_chapter_title": "Chapter 1"
  },
  {
    "ts": "not-a-timestamp",
    "ms_played": 100000,
    "spotify_track_uri": "spotify:track:pqr",
    "master_metadata_track_name": "Bad Time",
    "master_metadata_album_artist_name": "X"
  },
  {
    "ts": "2023-06-18T10:00:00Z",
    "ms_played": 100000
  }
]`

func TestParse(t *testing.T) {
	events, sum, err := Parse([]byte(sampleFile), DefaultMinMsPlayed)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}

	if sum.Kept != 3 {
		t.Errorf("Kept = %d, want 3", sum.Kept)
	}
	if sum.FilteredNoise != 1 {
		t.Errorf("FilteredNoise = %d, want 1", sum.FilteredNoise)
	}
	if sum.SkippedMalformed != 1 {
		t.Errorf("SkippedMalformed = %d, want 1", sum.SkippedMalformed)
	}
	if sum.SkippedUnclassified != 1 {
		t.Errorf("SkippedUnclassified = %d, want 1", sum.SkippedUnclassified)
	}
	if len(events) != 3 {
		t.Fatalf("len(events) = %d, want 3", len(events))
	}

	if events[0].Media != MediaTrack || events[0].TrackName != "Y" || events[0].ArtistName != "X" {
		t.Errorf("unexpected track event: %+v", events[0])
	}
	if events[1].Media != MediaPodcastEpisode || events[1].ShowName != "Some Show" {
		t.Errorf("unexpected podcast event: %+v", events[1])
	}
	if events[2].Media != MediaAudiobookChapter || events[2].BookTitle != "Book" {
		t.Errorf("unexpected audiobook event: %+v", events[2])
	}
}

func TestParseBadFile(t *testing.T) {
	_, _, err := Parse([]byte("{not json"), DefaultMinMsPlayed)
	if err == nil {
		t.Error("Parse of malformed file should fail")
	}
}

func TestClassifyPriority(t *testing.T) {
	// Track URI wins over episode and book URIs when several are present.
	r := rawRecord{
		TrackURI:   "spotify:track:abc",
		EpisodeURI: "spotify:episode:def",
		BookURI:    "spotify:audiobook:ghi",
	}
	if got := classify(r); got != MediaTrack {
		t.Errorf("classify = %v, want MediaTrack", got)
	}

	r.TrackURI = ""
	if got := classify(r); got != MediaPodcastEpisode {
		t.Errorf("classify = %v, want MediaPodcastEpisode", got)
	}

	r.EpisodeURI = ""
	if got := classify(r); got != MediaAudiobookChapter {
		t.Errorf("classify = %v, want MediaAudiobookChapter", got)
	}

	r.BookURI = ""
	if got := classify(r); got != MediaUnknown {
		t.Errorf("classify = %v, want MediaUnknown", got)
	}
}

func TestNormalizeRejectsNegativeMsPlayed(t *testing.T) {
	r := rawRecord{
		Ts:         "2023-06-15T08:30:00Z",
		MsPlayed:   -1,
		TrackURI:   "spotify:track:abc",
		TrackName:  "Y",
		ArtistName: "X",
	}
	if _, err := normalize(r, MediaTrack); err == nil {
		t.Error("normalize should reject negative ms_played")
	}
}

func TestNormalizeRejectsNamelessTrack(t *testing.T) {
	r := rawRecord{
		Ts:       "2023-06-15T08:30:00Z",
		MsPlayed: 60000,
		TrackURI: "spotify:track:abc",
	}
	if _, err := normalize(r, MediaTrack); err == nil {
		t.Error("normalize should reject a track without name metadata")
	}
}

func TestReadDir(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "Streaming_History_Audio_2023_0.json", sampleFile)
	writeFile(t, dir, "Streaming_History_Audio_2023_1.json", sampleFile)
	writeFile(t, dir, "Unrelated.json", `[{"ts": "x"}]`)

	events, sum, err := ReadDir(dir, DefaultMinMsPlayed)
	if err != nil {
		t.Fatalf("ReadDir error: %v", err)
	}
	if sum.Files != 2 {
		t.Errorf("Files = %d, want 2", sum.Files)
	}
	if len(events) != 6 {
		t.Errorf("len(events) = %d, want 6", len(events))
	}
}

func TestReadDirEmpty(t *testing.T) {
	_, _, err := ReadDir(t.TempDir(), DefaultMinMsPlayed)
	if err == nil {
		t.Error("ReadDir of an empty directory should fail")
	}
}

func writeFile(t *testing.T, dir, name, contents string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(contents), 0o644); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
}
