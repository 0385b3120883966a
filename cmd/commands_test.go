package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/nhamby/spata/internal/store"
)

const testExport = `[
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
    "master_metadata_track_name": "Noise",
    "master_metadata_album_artist_name": "X"
  }
]`

func TestLoadDatabase(t *testing.T) {
	dataDir := t.TempDir()
	exportPath := filepath.Join(dataDir, "Streaming_History_Audio_2023_0.json")
	if err := os.WriteFile(exportPath, []byte(testExport), 0o644); err != nil {
		t.Fatalf("writing export: %v", err)
	}
	dbPath := filepath.Join(t.TempDir(), "spata.db")

	config := LoadConfig{
		DbPath:      dbPath,
		DataDir:     dataDir,
		MinMsPlayed: 5000,
	}
	if err := loadDatabase(config); err != nil {
		t.Fatalf("loadDatabase: %v", err)
	}

	db, err := store.New(dbPath)
	if err != nil {
		t.Fatalf("store.New: %v", err)
	}
	defer db.Close()

	stats, err := db.GetStats(nil, nil, nil)
	if err != nil {
		t.Fatalf("GetStats: %v", err)
	}
	if stats.TotalMsPlayed != 180000 {
		t.Errorf("TotalMsPlayed = %d, want 180000 (noise filtered)", stats.TotalMsPlayed)
	}
}

func TestLoadDatabaseMissingDir(t *testing.T) {
	config := LoadConfig{
		DbPath:      filepath.Join(t.TempDir(), "spata.db"),
		DataDir:     t.TempDir(),
		MinMsPlayed: 5000,
	}
	if err := loadDatabase(config); err == nil {
		t.Error("loadDatabase with no export files should fail")
	}
}

func TestFormatMs(t *testing.T) {
	cases := []struct {
		ms   int64
		want string
	}{
		{0, "0s"},
		{59000, "0s"},
		{60000, "1m0s"},
		{3661000, "1h1m0s"},
	}
	for _, c := range cases {
		if got := formatMs(c.ms); got != c.want {
			t.Errorf("formatMs(%d) = %q, want %q", c.ms, got, c.want)
		}
	}
}
