// Package ingest reads Spotify extended streaming history exports and
// normalizes them into play events ready for loading.
package ingest

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"
)

// DefaultMinMsPlayed is the noise threshold: events played for less than
// this many milliseconds never reach storage.
const DefaultMinMsPlayed = 5000

// FilePattern matches the per-chunk history files inside an export.
const FilePattern = "Streaming_History_Audio_*.json"

// MediaType classifies a play event by the kind of content played.
type MediaType int

const (
	MediaUnknown MediaType = iota
	MediaTrack
	MediaPodcastEpisode
	MediaAudiobookChapter
)

func (m MediaType) String() string {
	switch m {
	case MediaTrack:
		return "track"
	case MediaPodcastEpisode:
		return "podcast_episode"
	case MediaAudiobookChapter:
		return "audiobook_chapter"
	}
	return "unknown"
}

// PlayEvent is one normalized record of a single playback ending at a
// point in time. Only the attribute set for its MediaType is populated.
type PlayEvent struct {
	EndTime  time.Time
	MsPlayed int64
	Media    MediaType

	// MediaTrack
	TrackName  string
	ArtistName string
	AlbumName  string
	TrackURI   string

	// MediaPodcastEpisode
	ShowName    string
	EpisodeName string
	EpisodeURI  string

	// MediaAudiobookChapter
	BookTitle    string
	ChapterTitle string
	BookURI      string
	ChapterURI   string
}

// rawRecord mirrors the field names Spotify uses in the export. Null
// values decode to empty strings, which classify treats as absent.
type rawRecord struct {
	Ts           string `json:"ts"`
	MsPlayed     int64  `json:"ms_played"`
	TrackURI     string `json:"spotify_track_uri"`
	TrackName    string `json:"master_metadata_track_name"`
	ArtistName   string `json:"master_metadata_album_artist_name"`
	AlbumName    string `json:"master_metadata_album_album_name"`
	EpisodeURI   string `json:"spotify_episode_uri"`
	EpisodeName  string `json:"episode_name"`
	ShowName     string `json:"episode_show_name"`
	BookURI      string `json:"audiobook_uri"`
	BookTitle    string `json:"audiobook_title"`
	ChapterURI   string `json:"audiobook_chapter_uri"`
	ChapterTitle string `json:"audiobook_chapter_title"`
}

// Summary counts what happened to the raw records during a load.
type Summary struct {
	Files               int
	Kept                int
	SkippedMalformed    int
	SkippedUnclassified int
	FilteredNoise       int
}

func (s *Summary) add(other Summary) {
	s.Kept += other.Kept
	s.SkippedMalformed += other.SkippedMalformed
	s.SkippedUnclassified += other.SkippedUnclassified
	s.FilteredNoise += other.FilteredNoise
}

// classify inspects the URI field groups in priority order and tags the
// record, or MediaUnknown when no group is present.
func classify(r rawRecord) MediaType {
	switch {
	case r.TrackURI != "":
		return MediaTrack
	case r.EpisodeURI != "":
		return MediaPodcastEpisode
	case r.BookURI != "":
		return MediaAudiobookChapter
	}
	return MediaUnknown
}

// normalize maps a raw record into a PlayEvent. Errors here mean the
// individual record is dropped, never the batch.
func normalize(r rawRecord, media MediaType) (PlayEvent, error) {
	endTime, err := time.Parse(time.RFC3339, r.Ts)
	if err != nil {
		return PlayEvent{}, fmt.Errorf("parsing ts %q: %w", r.Ts, err)
	}
	if r.MsPlayed < 0 {
		return PlayEvent{}, fmt.Errorf("negative ms_played %d", r.MsPlayed)
	}

	ev := PlayEvent{
		EndTime:  endTime.UTC(),
		MsPlayed: r.MsPlayed,
		Media:    media,
	}

	switch media {
	case MediaTrack:
		if r.TrackName == "" || r.ArtistName == "" {
			return PlayEvent{}, fmt.Errorf("track record missing name metadata")
		}
		ev.TrackName = r.TrackName
		ev.ArtistName = r.ArtistName
		ev.AlbumName = r.AlbumName
		ev.TrackURI = r.TrackURI
	case MediaPodcastEpisode:
		ev.ShowName = r.ShowName
		ev.EpisodeName = r.EpisodeName
		ev.EpisodeURI = r.EpisodeURI
	case MediaAudiobookChapter:
		ev.BookTitle = r.BookTitle
		ev.ChapterTitle = r.ChapterTitle
		ev.BookURI = r.BookURI
		ev.ChapterURI = r.ChapterURI
	}

	return ev, nil
}

// keep is the noise predicate: events shorter than the threshold are
// excluded from storage entirely.
func keep(ev PlayEvent, minMsPlayed int64) bool {
	return ev.MsPlayed >= minMsPlayed
}

// Parse decodes one history file's contents into normalized play events.
// A decode failure of the file itself is an error; individual bad records
// are skipped and counted in the summary.
func Parse(data []byte, minMsPlayed int64) ([]PlayEvent, Summary, error) {
	var raws []rawRecord
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, Summary{}, fmt.Errorf("decoding history file: %w", err)
	}

	var sum Summary
	events := make([]PlayEvent, 0, len(raws))
	for _, r := range raws {
		media := classify(r)
		if media == MediaUnknown {
			sum.SkippedUnclassified++
			continue
		}
		ev, err := normalize(r, media)
		if err != nil {
			sum.SkippedMalformed++
			continue
		}
		if !keep(ev, minMsPlayed) {
			sum.FilteredNoise++
			continue
		}
		events = append(events, ev)
		sum.Kept++
	}

	return events, sum, nil
}

// ReadDir discovers the history files in dir and parses them all. Files
// are independent; the order of the returned events is not meaningful.
func ReadDir(dir string, minMsPlayed int64) ([]PlayEvent, Summary, error) {
	paths, err := filepath.Glob(filepath.Join(dir, FilePattern))
	if err != nil {
		return nil, Summary{}, fmt.Errorf("globbing %s: %w", dir, err)
	}
	if len(paths) == 0 {
		return nil, Summary{}, fmt.Errorf("no %s files found in %s", FilePattern, dir)
	}

	var all []PlayEvent
	var sum Summary
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, Summary{}, fmt.Errorf("reading %s: %w", path, err)
		}
		events, fileSum, err := Parse(data, minMsPlayed)
		if err != nil {
			return nil, Summary{}, fmt.Errorf("parsing %s: %w", path, err)
		}
		log.Debug().
			Str("file", filepath.Base(path)).
			Int("kept", fileSum.Kept).
			Int("skipped_malformed", fileSum.SkippedMalformed).
			Int("skipped_unclassified", fileSum.SkippedUnclassified).
			Int("filtered_noise", fileSum.FilteredNoise).
			Msg("Parsed history file")
		all = append(all, events...)
		sum.add(fileSum)
		sum.Files++
	}

	return all, sum, nil
}
