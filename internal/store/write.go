package store

import (
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/avast/retry-go"
	"github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog/log"

	"github.com/nhamby/spata/internal/ingest"
)

const createSongs = `
CREATE TABLE songs (
  endTime TEXT NOT NULL,
  msPlayed INTEGER NOT NULL,
  artistName TEXT NOT NULL,
  trackName TEXT NOT NULL,
  albumName TEXT,
  trackUri TEXT
);
`

const createStreams = `
CREATE TABLE streams (
  endTime TEXT NOT NULL,
  msPlayed INTEGER NOT NULL,
  artistName TEXT NOT NULL,
  trackName TEXT NOT NULL
);
`

const createPodcasts = `
CREATE TABLE podcasts (
  endTime TEXT NOT NULL,
  msPlayed INTEGER NOT NULL,
  showName TEXT,
  episodeName TEXT,
  episodeUri TEXT
);
`

const createAudiobooks = `
CREATE TABLE audiobooks (
  endTime TEXT NOT NULL,
  msPlayed INTEGER NOT NULL,
  bookTitle TEXT,
  chapterTitle TEXT,
  bookUri TEXT,
  chapterUri TEXT
);
`

const createIndexes = `
CREATE INDEX idx_songs_endtime ON songs(endTime);
CREATE INDEX idx_songs_artist ON songs(artistName);
CREATE INDEX idx_songs_track ON songs(trackName);
CREATE INDEX idx_songs_album ON songs(albumName);
CREATE INDEX idx_streams_endtime ON streams(endTime);
CREATE INDEX idx_streams_artist ON streams(artistName);
CREATE INDEX idx_streams_track ON streams(trackName);
CREATE INDEX idx_podcasts_endtime ON podcasts(endTime);
CREATE INDEX idx_podcasts_show ON podcasts(showName);
CREATE INDEX idx_audiobooks_endtime ON audiobooks(endTime);
CREATE INDEX idx_audiobooks_book ON audiobooks(bookTitle);
`

// ReplaceAll replaces the whole dataset with the given events inside a
// single transaction, so readers see either the old dataset or the new
// one, never a partial load. The transaction is retried if another
// connection holds the database busy.
func (s *Store) ReplaceAll(events []ingest.PlayEvent) error {
	// Order across source files is not guaranteed; endTime is the
	// primary ordering key.
	sorted := make([]ingest.PlayEvent, len(events))
	copy(sorted, events)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].EndTime.Before(sorted[j].EndTime)
	})

	start := time.Now()
	err := retry.Do(
		func() error {
			return s.replaceAll(sorted)
		},
		retry.Attempts(5),
		retry.Delay(200*time.Millisecond),
		retry.RetryIf(isBusy),
	)
	if err != nil {
		return err
	}

	log.Info().
		Int("events", len(sorted)).
		Dur("elapsed", time.Since(start)).
		Msg("Replaced dataset")
	return nil
}

func isBusy(err error) bool {
	var serr sqlite3.Error
	if errors.As(err, &serr) {
		return serr.Code == sqlite3.ErrBusy || serr.Code == sqlite3.ErrLocked
	}
	return false
}

func (s *Store) replaceAll(events []ingest.PlayEvent) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"streams", "songs", "podcasts", "audiobooks"} {
		if _, err := tx.Exec("DROP TABLE IF EXISTS " + table); err != nil {
			return fmt.Errorf("dropping %s: %w", table, err)
		}
	}
	for _, stmt := range []string{createSongs, createStreams, createPodcasts, createAudiobooks} {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("creating tables: %w", err)
		}
	}

	if err := insertEvents(tx, events); err != nil {
		return err
	}

	if _, err := tx.Exec(createIndexes); err != nil {
		return fmt.Errorf("creating indexes: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

func insertEvents(tx *sql.Tx, events []ingest.PlayEvent) error {
	insertSong, err := tx.Prepare(
		"INSERT INTO songs (endTime, msPlayed, artistName, trackName, albumName, trackUri) VALUES (?, ?, ?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("preparing songs insert: %w", err)
	}
	defer insertSong.Close()

	insertStream, err := tx.Prepare(
		"INSERT INTO streams (endTime, msPlayed, artistName, trackName) VALUES (?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("preparing streams insert: %w", err)
	}
	defer insertStream.Close()

	insertPodcast, err := tx.Prepare(
		"INSERT INTO podcasts (endTime, msPlayed, showName, episodeName, episodeUri) VALUES (?, ?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("preparing podcasts insert: %w", err)
	}
	defer insertPodcast.Close()

	insertAudiobook, err := tx.Prepare(
		"INSERT INTO audiobooks (endTime, msPlayed, bookTitle, chapterTitle, bookUri, chapterUri) VALUES (?, ?, ?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("preparing audiobooks insert: %w", err)
	}
	defer insertAudiobook.Close()

	for _, ev := range events {
		endTime := ev.EndTime.UTC().Format(timeLayout)
		switch ev.Media {
		case ingest.MediaTrack:
			if _, err := insertSong.Exec(endTime, ev.MsPlayed, ev.ArtistName, ev.TrackName, ev.AlbumName, ev.TrackURI); err != nil {
				return fmt.Errorf("inserting song %q: %w", ev.TrackName, err)
			}
			// Compatibility projection for simple queries against the
			// legacy streams table.
			if _, err := insertStream.Exec(endTime, ev.MsPlayed, ev.ArtistName, ev.TrackName); err != nil {
				return fmt.Errorf("inserting stream %q: %w", ev.TrackName, err)
			}
		case ingest.MediaPodcastEpisode:
			if _, err := insertPodcast.Exec(endTime, ev.MsPlayed, ev.ShowName, ev.EpisodeName, ev.EpisodeURI); err != nil {
				return fmt.Errorf("inserting podcast episode %q: %w", ev.EpisodeName, err)
			}
		case ingest.MediaAudiobookChapter:
			if _, err := insertAudiobook.Exec(endTime, ev.MsPlayed, ev.BookTitle, ev.ChapterTitle, ev.BookURI, ev.ChapterURI); err != nil {
				return fmt.Errorf("inserting audiobook chapter %q: %w", ev.ChapterTitle, err)
			}
		default:
			return fmt.Errorf("event with media type %v cannot be stored", ev.Media)
		}
	}
	return nil
}
