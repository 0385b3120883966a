package store

import (
	"fmt"
	"strings"
)

// ArtistStat is one ranked artist with total listening time.
type ArtistStat struct {
	ArtistName string `json:"artistName"`
	DurationMs int64  `json:"duration_ms"`
}

// SongStat is one ranked (track, artist) pair with total listening time.
type SongStat struct {
	TrackName  string `json:"trackName"`
	ArtistName string `json:"artistName"`
	DurationMs int64  `json:"duration_ms"`
}

// Stats is the filtered aggregate summary.
type Stats struct {
	TotalMsPlayed int64        `json:"total_ms_played"`
	TopArtists    []ArtistStat `json:"top_artists"`
	TopSongs      []SongStat   `json:"top_songs"`
}

// statsFilter builds the WHERE clause shared by the stats queries.
// Seasons, when present, override months: they are alternative
// granularities of the same axis, never intersected.
func statsFilter(years, months, seasons []string) (string, []any) {
	conditions := []string{}
	var args []any

	if len(years) > 0 {
		cond, condArgs := inClause("strftime('%Y', endTime)", years)
		conditions = append(conditions, cond)
		args = append(args, condArgs...)
	}

	if len(seasons) > 0 {
		cond, condArgs := inClause("strftime('%m', endTime)", monthsForSeasons(seasons))
		conditions = append(conditions, cond)
		args = append(args, condArgs...)
	} else if len(months) > 0 {
		cond, condArgs := inClause("strftime('%m', endTime)", months)
		conditions = append(conditions, cond)
		args = append(args, condArgs...)
	}

	return whereClause(conditions), args
}

// GetStats returns total listening time and the top artists and songs
// under the given filters. Empty filter sets leave that dimension
// unrestricted.
func (s *Store) GetStats(years, months, seasons []string) (Stats, error) {
	if err := s.ready(); err != nil {
		return Stats{}, err
	}

	where, args := statsFilter(years, months, seasons)
	stats := Stats{TopArtists: []ArtistStat{}, TopSongs: []SongStat{}}

	totalQuery := fmt.Sprintf("SELECT COALESCE(SUM(msPlayed), 0) FROM songs %s", where)
	if err := s.db.QueryRow(totalQuery, args...).Scan(&stats.TotalMsPlayed); err != nil {
		return Stats{}, fmt.Errorf("querying total listening time: %w", err)
	}

	artistsQuery := fmt.Sprintf(`
		SELECT artistName, SUM(msPlayed) AS duration_ms
		FROM songs
		%s
		GROUP BY artistName
		HAVING artistName <> ''
		ORDER BY duration_ms DESC, artistName ASC
		LIMIT %d`, where, topLimit)
	rows, err := s.db.Query(artistsQuery, args...)
	if err != nil {
		return Stats{}, fmt.Errorf("querying top artists: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var a ArtistStat
		if err := rows.Scan(&a.ArtistName, &a.DurationMs); err != nil {
			return Stats{}, fmt.Errorf("scanning artist: %w", err)
		}
		stats.TopArtists = append(stats.TopArtists, a)
	}
	if err := rows.Err(); err != nil {
		return Stats{}, err
	}

	songsQuery := fmt.Sprintf(`
		SELECT trackName, artistName, SUM(msPlayed) AS duration_ms
		FROM songs
		%s
		GROUP BY trackName, artistName
		HAVING trackName <> '' AND artistName <> ''
		ORDER BY duration_ms DESC, artistName ASC, trackName ASC
		LIMIT %d`, where, topLimit)
	songRows, err := s.db.Query(songsQuery, args...)
	if err != nil {
		return Stats{}, fmt.Errorf("querying top songs: %w", err)
	}
	defer songRows.Close()
	for songRows.Next() {
		var song SongStat
		if err := songRows.Scan(&song.TrackName, &song.ArtistName, &song.DurationMs); err != nil {
			return Stats{}, fmt.Errorf("scanning song: %w", err)
		}
		stats.TopSongs = append(stats.TopSongs, song)
	}
	return stats, songRows.Err()
}

// CalendarCell is one date with at least one qualifying event. Dates
// with no events are omitted; the consumer fills visual gaps.
type CalendarCell struct {
	Date        string `json:"date"`
	StreamCount int64  `json:"stream_count"`
	TotalMs     int64  `json:"total_ms"`
}

// GetCalendarData groups track events by UTC calendar date, optionally
// restricted to one year and/or month.
func (s *Store) GetCalendarData(year, month string) ([]CalendarCell, error) {
	if year != "" && !yearPattern.MatchString(year) {
		return nil, invalidArg("year", fmt.Sprintf("%q does not match YYYY", year))
	}
	if month != "" && !monthPattern.MatchString(month) {
		return nil, invalidArg("month", fmt.Sprintf("%q is not a month between 01 and 12", month))
	}
	if err := s.ready(); err != nil {
		return nil, err
	}

	conditions := []string{}
	var args []any
	if year != "" {
		conditions = append(conditions, "strftime('%Y', endTime) = ?")
		args = append(args, year)
	}
	if month != "" {
		conditions = append(conditions, "strftime('%m', endTime) = ?")
		args = append(args, month)
	}

	query := fmt.Sprintf(`
		SELECT DATE(endTime) AS date, COUNT(*) AS stream_count, SUM(msPlayed) AS total_ms
		FROM songs
		%s
		GROUP BY DATE(endTime)
		ORDER BY date`, whereClause(conditions))

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying calendar data: %w", err)
	}
	defer rows.Close()

	cells := []CalendarCell{}
	for rows.Next() {
		var cell CalendarCell
		if err := rows.Scan(&cell.Date, &cell.StreamCount, &cell.TotalMs); err != nil {
			return nil, fmt.Errorf("scanning calendar cell: %w", err)
		}
		cells = append(cells, cell)
	}
	return cells, rows.Err()
}

// ArtistMatch is one artist whose name matched a search.
type ArtistMatch struct {
	Name      string `json:"name"`
	PlayCount int64  `json:"play_count"`
}

// TrackMatch is one (track, artist) pair that matched a search.
type TrackMatch struct {
	TrackName  string `json:"trackName"`
	ArtistName string `json:"artistName"`
	PlayCount  int64  `json:"play_count"`
}

// SearchResults holds both halves of a search response.
type SearchResults struct {
	Artists []ArtistMatch `json:"artists"`
	Tracks  []TrackMatch  `json:"tracks"`
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// Search finds artists and tracks whose names contain the query,
// case-insensitively, ranked by play count. A blank query returns empty
// results without touching the database.
func (s *Store) Search(query string) (SearchResults, error) {
	results := SearchResults{Artists: []ArtistMatch{}, Tracks: []TrackMatch{}}
	if strings.TrimSpace(query) == "" {
		return results, nil
	}
	if err := s.ready(); err != nil {
		return SearchResults{}, err
	}

	pattern := "%" + likeEscaper.Replace(query) + "%"

	artistQuery := fmt.Sprintf(`
		SELECT artistName, COUNT(*) AS play_count
		FROM songs
		WHERE artistName LIKE ? ESCAPE '\'
		GROUP BY artistName
		ORDER BY play_count DESC, artistName ASC
		LIMIT %d`, topLimit)
	rows, err := s.db.Query(artistQuery, pattern)
	if err != nil {
		return SearchResults{}, fmt.Errorf("searching artists: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var m ArtistMatch
		if err := rows.Scan(&m.Name, &m.PlayCount); err != nil {
			return SearchResults{}, fmt.Errorf("scanning artist match: %w", err)
		}
		results.Artists = append(results.Artists, m)
	}
	if err := rows.Err(); err != nil {
		return SearchResults{}, err
	}

	trackQuery := fmt.Sprintf(`
		SELECT trackName, artistName, COUNT(*) AS play_count
		FROM songs
		WHERE trackName LIKE ? ESCAPE '\' OR artistName LIKE ? ESCAPE '\'
		GROUP BY trackName, artistName
		ORDER BY play_count DESC, artistName ASC, trackName ASC
		LIMIT %d`, topLimit)
	trackRows, err := s.db.Query(trackQuery, pattern, pattern)
	if err != nil {
		return SearchResults{}, fmt.Errorf("searching tracks: %w", err)
	}
	defer trackRows.Close()
	for trackRows.Next() {
		var m TrackMatch
		if err := trackRows.Scan(&m.TrackName, &m.ArtistName, &m.PlayCount); err != nil {
			return SearchResults{}, fmt.Errorf("scanning track match: %w", err)
		}
		results.Tracks = append(results.Tracks, m)
	}
	return results, trackRows.Err()
}
