package store

import (
	"fmt"
	"regexp"
	"time"
)

var (
	yearPattern  = regexp.MustCompile(`^\d{4}$`)
	monthPattern = regexp.MustCompile(`^(0[1-9]|1[0-2])$`)
	datePattern  = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
)

// validateDate checks a YYYY-MM-DD parameter value.
func validateDate(param, value string) error {
	if !datePattern.MatchString(value) {
		return invalidArg(param, fmt.Sprintf("%q does not match YYYY-MM-DD", value))
	}
	if _, err := time.Parse("2006-01-02", value); err != nil {
		return invalidArg(param, fmt.Sprintf("%q is not a valid date", value))
	}
	return nil
}

// YearMonth is one distinct (year, month) pair present in the dataset.
type YearMonth struct {
	Year  string `json:"year"`
	Month string `json:"month"`
}

// ListYears returns the distinct years present, descending.
func (s *Store) ListYears() ([]string, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}

	rows, err := s.db.Query(`
		SELECT DISTINCT strftime('%Y', endTime) AS year
		FROM songs
		WHERE year IS NOT NULL
		ORDER BY year DESC`)
	if err != nil {
		return nil, fmt.Errorf("querying years: %w", err)
	}
	defer rows.Close()

	years := []string{}
	for rows.Next() {
		var year string
		if err := rows.Scan(&year); err != nil {
			return nil, fmt.Errorf("scanning year: %w", err)
		}
		years = append(years, year)
	}
	return years, rows.Err()
}

// ListMonths returns the distinct (year, month) pairs present,
// restricted to the given years when non-empty, newest first.
func (s *Store) ListMonths(years []string) ([]YearMonth, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}

	conditions := []string{}
	var args []any
	if len(years) > 0 {
		cond, condArgs := inClause("strftime('%Y', endTime)", years)
		conditions = append(conditions, cond)
		args = append(args, condArgs...)
	}

	query := fmt.Sprintf(`
		SELECT DISTINCT
			strftime('%%Y', endTime) AS year,
			strftime('%%m', endTime) AS month
		FROM songs
		%s
		ORDER BY year DESC, month DESC`, whereClause(conditions))

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying months: %w", err)
	}
	defer rows.Close()

	months := []YearMonth{}
	for rows.Next() {
		var ym YearMonth
		if err := rows.Scan(&ym.Year, &ym.Month); err != nil {
			return nil, fmt.Errorf("scanning month: %w", err)
		}
		months = append(months, ym)
	}
	return months, rows.Err()
}

// ListSeasons returns the seasons present within the given years (all
// years when empty), in the fixed spring, summer, fall, winter order.
func (s *Store) ListSeasons(years []string) ([]string, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}

	conditions := []string{}
	var args []any
	if len(years) > 0 {
		cond, condArgs := inClause("strftime('%Y', endTime)", years)
		conditions = append(conditions, cond)
		args = append(args, condArgs...)
	}

	query := fmt.Sprintf(`
		SELECT DISTINCT strftime('%%m', endTime) AS month
		FROM songs
		%s
		ORDER BY month`, whereClause(conditions))

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying seasons: %w", err)
	}
	defer rows.Close()

	present := map[string]bool{}
	for rows.Next() {
		var month string
		if err := rows.Scan(&month); err != nil {
			return nil, fmt.Errorf("scanning month: %w", err)
		}
		if season := seasonOf(month); season != "" {
			present[season] = true
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	seasons := []string{}
	for _, season := range seasonOrder {
		if present[season] {
			seasons = append(seasons, season)
		}
	}
	return seasons, nil
}

// Song is one stored track event with its full metadata.
type Song struct {
	TrackName  string `json:"trackName"`
	ArtistName string `json:"artistName"`
	AlbumName  string `json:"albumName"`
	MsPlayed   int64  `json:"msPlayed"`
	EndTime    string `json:"endTime"`
}

// DailySongs lists every track event on one calendar date, in play order.
type DailySongs struct {
	Date      string `json:"date"`
	SongCount int    `json:"song_count"`
	Songs     []Song `json:"songs"`
}

// GetDailySongs returns the tracks played on the given UTC date
// (YYYY-MM-DD), ordered by endTime ascending.
func (s *Store) GetDailySongs(date string) (DailySongs, error) {
	if err := validateDate("date", date); err != nil {
		return DailySongs{}, err
	}
	if err := s.ready(); err != nil {
		return DailySongs{}, err
	}

	rows, err := s.db.Query(`
		SELECT trackName, artistName, albumName, msPlayed, endTime
		FROM songs
		WHERE DATE(endTime) = ?
		ORDER BY endTime ASC`, date)
	if err != nil {
		return DailySongs{}, fmt.Errorf("querying daily songs: %w", err)
	}
	defer rows.Close()

	result := DailySongs{Date: date, Songs: []Song{}}
	for rows.Next() {
		var song Song
		if err := rows.Scan(&song.TrackName, &song.ArtistName, &song.AlbumName, &song.MsPlayed, &song.EndTime); err != nil {
			return DailySongs{}, fmt.Errorf("scanning song: %w", err)
		}
		result.Songs = append(result.Songs, song)
	}
	if err := rows.Err(); err != nil {
		return DailySongs{}, err
	}
	result.SongCount = len(result.Songs)
	return result, nil
}
