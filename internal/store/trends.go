package store

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// TrendPoint is one time bucket in a trend series.
type TrendPoint struct {
	Period    string `json:"period"`
	PlayCount int64  `json:"play_count"`
	TotalMs   int64  `json:"total_ms"`
}

// TrendSeries is the bucketed listening history for one artist or track.
// Buckets with zero events are omitted; filling gaps for contiguous
// charting is the presentation layer's job.
type TrendSeries struct {
	ArtistName  string       `json:"artist_name"`
	TrackName   string       `json:"track_name,omitempty"`
	Granularity string       `json:"granularity"`
	Data        []TrendPoint `json:"data"`
}

var granularities = map[string]bool{
	"day":   true,
	"week":  true,
	"month": true,
	"year":  true,
}

// bucketPeriod formats t into its bucket label. Weeks are ISO 8601
// weeks; SQLite's %W week numbering is not, so bucketing happens here
// rather than in SQL.
func bucketPeriod(t time.Time, granularity string) string {
	switch granularity {
	case "day":
		return t.Format("2006-01-02")
	case "week":
		year, week := t.ISOWeek()
		return fmt.Sprintf("%04d-W%02d", year, week)
	case "month":
		return t.Format("2006-01")
	default: // year
		return t.Format("2006")
	}
}

// GetTrends buckets an artist's (or one track's) events into periods of
// the given granularity. An artist filter is required; a track filter
// narrows within the artist. startDate/endDate bound the events' UTC
// dates inclusively.
func (s *Store) GetTrends(artistName, trackName, granularity, startDate, endDate string) (TrendSeries, error) {
	if strings.TrimSpace(artistName) == "" {
		if strings.TrimSpace(trackName) != "" {
			return TrendSeries{}, invalidArg("artist_name", "track_name requires artist_name")
		}
		return TrendSeries{}, invalidArg("artist_name", "an artist filter is required")
	}
	if !granularities[granularity] {
		return TrendSeries{}, invalidArg("granularity",
			fmt.Sprintf("%q is not one of day, week, month, year", granularity))
	}
	if startDate != "" {
		if err := validateDate("start_date", startDate); err != nil {
			return TrendSeries{}, err
		}
	}
	if endDate != "" {
		if err := validateDate("end_date", endDate); err != nil {
			return TrendSeries{}, err
		}
	}
	if err := s.ready(); err != nil {
		return TrendSeries{}, err
	}

	conditions := []string{"artistName = ?"}
	args := []any{artistName}
	if trackName != "" {
		conditions = append(conditions, "trackName = ?")
		args = append(args, trackName)
	}
	if startDate != "" {
		conditions = append(conditions, "DATE(endTime) >= ?")
		args = append(args, startDate)
	}
	if endDate != "" {
		conditions = append(conditions, "DATE(endTime) <= ?")
		args = append(args, endDate)
	}

	query := fmt.Sprintf(`
		SELECT endTime, msPlayed
		FROM songs
		%s
		ORDER BY endTime ASC`, whereClause(conditions))

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return TrendSeries{}, fmt.Errorf("querying trends: %w", err)
	}
	defer rows.Close()

	buckets := map[string]*TrendPoint{}
	for rows.Next() {
		var endTime string
		var msPlayed int64
		if err := rows.Scan(&endTime, &msPlayed); err != nil {
			return TrendSeries{}, fmt.Errorf("scanning trend row: %w", err)
		}
		t, err := time.Parse(timeLayout, endTime)
		if err != nil {
			return TrendSeries{}, fmt.Errorf("parsing stored endTime %q: %w", endTime, err)
		}
		period := bucketPeriod(t, granularity)
		point, ok := buckets[period]
		if !ok {
			point = &TrendPoint{Period: period}
			buckets[period] = point
		}
		point.PlayCount++
		point.TotalMs += msPlayed
	}
	if err := rows.Err(); err != nil {
		return TrendSeries{}, err
	}

	series := TrendSeries{
		ArtistName:  artistName,
		TrackName:   trackName,
		Granularity: granularity,
		Data:        make([]TrendPoint, 0, len(buckets)),
	}
	for _, point := range buckets {
		series.Data = append(series.Data, *point)
	}
	sort.Slice(series.Data, func(i, j int) bool {
		return series.Data[i].Period < series.Data[j].Period
	})
	return series, nil
}
