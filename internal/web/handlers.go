package web

import (
	"errors"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/nhamby/spata/internal/store"
)

// Handlers contains the HTTP handlers for the analytics API.
type Handlers struct {
	store *store.Store
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(s *store.Store) *Handlers {
	return &Handlers{store: s}
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps the store's error taxonomy onto HTTP status codes.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case store.IsInvalidArgument(err):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	case errors.Is(err, store.ErrUnavailable):
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "dataset not loaded - run load first"})
	default:
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

// Health reports whether the dataset is queryable (GET /api/health).
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	total, err := h.store.TotalStreams()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":        "healthy",
		"total_streams": total,
	})
}

// AvailableYears handles GET /api/available-years.
func (h *Handlers) AvailableYears(w http.ResponseWriter, r *http.Request) {
	years, err := h.store.ListYears()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"years": years})
}

// AvailableMonths handles GET /api/available-months?years=....
func (h *Handlers) AvailableMonths(w http.ResponseWriter, r *http.Request) {
	months, err := h.store.ListMonths(r.URL.Query()["years"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"months": months})
}

// AvailableSeasons handles GET /api/available-seasons?years=....
func (h *Handlers) AvailableSeasons(w http.ResponseWriter, r *http.Request) {
	seasons, err := h.store.ListSeasons(r.URL.Query()["years"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"seasons": seasons})
}

// Stats handles GET /api/stats?years=&months=&seasons=.
func (h *Handlers) Stats(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	stats, err := h.store.GetStats(q["years"], q["months"], q["seasons"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// CalendarData handles GET /api/calendar-data?year=&month=.
func (h *Handlers) CalendarData(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	cells, err := h.store.GetCalendarData(q.Get("year"), q.Get("month"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"calendar_data": cells})
}

// DailySongs handles GET /api/daily-songs?date=.
func (h *Handlers) DailySongs(w http.ResponseWriter, r *http.Request) {
	daily, err := h.store.GetDailySongs(r.URL.Query().Get("date"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, daily)
}

// Search handles GET /api/search?query=.
func (h *Handlers) Search(w http.ResponseWriter, r *http.Request) {
	results, err := h.store.Search(r.URL.Query().Get("query"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, results)
}

// Trends handles GET /api/trends?artist_name=&track_name=&granularity=
// &start_date=&end_date=. Granularity defaults to month.
func (h *Handlers) Trends(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	granularity := q.Get("granularity")
	if granularity == "" {
		granularity = "month"
	}
	series, err := h.store.GetTrends(
		q.Get("artist_name"),
		q.Get("track_name"),
		granularity,
		q.Get("start_date"),
		q.Get("end_date"),
	)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, series)
}
