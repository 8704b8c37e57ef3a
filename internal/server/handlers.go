package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/claude/repcycle/internal/models"
	"github.com/claude/repcycle/internal/progress"
	"github.com/claude/repcycle/internal/split"
	"github.com/claude/repcycle/internal/storage"
)

func (s *Server) handleListMuscles(w http.ResponseWriter, r *http.Request) {
	muscles, err := s.db.ListMuscles(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, storage.GroupMuscles(muscles))
}

func (s *Server) handleListPriorities(w http.ResponseWriter, r *http.Request) {
	prios, err := s.db.ListPriorities(r.Context(), userIDFromContext(r))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, prios)
}

type priorityUpdate struct {
	MuscleName string `json:"muscle_name"`
	Priority   int    `json:"priority"`
}

func (s *Server) handleUpsertPriorities(w http.ResponseWriter, r *http.Request) {
	var body []priorityUpdate
	if !decodeJSON(w, r, &body) {
		return
	}

	prios := make(map[string]int, len(body))
	for _, p := range body {
		prios[p.MuscleName] = p.Priority
	}

	uid := userIDFromContext(r)
	if err := s.db.UpsertPriorities(r.Context(), uid, prios); err != nil {
		s.writeError(w, err)
		return
	}

	list, err := s.db.ListPriorities(r.Context(), uid)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleAlphaIngest(w http.ResponseWriter, r *http.Request) {
	uid := userIDFromContext(r)
	start := time.Now()

	result, err := s.alpha.Ingest(r.Context(), r.Body, uid)
	s.logImport(uid, storage.SourceAlpha, r.Header.Get("X-Filename"), result, err, int(time.Since(start).Milliseconds()))
	if err != nil {
		s.log.Error("alpha ingest error", "error", err)
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	if s.metrics != nil {
		s.metrics.CounterIngestedLogs.WithLabelValues(storage.SourceAlpha).Add(float64(result.LogsInserted))
	}
	writeJSON(w, http.StatusOK, result)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps domain and storage errors onto HTTP status codes.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := errorStatus(err)
	if status == http.StatusInternalServerError {
		s.log.Error("request failed", "error", err)
		writeJSON(w, status, map[string]string{"error": "internal error"})
		return
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func errorStatus(err error) int {
	var pgErr *pgconn.PgError
	switch {
	case errors.Is(err, progress.ErrNoActiveSplit),
		errors.Is(err, split.ErrInvalidDateRange),
		errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, split.ErrEmptySplit),
		errors.Is(err, split.ErrNoStartDate):
		return http.StatusUnprocessableEntity
	case errors.Is(err, models.ErrInvalidInput),
		errors.Is(err, storage.ErrUnknownMuscle),
		errors.Is(err, progress.ErrRangeTooLarge):
		return http.StatusBadRequest
	case errors.As(err, &pgErr) && pgErr.Code == "23505":
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return false
	}
	return true
}

func parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid ID"})
		return 0, false
	}
	return id, true
}

// parseTime accepts RFC 3339 or a bare date. dateOnly reports which one
// matched.
func parseTime(s string) (t time.Time, dateOnly bool, err error) {
	t, err = time.Parse(time.RFC3339, s)
	if err == nil {
		return t, false, nil
	}
	t, err = time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("invalid time %q", s)
	}
	return t, true, nil
}

// parseDate reads a calendar date query parameter, falling back to def.
func parseDate(r *http.Request, name string, def time.Time) (time.Time, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def, nil
	}
	t, _, err := parseTime(v)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid %s: %w", name, err)
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
}

// parseTimeRange reads start and end query parameters. Without start the
// range is the last 7 days. A date-only end includes that whole day.
func parseTimeRange(r *http.Request, now time.Time) (start, end time.Time, err error) {
	startStr := r.URL.Query().Get("start")
	endStr := r.URL.Query().Get("end")

	if startStr == "" {
		return now.AddDate(0, 0, -7), now, nil
	}

	start, _, err = parseTime(startStr)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}

	if endStr == "" {
		return start, now, nil
	}
	end, dateOnly, err := parseTime(endStr)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if dateOnly {
		end = end.Add(24*time.Hour - time.Nanosecond)
	}
	return start, end, nil
}

func today(now time.Time) time.Time {
	y, m, d := now.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
