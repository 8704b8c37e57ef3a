package server

import (
	"net/http"

	"github.com/claude/repcycle/internal/models"
	"github.com/claude/repcycle/internal/split"
)

func (s *Server) handleListSplits(w http.ResponseWriter, r *http.Request) {
	splits, err := s.db.ListSplits(r.Context(), userIDFromContext(r))
	if err != nil {
		s.writeError(w, err)
		return
	}
	if splits == nil {
		splits = []models.SplitRow{}
	}
	writeJSON(w, http.StatusOK, splits)
}

type splitDetail struct {
	Split    *models.SplitRow       `json:"split"`
	Analysis []split.MuscleAnalysis `json:"analysis"`
}

func (s *Server) handleGetSplit(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	uid := userIDFromContext(r)

	row, err := s.db.GetSplitRow(r.Context(), id, uid)
	if err != nil {
		s.writeError(w, err)
		return
	}
	prios, err := s.db.GetPriorities(r.Context(), uid)
	if err != nil {
		s.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, splitDetail{
		Split:    row,
		Analysis: split.Analyze(row.ToSplit(), prios),
	})
}

func (s *Server) handleActiveSplit(w http.ResponseWriter, r *http.Request) {
	row, err := s.db.GetActiveSplitRow(r.Context(), userIDFromContext(r))
	if err != nil {
		s.writeError(w, err)
		return
	}
	if row == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no active split"})
		return
	}
	writeJSON(w, http.StatusOK, row)
}

func (s *Server) handleCreateSplit(w http.ResponseWriter, r *http.Request) {
	var in models.SplitInput
	if !decodeJSON(w, r, &in) {
		return
	}
	row, err := s.db.CreateSplit(r.Context(), userIDFromContext(r), in)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, row)
}

func (s *Server) handleUpdateSplit(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	var in models.SplitInput
	if !decodeJSON(w, r, &in) {
		return
	}
	row, err := s.db.UpdateSplit(r.Context(), id, userIDFromContext(r), in)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, row)
}

func (s *Server) handleDeleteSplit(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	if err := s.db.DeleteSplit(r.Context(), id, userIDFromContext(r)); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type activateRequest struct {
	StartDate string `json:"start_date"`
}

func (s *Server) handleActivateSplit(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	var body activateRequest
	if !decodeJSON(w, r, &body) {
		return
	}
	if body.StartDate == "" {
		s.writeError(w, split.ErrNoStartDate)
		return
	}
	t, _, err := parseTime(body.StartDate)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid start_date"})
		return
	}

	row, err := s.db.ActivateSplit(r.Context(), id, userIDFromContext(r), today(t))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, row)
}

func (s *Server) handleProgress(w http.ResponseWriter, r *http.Request) {
	date, err := parseDate(r, "date", today(s.now()))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	report, err := s.progress.DayProgress(r.Context(), userIDFromContext(r), date)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.metrics.ObserveReport(report)
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleProgressRange(w http.ResponseWriter, r *http.Request) {
	end, err := parseDate(r, "end", today(s.now()))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	start, err := parseDate(r, "start", end.AddDate(0, 0, -6))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if end.Before(start) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "end is before start"})
		return
	}

	days, err := s.progress.Range(r.Context(), userIDFromContext(r), start, end)
	if err != nil {
		s.writeError(w, err)
		return
	}
	for _, d := range days {
		s.metrics.ObserveReport(d.Report)
	}
	writeJSON(w, http.StatusOK, days)
}
