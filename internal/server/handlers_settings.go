package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/claude/repcycle/internal/ingest"
	"github.com/claude/repcycle/internal/storage"
)

func (s *Server) handleImportLogs(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if l := r.URL.Query().Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	logs, err := s.db.QueryImportLogs(r.Context(), userIDFromContext(r), limit)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if logs == nil {
		logs = []storage.ImportLog{}
	}
	writeJSON(w, http.StatusOK, logs)
}

// logImport records an import operation's result to the import_logs table.
func (s *Server) logImport(uid int, source, filename string, result *ingest.Result, importErr error, durationMs int) {
	log := storage.ImportLog{
		UserID:     uid,
		Source:     source,
		Status:     "success",
		DurationMs: &durationMs,
	}
	if filename != "" {
		log.Filename = &filename
	}
	if importErr != nil {
		log.Status = "error"
		msg := importErr.Error()
		log.ErrorMessage = &msg
	}
	if result != nil {
		log.RecordsTotal = result.SetsReceived
		log.RecordsCreated = result.LogsInserted
		log.RecordsSkipped = result.Skipped()
		if meta, err := json.Marshal(map[string]any{
			"sessions":            result.SessionsReceived,
			"warmups_skipped":     result.WarmupsSkipped,
			"logs_replaced":       result.LogsReplaced,
			"unmatched_exercises": result.Unmatched,
		}); err == nil {
			raw := json.RawMessage(meta)
			log.Metadata = &raw
		}
	}

	ctx, cancel := contextWithTimeout()
	defer cancel()

	if _, err := s.db.InsertImportLog(ctx, log); err != nil {
		s.log.Error("failed to log import", "source", source, "error", err)
	}
}

// contextWithTimeout returns a background context with a 5-second timeout for async logging.
func contextWithTimeout() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 5*time.Second) //nolint:mnd
}
