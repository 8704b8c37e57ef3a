package alpha

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/claude/repcycle/internal/ingest"
	"github.com/claude/repcycle/internal/models"
	"github.com/claude/repcycle/internal/storage"
)

// Store is the storage the provider writes to.
type Store interface {
	WorkoutIDsByName(ctx context.Context, userID int) (map[string]int64, error)
	ReplaceSessionLogs(ctx context.Context, userID int, source string, sessionStart time.Time, logs []models.WorkoutLogInput) (int64, int, error)
}

// Provider processes Alpha Progression CSV exports.
type Provider struct {
	db  Store
	log *slog.Logger
}

var _ ingest.Provider = (*Provider)(nil)

// NewProvider creates a new Alpha Progression ingest provider.
func NewProvider(db Store, log *slog.Logger) *Provider {
	return &Provider{db: db, log: log}
}

// Ingest parses a CSV export and logs every working set against the
// workout definition with the same name. Each session replaces the logs a
// previous import of it created.
func (p *Provider) Ingest(ctx context.Context, r io.Reader, userID int) (*ingest.Result, error) {
	sessions, err := Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parsing CSV: %w", err)
	}

	workouts, err := p.db.WorkoutIDsByName(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("loading workouts: %w", err)
	}

	result := &ingest.Result{SessionsReceived: len(sessions)}
	unmatched := make(map[string]bool)

	for _, s := range sessions {
		logs := SessionLogs(s, workouts, unmatched)
		for _, ex := range s.Exercises {
			result.SetsReceived += len(ex.Sets)
			result.WarmupsSkipped += len(ex.Warmups)
		}

		replaced, inserted, err := p.db.ReplaceSessionLogs(ctx, userID, storage.SourceAlpha, s.StartedAt, logs)
		if err != nil {
			return nil, fmt.Errorf("storing session %s: %w", s.StartedAt.Format(time.DateTime), err)
		}
		result.LogsReplaced += replaced
		result.LogsInserted += inserted
		p.log.Debug("alpha session imported", "title", s.Title, "started", s.StartedAt, "logs", inserted, "replaced", replaced)
	}

	for name := range unmatched {
		result.Unmatched = append(result.Unmatched, name)
	}
	sort.Strings(result.Unmatched)
	if len(result.Unmatched) > 0 {
		result.Message = fmt.Sprintf("%d exercises have no matching workout", len(result.Unmatched))
	}
	return result, nil
}

// SessionLogs converts the working sets of a session into workout logs.
// workouts maps lowercased workout names to IDs; exercise names without a
// match are added to unmatched.
func SessionLogs(s models.AlphaSession, workouts map[string]int64, unmatched map[string]bool) []models.WorkoutLogInput {
	var logs []models.WorkoutLogInput
	for _, ex := range s.Exercises {
		id, ok := workouts[strings.ToLower(strings.TrimSpace(ex.Name))]
		if !ok {
			if len(ex.Sets) > 0 {
				unmatched[ex.Name] = true
			}
			continue
		}
		for _, set := range ex.Sets {
			weight := set.WeightKg
			reps := set.Reps
			in := models.WorkoutLogInput{
				WorkoutID: id,
				Weight:    &weight,
				Reps:      &reps,
				DateTime:  s.StartedAt,
			}
			if set.RIR != nil && *set.RIR >= 0 && *set.RIR <= 10 {
				rir := *set.RIR
				in.RIR = &rir
			}
			logs = append(logs, in)
		}
	}
	return logs
}
