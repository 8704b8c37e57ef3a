// Package importer applies a YAML training plan directly to the database.
package importer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/claude/repcycle/internal/models"
	"github.com/claude/repcycle/internal/storage"
)

// Store is the storage an import writes through. *storage.DB satisfies it.
type Store interface {
	UpsertPriorities(ctx context.Context, userID int, prios map[string]int) error
	WorkoutIDsByName(ctx context.Context, userID int) (map[string]int64, error)
	CreateWorkout(ctx context.Context, userID int, in models.WorkoutInput) (*models.WorkoutRow, error)
	UpdateWorkout(ctx context.Context, id int64, userID int, in models.WorkoutInput) (*models.WorkoutRow, error)
	ListSplits(ctx context.Context, userID int) ([]models.SplitRow, error)
	CreateSplit(ctx context.Context, userID int, in models.SplitInput) (*models.SplitRow, error)
	UpdateSplit(ctx context.Context, id int64, userID int, in models.SplitInput) (*models.SplitRow, error)
	ActivateSplit(ctx context.Context, id int64, userID int, startDate time.Time) (*models.SplitRow, error)
	InsertImportLog(ctx context.Context, log storage.ImportLog) (int64, error)
	UpdateImportLog(ctx context.Context, id int64, log storage.ImportLog) error
}

var _ Store = (*storage.DB)(nil)

// Stats tracks import progress.
type Stats struct {
	PrioritiesSet int `json:"priorities_set"`

	WorkoutsCreated int `json:"workouts_created"`
	WorkoutsUpdated int `json:"workouts_updated"`

	SplitsCreated int `json:"splits_created"`
	SplitsUpdated int `json:"splits_updated"`
	// ActivatedSplit is the name of the split activated by the plan, if any.
	ActivatedSplit string `json:"activated_split,omitempty"`
}

// Records returns how many plan entries were written.
func (s *Stats) Records() int {
	return s.PrioritiesSet + s.WorkoutsCreated + s.WorkoutsUpdated + s.SplitsCreated + s.SplitsUpdated
}

// Importer applies plans for one user. Workouts and splits that already
// exist by name (case-insensitive) are replaced, so re-running a plan is
// safe.
type Importer struct {
	db     Store
	log    *slog.Logger
	userID int
	dryRun bool
	stats  Stats
}

// New creates a new Importer.
func New(db Store, log *slog.Logger, userID int, dryRun bool) *Importer {
	return &Importer{db: db, log: log, userID: userID, dryRun: dryRun}
}

// ImportFile loads the plan at path and applies it, recording the run in
// import_logs unless this is a dry run.
func (imp *Importer) ImportFile(ctx context.Context, path string) (*Stats, error) {
	f, err := os.Open(path)
	if err != nil {
		return &imp.stats, err
	}
	defer f.Close()

	plan, err := LoadPlan(f)
	if err != nil {
		return &imp.stats, err
	}
	if imp.dryRun {
		return imp.Apply(ctx, plan)
	}

	start := time.Now()
	name := filepath.Base(path)
	entry := storage.ImportLog{UserID: imp.userID, Source: storage.SourceImport, Filename: &name, Status: "running"}
	logID, err := imp.db.InsertImportLog(ctx, entry)
	if err != nil {
		return &imp.stats, err
	}

	stats, applyErr := imp.Apply(ctx, plan)

	entry.Status = "success"
	if applyErr != nil {
		entry.Status = "error"
		msg := applyErr.Error()
		entry.ErrorMessage = &msg
	}
	entry.RecordsTotal = len(plan.Priorities) + len(plan.Workouts) + len(plan.Splits)
	entry.RecordsCreated = stats.Records()
	entry.RecordsSkipped = entry.RecordsTotal - entry.RecordsCreated
	durationMs := int(time.Since(start).Milliseconds())
	entry.DurationMs = &durationMs
	if meta, err := json.Marshal(stats); err == nil {
		raw := json.RawMessage(meta)
		entry.Metadata = &raw
	}
	if err := imp.db.UpdateImportLog(ctx, logID, entry); err != nil {
		imp.log.Error("failed to update import log", "id", logID, "error", err)
	}
	return stats, applyErr
}

// Apply writes priorities, then workouts, then splits. In dry-run mode it
// only counts what would change.
func (imp *Importer) Apply(ctx context.Context, plan *Plan) (*Stats, error) {
	if len(plan.Priorities) > 0 {
		if !imp.dryRun {
			if err := imp.db.UpsertPriorities(ctx, imp.userID, plan.Priorities); err != nil {
				return &imp.stats, fmt.Errorf("importing priorities: %w", err)
			}
		}
		imp.stats.PrioritiesSet = len(plan.Priorities)
	}

	if err := imp.importWorkouts(ctx, plan.Workouts); err != nil {
		return &imp.stats, fmt.Errorf("importing workouts: %w", err)
	}
	if err := imp.importSplits(ctx, plan.Splits); err != nil {
		return &imp.stats, fmt.Errorf("importing splits: %w", err)
	}
	return &imp.stats, nil
}

func (imp *Importer) importWorkouts(ctx context.Context, workouts []models.WorkoutInput) error {
	if len(workouts) == 0 {
		return nil
	}
	existing, err := imp.db.WorkoutIDsByName(ctx, imp.userID)
	if err != nil {
		return err
	}

	for _, w := range workouts {
		id, ok := existing[strings.ToLower(strings.TrimSpace(w.Name))]
		switch {
		case ok && imp.dryRun:
			imp.stats.WorkoutsUpdated++
		case ok:
			if _, err := imp.db.UpdateWorkout(ctx, id, imp.userID, w); err != nil {
				return fmt.Errorf("updating %q: %w", w.Name, err)
			}
			imp.stats.WorkoutsUpdated++
		case imp.dryRun:
			imp.stats.WorkoutsCreated++
		default:
			if _, err := imp.db.CreateWorkout(ctx, imp.userID, w); err != nil {
				return fmt.Errorf("creating %q: %w", w.Name, err)
			}
			imp.stats.WorkoutsCreated++
		}
		imp.log.Debug("workout imported", "name", w.Name, "muscles", len(w.Muscles), "existing", ok)
	}
	return nil
}

func (imp *Importer) importSplits(ctx context.Context, splits []PlanSplit) error {
	if len(splits) == 0 {
		return nil
	}
	rows, err := imp.db.ListSplits(ctx, imp.userID)
	if err != nil {
		return err
	}
	existing := make(map[string]int64, len(rows))
	for _, r := range rows {
		existing[strings.ToLower(r.Name)] = r.ID
	}

	for _, s := range splits {
		id, ok := existing[strings.ToLower(strings.TrimSpace(s.Name))]
		if imp.dryRun {
			imp.countSplit(ok)
			if s.Activate != "" {
				imp.stats.ActivatedSplit = s.Name
			}
			continue
		}

		var row *models.SplitRow
		if ok {
			row, err = imp.db.UpdateSplit(ctx, id, imp.userID, s.SplitInput)
		} else {
			row, err = imp.db.CreateSplit(ctx, imp.userID, s.SplitInput)
		}
		if err != nil {
			return fmt.Errorf("saving split %q: %w", s.Name, err)
		}
		imp.countSplit(ok)

		if s.Activate == "" {
			continue
		}
		date, err := s.ActivateDate()
		if err != nil {
			return err
		}
		if _, err := imp.db.ActivateSplit(ctx, row.ID, imp.userID, date); err != nil {
			return fmt.Errorf("activating split %q: %w", s.Name, err)
		}
		imp.stats.ActivatedSplit = s.Name
		imp.log.Info("split activated", "name", s.Name, "start_date", s.Activate)
	}
	return nil
}

func (imp *Importer) countSplit(existed bool) {
	if existed {
		imp.stats.SplitsUpdated++
	} else {
		imp.stats.SplitsCreated++
	}
}
