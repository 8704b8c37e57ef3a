package mcp

import (
	"context"
	"time"

	"github.com/claude/repcycle/internal/models"
	"github.com/claude/repcycle/internal/progress"
	"github.com/claude/repcycle/internal/storage"
)

// DataSource abstracts the data layer for MCP tools. Both *storage.DB (local)
// and HTTPClient (remote via REST API) satisfy this interface.
type DataSource interface {
	progress.Store

	GetActiveSplitRow(ctx context.Context, userID int) (*models.SplitRow, error)
	ListMuscles(ctx context.Context) ([]models.MuscleRow, error)
	ListPriorities(ctx context.Context, userID int) ([]models.MusclePriorityRow, error)
	QueryWorkoutLogs(ctx context.Context, userID int, start, end time.Time, workoutID int64) ([]models.WorkoutLogRow, error)
	DailyActivation(ctx context.Context, userID int, start, end time.Time) ([]storage.DayActivation, error)
}

// Compile-time check: *storage.DB satisfies DataSource.
var _ DataSource = (*storage.DB)(nil)
