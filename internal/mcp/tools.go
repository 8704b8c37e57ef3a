package mcp

import (
	"context"
	"errors"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/claude/repcycle/internal/progress"
	"github.com/claude/repcycle/internal/split"
	"github.com/claude/repcycle/internal/storage"
)

// defaultTimeRange returns start/end defaulting to the last 7 days.
func defaultTimeRange(startStr, endStr string) (time.Time, time.Time, error) {
	var start, end time.Time
	var err error

	if endStr != "" {
		end, err = parseFlexTime(endStr)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
	} else {
		end = time.Now()
	}

	if startStr != "" {
		start, err = parseFlexTime(startStr)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
	} else {
		start = end.AddDate(0, 0, -7)
	}

	return start, end, nil
}

func parseFlexTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err == nil {
		return t, nil
	}
	t, err = time.Parse("2006-01-02", s)
	if err == nil {
		return t, nil
	}
	return time.Time{}, err
}

func (h *handlers) today() time.Time {
	y, m, d := h.now().UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// progressError turns the expected progress failures into readable tool
// errors.
func progressError(err error) string {
	switch {
	case errors.Is(err, progress.ErrNoActiveSplit):
		return "no active split: activate a split with a start date first"
	case errors.Is(err, split.ErrInvalidDateRange):
		return "the date is before the active split's start date"
	case errors.Is(err, split.ErrEmptySplit):
		return "the split has no days defined"
	case errors.Is(err, split.ErrNoStartDate):
		return "the split has no start date"
	case errors.Is(err, progress.ErrRangeTooLarge):
		return err.Error()
	default:
		return "query failed: " + err.Error()
	}
}

func jsonResult(v any) *mcp.CallToolResult {
	result, err := mcp.NewToolResultJSON(v)
	if err != nil {
		return mcp.NewToolResultError("serialization failed")
	}
	return result
}

// --- Tool definitions ---

var toolGetSplitProgress = mcp.NewTool("get_split_progress",
	mcp.WithDescription("Resolve which day of the active training split applies to a date and report, per target muscle, the logged activation, percent of target, priority, optimal range and status (none/below/optimal/above). Also lists activation on muscles the day does not target."),
	mcp.WithString("date", mcp.Description("Date (YYYY-MM-DD). Defaults to today (UTC).")),
)

var toolGetProgressRange = mcp.NewTool("get_progress_range",
	mcp.WithDescription("Day-by-day split progress reports for a date range (at most 31 days). Dates before the split started have a null report."),
	mcp.WithString("start", mcp.Description("Start date (YYYY-MM-DD). Defaults to 6 days before end.")),
	mcp.WithString("end", mcp.Description("End date (YYYY-MM-DD). Defaults to today.")),
)

var toolGetActiveSplit = mcp.NewTool("get_active_split",
	mcp.WithDescription("The active training split with its start date, ordered days and per-muscle activation targets."),
)

var toolGetSplitAnalysis = mcp.NewTool("get_split_analysis",
	mcp.WithDescription("Grade a split's plan: for every targeted muscle, the summed activation planned across the cycle, its priority and optimal range, and whether the plan lands inside that range."),
	mcp.WithNumber("split_id", mcp.Description("Split ID. Defaults to the active split.")),
)

var toolGetWorkoutLogs = mcp.NewTool("get_workout_logs",
	mcp.WithDescription("Logged workouts with weight, reps, RIR and the muscle activation ratings recorded with each log."),
	mcp.WithString("start", mcp.Description("Start date. Defaults to 7 days ago.")),
	mcp.WithString("end", mcp.Description("End date. Defaults to now.")),
	mcp.WithNumber("workout_id", mcp.Description("Only logs of this workout definition")),
)

var toolGetDailyActivation = mcp.NewTool("get_daily_activation",
	mcp.WithDescription("Summed muscle activation per day and muscle, including muscles the split does not target."),
	mcp.WithString("start", mcp.Description("Start date. Defaults to 7 days ago.")),
	mcp.WithString("end", mcp.Description("End date. Defaults to now.")),
)

var toolListMuscles = mcp.NewTool("list_muscles",
	mcp.WithDescription("The muscle catalog grouped by muscle group. Use these names for targets and priorities."),
)

var toolGetMusclePriorities = mcp.NewTool("get_muscle_priorities",
	mcp.WithDescription("Priority (0-100) for every muscle. Muscles never prioritised report the default of 80."),
)

// --- Tool handlers ---

func (h *handlers) getSplitProgress(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	date := h.today()
	if s := req.GetString("date", ""); s != "" {
		t, err := parseFlexTime(s)
		if err != nil {
			return mcp.NewToolResultError("invalid date format: " + err.Error()), nil
		}
		date = t
	}

	report, err := h.progress.DayProgress(ctx, UserIDFromContext(ctx), date)
	if err != nil {
		h.log.Warn("mcp get_split_progress", "error", err)
		return mcp.NewToolResultError(progressError(err)), nil
	}
	return jsonResult(report), nil
}

func (h *handlers) getProgressRange(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	end := h.today()
	if s := req.GetString("end", ""); s != "" {
		t, err := parseFlexTime(s)
		if err != nil {
			return mcp.NewToolResultError("invalid date format: " + err.Error()), nil
		}
		end = t
	}
	start := end.AddDate(0, 0, -6)
	if s := req.GetString("start", ""); s != "" {
		t, err := parseFlexTime(s)
		if err != nil {
			return mcp.NewToolResultError("invalid date format: " + err.Error()), nil
		}
		start = t
	}

	days, err := h.progress.Range(ctx, UserIDFromContext(ctx), start, end)
	if err != nil {
		h.log.Warn("mcp get_progress_range", "error", err)
		return mcp.NewToolResultError(progressError(err)), nil
	}
	return jsonResult(days), nil
}

func (h *handlers) getActiveSplit(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	row, err := h.ds.GetActiveSplitRow(ctx, UserIDFromContext(ctx))
	if err != nil {
		h.log.Error("mcp get_active_split", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	if row == nil {
		return mcp.NewToolResultError(progressError(progress.ErrNoActiveSplit)), nil
	}
	return jsonResult(row), nil
}

func (h *handlers) getSplitAnalysis(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	uid := UserIDFromContext(ctx)

	id := int64(req.GetFloat("split_id", 0))
	if id <= 0 {
		active, err := h.ds.GetActiveSplit(ctx, uid)
		if err != nil {
			h.log.Error("mcp get_split_analysis", "error", err)
			return mcp.NewToolResultError("query failed: " + err.Error()), nil
		}
		if active == nil {
			return mcp.NewToolResultError(progressError(progress.ErrNoActiveSplit)), nil
		}
		id = active.ID
	}

	analysis, err := h.progress.Analysis(ctx, uid, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return mcp.NewToolResultError("split not found"), nil
		}
		h.log.Error("mcp get_split_analysis", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return jsonResult(analysis), nil
}

func (h *handlers) getWorkoutLogs(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	start, end, err := defaultTimeRange(req.GetString("start", ""), req.GetString("end", ""))
	if err != nil {
		return mcp.NewToolResultError("invalid date format: " + err.Error()), nil
	}
	workoutID := int64(req.GetFloat("workout_id", 0))

	logs, err := h.ds.QueryWorkoutLogs(ctx, UserIDFromContext(ctx), start, end, workoutID)
	if err != nil {
		h.log.Error("mcp get_workout_logs", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return jsonResult(logs), nil
}

func (h *handlers) getDailyActivation(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	start, end, err := defaultTimeRange(req.GetString("start", ""), req.GetString("end", ""))
	if err != nil {
		return mcp.NewToolResultError("invalid date format: " + err.Error()), nil
	}

	days, err := h.ds.DailyActivation(ctx, UserIDFromContext(ctx), start, end)
	if err != nil {
		h.log.Error("mcp get_daily_activation", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return jsonResult(days), nil
}

func (h *handlers) listMuscles(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	muscles, err := h.ds.ListMuscles(ctx)
	if err != nil {
		h.log.Error("mcp list_muscles", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return jsonResult(storage.GroupMuscles(muscles)), nil
}

func (h *handlers) getMusclePriorities(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	prios, err := h.ds.ListPriorities(ctx, UserIDFromContext(ctx))
	if err != nil {
		h.log.Error("mcp get_muscle_priorities", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return jsonResult(prios), nil
}
