// Package progress fetches a user's active split, logs and priorities and
// runs them through the split calculator.
package progress

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/claude/repcycle/internal/split"
)

// MaxRangeDays caps how many dates a single Range call evaluates.
const MaxRangeDays = 31

var (
	// ErrNoActiveSplit is returned when the user has not activated a split.
	ErrNoActiveSplit = errors.New("no active split")
	// ErrRangeTooLarge is returned when a range exceeds MaxRangeDays.
	ErrRangeTooLarge = fmt.Errorf("date range exceeds %d days", MaxRangeDays)
)

// SplitSource loads splits.
type SplitSource interface {
	// GetActiveSplit returns nil, nil when the user has no active split.
	GetActiveSplit(ctx context.Context, userID int) (*split.Split, error)
	GetSplit(ctx context.Context, splitID int64, userID int) (*split.Split, error)
}

// LogSource loads the workout logs for one calendar date.
type LogSource interface {
	GetLogsForDate(ctx context.Context, userID int, date time.Time) ([]split.LogEntry, error)
}

// PrioritySource loads a user's muscle priorities. Missing muscles default
// to split.DefaultPriority.
type PrioritySource interface {
	GetPriorities(ctx context.Context, userID int) (map[string]int, error)
}

// Store is everything the service reads.
type Store interface {
	SplitSource
	LogSource
	PrioritySource
}

// Service computes day reports and split analyses.
type Service struct {
	store Store
}

// NewService creates a Service reading from store.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// DayProgress reports progress on the active split for date.
func (s *Service) DayProgress(ctx context.Context, userID int, date time.Time) (*split.DayReport, error) {
	active, prios, err := s.activeSplitAndPriorities(ctx, userID)
	if err != nil {
		return nil, err
	}

	logs, err := s.store.GetLogsForDate(ctx, userID, date)
	if err != nil {
		return nil, fmt.Errorf("loading logs for %s: %w", date.Format(time.DateOnly), err)
	}

	report, err := split.Evaluate(*active, date, logs, prios)
	if err != nil {
		return nil, fmt.Errorf("evaluating split %d: %w", active.ID, err)
	}
	return report, nil
}

// RangeDay is one date of a Range result. Report is nil for dates before
// the split started.
type RangeDay struct {
	Date   string           `json:"date"`
	Report *split.DayReport `json:"report"`
}

// Range reports every date from start to end inclusive.
func (s *Service) Range(ctx context.Context, userID int, start, end time.Time) ([]RangeDay, error) {
	start = truncateDay(start)
	end = truncateDay(end)
	if end.Before(start) {
		return nil, fmt.Errorf("end %s is before start %s", end.Format(time.DateOnly), start.Format(time.DateOnly))
	}
	if int(end.Sub(start).Hours()/24)+1 > MaxRangeDays {
		return nil, ErrRangeTooLarge
	}

	active, prios, err := s.activeSplitAndPriorities(ctx, userID)
	if err != nil {
		return nil, err
	}

	var out []RangeDay
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		day := RangeDay{Date: d.Format(time.DateOnly)}

		logs, err := s.store.GetLogsForDate(ctx, userID, d)
		if err != nil {
			return nil, fmt.Errorf("loading logs for %s: %w", day.Date, err)
		}

		report, err := split.Evaluate(*active, d, logs, prios)
		switch {
		case errors.Is(err, split.ErrInvalidDateRange):
			// not started yet
		case err != nil:
			return nil, fmt.Errorf("evaluating split %d on %s: %w", active.ID, day.Date, err)
		default:
			day.Report = report
		}
		out = append(out, day)
	}
	return out, nil
}

// Analysis grades a split's plan against the user's priorities.
func (s *Service) Analysis(ctx context.Context, userID int, splitID int64) ([]split.MuscleAnalysis, error) {
	sp, err := s.store.GetSplit(ctx, splitID, userID)
	if err != nil {
		return nil, fmt.Errorf("loading split %d: %w", splitID, err)
	}
	prios, err := s.store.GetPriorities(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("loading priorities: %w", err)
	}
	return split.Analyze(*sp, prios), nil
}

func (s *Service) activeSplitAndPriorities(ctx context.Context, userID int) (*split.Split, map[string]int, error) {
	active, err := s.store.GetActiveSplit(ctx, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("loading active split: %w", err)
	}
	if active == nil {
		return nil, nil, ErrNoActiveSplit
	}
	prios, err := s.store.GetPriorities(ctx, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("loading priorities: %w", err)
	}
	return active, prios, nil
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
