package models

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidInput marks errors caused by a bad request payload.
var ErrInvalidInput = errors.New("invalid input")

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// Validate checks a workout definition before it is stored.
func (w WorkoutInput) Validate() error {
	if strings.TrimSpace(w.Name) == "" {
		return invalid("workout_name is required")
	}
	seen := make(map[string]bool, len(w.Muscles))
	for _, m := range w.Muscles {
		key := strings.ToLower(strings.TrimSpace(m.Muscle))
		if key == "" {
			return invalid("muscle name is required")
		}
		if seen[key] {
			return invalid("muscle %q listed twice", m.Muscle)
		}
		seen[key] = true
		if m.Activation < 0 || m.Activation > 100 {
			return invalid("activation for %q must be between 0 and 100, got %d", m.Muscle, m.Activation)
		}
	}
	return nil
}

// Validate checks a workout log before it is stored.
func (l WorkoutLogInput) Validate() error {
	if l.WorkoutID <= 0 {
		return invalid("workout_id is required")
	}
	if l.RIR != nil && (*l.RIR < 0 || *l.RIR > 10) {
		return invalid("rir must be between 0 and 10, got %d", *l.RIR)
	}
	if l.Reps != nil && *l.Reps < 0 {
		return invalid("reps must not be negative")
	}
	if l.Weight != nil && *l.Weight < 0 {
		return invalid("weight must not be negative")
	}
	if l.RestTime != nil && *l.RestTime < 0 {
		return invalid("rest_time must not be negative")
	}
	if l.DateTime.IsZero() {
		return invalid("date_time is required")
	}
	return nil
}

// Validate checks a split definition before it is stored. A split without
// days is accepted; it just cannot be evaluated.
func (s SplitInput) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return invalid("split_name is required")
	}
	orders := make(map[int]bool, len(s.Days))
	for _, d := range s.Days {
		if strings.TrimSpace(d.Name) == "" {
			return invalid("day_name is required")
		}
		if d.DayOrder < 1 {
			return invalid("day %q: day_order must be at least 1", d.Name)
		}
		if orders[d.DayOrder] {
			return invalid("day_order %d used twice", d.DayOrder)
		}
		orders[d.DayOrder] = true
		for _, t := range d.Targets {
			if strings.TrimSpace(t.Muscle) == "" {
				return invalid("day %q: muscle name is required", d.Name)
			}
			if t.Activation < 0 {
				return invalid("day %q: target for %q must not be negative", d.Name, t.Muscle)
			}
		}
	}
	return nil
}
