// Package split resolves which day of a repeating training split applies to a
// calendar date and measures logged muscle activation against that day's
// targets. Everything in this package is a pure function of its arguments.
package split

import (
	"errors"
	"sort"
	"time"
)

// DefaultPriority is used for muscles the user has not prioritised.
const DefaultPriority = 80

var (
	// ErrEmptySplit is returned when a split has no days.
	ErrEmptySplit = errors.New("split has no days defined")
	// ErrInvalidDateRange is returned when the date precedes the split start.
	ErrInvalidDateRange = errors.New("no split day for this date")
	// ErrNoStartDate is returned when a split was never activated.
	ErrNoStartDate = errors.New("split has no start date")
)

// Split is a repeating multi-day training cycle.
type Split struct {
	ID        int64      `json:"id"`
	Name      string     `json:"name"`
	Days      []Day      `json:"days"`
	StartDate *time.Time `json:"start_date,omitempty"`
	IsActive  bool       `json:"is_active"`
}

// Day is one day of a split. Order is 1-based and unique within the split.
type Day struct {
	ID      int64    `json:"id"`
	Name    string   `json:"name"`
	Order   int      `json:"day_order"`
	Targets []Target `json:"targets"`
}

// Target is the activation a day aims for on one muscle.
type Target struct {
	Muscle     string `json:"muscle"`
	Group      string `json:"muscle_group,omitempty"`
	Activation int    `json:"target_activation"`
}

// LogEntry is a logged workout with the activation ratings that were copied
// from the workout definition when it was logged.
type LogEntry struct {
	WorkoutID int64        `json:"workout_id"`
	Time      time.Time    `json:"timestamp"`
	Muscles   []Activation `json:"muscles"`
}

// Activation is one muscle's rating within a logged workout.
type Activation struct {
	Muscle string `json:"muscle"`
	Rating int    `json:"activation_rating"`
}

// CycleLength returns the number of days in the split.
func (s Split) CycleLength() int {
	return len(s.Days)
}

// OrderedDays returns a copy of the days sorted by Order.
func (s Split) OrderedDays() []Day {
	days := make([]Day, len(s.Days))
	copy(days, s.Days)
	sort.SliceStable(days, func(i, j int) bool {
		return days[i].Order < days[j].Order
	})
	return days
}

// PriorityFor returns the user's priority for a muscle, or DefaultPriority.
func PriorityFor(priorities map[string]int, muscle string) int {
	if p, ok := priorities[muscle]; ok {
		return p
	}
	return DefaultPriority
}

// civil drops the clock and zone, keeping the calendar date.
func civil(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

const secondsPerDay = 24 * 60 * 60

// daysBetween counts whole calendar days from a to b (negative if b is earlier).
func daysBetween(a, b time.Time) int {
	return int((civil(b).Unix() - civil(a).Unix()) / secondsPerDay)
}
