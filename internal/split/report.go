package split

import (
	"sort"
	"time"
)

// MuscleProgress is one row of a day report.
type MuscleProgress struct {
	Muscle   string   `json:"muscle"`
	Target   int      `json:"target"`
	Current  int      `json:"current"`
	Percent  *float64 `json:"percent"`
	Priority int      `json:"priority"`
	Optimal  Range    `json:"optimal_range"`
	Status   Status   `json:"status"`
}

// UnplannedActivation is activation logged on a muscle the day does not target.
type UnplannedActivation struct {
	Muscle  string `json:"muscle"`
	Current int    `json:"current"`
}

// DayReport is the full progress picture for one date.
type DayReport struct {
	Date        string                `json:"date"`
	SplitID     int64                 `json:"split_id"`
	SplitName   string                `json:"split_name"`
	Day         Day                   `json:"day"`
	DayIndex    int                   `json:"day_index"`
	CycleLength int                   `json:"cycle_length"`
	Muscles     []MuscleProgress      `json:"muscles"`
	Unplanned   []UnplannedActivation `json:"unplanned"`
}

// Evaluate resolves the day for ref and reports every target muscle's
// progress and status. logs should already be limited to ref's date.
func Evaluate(s Split, ref time.Time, logs []LogEntry, priorities map[string]int) (*DayReport, error) {
	idx, err := DayIndex(s, ref)
	if err != nil {
		return nil, err
	}
	day := s.OrderedDays()[idx]
	cycle := s.CycleLength()
	prog := ComputeProgress(day, logs)

	report := &DayReport{
		Date:        civil(ref).Format(time.DateOnly),
		SplitID:     s.ID,
		SplitName:   s.Name,
		Day:         day,
		DayIndex:    idx,
		CycleLength: cycle,
		Muscles:     make([]MuscleProgress, 0, len(prog.Targets)),
		Unplanned:   make([]UnplannedActivation, 0, len(prog.Unplanned)),
	}

	for muscle, e := range prog.Targets {
		prio := PriorityFor(priorities, muscle)
		report.Muscles = append(report.Muscles, MuscleProgress{
			Muscle:   muscle,
			Target:   e.Target,
			Current:  e.Current,
			Percent:  e.Percent,
			Priority: prio,
			Optimal:  OptimalRange(prio, cycle),
			Status:   EntryStatus(e, prio, cycle),
		})
	}
	sort.Slice(report.Muscles, func(i, j int) bool {
		return report.Muscles[i].Muscle < report.Muscles[j].Muscle
	})

	for muscle, v := range prog.Unplanned {
		report.Unplanned = append(report.Unplanned, UnplannedActivation{Muscle: muscle, Current: v})
	}
	sort.Slice(report.Unplanned, func(i, j int) bool {
		return report.Unplanned[i].Muscle < report.Unplanned[j].Muscle
	})

	return report, nil
}

// StatusCounts tallies the statuses in a report.
func (r *DayReport) StatusCounts() map[Status]int {
	counts := make(map[Status]int, 4)
	for _, m := range r.Muscles {
		counts[m.Status]++
	}
	return counts
}
