package split

import "sort"

// PlanTolerance widens the optimal range when judging a whole plan rather
// than a day's logged work.
const PlanTolerance = 0.15

// MuscleAnalysis summarises how much a split plans for one muscle per cycle.
type MuscleAnalysis struct {
	Muscle          string `json:"muscle"`
	Group           string `json:"muscle_group,omitempty"`
	TotalActivation int    `json:"total_activation"`
	Priority        int    `json:"priority"`
	Optimal         Range  `json:"optimal_range"`
	Status          Status `json:"status"`
}

// Analyze totals every muscle's target activation across all days of the
// split and grades the total against the priority-weighted optimal range,
// allowing PlanTolerance either side.
func Analyze(s Split, priorities map[string]int) []MuscleAnalysis {
	totals := make(map[string]int)
	groups := make(map[string]string)
	for _, d := range s.Days {
		for _, t := range d.Targets {
			totals[t.Muscle] += t.Activation
			if groups[t.Muscle] == "" {
				groups[t.Muscle] = t.Group
			}
		}
	}

	cycle := s.CycleLength()
	out := make([]MuscleAnalysis, 0, len(totals))
	for muscle, total := range totals {
		prio := PriorityFor(priorities, muscle)
		r := OptimalRange(prio, cycle)
		out = append(out, MuscleAnalysis{
			Muscle:          muscle,
			Group:           groups[muscle],
			TotalActivation: total,
			Priority:        prio,
			Optimal:         r,
			Status:          classify(r.Widen(PlanTolerance), total),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Muscle < out[j].Muscle
	})
	return out
}
