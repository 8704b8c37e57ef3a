package split

// Entry is one target muscle's progress for a day.
type Entry struct {
	Target  int      `json:"target"`
	Current int      `json:"current"`
	Percent *float64 `json:"percent"` // nil when Target is zero
}

// Progress is the per-target view of a day plus whatever was trained off-plan.
type Progress struct {
	Targets   map[string]Entry `json:"targets"`
	Unplanned map[string]int   `json:"unplanned"`
}

// ComputeProgress sums logged activation per muscle against the day's targets.
// The Targets key set is exactly the day's target muscles; anything else
// that was logged lands in Unplanned.
func ComputeProgress(day Day, logs []LogEntry) Progress {
	p := Progress{
		Targets:   make(map[string]Entry, len(day.Targets)),
		Unplanned: make(map[string]int),
	}
	for _, t := range day.Targets {
		e := p.Targets[t.Muscle]
		e.Target += t.Activation
		p.Targets[t.Muscle] = e
	}

	for _, l := range logs {
		for _, a := range l.Muscles {
			if e, ok := p.Targets[a.Muscle]; ok {
				e.Current += a.Rating
				p.Targets[a.Muscle] = e
				continue
			}
			p.Unplanned[a.Muscle] += a.Rating
		}
	}

	for m, e := range p.Targets {
		if e.Target > 0 {
			pct := float64(e.Current) / float64(e.Target) * 100
			e.Percent = &pct
			p.Targets[m] = e
		}
	}
	return p
}
