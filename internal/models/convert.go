package models

import "github.com/claude/repcycle/internal/split"

// ToSplit converts a stored split to the calculator's input.
func (r SplitRow) ToSplit() split.Split {
	s := split.Split{
		ID:        r.ID,
		Name:      r.Name,
		StartDate: r.StartDate,
		IsActive:  r.IsActive,
		Days:      make([]split.Day, 0, len(r.Days)),
	}
	for _, d := range r.Days {
		day := split.Day{ID: d.ID, Name: d.Name, Order: d.DayOrder}
		for _, t := range d.Targets {
			day.Targets = append(day.Targets, split.Target{Muscle: t.MuscleName, Group: t.MuscleGroup, Activation: t.TargetActivation})
		}
		s.Days = append(s.Days, day)
	}
	return s
}

// ToLogEntry converts a stored log to the calculator's input.
func (l WorkoutLogRow) ToLogEntry() split.LogEntry {
	e := split.LogEntry{WorkoutID: l.WorkoutID, Time: l.DateTime}
	for _, m := range l.Muscles {
		e.Muscles = append(e.Muscles, split.Activation{Muscle: m.MuscleName, Rating: m.ActivationRating})
	}
	return e
}
