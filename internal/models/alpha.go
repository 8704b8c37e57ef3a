package models

import "time"

// AlphaSession is one workout session from an Alpha Progression CSV export.
type AlphaSession struct {
	Title     string
	StartedAt time.Time
	Duration  string
	Exercises []AlphaExercise
}

// AlphaExercise is one exercise of a session. Warmups are kept apart from
// working sets because only working sets are logged.
type AlphaExercise struct {
	Position   int
	Name       string
	Equipment  string
	TargetReps int
	Warmups    []AlphaSet
	Sets       []AlphaSet
}

// AlphaSet is one performed set.
type AlphaSet struct {
	Number         int
	WeightKg       float64
	BodyweightPlus bool
	Reps           int
	RIR            *int
}

// WorkingSetCount returns the number of non-warmup sets in the session.
func (s AlphaSession) WorkingSetCount() int {
	n := 0
	for _, ex := range s.Exercises {
		n += len(ex.Sets)
	}
	return n
}
