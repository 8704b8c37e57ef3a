package models

import (
	"errors"
	"testing"
	"time"
)

func intPtr(v int) *int { return &v }

// TestWorkoutInputValidate covers the workout definition rules.
func TestWorkoutInputValidate(t *testing.T) {
	tests := []struct {
		name    string
		in      WorkoutInput
		wantErr bool
	}{
		{"valid", WorkoutInput{Name: "Bench Press", Muscles: []MuscleActivationInput{{"Pectoralis Major (Middle)", 90}, {"Anterior Deltoid", 40}}}, false},
		{"no muscles", WorkoutInput{Name: "Walk"}, false},
		{"missing name", WorkoutInput{Name: "  "}, true},
		{"rating above 100", WorkoutInput{Name: "x", Muscles: []MuscleActivationInput{{"Rhomboids", 101}}}, true},
		{"negative rating", WorkoutInput{Name: "x", Muscles: []MuscleActivationInput{{"Rhomboids", -1}}}, true},
		{"duplicate muscle", WorkoutInput{Name: "x", Muscles: []MuscleActivationInput{{"Rhomboids", 10}, {"rhomboids", 20}}}, true},
		{"empty muscle", WorkoutInput{Name: "x", Muscles: []MuscleActivationInput{{"", 10}}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.in.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidInput) {
				t.Errorf("Validate() error = %v, want ErrInvalidInput", err)
			}
		})
	}
}

// TestWorkoutLogInputValidate covers the RIR range and required fields.
func TestWorkoutLogInputValidate(t *testing.T) {
	now := time.Date(2025, 1, 2, 18, 0, 0, 0, time.UTC)
	tests := []struct {
		name    string
		in      WorkoutLogInput
		wantErr bool
	}{
		{"valid", WorkoutLogInput{WorkoutID: 1, Reps: intPtr(8), RIR: intPtr(2), DateTime: now}, false},
		{"rir 10", WorkoutLogInput{WorkoutID: 1, RIR: intPtr(10), DateTime: now}, false},
		{"rir 11", WorkoutLogInput{WorkoutID: 1, RIR: intPtr(11), DateTime: now}, true},
		{"negative reps", WorkoutLogInput{WorkoutID: 1, Reps: intPtr(-1), DateTime: now}, true},
		{"no workout", WorkoutLogInput{DateTime: now}, true},
		{"no time", WorkoutLogInput{WorkoutID: 1}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.in.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidInput) {
				t.Errorf("Validate() error = %v, want ErrInvalidInput", err)
			}
		})
	}
}

// TestSplitInputValidate covers day order uniqueness and non-negative targets.
func TestSplitInputValidate(t *testing.T) {
	push := SplitDayInput{Name: "Push", DayOrder: 1, Targets: []MuscleActivationInput{{"Anterior Deltoid", 100}}}
	tests := []struct {
		name    string
		in      SplitInput
		wantErr bool
	}{
		{"valid", SplitInput{Name: "PPL", Days: []SplitDayInput{push, {Name: "Rest", DayOrder: 2}}}, false},
		{"no days", SplitInput{Name: "Empty"}, false},
		{"zero target", SplitInput{Name: "x", Days: []SplitDayInput{{Name: "A", DayOrder: 1, Targets: []MuscleActivationInput{{"Rhomboids", 0}}}}}, false},
		{"missing name", SplitInput{Days: []SplitDayInput{push}}, true},
		{"duplicate order", SplitInput{Name: "x", Days: []SplitDayInput{push, {Name: "Pull", DayOrder: 1}}}, true},
		{"order zero", SplitInput{Name: "x", Days: []SplitDayInput{{Name: "A", DayOrder: 0}}}, true},
		{"negative target", SplitInput{Name: "x", Days: []SplitDayInput{{Name: "A", DayOrder: 1, Targets: []MuscleActivationInput{{"Rhomboids", -5}}}}}, true},
		{"unnamed day", SplitInput{Name: "x", Days: []SplitDayInput{{DayOrder: 1}}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.in.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidInput) {
				t.Errorf("Validate() error = %v, want ErrInvalidInput", err)
			}
		})
	}
}
