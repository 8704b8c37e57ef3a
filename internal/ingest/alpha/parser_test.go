package alpha

import (
	"strings"
	"testing"
	"time"
)

const sampleCSV = `
"Pull · Day 2 · Week 3 · Push-Pull-Rest";"2025-01-02 6:15 h";"0:58 hr"
"1. Lat Pulldown · Cable · 10 reps";"WU1 · 30 kg · 12 reps<br>WU2 · 45 kg · 8 reps"
#;KG;REPS;RIR
1;62,5;10;2
2;62,5;9;1
3;60;10;0,5
"2. Seated Row · Machine · 12 reps"
#;KG;REPS;RIR
1;55;12;2
2;55;11;
"3. Weighted Pull-Ups · Bodyweight · 6 reps · 1 dropset";"WU1 · +0 kg · 5 reps"
#;KG;REPS;RIR
1;+15;6;1
2;+15;5;0

"Push · Day 1 · Week 3 · Push-Pull-Rest";"2025-01-04 17:40 h";"1:10 hr"
"1. Bench Press · Smith machine · 8 reps";"WU1 · 22,5 kg · 10 reps"
#;KG;REPS;RIR
1;80;8;1
`

// TestParseSessions covers the full export shape: two sessions, warmups kept
// apart from working sets, bodyweight-plus weights and empty RIR cells.
func TestParseSessions(t *testing.T) {
	sessions, err := Parse(strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if len(sessions) != 2 {
		t.Fatalf("sessions = %d, want 2", len(sessions))
	}

	pull := sessions[0]
	if pull.Title != "Pull · Day 2 · Week 3 · Push-Pull-Rest" {
		t.Errorf("title = %q", pull.Title)
	}
	if want := time.Date(2025, 1, 2, 6, 15, 0, 0, time.UTC); !pull.StartedAt.Equal(want) {
		t.Errorf("started = %v, want %v", pull.StartedAt, want)
	}
	if pull.Duration != "0:58 hr" {
		t.Errorf("duration = %q", pull.Duration)
	}
	if len(pull.Exercises) != 3 {
		t.Fatalf("exercises = %d, want 3", len(pull.Exercises))
	}
	if got := pull.WorkingSetCount(); got != 7 {
		t.Errorf("working sets = %d, want 7", got)
	}

	lat := pull.Exercises[0]
	if lat.Position != 1 || lat.Name != "Lat Pulldown" || lat.Equipment != "Cable" || lat.TargetReps != 10 {
		t.Errorf("lat pulldown header = %+v", lat)
	}
	if len(lat.Warmups) != 2 || len(lat.Sets) != 3 {
		t.Errorf("lat pulldown warmups/sets = %d/%d, want 2/3", len(lat.Warmups), len(lat.Sets))
	}
	if lat.Sets[0].WeightKg != 62.5 || lat.Sets[0].Reps != 10 || *lat.Sets[0].RIR != 2 {
		t.Errorf("first set = %+v", lat.Sets[0])
	}
	if *lat.Sets[2].RIR != 1 {
		t.Errorf("rir 0,5 rounds to %d, want 1", *lat.Sets[2].RIR)
	}

	row := pull.Exercises[1]
	if len(row.Warmups) != 0 {
		t.Errorf("seated row warmups = %d, want 0", len(row.Warmups))
	}
	if row.Sets[1].RIR != nil {
		t.Errorf("empty RIR cell = %d, want nil", *row.Sets[1].RIR)
	}

	pullups := pull.Exercises[2]
	if pullups.Equipment != "Bodyweight" || pullups.TargetReps != 6 {
		t.Errorf("dropset modifier leaked into header: %+v", pullups)
	}
	if !pullups.Sets[0].BodyweightPlus || pullups.Sets[0].WeightKg != 15 {
		t.Errorf("bodyweight-plus set = %+v", pullups.Sets[0])
	}
	if !pullups.Warmups[0].BodyweightPlus {
		t.Error("bodyweight-plus warmup not detected")
	}

	push := sessions[1]
	if push.StartedAt.Hour() != 17 {
		t.Errorf("push started = %v", push.StartedAt)
	}
	if push.Exercises[0].Equipment != "Smith machine" {
		t.Errorf("multi-word equipment = %q", push.Exercises[0].Equipment)
	}
}

// TestParseExerciseWithoutEquipment verifies headers that only carry a name and target reps.
func TestParseExerciseWithoutEquipment(t *testing.T) {
	ex, err := parseExercise("4. Plank · 60 reps")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ex.Position != 4 || ex.Name != "Plank" || ex.Equipment != "" || ex.TargetReps != 60 {
		t.Errorf("exercise = %+v", ex)
	}
}

// TestParseExerciseMissingReps verifies a header without target reps is rejected.
func TestParseExerciseMissingReps(t *testing.T) {
	if _, err := parseExercise("1. Bench Press · Barbell"); err == nil {
		t.Fatal("expected error")
	}
}

// TestParseSetBeforeExercise verifies orphan set rows are reported.
func TestParseSetBeforeExercise(t *testing.T) {
	in := `"Push";"2025-01-04 17:40 h";"1:10 hr"
1;80;8;1
`
	if _, err := Parse(strings.NewReader(in)); err == nil {
		t.Fatal("expected error for set without exercise")
	}
}

// TestParseExerciseBeforeSession verifies orphan exercise headers are reported.
func TestParseExerciseBeforeSession(t *testing.T) {
	in := `"1. Bench Press · Barbell · 8 reps"
`
	if _, err := Parse(strings.NewReader(in)); err == nil {
		t.Fatal("expected error for exercise without session")
	}
}

// TestParseWeight verifies European decimals and the +N bodyweight notation.
func TestParseWeight(t *testing.T) {
	tests := []struct {
		in     string
		want   float64
		wantBW bool
	}{
		{"102,5", 102.5, false},
		{"80", 80, false},
		{"+35", 35, true},
		{"+0", 0, true},
		{" 7,25 ", 7.25, false},
	}
	for _, tt := range tests {
		got, bw := parseWeight(tt.in)
		if got != tt.want || bw != tt.wantBW {
			t.Errorf("parseWeight(%q) = (%v, %v), want (%v, %v)", tt.in, got, bw, tt.want, tt.wantBW)
		}
	}
}

// TestParseWarmups verifies warmup extraction from the exercise header's second field.
func TestParseWarmups(t *testing.T) {
	sets := parseWarmups("WU1 · 37,5 kg · 9 reps<br>garbage<br>WU2 · 72,5 kg · 7 reps")
	if len(sets) != 2 {
		t.Fatalf("warmup sets = %d, want 2", len(sets))
	}
	if sets[0].Number != 1 || sets[0].WeightKg != 37.5 || sets[0].Reps != 9 {
		t.Errorf("wu1 = %+v", sets[0])
	}
	if sets[1].Number != 2 || sets[1].WeightKg != 72.5 {
		t.Errorf("wu2 = %+v", sets[1])
	}
}

// TestEmptyInput verifies that empty input returns no sessions without error.
func TestEmptyInput(t *testing.T) {
	sessions, err := Parse(strings.NewReader(""))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sessions) != 0 {
		t.Errorf("sessions = %d, want 0", len(sessions))
	}
}
