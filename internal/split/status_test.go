package split_test

import (
	"testing"

	"github.com/claude/repcycle/internal/split"

	"github.com/stretchr/testify/assert"
)

func TestOptimalRange(t *testing.T) {
	tests := []struct {
		name     string
		priority int
		cycle    int
		wantLow  float64
		wantHigh float64
	}{
		{"default priority, weekly cycle", 80, 7, 1620, 123480},
		{"priority 50, three day cycle", 50, 3, 3150, 47250},
		{"priority 0, single day", 0, 1, 6300, 12600},
		{"zero cycle treated as one", 0, 0, 6300, 12600},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := split.OptimalRange(tt.priority, tt.cycle)
			assert.InDelta(t, tt.wantLow, r.Low, 1e-6)
			assert.InDelta(t, tt.wantHigh, r.High, 1e-6)
		})
	}
}

// The upper bound multiplies by the cycle length while the lower bound
// divides by it, so longer cycles get a much wider band.
func TestOptimalRange_WidensWithCycleLength(t *testing.T) {
	short := split.OptimalRange(80, 3)
	long := split.OptimalRange(80, 14)

	assert.Less(t, long.Low, short.Low)
	assert.Greater(t, long.High, short.High)
	assert.InDelta(t, 14.0/3.0, long.High/short.High, 1e-9)
}

// TestClassifyStatus checks both range bounds are inclusive.
func TestClassifyStatus(t *testing.T) {
	tests := []struct {
		current int
		want    split.Status
	}{
		{0, split.StatusNone},
		{1, split.StatusBelow},
		{1619, split.StatusBelow},
		{1620, split.StatusOptimal},
		{50000, split.StatusOptimal},
		{123480, split.StatusOptimal},
		{123481, split.StatusAbove},
	}

	for _, tt := range tests {
		got := split.ClassifyStatus(80, 7, tt.current)
		assert.Equal(t, tt.want, got, "current=%d", tt.current)
	}
}

// TestEntryStatus_ZeroTarget verifies nothing logged is none and anything logged is optimal.
func TestEntryStatus_ZeroTarget(t *testing.T) {
	assert.Equal(t, split.StatusNone, split.EntryStatus(split.Entry{Target: 0, Current: 0}, 80, 7))
	assert.Equal(t, split.StatusOptimal, split.EntryStatus(split.Entry{Target: 0, Current: 5}, 80, 7))
	assert.Equal(t, split.StatusOptimal, split.EntryStatus(split.Entry{Target: 0, Current: 999999}, 80, 7))
}

func TestEntryStatus_NonZeroTargetUsesRange(t *testing.T) {
	assert.Equal(t, split.StatusBelow, split.EntryStatus(split.Entry{Target: 100, Current: 100}, 80, 7))
	assert.Equal(t, split.StatusOptimal, split.EntryStatus(split.Entry{Target: 100, Current: 1620}, 80, 7))
	assert.Equal(t, split.StatusNone, split.EntryStatus(split.Entry{Target: 100}, 80, 7))
}

func TestRangeWiden(t *testing.T) {
	r := split.Range{Low: 100, High: 200}.Widen(0.15)
	assert.InDelta(t, 85, r.Low, 1e-9)
	assert.InDelta(t, 230, r.High, 1e-9)
	assert.True(t, r.Contains(85))
	assert.True(t, r.Contains(229))
	assert.False(t, r.Contains(84))
	assert.False(t, r.Contains(231))
}
