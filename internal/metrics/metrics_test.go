package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/claude/repcycle/internal/split"
)

func TestObserveReport(t *testing.T) {
	m, _ := NewTestManager()

	m.ObserveReport(&split.DayReport{Muscles: []split.MuscleProgress{
		{Muscle: "Rhomboids", Status: split.StatusBelow},
		{Muscle: "Latissimus Dorsi", Status: split.StatusBelow},
		{Muscle: "Teres Major", Status: split.StatusOptimal},
	}})

	assert.Equal(t, float64(2), testutil.ToFloat64(m.CounterMuscleStatus.WithLabelValues("below")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.CounterMuscleStatus.WithLabelValues("optimal")))
	assert.Equal(t, float64(0), testutil.ToFloat64(m.CounterMuscleStatus.WithLabelValues("above")))
}

func TestObserveReport_NilSafe(t *testing.T) {
	var m *Manager
	m.ObserveReport(&split.DayReport{})

	m2, _ := NewTestManager()
	m2.ObserveReport(nil)
	assert.Equal(t, 0, testutil.CollectAndCount(m2.CounterMuscleStatus))
}

func TestNewRegistry(t *testing.T) {
	reg := NewRegistry()
	NewManager("server", reg)

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}
