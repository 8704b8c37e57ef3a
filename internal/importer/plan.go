package importer

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/claude/repcycle/internal/models"
)

// Plan is a training plan file: muscle priorities, workout definitions and
// splits, applied in that order.
type Plan struct {
	Priorities map[string]int        `yaml:"priorities"`
	Workouts   []models.WorkoutInput `yaml:"workouts"`
	Splits     []PlanSplit           `yaml:"splits"`
}

// PlanSplit is a split with an optional activation date (YYYY-MM-DD).
type PlanSplit struct {
	models.SplitInput `yaml:",inline"`
	Activate          string `yaml:"activate"`
}

// LoadPlan decodes a YAML plan and validates it.
func LoadPlan(r io.Reader) (*Plan, error) {
	var p Plan
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&p); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parsing plan: %w", err)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// Validate checks the whole plan before anything is written.
func (p *Plan) Validate() error {
	for muscle, prio := range p.Priorities {
		if prio < 0 || prio > 100 {
			return fmt.Errorf("priority for %s: %d is outside 0..100: %w", muscle, prio, models.ErrInvalidInput)
		}
	}

	seen := make(map[string]bool)
	for i, w := range p.Workouts {
		if err := w.Validate(); err != nil {
			return fmt.Errorf("workout %d: %w", i+1, err)
		}
		key := strings.ToLower(strings.TrimSpace(w.Name))
		if seen[key] {
			return fmt.Errorf("workout %q listed twice: %w", w.Name, models.ErrInvalidInput)
		}
		seen[key] = true
	}

	activations := 0
	for i, s := range p.Splits {
		if err := s.SplitInput.Validate(); err != nil {
			return fmt.Errorf("split %d: %w", i+1, err)
		}
		if s.Activate == "" {
			continue
		}
		if _, err := s.ActivateDate(); err != nil {
			return fmt.Errorf("split %q: %w", s.Name, err)
		}
		activations++
	}
	if activations > 1 {
		return fmt.Errorf("%d splits set activate, at most one may: %w", activations, models.ErrInvalidInput)
	}
	return nil
}

// ActivateDate parses Activate.
func (s PlanSplit) ActivateDate() (time.Time, error) {
	t, err := time.Parse(time.DateOnly, s.Activate)
	if err != nil {
		return time.Time{}, fmt.Errorf("activate %q is not a YYYY-MM-DD date: %w", s.Activate, models.ErrInvalidInput)
	}
	return t, nil
}
