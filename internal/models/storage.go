package models

import (
	"time"

	"github.com/google/uuid"
)

// MuscleRow is a row of the muscles catalog.
type MuscleRow struct {
	ID    int    `json:"id"`
	Name  string `json:"muscle_name"`
	Group string `json:"muscle_group"`
}

// WorkoutRow is a user's workout definition.
type WorkoutRow struct {
	ID             int64              `json:"id"`
	UserID         int                `json:"-"`
	Name           string             `json:"workout_name"`
	EquipmentBrand *string            `json:"equipment_brand"`
	Type           string             `json:"type"`
	Location       *string            `json:"location"`
	Notes          *string            `json:"notes"`
	MakePublic     bool               `json:"make_public"`
	CreatedAt      time.Time          `json:"created_at"`
	UpdatedAt      time.Time          `json:"updated_at"`
	Muscles        []WorkoutMuscleRow `json:"muscles"`
}

// WorkoutMuscleRow is one muscle's activation rating within a workout definition.
type WorkoutMuscleRow struct {
	MuscleID         int    `json:"muscle_id"`
	MuscleName       string `json:"muscle_name"`
	MuscleGroup      string `json:"muscle_group"`
	ActivationRating int    `json:"activation_rating"`
}

// WorkoutLogRow is a logged workout. Muscles holds the activation ratings
// copied from the definition when the log was written.
type WorkoutLogRow struct {
	ID          uuid.UUID          `json:"id"`
	UserID      int                `json:"-"`
	WorkoutID   int64              `json:"workout_id"`
	WorkoutName string             `json:"workout_name"`
	Weight      *float64           `json:"weight"`
	Reps        *int               `json:"reps"`
	RIR         *int               `json:"rir"`
	RestTime    *int               `json:"rest_time"`
	Source      string             `json:"source"`
	DateTime    time.Time          `json:"date_time"`
	CreatedAt   time.Time          `json:"created_at"`
	Muscles     []LogActivationRow `json:"muscles"`
}

// LogActivationRow is one snapshotted muscle activation of a workout log.
type LogActivationRow struct {
	MuscleName       string `json:"muscle_name"`
	ActivationRating int    `json:"activation_rating"`
}

// MusclePriorityRow is a user's priority for one muscle.
type MusclePriorityRow struct {
	MuscleName  string    `json:"muscle_name"`
	MuscleGroup string    `json:"muscle_group"`
	Priority    int       `json:"priority"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// SplitRow is a stored split with its days and targets.
type SplitRow struct {
	ID        int64         `json:"id"`
	UserID    int           `json:"-"`
	Name      string        `json:"split_name"`
	StartDate *time.Time    `json:"start_date"`
	IsActive  bool          `json:"is_active"`
	CreatedAt time.Time     `json:"created_at"`
	Days      []SplitDayRow `json:"split_days"`
}

// SplitDayRow is one day of a stored split.
type SplitDayRow struct {
	ID       int64               `json:"id"`
	Name     string              `json:"day_name"`
	DayOrder int                 `json:"day_order"`
	Targets  []SplitDayTargetRow `json:"targets"`
}

// SplitDayTargetRow is one muscle target of a split day.
type SplitDayTargetRow struct {
	MuscleID         int    `json:"muscle_id"`
	MuscleName       string `json:"muscle_name"`
	MuscleGroup      string `json:"muscle_group"`
	TargetActivation int    `json:"target_activation"`
}

// WorkoutInput is the payload for creating or replacing a workout definition.
type WorkoutInput struct {
	Name           string                  `json:"workout_name" yaml:"name"`
	EquipmentBrand *string                 `json:"equipment_brand" yaml:"equipment_brand"`
	Type           string                  `json:"type" yaml:"type"`
	Location       *string                 `json:"location" yaml:"location"`
	Notes          *string                 `json:"notes" yaml:"notes"`
	MakePublic     bool                    `json:"make_public" yaml:"make_public"`
	Muscles        []MuscleActivationInput `json:"muscles" yaml:"muscles"`
}

// MuscleActivationInput names a muscle with an activation rating or target.
type MuscleActivationInput struct {
	Muscle     string `json:"muscle" yaml:"muscle"`
	Activation int    `json:"activation" yaml:"activation"`
}

// WorkoutLogInput is the payload for logging a workout.
type WorkoutLogInput struct {
	WorkoutID int64     `json:"workout_id"`
	Weight    *float64  `json:"weight"`
	Reps      *int      `json:"reps"`
	RIR       *int      `json:"rir"`
	RestTime  *int      `json:"rest_time"`
	DateTime  time.Time `json:"date_time"`
}

// SplitInput is the payload for creating or replacing a split.
type SplitInput struct {
	Name string          `json:"split_name" yaml:"name"`
	Days []SplitDayInput `json:"split_days" yaml:"days"`
}

// SplitDayInput is one day of a SplitInput.
type SplitDayInput struct {
	Name     string                  `json:"day_name" yaml:"name"`
	DayOrder int                     `json:"day_order" yaml:"order"`
	Targets  []MuscleActivationInput `json:"targets" yaml:"targets"`
}
