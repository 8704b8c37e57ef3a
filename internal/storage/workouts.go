package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/claude/repcycle/internal/models"
	"github.com/jackc/pgx/v5"
)

// CreateWorkout stores a new workout definition with its muscle ratings.
func (db *DB) CreateWorkout(ctx context.Context, userID int, in models.WorkoutInput) (*models.WorkoutRow, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	var id int64
	err := db.inTx(ctx, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx,
			`INSERT INTO workouts (user_id, name, equipment_brand, type, location, notes, make_public)
			 VALUES ($1,$2,$3,$4,$5,$6,$7)
			 RETURNING id`,
			userID, strings.TrimSpace(in.Name), in.EquipmentBrand, in.Type, in.Location, in.Notes, in.MakePublic,
		).Scan(&id)
		if err != nil {
			return fmt.Errorf("inserting workout: %w", err)
		}
		return replaceWorkoutMuscles(ctx, tx, id, in.Muscles)
	})
	if err != nil {
		return nil, err
	}
	return db.GetWorkout(ctx, id, userID)
}

// UpdateWorkout replaces a workout definition. Existing logs keep the
// ratings they were written with.
func (db *DB) UpdateWorkout(ctx context.Context, id int64, userID int, in models.WorkoutInput) (*models.WorkoutRow, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	err := db.inTx(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx,
			`UPDATE workouts SET name = $3, equipment_brand = $4, type = $5, location = $6,
			 notes = $7, make_public = $8, updated_at = NOW()
			 WHERE id = $1 AND user_id = $2`,
			id, userID, strings.TrimSpace(in.Name), in.EquipmentBrand, in.Type, in.Location, in.Notes, in.MakePublic)
		if err != nil {
			return fmt.Errorf("updating workout %d: %w", id, err)
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("workout %d: %w", id, ErrNotFound)
		}
		return replaceWorkoutMuscles(ctx, tx, id, in.Muscles)
	})
	if err != nil {
		return nil, err
	}
	return db.GetWorkout(ctx, id, userID)
}

// DeleteWorkout removes a workout definition and its logs.
func (db *DB) DeleteWorkout(ctx context.Context, id int64, userID int) error {
	tag, err := db.Pool.Exec(ctx, `DELETE FROM workouts WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("deleting workout %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("workout %d: %w", id, ErrNotFound)
	}
	return nil
}

// GetWorkout retrieves a single workout definition with its muscle ratings.
func (db *DB) GetWorkout(ctx context.Context, id int64, userID int) (*models.WorkoutRow, error) {
	workouts, err := db.queryWorkouts(ctx, `WHERE w.user_id = $1 AND w.id = $2`, userID, id)
	if err != nil {
		return nil, err
	}
	if len(workouts) == 0 {
		return nil, fmt.Errorf("workout %d: %w", id, ErrNotFound)
	}
	return &workouts[0], nil
}

// ListWorkouts returns all of the user's workout definitions ordered by name.
func (db *DB) ListWorkouts(ctx context.Context, userID int) ([]models.WorkoutRow, error) {
	return db.queryWorkouts(ctx, `WHERE w.user_id = $1`, userID)
}

// WorkoutIDsByName maps lowercased workout names to IDs.
func (db *DB) WorkoutIDsByName(ctx context.Context, userID int) (map[string]int64, error) {
	rows, err := db.Pool.Query(ctx, `SELECT id, lower(name) FROM workouts WHERE user_id = $1`, userID)
	if err != nil {
		return nil, fmt.Errorf("querying workout names: %w", err)
	}
	defer rows.Close()

	ids := make(map[string]int64)
	for rows.Next() {
		var id int64
		var name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, fmt.Errorf("scanning workout name: %w", err)
		}
		ids[name] = id
	}
	return ids, rows.Err()
}

func (db *DB) queryWorkouts(ctx context.Context, where string, args ...any) ([]models.WorkoutRow, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT w.id, w.user_id, w.name, w.equipment_brand, w.type, w.location, w.notes,
		 w.make_public, w.created_at, w.updated_at,
		 m.id, m.name, m.muscle_group, wm.activation_rating
		 FROM workouts w
		 LEFT JOIN workout_muscles wm ON wm.workout_id = w.id
		 LEFT JOIN muscles m ON m.id = wm.muscle_id
		 `+where+`
		 ORDER BY lower(w.name), w.id, wm.activation_rating DESC, m.name`, args...)
	if err != nil {
		return nil, fmt.Errorf("querying workouts: %w", err)
	}
	defer rows.Close()

	var result []models.WorkoutRow
	for rows.Next() {
		var w models.WorkoutRow
		var muscleID, rating *int
		var muscleName, muscleGroup *string
		if err := rows.Scan(&w.ID, &w.UserID, &w.Name, &w.EquipmentBrand, &w.Type, &w.Location, &w.Notes,
			&w.MakePublic, &w.CreatedAt, &w.UpdatedAt,
			&muscleID, &muscleName, &muscleGroup, &rating); err != nil {
			return nil, fmt.Errorf("scanning workout: %w", err)
		}
		if n := len(result); n == 0 || result[n-1].ID != w.ID {
			w.Muscles = []models.WorkoutMuscleRow{}
			result = append(result, w)
		}
		if muscleID != nil {
			last := &result[len(result)-1]
			last.Muscles = append(last.Muscles, models.WorkoutMuscleRow{
				MuscleID:         *muscleID,
				MuscleName:       *muscleName,
				MuscleGroup:      *muscleGroup,
				ActivationRating: *rating,
			})
		}
	}
	return result, rows.Err()
}

func replaceWorkoutMuscles(ctx context.Context, tx pgx.Tx, workoutID int64, muscles []models.MuscleActivationInput) error {
	if _, err := tx.Exec(ctx, `DELETE FROM workout_muscles WHERE workout_id = $1`, workoutID); err != nil {
		return fmt.Errorf("clearing workout muscles: %w", err)
	}
	if len(muscles) == 0 {
		return nil
	}

	names := make([]string, len(muscles))
	for i, m := range muscles {
		names[i] = m.Muscle
	}
	ids, err := resolveMuscles(ctx, tx, names)
	if err != nil {
		return err
	}

	batch := &pgx.Batch{}
	for _, m := range muscles {
		batch.Queue(`INSERT INTO workout_muscles (workout_id, muscle_id, activation_rating) VALUES ($1, $2, $3)`,
			workoutID, ids[m.Muscle], m.Activation)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("inserting workout muscles: %w", err)
	}
	return nil
}
