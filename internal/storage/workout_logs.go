package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/claude/repcycle/internal/models"
	"github.com/claude/repcycle/internal/split"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Log sources.
const (
	SourceManual = "manual"
	SourceAlpha  = "alpha"
	SourceImport = "import"
)

// workoutSnapshot is a workout definition's name and ratings at log time.
type workoutSnapshot struct {
	name    string
	muscles []models.LogActivationRow
}

// CreateWorkoutLog logs one workout, copying the definition's current
// activation ratings onto the log.
func (db *DB) CreateWorkoutLog(ctx context.Context, userID int, in models.WorkoutLogInput, source string) (*models.WorkoutLogRow, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	var row models.WorkoutLogRow
	err := db.inTx(ctx, func(tx pgx.Tx) error {
		var err error
		row, err = insertLog(ctx, tx, userID, source, in, map[int64]workoutSnapshot{})
		return err
	})
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// ReplaceSessionLogs deletes the logs of one source at sessionStart and
// inserts logs in their place. Returns the number of deleted and inserted logs.
func (db *DB) ReplaceSessionLogs(ctx context.Context, userID int, source string, sessionStart time.Time, logs []models.WorkoutLogInput) (int64, int, error) {
	for i, in := range logs {
		if err := in.Validate(); err != nil {
			return 0, 0, fmt.Errorf("log %d: %w", i, err)
		}
	}

	var deleted int64
	err := db.inTx(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx,
			`DELETE FROM workout_logs WHERE user_id = $1 AND source = $2 AND date_time = $3`,
			userID, source, sessionStart)
		if err != nil {
			return fmt.Errorf("deleting previous session logs: %w", err)
		}
		deleted = tag.RowsAffected()

		cache := make(map[int64]workoutSnapshot)
		for _, in := range logs {
			if _, err := insertLog(ctx, tx, userID, source, in, cache); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, 0, err
	}
	return deleted, len(logs), nil
}

func insertLog(ctx context.Context, tx pgx.Tx, userID int, source string, in models.WorkoutLogInput, cache map[int64]workoutSnapshot) (models.WorkoutLogRow, error) {
	snap, ok := cache[in.WorkoutID]
	if !ok {
		var err error
		snap, err = loadSnapshot(ctx, tx, in.WorkoutID, userID)
		if err != nil {
			return models.WorkoutLogRow{}, err
		}
		cache[in.WorkoutID] = snap
	}

	row := models.WorkoutLogRow{
		ID:          uuid.New(),
		UserID:      userID,
		WorkoutID:   in.WorkoutID,
		WorkoutName: snap.name,
		Weight:      in.Weight,
		Reps:        in.Reps,
		RIR:         in.RIR,
		RestTime:    in.RestTime,
		Source:      source,
		DateTime:    in.DateTime,
		Muscles:     snap.muscles,
	}
	err := tx.QueryRow(ctx,
		`INSERT INTO workout_logs (id, user_id, workout_id, weight, reps, rir, rest_time, source, date_time)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		 RETURNING created_at`,
		row.ID, userID, in.WorkoutID, in.Weight, in.Reps, in.RIR, in.RestTime, source, in.DateTime,
	).Scan(&row.CreatedAt)
	if err != nil {
		return models.WorkoutLogRow{}, fmt.Errorf("inserting workout log: %w", err)
	}

	if len(snap.muscles) > 0 {
		batch := &pgx.Batch{}
		for _, m := range snap.muscles {
			batch.Queue(`INSERT INTO workout_log_muscles (log_id, muscle_name, activation_rating) VALUES ($1, $2, $3)`,
				row.ID, m.MuscleName, m.ActivationRating)
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return models.WorkoutLogRow{}, fmt.Errorf("inserting log activations: %w", err)
		}
	}
	return row, nil
}

func loadSnapshot(ctx context.Context, tx pgx.Tx, workoutID int64, userID int) (workoutSnapshot, error) {
	rows, err := tx.Query(ctx,
		`SELECT w.name, m.name, wm.activation_rating
		 FROM workouts w
		 LEFT JOIN workout_muscles wm ON wm.workout_id = w.id
		 LEFT JOIN muscles m ON m.id = wm.muscle_id
		 WHERE w.id = $1 AND w.user_id = $2
		 ORDER BY m.name`, workoutID, userID)
	if err != nil {
		return workoutSnapshot{}, fmt.Errorf("loading workout %d: %w", workoutID, err)
	}
	defer rows.Close()

	snap := workoutSnapshot{muscles: []models.LogActivationRow{}}
	found := false
	for rows.Next() {
		var muscle *string
		var rating *int
		if err := rows.Scan(&snap.name, &muscle, &rating); err != nil {
			return workoutSnapshot{}, fmt.Errorf("scanning workout muscle: %w", err)
		}
		found = true
		if muscle != nil {
			snap.muscles = append(snap.muscles, models.LogActivationRow{MuscleName: *muscle, ActivationRating: *rating})
		}
	}
	if err := rows.Err(); err != nil {
		return workoutSnapshot{}, err
	}
	if !found {
		return workoutSnapshot{}, fmt.Errorf("workout %d: %w", workoutID, ErrNotFound)
	}
	return snap, nil
}

// GetLogsForDate returns the user's logs on one UTC calendar date with the
// activation ratings stored on each log.
func (db *DB) GetLogsForDate(ctx context.Context, userID int, date time.Time) ([]split.LogEntry, error) {
	y, m, d := date.Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 1)

	rows, err := db.Pool.Query(ctx,
		`SELECT l.id, l.workout_id, l.date_time, lm.muscle_name, lm.activation_rating
		 FROM workout_logs l
		 LEFT JOIN workout_log_muscles lm ON lm.log_id = l.id
		 WHERE l.user_id = $1 AND l.date_time >= $2 AND l.date_time < $3
		 ORDER BY l.date_time, l.id, lm.muscle_name`,
		userID, start, end)
	if err != nil {
		return nil, fmt.Errorf("querying logs: %w", err)
	}
	defer rows.Close()

	var result []split.LogEntry
	var lastID uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		var e split.LogEntry
		var muscle *string
		var rating *int
		if err := rows.Scan(&id, &e.WorkoutID, &e.Time, &muscle, &rating); err != nil {
			return nil, fmt.Errorf("scanning log: %w", err)
		}
		if len(result) == 0 || id != lastID {
			result = append(result, e)
			lastID = id
		}
		if muscle != nil {
			last := &result[len(result)-1]
			last.Muscles = append(last.Muscles, split.Activation{Muscle: *muscle, Rating: *rating})
		}
	}
	return result, rows.Err()
}

// QueryWorkoutLogs returns logs in [start, end), newest first. A zero
// workoutID matches every workout.
func (db *DB) QueryWorkoutLogs(ctx context.Context, userID int, start, end time.Time, workoutID int64) ([]models.WorkoutLogRow, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT l.id, l.user_id, l.workout_id, w.name, l.weight, l.reps, l.rir, l.rest_time,
		 l.source, l.date_time, l.created_at, lm.muscle_name, lm.activation_rating
		 FROM workout_logs l
		 JOIN workouts w ON w.id = l.workout_id
		 LEFT JOIN workout_log_muscles lm ON lm.log_id = l.id
		 WHERE l.user_id = $1 AND l.date_time >= $2 AND l.date_time < $3
		   AND ($4::bigint = 0 OR l.workout_id = $4)
		 ORDER BY l.date_time DESC, l.id, lm.muscle_name`,
		userID, start, end, workoutID)
	if err != nil {
		return nil, fmt.Errorf("querying workout logs: %w", err)
	}
	defer rows.Close()

	var result []models.WorkoutLogRow
	for rows.Next() {
		var l models.WorkoutLogRow
		var muscle *string
		var rating *int
		if err := rows.Scan(&l.ID, &l.UserID, &l.WorkoutID, &l.WorkoutName, &l.Weight, &l.Reps, &l.RIR, &l.RestTime,
			&l.Source, &l.DateTime, &l.CreatedAt, &muscle, &rating); err != nil {
			return nil, fmt.Errorf("scanning workout log: %w", err)
		}
		if n := len(result); n == 0 || result[n-1].ID != l.ID {
			l.Muscles = []models.LogActivationRow{}
			result = append(result, l)
		}
		if muscle != nil {
			last := &result[len(result)-1]
			last.Muscles = append(last.Muscles, models.LogActivationRow{MuscleName: *muscle, ActivationRating: *rating})
		}
	}
	return result, rows.Err()
}

// DeleteWorkoutLog removes one log.
func (db *DB) DeleteWorkoutLog(ctx context.Context, id uuid.UUID, userID int) error {
	tag, err := db.Pool.Exec(ctx, `DELETE FROM workout_logs WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("deleting workout log %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("workout log %s: %w", id, ErrNotFound)
	}
	return nil
}

// RecentWorkout summarizes a workout's logs over a recent window.
type RecentWorkout struct {
	WorkoutID   int64     `json:"workout_id"`
	WorkoutName string    `json:"workout_name"`
	LastLogged  time.Time `json:"last_logged"`
	LastWeight  *float64  `json:"last_weight"`
	LastReps    *int      `json:"last_reps"`
	LastRIR     *int      `json:"last_rir"`
	LogCount    int       `json:"log_count"`
}

// RecentlyLoggedWorkouts returns the workouts logged since since, most
// recently logged first.
func (db *DB) RecentlyLoggedWorkouts(ctx context.Context, userID int, since time.Time, limit int) ([]RecentWorkout, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := db.Pool.Query(ctx,
		`SELECT l.workout_id, w.name, MAX(l.date_time), MAX(l.weight), MAX(l.reps), MAX(l.rir), COUNT(*)
		 FROM workout_logs l
		 JOIN workouts w ON w.id = l.workout_id
		 WHERE l.user_id = $1 AND l.date_time >= $2
		 GROUP BY l.workout_id, w.name
		 ORDER BY MAX(l.date_time) DESC
		 LIMIT $3`,
		userID, since, limit)
	if err != nil {
		return nil, fmt.Errorf("querying recent workouts: %w", err)
	}
	defer rows.Close()

	var result []RecentWorkout
	for rows.Next() {
		var r RecentWorkout
		if err := rows.Scan(&r.WorkoutID, &r.WorkoutName, &r.LastLogged, &r.LastWeight, &r.LastReps, &r.LastRIR, &r.LogCount); err != nil {
			return nil, fmt.Errorf("scanning recent workout: %w", err)
		}
		result = append(result, r)
	}
	return result, rows.Err()
}
