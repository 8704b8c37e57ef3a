package storage

import (
	"context"
	"fmt"
	"time"
)

// WorkoutStats holds aggregate statistics about a user's workouts.
type WorkoutStats struct {
	TotalWorkouts    int64                      `json:"total_workouts"`
	TotalLogs        int64                      `json:"total_logs"`
	TotalPriorities  int64                      `json:"total_priorities"`
	EarliestLog      *time.Time                 `json:"earliest_log"`
	LatestLog        *time.Time                 `json:"latest_log"`
	RecentWorkouts   []RecentDefinition         `json:"recent_workouts"`
	MuscleGroupStats map[string]MuscleGroupStat `json:"muscle_group_stats"`
	EquipmentStats   map[string]int64           `json:"equipment_stats"`
}

// RecentDefinition is a recently created workout definition.
type RecentDefinition struct {
	ID        int64     `json:"id"`
	Name      string    `json:"workout_name"`
	CreatedAt time.Time `json:"created_at"`
}

// MuscleGroupStat holds how many priorities a user set in a muscle group
// and their average.
type MuscleGroupStat struct {
	Count       int64   `json:"count"`
	AvgPriority float64 `json:"avg_priority"`
}

// GetWorkoutStats returns aggregate statistics for a user's workouts.
func (db *DB) GetWorkoutStats(ctx context.Context, userID int) (*WorkoutStats, error) {
	stats := &WorkoutStats{
		RecentWorkouts:   []RecentDefinition{},
		MuscleGroupStats: make(map[string]MuscleGroupStat),
		EquipmentStats:   make(map[string]int64),
	}

	err := db.Pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM workouts WHERE user_id = $1`, userID,
	).Scan(&stats.TotalWorkouts)
	if err != nil {
		return nil, fmt.Errorf("counting workouts: %w", err)
	}

	err = db.Pool.QueryRow(ctx,
		`SELECT COUNT(*), MIN(date_time), MAX(date_time) FROM workout_logs WHERE user_id = $1`, userID,
	).Scan(&stats.TotalLogs, &stats.EarliestLog, &stats.LatestLog)
	if err != nil {
		return nil, fmt.Errorf("counting workout logs: %w", err)
	}

	err = db.Pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM muscle_priorities WHERE user_id = $1`, userID,
	).Scan(&stats.TotalPriorities)
	if err != nil {
		return nil, fmt.Errorf("counting priorities: %w", err)
	}

	// Recently created definitions
	rows, err := db.Pool.Query(ctx,
		`SELECT id, name, created_at FROM workouts WHERE user_id = $1
		 ORDER BY created_at DESC, id DESC LIMIT 5`, userID)
	if err != nil {
		return nil, fmt.Errorf("querying recent workouts: %w", err)
	}
	for rows.Next() {
		var r RecentDefinition
		if err := rows.Scan(&r.ID, &r.Name, &r.CreatedAt); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning recent workout: %w", err)
		}
		stats.RecentWorkouts = append(stats.RecentWorkouts, r)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Priorities by muscle group
	rows, err = db.Pool.Query(ctx,
		`SELECT m.muscle_group, COUNT(*), AVG(p.priority)::float8
		 FROM muscle_priorities p JOIN muscles m ON m.id = p.muscle_id
		 WHERE p.user_id = $1
		 GROUP BY m.muscle_group`, userID)
	if err != nil {
		return nil, fmt.Errorf("querying muscle group stats: %w", err)
	}
	for rows.Next() {
		var group string
		var s MuscleGroupStat
		if err := rows.Scan(&group, &s.Count, &s.AvgPriority); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning muscle group stat: %w", err)
		}
		stats.MuscleGroupStats[group] = s
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Workouts by equipment type
	rows, err = db.Pool.Query(ctx,
		`SELECT type, COUNT(*) FROM workouts WHERE user_id = $1 GROUP BY type`, userID)
	if err != nil {
		return nil, fmt.Errorf("querying equipment stats: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var typ string
		var n int64
		if err := rows.Scan(&typ, &n); err != nil {
			return nil, fmt.Errorf("scanning equipment stat: %w", err)
		}
		stats.EquipmentStats[typ] = n
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return stats, nil
}

// DayActivation is the summed activation per muscle on one date.
type DayActivation struct {
	Date    string         `json:"date"`
	Muscles map[string]int `json:"muscles"`
	Total   int            `json:"total"`
}

// DailyActivation sums the stored log activations per UTC date and muscle
// for dates in [start, end]. Dates without logs are omitted.
func (db *DB) DailyActivation(ctx context.Context, userID int, start, end time.Time) ([]DayActivation, error) {
	y, m, d := start.Date()
	from := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	y, m, d = end.Date()
	to := time.Date(y, m, d, 0, 0, 0, 0, time.UTC).AddDate(0, 0, 1)

	rows, err := db.Pool.Query(ctx,
		`SELECT to_char((l.date_time AT TIME ZONE 'UTC')::date, 'YYYY-MM-DD') AS day,
		 lm.muscle_name, SUM(lm.activation_rating)::int
		 FROM workout_logs l
		 JOIN workout_log_muscles lm ON lm.log_id = l.id
		 WHERE l.user_id = $1 AND l.date_time >= $2 AND l.date_time < $3
		 GROUP BY day, lm.muscle_name
		 ORDER BY day, lm.muscle_name`,
		userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("querying daily activation: %w", err)
	}
	defer rows.Close()

	result := []DayActivation{}
	for rows.Next() {
		var day, muscle string
		var sum int
		if err := rows.Scan(&day, &muscle, &sum); err != nil {
			return nil, fmt.Errorf("scanning daily activation: %w", err)
		}
		if n := len(result); n == 0 || result[n-1].Date != day {
			result = append(result, DayActivation{Date: day, Muscles: make(map[string]int)})
		}
		last := &result[len(result)-1]
		last.Muscles[muscle] = sum
		last.Total += sum
	}
	return result, rows.Err()
}
