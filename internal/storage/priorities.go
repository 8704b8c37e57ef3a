package storage

import (
	"context"
	"fmt"

	"github.com/claude/repcycle/internal/models"
	"github.com/claude/repcycle/internal/split"
	"github.com/jackc/pgx/v5"
)

// GetPriorities returns the user's explicitly set priorities keyed by muscle name.
func (db *DB) GetPriorities(ctx context.Context, userID int) (map[string]int, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT m.name, p.priority
		 FROM muscle_priorities p JOIN muscles m ON m.id = p.muscle_id
		 WHERE p.user_id = $1`, userID)
	if err != nil {
		return nil, fmt.Errorf("querying priorities: %w", err)
	}
	defer rows.Close()

	prios := make(map[string]int)
	for rows.Next() {
		var name string
		var p int
		if err := rows.Scan(&name, &p); err != nil {
			return nil, fmt.Errorf("scanning priority: %w", err)
		}
		prios[name] = p
	}
	return prios, rows.Err()
}

// ListPriorities returns every catalog muscle with the user's priority,
// falling back to the default for muscles never set.
func (db *DB) ListPriorities(ctx context.Context, userID int) ([]models.MusclePriorityRow, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT m.name, m.muscle_group, COALESCE(p.priority, $2), COALESCE(p.updated_at, 'epoch'::timestamptz)
		 FROM muscles m
		 LEFT JOIN muscle_priorities p ON p.muscle_id = m.id AND p.user_id = $1
		 ORDER BY m.muscle_group, m.name`, userID, split.DefaultPriority)
	if err != nil {
		return nil, fmt.Errorf("querying priorities: %w", err)
	}
	defer rows.Close()

	var result []models.MusclePriorityRow
	for rows.Next() {
		var r models.MusclePriorityRow
		if err := rows.Scan(&r.MuscleName, &r.MuscleGroup, &r.Priority, &r.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning priority: %w", err)
		}
		result = append(result, r)
	}
	return result, rows.Err()
}

// UpsertPriorities sets priorities (0..100) for the named muscles.
func (db *DB) UpsertPriorities(ctx context.Context, userID int, prios map[string]int) error {
	names := make([]string, 0, len(prios))
	for name, p := range prios {
		if p < 0 || p > 100 {
			return fmt.Errorf("%w: priority for %q must be between 0 and 100, got %d", models.ErrInvalidInput, name, p)
		}
		names = append(names, name)
	}

	return db.inTx(ctx, func(tx pgx.Tx) error {
		ids, err := resolveMuscles(ctx, tx, names)
		if err != nil {
			return err
		}
		for name, p := range prios {
			_, err := tx.Exec(ctx,
				`INSERT INTO muscle_priorities (user_id, muscle_id, priority)
				 VALUES ($1, $2, $3)
				 ON CONFLICT (user_id, muscle_id) DO UPDATE SET priority = $3, updated_at = NOW()`,
				userID, ids[name], p)
			if err != nil {
				return fmt.Errorf("upserting priority for %s: %w", name, err)
			}
		}
		return nil
	})
}
