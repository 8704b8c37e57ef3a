package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/claude/repcycle/internal/models"
	"github.com/jackc/pgx/v5"
)

// ErrUnknownMuscle is returned when a muscle name is not in the catalog.
var ErrUnknownMuscle = errors.New("unknown muscle")

// GroupOrder is the display order of muscle groups.
var GroupOrder = []string{"chest", "back", "arms", "legs", "core", "other"}

// MuscleGroup is one group of the catalog.
type MuscleGroup struct {
	Group   string             `json:"muscle_group"`
	Muscles []models.MuscleRow `json:"muscles"`
}

// ListMuscles returns the full muscle catalog ordered by group and name.
func (db *DB) ListMuscles(ctx context.Context) ([]models.MuscleRow, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT id, name, muscle_group FROM muscles ORDER BY muscle_group, name`)
	if err != nil {
		return nil, fmt.Errorf("querying muscles: %w", err)
	}
	defer rows.Close()

	var result []models.MuscleRow
	for rows.Next() {
		var m models.MuscleRow
		if err := rows.Scan(&m.ID, &m.Name, &m.Group); err != nil {
			return nil, fmt.Errorf("scanning muscle: %w", err)
		}
		result = append(result, m)
	}
	return result, rows.Err()
}

// GroupMuscles groups catalog rows by muscle group in GroupOrder. Groups
// outside GroupOrder follow in the order first seen.
func GroupMuscles(muscles []models.MuscleRow) []MuscleGroup {
	index := make(map[string]int)
	var groups []MuscleGroup
	for _, g := range GroupOrder {
		index[g] = len(groups)
		groups = append(groups, MuscleGroup{Group: g})
	}
	for _, m := range muscles {
		i, ok := index[m.Group]
		if !ok {
			i = len(groups)
			index[m.Group] = i
			groups = append(groups, MuscleGroup{Group: m.Group})
		}
		groups[i].Muscles = append(groups[i].Muscles, m)
	}

	out := groups[:0]
	for _, g := range groups {
		if len(g.Muscles) > 0 {
			out = append(out, g)
		}
	}
	return out
}

// resolveMuscles maps muscle names (case-insensitive) to catalog IDs.
func resolveMuscles(ctx context.Context, tx pgx.Tx, names []string) (map[string]int, error) {
	ids := make(map[string]int, len(names))
	if len(names) == 0 {
		return ids, nil
	}
	lower := make([]string, len(names))
	for i, n := range names {
		lower[i] = strings.ToLower(strings.TrimSpace(n))
	}

	rows, err := tx.Query(ctx, `SELECT id, lower(name) FROM muscles WHERE lower(name) = ANY($1)`, lower)
	if err != nil {
		return nil, fmt.Errorf("resolving muscles: %w", err)
	}
	defer rows.Close()

	byLower := make(map[string]int)
	for rows.Next() {
		var id int
		var name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, fmt.Errorf("scanning muscle: %w", err)
		}
		byLower[name] = id
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i, n := range names {
		id, ok := byLower[lower[i]]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownMuscle, n)
		}
		ids[n] = id
	}
	return ids, nil
}
