package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/claude/repcycle/internal/models"
	"github.com/claude/repcycle/internal/split"
	"github.com/jackc/pgx/v5"
)

// CreateSplit stores a new, inactive split with its days and targets.
func (db *DB) CreateSplit(ctx context.Context, userID int, in models.SplitInput) (*models.SplitRow, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	var id int64
	err := db.inTx(ctx, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx,
			`INSERT INTO splits (user_id, name) VALUES ($1, $2) RETURNING id`,
			userID, strings.TrimSpace(in.Name)).Scan(&id)
		if err != nil {
			return fmt.Errorf("inserting split: %w", err)
		}
		return insertSplitDays(ctx, tx, id, in.Days)
	})
	if err != nil {
		return nil, err
	}
	return db.GetSplitRow(ctx, id, userID)
}

// UpdateSplit replaces a split's name, days and targets. Its start date and
// active flag are left alone.
func (db *DB) UpdateSplit(ctx context.Context, id int64, userID int, in models.SplitInput) (*models.SplitRow, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	err := db.inTx(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `UPDATE splits SET name = $3 WHERE id = $1 AND user_id = $2`,
			id, userID, strings.TrimSpace(in.Name))
		if err != nil {
			return fmt.Errorf("updating split %d: %w", id, err)
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("split %d: %w", id, ErrNotFound)
		}
		if _, err := tx.Exec(ctx, `DELETE FROM split_days WHERE split_id = $1`, id); err != nil {
			return fmt.Errorf("clearing split days: %w", err)
		}
		return insertSplitDays(ctx, tx, id, in.Days)
	})
	if err != nil {
		return nil, err
	}
	return db.GetSplitRow(ctx, id, userID)
}

// DeleteSplit removes a split.
func (db *DB) DeleteSplit(ctx context.Context, id int64, userID int) error {
	tag, err := db.Pool.Exec(ctx, `DELETE FROM splits WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("deleting split %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("split %d: %w", id, ErrNotFound)
	}
	return nil
}

// ActivateSplit sets the split's start date and makes it the user's only
// active split.
func (db *DB) ActivateSplit(ctx context.Context, id int64, userID int, startDate time.Time) (*models.SplitRow, error) {
	y, m, d := startDate.Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)

	err := db.inTx(ctx, func(tx pgx.Tx) error {
		var exists bool
		err := tx.QueryRow(ctx,
			`SELECT true FROM splits WHERE id = $1 AND user_id = $2 FOR UPDATE`, id, userID).Scan(&exists)
		if err != nil {
			return fmt.Errorf("split %d: %w", id, notFound(err))
		}
		if _, err := tx.Exec(ctx,
			`UPDATE splits SET is_active = false WHERE user_id = $1 AND is_active AND id <> $2`, userID, id); err != nil {
			return fmt.Errorf("deactivating splits: %w", err)
		}
		if _, err := tx.Exec(ctx,
			`UPDATE splits SET is_active = true, start_date = $2 WHERE id = $1`, id, start); err != nil {
			return fmt.Errorf("activating split %d: %w", id, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return db.GetSplitRow(ctx, id, userID)
}

// ListSplits returns the user's splits, newest first.
func (db *DB) ListSplits(ctx context.Context, userID int) ([]models.SplitRow, error) {
	return db.querySplits(ctx, `WHERE user_id = $1`, userID)
}

// GetSplitRow returns one split with its days and targets.
func (db *DB) GetSplitRow(ctx context.Context, id int64, userID int) (*models.SplitRow, error) {
	splits, err := db.querySplits(ctx, `WHERE user_id = $1 AND id = $2`, userID, id)
	if err != nil {
		return nil, err
	}
	if len(splits) == 0 {
		return nil, fmt.Errorf("split %d: %w", id, ErrNotFound)
	}
	return &splits[0], nil
}

// GetActiveSplitRow returns the user's active split, or nil if none.
func (db *DB) GetActiveSplitRow(ctx context.Context, userID int) (*models.SplitRow, error) {
	splits, err := db.querySplits(ctx, `WHERE user_id = $1 AND is_active`, userID)
	if err != nil {
		return nil, err
	}
	if len(splits) == 0 {
		return nil, nil
	}
	return &splits[0], nil
}

// GetSplit returns a split as calculator input.
func (db *DB) GetSplit(ctx context.Context, splitID int64, userID int) (*split.Split, error) {
	row, err := db.GetSplitRow(ctx, splitID, userID)
	if err != nil {
		return nil, err
	}
	s := row.ToSplit()
	return &s, nil
}

// GetActiveSplit returns the active split as calculator input, or nil if none.
func (db *DB) GetActiveSplit(ctx context.Context, userID int) (*split.Split, error) {
	row, err := db.GetActiveSplitRow(ctx, userID)
	if err != nil || row == nil {
		return nil, err
	}
	s := row.ToSplit()
	return &s, nil
}

func (db *DB) querySplits(ctx context.Context, where string, args ...any) ([]models.SplitRow, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT id, user_id, name, start_date, is_active, created_at FROM splits `+where+
			` ORDER BY created_at DESC, id DESC`, args...)
	if err != nil {
		return nil, fmt.Errorf("querying splits: %w", err)
	}
	defer rows.Close()

	var result []models.SplitRow
	index := make(map[int64]int)
	var ids []int64
	for rows.Next() {
		var s models.SplitRow
		if err := rows.Scan(&s.ID, &s.UserID, &s.Name, &s.StartDate, &s.IsActive, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning split: %w", err)
		}
		s.Days = []models.SplitDayRow{}
		index[s.ID] = len(result)
		ids = append(ids, s.ID)
		result = append(result, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return result, nil
	}

	dayRows, err := db.Pool.Query(ctx,
		`SELECT d.split_id, d.id, d.name, d.day_order, m.id, m.name, m.muscle_group, t.target_activation
		 FROM split_days d
		 LEFT JOIN split_day_targets t ON t.split_day_id = d.id
		 LEFT JOIN muscles m ON m.id = t.muscle_id
		 WHERE d.split_id = ANY($1)
		 ORDER BY d.split_id, d.day_order, m.name`, ids)
	if err != nil {
		return nil, fmt.Errorf("querying split days: %w", err)
	}
	defer dayRows.Close()

	for dayRows.Next() {
		var splitID int64
		var d models.SplitDayRow
		var muscleID, target *int
		var muscleName, muscleGroup *string
		if err := dayRows.Scan(&splitID, &d.ID, &d.Name, &d.DayOrder, &muscleID, &muscleName, &muscleGroup, &target); err != nil {
			return nil, fmt.Errorf("scanning split day: %w", err)
		}
		s := &result[index[splitID]]
		if n := len(s.Days); n == 0 || s.Days[n-1].ID != d.ID {
			d.Targets = []models.SplitDayTargetRow{}
			s.Days = append(s.Days, d)
		}
		if muscleID != nil {
			day := &s.Days[len(s.Days)-1]
			day.Targets = append(day.Targets, models.SplitDayTargetRow{
				MuscleID:         *muscleID,
				MuscleName:       *muscleName,
				MuscleGroup:      *muscleGroup,
				TargetActivation: *target,
			})
		}
	}
	return result, dayRows.Err()
}

func insertSplitDays(ctx context.Context, tx pgx.Tx, splitID int64, days []models.SplitDayInput) error {
	var names []string
	for _, d := range days {
		for _, t := range d.Targets {
			names = append(names, t.Muscle)
		}
	}
	ids, err := resolveMuscles(ctx, tx, names)
	if err != nil {
		return err
	}

	for _, d := range days {
		var dayID int64
		err := tx.QueryRow(ctx,
			`INSERT INTO split_days (split_id, name, day_order) VALUES ($1, $2, $3) RETURNING id`,
			splitID, strings.TrimSpace(d.Name), d.DayOrder).Scan(&dayID)
		if err != nil {
			return fmt.Errorf("inserting split day %q: %w", d.Name, err)
		}

		// a muscle listed twice in one day is stored once with the summed target
		targets := make(map[int]int)
		var order []int
		for _, t := range d.Targets {
			id := ids[t.Muscle]
			if _, seen := targets[id]; !seen {
				order = append(order, id)
			}
			targets[id] += t.Activation
		}
		for _, id := range order {
			if _, err := tx.Exec(ctx,
				`INSERT INTO split_day_targets (split_day_id, muscle_id, target_activation) VALUES ($1, $2, $3)`,
				dayID, id, targets[id]); err != nil {
				return fmt.Errorf("inserting target for day %q: %w", d.Name, err)
			}
		}
	}
	return nil
}

