package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"planner/internal/domain"
)

const goalColumns = "id, user_id, title, description, priority, is_active, is_completed, is_habit, category, cadence, created_at, updated_at"

func scanGoal(s rowScanner) (domain.Goal, error) {
	var (
		g                 domain.Goal
		category, cadence string
	)
	err := s.Scan(&g.ID, &g.UserID, &g.Title, &g.Description, &g.Priority,
		&g.IsActive, &g.IsCompleted, &g.IsHabit, &category, &cadence,
		&g.CreatedAt, &g.UpdatedAt)
	g.Category = domain.CategoryOrDefault(category)
	g.Cadence = domain.CadenceOrDefault(cadence)
	return g, err
}

// ListGoals returns the user's goals, highest priority first.
func (d *DB) ListGoals(ctx context.Context, userID string) ([]domain.Goal, error) {
	rows, err := d.sql.QueryContext(ctx,
		"SELECT "+goalColumns+" FROM goals WHERE user_id = $1 ORDER BY priority DESC, created_at ASC", userID)
	if err != nil {
		return nil, storeErr("list goals", err)
	}
	defer rows.Close() //nolint:errcheck

	out := make([]domain.Goal, 0)
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, storeErr("scan goal", err)
		}
		out = append(out, g)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("list goals", err)
	}
	return out, nil
}

// GoalSummary counts the user's goals in a single pass.
func (d *DB) GoalSummary(ctx context.Context, userID string) (domain.GoalSummary, error) {
	var s domain.GoalSummary
	err := d.sql.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE priority > 0),
		       COUNT(*) FILTER (WHERE is_completed),
		       COUNT(*) FILTER (WHERE is_active AND NOT is_completed)
		FROM goals WHERE user_id = $1`, userID,
	).Scan(&s.TotalGoals, &s.Prioritized, &s.Completed, &s.Active)
	if err != nil {
		return domain.GoalSummary{}, storeErr("goal summary", err)
	}
	return s, nil
}

// InsertHabitGoal stores a new habit goal.
func (d *DB) InsertHabitGoal(ctx context.Context, def domain.HabitDefinition) (*domain.Goal, error) {
	g, err := scanGoal(d.sql.QueryRowContext(ctx, `
		INSERT INTO goals (user_id, title, description, priority, is_active, is_habit, category, cadence)
		VALUES ($1, $2, $3, $4, $5, TRUE, $6, $7)
		RETURNING `+goalColumns,
		def.UserID, def.Title, def.Description, def.Priority, def.IsActive,
		string(def.Category), string(def.Cadence)))
	if err != nil {
		return nil, storeErr("insert habit goal", err)
	}
	return &g, nil
}

// UpdateGoal applies the supplied fields of upd to the user's goal.
func (d *DB) UpdateGoal(ctx context.Context, userID, goalID string, upd domain.GoalUpdate) (*domain.Goal, error) {
	var (
		sets []string
		args []any
	)
	set := func(col string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	if upd.Title != nil {
		set("title", strings.TrimSpace(*upd.Title))
	}
	if upd.Description != nil {
		if upd.Description.Valid {
			set("description", upd.Description.Value)
		} else {
			set("description", nil)
		}
	}
	if upd.Priority != nil {
		set("priority", *upd.Priority)
	}
	if upd.IsActive != nil {
		set("is_active", *upd.IsActive)
	}
	if upd.IsCompleted != nil {
		set("is_completed", *upd.IsCompleted)
	}
	if upd.Category != nil {
		set("category", string(*upd.Category))
	}
	if upd.Cadence != nil {
		set("cadence", string(*upd.Cadence))
	}
	if len(sets) == 0 {
		return nil, domain.InvalidArgument("no fields to update")
	}
	sets = append(sets, "updated_at = now()")
	args = append(args, goalID, userID)

	q := fmt.Sprintf("UPDATE goals SET %s WHERE id = $%d AND user_id = $%d RETURNING %s",
		strings.Join(sets, ", "), len(args)-1, len(args), goalColumns)
	g, err := scanGoal(d.sql.QueryRowContext(ctx, q, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: goal %s", domain.ErrNotFound, goalID)
	}
	if err != nil {
		return nil, storeErr("update goal", err)
	}
	return &g, nil
}

// GoalProgressHistory returns progress points of the user's goals logged
// on or after sinceDay, oldest first.
func (d *DB) GoalProgressHistory(ctx context.Context, userID, sinceDay string) ([]domain.GoalProgressPoint, error) {
	rows, err := d.sql.QueryContext(ctx, `
		SELECT gp.goal_id, to_char(gp.log_date, 'YYYY-MM-DD'), gp.completed, gp.notes
		FROM goal_progress gp
		JOIN goals g ON g.id = gp.goal_id
		WHERE g.user_id = $1 AND gp.log_date >= $2::date
		ORDER BY gp.log_date ASC, gp.created_at ASC`, userID, sinceDay)
	if err != nil {
		return nil, storeErr("goal progress history", err)
	}
	defer rows.Close() //nolint:errcheck

	out := make([]domain.GoalProgressPoint, 0)
	for rows.Next() {
		var p domain.GoalProgressPoint
		if err := rows.Scan(&p.GoalID, &p.LogDate, &p.Completed, &p.Notes); err != nil {
			return nil, storeErr("scan goal progress", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("goal progress history", err)
	}
	return out, nil
}

// RecordGoalProgress inserts a progress point if the goal belongs to userID.
func (d *DB) RecordGoalProgress(ctx context.Context, userID string, p domain.GoalProgressPoint) (*domain.GoalProgressPoint, error) {
	var out domain.GoalProgressPoint
	err := d.sql.QueryRowContext(ctx, `
		INSERT INTO goal_progress (goal_id, log_date, completed, notes)
		SELECT id, $3::date, $4, $5 FROM goals WHERE id = $1 AND user_id = $2
		RETURNING goal_id, to_char(log_date, 'YYYY-MM-DD'), completed, notes`,
		p.GoalID, userID, p.LogDate, p.Completed, p.Notes,
	).Scan(&out.GoalID, &out.LogDate, &out.Completed, &out.Notes)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: goal %s", domain.ErrNotFound, p.GoalID)
	}
	if err != nil {
		return nil, storeErr("record goal progress", err)
	}
	return &out, nil
}
