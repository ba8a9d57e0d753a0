package postgres

import (
	"context"
	"database/sql"
	"errors"

	"planner/internal/domain"
)

const (
	dailyLogColumns   = "id, user_id, to_char(log_date, 'YYYY-MM-DD'), summary, created_at, updated_at"
	habitCheckColumns = "id, daily_log_id, name, completed, notes, completed_at, created_at, updated_at"
)

func scanDailyLog(s rowScanner) (*domain.DailyLog, error) {
	var l domain.DailyLog
	if err := s.Scan(&l.ID, &l.UserID, &l.LogDate, &l.Summary, &l.CreatedAt, &l.UpdatedAt); err != nil {
		return nil, err
	}
	return &l, nil
}

func scanHabitCheck(s rowScanner) (domain.HabitCheck, error) {
	var c domain.HabitCheck
	err := s.Scan(&c.ID, &c.DailyLogID, &c.Name, &c.Completed, &c.Notes, &c.CompletedAt, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

// FindDailyLog returns the user's log for day, or nil when there is none.
func (d *DB) FindDailyLog(ctx context.Context, userID, day string) (*domain.DailyLog, error) {
	l, err := scanDailyLog(d.sql.QueryRowContext(ctx,
		"SELECT "+dailyLogColumns+" FROM daily_logs WHERE user_id = $1 AND log_date = $2::date",
		userID, day))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, storeErr("find daily log", err)
	}
	return l, nil
}

// UpsertDailyLog returns the user's log for day, creating it if absent.
// Concurrent callers receive the same row.
func (d *DB) UpsertDailyLog(ctx context.Context, userID, day string) (*domain.DailyLog, error) {
	l, err := scanDailyLog(d.sql.QueryRowContext(ctx, `
		INSERT INTO daily_logs (user_id, log_date) VALUES ($1, $2::date)
		ON CONFLICT (user_id, log_date) DO UPDATE SET log_date = EXCLUDED.log_date
		RETURNING `+dailyLogColumns,
		userID, day))
	if err != nil {
		return nil, storeErr("upsert daily log", err)
	}
	return l, nil
}

// ListHabitChecks returns the checks of a log in creation order.
func (d *DB) ListHabitChecks(ctx context.Context, dailyLogID string) ([]domain.HabitCheck, error) {
	rows, err := d.sql.QueryContext(ctx,
		"SELECT "+habitCheckColumns+" FROM habit_checks WHERE daily_log_id = $1 ORDER BY created_at ASC, name ASC",
		dailyLogID)
	if err != nil {
		return nil, storeErr("list habit checks", err)
	}
	defer rows.Close() //nolint:errcheck

	out := make([]domain.HabitCheck, 0)
	for rows.Next() {
		c, err := scanHabitCheck(rows)
		if err != nil {
			return nil, storeErr("scan habit check", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("list habit checks", err)
	}
	return out, nil
}

// UpsertHabitCheck creates or updates the check keyed by (log, name).
// completed_at tracks completed.
func (d *DB) UpsertHabitCheck(ctx context.Context, in domain.HabitCheckUpsert) (*domain.HabitCheck, error) {
	c, err := scanHabitCheck(d.sql.QueryRowContext(ctx, `
		INSERT INTO habit_checks (daily_log_id, name, completed, notes, completed_at)
		VALUES ($1, $2, $3::boolean, $4, CASE WHEN $3::boolean THEN now() END)
		ON CONFLICT (daily_log_id, name) DO UPDATE
		SET completed = EXCLUDED.completed,
		    notes = EXCLUDED.notes,
		    completed_at = EXCLUDED.completed_at,
		    updated_at = now()
		RETURNING `+habitCheckColumns,
		in.DailyLogID, in.Name, in.Completed, in.Notes))
	if err != nil {
		return nil, storeErr("upsert habit check", err)
	}
	return &c, nil
}

// DailyCompletionSeries returns one point per day in [startDay, endDay];
// days without a log or check are not completed.
func (d *DB) DailyCompletionSeries(ctx context.Context, userID, habitName, startDay, endDay string) ([]domain.CompletionPoint, error) {
	rows, err := d.sql.QueryContext(ctx, `
		SELECT to_char(d.day, 'YYYY-MM-DD'), COALESCE(hc.completed, FALSE)
		FROM generate_series($3::date, $4::date, interval '1 day') AS d(day)
		LEFT JOIN daily_logs dl ON dl.user_id = $1 AND dl.log_date = d.day::date
		LEFT JOIN habit_checks hc ON hc.daily_log_id = dl.id AND hc.name = $2
		ORDER BY d.day ASC`,
		userID, habitName, startDay, endDay)
	if err != nil {
		return nil, storeErr("daily completion series", err)
	}
	defer rows.Close() //nolint:errcheck

	out := make([]domain.CompletionPoint, 0)
	for rows.Next() {
		var p domain.CompletionPoint
		if err := rows.Scan(&p.LogDate, &p.Completed); err != nil {
			return nil, storeErr("scan completion point", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("daily completion series", err)
	}
	return out, nil
}
