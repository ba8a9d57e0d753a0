package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"planner/internal/domain"
)

const reviewColumns = "to_char(week_start, 'YYYY-MM-DD'), user_id, completed_goals, total_goals, habit_success_rate, lessons_learned, wins, obstacles, created_at, updated_at"

func scanReview(s rowScanner) (*domain.WeeklyReview, error) {
	var r domain.WeeklyReview
	p := &r.Payload
	err := s.Scan(&p.WeekStart, &p.UserID, &p.CompletedGoals, &p.TotalGoals, &p.HabitSuccessRate,
		pq.Array(&p.LessonsLearned), pq.Array(&p.Wins), pq.Array(&p.Obstacles),
		&r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// FindWeeklyReview returns the persisted review for the week, or nil.
func (d *DB) FindWeeklyReview(ctx context.Context, userID, weekStart string) (*domain.WeeklyReview, error) {
	r, err := scanReview(d.sql.QueryRowContext(ctx,
		"SELECT "+reviewColumns+" FROM weekly_reviews WHERE user_id = $1 AND week_start = $2::date",
		userID, weekStart))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, storeErr("find weekly review", err)
	}
	return r, nil
}

// SaveWeeklyReview upserts the review keyed by (user, week start).
func (d *DB) SaveWeeklyReview(ctx context.Context, p domain.WeeklyReviewPayload) (*domain.WeeklyReview, error) {
	r, err := scanReview(d.sql.QueryRowContext(ctx, `
		INSERT INTO weekly_reviews
			(user_id, week_start, completed_goals, total_goals, habit_success_rate, lessons_learned, wins, obstacles)
		VALUES ($1, $2::date, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (user_id, week_start) DO UPDATE
		SET completed_goals = EXCLUDED.completed_goals,
		    total_goals = EXCLUDED.total_goals,
		    habit_success_rate = EXCLUDED.habit_success_rate,
		    lessons_learned = EXCLUDED.lessons_learned,
		    wins = EXCLUDED.wins,
		    obstacles = EXCLUDED.obstacles,
		    updated_at = now()
		RETURNING `+reviewColumns,
		p.UserID, p.WeekStart, p.CompletedGoals, p.TotalGoals, p.HabitSuccessRate,
		pq.Array(nonNilStrings(p.LessonsLearned)), pq.Array(nonNilStrings(p.Wins)), pq.Array(nonNilStrings(p.Obstacles))))
	if err != nil {
		return nil, storeErr("save weekly review", err)
	}
	return r, nil
}

// ListWeeklyReviews returns the user's reviews, newest week first.
func (d *DB) ListWeeklyReviews(ctx context.Context, userID string) ([]domain.WeeklyReviewPayload, error) {
	rows, err := d.sql.QueryContext(ctx,
		"SELECT "+reviewColumns+" FROM weekly_reviews WHERE user_id = $1 ORDER BY week_start DESC", userID)
	if err != nil {
		return nil, storeErr("list weekly reviews", err)
	}
	defer rows.Close() //nolint:errcheck

	out := make([]domain.WeeklyReviewPayload, 0)
	for rows.Next() {
		r, err := scanReview(rows)
		if err != nil {
			return nil, storeErr("scan weekly review", err)
		}
		out = append(out, r.Payload)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("list weekly reviews", err)
	}
	return out, nil
}

// nonNilStrings keeps pq from writing NULL into NOT NULL array columns.
func nonNilStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
