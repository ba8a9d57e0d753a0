package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"planner/internal/domain"
)

func TestGoalRepository(t *testing.T) {
	db := New()
	ctx := context.Background()

	// Insert habit goals
	low, err := db.InsertHabitGoal(ctx, domain.HabitDefinition{UserID: "u1", Title: "Read", Priority: 1, IsActive: true, Category: domain.CategoryCareer, Cadence: domain.CadenceDaily})
	require.NoError(t, err)
	require.NotEmpty(t, low.ID)
	assert.True(t, low.IsHabit)

	high, err := db.InsertHabitGoal(ctx, domain.HabitDefinition{UserID: "u1", Title: "Run", Priority: 5, IsActive: true, Category: domain.CategoryHealth, Cadence: domain.CadenceWeekday})
	require.NoError(t, err)

	// List is priority ordered
	goals, err := db.ListGoals(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, goals, 2)
	assert.Equal(t, high.ID, goals[0].ID)

	// Update
	done := true
	updated, err := db.UpdateGoal(ctx, "u1", low.ID, domain.GoalUpdate{IsCompleted: &done})
	require.NoError(t, err)
	assert.True(t, updated.IsCompleted)

	summary, err := db.GoalSummary(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, domain.GoalSummary{TotalGoals: 2, Prioritized: 2, Completed: 1, Active: 1}, summary)

	// Other user sees nothing
	goals, err = db.ListGoals(ctx, "u2")
	require.NoError(t, err)
	assert.Empty(t, goals)

	_, err = db.UpdateGoal(ctx, "u2", low.ID, domain.GoalUpdate{IsCompleted: &done})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListGoals_TieBreaksOnCreation(t *testing.T) {
	db := New()
	base := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)

	// Seeded out of creation order.
	newer := db.AddGoal(domain.Goal{UserID: "u1", Title: "Newer", Priority: 2, CreatedAt: base.Add(time.Hour)})
	older := db.AddGoal(domain.Goal{UserID: "u1", Title: "Older", Priority: 2, CreatedAt: base})
	top := db.AddGoal(domain.Goal{UserID: "u1", Title: "Top", Priority: 3, CreatedAt: base.Add(2 * time.Hour)})

	goals, err := db.ListGoals(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, goals, 3)
	assert.Equal(t, []string{top.ID, older.ID, newer.ID}, []string{goals[0].ID, goals[1].ID, goals[2].ID})
}

func TestGoalProgress(t *testing.T) {
	db := New()
	ctx := context.Background()
	g := db.AddGoal(domain.Goal{UserID: "u1", Title: "Ship"})

	for _, day := range []string{"2024-01-03", "2024-01-01", "2023-12-20"} {
		_, err := db.RecordGoalProgress(ctx, "u1", domain.GoalProgressPoint{GoalID: g.ID, LogDate: day, Completed: true})
		require.NoError(t, err)
	}

	history, err := db.GoalProgressHistory(ctx, "u1", "2024-01-01")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "2024-01-01", history[0].LogDate)
	assert.Equal(t, "2024-01-03", history[1].LogDate)

	_, err = db.RecordGoalProgress(ctx, "u2", domain.GoalProgressPoint{GoalID: g.ID, LogDate: "2024-01-03"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDailyLogRepository(t *testing.T) {
	db := New()
	ctx := context.Background()

	missing, err := db.FindDailyLog(ctx, "u1", "2024-01-02")
	require.NoError(t, err)
	assert.Nil(t, missing)

	// Upsert is idempotent
	log, err := db.UpsertDailyLog(ctx, "u1", "2024-01-02")
	require.NoError(t, err)
	again, err := db.UpsertDailyLog(ctx, "u1", "2024-01-02")
	require.NoError(t, err)
	assert.Equal(t, log.ID, again.ID)

	// Checks keep insertion order and are keyed by name
	_, err = db.UpsertHabitCheck(ctx, domain.HabitCheckUpsert{DailyLogID: log.ID, Name: "Write", Completed: true})
	require.NoError(t, err)
	_, err = db.UpsertHabitCheck(ctx, domain.HabitCheckUpsert{DailyLogID: log.ID, Name: "Read"})
	require.NoError(t, err)
	check, err := db.UpsertHabitCheck(ctx, domain.HabitCheckUpsert{DailyLogID: log.ID, Name: "Write", Completed: false})
	require.NoError(t, err)
	assert.Nil(t, check.CompletedAt)

	checks, err := db.ListHabitChecks(ctx, log.ID)
	require.NoError(t, err)
	require.Len(t, checks, 2)
	assert.Equal(t, "Write", checks[0].Name)
	assert.Equal(t, "Read", checks[1].Name)

	_, err = db.UpsertHabitCheck(ctx, domain.HabitCheckUpsert{DailyLogID: "missing", Name: "Write"})
	assert.ErrorIs(t, err, domain.ErrStoreFailure)
}

func TestDailyCompletionSeries(t *testing.T) {
	db := New()
	ctx := context.Background()

	log, err := db.UpsertDailyLog(ctx, "u1", "2024-01-02")
	require.NoError(t, err)
	_, err = db.UpsertHabitCheck(ctx, domain.HabitCheckUpsert{DailyLogID: log.ID, Name: "Write", Completed: true})
	require.NoError(t, err)

	series, err := db.DailyCompletionSeries(ctx, "u1", "Write", "2024-01-01", "2024-01-03")
	require.NoError(t, err)
	assert.Equal(t, []domain.CompletionPoint{
		{LogDate: "2024-01-01"},
		{LogDate: "2024-01-02", Completed: true},
		{LogDate: "2024-01-03"},
	}, series)
}

func TestReviewRepository(t *testing.T) {
	now := time.Date(2024, 1, 8, 12, 0, 0, 0, time.UTC)
	db := NewWithClock(func() time.Time { return now })
	ctx := context.Background()

	found, err := db.FindWeeklyReview(ctx, "u1", "2024-01-01")
	require.NoError(t, err)
	assert.Nil(t, found)

	_, err = db.SaveWeeklyReview(ctx, domain.WeeklyReviewPayload{WeekStart: "2024-01-01", UserID: "u1", TotalGoals: 1})
	require.NoError(t, err)
	now = now.Add(time.Hour)
	saved, err := db.SaveWeeklyReview(ctx, domain.WeeklyReviewPayload{WeekStart: "2024-01-01", UserID: "u1", TotalGoals: 2, Wins: []string{"w"}})
	require.NoError(t, err)
	assert.True(t, saved.UpdatedAt.After(saved.CreatedAt))

	found, err = db.FindWeeklyReview(ctx, "u1", "2024-01-01")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, 2, found.Payload.TotalGoals)

	// Mutating the returned copy leaves the store untouched
	found.Payload.Wins[0] = "changed"
	again, _ := db.FindWeeklyReview(ctx, "u1", "2024-01-01")
	assert.Equal(t, "w", again.Payload.Wins[0])

	_, err = db.SaveWeeklyReview(ctx, domain.WeeklyReviewPayload{WeekStart: "2024-01-08", UserID: "u1"})
	require.NoError(t, err)
	list, err := db.ListWeeklyReviews(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "2024-01-08", list[0].WeekStart)
}

func TestUserRepository(t *testing.T) {
	db := New()
	ctx := context.Background()

	u, err := db.Create(ctx, "ada@example.com", nil, "hash")
	require.NoError(t, err)
	require.NotEmpty(t, u.ID)

	_, err = db.Create(ctx, "ada@example.com", nil, "hash")
	assert.ErrorIs(t, err, domain.ErrConflict)

	got, err := db.GetByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	got, err = db.GetByID(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, got)

	n, err := db.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestSessionRepository(t *testing.T) {
	db := New()
	repo := db.NewSessionRepo()
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, "u1", "live", "ua", "127.0.0.1", time.Now().Add(time.Hour)))
	require.NoError(t, repo.Create(ctx, "u1", "stale", "ua", "127.0.0.1", time.Now().Add(-time.Hour)))

	require.NoError(t, repo.DeleteExpired(ctx))

	s, err := repo.GetByToken(ctx, "live")
	require.NoError(t, err)
	require.NotNil(t, s)
	assert.Equal(t, "u1", s.UserID)

	s, err = repo.GetByToken(ctx, "stale")
	require.NoError(t, err)
	assert.Nil(t, s)

	require.NoError(t, repo.Delete(ctx, "live"))
	s, _ = repo.GetByToken(ctx, "live")
	assert.Nil(t, s)
}
