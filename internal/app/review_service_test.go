package app

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"planner/internal/adapter/memory"
	"planner/internal/domain"
)

type reviewFixture struct {
	svc   *ReviewService
	db    *memory.DB
	now   *time.Time
	goals *GoalService
}

func newReviewer(t *testing.T, cache ReviewCache) *reviewFixture {
	t.Helper()
	now := testNow
	f := &reviewFixture{now: &now}
	f.db = memory.NewWithClock(func() time.Time { return *f.now })
	clock := Clock{Now: func() time.Time { return *f.now }, Location: time.UTC}
	f.goals = NewGoalService(f.db, clock)
	f.svc = NewReviewService(f.goals, f.db, clock, cache, nil)
	return f
}

func TestBuildWeeklyReviewPayload_Computed(t *testing.T) {
	f := newReviewer(t, ReviewCache{})
	ctx := context.Background()
	done := f.db.AddGoal(domain.Goal{UserID: "u1", Title: "Ship", IsCompleted: true})
	f.db.AddGoal(domain.Goal{UserID: "u1", Title: "Write", IsActive: true})
	for _, completed := range []bool{true, true, true, false} {
		if _, err := f.goals.RecordProgress(ctx, "u1", domain.GoalProgressPoint{GoalID: done.ID, Completed: completed}); err != nil {
			t.Fatalf("seed progress: %v", err)
		}
	}

	p, err := f.svc.BuildWeeklyReviewPayload(ctx, "u1", ReviewOptions{WeekStart: "2024-01-01"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.TotalGoals != 2 || p.CompletedGoals != 1 {
		t.Errorf("expected 1/2 goals, got %d/%d", p.CompletedGoals, p.TotalGoals)
	}
	if p.HabitSuccessRate != 0.75 {
		t.Errorf("expected rate 0.75, got %f", p.HabitSuccessRate)
	}
	if len(p.Wins) == 0 || len(p.Obstacles) == 0 || len(p.LessonsLearned) == 0 {
		t.Errorf("expected non-empty narrative, got %#v", p)
	}
	if p.Wins[0] != "Kept habit streaks consistent throughout the week." {
		t.Errorf("unexpected win: %q", p.Wins[0])
	}

	if reviews, _ := f.db.ListWeeklyReviews(ctx, "u1"); len(reviews) != 0 {
		t.Error("expected computed review not to be persisted")
	}
}

func TestBuildWeeklyReviewPayload_NoGoals(t *testing.T) {
	f := newReviewer(t, ReviewCache{})

	p, err := f.svc.BuildWeeklyReviewPayload(context.Background(), "u1", ReviewOptions{WeekStart: "2024-01-01"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.TotalGoals != 0 || p.HabitSuccessRate != 0 {
		t.Errorf("unexpected payload: %#v", p)
	}
	if p.LessonsLearned[0] != "Define at least one meaningful goal before next week." {
		t.Errorf("unexpected lesson: %q", p.LessonsLearned[0])
	}
}

func TestBuildWeeklyReviewPayload_FrozenCache(t *testing.T) {
	f := newReviewer(t, ReviewCache{})
	ctx := context.Background()

	saved, err := f.svc.SaveWeeklyReview(ctx, domain.WeeklyReviewPayload{
		WeekStart:        "2024-01-01",
		UserID:           "u1",
		CompletedGoals:   3,
		TotalGoals:       4,
		HabitSuccessRate: 0.5,
		Wins:             []string{"Launched beta"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	f.db.AddGoal(domain.Goal{UserID: "u1", Title: "New goal"})
	*f.now = f.now.Add(30 * 24 * time.Hour)

	p, err := f.svc.BuildWeeklyReviewPayload(ctx, "u1", ReviewOptions{WeekStart: "2024-01-01"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(p, saved) {
		t.Errorf("expected persisted review unchanged\nwant %#v\n got %#v", saved, p)
	}
}

func TestBuildWeeklyReviewPayload_TTLCache(t *testing.T) {
	f := newReviewer(t, ReviewCache{MaxAge: time.Hour})
	ctx := context.Background()

	if _, err := f.svc.SaveWeeklyReview(ctx, domain.WeeklyReviewPayload{
		WeekStart: "2024-01-01", UserID: "u1", CompletedGoals: 3, TotalGoals: 4,
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	*f.now = f.now.Add(30 * time.Minute)
	p, err := f.svc.BuildWeeklyReviewPayload(ctx, "u1", ReviewOptions{WeekStart: "2024-01-01"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.TotalGoals != 4 {
		t.Errorf("expected cached review within max age, got %#v", p)
	}

	*f.now = f.now.Add(time.Hour)
	p, err = f.svc.BuildWeeklyReviewPayload(ctx, "u1", ReviewOptions{WeekStart: "2024-01-01"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.TotalGoals != 0 {
		t.Errorf("expected recomputed review after max age, got %#v", p)
	}
}

func TestBuildWeeklyReviewPayload_InvalidInput(t *testing.T) {
	f := newReviewer(t, ReviewCache{})
	ctx := context.Background()

	if _, err := f.svc.BuildWeeklyReviewPayload(ctx, "u1", ReviewOptions{}); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument for missing week, got %v", err)
	}
	if _, err := f.svc.BuildWeeklyReviewPayload(ctx, "u1", ReviewOptions{WeekStart: "2024-01-01", GoalHistoryDays: intPtr(-1)}); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument for negative days, got %v", err)
	}
	if _, err := f.svc.BuildWeeklyReviewPayload(ctx, "u1", ReviewOptions{WeekStart: "2024-01-01", GoalHistoryDays: intPtr(0)}); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument for a zero-day window, got %v", err)
	}
	if _, err := f.svc.BuildWeeklyReviewPayload(ctx, "", ReviewOptions{WeekStart: "2024-01-01"}); !errors.Is(err, domain.ErrUnauthorized) {
		t.Errorf("expected ErrUnauthorized, got %v", err)
	}
}

func TestSaveAndListWeeklyReviews(t *testing.T) {
	f := newReviewer(t, ReviewCache{})
	ctx := context.Background()

	for _, week := range []string{"2024-01-01", "2024-01-08"} {
		if _, err := f.svc.SaveWeeklyReview(ctx, domain.WeeklyReviewPayload{WeekStart: week, UserID: "u1", HabitSuccessRate: 1.4}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	reviews, err := f.svc.ListWeeklyReviews(ctx, "u1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(reviews) != 2 || reviews[0].WeekStart != "2024-01-08" {
		t.Fatalf("expected newest first, got %#v", reviews)
	}
	if reviews[0].HabitSuccessRate != 1 {
		t.Errorf("expected clamped rate, got %f", reviews[0].HabitSuccessRate)
	}
	if reviews[0].Wins == nil {
		t.Error("expected non-nil wins")
	}

	if _, err := f.svc.SaveWeeklyReview(ctx, domain.WeeklyReviewPayload{WeekStart: "2024-01-01", UserID: "u1", CompletedGoals: 2, TotalGoals: 1}); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument, got %v", err)
	}
}
