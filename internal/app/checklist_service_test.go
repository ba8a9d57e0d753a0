package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"planner/internal/adapter/memory"
	"planner/internal/domain"
)

var testNow = time.Date(2024, 1, 3, 9, 30, 0, 0, time.UTC)

func boolPtr(b bool) *bool { return &b }
func strPtr(s string) *string { return &s }
func intPtr(i int) *int { return &i }
func floatPtr(f float64) *float64 { return &f }

func newChecklist(t *testing.T) (*ChecklistService, *memory.DB) {
	t.Helper()
	db := memory.NewWithClock(func() time.Time { return testNow })
	return NewChecklistService(db, FixedClock(testNow)), db
}

func TestGetTodayChecklist_CreatesOnce(t *testing.T) {
	svc, _ := newChecklist(t)
	ctx := context.Background()

	first, err := svc.GetTodayChecklist(ctx, "u1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.LogDate != "2024-01-03" {
		t.Errorf("expected log date 2024-01-03, got %s", first.LogDate)
	}
	if first.Habits == nil || len(first.Habits) != 0 {
		t.Errorf("expected empty non-nil habits, got %#v", first.Habits)
	}

	second, err := svc.GetTodayChecklist(ctx, "u1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.ID != second.ID {
		t.Errorf("expected same log, got %s and %s", first.ID, second.ID)
	}
}

func TestGetTodayChecklist_RequiresUser(t *testing.T) {
	svc, _ := newChecklist(t)
	_, err := svc.GetTodayChecklist(context.Background(), "")
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Errorf("expected ErrUnauthorized, got %v", err)
	}
}

func TestToggleHabit_FlipsState(t *testing.T) {
	svc, _ := newChecklist(t)
	ctx := context.Background()

	day, err := svc.ToggleHabit(ctx, domain.HabitToggle{UserID: "u1", HabitName: "Write"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	h, ok := day.Habit("Write")
	if !ok || !h.Completed {
		t.Fatalf("expected Write completed, got %#v", day.Habits)
	}
	if h.CompletedAt == nil {
		t.Error("expected completedAt to be set")
	}

	day, err = svc.ToggleHabit(ctx, domain.HabitToggle{UserID: "u1", HabitName: "Write"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	h, _ = day.Habit("Write")
	if h.Completed {
		t.Error("expected second toggle to clear completion")
	}
	if h.CompletedAt != nil {
		t.Error("expected completedAt to be cleared")
	}
	if len(day.Habits) != 1 {
		t.Errorf("expected a single check row, got %d", len(day.Habits))
	}
}

func TestToggleHabit_ExplicitCompleted(t *testing.T) {
	svc, _ := newChecklist(t)
	ctx := context.Background()

	day, err := svc.ToggleHabit(ctx, domain.HabitToggle{UserID: "u1", HabitName: "Read", Completed: boolPtr(false)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if h, _ := day.Habit("Read"); h.Completed {
		t.Error("expected explicit false to be honoured on a new habit")
	}

	for i := 0; i < 2; i++ {
		day, err = svc.ToggleHabit(ctx, domain.HabitToggle{UserID: "u1", HabitName: "Read", Completed: boolPtr(true)})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if h, _ := day.Habit("Read"); !h.Completed {
		t.Error("expected explicit true to be idempotent")
	}
}

func TestToggleHabit_KeepsNotes(t *testing.T) {
	svc, _ := newChecklist(t)
	ctx := context.Background()

	if _, err := svc.ToggleHabit(ctx, domain.HabitToggle{UserID: "u1", HabitName: "Write", Notes: strPtr("500 words")}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	day, err := svc.ToggleHabit(ctx, domain.HabitToggle{UserID: "u1", HabitName: "Write"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	h, _ := day.Habit("Write")
	if h.Notes == nil || *h.Notes != "500 words" {
		t.Errorf("expected notes to survive, got %v", h.Notes)
	}
}

func TestToggleHabit_PastDate(t *testing.T) {
	svc, db := newChecklist(t)

	_, err := svc.ToggleHabit(context.Background(), domain.HabitToggle{UserID: "u1", HabitName: "Write", Day: "2024-01-02"})
	if !errors.Is(err, domain.ErrPastDate) {
		t.Fatalf("expected ErrPastDate, got %v", err)
	}
	if log, _ := db.FindDailyLog(context.Background(), "u1", "2024-01-02"); log != nil {
		t.Error("expected no log to be created for a rejected past date")
	}

	_, err = svc.ToggleHabit(context.Background(), domain.HabitToggle{UserID: "u1", HabitName: "", Day: "2024-01-02", Completed: boolPtr(true)})
	if !errors.Is(err, domain.ErrPastDate) {
		t.Fatalf("expected ErrPastDate for a blank name on a past day, got %v", err)
	}
}

func TestToggleHabit_FutureDate(t *testing.T) {
	svc, _ := newChecklist(t)

	day, err := svc.ToggleHabit(context.Background(), domain.HabitToggle{UserID: "u1", HabitName: "Write", Day: "2024-01-04"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if day.LogDate != "2024-01-04" {
		t.Errorf("expected 2024-01-04, got %s", day.LogDate)
	}
}

func TestToggleHabit_InvalidInput(t *testing.T) {
	svc, _ := newChecklist(t)
	ctx := context.Background()

	if _, err := svc.ToggleHabit(ctx, domain.HabitToggle{UserID: "u1", HabitName: "   "}); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument for blank name, got %v", err)
	}
	if _, err := svc.ToggleHabit(ctx, domain.HabitToggle{UserID: "u1", HabitName: "Write", Day: "not-a-day"}); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument for bad day, got %v", err)
	}
	if _, err := svc.ToggleHabit(ctx, domain.HabitToggle{HabitName: "Write"}); !errors.Is(err, domain.ErrUnauthorized) {
		t.Errorf("expected ErrUnauthorized, got %v", err)
	}
}

// vanishingLogs never finds an existing log, as if it was deleted mid-toggle.
type vanishingLogs struct {
	*memory.DB
}

func (v vanishingLogs) FindDailyLog(ctx context.Context, userID, day string) (*domain.DailyLog, error) {
	return nil, nil
}

func TestToggleHabit_RefreshMissing(t *testing.T) {
	db := memory.New()
	svc := NewChecklistService(vanishingLogs{db}, FixedClock(testNow))

	_, err := svc.ToggleHabit(context.Background(), domain.HabitToggle{UserID: "u1", HabitName: "Write"})
	if !errors.Is(err, domain.ErrStoreFailure) {
		t.Errorf("expected ErrStoreFailure, got %v", err)
	}
}
