package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"planner/internal/adapter/memory"
	"planner/internal/domain"
)

func newPlanner(t *testing.T, defaults PlanDefaults) (*PlanService, *memory.DB) {
	t.Helper()
	db := memory.NewWithClock(func() time.Time { return testNow })
	clock := FixedClock(testNow)
	svc := NewPlanService(
		NewGoalService(db, clock),
		NewChecklistService(db, clock),
		NewHabitService(db, clock),
		clock,
		defaults,
		nil,
	)
	return svc, db
}

func TestBuildWeeklyPlanInput_Defaults(t *testing.T) {
	svc, db := newPlanner(t, PlanDefaults{})
	db.AddGoal(domain.Goal{UserID: "u1", Title: "Ship", Priority: 1, IsActive: true})

	in, err := svc.BuildWeeklyPlanInput(context.Background(), "u1", PlanOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// 2024-01-03 is a Wednesday.
	if in.WeekStart != "2024-01-01" {
		t.Errorf("expected week start 2024-01-01, got %s", in.WeekStart)
	}
	if len(in.AvailableDays) != 7 {
		t.Fatalf("expected 7 days, got %d", len(in.AvailableDays))
	}
	if in.AvailableDays[6].Date != "2024-01-07" || in.AvailableDays[0].AvailableHours != 2 {
		t.Errorf("unexpected availability: %#v", in.AvailableDays)
	}
	if len(in.Goals) != 1 {
		t.Errorf("expected 1 goal, got %d", len(in.Goals))
	}
	if len(in.HabitSnapshots) != 0 || in.LastWeekCompletion != 0 {
		t.Errorf("expected no habits, got %#v / %f", in.HabitSnapshots, in.LastWeekCompletion)
	}
}

func TestBuildWeeklyPlanInput_HabitsFromToday(t *testing.T) {
	svc, db := newPlanner(t, PlanDefaults{HistoryDays: 2})
	seedCheck(t, db, "u1", "2024-01-02", "Write", true)
	seedCheck(t, db, "u1", "2024-01-03", "Write", true)
	seedCheck(t, db, "u1", "2024-01-03", "Run", false)

	in, err := svc.BuildWeeklyPlanInput(context.Background(), "u1", PlanOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(in.HabitSnapshots) != 2 {
		t.Fatalf("expected 2 snapshots, got %d", len(in.HabitSnapshots))
	}
	if in.HabitSnapshots[0].Name != "Write" || in.HabitSnapshots[0].CompletionRate != 1 || in.HabitSnapshots[0].CurrentStreak != 2 {
		t.Errorf("unexpected Write snapshot: %#v", in.HabitSnapshots[0])
	}
	if in.HabitSnapshots[1].Name != "Run" || in.HabitSnapshots[1].CompletionRate != 0 {
		t.Errorf("unexpected Run snapshot: %#v", in.HabitSnapshots[1])
	}
	if in.LastWeekCompletion != 0.5 {
		t.Errorf("expected mean completion 0.5, got %f", in.LastWeekCompletion)
	}
}

func TestBuildWeeklyPlanInput_Overrides(t *testing.T) {
	svc, db := newPlanner(t, PlanDefaults{})
	seedCheck(t, db, "u1", "2024-01-03", "Write", true)

	custom := []domain.DailyAvailability{{Date: "2024-01-08", AvailableHours: 4}}
	in, err := svc.BuildWeeklyPlanInput(context.Background(), "u1", PlanOptions{
		WeekStart:          "2024-01-08",
		HoursPerDay:        floatPtr(3),
		HabitNames:         []string{"Read", " Read", "Write"},
		AvailableDays:      custom,
		LastWeekCompletion: floatPtr(0.9),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if in.WeekStart != "2024-01-08" {
		t.Errorf("expected week start 2024-01-08, got %s", in.WeekStart)
	}
	if len(in.AvailableDays) != 1 || in.AvailableDays[0].AvailableHours != 4 {
		t.Errorf("expected availability override, got %#v", in.AvailableDays)
	}
	if len(in.HabitSnapshots) != 2 || in.HabitSnapshots[0].Name != "Read" {
		t.Errorf("expected deduplicated habit override, got %#v", in.HabitSnapshots)
	}
	if in.LastWeekCompletion != 0.9 {
		t.Errorf("expected completion override, got %f", in.LastWeekCompletion)
	}

	empty, err := svc.BuildWeeklyPlanInput(context.Background(), "u1", PlanOptions{HabitNames: []string{}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(empty.HabitSnapshots) != 0 {
		t.Errorf("expected empty override to suppress today's habits, got %#v", empty.HabitSnapshots)
	}
}

func TestBuildWeeklyPlanInput_InvalidInput(t *testing.T) {
	svc, _ := newPlanner(t, PlanDefaults{})
	ctx := context.Background()

	cases := []struct {
		name string
		opts PlanOptions
		want error
	}{
		{"negative hours", PlanOptions{HoursPerDay: floatPtr(-1)}, domain.ErrInvalidArgument},
		{"zero history", PlanOptions{HistoryDays: intPtr(0)}, domain.ErrInvalidArgument},
		{"bad week", PlanOptions{WeekStart: "next week"}, domain.ErrInvalidArgument},
		{"blank habit", PlanOptions{HabitNames: []string{""}}, domain.ErrInvalidArgument},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.BuildWeeklyPlanInput(ctx, "u1", tc.opts); !errors.Is(err, tc.want) {
				t.Errorf("expected %v, got %v", tc.want, err)
			}
		})
	}

	if _, err := svc.BuildWeeklyPlanInput(ctx, "", PlanOptions{}); !errors.Is(err, domain.ErrUnauthorized) {
		t.Errorf("expected ErrUnauthorized, got %v", err)
	}
}
