package app

import (
	"context"
	"fmt"
	"strings"

	"planner/internal/domain"
)

// ChecklistService manages the per-day habit checklist.
type ChecklistService struct {
	logs  domain.DailyLogRepository
	clock Clock
}

// NewChecklistService creates a ChecklistService backed by the given repository.
func NewChecklistService(logs domain.DailyLogRepository, clock Clock) *ChecklistService {
	return &ChecklistService{logs: logs, clock: clock}
}

// GetTodayChecklist returns today's log, creating it if absent.
func (s *ChecklistService) GetTodayChecklist(ctx context.Context, userID string) (*domain.DayLogWithHabits, error) {
	return s.GetChecklist(ctx, userID, "")
}

// GetChecklist returns the log for day (today when empty), creating it if
// absent. Concurrent callers converge on the same row.
func (s *ChecklistService) GetChecklist(ctx context.Context, userID, day string) (*domain.DayLogWithHabits, error) {
	if err := domain.RequireUser(userID); err != nil {
		return nil, err
	}
	logDate, err := s.resolveDay(day)
	if err != nil {
		return nil, err
	}
	return s.ensureDayLog(ctx, userID, logDate)
}

// ToggleHabit sets or flips a habit's completion and returns the refreshed
// day. Days before today are rejected with ErrPastDate before any other
// argument is checked.
func (s *ChecklistService) ToggleHabit(ctx context.Context, t domain.HabitToggle) (*domain.DayLogWithHabits, error) {
	if err := domain.RequireUser(t.UserID); err != nil {
		return nil, err
	}
	logDate, err := s.resolveDay(t.Day)
	if err != nil {
		return nil, err
	}
	if logDate < s.clock.Today() {
		return nil, fmt.Errorf("%w: %s", domain.ErrPastDate, logDate)
	}
	name := strings.TrimSpace(t.HabitName)
	if name == "" {
		return nil, domain.InvalidArgument("habitName is required")
	}

	dayLog, err := s.ensureDayLog(ctx, t.UserID, logDate)
	if err != nil {
		return nil, err
	}

	existing, found := dayLog.Habit(name)
	completed := !(found && existing.Completed)
	if t.Completed != nil {
		completed = *t.Completed
	}
	notes := t.Notes
	if notes == nil && found {
		notes = existing.Notes
	}

	if _, err := s.logs.UpsertHabitCheck(ctx, domain.HabitCheckUpsert{
		DailyLogID: dayLog.ID,
		Name:       name,
		Completed:  completed,
		Notes:      notes,
	}); err != nil {
		return nil, err
	}

	refreshed, err := s.load(ctx, t.UserID, logDate)
	if err != nil {
		return nil, err
	}
	if refreshed == nil {
		return nil, domain.StoreFailure("refresh day log after habit toggle", nil)
	}
	return refreshed, nil
}

func (s *ChecklistService) resolveDay(day string) (string, error) {
	if strings.TrimSpace(day) == "" {
		return s.clock.Today(), nil
	}
	return domain.NormalizeDay(day, s.clock.location())
}

func (s *ChecklistService) ensureDayLog(ctx context.Context, userID, logDate string) (*domain.DayLogWithHabits, error) {
	existing, err := s.load(ctx, userID, logDate)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	created, err := s.logs.UpsertDailyLog(ctx, userID, logDate)
	if err != nil {
		return nil, err
	}
	habits, err := s.logs.ListHabitChecks(ctx, created.ID)
	if err != nil {
		return nil, err
	}
	return &domain.DayLogWithHabits{DailyLog: *created, Habits: nonNil(habits)}, nil
}

func (s *ChecklistService) load(ctx context.Context, userID, logDate string) (*domain.DayLogWithHabits, error) {
	log, err := s.logs.FindDailyLog(ctx, userID, logDate)
	if err != nil || log == nil {
		return nil, err
	}
	habits, err := s.logs.ListHabitChecks(ctx, log.ID)
	if err != nil {
		return nil, err
	}
	return &domain.DayLogWithHabits{DailyLog: *log, Habits: nonNil(habits)}, nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
