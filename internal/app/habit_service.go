package app

import (
	"context"
	"strings"

	"planner/internal/domain"
)

// HabitService derives completion history and statistics for habits.
type HabitService struct {
	logs  domain.DailyLogRepository
	clock Clock
}

// NewHabitService creates a HabitService backed by the given repository.
func NewHabitService(logs domain.DailyLogRepository, clock Clock) *HabitService {
	return &HabitService{logs: logs, clock: clock}
}

// CompletionHistory returns one point per day for the last days days,
// ending today. Days without a check count as not completed.
func (s *HabitService) CompletionHistory(ctx context.Context, userID, habitName string, days int) ([]domain.CompletionPoint, error) {
	if err := domain.RequireUser(userID); err != nil {
		return nil, err
	}
	habitName = strings.TrimSpace(habitName)
	if habitName == "" {
		return nil, domain.InvalidArgument("habit name is required")
	}
	if days <= 0 {
		return nil, domain.InvalidArgument("days window must be greater than zero")
	}

	end := s.clock.Today()
	start, err := domain.AddDays(end, -(days - 1))
	if err != nil {
		return nil, err
	}
	return s.logs.DailyCompletionSeries(ctx, userID, habitName, start, end)
}

// Summary computes the completion summary over the last days days.
func (s *HabitService) Summary(ctx context.Context, userID, habitName string, days int) ([]domain.CompletionPoint, domain.CompletionSummary, error) {
	series, err := s.CompletionHistory(ctx, userID, habitName, days)
	if err != nil {
		return nil, domain.CompletionSummary{}, err
	}
	return series, domain.SummarizeCompletion(series), nil
}

// Snapshot summarises a habit for weekly planning.
func (s *HabitService) Snapshot(ctx context.Context, userID, habitName string, days int) (domain.WeeklyHabitSnapshot, error) {
	series, summary, err := s.Summary(ctx, userID, habitName, days)
	if err != nil {
		return domain.WeeklyHabitSnapshot{}, err
	}
	return domain.WeeklyHabitSnapshot{
		Name:            strings.TrimSpace(habitName),
		CompletionRate:  summary.CompletionRate,
		CurrentStreak:   summary.CurrentStreak,
		LastCompletedAt: domain.LastCompletedDay(series),
	}, nil
}
