package app

import (
	"context"
	"strings"

	"golang.org/x/sync/errgroup"

	"planner/internal/domain"
)

// GoalService encapsulates goal and habit-definition use cases.
type GoalService struct {
	repo  domain.GoalRepository
	clock Clock
}

// NewGoalService creates a GoalService backed by the given repository.
func NewGoalService(repo domain.GoalRepository, clock Clock) *GoalService {
	return &GoalService{repo: repo, clock: clock}
}

// LoadGoalsOverview loads every goal and the summary counts concurrently.
func (s *GoalService) LoadGoalsOverview(ctx context.Context, userID string) (*domain.GoalsOverview, error) {
	if err := domain.RequireUser(userID); err != nil {
		return nil, err
	}

	var overview domain.GoalsOverview
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		goals, err := s.repo.ListGoals(gctx, userID)
		overview.Goals = nonNil(goals)
		return err
	})
	g.Go(func() error {
		summary, err := s.repo.GoalSummary(gctx, userID)
		overview.Summary = summary
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &overview, nil
}

// LoadGoalProgress returns progress points from the last days days.
func (s *GoalService) LoadGoalProgress(ctx context.Context, userID string, days int) ([]domain.GoalProgressPoint, error) {
	if err := domain.RequireUser(userID); err != nil {
		return nil, err
	}
	if days <= 0 {
		return nil, domain.InvalidArgument("days window must be greater than zero")
	}
	since, err := domain.AddDays(s.clock.Today(), -(days - 1))
	if err != nil {
		return nil, err
	}
	history, err := s.repo.GoalProgressHistory(ctx, userID, since)
	if err != nil {
		return nil, err
	}
	return nonNil(history), nil
}

// RecordProgress appends a progress point for one of the user's goals.
// An empty day means today.
func (s *GoalService) RecordProgress(ctx context.Context, userID string, p domain.GoalProgressPoint) (*domain.GoalProgressPoint, error) {
	if err := domain.RequireUser(userID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(p.GoalID) == "" {
		return nil, domain.InvalidArgument("goal id is required")
	}
	if p.LogDate == "" {
		p.LogDate = s.clock.Today()
	} else {
		day, err := domain.NormalizeDay(p.LogDate, s.clock.location())
		if err != nil {
			return nil, err
		}
		p.LogDate = day
	}
	return s.repo.RecordGoalProgress(ctx, userID, p)
}

// CreateHabitDefinition validates def and inserts it as a habit goal.
func (s *GoalService) CreateHabitDefinition(ctx context.Context, def domain.HabitDefinition) (*domain.Goal, error) {
	if err := def.Normalize(); err != nil {
		return nil, err
	}
	return s.repo.InsertHabitGoal(ctx, def)
}

// UpdateGoalByID applies upd to the user's goal. ErrNotFound is returned
// when the goal does not belong to the user.
func (s *GoalService) UpdateGoalByID(ctx context.Context, userID, goalID string, upd domain.GoalUpdate) (*domain.Goal, error) {
	if err := domain.RequireUser(userID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(goalID) == "" {
		return nil, domain.InvalidArgument("goal id is required")
	}
	if err := upd.Validate(); err != nil {
		return nil, err
	}
	return s.repo.UpdateGoal(ctx, userID, goalID, upd)
}
