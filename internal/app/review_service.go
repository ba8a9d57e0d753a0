package app

import (
	"context"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"planner/internal/domain"
	"planner/internal/logging"
)

// ReviewOptions selects the week to review.
type ReviewOptions struct {
	WeekStart       string
	GoalHistoryDays *int // nil means 7
}

// ReviewCache decides whether a persisted review is still served.
// A zero MaxAge keeps persisted reviews forever.
type ReviewCache struct {
	MaxAge time.Duration
}

// ReviewService composes weekly review payloads.
type ReviewService struct {
	goals   *GoalService
	reviews domain.ReviewRepository
	clock   Clock
	cache   ReviewCache
	log     *logging.Logger
}

// NewReviewService wires a ReviewService.
func NewReviewService(goals *GoalService, reviews domain.ReviewRepository, clock Clock, cache ReviewCache, log *logging.Logger) *ReviewService {
	if log == nil {
		log = logging.Nop()
	}
	return &ReviewService{
		goals:   goals,
		reviews: reviews,
		clock:   clock,
		cache:   cache,
		log:     log.With("service", "ReviewService"),
	}
}

// BuildWeeklyReviewPayload returns the persisted review for the week when
// the cache policy allows it, otherwise computes a fresh payload. The
// computed payload is not persisted.
func (s *ReviewService) BuildWeeklyReviewPayload(ctx context.Context, userID string, opts ReviewOptions) (*domain.WeeklyReviewPayload, error) {
	if err := domain.RequireUser(userID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(opts.WeekStart) == "" {
		return nil, domain.InvalidArgument("weekStart is required")
	}
	weekStart, err := domain.NormalizeDay(opts.WeekStart, s.clock.location())
	if err != nil {
		return nil, err
	}
	historyDays := 7
	if opts.GoalHistoryDays != nil {
		historyDays = *opts.GoalHistoryDays
	}
	if historyDays <= 0 {
		return nil, domain.InvalidArgument("days window must be greater than zero")
	}

	cached, err := s.reviews.FindWeeklyReview(ctx, userID, weekStart)
	if err != nil {
		return nil, err
	}
	if cached != nil && s.fresh(cached) {
		s.log.Debug("weekly review cache hit", "userId", userID, "weekStart", weekStart)
		p := cached.Payload
		return &p, nil
	}

	var (
		overview *domain.GoalsOverview
		history  []domain.GoalProgressPoint
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		overview, err = s.goals.LoadGoalsOverview(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		history, err = s.goals.LoadGoalProgress(gctx, userID, historyDays)
		return err
	})
	if err := g.Wait(); err != nil {
		s.log.Warn("weekly review: load context failed", "userId", userID, "error", err)
		return nil, err
	}

	completed := overview.Summary.Completed
	total := overview.Summary.TotalGoals
	habitRate := domain.CompletedFraction(history)
	narrative := domain.BuildNarrative(total, completed, habitRate)

	return &domain.WeeklyReviewPayload{
		WeekStart:        weekStart,
		UserID:           userID,
		CompletedGoals:   completed,
		TotalGoals:       total,
		HabitSuccessRate: domain.ClampRate(habitRate),
		LessonsLearned:   narrative.Lessons,
		Wins:             narrative.Wins,
		Obstacles:        narrative.Obstacles,
	}, nil
}

// SaveWeeklyReview persists p for its user and week, replacing any
// existing review.
func (s *ReviewService) SaveWeeklyReview(ctx context.Context, p domain.WeeklyReviewPayload) (*domain.WeeklyReviewPayload, error) {
	if err := domain.RequireUser(p.UserID); err != nil {
		return nil, err
	}
	weekStart, err := domain.NormalizeDay(p.WeekStart, s.clock.location())
	if err != nil {
		return nil, err
	}
	p.WeekStart = weekStart
	if p.TotalGoals < 0 || p.CompletedGoals < 0 || p.CompletedGoals > p.TotalGoals {
		return nil, domain.InvalidArgument("completedGoals must be within [0, totalGoals]")
	}
	p.HabitSuccessRate = domain.ClampRate(p.HabitSuccessRate)
	p.Wins = nonNil(p.Wins)
	p.Obstacles = nonNil(p.Obstacles)
	p.LessonsLearned = nonNil(p.LessonsLearned)

	saved, err := s.reviews.SaveWeeklyReview(ctx, p)
	if err != nil {
		return nil, err
	}
	return &saved.Payload, nil
}

// ListWeeklyReviews returns the user's persisted reviews, newest first.
func (s *ReviewService) ListWeeklyReviews(ctx context.Context, userID string) ([]domain.WeeklyReviewPayload, error) {
	if err := domain.RequireUser(userID); err != nil {
		return nil, err
	}
	reviews, err := s.reviews.ListWeeklyReviews(ctx, userID)
	if err != nil {
		return nil, err
	}
	return nonNil(reviews), nil
}

func (s *ReviewService) fresh(r *domain.WeeklyReview) bool {
	if s.cache.MaxAge <= 0 {
		return true
	}
	return s.clock.now().Sub(r.UpdatedAt) < s.cache.MaxAge
}
