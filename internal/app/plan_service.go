package app

import (
	"context"
	"strings"

	"golang.org/x/sync/errgroup"

	"planner/internal/domain"
	"planner/internal/logging"
)

// PlanOptions tunes BuildWeeklyPlanInput. Zero values select defaults.
type PlanOptions struct {
	WeekStart   string   // empty means the Monday of the current week
	HoursPerDay *float64 // nil uses the configured default
	HistoryDays *int     // nil uses the configured default
	// HabitNames, when non-nil, replaces the habits found in today's checklist.
	HabitNames         []string
	AvailableDays      []domain.DailyAvailability
	LastWeekCompletion *float64
}

// PlanDefaults are applied to unset PlanOptions fields.
type PlanDefaults struct {
	HoursPerDay float64
	HistoryDays int
}

// PlanService composes the weekly planning context. It persists nothing.
type PlanService struct {
	goals     *GoalService
	checklist *ChecklistService
	habits    *HabitService
	clock     Clock
	defaults  PlanDefaults
	log       *logging.Logger
}

// NewPlanService wires a PlanService from the services it composes.
func NewPlanService(goals *GoalService, checklist *ChecklistService, habits *HabitService, clock Clock, defaults PlanDefaults, log *logging.Logger) *PlanService {
	if defaults.HoursPerDay == 0 {
		defaults.HoursPerDay = 2
	}
	if defaults.HistoryDays == 0 {
		defaults.HistoryDays = 7
	}
	if log == nil {
		log = logging.Nop()
	}
	return &PlanService{
		goals:     goals,
		checklist: checklist,
		habits:    habits,
		clock:     clock,
		defaults:  defaults,
		log:       log.With("service", "PlanService"),
	}
}

// BuildWeeklyPlanInput assembles goals, habit snapshots and availability
// for a week. If any dependency fails the whole composition fails.
func (s *PlanService) BuildWeeklyPlanInput(ctx context.Context, userID string, opts PlanOptions) (*domain.WeeklyPlanInput, error) {
	if err := domain.RequireUser(userID); err != nil {
		return nil, err
	}

	weekStart := s.clock.CurrentWeekStart()
	if strings.TrimSpace(opts.WeekStart) != "" {
		ws, err := domain.NormalizeDay(opts.WeekStart, s.clock.location())
		if err != nil {
			return nil, err
		}
		weekStart = ws
	}
	hoursPerDay := s.defaults.HoursPerDay
	if opts.HoursPerDay != nil {
		hoursPerDay = *opts.HoursPerDay
	}
	if hoursPerDay < 0 {
		return nil, domain.InvalidArgument("hoursPerDay must not be negative")
	}
	historyDays := s.defaults.HistoryDays
	if opts.HistoryDays != nil {
		historyDays = *opts.HistoryDays
	}
	if historyDays <= 0 {
		return nil, domain.InvalidArgument("days window must be greater than zero")
	}

	var (
		overview *domain.GoalsOverview
		today    *domain.DayLogWithHabits
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		overview, err = s.goals.LoadGoalsOverview(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		today, err = s.checklist.GetTodayChecklist(gctx, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		s.log.Warn("weekly plan: load context failed", "userId", userID, "error", err)
		return nil, err
	}

	names := opts.HabitNames
	if names == nil {
		names = make([]string, 0, len(today.Habits))
		for _, h := range today.Habits {
			names = append(names, h.Name)
		}
	}
	names, err := distinctHabitNames(names)
	if err != nil {
		return nil, err
	}

	snapshots := make([]domain.WeeklyHabitSnapshot, len(names))
	sg, sctx := errgroup.WithContext(ctx)
	for i, name := range names {
		sg.Go(func() error {
			snap, err := s.habits.Snapshot(sctx, userID, name, historyDays)
			if err != nil {
				return err
			}
			snapshots[i] = snap
			return nil
		})
	}
	if err := sg.Wait(); err != nil {
		s.log.Warn("weekly plan: habit snapshot failed", "userId", userID, "error", err)
		return nil, err
	}

	availability, err := domain.BuildAvailability(weekStart, hoursPerDay, opts.AvailableDays)
	if err != nil {
		return nil, err
	}

	lastWeek := domain.MeanCompletionRate(snapshots)
	if opts.LastWeekCompletion != nil {
		lastWeek = *opts.LastWeekCompletion
	}

	return &domain.WeeklyPlanInput{
		UserID:             userID,
		WeekStart:          weekStart,
		Goals:              overview.Goals,
		AvailableDays:      availability,
		HabitSnapshots:     snapshots,
		LastWeekCompletion: lastWeek,
	}, nil
}

func distinctHabitNames(in []string) ([]string, error) {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, n := range in {
		n = strings.TrimSpace(n)
		if n == "" {
			return nil, domain.InvalidArgument("habit names must not be empty")
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out, nil
}
