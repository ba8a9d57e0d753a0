package adapthttp

import (
	"net/http"

	"planner/internal/app"
	"planner/internal/domain"
)

// handleWeek composes the weekly planning context. GET takes query
// parameters; POST takes the same options as JSON plus availability and
// completion overrides.
func (s *Server) handleWeek(w http.ResponseWriter, r *http.Request) {
	var (
		opts app.PlanOptions
		err  error
	)
	switch r.Method {
	case http.MethodGet:
		opts, err = planOptionsFromQuery(r)
	case http.MethodPost:
		opts, err = planOptionsFromBody(r)
	default:
		methodNotAllowed(w, http.MethodGet, http.MethodPost)
		return
	}
	if err != nil {
		s.fail(w, r, err)
		return
	}

	in, err := s.plans.BuildWeeklyPlanInput(r.Context(), userIDFrom(r.Context()), opts)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, in)
}

func planOptionsFromQuery(r *http.Request) (app.PlanOptions, error) {
	q := r.URL.Query()
	opts := app.PlanOptions{WeekStart: q.Get("weekStart")}
	var err error
	if opts.HoursPerDay, err = optionalFloat(r, "hoursPerDay"); err != nil {
		return opts, err
	}
	if opts.HistoryDays, err = optionalInt(r, "historyDays"); err != nil {
		return opts, err
	}
	if habits, ok := q["habit"]; ok {
		opts.HabitNames = habits
	}
	return opts, nil
}

func planOptionsFromBody(r *http.Request) (app.PlanOptions, error) {
	var body struct {
		WeekStart          string                     `json:"weekStart"`
		HoursPerDay        *float64                   `json:"hoursPerDay"`
		HistoryDays        *int                       `json:"historyDays"`
		HabitNames         []string                   `json:"habitNames"`
		AvailableDays      []domain.DailyAvailability `json:"availableDays"`
		LastWeekCompletion *float64                   `json:"lastWeekCompletion"`
	}
	if err := parseJSON(r, &body); err != nil {
		return app.PlanOptions{}, err
	}
	return app.PlanOptions{
		WeekStart:          body.WeekStart,
		HoursPerDay:        body.HoursPerDay,
		HistoryDays:        body.HistoryDays,
		HabitNames:         body.HabitNames,
		AvailableDays:      body.AvailableDays,
		LastWeekCompletion: body.LastWeekCompletion,
	}, nil
}

// handleWeekReview serves GET (compose or fetch the review with its
// summary) and POST (persist a review) on /api/week/review.
func (s *Server) handleWeekReview(w http.ResponseWriter, r *http.Request) {
	userID := userIDFrom(r.Context())
	switch r.Method {
	case http.MethodGet:
		days, err := optionalInt(r, "days")
		if err != nil {
			s.fail(w, r, err)
			return
		}
		payload, err := s.reviews.BuildWeeklyReviewPayload(r.Context(), userID, app.ReviewOptions{
			WeekStart:       r.URL.Query().Get("weekStart"),
			GoalHistoryDays: days,
		})
		if err != nil {
			s.fail(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"payload": payload,
			"summary": domain.SummarizeWeeklyReview(*payload),
		})

	case http.MethodPost:
		var body domain.WeeklyReviewPayload
		if err := parseJSON(r, &body); err != nil {
			s.fail(w, r, err)
			return
		}
		body.UserID = userID
		saved, err := s.reviews.SaveWeeklyReview(r.Context(), body)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"payload": saved})

	default:
		methodNotAllowed(w, http.MethodGet, http.MethodPost)
	}
}

func (s *Server) handleWeekReviews(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}
	reviews, err := s.reviews.ListWeeklyReviews(r.Context(), userIDFrom(r.Context()))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"reviews": reviews})
}
