package adapthttp

import (
	"net/http"

	"planner/internal/app"
	"planner/internal/logging"
)

// Services bundles the application services the HTTP adapter drives.
type Services struct {
	Goals     *app.GoalService
	Checklist *app.ChecklistService
	Habits    *app.HabitService
	Plans     *app.PlanService
	Reviews   *app.ReviewService
	Auth      *app.AuthService
}

// Server is the driving HTTP adapter that routes requests to application
// services.
type Server struct {
	goals     *app.GoalService
	checklist *app.ChecklistService
	habits    *app.HabitService
	plans     *app.PlanService
	reviews   *app.ReviewService
	authSvc   *app.AuthService

	oidcConfig  *OIDCConfig
	historyDays int
	webDir      string
	log         *logging.Logger
	disableAuth bool
}

// New creates a Server wired to the given application services.
func New(svc Services, webDir string, log *logging.Logger) *Server {
	if log == nil {
		log = logging.Nop()
	}
	return &Server{
		goals:       svc.Goals,
		checklist:   svc.Checklist,
		habits:      svc.Habits,
		plans:       svc.Plans,
		reviews:     svc.Reviews,
		authSvc:     svc.Auth,
		oidcConfig:  &OIDCConfig{},
		historyDays: 7,
		webDir:      webDir,
		log:         log.With("component", "http"),
	}
}

// WithOIDC enables SSO login.
func (s *Server) WithOIDC(cfg *OIDCConfig) *Server {
	if cfg != nil {
		s.oidcConfig = cfg
	}
	return s
}

// WithHistoryDays sets the default window of GET /api/goals.
func (s *Server) WithHistoryDays(days int) *Server {
	if days > 0 {
		s.historyDays = days
	}
	return s
}

// WithoutAuth trusts the X-User-Id header and bearer tokens as user ids.
// Meant for tests and local development.
func (s *Server) WithoutAuth() *Server {
	s.disableAuth = true
	return s
}

// Handler returns the root http.Handler for the application.
func (s *Server) Handler() http.Handler {
	api := http.NewServeMux()
	api.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	})

	api.HandleFunc("/auth/login", s.handleLogin)
	api.HandleFunc("/auth/logout", s.handleLogout)
	api.HandleFunc("/auth/setup", s.handleSetupUser)
	api.HandleFunc("/auth/config", s.handleConfig)
	api.HandleFunc("/auth/sso/login", s.handleSSOLogin)
	api.HandleFunc("/auth/sso/callback", s.handleSSOCallback)
	api.Handle("/auth/me", s.requireUser(s.handleMe))

	api.Handle("/today", s.requireUser(s.handleToday))
	api.Handle("/habits/history", s.requireUser(s.handleHabitHistory))

	api.Handle("/goals", s.requireUser(s.handleGoals))
	api.Handle("/goals/{id}", s.requireUser(s.handleGoal))
	api.Handle("/goals/{id}/progress", s.requireUser(s.handleGoalProgress))

	api.Handle("/week", s.requireUser(s.handleWeek))
	api.Handle("/week/review", s.requireUser(s.handleWeekReview))
	api.Handle("/week/reviews", s.requireUser(s.handleWeekReviews))

	root := http.NewServeMux()
	root.Handle("/api/", http.StripPrefix("/api", api))
	root.Handle("/", spaFromDisk(s.webDir))

	return s.loggingMiddleware(withNoCache(root))
}
