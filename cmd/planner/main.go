package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	adapthttp "planner/internal/adapter/http"
	"planner/internal/adapter/memory"
	"planner/internal/adapter/postgres"
	"planner/internal/app"
	"planner/internal/config"
	"planner/internal/domain"
	"planner/internal/logging"
)

// store is the union of the repository ports a backend provides.
type store interface {
	domain.UserRepository
	domain.GoalRepository
	domain.DailyLogRepository
	domain.ReviewRepository
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log, err := logging.New(cfg.LogMode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := run(cfg, log); err != nil {
		log.Fatal("planner exited", "error", err)
	}
}

func run(cfg config.Config, log *logging.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		db       store
		sessions domain.SessionRepository
	)
	if cfg.DatabaseURL == "" {
		log.Warn("DATABASE_URL not set; using the in-memory store")
		mem := memory.New()
		db, sessions = mem, mem.NewSessionRepo()
	} else {
		pg, err := postgres.Open(cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("db open: %w", err)
		}
		defer func() { _ = pg.Close() }()
		log.Info("database ready", "migrations", "applied")
		db, sessions = pg, postgres.NewSessionRepo(pg)
	}

	clock := app.SystemClock(cfg.Location)
	goalSvc := app.NewGoalService(db, clock)
	checklistSvc := app.NewChecklistService(db, clock)
	habitSvc := app.NewHabitService(db, clock)
	planSvc := app.NewPlanService(goalSvc, checklistSvc, habitSvc, clock, app.PlanDefaults{
		HoursPerDay: cfg.DefaultHoursPerDay,
		HistoryDays: cfg.DefaultHistoryDays,
	}, log)

	cache := app.ReviewCache{}
	if cfg.ReviewCache == config.ReviewCacheTTL {
		cache.MaxAge = cfg.ReviewCacheTTL
	}
	reviewSvc := app.NewReviewService(goalSvc, db, clock, cache, log)
	authSvc := app.NewAuthService(db, sessions).WithSessionTTL(cfg.SessionTTL)

	srv := adapthttp.New(adapthttp.Services{
		Goals:     goalSvc,
		Checklist: checklistSvc,
		Habits:    habitSvc,
		Plans:     planSvc,
		Reviews:   reviewSvc,
		Auth:      authSvc,
	}, cfg.WebDir, log).WithHistoryDays(cfg.DefaultHistoryDays)

	if cfg.OIDC.Enabled() {
		oidcCfg, err := adapthttp.NewOIDCConfig(ctx, cfg.OIDC.Issuer, cfg.OIDC.ClientID, cfg.OIDC.ClientSecret, cfg.OIDC.RedirectURL)
		if err != nil {
			return err
		}
		srv.WithOIDC(oidcCfg)
		log.Info("sso enabled", "issuer", cfg.OIDC.Issuer)
	}
	if cfg.AuthDisabled {
		log.Warn("authentication disabled; X-User-Id and bearer identities are trusted")
		srv.WithoutAuth()
	}

	go purgeSessions(ctx, authSvc, log)

	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", "addr", cfg.Addr, "app", cfg.AppName)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}

// purgeSessions deletes expired sessions hourly until ctx is done.
func purgeSessions(ctx context.Context, auth *app.AuthService, log *logging.Logger) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := auth.PurgeExpiredSessions(ctx); err != nil {
				log.Warn("purge expired sessions failed", "error", err)
			}
		}
	}
}
