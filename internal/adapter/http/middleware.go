package adapthttp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"planner/internal/app"
	"planner/internal/domain"
)

type contextKey string

const userContextKey contextKey = "user"

const sessionCookie = "session"

func userIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(userContextKey).(string)
	return id
}

// requireUser resolves the caller's identity and rejects the request with
// 401 when there is none.
func (s *Server) requireUser(next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, err := s.resolveUser(r)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		ctx := context.WithValue(r.Context(), userContextKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// resolveUser checks the forward auth header, then the session cookie.
// With auth disabled, X-User-Id and bearer tokens are taken as user ids.
func (s *Server) resolveUser(r *http.Request) (string, error) {
	if s.disableAuth {
		id := strings.TrimSpace(r.Header.Get("X-User-Id"))
		if id == "" {
			if token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); ok {
				id = strings.TrimSpace(token)
			}
		}
		if id == "" {
			return "", fmt.Errorf("%w: missing user identifier", domain.ErrUnauthorized)
		}
		// User ids are UUIDs in every store.
		if _, err := uuid.Parse(id); err != nil {
			return "", fmt.Errorf("%w: user identifier is not a UUID", domain.ErrUnauthorized)
		}
		return id, nil
	}

	// Check for Authelia forward auth header first
	if remoteUser := r.Header.Get("Remote-User"); remoteUser != "" {
		user, err := s.authSvc.ValidateForwardAuth(r.Context(), remoteUser)
		if err != nil {
			return "", err
		}
		return user.ID, nil
	}

	// Fall back to cookie-based session
	cookie, err := r.Cookie(sessionCookie)
	if err != nil {
		return "", fmt.Errorf("%w: missing session", domain.ErrUnauthorized)
	}
	user, err := s.authSvc.ValidateSession(r.Context(), cookie.Value, r.UserAgent())
	if errors.Is(err, app.ErrSessionNotFound) || errors.Is(err, app.ErrSessionExpired) || errors.Is(err, app.ErrUserNotFound) {
		return "", fmt.Errorf("%w: %v", domain.ErrUnauthorized, err)
	}
	if err != nil {
		return "", err
	}
	return user.ID, nil
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.log.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
		)
	})
}
