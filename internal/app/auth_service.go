// Package app holds the application services: the planning and review
// pipeline and the identity services backing the HTTP boundary.
package app

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"strings"
	"time"

	"planner/internal/domain"

	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrInvalidCredentials indicates that the provided email or password was incorrect.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrSessionNotFound indicates that the requested session does not exist.
	ErrSessionNotFound = errors.New("session not found")
	// ErrSessionExpired indicates that the session has expired.
	ErrSessionExpired = errors.New("session expired")
	// ErrUserNotFound indicates that the user does not exist.
	ErrUserNotFound = errors.New("user not found")
)

const defaultSessionTTL = 24 * time.Hour

// AuthService handles authentication and session management.
type AuthService struct {
	users      domain.UserRepository
	sessions   domain.SessionRepository
	sessionTTL time.Duration
}

// NewAuthService creates a new authentication service.
func NewAuthService(users domain.UserRepository, sessions domain.SessionRepository) *AuthService {
	return &AuthService{
		users:      users,
		sessions:   sessions,
		sessionTTL: defaultSessionTTL,
	}
}

// WithSessionTTL overrides how long new sessions stay valid.
func (s *AuthService) WithSessionTTL(ttl time.Duration) *AuthService {
	if ttl > 0 {
		s.sessionTTL = ttl
	}
	return s
}

// SessionTTL reports the lifetime of new sessions.
func (s *AuthService) SessionTTL() time.Duration {
	return s.sessionTTL
}

// Login authenticates a user and creates a session.
func (s *AuthService) Login(ctx context.Context, email, password, userAgent, ip string) (string, error) {
	user, err := s.users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil || user == nil || user.PasswordHash == "" {
		return "", ErrInvalidCredentials
	}

	if err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	return s.newSession(ctx, user.ID, userAgent, ip)
}

// Logout invalidates a session.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	return s.sessions.Delete(ctx, token)
}

// ValidateSession checks if a session token is valid and matches the user agent.
func (s *AuthService) ValidateSession(ctx context.Context, token, userAgent string) (*domain.User, error) {
	session, err := s.sessions.GetByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}

	if time.Now().After(session.ExpiresAt) {
		_ = s.sessions.Delete(ctx, token)
		return nil, ErrSessionExpired
	}

	if session.UserAgent != userAgent {
		_ = s.sessions.Delete(ctx, token)
		return nil, ErrSessionExpired
	}

	user, err := s.users.GetByID(ctx, session.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	return user, nil
}

// CreateInitialUser creates the first user if no users exist.
func (s *AuthService) CreateInitialUser(ctx context.Context, email, password string) error {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return domain.InvalidArgument("email and password are required")
	}

	count, err := s.users.Count(ctx)
	if err != nil {
		return err
	}

	if count > 0 {
		return domain.ErrConflict
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	_, err = s.users.Create(ctx, email, nil, string(hash))
	return err
}

// ValidateForwardAuth resolves the user named by a forward-auth
// Remote-User header, provisioning it on first sight.
func (s *AuthService) ValidateForwardAuth(ctx context.Context, remoteUser string) (*domain.User, error) {
	remoteUser = normalizeEmail(remoteUser)
	if remoteUser == "" {
		return nil, domain.ErrUnauthorized
	}
	return s.ensureUser(ctx, remoteUser)
}

// LoginWithUser creates a session for an already authenticated user (e.g. via SSO).
func (s *AuthService) LoginWithUser(ctx context.Context, email, userAgent, ip string) (string, error) {
	user, err := s.ensureUser(ctx, normalizeEmail(email))
	if err != nil {
		return "", err
	}
	return s.newSession(ctx, user.ID, userAgent, ip)
}

// ensureUser returns the user with email, creating a password-less user
// if missing. A concurrent creator winning the race is tolerated.
func (s *AuthService) ensureUser(ctx context.Context, email string) (*domain.User, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user != nil {
		return user, nil
	}

	user, err = s.users.Create(ctx, email, nil, "")
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, domain.ErrConflict) {
		return nil, err
	}
	user, err = s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

func (s *AuthService) newSession(ctx context.Context, userID, userAgent, ip string) (string, error) {
	token, err := generateToken()
	if err != nil {
		return "", err
	}

	expiresAt := time.Now().Add(s.sessionTTL)
	if err := s.sessions.Create(ctx, userID, token, userAgent, ip, expiresAt); err != nil {
		return "", err
	}
	return token, nil
}

// PurgeExpiredSessions removes sessions past their expiry.
func (s *AuthService) PurgeExpiredSessions(ctx context.Context) error {
	return s.sessions.DeleteExpired(ctx)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func generateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

// ConstantTimeCompare performs a constant-time comparison of two strings.
func ConstantTimeCompare(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
