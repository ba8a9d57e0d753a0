// Package domain contains the core business entities, derivations and
// repository ports of the planner.
package domain

import (
	"context"
	"time"
)

// User represents an identity that owns goals, day logs and reviews.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         *string   `json:"name"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Session represents an active login session.
type Session struct {
	Token     string
	UserID    string
	UserAgent string
	IP        string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// UserRepository defines the port for user persistence operations.
// Lookups return (nil, nil) when no user matches.
type UserRepository interface {
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
	Create(ctx context.Context, email string, name *string, passwordHash string) (*User, error)
	Count(ctx context.Context) (int, error)
}

// SessionRepository defines the port for session persistence operations.
type SessionRepository interface {
	Create(ctx context.Context, userID, token, userAgent, ip string, expiresAt time.Time) error
	GetByToken(ctx context.Context, token string) (*Session, error)
	Delete(ctx context.Context, token string) error
	DeleteExpired(ctx context.Context) error
}
