package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"planner/internal/domain"
)

const userColumns = "id, email, name, password_hash, created_at"

func scanUser(s rowScanner) (*domain.User, error) {
	var u domain.User
	if err := s.Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.CreatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByEmail retrieves a user by email.
func (d *DB) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	u, err := scanUser(d.sql.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email = $1", email))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, storeErr("get user by email", err)
	}
	return u, nil
}

// GetByID retrieves a user by ID.
func (d *DB) GetByID(ctx context.Context, id string) (*domain.User, error) {
	u, err := scanUser(d.sql.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id = $1", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		// A malformed id cannot match any user.
		err = storeErr("get user by id", err)
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return u, nil
}

// Create creates a new user. A duplicate email yields domain.ErrConflict.
func (d *DB) Create(ctx context.Context, email string, name *string, passwordHash string) (*domain.User, error) {
	u, err := scanUser(d.sql.QueryRowContext(ctx,
		"INSERT INTO users (email, name, password_hash) VALUES ($1, $2, $3) RETURNING "+userColumns,
		email, name, passwordHash))
	if err != nil {
		return nil, storeErr("create user", err)
	}
	return u, nil
}

// Count returns the total number of users.
func (d *DB) Count(ctx context.Context) (int, error) {
	var count int
	if err := d.sql.QueryRowContext(ctx, "SELECT COUNT(*) FROM users").Scan(&count); err != nil {
		return 0, storeErr("count users", err)
	}
	return count, nil
}

// SessionRepo implements session repository operations on DB.
type SessionRepo struct {
	db *DB
}

// NewSessionRepo wraps a DB as a SessionRepository.
func NewSessionRepo(db *DB) *SessionRepo {
	return &SessionRepo{db: db}
}

// Create creates a new session.
func (r *SessionRepo) Create(ctx context.Context, userID, token, userAgent, ip string, expiresAt time.Time) error {
	_, err := r.db.sql.ExecContext(ctx,
		"INSERT INTO sessions (user_id, token, user_agent, ip, expires_at) VALUES ($1, $2, $3, $4, $5)",
		userID, token, userAgent, ip, expiresAt,
	)
	if err != nil {
		return storeErr("create session", err)
	}
	return nil
}

// GetByToken retrieves a session by token.
func (r *SessionRepo) GetByToken(ctx context.Context, token string) (*domain.Session, error) {
	var s domain.Session
	err := r.db.sql.QueryRowContext(ctx,
		"SELECT token, user_id, user_agent, ip, expires_at, created_at FROM sessions WHERE token = $1",
		token,
	).Scan(&s.Token, &s.UserID, &s.UserAgent, &s.IP, &s.ExpiresAt, &s.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, storeErr("get session", err)
	}
	return &s, nil
}

// Delete deletes a session by token.
func (r *SessionRepo) Delete(ctx context.Context, token string) error {
	if _, err := r.db.sql.ExecContext(ctx, "DELETE FROM sessions WHERE token = $1", token); err != nil {
		return storeErr("delete session", err)
	}
	return nil
}

// DeleteExpired deletes all expired sessions.
func (r *SessionRepo) DeleteExpired(ctx context.Context) error {
	if _, err := r.db.sql.ExecContext(ctx, "DELETE FROM sessions WHERE expires_at < now()"); err != nil {
		return storeErr("delete expired sessions", err)
	}
	return nil
}
