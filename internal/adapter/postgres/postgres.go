// Package postgres implements the domain repositories using PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/lib/pq"
	"github.com/pressly/goose/v3"

	"planner/internal/domain"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// DB wraps a *sql.DB and implements domain repository interfaces.
type DB struct {
	sql *sql.DB
}

// Ensure interfaces are met.
var _ domain.UserRepository = (*DB)(nil)
var _ domain.GoalRepository = (*DB)(nil)
var _ domain.DailyLogRepository = (*DB)(nil)
var _ domain.ReviewRepository = (*DB)(nil)
var _ domain.SessionRepository = (*SessionRepo)(nil)

// Open connects to PostgreSQL, pings, and runs migrations.
func Open(connStr string) (*DB, error) {
	s, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}
	s.SetMaxOpenConns(10)
	s.SetMaxIdleConns(5)
	s.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := s.PingContext(ctx); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	d := &DB{sql: s}
	if err := d.migrate(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}
	return d, nil
}

// Close closes the underlying database connection.
func (d *DB) Close() error {
	return d.sql.Close()
}

func (d *DB) migrate(ctx context.Context) error {
	migrations, err := fs.Sub(migrationFS, "migrations")
	if err != nil {
		return fmt.Errorf("migrations sub-fs: %w", err)
	}
	provider, err := goose.NewProvider(goose.DialectPostgres, d.sql, migrations)
	if err != nil {
		return fmt.Errorf("create migration provider: %w", err)
	}
	if _, err := provider.Up(ctx); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// storeErr maps driver errors onto the domain error taxonomy.
func storeErr(op string, err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "23505": // unique_violation
			return fmt.Errorf("%w: %s", domain.ErrConflict, op)
		case "22P02": // invalid_text_representation, e.g. a malformed uuid
			return fmt.Errorf("%w: %s", domain.ErrNotFound, op)
		case "23503": // foreign_key_violation
			if strings.HasSuffix(pqErr.Constraint, "_user_id_fkey") {
				return fmt.Errorf("%w: unknown user: %s", domain.ErrUnauthorized, op)
			}
		}
	}
	return domain.StoreFailure(op, err)
}
