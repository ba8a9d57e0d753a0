// Package memory implements the domain repositories in memory for
// development and testing.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"planner/internal/domain"
)

type logKey struct {
	userID string
	day    string
}

type reviewKey struct {
	userID    string
	weekStart string
}

type progressRow struct {
	userID string
	point  domain.GoalProgressPoint
}

// DB implements every repository port with mutex-guarded maps.
type DB struct {
	mu  sync.Mutex
	now func() time.Time

	users    []*domain.User
	sessions map[string]*domain.Session

	goals    []*domain.Goal
	progress []progressRow

	logs   map[logKey]*domain.DailyLog
	checks map[string][]*domain.HabitCheck

	reviews map[reviewKey]*domain.WeeklyReview
}

// New creates a new in-memory database.
func New() *DB {
	return NewWithClock(time.Now)
}

// NewWithClock creates an in-memory database stamping records with now().
func NewWithClock(now func() time.Time) *DB {
	return &DB{
		now:      now,
		sessions: make(map[string]*domain.Session),
		logs:     make(map[logKey]*domain.DailyLog),
		checks:   make(map[string][]*domain.HabitCheck),
		reviews:  make(map[reviewKey]*domain.WeeklyReview),
	}
}

// Ensure interfaces are met.
var _ domain.UserRepository = (*DB)(nil)
var _ domain.GoalRepository = (*DB)(nil)
var _ domain.DailyLogRepository = (*DB)(nil)
var _ domain.ReviewRepository = (*DB)(nil)
var _ domain.SessionRepository = (*SessionRepo)(nil)

func (db *DB) stamp() time.Time {
	return db.now().UTC()
}

// --- GoalRepository ---

// ListGoals returns the user's goals by priority descending, then creation.
func (db *DB) ListGoals(ctx context.Context, userID string) ([]domain.Goal, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	out := make([]domain.Goal, 0)
	for _, g := range db.goals {
		if g.UserID == userID {
			out = append(out, *g)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Priority != out[j].Priority {
			return out[i].Priority > out[j].Priority
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

// GoalSummary counts the user's goals.
func (db *DB) GoalSummary(ctx context.Context, userID string) (domain.GoalSummary, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	var s domain.GoalSummary
	for _, g := range db.goals {
		if g.UserID != userID {
			continue
		}
		s.TotalGoals++
		if g.Priority > 0 {
			s.Prioritized++
		}
		if g.IsCompleted {
			s.Completed++
		}
		if g.IsActive && !g.IsCompleted {
			s.Active++
		}
	}
	return s, nil
}

// InsertHabitGoal stores a new habit goal.
func (db *DB) InsertHabitGoal(ctx context.Context, def domain.HabitDefinition) (*domain.Goal, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	now := db.stamp()
	g := &domain.Goal{
		ID:          uuid.NewString(),
		UserID:      def.UserID,
		Title:       def.Title,
		Description: def.Description,
		Priority:    def.Priority,
		IsActive:    def.IsActive,
		IsHabit:     true,
		Category:    def.Category,
		Cadence:     def.Cadence,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	db.goals = append(db.goals, g)
	ret := *g
	return &ret, nil
}

// UpdateGoal applies upd to the user's goal.
func (db *DB) UpdateGoal(ctx context.Context, userID, goalID string, upd domain.GoalUpdate) (*domain.Goal, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, g := range db.goals {
		if g.ID == goalID && g.UserID == userID {
			upd.Apply(g)
			g.UpdatedAt = db.stamp()
			ret := *g
			return &ret, nil
		}
	}
	return nil, domain.ErrNotFound
}

// GoalProgressHistory returns the user's progress since sinceDay, date ascending.
func (db *DB) GoalProgressHistory(ctx context.Context, userID, sinceDay string) ([]domain.GoalProgressPoint, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	out := make([]domain.GoalProgressPoint, 0)
	for _, r := range db.progress {
		if r.userID == userID && r.point.LogDate >= sinceDay {
			out = append(out, r.point)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].LogDate < out[j].LogDate
	})
	return out, nil
}

// RecordGoalProgress appends a progress point for one of the user's goals.
func (db *DB) RecordGoalProgress(ctx context.Context, userID string, p domain.GoalProgressPoint) (*domain.GoalProgressPoint, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, g := range db.goals {
		if g.ID == p.GoalID && g.UserID == userID {
			db.progress = append(db.progress, progressRow{userID: userID, point: p})
			return &p, nil
		}
	}
	return nil, domain.ErrNotFound
}

// AddGoal stores an arbitrary goal. Used to seed non-habit goals.
func (db *DB) AddGoal(g domain.Goal) domain.Goal {
	db.mu.Lock()
	defer db.mu.Unlock()

	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	if g.CreatedAt.IsZero() {
		g.CreatedAt = db.stamp()
		g.UpdatedAt = g.CreatedAt
	}
	db.goals = append(db.goals, &g)
	return g
}

// --- DailyLogRepository ---

// FindDailyLog returns the user's log for day, or nil.
func (db *DB) FindDailyLog(ctx context.Context, userID, day string) (*domain.DailyLog, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if l, ok := db.logs[logKey{userID, day}]; ok {
		ret := *l
		return &ret, nil
	}
	return nil, nil
}

// UpsertDailyLog returns the user's log for day, creating it if absent.
func (db *DB) UpsertDailyLog(ctx context.Context, userID, day string) (*domain.DailyLog, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	key := logKey{userID, day}
	l, ok := db.logs[key]
	if !ok {
		now := db.stamp()
		l = &domain.DailyLog{
			ID:        uuid.NewString(),
			UserID:    userID,
			LogDate:   day,
			CreatedAt: now,
			UpdatedAt: now,
		}
		db.logs[key] = l
	}
	ret := *l
	return &ret, nil
}

// ListHabitChecks returns a log's checks in insertion order.
func (db *DB) ListHabitChecks(ctx context.Context, dailyLogID string) ([]domain.HabitCheck, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	checks := db.checks[dailyLogID]
	out := make([]domain.HabitCheck, 0, len(checks))
	for _, c := range checks {
		out = append(out, *c)
	}
	return out, nil
}

// UpsertHabitCheck creates or updates the check keyed by (log, name).
func (db *DB) UpsertHabitCheck(ctx context.Context, in domain.HabitCheckUpsert) (*domain.HabitCheck, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if !db.logExists(in.DailyLogID) {
		return nil, domain.StoreFailure("upsert habit check: unknown daily log", nil)
	}

	now := db.stamp()
	var completedAt *time.Time
	if in.Completed {
		completedAt = &now
	}

	for _, c := range db.checks[in.DailyLogID] {
		if c.Name == in.Name {
			c.Completed = in.Completed
			c.Notes = in.Notes
			c.CompletedAt = completedAt
			c.UpdatedAt = now
			ret := *c
			return &ret, nil
		}
	}

	c := &domain.HabitCheck{
		ID:          uuid.NewString(),
		DailyLogID:  in.DailyLogID,
		Name:        in.Name,
		Completed:   in.Completed,
		Notes:       in.Notes,
		CompletedAt: completedAt,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	db.checks[in.DailyLogID] = append(db.checks[in.DailyLogID], c)
	ret := *c
	return &ret, nil
}

func (db *DB) logExists(id string) bool {
	for _, l := range db.logs {
		if l.ID == id {
			return true
		}
	}
	return false
}

// DailyCompletionSeries returns one point per day in [startDay, endDay].
func (db *DB) DailyCompletionSeries(ctx context.Context, userID, habitName, startDay, endDay string) ([]domain.CompletionPoint, error) {
	days, err := domain.DayRange(startDay, endDay)
	if err != nil {
		return nil, err
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	out := make([]domain.CompletionPoint, 0, len(days))
	for _, day := range days {
		p := domain.CompletionPoint{LogDate: day}
		if l, ok := db.logs[logKey{userID, day}]; ok {
			for _, c := range db.checks[l.ID] {
				if c.Name == habitName {
					p.Completed = c.Completed
					break
				}
			}
		}
		out = append(out, p)
	}
	return out, nil
}

// --- ReviewRepository ---

// FindWeeklyReview returns the persisted review for the week, or nil.
func (db *DB) FindWeeklyReview(ctx context.Context, userID, weekStart string) (*domain.WeeklyReview, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if r, ok := db.reviews[reviewKey{userID, weekStart}]; ok {
		ret := cloneReview(r)
		return &ret, nil
	}
	return nil, nil
}

// SaveWeeklyReview upserts the review for (user, week start).
func (db *DB) SaveWeeklyReview(ctx context.Context, p domain.WeeklyReviewPayload) (*domain.WeeklyReview, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	now := db.stamp()
	key := reviewKey{p.UserID, p.WeekStart}
	r, ok := db.reviews[key]
	if !ok {
		r = &domain.WeeklyReview{CreatedAt: now}
		db.reviews[key] = r
	}
	r.Payload = p
	r.UpdatedAt = now
	ret := cloneReview(r)
	return &ret, nil
}

// ListWeeklyReviews returns the user's reviews, newest week first.
func (db *DB) ListWeeklyReviews(ctx context.Context, userID string) ([]domain.WeeklyReviewPayload, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	out := make([]domain.WeeklyReviewPayload, 0)
	for k, r := range db.reviews {
		if k.userID == userID {
			out = append(out, cloneReview(r).Payload)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].WeekStart > out[j].WeekStart
	})
	return out, nil
}

func cloneReview(r *domain.WeeklyReview) domain.WeeklyReview {
	c := *r
	c.Payload.Wins = append([]string{}, r.Payload.Wins...)
	c.Payload.Obstacles = append([]string{}, r.Payload.Obstacles...)
	c.Payload.LessonsLearned = append([]string{}, r.Payload.LessonsLearned...)
	return c
}

// --- UserRepository ---

// GetByEmail retrieves a user by email.
func (db *DB) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, u := range db.users {
		if u.Email == email {
			ret := *u
			return &ret, nil
		}
	}
	return nil, nil
}

// GetByID retrieves a user by ID.
func (db *DB) GetByID(ctx context.Context, id string) (*domain.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, u := range db.users {
		if u.ID == id {
			ret := *u
			return &ret, nil
		}
	}
	return nil, nil
}

// Create creates a new user.
func (db *DB) Create(ctx context.Context, email string, name *string, passwordHash string) (*domain.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, u := range db.users {
		if u.Email == email {
			return nil, domain.ErrConflict
		}
	}

	u := &domain.User{
		ID:           uuid.NewString(),
		Email:        email,
		Name:         name,
		PasswordHash: passwordHash,
		CreatedAt:    db.stamp(),
	}
	db.users = append(db.users, u)
	ret := *u
	return &ret, nil
}

// Count returns the number of users.
func (db *DB) Count(ctx context.Context) (int, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	return len(db.users), nil
}

// --- SessionRepository ---

// SessionRepo implements domain.SessionRepository on DB.
type SessionRepo struct {
	db *DB
}

// NewSessionRepo returns the session repository view of db.
func (db *DB) NewSessionRepo() *SessionRepo {
	return &SessionRepo{db: db}
}

// Create creates a session.
func (r *SessionRepo) Create(ctx context.Context, userID, token, userAgent, ip string, expiresAt time.Time) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	r.db.sessions[token] = &domain.Session{
		Token:     token,
		UserID:    userID,
		UserAgent: userAgent,
		IP:        ip,
		ExpiresAt: expiresAt,
		CreatedAt: r.db.stamp(),
	}
	return nil
}

// GetByToken retrieves a session by token.
func (r *SessionRepo) GetByToken(ctx context.Context, token string) (*domain.Session, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if s, ok := r.db.sessions[token]; ok {
		ret := *s
		return &ret, nil
	}
	return nil, nil
}

// Delete deletes a session.
func (r *SessionRepo) Delete(ctx context.Context, token string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	delete(r.db.sessions, token)
	return nil
}

// DeleteExpired deletes all expired sessions.
func (r *SessionRepo) DeleteExpired(ctx context.Context) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	now := r.db.now()
	for k, v := range r.db.sessions {
		if now.After(v.ExpiresAt) {
			delete(r.db.sessions, k)
		}
	}
	return nil
}
