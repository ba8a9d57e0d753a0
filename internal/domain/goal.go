package domain

import (
	"context"
	"strings"
	"time"
)

// Category classifies a goal.
type Category string

const (
	CategoryCareer        Category = "career"
	CategoryProduct       Category = "product"
	CategoryHealth        Category = "health"
	CategoryCommunication Category = "communication"
)

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	switch c {
	case CategoryCareer, CategoryProduct, CategoryHealth, CategoryCommunication:
		return true
	}
	return false
}

// Cadence describes on which days a habit is expected.
type Cadence string

const (
	CadenceDaily   Cadence = "daily"
	CadenceWeekday Cadence = "weekday"
	CadenceWeekend Cadence = "weekend"
)

// Valid reports whether c is a known cadence.
func (c Cadence) Valid() bool {
	switch c {
	case CadenceDaily, CadenceWeekday, CadenceWeekend:
		return true
	}
	return false
}

// CategoryOrDefault maps unknown stored values to CategoryCareer.
func CategoryOrDefault(s string) Category {
	if c := Category(s); c.Valid() {
		return c
	}
	return CategoryCareer
}

// CadenceOrDefault maps unknown stored values to CadenceDaily.
func CadenceOrDefault(s string) Cadence {
	if c := Cadence(s); c.Valid() {
		return c
	}
	return CadenceDaily
}

// Goal is a prioritized objective; habits are goals with IsHabit set.
type Goal struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	Priority    int       `json:"priority"`
	IsActive    bool      `json:"isActive"`
	IsCompleted bool      `json:"isCompleted"`
	IsHabit     bool      `json:"isHabit"`
	Category    Category  `json:"category"`
	Cadence     Cadence   `json:"cadence"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// GoalSummary holds per-user goal counts.
type GoalSummary struct {
	TotalGoals  int `json:"totalGoals"`
	Prioritized int `json:"prioritized"`
	Completed   int `json:"completed"`
	Active      int `json:"active"`
}

// GoalsOverview is every goal of a user together with its summary counts.
type GoalsOverview struct {
	Goals   []Goal      `json:"goals"`
	Summary GoalSummary `json:"summary"`
}

// GoalProgressPoint is one append-only completion event for a goal.
type GoalProgressPoint struct {
	GoalID    string  `json:"goalId"`
	LogDate   string  `json:"logDate"`
	Completed bool    `json:"completed"`
	Notes     *string `json:"notes,omitempty"`
}

// HabitDefinition describes a habit goal to insert.
type HabitDefinition struct {
	UserID      string
	Title       string
	Description *string
	Priority    int
	IsActive    bool
	Category    Category
	Cadence     Cadence
}

// Normalize trims the title, applies defaults for empty enums and validates.
func (h *HabitDefinition) Normalize() error {
	if err := RequireUser(h.UserID); err != nil {
		return err
	}
	h.Title = strings.TrimSpace(h.Title)
	if h.Title == "" {
		return InvalidArgument("habit name is required")
	}
	if h.Category == "" {
		h.Category = CategoryCareer
	}
	if h.Cadence == "" {
		h.Cadence = CadenceDaily
	}
	if !h.Category.Valid() {
		return InvalidArgument("unknown category %q", h.Category)
	}
	if !h.Cadence.Valid() {
		return InvalidArgument("unknown cadence %q", h.Cadence)
	}
	return nil
}

// Nullable distinguishes "leave unchanged" (nil *Nullable) from "set to
// NULL" (Valid false) and "set to Value" (Valid true).
type Nullable[T any] struct {
	Value T
	Valid bool
}

// GoalUpdate enumerates every mutable goal field; nil leaves a field unchanged.
type GoalUpdate struct {
	Title       *string
	Description *Nullable[string]
	Priority    *int
	IsActive    *bool
	IsCompleted *bool
	Category    *Category
	Cadence     *Cadence
}

// IsEmpty reports whether the update changes nothing.
func (u GoalUpdate) IsEmpty() bool {
	return u.Title == nil && u.Description == nil && u.Priority == nil &&
		u.IsActive == nil && u.IsCompleted == nil && u.Category == nil && u.Cadence == nil
}

// Validate rejects empty updates, blank titles and unknown enums.
func (u GoalUpdate) Validate() error {
	if u.IsEmpty() {
		return InvalidArgument("no fields to update")
	}
	if u.Title != nil && strings.TrimSpace(*u.Title) == "" {
		return InvalidArgument("title cannot be empty")
	}
	if u.Category != nil && !u.Category.Valid() {
		return InvalidArgument("unknown category %q", *u.Category)
	}
	if u.Cadence != nil && !u.Cadence.Valid() {
		return InvalidArgument("unknown cadence %q", *u.Cadence)
	}
	return nil
}

// Apply copies every supplied field of u onto g.
func (u GoalUpdate) Apply(g *Goal) {
	if u.Title != nil {
		g.Title = strings.TrimSpace(*u.Title)
	}
	if u.Description != nil {
		if u.Description.Valid {
			v := u.Description.Value
			g.Description = &v
		} else {
			g.Description = nil
		}
	}
	if u.Priority != nil {
		g.Priority = *u.Priority
	}
	if u.IsActive != nil {
		g.IsActive = *u.IsActive
	}
	if u.IsCompleted != nil {
		g.IsCompleted = *u.IsCompleted
	}
	if u.Category != nil {
		g.Category = *u.Category
	}
	if u.Cadence != nil {
		g.Cadence = *u.Cadence
	}
}

// GoalRepository is the port for goal persistence.
type GoalRepository interface {
	// ListGoals returns goals ordered by priority descending, then creation ascending.
	ListGoals(ctx context.Context, userID string) ([]Goal, error)
	GoalSummary(ctx context.Context, userID string) (GoalSummary, error)
	InsertHabitGoal(ctx context.Context, def HabitDefinition) (*Goal, error)
	// UpdateGoal returns ErrNotFound when no goal matches (userID, goalID).
	UpdateGoal(ctx context.Context, userID, goalID string, upd GoalUpdate) (*Goal, error)
	// GoalProgressHistory returns progress points since sinceDay, date ascending.
	GoalProgressHistory(ctx context.Context, userID, sinceDay string) ([]GoalProgressPoint, error)
	// RecordGoalProgress appends a progress point; ErrNotFound if the goal is not the user's.
	RecordGoalProgress(ctx context.Context, userID string, p GoalProgressPoint) (*GoalProgressPoint, error)
}
