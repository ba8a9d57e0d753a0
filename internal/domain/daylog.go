package domain

import (
	"context"
	"time"
)

// DailyLog is the per-user, per-date container of habit checks.
type DailyLog struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	LogDate   string    `json:"logDate"`
	Summary   *string   `json:"summary"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// HabitCheck records whether a named habit was completed on a day log.
// CompletedAt is non-nil exactly when Completed is true.
type HabitCheck struct {
	ID          string     `json:"id"`
	DailyLogID  string     `json:"dailyLogId"`
	Name        string     `json:"name"`
	Completed   bool       `json:"completed"`
	Notes       *string    `json:"notes"`
	CompletedAt *time.Time `json:"completedAt"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// DayLogWithHabits is a day log and its checks in insertion order.
type DayLogWithHabits struct {
	DailyLog
	Habits []HabitCheck `json:"habits"`
}

// Habit returns the check named name, if present.
func (d *DayLogWithHabits) Habit(name string) (HabitCheck, bool) {
	for _, h := range d.Habits {
		if h.Name == name {
			return h, true
		}
	}
	return HabitCheck{}, false
}

// HabitToggle is a request to set or flip a habit's completion on a day.
type HabitToggle struct {
	UserID    string
	HabitName string
	Day       string // empty means today
	Completed *bool  // nil flips the stored state
	Notes     *string
}

// HabitCheckUpsert carries the fields written by an upsert keyed on
// (DailyLogID, Name).
type HabitCheckUpsert struct {
	DailyLogID string
	Name       string
	Completed  bool
	Notes      *string
}

// CompletionPoint is one day of a dense habit completion series.
type CompletionPoint struct {
	LogDate   string `json:"logDate"`
	Completed bool   `json:"completed"`
}

// CompletionSummary is derived from a completion series.
type CompletionSummary struct {
	TotalDays      int     `json:"totalDays"`
	CompletedDays  int     `json:"completedDays"`
	CompletionRate float64 `json:"completionRate"`
	CurrentStreak  int     `json:"currentStreak"`
}

// DailyLogRepository is the port for day log and habit check persistence.
type DailyLogRepository interface {
	// FindDailyLog returns (nil, nil) when no log exists for the day.
	FindDailyLog(ctx context.Context, userID, day string) (*DailyLog, error)
	// UpsertDailyLog creates the log or returns the existing one.
	UpsertDailyLog(ctx context.Context, userID, day string) (*DailyLog, error)
	ListHabitChecks(ctx context.Context, dailyLogID string) ([]HabitCheck, error)
	UpsertHabitCheck(ctx context.Context, in HabitCheckUpsert) (*HabitCheck, error)
	// DailyCompletionSeries returns one point per day in [startDay, endDay];
	// days without a check are reported as not completed.
	DailyCompletionSeries(ctx context.Context, userID, habitName, startDay, endDay string) ([]CompletionPoint, error)
}
