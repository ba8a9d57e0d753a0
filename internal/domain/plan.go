package domain

// WeeklyHabitSnapshot summarises a habit's recent history for planning.
type WeeklyHabitSnapshot struct {
	Name            string  `json:"name"`
	CompletionRate  float64 `json:"completionRate"`
	CurrentStreak   int     `json:"currentStreak"`
	LastCompletedAt *string `json:"lastCompletedAt"`
}

// DailyAvailability is the time budget for one day of the week.
type DailyAvailability struct {
	Date           string  `json:"date"`
	AvailableHours float64 `json:"availableHours"`
}

// WeeklyPlanInput is the composed planning context for a week.
type WeeklyPlanInput struct {
	UserID             string                `json:"userId"`
	WeekStart          string                `json:"weekStart"`
	Goals              []Goal                `json:"goals"`
	AvailableDays      []DailyAvailability   `json:"availableDays"`
	HabitSnapshots     []WeeklyHabitSnapshot `json:"habitSnapshots"`
	LastWeekCompletion float64               `json:"lastWeekCompletion"`
}

// BuildAvailability returns override verbatim when non-empty, otherwise
// seven consecutive days from weekStart with hoursPerDay each.
func BuildAvailability(weekStart string, hoursPerDay float64, override []DailyAvailability) ([]DailyAvailability, error) {
	if len(override) > 0 {
		return override, nil
	}
	out := make([]DailyAvailability, 0, 7)
	for i := 0; i < 7; i++ {
		day, err := AddDays(weekStart, i)
		if err != nil {
			return nil, err
		}
		out = append(out, DailyAvailability{Date: day, AvailableHours: hoursPerDay})
	}
	return out, nil
}

// MeanCompletionRate averages the snapshots' completion rates; 0 when empty.
func MeanCompletionRate(snapshots []WeeklyHabitSnapshot) float64 {
	if len(snapshots) == 0 {
		return 0
	}
	var sum float64
	for _, s := range snapshots {
		sum += s.CompletionRate
	}
	return sum / float64(len(snapshots))
}
