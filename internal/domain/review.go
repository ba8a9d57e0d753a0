package domain

import (
	"context"
	"fmt"
	"math"
	"time"
)

// WeeklyReviewPayload is the computed (or cached) retrospective for a week.
type WeeklyReviewPayload struct {
	WeekStart        string   `json:"weekStart"`
	UserID           string   `json:"userId"`
	CompletedGoals   int      `json:"completedGoals"`
	TotalGoals       int      `json:"totalGoals"`
	HabitSuccessRate float64  `json:"habitSuccessRate"`
	LessonsLearned   []string `json:"lessonsLearned"`
	Wins             []string `json:"wins"`
	Obstacles        []string `json:"obstacles"`
}

// WeeklyReview is a persisted review payload with its row timestamps.
type WeeklyReview struct {
	Payload   WeeklyReviewPayload
	CreatedAt time.Time
	UpdatedAt time.Time
}

// WeeklyReviewSummary is the short-form reading of a review payload.
type WeeklyReviewSummary struct {
	Focus       string   `json:"focus"`
	Adjustments []string `json:"adjustments"`
	Affirmation string   `json:"affirmation"`
}

// ReviewRepository is the port for weekly review persistence.
type ReviewRepository interface {
	// FindWeeklyReview returns (nil, nil) when no review exists for the week.
	FindWeeklyReview(ctx context.Context, userID, weekStart string) (*WeeklyReview, error)
	// SaveWeeklyReview upserts on (user, week start).
	SaveWeeklyReview(ctx context.Context, p WeeklyReviewPayload) (*WeeklyReview, error)
	// ListWeeklyReviews returns reviews newest week first.
	ListWeeklyReviews(ctx context.Context, userID string) ([]WeeklyReviewPayload, error)
}

// Narrative is the wins/obstacles/lessons triple of a review.
type Narrative struct {
	Wins      []string
	Obstacles []string
	Lessons   []string
}

const (
	goalWinThreshold  = 0.8
	habitWinThreshold = 0.75
)

// ClampRate limits v to [0, 1].
func ClampRate(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

// BuildNarrative applies the fixed threshold rules. Every list in the
// result is non-empty.
func BuildNarrative(totalGoals, completedGoals int, habitSuccessRate float64) Narrative {
	var n Narrative
	goalRate := 0.0
	if totalGoals > 0 {
		goalRate = float64(completedGoals) / float64(totalGoals)
	}

	switch {
	case totalGoals == 0:
		n.Lessons = append(n.Lessons, "Define at least one meaningful goal before next week.")
	case goalRate >= goalWinThreshold:
		n.Wins = append(n.Wins, fmt.Sprintf("Delivered %d/%d goals (%d%%).",
			completedGoals, totalGoals, int(math.Round(goalRate*100))))
	default:
		n.Lessons = append(n.Lessons, "Re-align the priority list so each goal has dedicated time and energy.")
	}

	if habitSuccessRate >= habitWinThreshold {
		n.Wins = append(n.Wins, "Kept habit streaks consistent throughout the week.")
	} else {
		n.Obstacles = append(n.Obstacles, "Schedule habits before meetings to guard them.")
	}

	if len(n.Wins) == 0 {
		n.Wins = append(n.Wins, "Moved the needle despite constraints on the week.")
	}
	if len(n.Obstacles) == 0 {
		n.Obstacles = append(n.Obstacles, "Remember to protect calm focus blocks for deep work.")
	}
	if len(n.Lessons) == 0 {
		n.Lessons = append(n.Lessons, "Keep iterating on how rituals support bigger priorities.")
	}
	return n
}

// SummarizeWeeklyReview derives focus, adjustments and affirmation from p.
func SummarizeWeeklyReview(p WeeklyReviewPayload) WeeklyReviewSummary {
	focus := "Double down on the top priorities that slipped."
	if p.CompletedGoals == p.TotalGoals {
		focus = "Keep repeating what worked this week."
	}

	adjustments := make([]string, 0, len(p.Obstacles)+len(p.LessonsLearned))
	adjustments = append(adjustments, p.Obstacles...)
	adjustments = append(adjustments, p.LessonsLearned...)
	if len(adjustments) == 0 {
		adjustments = append(adjustments, "Take stock of your energy before the next sprint.")
	}

	return WeeklyReviewSummary{
		Focus:       focus,
		Adjustments: adjustments,
		Affirmation: fmt.Sprintf("You wrapped %d/%d goals and maintained %d%% habit consistency.",
			p.CompletedGoals, p.TotalGoals, int(math.Round(p.HabitSuccessRate*100))),
	}
}
