package domain

// SummarizeCompletion derives totals, rate and the trailing streak from a
// dense, date-ascending completion series.
func SummarizeCompletion(series []CompletionPoint) CompletionSummary {
	s := CompletionSummary{TotalDays: len(series)}
	for _, p := range series {
		if p.Completed {
			s.CompletedDays++
		}
	}
	if s.TotalDays > 0 {
		s.CompletionRate = float64(s.CompletedDays) / float64(s.TotalDays)
	}
	for i := len(series) - 1; i >= 0; i-- {
		if !series[i].Completed {
			break
		}
		s.CurrentStreak++
	}
	return s
}

// LastCompletedDay returns the latest completed day in series, or nil.
func LastCompletedDay(series []CompletionPoint) *string {
	for i := len(series) - 1; i >= 0; i-- {
		if series[i].Completed {
			d := series[i].LogDate
			return &d
		}
	}
	return nil
}

// GoalProgress is the per-goal reduction of progress points.
type GoalProgress struct {
	Completed int     `json:"completed"`
	Total     int     `json:"total"`
	Rate      float64 `json:"rate"`
}

// AggregateProgressByGoal buckets history by goal id. The result does not
// depend on the order of history.
func AggregateProgressByGoal(history []GoalProgressPoint) map[string]GoalProgress {
	out := make(map[string]GoalProgress)
	for _, p := range history {
		b := out[p.GoalID]
		b.Total++
		if p.Completed {
			b.Completed++
		}
		out[p.GoalID] = b
	}
	for id, b := range out {
		if b.Total > 0 {
			b.Rate = float64(b.Completed) / float64(b.Total)
		}
		out[id] = b
	}
	return out
}

// CompletedFraction returns the share of points marked completed; 0 when empty.
func CompletedFraction(history []GoalProgressPoint) float64 {
	if len(history) == 0 {
		return 0
	}
	n := 0
	for _, p := range history {
		if p.Completed {
			n++
		}
	}
	return float64(n) / float64(len(history))
}
