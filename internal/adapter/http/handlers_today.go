package adapthttp

import (
	"net/http"

	"planner/internal/domain"
)

// handleToday serves GET (read or create the day log) and PATCH (toggle a
// habit) on /api/today.
func (s *Server) handleToday(w http.ResponseWriter, r *http.Request) {
	userID := userIDFrom(r.Context())
	switch r.Method {
	case http.MethodGet:
		day, err := s.checklist.GetChecklist(r.Context(), userID, r.URL.Query().Get("day"))
		if err != nil {
			s.fail(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, day)

	case http.MethodPatch:
		var body struct {
			HabitName string  `json:"habitName"`
			Day       string  `json:"day"`
			Completed *bool   `json:"completed"`
			Notes     *string `json:"notes"`
		}
		if err := parseJSON(r, &body); err != nil {
			s.fail(w, r, err)
			return
		}
		day, err := s.checklist.ToggleHabit(r.Context(), domain.HabitToggle{
			UserID:    userID,
			HabitName: body.HabitName,
			Day:       body.Day,
			Completed: body.Completed,
			Notes:     body.Notes,
		})
		if err != nil {
			s.fail(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, day)

	default:
		methodNotAllowed(w, http.MethodGet, http.MethodPatch)
	}
}

func (s *Server) handleHabitHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}
	days, err := intQuery(r, "days", s.historyDays)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	series, summary, err := s.habits.Summary(r.Context(), userIDFrom(r.Context()), r.URL.Query().Get("habit"), days)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"series": series, "summary": summary})
}
