package adapthttp

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"planner/internal/domain"
)

func (s *Server) handleGoals(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.getGoals(w, r)
	case http.MethodPost:
		s.createGoal(w, r)
	default:
		methodNotAllowed(w, http.MethodGet, http.MethodPost)
	}
}

func (s *Server) getGoals(w http.ResponseWriter, r *http.Request) {
	userID := userIDFrom(r.Context())
	days, err := intQuery(r, "days", s.historyDays)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	overview, err := s.goals.LoadGoalsOverview(r.Context(), userID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	history, err := s.goals.LoadGoalProgress(r.Context(), userID, days)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"overview":       overview,
		"history":        history,
		"progressByGoal": domain.AggregateProgressByGoal(history),
	})
}

func (s *Server) createGoal(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Type        string  `json:"type"`
		Title       string  `json:"title"`
		Name        string  `json:"name"`
		Description *string `json:"description"`
		Priority    *int    `json:"priority"`
		IsActive    *bool   `json:"isActive"`
		Category    string  `json:"category"`
		Cadence     string  `json:"cadence"`
	}
	if err := parseJSON(r, &body); err != nil {
		s.fail(w, r, err)
		return
	}
	if body.Type != "habit" {
		s.fail(w, r, domain.InvalidArgument("unsupported payload"))
		return
	}

	def := domain.HabitDefinition{
		UserID:      userIDFrom(r.Context()),
		Title:       body.Title,
		Description: body.Description,
		IsActive:    true,
		Category:    domain.Category(body.Category),
		Cadence:     domain.Cadence(body.Cadence),
	}
	if def.Title == "" {
		def.Title = body.Name
	}
	if body.Priority != nil {
		def.Priority = *body.Priority
	}
	if body.IsActive != nil {
		def.IsActive = *body.IsActive
	}

	habit, err := s.goals.CreateHabitDefinition(r.Context(), def)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"habit": habit})
}

// goalPatch is the wire form of domain.GoalUpdate. Description is kept raw
// so that an explicit null can clear it.
type goalPatch struct {
	Title       *string         `json:"title"`
	Description json.RawMessage `json:"description"`
	Priority    *int            `json:"priority"`
	IsActive    *bool           `json:"isActive"`
	IsCompleted *bool           `json:"isCompleted"`
	Category    *string         `json:"category"`
	Cadence     *string         `json:"cadence"`
}

func (p goalPatch) toUpdate() (domain.GoalUpdate, error) {
	upd := domain.GoalUpdate{
		Title:       p.Title,
		Priority:    p.Priority,
		IsActive:    p.IsActive,
		IsCompleted: p.IsCompleted,
	}
	if len(p.Description) > 0 {
		desc := &domain.Nullable[string]{}
		if !bytes.Equal(p.Description, []byte("null")) {
			if err := json.Unmarshal(p.Description, &desc.Value); err != nil {
				return upd, domain.InvalidArgument("description must be a string or null")
			}
			desc.Valid = true
		}
		upd.Description = desc
	}
	if p.Category != nil {
		c := domain.Category(*p.Category)
		upd.Category = &c
	}
	if p.Cadence != nil {
		c := domain.Cadence(*p.Cadence)
		upd.Cadence = &c
	}
	return upd, nil
}

// goalID reads the {id} path segment. Ids that are not UUIDs cannot name
// a stored goal.
func goalID(r *http.Request) (string, error) {
	id := r.PathValue("id")
	if _, err := uuid.Parse(id); err != nil {
		return "", fmt.Errorf("%w: goal %q", domain.ErrNotFound, id)
	}
	return id, nil
}

func (s *Server) handleGoal(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPatch {
		methodNotAllowed(w, http.MethodPatch)
		return
	}
	id, err := goalID(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	var body goalPatch
	if err := parseJSON(r, &body); err != nil {
		s.fail(w, r, err)
		return
	}
	upd, err := body.toUpdate()
	if err != nil {
		s.fail(w, r, err)
		return
	}
	goal, err := s.goals.UpdateGoalByID(r.Context(), userIDFrom(r.Context()), id, upd)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, goal)
}

func (s *Server) handleGoalProgress(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}
	id, err := goalID(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	var body struct {
		Day       string  `json:"day"`
		Completed bool    `json:"completed"`
		Notes     *string `json:"notes"`
	}
	if err := parseJSON(r, &body); err != nil {
		s.fail(w, r, err)
		return
	}
	point, err := s.goals.RecordProgress(r.Context(), userIDFrom(r.Context()), domain.GoalProgressPoint{
		GoalID:    id,
		LogDate:   body.Day,
		Completed: body.Completed,
		Notes:     body.Notes,
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, point)
}
