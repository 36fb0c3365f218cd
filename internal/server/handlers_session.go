package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/claude/fitbuddy/internal/session"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// indexParam parses a non-negative integer URL parameter. Range checks are
// left to the session, which reports stale indices as not found.
func indexParam(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	n, err := strconv.Atoi(chi.URLParam(r, name))
	if err != nil || n < 0 {
		badRequest(w, "invalid "+name+" index")
		return 0, false
	}
	return n, true
}

func setParams(w http.ResponseWriter, r *http.Request) (ex, set int, ok bool) {
	if ex, ok = indexParam(w, r, "ex"); !ok {
		return
	}
	set, ok = indexParam(w, r, "set")
	return
}

// mutate applies fn and writes the session summary or the mapped error.
func (s *Server) mutate(w http.ResponseWriter, status int, fn func(*session.Session) error) {
	sum, err := s.ws.Mutate(fn)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, status, sum)
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	sum, err := s.ws.SessionSummary(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

func (s *Server) handleAddExercise(w http.ResponseWriter, r *http.Request) {
	var details session.ExerciseDetails
	if !decodeBody(w, r, &details) {
		return
	}
	if details.Name == "" {
		badRequest(w, "name is required")
		return
	}

	var key uuid.UUID
	sum, _ := s.ws.Mutate(func(sess *session.Session) error {
		key = sess.AddExercise(details)
		return nil
	})
	writeJSON(w, http.StatusCreated, map[string]any{"key": key, "session": sum})
}

func (s *Server) handleRemoveExercise(w http.ResponseWriter, r *http.Request) {
	ex, ok := indexParam(w, r, "ex")
	if !ok {
		return
	}
	s.mutate(w, http.StatusOK, func(sess *session.Session) error {
		return sess.RemoveExercise(ex)
	})
}

func (s *Server) handleAddSet(w http.ResponseWriter, r *http.Request) {
	ex, ok := indexParam(w, r, "ex")
	if !ok {
		return
	}

	var key uuid.UUID
	sum, err := s.ws.Mutate(func(sess *session.Session) error {
		var err error
		key, err = sess.AddSet(ex)
		return err
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"key": key, "session": sum})
}

func (s *Server) handleRemoveSet(w http.ResponseWriter, r *http.Request) {
	ex, set, ok := setParams(w, r)
	if !ok {
		return
	}
	s.mutate(w, http.StatusOK, func(sess *session.Session) error {
		return sess.RemoveSet(ex, set)
	})
}

// handleUpdateSet edits weight or reps. Input that fails the field's
// pattern is not an error for the caller: the response reports
// accepted=false and the unchanged session.
func (s *Server) handleUpdateSet(w http.ResponseWriter, r *http.Request) {
	ex, set, ok := setParams(w, r)
	if !ok {
		return
	}
	var req struct {
		Field session.Field `json:"field"`
		Value string        `json:"value"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Field != session.FieldWeight && req.Field != session.FieldReps {
		badRequest(w, `field must be "weight" or "reps"`)
		return
	}

	sum, err := s.ws.Mutate(func(sess *session.Session) error {
		return sess.UpdateSetField(ex, set, req.Field, req.Value)
	})
	switch {
	case errors.Is(err, session.ErrInputRejected):
		writeJSON(w, http.StatusOK, map[string]any{"accepted": false, "session": sum})
	case err != nil:
		s.writeError(w, err)
	default:
		writeJSON(w, http.StatusOK, map[string]any{"accepted": true, "session": sum})
	}
}

func (s *Server) handleToggleDone(w http.ResponseWriter, r *http.Request) {
	ex, set, ok := setParams(w, r)
	if !ok {
		return
	}
	s.mutate(w, http.StatusOK, func(sess *session.Session) error {
		return sess.ToggleDone(ex, set)
	})
}

// handleSetKind toggles the set kind, or assigns it when the body names one.
func (s *Server) handleSetKind(w http.ResponseWriter, r *http.Request) {
	ex, set, ok := setParams(w, r)
	if !ok {
		return
	}
	var req struct {
		Kind *session.Kind `json:"kind"`
	}
	if !decodeOptionalBody(w, r, &req) {
		return
	}

	s.mutate(w, http.StatusOK, func(sess *session.Session) error {
		if req.Kind == nil {
			return sess.ToggleSetKind(ex, set)
		}
		return sess.SetKind(ex, set, *req.Kind)
	})
}

// handleReorder applies a full ordering by exercise keys, or a single move
// when from/to indices are given instead.
func (s *Server) handleReorder(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Keys []uuid.UUID `json:"keys"`
		From *int        `json:"from"`
		To   *int        `json:"to"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	switch {
	case req.Keys != nil:
		s.mutate(w, http.StatusOK, func(sess *session.Session) error {
			return sess.Reorder(req.Keys)
		})
	case req.From != nil && req.To != nil:
		s.mutate(w, http.StatusOK, func(sess *session.Session) error {
			return sess.Move(*req.From, *req.To)
		})
	default:
		badRequest(w, "keys or from/to required")
	}
}

func (s *Server) handleFocus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Focused bool `json:"focused"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	writeJSON(w, http.StatusOK, s.ws.Focus(req.Focused))
}

func (s *Server) handleDiscard(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.ws.Discard())
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	result, err := s.ws.Submit(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.log.Info("workout submitted",
		"workout_id", result.WorkoutID,
		"exercises", result.Exercises,
		"sets", result.Sets,
	)
	writeJSON(w, http.StatusOK, result)
}
