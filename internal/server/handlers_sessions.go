package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/claude/replog/internal/ingest/aiplan"
	"github.com/claude/replog/internal/models"
	"github.com/claude/replog/internal/session"
	"github.com/go-chi/chi/v5"
)

// startSessionRequest accepts either a stored workout id or an inline AI
// plan payload. Exactly one must be set.
type startSessionRequest struct {
	WorkoutID string          `json:"workout_id"`
	Plan      *aiplan.Payload `json:"plan"`
}

// sessionView is the wire shape of a live session. Entries are included for
// every exercise so the client never needs a second round trip.
type sessionView struct {
	Token     string                   `json:"token"`
	State     string                   `json:"state"`
	Name      string                   `json:"name"`
	Cursor    int                      `json:"cursor"`
	DayName   string                   `json:"day_name,omitempty"`
	Exercises []models.SessionExercise `json:"exercises"`
	Entries   [][]models.SetEntry      `json:"entries"`
}

func (s *Server) viewOf(token string, sess *session.Session) sessionView {
	exercises := sess.Exercises()
	entries := make([][]models.SetEntry, len(exercises))
	for i := range exercises {
		entries[i] = sess.Entries(i)
	}
	var dayName string
	if cur, ok := sess.Current(); ok {
		dayName = cur.DayName
	}
	return sessionView{
		Token:     token,
		State:     sess.State().String(),
		Name:      sess.Name(),
		Cursor:    sess.Cursor(),
		DayName:   dayName,
		Exercises: exercises,
		Entries:   entries,
	}
}

// lockSession resolves a token and locks its live session for the caller,
// who must unlock it. A false return means the 404 has already been
// written, either because the token is unknown or because a racing request
// finished or abandoned the session first.
func (s *Server) lockSession(w http.ResponseWriter, token string) (*liveSession, bool) {
	ls, ok := s.sessions.get(token)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "session not found"})
		return nil, false
	}
	ls.mu.Lock()
	if ls.done {
		ls.mu.Unlock()
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "session not found"})
		return nil, false
	}
	return ls, true
}

func (s *Server) handleStartSession(w http.ResponseWriter, r *http.Request) {
	var req startSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}

	var src session.Source
	switch {
	case req.WorkoutID != "":
		def, ok := s.workouts.Get(r.Context(), req.WorkoutID)
		if !ok {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "workout not found"})
			return
		}
		src = session.FromWorkout(def)
	case req.Plan != nil:
		src = session.FromPlan(*req.Plan)
	default:
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "workout_id or plan required"})
		return
	}

	sess := session.Start(src, s.bounds)
	if sess.State() == session.StateInvalid {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": "workout has no exercises"})
		return
	}

	token := s.sessions.add(sess)
	s.log.Info("session started", "token", token, "name", sess.Name())
	writeJSON(w, http.StatusCreated, s.viewOf(token, sess))
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	ls, ok := s.lockSession(w, token)
	if !ok {
		return
	}
	defer ls.mu.Unlock()
	writeJSON(w, http.StatusOK, s.viewOf(token, ls.sess))
}

func (s *Server) handleRecordSet(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")

	var body struct {
		SetIndex int  `json:"set_index"`
		Reps     int  `json:"reps"`
		Exercise *int `json:"exercise_index"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}

	ls, ok := s.lockSession(w, token)
	if !ok {
		return
	}
	defer ls.mu.Unlock()

	if body.Exercise != nil {
		ls.sess.RecordSetAt(*body.Exercise, body.SetIndex, body.Reps)
	} else {
		ls.sess.RecordSet(body.SetIndex, body.Reps)
	}
	writeJSON(w, http.StatusOK, s.viewOf(token, ls.sess))
}

func (s *Server) handleClearSet(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	setIndex, err := strconv.Atoi(chi.URLParam(r, "setIndex"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid set index"})
		return
	}

	ls, ok := s.lockSession(w, token)
	if !ok {
		return
	}
	defer ls.mu.Unlock()

	ls.sess.ClearSet(setIndex)
	writeJSON(w, http.StatusOK, s.viewOf(token, ls.sess))
}

func (s *Server) handleAdvance(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	ls, ok := s.lockSession(w, token)
	if !ok {
		return
	}
	defer ls.mu.Unlock()

	ls.sess.Advance()
	writeJSON(w, http.StatusOK, s.viewOf(token, ls.sess))
}

func (s *Server) handleRetreat(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	ls, ok := s.lockSession(w, token)
	if !ok {
		return
	}
	defer ls.mu.Unlock()

	ls.sess.Retreat()
	writeJSON(w, http.StatusOK, s.viewOf(token, ls.sess))
}

func (s *Server) handleFinishSession(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	ls, ok := s.lockSession(w, token)
	if !ok {
		return
	}
	defer ls.mu.Unlock()

	result, err := s.finisher.Finish(r.Context(), ls.sess)
	if err != nil {
		if errors.Is(err, session.ErrNotCompleted) {
			writeJSON(w, http.StatusConflict, map[string]string{"error": "session is not completed"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	ls.done = true
	s.sessions.remove(token)

	resp := map[string]any{
		"session": result.Session,
		"remote":  string(result.Remote),
	}
	if result.LocalErr != nil {
		resp["local_error"] = result.LocalErr.Error()
	}
	if result.RemoteErr != nil {
		resp["remote_error"] = result.RemoteErr.Error()
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAbandonSession(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	ls, ok := s.lockSession(w, token)
	if !ok {
		return
	}
	defer ls.mu.Unlock()

	ls.done = true
	s.sessions.remove(token)
	s.log.Info("session abandoned", "token", token)
	w.WriteHeader(http.StatusNoContent)
}
