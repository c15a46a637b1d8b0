package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/claude/replog/internal/models"
	"github.com/claude/replog/internal/session"
	"github.com/claude/replog/internal/store"
	"github.com/claude/replog/internal/workouts"
)

const testAPIKey = "test-key"

func newTestServer(t *testing.T) *Server {
	t.Helper()

	local, err := store.Open(t.TempDir())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { local.Close() })

	ws, err := workouts.New(context.Background(), local)
	if err != nil {
		t.Fatalf("workouts store: %v", err)
	}

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	finisher := &session.Finisher{Log: local, Logger: log}

	return New(ws, local, finisher, session.DefaultBounds, testAPIKey, log)
}

// do issues a request against the server's router. Mutating endpoints need
// the API key; withKey controls whether it is attached.
func do(t *testing.T, s *Server, method, path string, body any, withKey bool) *httptest.ResponseRecorder {
	t.Helper()

	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	if withKey {
		req.Header.Set("X-API-Key", testAPIKey)
	}
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rec.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

// buildWorkout creates a definition with one day and one exercise through
// the HTTP surface and returns its id.
func buildWorkout(t *testing.T, s *Server) string {
	t.Helper()

	rec := do(t, s, http.MethodPost, "/api/v1/workouts", map[string]string{"name": "Push Day"}, true)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create workout status = %d, want 201", rec.Code)
	}
	def := decode[models.WorkoutDefinition](t, rec)

	rec = do(t, s, http.MethodPost, "/api/v1/workouts/"+def.ID+"/days", map[string]string{"name": "Day A"}, true)
	if rec.Code != http.StatusCreated {
		t.Fatalf("add day status = %d, want 201", rec.Code)
	}
	day := decode[models.WorkoutDay](t, rec)

	rec = do(t, s, http.MethodPost, "/api/v1/workouts/"+def.ID+"/days/"+day.ID+"/exercises",
		workouts.ExerciseInput{Name: "Bench Press", Muscle: "chest", Sets: 3, Reps: "8-10"}, true)
	if rec.Code != http.StatusCreated {
		t.Fatalf("add exercise status = %d, want 201", rec.Code)
	}
	return def.ID
}

// TestAPIKeyAuthRejections verifies that mutating endpoints reject missing
// and wrong API keys while read endpoints stay open.
func TestAPIKeyAuthRejections(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodPost, "/api/v1/workouts", map[string]string{"name": "x"}, false)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("no key status = %d, want 401", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("auth error content type = %q, want application/json", ct)
	}
	if body := decode[map[string]string](t, rec); body["error"] == "" {
		t.Error("auth error body missing error field")
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/workouts", bytes.NewReader([]byte(`{"name":"x"}`)))
	req.Header.Set("X-API-Key", "wrong")
	wr := httptest.NewRecorder()
	s.ServeHTTP(wr, req)
	if wr.Code != http.StatusForbidden {
		t.Errorf("wrong key status = %d, want 403", wr.Code)
	}

	rec = do(t, s, http.MethodGet, "/api/v1/workouts", nil, false)
	if rec.Code != http.StatusOK {
		t.Errorf("open read status = %d, want 200", rec.Code)
	}
}

// TestWorkoutCRUD exercises the full definition editing surface: create,
// add day and exercise, read back, patch, delete.
func TestWorkoutCRUD(t *testing.T) {
	s := newTestServer(t)
	id := buildWorkout(t, s)

	rec := do(t, s, http.MethodGet, "/api/v1/workouts/"+id, nil, false)
	if rec.Code != http.StatusOK {
		t.Fatalf("get status = %d, want 200", rec.Code)
	}
	def := decode[models.WorkoutDefinition](t, rec)
	if len(def.Days) != 1 || len(def.Days[0].Exercises) != 1 {
		t.Fatalf("days = %d, exercises = %d, want 1/1", len(def.Days), len(def.Days[0].Exercises))
	}
	ex := def.Days[0].Exercises[0]
	if ex.RepTarget != 10 {
		t.Errorf("rep target for %q = %d, want 10", ex.Reps, ex.RepTarget)
	}
	if ex.Reps != "8-10" {
		t.Errorf("reps label = %q, want preserved original", ex.Reps)
	}

	newName := "Pull Day"
	rec = do(t, s, http.MethodPatch, "/api/v1/workouts/"+id, workouts.Patch{Name: &newName}, true)
	if rec.Code != http.StatusOK {
		t.Fatalf("patch status = %d, want 200", rec.Code)
	}
	if got := decode[models.WorkoutDefinition](t, rec); got.Name != "Pull Day" {
		t.Errorf("patched name = %q, want %q", got.Name, "Pull Day")
	}

	rec = do(t, s, http.MethodDelete, "/api/v1/workouts/"+id, nil, true)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d, want 204", rec.Code)
	}
	rec = do(t, s, http.MethodGet, "/api/v1/workouts/"+id, nil, false)
	if rec.Code != http.StatusNotFound {
		t.Errorf("get after delete status = %d, want 404", rec.Code)
	}
}

// TestAddDayUnknownWorkout verifies that adding a day to a missing workout
// reports 404 instead of silently succeeding.
func TestAddDayUnknownWorkout(t *testing.T) {
	s := newTestServer(t)
	rec := do(t, s, http.MethodPost, "/api/v1/workouts/nope/days", map[string]string{"name": "Day A"}, true)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

// TestSessionLifecycle walks a session from start through recording,
// advancing, and finishing, then checks the history endpoints.
func TestSessionLifecycle(t *testing.T) {
	s := newTestServer(t)
	id := buildWorkout(t, s)

	rec := do(t, s, http.MethodPost, "/api/v1/sessions", map[string]string{"workout_id": id}, true)
	if rec.Code != http.StatusCreated {
		t.Fatalf("start status = %d, want 201", rec.Code)
	}
	view := decode[sessionView](t, rec)
	if view.State != "in_progress" {
		t.Fatalf("state = %q, want in_progress", view.State)
	}
	if len(view.Exercises) != 1 {
		t.Fatalf("exercises = %d, want 1", len(view.Exercises))
	}
	token := view.Token

	rec = do(t, s, http.MethodPost, "/api/v1/sessions/"+token+"/sets",
		map[string]int{"set_index": 0, "reps": 12}, true)
	view = decode[sessionView](t, rec)
	if got := view.Entries[0][0].Actual; got == nil || *got != 12 {
		t.Fatalf("recorded reps = %v, want 12", got)
	}

	// Single exercise: one advance completes the session.
	rec = do(t, s, http.MethodPost, "/api/v1/sessions/"+token+"/advance", nil, true)
	view = decode[sessionView](t, rec)
	if view.State != "completed" {
		t.Fatalf("state after advance = %q, want completed", view.State)
	}

	rec = do(t, s, http.MethodPost, "/api/v1/sessions/"+token+"/finish", nil, true)
	if rec.Code != http.StatusOK {
		t.Fatalf("finish status = %d, want 200", rec.Code)
	}
	finish := decode[map[string]any](t, rec)
	if finish["remote"] != string(session.RemoteDisabled) {
		t.Errorf("remote = %v, want %q", finish["remote"], session.RemoteDisabled)
	}

	// The token is evicted after finish.
	rec = do(t, s, http.MethodGet, "/api/v1/sessions/"+token, nil, true)
	if rec.Code != http.StatusNotFound {
		t.Errorf("get after finish status = %d, want 404", rec.Code)
	}

	rec = do(t, s, http.MethodGet, "/api/v1/history", nil, false)
	if rec.Code != http.StatusOK {
		t.Fatalf("history status = %d, want 200", rec.Code)
	}
	sessions := decode[[]models.CompletedSession](t, rec)
	if len(sessions) != 1 {
		t.Fatalf("history sessions = %d, want 1", len(sessions))
	}
	got := sessions[0]
	if got.CompletedSets != 1 || got.CompletedReps != 12 || got.TotalSets != 3 {
		t.Errorf("totals = %d/%d/%d, want sets 1, reps 12, total 3",
			got.CompletedSets, got.CompletedReps, got.TotalSets)
	}

	rec = do(t, s, http.MethodGet, "/api/v1/history/"+got.ID, nil, false)
	if rec.Code != http.StatusOK {
		t.Errorf("get history status = %d, want 200", rec.Code)
	}
}

// TestStartSessionUnknownWorkout verifies a 404 when the referenced
// definition does not exist.
func TestStartSessionUnknownWorkout(t *testing.T) {
	s := newTestServer(t)
	rec := do(t, s, http.MethodPost, "/api/v1/sessions", map[string]string{"workout_id": "nope"}, true)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

// TestStartSessionEmptyWorkout verifies that a definition with no exercises
// is refused with 422 rather than producing an unusable session.
func TestStartSessionEmptyWorkout(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodPost, "/api/v1/workouts", map[string]string{"name": "Empty"}, true)
	def := decode[models.WorkoutDefinition](t, rec)

	rec = do(t, s, http.MethodPost, "/api/v1/sessions", map[string]string{"workout_id": def.ID}, true)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422", rec.Code)
	}
}

// TestStartSessionFromPlan verifies that an inline AI plan payload starts a
// session without any stored definition.
func TestStartSessionFromPlan(t *testing.T) {
	s := newTestServer(t)

	body := map[string]any{
		"plan": map[string]any{
			"workoutName": "AI Push",
			"dayName":     "Day 1",
			"exercises": []map[string]any{
				{"name": "Dips", "muscle": "chest", "sets": 3, "reps": "12"},
			},
		},
	}
	rec := do(t, s, http.MethodPost, "/api/v1/sessions", body, true)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201", rec.Code)
	}
	view := decode[sessionView](t, rec)
	if view.Name != "AI Push" {
		t.Errorf("name = %q, want %q", view.Name, "AI Push")
	}
	if len(view.Exercises) != 1 || view.Exercises[0].RepTarget != 12 {
		t.Errorf("exercises = %+v, want one with rep target 12", view.Exercises)
	}
}

// TestFinishBeforeCompleted verifies that finishing an in-progress session
// reports a conflict and keeps the session alive.
func TestFinishBeforeCompleted(t *testing.T) {
	s := newTestServer(t)
	id := buildWorkout(t, s)

	rec := do(t, s, http.MethodPost, "/api/v1/sessions", map[string]string{"workout_id": id}, true)
	view := decode[sessionView](t, rec)

	rec = do(t, s, http.MethodPost, "/api/v1/sessions/"+view.Token+"/finish", nil, true)
	if rec.Code != http.StatusConflict {
		t.Fatalf("finish status = %d, want 409", rec.Code)
	}

	rec = do(t, s, http.MethodGet, "/api/v1/sessions/"+view.Token, nil, true)
	if rec.Code != http.StatusOK {
		t.Errorf("session gone after failed finish, status = %d", rec.Code)
	}
}

// TestAbandonSession verifies that abandoning drops the session without
// writing anything to the local log.
func TestAbandonSession(t *testing.T) {
	s := newTestServer(t)
	id := buildWorkout(t, s)

	rec := do(t, s, http.MethodPost, "/api/v1/sessions", map[string]string{"workout_id": id}, true)
	view := decode[sessionView](t, rec)

	rec = do(t, s, http.MethodDelete, "/api/v1/sessions/"+view.Token, nil, true)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("abandon status = %d, want 204", rec.Code)
	}

	rec = do(t, s, http.MethodGet, "/api/v1/history", nil, false)
	sessions := decode[[]models.CompletedSession](t, rec)
	if len(sessions) != 0 {
		t.Errorf("history sessions = %d, want 0 after abandon", len(sessions))
	}
}

// TestConcurrentSessionRequests drives simultaneous set recording and reads
// against one token. Handlers serialize access per session, so this runs
// cleanly under the race detector and the last state is consistent.
func TestConcurrentSessionRequests(t *testing.T) {
	s := newTestServer(t)
	id := buildWorkout(t, s)

	rec := do(t, s, http.MethodPost, "/api/v1/sessions", map[string]string{"workout_id": id}, true)
	token := decode[sessionView](t, rec).Token

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			body := bytes.NewReader([]byte(`{"set_index":0,"reps":12}`))
			req := httptest.NewRequest(http.MethodPost, "/api/v1/sessions/"+token+"/sets", body)
			req.Header.Set("X-API-Key", testAPIKey)
			s.ServeHTTP(httptest.NewRecorder(), req)
		}()
		go func() {
			defer wg.Done()
			req := httptest.NewRequest(http.MethodGet, "/api/v1/sessions/"+token, nil)
			req.Header.Set("X-API-Key", testAPIKey)
			s.ServeHTTP(httptest.NewRecorder(), req)
		}()
	}
	wg.Wait()

	rec = do(t, s, http.MethodGet, "/api/v1/sessions/"+token, nil, true)
	view := decode[sessionView](t, rec)
	if got := view.Entries[0][0].Actual; got == nil || *got != 12 {
		t.Errorf("recorded reps = %v, want 12", got)
	}
}

// TestConcurrentFinishLogsOnce completes a session and fires several finish
// requests at once. Exactly one may succeed; the rest must see the evicted
// token, leaving a single history record.
func TestConcurrentFinishLogsOnce(t *testing.T) {
	s := newTestServer(t)
	id := buildWorkout(t, s)

	rec := do(t, s, http.MethodPost, "/api/v1/sessions", map[string]string{"workout_id": id}, true)
	token := decode[sessionView](t, rec).Token
	do(t, s, http.MethodPost, "/api/v1/sessions/"+token+"/sets", map[string]int{"set_index": 0, "reps": 10}, true)
	do(t, s, http.MethodPost, "/api/v1/sessions/"+token+"/advance", nil, true)

	const n = 4
	codes := make(chan int, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			req := httptest.NewRequest(http.MethodPost, "/api/v1/sessions/"+token+"/finish", nil)
			req.Header.Set("X-API-Key", testAPIKey)
			w := httptest.NewRecorder()
			s.ServeHTTP(w, req)
			codes <- w.Code
		}()
	}
	wg.Wait()
	close(codes)

	var oks int
	for code := range codes {
		if code == http.StatusOK {
			oks++
		}
	}
	if oks != 1 {
		t.Errorf("successful finishes = %d, want 1", oks)
	}

	rec = do(t, s, http.MethodGet, "/api/v1/history", nil, false)
	sessions := decode[[]models.CompletedSession](t, rec)
	if len(sessions) != 1 {
		t.Errorf("history sessions = %d, want 1", len(sessions))
	}
}

// TestParseTimeRangeEndOnly verifies a lone end parameter is honored, with
// the start defaulting to 30 days before it.
func TestParseTimeRangeEndOnly(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/history?end=2026-03-01", nil)
	start, end, err := parseTimeRange(req)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	wantEnd := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	if !end.Equal(wantEnd) {
		t.Errorf("end = %v, want %v", end, wantEnd)
	}
	if want := wantEnd.AddDate(0, 0, -30); !start.Equal(want) {
		t.Errorf("start = %v, want %v", start, want)
	}
}

// TestClearSet verifies the DELETE set endpoint resets a recorded value.
func TestClearSet(t *testing.T) {
	s := newTestServer(t)
	id := buildWorkout(t, s)

	rec := do(t, s, http.MethodPost, "/api/v1/sessions", map[string]string{"workout_id": id}, true)
	view := decode[sessionView](t, rec)
	token := view.Token

	do(t, s, http.MethodPost, "/api/v1/sessions/"+token+"/sets", map[string]int{"set_index": 1, "reps": 9}, true)
	rec = do(t, s, http.MethodDelete, "/api/v1/sessions/"+token+"/sets/1", nil, true)
	view = decode[sessionView](t, rec)
	if view.Entries[0][1].Actual != nil {
		t.Errorf("cleared set actual = %v, want nil", *view.Entries[0][1].Actual)
	}
}
