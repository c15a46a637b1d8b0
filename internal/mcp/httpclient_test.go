package mcp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/claude/replog/internal/models"
)

// newTestServer creates an httptest server that routes requests to handler
// functions keyed by path. Verifies the HTTP client sends correct paths and
// query params.
func newTestServer(t *testing.T, handlers map[string]http.HandlerFunc) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h, ok := handlers[r.URL.Path]
		if !ok {
			t.Errorf("unexpected request path: %s", r.URL.Path)
			http.NotFound(w, r)
			return
		}
		h(w, r)
	}))
}

func writeTestJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		t.Fatal(err)
	}
}

// TestListWorkouts verifies the client parses the workout list response.
func TestListWorkouts(t *testing.T) {
	ts := newTestServer(t, map[string]http.HandlerFunc{
		"/api/v1/workouts": func(w http.ResponseWriter, r *http.Request) {
			writeTestJSON(t, w, []models.WorkoutDefinition{
				{ID: "workout_abc", Name: "Push Day", Origin: models.OriginCustom},
			})
		},
	})
	defer ts.Close()

	client := NewHTTPClient(ts.URL)
	defs, err := client.ListWorkouts(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(defs) != 1 {
		t.Fatalf("got %d workouts, want 1", len(defs))
	}
	if defs[0].Name != "Push Day" {
		t.Errorf("name = %q, want %q", defs[0].Name, "Push Day")
	}
}

// TestGetWorkoutNotFound verifies that a 404 maps to (nil, nil), matching
// the LocalSource contract for a missing definition.
func TestGetWorkoutNotFound(t *testing.T) {
	ts := newTestServer(t, map[string]http.HandlerFunc{
		"/api/v1/workouts/missing": func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		},
	})
	defer ts.Close()

	client := NewHTTPClient(ts.URL)
	def, err := client.GetWorkout(context.Background(), "missing")
	if err != nil {
		t.Fatal(err)
	}
	if def != nil {
		t.Errorf("def = %+v, want nil", def)
	}
}

// TestQuerySessions verifies the client sends the time range params and
// parses the session history response.
func TestQuerySessions(t *testing.T) {
	ts := newTestServer(t, map[string]http.HandlerFunc{
		"/api/v1/history": func(w http.ResponseWriter, r *http.Request) {
			if got := r.URL.Query().Get("start"); got == "" {
				t.Error("start param missing")
			}
			if got := r.URL.Query().Get("end"); got == "" {
				t.Error("end param missing")
			}
			writeTestJSON(t, w, []models.CompletedSession{
				{ID: "s1", Name: "Push Day", CompletedSets: 6, CompletedReps: 54},
			})
		},
	})
	defer ts.Close()

	client := NewHTTPClient(ts.URL)
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 1, 7, 0, 0, 0, 0, time.UTC)

	sessions, err := client.QuerySessions(context.Background(), start, end)
	if err != nil {
		t.Fatal(err)
	}
	if len(sessions) != 1 {
		t.Fatalf("got %d sessions, want 1", len(sessions))
	}
	if sessions[0].CompletedReps != 54 {
		t.Errorf("completed reps = %d, want 54", sessions[0].CompletedReps)
	}
}

// TestUnsyncedSessions verifies the unsynced history path.
func TestUnsyncedSessions(t *testing.T) {
	ts := newTestServer(t, map[string]http.HandlerFunc{
		"/api/v1/history/unsynced": func(w http.ResponseWriter, r *http.Request) {
			writeTestJSON(t, w, []models.CompletedSession{{ID: "s1"}, {ID: "s2"}})
		},
	})
	defer ts.Close()

	client := NewHTTPClient(ts.URL)
	sessions, err := client.UnsyncedSessions(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(sessions) != 2 {
		t.Fatalf("got %d sessions, want 2", len(sessions))
	}
}

// TestServerError verifies non-200 responses surface as errors.
func TestServerError(t *testing.T) {
	ts := newTestServer(t, map[string]http.HandlerFunc{
		"/api/v1/workouts": func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "boom", http.StatusInternalServerError)
		},
	})
	defer ts.Close()

	client := NewHTTPClient(ts.URL)
	if _, err := client.ListWorkouts(context.Background()); err == nil {
		t.Error("expected error for 500 response")
	}
}
