// Package models holds the workout and session domain types shared by the
// definition store, session engine, local history, and remote sync.
package models

import "time"

// Origin tags where a workout or session came from.
type Origin string

const (
	OriginCustom Origin = "custom"
	OriginAI     Origin = "ai"
)

// DefaultSessionName is used whenever a session has no usable display name.
// The remote store requires a non-null name.
const DefaultSessionName = "Workout"

// WorkoutDefinition is a named, user-owned training template. Days and their
// exercises are embedded, so deleting a definition cascades by construction.
// ID is immutable once created; UpdatedAt advances on every mutation.
type WorkoutDefinition struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description,omitempty"`
	Origin      Origin       `json:"origin"`
	Days        []WorkoutDay `json:"days"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// WorkoutDay belongs to exactly one definition. Exercises keep insertion
// order; there is no reorder operation.
type WorkoutDay struct {
	ID        string               `json:"id"`
	Name      string               `json:"name"`
	Exercises []ExerciseDefinition `json:"exercises"`
}

// ExerciseDefinition is one planned exercise within a day. Reps keeps the
// display text ("8-10", "12"); RepTarget is the normalized integer used to
// seed set entries. Sets may be 0, in which case the exercise contributes no
// sets to a session.
type ExerciseDefinition struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Muscle    string `json:"muscle,omitempty"`
	Sets      int    `json:"sets"`
	Reps      string `json:"reps,omitempty"`
	RepTarget int    `json:"rep_target"`
	Equipment string `json:"equipment,omitempty"`
	Notes     string `json:"notes,omitempty"`
	MediaURL  string `json:"media_url,omitempty"`
}

// Clone returns a deep copy. Store reads hand out clones so callers can
// never mutate the store's snapshot behind its back.
func (w WorkoutDefinition) Clone() WorkoutDefinition {
	out := w
	out.Days = make([]WorkoutDay, len(w.Days))
	for i, d := range w.Days {
		nd := d
		nd.Exercises = append([]ExerciseDefinition(nil), d.Exercises...)
		out.Days[i] = nd
	}
	return out
}
