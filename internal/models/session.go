package models

import "time"

// SessionExercise is one exercise in a flattened live-session list,
// carrying the day it came from for provenance.
type SessionExercise struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Muscle    string `json:"muscle,omitempty"`
	Sets      int    `json:"sets"`
	Reps      string `json:"reps,omitempty"`
	RepTarget int    `json:"rep_target"`
	DayID     string `json:"day_id,omitempty"`
	DayName   string `json:"day_name,omitempty"`
}

// SetEntry is one planned set. Actual is nil until the user records it;
// once set it is clamped to the configured rep bounds.
type SetEntry struct {
	Target int  `json:"target"`
	Actual *int `json:"actual"`
}

// SeedSetEntries builds a fresh untouched entry array: count entries, each
// targeting repTarget with no recorded actual. A non-positive count yields an
// empty (non-nil) slice.
func SeedSetEntries(count, repTarget int) []SetEntry {
	if count < 0 {
		count = 0
	}
	entries := make([]SetEntry, count)
	for i := range entries {
		entries[i] = SetEntry{Target: repTarget}
	}
	return entries
}

// ExerciseResult is one exercise's finalized set array inside a completed
// session. Sets is never nil when persisted.
type ExerciseResult struct {
	ExerciseID string     `json:"exercise_id"`
	Name       string     `json:"name"`
	Muscle     string     `json:"muscle,omitempty"`
	DayName    string     `json:"day_name,omitempty"`
	Sets       []SetEntry `json:"sets"`
}

// CompletedSession is the durable record written when a session finishes.
// Totals are always recomputed from Exercises at write time; values supplied
// by callers are never trusted.
type CompletedSession struct {
	ID            string           `json:"id"`
	Name          string           `json:"name"`
	Origin        Origin           `json:"origin"`
	WorkoutID     string           `json:"workout_id,omitempty"`
	DayID         string           `json:"day_id,omitempty"`
	DayName       string           `json:"day_name,omitempty"`
	Exercises     []ExerciseResult `json:"exercises"`
	TotalSets     int              `json:"total_sets"`
	CompletedSets int              `json:"completed_sets"`
	CompletedReps int              `json:"completed_reps"`
	CreatedAt     time.Time        `json:"created_at"`
}

// RecomputeTotals derives total_sets, completed_sets, and completed_reps
// from the exercise array, overwriting whatever was there.
func (s *CompletedSession) RecomputeTotals() {
	s.TotalSets, s.CompletedSets, s.CompletedReps = 0, 0, 0
	for _, ex := range s.Exercises {
		for _, set := range ex.Sets {
			s.TotalSets++
			if set.Actual != nil {
				s.CompletedSets++
				s.CompletedReps += *set.Actual
			}
		}
	}
}

// Normalize enforces the persisted-shape invariants: a non-null name and a
// non-null exercise array with non-null set arrays, then recomputes totals.
func (s *CompletedSession) Normalize() {
	if s.Name == "" {
		s.Name = DefaultSessionName
	}
	if s.Exercises == nil {
		s.Exercises = []ExerciseResult{}
	}
	for i := range s.Exercises {
		if s.Exercises[i].Sets == nil {
			s.Exercises[i].Sets = []SetEntry{}
		}
	}
	s.RecomputeTotals()
}
