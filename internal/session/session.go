package session

import (
	"github.com/claude/replog/internal/models"
)

// State is the live session lifecycle.
type State int

const (
	// StateInvalid means the aggregated exercise list was empty; the
	// session can never start or finish and every operation is a no-op.
	StateInvalid State = iota
	StateInProgress
	StateCompleted
)

func (s State) String() string {
	switch s {
	case StateInProgress:
		return "in_progress"
	case StateCompleted:
		return "completed"
	default:
		return "invalid"
	}
}

// Bounds is the rep clamp range applied to recorded values. The defaults are
// product policy, adjustable in configuration.
type Bounds struct {
	Min int
	Max int
}

// DefaultBounds is the clamp range used when configuration doesn't override it.
var DefaultBounds = Bounds{Min: models.MinReps, Max: models.MaxReps}

func (b Bounds) orDefault() Bounds {
	if b.Min <= 0 || b.Max < b.Min {
		return DefaultBounds
	}
	return b
}

// Session is a live, in-memory workout session. No operation on it can
// fail: out-of-range indices are ignored and recorded values are clamped.
// It is not safe for concurrent use; callers serialize access.
type Session struct {
	origin    models.Origin
	name      string
	workoutID string
	dayID     string
	dayName   string

	exercises []models.SessionExercise
	// entries[i] is nil until exercise i is first visited or recorded;
	// the finisher regenerates untouched arrays from the targets.
	entries [][]models.SetEntry
	cursor  int
	state   State
	bounds  Bounds
}

// Start builds a session from a source. An empty exercise list yields an
// Invalid session rather than an error; the caller renders "no exercises".
func Start(src Source, bounds Bounds) *Session {
	exercises := BuildExercises(src)
	s := &Session{
		origin:    src.Origin(),
		name:      src.Name(),
		workoutID: src.WorkoutID(),
		exercises: exercises,
		entries:   make([][]models.SetEntry, len(exercises)),
		bounds:    bounds.orDefault(),
	}
	if len(exercises) == 0 {
		s.state = StateInvalid
		return s
	}
	// Session-level day provenance is the first exercise's day (the first
	// non-empty day for custom sources).
	s.dayID = exercises[0].DayID
	s.dayName = exercises[0].DayName
	s.state = StateInProgress
	s.seed(0)
	return s
}

func (s *Session) seed(i int) {
	if s.entries[i] == nil {
		ex := s.exercises[i]
		s.entries[i] = models.SeedSetEntries(ex.Sets, ex.RepTarget)
	}
}

// State reports the current lifecycle state.
func (s *Session) State() State { return s.state }

// Name is the session display name inherited from the source.
func (s *Session) Name() string { return s.name }

// Cursor reports the current exercise index.
func (s *Session) Cursor() int { return s.cursor }

// Exercises returns the flattened exercise list.
func (s *Session) Exercises() []models.SessionExercise {
	return append([]models.SessionExercise(nil), s.exercises...)
}

// Current returns the exercise under the cursor.
func (s *Session) Current() (models.SessionExercise, bool) {
	if s.state != StateInProgress {
		return models.SessionExercise{}, false
	}
	return s.exercises[s.cursor], true
}

// Entries returns a copy of exercise i's set entries, seeding them first if
// the exercise was never visited.
func (s *Session) Entries(i int) []models.SetEntry {
	if i < 0 || i >= len(s.exercises) {
		return nil
	}
	s.seed(i)
	return append([]models.SetEntry(nil), s.entries[i]...)
}

// RecordSet records an actual rep count for the current exercise.
func (s *Session) RecordSet(setIndex, reps int) {
	s.RecordSetAt(s.cursor, setIndex, reps)
}

// RecordSetAt records an actual rep count for any exercise's set, clamped to
// the rep bounds. The reference UI only edits the current exercise, but the
// contract allows recording anywhere for headless use. Invalid indices are
// ignored.
func (s *Session) RecordSetAt(exerciseIndex, setIndex, reps int) {
	if s.state != StateInProgress {
		return
	}
	if exerciseIndex < 0 || exerciseIndex >= len(s.exercises) {
		return
	}
	s.seed(exerciseIndex)
	if setIndex < 0 || setIndex >= len(s.entries[exerciseIndex]) {
		return
	}
	v := models.ClampReps(reps, s.bounds.Min, s.bounds.Max)
	s.entries[exerciseIndex][setIndex].Actual = &v
}

// ClearSet resets a set on the current exercise to unrecorded. Idempotent.
func (s *Session) ClearSet(setIndex int) {
	if s.state != StateInProgress {
		return
	}
	s.seed(s.cursor)
	if setIndex < 0 || setIndex >= len(s.entries[s.cursor]) {
		return
	}
	s.entries[s.cursor][setIndex].Actual = nil
}

// Advance moves to the next exercise, seeding its entries on first visit.
// From the last exercise it transitions to Completed, exactly once; further
// calls are no-ops.
func (s *Session) Advance() {
	if s.state != StateInProgress {
		return
	}
	if s.cursor >= len(s.exercises)-1 {
		s.state = StateCompleted
		return
	}
	s.cursor++
	s.seed(s.cursor)
}

// Retreat moves to the previous exercise, clamped at the first. Previously
// recorded entries are untouched: navigating backward is lossless.
func (s *Session) Retreat() {
	if s.state != StateInProgress {
		return
	}
	if s.cursor > 0 {
		s.cursor--
	}
}

// snapshot finalizes the per-exercise results: recorded arrays where they
// exist, fresh untouched arrays regenerated from the targets for exercises
// the user never visited. The persisted record always has the full shape.
func (s *Session) snapshot() []models.ExerciseResult {
	out := make([]models.ExerciseResult, len(s.exercises))
	for i, ex := range s.exercises {
		sets := s.entries[i]
		if sets == nil {
			sets = models.SeedSetEntries(ex.Sets, ex.RepTarget)
		}
		out[i] = models.ExerciseResult{
			ExerciseID: ex.ID,
			Name:       ex.Name,
			Muscle:     ex.Muscle,
			DayName:    ex.DayName,
			Sets:       append([]models.SetEntry(nil), sets...),
		}
	}
	return out
}
