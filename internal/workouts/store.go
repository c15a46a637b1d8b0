// Package workouts owns user-authored workout templates. The in-memory
// collection is the source of truth for reads; every mutation persists a
// snapshot to the local store before returning, so memory and disk never
// diverge for more than one call.
//
// Mutations scoped by ids that no longer resolve are silent no-ops, not
// errors: callers may race with deletion and the store stays lenient.
package workouts

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/claude/replog/internal/ident"
	"github.com/claude/replog/internal/models"
	"github.com/claude/replog/internal/store"
)

const (
	kvNamespace = "workouts"
	kvKey       = "definitions"
)

// Store is an explicit, injectable container for workout definitions.
type Store struct {
	mu    sync.Mutex
	local *store.Local
	defs  []models.WorkoutDefinition

	newID func(kind string) string
	now   func() time.Time
}

// New loads the persisted definitions snapshot and returns a ready store.
func New(ctx context.Context, local *store.Local) (*Store, error) {
	s := &Store{
		local: local,
		newID: ident.New,
		now:   func() time.Time { return time.Now().UTC() },
	}
	var defs []models.WorkoutDefinition
	if _, err := local.Get(ctx, kvNamespace, kvKey, &defs); err != nil {
		return nil, fmt.Errorf("loading workout definitions: %w", err)
	}
	s.defs = defs
	return s, nil
}

// persist writes the snapshot. The in-memory state is never rolled back on
// failure: the caller surfaces the error and the user may retry.
func (s *Store) persist(ctx context.Context) error {
	return s.local.Set(ctx, kvNamespace, kvKey, s.defs)
}

// List returns all definitions in insertion order.
func (s *Store) List(ctx context.Context) []models.WorkoutDefinition {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.WorkoutDefinition, len(s.defs))
	for i, d := range s.defs {
		out[i] = d.Clone()
	}
	return out
}

// Get returns a definition by id.
func (s *Store) Get(ctx context.Context, id string) (models.WorkoutDefinition, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if d := s.find(id); d != nil {
		return d.Clone(), true
	}
	return models.WorkoutDefinition{}, false
}

// Create adds an empty definition (zero days) and returns it.
func (s *Store) Create(ctx context.Context, name string) (models.WorkoutDefinition, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if name == "" {
		name = "New Workout"
	}
	now := s.now()
	def := models.WorkoutDefinition{
		ID:        s.newID("workout"),
		Name:      name,
		Origin:    models.OriginCustom,
		Days:      []models.WorkoutDay{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.defs = append(s.defs, def)
	return def.Clone(), s.persist(ctx)
}

// Import adds an externally built definition (an AI plan kept as a
// template). The definition's own id and origin are preserved.
func (s *Store) Import(ctx context.Context, def models.WorkoutDefinition) (models.WorkoutDefinition, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if def.ID == "" {
		def.ID = s.newID("workout")
	}
	if def.Days == nil {
		def.Days = []models.WorkoutDay{}
	}
	now := s.now()
	if def.CreatedAt.IsZero() {
		def.CreatedAt = now
	}
	def.UpdatedAt = now
	s.defs = append(s.defs, def.Clone())
	return def, s.persist(ctx)
}

// Patch carries the updatable definition fields; nil means leave unchanged.
type Patch struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

// Update merges fields into a definition and bumps UpdatedAt.
func (s *Store) Update(ctx context.Context, id string, patch Patch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	d := s.find(id)
	if d == nil {
		return nil
	}
	if patch.Name != nil {
		d.Name = *patch.Name
	}
	if patch.Description != nil {
		d.Description = *patch.Description
	}
	d.UpdatedAt = s.now()
	return s.persist(ctx)
}

// Delete removes a definition; its days and exercises go with it since they
// are embedded, not separately stored.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, d := range s.defs {
		if d.ID == id {
			s.defs = append(s.defs[:i], s.defs[i+1:]...)
			return s.persist(ctx)
		}
	}
	return nil
}

// AddDay appends a day to a definition.
func (s *Store) AddDay(ctx context.Context, workoutID, name string) (models.WorkoutDay, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d := s.find(workoutID)
	if d == nil {
		return models.WorkoutDay{}, nil
	}
	day := models.WorkoutDay{
		ID:        s.newID("day"),
		Name:      name,
		Exercises: []models.ExerciseDefinition{},
	}
	d.Days = append(d.Days, day)
	d.UpdatedAt = s.now()
	return day, s.persist(ctx)
}

// DeleteDay removes a day from a definition.
func (s *Store) DeleteDay(ctx context.Context, workoutID, dayID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	d := s.find(workoutID)
	if d == nil {
		return nil
	}
	for i, day := range d.Days {
		if day.ID == dayID {
			d.Days = append(d.Days[:i], d.Days[i+1:]...)
			d.UpdatedAt = s.now()
			return s.persist(ctx)
		}
	}
	return nil
}

// ExerciseInput is the user-supplied shape for a new or updated exercise.
type ExerciseInput struct {
	Name      string `json:"name"`
	Muscle    string `json:"muscle"`
	Sets      int    `json:"sets"`
	Reps      string `json:"reps"`
	Equipment string `json:"equipment"`
	Notes     string `json:"notes"`
	MediaURL  string `json:"media_url"`
}

// AddExercise appends an exercise to a day, in insertion order.
func (s *Store) AddExercise(ctx context.Context, workoutID, dayID string, in ExerciseInput) (models.ExerciseDefinition, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, day := s.findDay(workoutID, dayID)
	if day == nil {
		return models.ExerciseDefinition{}, nil
	}
	ex := models.ExerciseDefinition{
		ID:        s.newID("exercise"),
		Name:      in.Name,
		Muscle:    in.Muscle,
		Sets:      models.CoerceSetCount(in.Sets, true),
		Reps:      in.Reps,
		RepTarget: models.CoerceRepTarget(in.Reps),
		Equipment: in.Equipment,
		Notes:     in.Notes,
		MediaURL:  in.MediaURL,
	}
	day.Exercises = append(day.Exercises, ex)
	d.UpdatedAt = s.now()
	return ex, s.persist(ctx)
}

// UpdateExercise replaces an exercise's user-editable fields.
func (s *Store) UpdateExercise(ctx context.Context, workoutID, dayID, exerciseID string, in ExerciseInput) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, day := s.findDay(workoutID, dayID)
	if day == nil {
		return nil
	}
	for i := range day.Exercises {
		if day.Exercises[i].ID == exerciseID {
			ex := &day.Exercises[i]
			ex.Name = in.Name
			ex.Muscle = in.Muscle
			ex.Sets = models.CoerceSetCount(in.Sets, true)
			ex.Reps = in.Reps
			ex.RepTarget = models.CoerceRepTarget(in.Reps)
			ex.Equipment = in.Equipment
			ex.Notes = in.Notes
			ex.MediaURL = in.MediaURL
			d.UpdatedAt = s.now()
			return s.persist(ctx)
		}
	}
	return nil
}

// DeleteExercise removes an exercise from a day.
func (s *Store) DeleteExercise(ctx context.Context, workoutID, dayID, exerciseID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, day := s.findDay(workoutID, dayID)
	if day == nil {
		return nil
	}
	for i, ex := range day.Exercises {
		if ex.ID == exerciseID {
			day.Exercises = append(day.Exercises[:i], day.Exercises[i+1:]...)
			d.UpdatedAt = s.now()
			return s.persist(ctx)
		}
	}
	return nil
}

func (s *Store) find(id string) *models.WorkoutDefinition {
	for i := range s.defs {
		if s.defs[i].ID == id {
			return &s.defs[i]
		}
	}
	return nil
}

func (s *Store) findDay(workoutID, dayID string) (*models.WorkoutDefinition, *models.WorkoutDay) {
	d := s.find(workoutID)
	if d == nil {
		return nil, nil
	}
	for i := range d.Days {
		if d.Days[i].ID == dayID {
			return d, &d.Days[i]
		}
	}
	return nil, nil
}
