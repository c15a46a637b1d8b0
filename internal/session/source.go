// Package session implements the live workout session: flattening a template
// or AI plan into one exercise list, tracking actual-vs-target reps while the
// user trains, and finalizing the completed record for persistence.
package session

import (
	"github.com/claude/replog/internal/ingest/aiplan"
	"github.com/claude/replog/internal/models"
)

// Source is where a session's exercises come from: a custom workout
// definition or an AI plan payload. Exactly one of the two is set.
type Source struct {
	workout *models.WorkoutDefinition
	plan    *aiplan.Payload
}

// FromWorkout builds a source backed by a user-authored definition.
func FromWorkout(def models.WorkoutDefinition) Source {
	return Source{workout: &def}
}

// FromPlan builds a source backed by an AI plan payload.
func FromPlan(p aiplan.Payload) Source {
	return Source{plan: &p}
}

// Origin reports the source's origin tag.
func (s Source) Origin() models.Origin {
	if s.plan != nil {
		return models.OriginAI
	}
	return models.OriginCustom
}

// Name returns the source's display name, which may be empty.
func (s Source) Name() string {
	if s.plan != nil {
		return s.plan.WorkoutName
	}
	if s.workout != nil {
		return s.workout.Name
	}
	return ""
}

// WorkoutID returns the backing definition id, empty for AI plans.
func (s Source) WorkoutID() string {
	if s.workout != nil {
		return s.workout.ID
	}
	return ""
}

// BuildExercises flattens the source into a single ordered exercise list.
// Custom definitions flatten every day's exercises in day order, tagged with
// their day; AI plans are already flat, with the payload's day label applied
// uniformly. An empty result is valid and always non-nil.
func BuildExercises(src Source) []models.SessionExercise {
	if src.plan != nil {
		return aiplan.Exercises(*src.plan)
	}
	out := []models.SessionExercise{}
	if src.workout == nil {
		return out
	}
	for _, day := range src.workout.Days {
		for _, ex := range day.Exercises {
			out = append(out, models.SessionExercise{
				ID:        ex.ID,
				Name:      ex.Name,
				Muscle:    ex.Muscle,
				Sets:      ex.Sets,
				Reps:      ex.Reps,
				RepTarget: ex.RepTarget,
				DayID:     day.ID,
				DayName:   day.Name,
			})
		}
	}
	return out
}
