// Package aiplan parses workout plans produced by the remote analysis
// service. The payload is untrusted: numeric-looking fields arrive as
// numbers, strings ("4"), or ranges ("8-10"), and are coerced to bounded
// integers here so loosely typed data never crosses into the typed core.
package aiplan

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/claude/replog/internal/models"
)

// Payload is the plan shape produced by the analysis service.
type Payload struct {
	WorkoutName string            `json:"workoutName"`
	DayName     string            `json:"dayName,omitempty"`
	Exercises   []PayloadExercise `json:"exercises"`
}

// PayloadExercise is one exercise as the service sends it, before coercion.
type PayloadExercise struct {
	ID     string     `json:"id"`
	Name   string     `json:"name"`
	Muscle string     `json:"muscle"`
	Sets   FlexInt    `json:"sets"`
	Reps   FlexString `json:"reps"`
}

// FlexInt accepts a JSON number or a numeric string. Anything else,
// including ranges and null, leaves OK false; the caller substitutes a
// default instead of propagating the bad value.
type FlexInt struct {
	Value int
	OK    bool
}

func (f *FlexInt) UnmarshalJSON(data []byte) error {
	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		f.Value, f.OK = int(n), true
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if v, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			f.Value, f.OK = v, true
		}
		return nil
	}
	// Wrong type entirely; treat as absent.
	return nil
}

// FlexString accepts a JSON string or number, keeping the original text
// ("8-10" stays "8-10") for display.
type FlexString string

func (f *FlexString) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = FlexString(s)
		return nil
	}
	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		*f = FlexString(strconv.FormatFloat(n, 'f', -1, 64))
		return nil
	}
	return nil
}

// Exercises flattens a payload into session exercises, applying the
// payload's single day label uniformly. An empty payload yields an empty
// non-nil list.
func Exercises(p Payload) []models.SessionExercise {
	out := make([]models.SessionExercise, 0, len(p.Exercises))
	for _, ex := range p.Exercises {
		reps := string(ex.Reps)
		out = append(out, models.SessionExercise{
			ID:        ex.ID,
			Name:      ex.Name,
			Muscle:    ex.Muscle,
			Sets:      models.CoerceSetCount(ex.Sets.Value, ex.Sets.OK),
			Reps:      reps,
			RepTarget: models.CoerceRepTarget(reps),
			DayName:   p.DayName,
		})
	}
	return out
}

// Definition converts a payload into an AI-origin workout definition with a
// single day, so an AI plan can be kept as a reusable template. newID is the
// local id generator, keyed by kind.
func Definition(p Payload, newID func(kind string) string) models.WorkoutDefinition {
	name := p.WorkoutName
	if name == "" {
		name = models.DefaultSessionName
	}
	dayName := p.DayName
	if dayName == "" {
		dayName = "Day 1"
	}

	day := models.WorkoutDay{
		ID:        newID("day"),
		Name:      dayName,
		Exercises: make([]models.ExerciseDefinition, 0, len(p.Exercises)),
	}
	for _, ex := range p.Exercises {
		id := ex.ID
		if id == "" {
			id = newID("exercise")
		}
		reps := string(ex.Reps)
		day.Exercises = append(day.Exercises, models.ExerciseDefinition{
			ID:        id,
			Name:      ex.Name,
			Muscle:    ex.Muscle,
			Sets:      models.CoerceSetCount(ex.Sets.Value, ex.Sets.OK),
			Reps:      reps,
			RepTarget: models.CoerceRepTarget(reps),
		})
	}

	now := time.Now().UTC()
	return models.WorkoutDefinition{
		ID:        newID("workout"),
		Name:      name,
		Origin:    models.OriginAI,
		Days:      []models.WorkoutDay{day},
		CreatedAt: now,
		UpdatedAt: now,
	}
}
