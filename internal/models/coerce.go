package models

import (
	"strconv"
	"strings"
)

// Rep and set bounds are product policy, not physiology. The session layer
// reads its clamp range from configuration; these are the defaults and the
// hard bounds applied to untrusted input.
const (
	// DefaultRepTarget substitutes for rep values that don't parse as a
	// single integer (ranges, prose, missing).
	DefaultRepTarget = 10

	MinReps = 1
	MaxReps = 50

	maxSets = 20
)

// CoerceSetCount clamps a set count to [0, maxSets]. ok=false means the
// value was absent or unparseable and the zero default applies.
func CoerceSetCount(v int, ok bool) int {
	if !ok || v < 0 {
		return 0
	}
	return min(v, maxSets)
}

// CoerceRepTarget parses a rep value to a bounded integer. Only a plain
// integer parses; ranges ("8-10") and prose fall back to DefaultRepTarget.
func CoerceRepTarget(s string) int {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || v < MinReps {
		return DefaultRepTarget
	}
	return min(v, MaxReps)
}

// ClampReps clamps a recorded rep count to [minReps, maxReps].
func ClampReps(v, minReps, maxReps int) int {
	if v < minReps {
		return minReps
	}
	if v > maxReps {
		return maxReps
	}
	return v
}
