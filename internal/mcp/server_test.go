package mcp

import (
	"testing"
	"time"

	"github.com/claude/replog/internal/models"
)

// TestDefaultTimeRange verifies time range defaults (last 30 days) and parsing.
func TestDefaultTimeRange(t *testing.T) {
	// Both empty defaults to the last 30 days.
	start, end, err := defaultTimeRange("", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	diff := end.Sub(start)
	if diff.Hours() < 719 || diff.Hours() > 721 { // ~720 hours = 30 days
		t.Errorf("default range = %.0f hours, want ~720", diff.Hours())
	}

	// Explicit dates
	start, end, err = defaultTimeRange("2025-01-01", "2025-01-31")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if start.Year() != 2025 || start.Month() != 1 || start.Day() != 1 {
		t.Errorf("start = %v, want 2025-01-01", start)
	}
	if end.Year() != 2025 || end.Month() != 1 || end.Day() != 31 {
		t.Errorf("end = %v, want 2025-01-31", end)
	}

	// RFC3339
	start, _, err = defaultTimeRange("2025-06-15T10:30:00Z", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if start.Hour() != 10 || start.Minute() != 30 {
		t.Errorf("start = %v, want 10:30", start)
	}

	// Invalid
	_, _, err = defaultTimeRange("not-a-date", "")
	if err == nil {
		t.Error("expected error for invalid date")
	}
}

// TestAggregateTotals verifies the training totals aggregation, including
// the per-muscle counts that only count recorded sets.
func TestAggregateTotals(t *testing.T) {
	eight, twelve := 8, 12
	sessions := []models.CompletedSession{
		{
			TotalSets:     3,
			CompletedSets: 2,
			CompletedReps: 20,
			Exercises: []models.ExerciseResult{
				{
					Muscle: "chest",
					Sets: []models.SetEntry{
						{Target: 10, Actual: &eight},
						{Target: 10, Actual: &twelve},
						{Target: 10},
					},
				},
			},
		},
		{
			TotalSets:     2,
			CompletedSets: 1,
			CompletedReps: 8,
			Exercises: []models.ExerciseResult{
				{
					Sets: []models.SetEntry{
						{Target: 8, Actual: &eight},
						{Target: 8},
					},
				},
			},
		},
	}

	start := time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 8, 28, 0, 0, 0, 0, time.UTC)
	totals := aggregateTotals(start, end, sessions)

	if totals.Sessions != 2 {
		t.Errorf("sessions = %d, want 2", totals.Sessions)
	}
	if totals.TotalSets != 5 || totals.CompletedSets != 3 || totals.CompletedReps != 28 {
		t.Errorf("totals = %d/%d/%d, want 5/3/28",
			totals.TotalSets, totals.CompletedSets, totals.CompletedReps)
	}
	if totals.SetsByMuscle["chest"] != 2 {
		t.Errorf("chest sets = %d, want 2", totals.SetsByMuscle["chest"])
	}
	if totals.SetsByMuscle["unspecified"] != 1 {
		t.Errorf("unspecified sets = %d, want 1", totals.SetsByMuscle["unspecified"])
	}
	if totals.Start != "2025-08-01" || totals.End != "2025-08-28" {
		t.Errorf("range = %s..%s, want 2025-08-01..2025-08-28", totals.Start, totals.End)
	}
}
