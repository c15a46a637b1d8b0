package mcp

import (
	"context"
	"time"

	"github.com/claude/replog/internal/models"
	"github.com/mark3labs/mcp-go/mcp"
)

// defaultTimeRange returns start/end defaulting to the last 30 days.
func defaultTimeRange(startStr, endStr string) (time.Time, time.Time, error) {
	var start, end time.Time
	var err error

	if endStr != "" {
		end, err = parseFlexTime(endStr)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
	} else {
		end = time.Now()
	}

	if startStr != "" {
		start, err = parseFlexTime(startStr)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
	} else {
		start = end.AddDate(0, 0, -30)
	}

	return start, end, nil
}

func parseFlexTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err == nil {
		return t, nil
	}
	t, err = time.Parse("2006-01-02", s)
	if err == nil {
		return t, nil
	}
	return time.Time{}, err
}

// --- Tool definitions ---

var toolListWorkouts = mcp.NewTool("list_workouts",
	mcp.WithDescription("List all workout templates with their days and exercises. Includes both user-authored and AI-generated templates."),
)

var toolGetWorkout = mcp.NewTool("get_workout",
	mcp.WithDescription("Get one workout template by id, including every day and exercise definition."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Workout template id")),
)

var toolGetSessions = mcp.NewTool("get_sessions",
	mcp.WithDescription("Query completed workout sessions. Each session includes per-exercise set entries with target and actual rep counts."),
	mcp.WithString("start", mcp.Description("Start date (ISO 8601 or YYYY-MM-DD). Defaults to 30 days ago.")),
	mcp.WithString("end", mcp.Description("End date (ISO 8601 or YYYY-MM-DD). Defaults to now.")),
)

var toolGetTrainingTotals = mcp.NewTool("get_training_totals",
	mcp.WithDescription("Aggregate training volume over a time range: session count, completed sets, completed reps, and per-muscle set counts."),
	mcp.WithString("start", mcp.Description("Start date. Defaults to 30 days ago.")),
	mcp.WithString("end", mcp.Description("End date. Defaults to now.")),
)

var toolGetUnsyncedSessions = mcp.NewTool("get_unsynced_sessions",
	mcp.WithDescription("List completed sessions that have not been pushed to the remote store yet, oldest first."),
)

// --- Tool handlers ---

func (h *handlers) listWorkouts(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	defs, err := h.ds.ListWorkouts(ctx)
	if err != nil {
		h.log.Error("mcp list_workouts", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(defs)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getWorkout(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError("id parameter is required"), nil
	}

	def, err := h.ds.GetWorkout(ctx, id)
	if err != nil {
		h.log.Error("mcp get_workout", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	if def == nil {
		return mcp.NewToolResultError("workout not found: " + id), nil
	}

	result, err := mcp.NewToolResultJSON(def)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getSessions(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	start, end, err := defaultTimeRange(req.GetString("start", ""), req.GetString("end", ""))
	if err != nil {
		return mcp.NewToolResultError("invalid date format: " + err.Error()), nil
	}

	sessions, err := h.ds.QuerySessions(ctx, start, end)
	if err != nil {
		h.log.Error("mcp get_sessions", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(sessions)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

// trainingTotals is the aggregate shape returned by get_training_totals.
type trainingTotals struct {
	Start         string         `json:"start"`
	End           string         `json:"end"`
	Sessions      int            `json:"sessions"`
	TotalSets     int            `json:"total_sets"`
	CompletedSets int            `json:"completed_sets"`
	CompletedReps int            `json:"completed_reps"`
	SetsByMuscle  map[string]int `json:"sets_by_muscle"`
}

func aggregateTotals(start, end time.Time, sessions []models.CompletedSession) trainingTotals {
	totals := trainingTotals{
		Start:        start.Format("2006-01-02"),
		End:          end.Format("2006-01-02"),
		Sessions:     len(sessions),
		SetsByMuscle: map[string]int{},
	}
	for _, s := range sessions {
		totals.TotalSets += s.TotalSets
		totals.CompletedSets += s.CompletedSets
		totals.CompletedReps += s.CompletedReps
		for _, ex := range s.Exercises {
			muscle := ex.Muscle
			if muscle == "" {
				muscle = "unspecified"
			}
			for _, set := range ex.Sets {
				if set.Actual != nil {
					totals.SetsByMuscle[muscle]++
				}
			}
		}
	}
	return totals
}

func (h *handlers) getTrainingTotals(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	start, end, err := defaultTimeRange(req.GetString("start", ""), req.GetString("end", ""))
	if err != nil {
		return mcp.NewToolResultError("invalid date format: " + err.Error()), nil
	}

	sessions, err := h.ds.QuerySessions(ctx, start, end)
	if err != nil {
		h.log.Error("mcp get_training_totals", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(aggregateTotals(start, end, sessions))
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getUnsyncedSessions(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessions, err := h.ds.UnsyncedSessions(ctx)
	if err != nil {
		h.log.Error("mcp get_unsynced_sessions", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(sessions)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}
