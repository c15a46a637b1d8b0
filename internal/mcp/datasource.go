package mcp

import (
	"context"
	"time"

	"github.com/claude/replog/internal/models"
	"github.com/claude/replog/internal/store"
	"github.com/claude/replog/internal/workouts"
)

// DataSource abstracts the data layer for MCP tools. LocalSource (direct
// store access) and HTTPClient (remote via REST API) both satisfy it.
type DataSource interface {
	ListWorkouts(ctx context.Context) ([]models.WorkoutDefinition, error)
	GetWorkout(ctx context.Context, id string) (*models.WorkoutDefinition, error)
	QuerySessions(ctx context.Context, start, end time.Time) ([]models.CompletedSession, error)
	UnsyncedSessions(ctx context.Context) ([]models.CompletedSession, error)
}

// LocalSource serves MCP tools straight from the on-device stores, for the
// in-process MCP endpoint mounted by the daemon.
type LocalSource struct {
	Workouts *workouts.Store
	Sessions *store.Local
}

// Compile-time check: *LocalSource satisfies DataSource.
var _ DataSource = (*LocalSource)(nil)

func (l *LocalSource) ListWorkouts(ctx context.Context) ([]models.WorkoutDefinition, error) {
	return l.Workouts.List(ctx), nil
}

func (l *LocalSource) GetWorkout(ctx context.Context, id string) (*models.WorkoutDefinition, error) {
	def, ok := l.Workouts.Get(ctx, id)
	if !ok {
		return nil, nil
	}
	return &def, nil
}

func (l *LocalSource) QuerySessions(ctx context.Context, start, end time.Time) ([]models.CompletedSession, error) {
	return l.Sessions.QuerySessions(ctx, start, end)
}

func (l *LocalSource) UnsyncedSessions(ctx context.Context) ([]models.CompletedSession, error) {
	return l.Sessions.UnsyncedSessions(ctx)
}
