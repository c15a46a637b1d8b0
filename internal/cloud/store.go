// Package cloud holds the remote collaborators: the identity provider and
// the remote workout-session store. Everything here is best-effort; the
// local store remains authoritative whatever happens on this side.
package cloud

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/claude/replog/internal/models"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store writes completed sessions to the remote Postgres store. The schema
// is owned remotely; this client only upserts into workout_sessions.
type Store struct {
	Pool *pgxpool.Pool
}

// New connects to the remote store and verifies the connection.
func New(ctx context.Context, dsn string) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("creating pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging remote store: %w", err)
	}
	return &Store{Pool: pool}, nil
}

// Close closes the connection pool.
func (s *Store) Close() {
	s.Pool.Close()
}

// UpsertSession writes one completed session, idempotent on the session id:
// re-sending the same session never creates a duplicate row. workoutFK must
// be non-empty because the remote schema's workout_id column is NOT NULL.
func (s *Store) UpsertSession(ctx context.Context, userID, workoutFK string, sess models.CompletedSession) error {
	exercises, err := json.Marshal(sess.Exercises)
	if err != nil {
		return fmt.Errorf("encoding session exercises: %w", err)
	}

	_, err = s.Pool.Exec(ctx,
		`INSERT INTO workout_sessions
		 (id, user_id, workout_id, name, workout_type, day_id, day_name,
		  exercises, total_sets, completed_sets, completed_reps, created_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
		 ON CONFLICT (id) DO NOTHING`,
		sess.ID, userID, workoutFK, sess.Name, string(sess.Origin),
		nullable(sess.DayID), nullable(sess.DayName),
		exercises, sess.TotalSets, sess.CompletedSets, sess.CompletedReps, sess.CreatedAt)
	if err != nil {
		return fmt.Errorf("upserting session: %w", err)
	}
	return nil
}

// nullable maps empty strings to SQL NULL for the optional day columns.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
