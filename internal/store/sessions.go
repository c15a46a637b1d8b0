package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/claude/replog/internal/models"
)

// timeLayout is how created_at is stored. Unlike RFC3339Nano it never trims
// trailing zeros, so every value has the same width and lexical ordering in
// SQL matches chronological ordering at sub-second precision.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// LogSession writes a completed session to the local log. Idempotent on the
// session id: re-logging the same session replaces the row rather than
// duplicating it. This write is authoritative for the device.
func (l *Local) LogSession(ctx context.Context, s models.CompletedSession) error {
	exercises, err := json.Marshal(s.Exercises)
	if err != nil {
		return fmt.Errorf("encoding session exercises: %w", err)
	}
	_, err = l.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO completed_sessions
		 (id, name, origin, workout_id, day_id, day_name, exercises,
		  total_sets, completed_sets, completed_reps, synced, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?,
		         COALESCE((SELECT synced FROM completed_sessions WHERE id = ?), 0), ?)`,
		s.ID, s.Name, string(s.Origin), s.WorkoutID, s.DayID, s.DayName, string(exercises),
		s.TotalSets, s.CompletedSets, s.CompletedReps, s.ID, s.CreatedAt.UTC().Format(timeLayout))
	if err != nil {
		return fmt.Errorf("logging session: %w", err)
	}
	return nil
}

// GetSession retrieves a single completed session by id.
func (l *Local) GetSession(ctx context.Context, id string) (*models.CompletedSession, error) {
	row := l.db.QueryRowContext(ctx,
		`SELECT id, name, origin, workout_id, day_id, day_name, exercises,
		        total_sets, completed_sets, completed_reps, created_at
		 FROM completed_sessions WHERE id = ?`, id)

	s, err := scanSession(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying session: %w", err)
	}
	return s, nil
}

// QuerySessions retrieves completed sessions in a time range, newest first.
func (l *Local) QuerySessions(ctx context.Context, start, end time.Time) ([]models.CompletedSession, error) {
	rows, err := l.db.QueryContext(ctx,
		`SELECT id, name, origin, workout_id, day_id, day_name, exercises,
		        total_sets, completed_sets, completed_reps, created_at
		 FROM completed_sessions
		 WHERE created_at >= ? AND created_at < ?
		 ORDER BY created_at DESC`,
		start.UTC().Format(timeLayout), end.UTC().Format(timeLayout))
	if err != nil {
		return nil, fmt.Errorf("querying sessions: %w", err)
	}
	defer rows.Close()

	var result []models.CompletedSession
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning session: %w", err)
		}
		result = append(result, *s)
	}
	return result, rows.Err()
}

// UnsyncedSessions returns sessions that never reached the remote store,
// oldest first, for the manual push tool.
func (l *Local) UnsyncedSessions(ctx context.Context) ([]models.CompletedSession, error) {
	rows, err := l.db.QueryContext(ctx,
		`SELECT id, name, origin, workout_id, day_id, day_name, exercises,
		        total_sets, completed_sets, completed_reps, created_at
		 FROM completed_sessions
		 WHERE synced = 0
		 ORDER BY created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("querying unsynced sessions: %w", err)
	}
	defer rows.Close()

	var result []models.CompletedSession
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning session: %w", err)
		}
		result = append(result, *s)
	}
	return result, rows.Err()
}

// MarkSynced records that a session reached the remote store.
func (l *Local) MarkSynced(ctx context.Context, id string) error {
	_, err := l.db.ExecContext(ctx,
		`UPDATE completed_sessions SET synced = 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("marking session synced: %w", err)
	}
	return nil
}

func scanSession(row interface{ Scan(dest ...any) error }) (*models.CompletedSession, error) {
	var s models.CompletedSession
	var origin, exercises, createdAt string
	err := row.Scan(&s.ID, &s.Name, &origin, &s.WorkoutID, &s.DayID, &s.DayName,
		&exercises, &s.TotalSets, &s.CompletedSets, &s.CompletedReps, &createdAt)
	if err != nil {
		return nil, err
	}
	s.Origin = models.Origin(origin)
	if err := json.Unmarshal([]byte(exercises), &s.Exercises); err != nil {
		return nil, fmt.Errorf("decoding session exercises: %w", err)
	}
	t, err := time.Parse(timeLayout, createdAt)
	if err != nil {
		return nil, fmt.Errorf("parsing session timestamp %q: %w", createdAt, err)
	}
	s.CreatedAt = t
	return &s, nil
}
