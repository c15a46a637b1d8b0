package session

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/claude/replog/internal/ident"
	"github.com/claude/replog/internal/models"
)

// ErrNotCompleted is returned when Finish is invoked before the session
// reached the Completed state (or for an Invalid session).
var ErrNotCompleted = errors.New("session is not completed")

// RemoteStatus is the outcome of the best-effort remote write.
type RemoteStatus string

const (
	RemoteSynced   RemoteStatus = "synced"
	RemoteSkipped  RemoteStatus = "skipped_no_identity"
	RemoteFailed   RemoteStatus = "failed"
	RemoteDisabled RemoteStatus = "disabled"
)

// SessionLog is the local, authoritative session log.
type SessionLog interface {
	LogSession(ctx context.Context, s models.CompletedSession) error
	MarkSynced(ctx context.Context, id string) error
}

// RemoteWriter upserts a completed session into the remote store. workoutFK
// is never empty: the caller synthesizes one when no real definition backs
// the session.
type RemoteWriter interface {
	UpsertSession(ctx context.Context, userID, workoutFK string, s models.CompletedSession) error
}

// Identity resolves the remote owner of the data. ok=false (signed out) is a
// valid state that skips the remote write.
type Identity interface {
	CurrentUserID(ctx context.Context) (string, bool)
}

// Finisher turns a completed live session into a durable record. The local
// write is authoritative; the remote write is best-effort with its own
// timeout, and the two outcomes are reported independently so neither ever
// blocks the other or the user.
type Finisher struct {
	Log      SessionLog
	Remote   RemoteWriter // nil disables remote sync
	Identity Identity
	Timeout  time.Duration // per remote write; 0 means 5s
	Logger   *slog.Logger

	newUUID func() string
	now     func() time.Time
}

// FinishResult carries the persisted session plus the independent local and
// remote outcomes.
type FinishResult struct {
	Session   models.CompletedSession
	LocalErr  error
	Remote    RemoteStatus
	RemoteErr error
}

// Finish finalizes a session in the Completed state. Whatever the storage
// outcomes, the completed record is always returned and the caller may
// navigate away; failures are reported, never thrown past this point.
func (f *Finisher) Finish(ctx context.Context, s *Session) (FinishResult, error) {
	if s == nil || s.State() != StateCompleted {
		return FinishResult{}, ErrNotCompleted
	}

	newUUID := f.newUUID
	if newUUID == nil {
		newUUID = ident.NewUUID
	}
	now := f.now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}

	completed := models.CompletedSession{
		ID:        newUUID(),
		Name:      s.name,
		Origin:    s.origin,
		WorkoutID: s.workoutID,
		DayID:     s.dayID,
		DayName:   s.dayName,
		Exercises: s.snapshot(),
		CreatedAt: now(),
	}
	completed.Normalize()

	result := FinishResult{Session: completed}

	// Local write first: authoritative, never rolled back. A failure is
	// surfaced but does not stop the remote attempt.
	if err := f.Log.LogSession(ctx, completed); err != nil {
		f.log().Error("local session write failed", "session_id", completed.ID, "error", err)
		result.LocalErr = err
	}

	result.Remote, result.RemoteErr = f.push(ctx, completed)
	return result, nil
}

// push attempts the remote upsert for one session and marks it synced
// locally on success. Shared with the manual re-push tool.
func (f *Finisher) push(ctx context.Context, completed models.CompletedSession) (RemoteStatus, error) {
	if f.Remote == nil {
		return RemoteDisabled, nil
	}
	userID, ok := f.Identity.CurrentUserID(ctx)
	if !ok {
		f.log().Info("no identity, session saved locally only", "session_id", completed.ID)
		return RemoteSkipped, nil
	}

	// The remote schema requires a non-null workout foreign key; sessions
	// without a backing definition get a deterministic synthetic one.
	workoutFK := completed.WorkoutID
	if workoutFK == "" {
		workoutFK = ident.SyntheticWorkoutID(completed.ID)
	}

	timeout := f.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	pushCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := f.Remote.UpsertSession(pushCtx, userID, workoutFK, completed); err != nil {
		f.log().Warn("remote session write failed, saved locally only",
			"session_id", completed.ID, "error", err)
		return RemoteFailed, err
	}
	if err := f.Log.MarkSynced(ctx, completed.ID); err != nil {
		f.log().Warn("failed to mark session synced", "session_id", completed.ID, "error", err)
	}
	return RemoteSynced, nil
}

// Push re-attempts the remote write for an already-logged session. Used by
// the manual push tool; the local record is not rewritten.
func (f *Finisher) Push(ctx context.Context, completed models.CompletedSession) (RemoteStatus, error) {
	return f.push(ctx, completed)
}

func (f *Finisher) log() *slog.Logger {
	if f.Logger != nil {
		return f.Logger
	}
	return slog.Default()
}
