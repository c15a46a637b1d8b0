package cloud

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/claude/replog/internal/models"
	"github.com/claude/replog/internal/session"
)

// Stats tracks a manual push run.
type Stats struct {
	Total   int
	Pushed  int
	Skipped int
	Failed  int
}

// SessionSource lists locally logged sessions awaiting remote sync.
type SessionSource interface {
	UnsyncedSessions(ctx context.Context) ([]models.CompletedSession, error)
}

// Pusher re-attempts the remote write for sessions that only ever made it to
// the local log. It is a manual tool, not a retry queue: each run walks the
// unsynced set once and reports what happened.
type Pusher struct {
	source   SessionSource
	finisher *session.Finisher
	log      *slog.Logger
}

// NewPusher creates a Pusher over the local session source.
func NewPusher(source SessionSource, finisher *session.Finisher, log *slog.Logger) *Pusher {
	return &Pusher{source: source, finisher: finisher, log: log}
}

// Run pushes every unsynced session, oldest first. Individual failures are
// counted and logged but do not stop the run; re-pushing is safe because the
// remote upsert is idempotent on the session id.
func (p *Pusher) Run(ctx context.Context) (*Stats, error) {
	sessions, err := p.source.UnsyncedSessions(ctx)
	if err != nil {
		return &Stats{}, fmt.Errorf("listing unsynced sessions: %w", err)
	}

	stats := &Stats{Total: len(sessions)}
	for _, s := range sessions {
		status, err := p.finisher.Push(ctx, s)
		switch status {
		case session.RemoteSynced:
			stats.Pushed++
		case session.RemoteSkipped, session.RemoteDisabled:
			// No identity or no remote configured applies to every
			// session equally; nothing more will push this run.
			stats.Skipped += stats.Total - stats.Pushed - stats.Failed
			p.log.Info("push skipped", "reason", string(status))
			return stats, nil
		case session.RemoteFailed:
			stats.Failed++
			p.log.Warn("push failed", "session_id", s.ID, "error", err)
		}
	}
	return stats, nil
}
