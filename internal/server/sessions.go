package server

import (
	"sync"

	"github.com/claude/replog/internal/ident"
	"github.com/claude/replog/internal/session"
)

// liveSession pairs a session with the mutex that serializes handler access
// to it. The session type itself is not safe for concurrent use, and two
// requests can hold the same token at once, so every handler runs its
// session work under mu. done marks a finished or abandoned session whose
// token has been evicted; handlers that raced the eviction treat it as gone.
type liveSession struct {
	mu   sync.Mutex
	sess *session.Session
	done bool
}

// registry tracks in-flight live sessions by token. Sessions exist only in
// memory until finished; abandoning one just drops it from the map.
type registry struct {
	mu       sync.Mutex
	sessions map[string]*liveSession
}

func newRegistry() *registry {
	return &registry{sessions: make(map[string]*liveSession)}
}

// add registers a session and returns its token.
func (r *registry) add(s *session.Session) string {
	token := ident.New("session")
	r.mu.Lock()
	r.sessions[token] = &liveSession{sess: s}
	r.mu.Unlock()
	return token
}

func (r *registry) get(token string) (*liveSession, bool) {
	r.mu.Lock()
	ls, ok := r.sessions[token]
	r.mu.Unlock()
	return ls, ok
}

func (r *registry) remove(token string) {
	r.mu.Lock()
	delete(r.sessions, token)
	r.mu.Unlock()
}
