// Package ident generates identifiers for workouts, days, exercises, and
// sessions. Local-only ids use a readable prefix; ids that cross into the
// remote store must be real UUIDs because its primary keys are UUID-typed.
package ident

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	mathrand "math/rand"
	"time"

	"github.com/google/uuid"
)

// remoteWorkoutNamespace scopes synthetic workout ids derived from session
// ids. Fixed forever: changing it would break idempotent re-pushes.
var remoteWorkoutNamespace = uuid.MustParse("9f2c1b6e-4a3d-4f08-b3a1-7c5e9d2f6a40")

// New returns a local identifier for the given kind, e.g. "workout_k3f9a2c41b-1717171717".
// Collision-resistant within a device's lifetime; never fails, never blocks.
func New(kind string) string {
	return fmt.Sprintf("%s_%s-%d", kind, randomSuffix(10), time.Now().UnixMilli())
}

// NewUUID returns a v4 UUID string from a cryptographically strong source,
// falling back to a math/rand template if the OS entropy source fails.
// The fallback is not suitable for security purposes, only for primary-key
// uniqueness.
func NewUUID() string {
	id, err := uuid.NewRandom()
	if err != nil {
		return weakUUID()
	}
	return id.String()
}

// SyntheticWorkoutID derives a stable UUID from a session id. Used when a
// session has no backing workout definition (AI-originated) but the remote
// schema requires a non-null workout foreign key. Deterministic: re-pushing
// the same session always produces the same key.
func SyntheticWorkoutID(sessionID string) string {
	return uuid.NewSHA1(remoteWorkoutNamespace, []byte(sessionID)).String()
}

func randomSuffix(n int) string {
	b := make([]byte, (n+1)/2)
	if _, err := rand.Read(b); err != nil {
		const hexdigits = "0123456789abcdef"
		s := make([]byte, n)
		for i := range s {
			s[i] = hexdigits[mathrand.Intn(16)]
		}
		return string(s)
	}
	return hex.EncodeToString(b)[:n]
}

// weakUUID fills the xxxxxxxx-xxxx-4xxx-yxxx-xxxxxxxxxxxx template from
// math/rand. Last-resort path, kept deliberately simple.
func weakUUID() string {
	const template = "xxxxxxxx-xxxx-4xxx-yxxx-xxxxxxxxxxxx"
	const hexdigits = "0123456789abcdef"
	out := []byte(template)
	for i, c := range out {
		switch c {
		case 'x':
			out[i] = hexdigits[mathrand.Intn(16)]
		case 'y':
			out[i] = hexdigits[8+mathrand.Intn(4)]
		}
	}
	return string(out)
}
