package cloud

import "context"

// StaticIdentity is the configuration-backed identity provider: the user id
// issued at sign-in lives in config. An empty id means signed out, a valid
// state in which remote writes are skipped.
type StaticIdentity struct {
	UserID string
}

// CurrentUserID reports the configured remote user, ok=false when absent.
func (s StaticIdentity) CurrentUserID(context.Context) (string, bool) {
	return s.UserID, s.UserID != ""
}
