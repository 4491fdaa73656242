package conn

import "github.com/cloudcache/fleetstore/internal/auth"

// NewTestCtx builds an already-authenticated connection context for
// handler tests.
func NewTestCtx(user *auth.User) *ConnCtx {
	return &ConnCtx{isAuthed: true, User: user}
}
