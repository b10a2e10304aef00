// Package auth carries the identity of the caller through a request.
package auth

import (
	"context"

	"github.com/google/uuid"
)

// Principal is the caller of an operation. It is either Authenticated or
// Anonymous; the unexported method keeps the set closed.
type Principal interface {
	isPrincipal()
}

// Authenticated is a caller holding a valid session.
type Authenticated struct {
	UserID   uuid.UUID
	Username string
	// TokenID is the jti of the session token, used to revoke it on logout.
	TokenID string
	Token   string
}

// Anonymous is a caller without a session. Rejected is set when a session
// cookie was presented but could not be used.
type Anonymous struct {
	Rejected error
}

func (Authenticated) isPrincipal() {}
func (Anonymous) isPrincipal()     {}

type principalKey struct{}

// WithPrincipal returns a copy of ctx carrying p.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// FromContext returns the caller stored in ctx, or Anonymous when none is set.
func FromContext(ctx context.Context) Principal {
	if p, ok := ctx.Value(principalKey{}).(Principal); ok && p != nil {
		return p
	}
	return Anonymous{}
}

// UserID returns the caller's user id and whether the caller is authenticated.
func UserID(p Principal) (uuid.UUID, bool) {
	if a, ok := p.(Authenticated); ok {
		return a.UserID, true
	}
	return uuid.Nil, false
}
