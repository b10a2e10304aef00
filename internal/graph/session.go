package graph

import (
	"context"
	"time"
)

// SessionWriter lets login, sign-up and logout resolvers manage the session
// cookie of the current HTTP response.
type SessionWriter interface {
	SetSession(token string, expiresAt time.Time)
	ClearSession()
}

type sessionWriterKey struct{}

func WithSessionWriter(ctx context.Context, w SessionWriter) context.Context {
	return context.WithValue(ctx, sessionWriterKey{}, w)
}

func sessionWriterFrom(ctx context.Context) SessionWriter {
	if w, ok := ctx.Value(sessionWriterKey{}).(SessionWriter); ok && w != nil {
		return w
	}
	return noopSessionWriter{}
}

type noopSessionWriter struct{}

func (noopSessionWriter) SetSession(string, time.Time) {}
func (noopSessionWriter) ClearSession()                {}
