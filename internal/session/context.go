package session

import (
	"context"

	"github.com/google/uuid"
)

type ctxKey struct{}

// Session is the authenticated session attached to a request.
type Session struct {
	Token  string
	UserID uuid.UUID
}

func NewContext(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// FromContext returns the session of an authenticated request.
func FromContext(ctx context.Context) (Session, bool) {
	s, ok := ctx.Value(ctxKey{}).(Session)
	return s, ok
}
