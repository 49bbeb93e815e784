// Package identity carries the opaque "current user" issued by the
// authentication layer. The pipeline only needs the id.
package identity

import (
	"context"
	"strings"
)

// Header is set by the session layer in front of the gateway.
const Header = "X-User-ID"

type User struct {
	ID string
}

func (u User) Valid() bool {
	return strings.TrimSpace(u.ID) != ""
}

type ctxKey struct{}

func WithUser(ctx context.Context, u User) context.Context {
	return context.WithValue(ctx, ctxKey{}, u)
}

// FromContext returns the user and whether one with a non-empty id exists.
func FromContext(ctx context.Context) (User, bool) {
	u, ok := ctx.Value(ctxKey{}).(User)
	if !ok || !u.Valid() {
		return User{}, false
	}
	return u, true
}
