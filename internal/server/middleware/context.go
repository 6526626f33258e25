package middleware

import (
	"context"

	userdomain "task-tracker/server/internal/user/domain"
)

type contextKey struct{ name string }

var (
	userKey     = contextKey{"user"}
	observerKey = contextKey{"user-observer"}
)

// userObserver lets outer middleware see which user an inner handler
// authenticated as. RequireAuth derives a new request, so the outer
// middleware's context never carries the user directly; the observer is a
// shared cell both sides can reach.
type userObserver struct{ id int64 }

// WithUser returns a context carrying the authenticated user. Handlers read
// it via GetUser. If the context holds a userObserver, it is updated too.
func WithUser(ctx context.Context, u *userdomain.User) context.Context {
	if obs, ok := ctx.Value(observerKey).(*userObserver); ok {
		obs.id = u.ID
	}
	return context.WithValue(ctx, userKey, u)
}

// withUserObserver installs a fresh observer cell in the context.
func withUserObserver(ctx context.Context) (context.Context, *userObserver) {
	obs := &userObserver{}
	return context.WithValue(ctx, observerKey, obs), obs
}

// GetUser returns the authenticated user from context and true if set;
// otherwise nil, false.
func GetUser(ctx context.Context) (*userdomain.User, bool) {
	u, ok := ctx.Value(userKey).(*userdomain.User)
	return u, ok
}
