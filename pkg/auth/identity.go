package auth

import "context"

type identityKey struct{}

// WithIdentity stores the authenticated user id in ctx.
func WithIdentity(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, identityKey{}, userID)
}

// IdentityFrom returns the authenticated user id stored in ctx.
func IdentityFrom(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(identityKey{}).(string)
	return id, ok && id != ""
}
