package authn

import "context"

// Identity is the resolved caller. A zero ExternalID means no credential was
// presented; the directory service turns that into an unauthenticated error.
type Identity struct {
	ExternalID string
	TokenID    string
}

type contextKey struct{}

// ContextWithIdentity stores the caller identity in the context.
func ContextWithIdentity(ctx context.Context, identity Identity) context.Context {
	return context.WithValue(ctx, contextKey{}, identity)
}

// IdentityFromContext returns the caller identity, zero valued when absent.
func IdentityFromContext(ctx context.Context) Identity {
	identity, _ := ctx.Value(contextKey{}).(Identity)
	return identity
}
