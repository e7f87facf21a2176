package shared

import "context"

type sessionContextKey struct{}

// ContextWithSession stores the session in context. Both the admin API
// and the anonymous storefront carry their session this way; the cart
// is keyed by the session ID found here.
func ContextWithSession(ctx context.Context, sess *Session) context.Context {
	return context.WithValue(ctx, sessionContextKey{}, sess)
}

// SessionFromContext extracts the session, or nil outside the
// middleware chain.
func SessionFromContext(ctx context.Context) *Session {
	sess, _ := ctx.Value(sessionContextKey{}).(*Session)
	return sess
}
