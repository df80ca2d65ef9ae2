// Package ctxutil provides context utilities that can be safely imported anywhere.
// This package has no internal dependencies to avoid import cycles.
package ctxutil

import "context"

// SystemActor is recorded when no author is known.
const SystemActor = "system"

// actorKey is the context key for the acting user.
type actorKey struct{}

// WithActor returns a context carrying the acting user.
func WithActor(ctx context.Context, actor string) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

// ActorFromContext returns the acting user from context, or empty string if not set.
func ActorFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(actorKey{}).(string); ok {
		return v
	}
	return ""
}

// ResolveActor picks the author of a write: the explicit value, then the
// context actor, then SystemActor.
func ResolveActor(ctx context.Context, explicit string) string {
	if explicit != "" {
		return explicit
	}
	if actor := ActorFromContext(ctx); actor != "" {
		return actor
	}
	return SystemActor
}
