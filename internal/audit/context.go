package audit

import "context"

type actorKey struct{}

// WithActor records who is performing the operations run under ctx.
func WithActor(ctx context.Context, username string) context.Context {
	return context.WithValue(ctx, actorKey{}, username)
}

// Actor returns the username set by WithActor, or "" for system work.
func Actor(ctx context.Context) string {
	username, _ := ctx.Value(actorKey{}).(string)
	return username
}
