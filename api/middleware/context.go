package middleware

import "context"

type contextKey string

const ctxAdminActor contextKey = "admin_actor"

// AdminActorFromContext returns the reviewer name seeded by the admin gate.
func AdminActorFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxAdminActor).(string); ok {
		return v
	}
	return ""
}

// WithAdminActor injects the reviewer name into the context.
func WithAdminActor(ctx context.Context, actor string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxAdminActor, actor)
}
