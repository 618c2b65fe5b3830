package middleware

import "context"

type contextKey string

const (
	ctxUserID contextKey = "user_id"
	ctxRole   contextKey = "actor_role"
	ctxActor  contextKey = "request_actor"
)

// requestActor is filled in by Auth and read by the outer middleware once
// the handler returns.
type requestActor struct {
	accountID string
	role      string
}

func UserIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxUserID).(string); ok {
		return v
	}
	return ""
}

func RoleFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxRole).(string); ok {
		return v
	}
	return ""
}

// WithUserID injects the user identifier into the context.
func WithUserID(ctx context.Context, userID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxUserID, userID)
}

// WithRole injects the actor role into the context for downstream handlers.
func WithRole(ctx context.Context, role string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxRole, role)
}

func withActor(ctx context.Context) (context.Context, *requestActor) {
	if actor, ok := ctx.Value(ctxActor).(*requestActor); ok {
		return ctx, actor
	}
	actor := &requestActor{}
	return context.WithValue(ctx, ctxActor, actor), actor
}

func recordActor(ctx context.Context, accountID, role string) {
	if actor, ok := ctx.Value(ctxActor).(*requestActor); ok {
		actor.accountID = accountID
		actor.role = role
	}
}

func (a *requestActor) fields() map[string]any {
	if a == nil || a.accountID == "" {
		return nil
	}
	return map[string]any{
		"account_id": a.accountID,
		"actor_role": a.role,
	}
}
