package middleware

import (
	"context"

	"github.com/nexwaste/nexwaste-backend/pkg/enums"
)

type contextKey string

const (
	ctxUserID   contextKey = "user_id"
	ctxRole     contextKey = "actor_role"
	ctxEmail    contextKey = "email"
	ctxAccessID contextKey = "access_id"
	ctxName     contextKey = "display_name"
)

func UserIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(ctxUserID).(string); ok {
		return v
	}
	return ""
}

func RoleFromContext(ctx context.Context) enums.ActorRole {
	if v, ok := ctx.Value(ctxRole).(string); ok {
		return enums.ActorRole(v)
	}
	return ""
}

func EmailFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(ctxEmail).(string); ok {
		return v
	}
	return ""
}

func DisplayNameFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(ctxName).(string); ok {
		return v
	}
	return ""
}

// AccessIDFromContext returns the JWT id backing the session, used by logout.
func AccessIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(ctxAccessID).(string); ok {
		return v
	}
	return ""
}

// WithUserID injects the user identifier into the context.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, ctxUserID, userID)
}

// WithActor injects the full authenticated principal, used by tests to skip
// the token round trip.
func WithActor(ctx context.Context, userID, email string, role enums.ActorRole, accessID string) context.Context {
	ctx = context.WithValue(ctx, ctxUserID, userID)
	ctx = context.WithValue(ctx, ctxEmail, email)
	ctx = context.WithValue(ctx, ctxRole, string(role))
	return context.WithValue(ctx, ctxAccessID, accessID)
}
