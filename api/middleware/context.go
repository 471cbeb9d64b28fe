package middleware

import (
	"context"

	"github.com/google/uuid"

	"github.com/pickpackhq/pickpack-backend/internal/fulfillment"
	pkgerrors "github.com/pickpackhq/pickpack-backend/pkg/errors"
	"github.com/pickpackhq/pickpack-backend/pkg/enums"
)

type contextKey string

const (
	ctxUserID contextKey = "user_id"
	ctxRole   contextKey = "actor_role"
)

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

// WithRole injects the actor role into the context.
func WithRole(ctx context.Context, role string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxRole, role)
}

// ActorFromContext reconstructs the authenticated actor seeded by Auth.
func ActorFromContext(ctx context.Context) (fulfillment.Actor, error) {
	userID, err := uuid.Parse(UserIDFromContext(ctx))
	if err != nil {
		return fulfillment.Actor{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing authenticated user")
	}
	role := enums.ActorRole(RoleFromContext(ctx))
	if !role.IsValid() {
		return fulfillment.Actor{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing actor role")
	}
	return fulfillment.Actor{UserID: userID, Role: role}, nil
}
