package utils

import (
	"context"

	"labtest-be/internal/auth"
)

type contextKey string

const (
	UserIDKey    contextKey = "user_id"
	UserEmailKey contextKey = "email"
	UserRoleKey  contextKey = "role"
)

// SetUserContext sets the verified identity into context (called by middleware)
func SetUserContext(ctx context.Context, id auth.Identity) context.Context {
	ctx = context.WithValue(ctx, UserIDKey, id.ID)
	ctx = context.WithValue(ctx, UserEmailKey, id.Email)
	ctx = context.WithValue(ctx, UserRoleKey, id.Role)
	return ctx
}

// GetUserIDFromContext retrieves userID safely
func GetUserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(UserIDKey).(string)
	return id, ok && id != ""
}

func GetUserEmailFromContext(ctx context.Context) string {
	email, _ := ctx.Value(UserEmailKey).(string)
	return email
}

func GetUserRoleFromContext(ctx context.Context) auth.Role {
	role, _ := ctx.Value(UserRoleKey).(auth.Role)
	return role
}

// IdentityFromContext rebuilds the caller identity; ok is false for anonymous requests.
func IdentityFromContext(ctx context.Context) (auth.Identity, bool) {
	id, ok := GetUserIDFromContext(ctx)
	if !ok {
		return auth.Identity{}, false
	}
	return auth.Identity{
		ID:    id,
		Email: GetUserEmailFromContext(ctx),
		Role:  GetUserRoleFromContext(ctx),
	}, true
}
