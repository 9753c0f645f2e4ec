package utils

import (
	"context"
)

type contextKey string

const (
	StaffIDKey contextKey = "staff_id"
	RoleKey    contextKey = "role"
	TokenKey   contextKey = "token"
)

const (
	RoleStaff = "staff"
	RoleAdmin = "admin"
)

func GetStaffIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(StaffIDKey).(string)
	return id, ok && id != ""
}

func GetRoleFromContext(ctx context.Context) (string, bool) {
	role, ok := ctx.Value(RoleKey).(string)
	return role, ok
}

func SetStaffContext(ctx context.Context, staffID, role string) context.Context {
	ctx = context.WithValue(ctx, StaffIDKey, staffID)
	ctx = context.WithValue(ctx, RoleKey, role)
	return ctx
}

// GetTokenFromContext returns the bearer token the caller authenticated with.
func GetTokenFromContext(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(TokenKey).(string)
	return token, ok
}

func SetTokenContext(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, TokenKey, token)
}
