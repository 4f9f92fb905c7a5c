package utils

import "context"

// SetUserContext sets account info into context (called by middleware)
func SetUserContext(ctx context.Context, id uint, email string, role string) context.Context {
	ctx = context.WithValue(ctx, UserIDKey, id)
	ctx = context.WithValue(ctx, UserEmailKey, email)
	ctx = context.WithValue(ctx, UserRoleKey, role)
	return ctx
}

// GetUserIDFromContext retrieves the account id safely
func GetUserIDFromContext(ctx context.Context) (uint, bool) {
	id, ok := ctx.Value(UserIDKey).(uint)
	return id, ok
}

func GetUserEmailFromContext(ctx context.Context) string {
	email, _ := ctx.Value(UserEmailKey).(string)
	return email
}

func GetUserRoleFromContext(ctx context.Context) string {
	role, _ := ctx.Value(UserRoleKey).(string)
	return role
}

// HasRole reports whether the authenticated account has one of roles.
func HasRole(ctx context.Context, roles ...string) bool {
	if _, ok := GetUserIDFromContext(ctx); !ok {
		return false
	}
	current := GetUserRoleFromContext(ctx)
	for _, r := range roles {
		if r == current {
			return true
		}
	}
	return false
}
