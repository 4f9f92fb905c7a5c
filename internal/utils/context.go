package utils

type contextKey string

const (
	UserIDKey    contextKey = "user_id"
	UserEmailKey contextKey = "email"
	UserRoleKey  contextKey = "role"
)

// Account roles carried in session tokens.
const (
	RoleVendor   = "vendor"
	RoleSupplier = "supplier"
	RoleAdmin    = "admin"
)
