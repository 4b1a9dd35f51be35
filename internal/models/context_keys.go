package models

import "context"

type contextKey string

const (
	// UserContextKey holds the authenticated Firebase UID.
	UserContextKey contextKey = "userID"
	// AdminContextKey holds true when the token carries the admin claim.
	AdminContextKey contextKey = "isAdmin"
)

// GetUserIDFromContext returns the authenticated UID, if any.
func GetUserIDFromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(UserContextKey).(string)
	return userID, ok && userID != ""
}

// IsAdminFromContext reports whether the request was made by an admin.
func IsAdminFromContext(ctx context.Context) bool {
	isAdmin, _ := ctx.Value(AdminContextKey).(bool)
	return isAdmin
}
