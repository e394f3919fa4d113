package mfa

import (
	"context"

	"github.com/google/uuid"
)

type userIDContextKey struct{}

// SetUserIDToContext stores the authenticated user ID in context for
// middleware chain access.
func SetUserIDToContext(ctx context.Context, userID uuid.UUID) context.Context {
	return context.WithValue(ctx, userIDContextKey{}, userID)
}

// UserIDFromContext retrieves the authenticated user ID from context.
// The second return value is false if no identity was stored.
func UserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	userID, ok := ctx.Value(userIDContextKey{}).(uuid.UUID)
	return userID, ok
}
