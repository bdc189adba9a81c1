package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
)

// contextKey is a private type for values stored in request contexts.
// Using a custom type prevents collisions.
type contextKey string

const (
	loggerCtxKey    = contextKey("logger")
	userEmailCtxKey = contextKey("userEmail")
)

// WithUserEmail returns a copy of ctx carrying the authenticated user's email.
func WithUserEmail(ctx context.Context, email string) context.Context {
	return context.WithValue(ctx, userEmailCtxKey, email)
}

// GetUserEmailFromCtx returns the authenticated user's email stored in ctx.
func GetUserEmailFromCtx(ctx context.Context) (string, bool) {
	email, ok := ctx.Value(userEmailCtxKey).(string)
	return email, ok && email != ""
}

// GetUserEmailFromContext retrieves the authenticated user's email from the Gin context.
// It returns the email and a boolean indicating if it was found.
func GetUserEmailFromContext(c *gin.Context) (string, bool) {
	if v, exists := c.Get(string(userEmailCtxKey)); exists {
		email, ok := v.(string)
		return email, ok && email != ""
	}
	return GetUserEmailFromCtx(c.Request.Context())
}
