package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
)

// actorKey stores the authenticated Actor in both the gin and the request context.
const actorKey = contextKey("actor")

// Actor is the user a request acts for. Its UserID is what services write to
// created_by and last_updated_by.
type Actor struct {
	UserID string
	Name   string
}

// WithActor returns a copy of ctx carrying actor.
func WithActor(ctx context.Context, actor Actor) context.Context {
	return context.WithValue(ctx, actorKey, actor)
}

// ActorFromCtx returns the actor stored in ctx, if any.
func ActorFromCtx(ctx context.Context) (Actor, bool) {
	if ctx == nil {
		return Actor{}, false
	}
	actor, ok := ctx.Value(actorKey).(Actor)
	return actor, ok && actor.UserID != ""
}

// AuditUserFromCtx returns the acting user's id, or fallback for work that no
// user started (scheduler jobs, the CLI).
func AuditUserFromCtx(ctx context.Context, fallback string) string {
	if actor, ok := ActorFromCtx(ctx); ok {
		return actor.UserID
	}
	return fallback
}

// GetUserIDFromContext retrieves the authenticated user ID.
// It returns the user ID and a boolean indicating if it was found.
func GetUserIDFromContext(c *gin.Context) (string, bool) {
	if v, exists := c.Get(string(actorKey)); exists {
		if actor, ok := v.(Actor); ok && actor.UserID != "" {
			return actor.UserID, true
		}
	}
	actor, ok := ActorFromCtx(c.Request.Context())
	return actor.UserID, ok
}
