package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"driftblog/internal/domain"
	"driftblog/internal/repository"
)

const (
	// ActorHeader carries the id of the user performing the request.
	// Authentication happens upstream; the service only needs an identity.
	ActorHeader = "X-User-ID"
	// ActorKey is the context key for the resolved actor.
	ActorKey = "actor"
)

// Actor resolves the X-User-ID header against the user repository and
// stores the user in the request context. Requests without the header
// proceed anonymously; an unknown or inactive user is rejected.
func Actor(users repository.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(ActorHeader)
		if id == "" {
			c.Next()
			return
		}

		user, err := users.GetByID(c.Request.Context(), id)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}
		if user == nil || !user.Active {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unknown user"})
			return
		}

		c.Set(ActorKey, user)
		c.Next()
	}
}

// GetActor retrieves the resolved actor from the gin context. Returns nil
// for anonymous requests.
func GetActor(c *gin.Context) *domain.User {
	if v, exists := c.Get(ActorKey); exists {
		if u, ok := v.(*domain.User); ok {
			return u
		}
	}
	return nil
}
