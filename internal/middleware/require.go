package middleware

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"microblog/internal/domain"
	"microblog/internal/pkg/response"
)

// PostStore looks up posts for ownership decisions.
type PostStore interface {
	GetByID(ctx context.Context, id int64) (*domain.Post, error)
}

// RequireAuth rejects requests that carry no resolved identity.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if Principal(c) == "" {
			response.Error(c, http.StatusUnauthorized, "AUTH_REQUIRED", "Authentication required")
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireRole ensures that the authenticated user has the specified role.
func RequireRole(requiredRole string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if Principal(c) == "" {
			response.Error(c, http.StatusUnauthorized, "AUTH_REQUIRED", "Authentication required")
			c.Abort()
			return
		}
		if !HasRole(c, requiredRole) {
			response.Error(c, http.StatusForbidden, "FORBIDDEN", "Access denied: insufficient permissions")
			c.Abort()
			return
		}
		c.Next()
	}
}

// AdminOnly middleware requires admin role.
func AdminOnly() gin.HandlerFunc {
	return RequireRole(domain.RoleAdmin)
}

// PostOwnership verifies the caller may mutate the post in URL param "id":
// either the admin role or the recorded owner. Admins fall through even for
// unknown ids so the handler can surface the not-found instead.
func PostOwnership(posts PostStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		username := Principal(c)
		if username == "" {
			response.Error(c, http.StatusUnauthorized, "AUTH_REQUIRED", "Authentication required")
			c.Abort()
			return
		}

		if HasRole(c, domain.RoleAdmin) {
			c.Next()
			return
		}

		id, err := strconv.ParseInt(c.Param("id"), 10, 64)
		if err != nil {
			response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid post ID")
			c.Abort()
			return
		}

		post, err := posts.GetByID(c.Request.Context(), id)
		if err != nil || post.User.Username != username {
			response.Error(c, http.StatusForbidden, "FORBIDDEN", "You don't own this post")
			c.Abort()
			return
		}

		c.Next()
	}
}
