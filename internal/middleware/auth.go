package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"microblog/internal/domain"
	jwtsvc "microblog/internal/pkg/jwt"
)

// Context keys set by Identity for the remainder of the request.
const (
	CtxUsername = "username"
	CtxUserID   = "user_id"
	CtxRoles    = "roles"
)

// UserStore resolves a principal's full identity (roles included).
type UserStore interface {
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
}

// Identity resolves the caller from a bearer token and attaches it to the
// request context. It never rejects: a missing, malformed or expired token
// simply leaves the request anonymous, so public routes stay reachable and
// the authorization layer decides whether an identity is required.
func Identity(jwt *jwtsvc.Service, users UserStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr := parseBearer(c.GetHeader("Authorization"))
		if tokenStr == "" {
			c.Next()
			return
		}

		claims, err := jwt.ValidateToken(tokenStr)
		if err != nil {
			c.Next()
			return
		}

		user, err := users.GetByUsername(c.Request.Context(), claims.Username)
		if err != nil {
			c.Next()
			return
		}

		c.Set(CtxUsername, user.Username)
		c.Set(CtxUserID, user.ID)
		c.Set(CtxRoles, user.RoleNames())

		c.Next()
	}
}

func parseBearer(header string) string {
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
}

// Principal returns the authenticated username, or "" for anonymous requests.
func Principal(c *gin.Context) string {
	return c.GetString(CtxUsername)
}

// HasRole reports whether the current principal holds the given role.
func HasRole(c *gin.Context, role string) bool {
	roles, ok := c.Get(CtxRoles)
	if !ok {
		return false
	}
	names, ok := roles.([]string)
	if !ok {
		return false
	}
	for _, n := range names {
		if n == role {
			return true
		}
	}
	return false
}
