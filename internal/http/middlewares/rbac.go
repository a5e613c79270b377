package middlewares

import (
	"net/http"

	"github.com/Trishit-H/tourhub/internal/domain/user"
	"github.com/gin-gonic/gin"
)

// RequireRole is a declarative per-route allow-list. It must run after
// RequireAuth, the principal is read back off the context.
func (m *AuthMiddleware) RequireRole(allowed ...user.Role) gin.HandlerFunc {
	allowList := make(map[user.Role]struct{}, len(allowed))

	for _, r := range allowed {
		allowList[r] = struct{}{}
	}

	return func(c *gin.Context) {
		principal, ok := PrincipalFromContext(c)

		if !ok {
			rejectUnauthorized(c, "You are not logged in! Please log in to get access.")
			return
		}

		if _, ok := allowList[principal.Role]; !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"status":  "fail",
				"message": "You do not have permission to perform this action",
			})
			return
		}

		c.Next()
	}
}
