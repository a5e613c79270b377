package middlewares

import (
	"context"
	"net/http"
	"strings"

	"github.com/Trishit-H/tourhub/internal/auth"
	"github.com/Trishit-H/tourhub/internal/domain/user"
	"github.com/gin-gonic/gin"
)

// Keep these interfaces small so tests can fake them easily.
type TokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

type PrincipalLoader interface {
	GetByID(ctx context.Context, id string) (user.User, error)
}

type AuthMiddleware struct {
	jwt   TokenVerifier
	users PrincipalLoader
}

func NewAuthMiddleware(jwt TokenVerifier, users PrincipalLoader) *AuthMiddleware {
	return &AuthMiddleware{jwt: jwt, users: users}
}

func rejectUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"status":  "fail",
		"message": message,
	})
}

// RequireAuth walks the gate: bearer token -> verified claims -> live
// principal -> password-change check. Only then does the request proceed.
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			rejectUnauthorized(c, "You are not logged in! Please log in to get access.")
			return
		}

		raw := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer"))
		if raw == "" {
			rejectUnauthorized(c, "You are not logged in! Please log in to get access.")
			return
		}

		claims, err := m.jwt.Verify(raw)
		if err != nil {
			rejectUnauthorized(c, "Invalid or expired token. Please log in again.")
			return
		}

		// a valid signature is not enough, the account must still exist
		principal, err := m.users.GetByID(c.Request.Context(), claims.Subject)
		if err != nil {
			rejectUnauthorized(c, "The user belonging to this token no longer exists.")
			return
		}

		// tokens issued before the last password change are dead
		if claims.IssuedAt != nil && principal.PasswordChangedAfter(claims.IssuedAt.Time) {
			rejectUnauthorized(c, "User recently changed password! Please log in again.")
			return
		}

		c.Set(CtxPrincipal, principal)

		c.Next()
	}
}

// Helper so handlers don't need to know the magic key.

func PrincipalFromContext(c *gin.Context) (user.User, bool) {
	v, ok := c.Get(CtxPrincipal)
	if !ok {
		return user.User{}, false
	}
	u, ok := v.(user.User)
	return u, ok
}
