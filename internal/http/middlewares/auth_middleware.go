package middlewares

import (
	"context"
	"net/http"
	"strings"
	"time"

	"cafeblog/internal/auth"
	"cafeblog/internal/domain/account"

	"github.com/gin-gonic/gin"
)

// Keep these interfaces small so tests can fake them easily.
type TokenVerifier interface {
	VerifyAccessToken(token string) (*auth.Claims, error)
}

type PrincipalLoader interface {
	LoadPrincipal(ctx context.Context, userID string) (account.Principal, error)
}

type AuthMiddleware struct {
	jwt    TokenVerifier
	loader PrincipalLoader
}

func NewAuthMiddleware(jwt TokenVerifier, loader PrincipalLoader) *AuthMiddleware {
	return &AuthMiddleware{jwt: jwt, loader: loader}
}

// RequireAuth verifies the bearer token and resolves the full Principal from
// the identity store so downstream authorization sees current roles, not the
// ones frozen into the token.
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			abortUnauthorized(c, "Missing or invalid Authorization header")
			return
		}

		raw := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer"))
		if raw == "" {
			abortUnauthorized(c, "Missing or invalid access token")
			return
		}

		claims, err := m.jwt.VerifyAccessToken(raw)
		if err != nil {
			abortUnauthorized(c, "Invalid or expired access token")
			return
		}

		cctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		principal, err := m.loader.LoadPrincipal(cctx, claims.UserID)
		if err != nil {
			// account deleted after the token was issued
			abortUnauthorized(c, "Unknown identity")
			return
		}

		setPrincipal(c, principal)

		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error": gin.H{
			"code":    "unauthorized",
			"message": message,
		},
	})
}
