package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/endosim/pk-api/internal/handler"
	"github.com/endosim/pk-api/pkg/auth"
)

const (
	ContextTokenSubject = "token_subject"
	ContextTokenScope   = "token_scope"
)

// RequireScope verifies the bearer token and checks it carries the
// wanted scope before letting the request through.
func RequireScope(jwtService auth.JWTService, scope string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("missing authorization header"))
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("invalid authorization format"))
			c.Abort()
			return
		}

		claims, err := jwtService.ValidateToken(parts[1])
		if err != nil {
			c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("invalid token"))
			c.Abort()
			return
		}

		if claims.Scope != scope {
			c.JSON(http.StatusForbidden, handler.NewErrorResponse("insufficient scope"))
			c.Abort()
			return
		}

		c.Set(ContextTokenSubject, claims.Subject)
		c.Set(ContextTokenScope, claims.Scope)
		c.Next()
	}
}
