package middleware

import (
	"github.com/gin-gonic/gin"

	"brandcatalog/internal/transport/http/response"
)

// RequireRole must run after AuthJWT.
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := IdentityFrom(c)
		if !ok {
			response.Abort(c, 401, response.CodeUnauthorized, "authentication required")
			return
		}
		if identity.Role != role {
			response.Abort(c, 403, response.CodeForbidden, "insufficient permissions")
			return
		}
		c.Next()
	}
}
