package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"brandcatalog/internal/pkg/jwtutil"
	"brandcatalog/internal/transport/http/response"
)

const (
	ContextUserIDKey   = "user_id"
	ContextUsernameKey = "username"
	ContextIdentityKey = "identity"
)

type TokenVerifier interface {
	Verify(token string) (*jwtutil.Claims, error)
}

// AuthJWT rejects requests without a bearer token with 401 and requests
// whose token does not verify with 403.
func AuthJWT(tokens TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			response.Abort(c, 401, response.CodeUnauthorized, "access token not provided")
			return
		}

		claims, err := tokens.Verify(token)
		if err != nil {
			response.Abort(c, 403, response.CodeInvalidToken, "invalid or expired token")
			return
		}

		identity := claims.Identity()
		c.Set(ContextIdentityKey, identity)
		c.Set(ContextUserIDKey, identity.UserID)
		c.Set(ContextUsernameKey, identity.Username)
		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}

// IdentityFrom returns the identity attached by AuthJWT.
func IdentityFrom(c *gin.Context) (jwtutil.Identity, bool) {
	v, ok := c.Get(ContextIdentityKey)
	if !ok {
		return jwtutil.Identity{}, false
	}
	identity, ok := v.(jwtutil.Identity)
	return identity, ok
}
