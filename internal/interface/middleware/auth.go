package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/javiercm/go-blog-api/pkg/helpers"
	"github.com/javiercm/go-blog-api/pkg/response"
)

// CtxUserIDKey is the Gin context key carrying the authenticated user id.
const CtxUserIDKey = "userID"

// Auth validates the access token and injects the user id into the context.
// The token comes from the Authorization header (Bearer scheme) or, for
// browser clients, the access_token cookie.
func Auth(jwt *helpers.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			token, _ = c.Cookie("access_token")
		}
		if token == "" {
			response.Error(c, http.StatusUnauthorized, "missing access token", nil)
			c.Abort()
			return
		}
		claims, err := jwt.ParseAccessToken(token)
		if err != nil {
			response.Error(c, http.StatusUnauthorized, "invalid access token", nil)
			c.Abort()
			return
		}
		c.Set(CtxUserIDKey, claims.UserID)
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	h := c.GetHeader("Authorization")
	if h == "" {
		return ""
	}
	parts := strings.SplitN(h, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
