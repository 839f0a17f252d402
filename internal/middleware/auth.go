// ================== internal/middleware/auth.go ==================
package middleware

import (
	"strings"

	fbauth "firebase.google.com/go/v4/auth"
	"github.com/gin-gonic/gin"

	"github.com/maggie-app/maggie-api/internal/pkg/response"
)

// Auth verifies the Firebase ID token from the Authorization header and
// stores the caller's uid under "userID" in the request context.
func Auth(verifier *fbauth.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Unauthorized(c, "Authorization header required")
			c.Abort()
			return
		}

		// Support both "Bearer <token>" (case-insensitive) and raw token in header
		fields := strings.Fields(authHeader)
		var tokenString string
		if len(fields) == 2 && strings.EqualFold(fields[0], "Bearer") {
			tokenString = fields[1]
		} else {
			// Treat the entire header value as the token
			tokenString = authHeader
		}

		token, err := verifier.VerifyIDToken(c.Request.Context(), tokenString)
		if err != nil {
			response.Unauthorized(c, "Invalid token")
			c.Abort()
			return
		}

		c.Set("userID", token.UID)
		c.Next()
	}
}
