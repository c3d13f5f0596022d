// README: Firebase auth middleware, built to the shape the teacher's own
// auth_test.go anticipates (Auth(verifier) + CallerUID/CallerRole) rather
// than the no-op stub that shipped alongside it.
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"ridepool/internal/auth"
)

const (
	contextKeyUID  = "auth_uid"
	contextKeyRole = "auth_role"
)

// Auth verifies the Authorization: Bearer <token> header against verifier
// and stores the resulting caller identity in the gin context for
// handlers to read via CallerUID/CallerRole.
func Auth(verifier auth.TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		const prefix = "Bearer "
		if !strings.HasPrefix(header, prefix) {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		idToken := strings.TrimPrefix(header, prefix)

		token, err := verifier.VerifyIDToken(c.Request.Context(), idToken)
		if err != nil {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}

		c.Set(contextKeyUID, token.UID)
		if role, ok := token.Claims["role"].(string); ok {
			c.Set(contextKeyRole, role)
		}
		c.Next()
	}
}

// CallerUID returns the UID set by Auth, or "" if Auth was not run.
func CallerUID(c *gin.Context) string {
	v, _ := c.Get(contextKeyUID)
	uid, _ := v.(string)
	return uid
}

// CallerRole returns the role claim set by Auth, or "" if absent.
func CallerRole(c *gin.Context) string {
	v, _ := c.Get(contextKeyRole)
	role, _ := v.(string)
	return role
}
