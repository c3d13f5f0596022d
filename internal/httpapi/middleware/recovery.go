// README: Panic recovery middleware, ported from the teacher's
// middleware/recovery.go.
package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Recovery recovers from panics in downstream handlers and responds 500
// instead of crashing the process.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				c.AbortWithStatus(http.StatusInternalServerError)
			}
		}()
		c.Next()
	}
}
