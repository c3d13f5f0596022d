// README: HTTP route registration, grounded on
// fweilun-Ark/internal/http/router.go's NewRouter shape.
package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ridepool/internal/httpapi/middleware"
)

// NewRouter registers every simulation route on a fresh gin.Engine.
// Mutating routes (everything but the health check) require a verified
// caller.
func (s *Server) NewRouter() http.Handler {
	r := gin.New()
	r.Use(middleware.Recovery(), middleware.Logging())

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	authed := r.Group("/", middleware.Auth(s.verifier))
	authed.POST("/runs", s.CreateRun)
	authed.POST("/runs/:id/requests", s.SubmitRequest)
	authed.POST("/runs/:id/requests/:request_id/commit", s.CommitRequest)
	authed.POST("/runs/:id/fast-forward", s.FastForward)
	authed.GET("/runs/:id/vehicles", s.ListVehicles)

	return r
}
