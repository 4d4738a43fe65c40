package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"interviewhub-backend/internal/services/health"
	"interviewhub-backend/internal/sessions"
	"interviewhub-backend/internal/shared/config"
	"interviewhub-backend/internal/shared/metrics"
	"interviewhub-backend/internal/shared/server/middleware"
	"interviewhub-backend/internal/shared/server/respond"
)

// RouterDeps carries the handlers and services the router wires up.
type RouterDeps struct {
	Config          config.Config
	SessionsHandler *sessions.Handler
	Health          *health.Service
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
		middleware.RateLimit(middleware.RateLimitConfig{
			GroupFor: rateLimitGroup,
			Rules: map[string]middleware.RateLimitRule{
				// Endpoints that trigger model calls get a tighter budget.
				"LLM":     {Rate: 1, Burst: 10},
				"DEFAULT": {Rate: 20, Burst: 60},
			},
		}),
	)

	api := r.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		respond.JSON(c, http.StatusOK, deps.Health.Status())
	})
	api.GET("/metrics", metrics.Handler())
	if deps.SessionsHandler != nil {
		deps.SessionsHandler.RegisterRoutes(api)
	}

	return r
}

func rateLimitGroup(c *gin.Context) string {
	if c.Request.Method != http.MethodPost {
		return "DEFAULT"
	}
	switch c.FullPath() {
	case "/api/v1/sessions",
		"/api/v1/sessions/:id/messages",
		"/api/v1/sessions/:id/interview/start",
		"/api/v1/sessions/:id/interview/answer":
		return "LLM"
	}
	return "DEFAULT"
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
