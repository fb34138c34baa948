package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	googleauth "resume-tracker/internal/auth"
	"resume-tracker/internal/dashboard"
	"resume-tracker/internal/resumes"
	"resume-tracker/internal/services/health"
	"resume-tracker/internal/shared/config"
	"resume-tracker/internal/shared/metrics"
	"resume-tracker/internal/shared/server/middleware"
	"resume-tracker/internal/shared/server/respond"
	"resume-tracker/internal/users"
)

// RouterDeps carries the handlers the router mounts.
type RouterDeps struct {
	Config    config.Config
	Health    *health.Service
	Auth      *googleauth.Service
	Users     *users.Handler
	Resumes   *resumes.Handler
	Dashboard *dashboard.Handler
	Limiter   *middleware.RateLimiter
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	if gin.Mode() != gin.TestMode {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
		middleware.Auth(),
	)

	r.GET("/health", func(c *gin.Context) {
		if deps.Health == nil {
			respond.OK(c, gin.H{"ok": true})
			return
		}
		report := deps.Health.Status(c.Request.Context())
		status := http.StatusOK
		if !report.OK {
			status = http.StatusServiceUnavailable
		}
		respond.JSON(c, status, report)
	})
	r.GET("/metrics", metrics.Handler())

	limited := r.Group("", middleware.RateLimit(middleware.RateLimitConfig{
		Rules: map[string]middleware.RateLimitRule{
			middleware.GroupMutation: {Rate: deps.Config.RateLimitRPS, Burst: deps.Config.RateLimitBurst},
		},
		GroupFor: middleware.MethodGroup,
		Limiter:  deps.Limiter,
	}))

	if deps.Auth != nil {
		deps.Auth.RegisterRoutes(limited)
	}
	if deps.Dashboard != nil {
		deps.Dashboard.RegisterPages(limited)
	}

	api := limited.Group("/api/v1")
	api.GET("/session", sessionHandler)
	if deps.Dashboard != nil {
		// View mounts answer anonymous callers with a redirect body, so they sit outside RequireSession.
		deps.Dashboard.RegisterAPI(api)
	}

	authed := api.Group("", middleware.RequireSession())
	if deps.Resumes != nil {
		deps.Resumes.RegisterRoutes(authed)
	}
	if deps.Users != nil {
		deps.Users.RegisterRoutes(authed)
	}

	return r
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
