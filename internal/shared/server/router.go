package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"claims-backend/internal/auth"
	"claims-backend/internal/claims"
	"claims-backend/internal/shared/config"
	"claims-backend/internal/shared/server/middleware"
	"claims-backend/internal/shared/server/respond"
)

// Deps are the handler dependencies the router mounts.
type Deps struct {
	Auth   *auth.OTPService
	Claims *claims.Handler
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(cfg config.Config, deps Deps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(cfg.CORSAllowOrigin),
	)

	r.GET("/", func(c *gin.Context) {
		c.Redirect(http.StatusFound, "/api/v1/home")
	})

	api := r.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		respond.JSON(c, http.StatusOK, gin.H{"ok": true})
	})
	api.GET("/home", func(c *gin.Context) {
		respond.OK(c, gin.H{
			"service": "claims-backend",
			"uploads": []string{"policy", "discharge", "bills", "reports", "prescriptions", "claim"},
		})
	})

	deps.Auth.RegisterRoutes(api)
	deps.Claims.RegisterRoutes(api)

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
