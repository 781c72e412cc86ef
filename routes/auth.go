package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/darccuir/storefront-api/auth"
)

// SetupAuthRoutes registers all "/auth/*" endpoints.
func SetupAuthRoutes(r *gin.Engine, d Deps) {
	authGroup := r.Group("/auth")
	{
		authGroup.POST("/register", auth.Register(d.DB, d.Carts, d.Mailer, d.Cfg, d.Log))
		authGroup.POST("/login", auth.Login(d.DB, d.Carts, d.Cfg))

		if d.Firebase != nil {
			authGroup.POST("/google", auth.GoogleLogin(d.DB, d.Carts, d.Firebase, d.Cfg))
		}
	}
}
