package routes

import (
	"github.com/gin-gonic/gin"

	userControllers "github.com/darccuir/storefront-api/controllers/user"
	"github.com/darccuir/storefront-api/middleware"
)

// SetupUserRoutes registers all "/user/*" endpoints. Requires JWT middleware.
func SetupUserRoutes(r *gin.Engine, d Deps) {
	userGroup := r.Group("/user")
	userGroup.Use(middleware.RequireAuth(d.Cfg.JWTSecret))
	{
		userGroup.GET("", userControllers.GetUser(d.DB))
		userGroup.PUT("", userControllers.UpdateUser(d.DB))
	}
}
