package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/darccuir/storefront-api/auth"
	"github.com/darccuir/storefront-api/cart"
	"github.com/darccuir/storefront-api/config"
	"github.com/darccuir/storefront-api/mailer"
)

// Deps is everything the handlers need, built once in main.
type Deps struct {
	DB       *gorm.DB
	Cfg      config.Config
	Carts    *cart.Service
	Mailer   *mailer.Mailer
	Firebase *auth.Firebase // nil disables Google sign-in
	Log      *logrus.Logger
}

// SetupRoutes is the single entry-point that wires up all route groups.
func SetupRoutes(r *gin.Engine, d Deps) {
	// 1. Public auth routes (no middleware)
	SetupAuthRoutes(r, d)

	// 2. Public catalog + cart (cart works with or without a session)
	SetupCatalogRoutes(r, d)

	// 3. User routes (JWT-protected)
	SetupUserRoutes(r, d)

	// 4. Order routes
	SetupOrderRoutes(r, d)

	// 5. Admin routes (API-key-protected)
	SetupAdminRoutes(r, d)
}
