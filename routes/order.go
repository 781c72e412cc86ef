package routes

import (
	"github.com/gin-gonic/gin"

	orderControllers "github.com/darccuir/storefront-api/controllers/order"
	"github.com/darccuir/storefront-api/middleware"
)

func SetupOrderRoutes(r *gin.Engine, d Deps) {
	orders := r.Group("/orders")
	orders.Use(middleware.RequireAuth(d.Cfg.JWTSecret))
	{
		orders.POST("/place", orderControllers.PlaceOrder(d.DB, d.Carts, d.Mailer, d.Log))
		orders.GET("", orderControllers.GetUserOrders(d.DB))
	}
}
