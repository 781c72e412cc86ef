package routes

import (
	"github.com/gin-gonic/gin"

	orderControllers "github.com/darccuir/storefront-api/controllers/order"
	productController "github.com/darccuir/storefront-api/controllers/product"
	userControllers "github.com/darccuir/storefront-api/controllers/user"
	"github.com/darccuir/storefront-api/middleware"
)

// SetupAdminRoutes registers all "/admin/*" endpoints. Requires API-key
// middleware.
func SetupAdminRoutes(r *gin.Engine, d Deps) {
	adminGroup := r.Group("/admin")
	adminGroup.Use(middleware.ValidateAPIKey(d.Cfg.AdminAPIKey))
	{
		// ─────────── Product Management ───────────
		productAdmin := adminGroup.Group("/products")
		{
			productAdmin.POST("", productController.CreateProduct(d.DB))
			productAdmin.PUT("/:id", productController.UpdateProduct(d.DB))
			productAdmin.DELETE("/:id", productController.DeleteProduct(d.DB))
			productAdmin.GET("/export-excel", productController.ExportProductsToExcel(d.DB))
		}

		// ─────────── Subrubro Management ───────────
		subrubroAdmin := adminGroup.Group("/subrubros")
		{
			subrubroAdmin.POST("", productController.CreateSubrubro(d.DB))
			subrubroAdmin.PUT("/:id", productController.UpdateSubrubro(d.DB))
			subrubroAdmin.DELETE("/:id", productController.DeleteSubrubro(d.DB))
		}

		// ─────────── Users & Orders ───────────
		adminGroup.GET("/users", userControllers.GetAllUsers(d.DB))
		adminGroup.GET("/orders", orderControllers.GetAllOrders(d.DB))
		adminGroup.PUT("/orders/:order_id/status", orderControllers.UpdateOrderStatus(d.DB))
		adminGroup.GET("/ws/orders", orderControllers.OrderWebSocket)
	}
}
