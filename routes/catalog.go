package routes

import (
	"github.com/gin-gonic/gin"

	cartControllers "github.com/darccuir/storefront-api/controllers/cart"
	productController "github.com/darccuir/storefront-api/controllers/product"
	"github.com/darccuir/storefront-api/middleware"
)

// SetupCatalogRoutes registers product browsing and the cart surface. Cart
// endpoints run behind OptionalAuth: a valid token binds the operation to the
// user's cart, otherwise the anonymous cookie session applies.
func SetupCatalogRoutes(r *gin.Engine, d Deps) {
	r.GET("/products", productController.GetProducts(d.DB))
	r.GET("/products/:id", productController.GetProductByID(d.DB))
	r.GET("/subrubros", productController.GetSubrubroTree(d.DB))

	cartGroup := r.Group("/cart")
	cartGroup.Use(middleware.OptionalAuth(d.Cfg.JWTSecret))
	{
		cartGroup.GET("", cartControllers.GetCart(d.Carts, d.Cfg.Production, d.Log))
		cartGroup.POST("/items", cartControllers.AddItem(d.Carts, d.Cfg.Production, d.Log))
		cartGroup.PUT("/items", cartControllers.UpdateItem(d.Carts, d.Cfg.Production, d.Log))
		cartGroup.DELETE("/items/:product_id", cartControllers.RemoveItem(d.Carts, d.Cfg.Production, d.Log))
		cartGroup.DELETE("", cartControllers.ClearCart(d.Carts, d.Cfg.Production, d.Log))
	}
}
