package orderControllers

import (
	stderrors "errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/darccuir/storefront-api/cart"
	"github.com/darccuir/storefront-api/mailer"
	"github.com/darccuir/storefront-api/models"
)

type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

func mapOrderStatus(status string) (models.OrderStatus, bool) {
	switch strings.ToLower(status) {
	case string(models.OrderStatusPending):
		return models.OrderStatusPending, true
	case string(models.OrderStatusConfirmed):
		return models.OrderStatusConfirmed, true
	case string(models.OrderStatusShipped):
		return models.OrderStatusShipped, true
	case string(models.OrderStatusDelivered):
		return models.OrderStatusDelivered, true
	case string(models.OrderStatusCancelled):
		return models.OrderStatusCancelled, true
	}
	return "", false
}

// POST /orders/place builds an order from the caller's cart, clears the
// cart lines, and emails a confirmation.
func PlaceOrder(db *gorm.DB, carts *cart.Service, mail *mailer.Mailer, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		userIDVal, exists := c.Get("user_id")
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"ok": false, "message": "Iniciá sesión para continuar"})
			return
		}
		userID := userIDVal.(string)

		var user models.User
		if err := db.First(&user, "id = ?", userID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"ok": false, "message": "Usuario no encontrado"})
			return
		}

		id := cart.Identity{UserID: userID}
		view, err := carts.Get(id, user.Wholesale())
		if err != nil {
			log.WithError(err).Error("loading cart for checkout")
			c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "message": "Ocurrió un error, intentá nuevamente"})
			return
		}
		if len(view.Items) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"ok": false, "message": "El carrito está vacío"})
			return
		}

		order := models.Order{
			Number:    uuid.NewString(),
			UserID:    userID,
			Status:    models.OrderStatusPending,
			Total:     view.Total,
			Wholesale: user.Wholesale(),
		}
		for _, item := range view.Items {
			order.Items = append(order.Items, models.OrderItem{
				ProductID:    item.ProductID,
				SKU:          item.SKU,
				Name:         item.Name,
				UnitPrice:    item.UnitPrice,
				Quantity:     item.Quantity,
				VariantColor: item.VariantColor,
			})
		}

		if err := db.Create(&order).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "message": "No pudimos registrar el pedido"})
			return
		}

		if err := carts.Clear(id); err != nil {
			// The order exists; an uncleared cart is an annoyance, not a
			// failure.
			log.WithError(err).Warn("clearing cart after checkout")
		}

		broadcastNewOrder(order)
		go func() {
			if err := mail.SendOrderConfirmation(user.Email, order); err != nil {
				log.WithError(err).Warn("order confirmation mail failed")
			}
		}()

		c.JSON(http.StatusCreated, gin.H{"ok": true, "message": "Pedido registrado", "order": order})
	}
}

// GET /orders (caller's history)
func GetUserOrders(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, _ := c.Get("user_id")

		var orders []models.Order
		if err := db.Preload("Items").
			Where("user_id = ?", userID).
			Order("created_at desc").
			Find(&orders).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch orders"})
			return
		}
		c.JSON(http.StatusOK, orders)
	}
}

// GET /admin/orders
func GetAllOrders(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var orders []models.Order
		if err := db.Preload("Items").Order("created_at desc").Find(&orders).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch orders"})
			return
		}
		c.JSON(http.StatusOK, orders)
	}
}

// PUT /admin/orders/:order_id/status
func UpdateOrderStatus(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input UpdateOrderStatusRequest
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}
		status, ok := mapOrderStatus(input.Status)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown order status"})
			return
		}

		var order models.Order
		if err := db.Preload("Items").First(&order, "id = ?", c.Param("order_id")).Error; err != nil {
			if stderrors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
			} else {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch order"})
			}
			return
		}

		order.Status = status
		if err := db.Save(&order).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update order"})
			return
		}
		c.JSON(http.StatusOK, order)
	}
}
