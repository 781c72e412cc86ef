package cartControllers

import (
	stderrors "errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/darccuir/storefront-api/auth"
	"github.com/darccuir/storefront-api/cart"
	"github.com/darccuir/storefront-api/models"
)

type AddItemInput struct {
	ProductID    uint   `json:"product_id" binding:"required"`
	Quantity     int    `json:"quantity"`
	VariantColor string `json:"variant_color"`
}

type UpdateItemInput struct {
	ProductID    uint   `json:"product_id" binding:"required"`
	Quantity     int    `json:"quantity"`
	VariantColor string `json:"variant_color"`
}

// identityFrom builds the cart identity for the request: the authenticated
// user when the optional-auth middleware found one, otherwise the anonymous
// cookie token. With mint set, a visitor without a token gets one along with
// its Set-Cookie.
func identityFrom(c *gin.Context, secure, mint bool) (cart.Identity, error) {
	if userID, ok := c.Get("user_id"); ok {
		return cart.Identity{UserID: userID.(string)}, nil
	}

	token := auth.ReadSessionCookie(c)
	if token == "" && mint {
		fresh, err := auth.MintSessionToken()
		if err != nil {
			return cart.Identity{}, err
		}
		auth.SetSessionCookie(c, fresh, secure)
		token = fresh
	}
	return cart.Identity{SessionToken: token}, nil
}

// respondCartError translates the cart sentinels into the uniform
// {ok:false, message} envelope. Unexpected errors are logged and reported
// generically: the storefront never surfaces internals.
func respondCartError(c *gin.Context, log *logrus.Logger, err error, stock int) {
	switch {
	case stderrors.Is(err, cart.ErrProductNotFound):
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "message": "Producto no encontrado"})
	case stderrors.Is(err, cart.ErrCartNotFound), stderrors.Is(err, cart.ErrLineNotFound):
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "message": "El producto no está en el carrito"})
	case stderrors.Is(err, cart.ErrInsufficientStock):
		c.JSON(http.StatusConflict, gin.H{"ok": false, "message": "Stock insuficiente", "available_stock": stock})
	case stderrors.Is(err, cart.ErrInvalidQuantity):
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "message": "La cantidad debe ser mayor a cero"})
	default:
		log.WithError(err).Error("cart operation failed")
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "message": "Ocurrió un error, intentá nuevamente"})
	}
}

// POST /cart/items
func AddItem(svc *cart.Service, secure bool, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input AddItemInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"ok": false, "message": "Datos inválidos"})
			return
		}
		if input.Quantity == 0 {
			input.Quantity = 1
		}

		id, err := identityFrom(c, secure, true)
		if err != nil {
			respondCartError(c, log, err, 0)
			return
		}

		res, err := svc.Add(id, input.ProductID, input.Quantity, input.VariantColor)
		if err != nil {
			respondCartError(c, log, err, res.AvailableStock)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"ok":              true,
			"message":         "Producto agregado al carrito",
			"available_stock": res.AvailableStock,
		})
	}
}

// PUT /cart/items
func UpdateItem(svc *cart.Service, secure bool, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input UpdateItemInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"ok": false, "message": "Datos inválidos"})
			return
		}

		id, err := identityFrom(c, secure, false)
		if err != nil {
			respondCartError(c, log, err, 0)
			return
		}

		res, err := svc.UpdateQuantity(id, input.ProductID, input.VariantColor, input.Quantity)
		if err != nil {
			respondCartError(c, log, err, res.AvailableStock)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"ok":              true,
			"message":         "Carrito actualizado",
			"available_stock": res.AvailableStock,
		})
	}
}

// DELETE /cart/items/:product_id (optional ?variant_color=)
func RemoveItem(svc *cart.Service, secure bool, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		productID, ok := productIDParam(c)
		if !ok {
			return
		}

		id, err := identityFrom(c, secure, false)
		if err != nil {
			respondCartError(c, log, err, 0)
			return
		}

		if err := svc.Remove(id, productID, c.Query("variant_color")); err != nil {
			respondCartError(c, log, err, 0)
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true, "message": "Producto eliminado del carrito"})
	}
}

// DELETE /cart
func ClearCart(svc *cart.Service, secure bool, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Clearing never mints a session: a visitor with no cart is already
		// done.
		id, err := identityFrom(c, secure, false)
		if err != nil {
			respondCartError(c, log, err, 0)
			return
		}

		if err := svc.Clear(id); err != nil {
			respondCartError(c, log, err, 0)
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true, "message": "Carrito vaciado"})
	}
}

// GET /cart
func GetCart(svc *cart.Service, secure bool, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := identityFrom(c, secure, false)
		if err != nil {
			respondCartError(c, log, err, 0)
			return
		}

		wholesale := c.GetString("role") == models.RoleWholesale
		view, err := svc.Get(id, wholesale)
		if err != nil {
			respondCartError(c, log, err, 0)
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true, "items": view.Items, "total": view.Total})
	}
}
