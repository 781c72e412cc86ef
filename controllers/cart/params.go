package cartControllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

func productIDParam(c *gin.Context) (uint, bool) {
	raw := c.Param("product_id")
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "message": "Producto inválido"})
		return 0, false
	}
	return uint(id), true
}
