package productController

import (
	stderrors "errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/darccuir/storefront-api/models"
)

// GetProducts lists active products of one rubro with pagination.
// Query params: rubro (required), subrubro_id, search, page, page_size.
func GetProducts(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		rubro := c.Query("rubro")
		if rubro != models.RubroDarccuir && rubro != models.RubroYatay {
			c.JSON(http.StatusBadRequest, gin.H{"error": "rubro must be darccuir or yatay"})
			return
		}

		page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
		if page < 1 {
			page = 1
		}
		pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
		if pageSize < 1 || pageSize > 100 {
			pageSize = 20
		}

		q := db.Model(&models.Product{}).
			Preload("Variants").
			Preload("Subrubros").
			Where("rubro = ? AND active = ?", rubro, true)

		if sub := c.Query("subrubro_id"); sub != "" {
			q = q.Joins("JOIN product_subrubros ps ON ps.product_id = products.id").
				Where("ps.subrubro_id = ?", sub)
		}
		if search := c.Query("search"); search != "" {
			q = q.Where("name LIKE ?", "%"+search+"%")
		}

		var total int64
		if err := q.Count(&total).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch products"})
			return
		}

		var products []models.Product
		if err := q.Order("created_at desc").
			Offset((page - 1) * pageSize).
			Limit(pageSize).
			Find(&products).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch products"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"products":  products,
			"total":     total,
			"page":      page,
			"page_size": pageSize,
		})
	}
}

// GetProductByID returns a single product with variants and subrubros.
func GetProductByID(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product ID"})
			return
		}

		var product models.Product
		if err := db.Preload("Variants").Preload("Subrubros").First(&product, id).Error; err != nil {
			if stderrors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			} else {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve product"})
			}
			return
		}
		c.JSON(http.StatusOK, product)
	}
}
