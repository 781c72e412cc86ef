package productController

import (
	stderrors "errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/darccuir/storefront-api/models"
)

type VariantInput struct {
	ColorName string   `json:"color_name" binding:"required"`
	ColorHex  string   `json:"color_hex"`
	Images    []string `json:"images"`
}

type ProductInput struct {
	SKU            string           `json:"sku" binding:"required"`
	Name           string           `json:"name" binding:"required"`
	Description    string           `json:"description"`
	Price          decimal.Decimal  `json:"price" binding:"required"`
	PriceWholesale *decimal.Decimal `json:"price_wholesale"`
	Stock          int              `json:"stock"`
	CoverImages    []string         `json:"cover_images"`
	Rubro          string           `json:"rubro" binding:"required"`
	SubrubroIDs    []uint           `json:"subrubro_ids"`
	Variants       []VariantInput   `json:"variants"`
	Active         *bool            `json:"active"`
}

func (in *ProductInput) toModel() models.Product {
	p := models.Product{
		SKU:         in.SKU,
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price,
		Stock:       in.Stock,
		CoverImages: in.CoverImages,
		Rubro:       in.Rubro,
		Active:      true,
	}
	if in.PriceWholesale != nil {
		p.PriceWholesale = decimal.NullDecimal{Decimal: *in.PriceWholesale, Valid: true}
	}
	if in.Active != nil {
		p.Active = *in.Active
	}
	for _, v := range in.Variants {
		p.Variants = append(p.Variants, models.Variant{
			ColorName: v.ColorName,
			ColorHex:  v.ColorHex,
			Images:    v.Images,
		})
	}
	return p
}

// POST /admin/products
func CreateProduct(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input ProductInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}
		if input.Rubro != models.RubroDarccuir && input.Rubro != models.RubroYatay {
			c.JSON(http.StatusBadRequest, gin.H{"error": "rubro must be darccuir or yatay"})
			return
		}

		product := input.toModel()
		if len(input.SubrubroIDs) > 0 {
			var subrubros []models.Subrubro
			if err := db.Find(&subrubros, input.SubrubroIDs).Error; err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve subrubros"})
				return
			}
			product.Subrubros = subrubros
		}

		if err := db.Create(&product).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create product"})
			return
		}
		c.JSON(http.StatusCreated, product)
	}
}

// PUT /admin/products/:id
func UpdateProduct(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product ID"})
			return
		}

		var product models.Product
		if err := db.Preload("Variants").First(&product, id).Error; err != nil {
			if stderrors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			} else {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve product"})
			}
			return
		}

		var input ProductInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}

		updated := input.toModel()
		updated.ID = product.ID
		updated.CreatedAt = product.CreatedAt

		err = db.Transaction(func(tx *gorm.DB) error {
			// Variants are replaced wholesale; partial variant edits are not
			// worth the diffing.
			if err := tx.Where("product_id = ?", product.ID).Delete(&models.Variant{}).Error; err != nil {
				return err
			}
			if err := tx.Session(&gorm.Session{FullSaveAssociations: true}).Save(&updated).Error; err != nil {
				return err
			}
			if input.SubrubroIDs != nil {
				var subrubros []models.Subrubro
				if err := tx.Find(&subrubros, input.SubrubroIDs).Error; err != nil {
					return err
				}
				if err := tx.Model(&updated).Association("Subrubros").Replace(subrubros); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update product"})
			return
		}
		c.JSON(http.StatusOK, updated)
	}
}

// DELETE /admin/products/:id (soft delete)
func DeleteProduct(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product ID"})
			return
		}

		res := db.Delete(&models.Product{}, id)
		if res.Error != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete product"})
			return
		}
		if res.RowsAffected == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Product deleted"})
	}
}
