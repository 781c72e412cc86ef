package productController

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/tealeg/xlsx"
	"gorm.io/gorm"

	"github.com/darccuir/storefront-api/models"
)

// ExportProductsToExcel streams the full catalog as an .xlsx download for the
// back office.
func ExportProductsToExcel(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var products []models.Product
		if err := db.Preload("Variants").Preload("Subrubros").Find(&products).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch products"})
			return
		}

		file := xlsx.NewFile()
		sheet, err := file.AddSheet("Products")
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create Excel sheet"})
			return
		}

		headers := []string{
			"ID", "SKU", "Name", "Rubro", "Price", "PriceWholesale", "Stock",
			"Active", "Variants", "SubrubroIDs", "CreatedAt", "UpdatedAt",
		}
		headerRow := sheet.AddRow()
		for _, h := range headers {
			headerRow.AddCell().SetValue(h)
		}

		for _, p := range products {
			row := sheet.AddRow()

			row.AddCell().SetValue(p.ID)
			row.AddCell().SetValue(p.SKU)
			row.AddCell().SetValue(p.Name)
			row.AddCell().SetValue(p.Rubro)
			row.AddCell().SetValue(p.Price.StringFixed(2))
			if p.PriceWholesale.Valid {
				row.AddCell().SetValue(p.PriceWholesale.Decimal.StringFixed(2))
			} else {
				row.AddCell().SetValue("")
			}
			row.AddCell().SetValue(p.Stock)
			row.AddCell().SetValue(p.Active)

			var colors []string
			for _, v := range p.Variants {
				colors = append(colors, v.ColorName)
			}
			row.AddCell().SetValue(strings.Join(colors, ","))

			var subIDs []string
			for _, s := range p.Subrubros {
				subIDs = append(subIDs, strconv.Itoa(int(s.ID)))
			}
			row.AddCell().SetValue(strings.Join(subIDs, ","))

			row.AddCell().SetValue(p.CreatedAt.Format("2006-01-02 15:04:05"))
			row.AddCell().SetValue(p.UpdatedAt.Format("2006-01-02 15:04:05"))
		}

		c.Header("Content-Disposition", "attachment; filename=products.xlsx")
		c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Header("Content-Transfer-Encoding", "binary")
		c.Header("Expires", "0")

		if err := file.Write(c.Writer); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to write Excel file"})
			return
		}
	}
}
