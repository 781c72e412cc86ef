package productController

import (
	stderrors "errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/darccuir/storefront-api/models"
)

type SubrubroInput struct {
	Rubro    string `json:"rubro" binding:"required"`
	Name     string `json:"name" binding:"required"`
	ParentID *uint  `json:"parent_id"`
}

// GetSubrubroTree returns the full category tree of a rubro, children nested
// recursively under their parents.
func GetSubrubroTree(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		rubro := c.Query("rubro")
		if rubro != models.RubroDarccuir && rubro != models.RubroYatay {
			c.JSON(http.StatusBadRequest, gin.H{"error": "rubro must be darccuir or yatay"})
			return
		}

		var roots []models.Subrubro
		if err := db.Where("rubro = ? AND parent_id IS NULL", rubro).Order("name").Find(&roots).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch subrubros"})
			return
		}

		for i := range roots {
			if err := loadChildren(db, &roots[i]); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch subrubros"})
				return
			}
		}
		c.JSON(http.StatusOK, roots)
	}
}

func loadChildren(db *gorm.DB, node *models.Subrubro) error {
	if err := db.Where("parent_id = ?", node.ID).Order("name").Find(&node.Children).Error; err != nil {
		return err
	}
	for i := range node.Children {
		if err := loadChildren(db, &node.Children[i]); err != nil {
			return err
		}
	}
	return nil
}

// POST /admin/subrubros
func CreateSubrubro(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input SubrubroInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}
		if input.Rubro != models.RubroDarccuir && input.Rubro != models.RubroYatay {
			c.JSON(http.StatusBadRequest, gin.H{"error": "rubro must be darccuir or yatay"})
			return
		}

		if input.ParentID != nil {
			var parent models.Subrubro
			if err := db.First(&parent, *input.ParentID).Error; err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Parent subrubro does not exist"})
				return
			}
			if parent.Rubro != input.Rubro {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Parent belongs to a different rubro"})
				return
			}
		}

		subrubro := models.Subrubro{Rubro: input.Rubro, Name: input.Name, ParentID: input.ParentID}
		if err := db.Create(&subrubro).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create subrubro"})
			return
		}
		c.JSON(http.StatusCreated, subrubro)
	}
}

// PUT /admin/subrubros/:id
func UpdateSubrubro(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid subrubro ID"})
			return
		}

		var subrubro models.Subrubro
		if err := db.First(&subrubro, id).Error; err != nil {
			if stderrors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Subrubro not found"})
			} else {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve subrubro"})
			}
			return
		}

		var input struct {
			Name     *string `json:"name"`
			ParentID *uint   `json:"parent_id"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}

		if input.Name != nil {
			subrubro.Name = *input.Name
		}
		if input.ParentID != nil {
			subrubro.ParentID = input.ParentID
		}
		if err := db.Save(&subrubro).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update subrubro"})
			return
		}
		c.JSON(http.StatusOK, subrubro)
	}
}

// DELETE /admin/subrubros/:id (children cascade)
func DeleteSubrubro(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid subrubro ID"})
			return
		}

		res := db.Delete(&models.Subrubro{}, id)
		if res.Error != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete subrubro"})
			return
		}
		if res.RowsAffected == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "Subrubro not found"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Subrubro deleted"})
	}
}
