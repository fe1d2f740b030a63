package handlers

import (
	"errors"
	"net/http"
	"strings"

	"restaurant-pos/cache"
	"restaurant-pos/logger"
	"restaurant-pos/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type categoryRequest struct {
	Name string `json:"name" binding:"required,max=100"`
}

func isCategoryNameTaken(db *gorm.DB, name string, exceptID uint) (bool, error) {
	var count int64
	err := db.Model(&models.Category{}).Where("name = ? AND id <> ?", name, exceptID).Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// GetCategoryListHandler lists categories by name.
func GetCategoryListHandler(c *gin.Context, db *gorm.DB, log *logger.Logger) {
	categories := []models.Category{}
	err := db.WithContext(c.Request.Context()).Order("name").Find(&categories).Error
	if err != nil {
		respondInternalError(c, log, "list_categories", err)
		return
	}
	c.JSON(http.StatusOK, categories)
}

func CreateCategoryHandler(c *gin.Context, db *gorm.DB, log *logger.Logger) {
	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Category name is required"})
		return
	}

	// Names are unique
	db = db.WithContext(c.Request.Context())
	taken, err := isCategoryNameTaken(db, name, 0)
	if err != nil {
		respondInternalError(c, log, "create_category", err)
		return
	}
	if taken {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Category already exists"})
		return
	}

	// A concurrent insert can still hit the unique index
	category := models.Category{Name: name}
	if err := db.Create(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Category already exists"})
			return
		}
		respondInternalError(c, log, "create_category", err)
		return
	}

	c.JSON(http.StatusCreated, category)
}

func UpdateCategoryHandler(c *gin.Context, db *gorm.DB, menuCache *cache.MenuCache, log *logger.Logger) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Category name is required"})
		return
	}

	db = db.WithContext(c.Request.Context())
	var category models.Category
	if err := db.First(&category, id).Error; err != nil {
		respondStorageError(c, log, "update_category", "Category not found", err)
		return
	}

	// Keeping its own name is not a conflict
	taken, err := isCategoryNameTaken(db, name, category.ID)
	if err != nil {
		respondInternalError(c, log, "update_category", err)
		return
	}
	if taken {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Category already exists"})
		return
	}

	// Menu views carry the category name, so the cached menu is stale now
	category.Name = name
	if err := db.Save(&category).Error; err != nil {
		respondInternalError(c, log, "update_category", err)
		return
	}
	invalidateMenu(c, menuCache, log)

	c.JSON(http.StatusOK, category)
}

// DeleteCategoryHandler detaches the category's menu items before deleting it.
func DeleteCategoryHandler(c *gin.Context, db *gorm.DB, menuCache *cache.MenuCache, log *logger.Logger) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	tx := db.WithContext(c.Request.Context()).Begin()
	if tx.Error != nil {
		respondInternalError(c, log, "delete_category", tx.Error)
		return
	}

	// Detach menu items first, they stay on the menu uncategorised
	err := tx.Model(&models.MenuItem{}).Where("category_id = ?", id).Update("category_id", nil).Error
	if err != nil {
		tx.Rollback()
		respondInternalError(c, log, "delete_category", err)
		return
	}

	// Nothing deleted means the id was unknown, undo the detach as well
	result := tx.Delete(&models.Category{}, id)
	if result.Error != nil {
		tx.Rollback()
		respondInternalError(c, log, "delete_category", result.Error)
		return
	}
	if result.RowsAffected == 0 {
		tx.Rollback()
		c.JSON(http.StatusNotFound, gin.H{"message": "Category not found"})
		return
	}

	if err := tx.Commit().Error; err != nil {
		tx.Rollback()
		respondInternalError(c, log, "delete_category", err)
		return
	}
	invalidateMenu(c, menuCache, log)

	c.JSON(http.StatusOK, gin.H{"message": "Category deleted successfully"})
}
