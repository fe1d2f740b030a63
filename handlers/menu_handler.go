package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"restaurant-pos/cache"
	"restaurant-pos/logger"
	"restaurant-pos/middleware"
	"restaurant-pos/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

var errCategoryNotFound = errors.New("category not found")

func menuQuery(db *gorm.DB) *gorm.DB {
	return db.
		Table("menu_items").
		Select("menu_items.*, categories.name AS category_name").
		Joins("LEFT JOIN categories ON categories.id = menu_items.category_id")
}

func findMenuItemView(db *gorm.DB, id uint) (*models.MenuItemView, error) {
	var items []models.MenuItemView
	err := menuQuery(db).Where("menu_items.id = ?", id).Limit(1).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &items[0], nil
}

func invalidateMenu(c *gin.Context, menuCache *cache.MenuCache, log *logger.Logger) {
	if err := menuCache.Invalidate(c.Request.Context()); err != nil {
		log.Warn("menu_cache_invalidate", c.GetString(middleware.RequestIDKey), "Failed to invalidate menu cache",
			slog.String("error", err.Error()))
	}
}

// GetMenuHandler lists available items, read through the Redis cache when one is configured.
func GetMenuHandler(c *gin.Context, db *gorm.DB, menuCache *cache.MenuCache, log *logger.Logger) {
	requestID := c.GetString(middleware.RequestIDKey)

	// A cache failure is logged and served from the database
	items, hit, err := menuCache.GetAvailable(c.Request.Context())
	if err != nil {
		log.Warn("menu_cache_read", requestID, "Menu cache unavailable", slog.String("error", err.Error()))
	}
	if hit {
		c.JSON(http.StatusOK, items)
		return
	}

	// Cache miss, read available items and refill
	items = []models.MenuItemView{}
	err = menuQuery(db.WithContext(c.Request.Context())).
		Where("menu_items.is_available = ?", true).
		Order("categories.name, menu_items.name").
		Scan(&items).
		Error
	if err != nil {
		respondInternalError(c, log, "get_menu", err)
		return
	}

	if err := menuCache.SetAvailable(c.Request.Context(), items); err != nil {
		log.Warn("menu_cache_write", requestID, "Failed to cache menu", slog.String("error", err.Error()))
	}
	c.JSON(http.StatusOK, items)
}

// GetAdminMenuHandler lists every item including unavailable ones.
func GetAdminMenuHandler(c *gin.Context, db *gorm.DB, log *logger.Logger) {
	items := []models.MenuItemView{}
	err := menuQuery(db.WithContext(c.Request.Context())).
		Order("categories.name, menu_items.name").
		Scan(&items).
		Error
	if err != nil {
		respondInternalError(c, log, "get_admin_menu", err)
		return
	}
	c.JSON(http.StatusOK, items)
}

// GetMenuItemHandler returns one item whether or not it is available.
func GetMenuItemHandler(c *gin.Context, db *gorm.DB, log *logger.Logger) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	item, err := findMenuItemView(db.WithContext(c.Request.Context()), id)
	if err != nil {
		respondStorageError(c, log, "get_menu_item", "Menu item not found", err)
		return
	}
	c.JSON(http.StatusOK, item)
}

type menuItemRequest struct {
	Name        *string `json:"name" binding:"omitempty,min=1,max=100"`
	Description *string `json:"description"`
	Price       *int64  `json:"price" binding:"omitempty,gte=0"`
	CategoryID  *uint   `json:"category_id"`
	ImageURL    *string `json:"image_url" binding:"omitempty,max=255"`
	IsAvailable *bool   `json:"is_available"`
}

func checkCategory(db *gorm.DB, id *uint) error {
	if id == nil {
		return nil
	}
	var count int64
	if err := db.Model(&models.Category{}).Where("id = ?", *id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return errCategoryNotFound
	}
	return nil
}

// CreateMenuItemHandler adds an item; it is available unless is_available says otherwise.
func CreateMenuItemHandler(c *gin.Context, db *gorm.DB, menuCache *cache.MenuCache, log *logger.Logger) {
	var req menuItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	if req.Name == nil || req.Price == nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "name and price are required"})
		return
	}

	// An unknown category is a client error, not a dangling reference
	db = db.WithContext(c.Request.Context())
	if err := checkCategory(db, req.CategoryID); err != nil {
		if errors.Is(err, errCategoryNotFound) {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Category not found"})
			return
		}
		respondInternalError(c, log, "create_menu_item", err)
		return
	}

	item := models.MenuItem{
		Name:        *req.Name,
		Price:       *req.Price,
		CategoryID:  req.CategoryID,
		IsAvailable: true,
	}
	if req.Description != nil {
		item.Description = *req.Description
	}
	if req.ImageURL != nil {
		item.ImageURL = *req.ImageURL
	}
	if req.IsAvailable != nil {
		item.IsAvailable = *req.IsAvailable
	}

	// Respond with the joined view so the category name is included
	if err := db.Create(&item).Error; err != nil {
		respondInternalError(c, log, "create_menu_item", err)
		return
	}
	invalidateMenu(c, menuCache, log)

	view, err := findMenuItemView(db, item.ID)
	if err != nil {
		respondInternalError(c, log, "create_menu_item", err)
		return
	}
	c.JSON(http.StatusCreated, view)
}

// UpdateMenuItemHandler applies only the fields present in the request.
func UpdateMenuItemHandler(c *gin.Context, db *gorm.DB, menuCache *cache.MenuCache, log *logger.Logger) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req menuItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	db = db.WithContext(c.Request.Context())
	var item models.MenuItem
	if err := db.First(&item, id).Error; err != nil {
		respondStorageError(c, log, "update_menu_item", "Menu item not found", err)
		return
	}
	if err := checkCategory(db, req.CategoryID); err != nil {
		if errors.Is(err, errCategoryNotFound) {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Category not found"})
			return
		}
		respondInternalError(c, log, "update_menu_item", err)
		return
	}

	// Merge the partial update
	if req.Name != nil {
		item.Name = *req.Name
	}
	if req.Description != nil {
		item.Description = *req.Description
	}
	if req.Price != nil {
		item.Price = *req.Price
	}
	if req.CategoryID != nil {
		item.CategoryID = req.CategoryID
	}
	if req.ImageURL != nil {
		item.ImageURL = *req.ImageURL
	}
	if req.IsAvailable != nil {
		item.IsAvailable = *req.IsAvailable
	}

	if err := db.Save(&item).Error; err != nil {
		respondInternalError(c, log, "update_menu_item", err)
		return
	}
	invalidateMenu(c, menuCache, log)

	view, err := findMenuItemView(db, item.ID)
	if err != nil {
		respondInternalError(c, log, "update_menu_item", err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// DeleteMenuItemHandler removes the item; past order lines keep their menu_item_id.
func DeleteMenuItemHandler(c *gin.Context, db *gorm.DB, menuCache *cache.MenuCache, log *logger.Logger) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	result := db.WithContext(c.Request.Context()).Delete(&models.MenuItem{}, id)
	if result.Error != nil {
		respondInternalError(c, log, "delete_menu_item", result.Error)
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"message": "Menu item not found"})
		return
	}
	invalidateMenu(c, menuCache, log)

	c.JSON(http.StatusOK, gin.H{"message": "Menu item deleted successfully"})
}
