package handlers

import (
	"net/http"
	"strconv"

	"restaurant-pos/logger"
	"restaurant-pos/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// GetTableListHandler lists every table with its occupancy.
func GetTableListHandler(c *gin.Context, db *gorm.DB, log *logger.Logger) {
	tables := []models.RestaurantTable{}
	err := db.WithContext(c.Request.Context()).Order("table_number").Find(&tables).Error
	if err != nil {
		respondInternalError(c, log, "list_tables", err)
		return
	}
	c.JSON(http.StatusOK, tables)
}

// UpdateTableStatusHandler is the manual override used by staff, e.g. to free a table
// whose order was never closed.
func UpdateTableStatusHandler(c *gin.Context, db *gorm.DB, log *logger.Logger) {
	tableNumber, err := strconv.Atoi(c.Param("tableNumber"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid table number"})
		return
	}

	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	status, ok := models.ParseTableStatus(req.Status)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"message": "status must be available or occupied"})
		return
	}

	// Look the table up first; MySQL reports zero affected rows when the
	// status is already the requested one
	db = db.WithContext(c.Request.Context())
	var table models.RestaurantTable
	if err := db.Where("table_number = ?", tableNumber).First(&table).Error; err != nil {
		respondStorageError(c, log, "update_table_status", "Table not found", err)
		return
	}

	// Active orders are left alone, the override only touches occupancy
	err = db.Model(&table).Update("status", status).Error
	if err != nil {
		respondInternalError(c, log, "update_table_status", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Table status updated successfully"})
}
