package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"restaurant-pos/logger"
	"restaurant-pos/middleware"
	"restaurant-pos/orders"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// respondOrderError maps service errors onto status codes. Only unexpected errors are logged.
func respondOrderError(c *gin.Context, log *logger.Logger, action string, err error) {
	var verr *orders.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{
			"message": "Invalid order data",
			"error":   err.Error(),
			"details": verr.Fields,
		})
	case errors.Is(err, orders.ErrOrderNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": "Order not found", "error": err.Error()})
	case errors.Is(err, orders.ErrTableNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": "Table not found", "error": err.Error()})
	case errors.Is(err, orders.ErrMenuItemNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": "Menu item not found", "error": err.Error()})
	case errors.Is(err, orders.ErrTableOccupied), errors.Is(err, orders.ErrIllegalTransition):
		c.JSON(http.StatusConflict, gin.H{"message": "Conflict", "error": err.Error()})
	default:
		respondInternalError(c, log, action, err)
	}
}

func respondInternalError(c *gin.Context, log *logger.Logger, action string, err error) {
	_ = c.Error(err)
	log.Error(action, c.GetString(middleware.RequestIDKey), "Request failed", err)
	c.JSON(http.StatusInternalServerError, gin.H{
		"message": "Internal server error",
		"error":   err.Error(),
	})
}

func respondBindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{
		"message": "Invalid request body",
		"error":   err.Error(),
	})
}

// respondStorageError turns gorm.ErrRecordNotFound into a 404 carrying notFoundMsg.
func respondStorageError(c *gin.Context, log *logger.Logger, action, notFoundMsg string, err error) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"message": notFoundMsg})
		return
	}
	respondInternalError(c, log, action, err)
}

func parseIDParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"message": "Invalid " + name,
		})
		return 0, false
	}
	return uint(id), true
}
