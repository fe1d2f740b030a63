package handlers

import (
	"net/http"
	"strconv"

	"restaurant-pos/logger"
	"restaurant-pos/orders"

	"github.com/gin-gonic/gin"
)

// CreateOrderHandler submits a customer order; responds with the stored header.
func CreateOrderHandler(c *gin.Context, svc *orders.Service, log *logger.Logger) {
	var req orders.SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	order, err := svc.SubmitOrder(c.Request.Context(), req)
	if err != nil {
		respondOrderError(c, log, "create_order", err)
		return
	}

	c.JSON(http.StatusCreated, order)
}

func GetOrderListHandler(c *gin.Context, svc *orders.Service, log *logger.Logger) {
	filter := orders.ListFilter{Status: c.Query("status")}
	if raw := c.Query("table_number"); raw != "" {
		tableNumber, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"message": "Invalid table_number filter",
				"error":   err.Error(),
			})
			return
		}
		filter.TableNumber = &tableNumber
	}

	list, err := svc.ListOrders(c.Request.Context(), filter)
	if err != nil {
		respondOrderError(c, log, "list_orders", err)
		return
	}

	c.JSON(http.StatusOK, list)
}

func GetOrderDataHandler(c *gin.Context, svc *orders.Service, log *logger.Logger) {
	orderID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	detail, err := svc.GetOrder(c.Request.Context(), orderID)
	if err != nil {
		respondOrderError(c, log, "get_order", err)
		return
	}

	c.JSON(http.StatusOK, detail)
}

func UpdateOrderStatusHandler(c *gin.Context, svc *orders.Service, log *logger.Logger) {
	orderID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	order, err := svc.TransitionStatus(c.Request.Context(), orderID, req.Status)
	if err != nil {
		respondOrderError(c, log, "update_order_status", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Order status updated successfully",
		"order":   order,
	})
}
