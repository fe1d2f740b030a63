package handlers

import (
	"net/http"
	"time"

	"restaurant-pos/logger"
	"restaurant-pos/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type orderStats struct {
	TotalOrders     int64 `json:"total_orders"`
	PendingOrders   int64 `json:"pending_orders"`
	CookingOrders   int64 `json:"cooking_orders"`
	CompletedOrders int64 `json:"completed_orders"`
	CancelledOrders int64 `json:"cancelled_orders"`
	TodayRevenue    int64 `json:"today_revenue"`
}

type tableStats struct {
	TotalTables     int64 `json:"total_tables"`
	AvailableTables int64 `json:"available_tables"`
	OccupiedTables  int64 `json:"occupied_tables"`
}

type statusCount struct {
	Status string
	Count  int64
}

func countByStatus(db *gorm.DB, model interface{}) (map[string]int64, int64, error) {
	var rows []statusCount
	err := db.Model(model).Select("status, COUNT(*) AS count").Group("status").Scan(&rows).Error
	if err != nil {
		return nil, 0, err
	}

	counts := make(map[string]int64, len(rows))
	var total int64
	for _, r := range rows {
		counts[r.Status] = r.Count
		total += r.Count
	}
	return counts, total, nil
}

// GetDashboardStatsHandler reports order, menu and table counters. Today's revenue
// excludes cancelled orders.
func GetDashboardStatsHandler(c *gin.Context, db *gorm.DB, log *logger.Logger) {
	db = db.WithContext(c.Request.Context())

	orderCounts, totalOrders, err := countByStatus(db, &models.Order{})
	if err != nil {
		respondInternalError(c, log, "dashboard_stats", err)
		return
	}

	now := time.Now()
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	var revenue int64
	err = db.Model(&models.Order{}).
		Select("COALESCE(SUM(total), 0)").
		Where("created_at >= ? AND status <> ?", startOfDay, models.OrderCancelled).
		Scan(&revenue).
		Error
	if err != nil {
		respondInternalError(c, log, "dashboard_stats", err)
		return
	}

	var menuItems int64
	if err := db.Model(&models.MenuItem{}).Where("is_available = ?", true).Count(&menuItems).Error; err != nil {
		respondInternalError(c, log, "dashboard_stats", err)
		return
	}

	tableCounts, totalTables, err := countByStatus(db, &models.RestaurantTable{})
	if err != nil {
		respondInternalError(c, log, "dashboard_stats", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"orders": orderStats{
			TotalOrders:     totalOrders,
			PendingOrders:   orderCounts[string(models.OrderPending)],
			CookingOrders:   orderCounts[string(models.OrderCooking)],
			CompletedOrders: orderCounts[string(models.OrderCompleted)],
			CancelledOrders: orderCounts[string(models.OrderCancelled)],
			TodayRevenue:    revenue,
		},
		"menu": gin.H{
			"total_menu_items": menuItems,
		},
		"tables": tableStats{
			TotalTables:     totalTables,
			AvailableTables: tableCounts[string(models.TableAvailable)],
			OccupiedTables:  tableCounts[string(models.TableOccupied)],
		},
	})
}
