package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/yeremiapane/kitchen-queue/models"
	"github.com/yeremiapane/kitchen-queue/utils"
)

type AnalyticsController struct {
	DB *gorm.DB
}

func NewAnalyticsController(db *gorm.DB) *AnalyticsController {
	return &AnalyticsController{DB: db}
}

type statusCount struct {
	Status models.OrderStatus `json:"status"`
	Count  int64              `json:"count"`
}

type foodTypeCount struct {
	FoodType string `json:"food_type"`
	Count    int64  `json:"count"`
}

// GetOrderStats -> dashboard summary for a restaurant: per-status counts,
// veg/nonveg split of ordered items, revenue of completed orders and the
// average time an order spends between acceptance and being ready.
func (ac *AnalyticsController) GetOrderStats(c *gin.Context) {
	restaurantID, ok := paramUint(c, "restaurant_id")
	if !ok {
		return
	}

	var byStatus []statusCount
	err := ac.DB.Model(&models.Order{}).
		Select("status, COUNT(*) as count").
		Where("restaurant_id = ?", restaurantID).
		Group("status").
		Scan(&byStatus).Error
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	var byFoodType []foodTypeCount
	err = ac.DB.Model(&models.OrderItem{}).
		Select("order_items.food_type, SUM(order_items.quantity) as count").
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("orders.restaurant_id = ?", restaurantID).
		Group("order_items.food_type").
		Scan(&byFoodType).Error
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	var revenueRows []models.Order
	err = ac.DB.Select("total_amount").
		Where("restaurant_id = ? AND status = ?", restaurantID, models.OrderCompleted).
		Find(&revenueRows).Error
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	revenue := decimal.Zero
	for _, o := range revenueRows {
		revenue = revenue.Add(o.TotalAmount)
	}

	avgPrep, prepSamples, err := ac.averagePrepSeconds(restaurantID)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	var delayed int64
	ac.DB.Model(&models.Order{}).
		Where("restaurant_id = ? AND is_delayed = ?", restaurantID, true).
		Count(&delayed)

	utils.RespondJSON(c, http.StatusOK, "Order statistics", gin.H{
		"restaurant_id":       restaurantID,
		"orders_by_status":    byStatus,
		"items_by_food_type":  byFoodType,
		"completed_revenue":   revenue,
		"avg_prep_seconds":    avgPrep,
		"prep_sample_size":    prepSamples,
		"delayed_order_count": delayed,
	})
}

// averagePrepSeconds averages accepted->ready durations in Go so the query
// stays portable between mysql and sqlite.
func (ac *AnalyticsController) averagePrepSeconds(restaurantID uint) (float64, int, error) {
	var orders []models.Order
	err := ac.DB.Select("accepted_at, ready_at").
		Where("restaurant_id = ? AND accepted_at IS NOT NULL AND ready_at IS NOT NULL", restaurantID).
		Find(&orders).Error
	if err != nil {
		return 0, 0, err
	}

	var total time.Duration
	count := 0
	for _, o := range orders {
		d := o.ReadyAt.Sub(*o.AcceptedAt)
		if d < 0 {
			continue
		}
		total += d
		count++
	}
	if count == 0 {
		return 0, 0, nil
	}
	return total.Seconds() / float64(count), count, nil
}
