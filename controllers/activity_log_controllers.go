package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeremiapane/kitchen-queue/lifecycle"
	"github.com/yeremiapane/kitchen-queue/utils"
)

type ActivityLogController struct {
	Engine *lifecycle.Engine
}

func NewActivityLogController(engine *lifecycle.Engine) *ActivityLogController {
	return &ActivityLogController{Engine: engine}
}

// GetRestaurantLogs -> a restaurant's full audit trail, newest first.
func (ac *ActivityLogController) GetRestaurantLogs(c *gin.Context) {
	restaurantID, ok := paramUint(c, "restaurant_id")
	if !ok {
		return
	}
	if restaurantID != c.GetUint("restaurant_id") {
		utils.RespondError(c, http.StatusForbidden, lifecycle.ErrNotSameRestaurant)
		return
	}
	logs, err := ac.Engine.ActivityForRestaurant(restaurantID)
	if err != nil {
		respondLifecycleError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Activity logs", logs)
}

// GetOrderLogs -> one order's audit trail, newest first.
func (ac *ActivityLogController) GetOrderLogs(c *gin.Context) {
	orderID, ok := paramUint(c, "order_id")
	if !ok {
		return
	}
	order, err := ac.Engine.GetOrder(orderID)
	if err != nil {
		respondLifecycleError(c, err)
		return
	}
	if order.RestaurantID != c.GetUint("restaurant_id") {
		utils.RespondError(c, http.StatusForbidden, lifecycle.ErrNotSameRestaurant)
		return
	}
	logs, err := ac.Engine.ActivityForOrder(orderID)
	if err != nil {
		respondLifecycleError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Activity logs", logs)
}
