package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/yeremiapane/kitchen-queue/lifecycle"
	"github.com/yeremiapane/kitchen-queue/models"
	"github.com/yeremiapane/kitchen-queue/utils"
)

type ChefOrderController struct {
	DB     *gorm.DB
	Engine *lifecycle.Engine
}

func NewChefOrderController(db *gorm.DB, engine *lifecycle.Engine) *ChefOrderController {
	return &ChefOrderController{DB: db, Engine: engine}
}

func paramUint(c *gin.Context, name string) (uint, bool) {
	v, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid "+name))
		return 0, false
	}
	return uint(v), true
}

// GetKitchenOrders -> a restaurant's orders for the kitchen display,
// urgent first, optional ?status= filter.
func (oc *ChefOrderController) GetKitchenOrders(c *gin.Context) {
	restaurantID, ok := paramUint(c, "restaurant_id")
	if !ok {
		return
	}
	if restaurantID != c.GetUint("restaurant_id") {
		utils.RespondError(c, http.StatusForbidden, lifecycle.ErrNotSameRestaurant)
		return
	}

	var status *models.OrderStatus
	if s := c.Query("status"); s != "" {
		st := models.OrderStatus(s)
		status = &st
	}

	orders, err := oc.Engine.ListKitchenOrders(restaurantID, status)
	if err != nil {
		respondLifecycleError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Kitchen orders", orders)
}

// orderItemView joins the frozen line snapshot with the current item name.
type orderItemView struct {
	ID         uint            `json:"id"`
	MenuItemID uint            `json:"menu_item_id"`
	ItemName   string          `json:"item_name"`
	Quantity   int             `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	TotalPrice decimal.Decimal `json:"total_price"`
	FoodType   string          `json:"food_type"`
}

// GetOrder -> one order with named line items.
func (oc *ChefOrderController) GetOrder(c *gin.Context) {
	orderID, ok := paramUint(c, "order_id")
	if !ok {
		return
	}
	order, err := oc.Engine.GetOrder(orderID)
	if err != nil {
		respondLifecycleError(c, err)
		return
	}
	if order.RestaurantID != c.GetUint("restaurant_id") {
		utils.RespondError(c, http.StatusForbidden, lifecycle.ErrNotSameRestaurant)
		return
	}

	var items []orderItemView
	err = oc.DB.Model(&models.OrderItem{}).
		Select("order_items.id, order_items.menu_item_id, menu_items.name AS item_name, order_items.quantity, order_items.unit_price, order_items.total_price, order_items.food_type").
		Joins("JOIN menu_items ON menu_items.id = order_items.menu_item_id").
		Where("order_items.order_id = ?", orderID).
		Scan(&items).Error
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Order detail", gin.H{
		"order": order,
		"items": items,
	})
}

// GetOrderHistory -> the order's status chain, oldest first.
func (oc *ChefOrderController) GetOrderHistory(c *gin.Context) {
	orderID, ok := paramUint(c, "order_id")
	if !ok {
		return
	}
	order, err := oc.Engine.GetOrder(orderID)
	if err != nil {
		respondLifecycleError(c, err)
		return
	}
	if order.RestaurantID != c.GetUint("restaurant_id") {
		utils.RespondError(c, http.StatusForbidden, lifecycle.ErrNotSameRestaurant)
		return
	}

	entries, err := oc.Engine.History(orderID)
	if err != nil {
		respondLifecycleError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order history", entries)
}

func (oc *ChefOrderController) transition(c *gin.Context, target models.OrderStatus, message string) {
	orderID, ok := paramUint(c, "order_id")
	if !ok {
		return
	}
	order, err := oc.Engine.Transition(orderID, target, currentChef(c))
	if err != nil {
		respondLifecycleError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, message, order)
}

// Accept -> pending => accepted
func (oc *ChefOrderController) Accept(c *gin.Context) {
	oc.transition(c, models.OrderAccepted, "Order accepted")
}

// StartCooking -> accepted => cooking
func (oc *ChefOrderController) StartCooking(c *gin.Context) {
	oc.transition(c, models.OrderCooking, "Order cooking")
}

// MarkReady -> cooking => ready
func (oc *ChefOrderController) MarkReady(c *gin.Context) {
	oc.transition(c, models.OrderReady, "Order ready")
}

// Complete -> ready => completed
func (oc *ChefOrderController) Complete(c *gin.Context) {
	oc.transition(c, models.OrderCompleted, "Order completed")
}

// Cancel -> {pending, accepted, cooking} => canceled
func (oc *ChefOrderController) Cancel(c *gin.Context) {
	oc.transition(c, models.OrderCanceled, "Order canceled")
}

// Reject -> pending => rejected
func (oc *ChefOrderController) Reject(c *gin.Context) {
	oc.transition(c, models.OrderRejected, "Order rejected")
}

// Assign -> claim an unassigned order, no status change.
func (oc *ChefOrderController) Assign(c *gin.Context) {
	orderID, ok := paramUint(c, "order_id")
	if !ok {
		return
	}
	order, err := oc.Engine.Assign(orderID, currentChef(c))
	if err != nil {
		respondLifecycleError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order assigned", order)
}

// Unassign -> release an order the caller holds.
func (oc *ChefOrderController) Unassign(c *gin.Context) {
	orderID, ok := paramUint(c, "order_id")
	if !ok {
		return
	}
	order, err := oc.Engine.Unassign(orderID, currentChef(c))
	if err != nil {
		respondLifecycleError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order unassigned", order)
}

// UpdateNote -> set the kitchen note.
func (oc *ChefOrderController) UpdateNote(c *gin.Context) {
	orderID, ok := paramUint(c, "order_id")
	if !ok {
		return
	}
	var req struct {
		Note string `json:"note" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	order, err := oc.Engine.UpdateNote(orderID, currentChef(c), req.Note)
	if err != nil {
		respondLifecycleError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Note updated", order)
}

// UpdatePriority -> change the kitchen priority.
func (oc *ChefOrderController) UpdatePriority(c *gin.Context) {
	orderID, ok := paramUint(c, "order_id")
	if !ok {
		return
	}
	var req struct {
		Priority models.OrderPriority `json:"priority" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	switch req.Priority {
	case models.PriorityLow, models.PriorityNormal, models.PriorityHigh, models.PriorityUrgent:
	default:
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid priority"))
		return
	}
	order, err := oc.Engine.UpdatePriority(orderID, currentChef(c), req.Priority)
	if err != nil {
		respondLifecycleError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Priority updated", order)
}

// MarkDelayed -> flag the order delayed with a reason.
func (oc *ChefOrderController) MarkDelayed(c *gin.Context) {
	orderID, ok := paramUint(c, "order_id")
	if !ok {
		return
	}
	var req struct {
		Reason string `json:"reason" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	order, err := oc.Engine.MarkDelayed(orderID, currentChef(c), req.Reason)
	if err != nil {
		respondLifecycleError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order marked delayed", order)
}
