package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yeremiapane/kitchen-queue/lifecycle"
	"github.com/yeremiapane/kitchen-queue/models"
	"github.com/yeremiapane/kitchen-queue/utils"
)

type CustomerOrderController struct {
	DB     *gorm.DB
	Engine *lifecycle.Engine
}

func NewCustomerOrderController(db *gorm.DB, engine *lifecycle.Engine) *CustomerOrderController {
	return &CustomerOrderController{DB: db, Engine: engine}
}

type placeOrderRequest struct {
	RestaurantID  uint                `json:"restaurant_id" binding:"required"`
	CustomerName  *string             `json:"customer_name,omitempty"`
	CustomerEmail *string             `json:"customer_email,omitempty"`
	Mode          models.OrderMode    `json:"mode" binding:"required"`
	TableNumber   *int                `json:"table_number,omitempty"`
	Items         []lifecycle.ItemRef `json:"items" binding:"required"`
}

// PlaceOrder -> create an order with frozen price snapshots.
func (oc *CustomerOrderController) PlaceOrder(c *gin.Context) {
	var req placeOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	switch req.Mode {
	case models.ModeDineIn, models.ModeDelivery, models.ModePickup:
	default:
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid order mode"))
		return
	}
	if req.TableNumber != nil && *req.TableNumber < 1 {
		utils.RespondError(c, http.StatusBadRequest, errors.New("table number must be positive"))
		return
	}

	order, err := oc.Engine.PlaceOrder(lifecycle.PlaceOrderInput{
		RestaurantID:  req.RestaurantID,
		CustomerName:  req.CustomerName,
		CustomerEmail: req.CustomerEmail,
		Mode:          req.Mode,
		TableNumber:   req.TableNumber,
		Items:         req.Items,
	})
	if err != nil {
		respondLifecycleError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Order placed", order)
}

// ListMyOrders -> orders placed under ?customer_name=, newest first.
func (oc *CustomerOrderController) ListMyOrders(c *gin.Context) {
	name := c.Query("customer_name")
	if name == "" {
		utils.RespondError(c, http.StatusBadRequest, errors.New("customer_name is required"))
		return
	}
	orders, err := oc.Engine.ListCustomerOrders(name)
	if err != nil {
		respondLifecycleError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "My orders", orders)
}

func (oc *CustomerOrderController) loadOwnOrder(c *gin.Context) (*models.Order, bool) {
	orderID, ok := paramUint(c, "order_id")
	if !ok {
		return nil, false
	}
	name := c.Query("customer_name")
	order, err := oc.Engine.GetOrder(orderID)
	if err != nil {
		respondLifecycleError(c, err)
		return nil, false
	}
	if name == "" || order.CustomerName == nil || *order.CustomerName != name {
		utils.RespondError(c, http.StatusNotFound, lifecycle.ErrOrderNotFound)
		return nil, false
	}
	return order, true
}

// GetOrder -> a customer's own order with items.
func (oc *CustomerOrderController) GetOrder(c *gin.Context) {
	order, ok := oc.loadOwnOrder(c)
	if !ok {
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order detail", order)
}

// GetOrderStatus -> status only, for lightweight polling.
func (oc *CustomerOrderController) GetOrderStatus(c *gin.Context) {
	order, ok := oc.loadOwnOrder(c)
	if !ok {
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order status", gin.H{
		"order_id": order.ID,
		"status":   order.Status,
	})
}

// CancelOrder -> cancel an own order while it is still pending.
func (oc *CustomerOrderController) CancelOrder(c *gin.Context) {
	orderID, ok := paramUint(c, "order_id")
	if !ok {
		return
	}
	var req struct {
		CustomerName string `json:"customer_name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	order, err := oc.Engine.CancelByCustomer(orderID, req.CustomerName)
	if err != nil {
		respondLifecycleError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order canceled", order)
}
