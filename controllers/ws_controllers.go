package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"gorm.io/gorm"

	"github.com/yeremiapane/kitchen-queue/hub"
	"github.com/yeremiapane/kitchen-queue/lifecycle"
	"github.com/yeremiapane/kitchen-queue/models"
	"github.com/yeremiapane/kitchen-queue/utils"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type WSController struct {
	DB  *gorm.DB
	Hub *hub.Hub
}

func NewWSController(db *gorm.DB, h *hub.Hub) *WSController {
	return &WSController{DB: db, Hub: h}
}

// OrderStream -> live updates for a single order (the customer's view).
func (wc *WSController) OrderStream(c *gin.Context) {
	orderID, ok := paramUint(c, "order_id")
	if !ok {
		return
	}
	var order models.Order
	if err := wc.DB.First(&order, orderID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, lifecycle.ErrOrderNotFound)
		return
	}

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}
	client := hub.NewClient(ws)
	wc.Hub.SubscribeOrder(orderID, client)
	defer wc.Hub.Unsubscribe(client)

	// Inbound frames are keep-alive only; a read error means the peer is gone.
	for {
		if _, _, err := ws.ReadMessage(); err != nil {
			break
		}
	}
}

// KitchenStream -> live updates for a whole restaurant (the kitchen view).
// Requires a chef token for the same restaurant.
func (wc *WSController) KitchenStream(c *gin.Context) {
	restaurantID, ok := paramUint(c, "restaurant_id")
	if !ok {
		return
	}
	if restaurantID != c.GetUint("restaurant_id") {
		utils.RespondError(c, http.StatusForbidden, lifecycle.ErrNotSameRestaurant)
		return
	}

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}
	client := hub.NewClient(ws)
	wc.Hub.SubscribeRestaurant(restaurantID, client)
	defer wc.Hub.Unsubscribe(client)

	for {
		if _, _, err := ws.ReadMessage(); err != nil {
			break
		}
	}
}
