package hub

import "github.com/yeremiapane/kitchen-queue/models"

// Event names
const (
	EventNewOrder      = "new_order"
	EventStatusUpdate  = "order_status_update"
	EventOrderCanceled = "order_canceled"
	EventOrderDelayed  = "order_delayed"
)

// Message is the wire envelope pushed to subscribers.
type Message struct {
	Event        string `json:"event"`
	OrderID      uint   `json:"order_id"`
	RestaurantID uint   `json:"restaurant_id,omitempty"`
	Status       string `json:"status,omitempty"`
	Reason       string `json:"reason,omitempty"`
}

// Publisher translates committed lifecycle transitions into hub messages.
// It never mutates state; it implements lifecycle.Publisher.
type Publisher struct {
	hub *Hub
}

func NewPublisher(h *Hub) *Publisher {
	return &Publisher{hub: h}
}

// PushNewOrder announces a freshly placed order to the kitchen feed.
func (p *Publisher) PushNewOrder(order *models.Order) {
	p.hub.BroadcastToRestaurant(order.RestaurantID, Message{
		Event:        EventNewOrder,
		OrderID:      order.ID,
		RestaurantID: order.RestaurantID,
		Status:       string(order.Status),
	})
}

// PushStatusUpdate announces a status change on both scopes.
func (p *Publisher) PushStatusUpdate(order *models.Order) {
	msg := Message{
		Event:   EventStatusUpdate,
		OrderID: order.ID,
		Status:  string(order.Status),
	}
	p.hub.BroadcastToOrder(order.ID, msg)
	p.hub.BroadcastToRestaurant(order.RestaurantID, msg)
}

// PushOrderCanceled announces a cancellation on both scopes.
func (p *Publisher) PushOrderCanceled(order *models.Order) {
	msg := Message{
		Event:   EventOrderCanceled,
		OrderID: order.ID,
	}
	p.hub.BroadcastToOrder(order.ID, msg)
	p.hub.BroadcastToRestaurant(order.RestaurantID, msg)
}

// PushOrderDelayed announces a delay with its reason on both scopes.
func (p *Publisher) PushOrderDelayed(order *models.Order) {
	msg := Message{
		Event:   EventOrderDelayed,
		OrderID: order.ID,
	}
	if order.DelayReason != nil {
		msg.Reason = *order.DelayReason
	}
	p.hub.BroadcastToOrder(order.ID, msg)
	p.hub.BroadcastToRestaurant(order.RestaurantID, msg)
}
