package hub

import (
	"sync"

	"github.com/google/uuid"

	"github.com/yeremiapane/kitchen-queue/utils"
)

// Conn is the minimal connection surface the hub needs.
// *websocket.Conn satisfies it.
type Conn interface {
	WriteJSON(v interface{}) error
	Close() error
}

// Client is one live subscriber connection. The write mutex serializes
// writes because gorilla allows at most one concurrent writer per conn.
type Client struct {
	ID   string
	conn Conn
	mu   sync.Mutex
}

func NewClient(conn Conn) *Client {
	return &Client{ID: uuid.NewString(), conn: conn}
}

func (c *Client) send(v interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(v)
}

// Hub keeps two independent subscriber registries: one keyed by order id
// (a customer watching their own order) and one keyed by restaurant id
// (the kitchen-wide view). A single mutex covers both; registrations and
// delivery fan-outs never interleave. Nothing here is persisted and no
// message is queued or replayed: subscribers only see events published
// while they are registered.
type Hub struct {
	mu                sync.Mutex
	orderClients      map[uint]map[*Client]bool
	restaurantClients map[uint]map[*Client]bool
}

func New() *Hub {
	return &Hub{
		orderClients:      make(map[uint]map[*Client]bool),
		restaurantClients: make(map[uint]map[*Client]bool),
	}
}

// SubscribeOrder registers a client for one order's updates.
func (h *Hub) SubscribeOrder(orderID uint, c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.orderClients[orderID] == nil {
		h.orderClients[orderID] = make(map[*Client]bool)
	}
	h.orderClients[orderID][c] = true
}

// SubscribeRestaurant registers a client for a restaurant's kitchen feed.
func (h *Hub) SubscribeRestaurant(restaurantID uint, c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.restaurantClients[restaurantID] == nil {
		h.restaurantClients[restaurantID] = make(map[*Client]bool)
	}
	h.restaurantClients[restaurantID][c] = true
}

// Unsubscribe removes a client from every registry and closes its
// connection. Safe to call more than once.
func (h *Hub) Unsubscribe(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	removeClient(h.orderClients, c)
	removeClient(h.restaurantClients, c)
	c.conn.Close()
}

func removeClient(registry map[uint]map[*Client]bool, c *Client) {
	for key, clients := range registry {
		if clients[c] {
			delete(clients, c)
			if len(clients) == 0 {
				delete(registry, key)
			}
		}
	}
}

// BroadcastToOrder delivers a message to every live subscriber of one order.
func (h *Hub) BroadcastToOrder(orderID uint, msg Message) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.deliver(h.orderClients, orderID, msg)
}

// BroadcastToRestaurant delivers a message to a restaurant's kitchen feed.
func (h *Hub) BroadcastToRestaurant(restaurantID uint, msg Message) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.deliver(h.restaurantClients, restaurantID, msg)
}

// deliver writes to each registered client under the hub lock. A failed
// write prunes that client and moves on; publishers never see the error.
func (h *Hub) deliver(registry map[uint]map[*Client]bool, key uint, msg Message) {
	for c := range registry[key] {
		if err := c.send(msg); err != nil {
			utils.ErrorLogger.Printf("hub: dropping client %s after write error: %v", c.ID, err)
			delete(registry[key], c)
			c.conn.Close()
		}
	}
	if len(registry[key]) == 0 {
		delete(registry, key)
	}
}

// CountOrderSubscribers reports live subscribers for one order (mainly for
// tests and debugging endpoints).
func (h *Hub) CountOrderSubscribers(orderID uint) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.orderClients[orderID])
}

// CountRestaurantSubscribers reports live subscribers for one restaurant.
func (h *Hub) CountRestaurantSubscribers(restaurantID uint) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.restaurantClients[restaurantID])
}
