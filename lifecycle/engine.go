package lifecycle

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/yeremiapane/kitchen-queue/models"
)

// Publisher pushes committed lifecycle events to live subscribers.
// Delivery is best effort: implementations must never block the engine
// or surface subscriber failures back to it.
type Publisher interface {
	PushNewOrder(order *models.Order)
	PushStatusUpdate(order *models.Order)
	PushOrderCanceled(order *models.Order)
	PushOrderDelayed(order *models.Order)
}

// MailSender is the asynchronous notification side channel. Implementations
// must return immediately; delivery failures never reach the caller.
type MailSender interface {
	SendAsync(to, subject, body string)
}

// Engine orchestrates every order mutation: it validates transitions,
// writes the order, its status history and the activity log in one
// transaction, and publishes events only after the commit succeeds.
type Engine struct {
	db   *gorm.DB
	pub  Publisher
	mail MailSender
}

func NewEngine(db *gorm.DB, pub Publisher, mail MailSender) *Engine {
	return &Engine{db: db, pub: pub, mail: mail}
}

// actionNames maps a target status to the audit action recorded for it.
var actionNames = map[models.OrderStatus]string{
	models.OrderAccepted:  "accept",
	models.OrderCooking:   "start_cooking",
	models.OrderReady:     "mark_ready",
	models.OrderCompleted: "complete",
	models.OrderCanceled:  "cancel",
	models.OrderRejected:  "reject",
}

// stageColumn returns the stage timestamp column set when entering a status,
// or "" when the status has none (canceled, rejected keep only history).
func stageColumn(s models.OrderStatus) string {
	switch s {
	case models.OrderAccepted:
		return "accepted_at"
	case models.OrderCooking:
		return "cooking_at"
	case models.OrderReady:
		return "ready_at"
	case models.OrderCompleted:
		return "completed_at"
	}
	return ""
}

func (e *Engine) loadOrder(orderID uint) (*models.Order, error) {
	var order models.Order
	if err := e.db.First(&order, orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return &order, nil
}

// Transition moves an order to the target status on behalf of a chef.
// The full write (order row, history entry, activity entry) commits
// atomically; the loser of a concurrent race gets ErrConflict.
func (e *Engine) Transition(orderID uint, target models.OrderStatus, chef *models.Chef) (*models.Order, error) {
	order, err := e.loadOrder(orderID)
	if err != nil {
		return nil, err
	}
	if order.RestaurantID != chef.RestaurantID {
		return nil, ErrNotSameRestaurant
	}
	if !CanTransition(order.Status, target) {
		return nil, &IllegalTransitionError{From: order.Status, To: target, Allowed: AllowedTargets(order.Status)}
	}

	now := time.Now()
	if err := e.commitTransition(order, target, &chef.ID, now); err != nil {
		return nil, err
	}

	if target == models.OrderCanceled {
		e.pub.PushOrderCanceled(order)
	} else {
		e.pub.PushStatusUpdate(order)
	}
	return order, nil
}

// commitTransition writes a validated transition. The UPDATE is guarded by
// the order's version: zero affected rows means another transition committed
// since the order was loaded and the whole transaction rolls back.
func (e *Engine) commitTransition(order *models.Order, target models.OrderStatus, chefID *uint, now time.Time) error {
	prev := order.Status

	updates := map[string]interface{}{
		"status":     target,
		"updated_at": now,
		"version":    order.Version + 1,
	}
	if chefID != nil {
		// The most recent actor to move the order takes ownership.
		updates["assigned_chef_id"] = *chefID
	}
	if col := stageColumn(target); col != "" {
		updates[col] = now
	}

	err := e.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Order{}).
			Where("id = ? AND version = ?", order.ID, order.Version).
			Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrConflict
		}

		prevCopy := prev
		if err := tx.Create(&models.OrderStatusHistory{
			OrderID:         order.ID,
			PreviousStatus:  &prevCopy,
			NewStatus:       target,
			Timestamp:       now,
			ChangedByChefID: chefID,
		}).Error; err != nil {
			return err
		}

		return RecordActivity(tx, order.RestaurantID, chefID, &order.ID, actionNames[target], nil)
	})
	if err != nil {
		return err
	}

	// Mirror the committed row in the loaded copy.
	order.Status = target
	order.UpdatedAt = now
	order.Version++
	if chefID != nil {
		order.AssignedChefID = chefID
	}
	switch target {
	case models.OrderAccepted:
		order.AcceptedAt = &now
	case models.OrderCooking:
		order.CookingAt = &now
	case models.OrderReady:
		order.ReadyAt = &now
	case models.OrderCompleted:
		order.CompletedAt = &now
	}
	return nil
}

// Assign lets a chef claim an unassigned order without a status change.
func (e *Engine) Assign(orderID uint, chef *models.Chef) (*models.Order, error) {
	order, err := e.loadOrder(orderID)
	if err != nil {
		return nil, err
	}
	if order.RestaurantID != chef.RestaurantID {
		return nil, ErrNotSameRestaurant
	}
	if order.AssignedChefID != nil && *order.AssignedChefID != chef.ID {
		return nil, ErrAlreadyAssigned
	}

	now := time.Now()
	err = e.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Order{}).
			Where("id = ? AND version = ?", order.ID, order.Version).
			Updates(map[string]interface{}{
				"assigned_chef_id": chef.ID,
				"updated_at":       now,
				"version":          order.Version + 1,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrConflict
		}
		return RecordActivity(tx, order.RestaurantID, &chef.ID, &order.ID, "assign", nil)
	})
	if err != nil {
		return nil, err
	}

	order.AssignedChefID = &chef.ID
	order.UpdatedAt = now
	order.Version++
	return order, nil
}

// Unassign releases an order currently held by the calling chef.
func (e *Engine) Unassign(orderID uint, chef *models.Chef) (*models.Order, error) {
	order, err := e.loadOrder(orderID)
	if err != nil {
		return nil, err
	}
	if order.RestaurantID != chef.RestaurantID {
		return nil, ErrNotSameRestaurant
	}
	if order.AssignedChefID == nil || *order.AssignedChefID != chef.ID {
		return nil, ErrNotAssignee
	}

	now := time.Now()
	err = e.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Order{}).
			Where("id = ? AND version = ?", order.ID, order.Version).
			Updates(map[string]interface{}{
				"assigned_chef_id": nil,
				"updated_at":       now,
				"version":          order.Version + 1,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrConflict
		}
		return RecordActivity(tx, order.RestaurantID, &chef.ID, &order.ID, "unassign", nil)
	})
	if err != nil {
		return nil, err
	}

	order.AssignedChefID = nil
	order.UpdatedAt = now
	order.Version++
	return order, nil
}

// UpdateNote sets the free-text kitchen note on an order.
func (e *Engine) UpdateNote(orderID uint, chef *models.Chef, note string) (*models.Order, error) {
	return e.updateMeta(orderID, chef, "update_note", map[string]interface{}{"chef_note": note}, func(o *models.Order) {
		o.ChefNote = &note
	}, nil)
}

// UpdatePriority changes the kitchen priority of an order.
func (e *Engine) UpdatePriority(orderID uint, chef *models.Chef, priority models.OrderPriority) (*models.Order, error) {
	details := fmt.Sprintf("priority set to %s", priority)
	return e.updateMeta(orderID, chef, "update_priority", map[string]interface{}{"priority": priority}, func(o *models.Order) {
		o.Priority = priority
	}, &details)
}

// MarkDelayed flags an order as delayed with a reason and notifies
// subscribers on both scopes.
func (e *Engine) MarkDelayed(orderID uint, chef *models.Chef, reason string) (*models.Order, error) {
	order, err := e.updateMeta(orderID, chef, "mark_delayed", map[string]interface{}{
		"is_delayed":   true,
		"delay_reason": reason,
	}, func(o *models.Order) {
		o.IsDelayed = true
		o.DelayReason = &reason
	}, &reason)
	if err != nil {
		return nil, err
	}
	e.pub.PushOrderDelayed(order)
	return order, nil
}

// updateMeta applies a non-status order edit with the same version guard and
// audit treatment as transitions. No status history is written.
func (e *Engine) updateMeta(orderID uint, chef *models.Chef, action string, updates map[string]interface{}, apply func(*models.Order), details *string) (*models.Order, error) {
	order, err := e.loadOrder(orderID)
	if err != nil {
		return nil, err
	}
	if order.RestaurantID != chef.RestaurantID {
		return nil, ErrNotSameRestaurant
	}

	now := time.Now()
	updates["updated_at"] = now
	updates["version"] = order.Version + 1

	err = e.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Order{}).
			Where("id = ? AND version = ?", order.ID, order.Version).
			Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrConflict
		}
		return RecordActivity(tx, order.RestaurantID, &chef.ID, &order.ID, action, details)
	})
	if err != nil {
		return nil, err
	}

	apply(order)
	order.UpdatedAt = now
	order.Version++
	return order, nil
}

// CancelByCustomer cancels a pending order on behalf of the customer who
// placed it. The history entry carries no chef.
func (e *Engine) CancelByCustomer(orderID uint, customerName string) (*models.Order, error) {
	order, err := e.loadOrder(orderID)
	if err != nil {
		return nil, err
	}
	if order.CustomerName == nil || *order.CustomerName != customerName {
		return nil, ErrOrderNotFound
	}
	if order.Status != models.OrderPending {
		return nil, &IllegalTransitionError{From: order.Status, To: models.OrderCanceled, Allowed: AllowedTargets(order.Status)}
	}

	if err := e.commitTransition(order, models.OrderCanceled, nil, time.Now()); err != nil {
		return nil, err
	}
	e.pub.PushOrderCanceled(order)
	return order, nil
}

// GetOrder loads one order with its line items.
func (e *Engine) GetOrder(orderID uint) (*models.Order, error) {
	var order models.Order
	if err := e.db.Preload("Items").First(&order, orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return &order, nil
}

// priorityOrder works on mysql and sqlite alike; enum column order is not
// portable across the two.
const priorityOrder = "CASE priority WHEN 'urgent' THEN 0 WHEN 'high' THEN 1 WHEN 'normal' THEN 2 ELSE 3 END"

// ListKitchenOrders returns a restaurant's orders for the kitchen view,
// urgent first, oldest first within the same priority.
func (e *Engine) ListKitchenOrders(restaurantID uint, status *models.OrderStatus) ([]models.Order, error) {
	q := e.db.Preload("Items").Where("restaurant_id = ?", restaurantID)
	if status != nil {
		q = q.Where("status = ?", *status)
	}
	var orders []models.Order
	if err := q.Order(priorityOrder).Order("created_at asc").Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// ListCustomerOrders returns the orders placed under a customer name,
// newest first.
func (e *Engine) ListCustomerOrders(customerName string) ([]models.Order, error) {
	var orders []models.Order
	err := e.db.Preload("Items").
		Where("customer_name = ?", customerName).
		Order("created_at desc").
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

// History returns the status chain of an order, oldest first.
func (e *Engine) History(orderID uint) ([]models.OrderStatusHistory, error) {
	var entries []models.OrderStatusHistory
	err := e.db.Where("order_id = ?", orderID).
		Order("timestamp asc").Order("id asc").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}
