package lifecycle

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/yeremiapane/kitchen-queue/models"
)

// ItemRef is a tagged reference to a menu item: by numeric id or by name.
// When both are present the id wins.
type ItemRef struct {
	ID       *uint   `json:"item_id,omitempty"`
	Name     *string `json:"name,omitempty"`
	Quantity int     `json:"quantity"`
}

func (r ItemRef) describe() string {
	switch {
	case r.ID != nil:
		return fmt.Sprintf("#%d", *r.ID)
	case r.Name != nil:
		return fmt.Sprintf("%q", *r.Name)
	}
	return "(missing reference)"
}

// PlaceOrderInput carries everything needed to create an order.
type PlaceOrderInput struct {
	RestaurantID  uint
	CustomerName  *string
	CustomerEmail *string
	Mode          models.OrderMode
	TableNumber   *int
	Items         []ItemRef
}

// PlaceOrder creates an order with frozen price snapshots. The order, its
// items and the initial history entry commit atomically; the new-order event
// and the notification emails go out only after the commit.
func (e *Engine) PlaceOrder(in PlaceOrderInput) (*models.Order, error) {
	var restaurant models.Restaurant
	if err := e.db.First(&restaurant, in.RestaurantID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRestaurantNotFound
		}
		return nil, err
	}

	if len(in.Items) == 0 {
		return nil, ErrEmptyOrder
	}

	var settings models.RestaurantSettings
	hasSettings := e.db.Where("restaurant_id = ?", in.RestaurantID).First(&settings).Error == nil

	if hasSettings && settings.MaxActiveOrders > 0 {
		var active int64
		e.db.Model(&models.Order{}).
			Where("restaurant_id = ? AND status IN ?", in.RestaurantID, []models.OrderStatus{
				models.OrderPending, models.OrderAccepted, models.OrderCooking, models.OrderReady,
			}).
			Count(&active)
		if active >= int64(settings.MaxActiveOrders) {
			return nil, ErrRestaurantBusy
		}
	}

	now := time.Now()
	total := decimal.Zero
	items := make([]models.OrderItem, 0, len(in.Items))
	for _, ref := range in.Items {
		if ref.Quantity <= 0 {
			return nil, &InvalidQuantityError{Ref: ref.describe(), Quantity: ref.Quantity}
		}
		menu, err := e.resolveMenuItem(in.RestaurantID, ref)
		if err != nil {
			return nil, err
		}
		lineTotal := menu.Price.Mul(decimal.NewFromInt(int64(ref.Quantity)))
		total = total.Add(lineTotal)
		items = append(items, models.OrderItem{
			MenuItemID: menu.ID,
			Quantity:   ref.Quantity,
			UnitPrice:  menu.Price,
			TotalPrice: lineTotal,
			FoodType:   menu.FoodType,
			CreatedAt:  now,
		})
	}

	order := models.Order{
		RestaurantID: in.RestaurantID,
		CustomerName: in.CustomerName,
		Mode:         in.Mode,
		TableNumber:  in.TableNumber,
		Status:       models.OrderPending,
		Priority:     models.PriorityNormal,
		TotalAmount:  total,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err := e.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&order).Error; err != nil {
			return err
		}
		for i := range items {
			items[i].OrderID = order.ID
		}
		if err := tx.Create(&items).Error; err != nil {
			return err
		}
		return tx.Create(&models.OrderStatusHistory{
			OrderID:   order.ID,
			NewStatus: models.OrderPending,
			Timestamp: now,
		}).Error
	})
	if err != nil {
		return nil, err
	}
	order.Items = items

	e.pub.PushNewOrder(&order)

	if hasSettings && settings.AutoAcceptOrders {
		// Auto-accept is a separate committed transition with no acting chef.
		// The order is already placed, so a failure here only skips the hop.
		if err := e.commitTransition(&order, models.OrderAccepted, nil, time.Now()); err == nil {
			e.pub.PushStatusUpdate(&order)
		}
	}

	e.sendPlacementMail(&restaurant, &order, in.CustomerEmail)
	return &order, nil
}

// resolveMenuItem resolves a tagged item reference scoped to the restaurant
// through the item's category. ID resolution takes priority over name.
func (e *Engine) resolveMenuItem(restaurantID uint, ref ItemRef) (*models.MenuItem, error) {
	q := e.db.Model(&models.MenuItem{}).
		Joins("JOIN menu_categories ON menu_categories.id = menu_items.category_id").
		Where("menu_categories.restaurant_id = ?", restaurantID).
		Where("menu_items.is_available = ?", true)

	switch {
	case ref.ID != nil:
		q = q.Where("menu_items.id = ?", *ref.ID)
	case ref.Name != nil:
		q = q.Where("LOWER(menu_items.name) = LOWER(?)", *ref.Name)
	default:
		return nil, &ItemNotFoundError{Ref: ref.describe()}
	}

	var item models.MenuItem
	if err := q.First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &ItemNotFoundError{Ref: ref.describe()}
		}
		return nil, err
	}
	return &item, nil
}

// sendPlacementMail hands the confirmation emails to the async side channel.
// Failures there never reach the placement path.
func (e *Engine) sendPlacementMail(restaurant *models.Restaurant, order *models.Order, customerEmail *string) {
	if e.mail == nil {
		return
	}

	name := "customer"
	if order.CustomerName != nil {
		name = *order.CustomerName
	}

	if customerEmail != nil && *customerEmail != "" {
		body := fmt.Sprintf(
			"Hello %s,\r\n\r\nYour order #%d has been placed successfully.\r\nTotal amount: %s\r\n\r\nThank you for ordering with us.",
			name, order.ID, order.TotalAmount.StringFixed(2),
		)
		e.mail.SendAsync(*customerEmail, fmt.Sprintf("Order #%d placed", order.ID), body)
	}

	var owner models.User
	if err := e.db.First(&owner, restaurant.OwnerID).Error; err == nil && owner.Email != "" {
		body := fmt.Sprintf(
			"Hello %s,\r\n\r\nYou have received a new order.\r\nOrder ID: %d\r\nCustomer: %s\r\nTotal amount: %s",
			owner.Name, order.ID, name, order.TotalAmount.StringFixed(2),
		)
		e.mail.SendAsync(owner.Email, "New order received", body)
	}
}
