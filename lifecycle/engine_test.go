package lifecycle

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/yeremiapane/kitchen-queue/models"
)

type publishedEvent struct {
	Name    string
	OrderID uint
	Status  models.OrderStatus
	Reason  string
}

type fakePublisher struct {
	mu     sync.Mutex
	events []publishedEvent
}

func (p *fakePublisher) record(name string, o *models.Order, reason string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedEvent{Name: name, OrderID: o.ID, Status: o.Status, Reason: reason})
}

func (p *fakePublisher) PushNewOrder(o *models.Order)      { p.record("new_order", o, "") }
func (p *fakePublisher) PushStatusUpdate(o *models.Order)  { p.record("order_status_update", o, "") }
func (p *fakePublisher) PushOrderCanceled(o *models.Order) { p.record("order_canceled", o, "") }
func (p *fakePublisher) PushOrderDelayed(o *models.Order) {
	reason := ""
	if o.DelayReason != nil {
		reason = *o.DelayReason
	}
	p.record("order_delayed", o, reason)
}

func (p *fakePublisher) all() []publishedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]publishedEvent, len(p.events))
	copy(out, p.events)
	return out
}

type sentMail struct {
	To      string
	Subject string
}

type fakeMailer struct {
	mu    sync.Mutex
	mails []sentMail
}

func (m *fakeMailer) SendAsync(to, subject, body string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mails = append(m.mails, sentMail{To: to, Subject: subject})
}

func (m *fakeMailer) all() []sentMail {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]sentMail, len(m.mails))
	copy(out, m.mails)
	return out
}

type fixture struct {
	db         *gorm.DB
	engine     *Engine
	pub        *fakePublisher
	mail       *fakeMailer
	restaurant models.Restaurant
	other      models.Restaurant
	chefA      models.Chef
	chefB      models.Chef
	outsider   models.Chef
	biryani    models.MenuItem
	paneer     models.MenuItem
}

func newFixture(t *testing.T, name string) *fixture {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.User{},
		&models.Restaurant{},
		&models.RestaurantSettings{},
		&models.Chef{},
		&models.MenuCategory{},
		&models.MenuItem{},
		&models.Order{},
		&models.OrderItem{},
		&models.OrderStatusHistory{},
		&models.ChefActivityLog{},
	)
	require.NoError(t, err)

	f := &fixture{db: db, pub: &fakePublisher{}, mail: &fakeMailer{}}
	f.engine = NewEngine(db, f.pub, f.mail)

	owner := models.User{Name: "Owner", Email: name + "-owner@example.com", Password: "x", Role: "owner"}
	require.NoError(t, db.Create(&owner).Error)

	f.restaurant = models.Restaurant{Name: "Spice Route", Address: "12 Main St", IsOpen: true, OwnerID: owner.ID}
	require.NoError(t, db.Create(&f.restaurant).Error)
	f.other = models.Restaurant{Name: "Other Place", Address: "99 Side St", IsOpen: true, OwnerID: owner.ID}
	require.NoError(t, db.Create(&f.other).Error)

	f.chefA = models.Chef{RestaurantID: f.restaurant.ID, Name: "Asha", PhoneNumber: name + "-111", Password: "x", Status: "active"}
	f.chefB = models.Chef{RestaurantID: f.restaurant.ID, Name: "Bala", PhoneNumber: name + "-222", Password: "x", Status: "active"}
	f.outsider = models.Chef{RestaurantID: f.other.ID, Name: "Omar", PhoneNumber: name + "-333", Password: "x", Status: "active"}
	require.NoError(t, db.Create(&f.chefA).Error)
	require.NoError(t, db.Create(&f.chefB).Error)
	require.NoError(t, db.Create(&f.outsider).Error)

	category := models.MenuCategory{RestaurantID: f.restaurant.ID, CategoryNumber: 1, Name: "Mains"}
	require.NoError(t, db.Create(&category).Error)

	f.biryani = models.MenuItem{
		CategoryID: category.ID, Name: "Chicken Biryani",
		Price: decimal.RequireFromString("24.00"), FoodType: "nonveg", IsAvailable: true,
	}
	f.paneer = models.MenuItem{
		CategoryID: category.ID, Name: "Paneer Tikka",
		Price: decimal.RequireFromString("10.50"), FoodType: "veg", IsAvailable: true,
	}
	require.NoError(t, db.Create(&f.biryani).Error)
	require.NoError(t, db.Create(&f.paneer).Error)

	return f
}

func strPtr(s string) *string { return &s }
func uintPtr(v uint) *uint    { return &v }

func (f *fixture) placeOrder(t *testing.T) *models.Order {
	t.Helper()
	order, err := f.engine.PlaceOrder(PlaceOrderInput{
		RestaurantID: f.restaurant.ID,
		CustomerName: strPtr("dana"),
		Mode:         models.ModeDineIn,
		Items:        []ItemRef{{ID: uintPtr(f.biryani.ID), Quantity: 2}},
	})
	require.NoError(t, err)
	return order
}

func TestPlaceOrder(t *testing.T) {
	f := newFixture(t, "place")

	order, err := f.engine.PlaceOrder(PlaceOrderInput{
		RestaurantID:  f.restaurant.ID,
		CustomerName:  strPtr("dana"),
		CustomerEmail: strPtr("dana@example.com"),
		Mode:          models.ModeDineIn,
		TableNumber:   intPtr(4),
		Items: []ItemRef{
			{ID: uintPtr(f.biryani.ID), Quantity: 2},
			{Name: strPtr("paneer tikka"), Quantity: 1}, // case-insensitive name match
		},
	})
	require.NoError(t, err)

	assert.Equal(t, models.OrderPending, order.Status)
	assert.Equal(t, models.PriorityNormal, order.Priority)
	assert.True(t, order.TotalAmount.Equal(decimal.RequireFromString("58.50")),
		"got total %s", order.TotalAmount)
	require.Len(t, order.Items, 2)
	assert.Equal(t, f.biryani.ID, order.Items[0].MenuItemID)
	assert.True(t, order.Items[0].TotalPrice.Equal(decimal.RequireFromString("48.00")))
	assert.Equal(t, "veg", order.Items[1].FoodType)

	history, err := f.engine.History(order.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Nil(t, history[0].PreviousStatus)
	assert.Equal(t, models.OrderPending, history[0].NewStatus)
	assert.Nil(t, history[0].ChangedByChefID)

	events := f.pub.all()
	require.Len(t, events, 1)
	assert.Equal(t, "new_order", events[0].Name)
	assert.Equal(t, order.ID, events[0].OrderID)

	// Customer confirmation plus owner notification.
	mails := f.mail.all()
	require.Len(t, mails, 2)
	assert.Equal(t, "dana@example.com", mails[0].To)
}

func intPtr(v int) *int { return &v }

func TestPlaceOrderValidation(t *testing.T) {
	f := newFixture(t, "placevalidation")

	_, err := f.engine.PlaceOrder(PlaceOrderInput{RestaurantID: 9999, Mode: models.ModePickup,
		Items: []ItemRef{{ID: uintPtr(f.biryani.ID), Quantity: 1}}})
	assert.ErrorIs(t, err, ErrRestaurantNotFound)

	_, err = f.engine.PlaceOrder(PlaceOrderInput{RestaurantID: f.restaurant.ID, Mode: models.ModePickup})
	assert.ErrorIs(t, err, ErrEmptyOrder)

	_, err = f.engine.PlaceOrder(PlaceOrderInput{RestaurantID: f.restaurant.ID, Mode: models.ModePickup,
		Items: []ItemRef{{ID: uintPtr(f.biryani.ID), Quantity: 0}}})
	var qtyErr *InvalidQuantityError
	assert.ErrorAs(t, err, &qtyErr)

	_, err = f.engine.PlaceOrder(PlaceOrderInput{RestaurantID: f.restaurant.ID, Mode: models.ModePickup,
		Items: []ItemRef{{ID: uintPtr(8888), Quantity: 1}}})
	var notFound *ItemNotFoundError
	assert.ErrorAs(t, err, &notFound)

	// Item from another restaurant's menu is invisible here.
	_, err = f.engine.PlaceOrder(PlaceOrderInput{RestaurantID: f.other.ID, Mode: models.ModePickup,
		Items: []ItemRef{{Name: strPtr("Chicken Biryani"), Quantity: 1}}})
	assert.ErrorAs(t, err, &notFound)

	// A failed placement writes nothing.
	var count int64
	f.db.Model(&models.Order{}).Count(&count)
	assert.Zero(t, count)
}

func TestItemResolutionPrefersID(t *testing.T) {
	f := newFixture(t, "resolution")

	order, err := f.engine.PlaceOrder(PlaceOrderInput{
		RestaurantID: f.restaurant.ID,
		CustomerName: strPtr("dana"),
		Mode:         models.ModePickup,
		Items:        []ItemRef{{ID: uintPtr(f.biryani.ID), Name: strPtr("Paneer Tikka"), Quantity: 1}},
	})
	require.NoError(t, err)
	require.Len(t, order.Items, 1)
	assert.Equal(t, f.biryani.ID, order.Items[0].MenuItemID)
	assert.True(t, order.Items[0].UnitPrice.Equal(f.biryani.Price))
}

func TestPriceSnapshotSurvivesMenuEdit(t *testing.T) {
	f := newFixture(t, "snapshot")
	order := f.placeOrder(t)
	placedTotal := order.TotalAmount

	err := f.db.Model(&models.MenuItem{}).Where("id = ?", f.biryani.ID).
		Update("price", decimal.RequireFromString("99.00")).Error
	require.NoError(t, err)

	reloaded, err := f.engine.GetOrder(order.ID)
	require.NoError(t, err)
	assert.True(t, reloaded.TotalAmount.Equal(placedTotal))
	require.Len(t, reloaded.Items, 1)
	assert.True(t, reloaded.Items[0].UnitPrice.Equal(decimal.RequireFromString("24.00")))
}

func TestFullLifecycle(t *testing.T) {
	f := newFixture(t, "lifecycle")
	order := f.placeOrder(t)

	steps := []models.OrderStatus{
		models.OrderAccepted,
		models.OrderCooking,
		models.OrderReady,
		models.OrderCompleted,
	}
	for _, target := range steps {
		updated, err := f.engine.Transition(order.ID, target, &f.chefA)
		require.NoError(t, err, "transition to %s", target)
		assert.Equal(t, target, updated.Status)
	}

	final, err := f.engine.GetOrder(order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderCompleted, final.Status)
	assert.NotNil(t, final.AcceptedAt)
	assert.NotNil(t, final.CookingAt)
	assert.NotNil(t, final.ReadyAt)
	assert.NotNil(t, final.CompletedAt)
	require.NotNil(t, final.AssignedChefID)
	assert.Equal(t, f.chefA.ID, *final.AssignedChefID)

	// Unbroken history chain: placement entry plus one per transition.
	history, err := f.engine.History(order.ID)
	require.NoError(t, err)
	require.Len(t, history, 5)
	assert.Nil(t, history[0].PreviousStatus)
	for i := 1; i < len(history); i++ {
		require.NotNil(t, history[i].PreviousStatus)
		assert.Equal(t, history[i-1].NewStatus, *history[i].PreviousStatus)
	}
	assert.Equal(t, models.OrderCompleted, history[4].NewStatus)

	logs, err := f.engine.ActivityForOrder(order.ID)
	require.NoError(t, err)
	require.Len(t, logs, 4)
	assert.Equal(t, "complete", logs[0].Action) // newest first
	assert.Equal(t, "accept", logs[3].Action)

	events := f.pub.all()
	require.Len(t, events, 5)
	assert.Equal(t, "new_order", events[0].Name)
	for _, ev := range events[1:] {
		assert.Equal(t, "order_status_update", ev.Name)
	}
}

func TestIllegalTransitions(t *testing.T) {
	f := newFixture(t, "illegal")
	order := f.placeOrder(t)

	_, err := f.engine.Transition(order.ID, models.OrderReady, &f.chefA)
	var illegal *IllegalTransitionError
	require.ErrorAs(t, err, &illegal)
	assert.Equal(t, models.OrderPending, illegal.From)
	assert.Len(t, illegal.Allowed, 3)

	_, err = f.engine.Transition(order.ID, models.OrderRejected, &f.chefA)
	require.NoError(t, err)

	// Terminal: nothing leaves rejected.
	_, err = f.engine.Transition(order.ID, models.OrderAccepted, &f.chefA)
	require.ErrorAs(t, err, &illegal)
	assert.Empty(t, illegal.Allowed)
	assert.Contains(t, illegal.Error(), "terminal")

	// The failed attempts left no history behind.
	history, err := f.engine.History(order.ID)
	require.NoError(t, err)
	assert.Len(t, history, 2)
}

func TestChefCancelMidFlight(t *testing.T) {
	f := newFixture(t, "chefcancel")
	order := f.placeOrder(t)

	_, err := f.engine.Transition(order.ID, models.OrderAccepted, &f.chefA)
	require.NoError(t, err)
	_, err = f.engine.Transition(order.ID, models.OrderCooking, &f.chefA)
	require.NoError(t, err)

	updated, err := f.engine.Transition(order.ID, models.OrderCanceled, &f.chefA)
	require.NoError(t, err)
	assert.Equal(t, models.OrderCanceled, updated.Status)

	events := f.pub.all()
	assert.Equal(t, "order_canceled", events[len(events)-1].Name)

	// Ready orders can no longer be canceled.
	other := f.placeOrder(t)
	for _, target := range []models.OrderStatus{models.OrderAccepted, models.OrderCooking, models.OrderReady} {
		_, err = f.engine.Transition(other.ID, target, &f.chefA)
		require.NoError(t, err)
	}
	_, err = f.engine.Transition(other.ID, models.OrderCanceled, &f.chefA)
	var illegal *IllegalTransitionError
	assert.ErrorAs(t, err, &illegal)
}

func TestTransitionWrongRestaurant(t *testing.T) {
	f := newFixture(t, "wrongrestaurant")
	order := f.placeOrder(t)

	_, err := f.engine.Transition(order.ID, models.OrderAccepted, &f.outsider)
	assert.ErrorIs(t, err, ErrNotSameRestaurant)

	_, err = f.engine.Assign(order.ID, &f.outsider)
	assert.ErrorIs(t, err, ErrNotSameRestaurant)

	_, err = f.engine.UpdateNote(order.ID, &f.outsider, "hands off")
	assert.ErrorIs(t, err, ErrNotSameRestaurant)
}

func TestTransitionMissingOrder(t *testing.T) {
	f := newFixture(t, "missingorder")
	_, err := f.engine.Transition(12345, models.OrderAccepted, &f.chefA)
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestStaleVersionConflict(t *testing.T) {
	f := newFixture(t, "conflict")
	order := f.placeOrder(t)

	stale, err := f.engine.loadOrder(order.ID)
	require.NoError(t, err)

	_, err = f.engine.Transition(order.ID, models.OrderAccepted, &f.chefA)
	require.NoError(t, err)

	// A commit against the pre-transition version loses the race.
	err = f.engine.commitTransition(stale, models.OrderRejected, &f.chefB.ID, time.Now())
	assert.ErrorIs(t, err, ErrConflict)

	reloaded, err := f.engine.GetOrder(order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderAccepted, reloaded.Status)

	history, err := f.engine.History(order.ID)
	require.NoError(t, err)
	assert.Len(t, history, 2)
}

func TestAssignAndUnassign(t *testing.T) {
	f := newFixture(t, "assign")
	order := f.placeOrder(t)

	assigned, err := f.engine.Assign(order.ID, &f.chefA)
	require.NoError(t, err)
	require.NotNil(t, assigned.AssignedChefID)
	assert.Equal(t, f.chefA.ID, *assigned.AssignedChefID)

	// Re-assigning to the same chef is a no-op, a different chef is refused.
	_, err = f.engine.Assign(order.ID, &f.chefA)
	require.NoError(t, err)
	_, err = f.engine.Assign(order.ID, &f.chefB)
	assert.ErrorIs(t, err, ErrAlreadyAssigned)

	_, err = f.engine.Unassign(order.ID, &f.chefB)
	assert.ErrorIs(t, err, ErrNotAssignee)

	released, err := f.engine.Unassign(order.ID, &f.chefA)
	require.NoError(t, err)
	assert.Nil(t, released.AssignedChefID)

	_, err = f.engine.Unassign(order.ID, &f.chefA)
	assert.ErrorIs(t, err, ErrNotAssignee)

	// Assignment is auditable but not part of the status chain.
	history, err := f.engine.History(order.ID)
	require.NoError(t, err)
	assert.Len(t, history, 1)
	logs, err := f.engine.ActivityForOrder(order.ID)
	require.NoError(t, err)
	assert.Len(t, logs, 3)
}

func TestCancelByCustomer(t *testing.T) {
	f := newFixture(t, "customercancel")
	order := f.placeOrder(t)

	_, err := f.engine.CancelByCustomer(order.ID, "someone else")
	assert.ErrorIs(t, err, ErrOrderNotFound)

	canceled, err := f.engine.CancelByCustomer(order.ID, "dana")
	require.NoError(t, err)
	assert.Equal(t, models.OrderCanceled, canceled.Status)

	history, err := f.engine.History(order.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Nil(t, history[1].ChangedByChefID)

	// Once the kitchen has the order, the customer can no longer pull it.
	second := f.placeOrder(t)
	_, err = f.engine.Transition(second.ID, models.OrderAccepted, &f.chefA)
	require.NoError(t, err)
	_, err = f.engine.CancelByCustomer(second.ID, "dana")
	var illegal *IllegalTransitionError
	assert.ErrorAs(t, err, &illegal)
}

func TestMetaUpdates(t *testing.T) {
	f := newFixture(t, "meta")
	order := f.placeOrder(t)

	updated, err := f.engine.UpdateNote(order.ID, &f.chefA, "extra spicy")
	require.NoError(t, err)
	require.NotNil(t, updated.ChefNote)
	assert.Equal(t, "extra spicy", *updated.ChefNote)

	updated, err = f.engine.UpdatePriority(order.ID, &f.chefA, models.PriorityUrgent)
	require.NoError(t, err)
	assert.Equal(t, models.PriorityUrgent, updated.Priority)

	updated, err = f.engine.MarkDelayed(order.ID, &f.chefA, "waiting on supplies")
	require.NoError(t, err)
	assert.True(t, updated.IsDelayed)
	require.NotNil(t, updated.DelayReason)

	events := f.pub.all()
	last := events[len(events)-1]
	assert.Equal(t, "order_delayed", last.Name)
	assert.Equal(t, "waiting on supplies", last.Reason)

	logs, err := f.engine.ActivityForOrder(order.ID)
	require.NoError(t, err)
	require.Len(t, logs, 3)
	assert.Equal(t, "mark_delayed", logs[0].Action)
	assert.Equal(t, "update_priority", logs[1].Action)
	assert.Equal(t, "update_note", logs[2].Action)

	// Meta edits never touch the status chain.
	history, err := f.engine.History(order.ID)
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestListKitchenOrders(t *testing.T) {
	f := newFixture(t, "kitchenlist")
	first := f.placeOrder(t)
	second := f.placeOrder(t)

	_, err := f.engine.UpdatePriority(second.ID, &f.chefA, models.PriorityUrgent)
	require.NoError(t, err)

	orders, err := f.engine.ListKitchenOrders(f.restaurant.ID, nil)
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, second.ID, orders[0].ID, "urgent order sorts first")
	assert.Equal(t, first.ID, orders[1].ID)

	_, err = f.engine.Transition(first.ID, models.OrderAccepted, &f.chefA)
	require.NoError(t, err)

	pending := models.OrderPending
	filtered, err := f.engine.ListKitchenOrders(f.restaurant.ID, &pending)
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, second.ID, filtered[0].ID)

	none, err := f.engine.ListKitchenOrders(f.other.ID, nil)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestListCustomerOrders(t *testing.T) {
	f := newFixture(t, "customerlist")
	f.placeOrder(t)
	f.placeOrder(t)

	orders, err := f.engine.ListCustomerOrders("dana")
	require.NoError(t, err)
	assert.Len(t, orders, 2)

	orders, err = f.engine.ListCustomerOrders("nobody")
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestUnavailableItemNotOrderable(t *testing.T) {
	f := newFixture(t, "unavailable")

	err := f.db.Model(&models.MenuItem{}).Where("id = ?", f.biryani.ID).
		Update("is_available", false).Error
	require.NoError(t, err)

	_, err = f.engine.PlaceOrder(PlaceOrderInput{
		RestaurantID: f.restaurant.ID,
		Mode:         models.ModePickup,
		Items:        []ItemRef{{ID: uintPtr(f.biryani.ID), Quantity: 1}},
	})
	var notFound *ItemNotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestAutoAcceptSetting(t *testing.T) {
	f := newFixture(t, "autoaccept")
	require.NoError(t, f.db.Create(&models.RestaurantSettings{
		RestaurantID:     f.restaurant.ID,
		AutoAcceptOrders: true,
	}).Error)

	order := f.placeOrder(t)
	assert.Equal(t, models.OrderAccepted, order.Status)
	assert.NotNil(t, order.AcceptedAt)
	assert.Nil(t, order.AssignedChefID)

	history, err := f.engine.History(order.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, models.OrderAccepted, history[1].NewStatus)
	assert.Nil(t, history[1].ChangedByChefID)

	events := f.pub.all()
	require.Len(t, events, 2)
	assert.Equal(t, "new_order", events[0].Name)
	assert.Equal(t, "order_status_update", events[1].Name)
}

func TestMaxActiveOrdersCap(t *testing.T) {
	f := newFixture(t, "maxactive")
	require.NoError(t, f.db.Create(&models.RestaurantSettings{
		RestaurantID:    f.restaurant.ID,
		MaxActiveOrders: 2,
	}).Error)

	f.placeOrder(t)
	second := f.placeOrder(t)

	_, err := f.engine.PlaceOrder(PlaceOrderInput{
		RestaurantID: f.restaurant.ID,
		CustomerName: strPtr("dana"),
		Mode:         models.ModePickup,
		Items:        []ItemRef{{ID: uintPtr(f.biryani.ID), Quantity: 1}},
	})
	assert.ErrorIs(t, err, ErrRestaurantBusy)

	// Terminal orders free up capacity.
	_, err = f.engine.Transition(second.ID, models.OrderRejected, &f.chefA)
	require.NoError(t, err)
	f.placeOrder(t)
}

func TestErrConflictIsSentinel(t *testing.T) {
	wrapped := fmt.Errorf("commit failed: %w", ErrConflict)
	assert.True(t, errors.Is(wrapped, ErrConflict))
}
