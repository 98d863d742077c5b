package services

import (
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

type recordingPublisher struct {
	mu      sync.Mutex
	delayed []uint
}

func (p *recordingPublisher) PushNewOrder(*models.Order)      {}
func (p *recordingPublisher) PushStatusUpdate(*models.Order)  {}
func (p *recordingPublisher) PushOrderCanceled(*models.Order) {}
func (p *recordingPublisher) PushOrderDelayed(o *models.Order) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.delayed = append(p.delayed, o.ID)
}

func (p *recordingPublisher) delayedIDs() []uint {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]uint, len(p.delayed))
	copy(out, p.delayed)
	return out
}

func newMonitorDB(t *testing.T, name string) *gorm.DB {
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
	return db
}

func seedCookingOrder(t *testing.T, db *gorm.DB, restaurantID uint, cookingSince time.Time) *models.Order {
	t.Helper()
	cookingAt := cookingSince
	order := models.Order{
		RestaurantID: restaurantID,
		Mode:         models.ModeDineIn,
		Status:       models.OrderCooking,
		Priority:     models.PriorityNormal,
		TotalAmount:  decimal.RequireFromString("20.00"),
		CookingAt:    &cookingAt,
	}
	require.NoError(t, db.Create(&order).Error)
	return &order
}

func TestSweepFlagsOverdueOrders(t *testing.T) {
	db := newMonitorDB(t, "sweep")
	pub := &recordingPublisher{}
	monitor := NewDelayMonitor(db, pub)

	restaurant := models.Restaurant{Name: "Spice Route", Address: "12 Main St", IsOpen: true, OwnerID: 1}
	require.NoError(t, db.Create(&restaurant).Error)
	require.NoError(t, db.Create(&models.RestaurantSettings{
		RestaurantID:          restaurant.ID,
		DelayThresholdMinutes: 30,
	}).Error)

	overdue := seedCookingOrder(t, db, restaurant.ID, time.Now().Add(-45*time.Minute))
	fresh := seedCookingOrder(t, db, restaurant.ID, time.Now().Add(-5*time.Minute))

	monitor.Sweep()

	var reloaded models.Order
	require.NoError(t, db.First(&reloaded, overdue.ID).Error)
	assert.True(t, reloaded.IsDelayed)
	require.NotNil(t, reloaded.DelayReason)
	assert.Contains(t, *reloaded.DelayReason, "30 minutes")

	reloaded = models.Order{}
	require.NoError(t, db.First(&reloaded, fresh.ID).Error)
	assert.False(t, reloaded.IsDelayed)

	assert.Equal(t, []uint{overdue.ID}, pub.delayedIDs())

	// The sweep leaves an audit entry with no acting chef.
	var logs []models.ChefActivityLog
	require.NoError(t, db.Where("order_id = ?", overdue.ID).Find(&logs).Error)
	require.Len(t, logs, 1)
	assert.Equal(t, "mark_delayed", logs[0].Action)
	assert.Nil(t, logs[0].ChefID)
}

func TestSweepFlagsEachOrderOnce(t *testing.T) {
	db := newMonitorDB(t, "sweeponce")
	pub := &recordingPublisher{}
	monitor := NewDelayMonitor(db, pub)

	restaurant := models.Restaurant{Name: "Spice Route", Address: "12 Main St", IsOpen: true, OwnerID: 1}
	require.NoError(t, db.Create(&restaurant).Error)

	order := seedCookingOrder(t, db, restaurant.ID, time.Now().Add(-2*time.Hour))

	monitor.Sweep()
	monitor.Sweep()

	assert.Equal(t, []uint{order.ID}, pub.delayedIDs())
}

func TestSweepZeroThresholdDisabled(t *testing.T) {
	db := newMonitorDB(t, "sweepdisabled")
	pub := &recordingPublisher{}
	monitor := NewDelayMonitor(db, pub)

	restaurant := models.Restaurant{Name: "Spice Route", Address: "12 Main St", IsOpen: true, OwnerID: 1}
	require.NoError(t, db.Create(&restaurant).Error)
	require.NoError(t, db.Create(&models.RestaurantSettings{
		RestaurantID:          restaurant.ID,
		DelayThresholdMinutes: 0,
	}).Error)

	seedCookingOrder(t, db, restaurant.ID, time.Now().Add(-6*time.Hour))

	monitor.Sweep()

	assert.Empty(t, pub.delayedIDs())
}

func TestSweepUsesDefaultThresholdWithoutSettings(t *testing.T) {
	db := newMonitorDB(t, "sweepdefault")
	pub := &recordingPublisher{}
	monitor := NewDelayMonitor(db, pub)
	monitor.DefaultThreshold = 10 * time.Minute

	restaurant := models.Restaurant{Name: "Spice Route", Address: "12 Main St", IsOpen: true, OwnerID: 1}
	require.NoError(t, db.Create(&restaurant).Error)

	order := seedCookingOrder(t, db, restaurant.ID, time.Now().Add(-15*time.Minute))

	monitor.Sweep()

	assert.Equal(t, []uint{order.ID}, pub.delayedIDs())
}
