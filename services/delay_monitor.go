package services

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"

	"github.com/yeremiapane/kitchen-queue/lifecycle"
	"github.com/yeremiapane/kitchen-queue/models"
	"github.com/yeremiapane/kitchen-queue/utils"
)

// DelayMonitor periodically flags orders that have been cooking past their
// restaurant's threshold. Each order is flagged once: the sweep skips
// already-delayed rows.
type DelayMonitor struct {
	db   *gorm.DB
	pub  lifecycle.Publisher
	cron *cron.Cron

	// DefaultThreshold applies when a restaurant has no settings row.
	DefaultThreshold time.Duration
}

func NewDelayMonitor(db *gorm.DB, pub lifecycle.Publisher) *DelayMonitor {
	return &DelayMonitor{
		db:               db,
		pub:              pub,
		cron:             cron.New(),
		DefaultThreshold: 30 * time.Minute,
	}
}

func (m *DelayMonitor) Start() {
	if _, err := m.cron.AddFunc("@every 1m", m.Sweep); err != nil {
		utils.ErrorLogger.Printf("delay monitor: failed to schedule sweep: %v", err)
		return
	}
	m.cron.Start()
}

func (m *DelayMonitor) Stop() {
	m.cron.Stop()
}

// Sweep scans cooking orders and marks the overdue ones delayed.
func (m *DelayMonitor) Sweep() {
	var orders []models.Order
	err := m.db.Where("status = ? AND is_delayed = ?", models.OrderCooking, false).Find(&orders).Error
	if err != nil {
		utils.ErrorLogger.Printf("delay monitor: sweep query failed: %v", err)
		return
	}

	now := time.Now()
	for i := range orders {
		order := &orders[i]
		if order.CookingAt == nil {
			continue
		}
		threshold := m.thresholdFor(order.RestaurantID)
		if threshold <= 0 || now.Sub(*order.CookingAt) < threshold {
			continue
		}

		reason := fmt.Sprintf("cooking for more than %d minutes", int(threshold.Minutes()))
		flagged := false
		err := m.db.Transaction(func(tx *gorm.DB) error {
			res := tx.Model(&models.Order{}).
				Where("id = ? AND version = ?", order.ID, order.Version).
				Updates(map[string]interface{}{
					"is_delayed":   true,
					"delay_reason": reason,
					"updated_at":   now,
					"version":      order.Version + 1,
				})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				// Lost a race with a transition; next sweep re-evaluates.
				return nil
			}
			flagged = true
			return lifecycle.RecordActivity(tx, order.RestaurantID, nil, &order.ID, "mark_delayed", &reason)
		})
		if err != nil {
			utils.ErrorLogger.Printf("delay monitor: failed to flag order %d: %v", order.ID, err)
			continue
		}
		if !flagged {
			continue
		}

		order.IsDelayed = true
		order.DelayReason = &reason
		m.pub.PushOrderDelayed(order)
		utils.InfoLogger.Printf("delay monitor: order %d flagged delayed (%s)", order.ID, reason)
	}
}

func (m *DelayMonitor) thresholdFor(restaurantID uint) time.Duration {
	var settings models.RestaurantSettings
	if err := m.db.Where("restaurant_id = ?", restaurantID).First(&settings).Error; err != nil {
		return m.DefaultThreshold
	}
	return time.Duration(settings.DelayThresholdMinutes) * time.Minute
}
