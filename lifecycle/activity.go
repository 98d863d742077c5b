package lifecycle

import (
	"time"

	"gorm.io/gorm"

	"github.com/yeremiapane/kitchen-queue/models"
)

// RecordActivity appends one audit entry. Called inside the engine's
// transactions so the entry commits or rolls back with the action it audits.
func RecordActivity(tx *gorm.DB, restaurantID uint, chefID, orderID *uint, action string, details *string) error {
	return tx.Create(&models.ChefActivityLog{
		RestaurantID: restaurantID,
		ChefID:       chefID,
		OrderID:      orderID,
		Action:       action,
		Details:      details,
		CreatedAt:    time.Now(),
	}).Error
}

// ActivityForRestaurant lists a restaurant's audit entries, newest first.
func (e *Engine) ActivityForRestaurant(restaurantID uint) ([]models.ChefActivityLog, error) {
	var logs []models.ChefActivityLog
	err := e.db.Where("restaurant_id = ?", restaurantID).
		Order("created_at desc").Order("id desc").
		Find(&logs).Error
	if err != nil {
		return nil, err
	}
	return logs, nil
}

// ActivityForOrder lists one order's audit entries, newest first.
func (e *Engine) ActivityForOrder(orderID uint) ([]models.ChefActivityLog, error) {
	var logs []models.ChefActivityLog
	err := e.db.Where("order_id = ?", orderID).
		Order("created_at desc").Order("id desc").
		Find(&logs).Error
	if err != nil {
		return nil, err
	}
	return logs, nil
}
