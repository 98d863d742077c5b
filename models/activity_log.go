package models

import "time"

// ChefActivityLog is the append-only audit trail. Unlike status history it
// also records non-status actions (assign, unassign, note and delay edits).
type ChefActivityLog struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	RestaurantID uint      `gorm:"not null;index" json:"restaurant_id"`
	ChefID       *uint     `gorm:"index" json:"chef_id,omitempty"`
	OrderID      *uint     `gorm:"index" json:"order_id,omitempty"`
	Action       string    `gorm:"type:varchar(50);not null" json:"action"`
	Details      *string   `gorm:"type:text" json:"details,omitempty"`
	CreatedAt    time.Time `gorm:"not null" json:"created_at"`
}
