package models

import "time"

// OrderStatusHistory is append-only. Entries for one order form an unbroken
// chain: each PreviousStatus equals the prior entry's NewStatus, nil for the
// initial entry written at placement.
type OrderStatusHistory struct {
	ID              uint         `gorm:"primaryKey" json:"id"`
	OrderID         uint         `gorm:"not null;index" json:"order_id"`
	PreviousStatus  *OrderStatus `gorm:"type:varchar(20)" json:"previous_status,omitempty"`
	NewStatus       OrderStatus  `gorm:"type:varchar(20);not null" json:"new_status"`
	Timestamp       time.Time    `gorm:"not null" json:"timestamp"`
	ChangedByChefID *uint        `json:"changed_by_chef_id,omitempty"`
}
