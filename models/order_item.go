package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderItem snapshots the menu item at order time. UnitPrice, TotalPrice and
// FoodType are frozen on creation so later menu edits never rewrite history.
type OrderItem struct {
	ID         uint            `gorm:"primaryKey" json:"id"`
	OrderID    uint            `gorm:"not null;index" json:"order_id"`
	MenuItemID uint            `gorm:"not null" json:"menu_item_id"`
	MenuItem   MenuItem        `gorm:"foreignKey:MenuItemID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
	Quantity   int             `gorm:"not null" json:"quantity"`
	UnitPrice  decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"unit_price"`
	TotalPrice decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"total_price"`
	FoodType   string          `gorm:"type:varchar(10)" json:"food_type"`
	CreatedAt  time.Time       `gorm:"not null" json:"created_at"`
}
