package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type MenuCategory struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	RestaurantID   uint      `gorm:"not null;index" json:"restaurant_id"`
	CategoryNumber int       `gorm:"not null" json:"category_number"`
	Name           string    `gorm:"type:varchar(100);not null" json:"name"`
	Description    *string   `gorm:"type:text" json:"description,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`

	Items []MenuItem `gorm:"foreignKey:CategoryID" json:"items,omitempty"`
}

type MenuItem struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	CategoryID  uint            `gorm:"not null;index" json:"category_id"`
	Category    MenuCategory    `gorm:"foreignKey:CategoryID" json:"-"`
	Name        string          `gorm:"type:varchar(100);not null" json:"name"`
	Description *string         `gorm:"type:text" json:"description,omitempty"`
	Price       decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	FoodType    string          `gorm:"type:varchar(10);not null" json:"food_type"` // veg / nonveg
	IsAvailable bool            `gorm:"not null;default:true" json:"is_available"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}
