package models

import "time"

type Chef struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	RestaurantID uint       `gorm:"not null;index" json:"restaurant_id"`
	Restaurant   Restaurant `gorm:"foreignKey:RestaurantID" json:"-"`
	Name         string     `gorm:"type:varchar(100);not null" json:"name"`
	PhoneNumber  string     `gorm:"type:varchar(15);uniqueIndex;not null" json:"phone_number"`
	Password     string     `gorm:"type:varchar(255);not null" json:"-"`
	Status       string     `gorm:"type:varchar(10);not null;default:'active'" json:"status"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}
