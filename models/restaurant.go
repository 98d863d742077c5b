package models

import "time"

type Restaurant struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"type:varchar(100);not null" json:"name"`
	Address   string    `gorm:"type:varchar(255);not null" json:"address"`
	Phone     *string   `gorm:"type:varchar(15)" json:"phone,omitempty"`
	IsOpen    bool      `gorm:"not null;default:true" json:"is_open"`
	OwnerID   uint      `gorm:"not null" json:"owner_id"`
	Owner     User      `gorm:"foreignKey:OwnerID" json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Settings *RestaurantSettings `gorm:"foreignKey:RestaurantID" json:"settings,omitempty"`
}

type RestaurantSettings struct {
	ID               uint `gorm:"primaryKey" json:"id"`
	RestaurantID     uint `gorm:"not null;uniqueIndex" json:"restaurant_id"`
	AutoAcceptOrders bool `gorm:"not null;default:false" json:"auto_accept_orders"`
	MaxActiveOrders  int  `gorm:"not null;default:10" json:"max_active_orders"`
	// Orders cooking longer than this many minutes get flagged as delayed
	// by the delay monitor. Zero disables the sweep for the restaurant.
	DelayThresholdMinutes int `gorm:"not null;default:30" json:"delay_threshold_minutes"`
}
