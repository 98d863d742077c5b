package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderAccepted  OrderStatus = "accepted"
	OrderCooking   OrderStatus = "cooking"
	OrderReady     OrderStatus = "ready"
	OrderCompleted OrderStatus = "completed"
	OrderCanceled  OrderStatus = "canceled"
	OrderRejected  OrderStatus = "rejected"
)

// AllOrderStatuses lists every defined status. Kept in sync with the
// constants above; the lifecycle package asserts its transition table
// covers all of them at startup.
var AllOrderStatuses = []OrderStatus{
	OrderPending,
	OrderAccepted,
	OrderCooking,
	OrderReady,
	OrderCompleted,
	OrderCanceled,
	OrderRejected,
}

type OrderMode string

const (
	ModeDineIn   OrderMode = "dinein"
	ModeDelivery OrderMode = "delivery"
	ModePickup   OrderMode = "pickup"
)

type OrderPriority string

const (
	PriorityLow    OrderPriority = "low"
	PriorityNormal OrderPriority = "normal"
	PriorityHigh   OrderPriority = "high"
	PriorityUrgent OrderPriority = "urgent"
)

type Order struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	RestaurantID uint            `gorm:"not null;index" json:"restaurant_id"`
	Restaurant   Restaurant      `gorm:"foreignKey:RestaurantID" json:"-"`
	CustomerName *string         `gorm:"type:varchar(100)" json:"customer_name,omitempty"`
	Mode         OrderMode       `gorm:"type:varchar(20);not null" json:"mode"`
	TableNumber  *int            `json:"table_number,omitempty"`
	Status       OrderStatus     `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	Priority     OrderPriority   `gorm:"type:varchar(20);not null;default:'normal'" json:"priority"`
	TotalAmount  decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"total_amount"`

	IsDelayed   bool    `gorm:"not null;default:false" json:"is_delayed"`
	DelayReason *string `gorm:"type:text" json:"delay_reason,omitempty"`
	ChefNote    *string `gorm:"type:text" json:"chef_note,omitempty"`

	// Stage timestamps. Set when the order enters the matching status and
	// overwritten on repeated transitions through the same stage.
	AcceptedAt  *time.Time `json:"accepted_at,omitempty"`
	CookingAt   *time.Time `json:"cooking_at,omitempty"`
	ReadyAt     *time.Time `json:"ready_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	AssignedChefID *uint `gorm:"index" json:"assigned_chef_id,omitempty"`
	AssignedChef   *Chef `gorm:"foreignKey:AssignedChefID" json:"assigned_chef,omitempty"`

	// Version guards concurrent transitions on the same order. Every commit
	// bumps it; a commit against a stale version affects zero rows.
	Version uint `gorm:"not null;default:0" json:"-"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`

	Items []OrderItem `gorm:"foreignKey:OrderID" json:"items,omitempty"`
}
