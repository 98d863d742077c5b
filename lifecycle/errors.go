package lifecycle

import (
	"errors"
	"fmt"
	"strings"

	"github.com/yeremiapane/kitchen-queue/models"
)

var (
	ErrOrderNotFound      = errors.New("order not found")
	ErrRestaurantNotFound = errors.New("restaurant not found")
	ErrEmptyOrder         = errors.New("order must contain at least one item")

	// ErrNotSameRestaurant means the acting chef belongs to a different
	// restaurant than the order.
	ErrNotSameRestaurant = errors.New("order belongs to another restaurant")

	ErrAlreadyAssigned = errors.New("order already assigned to another chef")
	ErrNotAssignee     = errors.New("you are not assigned to this order")

	// ErrConflict means a concurrent transition won the race. The caller may
	// retry; the engine never retries on its own.
	ErrConflict = errors.New("order was modified concurrently")

	// ErrRestaurantBusy means the restaurant hit its configured cap of
	// active (non-terminal) orders.
	ErrRestaurantBusy = errors.New("restaurant is not accepting more orders right now")
)

// IllegalTransitionError names the requested move and the full allowed set
// so clients can diagnose what the order actually permits.
type IllegalTransitionError struct {
	From    models.OrderStatus
	To      models.OrderStatus
	Allowed []models.OrderStatus
}

func (e *IllegalTransitionError) Error() string {
	if len(e.Allowed) == 0 {
		return fmt.Sprintf("cannot change status from %s to %s: %s is a terminal state", e.From, e.To, e.From)
	}
	targets := make([]string, len(e.Allowed))
	for i, s := range e.Allowed {
		targets[i] = string(s)
	}
	return fmt.Sprintf("cannot change status from %s to %s, allowed: [%s]", e.From, e.To, strings.Join(targets, ", "))
}

// ItemNotFoundError reports an order line referencing a menu item that does
// not exist in the target restaurant.
type ItemNotFoundError struct {
	Ref string
}

func (e *ItemNotFoundError) Error() string {
	return fmt.Sprintf("menu item %s not found in this restaurant", e.Ref)
}

// InvalidQuantityError reports a non-positive line quantity.
type InvalidQuantityError struct {
	Ref      string
	Quantity int
}

func (e *InvalidQuantityError) Error() string {
	return fmt.Sprintf("invalid quantity %d for item %s", e.Quantity, e.Ref)
}
