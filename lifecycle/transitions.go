package lifecycle

import (
	"fmt"

	"github.com/yeremiapane/kitchen-queue/models"
)

// allowedTransitions is the single source of truth for the order state
// machine. Terminal states keep an explicit empty row so the startup
// assertion below can verify full coverage.
var allowedTransitions = map[models.OrderStatus][]models.OrderStatus{
	models.OrderPending:   {models.OrderAccepted, models.OrderCanceled, models.OrderRejected},
	models.OrderAccepted:  {models.OrderCooking, models.OrderCanceled},
	models.OrderCooking:   {models.OrderReady, models.OrderCanceled},
	models.OrderReady:     {models.OrderCompleted},
	models.OrderCompleted: {},
	models.OrderCanceled:  {},
	models.OrderRejected:  {},
}

func init() {
	for _, s := range models.AllOrderStatuses {
		if _, ok := allowedTransitions[s]; !ok {
			panic(fmt.Sprintf("lifecycle: status %q has no transition row", s))
		}
	}
}

// CanTransition reports whether an order may move from one status to another.
func CanTransition(from, to models.OrderStatus) bool {
	for _, t := range allowedTransitions[from] {
		if t == to {
			return true
		}
	}
	return false
}

// AllowedTargets returns the legal target statuses from a given status.
// Empty for terminal states.
func AllowedTargets(from models.OrderStatus) []models.OrderStatus {
	targets := allowedTransitions[from]
	out := make([]models.OrderStatus, len(targets))
	copy(out, targets)
	return out
}

// IsTerminal reports whether a status has no outbound transitions.
func IsTerminal(s models.OrderStatus) bool {
	return len(allowedTransitions[s]) == 0
}
