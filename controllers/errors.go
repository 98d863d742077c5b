package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeremiapane/kitchen-queue/lifecycle"
	"github.com/yeremiapane/kitchen-queue/models"
	"github.com/yeremiapane/kitchen-queue/utils"
)

// respondLifecycleError maps engine errors onto HTTP statuses: missing
// records 404, cross-restaurant access 403, lost races 409, everything the
// client can fix 400.
func respondLifecycleError(c *gin.Context, err error) {
	var illegal *lifecycle.IllegalTransitionError
	var notFound *lifecycle.ItemNotFoundError
	var badQty *lifecycle.InvalidQuantityError

	switch {
	case errors.Is(err, lifecycle.ErrOrderNotFound),
		errors.Is(err, lifecycle.ErrRestaurantNotFound):
		utils.RespondError(c, http.StatusNotFound, err)
	case errors.Is(err, lifecycle.ErrNotSameRestaurant),
		errors.Is(err, lifecycle.ErrNotAssignee):
		utils.RespondError(c, http.StatusForbidden, err)
	case errors.Is(err, lifecycle.ErrConflict),
		errors.Is(err, lifecycle.ErrRestaurantBusy):
		utils.RespondError(c, http.StatusConflict, err)
	case errors.As(err, &illegal),
		errors.As(err, &notFound),
		errors.As(err, &badQty),
		errors.Is(err, lifecycle.ErrEmptyOrder),
		errors.Is(err, lifecycle.ErrAlreadyAssigned):
		utils.RespondError(c, http.StatusBadRequest, err)
	default:
		utils.ErrorLogger.Printf("unhandled error: %v", err)
		utils.RespondError(c, http.StatusInternalServerError, err)
	}
}

// currentChef rebuilds the acting chef from token claims set by the auth
// middleware. The engine only needs identity and restaurant affiliation.
func currentChef(c *gin.Context) *models.Chef {
	return &models.Chef{
		ID:           c.GetUint("chef_id"),
		RestaurantID: c.GetUint("restaurant_id"),
	}
}
