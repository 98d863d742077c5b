package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yeremiapane/kitchen-queue/models"
	"github.com/yeremiapane/kitchen-queue/utils"
)

type RestaurantController struct {
	DB *gorm.DB
}

func NewRestaurantController(db *gorm.DB) *RestaurantController {
	return &RestaurantController{DB: db}
}

// CreateRestaurant -> new restaurant owned by the authenticated user,
// with a default settings row.
func (rc *RestaurantController) CreateRestaurant(c *gin.Context) {
	var req struct {
		Name    string  `json:"name" binding:"required"`
		Address string  `json:"address" binding:"required"`
		Phone   *string `json:"phone,omitempty"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	restaurant := models.Restaurant{
		Name:    req.Name,
		Address: req.Address,
		Phone:   req.Phone,
		IsOpen:  true,
		OwnerID: c.GetUint("user_id"),
	}
	err := rc.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&restaurant).Error; err != nil {
			return err
		}
		return tx.Create(&models.RestaurantSettings{
			RestaurantID:          restaurant.ID,
			MaxActiveOrders:       10,
			DelayThresholdMinutes: 30,
		}).Error
	})
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Restaurant created", restaurant)
}

// ListRestaurants -> open restaurants, for customers browsing.
func (rc *RestaurantController) ListRestaurants(c *gin.Context) {
	var restaurants []models.Restaurant
	if err := rc.DB.Where("is_open = ?", true).Find(&restaurants).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Restaurants", restaurants)
}

// GetRestaurant -> one restaurant with settings.
func (rc *RestaurantController) GetRestaurant(c *gin.Context) {
	restaurantID, ok := paramUint(c, "restaurant_id")
	if !ok {
		return
	}
	var restaurant models.Restaurant
	if err := rc.DB.Preload("Settings").First(&restaurant, restaurantID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("restaurant not found"))
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Restaurant detail", restaurant)
}

// UpdateRestaurant -> owner-only partial update.
func (rc *RestaurantController) UpdateRestaurant(c *gin.Context) {
	restaurantID, ok := paramUint(c, "restaurant_id")
	if !ok {
		return
	}
	var restaurant models.Restaurant
	if err := rc.DB.First(&restaurant, restaurantID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("restaurant not found"))
		return
	}
	if restaurant.OwnerID != c.GetUint("user_id") {
		utils.RespondError(c, http.StatusForbidden, errors.New("not the owner of this restaurant"))
		return
	}

	var req struct {
		Name    *string `json:"name,omitempty"`
		Address *string `json:"address,omitempty"`
		Phone   *string `json:"phone,omitempty"`
		IsOpen  *bool   `json:"is_open,omitempty"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	if req.Name != nil {
		restaurant.Name = *req.Name
	}
	if req.Address != nil {
		restaurant.Address = *req.Address
	}
	if req.Phone != nil {
		restaurant.Phone = req.Phone
	}
	if req.IsOpen != nil {
		restaurant.IsOpen = *req.IsOpen
	}

	if err := rc.DB.Save(&restaurant).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Restaurant updated", restaurant)
}

// UpdateSettings -> owner-only settings update.
func (rc *RestaurantController) UpdateSettings(c *gin.Context) {
	restaurantID, ok := paramUint(c, "restaurant_id")
	if !ok {
		return
	}
	var restaurant models.Restaurant
	if err := rc.DB.First(&restaurant, restaurantID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("restaurant not found"))
		return
	}
	if restaurant.OwnerID != c.GetUint("user_id") {
		utils.RespondError(c, http.StatusForbidden, errors.New("not the owner of this restaurant"))
		return
	}

	var req struct {
		AutoAcceptOrders      *bool `json:"auto_accept_orders,omitempty"`
		MaxActiveOrders       *int  `json:"max_active_orders,omitempty"`
		DelayThresholdMinutes *int  `json:"delay_threshold_minutes,omitempty"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var settings models.RestaurantSettings
	if err := rc.DB.Where("restaurant_id = ?", restaurantID).First(&settings).Error; err != nil {
		settings = models.RestaurantSettings{RestaurantID: restaurantID}
	}
	if req.AutoAcceptOrders != nil {
		settings.AutoAcceptOrders = *req.AutoAcceptOrders
	}
	if req.MaxActiveOrders != nil {
		settings.MaxActiveOrders = *req.MaxActiveOrders
	}
	if req.DelayThresholdMinutes != nil {
		settings.DelayThresholdMinutes = *req.DelayThresholdMinutes
	}

	if err := rc.DB.Save(&settings).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Settings updated", settings)
}
