package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/yeremiapane/kitchen-queue/models"
	"github.com/yeremiapane/kitchen-queue/utils"
)

type ChefController struct {
	DB *gorm.DB
}

func NewChefController(db *gorm.DB) *ChefController {
	return &ChefController{DB: db}
}

// CreateChef -> owner adds a kitchen worker to a restaurant.
func (cc *ChefController) CreateChef(c *gin.Context) {
	restaurantID, ok := paramUint(c, "restaurant_id")
	if !ok {
		return
	}
	var req struct {
		Name        string `json:"name" binding:"required"`
		PhoneNumber string `json:"phone_number" binding:"required"`
		Password    string `json:"password" binding:"required,min=6"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var existing models.Chef
	if err := cc.DB.Where("phone_number = ?", req.PhoneNumber).First(&existing).Error; err == nil {
		utils.RespondError(c, http.StatusConflict, errors.New("phone number already registered"))
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	chef := models.Chef{
		RestaurantID: restaurantID,
		Name:         req.Name,
		PhoneNumber:  req.PhoneNumber,
		Password:     string(hashed),
		Status:       "active",
	}
	if err := cc.DB.Create(&chef).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Chef created", chef)
}

// ListChefs -> a restaurant's kitchen staff.
func (cc *ChefController) ListChefs(c *gin.Context) {
	restaurantID, ok := paramUint(c, "restaurant_id")
	if !ok {
		return
	}
	var chefs []models.Chef
	if err := cc.DB.Where("restaurant_id = ?", restaurantID).Find(&chefs).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Chefs", chefs)
}

// UpdateChef -> partial update of name, status or password.
func (cc *ChefController) UpdateChef(c *gin.Context) {
	chefID, ok := paramUint(c, "chef_id")
	if !ok {
		return
	}
	var chef models.Chef
	if err := cc.DB.First(&chef, chefID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("chef not found"))
		return
	}

	var req struct {
		Name     *string `json:"name,omitempty"`
		Status   *string `json:"status,omitempty"`
		Password *string `json:"password,omitempty"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	if req.Name != nil {
		chef.Name = *req.Name
	}
	if req.Status != nil {
		if *req.Status != "active" && *req.Status != "inactive" {
			utils.RespondError(c, http.StatusBadRequest, errors.New("status must be active or inactive"))
			return
		}
		chef.Status = *req.Status
	}
	if req.Password != nil {
		hashed, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			utils.RespondError(c, http.StatusInternalServerError, err)
			return
		}
		chef.Password = string(hashed)
	}

	if err := cc.DB.Save(&chef).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Chef updated", chef)
}

// DeleteChef
func (cc *ChefController) DeleteChef(c *gin.Context) {
	chefID, ok := paramUint(c, "chef_id")
	if !ok {
		return
	}
	if err := cc.DB.Delete(&models.Chef{}, chefID).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Chef deleted", gin.H{"chef_id": chefID})
}

// Login -> chef authenticates with phone number and password.
func (cc *ChefController) Login(c *gin.Context) {
	var req struct {
		PhoneNumber string `json:"phone_number" binding:"required"`
		Password    string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var chef models.Chef
	if err := cc.DB.Where("phone_number = ?", req.PhoneNumber).First(&chef).Error; err != nil {
		utils.RespondError(c, http.StatusUnauthorized, errors.New("invalid credentials"))
		return
	}
	if chef.Status != "active" {
		utils.RespondError(c, http.StatusForbidden, errors.New("account is inactive"))
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(chef.Password), []byte(req.Password)); err != nil {
		utils.RespondError(c, http.StatusUnauthorized, errors.New("invalid credentials"))
		return
	}

	token, err := utils.GenerateChefToken(chef.ID, chef.RestaurantID)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Login successful", gin.H{
		"token": token,
		"chef":  chef,
	})
}
