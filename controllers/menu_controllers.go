package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/yeremiapane/kitchen-queue/models"
	"github.com/yeremiapane/kitchen-queue/utils"
)

type MenuController struct {
	DB *gorm.DB
}

func NewMenuController(db *gorm.DB) *MenuController {
	return &MenuController{DB: db}
}

// CreateCategory -> new category with the next category number for the
// restaurant; duplicate names rejected.
func (mc *MenuController) CreateCategory(c *gin.Context) {
	var req struct {
		RestaurantID uint    `json:"restaurant_id" binding:"required"`
		Name         string  `json:"name" binding:"required"`
		Description  *string `json:"description,omitempty"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var existing models.MenuCategory
	err := mc.DB.Where("restaurant_id = ? AND LOWER(name) = LOWER(?)", req.RestaurantID, req.Name).
		First(&existing).Error
	if err == nil {
		utils.RespondError(c, http.StatusConflict, errors.New("category with this name already exists"))
		return
	}

	var lastNumber int
	mc.DB.Model(&models.MenuCategory{}).
		Where("restaurant_id = ?", req.RestaurantID).
		Select("COALESCE(MAX(category_number), 0)").
		Scan(&lastNumber)

	category := models.MenuCategory{
		RestaurantID:   req.RestaurantID,
		CategoryNumber: lastNumber + 1,
		Name:           req.Name,
		Description:    req.Description,
	}
	if err := mc.DB.Create(&category).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Category created", category)
}

// ListCategories -> all categories of a restaurant.
func (mc *MenuController) ListCategories(c *gin.Context) {
	restaurantID, ok := paramUint(c, "restaurant_id")
	if !ok {
		return
	}
	var categories []models.MenuCategory
	if err := mc.DB.Where("restaurant_id = ?", restaurantID).Find(&categories).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Categories", categories)
}

// UpdateCategory -> rename, duplicate-name guarded.
func (mc *MenuController) UpdateCategory(c *gin.Context) {
	categoryID, ok := paramUint(c, "category_id")
	if !ok {
		return
	}
	var category models.MenuCategory
	if err := mc.DB.First(&category, categoryID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("category not found"))
		return
	}

	var req struct {
		Name        *string `json:"name,omitempty"`
		Description *string `json:"description,omitempty"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	if req.Name != nil {
		var existing models.MenuCategory
		err := mc.DB.Where("restaurant_id = ? AND LOWER(name) = LOWER(?) AND id != ?",
			category.RestaurantID, *req.Name, categoryID).First(&existing).Error
		if err == nil {
			utils.RespondError(c, http.StatusConflict, errors.New("another category with this name exists"))
			return
		}
		category.Name = *req.Name
	}
	if req.Description != nil {
		category.Description = req.Description
	}

	if err := mc.DB.Save(&category).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Category updated", category)
}

// DeleteCategory -> blocked while items exist under it.
func (mc *MenuController) DeleteCategory(c *gin.Context) {
	categoryID, ok := paramUint(c, "category_id")
	if !ok {
		return
	}
	var count int64
	mc.DB.Model(&models.MenuItem{}).Where("category_id = ?", categoryID).Count(&count)
	if count > 0 {
		utils.RespondError(c, http.StatusBadRequest, errors.New("cannot delete category with existing menu items"))
		return
	}
	if err := mc.DB.Delete(&models.MenuCategory{}, categoryID).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Category deleted", gin.H{"category_id": categoryID})
}

// CreateItem -> new menu item under an existing category.
func (mc *MenuController) CreateItem(c *gin.Context) {
	var req struct {
		CategoryID  uint            `json:"category_id" binding:"required"`
		Name        string          `json:"name" binding:"required"`
		Description *string         `json:"description,omitempty"`
		Price       decimal.Decimal `json:"price"`
		FoodType    string          `json:"food_type" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if req.FoodType != "veg" && req.FoodType != "nonveg" {
		utils.RespondError(c, http.StatusBadRequest, errors.New("food_type must be veg or nonveg"))
		return
	}
	if req.Price.IsNegative() {
		utils.RespondError(c, http.StatusBadRequest, errors.New("price cannot be negative"))
		return
	}

	var category models.MenuCategory
	if err := mc.DB.First(&category, req.CategoryID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("category not found"))
		return
	}

	var existing models.MenuItem
	err := mc.DB.Where("category_id = ? AND LOWER(name) = LOWER(?)", req.CategoryID, req.Name).
		First(&existing).Error
	if err == nil {
		utils.RespondError(c, http.StatusConflict, errors.New("item already exists in this category"))
		return
	}

	item := models.MenuItem{
		CategoryID:  req.CategoryID,
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		FoodType:    req.FoodType,
		IsAvailable: true,
	}
	if err := mc.DB.Create(&item).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Menu item created", item)
}

// ListItems -> items of one category.
func (mc *MenuController) ListItems(c *gin.Context) {
	categoryID, ok := paramUint(c, "category_id")
	if !ok {
		return
	}
	var items []models.MenuItem
	if err := mc.DB.Where("category_id = ?", categoryID).Find(&items).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Menu items", items)
}

// UpdateItem -> partial update; price edits never touch placed orders
// because line items carry their own snapshots.
func (mc *MenuController) UpdateItem(c *gin.Context) {
	itemID, ok := paramUint(c, "item_id")
	if !ok {
		return
	}
	var item models.MenuItem
	if err := mc.DB.First(&item, itemID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("menu item not found"))
		return
	}

	var req struct {
		Name        *string          `json:"name,omitempty"`
		Description *string          `json:"description,omitempty"`
		Price       *decimal.Decimal `json:"price,omitempty"`
		FoodType    *string          `json:"food_type,omitempty"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	if req.Name != nil {
		item.Name = *req.Name
	}
	if req.Description != nil {
		item.Description = req.Description
	}
	if req.Price != nil {
		if req.Price.IsNegative() {
			utils.RespondError(c, http.StatusBadRequest, errors.New("price cannot be negative"))
			return
		}
		item.Price = *req.Price
	}
	if req.FoodType != nil {
		if *req.FoodType != "veg" && *req.FoodType != "nonveg" {
			utils.RespondError(c, http.StatusBadRequest, errors.New("food_type must be veg or nonveg"))
			return
		}
		item.FoodType = *req.FoodType
	}

	if err := mc.DB.Save(&item).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Menu item updated", item)
}

// UpdateAvailability -> toggle without touching the rest of the item.
func (mc *MenuController) UpdateAvailability(c *gin.Context) {
	itemID, ok := paramUint(c, "item_id")
	if !ok {
		return
	}
	var req struct {
		IsAvailable *bool `json:"is_available" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	res := mc.DB.Model(&models.MenuItem{}).Where("id = ?", itemID).
		Update("is_available", *req.IsAvailable)
	if res.Error != nil {
		utils.RespondError(c, http.StatusInternalServerError, res.Error)
		return
	}
	if res.RowsAffected == 0 {
		utils.RespondError(c, http.StatusNotFound, errors.New("menu item not found"))
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Availability updated", gin.H{
		"item_id":      itemID,
		"is_available": *req.IsAvailable,
	})
}

// DeleteItem
func (mc *MenuController) DeleteItem(c *gin.Context) {
	itemID, ok := paramUint(c, "item_id")
	if !ok {
		return
	}
	if err := mc.DB.Delete(&models.MenuItem{}, itemID).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Menu item deleted", gin.H{"item_id": itemID})
}
