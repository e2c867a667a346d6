package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/ekantin/canteen-app/display"
	"github.com/ekantin/canteen-app/models"
	"github.com/ekantin/canteen-app/services"
	"github.com/ekantin/canteen-app/utils"
)

type MenuController struct {
	DB    *gorm.DB
	Cache *services.MenuCache
}

func NewMenuController(db *gorm.DB, cache *services.MenuCache) *MenuController {
	return &MenuController{DB: db, Cache: cache}
}

// GetMenuItems returns every available item, ordered by category then name.
// This is the listing students and parents browse.
func (mc *MenuController) GetMenuItems(c *gin.Context) {
	if items := mc.Cache.Get(c.Request.Context()); items != nil {
		utils.RespondJSON(c, http.StatusOK, "List of menu items", items)
		return
	}

	var items []models.MenuItem
	if err := mc.DB.
		Where("is_available = ?", true).
		Order("category asc").
		Order("name asc").
		Find(&items).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	mc.Cache.Set(c.Request.Context(), items)

	utils.RespondJSON(c, http.StatusOK, "List of menu items", items)
}

// GetAllMenuItems returns every item including unavailable ones, for the
// canteen manager's stock view.
func (mc *MenuController) GetAllMenuItems(c *gin.Context) {
	query := mc.DB.Order("category asc").Order("name asc")
	if category := c.Query("category"); category != "" {
		query = query.Where("category = ?", category)
	}

	var items []models.MenuItem
	if err := query.Find(&items).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "List of all menu items", items)
}

// GetMenuItemByID
func (mc *MenuController) GetMenuItemByID(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("menu_id"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid menu id"))
		return
	}

	var item models.MenuItem
	if err := mc.DB.First(&item, id).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Menu item detail", item)
}

// CreateMenuItem adds an item to the menu.
func (mc *MenuController) CreateMenuItem(c *gin.Context) {
	type request struct {
		Name          string  `json:"name" binding:"required"`
		Description   *string `json:"description"`
		Price         float64 `json:"price" binding:"required"`
		Category      string  `json:"category" binding:"required"`
		ImageURL      *string `json:"image_url"`
		IsAvailable   *bool   `json:"is_available"`
		StockQuantity int     `json:"stock_quantity"`
	}

	var req request
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	if req.Price <= 0 {
		utils.RespondError(c, http.StatusBadRequest, errors.New("price must be positive"))
		return
	}
	if req.StockQuantity < 0 {
		utils.RespondError(c, http.StatusBadRequest, errors.New("stock_quantity must not be negative"))
		return
	}
	if !models.IsValidCategory(req.Category) {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid category"))
		return
	}

	available := true
	if req.IsAvailable != nil {
		available = *req.IsAvailable
	}

	item := models.MenuItem{
		Name:          req.Name,
		Description:   req.Description,
		Price:         req.Price,
		Category:      req.Category,
		ImageURL:      req.ImageURL,
		IsAvailable:   available,
		StockQuantity: req.StockQuantity,
	}

	if err := mc.DB.Create(&item).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	mc.Cache.Invalidate(c.Request.Context())
	display.BroadcastMenuUpdate(item)

	utils.RespondJSON(c, http.StatusCreated, "Menu item created", item)
}

// UpdateMenuItem partially updates an item; absent fields are left alone.
func (mc *MenuController) UpdateMenuItem(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("menu_id"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid menu id"))
		return
	}

	var item models.MenuItem
	if err := mc.DB.First(&item, id).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("menu item not found"))
		return
	}

	type request struct {
		Name          *string  `json:"name"`
		Description   *string  `json:"description"`
		Price         *float64 `json:"price"`
		Category      *string  `json:"category"`
		ImageURL      *string  `json:"image_url"`
		IsAvailable   *bool    `json:"is_available"`
		StockQuantity *int     `json:"stock_quantity"`
	}

	var req request
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	if req.Price != nil {
		if *req.Price <= 0 {
			utils.RespondError(c, http.StatusBadRequest, errors.New("price must be positive"))
			return
		}
		item.Price = *req.Price
	}
	if req.StockQuantity != nil {
		if *req.StockQuantity < 0 {
			utils.RespondError(c, http.StatusBadRequest, errors.New("stock_quantity must not be negative"))
			return
		}
		item.StockQuantity = *req.StockQuantity
	}
	if req.Category != nil {
		if !models.IsValidCategory(*req.Category) {
			utils.RespondError(c, http.StatusBadRequest, errors.New("invalid category"))
			return
		}
		item.Category = *req.Category
	}
	if req.Name != nil {
		item.Name = *req.Name
	}
	if req.Description != nil {
		item.Description = req.Description
	}
	if req.ImageURL != nil {
		item.ImageURL = req.ImageURL
	}
	if req.IsAvailable != nil {
		item.IsAvailable = *req.IsAvailable
	}

	if err := mc.DB.Save(&item).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	mc.Cache.Invalidate(c.Request.Context())
	display.BroadcastMenuUpdate(item)

	utils.RespondJSON(c, http.StatusOK, "Menu item updated", item)
}
