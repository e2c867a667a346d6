package Controllers_test

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	"github.com/ekantin/canteen-app/controllers"
	"github.com/ekantin/canteen-app/middlewares"
	"github.com/ekantin/canteen-app/models"
	"github.com/ekantin/canteen-app/services"
)

func setupMenuRouter(db *gorm.DB) *gin.Engine {
	router := gin.New()
	menuCtrl := controllers.NewMenuController(db, services.NewMenuCache())
	router.GET("/menus", menuCtrl.GetMenuItems)

	manager := router.Group("/manager", middlewares.AuthMiddleware(), middlewares.RequireRoles(models.RoleCanteenManager))
	manager.GET("/menus", menuCtrl.GetAllMenuItems)
	manager.POST("/menus", menuCtrl.CreateMenuItem)
	manager.GET("/menus/:menu_id", menuCtrl.GetMenuItemByID)
	manager.PATCH("/menus/:menu_id", menuCtrl.UpdateMenuItem)

	return router
}

func seedMenu(t *testing.T, db *gorm.DB) {
	t.Helper()
	items := []models.MenuItem{
		{Name: "Es Teh Manis", Price: 5000, Category: models.CategoryBeverage, IsAvailable: true, StockQuantity: 100},
		{Name: "Nasi Rendang", Price: 18000, Category: models.CategoryMainCourse, IsAvailable: true, StockQuantity: 20},
		{Name: "Nasi Gudeg", Price: 15000, Category: models.CategoryMainCourse, IsAvailable: true, StockQuantity: 25},
		{Name: "Keripik Singkong", Price: 8000, Category: models.CategorySnack, IsAvailable: false, StockQuantity: 50},
	}
	for i := range items {
		if err := db.Create(&items[i]).Error; err != nil {
			t.Fatalf("failed to seed menu: %v", err)
		}
	}
}

func TestGetMenuItemsFiltersAndSorts(t *testing.T) {
	db := setupTestDB(t)
	router := setupMenuRouter(db)
	seedMenu(t, db)

	w := performRequest(t, router, "GET", "/menus", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)

	resp := decodeResponse(t, w)
	data := resp["data"].([]interface{})
	// Keripik Singkong is unavailable and must not be listed.
	assert.Len(t, data, 3)

	// Sorted by category then name: beverage before main_course, and within
	// main_course Gudeg before Rendang.
	first := data[0].(map[string]interface{})
	second := data[1].(map[string]interface{})
	third := data[2].(map[string]interface{})
	assert.Equal(t, "Es Teh Manis", first["name"])
	assert.Equal(t, "Nasi Gudeg", second["name"])
	assert.Equal(t, "Nasi Rendang", third["name"])

	// Price is a JSON number.
	assert.Equal(t, 5000.0, first["price"])
}

func TestCreateMenuItemValidation(t *testing.T) {
	db := setupTestDB(t)
	router := setupMenuRouter(db)
	_, token := createUser(t, db, "manager1", models.RoleCanteenManager)

	cases := []struct {
		name    string
		payload map[string]interface{}
	}{
		{"non-positive price", map[string]interface{}{
			"name": "Bakso", "price": -1000, "category": "main_course", "stock_quantity": 10,
		}},
		{"negative stock", map[string]interface{}{
			"name": "Bakso", "price": 12000, "category": "main_course", "stock_quantity": -5,
		}},
		{"unknown category", map[string]interface{}{
			"name": "Bakso", "price": 12000, "category": "sides", "stock_quantity": 10,
		}},
	}

	for _, tc := range cases {
		w := performRequest(t, router, "POST", "/manager/menus", tc.payload, token)
		assert.Equalf(t, http.StatusBadRequest, w.Code, "case %s", tc.name)
	}

	var count int64
	db.Model(&models.MenuItem{}).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestCreateAndUpdateMenuItem(t *testing.T) {
	db := setupTestDB(t)
	router := setupMenuRouter(db)
	_, token := createUser(t, db, "manager1", models.RoleCanteenManager)

	w := performRequest(t, router, "POST", "/manager/menus", map[string]interface{}{
		"name":           "Bakso",
		"description":    "Beef meatball soup",
		"price":          12000,
		"category":       "main_course",
		"stock_quantity": 10,
	}, token)
	assert.Equal(t, http.StatusCreated, w.Code)

	resp := decodeResponse(t, w)
	item := resp["data"].(map[string]interface{})
	assert.Equal(t, true, item["is_available"])
	id := int(item["id"].(float64))

	// Toggle availability and bump the price.
	w = performRequest(t, router, "PATCH", "/manager/menus/"+itoa(id), map[string]interface{}{
		"is_available": false,
		"price":        13000,
	}, token)
	assert.Equal(t, http.StatusOK, w.Code)

	var updated models.MenuItem
	assert.NoError(t, db.First(&updated, id).Error)
	assert.False(t, updated.IsAvailable)
	assert.Equal(t, 13000.0, updated.Price)
	// Untouched fields stay put.
	assert.Equal(t, "Bakso", updated.Name)
	assert.Equal(t, 10, updated.StockQuantity)
}

func TestMenuMutationRequiresManager(t *testing.T) {
	db := setupTestDB(t)
	router := setupMenuRouter(db)
	_, studentToken := createUser(t, db, "student1", models.RoleStudent)

	w := performRequest(t, router, "POST", "/manager/menus", map[string]interface{}{
		"name": "Bakso", "price": 12000, "category": "main_course", "stock_quantity": 10,
	}, studentToken)
	assert.Equal(t, http.StatusForbidden, w.Code)
}
