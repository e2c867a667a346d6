package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/ekantin/canteen-app/display"
	"github.com/ekantin/canteen-app/models"
	"github.com/ekantin/canteen-app/utils"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// DisplayHandler upgrades the connection and streams canteen events to
// manager and admin dashboards.
func DisplayHandler(c *gin.Context) {
	roleInterface, exists := c.Get("role")
	if !exists {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}
	role := roleInterface.(string)

	if !models.IsStaff(role) {
		c.AbortWithStatus(http.StatusForbidden)
		return
	}

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	display.RegisterClient(ws, role)

	// A fresh display starts from the orders currently waiting at the counter.
	if db := utils.GetDB(); db != nil {
		var ready []models.Order
		db.Preload("OrderItems").Preload("OrderItems.MenuItem").
			Where("status = ?", models.OrderStatusReady).
			Order("pickup_time asc").
			Find(&ready)
		display.SendReadyOrders(ws, ready)
	}

	for {
		if _, _, err := ws.ReadMessage(); err != nil {
			break
		}
	}

	display.UnregisterClient(ws)
}
