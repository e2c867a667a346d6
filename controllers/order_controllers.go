package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ekantin/canteen-app/display"
	"github.com/ekantin/canteen-app/models"
	"github.com/ekantin/canteen-app/services"
	"github.com/ekantin/canteen-app/utils"
)

// Business rule violations on order placement and status changes.
var (
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrInsufficientStock   = errors.New("insufficient stock")
	ErrItemUnavailable     = errors.New("menu item not available")
	ErrSpendingLimit       = errors.New("order exceeds spending limit")
	ErrInvalidTransition   = errors.New("invalid order status transition")
)

type OrderController struct {
	DB    *gorm.DB
	Cache *services.MenuCache
}

func NewOrderController(db *gorm.DB, cache *services.MenuCache) *OrderController {
	return &OrderController{DB: db, Cache: cache}
}

// CreateOrder places a pre-order for the authenticated student. Stock,
// spending limit and balance are all checked and applied inside one
// transaction; any failure rolls everything back.
func (oc *OrderController) CreateOrder(c *gin.Context) {
	userID := c.GetUint("user_id")

	student, err := studentForUser(oc.DB, userID)
	if err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("no student record for this account"))
		return
	}

	type ItemReq struct {
		MenuItemID uint `json:"menu_item_id" binding:"required"`
		Quantity   int  `json:"quantity" binding:"required"`
	}
	type ReqBody struct {
		Items []ItemReq `json:"items" binding:"required,min=1"`
	}

	var body ReqBody
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	for _, item := range body.Items {
		if item.Quantity <= 0 {
			utils.RespondError(c, http.StatusBadRequest, errors.New("quantity must be positive"))
			return
		}
	}

	var order models.Order

	err = oc.DB.Transaction(func(tx *gorm.DB) error {
		// Re-read the student inside the transaction so the balance check
		// and deduction see the same row.
		var s models.Student
		if err := tx.First(&s, student.ID).Error; err != nil {
			return err
		}

		order = models.Order{
			StudentID: s.ID,
			Status:    models.OrderStatusPending,
		}
		if err := tx.Create(&order).Error; err != nil {
			return err
		}

		var total float64
		for _, item := range body.Items {
			var menu models.MenuItem
			if err := tx.First(&menu, item.MenuItemID).Error; err != nil {
				return fmt.Errorf("menu item %d not found", item.MenuItemID)
			}
			if !menu.IsAvailable {
				return fmt.Errorf("%w: %q", ErrItemUnavailable, menu.Name)
			}
			if menu.StockQuantity < item.Quantity {
				return fmt.Errorf("%w for %q", ErrInsufficientStock, menu.Name)
			}

			menu.StockQuantity -= item.Quantity
			if err := tx.Save(&menu).Error; err != nil {
				return err
			}

			lineTotal := float64(item.Quantity) * menu.Price
			total += lineTotal

			orderItem := models.OrderItem{
				OrderID:    order.ID,
				MenuItemID: menu.ID,
				Quantity:   item.Quantity,
				UnitPrice:  menu.Price,
				TotalPrice: lineTotal,
			}
			if err := tx.Create(&orderItem).Error; err != nil {
				return err
			}
		}

		if s.SpendingLimit != nil && total > *s.SpendingLimit {
			return ErrSpendingLimit
		}
		if s.Balance < total {
			return ErrInsufficientBalance
		}

		s.Balance -= total
		if err := tx.Save(&s).Error; err != nil {
			return err
		}

		order.TotalAmount = total
		if err := tx.Save(&order).Error; err != nil {
			return err
		}

		desc := fmt.Sprintf("Order #%d (%s)", order.ID, utils.FormatRupiah(total))
		purchase := models.Transaction{
			StudentID:   s.ID,
			OrderID:     &order.ID,
			Type:        models.TransactionPurchase,
			Amount:      -total,
			Description: &desc,
		}
		return tx.Create(&purchase).Error
	})
	if err != nil {
		code := http.StatusInternalServerError
		if errors.Is(err, ErrInsufficientBalance) || errors.Is(err, ErrInsufficientStock) ||
			errors.Is(err, ErrSpendingLimit) || errors.Is(err, ErrItemUnavailable) {
			code = http.StatusUnprocessableEntity
		}
		utils.RespondError(c, code, err)
		return
	}

	oc.Cache.Invalidate(c.Request.Context())

	if err := oc.DB.Preload("OrderItems").Preload("OrderItems.MenuItem").First(&order, order.ID).Error; err == nil {
		display.BroadcastOrderUpdate(order)
	}

	utils.InfoLogger.Printf("Order #%d placed by student %d, total %s", order.ID, order.StudentID, utils.FormatRupiah(order.TotalAmount))

	utils.RespondJSON(c, http.StatusCreated, "Order created", order)
}

// GetOrders lists orders scoped by role: students their own, parents their
// linked students', staff everything.
func (oc *OrderController) GetOrders(c *gin.Context) {
	userID := c.GetUint("user_id")
	role := c.GetString("role")

	query := oc.DB.Preload("OrderItems").Preload("OrderItems.MenuItem").Order("created_at DESC")
	if status := c.Query("status"); status != "" {
		if !models.IsValidOrderStatus(status) {
			utils.RespondError(c, http.StatusBadRequest, errors.New("invalid status filter"))
			return
		}
		query = query.Where("status = ?", status)
	}

	switch role {
	case models.RoleStudent:
		student, err := studentForUser(oc.DB, userID)
		if err != nil {
			utils.RespondError(c, http.StatusNotFound, errors.New("no student record for this account"))
			return
		}
		query = query.Where("student_id = ?", student.ID)
	case models.RoleParent:
		var studentIDs []uint
		oc.DB.Model(&models.ParentStudent{}).
			Where("parent_id = ?", userID).
			Pluck("student_id", &studentIDs)
		query = query.Where("student_id IN ?", studentIDs)
	}

	var orders []models.Order
	if err := query.Find(&orders).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "List of orders", orders)
}

// GetOrderByID returns one order with its items, after an ownership check.
func (oc *OrderController) GetOrderByID(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("order_id"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid order id"))
		return
	}

	var order models.Order
	if err := oc.DB.Preload("OrderItems").Preload("OrderItems.MenuItem").First(&order, id).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	userID := c.GetUint("user_id")
	role := c.GetString("role")
	if !canAccessStudent(oc.DB, userID, role, order.StudentID) {
		utils.RespondError(c, http.StatusForbidden, errors.New("not allowed to view this order"))
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Order detail", order)
}

// UpdateOrderStatus advances an order through its lifecycle:
// pending -> confirmed -> preparing -> ready -> completed, with cancellation
// allowed from any non-terminal state. Reaching ready assigns the pickup QR
// code; cancelling refunds the balance and restores stock.
func (oc *OrderController) UpdateOrderStatus(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("order_id"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid order id"))
		return
	}

	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if !models.IsValidOrderStatus(req.Status) {
		utils.RespondError(c, http.StatusBadRequest, errors.New("unknown order status"))
		return
	}

	var order models.Order

	err = oc.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("OrderItems").First(&order, id).Error; err != nil {
			return err
		}

		if !order.CanTransitionTo(req.Status) {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, order.Status, req.Status)
		}

		switch req.Status {
		case models.OrderStatusReady:
			code := uuid.NewString()
			now := time.Now()
			order.QRCode = &code
			order.PickupTime = &now
		case models.OrderStatusCancelled:
			if err := refundOrder(tx, &order); err != nil {
				return err
			}
		}

		order.Status = req.Status
		return tx.Save(&order).Error
	})
	if err != nil {
		code := http.StatusInternalServerError
		if errors.Is(err, ErrInvalidTransition) {
			code = http.StatusUnprocessableEntity
		} else if errors.Is(err, gorm.ErrRecordNotFound) {
			code = http.StatusNotFound
		}
		utils.RespondError(c, code, err)
		return
	}

	if order.Status == models.OrderStatusCancelled {
		oc.Cache.Invalidate(c.Request.Context())
	}

	display.BroadcastOrderUpdate(order)
	if order.Status == models.OrderStatusReady {
		display.BroadcastOrderReady(order)
	}

	utils.InfoLogger.Printf("Order #%d moved to %s", order.ID, order.Status)

	utils.RespondJSON(c, http.StatusOK, "Order status updated", order)
}

// PickupOrder verifies a QR code at the counter and completes the order.
func (oc *OrderController) PickupOrder(c *gin.Context) {
	var req struct {
		QRCode string `json:"qr_code" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var order models.Order
	if err := oc.DB.Preload("OrderItems").Where("qr_code = ?", req.QRCode).First(&order).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("unknown pickup code"))
		return
	}

	if order.Status != models.OrderStatusReady {
		utils.RespondError(c, http.StatusUnprocessableEntity,
			fmt.Errorf("order #%d is %s, not ready for pickup", order.ID, order.Status))
		return
	}

	order.Status = models.OrderStatusCompleted
	if err := oc.DB.Save(&order).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	display.BroadcastOrderPickedUp(order)

	utils.InfoLogger.Printf("Order #%d picked up", order.ID)

	utils.RespondJSON(c, http.StatusOK, "Order picked up", order)
}

// refundOrder credits the order amount back to the student, restores menu
// stock and records a refund transaction. Runs inside the caller's tx.
func refundOrder(tx *gorm.DB, order *models.Order) error {
	var student models.Student
	if err := tx.First(&student, order.StudentID).Error; err != nil {
		return err
	}

	student.Balance += order.TotalAmount
	if err := tx.Save(&student).Error; err != nil {
		return err
	}

	for _, item := range order.OrderItems {
		var menu models.MenuItem
		if err := tx.First(&menu, item.MenuItemID).Error; err != nil {
			continue
		}
		menu.StockQuantity += item.Quantity
		if err := tx.Save(&menu).Error; err != nil {
			return err
		}
	}

	desc := fmt.Sprintf("Refund for cancelled order #%d", order.ID)
	refund := models.Transaction{
		StudentID:   order.StudentID,
		OrderID:     &order.ID,
		Type:        models.TransactionRefund,
		Amount:      order.TotalAmount,
		Description: &desc,
	}
	return tx.Create(&refund).Error
}
