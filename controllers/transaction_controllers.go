package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/ekantin/canteen-app/models"
	"github.com/ekantin/canteen-app/services"
	"github.com/ekantin/canteen-app/utils"
)

type TransactionController struct {
	DB     *gorm.DB
	Topups *services.TopupService
}

func NewTransactionController(db *gorm.DB, topups *services.TopupService) *TransactionController {
	return &TransactionController{DB: db, Topups: topups}
}

func (tc *TransactionController) studentParam(c *gin.Context) (*models.Student, bool) {
	id, err := strconv.Atoi(c.Param("student_id"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid student id"))
		return nil, false
	}

	var student models.Student
	if err := tc.DB.First(&student, id).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("student not found"))
		return nil, false
	}

	return &student, true
}

// Topup credits a student's balance directly (parent or admin). The balance
// change and the transaction record are written atomically.
func (tc *TransactionController) Topup(c *gin.Context) {
	student, ok := tc.studentParam(c)
	if !ok {
		return
	}

	userID := c.GetUint("user_id")
	role := c.GetString("role")
	if role == models.RoleParent && !canAccessStudent(tc.DB, userID, role, student.ID) {
		utils.RespondError(c, http.StatusForbidden, errors.New("student is not linked to this parent"))
		return
	}

	var req struct {
		Amount      float64 `json:"amount" binding:"required"`
		Description *string `json:"description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if req.Amount <= 0 {
		utils.RespondError(c, http.StatusBadRequest, errors.New("amount must be positive"))
		return
	}

	err := tc.DB.Transaction(func(tx *gorm.DB) error {
		var s models.Student
		if err := tx.First(&s, student.ID).Error; err != nil {
			return err
		}

		s.Balance += req.Amount
		if err := tx.Save(&s).Error; err != nil {
			return err
		}
		student = &s

		desc := req.Description
		if desc == nil {
			d := fmt.Sprintf("Balance top-up (%s)", utils.FormatRupiah(req.Amount))
			desc = &d
		}
		record := models.Transaction{
			StudentID:   s.ID,
			Type:        models.TransactionTopup,
			Amount:      req.Amount,
			Description: desc,
		}
		return tx.Create(&record).Error
	})
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.InfoLogger.Printf("Student %d topped up %s by user %d", student.ID, utils.FormatRupiah(req.Amount), userID)

	utils.RespondJSON(c, http.StatusOK, "Balance topped up", gin.H{
		"student_id": student.ID,
		"balance":    student.Balance,
	})
}

// UpdateSpendingLimit sets or clears the per-order spending cap a parent
// places on a student.
func (tc *TransactionController) UpdateSpendingLimit(c *gin.Context) {
	student, ok := tc.studentParam(c)
	if !ok {
		return
	}

	userID := c.GetUint("user_id")
	role := c.GetString("role")
	if role == models.RoleParent && !canAccessStudent(tc.DB, userID, role, student.ID) {
		utils.RespondError(c, http.StatusForbidden, errors.New("student is not linked to this parent"))
		return
	}

	var req struct {
		SpendingLimit *float64 `json:"spending_limit"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if req.SpendingLimit != nil && *req.SpendingLimit <= 0 {
		utils.RespondError(c, http.StatusBadRequest, errors.New("spending_limit must be positive or null"))
		return
	}

	student.SpendingLimit = req.SpendingLimit
	if err := tc.DB.Save(student).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Spending limit updated", student)
}

// GetTransactions returns a student's transaction history, newest first.
func (tc *TransactionController) GetTransactions(c *gin.Context) {
	student, ok := tc.studentParam(c)
	if !ok {
		return
	}

	userID := c.GetUint("user_id")
	role := c.GetString("role")
	if !canAccessStudent(tc.DB, userID, role, student.ID) {
		utils.RespondError(c, http.StatusForbidden, errors.New("not allowed to view these transactions"))
		return
	}

	query := tc.DB.Where("student_id = ?", student.ID).Order("created_at DESC")
	if txType := c.Query("type"); txType != "" {
		if !models.IsValidTransactionType(txType) {
			utils.RespondError(c, http.StatusBadRequest, errors.New("invalid transaction type"))
			return
		}
		query = query.Where("type = ?", txType)
	}

	var transactions []models.Transaction
	if err := query.Find(&transactions).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Transaction history", transactions)
}

// GetBalance returns the student's current balance and spending limit.
func (tc *TransactionController) GetBalance(c *gin.Context) {
	student, ok := tc.studentParam(c)
	if !ok {
		return
	}

	userID := c.GetUint("user_id")
	role := c.GetString("role")
	if !canAccessStudent(tc.DB, userID, role, student.ID) {
		utils.RespondError(c, http.StatusForbidden, errors.New("not allowed to view this balance"))
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Student balance", gin.H{
		"student_id":     student.ID,
		"balance":        student.Balance,
		"spending_limit": student.SpendingLimit,
	})
}

// CreateQRISTopup opens a gateway top-up: the student's balance is only
// credited when the payment notification arrives.
func (tc *TransactionController) CreateQRISTopup(c *gin.Context) {
	student, ok := tc.studentParam(c)
	if !ok {
		return
	}

	userID := c.GetUint("user_id")
	role := c.GetString("role")
	if !canAccessStudent(tc.DB, userID, role, student.ID) {
		utils.RespondError(c, http.StatusForbidden, errors.New("student is not linked to this account"))
		return
	}

	var req struct {
		Amount float64 `json:"amount" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if req.Amount <= 0 {
		utils.RespondError(c, http.StatusBadRequest, errors.New("amount must be positive"))
		return
	}

	topup, err := tc.Topups.CreateQRISTopup(student, req.Amount)
	if err != nil {
		utils.RespondError(c, http.StatusBadGateway, err)
		return
	}

	utils.RespondJSON(c, http.StatusCreated, "Top-up created, awaiting payment", topup)
}

// HandleTopupCallback processes the Midtrans payment notification.
func (tc *TransactionController) HandleTopupCallback(c *gin.Context) {
	var notif struct {
		OrderID           string `json:"order_id"`
		TransactionStatus string `json:"transaction_status"`
		StatusCode        string `json:"status_code"`
		GrossAmount       string `json:"gross_amount"`
		SignatureKey      string `json:"signature_key"`
		FraudStatus       string `json:"fraud_status"`
	}
	if err := c.ShouldBindJSON(&notif); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	if !tc.Topups.VerifySignature(notif.OrderID, notif.StatusCode, notif.GrossAmount, notif.SignatureKey) {
		utils.RespondError(c, http.StatusUnauthorized, errors.New("invalid notification signature"))
		return
	}

	switch notif.TransactionStatus {
	case "settlement", "capture":
		if notif.FraudStatus == "challenge" || notif.FraudStatus == "deny" {
			utils.RespondJSON(c, http.StatusOK, "Notification acknowledged", nil)
			return
		}
		if _, err := tc.Topups.SettleTopup(notif.OrderID); err != nil {
			if errors.Is(err, services.ErrTopupNotPending) {
				// Duplicate notification; already settled.
				utils.RespondJSON(c, http.StatusOK, "Notification acknowledged", nil)
				return
			}
			utils.RespondError(c, http.StatusInternalServerError, err)
			return
		}
	case "deny", "cancel", "expire", "failure":
		if err := tc.Topups.MarkFailed(notif.OrderID); err != nil {
			utils.RespondError(c, http.StatusInternalServerError, err)
			return
		}
	}

	utils.RespondJSON(c, http.StatusOK, "Notification processed", nil)
}
