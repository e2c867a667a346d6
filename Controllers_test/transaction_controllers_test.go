package Controllers_test

import (
	"crypto/sha512"
	"encoding/hex"
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

const testServerKey = "SB-Mid-server-testkey"

func setupTransactionRouter(t *testing.T, db *gorm.DB) *gin.Engine {
	t.Helper()
	t.Setenv("MIDTRANS_SERVER_KEY", testServerKey)

	txCtrl := controllers.NewTransactionController(db, services.NewTopupService(db))

	router := gin.New()
	router.POST("/topups/callback", txCtrl.HandleTopupCallback)

	auth := router.Group("/", middlewares.AuthMiddleware())
	auth.GET("/students/:student_id/balance", txCtrl.GetBalance)
	auth.GET("/students/:student_id/transactions", txCtrl.GetTransactions)
	auth.POST("/students/:student_id/topup", middlewares.RequireRoles(models.RoleParent), txCtrl.Topup)
	auth.PATCH("/students/:student_id/spending-limit", middlewares.RequireRoles(models.RoleParent), txCtrl.UpdateSpendingLimit)

	return router
}

func linkParent(t *testing.T, db *gorm.DB, parent models.User, student models.Student) {
	t.Helper()
	if err := db.Create(&models.ParentStudent{ParentID: parent.ID, StudentID: student.ID}).Error; err != nil {
		t.Fatal(err)
	}
}

func midtransSignature(orderID, statusCode, grossAmount string) string {
	sum := sha512.Sum512([]byte(orderID + statusCode + grossAmount + testServerKey))
	return hex.EncodeToString(sum[:])
}

func TestTopupByLinkedParent(t *testing.T) {
	db := setupTestDB(t)
	router := setupTransactionRouter(t, db)

	user, _ := createUser(t, db, "student1", models.RoleStudent)
	student := createStudent(t, db, user, 10000, nil)
	parent, parentToken := createUser(t, db, "parent1", models.RoleParent)
	linkParent(t, db, parent, student)

	path := "/students/" + itoa(int(student.ID)) + "/topup"
	w := performRequest(t, router, "POST", path, map[string]interface{}{"amount": 40000}, parentToken)
	assert.Equal(t, http.StatusOK, w.Code)

	data := decodeResponse(t, w)["data"].(map[string]interface{})
	assert.Equal(t, 50000.0, data["balance"])

	var record models.Transaction
	assert.NoError(t, db.Where("student_id = ? AND type = ?", student.ID, models.TransactionTopup).First(&record).Error)
	assert.Equal(t, 40000.0, record.Amount)

	// Zero and negative amounts are rejected without touching the balance.
	w = performRequest(t, router, "POST", path, map[string]interface{}{"amount": -500}, parentToken)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var s models.Student
	db.First(&s, student.ID)
	assert.Equal(t, 50000.0, s.Balance)
}

func TestTopupRejectsUnlinkedParent(t *testing.T) {
	db := setupTestDB(t)
	router := setupTransactionRouter(t, db)

	user, _ := createUser(t, db, "student1", models.RoleStudent)
	student := createStudent(t, db, user, 10000, nil)
	_, strangerToken := createUser(t, db, "parent2", models.RoleParent)

	w := performRequest(t, router, "POST", "/students/"+itoa(int(student.ID))+"/topup",
		map[string]interface{}{"amount": 5000}, strangerToken)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestTopupAllowedForAdmin(t *testing.T) {
	db := setupTestDB(t)
	router := setupTransactionRouter(t, db)

	user, _ := createUser(t, db, "student1", models.RoleStudent)
	student := createStudent(t, db, user, 0, nil)
	_, adminToken := createUser(t, db, "admin1", models.RoleAdmin)

	w := performRequest(t, router, "POST", "/students/"+itoa(int(student.ID))+"/topup",
		map[string]interface{}{"amount": 20000}, adminToken)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestUpdateSpendingLimit(t *testing.T) {
	db := setupTestDB(t)
	router := setupTransactionRouter(t, db)

	user, _ := createUser(t, db, "student1", models.RoleStudent)
	student := createStudent(t, db, user, 10000, nil)
	parent, parentToken := createUser(t, db, "parent1", models.RoleParent)
	linkParent(t, db, parent, student)

	path := "/students/" + itoa(int(student.ID)) + "/spending-limit"

	w := performRequest(t, router, "PATCH", path, map[string]interface{}{"spending_limit": 15000}, parentToken)
	assert.Equal(t, http.StatusOK, w.Code)

	var s models.Student
	db.First(&s, student.ID)
	if assert.NotNil(t, s.SpendingLimit) {
		assert.Equal(t, 15000.0, *s.SpendingLimit)
	}

	// Null clears the cap.
	w = performRequest(t, router, "PATCH", path, map[string]interface{}{"spending_limit": nil}, parentToken)
	assert.Equal(t, http.StatusOK, w.Code)
	db.First(&s, student.ID)
	assert.Nil(t, s.SpendingLimit)

	w = performRequest(t, router, "PATCH", path, map[string]interface{}{"spending_limit": -100}, parentToken)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetTransactionsFiltersAndOrder(t *testing.T) {
	db := setupTestDB(t)
	router := setupTransactionRouter(t, db)

	user, token := createUser(t, db, "student1", models.RoleStudent)
	student := createStudent(t, db, user, 10000, nil)

	for _, rec := range []models.Transaction{
		{StudentID: student.ID, Type: models.TransactionTopup, Amount: 50000},
		{StudentID: student.ID, Type: models.TransactionPurchase, Amount: -15000},
		{StudentID: student.ID, Type: models.TransactionTopup, Amount: 20000},
	} {
		assert.NoError(t, db.Create(&rec).Error)
	}

	path := "/students/" + itoa(int(student.ID)) + "/transactions"

	w := performRequest(t, router, "GET", path, nil, token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decodeResponse(t, w)["data"].([]interface{}), 3)

	w = performRequest(t, router, "GET", path+"?type=topup", nil, token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decodeResponse(t, w)["data"].([]interface{}), 2)

	w = performRequest(t, router, "GET", path+"?type=bogus", nil, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Students cannot read each other's history.
	otherUser, otherToken := createUser(t, db, "student2", models.RoleStudent)
	createStudent(t, db, otherUser, 0, nil)
	w = performRequest(t, router, "GET", path, nil, otherToken)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestGetBalance(t *testing.T) {
	db := setupTestDB(t)
	router := setupTransactionRouter(t, db)

	user, token := createUser(t, db, "student1", models.RoleStudent)
	student := createStudent(t, db, user, 32500, floatPtr(20000))

	w := performRequest(t, router, "GET", "/students/"+itoa(int(student.ID))+"/balance", nil, token)
	assert.Equal(t, http.StatusOK, w.Code)

	data := decodeResponse(t, w)["data"].(map[string]interface{})
	assert.Equal(t, 32500.0, data["balance"])
	assert.Equal(t, 20000.0, data["spending_limit"])
}

func TestTopupCallbackSettlesPendingTopup(t *testing.T) {
	db := setupTestDB(t)
	router := setupTransactionRouter(t, db)

	user, _ := createUser(t, db, "student1", models.RoleStudent)
	student := createStudent(t, db, user, 5000, nil)

	topup := models.TopupPayment{
		StudentID:   student.ID,
		Amount:      25000,
		Status:      models.TopupStatusPending,
		ReferenceID: "TOPUP-1-abcd1234",
	}
	assert.NoError(t, db.Create(&topup).Error)

	notif := map[string]interface{}{
		"order_id":           topup.ReferenceID,
		"transaction_status": "settlement",
		"status_code":        "200",
		"gross_amount":       "25000.00",
		"signature_key":      midtransSignature(topup.ReferenceID, "200", "25000.00"),
	}

	w := performRequest(t, router, "POST", "/topups/callback", notif, "")
	assert.Equal(t, http.StatusOK, w.Code)

	var s models.Student
	db.First(&s, student.ID)
	assert.Equal(t, 30000.0, s.Balance)

	var settled models.TopupPayment
	db.First(&settled, topup.ID)
	assert.Equal(t, models.TopupStatusSuccess, settled.Status)
	assert.NotNil(t, settled.PaymentTime)

	// A duplicate notification is acknowledged without double crediting.
	w = performRequest(t, router, "POST", "/topups/callback", notif, "")
	assert.Equal(t, http.StatusOK, w.Code)
	db.First(&s, student.ID)
	assert.Equal(t, 30000.0, s.Balance)
}

func TestTopupCallbackRejectsBadSignature(t *testing.T) {
	db := setupTestDB(t)
	router := setupTransactionRouter(t, db)

	w := performRequest(t, router, "POST", "/topups/callback", map[string]interface{}{
		"order_id":           "TOPUP-1-ffff0000",
		"transaction_status": "settlement",
		"status_code":        "200",
		"gross_amount":       "10000.00",
		"signature_key":      "forged",
	}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestTopupCallbackMarksExpiredFailed(t *testing.T) {
	db := setupTestDB(t)
	router := setupTransactionRouter(t, db)

	user, _ := createUser(t, db, "student1", models.RoleStudent)
	student := createStudent(t, db, user, 5000, nil)

	topup := models.TopupPayment{
		StudentID:   student.ID,
		Amount:      10000,
		Status:      models.TopupStatusPending,
		ReferenceID: "TOPUP-1-dead4444",
	}
	assert.NoError(t, db.Create(&topup).Error)

	w := performRequest(t, router, "POST", "/topups/callback", map[string]interface{}{
		"order_id":           topup.ReferenceID,
		"transaction_status": "expire",
		"status_code":        "407",
		"gross_amount":       "10000.00",
		"signature_key":      midtransSignature(topup.ReferenceID, "407", "10000.00"),
	}, "")
	assert.Equal(t, http.StatusOK, w.Code)

	var failed models.TopupPayment
	db.First(&failed, topup.ID)
	assert.Equal(t, models.TopupStatusFailed, failed.Status)

	var s models.Student
	db.First(&s, student.ID)
	assert.Equal(t, 5000.0, s.Balance)
}
