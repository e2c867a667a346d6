package services

import (
	"crypto/sha512"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/coreapi"
	"gorm.io/gorm"

	"github.com/ekantin/canteen-app/display"
	"github.com/ekantin/canteen-app/models"
	"github.com/ekantin/canteen-app/utils"
)

// How long a QRIS top-up stays payable before the expiry checker voids it.
const topupExpiry = 15 * time.Minute

var ErrTopupNotPending = errors.New("top-up is not pending")

// TopupService creates QRIS balance top-ups through Midtrans and settles
// them from gateway notifications.
type TopupService struct {
	db        *gorm.DB
	client    coreapi.Client
	serverKey string
}

func NewTopupService(db *gorm.DB) *TopupService {
	serverKey := os.Getenv("MIDTRANS_SERVER_KEY")
	env := midtrans.Sandbox
	if os.Getenv("MIDTRANS_ENV") == "production" {
		env = midtrans.Production
	}

	var client coreapi.Client
	client.New(serverKey, env)

	return &TopupService{
		db:        db,
		client:    client,
		serverKey: serverKey,
	}
}

// CreateQRISTopup charges a QRIS transaction at the gateway and records a
// pending top-up carrying the QR code to present to the payer.
func (ts *TopupService) CreateQRISTopup(student *models.Student, amount float64) (*models.TopupPayment, error) {
	ref := fmt.Sprintf("TOPUP-%d-%s", student.ID, uuid.NewString()[:8])

	chargeReq := &coreapi.ChargeReq{
		PaymentType: coreapi.PaymentTypeQris,
		TransactionDetails: midtrans.TransactionDetails{
			OrderID:  ref,
			GrossAmt: int64(amount),
		},
		Items: &[]midtrans.ItemDetails{{
			ID:    ref,
			Price: int64(amount),
			Qty:   1,
			Name:  fmt.Sprintf("Balance top-up %s", student.StudentID),
		}},
	}

	resp, chargeErr := ts.client.ChargeTransaction(chargeReq)
	if chargeErr != nil {
		return nil, fmt.Errorf("gateway charge failed: %w", chargeErr)
	}

	qrImageURL := ""
	for _, action := range resp.Actions {
		if action.Name == "generate-qr-code" {
			qrImageURL = action.URL
			break
		}
	}

	expiredAt := time.Now().Add(topupExpiry)
	topup := models.TopupPayment{
		StudentID:   student.ID,
		Amount:      amount,
		Status:      models.TopupStatusPending,
		ReferenceID: ref,
		QRCode:      resp.QRString,
		QRImageURL:  qrImageURL,
		ExpiredAt:   &expiredAt,
	}

	if err := ts.db.Create(&topup).Error; err != nil {
		return nil, err
	}

	utils.InfoLogger.Printf("QRIS top-up %s created for student %d (%s)", ref, student.ID, utils.FormatRupiah(amount))

	return &topup, nil
}

// VerifySignature checks a Midtrans notification signature:
// sha512(order_id + status_code + gross_amount + server key).
func (ts *TopupService) VerifySignature(orderID, statusCode, grossAmount, signature string) bool {
	sum := sha512.Sum512([]byte(orderID + statusCode + grossAmount + ts.serverKey))
	return hex.EncodeToString(sum[:]) == signature
}

// SettleTopup credits the student's balance for a confirmed top-up and
// records the topup transaction, all in one database transaction.
func (ts *TopupService) SettleTopup(referenceID string) (*models.TopupPayment, error) {
	var topup models.TopupPayment

	err := ts.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("reference_id = ?", referenceID).First(&topup).Error; err != nil {
			return err
		}
		if topup.Status != models.TopupStatusPending {
			return ErrTopupNotPending
		}

		var student models.Student
		if err := tx.First(&student, topup.StudentID).Error; err != nil {
			return err
		}

		student.Balance += topup.Amount
		if err := tx.Save(&student).Error; err != nil {
			return err
		}

		desc := fmt.Sprintf("QRIS top-up %s", referenceID)
		record := models.Transaction{
			StudentID:   topup.StudentID,
			Type:        models.TransactionTopup,
			Amount:      topup.Amount,
			Description: &desc,
		}
		if err := tx.Create(&record).Error; err != nil {
			return err
		}

		now := time.Now()
		topup.Status = models.TopupStatusSuccess
		topup.PaymentTime = &now
		return tx.Save(&topup).Error
	})
	if err != nil {
		return nil, err
	}

	display.BroadcastTopupSuccess(topup)
	utils.InfoLogger.Printf("Top-up %s settled, student %d credited %s", referenceID, topup.StudentID, utils.FormatRupiah(topup.Amount))

	return &topup, nil
}

// MarkFailed records a denied or cancelled gateway payment.
func (ts *TopupService) MarkFailed(referenceID string) error {
	return ts.db.Model(&models.TopupPayment{}).
		Where("reference_id = ? AND status = ?", referenceID, models.TopupStatusPending).
		Update("status", models.TopupStatusFailed).Error
}
