package models

import "time"

// Topup payment statuses
const (
	TopupStatusPending = "pending"
	TopupStatusSuccess = "success"
	TopupStatusFailed  = "failed"
	TopupStatusExpired = "expired"
)

// TopupPayment is a balance top-up paid through the payment gateway (QRIS).
// The student's balance is only credited once the gateway confirms the
// payment; direct top-ups by parents or admins skip this table entirely.
type TopupPayment struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	StudentID   uint       `gorm:"not null;index" json:"student_id"`
	Student     Student    `gorm:"foreignKey:StudentID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
	Amount      float64    `gorm:"type:decimal(10,2);not null" json:"amount"`
	Status      string     `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	ReferenceID string     `gorm:"type:varchar(100);unique;not null" json:"reference_id"`
	QRCode      string     `gorm:"type:text" json:"qr_code"`
	QRImageURL  string     `gorm:"type:varchar(500)" json:"qr_image_url"`
	PaymentTime *time.Time `json:"payment_time"`
	ExpiredAt   *time.Time `json:"expired_at"`
	CreatedAt   time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"not null" json:"updated_at"`
}
