package models

import "time"

// Transaction types. Purchase amounts are stored negative, topup and refund
// amounts positive, so a student's balance equals the sum of their rows.
const (
	TransactionTopup    = "topup"
	TransactionPurchase = "purchase"
	TransactionRefund   = "refund"
)

type Transaction struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	StudentID   uint      `gorm:"not null;index" json:"student_id"`
	Student     Student   `gorm:"foreignKey:StudentID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
	OrderID     *uint     `gorm:"index" json:"order_id"`
	Order       *Order    `gorm:"foreignKey:OrderID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
	Type        string    `gorm:"type:varchar(20);not null;index" json:"type"`
	Amount      float64   `gorm:"type:decimal(10,2);not null" json:"amount"`
	Description *string   `gorm:"type:text" json:"description"`
	CreatedAt   time.Time `gorm:"not null" json:"created_at"`
}

// IsValidTransactionType reports whether t is a known transaction type.
func IsValidTransactionType(t string) bool {
	switch t {
	case TransactionTopup, TransactionPurchase, TransactionRefund:
		return true
	}
	return false
}
