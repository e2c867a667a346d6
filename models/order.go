package models

import "time"

// Order statuses
const (
	OrderStatusPending   = "pending"
	OrderStatusConfirmed = "confirmed"
	OrderStatusPreparing = "preparing"
	OrderStatusReady     = "ready"
	OrderStatusCompleted = "completed"
	OrderStatusCancelled = "cancelled"
)

type Order struct {
	ID          uint        `gorm:"primaryKey" json:"id"`
	StudentID   uint        `gorm:"not null;index" json:"student_id"`
	Student     Student     `gorm:"foreignKey:StudentID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
	TotalAmount float64     `gorm:"type:decimal(10,2);not null;default:0.00" json:"total_amount"`
	Status      string      `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	QRCode      *string     `gorm:"type:varchar(255);index" json:"qr_code"`
	PickupTime  *time.Time  `json:"pickup_time"`
	CreatedAt   time.Time   `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time   `gorm:"not null" json:"updated_at"`
	OrderItems  []OrderItem `gorm:"foreignKey:OrderID" json:"order_items"`
}

// orderTransitions lists the allowed next statuses for each status.
// Preparation advances one step at a time; cancellation is allowed from any
// state that has not reached the counter yet.
var orderTransitions = map[string][]string{
	OrderStatusPending:   {OrderStatusConfirmed, OrderStatusCancelled},
	OrderStatusConfirmed: {OrderStatusPreparing, OrderStatusCancelled},
	OrderStatusPreparing: {OrderStatusReady, OrderStatusCancelled},
	OrderStatusReady:     {OrderStatusCompleted, OrderStatusCancelled},
}

// CanTransitionTo reports whether the order may move to next from its
// current status. Completed and cancelled orders are terminal.
func (o *Order) CanTransitionTo(next string) bool {
	for _, allowed := range orderTransitions[o.Status] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the order is in a final state.
func (o *Order) IsTerminal() bool {
	return o.Status == OrderStatusCompleted || o.Status == OrderStatusCancelled
}

// IsValidOrderStatus reports whether status is a known order status.
func IsValidOrderStatus(status string) bool {
	switch status {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusPreparing,
		OrderStatusReady, OrderStatusCompleted, OrderStatusCancelled:
		return true
	}
	return false
}
