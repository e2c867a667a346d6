package models

import "time"

type Student struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	UserID        uint      `gorm:"not null;index" json:"user_id"`
	User          User      `gorm:"foreignKey:UserID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
	StudentID     string    `gorm:"type:varchar(50);unique;not null" json:"student_id"`
	ClassName     string    `gorm:"type:varchar(50);not null" json:"class_name"`
	Balance       float64   `gorm:"type:decimal(10,2);not null;default:0.00" json:"balance"`
	SpendingLimit *float64  `gorm:"type:decimal(10,2)" json:"spending_limit"`
	CreatedAt     time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt     time.Time `gorm:"not null" json:"updated_at"`
}
