package models

import "time"

// User roles
const (
	RoleStudent        = "student"
	RoleParent         = "parent"
	RoleCanteenManager = "canteen_manager"
	RoleAdmin          = "admin"
)

type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"type:varchar(100);unique;not null" json:"username"`
	Email        string    `gorm:"type:varchar(255);unique;not null" json:"email"`
	PasswordHash string    `gorm:"type:varchar(255);not null" json:"-"`
	Role         string    `gorm:"type:varchar(20);not null" json:"role"`
	FullName     string    `gorm:"type:varchar(255);not null" json:"full_name"`
	Phone        *string   `gorm:"type:varchar(20)" json:"phone"`
	CreatedAt    time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time `gorm:"not null" json:"updated_at"`
}

// IsValidRole reports whether role is one of the four known roles.
func IsValidRole(role string) bool {
	switch role {
	case RoleStudent, RoleParent, RoleCanteenManager, RoleAdmin:
		return true
	}
	return false
}

// IsStaff reports whether role may manage the canteen (manager or admin).
func IsStaff(role string) bool {
	return role == RoleCanteenManager || role == RoleAdmin
}
