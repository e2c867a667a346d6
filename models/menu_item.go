package models

import "time"

// Menu categories
const (
	CategoryMainCourse = "main_course"
	CategorySnack      = "snack"
	CategoryBeverage   = "beverage"
	CategoryDessert    = "dessert"
)

type MenuItem struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Name          string    `gorm:"type:varchar(255);not null" json:"name"`
	Description   *string   `gorm:"type:text" json:"description"`
	Price         float64   `gorm:"type:decimal(10,2);not null" json:"price"`
	Category      string    `gorm:"type:varchar(20);not null;index" json:"category"`
	ImageURL      *string   `gorm:"type:varchar(500)" json:"image_url"`
	IsAvailable   bool      `gorm:"not null;default:true" json:"is_available"`
	StockQuantity int       `gorm:"not null;default:0" json:"stock_quantity"`
	CreatedAt     time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt     time.Time `gorm:"not null" json:"updated_at"`
}

// IsValidCategory reports whether category is one of the known menu categories.
func IsValidCategory(category string) bool {
	switch category {
	case CategoryMainCourse, CategorySnack, CategoryBeverage, CategoryDessert:
		return true
	}
	return false
}
