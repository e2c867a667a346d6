package database

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/ekantin/canteen-app/models"
)

func strPtr(s string) *string { return &s }

// Seed inserts the demo accounts and menu for an empty database. It is not
// idempotent: running it against a seeded database fails on the username and
// email unique constraints.
func Seed(db *gorm.DB) error {
	hashed, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	hash := string(hashed)

	users := []models.User{
		{Username: "student1", Email: "student1@school.edu", PasswordHash: hash, Role: models.RoleStudent, FullName: "Sari Indah", Phone: strPtr("081234567890")},
		{Username: "parent1", Email: "parent1@email.com", PasswordHash: hash, Role: models.RoleParent, FullName: "Budi Santoso", Phone: strPtr("081234567891")},
		{Username: "manager1", Email: "manager1@school.edu", PasswordHash: hash, Role: models.RoleCanteenManager, FullName: "Chef Maria", Phone: strPtr("081234567892")},
		{Username: "admin1", Email: "admin1@school.edu", PasswordHash: hash, Role: models.RoleAdmin, FullName: "Dr. Ahmad", Phone: strPtr("081234567893")},
	}

	return db.Transaction(func(tx *gorm.DB) error {
		for i := range users {
			if err := tx.Create(&users[i]).Error; err != nil {
				return fmt.Errorf("seeding user %s: %w", users[i].Username, err)
			}
		}

		limit := 25000.0
		student := models.Student{
			UserID:        users[0].ID,
			StudentID:     "STD2024001",
			ClassName:     "12 IPA 1",
			Balance:       50000,
			SpendingLimit: &limit,
		}
		if err := tx.Create(&student).Error; err != nil {
			return fmt.Errorf("seeding student: %w", err)
		}

		link := models.ParentStudent{
			ParentID:  users[1].ID,
			StudentID: student.ID,
		}
		if err := tx.Create(&link).Error; err != nil {
			return fmt.Errorf("seeding parent link: %w", err)
		}

		items := []models.MenuItem{
			{Name: "Nasi Gudeg", Description: strPtr("Traditional Javanese dish with gudeg, chicken, and rice"), Price: 15000, Category: models.CategoryMainCourse, IsAvailable: true, StockQuantity: 25},
			{Name: "Nasi Rendang", Description: strPtr("Spicy beef rendang with steamed rice"), Price: 18000, Category: models.CategoryMainCourse, IsAvailable: true, StockQuantity: 20},
			{Name: "Keripik Singkong", Description: strPtr("Crispy cassava chips with spicy seasoning"), Price: 8000, Category: models.CategorySnack, IsAvailable: true, StockQuantity: 50},
			{Name: "Es Teh Manis", Description: strPtr("Sweet iced tea, refreshing and traditional"), Price: 5000, Category: models.CategoryBeverage, IsAvailable: true, StockQuantity: 100},
			{Name: "Es Cendol", Description: strPtr("Traditional Indonesian dessert with coconut milk"), Price: 10000, Category: models.CategoryDessert, IsAvailable: true, StockQuantity: 30},
		}
		for i := range items {
			if err := tx.Create(&items[i]).Error; err != nil {
				return fmt.Errorf("seeding menu item %s: %w", items[i].Name, err)
			}
		}

		return nil
	})
}
