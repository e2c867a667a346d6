package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/ekantin/canteen-app/models"
)

func openSeedDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}

	err = db.AutoMigrate(
		&models.User{},
		&models.Student{},
		&models.ParentStudent{},
		&models.MenuItem{},
		&models.Order{},
		&models.OrderItem{},
		&models.Transaction{},
		&models.TopupPayment{},
	)
	if err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	return db
}

func TestSeedCreatesDemoData(t *testing.T) {
	db := openSeedDB(t)

	assert.NoError(t, Seed(db))

	var userCount, menuCount int64
	db.Model(&models.User{}).Count(&userCount)
	db.Model(&models.MenuItem{}).Count(&menuCount)
	assert.Equal(t, int64(4), userCount)
	assert.Equal(t, int64(5), menuCount)

	// The demo password works for every seeded account.
	var user models.User
	assert.NoError(t, db.Where("username = ?", "student1").First(&user).Error)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("password123")))

	var student models.Student
	assert.NoError(t, db.Where("student_id = ?", "STD2024001").First(&student).Error)
	assert.Equal(t, user.ID, student.UserID)
	assert.Equal(t, 50000.0, student.Balance)
	if assert.NotNil(t, student.SpendingLimit) {
		assert.Equal(t, 25000.0, *student.SpendingLimit)
	}

	var parent models.User
	assert.NoError(t, db.Where("username = ?", "parent1").First(&parent).Error)
	var linkCount int64
	db.Model(&models.ParentStudent{}).
		Where("parent_id = ? AND student_id = ?", parent.ID, student.ID).
		Count(&linkCount)
	assert.Equal(t, int64(1), linkCount)
}

func TestSeedFailsOnSeededDatabase(t *testing.T) {
	db := openSeedDB(t)

	assert.NoError(t, Seed(db))
	assert.Error(t, Seed(db))

	// The failed second run leaves no partial rows behind.
	var userCount int64
	db.Model(&models.User{}).Count(&userCount)
	assert.Equal(t, int64(4), userCount)
}
