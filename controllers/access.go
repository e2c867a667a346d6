package controllers

import (
	"github.com/ekantin/canteen-app/models"
	"gorm.io/gorm"
)

// studentForUser loads the student record owned by a user account.
func studentForUser(db *gorm.DB, userID uint) (*models.Student, error) {
	var student models.Student
	if err := db.Where("user_id = ?", userID).First(&student).Error; err != nil {
		return nil, err
	}
	return &student, nil
}

// canAccessStudent reports whether the authenticated user may read or act on
// a student: staff always, a student only on their own record, a parent only
// on linked students.
func canAccessStudent(db *gorm.DB, userID uint, role string, studentID uint) bool {
	switch role {
	case models.RoleAdmin, models.RoleCanteenManager:
		return true
	case models.RoleStudent:
		student, err := studentForUser(db, userID)
		return err == nil && student.ID == studentID
	case models.RoleParent:
		var count int64
		db.Model(&models.ParentStudent{}).
			Where("parent_id = ? AND student_id = ?", userID, studentID).
			Count(&count)
		return count > 0
	}
	return false
}
