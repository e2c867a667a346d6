package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/ekantin/canteen-app/models"
	"github.com/ekantin/canteen-app/utils"
)

type ParentController struct {
	DB *gorm.DB
}

func NewParentController(db *gorm.DB) *ParentController {
	return &ParentController{DB: db}
}

// LinkParentStudent connects a parent account to a student record (admin).
func (pc *ParentController) LinkParentStudent(c *gin.Context) {
	var req struct {
		ParentID  uint `json:"parent_id" binding:"required"`
		StudentID uint `json:"student_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var parent models.User
	if err := pc.DB.First(&parent, req.ParentID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("parent account not found"))
		return
	}
	if parent.Role != models.RoleParent {
		utils.RespondError(c, http.StatusBadRequest, errors.New("user is not a parent account"))
		return
	}

	var student models.Student
	if err := pc.DB.First(&student, req.StudentID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("student not found"))
		return
	}

	link := models.ParentStudent{
		ParentID:  req.ParentID,
		StudentID: req.StudentID,
	}
	if err := pc.DB.Create(&link).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.InfoLogger.Printf("Linked parent %d to student %d", req.ParentID, req.StudentID)

	utils.RespondJSON(c, http.StatusCreated, "Parent linked to student", link)
}

// GetMyStudents lists the authenticated parent's linked students with
// balances and spending limits.
func (pc *ParentController) GetMyStudents(c *gin.Context) {
	userID := c.GetUint("user_id")

	var students []models.Student
	if err := pc.DB.
		Joins("JOIN parent_students ON parent_students.student_id = students.id").
		Where("parent_students.parent_id = ?", userID).
		Find(&students).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Linked students", students)
}
