package Controllers_test

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	"github.com/ekantin/canteen-app/controllers"
	"github.com/ekantin/canteen-app/middlewares"
	"github.com/ekantin/canteen-app/models"
)

func setupParentRouter(db *gorm.DB) *gin.Engine {
	router := gin.New()
	parentCtrl := controllers.NewParentController(db)

	auth := router.Group("/", middlewares.AuthMiddleware())
	auth.GET("/parent/students", middlewares.RequireRoles(models.RoleParent), parentCtrl.GetMyStudents)
	auth.POST("/admin/parent-students", middlewares.RequireRoles(models.RoleAdmin), parentCtrl.LinkParentStudent)

	return router
}

func TestLinkParentStudent(t *testing.T) {
	db := setupTestDB(t)
	router := setupParentRouter(db)

	_, adminToken := createUser(t, db, "admin1", models.RoleAdmin)
	parent, parentToken := createUser(t, db, "parent1", models.RoleParent)
	user, _ := createUser(t, db, "student1", models.RoleStudent)
	student := createStudent(t, db, user, 50000, floatPtr(25000))

	w := performRequest(t, router, "POST", "/admin/parent-students", map[string]interface{}{
		"parent_id":  parent.ID,
		"student_id": student.ID,
	}, adminToken)
	assert.Equal(t, http.StatusCreated, w.Code)

	w = performRequest(t, router, "GET", "/parent/students", nil, parentToken)
	assert.Equal(t, http.StatusOK, w.Code)

	students := decodeResponse(t, w)["data"].([]interface{})
	assert.Len(t, students, 1)
	linked := students[0].(map[string]interface{})
	assert.Equal(t, "STD-student1", linked["student_id"])
	assert.Equal(t, 50000.0, linked["balance"])
	assert.Equal(t, 25000.0, linked["spending_limit"])
}

func TestLinkParentStudentValidation(t *testing.T) {
	db := setupTestDB(t)
	router := setupParentRouter(db)

	_, adminToken := createUser(t, db, "admin1", models.RoleAdmin)
	notParent, _ := createUser(t, db, "manager1", models.RoleCanteenManager)
	user, _ := createUser(t, db, "student1", models.RoleStudent)
	student := createStudent(t, db, user, 0, nil)

	// Target account must actually be a parent.
	w := performRequest(t, router, "POST", "/admin/parent-students", map[string]interface{}{
		"parent_id":  notParent.ID,
		"student_id": student.ID,
	}, adminToken)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	parent, _ := createUser(t, db, "parent1", models.RoleParent)
	w = performRequest(t, router, "POST", "/admin/parent-students", map[string]interface{}{
		"parent_id":  parent.ID,
		"student_id": 9999,
	}, adminToken)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// Only admins may link.
	_, parentToken := createUser(t, db, "parent2", models.RoleParent)
	w = performRequest(t, router, "POST", "/admin/parent-students", map[string]interface{}{
		"parent_id":  parent.ID,
		"student_id": student.ID,
	}, parentToken)
	assert.Equal(t, http.StatusForbidden, w.Code)
}
