package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/ekantin/canteen-app/models"
	"github.com/ekantin/canteen-app/utils"
)

// ErrInvalidCredentials is returned for both unknown usernames and wrong
// passwords so the response never reveals which accounts exist.
var ErrInvalidCredentials = errors.New("invalid username or password")

type UserController struct {
	DB *gorm.DB
}

func NewUserController(db *gorm.DB) *UserController {
	return &UserController{DB: db}
}

// Register creates a new account. A student registration also creates the
// linked student record in the same transaction.
func (uc *UserController) Register(c *gin.Context) {
	type request struct {
		Username  string  `json:"username" binding:"required,min=3"`
		Email     string  `json:"email" binding:"required,email"`
		Password  string  `json:"password" binding:"required,min=6"`
		Role      string  `json:"role" binding:"required"`
		FullName  string  `json:"full_name" binding:"required"`
		Phone     *string `json:"phone"`
		StudentID string  `json:"student_id"`
		ClassName string  `json:"class_name"`
	}
	var req request
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	if !models.IsValidRole(req.Role) {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid role"))
		return
	}

	if req.Role == models.RoleStudent && (req.StudentID == "" || req.ClassName == "") {
		utils.RespondError(c, http.StatusBadRequest, errors.New("student_id and class_name are required for student accounts"))
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	user := models.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: string(hashed),
		Role:         req.Role,
		FullName:     req.FullName,
		Phone:        req.Phone,
	}

	err = uc.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		if req.Role == models.RoleStudent {
			student := models.Student{
				UserID:    user.ID,
				StudentID: req.StudentID,
				ClassName: req.ClassName,
			}
			if err := tx.Create(&student).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.InfoLogger.Printf("New user registered: %s (role=%s)", user.Username, user.Role)

	utils.RespondJSON(c, http.StatusCreated, "User registered", gin.H{
		"user_id": user.ID,
	})
}

// Login checks the credentials and returns the user plus a signed JWT.
func (uc *UserController) Login(c *gin.Context) {
	var input struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var user models.User
	if err := uc.DB.Where("username = ?", input.Username).First(&user).Error; err != nil {
		utils.RespondError(c, http.StatusUnauthorized, ErrInvalidCredentials)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		utils.RespondError(c, http.StatusUnauthorized, ErrInvalidCredentials)
		return
	}

	token, err := utils.GenerateToken(user.ID, user.Role)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.InfoLogger.Printf("Login successful for user %s (role=%s)", user.Username, user.Role)

	utils.RespondJSON(c, http.StatusOK, "Login successful", gin.H{
		"user":  user,
		"token": token,
	})
}

// Logout blacklists the presented token for the rest of its lifetime.
func (uc *UserController) Logout(c *gin.Context) {
	token := c.GetString("token")
	if token == "" {
		utils.RespondError(c, http.StatusBadRequest, errors.New("no token to revoke"))
		return
	}

	utils.BlacklistToken(token)
	utils.RespondJSON(c, http.StatusOK, "Logged out", nil)
}

// GetProfile returns the authenticated user. Students get their student
// record embedded.
func (uc *UserController) GetProfile(c *gin.Context) {
	userIDInterface, exists := c.Get("user_id")
	if !exists {
		utils.RespondError(c, http.StatusUnauthorized, errors.New("user id not found in context"))
		return
	}

	userID, ok := userIDInterface.(uint)
	if !ok {
		utils.RespondError(c, http.StatusInternalServerError, errors.New("invalid user id type"))
		return
	}

	var user models.User
	if err := uc.DB.First(&user, userID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	data := gin.H{"user": user}
	if user.Role == models.RoleStudent {
		var student models.Student
		if err := uc.DB.Where("user_id = ?", user.ID).First(&student).Error; err == nil {
			data["student"] = student
		}
	}

	utils.RespondJSON(c, http.StatusOK, "Profile data retrieved successfully", data)
}

// GetAllUsers -> admin only
func (uc *UserController) GetAllUsers(c *gin.Context) {
	var users []models.User
	if err := uc.DB.Find(&users).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "All users", users)
}
