package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"
	"tripmate-backend/config"
	"tripmate-backend/database"
	"tripmate-backend/middleware"
	"tripmate-backend/models"
	"tripmate-backend/services"
	"tripmate-backend/utils"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

type RegisterRequest struct {
	Name     string `json:"name" binding:"required,min=2,max=100"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type ResetPasswordRequest struct {
	Token    string `json:"token" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type AuthResponse struct {
	Token string              `json:"token"`
	User  models.UserResponse `json:"user"`
}

// validatePassword enforces the password policy: at least 8 characters
// with an uppercase letter, a lowercase letter and a digit.
func validatePassword(password string) string {
	if len(password) < 8 {
		return "Password must be at least 8 characters"
	}
	var hasUpper, hasLower, hasDigit bool
	for _, r := range password {
		switch {
		case r >= 'A' && r <= 'Z':
			hasUpper = true
		case r >= 'a' && r <= 'z':
			hasLower = true
		case r >= '0' && r <= '9':
			hasDigit = true
		}
	}
	if !hasUpper {
		return "Password must contain at least one uppercase letter"
	}
	if !hasLower {
		return "Password must contain at least one lowercase letter"
	}
	if !hasDigit {
		return "Password must contain at least one number"
	}
	return ""
}

func setSessionCookie(c *gin.Context, token string) {
	maxAge := config.AppConfig.SessionTTLHours * 3600
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookie, token, maxAge, "/", "", false, true)
}

// POST /auth/register
func Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	if msg := validatePassword(req.Password); msg != "" {
		utils.BadRequest(c, msg)
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	var existingUser models.User
	if err := database.DB.Where("email = ?", req.Email).First(&existingUser).Error; err == nil {
		utils.BadRequest(c, "Email already registered")
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		utils.InternalError(c, "Failed to hash password")
		return
	}

	user := models.User{
		Name:         strings.TrimSpace(req.Name),
		Email:        req.Email,
		PasswordHash: string(hashedPassword),
	}
	if err := database.DB.Create(&user).Error; err != nil {
		utils.InternalError(c, "Failed to create user")
		return
	}

	token, err := utils.GenerateToken(user.ID, user.Email)
	if err != nil {
		utils.InternalError(c, "Failed to generate token")
		return
	}

	setSessionCookie(c, token)
	c.JSON(http.StatusCreated, AuthResponse{Token: token, User: user.ToResponse()})
}

// POST /auth/login
func Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	var user models.User
	if err := database.DB.Where("email = ?", req.Email).First(&user).Error; err != nil {
		utils.Unauthorized(c, "Invalid email or password")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		utils.Unauthorized(c, "Invalid email or password")
		return
	}

	token, err := utils.GenerateToken(user.ID, user.Email)
	if err != nil {
		utils.InternalError(c, "Failed to generate token")
		return
	}

	setSessionCookie(c, token)
	c.JSON(http.StatusOK, AuthResponse{Token: token, User: user.ToResponse()})
}

// POST /auth/logout
func Logout(c *gin.Context) {
	c.SetCookie(middleware.SessionCookie, "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// POST /auth/forgot-password
func ForgotPassword(c *gin.Context) {
	var req ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))

	// Always answer the same way so the endpoint can't be used to probe
	// for registered addresses.
	var user models.User
	if err := database.DB.Where("email = ?", email).First(&user).Error; err == nil {
		if token, err := utils.GenerateResetToken(user.ID); err == nil {
			go services.GetNotificationService().SendPasswordResetEmail(user, token)
		}
	}

	c.JSON(http.StatusOK, gin.H{"message": "If that email is registered, a reset link has been sent"})
}

// POST /auth/reset-password
func ResetPassword(c *gin.Context) {
	var req ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	if msg := validatePassword(req.Password); msg != "" {
		utils.BadRequest(c, msg)
		return
	}

	userID, err := utils.ParseResetToken(req.Token)
	if err != nil {
		utils.BadRequest(c, "Invalid or expired reset token")
		return
	}

	// Reset tokens are single-use; Redis tracks consumed ones until they
	// would have expired anyway.
	usedKey := "used_reset:" + req.Token
	if database.Redis != nil {
		if n, _ := database.Redis.Exists(context.Background(), usedKey).Result(); n > 0 {
			utils.BadRequest(c, "Invalid or expired reset token")
			return
		}
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		utils.InternalError(c, "Failed to hash password")
		return
	}

	result := database.DB.Model(&models.User{}).Where("id = ?", userID).Update("password_hash", string(hashedPassword))
	if result.Error != nil || result.RowsAffected == 0 {
		utils.BadRequest(c, "Invalid or expired reset token")
		return
	}

	if database.Redis != nil {
		database.Redis.Set(context.Background(), usedKey, "1", time.Hour)
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
