package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"restaurant-pos/jwt"
	"restaurant-pos/logger"
	"restaurant-pos/models"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// StaffUserInput describes a staff account to create or replace.
type StaffUserInput struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Password string `json:"password" validate:"required,min=6,max=72"`
	Email    string `json:"email" validate:"omitempty,email,max=100"`
	Role     string `json:"role" validate:"omitempty,oneof=admin staff"`
}

var staffValidate = validator.New()

// ErrStaffUserExists is returned by CreateStaffUser when the username is taken.
var ErrStaffUserExists = errors.New("staff user already exists")

func prepareStaffUser(in StaffUserInput) (StaffUserInput, []byte, error) {
	in.Username = strings.TrimSpace(in.Username)
	if in.Role == "" {
		in.Role = models.RoleAdmin
	}
	if err := staffValidate.Struct(in); err != nil {
		return in, nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return in, nil, fmt.Errorf("hash password: %w", err)
	}
	return in, hashedPassword, nil
}

// CreateStaffUser hashes the password and inserts a new account. An existing
// username is never overwritten.
func CreateStaffUser(db *gorm.DB, in StaffUserInput) (*models.AdminUser, error) {
	in, hashedPassword, err := prepareStaffUser(in)
	if err != nil {
		return nil, err
	}

	var existing int64
	if err := db.Model(&models.AdminUser{}).Where("username = ?", in.Username).Count(&existing).Error; err != nil {
		return nil, fmt.Errorf("look up staff user: %w", err)
	}
	if existing > 0 {
		return nil, fmt.Errorf("%w: %s", ErrStaffUserExists, in.Username)
	}

	user := models.AdminUser{
		Username: in.Username,
		Password: string(hashedPassword),
		Email:    in.Email,
		Role:     in.Role,
	}
	if err := db.Create(&user).Error; err != nil {
		// Lost a race with another insert of the same username.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("%w: %s", ErrStaffUserExists, in.Username)
		}
		return nil, fmt.Errorf("create staff user: %w", err)
	}
	return &user, nil
}

// SaveStaffUser creates the account or replaces an existing one with the same
// username. Replacing revokes every token issued to that account.
func SaveStaffUser(db *gorm.DB, in StaffUserInput) (*models.AdminUser, error) {
	in, hashedPassword, err := prepareStaffUser(in)
	if err != nil {
		return nil, err
	}

	var user models.AdminUser
	err = db.Transaction(func(tx *gorm.DB) error {
		err := tx.Where("username = ?", in.Username).First(&user).Error
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		replacing := err == nil

		user.Username = in.Username
		user.Password = string(hashedPassword)
		user.Email = in.Email
		user.Role = in.Role
		if err := tx.Save(&user).Error; err != nil {
			return fmt.Errorf("save staff user: %w", err)
		}
		if replacing {
			if err := tx.Where("user_id = ?", user.ID).Delete(&models.LoginToken{}).Error; err != nil {
				return fmt.Errorf("revoke tokens for %s: %w", user.Username, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func LoginHandler(c *gin.Context, db *gorm.DB, tokens *jwt.Manager, log *logger.Logger) {
	var loginReq struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&loginReq); err != nil {
		respondBindError(c, err)
		return
	}

	db = db.WithContext(c.Request.Context())
	var user models.AdminUser
	err := db.Where("username = ?", loginReq.Username).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid credentials"})
			return
		}
		respondInternalError(c, log, "login", err)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(loginReq.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid credentials"})
		return
	}

	token, expiresAt, err := tokens.GenerateToken(user.ID, user.Username, user.Role)
	if err != nil {
		respondInternalError(c, log, "login", err)
		return
	}

	loginToken := models.LoginToken{
		Token:          token,
		ExpirationTime: expiresAt,
		UserID:         user.ID,
		Role:           user.Role,
	}
	if err := db.Create(&loginToken).Error; err != nil {
		respondInternalError(c, log, "login", err)
		return
	}

	c.Header("Authorization", "Bearer "+token)
	c.JSON(http.StatusOK, gin.H{
		"token":      token,
		"expires_at": expiresAt,
		"user":       user,
	})
}

// LogOutHandler revokes the caller's token.
func LogOutHandler(c *gin.Context, db *gorm.DB, log *logger.Logger) {
	token := c.GetString("Token")

	result := db.WithContext(c.Request.Context()).Where("token = ?", token).Delete(&models.LoginToken{})
	if result.Error != nil {
		respondInternalError(c, log, "logout", result.Error)
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Token not found or already logged out"})
		return
	}

	c.Header("Authorization", "")
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

func GetProfileHandler(c *gin.Context, db *gorm.DB, log *logger.Logger) {
	userID, _ := c.Get("UserID")

	var user models.AdminUser
	if err := db.WithContext(c.Request.Context()).First(&user, userID).Error; err != nil {
		respondStorageError(c, log, "get_profile", "User not found", err)
		return
	}
	c.JSON(http.StatusOK, user)
}
