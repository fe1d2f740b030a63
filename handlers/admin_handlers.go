package handlers

import (
	"errors"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"restaurant-pos/logger"
	"restaurant-pos/models"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

func isValidImageExtensions(file *multipart.FileHeader) bool {
	allowExtensions := []string{".jpg", ".jpeg", ".png"}
	fileExt := strings.ToLower(filepath.Ext(file.Filename))
	for _, allowExt := range allowExtensions {
		if fileExt == allowExt {
			return true
		}
	}
	return false
}

func makeUniqueFileName(file *multipart.FileHeader) string {
	return uuid.NewString() + strings.ToLower(filepath.Ext(file.Filename))
}

// UploadImageHandler stores a menu image under uploadsDir; the returned path is served at /uploads.
func UploadImageHandler(c *gin.Context, uploadsDir string, log *logger.Logger) {
	file, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"message": "Missing image file",
			"error":   err.Error(),
		})
		return
	}

	if !isValidImageExtensions(file) {
		c.JSON(http.StatusBadRequest, gin.H{
			"message": "Image must be .jpg, .jpeg or .png",
		})
		return
	}

	if err := os.MkdirAll(uploadsDir, 0o755); err != nil {
		respondInternalError(c, log, "upload_image", err)
		return
	}

	imageName := makeUniqueFileName(file)
	if err := c.SaveUploadedFile(file, filepath.Join(uploadsDir, imageName)); err != nil {
		respondInternalError(c, log, "upload_image", err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":   "Image uploaded",
		"image_url": "/uploads/" + imageName,
	})
}

func GetStaffListHandler(c *gin.Context, db *gorm.DB, log *logger.Logger) {
	users := []models.AdminUser{}
	err := db.WithContext(c.Request.Context()).Order("username").Find(&users).Error
	if err != nil {
		respondInternalError(c, log, "list_staff", err)
		return
	}
	c.JSON(http.StatusOK, users)
}

func CreateStaffUserHandler(c *gin.Context, db *gorm.DB, log *logger.Logger) {
	var req StaffUserInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	if req.Role == "" {
		req.Role = models.RoleStaff
	}

	user, err := CreateStaffUser(db.WithContext(c.Request.Context()), req)
	if err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			c.JSON(http.StatusBadRequest, gin.H{
				"message": "Invalid staff user",
				"error":   err.Error(),
			})
			return
		}
		if errors.Is(err, ErrStaffUserExists) {
			c.JSON(http.StatusConflict, gin.H{"message": "Username already taken"})
			return
		}
		respondInternalError(c, log, "create_staff_user", err)
		return
	}

	c.JSON(http.StatusCreated, user)
}
