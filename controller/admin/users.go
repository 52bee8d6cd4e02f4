package admin

import (
	"net/http"
	"strconv"

	"sectorcheck/dto"
	"sectorcheck/middleware"
	"sectorcheck/model"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func UserAdminController(router *gin.Engine, db *gorm.DB) {
	routes := router.Group("/admin/users", middleware.AccessTokenMiddleware(), middleware.AdminMiddleware())
	{
		routes.GET("", func(c *gin.Context) {
			ListUsers(c, db)
		})
		routes.PUT("/:id", func(c *gin.Context) {
			UpdateUser(c, db)
		})
		routes.DELETE("/:id", func(c *gin.Context) {
			DeleteUser(c, db)
		})
	}
}

// ListUsers returns every account except the caller's own, so the admin
// cannot edit or delete themselves by accident.
func ListUsers(c *gin.Context, db *gorm.DB) {
	userID := c.MustGet("userId").(int)

	var users []model.User
	if err := db.Where("user_id <> ?", userID).Order("username").Find(&users).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}

func UpdateUser(c *gin.Context, db *gorm.DB) {
	userID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}
	var request dto.UpdateUserRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	var user model.User
	if err := db.First(&user, "user_id = ?", userID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	var count int64
	if err := db.Model(&model.User{}).Where("username = ? AND user_id <> ?", request.Username, userID).Count(&count).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	if count > 0 {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Username already in use"})
		return
	}
	if err := db.Model(&model.User{}).Where("email = ? AND user_id <> ?", request.Email, userID).Count(&count).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	if count > 0 {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Email already in use"})
		return
	}

	user.Username = request.Username
	user.Email = request.Email
	user.Role = request.Role
	if err := db.Save(&user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update user"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "User updated successfully"})
}

func DeleteUser(c *gin.Context, db *gorm.DB) {
	userID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}
	if userID == c.MustGet("userId").(int) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "You cannot delete your own account"})
		return
	}

	var user model.User
	if err := db.First(&user, "user_id = ?", userID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).Delete(&model.LeaderSector{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.User{}, "user_id = ?", userID).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete user"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "User deleted successfully"})
}
