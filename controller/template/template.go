package template

import (
	"fmt"
	"net/http"
	"strconv"

	"sectorcheck/controller"
	"sectorcheck/dto"
	"sectorcheck/middleware"
	"sectorcheck/services/catalog"
	"sectorcheck/services/qr"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func TemplateController(router *gin.Engine, db *gorm.DB, svc *catalog.Service) {
	// The fill form is built from this; every authenticated user may read it.
	router.GET("/checklists/templates/:id", middleware.AccessTokenMiddleware(), func(c *gin.Context) {
		GetTemplate(c, svc)
	})

	routes := router.Group("/admin/templates", middleware.AccessTokenMiddleware(), middleware.AdminMiddleware())
	{
		routes.GET("", func(c *gin.Context) {
			ListTemplates(c, db, svc)
		})
		routes.POST("", func(c *gin.Context) {
			CreateTemplate(c, db, svc)
		})
		routes.PUT("/:id", func(c *gin.Context) {
			UpdateTemplate(c, db, svc)
		})
		routes.DELETE("/:id", func(c *gin.Context) {
			DeleteTemplate(c, db, svc)
		})
		routes.POST("/:id/items", func(c *gin.Context) {
			AddItem(c, db, svc)
		})
		routes.GET("/:id/qrcode", func(c *gin.Context) {
			TemplateQRCode(c, svc)
		})
	}

	router.DELETE("/admin/items/:id", middleware.AccessTokenMiddleware(), middleware.AdminMiddleware(), func(c *gin.Context) {
		DeleteItem(c, db, svc)
	})
}

func GetTemplate(c *gin.Context, svc *catalog.Service) {
	templateID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid template ID"})
		return
	}
	template, items, err := svc.GetTemplate(templateID)
	if err != nil {
		controller.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"template": template, "items": items})
}

func ListTemplates(c *gin.Context, db *gorm.DB, svc *catalog.Service) {
	actor, err := middleware.CurrentUser(c, db)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found"})
		return
	}
	templates, err := svc.ListTemplates(actor)
	if err != nil {
		controller.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"templates": templates})
}

func CreateTemplate(c *gin.Context, db *gorm.DB, svc *catalog.Service) {
	var request dto.TemplateRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}
	actor, err := middleware.CurrentUser(c, db)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found"})
		return
	}
	template, err := svc.CreateTemplate(actor, request)
	if err != nil {
		controller.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Checklist template created successfully", "template": template})
}

func UpdateTemplate(c *gin.Context, db *gorm.DB, svc *catalog.Service) {
	templateID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid template ID"})
		return
	}
	var request dto.TemplateRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}
	actor, err := middleware.CurrentUser(c, db)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found"})
		return
	}
	template, err := svc.UpdateTemplate(actor, templateID, request)
	if err != nil {
		controller.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Checklist template updated successfully", "template": template})
}

func DeleteTemplate(c *gin.Context, db *gorm.DB, svc *catalog.Service) {
	templateID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid template ID"})
		return
	}
	actor, err := middleware.CurrentUser(c, db)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found"})
		return
	}
	if err := svc.DeleteTemplate(actor, templateID); err != nil {
		controller.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Checklist template deleted successfully"})
}

func AddItem(c *gin.Context, db *gorm.DB, svc *catalog.Service) {
	templateID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid template ID"})
		return
	}
	var request dto.ItemRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}
	actor, err := middleware.CurrentUser(c, db)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found"})
		return
	}
	item, err := svc.AddItem(actor, templateID, request)
	if err != nil {
		controller.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Item added successfully", "item": item})
}

func DeleteItem(c *gin.Context, db *gorm.DB, svc *catalog.Service) {
	itemID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid item ID"})
		return
	}
	actor, err := middleware.CurrentUser(c, db)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found"})
		return
	}
	if err := svc.DeleteItem(actor, itemID); err != nil {
		controller.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Item removed successfully"})
}

// TemplateQRCode renders the fill-form deep link for printing next to the
// equipment being inspected.
func TemplateQRCode(c *gin.Context, svc *catalog.Service) {
	templateID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid template ID"})
		return
	}
	if _, _, err := svc.GetTemplate(templateID); err != nil {
		controller.RespondError(c, err)
		return
	}

	fillURL := fmt.Sprintf("%s/checklists/fill/%d", controller.BaseURL(), templateID)
	image, err := qr.EncodePNG(fillURL, 256)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to render QR code"})
		return
	}
	c.Data(http.StatusOK, "image/png", image)
}
