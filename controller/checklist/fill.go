package checklist

import (
	"fmt"
	"io"
	"net/http"
	"strconv"

	"sectorcheck/controller"
	"sectorcheck/middleware"
	"sectorcheck/model"
	checklistsvc "sectorcheck/services/checklist"
	"sectorcheck/services/storage"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func FillChecklistController(router *gin.Engine, db *gorm.DB, svc *checklistsvc.Service) {
	router.POST("/checklists/fill/:templateID", middleware.AccessTokenMiddleware(), func(c *gin.Context) {
		FillChecklist(c, db, svc)
	})
}

// FillChecklist accepts the multipart submission form: per item a
// item_<id>_response value, an optional item_<id>_comment and an optional
// item_<id>_photo file, plus an optional signature data URL.
func FillChecklist(c *gin.Context, db *gorm.DB, svc *checklistsvc.Service) {
	templateID, err := strconv.Atoi(c.Param("templateID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid template ID"})
		return
	}
	actor, err := middleware.CurrentUser(c, db)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found"})
		return
	}

	var items []model.ChecklistItem
	if err := db.Where("template_id = ?", templateID).Order("item_id").Find(&items).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	answers := make([]checklistsvc.Answer, 0, len(items))
	for _, item := range items {
		response := c.PostForm(fmt.Sprintf("item_%d_response", item.ItemID))
		if response == "" {
			// The service rejects incomplete submissions; let it name the item.
			continue
		}
		answer := checklistsvc.Answer{
			ItemID:   item.ItemID,
			Response: response,
			Comment:  c.PostForm(fmt.Sprintf("item_%d_comment", item.ItemID)),
		}

		if file, err := c.FormFile(fmt.Sprintf("item_%d_photo", item.ItemID)); err == nil && file.Filename != "" {
			opened, err := file.Open()
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read photo evidence"})
				return
			}
			data, err := io.ReadAll(opened)
			opened.Close()
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read photo evidence"})
				return
			}
			answer.Photo = data
			answer.PhotoName = file.Filename
		}
		answers = append(answers, answer)
	}

	var signature []byte
	if dataURL := c.PostForm("signature"); dataURL != "" {
		signature, err = storage.DecodeSignatureDataURL(dataURL)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Malformed signature payload"})
			return
		}
	}

	result, err := svc.CreateInstance(actor, templateID, answers, signature)
	if err != nil {
		controller.RespondError(c, err)
		return
	}

	message := "Checklist submitted and sector leaders notified"
	if result.LeadersNotified == 0 {
		message = "Checklist submitted. No leaders are assigned to this sector, so nobody was notified"
	}
	c.JSON(http.StatusCreated, gin.H{
		"message":          message,
		"instance_id":      result.InstanceID,
		"leaders_notified": result.LeadersNotified,
	})
}
