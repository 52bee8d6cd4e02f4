package checklist

import (
	"net/http"
	"strconv"

	"sectorcheck/controller"
	"sectorcheck/dto"
	"sectorcheck/middleware"
	"sectorcheck/model"
	checklistsvc "sectorcheck/services/checklist"
	"sectorcheck/services/storage"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func ReviewChecklistController(router *gin.Engine, db *gorm.DB, svc *checklistsvc.Service) {
	routes := router.Group("/leader", middleware.AccessTokenMiddleware(), middleware.LeaderMiddleware())
	{
		routes.GET("/pending", func(c *gin.Context) {
			PendingChecklists(c, db, svc)
		})
		routes.GET("/checklists/:id", func(c *gin.Context) {
			GetChecklist(c, db, svc)
		})
		routes.POST("/checklists/:id/decide", func(c *gin.Context) {
			DecideChecklist(c, db, svc)
		})
	}
}

func PendingChecklists(c *gin.Context, db *gorm.DB, svc *checklistsvc.Service) {
	actor, err := middleware.CurrentUser(c, db)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found"})
		return
	}
	instances, err := svc.PendingForReview(actor)
	if err != nil {
		controller.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"checklists": instances})
}

func GetChecklist(c *gin.Context, db *gorm.DB, svc *checklistsvc.Service) {
	instanceID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid instance ID"})
		return
	}
	actor, err := middleware.CurrentUser(c, db)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found"})
		return
	}
	instance, responses, err := svc.Get(actor, instanceID)
	if err != nil {
		controller.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"checklist": instance, "responses": responses})
}

func DecideChecklist(c *gin.Context, db *gorm.DB, svc *checklistsvc.Service) {
	instanceID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid instance ID"})
		return
	}
	var request dto.DecideRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}
	actor, err := middleware.CurrentUser(c, db)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found"})
		return
	}

	var signature []byte
	if request.Signature != "" {
		signature, err = storage.DecodeSignatureDataURL(request.Signature)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Malformed signature payload"})
			return
		}
	}

	if err := svc.Decide(actor, instanceID, request.Verdict, signature); err != nil {
		controller.RespondError(c, err)
		return
	}

	message := "Checklist approved"
	if request.Verdict == model.VerdictReject {
		message = "Checklist rejected"
	}
	c.JSON(http.StatusOK, gin.H{"message": message})
}
