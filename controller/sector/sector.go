package sector

import (
	"net/http"
	"strconv"

	"sectorcheck/controller"
	"sectorcheck/dto"
	"sectorcheck/middleware"
	"sectorcheck/services/catalog"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func SectorController(router *gin.Engine, db *gorm.DB, svc *catalog.Service) {
	// Leaders read the sector list for history filters; management is
	// admin-gated inside the service as well.
	router.GET("/sectors", middleware.AccessTokenMiddleware(), middleware.LeaderMiddleware(), func(c *gin.Context) {
		ListSectors(c, db, svc)
	})

	routes := router.Group("/admin/sectors", middleware.AccessTokenMiddleware(), middleware.AdminMiddleware())
	{
		routes.GET("", func(c *gin.Context) {
			ListSectors(c, db, svc)
		})
		routes.POST("", func(c *gin.Context) {
			CreateSector(c, db, svc)
		})
		routes.PUT("/:id", func(c *gin.Context) {
			UpdateSector(c, db, svc)
		})
		routes.DELETE("/:id", func(c *gin.Context) {
			DeleteSector(c, db, svc)
		})
		routes.PUT("/:id/leaders", func(c *gin.Context) {
			AssignLeaders(c, db, svc)
		})
	}
}

func ListSectors(c *gin.Context, db *gorm.DB, svc *catalog.Service) {
	actor, err := middleware.CurrentUser(c, db)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found"})
		return
	}
	sectors, err := svc.ListSectors(actor)
	if err != nil {
		controller.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sectors": sectors})
}

func CreateSector(c *gin.Context, db *gorm.DB, svc *catalog.Service) {
	var request dto.SectorRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}
	actor, err := middleware.CurrentUser(c, db)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found"})
		return
	}
	sector, err := svc.CreateSector(actor, request)
	if err != nil {
		controller.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Sector created successfully", "sector": sector})
}

func UpdateSector(c *gin.Context, db *gorm.DB, svc *catalog.Service) {
	sectorID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid sector ID"})
		return
	}
	var request dto.SectorRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}
	actor, err := middleware.CurrentUser(c, db)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found"})
		return
	}
	sector, err := svc.UpdateSector(actor, sectorID, request)
	if err != nil {
		controller.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Sector updated successfully", "sector": sector})
}

func DeleteSector(c *gin.Context, db *gorm.DB, svc *catalog.Service) {
	sectorID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid sector ID"})
		return
	}
	actor, err := middleware.CurrentUser(c, db)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found"})
		return
	}
	if err := svc.DeleteSector(actor, sectorID); err != nil {
		controller.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Sector deleted successfully"})
}

func AssignLeaders(c *gin.Context, db *gorm.DB, svc *catalog.Service) {
	sectorID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid sector ID"})
		return
	}
	var request dto.AssignLeadersRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}
	actor, err := middleware.CurrentUser(c, db)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found"})
		return
	}
	if err := svc.AssignLeaders(actor, sectorID, request.LeaderIDs); err != nil {
		controller.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Sector leaders updated successfully"})
}
