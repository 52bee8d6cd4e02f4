package history

import (
	"fmt"
	"net/http"
	"strconv"

	"sectorcheck/controller"
	"sectorcheck/middleware"
	"sectorcheck/services/report"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func HistoryController(router *gin.Engine, db *gorm.DB, svc *report.Service) {
	routes := router.Group("/history", middleware.AccessTokenMiddleware(), middleware.LeaderMiddleware())
	{
		routes.GET("", func(c *gin.Context) {
			ListHistory(c, db, svc)
		})
		routes.GET("/export/excel", func(c *gin.Context) {
			ExportExcel(c, db, svc)
		})
		routes.GET("/:id/export/pdf", func(c *gin.Context) {
			ExportPDF(c, db, svc)
		})
	}
}

func filterFromQuery(c *gin.Context) report.HistoryFilter {
	filter := report.HistoryFilter{Status: c.Query("status")}
	if sectorID, err := strconv.Atoi(c.Query("sector_id")); err == nil {
		filter.SectorID = sectorID
	}
	return filter
}

func ListHistory(c *gin.Context, db *gorm.DB, svc *report.Service) {
	actor, err := middleware.CurrentUser(c, db)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found"})
		return
	}
	instances, err := svc.FilteredHistory(actor, filterFromQuery(c))
	if err != nil {
		controller.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"checklists": instances})
}

// ExportExcel serves the filtered history as a spreadsheet. Filters and
// scoping are exactly those of the listing; the rows come from the same
// query.
func ExportExcel(c *gin.Context, db *gorm.DB, svc *report.Service) {
	actor, err := middleware.CurrentUser(c, db)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found"})
		return
	}
	rows, err := svc.ExportRows(actor, filterFromQuery(c))
	if err != nil {
		controller.RespondError(c, err)
		return
	}
	data, err := report.RenderExcel(rows)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to render spreadsheet"})
		return
	}

	c.Header("Content-Disposition", `attachment; filename="checklist_report.xlsx"`)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

func ExportPDF(c *gin.Context, db *gorm.DB, svc *report.Service) {
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
	instanceReport, err := svc.InstanceReport(actor, instanceID)
	if err != nil {
		controller.RespondError(c, err)
		return
	}
	data, err := report.RenderInstancePDF(instanceReport)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to render PDF"})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`inline; filename="checklist_%d.pdf"`, instanceID))
	c.Data(http.StatusOK, "application/pdf", data)
}
