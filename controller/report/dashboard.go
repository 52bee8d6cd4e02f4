package report

import (
	"net/http"

	"sectorcheck/controller"
	"sectorcheck/dto"
	"sectorcheck/middleware"
	reportsvc "sectorcheck/services/report"

	"github.com/gin-gonic/gin"
)

func DashboardController(router *gin.Engine, svc *reportsvc.Service) {
	router.GET("/admin/dashboard", middleware.AccessTokenMiddleware(), middleware.AdminMiddleware(), func(c *gin.Context) {
		DashboardData(c, svc)
	})
}

// DashboardData feeds the admin charts: compliance per sector and the five
// items with the most non-conformities.
func DashboardData(c *gin.Context, svc *reportsvc.Service) {
	compliance, err := svc.ComplianceBySector()
	if err != nil {
		controller.RespondError(c, err)
		return
	}
	nonCompliant, err := svc.TopNonCompliantItems(5)
	if err != nil {
		controller.RespondError(c, err)
		return
	}

	response := dto.DashboardResponse{}
	for _, row := range compliance {
		response.ComplianceBySector.Labels = append(response.ComplianceBySector.Labels, row.Sector)
		response.ComplianceBySector.Values = append(response.ComplianceBySector.Values, row.Rate)
	}
	for _, row := range nonCompliant {
		response.TopNonCompliantItems.Labels = append(response.TopNonCompliantItems.Labels, row.Question)
		response.TopNonCompliantItems.Values = append(response.TopNonCompliantItems.Values, float64(row.Count))
	}

	c.JSON(http.StatusOK, response)
}
