// Package controller holds helpers shared by the route packages.
package controller

import (
	"os"

	"sectorcheck/apperr"

	"github.com/gin-gonic/gin"
)

// RespondError maps a service error onto the HTTP edge. Forbidden stays
// Forbidden: it is never downgraded to an empty page.
func RespondError(c *gin.Context, err error) {
	c.JSON(apperr.HTTPStatus(err), gin.H{"error": apperr.Message(err)})
}

// BaseURL is the externally reachable root used for deep links (QR codes,
// notification emails).
func BaseURL() string {
	if url := os.Getenv("BASE_URL"); url != "" {
		return url
	}
	return "http://localhost:8080"
}
