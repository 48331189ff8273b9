package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/NANDINI-BANIK/student-portfolio-hub/internal/middleware"
	"github.com/NANDINI-BANIK/student-portfolio-hub/internal/service"
	appErrors "github.com/NANDINI-BANIK/student-portfolio-hub/pkg/errors"
	"github.com/NANDINI-BANIK/student-portfolio-hub/pkg/response"
)

// ExportHandler exposes portfolio export downloads.
type ExportHandler struct {
	exports      *service.ExportService
	achievements *service.AchievementService
}

// NewExportHandler constructs ExportHandler.
func NewExportHandler(exports *service.ExportService, achievements *service.AchievementService) *ExportHandler {
	return &ExportHandler{exports: exports, achievements: achievements}
}

// Portfolio godoc
// @Summary Download the caller's approved portfolio as CSV or PDF
// @Tags Exports
// @Produce octet-stream
// @Param format query string false "csv or pdf (default csv)"
// @Success 200 {file} binary
// @Router /exports/portfolio [get]
func (h *ExportHandler) Portfolio(c *gin.Context) {
	claims := middleware.CurrentUser(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	profileID, err := h.achievements.OwnerProfileID(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	format := c.DefaultQuery("format", "csv")
	result, err := h.exports.Portfolio(c.Request.Context(), profileID, format)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+result.Filename+`"`)
	c.Data(http.StatusOK, result.MediaType, result.Content)
}
