package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/NANDINI-BANIK/student-portfolio-hub/internal/middleware"
	"github.com/NANDINI-BANIK/student-portfolio-hub/internal/service"
	appErrors "github.com/NANDINI-BANIK/student-portfolio-hub/pkg/errors"
	"github.com/NANDINI-BANIK/student-portfolio-hub/pkg/response"
)

// AchievementHandler exposes the submitter-side record endpoints.
type AchievementHandler struct {
	achievements *service.AchievementService
	reviews      *service.ReviewService
}

// NewAchievementHandler constructs AchievementHandler.
func NewAchievementHandler(achievements *service.AchievementService, reviews *service.ReviewService) *AchievementHandler {
	return &AchievementHandler{achievements: achievements, reviews: reviews}
}

// Submit godoc
// @Summary Submit a new achievement for review
// @Tags Achievements
// @Accept json
// @Produce json
// @Param payload body service.SubmitAchievementRequest true "Achievement payload"
// @Success 201 {object} response.Envelope
// @Router /achievements [post]
func (h *AchievementHandler) Submit(c *gin.Context) {
	claims := middleware.CurrentUser(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req service.SubmitAchievementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	achievement, err := h.achievements.Submit(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, achievement)
}

// ListMine godoc
// @Summary List the caller's achievements
// @Tags Achievements
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /achievements [get]
func (h *AchievementHandler) ListMine(c *gin.Context) {
	claims := middleware.CurrentUser(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	achievements, err := h.achievements.ListMine(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, achievements, nil)
}

// Get godoc
// @Summary Get an achievement with its review history
// @Tags Achievements
// @Produce json
// @Param id path string true "Achievement ID"
// @Success 200 {object} response.Envelope
// @Router /achievements/{id} [get]
func (h *AchievementHandler) Get(c *gin.Context) {
	detail, err := h.achievements.Get(c.Request.Context(), c.Param("id"), middleware.CurrentUser(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, detail, nil)
}

// Resubmit godoc
// @Summary Resubmit an achievement after requested changes
// @Tags Achievements
// @Produce json
// @Param id path string true "Achievement ID"
// @Success 200 {object} response.Envelope
// @Router /achievements/{id}/resubmit [post]
func (h *AchievementHandler) Resubmit(c *gin.Context) {
	claims := middleware.CurrentUser(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	ownerProfile, err := h.achievements.OwnerProfileID(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	detail, err := h.reviews.Resubmit(c.Request.Context(), c.Param("id"), ownerProfile)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, detail, nil)
}

// Delete godoc
// @Summary Delete one of the caller's achievements
// @Tags Achievements
// @Param id path string true "Achievement ID"
// @Success 204
// @Router /achievements/{id} [delete]
func (h *AchievementHandler) Delete(c *gin.Context) {
	claims := middleware.CurrentUser(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	if err := h.achievements.Delete(c.Request.Context(), c.Param("id"), claims.UserID); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
