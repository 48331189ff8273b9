package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/NANDINI-BANIK/student-portfolio-hub/internal/middleware"
	"github.com/NANDINI-BANIK/student-portfolio-hub/internal/service"
	appErrors "github.com/NANDINI-BANIK/student-portfolio-hub/pkg/errors"
	"github.com/NANDINI-BANIK/student-portfolio-hub/pkg/response"
)

// ProfileHandler exposes the owner-side profile endpoints.
type ProfileHandler struct {
	profiles *service.ProfileService
}

// NewProfileHandler constructs ProfileHandler.
func NewProfileHandler(profiles *service.ProfileService) *ProfileHandler {
	return &ProfileHandler{profiles: profiles}
}

// GetMine godoc
// @Summary Get the caller's own profile
// @Tags Profiles
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /profiles/me [get]
func (h *ProfileHandler) GetMine(c *gin.Context) {
	claims := middleware.CurrentUser(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	detail, err := h.profiles.GetMine(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, detail, nil)
}

// UpdateMine godoc
// @Summary Update the caller's own profile
// @Tags Profiles
// @Accept json
// @Produce json
// @Param payload body service.UpdateProfileRequest true "Profile payload"
// @Success 200 {object} response.Envelope
// @Router /profiles/me [put]
func (h *ProfileHandler) UpdateMine(c *gin.Context) {
	claims := middleware.CurrentUser(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req service.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	profile, err := h.profiles.UpdateMine(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, profile, nil)
}
