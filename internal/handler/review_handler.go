package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/NANDINI-BANIK/student-portfolio-hub/internal/middleware"
	"github.com/NANDINI-BANIK/student-portfolio-hub/internal/models"
	"github.com/NANDINI-BANIK/student-portfolio-hub/internal/service"
	appErrors "github.com/NANDINI-BANIK/student-portfolio-hub/pkg/errors"
	"github.com/NANDINI-BANIK/student-portfolio-hub/pkg/response"
)

// ReviewHandler exposes the reviewer-side queue and decision endpoints.
type ReviewHandler struct {
	reviews *service.ReviewService
}

// NewReviewHandler constructs ReviewHandler.
func NewReviewHandler(reviews *service.ReviewService) *ReviewHandler {
	return &ReviewHandler{reviews: reviews}
}

type decisionRequest struct {
	Decision models.Decision `json:"decision" binding:"required"`
	Feedback string          `json:"feedback"`
}

type priorityRequest struct {
	Priority models.Priority `json:"priority" binding:"required"`
}

// Queue godoc
// @Summary List pending achievements awaiting review
// @Tags Reviews
// @Produce json
// @Param search query string false "Search term over title and student name"
// @Param category query string false "Category filter"
// @Param priority query string false "Priority filter"
// @Param sort_by query string false "Sort key (priority, submitted_at, title)"
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /reviews/queue [get]
func (h *ReviewHandler) Queue(c *gin.Context) {
	filter := models.PendingFilter{
		Search:   c.Query("search"),
		Category: c.Query("category"),
		Priority: models.Priority(c.Query("priority")),
		SortBy:   c.Query("sort_by"),
		Page:     queryInt(c, "page", 1),
		PageSize: queryInt(c, "page_size", 20),
	}
	items, pagination, err := h.reviews.Queue(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, pagination)
}

// Decide godoc
// @Summary Approve, reject, or request changes on a pending achievement
// @Tags Reviews
// @Accept json
// @Produce json
// @Param id path string true "Achievement ID"
// @Param payload body decisionRequest true "Decision payload"
// @Success 200 {object} response.Envelope
// @Router /reviews/{id}/decision [post]
func (h *ReviewHandler) Decide(c *gin.Context) {
	claims := middleware.CurrentUser(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req decisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	detail, err := h.reviews.Decide(c.Request.Context(), c.Param("id"), claims.UserID, req.Decision, req.Feedback)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, detail, nil)
}

// SetPriority godoc
// @Summary Set the review priority of a pending achievement
// @Tags Reviews
// @Accept json
// @Produce json
// @Param id path string true "Achievement ID"
// @Param payload body priorityRequest true "Priority payload"
// @Success 200 {object} response.Envelope
// @Router /reviews/{id}/priority [put]
func (h *ReviewHandler) SetPriority(c *gin.Context) {
	var req priorityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	if err := h.reviews.SetPriority(c.Request.Context(), c.Param("id"), req.Priority); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"id": c.Param("id"), "priority": req.Priority}, nil)
}

func queryInt(c *gin.Context, key string, fallback int) int {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}
