package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/NANDINI-BANIK/student-portfolio-hub/internal/middleware"
	"github.com/NANDINI-BANIK/student-portfolio-hub/internal/models"
	"github.com/NANDINI-BANIK/student-portfolio-hub/internal/service"
	"github.com/NANDINI-BANIK/student-portfolio-hub/pkg/config"
	appErrors "github.com/NANDINI-BANIK/student-portfolio-hub/pkg/errors"
	"github.com/NANDINI-BANIK/student-portfolio-hub/pkg/response"
)

// TalentHandler exposes the discovery surface: search, facet values, and
// profile viewing for employers.
type TalentHandler struct {
	search   *service.SearchService
	facets   *service.FacetService
	profiles *service.ProfileService
	cfg      config.SearchConfig
}

// NewTalentHandler constructs TalentHandler.
func NewTalentHandler(search *service.SearchService, facets *service.FacetService, profiles *service.ProfileService, cfg config.SearchConfig) *TalentHandler {
	if cfg.DefaultPageSize <= 0 {
		cfg.DefaultPageSize = 20
	}
	return &TalentHandler{search: search, facets: facets, profiles: profiles, cfg: cfg}
}

// Search godoc
// @Summary Search discoverable talent profiles
// @Tags Talent
// @Produce json
// @Param term query string false "Free-text term over name, major, skills, and roles"
// @Param skills query string false "Comma-separated skills (any match)"
// @Param majors query string false "Comma-separated majors (any match)"
// @Param locations query string false "Comma-separated locations (any match)"
// @Param years query string false "Comma-separated graduation years (any match)"
// @Param gpa_min query number false "GPA lower bound"
// @Param gpa_max query number false "GPA upper bound"
// @Param availability query string false "all, available, or unavailable"
// @Param graduation_year query int false "Exact graduation year"
// @Param sort_by query string false "rating, gpa, achievements, views, name, or recent"
// @Param offset query int false "Result offset"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /talent/search [get]
func (h *TalentHandler) Search(c *gin.Context) {
	query, err := h.parseQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	result, err := h.search.Search(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Facets godoc
// @Summary List the distinct values of a filterable attribute
// @Tags Talent
// @Produce json
// @Param attribute path string true "skills, majors, locations, years, or categories"
// @Success 200 {object} response.Envelope
// @Router /talent/facets/{attribute} [get]
func (h *TalentHandler) Facets(c *gin.Context) {
	values, err := h.facets.Values(c.Request.Context(), models.FacetAttribute(c.Param("attribute")))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"attribute": c.Param("attribute"), "values": values}, nil)
}

// Get godoc
// @Summary View a talent profile with its approved achievements
// @Tags Talent
// @Produce json
// @Param id path string true "Profile ID"
// @Success 200 {object} response.Envelope
// @Router /talent/{id} [get]
func (h *TalentHandler) Get(c *gin.Context) {
	detail, err := h.profiles.Get(c.Request.Context(), c.Param("id"), middleware.CurrentUser(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, detail, nil)
}

// RecordView godoc
// @Summary Record a profile view
// @Tags Talent
// @Produce json
// @Param id path string true "Profile ID"
// @Success 200 {object} response.Envelope
// @Router /talent/{id}/view [post]
func (h *TalentHandler) RecordView(c *gin.Context) {
	if err := h.profiles.RecordView(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"id": c.Param("id")}, nil)
}

// ToggleSave godoc
// @Summary Save or unsave a profile for the calling employer
// @Tags Talent
// @Produce json
// @Param id path string true "Profile ID"
// @Success 200 {object} response.Envelope
// @Router /talent/{id}/save [post]
func (h *TalentHandler) ToggleSave(c *gin.Context) {
	claims := middleware.CurrentUser(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	saved, err := h.profiles.ToggleSave(c.Request.Context(), claims.UserID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"id": c.Param("id"), "saved": saved}, nil)
}

// ListSaved godoc
// @Summary List the calling employer's saved profiles
// @Tags Talent
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /talent/saved [get]
func (h *TalentHandler) ListSaved(c *gin.Context) {
	claims := middleware.CurrentUser(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	saved, err := h.profiles.ListSaved(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, saved, nil)
}

func (h *TalentHandler) parseQuery(c *gin.Context) (models.SearchQuery, error) {
	query := models.SearchQuery{
		Term:         c.Query("term"),
		Skills:       splitCSV(c.Query("skills")),
		Majors:       splitCSV(c.Query("majors")),
		Locations:    splitCSV(c.Query("locations")),
		Years:        splitCSV(c.Query("years")),
		Availability: models.Availability(c.Query("availability")),
		SortBy:       models.SortKey(c.Query("sort_by")),
		Offset:       queryInt(c, "offset", 0),
		Limit:        queryInt(c, "limit", h.cfg.DefaultPageSize),
	}

	var err error
	if query.GPAMin, err = queryFloat(c, "gpa_min"); err != nil {
		return query, err
	}
	if query.GPAMax, err = queryFloat(c, "gpa_max"); err != nil {
		return query, err
	}
	if raw := c.Query("graduation_year"); raw != "" {
		year, err := strconv.Atoi(raw)
		if err != nil {
			return query, appErrors.Clone(appErrors.ErrValidation, "graduation_year must be an integer")
		}
		query.GraduationYear = year
	}
	return query, nil
}

func queryFloat(c *gin.Context, key string) (float64, error) {
	raw := c.Query(key)
	if raw == "" {
		return 0, nil
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, appErrors.Clone(appErrors.ErrValidation, key+" must be a number")
	}
	return value, nil
}

func splitCSV(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	values := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			values = append(values, trimmed)
		}
	}
	return values
}
