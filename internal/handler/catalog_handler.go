package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/portalacademico/portal-backend/internal/middleware"
	"github.com/portalacademico/portal-backend/internal/model"
	"github.com/portalacademico/portal-backend/internal/response"
	"github.com/portalacademico/portal-backend/internal/service"
)

// CatalogHandler handles the public course catalog and the per-user
// last-viewed-course projection.
type CatalogHandler struct {
	catalogService *service.CatalogService
}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler(catalogService *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalogService: catalogService}
}

// Catalog godoc
// GET /api/v1/courses?q=&credits_min=&credits_max=&time_start=&time_end=
// Lists active courses. Unparseable or out-of-range filters are discarded
// with a warning instead of failing the request.
func (h *CatalogHandler) Catalog(c *gin.Context) {
	filters, warnings := parseCatalogFilters(c)

	courses, source, serviceWarnings, err := h.catalogService.Catalog(c.Request.Context(), filters)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	for field, msg := range serviceWarnings {
		warnings[field] = msg
	}

	payload := gin.H{
		"courses": courses,
		"source":  source,
	}
	if len(warnings) > 0 {
		payload["warnings"] = warnings
	}
	response.Success(c, http.StatusOK, payload)
}

// Detail godoc
// GET /api/v1/courses/:id
// Returns a single course. Side effect: records the last-viewed-course
// projection for authenticated users (best-effort).
func (h *CatalogHandler) Detail(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	course, err := h.catalogService.Detail(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrCourseNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrCourseNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	if claims := middleware.GetClaims(c); claims != nil {
		h.catalogService.RecordLastViewed(c.Request.Context(), claims.UserID, course)
	}

	response.Success(c, http.StatusOK, gin.H{"course": course})
}

// LastViewed godoc
// GET /api/v1/me/last-viewed-course
// Returns the user's last-viewed-course projection, or null when none is
// stored.
func (h *CatalogHandler) LastViewed(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	projection := h.catalogService.LastViewed(c.Request.Context(), claims.UserID)
	response.Success(c, http.StatusOK, gin.H{"last_viewed_course": projection})
}

// parseCatalogFilters reads the optional catalog query parameters.
// Malformed values are discarded with a field warning; the request never
// fails on filter input.
func parseCatalogFilters(c *gin.Context) (model.CatalogFilters, map[string]string) {
	filters := model.CatalogFilters{Query: c.Query("q")}
	warnings := map[string]string{}

	if raw := c.Query("credits_min"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			filters.CreditsMin = &n
		} else {
			warnings["credits_min"] = "Los créditos deben ser un número"
		}
	}
	if raw := c.Query("credits_max"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			filters.CreditsMax = &n
		} else {
			warnings["credits_max"] = "Los créditos deben ser un número"
		}
	}
	if raw := c.Query("time_start"); raw != "" {
		if t, err := model.ParseTimeOfDay(raw); err == nil {
			filters.TimeStart = &t
		} else {
			warnings["time_start"] = "El horario debe tener formato HH:MM"
		}
	}
	if raw := c.Query("time_end"); raw != "" {
		if t, err := model.ParseTimeOfDay(raw); err == nil {
			filters.TimeEnd = &t
		} else {
			warnings["time_end"] = "El horario debe tener formato HH:MM"
		}
	}

	return filters, warnings
}
