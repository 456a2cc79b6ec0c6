package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/portalacademico/portal-backend/internal/middleware"
	"github.com/portalacademico/portal-backend/internal/response"
	"github.com/portalacademico/portal-backend/internal/service"
)

// EnrollmentHandler handles student-side enrollment actions.
type EnrollmentHandler struct {
	enrollmentService *service.EnrollmentService
	catalogService    *service.CatalogService
}

// NewEnrollmentHandler creates a new EnrollmentHandler.
func NewEnrollmentHandler(enrollmentService *service.EnrollmentService, catalogService *service.CatalogService) *EnrollmentHandler {
	return &EnrollmentHandler{
		enrollmentService: enrollmentService,
		catalogService:    catalogService,
	}
}

// EnrollPreview godoc
// GET /api/v1/courses/:id/enroll
// Returns the course a student is about to enroll in, rejecting inactive
// courses up front.
func (h *EnrollmentHandler) EnrollPreview(c *gin.Context) {
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

	if !course.Active {
		response.Fail(c, http.StatusConflict, response.ErrCourseInactive)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"course": course})
}

// Enroll godoc
// POST /api/v1/courses/:id/enroll
// Commits an enrollment through the validation chain. Every rule failure
// maps to its own error code; a constraint violation racing the check
// surfaces as a retryable persistence error, never a crash.
func (h *EnrollmentHandler) Enroll(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrNotAuthenticated)
		return
	}

	enrollment, err := h.enrollmentService.Enroll(c.Request.Context(), id, claims.UserID)
	if err != nil {
		failEnroll(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"enrollment": enrollment})
}

// MyEnrollments godoc
// GET /api/v1/me/enrollments
// Lists the requesting user's enrollments, newest first.
func (h *EnrollmentHandler) MyEnrollments(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrNotAuthenticated)
		return
	}

	enrollments, err := h.enrollmentService.ListByUser(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"enrollments": enrollments})
}

// Cancel godoc
// POST /api/v1/me/enrollments/:id/cancel
// Self-service cancellation. Only the owner may cancel; cancelling an
// already-cancelled enrollment is reported but changes nothing.
func (h *EnrollmentHandler) Cancel(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrNotAuthenticated)
		return
	}

	if err := h.enrollmentService.Cancel(c.Request.Context(), id, claims.UserID); err != nil {
		switch {
		case errors.Is(err, service.ErrEnrollmentNotFound):
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		case errors.Is(err, service.ErrAlreadyCancelled):
			response.Fail(c, http.StatusConflict, response.ErrAlreadyCancelled)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "Has cancelado tu matrícula."})
}

// failEnroll maps an enrollment workflow error to its HTTP response.
func failEnroll(c *gin.Context, err error) {
	var full *service.CourseFullError
	var conflict *service.ScheduleConflictError

	switch {
	case errors.Is(err, service.ErrCourseNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrCourseNotFound)
	case errors.Is(err, service.ErrNotAuthenticated):
		response.Fail(c, http.StatusUnauthorized, response.ErrNotAuthenticated)
	case errors.Is(err, service.ErrCourseInactive):
		response.Fail(c, http.StatusConflict, response.ErrCourseInactive)
	case errors.Is(err, service.ErrAlreadyEnrolled):
		response.Fail(c, http.StatusConflict, response.ErrAlreadyEnrolled)
	case errors.As(err, &full):
		response.FailWithMessage(c, http.StatusConflict, response.ErrCourseFull, full.Message())
	case errors.As(err, &conflict):
		response.FailWithMessage(c, http.StatusConflict, response.ErrScheduleConflict, conflict.Message())
	case errors.Is(err, service.ErrPersistence):
		response.Fail(c, http.StatusInternalServerError, response.ErrPersistence)
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}
