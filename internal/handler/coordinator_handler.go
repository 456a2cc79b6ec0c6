package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/portalacademico/portal-backend/internal/model"
	"github.com/portalacademico/portal-backend/internal/response"
	"github.com/portalacademico/portal-backend/internal/service"
	"github.com/portalacademico/portal-backend/internal/validator"
)

// CoordinatorHandler handles coordinator course and enrollment management.
type CoordinatorHandler struct {
	courseService     *service.CourseService
	enrollmentService *service.EnrollmentService
}

// NewCoordinatorHandler creates a new CoordinatorHandler.
func NewCoordinatorHandler(courseService *service.CourseService, enrollmentService *service.EnrollmentService) *CoordinatorHandler {
	return &CoordinatorHandler{
		courseService:     courseService,
		enrollmentService: enrollmentService,
	}
}

// ListCourses godoc
// GET /api/v1/coordinator/courses
// Lists every course, including deactivated ones.
func (h *CoordinatorHandler) ListCourses(c *gin.Context) {
	courses, err := h.courseService.List(c.Request.Context())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	if courses == nil {
		courses = []model.Course{}
	}

	response.Success(c, http.StatusOK, gin.H{"courses": courses})
}

// GetCourse godoc
// GET /api/v1/coordinator/courses/:id
func (h *CoordinatorHandler) GetCourse(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	course, err := h.courseService.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrCourseNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrCourseNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"course": course})
}

// CreateCourse godoc
// POST /api/v1/coordinator/courses
// Creates a course. The code must be unique and the schedule window must
// end after it starts. New courses default to active unless the payload
// says otherwise.
func (h *CoordinatorHandler) CreateCourse(c *gin.Context) {
	var req model.CourseRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	course, fields := courseFromRequest(&req)
	if fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	if err := h.courseService.Create(c.Request.Context(), course); err != nil {
		failCourseMutation(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"course": course})
}

// UpdateCourse godoc
// PUT /api/v1/coordinator/courses/:id
// Updates a course, including activation and deactivation via the active
// flag. Deactivated courses disappear from the catalog but keep their
// enrollments.
func (h *CoordinatorHandler) UpdateCourse(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.CourseRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	course, fields := courseFromRequest(&req)
	if fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}
	course.ID = id

	if err := h.courseService.Update(c.Request.Context(), course); err != nil {
		failCourseMutation(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"course": course})
}

// ListEnrollments godoc
// GET /api/v1/coordinator/enrollments
// Lists every enrollment with its course, newest first.
func (h *CoordinatorHandler) ListEnrollments(c *gin.Context) {
	enrollments, err := h.enrollmentService.ListAll(c.Request.Context())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"enrollments": enrollments})
}

// ConfirmEnrollment godoc
// POST /api/v1/coordinator/enrollments/:id/confirm
func (h *CoordinatorHandler) ConfirmEnrollment(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if err := h.enrollmentService.Confirm(c.Request.Context(), id); err != nil {
		failEnrollmentTransition(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "Matrícula confirmada."})
}

// CancelEnrollment godoc
// POST /api/v1/coordinator/enrollments/:id/cancel
func (h *CoordinatorHandler) CancelEnrollment(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if err := h.enrollmentService.Reject(c.Request.Context(), id); err != nil {
		failEnrollmentTransition(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "Matrícula cancelada."})
}

// courseFromRequest converts a validated CourseRequest into a Course,
// parsing the HH:MM schedule strings. Parse failures come back as
// field-level errors.
func courseFromRequest(req *model.CourseRequest) (*model.Course, map[string]string) {
	fields := make(map[string]string)

	start, err := model.ParseTimeOfDay(req.StartTime)
	if err != nil {
		fields["start_time"] = "El horario debe tener formato HH:MM"
	}
	end, err := model.ParseTimeOfDay(req.EndTime)
	if err != nil {
		fields["end_time"] = "El horario debe tener formato HH:MM"
	}
	if len(fields) > 0 {
		return nil, fields
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}

	return &model.Course{
		Code:        req.Code,
		Name:        req.Name,
		Credits:     req.Credits,
		MaxCapacity: req.MaxCapacity,
		StartTime:   start,
		EndTime:     end,
		Active:      active,
	}, nil
}

// failCourseMutation maps a course create/update error to its HTTP response.
func failCourseMutation(c *gin.Context, err error) {
	var pgErr *pgconn.PgError

	switch {
	case errors.Is(err, service.ErrInvalidSchedule):
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, map[string]string{
			"end_time": "El horario de fin debe ser posterior al de inicio",
		})
	case errors.Is(err, service.ErrCourseNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrCourseNotFound)
	case errors.As(err, &pgErr) && pgErr.Code == "23505":
		response.Fail(c, http.StatusConflict, response.ErrConflict)
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}

// failEnrollmentTransition maps a confirm/cancel error to its HTTP response.
func failEnrollmentTransition(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrEnrollmentNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	case errors.Is(err, service.ErrAlreadyCancelled):
		response.Fail(c, http.StatusConflict, response.ErrAlreadyCancelled)
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}
