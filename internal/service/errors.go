package service

import (
	"errors"
	"fmt"

	"github.com/portalacademico/portal-backend/internal/model"
)

// Domain errors shared by the services. Handlers map these to ErrCodes.
var (
	ErrCourseNotFound     = errors.New("course not found")
	ErrEnrollmentNotFound = errors.New("enrollment not found")
	ErrUserNotFound       = errors.New("user not found")
	ErrNotAuthenticated   = errors.New("no authenticated user")
	ErrCourseInactive     = errors.New("course is not active")
	ErrAlreadyEnrolled    = errors.New("already enrolled in this course")
	ErrAlreadyCancelled   = errors.New("enrollment is already cancelled")
	ErrInvalidSchedule    = errors.New("course end time must be after start time")
	ErrEmailTaken         = errors.New("email is already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrPersistence wraps store failures on the enrollment write path,
	// including a unique-constraint violation from a concurrent enroll.
	ErrPersistence = errors.New("enrollment could not be persisted")
)

// CourseFullError is returned when a course has no remaining capacity.
type CourseFullError struct {
	Capacity int
}

func (e *CourseFullError) Error() string {
	return fmt.Sprintf("course has reached its maximum capacity (%d)", e.Capacity)
}

// Message is the user-facing Spanish description.
func (e *CourseFullError) Message() string {
	return fmt.Sprintf("El curso ha alcanzado su cupo máximo (%d estudiantes).", e.Capacity)
}

// ScheduleConflictError is returned when the candidate course's time
// window overlaps a course the user is already enrolled in.
type ScheduleConflictError struct {
	CourseName string
	StartTime  model.TimeOfDay
	EndTime    model.TimeOfDay
}

func (e *ScheduleConflictError) Error() string {
	return fmt.Sprintf("schedule overlaps with %q (%s - %s)", e.CourseName, e.StartTime, e.EndTime)
}

// Message is the user-facing Spanish description naming the conflicting
// course and its window.
func (e *ScheduleConflictError) Message() string {
	return fmt.Sprintf("El horario de este curso se solapa con '%s' (%s - %s).",
		e.CourseName, e.StartTime, e.EndTime)
}
