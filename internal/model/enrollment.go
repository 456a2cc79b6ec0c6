package model

import (
	"time"

	"github.com/google/uuid"
)

// EnrollmentStatus is the lifecycle state of an enrollment.
type EnrollmentStatus string

const (
	EnrollmentPending   EnrollmentStatus = "PENDING"
	EnrollmentConfirmed EnrollmentStatus = "CONFIRMED"
	EnrollmentCancelled EnrollmentStatus = "CANCELLED"
)

// Enrollment is a user's registration in a course. Created PENDING by a
// student, moved to CONFIRMED or CANCELLED by a coordinator, or to
// CANCELLED by the owning student. CANCELLED and CONFIRMED are terminal;
// status never reverts to PENDING.
type Enrollment struct {
	ID           int              `json:"id"`
	CourseID     int              `json:"course_id"`
	UserID       uuid.UUID        `json:"user_id"`
	RegisteredAt time.Time        `json:"registered_at"`
	Status       EnrollmentStatus `json:"status"`
}

// EnrollmentWithCourse joins an enrollment with the course it belongs to,
// for listing views. The course is embedded flat, not back-referenced.
type EnrollmentWithCourse struct {
	Enrollment
	CourseCode  string    `json:"course_code"`
	CourseName  string    `json:"course_name"`
	StartTime   TimeOfDay `json:"start_time"`
	EndTime     TimeOfDay `json:"end_time"`
}
