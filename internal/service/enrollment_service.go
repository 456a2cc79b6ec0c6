package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/portalacademico/portal-backend/internal/messaging"
	"github.com/portalacademico/portal-backend/internal/metrics"
	"github.com/portalacademico/portal-backend/internal/model"
	"github.com/rs/zerolog"
)

// EnrollmentTx is the transactional surface of the enroll path. All
// methods run inside one database transaction with the course row locked,
// so the capacity check and the insert cannot race a concurrent enroll.
type EnrollmentTx interface {
	LockCourse(ctx context.Context, courseID int) (*model.Course, error)
	HasActiveEnrollment(ctx context.Context, userID uuid.UUID, courseID int) (bool, error)
	CountActive(ctx context.Context, courseID int) (int, error)
	ActiveCoursesForUser(ctx context.Context, userID uuid.UUID) ([]model.Course, error)
	Insert(ctx context.Context, e *model.Enrollment) error
}

// EnrollmentStore is the enrollment store surface. Implemented by
// repository.EnrollmentRepository.
type EnrollmentStore interface {
	InTx(ctx context.Context, fn func(tx EnrollmentTx) error) error
	GetByID(ctx context.Context, id int) (*model.Enrollment, error)
	GetOwned(ctx context.Context, id int, userID uuid.UUID) (*model.Enrollment, error)
	UpdateStatusIfActive(ctx context.Context, id int, status model.EnrollmentStatus) (bool, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]model.EnrollmentWithCourse, error)
	ListAll(ctx context.Context) ([]model.EnrollmentWithCourse, error)
}

// EnrollmentService runs the enrollment workflow: the ordered validation
// chain on enroll, self-service cancellation, and coordinator
// confirm/cancel transitions.
type EnrollmentService struct {
	store     EnrollmentStore
	publisher messaging.Publisher
	log       zerolog.Logger
}

// NewEnrollmentService creates a new EnrollmentService.
func NewEnrollmentService(store EnrollmentStore, publisher messaging.Publisher, log zerolog.Logger) *EnrollmentService {
	return &EnrollmentService{
		store:     store,
		publisher: publisher,
		log:       log.With().Str("component", "enrollment_service").Logger(),
	}
}

// Enroll validates and commits an enrollment request. The rule chain
// short-circuits on the first failure, in order: course exists, user
// authenticated, course active, not already enrolled, capacity remaining,
// no schedule overlap. On success the enrollment is created PENDING.
//
// The whole chain runs in one transaction with the course row locked, so
// two users racing for the last seat cannot both get it.
func (s *EnrollmentService) Enroll(ctx context.Context, courseID int, userID uuid.UUID) (*model.Enrollment, error) {
	var enrollment *model.Enrollment
	var course *model.Course

	err := s.store.InTx(ctx, func(tx EnrollmentTx) error {
		var err error
		course, err = tx.LockCourse(ctx, courseID)
		if err != nil {
			return err
		}

		if userID == uuid.Nil {
			return ErrNotAuthenticated
		}

		if !course.Active {
			return ErrCourseInactive
		}

		enrolled, err := tx.HasActiveEnrollment(ctx, userID, courseID)
		if err != nil {
			return fmt.Errorf("check existing enrollment: %w", err)
		}
		if enrolled {
			return ErrAlreadyEnrolled
		}

		count, err := tx.CountActive(ctx, courseID)
		if err != nil {
			return fmt.Errorf("count enrollments: %w", err)
		}
		if count >= course.MaxCapacity {
			return &CourseFullError{Capacity: course.MaxCapacity}
		}

		others, err := tx.ActiveCoursesForUser(ctx, userID)
		if err != nil {
			return fmt.Errorf("list user courses: %w", err)
		}
		for i := range others {
			if others[i].OverlapsWindow(course.StartTime, course.EndTime) {
				return &ScheduleConflictError{
					CourseName: others[i].Name,
					StartTime:  others[i].StartTime,
					EndTime:    others[i].EndTime,
				}
			}
		}

		enrollment = &model.Enrollment{
			CourseID:     courseID,
			UserID:       userID,
			RegisteredAt: time.Now(),
			Status:       model.EnrollmentPending,
		}
		if err := tx.Insert(ctx, enrollment); err != nil {
			return fmt.Errorf("%w: %v", ErrPersistence, err)
		}
		return nil
	})
	if err != nil {
		metrics.Enrollments.WithLabelValues(enrollResult(err)).Inc()
		return nil, err
	}

	metrics.Enrollments.WithLabelValues("ok").Inc()
	s.log.Info().
		Int("enrollment_id", enrollment.ID).
		Int("course_id", courseID).
		Str("user_id", userID.String()).
		Msg("Enrollment created")

	s.publish(ctx, messaging.EventEnrollmentCreated, enrollment, course.Code)
	return enrollment, nil
}

// Cancel transitions a user's own enrollment to CANCELLED. Cancelling an
// already-cancelled enrollment reports ErrAlreadyCancelled and leaves
// state unchanged.
func (s *EnrollmentService) Cancel(ctx context.Context, enrollmentID int, userID uuid.UUID) error {
	enrollment, err := s.store.GetOwned(ctx, enrollmentID, userID)
	if err != nil {
		return err
	}
	if enrollment.Status == model.EnrollmentCancelled {
		return ErrAlreadyCancelled
	}

	updated, err := s.store.UpdateStatusIfActive(ctx, enrollmentID, model.EnrollmentCancelled)
	if err != nil {
		return err
	}
	if !updated {
		// Lost a race with another cancellation.
		return ErrAlreadyCancelled
	}

	s.log.Info().Int("enrollment_id", enrollmentID).Msg("Enrollment cancelled by student")
	enrollment.Status = model.EnrollmentCancelled
	s.publish(ctx, messaging.EventEnrollmentCancelled, enrollment, "")
	return nil
}

// Confirm transitions an enrollment to CONFIRMED (coordinator action,
// no ownership check). Confirming an already-confirmed enrollment is an
// idempotent no-op; a cancelled enrollment never leaves CANCELLED and
// reports ErrAlreadyCancelled.
func (s *EnrollmentService) Confirm(ctx context.Context, enrollmentID int) error {
	enrollment, err := s.store.GetByID(ctx, enrollmentID)
	if err != nil {
		return err
	}
	switch enrollment.Status {
	case model.EnrollmentCancelled:
		return ErrAlreadyCancelled
	case model.EnrollmentConfirmed:
		return nil
	}

	updated, err := s.store.UpdateStatusIfActive(ctx, enrollmentID, model.EnrollmentConfirmed)
	if err != nil {
		return err
	}
	if !updated {
		return ErrAlreadyCancelled
	}

	s.log.Info().Int("enrollment_id", enrollmentID).Msg("Enrollment confirmed")
	enrollment.Status = model.EnrollmentConfirmed
	s.publish(ctx, messaging.EventEnrollmentConfirmed, enrollment, "")
	return nil
}

// Reject transitions an enrollment to CANCELLED (coordinator action).
func (s *EnrollmentService) Reject(ctx context.Context, enrollmentID int) error {
	enrollment, err := s.store.GetByID(ctx, enrollmentID)
	if err != nil {
		return err
	}
	if enrollment.Status == model.EnrollmentCancelled {
		return ErrAlreadyCancelled
	}

	updated, err := s.store.UpdateStatusIfActive(ctx, enrollmentID, model.EnrollmentCancelled)
	if err != nil {
		return err
	}
	if !updated {
		return ErrAlreadyCancelled
	}

	s.log.Info().Int("enrollment_id", enrollmentID).Msg("Enrollment cancelled by coordinator")
	enrollment.Status = model.EnrollmentCancelled
	s.publish(ctx, messaging.EventEnrollmentCancelled, enrollment, "")
	return nil
}

// ListByUser returns the user's enrollments with course data, newest first.
func (s *EnrollmentService) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.EnrollmentWithCourse, error) {
	list, err := s.store.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []model.EnrollmentWithCourse{}
	}
	return list, nil
}

// ListAll returns every enrollment for coordinator review, newest first.
func (s *EnrollmentService) ListAll(ctx context.Context) ([]model.EnrollmentWithCourse, error) {
	list, err := s.store.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []model.EnrollmentWithCourse{}
	}
	return list, nil
}

// publish emits an enrollment event best-effort. Broker failures never
// fail the request.
func (s *EnrollmentService) publish(ctx context.Context, eventType string, e *model.Enrollment, courseCode string) {
	evt := messaging.EnrollmentEvent{
		Type:         eventType,
		EnrollmentID: e.ID,
		CourseID:     e.CourseID,
		CourseCode:   courseCode,
		UserID:       e.UserID.String(),
		Status:       string(e.Status),
		OccurredAt:   time.Now().UTC(),
	}
	if err := s.publisher.PublishEnrollmentEvent(ctx, evt); err != nil {
		s.log.Warn().Err(err).Str("type", eventType).Msg("Event publish failed")
	}
}

// enrollResult maps an enroll error to its metrics label.
func enrollResult(err error) string {
	var full *CourseFullError
	var conflict *ScheduleConflictError

	switch {
	case errors.Is(err, ErrCourseNotFound):
		return "course_not_found"
	case errors.Is(err, ErrNotAuthenticated):
		return "not_authenticated"
	case errors.Is(err, ErrCourseInactive):
		return "course_inactive"
	case errors.Is(err, ErrAlreadyEnrolled):
		return "already_enrolled"
	case errors.As(err, &full):
		return "course_full"
	case errors.As(err, &conflict):
		return "schedule_conflict"
	case errors.Is(err, ErrPersistence):
		return "persistence_error"
	default:
		return "error"
	}
}
