// Package messaging publishes enrollment lifecycle events to a message
// broker. Publishing is best-effort: the enrollment workflow never fails
// because the broker is down.
package messaging

import (
	"context"
	"time"
)

// Event types for enrollment lifecycle changes.
const (
	EventEnrollmentCreated   = "enrollment.created"
	EventEnrollmentConfirmed = "enrollment.confirmed"
	EventEnrollmentCancelled = "enrollment.cancelled"
)

// EnrollmentEvent is the message body for an enrollment state change.
type EnrollmentEvent struct {
	Type         string    `json:"type"`
	EnrollmentID int       `json:"enrollment_id"`
	CourseID     int       `json:"course_id"`
	CourseCode   string    `json:"course_code"`
	UserID       string    `json:"user_id"`
	Status       string    `json:"status"`
	OccurredAt   time.Time `json:"occurred_at"`
}

// Publisher emits enrollment events.
type Publisher interface {
	PublishEnrollmentEvent(ctx context.Context, evt EnrollmentEvent) error
	Close() error
}

// NoopPublisher discards events. Used when no broker is configured.
type NoopPublisher struct{}

// NewNoopPublisher creates a NoopPublisher.
func NewNoopPublisher() *NoopPublisher { return &NoopPublisher{} }

func (*NoopPublisher) PublishEnrollmentEvent(ctx context.Context, evt EnrollmentEvent) error {
	return nil
}

func (*NoopPublisher) Close() error { return nil }
