package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/portalacademico/portal-backend/internal/messaging"
	"github.com/portalacademico/portal-backend/internal/model"
	"github.com/rs/zerolog"
)

// fakeEnrollmentStore implements EnrollmentStore and EnrollmentTx over
// in-memory maps. InTx is not transactional, which is fine for exercising
// the rule chain.
type fakeEnrollmentStore struct {
	courses     map[int]*model.Course
	enrollments []*model.Enrollment
	nextID      int
	insertErr   error
}

func newFakeEnrollmentStore(courses ...*model.Course) *fakeEnrollmentStore {
	m := make(map[int]*model.Course, len(courses))
	for _, c := range courses {
		m[c.ID] = c
	}
	return &fakeEnrollmentStore{courses: m, nextID: 1}
}

func (f *fakeEnrollmentStore) InTx(ctx context.Context, fn func(tx EnrollmentTx) error) error {
	return fn(f)
}

func (f *fakeEnrollmentStore) LockCourse(ctx context.Context, courseID int) (*model.Course, error) {
	c, ok := f.courses[courseID]
	if !ok {
		return nil, ErrCourseNotFound
	}
	return c, nil
}

func (f *fakeEnrollmentStore) HasActiveEnrollment(ctx context.Context, userID uuid.UUID, courseID int) (bool, error) {
	for _, e := range f.enrollments {
		if e.UserID == userID && e.CourseID == courseID && e.Status != model.EnrollmentCancelled {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeEnrollmentStore) CountActive(ctx context.Context, courseID int) (int, error) {
	count := 0
	for _, e := range f.enrollments {
		if e.CourseID == courseID && e.Status != model.EnrollmentCancelled {
			count++
		}
	}
	return count, nil
}

func (f *fakeEnrollmentStore) ActiveCoursesForUser(ctx context.Context, userID uuid.UUID) ([]model.Course, error) {
	var out []model.Course
	for _, e := range f.enrollments {
		if e.UserID == userID && e.Status != model.EnrollmentCancelled {
			if c, ok := f.courses[e.CourseID]; ok {
				out = append(out, *c)
			}
		}
	}
	return out, nil
}

func (f *fakeEnrollmentStore) Insert(ctx context.Context, e *model.Enrollment) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	e.ID = f.nextID
	f.nextID++
	f.enrollments = append(f.enrollments, e)
	return nil
}

func (f *fakeEnrollmentStore) GetByID(ctx context.Context, id int) (*model.Enrollment, error) {
	for _, e := range f.enrollments {
		if e.ID == id {
			copied := *e
			return &copied, nil
		}
	}
	return nil, ErrEnrollmentNotFound
}

func (f *fakeEnrollmentStore) GetOwned(ctx context.Context, id int, userID uuid.UUID) (*model.Enrollment, error) {
	for _, e := range f.enrollments {
		if e.ID == id && e.UserID == userID {
			copied := *e
			return &copied, nil
		}
	}
	return nil, ErrEnrollmentNotFound
}

func (f *fakeEnrollmentStore) UpdateStatusIfActive(ctx context.Context, id int, status model.EnrollmentStatus) (bool, error) {
	for _, e := range f.enrollments {
		if e.ID == id && e.Status != model.EnrollmentCancelled {
			e.Status = status
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeEnrollmentStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.EnrollmentWithCourse, error) {
	return nil, nil
}

func (f *fakeEnrollmentStore) ListAll(ctx context.Context) ([]model.EnrollmentWithCourse, error) {
	return nil, nil
}

func newEnrollmentService(store *fakeEnrollmentStore) *EnrollmentService {
	return NewEnrollmentService(store, messaging.NewNoopPublisher(), zerolog.Nop())
}

func testCourse(id int, start, end model.TimeOfDay, capacity int, active bool) *model.Course {
	return &model.Course{
		ID:          id,
		Code:        "C" + string(rune('0'+id)),
		Name:        "Curso",
		Credits:     4,
		MaxCapacity: capacity,
		StartTime:   start,
		EndTime:     end,
		Active:      active,
	}
}

func TestEnrollSuccess(t *testing.T) {
	ctx := context.Background()
	store := newFakeEnrollmentStore(testCourse(1, 480, 600, 30, true))
	svc := newEnrollmentService(store)
	userID := uuid.New()

	enrollment, err := svc.Enroll(ctx, 1, userID)
	if err != nil {
		t.Fatalf("Enroll: %v", err)
	}
	if enrollment.Status != model.EnrollmentPending {
		t.Errorf("status = %q, want %q", enrollment.Status, model.EnrollmentPending)
	}
	if enrollment.ID == 0 {
		t.Error("enrollment ID not assigned")
	}
	if enrollment.RegisteredAt.IsZero() {
		t.Error("registered_at not set")
	}
}

func TestEnrollRuleChain(t *testing.T) {
	userID := uuid.New()

	tests := []struct {
		name    string
		setup   func(*fakeEnrollmentStore)
		course  int
		user    uuid.UUID
		wantErr error
	}{
		{
			name:    "course_not_found",
			setup:   func(f *fakeEnrollmentStore) {},
			course:  99,
			user:    userID,
			wantErr: ErrCourseNotFound,
		},
		{
			name:    "not_authenticated",
			setup:   func(f *fakeEnrollmentStore) {},
			course:  1,
			user:    uuid.Nil,
			wantErr: ErrNotAuthenticated,
		},
		{
			name: "course_inactive",
			setup: func(f *fakeEnrollmentStore) {
				f.courses[1].Active = false
			},
			course:  1,
			user:    userID,
			wantErr: ErrCourseInactive,
		},
		{
			name: "already_enrolled",
			setup: func(f *fakeEnrollmentStore) {
				f.enrollments = append(f.enrollments, &model.Enrollment{
					ID: 1, CourseID: 1, UserID: userID, Status: model.EnrollmentPending,
				})
				f.nextID = 2
			},
			course:  1,
			user:    userID,
			wantErr: ErrAlreadyEnrolled,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newFakeEnrollmentStore(testCourse(1, 480, 600, 30, true))
			tt.setup(store)
			svc := newEnrollmentService(store)

			_, err := svc.Enroll(context.Background(), tt.course, tt.user)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Enroll = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestEnrollCourseFull(t *testing.T) {
	ctx := context.Background()
	store := newFakeEnrollmentStore(testCourse(1, 480, 600, 2, true))
	svc := newEnrollmentService(store)

	// Fill the course.
	for i := 0; i < 2; i++ {
		if _, err := svc.Enroll(ctx, 1, uuid.New()); err != nil {
			t.Fatalf("Enroll %d: %v", i, err)
		}
	}

	_, err := svc.Enroll(ctx, 1, uuid.New())
	var full *CourseFullError
	if !errors.As(err, &full) {
		t.Fatalf("Enroll on full course = %v, want CourseFullError", err)
	}
	if full.Capacity != 2 {
		t.Errorf("Capacity = %d, want 2", full.Capacity)
	}
}

func TestEnrollCancelledSeatsFreeCapacity(t *testing.T) {
	ctx := context.Background()
	store := newFakeEnrollmentStore(testCourse(1, 480, 600, 1, true))
	svc := newEnrollmentService(store)

	first := uuid.New()
	enrollment, err := svc.Enroll(ctx, 1, first)
	if err != nil {
		t.Fatalf("Enroll: %v", err)
	}
	if err := svc.Cancel(ctx, enrollment.ID, first); err != nil {
		t.Fatalf("Cancel: %v", err)
	}

	// The freed seat is available again.
	if _, err := svc.Enroll(ctx, 1, uuid.New()); err != nil {
		t.Errorf("Enroll after cancellation = %v, want nil", err)
	}
}

func TestEnrollScheduleConflict(t *testing.T) {
	ctx := context.Background()
	store := newFakeEnrollmentStore(
		testCourse(1, 480, 600, 30, true), // 08:00-10:00
		testCourse(2, 540, 660, 30, true), // 09:00-11:00, overlaps
		testCourse(3, 600, 720, 30, true), // 10:00-12:00, back to back
	)
	svc := newEnrollmentService(store)
	userID := uuid.New()

	if _, err := svc.Enroll(ctx, 1, userID); err != nil {
		t.Fatalf("Enroll: %v", err)
	}

	_, err := svc.Enroll(ctx, 2, userID)
	var conflict *ScheduleConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("Enroll overlapping course = %v, want ScheduleConflictError", err)
	}

	// Touching windows do not conflict.
	if _, err := svc.Enroll(ctx, 3, userID); err != nil {
		t.Errorf("Enroll back-to-back course = %v, want nil", err)
	}
}

func TestEnrollReEnrollAfterCancellation(t *testing.T) {
	ctx := context.Background()
	store := newFakeEnrollmentStore(testCourse(1, 480, 600, 30, true))
	svc := newEnrollmentService(store)
	userID := uuid.New()

	enrollment, err := svc.Enroll(ctx, 1, userID)
	if err != nil {
		t.Fatalf("Enroll: %v", err)
	}
	if err := svc.Cancel(ctx, enrollment.ID, userID); err != nil {
		t.Fatalf("Cancel: %v", err)
	}

	if _, err := svc.Enroll(ctx, 1, userID); err != nil {
		t.Errorf("re-Enroll after cancellation = %v, want nil", err)
	}
}

func TestEnrollPersistenceError(t *testing.T) {
	ctx := context.Background()
	store := newFakeEnrollmentStore(testCourse(1, 480, 600, 30, true))
	store.insertErr = errors.New("duplicate key value violates unique constraint")
	svc := newEnrollmentService(store)

	_, err := svc.Enroll(ctx, 1, uuid.New())
	if !errors.Is(err, ErrPersistence) {
		t.Errorf("Enroll with failing insert = %v, want ErrPersistence", err)
	}
}

func TestCancelOwnershipAndIdempotence(t *testing.T) {
	ctx := context.Background()
	store := newFakeEnrollmentStore(testCourse(1, 480, 600, 30, true))
	svc := newEnrollmentService(store)
	owner := uuid.New()

	enrollment, err := svc.Enroll(ctx, 1, owner)
	if err != nil {
		t.Fatalf("Enroll: %v", err)
	}

	// A different user cannot see, let alone cancel, the enrollment.
	if err := svc.Cancel(ctx, enrollment.ID, uuid.New()); !errors.Is(err, ErrEnrollmentNotFound) {
		t.Errorf("Cancel by non-owner = %v, want ErrEnrollmentNotFound", err)
	}

	if err := svc.Cancel(ctx, enrollment.ID, owner); err != nil {
		t.Fatalf("Cancel: %v", err)
	}

	// Second cancellation is reported, state unchanged.
	if err := svc.Cancel(ctx, enrollment.ID, owner); !errors.Is(err, ErrAlreadyCancelled) {
		t.Errorf("second Cancel = %v, want ErrAlreadyCancelled", err)
	}
}

func TestConfirmTransitions(t *testing.T) {
	ctx := context.Background()
	store := newFakeEnrollmentStore(testCourse(1, 480, 600, 30, true))
	svc := newEnrollmentService(store)

	enrollment, err := svc.Enroll(ctx, 1, uuid.New())
	if err != nil {
		t.Fatalf("Enroll: %v", err)
	}

	if err := svc.Confirm(ctx, enrollment.ID); err != nil {
		t.Fatalf("Confirm: %v", err)
	}
	got, _ := store.GetByID(ctx, enrollment.ID)
	if got.Status != model.EnrollmentConfirmed {
		t.Errorf("status = %q, want %q", got.Status, model.EnrollmentConfirmed)
	}

	// Confirming again is a no-op.
	if err := svc.Confirm(ctx, enrollment.ID); err != nil {
		t.Errorf("second Confirm = %v, want nil", err)
	}

	if err := svc.Confirm(ctx, 99); !errors.Is(err, ErrEnrollmentNotFound) {
		t.Errorf("Confirm missing = %v, want ErrEnrollmentNotFound", err)
	}
}

func TestCancelledIsTerminal(t *testing.T) {
	ctx := context.Background()
	store := newFakeEnrollmentStore(testCourse(1, 480, 600, 30, true))
	svc := newEnrollmentService(store)
	userID := uuid.New()

	enrollment, err := svc.Enroll(ctx, 1, userID)
	if err != nil {
		t.Fatalf("Enroll: %v", err)
	}
	if err := svc.Reject(ctx, enrollment.ID); err != nil {
		t.Fatalf("Reject: %v", err)
	}

	// No transition leaves CANCELLED.
	if err := svc.Confirm(ctx, enrollment.ID); !errors.Is(err, ErrAlreadyCancelled) {
		t.Errorf("Confirm cancelled = %v, want ErrAlreadyCancelled", err)
	}
	if err := svc.Reject(ctx, enrollment.ID); !errors.Is(err, ErrAlreadyCancelled) {
		t.Errorf("Reject cancelled = %v, want ErrAlreadyCancelled", err)
	}

	got, _ := store.GetByID(ctx, enrollment.ID)
	if got.Status != model.EnrollmentCancelled {
		t.Errorf("status = %q, want %q", got.Status, model.EnrollmentCancelled)
	}
}

func TestEnrollmentEventsPublished(t *testing.T) {
	ctx := context.Background()
	store := newFakeEnrollmentStore(testCourse(1, 480, 600, 30, true))
	publisher := &capturePublisher{}
	svc := NewEnrollmentService(store, publisher, zerolog.Nop())
	userID := uuid.New()

	enrollment, err := svc.Enroll(ctx, 1, userID)
	if err != nil {
		t.Fatalf("Enroll: %v", err)
	}
	if err := svc.Confirm(ctx, enrollment.ID); err != nil {
		t.Fatalf("Confirm: %v", err)
	}

	if len(publisher.events) != 2 {
		t.Fatalf("got %d events, want 2", len(publisher.events))
	}
	if publisher.events[0].Type != messaging.EventEnrollmentCreated {
		t.Errorf("first event = %q, want %q", publisher.events[0].Type, messaging.EventEnrollmentCreated)
	}
	if publisher.events[1].Type != messaging.EventEnrollmentConfirmed {
		t.Errorf("second event = %q, want %q", publisher.events[1].Type, messaging.EventEnrollmentConfirmed)
	}
	if publisher.events[0].UserID != userID.String() {
		t.Errorf("event user = %q, want %q", publisher.events[0].UserID, userID)
	}
}

func TestEnrollSurvivesPublisherFailure(t *testing.T) {
	ctx := context.Background()
	store := newFakeEnrollmentStore(testCourse(1, 480, 600, 30, true))
	publisher := &capturePublisher{err: errors.New("broker down")}
	svc := NewEnrollmentService(store, publisher, zerolog.Nop())

	if _, err := svc.Enroll(ctx, 1, uuid.New()); err != nil {
		t.Errorf("Enroll with failing publisher = %v, want nil", err)
	}
}

// capturePublisher records published events for assertions.
type capturePublisher struct {
	events []messaging.EnrollmentEvent
	err    error
}

func (p *capturePublisher) PublishEnrollmentEvent(ctx context.Context, evt messaging.EnrollmentEvent) error {
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, evt)
	return nil
}

func (p *capturePublisher) Close() error { return nil }

func TestEnrollmentTimestamps(t *testing.T) {
	ctx := context.Background()
	store := newFakeEnrollmentStore(testCourse(1, 480, 600, 30, true))
	svc := newEnrollmentService(store)

	before := time.Now()
	enrollment, err := svc.Enroll(ctx, 1, uuid.New())
	if err != nil {
		t.Fatalf("Enroll: %v", err)
	}
	if enrollment.RegisteredAt.Before(before) || enrollment.RegisteredAt.After(time.Now()) {
		t.Errorf("RegisteredAt = %v, want between call start and now", enrollment.RegisteredAt)
	}
}
