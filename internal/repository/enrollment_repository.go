package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/portalacademico/portal-backend/internal/model"
	"github.com/portalacademico/portal-backend/internal/service"
)

// EnrollmentRepository handles enrollment data access. It implements
// service.EnrollmentStore; the transactional enroll path runs through
// InTx with the course row locked.
type EnrollmentRepository struct {
	pool *pgxpool.Pool
}

// NewEnrollmentRepository creates a new EnrollmentRepository.
func NewEnrollmentRepository(pool *pgxpool.Pool) *EnrollmentRepository {
	return &EnrollmentRepository{pool: pool}
}

// InTx runs fn inside a single database transaction. The transaction is
// rolled back if fn returns an error.
func (r *EnrollmentRepository) InTx(ctx context.Context, fn func(tx service.EnrollmentTx) error) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(&enrollmentTx{tx: tx})
	})
}

// GetByID retrieves an enrollment by its ID.
func (r *EnrollmentRepository) GetByID(ctx context.Context, id int) (*model.Enrollment, error) {
	e := &model.Enrollment{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, course_id, user_id, registered_at, status
		 FROM enrollments WHERE id = $1`, id,
	).Scan(&e.ID, &e.CourseID, &e.UserID, &e.RegisteredAt, &e.Status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, service.ErrEnrollmentNotFound
		}
		return nil, err
	}
	return e, nil
}

// GetOwned retrieves an enrollment by ID only if it belongs to userID.
func (r *EnrollmentRepository) GetOwned(ctx context.Context, id int, userID uuid.UUID) (*model.Enrollment, error) {
	e := &model.Enrollment{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, course_id, user_id, registered_at, status
		 FROM enrollments WHERE id = $1 AND user_id = $2`, id, userID,
	).Scan(&e.ID, &e.CourseID, &e.UserID, &e.RegisteredAt, &e.Status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, service.ErrEnrollmentNotFound
		}
		return nil, err
	}
	return e, nil
}

// UpdateStatusIfActive sets the status of a non-cancelled enrollment.
// Returns false when the enrollment was already cancelled (or gone): a
// cancelled enrollment never changes state again.
func (r *EnrollmentRepository) UpdateStatusIfActive(ctx context.Context, id int, status model.EnrollmentStatus) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE enrollments SET status = $1 WHERE id = $2 AND status <> 'CANCELLED'`,
		status, id,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

const enrollmentWithCourseSelect = `
	SELECT e.id, e.course_id, e.user_id, e.registered_at, e.status,
	       c.code, c.name, c.start_min, c.end_min
	  FROM enrollments e
	  JOIN courses c ON c.id = e.course_id`

// ListByUser retrieves a user's enrollments, newest first.
func (r *EnrollmentRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.EnrollmentWithCourse, error) {
	rows, err := r.pool.Query(ctx,
		enrollmentWithCourseSelect+` WHERE e.user_id = $1 ORDER BY e.registered_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectEnrollments(rows)
}

// ListAll retrieves every enrollment for coordinator review, newest first.
func (r *EnrollmentRepository) ListAll(ctx context.Context) ([]model.EnrollmentWithCourse, error) {
	rows, err := r.pool.Query(ctx,
		enrollmentWithCourseSelect+` ORDER BY e.registered_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectEnrollments(rows)
}

func collectEnrollments(rows pgx.Rows) ([]model.EnrollmentWithCourse, error) {
	var list []model.EnrollmentWithCourse
	for rows.Next() {
		var e model.EnrollmentWithCourse
		var startMin, endMin int
		if err := rows.Scan(&e.ID, &e.CourseID, &e.UserID, &e.RegisteredAt, &e.Status,
			&e.CourseCode, &e.CourseName, &startMin, &endMin); err != nil {
			return nil, err
		}
		e.StartTime = model.TimeOfDay(startMin)
		e.EndTime = model.TimeOfDay(endMin)
		list = append(list, e)
	}
	return list, rows.Err()
}

// enrollmentTx implements service.EnrollmentTx over a pgx transaction.
type enrollmentTx struct {
	tx pgx.Tx
}

// LockCourse reads a course with FOR UPDATE, serializing concurrent
// enrollment attempts on the same course so the capacity check and the
// insert happen under one lock.
func (t *enrollmentTx) LockCourse(ctx context.Context, courseID int) (*model.Course, error) {
	c := &model.Course{}
	var startMin, endMin int
	err := t.tx.QueryRow(ctx,
		`SELECT id, code, name, credits, max_capacity, start_min, end_min, active, created_at, updated_at
		 FROM courses WHERE id = $1 FOR UPDATE`, courseID,
	).Scan(&c.ID, &c.Code, &c.Name, &c.Credits, &c.MaxCapacity, &startMin, &endMin, &c.Active, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, service.ErrCourseNotFound
		}
		return nil, err
	}
	c.StartTime = model.TimeOfDay(startMin)
	c.EndTime = model.TimeOfDay(endMin)
	return c, nil
}

// HasActiveEnrollment reports whether the user already holds a
// non-cancelled enrollment in the course.
func (t *enrollmentTx) HasActiveEnrollment(ctx context.Context, userID uuid.UUID, courseID int) (bool, error) {
	var exists bool
	err := t.tx.QueryRow(ctx,
		`SELECT EXISTS (
		   SELECT 1 FROM enrollments
		    WHERE user_id = $1 AND course_id = $2 AND status <> 'CANCELLED')`,
		userID, courseID,
	).Scan(&exists)
	return exists, err
}

// CountActive returns the number of non-cancelled enrollments in a course.
func (t *enrollmentTx) CountActive(ctx context.Context, courseID int) (int, error) {
	var count int
	err := t.tx.QueryRow(ctx,
		`SELECT COUNT(*) FROM enrollments WHERE course_id = $1 AND status <> 'CANCELLED'`,
		courseID,
	).Scan(&count)
	return count, err
}

// ActiveCoursesForUser returns the courses in which the user holds a
// non-cancelled enrollment, for the schedule-overlap check.
func (t *enrollmentTx) ActiveCoursesForUser(ctx context.Context, userID uuid.UUID) ([]model.Course, error) {
	rows, err := t.tx.Query(ctx,
		`SELECT c.id, c.code, c.name, c.credits, c.max_capacity, c.start_min, c.end_min, c.active, c.created_at, c.updated_at
		   FROM enrollments e
		   JOIN courses c ON c.id = e.course_id
		  WHERE e.user_id = $1 AND e.status <> 'CANCELLED'`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var courses []model.Course
	for rows.Next() {
		var c model.Course
		var startMin, endMin int
		if err := rows.Scan(&c.ID, &c.Code, &c.Name, &c.Credits, &c.MaxCapacity,
			&startMin, &endMin, &c.Active, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		c.StartTime = model.TimeOfDay(startMin)
		c.EndTime = model.TimeOfDay(endMin)
		courses = append(courses, c)
	}
	return courses, rows.Err()
}

// Insert persists a new enrollment.
func (t *enrollmentTx) Insert(ctx context.Context, e *model.Enrollment) error {
	return t.tx.QueryRow(ctx,
		`INSERT INTO enrollments (course_id, user_id, registered_at, status)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id`,
		e.CourseID, e.UserID, e.RegisteredAt, e.Status,
	).Scan(&e.ID)
}
