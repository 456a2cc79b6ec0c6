package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/portalacademico/portal-backend/internal/model"
	"github.com/portalacademico/portal-backend/internal/service"
)

// summarySelect is the catalog read-model projection: course columns plus
// the count of non-cancelled enrollments.
const summarySelect = `
	SELECT c.id, c.code, c.name, c.credits, c.max_capacity,
	       c.start_min, c.end_min, c.active,
	       COUNT(e.id) FILTER (WHERE e.status <> 'CANCELLED') AS enrolled
	  FROM courses c
	  LEFT JOIN enrollments e ON e.course_id = c.id`

// CourseRepository handles course data access.
type CourseRepository struct {
	pool *pgxpool.Pool
}

// NewCourseRepository creates a new CourseRepository.
func NewCourseRepository(pool *pgxpool.Pool) *CourseRepository {
	return &CourseRepository{pool: pool}
}

// GetByID retrieves a course by its ID.
func (r *CourseRepository) GetByID(ctx context.Context, id int) (*model.Course, error) {
	c := &model.Course{}
	var startMin, endMin int
	err := r.pool.QueryRow(ctx,
		`SELECT id, code, name, credits, max_capacity, start_min, end_min, active, created_at, updated_at
		 FROM courses WHERE id = $1`, id,
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

// GetSummaryByID retrieves the catalog read-model for a single course,
// active or not.
func (r *CourseRepository) GetSummaryByID(ctx context.Context, id int) (*model.CourseSummary, error) {
	row := r.pool.QueryRow(ctx, summarySelect+` WHERE c.id = $1 GROUP BY c.id`, id)
	s, err := scanSummary(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, service.ErrCourseNotFound
		}
		return nil, err
	}
	return s, nil
}

// ListActiveSummaries retrieves the full unfiltered active-courses
// read-model, ordered by code. This is what populates the catalog cache.
func (r *CourseRepository) ListActiveSummaries(ctx context.Context) ([]model.CourseSummary, error) {
	rows, err := r.pool.Query(ctx, summarySelect+` WHERE c.active GROUP BY c.id ORDER BY c.code`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectSummaries(rows)
}

// escapeLike escapes LIKE wildcards so user input only matches literally.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// SearchSummaries applies the supplied catalog filters as a conjunction
// against active courses, always hitting the store fresh.
func (r *CourseRepository) SearchSummaries(ctx context.Context, f model.CatalogFilters) ([]model.CourseSummary, error) {
	conds := []string{"c.active"}
	args := []interface{}{}

	if f.Query != "" {
		args = append(args, escapeLike(f.Query))
		n := len(args)
		conds = append(conds, fmt.Sprintf(`(c.name LIKE '%%' || $%d || '%%' ESCAPE '\' OR c.code LIKE '%%' || $%d || '%%' ESCAPE '\')`, n, n))
	}
	if f.CreditsMin != nil {
		args = append(args, *f.CreditsMin)
		conds = append(conds, fmt.Sprintf("c.credits >= $%d", len(args)))
	}
	if f.CreditsMax != nil {
		args = append(args, *f.CreditsMax)
		conds = append(conds, fmt.Sprintf("c.credits <= $%d", len(args)))
	}
	if f.TimeStart != nil {
		args = append(args, int(*f.TimeStart))
		conds = append(conds, fmt.Sprintf("c.start_min >= $%d", len(args)))
	}
	if f.TimeEnd != nil {
		args = append(args, int(*f.TimeEnd))
		conds = append(conds, fmt.Sprintf("c.end_min <= $%d", len(args)))
	}

	query := summarySelect + ` WHERE ` + strings.Join(conds, " AND ") + ` GROUP BY c.id ORDER BY c.code`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectSummaries(rows)
}

// List retrieves all courses, active and inactive, for coordinator views.
func (r *CourseRepository) List(ctx context.Context) ([]model.Course, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, code, name, credits, max_capacity, start_min, end_min, active, created_at, updated_at
		 FROM courses ORDER BY code`)
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

// Create inserts a new course.
func (r *CourseRepository) Create(ctx context.Context, c *model.Course) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO courses (code, name, credits, max_capacity, start_min, end_min, active)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id, created_at, updated_at`,
		c.Code, c.Name, c.Credits, c.MaxCapacity, int(c.StartTime), int(c.EndTime), c.Active,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
}

// Update modifies an existing course.
func (r *CourseRepository) Update(ctx context.Context, c *model.Course) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE courses
		    SET code = $1, name = $2, credits = $3, max_capacity = $4,
		        start_min = $5, end_min = $6, active = $7, updated_at = CURRENT_TIMESTAMP
		  WHERE id = $8`,
		c.Code, c.Name, c.Credits, c.MaxCapacity, int(c.StartTime), int(c.EndTime), c.Active, c.ID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return service.ErrCourseNotFound
	}
	return nil
}

func scanSummary(row pgx.Row) (*model.CourseSummary, error) {
	s := &model.CourseSummary{}
	var startMin, endMin int
	err := row.Scan(&s.ID, &s.Code, &s.Name, &s.Credits, &s.MaxCapacity,
		&startMin, &endMin, &s.Active, &s.Enrolled)
	if err != nil {
		return nil, err
	}
	s.StartTime = model.TimeOfDay(startMin)
	s.EndTime = model.TimeOfDay(endMin)
	return s, nil
}

func collectSummaries(rows pgx.Rows) ([]model.CourseSummary, error) {
	var summaries []model.CourseSummary
	for rows.Next() {
		s, err := scanSummary(rows)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, *s)
	}
	return summaries, rows.Err()
}
