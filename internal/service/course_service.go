package service

import (
	"context"

	"github.com/portalacademico/portal-backend/internal/model"
	"github.com/rs/zerolog"
)

// CourseStore is the course store surface for coordinator management.
// Implemented by repository.CourseRepository.
type CourseStore interface {
	GetByID(ctx context.Context, id int) (*model.Course, error)
	List(ctx context.Context) ([]model.Course, error)
	Create(ctx context.Context, c *model.Course) error
	Update(ctx context.Context, c *model.Course) error
}

// CourseService handles coordinator-side course management. Every
// mutation invalidates the catalog cache before returning, so the next
// unfiltered catalog read reflects the change.
type CourseService struct {
	courses CourseStore
	cache   *CatalogCache
	log     zerolog.Logger
}

// NewCourseService creates a new CourseService.
func NewCourseService(courses CourseStore, catalogCache *CatalogCache, log zerolog.Logger) *CourseService {
	return &CourseService{
		courses: courses,
		cache:   catalogCache,
		log:     log.With().Str("component", "course_service").Logger(),
	}
}

// GetByID retrieves a course by its ID.
func (s *CourseService) GetByID(ctx context.Context, id int) (*model.Course, error) {
	return s.courses.GetByID(ctx, id)
}

// List retrieves all courses, active and inactive.
func (s *CourseService) List(ctx context.Context) ([]model.Course, error) {
	return s.courses.List(ctx)
}

// Create validates and inserts a new course, then invalidates the
// catalog cache.
func (s *CourseService) Create(ctx context.Context, c *model.Course) error {
	if c.EndTime <= c.StartTime {
		return ErrInvalidSchedule
	}
	if err := s.courses.Create(ctx, c); err != nil {
		return err
	}
	s.cache.Invalidate(ctx)
	s.log.Info().Int("course_id", c.ID).Str("code", c.Code).Msg("Course created")
	return nil
}

// Update validates and persists changes to an existing course, then
// invalidates the catalog cache. Deactivation happens here via the
// active flag; courses are never deleted.
func (s *CourseService) Update(ctx context.Context, c *model.Course) error {
	if c.EndTime <= c.StartTime {
		return ErrInvalidSchedule
	}
	if err := s.courses.Update(ctx, c); err != nil {
		return err
	}
	s.cache.Invalidate(ctx)
	s.log.Info().Int("course_id", c.ID).Str("code", c.Code).Msg("Course updated")
	return nil
}
