package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/portalacademico/portal-backend/internal/cache"
	"github.com/portalacademico/portal-backend/internal/config"
	"github.com/portalacademico/portal-backend/internal/model"
	"github.com/rs/zerolog"
)

// Catalog sources reported to callers.
const (
	SourceCache = "cache"
	SourceStore = "store"
)

// lastViewedTTL matches the session idle lifetime.
const lastViewedTTL = 30 * time.Minute

// CourseCatalogStore is the course store surface the catalog needs.
// Implemented by repository.CourseRepository.
type CourseCatalogStore interface {
	ListActiveSummaries(ctx context.Context) ([]model.CourseSummary, error)
	SearchSummaries(ctx context.Context, f model.CatalogFilters) ([]model.CourseSummary, error)
	GetSummaryByID(ctx context.Context, id int) (*model.CourseSummary, error)
}

// CatalogService serves the filterable active-courses catalog, choosing
// between the cache and the store.
type CatalogService struct {
	courses  CourseCatalogStore
	cache    *CatalogCache
	sessions cache.Store
	log      zerolog.Logger
}

// NewCatalogService creates a new CatalogService. sessions holds the
// per-user last-viewed-course projection.
func NewCatalogService(courses CourseCatalogStore, catalogCache *CatalogCache, sessions cache.Store, log zerolog.Logger) *CatalogService {
	return &CatalogService{
		courses:  courses,
		cache:    catalogCache,
		sessions: sessions,
		log:      log.With().Str("component", "catalog_service").Logger(),
	}
}

// Catalog returns the active courses matching the supplied filters, the
// source the result came from, and warnings for any discarded filters.
//
// With zero filters the cache is tried first; a miss falls back to the
// store and repopulates the cache. Any supplied filter bypasses the cache
// entirely. Out-of-range filters are discarded with a field warning
// instead of failing the request.
func (s *CatalogService) Catalog(ctx context.Context, filters model.CatalogFilters) ([]model.CourseSummary, string, map[string]string, error) {
	filters, warnings := normalizeFilters(filters)

	if filters.Empty() {
		if cached, ok := s.cache.Get(ctx); ok {
			return cached, SourceCache, warnings, nil
		}

		summaries, err := s.courses.ListActiveSummaries(ctx)
		if err != nil {
			return nil, "", warnings, err
		}
		if summaries == nil {
			summaries = []model.CourseSummary{}
		}
		s.cache.Set(ctx, summaries)
		return summaries, SourceStore, warnings, nil
	}

	summaries, err := s.courses.SearchSummaries(ctx, filters)
	if err != nil {
		return nil, "", warnings, err
	}
	if summaries == nil {
		summaries = []model.CourseSummary{}
	}
	return summaries, SourceStore, warnings, nil
}

// Detail returns a single course's read-model (active or not).
func (s *CatalogService) Detail(ctx context.Context, id int) (*model.CourseSummary, error) {
	return s.courses.GetSummaryByID(ctx, id)
}

// RecordLastViewed persists the user's last-viewed-course projection with
// the session idle lifetime. Best-effort: failures are only logged.
func (s *CatalogService) RecordLastViewed(ctx context.Context, userID uuid.UUID, course *model.CourseSummary) {
	projection := model.LastViewedCourse{
		ID:   course.ID,
		Code: course.Code,
		Name: course.Name,
	}
	raw, err := json.Marshal(projection)
	if err != nil {
		return
	}
	key := config.CacheKey.LastViewedCourseKey(userID)
	if err := s.sessions.Set(ctx, key, string(raw), lastViewedTTL); err != nil {
		s.log.Debug().Err(err).Msg("Last-viewed write failed")
	}
}

// LastViewed returns the user's last-viewed-course projection, or nil if
// none is stored (or the session store is unavailable).
func (s *CatalogService) LastViewed(ctx context.Context, userID uuid.UUID) *model.LastViewedCourse {
	raw, found, err := s.sessions.Get(ctx, config.CacheKey.LastViewedCourseKey(userID))
	if err != nil || !found {
		return nil
	}
	var projection model.LastViewedCourse
	if err := json.Unmarshal([]byte(raw), &projection); err != nil {
		return nil
	}
	return &projection
}

// normalizeFilters applies the filter validation rules: negative credit
// bounds are discarded, and an end-time bound at or before the start-time
// bound is discarded. Each discard records a field warning.
func normalizeFilters(f model.CatalogFilters) (model.CatalogFilters, map[string]string) {
	warnings := map[string]string{}

	if f.CreditsMin != nil && *f.CreditsMin < 0 {
		warnings["credits_min"] = "Los créditos no pueden ser negativos"
		f.CreditsMin = nil
	}
	if f.CreditsMax != nil && *f.CreditsMax < 0 {
		warnings["credits_max"] = "Los créditos no pueden ser negativos"
		f.CreditsMax = nil
	}
	if f.TimeStart != nil && f.TimeEnd != nil && *f.TimeEnd <= *f.TimeStart {
		warnings["time_end"] = "El horario de fin debe ser posterior al de inicio"
		f.TimeEnd = nil
	}

	return f, warnings
}
