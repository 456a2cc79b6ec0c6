package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/portalacademico/portal-backend/internal/cache"
	"github.com/portalacademico/portal-backend/internal/config"
	"github.com/portalacademico/portal-backend/internal/metrics"
	"github.com/portalacademico/portal-backend/internal/model"
	"github.com/rs/zerolog"
)

// catalogTTL is the fixed lifetime of the cached active-courses list.
const catalogTTL = 60 * time.Second

// CatalogCache is the read-through cache over the single fixed
// active-courses key. Every error is treated as a miss: cache
// unavailability never fails a catalog request.
type CatalogCache struct {
	store cache.Store
	log   zerolog.Logger
}

// NewCatalogCache creates a CatalogCache over the given store.
func NewCatalogCache(store cache.Store, log zerolog.Logger) *CatalogCache {
	return &CatalogCache{
		store: store,
		log:   log.With().Str("component", "catalog_cache").Logger(),
	}
}

// Get returns the cached catalog read-model, or found=false on miss,
// expiry, cache error, or corrupt payload.
func (c *CatalogCache) Get(ctx context.Context) ([]model.CourseSummary, bool) {
	raw, found, err := c.store.Get(ctx, config.CacheKey.ActiveCoursesKey())
	if err != nil {
		c.log.Debug().Err(err).Msg("Cache read failed, falling through to store")
		metrics.CatalogCacheMisses.Inc()
		return nil, false
	}
	if !found {
		metrics.CatalogCacheMisses.Inc()
		return nil, false
	}

	var summaries []model.CourseSummary
	if err := json.Unmarshal([]byte(raw), &summaries); err != nil {
		c.log.Warn().Err(err).Msg("Corrupt catalog cache entry, invalidating")
		_ = c.store.Delete(ctx, config.CacheKey.ActiveCoursesKey())
		metrics.CatalogCacheMisses.Inc()
		return nil, false
	}

	metrics.CatalogCacheHits.Inc()
	return summaries, true
}

// Set stores the catalog read-model with the fixed 60-second TTL.
// Write failures are only logged.
func (c *CatalogCache) Set(ctx context.Context, summaries []model.CourseSummary) {
	raw, err := json.Marshal(summaries)
	if err != nil {
		c.log.Warn().Err(err).Msg("Marshal catalog for cache failed")
		return
	}
	if err := c.store.Set(ctx, config.CacheKey.ActiveCoursesKey(), string(raw), catalogTTL); err != nil {
		c.log.Debug().Err(err).Msg("Cache write failed")
		return
	}
	c.log.Debug().Int("courses", len(summaries)).Msg("Catalog cached")
}

// Invalidate drops the cached catalog. Called by every coordinator-side
// course mutation before it returns.
func (c *CatalogCache) Invalidate(ctx context.Context) {
	if err := c.store.Delete(ctx, config.CacheKey.ActiveCoursesKey()); err != nil {
		c.log.Warn().Err(err).Msg("Cache invalidation failed")
		return
	}
	c.log.Debug().Msg("Catalog cache invalidated")
}
