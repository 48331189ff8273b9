package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/NANDINI-BANIK/student-portfolio-hub/internal/models"
	appErrors "github.com/NANDINI-BANIK/student-portfolio-hub/pkg/errors"
)

const facetCachePrefix = "facets:"

type facetRecordStore interface {
	DistinctCategories(ctx context.Context) ([]string, error)
	DistinctSkills(ctx context.Context) ([]string, error)
}

type facetProfileStore interface {
	DistinctMajors(ctx context.Context) ([]string, error)
	DistinctLocations(ctx context.Context) ([]string, error)
	DistinctYears(ctx context.Context) ([]string, error)
}

type facetCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

// FacetService derives the distinct value set for each filterable attribute
// from a full scan of the current record and profile sets. Values come back
// in lexicographic order for deterministic rendering. Results are cached in
// Redis and invalidated on any workflow write.
type FacetService struct {
	records  facetRecordStore
	profiles facetProfileStore
	cache    facetCache
	ttl      time.Duration
	logger   *zap.Logger
}

// NewFacetService constructs the facet service.
func NewFacetService(records facetRecordStore, profiles facetProfileStore, cache facetCache, ttl time.Duration, logger *zap.Logger) *FacetService {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FacetService{records: records, profiles: profiles, cache: cache, ttl: ttl, logger: logger}
}

// Values returns the ordered distinct values for the named facet attribute.
func (s *FacetService) Values(ctx context.Context, attribute models.FacetAttribute) ([]string, error) {
	var loader func(context.Context) ([]string, error)
	switch attribute {
	case models.FacetSkills:
		loader = s.records.DistinctSkills
	case models.FacetCategories:
		loader = s.records.DistinctCategories
	case models.FacetMajors:
		loader = s.profiles.DistinctMajors
	case models.FacetLocations:
		loader = s.profiles.DistinctLocations
	case models.FacetYears:
		loader = s.profiles.DistinctYears
	default:
		return nil, appErrors.Clone(appErrors.ErrUnknownFacet, fmt.Sprintf("unknown facet %q", attribute))
	}

	key := facetCachePrefix + string(attribute)
	if s.cache != nil {
		var cached []string
		err := s.cache.Get(ctx, key, &cached)
		if err == nil {
			return cached, nil
		}
		if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Sugar().Warnw("facet cache read failed", "facet", attribute, "error", err)
		}
	}

	values, err := loader(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to compute facet values")
	}
	if values == nil {
		values = []string{}
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, values, s.ttl); err != nil {
			s.logger.Sugar().Warnw("facet cache write failed", "facet", attribute, "error", err)
		}
	}
	return values, nil
}

// Invalidate drops all cached facet values. Called after workflow writes so
// a newly approved record is visible to the next facet query.
func (s *FacetService) Invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteByPattern(ctx, facetCachePrefix+"*"); err != nil {
		s.logger.Sugar().Warnw("facet cache invalidation failed", "error", err)
	}
}
