package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/NANDINI-BANIK/student-portfolio-hub/internal/models"
	"github.com/NANDINI-BANIK/student-portfolio-hub/pkg/config"
	appErrors "github.com/NANDINI-BANIK/student-portfolio-hub/pkg/errors"
)

const (
	gpaFloor      = 0.0
	gpaCeiling    = 4.0
	defaultGPAMin = 2.0
	defaultGPAMax = 4.0
)

type talentStore interface {
	ListTalent(ctx context.Context) ([]models.TalentProfile, error)
}

type searchObserver interface {
	ObserveSearch(duration time.Duration, matches int)
}

// SearchService is the single authoritative definition of talent search
// semantics: which profiles are discoverable, how filters combine, and how
// results are ordered. It evaluates queries against a point-in-time snapshot
// of the approved-record projection, so reads never block each other and a
// query run twice against an unchanged store returns identical results.
type SearchService struct {
	repo    talentStore
	cfg     config.SearchConfig
	metrics searchObserver
	logger  *zap.Logger
}

// NewSearchService constructs the search service.
func NewSearchService(repo talentStore, cfg config.SearchConfig, metrics searchObserver, logger *zap.Logger) *SearchService {
	if cfg.DefaultPageSize <= 0 {
		cfg.DefaultPageSize = 20
	}
	if cfg.MaxPageSize <= 0 {
		cfg.MaxPageSize = 100
	}
	if cfg.MinApprovedRecords < 0 {
		cfg.MinApprovedRecords = 0
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SearchService{repo: repo, cfg: cfg, metrics: metrics, logger: logger}
}

// Search runs a structured query and returns an ordered, paginated result
// with the total match count and the facet values remaining in the filtered
// set.
func (s *SearchService) Search(ctx context.Context, query models.SearchQuery) (*models.SearchResult, error) {
	start := time.Now()

	query, err := s.normalize(query)
	if err != nil {
		return nil, err
	}

	talent, err := s.repo.ListTalent(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load talent snapshot")
	}

	matched := make([]models.ProfileSummary, 0, len(talent))
	facets := facetAccumulator{}
	for i := range talent {
		summary, ok := s.match(&talent[i], query)
		if !ok {
			continue
		}
		matched = append(matched, summary)
		facets.add(summary)
	}

	s.order(matched, query.SortBy)

	total := len(matched)
	page := paginate(matched, query.Offset, query.Limit)

	if s.metrics != nil {
		s.metrics.ObserveSearch(time.Since(start), total)
	}

	return &models.SearchResult{
		Results: page,
		Total:   total,
		Facets:  facets.sorted(),
	}, nil
}

func (s *SearchService) normalize(query models.SearchQuery) (models.SearchQuery, error) {
	if query.GPAMin == 0 && query.GPAMax == 0 {
		query.GPAMin = defaultGPAMin
		query.GPAMax = defaultGPAMax
	}
	if query.GPAMin > query.GPAMax {
		return query, appErrors.Clone(appErrors.ErrInvalidRange, fmt.Sprintf("gpa lower bound %.2f exceeds upper bound %.2f", query.GPAMin, query.GPAMax))
	}
	if query.GPAMin < gpaFloor || query.GPAMax > gpaCeiling {
		return query, appErrors.Clone(appErrors.ErrInvalidRange, "gpa bounds must lie within [0, 4]")
	}

	if query.Offset < 0 {
		return query, appErrors.Clone(appErrors.ErrInvalidPagination, "offset must not be negative")
	}
	if query.Limit <= 0 {
		return query, appErrors.Clone(appErrors.ErrInvalidPagination, "limit must be positive")
	}
	if query.Limit > s.cfg.MaxPageSize {
		query.Limit = s.cfg.MaxPageSize
	}

	switch query.Availability {
	case "", models.AvailabilityAll:
		query.Availability = models.AvailabilityAll
	case models.AvailabilityAvailable, models.AvailabilityUnavailable:
	default:
		return query, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown availability %q", query.Availability))
	}

	if query.SortBy == "" {
		query.SortBy = models.SortByRating
	}
	switch query.SortBy {
	case models.SortByRating, models.SortByGPA, models.SortByAchievements, models.SortByViews, models.SortByName, models.SortByLastActive:
	default:
		return query, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown sort key %q", query.SortBy))
	}

	query.Term = strings.TrimSpace(query.Term)
	return query, nil
}

// match evaluates all predicate groups: AND across groups, OR within a
// group's multi-select. Returns the derived summary when the profile matches.
func (s *SearchService) match(t *models.TalentProfile, query models.SearchQuery) (models.ProfileSummary, bool) {
	if len(t.Achievements) < s.cfg.MinApprovedRecords {
		return models.ProfileSummary{}, false
	}

	skills := t.SkillSet()

	if query.Term != "" && !termMatches(t, skills, query.Term) {
		return models.ProfileSummary{}, false
	}
	if len(query.Skills) > 0 && !anyOverlap(query.Skills, skills) {
		return models.ProfileSummary{}, false
	}
	if len(query.Majors) > 0 && !containsString(query.Majors, t.Major) {
		return models.ProfileSummary{}, false
	}
	if len(query.Locations) > 0 && !containsString(query.Locations, t.Location) {
		return models.ProfileSummary{}, false
	}
	if len(query.Years) > 0 && !containsString(query.Years, t.Year) {
		return models.ProfileSummary{}, false
	}
	if t.GPA < query.GPAMin || t.GPA > query.GPAMax {
		return models.ProfileSummary{}, false
	}
	switch query.Availability {
	case models.AvailabilityAvailable:
		if !t.Available {
			return models.ProfileSummary{}, false
		}
	case models.AvailabilityUnavailable:
		if t.Available {
			return models.ProfileSummary{}, false
		}
	}
	if query.GraduationYear != 0 && t.GraduationDate.Year() != query.GraduationYear {
		return models.ProfileSummary{}, false
	}

	return models.ProfileSummary{
		ID:               t.ID,
		Name:             t.Name,
		Email:            t.Email,
		Major:            t.Major,
		Year:             t.Year,
		GPA:              t.GPA,
		University:       t.University,
		Location:         t.Location,
		Skills:           skills,
		PreferredRoles:   append([]string(nil), t.PreferredRoles...),
		Available:        t.Available,
		Rating:           t.Rating,
		ProfileViews:     t.ProfileViews,
		AchievementCount: len(t.Achievements),
		GraduationDate:   t.GraduationDate,
		LastActiveAt:     t.LastActiveAt,
	}, true
}

// order sorts results by the requested key, breaking all ties by ascending
// id so pagination is reproducible.
func (s *SearchService) order(results []models.ProfileSummary, key models.SortKey) {
	var less func(a, b *models.ProfileSummary) int
	switch key {
	case models.SortByGPA:
		less = func(a, b *models.ProfileSummary) int { return compareFloatDesc(a.GPA, b.GPA) }
	case models.SortByAchievements:
		less = func(a, b *models.ProfileSummary) int { return compareIntDesc(a.AchievementCount, b.AchievementCount) }
	case models.SortByViews:
		less = func(a, b *models.ProfileSummary) int { return compareIntDesc(a.ProfileViews, b.ProfileViews) }
	case models.SortByName:
		collator := collate.New(language.English)
		less = func(a, b *models.ProfileSummary) int { return collator.CompareString(a.Name, b.Name) }
	case models.SortByLastActive:
		less = func(a, b *models.ProfileSummary) int {
			if a.LastActiveAt.After(b.LastActiveAt) {
				return -1
			}
			if b.LastActiveAt.After(a.LastActiveAt) {
				return 1
			}
			return 0
		}
	default: // rating
		less = func(a, b *models.ProfileSummary) int { return compareFloatDesc(a.Rating, b.Rating) }
	}

	sort.Slice(results, func(i, j int) bool {
		if c := less(&results[i], &results[j]); c != 0 {
			return c < 0
		}
		return results[i].ID < results[j].ID
	})
}

func paginate(results []models.ProfileSummary, offset, limit int) []models.ProfileSummary {
	if offset >= len(results) {
		return []models.ProfileSummary{}
	}
	end := offset + limit
	if end > len(results) {
		end = len(results)
	}
	return results[offset:end]
}

func termMatches(t *models.TalentProfile, skills []string, term string) bool {
	needle := strings.ToLower(term)
	if strings.Contains(strings.ToLower(t.Name), needle) {
		return true
	}
	if strings.Contains(strings.ToLower(t.Major), needle) {
		return true
	}
	for _, s := range skills {
		if strings.Contains(strings.ToLower(s), needle) {
			return true
		}
	}
	for _, r := range t.PreferredRoles {
		if strings.Contains(strings.ToLower(r), needle) {
			return true
		}
	}
	return false
}

func anyOverlap(wanted, have []string) bool {
	set := make(map[string]struct{}, len(have))
	for _, h := range have {
		set[h] = struct{}{}
	}
	for _, w := range wanted {
		if _, ok := set[w]; ok {
			return true
		}
	}
	return false
}

func compareFloatDesc(a, b float64) int {
	if a > b {
		return -1
	}
	if a < b {
		return 1
	}
	return 0
}

func compareIntDesc(a, b int) int {
	if a > b {
		return -1
	}
	if a < b {
		return 1
	}
	return 0
}

// facetAccumulator collects the facet values still present in a filtered
// result set, for progressive narrowing in filter UIs.
type facetAccumulator struct {
	skills    map[string]struct{}
	majors    map[string]struct{}
	locations map[string]struct{}
	years     map[string]struct{}
}

func (f *facetAccumulator) add(summary models.ProfileSummary) {
	if f.skills == nil {
		f.skills = make(map[string]struct{})
		f.majors = make(map[string]struct{})
		f.locations = make(map[string]struct{})
		f.years = make(map[string]struct{})
	}
	for _, s := range summary.Skills {
		f.skills[s] = struct{}{}
	}
	if summary.Major != "" {
		f.majors[summary.Major] = struct{}{}
	}
	if summary.Location != "" {
		f.locations[summary.Location] = struct{}{}
	}
	if summary.Year != "" {
		f.years[summary.Year] = struct{}{}
	}
}

func (f *facetAccumulator) sorted() models.FacetCounts {
	return models.FacetCounts{
		Skills:    sortedKeys(f.skills),
		Majors:    sortedKeys(f.majors),
		Locations: sortedKeys(f.locations),
		Years:     sortedKeys(f.years),
	}
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
