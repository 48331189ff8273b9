package models

// Availability filters profiles by their stated availability.
type Availability string

const (
	AvailabilityAll         Availability = "all"
	AvailabilityAvailable   Availability = "available"
	AvailabilityUnavailable Availability = "unavailable"
)

// SortKey enumerates the supported result orderings.
type SortKey string

const (
	SortByRating       SortKey = "rating"
	SortByGPA          SortKey = "gpa"
	SortByAchievements SortKey = "achievements"
	SortByViews        SortKey = "views"
	SortByName         SortKey = "name"
	SortByLastActive   SortKey = "recent"
)

// SearchQuery is the structured talent search input. Empty sets impose no
// constraint; groups combine with AND, values within a group with OR.
type SearchQuery struct {
	Term           string       `json:"term"`
	Skills         []string     `json:"skills"`
	Majors         []string     `json:"majors"`
	Locations      []string     `json:"locations"`
	Years          []string     `json:"years"`
	GPAMin         float64      `json:"gpa_min"`
	GPAMax         float64      `json:"gpa_max"`
	Availability   Availability `json:"availability"`
	GraduationYear int          `json:"graduation_year"`
	SortBy         SortKey      `json:"sort_by"`
	Offset         int          `json:"offset"`
	Limit          int          `json:"limit"`
}

// FacetCounts echoes the facet values still present in a filtered result set,
// used for progressive narrowing in filter UIs.
type FacetCounts struct {
	Skills    []string `json:"skills"`
	Majors    []string `json:"majors"`
	Locations []string `json:"locations"`
	Years     []string `json:"years"`
}

// SearchResult is the ordered, paginated search output.
type SearchResult struct {
	Results []ProfileSummary `json:"results"`
	Total   int              `json:"total"`
	Facets  FacetCounts      `json:"facets"`
}

// FacetAttribute names a filterable categorical attribute.
type FacetAttribute string

const (
	FacetSkills     FacetAttribute = "skills"
	FacetMajors     FacetAttribute = "majors"
	FacetLocations  FacetAttribute = "locations"
	FacetYears      FacetAttribute = "years"
	FacetCategories FacetAttribute = "categories"
)
