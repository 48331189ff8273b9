package models

import (
	"time"

	"github.com/lib/pq"
)

// Profile stores the discoverable student identity and academic attributes.
// Skills and achievement counts exposed to search are derived from approved
// achievements at query time, never stored here.
type Profile struct {
	ID             string         `db:"id" json:"id"`
	UserID         string         `db:"user_id" json:"user_id"`
	Name           string         `db:"name" json:"name"`
	Email          string         `db:"email" json:"email"`
	Major          string         `db:"major" json:"major"`
	Year           string         `db:"year" json:"year"`
	GPA            float64        `db:"gpa" json:"gpa"`
	University     string         `db:"university" json:"university"`
	Location       string         `db:"location" json:"location"`
	GraduationDate time.Time      `db:"graduation_date" json:"graduation_date"`
	PreferredRoles pq.StringArray `db:"preferred_roles" json:"preferred_roles"`
	Available      bool           `db:"available" json:"available"`
	Rating         float64        `db:"rating" json:"rating"`
	ProfileViews   int            `db:"profile_views" json:"profile_views"`
	LastActiveAt   time.Time      `db:"last_active_at" json:"last_active_at"`
	CreatedAt      time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time      `db:"updated_at" json:"updated_at"`
}

// ApprovedAchievement is the slim projection of an approved record carried
// inside the talent search snapshot.
type ApprovedAchievement struct {
	ID           string         `db:"id" json:"id"`
	ProfileID    string         `db:"profile_id" json:"-"`
	Title        string         `db:"title" json:"title"`
	Category     string         `db:"category" json:"category"`
	DateAchieved time.Time      `db:"date_achieved" json:"date_achieved"`
	Skills       pq.StringArray `db:"skills" json:"skills"`
}

/// TalentProfile is the point-in-time search aggregate: a profile plus its
// approved achievements.
type TalentProfile struct {
	Profile
	Achievements []ApprovedAchievement `json:"achievements"`
}

// SkillSet returns the union of skills across approved achievements in
// first-seen order.
func (t *TalentProfile) SkillSet() []string {
	seen := make(map[string]struct{})
	skills := make([]string, 0)
	for _, a := range t.Achievements {
		for _, s := range a.Skills {
			if _, ok := seen[s]; ok {
				continue
			}
			seen[s] = struct{}{}
			skills = append(skills, s)
		}
	}
	return skills
}

// ProfileSummary is the search result row returned to discoverers.
type ProfileSummary struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	Email            string    `json:"email"`
	Major            string    `json:"major"`
	Year             string    `json:"year"`
	GPA              float64   `json:"gpa"`
	University       string    `json:"university"`
	Location         string    `json:"location"`
	Skills           []string  `json:"skills"`
	PreferredRoles   []string  `json:"preferred_roles"`
	Available        bool      `json:"available"`
	Rating           float64   `json:"rating"`
	ProfileViews     int       `json:"profile_views"`
	AchievementCount int       `json:"achievement_count"`
	GraduationDate   time.Time `json:"graduation_date"`
	LastActiveAt     time.Time `json:"last_active_at"`
}

// SavedProfile is a discoverer's bookmark of a student profile.
type SavedProfile struct {
	EmployerID string    `db:"employer_id" json:"employer_id"`
	ProfileID  string    `db:"profile_id" json:"profile_id"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}
