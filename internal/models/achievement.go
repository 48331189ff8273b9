package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lib/pq"
)

// ReviewStatus captures the approval workflow states for an achievement.
type ReviewStatus string

const (
	StatusPending          ReviewStatus = "PENDING"
	StatusApproved         ReviewStatus = "APPROVED"
	StatusRejected         ReviewStatus = "REJECTED"
	StatusChangesRequested ReviewStatus = "CHANGES_REQUESTED"
)

// IsTerminal reports whether no further transitions are permitted.
func (s ReviewStatus) IsTerminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// Decision enumerates reviewer verdicts.
type Decision string

const (
	DecisionApprove        Decision = "APPROVE"
	DecisionReject         Decision = "REJECT"
	DecisionRequestChanges Decision = "REQUEST_CHANGES"
)

// Priority is reviewer-assigned queue metadata, not workflow state.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Rank orders priorities for the reviewer queue (high first).
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	default:
		return 0
	}
}

// Categories is the fixed enumerated set of achievement categories.
var Categories = []string{
	"Academic Excellence",
	"Research & Publications",
	"Leadership & Service",
	"Competitions & Awards",
	"Certifications",
	"Projects & Innovation",
	"Volunteer Work",
	"Internships & Work Experience",
}

// ValidCategory reports whether the value belongs to the fixed category set.
func ValidCategory(category string) bool {
	for _, c := range Categories {
		if c == category {
			return true
		}
	}
	return false
}

// Attachment describes an uploaded supporting file.
type Attachment struct {
	Name      string `json:"name"`
	SizeBytes int64  `json:"size_bytes"`
	MediaType string `json:"media_type"`
}

// AttachmentList stores the ordered attachment descriptors as JSONB.
type AttachmentList []Attachment

// Value implements driver.Valuer.
func (a AttachmentList) Value() (driver.Value, error) {
	if a == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(a)
}

// Scan implements sql.Scanner.
func (a *AttachmentList) Scan(src interface{}) error {
	if src == nil {
		*a = nil
		return nil
	}
	raw, ok := src.([]byte)
	if !ok {
		return fmt.Errorf("attachments: unsupported scan type %T", src)
	}
	return json.Unmarshal(raw, a)
}

// Achievement is a student-owned accomplishment record subject to the
// approval workflow. Status transitions happen only through the review
// service; review_events is append-only.
type Achievement struct {
	ID                string         `db:"id" json:"id"`
	OwnerID           string         `db:"owner_id" json:"owner_id"`
	Title             string         `db:"title" json:"title"`
	Description       string         `db:"description" json:"description"`
	Category          string         `db:"category" json:"category"`
	DateAchieved      time.Time      `db:"date_achieved" json:"date_achieved"`
	Institution       string         `db:"institution" json:"institution,omitempty"`
	Skills            pq.StringArray `db:"skills" json:"skills"`
	Attachments       AttachmentList `db:"attachments" json:"attachments"`
	Status            ReviewStatus   `db:"status" json:"status"`
	Priority          Priority       `db:"priority" json:"priority"`
	SubmittedAt       time.Time      `db:"submitted_at" json:"submitted_at"`
	ResubmissionCount int            `db:"resubmission_count" json:"resubmission_count"`
	CreatedAt         time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time      `db:"updated_at" json:"updated_at"`
}

// ReviewEvent records a single completed reviewer decision.
type ReviewEvent struct {
	ID            string    `db:"id" json:"id"`
	AchievementID string    `db:"achievement_id" json:"achievement_id"`
	ReviewerID    string    `db:"reviewer_id" json:"reviewer_id"`
	Decision      Decision  `db:"decision" json:"decision"`
	Feedback      string    `db:"feedback" json:"feedback"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}

// AchievementDetail bundles a record with its review history.
type AchievementDetail struct {
	Achievement
	ReviewHistory []ReviewEvent `json:"review_history"`
}

// PendingFilter constrains the reviewer queue listing.
type PendingFilter struct {
	Search   string
	Category string
	Priority Priority
	SortBy   string
	Page     int
	PageSize int
}

// PendingAchievement is a queue entry joined with submitter details.
type PendingAchievement struct {
	Achievement
	StudentName  string  `db:"student_name" json:"student_name"`
	StudentEmail string  `db:"student_email" json:"student_email"`
	StudentMajor string  `db:"student_major" json:"student_major"`
	StudentYear  string  `db:"student_year" json:"student_year"`
	StudentGPA   float64 `db:"student_gpa" json:"student_gpa"`
}
