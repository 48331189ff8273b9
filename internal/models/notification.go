package models

import "time"

// NotificationKind labels workflow events delivered to record owners.
type NotificationKind string

const (
	NotificationApproved         NotificationKind = "ACHIEVEMENT_APPROVED"
	NotificationRejected         NotificationKind = "ACHIEVEMENT_REJECTED"
	NotificationChangesRequested NotificationKind = "ACHIEVEMENT_CHANGES_REQUESTED"
)

// Notification is a best-effort message to a record owner about a review
// decision. Delivery failures never roll back the workflow transition.
type Notification struct {
	ID            string           `db:"id" json:"id"`
	UserID        string           `db:"user_id" json:"user_id"`
	Kind          NotificationKind `db:"kind" json:"kind"`
	AchievementID string           `db:"achievement_id" json:"achievement_id"`
	Message       string           `db:"message" json:"message"`
	Read          bool             `db:"read" json:"read"`
	CreatedAt     time.Time        `db:"created_at" json:"created_at"`
}
