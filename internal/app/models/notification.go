package models

import "time"

// NotificationType categorizes workflow notifications
type NotificationType string

const (
	NotificationNewSubmission    NotificationType = "NEW_SUBMISSION"
	NotificationFeedbackProvided NotificationType = "FEEDBACK_PROVIDED"
	NotificationStatusChanged    NotificationType = "STATUS_CHANGED"
	NotificationAdvisorAssigned  NotificationType = "ADVISOR_ASSIGNED"
)

// Notification defines the notification model based on the 'notifications'
// table. Each row targets one recipient and optionally references a thesis.
type Notification struct {
	ID        int64            `json:"id" db:"id"`
	UserID    int64            `json:"userId" db:"user_id"`
	Type      NotificationType `json:"type" db:"type"`
	Message   string           `json:"message" db:"message"`
	ThesisID  *int64           `json:"thesisId,omitempty" db:"thesis_id"`
	IsRead    bool             `json:"isRead" db:"is_read"`
	CreatedAt time.Time        `json:"createdAt" db:"created_at"`
}
