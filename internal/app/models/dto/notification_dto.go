package dto

import (
	"time"

	"thesisflow/internal/app/models"
)

// NotificationResponse represents one notification
type NotificationResponse struct {
	ID        int64     `json:"id"`
	Type      string    `json:"type" enums:"NEW_SUBMISSION,FEEDBACK_PROVIDED,STATUS_CHANGED,ADVISOR_ASSIGNED"`
	Message   string    `json:"message"`
	ThesisID  *int64    `json:"thesisId,omitempty"`
	IsRead    bool      `json:"isRead"`
	CreatedAt time.Time `json:"createdAt"`
}

// FromNotification converts a models.Notification to a NotificationResponse
func FromNotification(n *models.Notification) NotificationResponse {
	return NotificationResponse{
		ID:        n.ID,
		Type:      string(n.Type),
		Message:   n.Message,
		ThesisID:  n.ThesisID,
		IsRead:    n.IsRead,
		CreatedAt: n.CreatedAt,
	}
}

// NotificationListResponse represents a paginated list of notifications
type NotificationListResponse struct {
	Notifications []NotificationResponse `json:"notifications"`
	Pagination    PaginationInfo         `json:"pagination"`
}

// UnreadCountResponse reports the number of unread notifications
type UnreadCountResponse struct {
	Count int `json:"count"`
}
