package services

import (
	"context"

	"thesisflow/internal/app/models"
	"thesisflow/internal/app/repositories"
	"thesisflow/internal/pkg/ws"
)

// Services defined in this package:
// - AuthService: registration, login, token refresh, email verification
// - ThesisService: thesis lifecycle (submit, content updates, status, advisor)
// - FeedbackService: advisor reviews with positioned comments
// - NotificationService: durable notifications plus websocket push
// - UserService: admin-facing account management
//
// Services depend on the narrow store interfaces below rather than on the
// concrete repositories, so tests can substitute in-memory fakes.

// UserStore is the user lookup surface the services need
type UserStore interface {
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByRole(ctx context.Context, roleType models.RoleType) ([]*models.User, error)
}

// ThesisStore is the thesis persistence surface the services need
type ThesisStore interface {
	Create(ctx context.Context, thesis *models.Thesis) (int64, error)
	GetByID(ctx context.Context, id int64) (*models.Thesis, error)
	Update(ctx context.Context, thesis *models.Thesis) error
	Delete(ctx context.Context, id int64) error
	GetAll(ctx context.Context, filter repositories.ThesisFilter, page, pageSize int) ([]*models.Thesis, int, error)
}

// FeedbackStore is the feedback persistence surface the services need
type FeedbackStore interface {
	Create(ctx context.Context, feedback *models.Feedback) (int64, error)
	GetByID(ctx context.Context, id int64) (*models.Feedback, error)
	GetByThesis(ctx context.Context, thesisID int64) ([]*models.Feedback, error)
	Update(ctx context.Context, feedback *models.Feedback) error
}

// NotificationStore is the notification persistence surface
type NotificationStore interface {
	Create(ctx context.Context, n *models.Notification) (int64, error)
	GetByUser(ctx context.Context, userID int64, page, pageSize int) ([]*models.Notification, int, error)
	UnreadCount(ctx context.Context, userID int64) (int, error)
	MarkRead(ctx context.Context, notificationID, userID int64) error
	MarkAllRead(ctx context.Context, userID int64) error
}

// Pusher delivers real-time notification events; *ws.Hub implements it
type Pusher interface {
	Push(event *ws.Event)
}

// TxStores bundles the stores rebound to one database transaction
type TxStores struct {
	Theses   ThesisStore
	Feedback FeedbackStore
}

// TxRunner executes fn atomically: every store write inside fn commits or
// rolls back as one unit
type TxRunner func(ctx context.Context, fn func(ctx context.Context, stores TxStores) error) error
