package services

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"thesisflow/internal/app/models"
	"thesisflow/internal/app/models/dto"
	"thesisflow/internal/pkg/email"
	"thesisflow/internal/pkg/ws"
)

// NotificationService stores workflow notifications and pushes them to
// connected clients. Delivery is best-effort from the workflow's point of
// view: a failed notification never fails the use case that triggered it.
type NotificationService interface {
	NotifyNewSubmission(ctx context.Context, thesis *models.Thesis, student *models.User)
	NotifyFeedbackProvided(ctx context.Context, thesis *models.Thesis, advisor *models.User)
	NotifyStatusChange(ctx context.Context, thesis *models.Thesis, oldStatus, newStatus models.ThesisStatus)
	NotifyAdvisorAssigned(ctx context.Context, thesis *models.Thesis, advisor *models.User)

	List(ctx context.Context, userID int64, page, pageSize int) (*dto.NotificationListResponse, error)
	UnreadCount(ctx context.Context, userID int64) (int, error)
	MarkRead(ctx context.Context, notificationID, userID int64) error
	MarkAllRead(ctx context.Context, userID int64) error
}

type notificationServiceImpl struct {
	notificationStore NotificationStore
	userStore         UserStore
	pusher            Pusher
	emailService      email.EmailService
	logger            zerolog.Logger
}

// NewNotificationService creates a new NotificationService
func NewNotificationService(
	notificationStore NotificationStore,
	userStore UserStore,
	pusher Pusher,
	emailService email.EmailService,
	logger zerolog.Logger,
) NotificationService {
	return &notificationServiceImpl{
		notificationStore: notificationStore,
		userStore:         userStore,
		pusher:            pusher,
		emailService:      emailService,
		logger:            logger,
	}
}

// notify persists one notification row and pushes it to the recipient's
// open connections. Errors are logged, never returned.
func (s *notificationServiceImpl) notify(ctx context.Context, userID int64, ntype models.NotificationType, message string, thesisID *int64) {
	n := &models.Notification{
		UserID:    userID,
		Type:      ntype,
		Message:   message,
		ThesisID:  thesisID,
		CreatedAt: time.Now(),
	}
	id, err := s.notificationStore.Create(ctx, n)
	if err != nil {
		s.logger.Error().Err(err).Int64("userID", userID).Str("type", string(ntype)).
			Msg("Failed to store notification")
		return
	}

	if s.pusher != nil {
		s.pusher.Push(&ws.Event{
			NotificationID: id,
			UserID:         userID,
			Type:           string(ntype),
			Message:        message,
			ThesisID:       thesisID,
			Timestamp:      n.CreatedAt,
		})
	}
}

// NotifyNewSubmission tells the assigned advisor about a submission, or
// every advisor when the thesis is still unassigned.
func (s *notificationServiceImpl) NotifyNewSubmission(ctx context.Context, thesis *models.Thesis, student *models.User) {
	message := fmt.Sprintf("%s submitted the thesis %q for review", student.FullName(), thesis.Title)

	if thesis.AdvisorID != nil {
		s.notify(ctx, *thesis.AdvisorID, models.NotificationNewSubmission, message, &thesis.ID)
		return
	}

	advisors, err := s.userStore.GetByRole(ctx, models.RoleAdvisor)
	if err != nil {
		s.logger.Error().Err(err).Int64("thesisID", thesis.ID).Msg("Failed to load advisors for submission notification")
		return
	}
	for _, advisor := range advisors {
		s.notify(ctx, advisor.ID, models.NotificationNewSubmission, message, &thesis.ID)
	}
}

// NotifyFeedbackProvided tells the thesis owner that new feedback arrived
func (s *notificationServiceImpl) NotifyFeedbackProvided(ctx context.Context, thesis *models.Thesis, advisor *models.User) {
	message := fmt.Sprintf("%s provided feedback on your thesis %q", advisor.FullName(), thesis.Title)
	s.notify(ctx, thesis.StudentID, models.NotificationFeedbackProvided, message, &thesis.ID)

	if s.emailService != nil {
		student, err := s.userStore.GetByID(ctx, thesis.StudentID)
		if err != nil {
			s.logger.Warn().Err(err).Int64("studentID", thesis.StudentID).Msg("Failed to load student for feedback email")
			return
		}
		if err := s.emailService.SendFeedbackEmail(student.Email, student.FirstName, thesis.Title, advisor.FullName()); err != nil {
			s.logger.Warn().Err(err).Str("email", student.Email).Msg("Failed to send feedback email")
		}
	}
}

// NotifyStatusChange tells the thesis owner about a status transition
func (s *notificationServiceImpl) NotifyStatusChange(ctx context.Context, thesis *models.Thesis, oldStatus, newStatus models.ThesisStatus) {
	message := fmt.Sprintf("Your thesis %q moved from %s to %s", thesis.Title, oldStatus, newStatus)
	s.notify(ctx, thesis.StudentID, models.NotificationStatusChanged, message, &thesis.ID)

	if s.emailService != nil {
		student, err := s.userStore.GetByID(ctx, thesis.StudentID)
		if err != nil {
			s.logger.Warn().Err(err).Int64("studentID", thesis.StudentID).Msg("Failed to load student for status email")
			return
		}
		if err := s.emailService.SendStatusChangeEmail(student.Email, student.FirstName, thesis.Title, string(newStatus)); err != nil {
			s.logger.Warn().Err(err).Str("email", student.Email).Msg("Failed to send status change email")
		}
	}
}

// NotifyAdvisorAssigned tells the thesis owner which advisor took the thesis
func (s *notificationServiceImpl) NotifyAdvisorAssigned(ctx context.Context, thesis *models.Thesis, advisor *models.User) {
	message := fmt.Sprintf("%s is now the advisor of your thesis %q", advisor.FullName(), thesis.Title)
	s.notify(ctx, thesis.StudentID, models.NotificationAdvisorAssigned, message, &thesis.ID)
}

// List returns a user's notifications, newest first
func (s *notificationServiceImpl) List(ctx context.Context, userID int64, page, pageSize int) (*dto.NotificationListResponse, error) {
	notifications, total, err := s.notificationStore.GetByUser(ctx, userID, page, pageSize)
	if err != nil {
		return nil, fmt.Errorf("error listing notifications: %w", err)
	}

	responses := make([]dto.NotificationResponse, 0, len(notifications))
	for _, n := range notifications {
		responses = append(responses, dto.FromNotification(n))
	}
	return &dto.NotificationListResponse{
		Notifications: responses,
		Pagination:    dto.NewPaginationInfo(page, pageSize, total),
	}, nil
}

// UnreadCount returns the number of unread notifications for a user
func (s *notificationServiceImpl) UnreadCount(ctx context.Context, userID int64) (int, error) {
	return s.notificationStore.UnreadCount(ctx, userID)
}

// MarkRead flags one of the user's notifications as read
func (s *notificationServiceImpl) MarkRead(ctx context.Context, notificationID, userID int64) error {
	return s.notificationStore.MarkRead(ctx, notificationID, userID)
}

// MarkAllRead flags all of the user's notifications as read
func (s *notificationServiceImpl) MarkAllRead(ctx context.Context, userID int64) error {
	return s.notificationStore.MarkAllRead(ctx, userID)
}
