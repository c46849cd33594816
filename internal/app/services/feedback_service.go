package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"thesisflow/internal/app/auth"
	"thesisflow/internal/app/models"
	"thesisflow/internal/app/models/dto"
	"thesisflow/internal/pkg/apperrors"
)

// FeedbackService defines the interface for advisor review operations
type FeedbackService interface {
	ProvideFeedback(ctx context.Context, advisorID, thesisID int64, req *dto.CreateFeedbackRequest) (*dto.FeedbackResponse, error)
	GetFeedback(ctx context.Context, actorID, feedbackID int64) (*dto.FeedbackResponse, error)
	ListFeedback(ctx context.Context, actorID, thesisID int64) (*dto.FeedbackListResponse, error)
	UpdateFeedback(ctx context.Context, actorID, feedbackID int64, req *dto.UpdateFeedbackRequest) (*dto.FeedbackResponse, error)
	AddComment(ctx context.Context, actorID, feedbackID int64, req *dto.AddFeedbackCommentRequest) (*dto.FeedbackResponse, error)
	UpdateComment(ctx context.Context, actorID, feedbackID int64, commentID string, req *dto.UpdateFeedbackCommentRequest) (*dto.FeedbackResponse, error)
	RemoveComment(ctx context.Context, actorID, feedbackID int64, commentID string) (*dto.FeedbackResponse, error)
}

// feedbackServiceImpl implements FeedbackService
type feedbackServiceImpl struct {
	feedbackStore FeedbackStore
	thesisStore   ThesisStore
	userStore     UserStore
	policy        *auth.Policy
	notification  NotificationService
	runTx         TxRunner
	logger        zerolog.Logger
}

// NewFeedbackService creates a new FeedbackService
func NewFeedbackService(
	feedbackStore FeedbackStore,
	thesisStore ThesisStore,
	userStore UserStore,
	policy *auth.Policy,
	notification NotificationService,
	runTx TxRunner,
	logger zerolog.Logger,
) FeedbackService {
	return &feedbackServiceImpl{
		feedbackStore: feedbackStore,
		thesisStore:   thesisStore,
		userStore:     userStore,
		policy:        policy,
		notification:  notification,
		runTx:         runTx,
		logger:        logger,
	}
}

// ProvideFeedback records a review round. The thesis side effects and the
// feedback row are written in one transaction: the advisor claims the thesis
// if it is unassigned, the thesis advances to UNDER_REVIEW if it was still
// SUBMITTED, and the feedback is inserted. Either all of it lands or none.
func (s *feedbackServiceImpl) ProvideFeedback(ctx context.Context, advisorID, thesisID int64, req *dto.CreateFeedbackRequest) (*dto.FeedbackResponse, error) {
	advisor, err := s.userStore.GetByID(ctx, advisorID)
	if err != nil {
		return nil, err
	}
	thesis, err := s.thesisStore.GetByID(ctx, thesisID)
	if err != nil {
		return nil, err
	}
	if err := s.policy.ValidateFeedbackCreation(advisor, thesis); err != nil {
		return nil, err
	}

	feedback, err := models.NewFeedback(thesisID, advisorID, req.OverallComments, req.Rating, req.Recommendations)
	if err != nil {
		return nil, err
	}
	for _, c := range req.Comments {
		if _, err := feedback.AddComment(c.Content, c.PageNumber, c.PositionX, c.PositionY); err != nil {
			return nil, err
		}
	}

	advisorAssigned := false
	err = s.runTx(ctx, func(ctx context.Context, stores TxStores) error {
		advisorAssigned = ensureAdvisorAssigned(thesis, advisorID)
		if err := advanceToUnderReview(thesis); err != nil {
			return err
		}
		if err := stores.Theses.Update(ctx, thesis); err != nil {
			return err
		}
		id, err := stores.Feedback.Create(ctx, feedback)
		if err != nil {
			return err
		}
		feedback.ID = id
		return nil
	})
	if err != nil {
		return nil, err
	}

	if advisorAssigned {
		s.notification.NotifyAdvisorAssigned(ctx, thesis, advisor)
	}
	s.notification.NotifyFeedbackProvided(ctx, thesis, advisor)

	feedback.Advisor = advisor
	resp := dto.FromFeedback(feedback)
	return &resp, nil
}

// ensureAdvisorAssigned claims an unassigned thesis for the reviewing
// advisor. Reports whether an assignment happened.
func ensureAdvisorAssigned(thesis *models.Thesis, advisorID int64) bool {
	if thesis.HasAdvisor() {
		return false
	}
	thesis.AssignAdvisor(advisorID)
	return true
}

// advanceToUnderReview moves a SUBMITTED thesis into review. A thesis
// already UNDER_REVIEW is left alone so repeated feedback rounds work.
func advanceToUnderReview(thesis *models.Thesis) error {
	if thesis.Status == models.StatusUnderReview {
		return nil
	}
	return thesis.UpdateStatus(models.StatusUnderReview)
}

// GetFeedback returns one feedback record; access follows the thesis it
// belongs to.
func (s *feedbackServiceImpl) GetFeedback(ctx context.Context, actorID, feedbackID int64) (*dto.FeedbackResponse, error) {
	_, feedback, err := s.loadAccessibleFeedback(ctx, actorID, feedbackID)
	if err != nil {
		return nil, err
	}

	s.attachAdvisor(ctx, feedback)
	resp := dto.FromFeedback(feedback)
	return &resp, nil
}

// ListFeedback returns all feedback rounds on a thesis, newest first
func (s *feedbackServiceImpl) ListFeedback(ctx context.Context, actorID, thesisID int64) (*dto.FeedbackListResponse, error) {
	actor, err := s.userStore.GetByID(ctx, actorID)
	if err != nil {
		return nil, err
	}
	thesis, err := s.thesisStore.GetByID(ctx, thesisID)
	if err != nil {
		return nil, err
	}
	if err := s.policy.ValidateThesisAccess(actor, thesis); err != nil {
		return nil, err
	}

	feedbackList, err := s.feedbackStore.GetByThesis(ctx, thesisID)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.FeedbackResponse, 0, len(feedbackList))
	for _, feedback := range feedbackList {
		s.attachAdvisor(ctx, feedback)
		responses = append(responses, dto.FromFeedback(feedback))
	}
	return &dto.FeedbackListResponse{Feedback: responses}, nil
}

// UpdateFeedback lets the author revise overall comments, rating and
// recommendations
func (s *feedbackServiceImpl) UpdateFeedback(ctx context.Context, actorID, feedbackID int64, req *dto.UpdateFeedbackRequest) (*dto.FeedbackResponse, error) {
	_, feedback, err := s.loadOwnedFeedback(ctx, actorID, feedbackID)
	if err != nil {
		return nil, err
	}

	if err := feedback.UpdateOverall(req.OverallComments, req.Rating, req.Recommendations); err != nil {
		return nil, err
	}
	if err := s.feedbackStore.Update(ctx, feedback); err != nil {
		return nil, err
	}

	s.attachAdvisor(ctx, feedback)
	resp := dto.FromFeedback(feedback)
	return &resp, nil
}

// AddComment appends a positioned comment to existing feedback
func (s *feedbackServiceImpl) AddComment(ctx context.Context, actorID, feedbackID int64, req *dto.AddFeedbackCommentRequest) (*dto.FeedbackResponse, error) {
	_, feedback, err := s.loadOwnedFeedback(ctx, actorID, feedbackID)
	if err != nil {
		return nil, err
	}

	if _, err := feedback.AddComment(req.Content, req.PageNumber, req.PositionX, req.PositionY); err != nil {
		return nil, err
	}
	if err := s.feedbackStore.Update(ctx, feedback); err != nil {
		return nil, err
	}

	s.attachAdvisor(ctx, feedback)
	resp := dto.FromFeedback(feedback)
	return &resp, nil
}

// UpdateComment replaces the content of one positioned comment
func (s *feedbackServiceImpl) UpdateComment(ctx context.Context, actorID, feedbackID int64, commentID string, req *dto.UpdateFeedbackCommentRequest) (*dto.FeedbackResponse, error) {
	_, feedback, err := s.loadOwnedFeedback(ctx, actorID, feedbackID)
	if err != nil {
		return nil, err
	}

	id, err := uuid.Parse(commentID)
	if err != nil {
		return nil, apperrors.NewValidationError("invalid comment ID")
	}
	updated, err := feedback.UpdateComment(id, req.Content)
	if err != nil {
		return nil, err
	}
	if !updated {
		return nil, apperrors.NewNotFoundError("comment not found")
	}
	if err := s.feedbackStore.Update(ctx, feedback); err != nil {
		return nil, err
	}

	s.attachAdvisor(ctx, feedback)
	resp := dto.FromFeedback(feedback)
	return &resp, nil
}

// RemoveComment deletes one positioned comment
func (s *feedbackServiceImpl) RemoveComment(ctx context.Context, actorID, feedbackID int64, commentID string) (*dto.FeedbackResponse, error) {
	_, feedback, err := s.loadOwnedFeedback(ctx, actorID, feedbackID)
	if err != nil {
		return nil, err
	}

	id, err := uuid.Parse(commentID)
	if err != nil {
		return nil, apperrors.NewValidationError("invalid comment ID")
	}
	if !feedback.RemoveComment(id) {
		return nil, apperrors.NewNotFoundError("comment not found")
	}
	if err := s.feedbackStore.Update(ctx, feedback); err != nil {
		return nil, err
	}

	s.attachAdvisor(ctx, feedback)
	resp := dto.FromFeedback(feedback)
	return &resp, nil
}

// loadAccessibleFeedback loads feedback and checks read access via the
// owning thesis
func (s *feedbackServiceImpl) loadAccessibleFeedback(ctx context.Context, actorID, feedbackID int64) (*models.User, *models.Feedback, error) {
	actor, err := s.userStore.GetByID(ctx, actorID)
	if err != nil {
		return nil, nil, err
	}
	feedback, err := s.feedbackStore.GetByID(ctx, feedbackID)
	if err != nil {
		return nil, nil, err
	}
	thesis, err := s.thesisStore.GetByID(ctx, feedback.ThesisID)
	if err != nil {
		return nil, nil, err
	}
	if err := s.policy.ValidateThesisAccess(actor, thesis); err != nil {
		return nil, nil, err
	}
	return actor, feedback, nil
}

// loadOwnedFeedback loads feedback and checks the actor may modify it:
// the authoring advisor, or an admin
func (s *feedbackServiceImpl) loadOwnedFeedback(ctx context.Context, actorID, feedbackID int64) (*models.User, *models.Feedback, error) {
	actor, err := s.userStore.GetByID(ctx, actorID)
	if err != nil {
		return nil, nil, err
	}
	feedback, err := s.feedbackStore.GetByID(ctx, feedbackID)
	if err != nil {
		return nil, nil, err
	}
	if err := s.policy.ValidateFeedbackModification(actor, feedback); err != nil {
		return nil, nil, err
	}
	return actor, feedback, nil
}

func (s *feedbackServiceImpl) attachAdvisor(ctx context.Context, feedback *models.Feedback) {
	if advisor, err := s.userStore.GetByID(ctx, feedback.AdvisorID); err == nil {
		feedback.Advisor = advisor
	}
}
