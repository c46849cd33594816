package services

import (
	"context"
	"fmt"
	"mime/multipart"

	"github.com/rs/zerolog"

	"thesisflow/internal/app/auth"
	"thesisflow/internal/app/models"
	"thesisflow/internal/app/models/dto"
	"thesisflow/internal/app/repositories"
	"thesisflow/internal/pkg/apperrors"
	"thesisflow/internal/pkg/filestorage"
)

// thesisUploadDir is the storage subdirectory for thesis documents
const thesisUploadDir = "theses"

// ThesisService defines the interface for thesis workflow operations
type ThesisService interface {
	SubmitThesis(ctx context.Context, studentID int64, req *dto.CreateThesisRequest, file *multipart.FileHeader) (*dto.ThesisResponse, error)
	GetThesis(ctx context.Context, actorID, thesisID int64) (*dto.ThesisResponse, error)
	ListTheses(ctx context.Context, actorID int64, filter *dto.ThesisFilterRequest) (*dto.ThesisListResponse, error)
	UpdateContent(ctx context.Context, actorID, thesisID int64, req *dto.UpdateThesisRequest) (*dto.ThesisResponse, error)
	ResubmitFile(ctx context.Context, actorID, thesisID int64, file *multipart.FileHeader) (*dto.ThesisResponse, error)
	UpdateStatus(ctx context.Context, actorID, thesisID int64, target models.ThesisStatus) (*dto.ThesisResponse, error)
	AssignAdvisor(ctx context.Context, actorID, thesisID, advisorID int64) (*dto.ThesisResponse, error)
	GetThesisFile(ctx context.Context, actorID, thesisID int64) (fullPath, fileName string, err error)
	DeleteThesis(ctx context.Context, actorID, thesisID int64) error
}

// thesisServiceImpl implements ThesisService
type thesisServiceImpl struct {
	thesisStore  ThesisStore
	userStore    UserStore
	storage      filestorage.FileStorage
	policy       *auth.Policy
	notification NotificationService
	baseURL      string
	logger       zerolog.Logger
}

// NewThesisService creates a new ThesisService
func NewThesisService(
	thesisStore ThesisStore,
	userStore UserStore,
	storage filestorage.FileStorage,
	policy *auth.Policy,
	notification NotificationService,
	baseURL string,
	logger zerolog.Logger,
) ThesisService {
	return &thesisServiceImpl{
		thesisStore:  thesisStore,
		userStore:    userStore,
		storage:      storage,
		policy:       policy,
		notification: notification,
		baseURL:      baseURL,
		logger:       logger,
	}
}

// SubmitThesis runs the submission steps in a fixed order: validate input,
// build the entity, store the file, persist, notify. A storage failure
// aborts before anything is persisted, so no thesis row ever references a
// missing file.
func (s *thesisServiceImpl) SubmitThesis(ctx context.Context, studentID int64, req *dto.CreateThesisRequest, file *multipart.FileHeader) (*dto.ThesisResponse, error) {
	student, err := s.userStore.GetByID(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if !student.IsStudent() {
		return nil, apperrors.NewForbiddenError("only students can submit theses")
	}

	thesisType := models.ThesisType(req.ThesisType)
	thesis, err := models.NewThesis(req.Title, studentID, thesisType, req.Description, nil)
	if err != nil {
		return nil, err
	}

	if file != nil {
		info, err := s.storage.SaveFile(file, thesisUploadDir)
		if err != nil {
			return nil, err
		}
		thesis.UpdateFileInfo(info.Path, info.Filename, info.FileSize, info.MimeType)
	}

	id, err := s.thesisStore.Create(ctx, thesis)
	if err != nil {
		// Roll the stored file back so failed submissions leave no orphans
		if thesis.FilePath != nil {
			if delErr := s.storage.DeleteFile(*thesis.FilePath); delErr != nil {
				s.logger.Warn().Err(delErr).Str("path", *thesis.FilePath).Msg("Failed to clean up file after create failure")
			}
		}
		return nil, err
	}
	thesis.ID = id

	if thesisType == models.ThesisTypeFinal {
		s.notification.NotifyNewSubmission(ctx, thesis, student)
	}

	thesis.Student = student
	resp := dto.FromThesis(thesis, s.baseURL)
	return &resp, nil
}

// GetThesis returns one thesis after an access check
func (s *thesisServiceImpl) GetThesis(ctx context.Context, actorID, thesisID int64) (*dto.ThesisResponse, error) {
	actor, thesis, err := s.loadActorAndThesis(ctx, actorID, thesisID)
	if err != nil {
		return nil, err
	}
	if err := s.policy.ValidateThesisAccess(actor, thesis); err != nil {
		return nil, err
	}

	s.attachUsers(ctx, thesis)
	resp := dto.FromThesis(thesis, s.baseURL)
	return &resp, nil
}

// ListTheses returns theses visible to the actor: students see their own,
// advisors see theses assigned to them, admins see everything.
func (s *thesisServiceImpl) ListTheses(ctx context.Context, actorID int64, filter *dto.ThesisFilterRequest) (*dto.ThesisListResponse, error) {
	actor, err := s.userStore.GetByID(ctx, actorID)
	if err != nil {
		return nil, err
	}

	repoFilter := repositories.ThesisFilter{}
	switch actor.RoleType {
	case models.RoleStudent:
		repoFilter.StudentID = &actor.ID
	case models.RoleAdvisor:
		repoFilter.AdvisorID = &actor.ID
	case models.RoleAdmin:
		// no restriction
	default:
		return nil, apperrors.NewForbiddenError("unknown role")
	}
	if filter.Status != nil {
		status := models.ThesisStatus(*filter.Status)
		repoFilter.Status = &status
	}
	if filter.ThesisType != nil {
		thesisType := models.ThesisType(*filter.ThesisType)
		repoFilter.ThesisType = &thesisType
	}
	repoFilter.Search = filter.Search

	theses, total, err := s.thesisStore.GetAll(ctx, repoFilter, filter.Page, filter.PageSize)
	if err != nil {
		return nil, fmt.Errorf("error listing theses: %w", err)
	}

	responses := make([]dto.ThesisResponse, 0, len(theses))
	for _, thesis := range theses {
		responses = append(responses, dto.FromThesis(thesis, s.baseURL))
	}
	return &dto.ThesisListResponse{
		Theses:     responses,
		Pagination: dto.NewPaginationInfo(filter.Page, filter.PageSize, total),
	}, nil
}

// UpdateContent updates title and description while the thesis is editable
func (s *thesisServiceImpl) UpdateContent(ctx context.Context, actorID, thesisID int64, req *dto.UpdateThesisRequest) (*dto.ThesisResponse, error) {
	actor, thesis, err := s.loadActorAndThesis(ctx, actorID, thesisID)
	if err != nil {
		return nil, err
	}
	if err := s.policy.ValidateThesisContentUpdate(actor, thesis); err != nil {
		return nil, err
	}

	if err := thesis.UpdateTitleDescription(req.Title, req.Description); err != nil {
		return nil, err
	}
	if err := s.thesisStore.Update(ctx, thesis); err != nil {
		return nil, err
	}

	resp := dto.FromThesis(thesis, s.baseURL)
	return &resp, nil
}

// ResubmitFile replaces the thesis document and bumps the revision counter
func (s *thesisServiceImpl) ResubmitFile(ctx context.Context, actorID, thesisID int64, file *multipart.FileHeader) (*dto.ThesisResponse, error) {
	actor, thesis, err := s.loadActorAndThesis(ctx, actorID, thesisID)
	if err != nil {
		return nil, err
	}
	if err := s.policy.ValidateThesisContentUpdate(actor, thesis); err != nil {
		return nil, err
	}

	info, err := s.storage.SaveFile(file, thesisUploadDir)
	if err != nil {
		return nil, err
	}

	oldPath := thesis.FilePath
	thesis.UpdateFileInfo(info.Path, info.Filename, info.FileSize, info.MimeType)
	thesis.IncrementVersion()

	if err := s.thesisStore.Update(ctx, thesis); err != nil {
		if delErr := s.storage.DeleteFile(info.Path); delErr != nil {
			s.logger.Warn().Err(delErr).Str("path", info.Path).Msg("Failed to clean up file after update failure")
		}
		return nil, err
	}

	if oldPath != nil {
		if err := s.storage.DeleteFile(*oldPath); err != nil {
			s.logger.Warn().Err(err).Str("path", *oldPath).Msg("Failed to delete replaced thesis file")
		}
	}

	resp := dto.FromThesis(thesis, s.baseURL)
	return &resp, nil
}

// UpdateStatus performs a status transition. The policy gates who may
// request which target; the aggregate enforces the transition table itself.
func (s *thesisServiceImpl) UpdateStatus(ctx context.Context, actorID, thesisID int64, target models.ThesisStatus) (*dto.ThesisResponse, error) {
	if !target.IsValid() {
		return nil, apperrors.NewValidationError(fmt.Sprintf("unknown status %q", target))
	}

	actor, thesis, err := s.loadActorAndThesis(ctx, actorID, thesisID)
	if err != nil {
		return nil, err
	}
	if err := s.policy.ValidateStatusTransition(actor, thesis, target); err != nil {
		return nil, err
	}

	oldStatus := thesis.Status
	if err := thesis.UpdateStatus(target); err != nil {
		return nil, err
	}
	if err := s.thesisStore.Update(ctx, thesis); err != nil {
		return nil, err
	}

	s.notification.NotifyStatusChange(ctx, thesis, oldStatus, target)
	if target == models.StatusSubmitted {
		student := actor
		if actor.ID != thesis.StudentID {
			if student, err = s.userStore.GetByID(ctx, thesis.StudentID); err != nil {
				s.logger.Warn().Err(err).Int64("studentID", thesis.StudentID).Msg("Failed to load student for submission notification")
				student = nil
			}
		}
		if student != nil {
			s.notification.NotifyNewSubmission(ctx, thesis, student)
		}
	}

	resp := dto.FromThesis(thesis, s.baseURL)
	return &resp, nil
}

// AssignAdvisor assigns an advisor through the explicit route. Unlike the
// auto-assignment in ProvideFeedback, this rejects a thesis that already has
// an advisor instead of silently overwriting it.
func (s *thesisServiceImpl) AssignAdvisor(ctx context.Context, actorID, thesisID, advisorID int64) (*dto.ThesisResponse, error) {
	actor, thesis, err := s.loadActorAndThesis(ctx, actorID, thesisID)
	if err != nil {
		return nil, err
	}
	if err := s.policy.ValidateAdvisorAssignment(actor, advisorID); err != nil {
		return nil, err
	}
	if thesis.HasAdvisor() {
		return nil, &apperrors.CustomError{
			Err:     apperrors.ErrAdvisorAlreadySet,
			Message: "thesis already has an advisor assigned",
		}
	}

	advisor, err := s.userStore.GetByID(ctx, advisorID)
	if err != nil {
		return nil, err
	}
	if !advisor.IsAdvisor() {
		return nil, apperrors.NewValidationError("assignee does not hold the advisor role")
	}

	thesis.AssignAdvisor(advisorID)
	if err := s.thesisStore.Update(ctx, thesis); err != nil {
		return nil, err
	}

	s.notification.NotifyAdvisorAssigned(ctx, thesis, advisor)

	thesis.Advisor = advisor
	resp := dto.FromThesis(thesis, s.baseURL)
	return &resp, nil
}

// GetThesisFile resolves the stored document path after an access check
func (s *thesisServiceImpl) GetThesisFile(ctx context.Context, actorID, thesisID int64) (string, string, error) {
	actor, thesis, err := s.loadActorAndThesis(ctx, actorID, thesisID)
	if err != nil {
		return "", "", err
	}
	if err := s.policy.ValidateThesisAccess(actor, thesis); err != nil {
		return "", "", err
	}
	if thesis.FilePath == nil || thesis.FileName == nil {
		return "", "", apperrors.ErrThesisFileMissing
	}

	fullPath := s.storage.FullPath(*thesis.FilePath)
	if fullPath == "" {
		return "", "", apperrors.NewFileStorageError("stored file path is invalid")
	}
	return fullPath, *thesis.FileName, nil
}

// DeleteThesis removes a thesis and its feedback, admin only. The database
// cascades the feedback rows; the stored document is cleaned up afterwards.
func (s *thesisServiceImpl) DeleteThesis(ctx context.Context, actorID, thesisID int64) error {
	actor, thesis, err := s.loadActorAndThesis(ctx, actorID, thesisID)
	if err != nil {
		return err
	}
	if err := s.policy.ValidateThesisDeletion(actor); err != nil {
		return err
	}

	if err := s.thesisStore.Delete(ctx, thesisID); err != nil {
		return err
	}
	if thesis.FilePath != nil {
		if err := s.storage.DeleteFile(*thesis.FilePath); err != nil {
			s.logger.Warn().Err(err).Str("path", *thesis.FilePath).Msg("Failed to delete document of removed thesis")
		}
	}

	s.logger.Info().Int64("thesisID", thesisID).Int64("actorID", actorID).Msg("Thesis deleted")
	return nil
}

func (s *thesisServiceImpl) loadActorAndThesis(ctx context.Context, actorID, thesisID int64) (*models.User, *models.Thesis, error) {
	actor, err := s.userStore.GetByID(ctx, actorID)
	if err != nil {
		return nil, nil, err
	}
	thesis, err := s.thesisStore.GetByID(ctx, thesisID)
	if err != nil {
		return nil, nil, err
	}
	return actor, thesis, nil
}

// attachUsers loads the related student and advisor for detail responses;
// list responses stay lean.
func (s *thesisServiceImpl) attachUsers(ctx context.Context, thesis *models.Thesis) {
	if student, err := s.userStore.GetByID(ctx, thesis.StudentID); err == nil {
		thesis.Student = student
	}
	if thesis.AdvisorID != nil {
		if advisor, err := s.userStore.GetByID(ctx, *thesis.AdvisorID); err == nil {
			thesis.Advisor = advisor
		}
	}
}
