package services

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"thesisflow/internal/app/models"
	"thesisflow/internal/app/models/dto"
)

// AdminUserStore is the user management surface the admin service needs
type AdminUserStore interface {
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetAll(ctx context.Context, roleType *models.RoleType, isActive *bool, page, pageSize int) ([]*models.User, int, error)
	SetActive(ctx context.Context, userID int64, isActive bool) error
	CountByRole(ctx context.Context) (map[models.RoleType]int, error)
}

// ThesisStatsStore provides the thesis counts for the admin dashboard
type ThesisStatsStore interface {
	CountByStatus(ctx context.Context) (map[models.ThesisStatus]int, error)
}

// UserService defines the interface for admin-facing account management
type UserService interface {
	GetProfile(ctx context.Context, userID int64) (*dto.UserResponse, error)
	ListUsers(ctx context.Context, filter *dto.UserFilterRequest) (*dto.UserListResponse, error)
	SetUserActive(ctx context.Context, userID int64, isActive bool) (*dto.UserResponse, error)
	GetSystemStats(ctx context.Context) (*dto.SystemStatsResponse, error)
}

// userServiceImpl implements UserService
type userServiceImpl struct {
	userStore   AdminUserStore
	thesisStats ThesisStatsStore
	tokenStore  TokenStore
	logger      zerolog.Logger
}

// NewUserService creates a new UserService
func NewUserService(userStore AdminUserStore, thesisStats ThesisStatsStore, tokenStore TokenStore, logger zerolog.Logger) UserService {
	return &userServiceImpl{
		userStore:   userStore,
		thesisStats: thesisStats,
		tokenStore:  tokenStore,
		logger:      logger,
	}
}

// GetProfile returns one user's account information
func (s *userServiceImpl) GetProfile(ctx context.Context, userID int64) (*dto.UserResponse, error) {
	user, err := s.userStore.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	resp := dto.FromUser(user)
	return &resp, nil
}

// ListUsers returns accounts with optional role and active filters
func (s *userServiceImpl) ListUsers(ctx context.Context, filter *dto.UserFilterRequest) (*dto.UserListResponse, error) {
	var roleType *models.RoleType
	if filter.RoleType != nil {
		role := models.RoleType(*filter.RoleType)
		roleType = &role
	}

	users, total, err := s.userStore.GetAll(ctx, roleType, filter.IsActive, filter.Page, filter.PageSize)
	if err != nil {
		return nil, fmt.Errorf("error listing users: %w", err)
	}

	responses := make([]dto.UserResponse, 0, len(users))
	for _, user := range users {
		responses = append(responses, dto.FromUser(user))
	}
	return &dto.UserListResponse{
		Users:      responses,
		Pagination: dto.NewPaginationInfo(filter.Page, filter.PageSize, total),
	}, nil
}

// SetUserActive enables or disables an account. Disabling also revokes the
// user's refresh tokens so open sessions die with the account.
func (s *userServiceImpl) SetUserActive(ctx context.Context, userID int64, isActive bool) (*dto.UserResponse, error) {
	if err := s.userStore.SetActive(ctx, userID, isActive); err != nil {
		return nil, err
	}
	if !isActive && s.tokenStore != nil {
		if err := s.tokenStore.RevokeAllUserTokens(ctx, userID); err != nil {
			s.logger.Warn().Err(err).Int64("userID", userID).Msg("Failed to revoke tokens for deactivated user")
		}
	}

	user, err := s.userStore.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	resp := dto.FromUser(user)
	return &resp, nil
}

// GetSystemStats aggregates user counts per role and thesis counts per status
// for the admin dashboard
func (s *userServiceImpl) GetSystemStats(ctx context.Context) (*dto.SystemStatsResponse, error) {
	usersByRole, err := s.userStore.CountByRole(ctx)
	if err != nil {
		return nil, fmt.Errorf("error counting users: %w", err)
	}
	thesesByStatus, err := s.thesisStats.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("error counting theses: %w", err)
	}

	stats := &dto.SystemStatsResponse{
		UsersByRole:    make(map[string]int, len(usersByRole)),
		ThesesByStatus: make(map[string]int, len(thesesByStatus)),
	}
	for role, count := range usersByRole {
		stats.UsersByRole[string(role)] = count
		stats.TotalUsers += count
	}
	for status, count := range thesesByStatus {
		stats.ThesesByStatus[string(status)] = count
		stats.TotalTheses += count
	}
	return stats, nil
}
