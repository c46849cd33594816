package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"thesisflow/internal/app/models"
	"thesisflow/internal/app/models/dto"
	"thesisflow/internal/pkg/apperrors"
	"thesisflow/internal/pkg/auth"
	"thesisflow/internal/pkg/email"
)

// verificationTokenTTL is how long an email verification token stays valid
const verificationTokenTTL = 24 * time.Hour

// AccountStore is the user persistence surface the auth service needs
type AccountStore interface {
	Create(ctx context.Context, user *models.User) (int64, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	StudentNumberExists(ctx context.Context, studentNumber string) (bool, error)
	MarkEmailVerified(ctx context.Context, userID int64) error
}

// TokenStore is the refresh token persistence surface
type TokenStore interface {
	CreateToken(ctx context.Context, token string, userID int64, expiryDate time.Time) error
	GetTokenByValue(ctx context.Context, token string) (int64, time.Time, bool, error)
	RevokeToken(ctx context.Context, token string) error
	RevokeAllUserTokens(ctx context.Context, userID int64) error
}

// VerificationStore is the email verification token persistence surface
type VerificationStore interface {
	CreateToken(ctx context.Context, token string, userID int64, expiresAt time.Time) error
	ConsumeToken(ctx context.Context, token string) (int64, error)
}

// AuthService defines the interface for authentication operations
type AuthService interface {
	Register(ctx context.Context, req *dto.RegisterRequest) (*dto.UserResponse, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error)
	RefreshToken(ctx context.Context, refreshToken string) (*dto.TokenResponse, error)
	Logout(ctx context.Context, refreshToken string) error
	VerifyEmail(ctx context.Context, token string) error
	ResendVerification(ctx context.Context, emailAddress string) error
}

// authServiceImpl implements AuthService
type authServiceImpl struct {
	accountStore      AccountStore
	tokenStore        TokenStore
	verificationStore VerificationStore
	jwtService        *auth.JWTService
	emailService      email.EmailService
	logger            zerolog.Logger
}

// NewAuthService creates a new AuthService
func NewAuthService(
	accountStore AccountStore,
	tokenStore TokenStore,
	verificationStore VerificationStore,
	jwtService *auth.JWTService,
	emailService email.EmailService,
	logger zerolog.Logger,
) AuthService {
	return &authServiceImpl{
		accountStore:      accountStore,
		tokenStore:        tokenStore,
		verificationStore: verificationStore,
		jwtService:        jwtService,
		emailService:      emailService,
		logger:            logger,
	}
}

// Register creates a new account. Students must supply a unique student
// number; advisors must not. New accounts start active but unverified, and
// receive a verification email.
func (s *authServiceImpl) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.UserResponse, error) {
	emailAddress := strings.ToLower(strings.TrimSpace(req.Email))

	exists, err := s.accountStore.EmailExists(ctx, emailAddress)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperrors.ErrEmailAlreadyExists
	}

	switch req.RoleType {
	case models.RoleStudent:
		if req.StudentNumber == nil || *req.StudentNumber == "" {
			return nil, apperrors.NewValidationError("student number is required for student accounts")
		}
		taken, err := s.accountStore.StudentNumberExists(ctx, *req.StudentNumber)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, apperrors.ErrStudentNumberTaken
		}
	case models.RoleAdvisor:
		if req.StudentNumber != nil {
			return nil, apperrors.NewValidationError("advisor accounts cannot carry a student number")
		}
	default:
		return nil, apperrors.NewValidationError("role must be STUDENT or ADVISOR")
	}

	hashedPassword, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Email:         emailAddress,
		Password:      hashedPassword,
		FirstName:     req.FirstName,
		LastName:      req.LastName,
		RoleType:      req.RoleType,
		StudentNumber: req.StudentNumber,
		Department:    req.Department,
		IsActive:      true,
		EmailVerified: false,
	}
	id, err := s.accountStore.Create(ctx, user)
	if err != nil {
		return nil, err
	}
	user.ID = id

	if err := s.issueVerificationToken(ctx, user); err != nil {
		// Account exists either way; the user can request a new token
		s.logger.Warn().Err(err).Str("email", user.Email).Msg("Failed to send verification email after registration")
	}

	resp := dto.FromUser(user)
	return &resp, nil
}

// Login validates credentials and issues a token pair. Disabled and
// unverified accounts are rejected after the password check so the error
// never leaks whether the password was right for an unknown email.
func (s *authServiceImpl) Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	emailAddress := strings.ToLower(strings.TrimSpace(req.Email))

	user, err := s.accountStore.GetByEmail(ctx, emailAddress)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, err
	}
	if !auth.CheckPassword(user.Password, req.Password) {
		return nil, apperrors.ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, apperrors.ErrAccountDisabled
	}
	if !user.EmailVerified {
		return nil, apperrors.ErrEmailNotVerified
	}

	tokens, err := s.issueTokenPair(ctx, user)
	if err != nil {
		return nil, err
	}
	return &dto.AuthResponse{Token: *tokens, User: dto.FromUser(user)}, nil
}

// RefreshToken rotates a refresh token: the presented token is revoked and a
// fresh pair is issued
func (s *authServiceImpl) RefreshToken(ctx context.Context, refreshToken string) (*dto.TokenResponse, error) {
	userID, expiryDate, isRevoked, err := s.tokenStore.GetTokenByValue(ctx, refreshToken)
	if err != nil {
		return nil, err
	}
	if isRevoked {
		return nil, apperrors.ErrTokenInvalid
	}
	if time.Now().After(expiryDate) {
		return nil, apperrors.ErrTokenExpired
	}

	user, err := s.accountStore.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, apperrors.ErrAccountDisabled
	}

	if err := s.tokenStore.RevokeToken(ctx, refreshToken); err != nil {
		return nil, err
	}
	return s.issueTokenPair(ctx, user)
}

// Logout revokes the presented refresh token
func (s *authServiceImpl) Logout(ctx context.Context, refreshToken string) error {
	return s.tokenStore.RevokeToken(ctx, refreshToken)
}

// VerifyEmail consumes a verification token and marks the account verified
func (s *authServiceImpl) VerifyEmail(ctx context.Context, token string) error {
	userID, err := s.verificationStore.ConsumeToken(ctx, token)
	if err != nil {
		return err
	}

	user, err := s.accountStore.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user.EmailVerified {
		return apperrors.ErrEmailAlreadyVerified
	}
	return s.accountStore.MarkEmailVerified(ctx, userID)
}

// ResendVerification issues a fresh verification token for an unverified
// account
func (s *authServiceImpl) ResendVerification(ctx context.Context, emailAddress string) error {
	user, err := s.accountStore.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(emailAddress)))
	if err != nil {
		return err
	}
	if user.EmailVerified {
		return apperrors.ErrEmailAlreadyVerified
	}
	return s.issueVerificationToken(ctx, user)
}

// issueVerificationToken stores a verification token and emails it
func (s *authServiceImpl) issueVerificationToken(ctx context.Context, user *models.User) error {
	token, err := email.GenerateVerificationToken()
	if err != nil {
		return err
	}
	if err := s.verificationStore.CreateToken(ctx, token, user.ID, time.Now().Add(verificationTokenTTL)); err != nil {
		return err
	}
	return s.emailService.SendVerificationEmail(user.Email, user.FirstName, token)
}

// issueTokenPair generates and persists a token pair for the user
func (s *authServiceImpl) issueTokenPair(ctx context.Context, user *models.User) (*dto.TokenResponse, error) {
	accessToken, refreshToken, expiresIn, refreshExpiresIn, err := s.jwtService.GenerateTokenPair(user)
	if err != nil {
		return nil, err
	}
	if err := s.tokenStore.CreateToken(ctx, refreshToken, user.ID, s.jwtService.GetRefreshTokenExpiry()); err != nil {
		return nil, err
	}
	return &dto.TokenResponse{
		AccessToken:           accessToken,
		TokenType:             "Bearer",
		ExpiresIn:             expiresIn,
		RefreshToken:          refreshToken,
		RefreshTokenExpiresIn: refreshExpiresIn,
	}, nil
}
