package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"thesisflow/internal/pkg/apperrors"
	"thesisflow/internal/pkg/logger"
)

// VerificationTokenRepository handles email verification token operations
type VerificationTokenRepository struct {
	db DBTX
	sb squirrel.StatementBuilderType
}

// NewVerificationTokenRepository creates a new VerificationTokenRepository
func NewVerificationTokenRepository(db *pgxpool.Pool) *VerificationTokenRepository {
	return &VerificationTokenRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// CreateToken stores a new verification token for the user, invalidating any
// previous one.
func (r *VerificationTokenRepository) CreateToken(ctx context.Context, token string, userID int64, expiresAt time.Time) error {
	delSQL, delArgs, err := r.sb.Delete("verification_tokens").
		Where(squirrel.Eq{"user_id": userID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete verification tokens query: %w", err)
	}
	if _, err := r.db.Exec(ctx, delSQL, delArgs...); err != nil {
		return fmt.Errorf("error clearing old verification tokens: %w", err)
	}

	sql, args, err := r.sb.Insert("verification_tokens").
		Columns("token", "user_id", "expires_at", "created_at").
		Values(token, userID, expiresAt, time.Now()).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create verification token query: %w", err)
	}

	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		logger.Error().Err(err).Int64("userID", userID).Msg("Error creating verification token")
		return fmt.Errorf("error creating verification token: %w", err)
	}
	return nil
}

// ConsumeToken looks up the token, deletes it and returns the owning user
// ID. Expired or unknown tokens yield ErrInvalidEmailToken.
func (r *VerificationTokenRepository) ConsumeToken(ctx context.Context, token string) (int64, error) {
	var userID int64
	var expiresAt time.Time

	sql, args, err := r.sb.Select("user_id", "expires_at").
		From("verification_tokens").
		Where(squirrel.Eq{"token": token}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build get verification token query: %w", err)
	}

	err = r.db.QueryRow(ctx, sql, args...).Scan(&userID, &expiresAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, apperrors.ErrInvalidEmailToken
		}
		return 0, fmt.Errorf("error getting verification token: %w", err)
	}

	delSQL, delArgs, err := r.sb.Delete("verification_tokens").
		Where(squirrel.Eq{"token": token}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build delete verification token query: %w", err)
	}
	if _, err := r.db.Exec(ctx, delSQL, delArgs...); err != nil {
		return 0, fmt.Errorf("error deleting verification token: %w", err)
	}

	if time.Now().After(expiresAt) {
		return 0, apperrors.ErrInvalidEmailToken
	}
	return userID, nil
}
