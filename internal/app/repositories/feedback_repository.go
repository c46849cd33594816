package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"thesisflow/internal/app/models"
	"thesisflow/internal/pkg/apperrors"
	"thesisflow/internal/pkg/logger"
)

// FeedbackRepository handles feedback database operations. Inline comments
// are stored as a jsonb array on the feedback row since they are only ever
// read and written through their parent feedback.
type FeedbackRepository struct {
	db DBTX
	sb squirrel.StatementBuilderType
}

// NewFeedbackRepository creates a new FeedbackRepository
func NewFeedbackRepository(db *pgxpool.Pool) *FeedbackRepository {
	return &FeedbackRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// WithTx returns a copy of the repository bound to the given transaction
func (r *FeedbackRepository) WithTx(tx pgx.Tx) *FeedbackRepository {
	return &FeedbackRepository{db: tx, sb: r.sb}
}

func scanFeedback(row pgx.Row) (*models.Feedback, error) {
	feedback := &models.Feedback{}
	var comments []byte
	err := row.Scan(
		&feedback.ID, &feedback.ThesisID, &feedback.AdvisorID,
		&feedback.OverallComments, &feedback.Rating, &feedback.Recommendations,
		&comments, &feedback.CreatedAt, &feedback.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(comments, &feedback.Comments); err != nil {
		return nil, fmt.Errorf("error decoding feedback comments: %w", err)
	}
	return feedback, nil
}

// Create inserts a new feedback record and returns its ID
func (r *FeedbackRepository) Create(ctx context.Context, feedback *models.Feedback) (int64, error) {
	comments, err := json.Marshal(feedback.Comments)
	if err != nil {
		return 0, fmt.Errorf("error encoding feedback comments: %w", err)
	}

	sql, args, err := r.sb.Insert("feedback").
		Columns("thesis_id", "advisor_id", "overall_comments", "rating",
			"recommendations", "comments", "created_at", "updated_at").
		Values(feedback.ThesisID, feedback.AdvisorID, feedback.OverallComments,
			feedback.Rating, feedback.Recommendations, comments,
			feedback.CreatedAt, feedback.UpdatedAt).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build create feedback query: %w", err)
	}

	var id int64
	err = r.db.QueryRow(ctx, sql, args...).Scan(&id)
	if err != nil {
		logger.Error().Err(err).Int64("thesisID", feedback.ThesisID).Msg("Error creating feedback")
		return 0, fmt.Errorf("error creating feedback: %w", err)
	}
	return id, nil
}

// GetByID retrieves a feedback record by ID
func (r *FeedbackRepository) GetByID(ctx context.Context, id int64) (*models.Feedback, error) {
	sql, args, err := r.sb.Select("id", "thesis_id", "advisor_id", "overall_comments",
		"rating", "recommendations", "comments", "created_at", "updated_at").
		From("feedback").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get feedback query: %w", err)
	}

	feedback, err := scanFeedback(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrFeedbackNotFound
		}
		logger.Error().Err(err).Int64("feedbackID", id).Msg("Error scanning feedback row")
		return nil, fmt.Errorf("error getting feedback: %w", err)
	}
	return feedback, nil
}

// GetByThesis retrieves all feedback on a thesis, newest round first
func (r *FeedbackRepository) GetByThesis(ctx context.Context, thesisID int64) ([]*models.Feedback, error) {
	sql, args, err := r.sb.Select("id", "thesis_id", "advisor_id", "overall_comments",
		"rating", "recommendations", "comments", "created_at", "updated_at").
		From("feedback").
		Where(squirrel.Eq{"thesis_id": thesisID}).
		OrderBy("created_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list feedback query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing feedback: %w", err)
	}
	defer rows.Close()

	var result []*models.Feedback
	for rows.Next() {
		feedback := &models.Feedback{}
		var comments []byte
		err := rows.Scan(
			&feedback.ID, &feedback.ThesisID, &feedback.AdvisorID,
			&feedback.OverallComments, &feedback.Rating, &feedback.Recommendations,
			&comments, &feedback.CreatedAt, &feedback.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("error scanning feedback row: %w", err)
		}
		if err := json.Unmarshal(comments, &feedback.Comments); err != nil {
			return nil, fmt.Errorf("error decoding feedback comments: %w", err)
		}
		result = append(result, feedback)
	}
	return result, rows.Err()
}

// Update writes the overall comment, rating and comments of a feedback row
func (r *FeedbackRepository) Update(ctx context.Context, feedback *models.Feedback) error {
	comments, err := json.Marshal(feedback.Comments)
	if err != nil {
		return fmt.Errorf("error encoding feedback comments: %w", err)
	}

	sql, args, err := r.sb.Update("feedback").
		Set("overall_comments", feedback.OverallComments).
		Set("rating", feedback.Rating).
		Set("recommendations", feedback.Recommendations).
		Set("comments", comments).
		Set("updated_at", feedback.UpdatedAt).
		Where(squirrel.Eq{"id": feedback.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update feedback query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("feedbackID", feedback.ID).Msg("Error updating feedback")
		return fmt.Errorf("error updating feedback: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrFeedbackNotFound
	}
	return nil
}
