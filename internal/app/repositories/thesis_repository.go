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
	"thesisflow/internal/pkg/helpers"
	"thesisflow/internal/pkg/logger"
)

var thesisColumns = []string{
	"id", "title", "description", "student_id", "advisor_id", "thesis_type",
	"status", "version", "file_path", "file_name", "file_size", "file_type",
	"metadata", "submitted_at", "approved_at", "rejected_at",
	"created_at", "updated_at", "lock_version",
}

// ThesisRepository handles thesis database operations
type ThesisRepository struct {
	db DBTX
	sb squirrel.StatementBuilderType
}

// NewThesisRepository creates a new ThesisRepository
func NewThesisRepository(db *pgxpool.Pool) *ThesisRepository {
	return &ThesisRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// WithTx returns a copy of the repository bound to the given transaction
func (r *ThesisRepository) WithTx(tx pgx.Tx) *ThesisRepository {
	return &ThesisRepository{db: tx, sb: r.sb}
}

func scanThesis(row pgx.Row) (*models.Thesis, error) {
	thesis := &models.Thesis{}
	var metadata []byte
	err := row.Scan(
		&thesis.ID, &thesis.Title, &thesis.Description, &thesis.StudentID,
		&thesis.AdvisorID, &thesis.ThesisType, &thesis.Status, &thesis.Version,
		&thesis.FilePath, &thesis.FileName, &thesis.FileSize, &thesis.FileType,
		&metadata, &thesis.SubmittedAt, &thesis.ApprovedAt, &thesis.RejectedAt,
		&thesis.CreatedAt, &thesis.UpdatedAt, &thesis.LockVersion)
	if err != nil {
		return nil, err
	}
	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &thesis.Metadata); err != nil {
			return nil, fmt.Errorf("error decoding thesis metadata: %w", err)
		}
	}
	return thesis, nil
}

// Create inserts a new thesis and returns its ID
func (r *ThesisRepository) Create(ctx context.Context, thesis *models.Thesis) (int64, error) {
	metadata, err := json.Marshal(thesis.Metadata)
	if err != nil {
		return 0, fmt.Errorf("error encoding thesis metadata: %w", err)
	}

	sql, args, err := r.sb.Insert("theses").
		Columns("title", "description", "student_id", "advisor_id", "thesis_type",
			"status", "version", "file_path", "file_name", "file_size", "file_type",
			"metadata", "submitted_at", "created_at", "updated_at").
		Values(thesis.Title, thesis.Description, thesis.StudentID, thesis.AdvisorID,
			thesis.ThesisType, thesis.Status, thesis.Version, thesis.FilePath,
			thesis.FileName, thesis.FileSize, thesis.FileType, metadata,
			thesis.SubmittedAt, thesis.CreatedAt, thesis.UpdatedAt).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build create thesis query: %w", err)
	}

	var id int64
	err = r.db.QueryRow(ctx, sql, args...).Scan(&id)
	if err != nil {
		logger.Error().Err(err).Int64("studentID", thesis.StudentID).Msg("Error creating thesis")
		return 0, fmt.Errorf("error creating thesis: %w", err)
	}
	return id, nil
}

// GetByID retrieves a thesis by ID
func (r *ThesisRepository) GetByID(ctx context.Context, id int64) (*models.Thesis, error) {
	sql, args, err := r.sb.Select(thesisColumns...).
		From("theses").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get thesis query: %w", err)
	}

	thesis, err := scanThesis(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrThesisNotFound
		}
		logger.Error().Err(err).Int64("thesisID", id).Msg("Error scanning thesis row")
		return nil, fmt.Errorf("error getting thesis: %w", err)
	}
	return thesis, nil
}

// Update writes the full thesis row guarded by lock_version. The row is
// only written when the in-memory lock version still matches the stored
// one; a concurrent writer surfaces as ErrStaleThesis. On success the
// in-memory LockVersion is advanced to match the row.
func (r *ThesisRepository) Update(ctx context.Context, thesis *models.Thesis) error {
	metadata, err := json.Marshal(thesis.Metadata)
	if err != nil {
		return fmt.Errorf("error encoding thesis metadata: %w", err)
	}

	sql, args, err := r.sb.Update("theses").
		Set("title", thesis.Title).
		Set("description", thesis.Description).
		Set("advisor_id", thesis.AdvisorID).
		Set("thesis_type", thesis.ThesisType).
		Set("status", thesis.Status).
		Set("version", thesis.Version).
		Set("file_path", thesis.FilePath).
		Set("file_name", thesis.FileName).
		Set("file_size", thesis.FileSize).
		Set("file_type", thesis.FileType).
		Set("metadata", metadata).
		Set("submitted_at", thesis.SubmittedAt).
		Set("approved_at", thesis.ApprovedAt).
		Set("rejected_at", thesis.RejectedAt).
		Set("updated_at", thesis.UpdatedAt).
		Set("lock_version", thesis.LockVersion+1).
		Where(squirrel.Eq{"id": thesis.ID, "lock_version": thesis.LockVersion}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update thesis query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("thesisID", thesis.ID).Msg("Error updating thesis")
		return fmt.Errorf("error updating thesis: %w", err)
	}
	if tag.RowsAffected() == 0 {
		// Either the row is gone or someone else won the write.
		exists, err := r.exists(ctx, thesis.ID)
		if err != nil {
			return err
		}
		if !exists {
			return apperrors.ErrThesisNotFound
		}
		return apperrors.ErrStaleThesis
	}
	thesis.LockVersion++
	return nil
}

func (r *ThesisRepository) exists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM theses WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("error checking thesis existence: %w", err)
	}
	return exists, nil
}

// Delete removes a thesis row
func (r *ThesisRepository) Delete(ctx context.Context, id int64) error {
	sql, args, err := r.sb.Delete("theses").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete thesis query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("error deleting thesis: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrThesisNotFound
	}
	return nil
}

// CountByStatus returns the number of theses per lifecycle status
func (r *ThesisRepository) CountByStatus(ctx context.Context) (map[models.ThesisStatus]int, error) {
	sql, args, err := r.sb.Select("status", "COUNT(*)").
		From("theses").
		GroupBy("status").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build count theses query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error counting theses: %w", err)
	}
	defer rows.Close()

	counts := make(map[models.ThesisStatus]int)
	for rows.Next() {
		var status models.ThesisStatus
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("error scanning thesis count row: %w", err)
		}
		counts[status] = count
	}
	return counts, rows.Err()
}

// ThesisFilter narrows GetAll results
type ThesisFilter struct {
	StudentID  *int64
	AdvisorID  *int64
	Status     *models.ThesisStatus
	ThesisType *models.ThesisType
	Search     *string // case-insensitive title match
}

// GetAll retrieves theses matching the filter, newest first, paginated
func (r *ThesisRepository) GetAll(ctx context.Context, filter ThesisFilter, page, pageSize int) ([]*models.Thesis, int, error) {
	query := r.sb.Select(thesisColumns...).
		Column("COUNT(*) OVER()").
		From("theses").
		OrderBy("created_at DESC")

	if filter.StudentID != nil {
		query = query.Where(squirrel.Eq{"student_id": *filter.StudentID})
	}
	if filter.AdvisorID != nil {
		query = query.Where(squirrel.Eq{"advisor_id": *filter.AdvisorID})
	}
	if filter.Status != nil {
		query = query.Where(squirrel.Eq{"status": *filter.Status})
	}
	if filter.ThesisType != nil {
		query = query.Where(squirrel.Eq{"thesis_type": *filter.ThesisType})
	}
	if filter.Search != nil && *filter.Search != "" {
		query = query.Where(squirrel.ILike{"title": "%" + *filter.Search + "%"})
	}

	offset, limit := helpers.CalculateOffsetLimit(page, pageSize)
	query = query.Limit(uint64(limit)).Offset(offset)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list theses query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("error listing theses: %w", err)
	}
	defer rows.Close()

	var theses []*models.Thesis
	var total int
	for rows.Next() {
		thesis := &models.Thesis{}
		var metadata []byte
		err := rows.Scan(
			&thesis.ID, &thesis.Title, &thesis.Description, &thesis.StudentID,
			&thesis.AdvisorID, &thesis.ThesisType, &thesis.Status, &thesis.Version,
			&thesis.FilePath, &thesis.FileName, &thesis.FileSize, &thesis.FileType,
			&metadata, &thesis.SubmittedAt, &thesis.ApprovedAt, &thesis.RejectedAt,
			&thesis.CreatedAt, &thesis.UpdatedAt, &thesis.LockVersion, &total)
		if err != nil {
			return nil, 0, fmt.Errorf("error scanning thesis row: %w", err)
		}
		if len(metadata) > 0 {
			if err := json.Unmarshal(metadata, &thesis.Metadata); err != nil {
				return nil, 0, fmt.Errorf("error decoding thesis metadata: %w", err)
			}
		}
		theses = append(theses, thesis)
	}
	return theses, total, rows.Err()
}
