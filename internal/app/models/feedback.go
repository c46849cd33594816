package models

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"thesisflow/internal/pkg/apperrors"
)

// FeedbackComment is a single comment inside a feedback record. Comments are
// stored as a jsonb array on the feedback row, so IDs are generated here
// rather than by the database.
type FeedbackComment struct {
	ID         uuid.UUID `json:"id"`
	Content    string    `json:"content"`
	PageNumber *int      `json:"pageNumber,omitempty"`
	PositionX  *float64  `json:"positionX,omitempty"`
	PositionY  *float64  `json:"positionY,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Feedback defines the feedback model based on the 'feedback' table.
// One advisor review round on one thesis: an overall comment, an optional
// rating and any number of inline comments.
type Feedback struct {
	ID              int64             `json:"id" db:"id"`
	ThesisID        int64             `json:"thesisId" db:"thesis_id"`
	AdvisorID       int64             `json:"advisorId" db:"advisor_id"`
	OverallComments string            `json:"overallComments" db:"overall_comments"`
	Rating          *int              `json:"rating,omitempty" db:"rating"` // 1..5, nil when not rated
	Recommendations *string           `json:"recommendations,omitempty" db:"recommendations"`
	Comments        []FeedbackComment `json:"comments" db:"comments"`

	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`

	// Relations
	Advisor *User `json:"advisor,omitempty"`
}

// NewFeedback creates a feedback record with validated fields.
func NewFeedback(thesisID, advisorID int64, overallComments string, rating *int, recommendations *string) (*Feedback, error) {
	if thesisID == 0 {
		return nil, apperrors.NewValidationError("thesis ID is required")
	}
	if advisorID == 0 {
		return nil, apperrors.NewValidationError("advisor ID is required")
	}
	if strings.TrimSpace(overallComments) == "" {
		return nil, apperrors.NewValidationError("overall comments are required")
	}
	if err := validateRating(rating); err != nil {
		return nil, err
	}
	now := time.Now()
	return &Feedback{
		ThesisID:        thesisID,
		AdvisorID:       advisorID,
		OverallComments: overallComments,
		Rating:          rating,
		Recommendations: recommendations,
		Comments:        []FeedbackComment{},
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}

func validateRating(rating *int) error {
	if rating != nil && (*rating < 1 || *rating > 5) {
		return apperrors.ErrInvalidRating
	}
	return nil
}

// AddComment appends a positioned comment and returns its generated ID. The
// page and x/y coordinates are all optional; they anchor the comment on a
// rendered document page.
func (f *Feedback) AddComment(content string, pageNumber *int, positionX, positionY *float64) (uuid.UUID, error) {
	if strings.TrimSpace(content) == "" {
		return uuid.Nil, apperrors.NewValidationError("comment content is required")
	}
	comment := FeedbackComment{
		ID:         uuid.New(),
		Content:    content,
		PageNumber: pageNumber,
		PositionX:  positionX,
		PositionY:  positionY,
		CreatedAt:  time.Now(),
	}
	f.Comments = append(f.Comments, comment)
	f.UpdatedAt = time.Now()
	return comment.ID, nil
}

// UpdateComment replaces the content of the comment with the given ID. It
// reports whether a comment was found.
func (f *Feedback) UpdateComment(commentID uuid.UUID, content string) (bool, error) {
	if strings.TrimSpace(content) == "" {
		return false, apperrors.NewValidationError("comment content is required")
	}
	for i := range f.Comments {
		if f.Comments[i].ID == commentID {
			f.Comments[i].Content = content
			f.UpdatedAt = time.Now()
			return true, nil
		}
	}
	return false, nil
}

// RemoveComment deletes the comment with the given ID and reports whether a
// comment was found.
func (f *Feedback) RemoveComment(commentID uuid.UUID) bool {
	for i := range f.Comments {
		if f.Comments[i].ID == commentID {
			f.Comments = append(f.Comments[:i], f.Comments[i+1:]...)
			f.UpdatedAt = time.Now()
			return true
		}
	}
	return false
}

// UpdateOverall applies a partial update to the overall comments, rating and
// recommendations. The rating is re-validated on every update, never clamped.
func (f *Feedback) UpdateOverall(overallComments *string, rating *int, recommendations *string) error {
	if overallComments != nil {
		if strings.TrimSpace(*overallComments) == "" {
			return apperrors.NewValidationError("overall comments are required")
		}
		f.OverallComments = *overallComments
	}
	if rating != nil {
		if err := validateRating(rating); err != nil {
			return err
		}
		f.Rating = rating
	}
	if recommendations != nil {
		f.Recommendations = recommendations
	}
	f.UpdatedAt = time.Now()
	return nil
}
