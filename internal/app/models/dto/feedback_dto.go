package dto

import (
	"time"

	"thesisflow/internal/app/models"
)

// FeedbackCommentRequest represents one positioned comment in a feedback
// request
type FeedbackCommentRequest struct {
	Content    string   `json:"content" binding:"required"`
	PageNumber *int     `json:"pageNumber,omitempty" binding:"omitempty,gt=0"`
	PositionX  *float64 `json:"positionX,omitempty"`
	PositionY  *float64 `json:"positionY,omitempty"`
}

// CreateFeedbackRequest represents feedback creation data
type CreateFeedbackRequest struct {
	OverallComments string                   `json:"overallComments" binding:"required"`
	Rating          *int                     `json:"rating,omitempty" binding:"omitempty,min=1,max=5"`
	Recommendations *string                  `json:"recommendations,omitempty"`
	Comments        []FeedbackCommentRequest `json:"comments,omitempty"`
}

// UpdateFeedbackRequest represents a partial feedback update
type UpdateFeedbackRequest struct {
	OverallComments *string `json:"overallComments,omitempty"`
	Rating          *int    `json:"rating,omitempty" binding:"omitempty,min=1,max=5"`
	Recommendations *string `json:"recommendations,omitempty"`
}

// AddFeedbackCommentRequest represents a single new positioned comment
type AddFeedbackCommentRequest struct {
	Content    string   `json:"content" binding:"required"`
	PageNumber *int     `json:"pageNumber,omitempty" binding:"omitempty,gt=0"`
	PositionX  *float64 `json:"positionX,omitempty"`
	PositionY  *float64 `json:"positionY,omitempty"`
}

// UpdateFeedbackCommentRequest replaces a comment's content
type UpdateFeedbackCommentRequest struct {
	Content string `json:"content" binding:"required"`
}

// FeedbackCommentResponse represents one positioned comment
type FeedbackCommentResponse struct {
	ID         string    `json:"id"`
	Content    string    `json:"content"`
	PageNumber *int      `json:"pageNumber,omitempty"`
	PositionX  *float64  `json:"positionX,omitempty"`
	PositionY  *float64  `json:"positionY,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

// FeedbackResponse represents feedback information
type FeedbackResponse struct {
	ID              int64                     `json:"id"`
	ThesisID        int64                     `json:"thesisId"`
	Advisor         *UserResponse             `json:"advisor,omitempty"`
	OverallComments string                    `json:"overallComments"`
	Rating          *int                      `json:"rating,omitempty"`
	Recommendations *string                   `json:"recommendations,omitempty"`
	Comments        []FeedbackCommentResponse `json:"comments"`
	CreatedAt       time.Time                 `json:"createdAt"`
	UpdatedAt       time.Time                 `json:"updatedAt"`
}

// FromFeedback converts a models.Feedback to a FeedbackResponse
func FromFeedback(feedback *models.Feedback) FeedbackResponse {
	if feedback == nil {
		return FeedbackResponse{}
	}
	comments := make([]FeedbackCommentResponse, 0, len(feedback.Comments))
	for _, c := range feedback.Comments {
		comments = append(comments, FeedbackCommentResponse{
			ID:         c.ID.String(),
			Content:    c.Content,
			PageNumber: c.PageNumber,
			PositionX:  c.PositionX,
			PositionY:  c.PositionY,
			CreatedAt:  c.CreatedAt,
		})
	}
	resp := FeedbackResponse{
		ID:              feedback.ID,
		ThesisID:        feedback.ThesisID,
		OverallComments: feedback.OverallComments,
		Rating:          feedback.Rating,
		Recommendations: feedback.Recommendations,
		Comments:        comments,
		CreatedAt:       feedback.CreatedAt,
		UpdatedAt:       feedback.UpdatedAt,
	}
	if feedback.Advisor != nil {
		advisor := FromUser(feedback.Advisor)
		resp.Advisor = &advisor
	}
	return resp
}

// FeedbackListResponse represents all feedback rounds on one thesis
type FeedbackListResponse struct {
	Feedback []FeedbackResponse `json:"feedback"`
}
