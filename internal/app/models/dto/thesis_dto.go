package dto

import (
	"fmt"
	"time"

	"thesisflow/internal/app/models"
)

// CreateThesisRequest represents thesis creation data. Sent as multipart
// form fields alongside the optional file part.
type CreateThesisRequest struct {
	Title       string  `form:"title" binding:"required,max=255"`
	Description *string `form:"description,omitempty"`
	ThesisType  string  `form:"thesisType" binding:"required,oneof=DRAFT FINAL"`
}

// UpdateThesisRequest represents a partial update of title and description
type UpdateThesisRequest struct {
	Title       *string `json:"title,omitempty" binding:"omitempty,max=255"`
	Description *string `json:"description,omitempty"`
}

// UpdateThesisStatusRequest represents a status transition request
type UpdateThesisStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=DRAFT SUBMITTED UNDER_REVIEW NEEDS_REVISION APPROVED REJECTED"`
}

// AssignAdvisorRequest represents an advisor assignment request
type AssignAdvisorRequest struct {
	AdvisorID int64 `json:"advisorId" binding:"required,gt=0"`
}

// ThesisFileResponse represents file metadata on a thesis
type ThesisFileResponse struct {
	FileName string `json:"fileName"`
	FileURL  string `json:"fileUrl"`
	FileSize int64  `json:"fileSize"`
	FileType string `json:"fileType"`
}

// ThesisResponse represents thesis information
type ThesisResponse struct {
	ID          int64                  `json:"id"`
	Title       string                 `json:"title"`
	Description *string                `json:"description,omitempty"`
	ThesisType  string                 `json:"thesisType"`
	Status      string                 `json:"status" enums:"DRAFT,SUBMITTED,UNDER_REVIEW,NEEDS_REVISION,APPROVED,REJECTED"`
	Version     int                    `json:"version"`
	Student     *UserResponse          `json:"student,omitempty"`
	Advisor     *UserResponse          `json:"advisor,omitempty"`
	File        *ThesisFileResponse    `json:"file,omitempty"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
	SubmittedAt *time.Time             `json:"submittedAt,omitempty"`
	ApprovedAt  *time.Time             `json:"approvedAt,omitempty"`
	RejectedAt  *time.Time             `json:"rejectedAt,omitempty"`
	CreatedAt   time.Time              `json:"createdAt"`
	UpdatedAt   time.Time              `json:"updatedAt"`
}

// FromThesis converts a models.Thesis to a ThesisResponse. baseURL prefixes
// the file download link.
func FromThesis(thesis *models.Thesis, baseURL string) ThesisResponse {
	if thesis == nil {
		return ThesisResponse{}
	}
	resp := ThesisResponse{
		ID:          thesis.ID,
		Title:       thesis.Title,
		Description: thesis.Description,
		ThesisType:  string(thesis.ThesisType),
		Status:      string(thesis.Status),
		Version:     thesis.Version,
		Metadata:    thesis.Metadata,
		SubmittedAt: thesis.SubmittedAt,
		ApprovedAt:  thesis.ApprovedAt,
		RejectedAt:  thesis.RejectedAt,
		CreatedAt:   thesis.CreatedAt,
		UpdatedAt:   thesis.UpdatedAt,
	}
	if thesis.Student != nil {
		student := FromUser(thesis.Student)
		resp.Student = &student
	}
	if thesis.Advisor != nil {
		advisor := FromUser(thesis.Advisor)
		resp.Advisor = &advisor
	}
	if thesis.FileName != nil && thesis.FileSize != nil && thesis.FileType != nil {
		resp.File = &ThesisFileResponse{
			FileName: *thesis.FileName,
			FileURL:  thesisFileURL(baseURL, thesis.ID),
			FileSize: *thesis.FileSize,
			FileType: *thesis.FileType,
		}
	}
	return resp
}

func thesisFileURL(baseURL string, thesisID int64) string {
	return fmt.Sprintf("%s/api/v1/theses/%d/file", baseURL, thesisID)
}

// ThesisListResponse represents a paginated list of theses
type ThesisListResponse struct {
	Theses     []ThesisResponse `json:"theses"`
	Pagination PaginationInfo   `json:"pagination"`
}

// ThesisFilterRequest represents thesis list filter parameters
type ThesisFilterRequest struct {
	Status     *string `form:"status,omitempty" binding:"omitempty,oneof=DRAFT SUBMITTED UNDER_REVIEW NEEDS_REVISION APPROVED REJECTED"`
	ThesisType *string `form:"thesisType,omitempty" binding:"omitempty,oneof=DRAFT FINAL"`
	Search     *string `form:"search,omitempty" binding:"omitempty,max=200"`
	Page       int     `form:"page,default=1" binding:"min=1"`
	PageSize   int     `form:"pageSize,default=10" binding:"min=1,max=100"`
}
