package models

import (
	"fmt"
	"strings"
	"time"

	"thesisflow/internal/pkg/apperrors"
)

// Thesis defines the thesis model based on the 'theses' table.
// All mutations go through the methods below so the struct enforces its own
// invariants: valid status, legal transitions, non-empty title.
type Thesis struct {
	ID          int64        `json:"id" db:"id"`
	Title       string       `json:"title" db:"title"`
	Description *string      `json:"description,omitempty" db:"description"`
	StudentID   int64        `json:"studentId" db:"student_id"`
	AdvisorID   *int64       `json:"advisorId,omitempty" db:"advisor_id"` // nil until an advisor is assigned
	ThesisType  ThesisType   `json:"thesisType" db:"thesis_type"`
	Status      ThesisStatus `json:"status" db:"status"`
	Version     int          `json:"version" db:"version"` // file revision counter, starts at 1

	// File metadata, all nil until a file is uploaded
	FilePath *string `json:"filePath,omitempty" db:"file_path"`
	FileName *string `json:"fileName,omitempty" db:"file_name"`
	FileSize *int64  `json:"fileSize,omitempty" db:"file_size"`
	FileType *string `json:"fileType,omitempty" db:"file_type"` // MIME type

	Metadata map[string]interface{} `json:"metadata,omitempty" db:"metadata"`

	SubmittedAt *time.Time `json:"submittedAt,omitempty" db:"submitted_at"`
	ApprovedAt  *time.Time `json:"approvedAt,omitempty" db:"approved_at"`
	RejectedAt  *time.Time `json:"rejectedAt,omitempty" db:"rejected_at"`
	CreatedAt   time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time  `json:"updatedAt" db:"updated_at"`

	// LockVersion backs version-checked writes in the repository; it is not
	// the same counter as Version, which tracks file revisions.
	LockVersion int64 `json:"-" db:"lock_version"`

	// Relations
	Student *User `json:"student,omitempty"`
	Advisor *User `json:"advisor,omitempty"`
}

// NewThesis creates a thesis in DRAFT with version 1.
func NewThesis(title string, studentID int64, thesisType ThesisType, description *string, metadata map[string]interface{}) (*Thesis, error) {
	if metadata == nil {
		metadata = map[string]interface{}{}
	}
	now := time.Now()
	t := &Thesis{
		Title:       title,
		Description: description,
		StudentID:   studentID,
		ThesisType:  thesisType,
		Status:      StatusDraft,
		Version:     1,
		Metadata:    metadata,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := t.validate(); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *Thesis) validate() error {
	if strings.TrimSpace(t.Title) == "" {
		return apperrors.NewValidationError("thesis title is required")
	}
	if t.StudentID == 0 {
		return apperrors.NewValidationError("student ID is required")
	}
	if !t.ThesisType.IsValid() {
		return apperrors.NewValidationError("invalid thesis type")
	}
	if !t.Status.IsValid() {
		return apperrors.NewValidationError("invalid thesis status")
	}
	return nil
}

// UpdateStatus moves the thesis to newStatus if the transition table allows
// it. Entering SUBMITTED, APPROVED or REJECTED stamps the corresponding
// timestamp; SUBMITTED is refreshed on every resubmission, not just the
// first one.
func (t *Thesis) UpdateStatus(newStatus ThesisStatus) error {
	if !t.Status.CanTransitionTo(newStatus) {
		return apperrors.NewTransitionError(
			fmt.Sprintf("cannot transition from %s to %s", t.Status, newStatus))
	}

	now := time.Now()
	t.Status = newStatus
	t.UpdatedAt = now

	switch newStatus {
	case StatusSubmitted:
		t.SubmittedAt = &now
	case StatusApproved:
		t.ApprovedAt = &now
	case StatusRejected:
		t.RejectedAt = &now
	}
	return nil
}

// UpdateFileInfo replaces the file metadata. Content validation happens in
// the storage layer before this is called.
func (t *Thesis) UpdateFileInfo(path, name string, size int64, mimeType string) {
	t.FilePath = &path
	t.FileName = &name
	t.FileSize = &size
	t.FileType = &mimeType
	t.UpdatedAt = time.Now()
}

// AssignAdvisor sets the advisor unconditionally. Rejecting an already
// assigned thesis is the use case layer's call, not the entity's; see
// ThesisService.AssignAdvisor.
func (t *Thesis) AssignAdvisor(advisorID int64) {
	t.AdvisorID = &advisorID
	t.UpdatedAt = time.Now()
}

// HasAdvisor reports whether an advisor is assigned.
func (t *Thesis) HasAdvisor() bool {
	return t.AdvisorID != nil
}

// IsAssignedTo reports whether the given user is the assigned advisor.
func (t *Thesis) IsAssignedTo(advisorID int64) bool {
	return t.AdvisorID != nil && *t.AdvisorID == advisorID
}

// UpdateTitleDescription applies a partial update and re-validates.
func (t *Thesis) UpdateTitleDescription(title, description *string) error {
	if title != nil {
		t.Title = *title
	}
	if description != nil {
		t.Description = description
	}
	t.UpdatedAt = time.Now()
	return t.validate()
}

// SetMetadata stores a metadata entry.
func (t *Thesis) SetMetadata(key string, value interface{}) {
	if t.Metadata == nil {
		t.Metadata = map[string]interface{}{}
	}
	t.Metadata[key] = value
	t.UpdatedAt = time.Now()
}

// IncrementVersion bumps the file revision counter, used when a new file is
// submitted as a revision.
func (t *Thesis) IncrementVersion() {
	t.Version++
	t.UpdatedAt = time.Now()
}
