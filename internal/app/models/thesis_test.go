package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"thesisflow/internal/pkg/apperrors"
)

func newTestThesis(t *testing.T) *Thesis {
	t.Helper()
	thesis, err := NewThesis("Distributed Consensus in Practice", 42, ThesisTypeDraft, nil, nil)
	require.NoError(t, err)
	return thesis
}

func TestNewThesis(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		thesis := newTestThesis(t)
		assert.Equal(t, StatusDraft, thesis.Status)
		assert.Equal(t, 1, thesis.Version)
		assert.Nil(t, thesis.AdvisorID)
		assert.Nil(t, thesis.SubmittedAt)
		assert.NotNil(t, thesis.Metadata)
	})

	t.Run("empty title rejected", func(t *testing.T) {
		_, err := NewThesis("   ", 42, ThesisTypeDraft, nil, nil)
		require.Error(t, err)
		assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
	})

	t.Run("invalid type rejected", func(t *testing.T) {
		_, err := NewThesis("Title", 42, ThesisType("INTERIM"), nil, nil)
		require.Error(t, err)
		assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
	})
}

func TestThesis_UpdateStatus(t *testing.T) {
	t.Run("legal path sets timestamps", func(t *testing.T) {
		thesis := newTestThesis(t)

		require.NoError(t, thesis.UpdateStatus(StatusSubmitted))
		require.NotNil(t, thesis.SubmittedAt)

		require.NoError(t, thesis.UpdateStatus(StatusUnderReview))
		require.NoError(t, thesis.UpdateStatus(StatusApproved))
		assert.NotNil(t, thesis.ApprovedAt)
		assert.Nil(t, thesis.RejectedAt)
	})

	t.Run("illegal transition rejected and state unchanged", func(t *testing.T) {
		thesis := newTestThesis(t)
		err := thesis.UpdateStatus(StatusApproved)
		require.Error(t, err)
		assert.ErrorIs(t, err, apperrors.ErrInvalidTransition)
		assert.Equal(t, StatusDraft, thesis.Status)
		assert.Nil(t, thesis.ApprovedAt)
	})

	t.Run("terminal states refuse further transitions", func(t *testing.T) {
		thesis := newTestThesis(t)
		require.NoError(t, thesis.UpdateStatus(StatusSubmitted))
		require.NoError(t, thesis.UpdateStatus(StatusUnderReview))
		require.NoError(t, thesis.UpdateStatus(StatusRejected))

		for _, target := range AllStatuses() {
			assert.ErrorIs(t, thesis.UpdateStatus(target), apperrors.ErrInvalidTransition)
		}
		assert.Equal(t, StatusRejected, thesis.Status)
	})

	t.Run("resubmission refreshes SubmittedAt", func(t *testing.T) {
		thesis := newTestThesis(t)
		require.NoError(t, thesis.UpdateStatus(StatusSubmitted))
		first := *thesis.SubmittedAt

		require.NoError(t, thesis.UpdateStatus(StatusUnderReview))
		require.NoError(t, thesis.UpdateStatus(StatusNeedsRevision))
		time.Sleep(5 * time.Millisecond)
		require.NoError(t, thesis.UpdateStatus(StatusSubmitted))

		assert.True(t, thesis.SubmittedAt.After(first))
	})
}

func TestThesis_AssignAdvisor(t *testing.T) {
	thesis := newTestThesis(t)
	assert.False(t, thesis.HasAdvisor())

	thesis.AssignAdvisor(7)
	assert.True(t, thesis.HasAdvisor())
	assert.True(t, thesis.IsAssignedTo(7))
	assert.False(t, thesis.IsAssignedTo(8))

	// Entity-level assignment overwrites; the service layer guards against
	// reassigning a thesis that already has an advisor.
	thesis.AssignAdvisor(8)
	assert.True(t, thesis.IsAssignedTo(8))
}

func TestThesis_UpdateTitleDescription(t *testing.T) {
	thesis := newTestThesis(t)

	newTitle := "Consensus Protocols Revisited"
	desc := "A survey"
	require.NoError(t, thesis.UpdateTitleDescription(&newTitle, &desc))
	assert.Equal(t, newTitle, thesis.Title)
	require.NotNil(t, thesis.Description)
	assert.Equal(t, desc, *thesis.Description)

	// nil fields leave current values in place
	require.NoError(t, thesis.UpdateTitleDescription(nil, nil))
	assert.Equal(t, newTitle, thesis.Title)

	empty := ""
	err := thesis.UpdateTitleDescription(&empty, nil)
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
}

func TestThesis_FileAndVersion(t *testing.T) {
	thesis := newTestThesis(t)

	thesis.UpdateFileInfo("uploads/theses/1/v1.pdf", "draft.pdf", 1024, "application/pdf")
	require.NotNil(t, thesis.FilePath)
	assert.Equal(t, "draft.pdf", *thesis.FileName)
	assert.Equal(t, int64(1024), *thesis.FileSize)

	thesis.IncrementVersion()
	assert.Equal(t, 2, thesis.Version)
}
