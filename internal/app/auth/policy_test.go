package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"thesisflow/internal/app/models"
	"thesisflow/internal/pkg/apperrors"
)

func user(id int64, role models.RoleType) *models.User {
	return &models.User{ID: id, RoleType: role, IsActive: true}
}

func thesisOwnedBy(studentID int64, status models.ThesisStatus) *models.Thesis {
	return &models.Thesis{ID: 100, StudentID: studentID, Status: status}
}

func TestPolicy_CanAccessThesis(t *testing.T) {
	p := NewPolicy()
	thesis := thesisOwnedBy(1, models.StatusSubmitted)
	advisorID := int64(2)
	thesis.AdvisorID = &advisorID

	assert.True(t, p.CanAccessThesis(user(1, models.RoleStudent), thesis), "owner")
	assert.False(t, p.CanAccessThesis(user(5, models.RoleStudent), thesis), "other student")
	assert.True(t, p.CanAccessThesis(user(2, models.RoleAdvisor), thesis), "assigned advisor")
	assert.False(t, p.CanAccessThesis(user(3, models.RoleAdvisor), thesis), "other advisor")
	assert.True(t, p.CanAccessThesis(user(9, models.RoleAdmin), thesis), "admin")

	unassigned := thesisOwnedBy(1, models.StatusSubmitted)
	assert.False(t, p.CanAccessThesis(user(2, models.RoleAdvisor), unassigned), "advisor without assignment")
}

func TestPolicy_CanUpdateThesisContent(t *testing.T) {
	p := NewPolicy()

	for _, status := range []models.ThesisStatus{models.StatusDraft, models.StatusNeedsRevision} {
		assert.True(t, p.CanUpdateThesisContent(user(1, models.RoleStudent), thesisOwnedBy(1, status)), "%s", status)
	}
	for _, status := range []models.ThesisStatus{
		models.StatusSubmitted, models.StatusUnderReview, models.StatusApproved, models.StatusRejected,
	} {
		assert.False(t, p.CanUpdateThesisContent(user(1, models.RoleStudent), thesisOwnedBy(1, status)), "%s", status)
	}

	assert.False(t, p.CanUpdateThesisContent(user(5, models.RoleStudent), thesisOwnedBy(1, models.StatusDraft)))
	assert.False(t, p.CanUpdateThesisContent(user(9, models.RoleAdmin), thesisOwnedBy(1, models.StatusDraft)))

	t.Run("error distinguishes ownership from status", func(t *testing.T) {
		err := p.ValidateThesisContentUpdate(user(5, models.RoleStudent), thesisOwnedBy(1, models.StatusDraft))
		assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)

		err = p.ValidateThesisContentUpdate(user(1, models.RoleStudent), thesisOwnedBy(1, models.StatusApproved))
		assert.ErrorIs(t, err, apperrors.ErrThesisNotEditable)
	})
}

func TestPolicy_CanTransitionStatus(t *testing.T) {
	p := NewPolicy()
	advisorID := int64(2)

	t.Run("student", func(t *testing.T) {
		own := thesisOwnedBy(1, models.StatusDraft)
		assert.True(t, p.CanTransitionStatus(user(1, models.RoleStudent), own, models.StatusSubmitted))
		assert.False(t, p.CanTransitionStatus(user(1, models.RoleStudent), own, models.StatusApproved))
		assert.False(t, p.CanTransitionStatus(user(5, models.RoleStudent), own, models.StatusSubmitted))
	})

	t.Run("advisor", func(t *testing.T) {
		assigned := thesisOwnedBy(1, models.StatusSubmitted)
		assigned.AdvisorID = &advisorID
		for _, target := range []models.ThesisStatus{
			models.StatusUnderReview, models.StatusNeedsRevision,
			models.StatusApproved, models.StatusRejected,
		} {
			assert.True(t, p.CanTransitionStatus(user(2, models.RoleAdvisor), assigned, target), "%s", target)
		}
		assert.False(t, p.CanTransitionStatus(user(2, models.RoleAdvisor), assigned, models.StatusSubmitted))
		assert.False(t, p.CanTransitionStatus(user(3, models.RoleAdvisor), assigned, models.StatusApproved))
	})

	t.Run("admin may request anything", func(t *testing.T) {
		thesis := thesisOwnedBy(1, models.StatusUnderReview)
		for _, target := range models.AllStatuses() {
			assert.True(t, p.CanTransitionStatus(user(9, models.RoleAdmin), thesis, target))
		}
	})
}

func TestPolicy_CanProvideFeedback(t *testing.T) {
	p := NewPolicy()
	advisorID := int64(2)

	t.Run("unassigned thesis open to any advisor", func(t *testing.T) {
		thesis := thesisOwnedBy(1, models.StatusSubmitted)
		assert.True(t, p.CanProvideFeedback(user(2, models.RoleAdvisor), thesis))
		assert.True(t, p.CanProvideFeedback(user(3, models.RoleAdvisor), thesis))
	})

	t.Run("assigned thesis locked to its advisor", func(t *testing.T) {
		thesis := thesisOwnedBy(1, models.StatusUnderReview)
		thesis.AdvisorID = &advisorID
		assert.True(t, p.CanProvideFeedback(user(2, models.RoleAdvisor), thesis))
		assert.False(t, p.CanProvideFeedback(user(3, models.RoleAdvisor), thesis))
	})

	t.Run("role and status gates", func(t *testing.T) {
		thesis := thesisOwnedBy(1, models.StatusSubmitted)
		assert.False(t, p.CanProvideFeedback(user(1, models.RoleStudent), thesis))
		assert.False(t, p.CanProvideFeedback(user(9, models.RoleAdmin), thesis))

		draft := thesisOwnedBy(1, models.StatusDraft)
		assert.False(t, p.CanProvideFeedback(user(2, models.RoleAdvisor), draft))
		approved := thesisOwnedBy(1, models.StatusApproved)
		assert.False(t, p.CanProvideFeedback(user(2, models.RoleAdvisor), approved))
	})
}

func TestPolicy_CanModifyFeedback(t *testing.T) {
	p := NewPolicy()
	fb, err := models.NewFeedback(100, 2, "overall", nil, nil)
	require.NoError(t, err)

	assert.True(t, p.CanModifyFeedback(user(2, models.RoleAdvisor), fb), "author")
	assert.False(t, p.CanModifyFeedback(user(3, models.RoleAdvisor), fb), "other advisor")
	assert.True(t, p.CanModifyFeedback(user(9, models.RoleAdmin), fb), "admin")
	assert.False(t, p.CanModifyFeedback(user(1, models.RoleStudent), fb), "student")
}

func TestPolicy_CanDeleteThesis(t *testing.T) {
	p := NewPolicy()

	assert.True(t, p.CanDeleteThesis(user(9, models.RoleAdmin)))
	assert.False(t, p.CanDeleteThesis(user(2, models.RoleAdvisor)))
	assert.False(t, p.CanDeleteThesis(user(1, models.RoleStudent)))
}

func TestPolicy_CanAssignAdvisor(t *testing.T) {
	p := NewPolicy()

	assert.True(t, p.CanAssignAdvisor(user(9, models.RoleAdmin), 2))
	assert.True(t, p.CanAssignAdvisor(user(2, models.RoleAdvisor), 2), "self-claim")
	assert.False(t, p.CanAssignAdvisor(user(2, models.RoleAdvisor), 3))
	assert.False(t, p.CanAssignAdvisor(user(1, models.RoleStudent), 1))
}
