package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestThesisStatus_CanTransitionTo(t *testing.T) {
	allowed := map[ThesisStatus][]ThesisStatus{
		StatusDraft:         {StatusSubmitted},
		StatusSubmitted:     {StatusUnderReview},
		StatusUnderReview:   {StatusNeedsRevision, StatusApproved, StatusRejected},
		StatusNeedsRevision: {StatusSubmitted},
		StatusApproved:      {},
		StatusRejected:      {},
	}

	// Check the full matrix so a new transition cannot slip in unnoticed.
	for _, from := range AllStatuses() {
		for _, to := range AllStatuses() {
			want := false
			for _, a := range allowed[from] {
				if a == to {
					want = true
				}
			}
			assert.Equal(t, want, from.CanTransitionTo(to), "%s -> %s", from, to)
		}
	}
}

func TestThesisStatus_SelfTransitionsRejected(t *testing.T) {
	for _, s := range AllStatuses() {
		assert.False(t, s.CanTransitionTo(s), "%s -> %s should be rejected", s, s)
	}
}

func TestThesisStatus_IsTerminal(t *testing.T) {
	assert.True(t, StatusApproved.IsTerminal())
	assert.True(t, StatusRejected.IsTerminal())
	assert.False(t, StatusDraft.IsTerminal())
	assert.False(t, StatusSubmitted.IsTerminal())
	assert.False(t, StatusUnderReview.IsTerminal())
	assert.False(t, StatusNeedsRevision.IsTerminal())
}

func TestThesisStatus_IsValid(t *testing.T) {
	for _, s := range AllStatuses() {
		assert.True(t, s.IsValid())
	}
	assert.False(t, ThesisStatus("ARCHIVED").IsValid())
	assert.False(t, ThesisStatus("").IsValid())
}
