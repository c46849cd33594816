package models

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"thesisflow/internal/pkg/apperrors"
)

func intPtr(v int) *int           { return &v }
func floatPtr(v float64) *float64 { return &v }
func stringPtr(v string) *string  { return &v }

func TestNewFeedback(t *testing.T) {
	t.Run("accepts ratings 1 through 5 and nil", func(t *testing.T) {
		for _, r := range []*int{nil, intPtr(1), intPtr(2), intPtr(3), intPtr(4), intPtr(5)} {
			fb, err := NewFeedback(1, 2, "Solid chapter structure.", r, nil)
			require.NoError(t, err)
			assert.Equal(t, r, fb.Rating)
		}
	})

	t.Run("rejects out-of-range ratings", func(t *testing.T) {
		for _, r := range []int{0, 6, -1, 100} {
			_, err := NewFeedback(1, 2, "comment", intPtr(r), nil)
			assert.ErrorIs(t, err, apperrors.ErrInvalidRating, "rating %d", r)
		}
	})

	t.Run("requires overall comments", func(t *testing.T) {
		_, err := NewFeedback(1, 2, "  ", nil, nil)
		assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
	})

	t.Run("keeps recommendations", func(t *testing.T) {
		fb, err := NewFeedback(1, 2, "ok", nil, stringPtr("Tighten chapter 3."))
		require.NoError(t, err)
		require.NotNil(t, fb.Recommendations)
		assert.Equal(t, "Tighten chapter 3.", *fb.Recommendations)
	})
}

func TestFeedback_Comments(t *testing.T) {
	fb, err := NewFeedback(1, 2, "Looks good overall.", nil, nil)
	require.NoError(t, err)

	id, err := fb.AddComment("Cite the 2019 survey here.", intPtr(12), floatPtr(100.5), floatPtr(210))
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, id)
	require.Len(t, fb.Comments, 1)
	assert.Equal(t, id, fb.Comments[0].ID)
	assert.Equal(t, 12, *fb.Comments[0].PageNumber)
	assert.Equal(t, 100.5, *fb.Comments[0].PositionX)

	t.Run("position fields are optional", func(t *testing.T) {
		id2, err := fb.AddComment("General remark.", nil, nil, nil)
		require.NoError(t, err)
		assert.NotEqual(t, id, id2)
		assert.Nil(t, fb.Comments[1].PageNumber)
		fb.RemoveComment(id2)
	})

	t.Run("update existing", func(t *testing.T) {
		found, err := fb.UpdateComment(id, "Cite the 2021 survey instead.")
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, "Cite the 2021 survey instead.", fb.Comments[0].Content)
	})

	t.Run("update unknown ID reports not found", func(t *testing.T) {
		found, err := fb.UpdateComment(uuid.New(), "content")
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("remove", func(t *testing.T) {
		assert.False(t, fb.RemoveComment(uuid.New()))
		assert.True(t, fb.RemoveComment(id))
		assert.Empty(t, fb.Comments)
	})

	t.Run("empty content rejected", func(t *testing.T) {
		_, err := fb.AddComment("   ", nil, nil, nil)
		assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
	})
}

func TestFeedback_UpdateOverall(t *testing.T) {
	fb, err := NewFeedback(1, 2, "Initial impression.", intPtr(3), nil)
	require.NoError(t, err)

	newComments := "Revised impression after second read."
	require.NoError(t, fb.UpdateOverall(&newComments, intPtr(4), stringPtr("Add a related-work section.")))
	assert.Equal(t, newComments, fb.OverallComments)
	assert.Equal(t, 4, *fb.Rating)
	require.NotNil(t, fb.Recommendations)

	// nil fields are left untouched
	require.NoError(t, fb.UpdateOverall(nil, nil, nil))
	assert.Equal(t, 4, *fb.Rating)

	assert.ErrorIs(t, fb.UpdateOverall(nil, intPtr(9), nil), apperrors.ErrInvalidRating)
	assert.ErrorIs(t, fb.UpdateOverall(stringPtr("  "), nil, nil), apperrors.ErrValidationFailed)
}
