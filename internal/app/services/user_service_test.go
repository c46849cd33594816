package services

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"thesisflow/internal/app/models"
	"thesisflow/internal/app/models/dto"
	"thesisflow/internal/pkg/apperrors"
)

func TestListUsers(t *testing.T) {
	ctx := context.Background()
	users := newFakeUserStore(testStudent(1), testAdvisor(2), testAdmin(3))
	service := NewUserService(users, newFakeThesisStore(), newFakeTokenStore(), zerolog.Nop())

	t.Run("no filter returns everyone", func(t *testing.T) {
		resp, err := service.ListUsers(ctx, &dto.UserFilterRequest{Page: 1, PageSize: 10})
		require.NoError(t, err)
		assert.Len(t, resp.Users, 3)
		assert.Equal(t, 3, resp.Pagination.TotalItems)
	})

	t.Run("role filter", func(t *testing.T) {
		role := string(models.RoleAdvisor)
		resp, err := service.ListUsers(ctx, &dto.UserFilterRequest{RoleType: &role, Page: 1, PageSize: 10})
		require.NoError(t, err)
		require.Len(t, resp.Users, 1)
		assert.Equal(t, "ADVISOR", resp.Users[0].RoleType)
	})

	t.Run("pagination", func(t *testing.T) {
		resp, err := service.ListUsers(ctx, &dto.UserFilterRequest{Page: 2, PageSize: 2})
		require.NoError(t, err)
		assert.Len(t, resp.Users, 1)
		assert.Equal(t, 2, resp.Pagination.TotalPages)
	})
}

func timeInFuture() time.Time {
	return time.Now().Add(time.Hour)
}

func TestGetSystemStats(t *testing.T) {
	ctx := context.Background()
	users := newFakeUserStore(testStudent(1), testAdvisor(2), testAdmin(3))

	draft, err := models.NewThesis("Draft Work", 1, models.ThesisTypeDraft, nil, nil)
	require.NoError(t, err)
	draft.ID = 10
	submitted := submittedThesis(t, 11, 1)
	theses := newFakeThesisStore(draft, submitted)
	service := NewUserService(users, theses, newFakeTokenStore(), zerolog.Nop())

	stats, err := service.GetSystemStats(ctx)
	require.NoError(t, err)

	assert.Equal(t, 3, stats.TotalUsers)
	assert.Equal(t, 1, stats.UsersByRole["STUDENT"])
	assert.Equal(t, 1, stats.UsersByRole["ADVISOR"])
	assert.Equal(t, 1, stats.UsersByRole["ADMIN"])

	assert.Equal(t, 2, stats.TotalTheses)
	assert.Equal(t, 1, stats.ThesesByStatus["DRAFT"])
	assert.Equal(t, 1, stats.ThesesByStatus["SUBMITTED"])
}

func TestSetUserActive(t *testing.T) {
	ctx := context.Background()

	t.Run("deactivation revokes refresh tokens", func(t *testing.T) {
		users := newFakeUserStore(testStudent(1))
		tokens := newFakeTokenStore()
		require.NoError(t, tokens.CreateToken(ctx, "live-token", 1, timeInFuture()))
		service := NewUserService(users, newFakeThesisStore(), tokens, zerolog.Nop())

		resp, err := service.SetUserActive(ctx, 1, false)
		require.NoError(t, err)
		assert.False(t, resp.IsActive)
		assert.True(t, tokens.tokens["live-token"].isRevoked)
	})

	t.Run("reactivation", func(t *testing.T) {
		users := newFakeUserStore(testStudent(1))
		require.NoError(t, users.SetActive(ctx, 1, false))
		service := NewUserService(users, newFakeThesisStore(), newFakeTokenStore(), zerolog.Nop())

		resp, err := service.SetUserActive(ctx, 1, true)
		require.NoError(t, err)
		assert.True(t, resp.IsActive)
	})

	t.Run("unknown user", func(t *testing.T) {
		service := NewUserService(newFakeUserStore(), newFakeThesisStore(), newFakeTokenStore(), zerolog.Nop())

		_, err := service.SetUserActive(ctx, 99, false)
		assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
	})
}
