package services

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"thesisflow/internal/app/models"
)

type notificationTestEnv struct {
	store   *fakeNotificationStore
	pusher  *fakePusher
	email   *fakeEmailService
	service NotificationService
}

func newNotificationTestEnv(users *fakeUserStore) *notificationTestEnv {
	env := &notificationTestEnv{
		store:  newFakeNotificationStore(),
		pusher: &fakePusher{},
		email:  &fakeEmailService{},
	}
	env.service = NewNotificationService(env.store, users, env.pusher, env.email, zerolog.Nop())
	return env
}

func TestNotifyNewSubmission(t *testing.T) {
	ctx := context.Background()
	student := testStudent(1)

	t.Run("assigned advisor gets the notification", func(t *testing.T) {
		advisor := testAdvisor(2)
		other := testAdvisor(5)
		other.Email = "second.advisor@example.com"
		env := newNotificationTestEnv(newFakeUserStore(student, advisor, other))

		thesis, err := models.NewThesis("Assigned Work", 1, models.ThesisTypeFinal, nil, nil)
		require.NoError(t, err)
		thesis.ID = 10
		thesis.AssignAdvisor(2)

		env.service.NotifyNewSubmission(ctx, thesis, student)

		assert.Len(t, env.store.forUser(2), 1)
		assert.Empty(t, env.store.forUser(5), "unassigned advisors stay quiet")
	})

	t.Run("unassigned thesis fans out to every active advisor", func(t *testing.T) {
		advisor := testAdvisor(2)
		other := testAdvisor(5)
		other.Email = "second.advisor@example.com"
		inactive := testAdvisor(6)
		inactive.Email = "gone@example.com"
		inactive.IsActive = false
		env := newNotificationTestEnv(newFakeUserStore(student, advisor, other, inactive))

		thesis, err := models.NewThesis("Open Work", 1, models.ThesisTypeFinal, nil, nil)
		require.NoError(t, err)
		thesis.ID = 10

		env.service.NotifyNewSubmission(ctx, thesis, student)

		assert.Len(t, env.store.forUser(2), 1)
		assert.Len(t, env.store.forUser(5), 1)
		assert.Empty(t, env.store.forUser(6), "inactive advisors are skipped")
		assert.Len(t, env.pusher.events, 2, "each stored notification is pushed")
	})
}

func TestNotifyFeedbackProvided(t *testing.T) {
	ctx := context.Background()
	student := testStudent(1)
	advisor := testAdvisor(2)
	env := newNotificationTestEnv(newFakeUserStore(student, advisor))

	thesis, err := models.NewThesis("Reviewed Work", 1, models.ThesisTypeFinal, nil, nil)
	require.NoError(t, err)
	thesis.ID = 10

	env.service.NotifyFeedbackProvided(ctx, thesis, advisor)

	rows := env.store.forUser(1)
	require.Len(t, rows, 1)
	assert.Equal(t, models.NotificationFeedbackProvided, rows[0].Type)
	assert.Contains(t, rows[0].Message, "Grace Hopper")
	require.NotNil(t, rows[0].ThesisID)
	assert.Equal(t, int64(10), *rows[0].ThesisID)
	assert.Equal(t, []string{"student@example.com"}, env.email.feedbackMails)

	require.Len(t, env.pusher.events, 1)
	assert.Equal(t, rows[0].ID, env.pusher.events[0].NotificationID)
	assert.Equal(t, int64(1), env.pusher.events[0].UserID)
}

func TestNotifyStatusChange(t *testing.T) {
	ctx := context.Background()
	student := testStudent(1)
	env := newNotificationTestEnv(newFakeUserStore(student))

	thesis, err := models.NewThesis("Moving Work", 1, models.ThesisTypeFinal, nil, nil)
	require.NoError(t, err)
	thesis.ID = 10

	env.service.NotifyStatusChange(ctx, thesis, models.StatusSubmitted, models.StatusUnderReview)

	rows := env.store.forUser(1)
	require.Len(t, rows, 1)
	assert.Equal(t, models.NotificationStatusChanged, rows[0].Type)
	assert.Contains(t, rows[0].Message, "UNDER_REVIEW")
	assert.Equal(t, []string{"student@example.com"}, env.email.statusMails)
}

func TestNotificationReads(t *testing.T) {
	ctx := context.Background()
	student := testStudent(1)
	advisor := testAdvisor(2)
	env := newNotificationTestEnv(newFakeUserStore(student, advisor))

	thesis, err := models.NewThesis("Busy Work", 1, models.ThesisTypeFinal, nil, nil)
	require.NoError(t, err)
	thesis.ID = 10

	env.service.NotifyFeedbackProvided(ctx, thesis, advisor)
	env.service.NotifyStatusChange(ctx, thesis, models.StatusSubmitted, models.StatusUnderReview)
	env.service.NotifyAdvisorAssigned(ctx, thesis, advisor)

	count, err := env.service.UnreadCount(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	list, err := env.service.List(ctx, 1, 1, 10)
	require.NoError(t, err)
	require.Len(t, list.Notifications, 3)
	newest := list.Notifications[0]
	assert.Equal(t, string(models.NotificationAdvisorAssigned), newest.Type, "newest first")

	require.NoError(t, env.service.MarkRead(ctx, newest.ID, 1))
	count, err = env.service.UnreadCount(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	// Marking someone else's notification fails
	assert.Error(t, env.service.MarkRead(ctx, newest.ID, 2))

	require.NoError(t, env.service.MarkAllRead(ctx, 1))
	count, err = env.service.UnreadCount(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}
