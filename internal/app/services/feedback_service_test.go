package services

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"thesisflow/internal/app/auth"
	"thesisflow/internal/app/models"
	"thesisflow/internal/app/models/dto"
	"thesisflow/internal/pkg/apperrors"
)

type feedbackTestEnv struct {
	users    *fakeUserStore
	theses   *fakeThesisStore
	feedback *fakeFeedbackStore
	notifier *fakeNotifier
	service  FeedbackService
}

func newFeedbackTestEnv(users *fakeUserStore, theses *fakeThesisStore) *feedbackTestEnv {
	env := &feedbackTestEnv{
		users:    users,
		theses:   theses,
		feedback: newFakeFeedbackStore(),
		notifier: &fakeNotifier{},
	}
	env.service = NewFeedbackService(env.feedback, theses, users, auth.NewPolicy(),
		env.notifier, newFakeTxRunner(theses, env.feedback), zerolog.Nop())
	return env
}

func submittedThesis(t *testing.T, id, studentID int64) *models.Thesis {
	t.Helper()
	thesis, err := models.NewThesis("Under Consideration", studentID, models.ThesisTypeFinal, nil, nil)
	require.NoError(t, err)
	thesis.ID = id
	require.NoError(t, thesis.UpdateStatus(models.StatusSubmitted))
	return thesis
}

func TestProvideFeedback(t *testing.T) {
	ctx := context.Background()
	student := testStudent(1)
	advisor := testAdvisor(2)

	t.Run("claims the thesis and advances it to review", func(t *testing.T) {
		env := newFeedbackTestEnv(newFakeUserStore(student, advisor), newFakeThesisStore(submittedThesis(t, 10, 1)))
		rating := 4
		page := 12
		x, y := 100.5, 210.0

		resp, err := env.service.ProvideFeedback(ctx, 2, 10, &dto.CreateFeedbackRequest{
			OverallComments: "Solid draft, methodology needs tightening",
			Rating:          &rating,
			Comments: []dto.FeedbackCommentRequest{
				{Content: "Clarify the sampling strategy", PageNumber: &page, PositionX: &x, PositionY: &y},
			},
		})
		require.NoError(t, err)

		assert.Equal(t, 4, *resp.Rating)
		require.Len(t, resp.Comments, 1)
		assert.Equal(t, "Clarify the sampling strategy", resp.Comments[0].Content)
		assert.Equal(t, 12, *resp.Comments[0].PageNumber)

		stored, err := env.theses.GetByID(ctx, 10)
		require.NoError(t, err)
		assert.Equal(t, models.StatusUnderReview, stored.Status)
		assert.True(t, stored.IsAssignedTo(2), "reviewing advisor is auto-assigned")

		assert.Equal(t, []int64{10}, env.notifier.advisorAssigned)
		assert.Equal(t, []int64{10}, env.notifier.feedbackProvided)
	})

	t.Run("thesis already under review stays with its advisor", func(t *testing.T) {
		thesis := submittedThesis(t, 10, 1)
		require.NoError(t, thesis.UpdateStatus(models.StatusUnderReview))
		thesis.AssignAdvisor(2)
		env := newFeedbackTestEnv(newFakeUserStore(student, advisor), newFakeThesisStore(thesis))

		_, err := env.service.ProvideFeedback(ctx, 2, 10, &dto.CreateFeedbackRequest{
			OverallComments: "Second round",
		})
		require.NoError(t, err)
		assert.Empty(t, env.notifier.advisorAssigned, "no re-assignment on later rounds")
	})

	t.Run("rejects an advisor when another one is assigned", func(t *testing.T) {
		other := testAdvisor(5)
		other.Email = "second.advisor@example.com"
		thesis := submittedThesis(t, 10, 1)
		thesis.AssignAdvisor(2)
		env := newFeedbackTestEnv(newFakeUserStore(student, advisor, other), newFakeThesisStore(thesis))

		_, err := env.service.ProvideFeedback(ctx, 5, 10, &dto.CreateFeedbackRequest{
			OverallComments: "I want in",
		})
		assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
	})

	t.Run("students cannot provide feedback", func(t *testing.T) {
		env := newFeedbackTestEnv(newFakeUserStore(student, advisor), newFakeThesisStore(submittedThesis(t, 10, 1)))

		_, err := env.service.ProvideFeedback(ctx, 1, 10, &dto.CreateFeedbackRequest{
			OverallComments: "Reviewing myself",
		})
		assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
	})

	t.Run("draft thesis is not reviewable", func(t *testing.T) {
		thesis, err := models.NewThesis("Still a Draft", 1, models.ThesisTypeDraft, nil, nil)
		require.NoError(t, err)
		thesis.ID = 10
		env := newFeedbackTestEnv(newFakeUserStore(student, advisor), newFakeThesisStore(thesis))

		_, err = env.service.ProvideFeedback(ctx, 2, 10, &dto.CreateFeedbackRequest{
			OverallComments: "Too early",
		})
		assert.ErrorIs(t, err, apperrors.ErrThesisNotEditable)
	})

	t.Run("invalid rating is rejected", func(t *testing.T) {
		env := newFeedbackTestEnv(newFakeUserStore(student, advisor), newFakeThesisStore(submittedThesis(t, 10, 1)))
		rating := 6

		_, err := env.service.ProvideFeedback(ctx, 2, 10, &dto.CreateFeedbackRequest{
			OverallComments: "Off the scale",
			Rating:          &rating,
		})
		assert.ErrorIs(t, err, apperrors.ErrInvalidRating)
		assert.Empty(t, env.feedback.feedback)
	})

	t.Run("failed thesis update leaves no feedback behind", func(t *testing.T) {
		env := newFeedbackTestEnv(newFakeUserStore(student, advisor), newFakeThesisStore(submittedThesis(t, 10, 1)))
		env.theses.updateErr = apperrors.ErrStaleThesis

		_, err := env.service.ProvideFeedback(ctx, 2, 10, &dto.CreateFeedbackRequest{
			OverallComments: "Lost the race",
		})
		assert.ErrorIs(t, err, apperrors.ErrStaleThesis)
		assert.Empty(t, env.feedback.feedback)
		assert.Empty(t, env.notifier.feedbackProvided)
	})
}

func TestFeedbackAccess(t *testing.T) {
	ctx := context.Background()
	student := testStudent(1)
	advisor := testAdvisor(2)
	otherStudent := testStudent(4)
	otherStudent.Email = "other@example.com"
	number := "S-2000"
	otherStudent.StudentNumber = &number

	setup := func(t *testing.T) *feedbackTestEnv {
		thesis := submittedThesis(t, 10, 1)
		thesis.AssignAdvisor(2)
		env := newFeedbackTestEnv(newFakeUserStore(student, advisor, otherStudent), newFakeThesisStore(thesis))

		_, err := env.service.ProvideFeedback(ctx, 2, 10, &dto.CreateFeedbackRequest{
			OverallComments: "First round",
		})
		require.NoError(t, err)
		return env
	}

	t.Run("thesis owner reads feedback", func(t *testing.T) {
		env := setup(t)

		resp, err := env.service.GetFeedback(ctx, 1, 1)
		require.NoError(t, err)
		assert.Equal(t, "First round", resp.OverallComments)
		require.NotNil(t, resp.Advisor)
		assert.Equal(t, int64(2), resp.Advisor.ID)
	})

	t.Run("unrelated student is forbidden", func(t *testing.T) {
		env := setup(t)

		_, err := env.service.GetFeedback(ctx, 4, 1)
		assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
	})

	t.Run("list returns all rounds", func(t *testing.T) {
		env := setup(t)
		_, err := env.service.ProvideFeedback(ctx, 2, 10, &dto.CreateFeedbackRequest{
			OverallComments: "Second round",
		})
		require.NoError(t, err)

		resp, err := env.service.ListFeedback(ctx, 1, 10)
		require.NoError(t, err)
		require.Len(t, resp.Feedback, 2)
		assert.Equal(t, "Second round", resp.Feedback[0].OverallComments, "newest first")
	})
}

func TestFeedbackModification(t *testing.T) {
	ctx := context.Background()
	student := testStudent(1)
	advisor := testAdvisor(2)
	otherAdvisor := testAdvisor(5)
	otherAdvisor.Email = "second.advisor@example.com"

	setup := func(t *testing.T) *feedbackTestEnv {
		thesis := submittedThesis(t, 10, 1)
		thesis.AssignAdvisor(2)
		env := newFeedbackTestEnv(newFakeUserStore(student, advisor, otherAdvisor), newFakeThesisStore(thesis))

		page := 3
		_, err := env.service.ProvideFeedback(ctx, 2, 10, &dto.CreateFeedbackRequest{
			OverallComments: "Initial review",
			Comments: []dto.FeedbackCommentRequest{
				{Content: "Fix figure 2", PageNumber: &page},
			},
		})
		require.NoError(t, err)
		return env
	}

	t.Run("author updates overall fields", func(t *testing.T) {
		env := setup(t)
		rating := 5
		recommendations := "Accept after minor edits"

		resp, err := env.service.UpdateFeedback(ctx, 2, 1, &dto.UpdateFeedbackRequest{
			Rating:          &rating,
			Recommendations: &recommendations,
		})
		require.NoError(t, err)
		assert.Equal(t, 5, *resp.Rating)
		assert.Equal(t, "Accept after minor edits", *resp.Recommendations)
		assert.Equal(t, "Initial review", resp.OverallComments, "untouched fields survive")
	})

	t.Run("another advisor may not modify", func(t *testing.T) {
		env := setup(t)

		_, err := env.service.UpdateFeedback(ctx, 5, 1, &dto.UpdateFeedbackRequest{})
		assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
	})

	t.Run("admin modifies on the author's behalf", func(t *testing.T) {
		admin := testAdmin(9)
		thesis := submittedThesis(t, 10, 1)
		thesis.AssignAdvisor(2)
		env := newFeedbackTestEnv(newFakeUserStore(student, advisor, admin), newFakeThesisStore(thesis))

		_, err := env.service.ProvideFeedback(ctx, 2, 10, &dto.CreateFeedbackRequest{
			OverallComments: "Initial review",
		})
		require.NoError(t, err)

		recommendations := "Moderated by the committee"
		resp, err := env.service.UpdateFeedback(ctx, 9, 1, &dto.UpdateFeedbackRequest{
			Recommendations: &recommendations,
		})
		require.NoError(t, err)
		assert.Equal(t, "Moderated by the committee", *resp.Recommendations)
		require.NotNil(t, resp.Advisor)
		assert.Equal(t, int64(2), resp.Advisor.ID, "the authoring advisor stays on the record")
	})

	t.Run("add, update and remove comments", func(t *testing.T) {
		env := setup(t)
		page := 7

		resp, err := env.service.AddComment(ctx, 2, 1, &dto.AddFeedbackCommentRequest{
			Content: "Citation needed", PageNumber: &page,
		})
		require.NoError(t, err)
		require.Len(t, resp.Comments, 2)
		commentID := resp.Comments[1].ID

		resp, err = env.service.UpdateComment(ctx, 2, 1, commentID, &dto.UpdateFeedbackCommentRequest{
			Content: "Citation needed for the 2019 claim",
		})
		require.NoError(t, err)
		assert.Equal(t, "Citation needed for the 2019 claim", resp.Comments[1].Content)

		resp, err = env.service.RemoveComment(ctx, 2, 1, commentID)
		require.NoError(t, err)
		assert.Len(t, resp.Comments, 1)
	})

	t.Run("unknown comment id", func(t *testing.T) {
		env := setup(t)

		_, err := env.service.RemoveComment(ctx, 2, 1, "6b1e6e5e-0000-4000-8000-000000000000")
		assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)

		_, err = env.service.RemoveComment(ctx, 2, 1, "not-a-uuid")
		assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
	})
}

// TestReviewWorkflow drives a thesis through a full review cycle: submit,
// review with feedback, request revision, resubmit, and verify a second
// advisor is locked out.
func TestReviewWorkflow(t *testing.T) {
	ctx := context.Background()
	student := testStudent(1)
	advisor := testAdvisor(2)
	secondAdvisor := testAdvisor(5)
	secondAdvisor.Email = "second.advisor@example.com"

	users := newFakeUserStore(student, advisor, secondAdvisor)
	theses := newFakeThesisStore()
	thesisEnv := newThesisTestEnv(users, theses)
	feedbackEnv := newFeedbackTestEnv(users, theses)

	// Student submits a final thesis
	created, err := thesisEnv.service.SubmitThesis(ctx, 1, &dto.CreateThesisRequest{
		Title:      "A Study of Distributed Consensus",
		ThesisType: "FINAL",
	}, pdfUpload("consensus.pdf"))
	require.NoError(t, err)

	submitted, err := thesisEnv.service.UpdateStatus(ctx, 1, created.ID, models.StatusSubmitted)
	require.NoError(t, err)
	require.NotNil(t, submitted.SubmittedAt)
	firstSubmission := *submitted.SubmittedAt

	// Advisor reviews: auto-assignment plus transition to UNDER_REVIEW
	rating := 4
	_, err = feedbackEnv.service.ProvideFeedback(ctx, 2, created.ID, &dto.CreateFeedbackRequest{
		OverallComments: "Promising, but the evaluation section is thin",
		Rating:          &rating,
	})
	require.NoError(t, err)

	stored, err := theses.GetByID(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, models.StatusUnderReview, stored.Status)
	require.True(t, stored.IsAssignedTo(2))

	// Advisor requests a revision
	_, err = thesisEnv.service.UpdateStatus(ctx, 2, created.ID, models.StatusNeedsRevision)
	require.NoError(t, err)

	// Student uploads a revision and resubmits
	revised, err := thesisEnv.service.ResubmitFile(ctx, 1, created.ID, pdfUpload("consensus-v2.pdf"))
	require.NoError(t, err)
	assert.Equal(t, 2, revised.Version)

	time.Sleep(5 * time.Millisecond)
	resubmitted, err := thesisEnv.service.UpdateStatus(ctx, 1, created.ID, models.StatusSubmitted)
	require.NoError(t, err)
	require.NotNil(t, resubmitted.SubmittedAt)
	assert.True(t, resubmitted.SubmittedAt.After(firstSubmission),
		"submission timestamp is refreshed on resubmission")

	// A second advisor cannot take over the assigned thesis
	_, err = feedbackEnv.service.ProvideFeedback(ctx, 5, created.ID, &dto.CreateFeedbackRequest{
		OverallComments: "My turn",
	})
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)

	// The assigned advisor finishes the review
	_, err = feedbackEnv.service.ProvideFeedback(ctx, 2, created.ID, &dto.CreateFeedbackRequest{
		OverallComments: "Evaluation is much stronger now",
	})
	require.NoError(t, err)

	final, err := thesisEnv.service.UpdateStatus(ctx, 2, created.ID, models.StatusApproved)
	require.NoError(t, err)
	assert.Equal(t, "APPROVED", final.Status)
	assert.NotNil(t, final.ApprovedAt)
	assert.NotNil(t, final.SubmittedAt, "lifecycle timestamps are never cleared")
}
