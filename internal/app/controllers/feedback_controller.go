package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"thesisflow/internal/app/models/dto"
	"thesisflow/internal/app/services"
	"thesisflow/internal/middleware"
)

// FeedbackController handles advisor review operations
type FeedbackController struct {
	feedbackService services.FeedbackService
	logger          zerolog.Logger
}

// NewFeedbackController creates a new FeedbackController
func NewFeedbackController(feedbackService services.FeedbackService, logger zerolog.Logger) *FeedbackController {
	return &FeedbackController{feedbackService: feedbackService, logger: logger}
}

// Create handles feedback creation
// @Summary Provide feedback on a thesis
// @Description Records a review round with optional rating, recommendations and positioned comments. The reviewing advisor claims an unassigned thesis, and a SUBMITTED thesis moves to UNDER_REVIEW; all of it happens atomically.
// @Tags feedback
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Thesis ID"
// @Param request body dto.CreateFeedbackRequest true "Feedback content"
// @Success 201 {object} dto.APIResponse{data=dto.FeedbackResponse} "Feedback recorded"
// @Failure 400 {object} dto.ErrorResponse "Invalid request or rating out of range"
// @Failure 403 {object} dto.ErrorResponse "Caller is not an advisor or the thesis belongs to another advisor"
// @Failure 404 {object} dto.ErrorResponse "Thesis not found"
// @Failure 409 {object} dto.ErrorResponse "Thesis is not in a reviewable status"
// @Router /theses/{id}/feedback [post]
func (c *FeedbackController) Create(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	thesisID, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	var req dto.CreateFeedbackRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		c.logger.Warn().Err(err).Msg("Invalid feedback payload")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
		return
	}

	resp, err := c.feedbackService.ProvideFeedback(ctx.Request.Context(), userID, thesisID, &req)
	if err != nil {
		c.logger.Warn().Err(err).Int64("thesisID", thesisID).Int64("advisorID", userID).Msg("Feedback rejected")
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.logger.Info().Int64("feedbackID", resp.ID).Int64("thesisID", thesisID).Msg("Feedback recorded")
	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(resp, "Feedback recorded"))
}

// ListByThesis handles feedback listing for one thesis
// @Summary List feedback on a thesis
// @Description Returns every review round on the thesis, newest first
// @Tags feedback
// @Produce json
// @Security BearerAuth
// @Param id path int true "Thesis ID"
// @Success 200 {object} dto.APIResponse{data=dto.FeedbackListResponse} "Feedback rounds"
// @Failure 403 {object} dto.ErrorResponse "No access to this thesis"
// @Failure 404 {object} dto.ErrorResponse "Thesis not found"
// @Router /theses/{id}/feedback [get]
func (c *FeedbackController) ListByThesis(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	thesisID, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	resp, err := c.feedbackService.ListFeedback(ctx.Request.Context(), userID, thesisID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp, ""))
}

// Get handles single feedback retrieval
// @Summary Get one feedback record
// @Description Returns one review round; access follows the thesis it belongs to
// @Tags feedback
// @Produce json
// @Security BearerAuth
// @Param id path int true "Feedback ID"
// @Success 200 {object} dto.APIResponse{data=dto.FeedbackResponse} "Feedback"
// @Failure 403 {object} dto.ErrorResponse "No access to the owning thesis"
// @Failure 404 {object} dto.ErrorResponse "Feedback not found"
// @Router /feedback/{id} [get]
func (c *FeedbackController) Get(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	feedbackID, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	resp, err := c.feedbackService.GetFeedback(ctx.Request.Context(), userID, feedbackID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp, ""))
}

// Update handles feedback revision by its author
// @Summary Update feedback
// @Description Revises overall comments, rating or recommendations. Only the authoring advisor may update.
// @Tags feedback
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Feedback ID"
// @Param request body dto.UpdateFeedbackRequest true "Fields to update"
// @Success 200 {object} dto.APIResponse{data=dto.FeedbackResponse} "Feedback updated"
// @Failure 400 {object} dto.ErrorResponse "Invalid request or rating out of range"
// @Failure 403 {object} dto.ErrorResponse "Not the feedback author"
// @Failure 404 {object} dto.ErrorResponse "Feedback not found"
// @Router /feedback/{id} [put]
func (c *FeedbackController) Update(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	feedbackID, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	var req dto.UpdateFeedbackRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
		return
	}

	resp, err := c.feedbackService.UpdateFeedback(ctx.Request.Context(), userID, feedbackID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp, "Feedback updated"))
}

// AddComment appends a positioned comment
// @Summary Add a positioned comment
// @Description Adds a comment anchored to a page and position in the document
// @Tags feedback
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Feedback ID"
// @Param request body dto.AddFeedbackCommentRequest true "Comment content and position"
// @Success 200 {object} dto.APIResponse{data=dto.FeedbackResponse} "Comment added"
// @Failure 400 {object} dto.ErrorResponse "Invalid request format"
// @Failure 403 {object} dto.ErrorResponse "Not the feedback author"
// @Failure 404 {object} dto.ErrorResponse "Feedback not found"
// @Router /feedback/{id}/comments [post]
func (c *FeedbackController) AddComment(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	feedbackID, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	var req dto.AddFeedbackCommentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
		return
	}

	resp, err := c.feedbackService.AddComment(ctx.Request.Context(), userID, feedbackID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp, "Comment added"))
}

// UpdateComment replaces one comment's content
// @Summary Update a positioned comment
// @Tags feedback
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Feedback ID"
// @Param commentId path string true "Comment ID"
// @Param request body dto.UpdateFeedbackCommentRequest true "New content"
// @Success 200 {object} dto.APIResponse{data=dto.FeedbackResponse} "Comment updated"
// @Failure 400 {object} dto.ErrorResponse "Invalid request or comment ID"
// @Failure 403 {object} dto.ErrorResponse "Not the feedback author"
// @Failure 404 {object} dto.ErrorResponse "Feedback or comment not found"
// @Router /feedback/{id}/comments/{commentId} [put]
func (c *FeedbackController) UpdateComment(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	feedbackID, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	var req dto.UpdateFeedbackCommentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
		return
	}

	resp, err := c.feedbackService.UpdateComment(ctx.Request.Context(), userID, feedbackID, ctx.Param("commentId"), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp, "Comment updated"))
}

// RemoveComment deletes one comment
// @Summary Remove a positioned comment
// @Tags feedback
// @Produce json
// @Security BearerAuth
// @Param id path int true "Feedback ID"
// @Param commentId path string true "Comment ID"
// @Success 200 {object} dto.APIResponse{data=dto.FeedbackResponse} "Comment removed"
// @Failure 400 {object} dto.ErrorResponse "Invalid comment ID"
// @Failure 403 {object} dto.ErrorResponse "Not the feedback author"
// @Failure 404 {object} dto.ErrorResponse "Feedback or comment not found"
// @Router /feedback/{id}/comments/{commentId} [delete]
func (c *FeedbackController) RemoveComment(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	feedbackID, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	resp, err := c.feedbackService.RemoveComment(ctx.Request.Context(), userID, feedbackID, ctx.Param("commentId"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp, "Comment removed"))
}
