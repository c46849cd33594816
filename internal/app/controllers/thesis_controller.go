package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"thesisflow/internal/app/models"
	"thesisflow/internal/app/models/dto"
	"thesisflow/internal/app/services"
	"thesisflow/internal/middleware"
)

// ThesisController handles thesis lifecycle operations
type ThesisController struct {
	thesisService services.ThesisService
	logger        zerolog.Logger
}

// NewThesisController creates a new ThesisController
func NewThesisController(thesisService services.ThesisService, logger zerolog.Logger) *ThesisController {
	return &ThesisController{thesisService: thesisService, logger: logger}
}

// currentUserID reads the authenticated caller from the context, responding
// with 401 itself when the middleware did not run.
func currentUserID(ctx *gin.Context) (int64, bool) {
	userID, ok := middleware.CurrentUserID(ctx)
	if !ok {
		detail := dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required")
		ctx.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(detail))
		return 0, false
	}
	return userID, true
}

// pathID parses a positive int64 path parameter
func pathID(ctx *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(ctx.Param(name), 10, 64)
	if err != nil || id <= 0 {
		detail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid "+name+" parameter")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(detail))
		return 0, false
	}
	return id, true
}

// Create handles thesis submission
// @Summary Submit a new thesis
// @Description Creates a thesis in DRAFT with an optional document upload (pdf, doc, docx, txt or tex, max 20 MB). Final submissions notify advisors.
// @Tags theses
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param title formData string true "Thesis title"
// @Param description formData string false "Thesis description"
// @Param thesisType formData string true "Thesis type" Enums(DRAFT, FINAL)
// @Param file formData file false "Thesis document"
// @Success 201 {object} dto.APIResponse{data=dto.ThesisResponse} "Thesis created"
// @Failure 400 {object} dto.ErrorResponse "Invalid request or file"
// @Failure 403 {object} dto.ErrorResponse "Caller is not a student"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /theses [post]
func (c *ThesisController) Create(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	var req dto.CreateThesisRequest
	if err := ctx.ShouldBind(&req); err != nil {
		c.logger.Warn().Err(err).Msg("Invalid thesis creation payload")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
		return
	}

	// File part is optional on creation
	file, err := ctx.FormFile("file")
	if err != nil {
		file = nil
	}

	resp, err := c.thesisService.SubmitThesis(ctx.Request.Context(), userID, &req, file)
	if err != nil {
		c.logger.Warn().Err(err).Int64("userID", userID).Msg("Thesis creation failed")
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.logger.Info().Int64("thesisID", resp.ID).Int64("userID", userID).Msg("Thesis created")
	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(resp, "Thesis created"))
}

// List handles role-scoped thesis listing
// @Summary List theses
// @Description Lists theses visible to the caller: students their own, advisors their assignments, admins everything
// @Tags theses
// @Produce json
// @Security BearerAuth
// @Param status query string false "Filter by status" Enums(DRAFT, SUBMITTED, UNDER_REVIEW, NEEDS_REVISION, APPROVED, REJECTED)
// @Param thesisType query string false "Filter by type" Enums(DRAFT, FINAL)
// @Param search query string false "Filter by title substring"
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Page size" default(10)
// @Success 200 {object} dto.APIResponse{data=dto.ThesisListResponse} "Theses"
// @Failure 400 {object} dto.ErrorResponse "Invalid filter parameters"
// @Router /theses [get]
func (c *ThesisController) List(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	var filter dto.ThesisFilterRequest
	if err := ctx.ShouldBindQuery(&filter); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
		return
	}

	resp, err := c.thesisService.ListTheses(ctx.Request.Context(), userID, &filter)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp, ""))
}

// Get handles single thesis retrieval
// @Summary Get a thesis
// @Description Returns one thesis with its student and advisor, subject to access rules
// @Tags theses
// @Produce json
// @Security BearerAuth
// @Param id path int true "Thesis ID"
// @Success 200 {object} dto.APIResponse{data=dto.ThesisResponse} "Thesis"
// @Failure 403 {object} dto.ErrorResponse "No access to this thesis"
// @Failure 404 {object} dto.ErrorResponse "Thesis not found"
// @Router /theses/{id} [get]
func (c *ThesisController) Get(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	thesisID, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	resp, err := c.thesisService.GetThesis(ctx.Request.Context(), userID, thesisID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp, ""))
}

// Update handles title and description updates
// @Summary Update thesis content
// @Description Updates title and description. Only the owning student may edit, and only in DRAFT or NEEDS_REVISION.
// @Tags theses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Thesis ID"
// @Param request body dto.UpdateThesisRequest true "Fields to update"
// @Success 200 {object} dto.APIResponse{data=dto.ThesisResponse} "Thesis updated"
// @Failure 400 {object} dto.ErrorResponse "Invalid request format"
// @Failure 403 {object} dto.ErrorResponse "Not the thesis owner"
// @Failure 404 {object} dto.ErrorResponse "Thesis not found"
// @Failure 409 {object} dto.ErrorResponse "Thesis not editable in its current status"
// @Router /theses/{id} [put]
func (c *ThesisController) Update(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	thesisID, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	var req dto.UpdateThesisRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
		return
	}

	resp, err := c.thesisService.UpdateContent(ctx.Request.Context(), userID, thesisID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp, "Thesis updated"))
}

// UpdateStatus handles status transitions
// @Summary Change thesis status
// @Description Moves the thesis through its lifecycle. Students may submit their own theses; advisors move assigned theses through review; admins may request any transition. Illegal transitions are rejected.
// @Tags theses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Thesis ID"
// @Param request body dto.UpdateThesisStatusRequest true "Target status"
// @Success 200 {object} dto.APIResponse{data=dto.ThesisResponse} "Status changed"
// @Failure 400 {object} dto.ErrorResponse "Invalid request format"
// @Failure 403 {object} dto.ErrorResponse "Role does not permit this transition"
// @Failure 404 {object} dto.ErrorResponse "Thesis not found"
// @Failure 409 {object} dto.ErrorResponse "Transition not allowed from the current status"
// @Router /theses/{id}/status [put]
func (c *ThesisController) UpdateStatus(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	thesisID, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	var req dto.UpdateThesisStatusRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
		return
	}

	resp, err := c.thesisService.UpdateStatus(ctx.Request.Context(), userID, thesisID, models.ThesisStatus(req.Status))
	if err != nil {
		c.logger.Warn().Err(err).Int64("thesisID", thesisID).Str("target", req.Status).Msg("Status change rejected")
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.logger.Info().Int64("thesisID", thesisID).Str("status", resp.Status).Msg("Thesis status changed")
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp, "Status changed"))
}

// AssignAdvisor handles explicit advisor assignment
// @Summary Assign an advisor
// @Description Assigns an advisor to a thesis. Admins may assign anyone; advisors may claim a thesis for themselves. Fails if an advisor is already assigned.
// @Tags theses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Thesis ID"
// @Param request body dto.AssignAdvisorRequest true "Advisor to assign"
// @Success 200 {object} dto.APIResponse{data=dto.ThesisResponse} "Advisor assigned"
// @Failure 400 {object} dto.ErrorResponse "Assignee is not an advisor"
// @Failure 403 {object} dto.ErrorResponse "Caller may not assign this advisor"
// @Failure 404 {object} dto.ErrorResponse "Thesis or advisor not found"
// @Failure 409 {object} dto.ErrorResponse "Thesis already has an advisor"
// @Router /theses/{id}/advisor [put]
func (c *ThesisController) AssignAdvisor(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	thesisID, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	var req dto.AssignAdvisorRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
		return
	}

	resp, err := c.thesisService.AssignAdvisor(ctx.Request.Context(), userID, thesisID, req.AdvisorID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.logger.Info().Int64("thesisID", thesisID).Int64("advisorID", req.AdvisorID).Msg("Advisor assigned")
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp, "Advisor assigned"))
}

// UploadFile handles document replacement
// @Summary Upload a revised document
// @Description Replaces the thesis document and bumps the revision counter. Only the owner may upload, in DRAFT or NEEDS_REVISION.
// @Tags theses
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path int true "Thesis ID"
// @Param file formData file true "Thesis document"
// @Success 200 {object} dto.APIResponse{data=dto.ThesisResponse} "File replaced"
// @Failure 400 {object} dto.ErrorResponse "Missing or invalid file"
// @Failure 403 {object} dto.ErrorResponse "Not the thesis owner"
// @Failure 409 {object} dto.ErrorResponse "Thesis not editable in its current status"
// @Router /theses/{id}/file [put]
func (c *ThesisController) UploadFile(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	thesisID, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	file, err := ctx.FormFile("file")
	if err != nil {
		detail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Missing file part")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(detail))
		return
	}

	resp, err := c.thesisService.ResubmitFile(ctx.Request.Context(), userID, thesisID, file)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.logger.Info().Int64("thesisID", thesisID).Int("version", resp.Version).Msg("Thesis file replaced")
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp, "File uploaded"))
}

// Delete handles thesis removal
// @Summary Delete a thesis
// @Description Removes a thesis with its feedback and stored document. Admin only.
// @Tags theses
// @Produce json
// @Security BearerAuth
// @Param id path int true "Thesis ID"
// @Success 200 {object} dto.APIResponse "Thesis deleted"
// @Failure 403 {object} dto.ErrorResponse "Admin role required"
// @Failure 404 {object} dto.ErrorResponse "Thesis not found"
// @Router /theses/{id} [delete]
func (c *ThesisController) Delete(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	thesisID, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	if err := c.thesisService.DeleteThesis(ctx.Request.Context(), userID, thesisID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.logger.Info().Int64("thesisID", thesisID).Int64("userID", userID).Msg("Thesis deleted")
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(nil, "Thesis deleted"))
}

// DownloadFile handles document download
// @Summary Download the thesis document
// @Description Streams the stored thesis document, subject to access rules
// @Tags theses
// @Produce application/octet-stream
// @Security BearerAuth
// @Param id path int true "Thesis ID"
// @Success 200 {file} binary "Thesis document"
// @Failure 403 {object} dto.ErrorResponse "No access to this thesis"
// @Failure 404 {object} dto.ErrorResponse "Thesis or document not found"
// @Router /theses/{id}/file [get]
func (c *ThesisController) DownloadFile(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	thesisID, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	fullPath, fileName, err := c.thesisService.GetThesisFile(ctx.Request.Context(), userID, thesisID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.FileAttachment(fullPath, fileName)
}
