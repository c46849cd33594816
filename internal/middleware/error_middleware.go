package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"thesisflow/internal/app/models/dto"
	"thesisflow/internal/pkg/apperrors"
)

// HandleAPIError maps domain errors to HTTP responses. The switch is the
// single place where the error taxonomy meets status codes; controllers just
// forward whatever the service returned.
func HandleAPIError(c *gin.Context, err error) {
	code, detail := classify(err)

	// CustomError messages carry context the generic detail lacks
	var custom *apperrors.CustomError
	if errors.As(err, &custom) && custom.Message != "" {
		detail.Message = custom.Message
		if custom.Details != nil {
			detail = detail.WithDetails(custom.Details)
		}
	}

	c.JSON(code, dto.NewErrorResponse(detail))
}

func classify(err error) (int, *dto.ErrorDetail) {
	switch {
	// 400 - bad input
	case errors.Is(err, apperrors.ErrValidationFailed),
		errors.Is(err, apperrors.ErrBadRequest):
		return http.StatusBadRequest, dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Validation failed")
	case errors.Is(err, apperrors.ErrInvalidRating):
		return http.StatusBadRequest, dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Rating must be between 1 and 5")
	case errors.Is(err, apperrors.ErrFileStorage):
		return http.StatusBadRequest, dto.NewErrorDetail(dto.ErrorCodeFileStorage, "File could not be stored")

	// 401 - authentication
	case errors.Is(err, apperrors.ErrInvalidCredentials):
		return http.StatusUnauthorized, dto.NewErrorDetail(dto.ErrorCodeInvalidCredentials, "Invalid credentials")
	case errors.Is(err, apperrors.ErrTokenExpired):
		return http.StatusUnauthorized, dto.NewErrorDetail(dto.ErrorCodeExpiredToken, "Token expired")
	case errors.Is(err, apperrors.ErrTokenInvalid), errors.Is(err, apperrors.ErrInvalidFormat):
		return http.StatusUnauthorized, dto.NewErrorDetail(dto.ErrorCodeInvalidToken, "Invalid token")
	case errors.Is(err, apperrors.ErrTokenNotFound):
		return http.StatusUnauthorized, dto.NewErrorDetail(dto.ErrorCodeTokenNotFound, "Token not found")
	case errors.Is(err, apperrors.ErrInvalidEmailToken):
		return http.StatusBadRequest, dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid or expired verification token")

	// 403 - authorization and account state
	case errors.Is(err, apperrors.ErrPermissionDenied):
		return http.StatusForbidden, dto.NewErrorDetail(dto.ErrorCodeForbidden, "Permission denied")
	case errors.Is(err, apperrors.ErrAccountDisabled):
		return http.StatusForbidden, dto.NewErrorDetail(dto.ErrorCodeAccountDisabled, "Account is disabled")
	case errors.Is(err, apperrors.ErrEmailNotVerified):
		return http.StatusForbidden, dto.NewErrorDetail(dto.ErrorCodeEmailNotVerified, "Email address is not verified")

	// 404 - missing resources
	case errors.Is(err, apperrors.ErrThesisNotFound):
		return http.StatusNotFound, dto.NewErrorDetail(dto.ErrorCodeResourceNotFound, "Thesis not found")
	case errors.Is(err, apperrors.ErrFeedbackNotFound):
		return http.StatusNotFound, dto.NewErrorDetail(dto.ErrorCodeResourceNotFound, "Feedback not found")
	case errors.Is(err, apperrors.ErrUserNotFound):
		return http.StatusNotFound, dto.NewErrorDetail(dto.ErrorCodeResourceNotFound, "User not found")
	case errors.Is(err, apperrors.ErrThesisFileMissing):
		return http.StatusNotFound, dto.NewErrorDetail(dto.ErrorCodeResourceNotFound, "Thesis has no file attached")
	case errors.Is(err, apperrors.ErrResourceNotFound):
		return http.StatusNotFound, dto.NewErrorDetail(dto.ErrorCodeResourceNotFound, "Resource not found")

	// 409 - conflicts
	case errors.Is(err, apperrors.ErrInvalidTransition):
		return http.StatusConflict, dto.NewErrorDetail(dto.ErrorCodeInvalidTransition, "Invalid status transition")
	case errors.Is(err, apperrors.ErrThesisNotEditable):
		return http.StatusConflict, dto.NewErrorDetail(dto.ErrorCodeThesisNotEditable, "Thesis cannot be modified in its current status")
	case errors.Is(err, apperrors.ErrAdvisorAlreadySet):
		return http.StatusConflict, dto.NewErrorDetail(dto.ErrorCodeAdvisorAlreadySet, "Thesis already has an advisor assigned")
	case errors.Is(err, apperrors.ErrStaleThesis):
		return http.StatusConflict, dto.NewErrorDetail(dto.ErrorCodeStaleThesis, "Thesis was modified concurrently, retry the request")
	case errors.Is(err, apperrors.ErrEmailAlreadyExists):
		return http.StatusConflict, dto.NewErrorDetail(dto.ErrorCodeResourceAlreadyExists, "Email already exists")
	case errors.Is(err, apperrors.ErrStudentNumberTaken):
		return http.StatusConflict, dto.NewErrorDetail(dto.ErrorCodeResourceAlreadyExists, "Student number already registered")
	case errors.Is(err, apperrors.ErrEmailAlreadyVerified):
		return http.StatusConflict, dto.NewErrorDetail(dto.ErrorCodeResourceConflict, "Email already verified")
	case errors.Is(err, apperrors.ErrConflict):
		return http.StatusConflict, dto.NewErrorDetail(dto.ErrorCodeResourceConflict, "Conflict")

	default:
		return http.StatusInternalServerError, dto.NewErrorDetail(dto.ErrorCodeInternalServer, "Internal server error")
	}
}
