package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/edumanage/internal/app/models/dto"
	"github.com/yigit/edumanage/internal/pkg/apperrors"
	"github.com/yigit/edumanage/internal/pkg/logger"
)

// errorResponseFor classifies err. Domain errors are checked before their
// classes so the more specific code wins.
func errorResponseFor(err error) (int, *dto.ErrorDetail) {
	switch {
	case errors.Is(err, apperrors.ErrInvalidStatus):
		return http.StatusBadRequest, dto.NewErrorDetail(dto.ErrorCodeInvalidStatus, apperrors.UserMessage(err, "Invalid status")).WithField("status")
	case errors.Is(err, apperrors.ErrInvalidRole):
		return http.StatusBadRequest, dto.NewErrorDetail(dto.ErrorCodeInvalidRole, apperrors.UserMessage(err, "Invalid role")).WithField("role")
	case errors.Is(err, apperrors.ErrValidationFailed):
		return http.StatusBadRequest, dto.NewErrorDetail(dto.ErrorCodeValidationFailed, apperrors.UserMessage(err, "Validation failed"))

	case errors.Is(err, apperrors.ErrDuplicateUsername), errors.Is(err, apperrors.ErrAlreadyEnrolled):
		return http.StatusConflict, dto.NewErrorDetail(dto.ErrorCodeResourceAlreadyExists, apperrors.UserMessage(err, "Resource already exists")).
			WithSeverity(dto.ErrorSeverityWarning)
	case errors.Is(err, apperrors.ErrConflict):
		return http.StatusConflict, dto.NewErrorDetail(dto.ErrorCodeConflict, apperrors.UserMessage(err, "Conflict"))

	case errors.Is(err, apperrors.ErrResourceNotFound):
		return http.StatusNotFound, dto.NewErrorDetail(dto.ErrorCodeResourceNotFound, apperrors.UserMessage(err, "Resource not found"))

	case errors.Is(err, apperrors.ErrInvalidCredentials):
		return http.StatusUnauthorized, dto.NewErrorDetail(dto.ErrorCodeInvalidCredentials, "Invalid username or password")
	case errors.Is(err, apperrors.ErrTokenExpired):
		return http.StatusUnauthorized, dto.NewErrorDetail(dto.ErrorCodeExpiredToken, "Authentication failed").WithDetails("Token has expired")
	case errors.Is(err, apperrors.ErrTokenInvalid):
		return http.StatusUnauthorized, dto.NewErrorDetail(dto.ErrorCodeInvalidToken, "Authentication failed").WithDetails("Invalid token")
	case errors.Is(err, apperrors.ErrUnauthenticated):
		return http.StatusUnauthorized, dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required").WithDetails("Authorization header missing")

	case errors.Is(err, apperrors.ErrPermissionDenied):
		return http.StatusForbidden, dto.NewErrorDetail(dto.ErrorCodeForbidden, apperrors.UserMessage(err, "Permission denied"))

	default:
		return http.StatusInternalServerError, dto.NewErrorDetail(dto.ErrorCodeInternalServer, "Internal server error").
			WithSeverity(dto.ErrorSeverityCritical)
	}
}

// HandleAPIError writes the error envelope for err. Unclassified errors are
// logged and reported as a generic 500.
func HandleAPIError(c *gin.Context, err error) {
	status, detail := errorResponseFor(err)
	if status == http.StatusInternalServerError {
		logger.Error().Err(err).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Msg("Unhandled error")
	}
	c.JSON(status, dto.NewErrorResponse(detail))
}
