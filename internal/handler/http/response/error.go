package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/staff-attendance/internal/domain/attendance"
	"github.com/cmlabs-hris/staff-attendance/internal/domain/auth"
	"github.com/cmlabs-hris/staff-attendance/internal/domain/user"
	"github.com/cmlabs-hris/staff-attendance/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Auth domain errors
	case errors.Is(err, auth.ErrInvalidCredentials):
		Unauthorized(w, err.Error())
	case errors.Is(err, auth.ErrInvalidToken):
		Unauthorized(w, "Invalid or expired token")
	case errors.Is(err, auth.ErrUserNotFound), errors.Is(err, user.ErrUserNotFound):
		NotFound(w, "User not found")
	case errors.Is(err, user.ErrAdminPrivilegeRequired):
		Forbidden(w, "Admin privilege required")

	// Attendance domain errors
	case errors.Is(err, attendance.ErrNoRecognizableTable):
		Unprocessable(w, "NO_RECOGNIZABLE_TABLE", err.Error())
	case errors.Is(err, attendance.ErrOverrideSchema):
		Unprocessable(w, "OVERRIDE_SCHEMA", err.Error())
	case errors.Is(err, attendance.ErrEmptyWorksheet), errors.Is(err, attendance.ErrNoWorksheet):
		Unprocessable(w, "EMPTY_WORKSHEET", err.Error())
	case errors.Is(err, attendance.ErrUnsupportedFile):
		BadRequest(w, err.Error(), nil)
	case errors.Is(err, attendance.ErrInvalidDateRange):
		BadRequest(w, err.Error(), nil)
	case errors.Is(err, attendance.ErrSnapshotNotFound):
		NotFound(w, err.Error())

	// Default
	default:
		slog.Error("Unhandled error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
	}
}
