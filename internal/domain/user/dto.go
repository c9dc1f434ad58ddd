package user

import (
	"github.com/cmlabs-hris/staff-attendance/internal/pkg/validator"
)

// UserResponse represents user data in API responses
type UserResponse struct {
	ID                 string `json:"id"`
	FullName           string `json:"full_name"`
	IsAdmin            bool   `json:"is_admin"`
	MustChangePassword bool   `json:"must_change_password"`
	NameSet            bool   `json:"name_set"`
}

// UpdateProfileRequest sets the display name of the current user
type UpdateProfileRequest struct {
	FullName string `json:"full_name"`
}

func (r *UpdateProfileRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.FullName) {
		errs = append(errs, validator.ValidationError{
			Field:   "full_name",
			Message: "full_name is required",
		})
	} else if len(r.FullName) > 255 {
		errs = append(errs, validator.ValidationError{
			Field:   "full_name",
			Message: "full_name must not exceed 255 characters",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}
