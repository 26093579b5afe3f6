package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"tasktracker/internal/apperror"
)

const msgMissingFields = "Please provide all required fields"

var validate = validator.New(validator.WithRequiredStructEnabled())

// validationError turns the first failed rule into a client-facing ValidationError.
func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return apperror.NewValidationError(err.Error())
	}

	fe := verrs[0]
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return apperror.NewValidationError(msgMissingFields)
	case "oneof":
		return apperror.NewValidationError(fmt.Sprintf("Invalid %s, must be one of: %s", field, strings.ReplaceAll(fe.Param(), " ", ", ")))
	case "email":
		return apperror.NewValidationError("Invalid email address")
	case "min":
		return apperror.NewValidationError(fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param()))
	case "max":
		return apperror.NewValidationError(fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param()))
	default:
		return apperror.NewValidationError(fmt.Sprintf("Invalid %s", field))
	}
}
