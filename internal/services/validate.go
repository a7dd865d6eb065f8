package services

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"social-backend/internal/apperrors"
	"social-backend/internal/repository"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report fields by their JSON names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validateInput checks an input struct and returns the first failure as a
// validation error.
func validateInput(in any) error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return apperrors.Internal(err)
	}

	fe := fieldErrs[0]
	switch fe.Tag() {
	case "required":
		return apperrors.Validation(fmt.Sprintf("%s is required", fe.Field()))
	case "max":
		return apperrors.Validation(fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param()))
	default:
		return apperrors.Validation(fmt.Sprintf("%s is invalid", fe.Field()))
	}
}

// storeErr classifies a repository error, mapping missing rows to notFound.
func storeErr(err error, notFound *apperrors.Error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return notFound
	}
	var appErr *apperrors.Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return apperrors.Internal(err)
}

// mediaErr classifies a media host failure. Rejected sources are the
// client's fault; anything else is internal.
func mediaErr(err error) error {
	if errors.Is(err, ErrInvalidMedia) {
		return apperrors.Validation("Invalid image")
	}
	return apperrors.Internal(err)
}

func isID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
