package validation

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	// validate is a singleton validator instance
	validate *validator.Validate

	// MaxFilenameLength bounds the client-supplied upload name.
	MaxFilenameLength = 255

	// AllowedUploadExtensions lists the accepted file extensions. An empty
	// extension is accepted and sniffed as CSV.
	AllowedUploadExtensions = []string{"", ".csv", ".txt", ".xlsx"}
)

func init() {
	validate = validator.New()
}

// UploadRequest describes one assignment file submitted for analysis.
type UploadRequest struct {
	Filename string `json:"filename" validate:"max=255"`
	Size     int64  `json:"size" validate:"gt=0"`
	Strategy string `json:"strategy" validate:"omitempty,oneof=auto brute-force sweep-line parallel"`
}

// ValidateUploadRequest validates an upload against struct tags, the allowed
// extensions and maxSize (0 disables the size cap).
func ValidateUploadRequest(req *UploadRequest, maxSize int64) error {
	if req == nil {
		return errors.New("upload request cannot be nil")
	}

	req.Strategy = strings.ToLower(strings.TrimSpace(req.Strategy))
	if err := validate.Struct(req); err != nil {
		return formatValidationError(err)
	}

	if maxSize > 0 && req.Size > maxSize {
		return fmt.Errorf("Size: %d bytes exceeds maximum of %d", req.Size, maxSize)
	}

	ext := strings.ToLower(filepath.Ext(req.Filename))
	for _, allowed := range AllowedUploadExtensions {
		if ext == allowed {
			return nil
		}
	}
	return fmt.Errorf("Filename: extension %q is not supported (allowed: %s)",
		ext, strings.Join(AllowedUploadExtensions[1:], ", "))
}

// ValidateStruct checks v against its `validate` struct tags.
func ValidateStruct(v any) error {
	if err := validate.Struct(v); err != nil {
		return formatValidationError(err)
	}
	return nil
}

// formatValidationError converts validator errors to a more user-friendly format
func formatValidationError(err error) error {
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err
	}

	// Return the first validation error in a user-friendly format
	for _, e := range validationErrs {
		field := e.Field()
		param := e.Param()

		switch e.Tag() {
		case "required":
			return fmt.Errorf("%s: field is required", field)
		case "min", "gte":
			return fmt.Errorf("%s: must be at least %s", field, param)
		case "max", "lte":
			return fmt.Errorf("%s: must not exceed %s", field, param)
		case "gt":
			if param == "0" {
				return fmt.Errorf("%s: must not be empty", field)
			}
			return fmt.Errorf("%s: must be greater than %s", field, param)
		case "oneof":
			return fmt.Errorf("%s: must be one of [%s], got %q", field, param, fmt.Sprint(e.Value()))
		case "url":
			return fmt.Errorf("%s: %q is not a valid URL", field, fmt.Sprint(e.Value()))
		default:
			return fmt.Errorf("%s: validation failed (%s)", field, e.Tag())
		}
	}

	return err
}
