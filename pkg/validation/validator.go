package validation

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/go-playground/validator/v10"
)

var (
	// validate is a singleton validator instance
	validate *validator.Validate

	// Validation constants
	MaxNodeNameLength = 256
	MaxPathIDLength   = 128

	// Regular expressions
	pathIDPattern = regexp.MustCompile(`^[A-Za-z0-9_.:-]+$`)
)

func init() {
	validate = validator.New()
}

// Struct validates v against its struct tags and returns the first failure in
// a readable form
func Struct(v any) error {
	if v == nil {
		return errors.New("value cannot be nil")
	}
	if err := validate.Struct(v); err != nil {
		return formatValidationError(err)
	}
	return nil
}

// ValidateNodeName validates a node name used as a focus or analysis target
func ValidateNodeName(name string) error {
	if name == "" {
		return errors.New("node name cannot be empty")
	}
	if len(name) > MaxNodeNameLength {
		return fmt.Errorf("node name exceeds maximum length of %d characters", MaxNodeNameLength)
	}
	return nil
}

// ValidatePathID validates a path identifier
func ValidatePathID(id string) error {
	if id == "" {
		return errors.New("path id cannot be empty")
	}
	if len(id) > MaxPathIDLength {
		return fmt.Errorf("path id exceeds maximum length of %d characters", MaxPathIDLength)
	}
	if !pathIDPattern.MatchString(id) {
		return fmt.Errorf("path id '%s' contains invalid characters", id)
	}
	return nil
}

// formatValidationError converts validator errors to a more user-friendly format
func formatValidationError(err error) error {
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
		case "min":
			return fmt.Errorf("%s: must be at least %s", field, param)
		case "max":
			return fmt.Errorf("%s: must not exceed %s", field, param)
		case "gtefield":
			return fmt.Errorf("%s: must be at least %s", field, param)
		case "oneof":
			return fmt.Errorf("%s: must be one of [%s]", field, param)
		case "url":
			return fmt.Errorf("%s: must be a valid URL", field)
		default:
			return fmt.Errorf("%s: validation failed (%s)", field, e.Tag())
		}
	}

	return err
}
