package serrors

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// ProcessValidatorErrors converts validator failures into typed field
// errors keyed by struct field name. localeKey may return an empty
// string when a field has no translatable message.
func ProcessValidatorErrors(errs validator.ValidationErrors, localeKey func(field string) string) ValidationErrors {
	out := make(ValidationErrors, len(errs))
	for _, fe := range errs {
		field := fe.Field()
		switch fe.Tag() {
		case "required":
			out[field] = NewFieldRequiredError(field, localeKey(field))
		case "email":
			out[field] = NewValidationError(field, fmt.Sprintf("%s must be a valid email address", field))
		default:
			out[field] = NewValidationError(field, fmt.Sprintf("%s is invalid", field))
		}
	}
	return out
}
