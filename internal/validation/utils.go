package validation

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/statloop/fplsync/internal/errs"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

var validate = validator.New()

// Validatable is implemented by request payload types that know how to
// validate themselves. Typical pattern: a struct with validator tags plus a
// Validate method that calls Struct.
type Validatable interface {
	Validate() error
}

// Struct runs tag validation over v. Request types call this from their
// Validate method.
func Struct(v any) error {
	return validate.Struct(v)
}

// BindAndValidate binds request data (path params, query, body) into payload
// and validates it. Bind requires payload to be a pointer. Failures come back
// as a 400 HTTPError carrying a flattened field message.
func BindAndValidate(c echo.Context, payload Validatable) error {
	if err := c.Bind(payload); err != nil {
		return errs.NewBadRequestError("malformed request payload")
	}

	if err := payload.Validate(); err != nil {
		return errs.NewBadRequestError(flattenValidationError(err))
	}

	return nil
}

// flattenValidationError converts validator failures into one readable
// message, e.g. "validation failed: event_id must be at least 1".
func flattenValidationError(err error) string {
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return "validation failed"
	}

	parts := make([]string, 0, len(validationErrors))
	for _, fieldErr := range validationErrors {
		field := strings.ToLower(fieldErr.Field())

		var msg string
		switch fieldErr.Tag() {
		case "required":
			msg = "is required"
		case "min":
			if fieldErr.Type().Kind() == reflect.String {
				msg = fmt.Sprintf("must be at least %s characters", fieldErr.Param())
			} else {
				msg = fmt.Sprintf("must be at least %s", fieldErr.Param())
			}
		case "max":
			if fieldErr.Type().Kind() == reflect.String {
				msg = fmt.Sprintf("must not exceed %s characters", fieldErr.Param())
			} else {
				msg = fmt.Sprintf("must not exceed %s", fieldErr.Param())
			}
		case "oneof":
			msg = fmt.Sprintf("must be one of: %s", fieldErr.Param())
		default:
			if fieldErr.Param() != "" {
				msg = fmt.Sprintf("failed %s:%s", fieldErr.Tag(), fieldErr.Param())
			} else {
				msg = fmt.Sprintf("failed %s", fieldErr.Tag())
			}
		}

		parts = append(parts, field+" "+msg)
	}

	return "validation failed: " + strings.Join(parts, "; ")
}
