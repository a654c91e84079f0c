package validate

import (
	"strings"

	"github.com/go-playground/validator/v10"

	pkgerrors "github.com/ogp-platform/proforma-backend/pkg/errors"
)

var instance = validator.New(validator.WithRequiredStructEnabled())

// Struct validates tagged ingress payloads and maps failures onto the
// platform validation error code.
func Struct(value any) error {
	err := instance.Struct(value)
	if err == nil {
		return nil
	}

	var fieldErrors validator.ValidationErrors
	if ok := errorsAs(err, &fieldErrors); !ok {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payload")
	}

	details := make([]string, 0, len(fieldErrors))
	for _, fieldError := range fieldErrors {
		details = append(details, describe(fieldError))
	}
	return pkgerrors.New(pkgerrors.CodeValidation, "invalid payload").WithDetails(details)
}

func describe(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email"
	case "min":
		return field + " must be at least " + fe.Param()
	case "max":
		return field + " must be at most " + fe.Param()
	case "gte":
		return field + " must be >= " + fe.Param()
	default:
		return field + " failed " + fe.Tag() + " validation"
	}
}

func errorsAs(err error, target *validator.ValidationErrors) bool {
	typed, ok := err.(validator.ValidationErrors)
	if !ok {
		return false
	}
	*target = typed
	return true
}
