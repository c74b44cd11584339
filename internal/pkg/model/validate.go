package model

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"storefront/internal/pkg/common/apperr"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

// messages overrides the generated text for a "Struct.Field.tag" triple.
var messages = map[string]string{
	"NewPasswordForm.Password.min":            "Password must be at least 8 characters long",
	"NewPasswordForm.ConfirmPassword.eqfield": "Passwords don't match",
	"SignupForm.Password.min":                 "Password must be at least 8 characters long",
	"SignupForm.ConfirmPassword.eqfield":      "Passwords don't match",
	"SignupForm.MobileNumber.numeric":         "Mobile number must contain only digits",
}

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		// Field() reports the human label when one is declared.
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			if l := f.Tag.Get("label"); l != "" {
				return l
			}
			return f.Name
		})
	})
	return validate
}

// validateStruct runs the validator and converts its errors to an
// apperr.Validation error keyed by Go field name.
func validateStruct(op string, v any) error {
	err := validatorInstance().Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperr.NewUnknown(op, err)
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		if _, seen := fields[fe.StructField()]; seen {
			continue
		}
		fields[fe.StructField()] = fieldMessage(fe)
	}
	return apperr.NewValidation(op, fields)
}

func fieldMessage(fe validator.FieldError) string {
	if m, ok := messages[fe.StructNamespace()+"."+fe.Tag()]; ok {
		return m
	}
	label := fe.Field()
	switch fe.Tag() {
	case "required":
		return label + " is required"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters long", label, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", label, fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at most %s characters long", label, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s", label, fe.Param())
	case "gte", "gt":
		return fmt.Sprintf("%s must be at least %s", label, fe.Param())
	case "lte", "lt":
		return fmt.Sprintf("%s must be at most %s", label, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", label, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "eqfield":
		return fmt.Sprintf("%s must match %s", label, fe.Param())
	case "numeric":
		return label + " must contain only digits"
	default:
		return label + " is invalid"
	}
}

func validationError(op, field, message string) error {
	return apperr.NewValidation(op, map[string]string{field: message})
}
