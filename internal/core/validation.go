package core

// validation.go checks create/update payloads before they reach a store.
//
// Struct rules live in `validate` tags and are enforced by
// go-playground/validator. Two domain rules are registered on top of the
// built-in tags:
//
//   - phone:   10 or 11 digit Brazilian phone number
//   - cpfcnpj: CPF or CNPJ with valid check digits
//
// Failures are returned as ValidationErrors keyed by JSON field name.

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/JonMunkholm/useradmin/internal/document"
)

// ValidationError represents a single validation error for a field.
type ValidationError struct {
	Field   string `json:"field"`
	Value   string `json:"value,omitempty"`
	Message string `json:"message"`
}

func (e ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return e.Message
}

// ValidationErrors is every problem found in one payload.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	parts := make([]string, len(e))
	for i, ve := range e {
		parts[i] = ve.Error()
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

// payloadValidator returns the shared validator with domain rules registered.
func payloadValidator() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())

		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})

		_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
			return document.IsValidPhone(fl.Field().String())
		})
		_ = v.RegisterValidation("cpfcnpj", func(fl validator.FieldLevel) bool {
			return document.IsValid(fl.Field().String())
		})

		validate = v
	})
	return validate
}

// ValidateStruct runs the tag rules on s and converts failures to
// ValidationErrors.
func ValidateStruct(s any) error {
	err := payloadValidator().Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	out := make(ValidationErrors, len(fieldErrs))
	for i, fe := range fieldErrs {
		out[i] = ValidationError{
			Field:   fe.Field(),
			Value:   fmt.Sprint(fe.Value()),
			Message: fieldMessage(fe),
		}
	}
	return out
}

// IsValidEmail reports whether s is a syntactically valid address.
func IsValidEmail(s string) bool {
	return payloadValidator().Var(s, "required,email") == nil
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "required field is empty"
	case "email":
		return "must be a valid email address"
	case "phone":
		return "must be a 10 or 11 digit phone number"
	case "cpfcnpj":
		return "invalid cpf_cnpj check digits"
	case "oneof":
		return "invalid enum value, allowed: " + fe.Param()
	case "min":
		return "must not be empty"
	}
	return "invalid value"
}
