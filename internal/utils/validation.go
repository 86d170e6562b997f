// internal/utils/validation.go
package utils

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
)

var (
	// validate is a singleton validator instance
	validate *validator.Validate
)

// InitValidator initializes the validator with custom validations
func InitValidator() {
	// Create a new validator instance
	validate = validator.New()

	// Report query parameter names instead of struct field names
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("query"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// Register custom validations
	registerCustomValidations(validate)

	log.Info().Msg("Validator initialized")
}

// GetValidator returns the singleton validator instance, creating it on
// first use when InitValidator was never called (tests, the loader).
func GetValidator() *validator.Validate {
	if validate == nil {
		InitValidator()
	}
	return validate
}

// DecodeQuery copies URL query parameters into the string fields of the
// struct pointed to by v, matching each field's `query` tag. Absent
// parameters leave the field empty.
func DecodeQuery(r *http.Request, v interface{}) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Ptr || rv.Elem().Kind() != reflect.Struct {
		return NewInternalServerError(fmt.Errorf("DecodeQuery needs a struct pointer, got %T", v))
	}

	values := r.URL.Query()
	elem := rv.Elem()
	typ := elem.Type()

	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)
		name := strings.SplitN(field.Tag.Get("query"), ",", 2)[0]
		if name == "" || name == "-" {
			continue
		}

		fieldVal := elem.Field(i)
		if !fieldVal.CanSet() || fieldVal.Kind() != reflect.String {
			continue
		}

		fieldVal.SetString(values.Get(name))
	}

	return nil
}

// ValidateStruct validates a struct using the validator. The first failing
// parameter decides the error: a missing required one yields the
// "... query parameter is required" message, anything else a validation error.
func ValidateStruct(v interface{}) error {
	err := GetValidator().Struct(v)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) && len(validationErrors) > 0 {
		e := validationErrors[0]
		if e.Tag() == "required" {
			return NewMissingParameterError(e.Field())
		}
		return NewValidationError(e.Field(), getErrorMessage(e))
	}

	// Handle other validation errors
	return NewBadRequestError(err.Error())
}

// DecodeAndValidate decodes the query string into v and validates it
func DecodeAndValidate(r *http.Request, v interface{}) error {
	if err := DecodeQuery(r, v); err != nil {
		return err
	}
	return ValidateStruct(v)
}

// getErrorMessage returns a user-friendly error message for a validation error
func getErrorMessage(e validator.FieldError) string {
	label := e.Field()
	if label != "" {
		label = strings.ToUpper(label[:1]) + label[1:]
	}

	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s query parameter is required", label)
	case "calendar_year":
		return fmt.Sprintf("%s query parameter must be a four-digit year", label)
	case "max":
		return fmt.Sprintf("%s query parameter must be at most %s characters long", label, e.Param())
	case "numeric":
		return fmt.Sprintf("%s query parameter must be numeric", label)
	default:
		return fmt.Sprintf("%s query parameter failed validation on the '%s' tag", label, e.Tag())
	}
}

// registerCustomValidations adds custom validation functions to the validator
func registerCustomValidations(v *validator.Validate) {
	if err := v.RegisterValidation("calendar_year", validateCalendarYear); err != nil {
		log.Error().Err(err).Msg("Failed to register calendar_year validation")
	}
}

// validateCalendarYear accepts exactly four ASCII digits, the shape of the
// year component of a stored 'YYYY-MM-DD' date.
func validateCalendarYear(fl validator.FieldLevel) bool {
	year := fl.Field().String()
	if len(year) != 4 {
		return false
	}
	for i := 0; i < len(year); i++ {
		if year[i] < '0' || year[i] > '9' {
			return false
		}
	}
	return true
}
