package services

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var inputValidator = newInputValidator()

func newInputValidator() *validator.Validate {
	validate := validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return field.Name
		}
		return name
	})
	_ = validate.RegisterValidation("finite", finiteNumber)
	return validate
}

// finiteNumber rejects NaN and infinities, which compare false against any
// range bound.
func finiteNumber(field validator.FieldLevel) bool {
	switch field.Field().Kind() {
	case reflect.Float32, reflect.Float64:
		value := field.Field().Float()
		return !math.IsNaN(value) && !math.IsInf(value, 0)
	default:
		return true
	}
}

// Validate checks input against its `validate` tags and returns a
// *ValidationError with one message per failing field.
func Validate(input any) error {
	err := inputValidator.Struct(input)
	if err == nil {
		return nil
	}

	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		return err
	}

	result := &ValidationError{}
	for _, fieldError := range fieldErrors {
		result.add(fieldError.Field(), validationMessage(fieldError))
	}
	return result
}

func validationMessage(fieldError validator.FieldError) string {
	switch fieldError.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		if fieldError.Kind() == reflect.String {
			return fmt.Sprintf("must be at least %s characters", fieldError.Param())
		}
		return fmt.Sprintf("must be at least %s", fieldError.Param())
	case "max":
		if fieldError.Kind() == reflect.String {
			return fmt.Sprintf("must be at most %s characters", fieldError.Param())
		}
		return fmt.Sprintf("must be at most %s", fieldError.Param())
	case "gte":
		return fmt.Sprintf("must be greater than or equal to %s", fieldError.Param())
	case "lte":
		return fmt.Sprintf("must be less than or equal to %s", fieldError.Param())
	case "finite":
		return "must be a number"
	case "oneof":
		return "must be one of: " + strings.Join(strings.Fields(fieldError.Param()), ", ")
	default:
		return "is invalid"
	}
}
