package service

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return v
}

// validateStruct returns an invalid_input error describing the first failed rule.
func validateStruct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) || len(validationErrors) == 0 {
		return internalError(fmt.Errorf("validate %T: %w", s, err))
	}

	first := validationErrors[0]
	field := first.Field()

	switch first.Tag() {
	case "required":
		return invalidInput(fmt.Sprintf("field '%s' is required", field))
	case "email":
		return invalidInput(fmt.Sprintf("field '%s' must be a valid email address", field))
	case "max":
		return invalidInput(fmt.Sprintf("field '%s' must be at most %s characters long", field, first.Param()))
	default:
		return invalidInput(fmt.Sprintf("field '%s' is invalid", field))
	}
}
