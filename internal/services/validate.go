package services

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("strongpassword", func(fl validator.FieldLevel) bool {
		var upper, lower, digit, special bool
		for _, r := range fl.Field().String() {
			switch {
			case unicode.IsUpper(r):
				upper = true
			case unicode.IsLower(r):
				lower = true
			case unicode.IsDigit(r):
				digit = true
			default:
				special = true
			}
		}
		return upper && lower && digit && special
	})
	return v
}

// validateStruct reports the first failing field as InvalidInput.
func validateStruct(value interface{}) error {
	err := validate.Struct(value)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return ErrInvalidInput("Invalid input")
	}
	fe := verrs[0]
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return ErrInvalidInput(field + " is required")
	case "min":
		return ErrInvalidInput(fmt.Sprintf("%s must be at least %s characters", field, fe.Param()))
	case "max":
		return ErrInvalidInput(fmt.Sprintf("%s must not exceed %s characters", field, fe.Param()))
	case "email":
		return ErrInvalidInput("Invalid email format")
	case "oneof":
		return ErrInvalidInput(fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(fe.Param(), " ", ", ")))
	case "strongpassword":
		return ErrInvalidInput("Password must contain an uppercase letter, a lowercase letter, a number and a special character")
	}
	return ErrInvalidInput("Invalid " + field)
}
