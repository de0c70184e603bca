package utils

import (
	"sort"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// Validator returns the shared struct validator with the project's custom tags registered.
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
		_ = validate.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
			v := strings.TrimSpace(fl.Field().String())
			if v == "" {
				return true
			}
			return ValidatePhoneNumber(v, PhoneRegion()) == nil
		})
	})
	return validate
}

// ValidateInput runs struct tag validation and reports failures as InvalidInput.
func ValidateInput(input any) error {
	if err := Validator().Struct(input); err != nil {
		fields := ProcessValidationErrors(err)
		parts := make([]string, 0, len(fields))
		for field, tag := range fields {
			parts = append(parts, field+" "+tag)
		}
		sort.Strings(parts)
		return InvalidInput("invalid input: %s", strings.Join(parts, ", "))
	}
	return nil
}
