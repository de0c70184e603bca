package utils

import (
	"errors"
	"fmt"
	"math/rand"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/ttacon/libphonenumber"
)

// PhoneRegion is the default region used to parse local phone numbers.
func PhoneRegion() string {
	if v := strings.TrimSpace(os.Getenv("PHONE_REGION")); v != "" {
		return strings.ToUpper(v)
	}
	return "KE"
}

func ValidatePhoneNumber(phoneNumber, countryCode string) error {
	p, err := libphonenumber.Parse(phoneNumber, countryCode)
	if err != nil {
		return err
	}

	if !libphonenumber.IsValidNumber(p) {
		return fmt.Errorf("phone number is not valid")
	}

	return nil
}

// FormatPhoneNumber returns the E164 form of a valid phone number.
func FormatPhoneNumber(phoneNumber, countryCode string) (string, error) {
	p, err := libphonenumber.Parse(phoneNumber, countryCode)
	if err != nil {
		return "", err
	}
	if !libphonenumber.IsValidNumber(p) {
		return "", fmt.Errorf("phone number is not valid")
	}
	return libphonenumber.Format(p, libphonenumber.E164), nil
}

func GenerateUniqueFilename() string {
	return fmt.Sprintf("%d_%d", time.Now().UnixNano(), rand.Intn(1000))
}

func ProcessValidationErrors(err error) map[string]string {
	errorResponse := make(map[string]string)

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		errorResponse["_"] = err.Error()
		return errorResponse
	}
	for _, ve := range validationErrors {
		errorResponse[ve.Field()] = ve.Tag()
	}

	return errorResponse
}

func UniqueSlice[T comparable](slice []T) []T {
	seen := make(map[T]bool, len(slice))
	result := make([]T, 0, len(slice))
	for _, v := range slice {
		if !seen[v] {
			seen[v] = true
			result = append(result, v)
		}
	}
	return result
}

func DereferencePtr[T any](ptr *T, defaults ...T) T {
	if ptr != nil {
		return *ptr
	}
	var zero T
	if len(defaults) > 0 {
		return defaults[0]
	}
	return zero
}
