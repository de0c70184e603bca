package models

import (
	"regexp"
	"strings"

	"github.com/evanbosire/Eurodoor-Backend/utils"
)

var paymentCodePattern = regexp.MustCompile(`^[A-Z0-9]{10}$`)

func countDigits(code string) int {
	n := 0
	for _, r := range code {
		if r >= '0' && r <= '9' {
			n++
		}
	}
	return n
}

// ValidateSupplierPaymentCode accepts exactly 10 characters of [A-Z0-9] made of 2 digits and 8 letters.
func ValidateSupplierPaymentCode(code string) error {
	if !paymentCodePattern.MatchString(code) || countDigits(code) != 2 {
		return utils.InvalidInput("InvalidPaymentCode: payment code must be exactly 10 characters with 2 digits and 8 uppercase letters")
	}
	return nil
}

// ValidateCustomerPaymentCode accepts 10 characters of [A-Z0-9] with at least 2 digits.
// It is used for order checkout and service bookings.
func ValidateCustomerPaymentCode(code string) error {
	if !paymentCodePattern.MatchString(code) || countDigits(code) < 2 {
		return utils.InvalidInput("InvalidPaymentCode: payment code must be 10 characters long, uppercase letters and at least 2 digits (e.g. MPE1JF2CTD)")
	}
	return nil
}

func normalizePaymentCode(code string) string {
	return strings.TrimSpace(code)
}
