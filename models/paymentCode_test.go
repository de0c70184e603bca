package models

import (
	"testing"

	"github.com/evanbosire/Eurodoor-Backend/utils"
	"github.com/stretchr/testify/assert"
)

func TestValidateSupplierPaymentCode(t *testing.T) {
	assert.NoError(t, ValidateSupplierPaymentCode("A2B3CDEFGH"))
	assert.NoError(t, ValidateSupplierPaymentCode("12ABCDEFGH"))

	for _, code := range []string{
		"AB12",        // too short
		"1234567890",  // no letters
		"abcDEFGH12",  // lowercase
		"A2B3C4DEFG",  // three digits
		"ABCDEFGHIJ",  // no digits
		"A2B3CDEFGH1", // too long
		"short",
	} {
		err := ValidateSupplierPaymentCode(code)
		assert.ErrorIsf(t, err, utils.ErrInvalidInput, "code %q", code)
	}
}

func TestValidateCustomerPaymentCode(t *testing.T) {
	assert.NoError(t, ValidateCustomerPaymentCode("MPE1JF2CTD"))
	assert.NoError(t, ValidateCustomerPaymentCode("A2B3C4DEFG"))
	assert.NoError(t, ValidateCustomerPaymentCode("1234567890"))

	for _, code := range []string{"MPEJFXCTDA", "MPE1JFCTDA", "mpe1jf2ctd", "MPE1JF2CT"} {
		assert.ErrorIsf(t, ValidateCustomerPaymentCode(code), utils.ErrInvalidInput, "code %q", code)
	}
}

func TestNormalizePaymentCode(t *testing.T) {
	assert.Equal(t, "A2B3CDEFGH", normalizePaymentCode("  A2B3CDEFGH\n"))
}
