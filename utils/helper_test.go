package utils

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUniqueSlice(t *testing.T) {
	assert.Equal(t, []int{3, 1, 2}, UniqueSlice([]int{3, 1, 3, 2, 1}))
	assert.Empty(t, UniqueSlice([]string{}))
}

func TestDereferencePtr(t *testing.T) {
	v := 4
	assert.Equal(t, 4, DereferencePtr(&v))
	assert.Equal(t, 0, DereferencePtr[int](nil))
	assert.Equal(t, "n/a", DereferencePtr[string](nil, "n/a"))
}

type sampleInput struct {
	Email    string `validate:"required,email"`
	Quantity int    `validate:"gt=0"`
}

func TestProcessValidationErrors(t *testing.T) {
	err := Validator().Struct(sampleInput{Email: "nope", Quantity: 0})
	require.Error(t, err)
	fields := ProcessValidationErrors(err)
	assert.Equal(t, map[string]string{"Email": "email", "Quantity": "gt"}, fields)

	assert.Equal(t, map[string]string{"_": "bad json"}, ProcessValidationErrors(errors.New("bad json")))
}

func TestValidateInput(t *testing.T) {
	assert.NoError(t, ValidateInput(&sampleInput{Email: "tech@eurodoor.co.ke", Quantity: 2}))

	err := ValidateInput(&sampleInput{})
	require.ErrorIs(t, err, ErrInvalidInput)
	assert.Equal(t, "invalid input: Email required, Quantity gt", err.Error())
}
