package errors

import (
	"fmt"
	"github.com/stretchr/testify/assert"
	"testing"
)

func TestMapParam(t *testing.T) {
	params := map[string]string{"card[address_zip]": "billing-postal-code"}

	err := MapParam(params, "card[address_zip]", "Your postal code is incorrect.")
	fieldErr, ok := AsFieldError(err)
	assert.True(t, ok)
	assert.Equal(t, "billing-postal-code", fieldErr.Field)
	assert.Equal(t, "Your postal code is incorrect.", fieldErr.Msg)

	err = MapParam(params, "card[address_state]", "Unsupported state.")
	assert.False(t, IsFieldError(err))
	assert.True(t, IsGenericError(err))
	assert.Equal(t, "Unsupported state.", err.Error())
}

func TestAsHelpersUnwrap(t *testing.T) {
	wrapped := fmt.Errorf("tokenize: %w", &ProcessorError{Param: "currency", Msg: "Invalid currency"})

	pe, ok := AsProcessorError(wrapped)
	assert.True(t, ok)
	assert.Equal(t, "currency", pe.Param)
	assert.Equal(t, "currency: Invalid currency", pe.Error())

	be, ok := AsBackendError(fmt.Errorf("submit: %w", &BackendError{StatusCode: 422, Msg: "bad"}))
	assert.True(t, ok)
	assert.Equal(t, 422, be.StatusCode)
}
