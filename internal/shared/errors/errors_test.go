package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWithReason_DoesNotMutateOriginal(t *testing.T) {
	base := NewValidationError("amount too small")
	withReason := base.WithReason("amount_below_minimum")

	assert.Empty(t, base.Reason)
	assert.Equal(t, "amount_below_minimum", withReason.Reason)
	assert.Equal(t, http.StatusBadRequest, withReason.Code)
	assert.Contains(t, withReason.Error(), "[amount_below_minimum]")
}

func TestReasonOf_Wrapped(t *testing.T) {
	err := fmt.Errorf("failed to create checkout: %w",
		NewConfigurationError("gateway missing").WithReason("payment_gateway_not_configured"))

	assert.Equal(t, "payment_gateway_not_configured", ReasonOf(err))
	assert.True(t, IsConfigurationError(err))
	assert.Equal(t, "", ReasonOf(fmt.Errorf("plain")))
}

func TestErrorCodes(t *testing.T) {
	assert.Equal(t, http.StatusBadGateway, NewProviderError("x").Code)
	assert.Equal(t, http.StatusInternalServerError, NewIntegrityError("x").Code)
	assert.Equal(t, http.StatusConflict, NewConflictError("x").Code)
}

func TestIsDuplicateError(t *testing.T) {
	assert.True(t, IsDuplicateError(fmt.Errorf("Error 1062: Duplicate entry 'a' for key 'b'")))
	assert.True(t, IsDuplicateError(fmt.Errorf("UNIQUE constraint failed: payment_intents.open_key")))
	assert.True(t, IsDuplicateError(fmt.Errorf("ERROR: duplicate key value violates unique constraint")))
	assert.False(t, IsDuplicateError(fmt.Errorf("connection refused")))
	assert.False(t, IsDuplicateError(nil))
}
