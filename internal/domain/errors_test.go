package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestValidationError covers message formatting for single and multiple
// failures plus the accumulation helpers.
func TestValidationError(t *testing.T) {
	verr := NewValidationError("collection")
	assert.False(t, verr.HasErrors())

	verr.AddError("groups[0].ratings[1]: name is required")
	assert.True(t, verr.HasErrors())
	assert.Equal(t,
		"validation error for collection: groups[0].ratings[1]: name is required",
		verr.Error())

	verr.AddError("groups[2].ratings[0]: name is required")
	assert.Contains(t, verr.Error(), "validation errors for collection")
}
