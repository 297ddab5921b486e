package errs

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppErrorWrapsSentinel(t *testing.T) {
	err := fmt.Errorf("approve: %w", InvalidTransition("draft", "approve"))

	assert.True(t, IsInvalidTransition(err))
	assert.False(t, IsConflict(err))
	assert.Equal(t, "INVALID_TRANSITION", Code(err))
	assert.Contains(t, err.Error(), "cannot approve a project in status draft")
}

func TestCodeDefaultsToInternal(t *testing.T) {
	assert.Equal(t, "INTERNAL_ERROR", Code(errors.New("boom")))
	assert.Equal(t, "NOT_FOUND", Code(NotFound("project")))
}
