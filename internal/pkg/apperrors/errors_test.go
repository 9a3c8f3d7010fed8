package apperrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDomainErrorsUnwrapToClass(t *testing.T) {
	tests := []struct {
		err   error
		class error
	}{
		{ErrUserNotFound, ErrResourceNotFound},
		{ErrCourseNotFound, ErrResourceNotFound},
		{ErrEnrollmentNotFound, ErrResourceNotFound},
		{ErrDuplicateUsername, ErrConflict},
		{ErrAlreadyEnrolled, ErrConflict},
		{ErrInvalidStatus, ErrValidationFailed},
		{ErrInvalidRole, ErrValidationFailed},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			wrapped := fmt.Errorf("repository: %w", tt.err)
			assert.ErrorIs(t, wrapped, tt.err)
			assert.ErrorIs(t, wrapped, tt.class)
		})
	}
}

func TestDomainErrorsAreDistinct(t *testing.T) {
	assert.False(t, errors.Is(ErrUserNotFound, ErrCourseNotFound))
	assert.False(t, errors.Is(ErrAlreadyEnrolled, ErrDuplicateUsername))
}

func TestUserMessage(t *testing.T) {
	assert.Equal(t, "course not found", UserMessage(fmt.Errorf("x: %w", ErrCourseNotFound), "fallback"))
	assert.Equal(t, "fallback", UserMessage(errors.New("plain"), "fallback"))
	assert.Equal(t, "title is required", UserMessage(NewValidationError("title is required"), ""))
}
