package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusCode(t *testing.T) {
	tests := []struct {
		name     string
		err      *AppError
		expected int
	}{
		{"Validation", NewValidationError("bad"), http.StatusBadRequest},
		{"RecipeNotFound", NewRecipeNotFoundError(1, 2), http.StatusNotFound},
		{"EntryNotFound", NewEntryNotFoundError(1, 2), http.StatusNotFound},
		{"Storage", NewStorageError("insert entry", stderrors.New("disk full")), http.StatusInternalServerError},
		{"ExternalService", NewExternalServiceError("search", nil), http.StatusBadGateway},
		{"RateLimited", NewTooManyRequestsError(), http.StatusTooManyRequests},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.StatusCode())
		})
	}
}

func TestClassification(t *testing.T) {
	t.Run("WrappedAppError_ShouldStillClassify", func(t *testing.T) {
		err := fmt.Errorf("handler: %w", NewEntryNotFoundError(1, 5))

		assert.True(t, IsNotFound(err))
		assert.False(t, IsValidation(err))
		assert.Equal(t, CodeEntryNotFound, GetCode(err))
	})

	t.Run("PlainError_ShouldBeInternal", func(t *testing.T) {
		err := stderrors.New("boom")

		assert.False(t, IsNotFound(err))
		assert.Equal(t, CodeInternal, GetCode(err))
		assert.Equal(t, CodeInternal, Wrap(err, "unexpected").Code)
	})

	t.Run("StorageError_ShouldCarryOpAndCause", func(t *testing.T) {
		cause := stderrors.New("connection refused")

		err := NewStorageError("delete meal plan entry", cause)

		assert.True(t, IsStorage(err))
		assert.Equal(t, "delete meal plan entry", err.Op)
		assert.ErrorIs(t, err, cause)
		assert.Contains(t, err.Error(), "connection refused")
		assert.False(t, err.IsClientError())
	})

	t.Run("WithOp_ShouldNestExistingTag", func(t *testing.T) {
		err := NewStorageError("insert meal plan entry", nil).WithOp("add meal")

		assert.Equal(t, "add meal: insert meal plan entry", err.Op)
		assert.True(t, strings.HasPrefix(err.Error(), "add meal: insert meal plan entry: "))
	})

	t.Run("WithOp_ShouldNotRepeatOuterTag", func(t *testing.T) {
		err := NewStorageError("insert meal plan entry", nil).
			WithOp("insert meal plan entry").
			WithOp("add meal").
			WithOp("add meal")

		assert.Equal(t, "add meal: insert meal plan entry", err.Op)
	})
}

func TestToErrorResponse(t *testing.T) {
	resp := ToErrorResponse(NewValidationError("newServings must be at least 1"), "req-1")

	require.Equal(t, CodeValidationFailed, resp.Error.Code)
	assert.Equal(t, "req-1", resp.Error.RequestID)
	assert.Equal(t, "newServings must be at least 1", resp.Error.Details)
	assert.NotEmpty(t, resp.Error.Timestamp)
}
