package errs

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMakeUpperCaseWithUnderscores(t *testing.T) {
	assert.Equal(t, "BAD_REQUEST", MakeUpperCaseWithUnderscores("Bad Request"))
	assert.Equal(t, "INTERNAL_SERVER_ERROR", MakeUpperCaseWithUnderscores(http.StatusText(http.StatusInternalServerError)))
}

func TestHTTPErrorMatchesWrapped(t *testing.T) {
	err := fmt.Errorf("creating topic: %w", NewNotFoundError("Category not found", nil))

	var httpErr *HTTPError
	assert.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusNotFound, httpErr.Status)
	assert.Equal(t, "NOT_FOUND", httpErr.Code)
	assert.True(t, errors.Is(err, &HTTPError{}))
}

func TestWithMessageCopies(t *testing.T) {
	base := NewInternalServerError()
	custom := base.WithMessage("Failed to submit contact form")

	assert.Equal(t, "Internal Server Error", base.Message)
	assert.Equal(t, "Failed to submit contact form", custom.Message)
	assert.Equal(t, http.StatusInternalServerError, custom.Status)
}

func TestValidationErrorResponse(t *testing.T) {
	fields := []FieldError{{Field: "email", Code: "required", Error: "is required"}}

	resp := ValidationError(fields).Response()

	assert.False(t, resp.Success)
	assert.Equal(t, ValidationMessage, resp.Message)
	assert.Equal(t, "VALIDATION_ERROR", resp.Code)
	assert.Equal(t, fields, resp.Errors)
}
