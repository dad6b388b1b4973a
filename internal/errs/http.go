// Package errs defines the error types returned to API clients.
//
// Every error body has the same envelope as the success responses
// (`success: false` plus a `message`), optionally with a machine readable
// code and a list of field-level validation failures.
package errs

import "strings"

// FieldError is one failing field of a request.
//
//	{ "field": "email", "code": "email", "error": "must be a valid email address" }
type FieldError struct {
	// Field is the JSON name (or path, e.g. "promptExamples[1]") of the field.
	Field string `json:"field"`

	// Code is the rule that failed: required, email, invalid_type, ...
	Code string `json:"code"`

	// Error is the human-readable reason.
	Error string `json:"error"`
}

// HTTPError is the error type handlers and services return when the client
// should see a specific status and message.
type HTTPError struct {
	Code    string       `json:"code,omitempty"`
	Message string       `json:"message"`
	Status  int          `json:"-"`
	Errors  []FieldError `json:"errors,omitempty"`
}

// ErrorResponse is the JSON body written for an HTTPError.
type ErrorResponse struct {
	Success bool         `json:"success"`
	Code    string       `json:"code,omitempty"`
	Message string       `json:"message"`
	Errors  []FieldError `json:"errors,omitempty"`
}

func (e *HTTPError) Error() string {
	return e.Message
}

// Is reports whether target is also an *HTTPError, regardless of its fields.
func (e *HTTPError) Is(target error) bool {
	_, ok := target.(*HTTPError)
	return ok
}

// WithMessage returns a copy of e with Message replaced.
func (e *HTTPError) WithMessage(message string) *HTTPError {
	return &HTTPError{
		Code:    e.Code,
		Message: message,
		Status:  e.Status,
		Errors:  e.Errors,
	}
}

// Response converts e into the body sent to the client.
func (e *HTTPError) Response() ErrorResponse {
	return ErrorResponse{
		Success: false,
		Code:    e.Code,
		Message: e.Message,
		Errors:  e.Errors,
	}
}

// MakeUpperCaseWithUnderscores turns "Bad Request" into "BAD_REQUEST".
func MakeUpperCaseWithUnderscores(str string) string {
	return strings.ToUpper(strings.ReplaceAll(str, " ", "_"))
}
