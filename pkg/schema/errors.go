package schema

import "fmt"

// Error codes for structured error reporting.
const (
	ErrCodeValidation = "VALIDATION_ERROR"
	ErrCodeExecution  = "EXECUTION_ERROR"
	ErrCodeNotFound   = "NOT_FOUND"
	ErrCodeConflict   = "CONFLICT"
	ErrCodeStore      = "STORE_ERROR"
	ErrCodeConfig     = "CONFIG_ERROR"
	ErrCodeRender     = "RENDER_ERROR"
)

// FlowmapError is the structured error type for all flowmap operations.
// Parse diagnostics are never FlowmapErrors; this type is reserved for
// infrastructure failures (store, expression compilation, config, rendering).
type FlowmapError struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
	Cause   error          `json:"-"`
}

func (e *FlowmapError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *FlowmapError) Unwrap() error {
	return e.Cause
}

// NewError creates a new FlowmapError.
func NewError(code, message string) *FlowmapError {
	return &FlowmapError{Code: code, Message: message}
}

// NewErrorf creates a new FlowmapError with a formatted message.
func NewErrorf(code, format string, args ...any) *FlowmapError {
	return &FlowmapError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// WithCause attaches an underlying cause.
func (e *FlowmapError) WithCause(err error) *FlowmapError {
	e.Cause = err
	return e
}

// WithDetails attaches key-value details.
func (e *FlowmapError) WithDetails(details map[string]any) *FlowmapError {
	e.Details = details
	return e
}
