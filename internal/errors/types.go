// Package errors provides structured error types for the story harness.
//
// Errors carry a type and a stable code so commands and HTTP handlers can
// map them to exit codes and status codes without string matching.
package errors

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrorType represents different categories of errors.
type ErrorType string

const (
	ErrorTypeValidation ErrorType = "validation"
	ErrorTypeConfig     ErrorType = "config"
	ErrorTypeIO         ErrorType = "io"
	ErrorTypeRender     ErrorType = "render"
	ErrorTypeContract   ErrorType = "contract"
	ErrorTypeInternal   ErrorType = "internal"
)

// Common error codes.
const (
	ErrCodeStoryNotFound    = "STORY_NOT_FOUND"
	ErrCodeInvalidStoryName = "INVALID_STORY_NAME"
	ErrCodeDuplicateStory   = "DUPLICATE_STORY"
	ErrCodeStoriesInvalid   = "STORIES_INVALID"
	ErrCodeConfigInvalid    = "CONFIG_INVALID"
	ErrCodeFileNotFound     = "FILE_NOT_FOUND"
	ErrCodeRenderFailed     = "RENDER_FAILED"
	ErrCodeContractMismatch = "CONTRACT_MISMATCH"
	ErrCodeMalformedMarkup  = "MALFORMED_MARKUP"
	ErrCodeInternalError    = "INTERNAL"
)

// HarnessError is a structured error type with context.
type HarnessError struct {
	Type    ErrorType
	Code    string
	Message string
	Cause   error
	Story   string
	Context map[string]interface{}
}

// Error implements the error interface.
func (e *HarnessError) Error() string {
	var parts []string

	if e.Code != "" {
		parts = append(parts, fmt.Sprintf("[%s]", e.Code))
	}

	if e.Story != "" {
		parts = append(parts, "story:"+e.Story)
	}

	parts = append(parts, e.Message)

	result := strings.Join(parts, " ")

	if e.Cause != nil {
		result += fmt.Sprintf(": %v", e.Cause)
	}

	return result
}

// Unwrap returns the underlying cause error.
func (e *HarnessError) Unwrap() error {
	return e.Cause
}

// Is matches another HarnessError with the same type and code.
func (e *HarnessError) Is(target error) bool {
	var t *HarnessError
	if errors.As(target, &t) {
		return e.Type == t.Type && e.Code == t.Code
	}

	return false
}

// WithContext adds context information to the error.
func (e *HarnessError) WithContext(key string, value interface{}) *HarnessError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value

	return e
}

// WithStory attaches the story the error relates to.
func (e *HarnessError) WithStory(story string) *HarnessError {
	e.Story = story

	return e
}

// NewValidationError creates a validation error.
func NewValidationError(code, message string) *HarnessError {
	return &HarnessError{
		Type:    ErrorTypeValidation,
		Code:    code,
		Message: message,
	}
}

// NewConfigError creates a configuration error.
func NewConfigError(code, message string, cause error) *HarnessError {
	return &HarnessError{
		Type:    ErrorTypeConfig,
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// NewIOError creates an I/O error.
func NewIOError(code, message string, cause error) *HarnessError {
	return &HarnessError{
		Type:    ErrorTypeIO,
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// NewRenderError creates a render error.
func NewRenderError(code, message string, cause error) *HarnessError {
	return &HarnessError{
		Type:    ErrorTypeRender,
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// NewContractError creates an error describing rendered output that does not
// match what the props ask for.
func NewContractError(story, message string) *HarnessError {
	return &HarnessError{
		Type:    ErrorTypeContract,
		Code:    ErrCodeContractMismatch,
		Message: message,
		Story:   story,
	}
}

// NewInternalError creates an internal error.
func NewInternalError(message string, cause error) *HarnessError {
	return &HarnessError{
		Type:    ErrorTypeInternal,
		Code:    ErrCodeInternalError,
		Message: message,
		Cause:   cause,
	}
}

func hasType(err error, t ErrorType) bool {
	var he *HarnessError
	if errors.As(err, &he) {
		return he.Type == t
	}

	return false
}

// IsValidation checks if an error is a validation error.
func IsValidation(err error) bool {
	return hasType(err, ErrorTypeValidation)
}

// IsContract checks if an error is a contract mismatch.
func IsContract(err error) bool {
	return hasType(err, ErrorTypeContract)
}

// IsNotFound checks if an error reports a missing story.
func IsNotFound(err error) bool {
	var he *HarnessError
	if errors.As(err, &he) {
		return he.Code == ErrCodeStoryNotFound
	}

	return false
}

// ErrStoryNotFound creates a story not found error.
func ErrStoryNotFound(name string) *HarnessError {
	return NewValidationError(ErrCodeStoryNotFound, "story not found: "+name).WithStory(name)
}

// ErrInvalidStoryName creates an invalid story name error.
func ErrInvalidStoryName(name, reason string) *HarnessError {
	return NewValidationError(ErrCodeInvalidStoryName, reason).WithContext("name", name)
}

// Logger is the subset of the structured logger used by ErrorHandler.
type Logger interface {
	Error(ctx context.Context, err error, msg string, fields ...interface{})
	Warn(ctx context.Context, err error, msg string, fields ...interface{})
}

// ErrorHandler logs errors at a level chosen from their type.
type ErrorHandler struct {
	logger Logger
}

// NewErrorHandler creates a new error handler.
func NewErrorHandler(logger Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

// Handle logs err. Validation and contract failures are warnings, the rest
// are errors.
func (h *ErrorHandler) Handle(ctx context.Context, err error) {
	if err == nil || h.logger == nil {
		return
	}

	var he *HarnessError
	if !errors.As(err, &he) {
		h.logger.Error(ctx, err, "Unhandled error occurred")
		return
	}

	switch he.Type {
	case ErrorTypeValidation, ErrorTypeContract:
		h.logger.Warn(ctx, err, "Story check failed",
			"type", he.Type,
			"code", he.Code,
			"story", he.Story)
	default:
		h.logger.Error(ctx, err, "Error occurred",
			"type", he.Type,
			"code", he.Code,
			"story", he.Story)
	}
}
