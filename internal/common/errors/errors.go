// Package errors provides the structured error taxonomy shared by the
// recommendation pipeline and its HTTP surface.
package errors

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeInvalidRequest ErrorCode = "INVALID_REQUEST"

	ErrCodeDataStoreUnavailable ErrorCode = "DATA_STORE_UNAVAILABLE"
	ErrCodeDataStoreTimeout     ErrorCode = "DATA_STORE_TIMEOUT"

	ErrCodeLLMTimeout          ErrorCode = "LLM_TIMEOUT"
	ErrCodeLLMGenerationFailed ErrorCode = "LLM_GENERATION_FAILED"

	ErrCodeInteractionLogFailed ErrorCode = "INTERACTION_LOG_FAILED"
	ErrCodeVocabularyInvalid    ErrorCode = "VOCABULARY_INVALID"
	ErrCodeAlertPublishFailed   ErrorCode = "ALERT_PUBLISH_FAILED"

	ErrCodeExternalService ErrorCode = "EXTERNAL_SERVICE_ERROR"
	ErrCodeTimeout         ErrorCode = "TIMEOUT_ERROR"
	ErrCodeInternal        ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`

	cause error
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// Unwrap exposes the underlying cause, if one was recorded.
func (e *StandardError) Unwrap() error {
	return e.cause
}

// WithMetadata returns e after attaching a metadata key.
func (e *StandardError) WithMetadata(key string, value interface{}) *StandardError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

func newError(code ErrorCode, message, details string, retryable bool, cause error) *StandardError {
	return &StandardError{
		Code:      code,
		Message:   message,
		Details:   details,
		Retryable: retryable,
		Timestamp: time.Now().UTC(),
		cause:     cause,
	}
}

// ==========================
// 2. Error Constructors
// ==========================

// NewInvalidRequestError creates a non-retryable input error.
func NewInvalidRequestError(details string) *StandardError {
	return newError(ErrCodeInvalidRequest, "Invalid request", details, false, nil)
}

// NewDataStoreUnavailableError creates a retryable data store error.
func NewDataStoreUnavailableError(operation string, err error) *StandardError {
	return newError(ErrCodeDataStoreUnavailable, "Data store unavailable",
		fmt.Sprintf("operation: %s, error: %s", operation, err.Error()), true, err)
}

// NewDataStoreTimeoutError creates a retryable data store timeout error.
func NewDataStoreTimeoutError(operation string) *StandardError {
	return newError(ErrCodeDataStoreTimeout, "Data store timeout",
		fmt.Sprintf("operation: %s", operation), true, context.DeadlineExceeded)
}

// NewLLMTimeoutError creates an LLM timeout error. Generation is not idempotent,
// so callers must not retry it blindly.
func NewLLMTimeoutError(err error) *StandardError {
	details := "LLM call exceeded timeout"
	if err != nil {
		details = err.Error()
	}
	return newError(ErrCodeLLMTimeout, "LLM generation timeout", details, false, err)
}

// NewLLMGenerationFailedError creates a non-retryable LLM error.
func NewLLMGenerationFailedError(err error) *StandardError {
	return newError(ErrCodeLLMGenerationFailed, "LLM generation failed", err.Error(), false, err)
}

// NewInteractionLogFailedError is recorded and swallowed by the interaction logger.
func NewInteractionLogFailedError(step string, err error) *StandardError {
	return newError(ErrCodeInteractionLogFailed, "Interaction logging failed",
		fmt.Sprintf("step: %s, error: %s", step, err.Error()), false, err)
}

// NewVocabularyInvalidError reports a bad vocabulary file.
func NewVocabularyInvalidError(details string) *StandardError {
	return newError(ErrCodeVocabularyInvalid, "Vocabulary file is invalid", details, false, nil)
}

// NewAlertPublishFailedError creates a retryable alert delivery error.
func NewAlertPublishFailedError(channel string, err error) *StandardError {
	return newError(ErrCodeAlertPublishFailed, "Fabrication alert delivery failed",
		fmt.Sprintf("channel: %s, error: %s", channel, err.Error()), true, err)
}

func NewExternalServiceError(service string, err error) *StandardError {
	return newError(ErrCodeExternalService, fmt.Sprintf("External service '%s' error", service), err.Error(), true, err)
}

func NewTimeoutError(service string, err error) *StandardError {
	return newError(ErrCodeTimeout, fmt.Sprintf("Service '%s' timeout", service), err.Error(), true, err)
}

func NewInternalError(err error) *StandardError {
	return newError(ErrCodeInternal, "Unexpected error", err.Error(), false, err)
}

// ==========================
// 3. Utility Functions
// ==========================

// GetRetryCount returns the recommended retry count for a code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeDataStoreUnavailable,
		ErrCodeExternalService,
		ErrCodeAlertPublishFailed:
		return 3

	case ErrCodeDataStoreTimeout,
		ErrCodeTimeout:
		return 2

	default:
		return 0
	}
}

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "DATA_STORE"):
		return "DATABASE"
	case strings.Contains(codeStr, "LLM"):
		return "AI"
	case strings.Contains(codeStr, "INVALID"):
		return "VALIDATION"
	case strings.Contains(codeStr, "ALERT") || strings.Contains(codeStr, "INTERACTION"):
		return "SIDE_EFFECT"
	case strings.Contains(codeStr, "EXTERNAL") || strings.Contains(codeStr, "TIMEOUT"):
		return "TRANSPORT"
	default:
		return "OTHER"
	}
}

// Normalize ensures we always have a StandardError.
func Normalize(err error) *StandardError {
	if err == nil {
		return nil
	}
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr
	}
	if stderrors.Is(err, context.DeadlineExceeded) {
		return NewTimeoutError("request", err)
	}
	return NewInternalError(err)
}

// CodeOf returns the code of err after normalization.
func CodeOf(err error) ErrorCode {
	if err == nil {
		return ""
	}
	return Normalize(err).Code
}
