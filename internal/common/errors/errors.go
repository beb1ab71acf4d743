// Package errors provides standardized error handling for BPMN workflow integration.
package errors

import (
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
	// Search provider
	ErrCodeProviderTimeout     ErrorCode = "PROVIDER_TIMEOUT"
	ErrCodeProviderUnavailable ErrorCode = "PROVIDER_UNAVAILABLE"
	ErrCodeProviderStatus      ErrorCode = "PROVIDER_STATUS"
	ErrCodeMalformedResponse   ErrorCode = "MALFORMED_RESPONSE"

	// Captioning
	ErrCodeQuotaExceeded      ErrorCode = "QUOTA_EXCEEDED"
	ErrCodeCaptionUnavailable ErrorCode = "CAPTION_UNAVAILABLE"
	ErrCodeModelInitFailed    ErrorCode = "MODEL_INIT_FAILED"

	// Input
	ErrCodeInvalidQuery          ErrorCode = "INVALID_QUERY"
	ErrCodeInvalidImage          ErrorCode = "INVALID_IMAGE"
	ErrCodeInputValidationFailed ErrorCode = "INPUT_VALIDATION_FAILED"

	ErrCodeSessionStoreFailed ErrorCode = "SESSION_STORE_FAILED"
	ErrCodeInternal           ErrorCode = "INTERNAL_ERROR"
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

// Unwrap exposes the underlying cause, if any.
func (e *StandardError) Unwrap() error {
	return e.cause
}

// WithMetadata attaches a key/value pair and returns the same error.
func (e *StandardError) WithMetadata(key string, value interface{}) *StandardError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

// ==========================
// 2. BPMN Error Integration
// ==========================

// BPMNError represents an error that can be thrown to the Camunda workflow engine.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables returns a map suitable for setting Camunda job fail variables.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}

	for k, v := range e.ErrorVariables {
		vars[k] = v
	}

	return vars
}

// ==========================
// 3. Error Constructors
// ==========================

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

func detailsOf(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// NewProviderTimeoutError creates a retryable error for a provider call that exceeded its bound.
func NewProviderTimeoutError(engine string, err error) *StandardError {
	return newError(ErrCodeProviderTimeout, "Search provider timeout",
		fmt.Sprintf("engine: %s, error: %s", engine, detailsOf(err)), true, err).
		WithMetadata("engine", engine)
}

// NewProviderUnavailableError creates a retryable network-level provider error.
func NewProviderUnavailableError(engine string, err error) *StandardError {
	return newError(ErrCodeProviderUnavailable, "Search provider unreachable",
		fmt.Sprintf("engine: %s, error: %s", engine, detailsOf(err)), true, err).
		WithMetadata("engine", engine)
}

// NewProviderStatusError creates an error for a non-2xx provider response.
// 5xx and 429 are retryable, other statuses are not.
func NewProviderStatusError(engine string, status int, body string) *StandardError {
	retryable := status >= 500 || status == 429
	return newError(ErrCodeProviderStatus, fmt.Sprintf("Search provider returned status %d", status),
		fmt.Sprintf("engine: %s, body: %s", engine, truncate(body, 512)), retryable, nil).
		WithMetadata("engine", engine).
		WithMetadata("status", status)
}

// NewMalformedResponseError creates a non-retryable error for an undecodable provider body.
func NewMalformedResponseError(engine string, err error) *StandardError {
	return newError(ErrCodeMalformedResponse, "Malformed provider response",
		fmt.Sprintf("engine: %s, error: %s", engine, detailsOf(err)), false, err).
		WithMetadata("engine", engine)
}

// NewQuotaExceededError marks a rate-limit or quota signal from a caption engine.
func NewQuotaExceededError(engine string, err error) *StandardError {
	return newError(ErrCodeQuotaExceeded, "Caption engine quota exceeded",
		fmt.Sprintf("engine: %s, error: %s", engine, detailsOf(err)), true, err).
		WithMetadata("engine", engine)
}

func NewCaptionUnavailableError(strategy string) *StandardError {
	return newError(ErrCodeCaptionUnavailable, "No caption available",
		fmt.Sprintf("strategy: %s", strategy), false, nil)
}

// NewModelInitError is raised when the local captioning model cannot be loaded.
// It is never masked by a fallback.
func NewModelInitError(model string, err error) *StandardError {
	return newError(ErrCodeModelInitFailed, "Local captioning model failed to load",
		fmt.Sprintf("model: %s, error: %s", model, detailsOf(err)), false, err).
		WithMetadata("model", model)
}

func NewInvalidQueryError(details string) *StandardError {
	return newError(ErrCodeInvalidQuery, "Invalid search query", details, false, nil)
}

func NewInvalidImageError(err error) *StandardError {
	return newError(ErrCodeInvalidImage, "Image could not be decoded", detailsOf(err), false, err)
}

func NewInputValidationError(details string) *StandardError {
	return newError(ErrCodeInputValidationFailed, "Job input validation failed", details, false, nil)
}

// NewSessionStoreError creates a retryable session store error.
func NewSessionStoreError(op string, err error) *StandardError {
	return newError(ErrCodeSessionStoreFailed, "Session store operation failed",
		fmt.Sprintf("op: %s, error: %s", op, detailsOf(err)), true, err)
}

func NewInternalError(err error) *StandardError {
	return newError(ErrCodeInternal, "Unexpected error", detailsOf(err), false, err)
}

// ==========================
// 4. Error Conversion to BPMN
// ==========================

// BPMNErrorMapping maps internal error codes to BPMN error codes.
var BPMNErrorMapping = map[ErrorCode]string{
	ErrCodeProviderTimeout:       "PROVIDER_TIMEOUT",
	ErrCodeProviderUnavailable:   "PROVIDER_UNAVAILABLE",
	ErrCodeProviderStatus:        "PROVIDER_STATUS",
	ErrCodeMalformedResponse:     "MALFORMED_RESPONSE",
	ErrCodeQuotaExceeded:         "QUOTA_EXCEEDED",
	ErrCodeCaptionUnavailable:    "CAPTION_UNAVAILABLE",
	ErrCodeModelInitFailed:       "MODEL_INIT_FAILED",
	ErrCodeInvalidQuery:          "INVALID_QUERY",
	ErrCodeInvalidImage:          "INVALID_IMAGE",
	ErrCodeInputValidationFailed: "INPUT_VALIDATION_FAILED",
	ErrCodeSessionStoreFailed:    "SESSION_STORE_FAILED",
	ErrCodeInternal:              "INTERNAL_ERROR",
}

// GetRetryCount returns the recommended job retry count for an error code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeProviderUnavailable,
		ErrCodeProviderStatus,
		ErrCodeSessionStoreFailed:
		return 3

	case ErrCodeProviderTimeout,
		ErrCodeQuotaExceeded:
		return 2

	default:
		return 0 // input and initialization errors: no retry
	}
}

// ConvertToBPMNError converts a StandardError to a BPMNError for Camunda.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	bpmnCode, exists := BPMNErrorMapping[stdErr.Code]
	if !exists {
		bpmnCode = string(stdErr.Code)
	}

	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	return &BPMNError{
		Code:      bpmnCode,
		Message:   stdErr.Message,
		Details:   stdErr.Details,
		Retryable: stdErr.Retryable,
		Retries:   retries,
		ErrorVariables: map[string]interface{}{
			"originalErrorCode": string(stdErr.Code),
			"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
		},
	}
}

// ==========================
// 5. Utility Functions
// ==========================

// AsStandardError finds the first StandardError in err's chain.
func AsStandardError(err error) (*StandardError, bool) {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr, true
	}
	return nil, false
}

// CodeOf returns the code of the StandardError in err's chain, or INTERNAL_ERROR.
func CodeOf(err error) ErrorCode {
	if stdErr, ok := AsStandardError(err); ok {
		return stdErr.Code
	}
	return ErrCodeInternal
}

// IsRetryable reports whether err carries a retryable StandardError.
func IsRetryable(err error) bool {
	stdErr, ok := AsStandardError(err)
	return ok && stdErr.Retryable
}

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.HasPrefix(codeStr, "PROVIDER") || codeStr == string(ErrCodeMalformedResponse):
		return "PROVIDER"
	case strings.Contains(codeStr, "CAPTION") || strings.Contains(codeStr, "MODEL") || strings.Contains(codeStr, "QUOTA"):
		return "CAPTION"
	case strings.Contains(codeStr, "SESSION"):
		return "SESSION"
	case strings.Contains(codeStr, "INVALID") || strings.Contains(codeStr, "VALIDATION"):
		return "VALIDATION"
	default:
		return "OTHER"
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
