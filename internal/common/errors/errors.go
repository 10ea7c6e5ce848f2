// Package errors carries the error taxonomy shared by the document workers and
// its mapping onto BPMN errors raised back into the process.
package errors

import (
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode is the internal error code. It doubles as the BPMN error code.
type ErrorCode string

const (
	// Input / configuration
	ErrCodeInputParsingFailed ErrorCode = "INPUT_PARSING_FAILED"
	ErrCodeTemplateInvalid    ErrorCode = "TEMPLATE_INVALID"
	ErrCodeTemplateNotFound   ErrorCode = "TEMPLATE_NOT_FOUND"

	// Model response
	ErrCodeModelResponseMalformed ErrorCode = "MODEL_RESPONSE_MALFORMED"

	// Boundary steps
	ErrCodeCaptureLookupFailed    ErrorCode = "CAPTURE_LOOKUP_FAILED"
	ErrCodeTemplateLookupFailed   ErrorCode = "TEMPLATE_LOOKUP_FAILED"
	ErrCodeModelCallFailed        ErrorCode = "MODEL_CALL_FAILED"
	ErrCodeModelCallTimeout       ErrorCode = "MODEL_CALL_TIMEOUT"
	ErrCodeModelCallRejected      ErrorCode = "MODEL_CALL_REJECTED"
	ErrCodeDraftSaveFailed        ErrorCode = "DRAFT_SAVE_FAILED"
	ErrCodeNotificationSendFailed ErrorCode = "NOTIFICATION_SEND_FAILED"

	// Generic
	ErrCodeInternal        ErrorCode = "INTERNAL_ERROR"
	ErrCodeExternalService ErrorCode = "EXTERNAL_SERVICE_ERROR"
	ErrCodeTimeout         ErrorCode = "TIMEOUT_ERROR"
	ErrCodeNotFound        ErrorCode = "RESOURCE_NOT_FOUND"
)

// StandardError is the structured error every worker returns for job failures.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	cause     error
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

func (e *StandardError) Unwrap() error {
	return e.cause
}

// WithMetadata attaches a key that is forwarded as a BPMN error variable.
func (e *StandardError) WithMetadata(key string, value interface{}) *StandardError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

func newError(code ErrorCode, message string, details string, retryable bool, cause error) *StandardError {
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
// 2. BPMN Error Integration
// ==========================

// BPMNError is what the process sees through an error boundary event.
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

// ToErrorVariables flattens the error into process variables.
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

func NewInputParsingError(err error) *StandardError {
	return newError(ErrCodeInputParsingFailed, "Failed to parse job variables", err.Error(), false, err)
}

// NewTemplateInvalidError is fatal: a template without system_prompt is a
// configuration problem and retrying cannot fix it.
func NewTemplateInvalidError(details string) *StandardError {
	return newError(ErrCodeTemplateInvalid, "Template data is missing or invalid. Expected system_prompt field.", details, false, nil)
}

func NewTemplateNotFoundError(templateID string) *StandardError {
	return newError(ErrCodeTemplateNotFound, "Prompt template not found", fmt.Sprintf("templateId: %s", templateID), false, nil)
}

func NewModelResponseMalformedError(details string) *StandardError {
	return newError(ErrCodeModelResponseMalformed, "Model response is missing required fields", details, false, nil)
}

func NewCaptureLookupFailedError(jobID string, err error) *StandardError {
	return newError(ErrCodeCaptureLookupFailed, "Failed to load captures", fmt.Sprintf("jobId: %s, error: %s", jobID, err.Error()), true, err)
}

func NewTemplateLookupFailedError(templateID string, err error) *StandardError {
	return newError(ErrCodeTemplateLookupFailed, "Failed to load prompt template", fmt.Sprintf("templateId: %s, error: %s", templateID, err.Error()), true, err)
}

func NewModelCallFailedError(err error) *StandardError {
	return newError(ErrCodeModelCallFailed, "Vision model call failed", err.Error(), true, err)
}

func NewModelCallTimeoutError(err error) *StandardError {
	return newError(ErrCodeModelCallTimeout, "Vision model call timed out", err.Error(), true, err)
}

// NewModelCallRejectedError covers 4xx responses; the request itself is wrong.
func NewModelCallRejectedError(status int, err error) *StandardError {
	return newError(ErrCodeModelCallRejected, "Vision model rejected the request", fmt.Sprintf("status: %d, error: %s", status, err.Error()), false, err).
		WithMetadata("httpStatus", status)
}

func NewDraftSaveFailedError(err error) *StandardError {
	return newError(ErrCodeDraftSaveFailed, "Failed to save draft document", err.Error(), true, err)
}

func NewNotificationSendFailedError(channel string, err error) *StandardError {
	return newError(ErrCodeNotificationSendFailed, "Notification delivery failed", fmt.Sprintf("channel: %s, error: %s", channel, err.Error()), true, err)
}

// Generic constructors

func NewInternalError(err error) *StandardError {
	return newError(ErrCodeInternal, "Unexpected error", err.Error(), false, err)
}

func NewExternalServiceError(service string, err error) *StandardError {
	return newError(ErrCodeExternalService, fmt.Sprintf("External service '%s' error", service), err.Error(), true, err)
}

func NewTimeoutError(service string, err error) *StandardError {
	return newError(ErrCodeTimeout, fmt.Sprintf("Service '%s' timeout", service), err.Error(), true, err)
}

func NewResourceNotFoundError(service, details string) *StandardError {
	return newError(ErrCodeNotFound, fmt.Sprintf("Resource not found in %s", service), details, false, nil)
}

// ==========================
// 4. Error Conversion to BPMN
// ==========================

// GetRetryCount returns how many retries a code is allowed.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeCaptureLookupFailed,
		ErrCodeTemplateLookupFailed,
		ErrCodeModelCallFailed,
		ErrCodeDraftSaveFailed,
		ErrCodeNotificationSendFailed,
		ErrCodeExternalService:
		return 3
	case ErrCodeTimeout:
		return 2
	case ErrCodeModelCallTimeout:
		return 1
	default:
		return 0
	}
}

// ConvertToBPMNError maps a StandardError onto the BPMN error thrown to Zeebe.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	vars := map[string]interface{}{
		"originalErrorCode": string(stdErr.Code),
		"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
	}
	for k, v := range stdErr.Metadata {
		vars[k] = v
	}

	return &BPMNError{
		Code:           string(stdErr.Code),
		Message:        stdErr.Message,
		Details:        stdErr.Details,
		Retryable:      stdErr.Retryable,
		Retries:        retries,
		ErrorVariables: vars,
	}
}

// ==========================
// 5. Utility Functions
// ==========================

// KnownCodes lists every code a worker can raise.
func KnownCodes() []ErrorCode {
	return []ErrorCode{
		ErrCodeInputParsingFailed,
		ErrCodeTemplateInvalid,
		ErrCodeTemplateNotFound,
		ErrCodeModelResponseMalformed,
		ErrCodeCaptureLookupFailed,
		ErrCodeTemplateLookupFailed,
		ErrCodeModelCallFailed,
		ErrCodeModelCallTimeout,
		ErrCodeModelCallRejected,
		ErrCodeDraftSaveFailed,
		ErrCodeNotificationSendFailed,
		ErrCodeInternal,
		ErrCodeExternalService,
		ErrCodeTimeout,
		ErrCodeNotFound,
	}
}

func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// GetErrorCategory groups codes for log aggregation.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "TEMPLATE"):
		return "TEMPLATE"
	case strings.Contains(codeStr, "MODEL"):
		return "MODEL"
	case strings.Contains(codeStr, "CAPTURE") || strings.Contains(codeStr, "DRAFT"):
		return "DATABASE"
	case strings.Contains(codeStr, "NOTIFICATION"):
		return "NOTIFICATION"
	case strings.Contains(codeStr, "PARSING"):
		return "VALIDATION"
	default:
		return "OTHER"
	}
}
