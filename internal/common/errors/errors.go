// Package errors provides standardized error handling for the interview API.
package errors

import (
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeInvalidFile     ErrorCode = "INVALID_FILE"
	ErrCodeFileTooLarge    ErrorCode = "FILE_TOO_LARGE"
	ErrCodeMissingFields   ErrorCode = "MISSING_FIELDS"
	ErrCodeInvalidDatetime ErrorCode = "INVALID_DATETIME"

	ErrCodeBookingNotFound     ErrorCode = "BOOKING_NOT_FOUND"
	ErrCodeBookingCreateFailed ErrorCode = "BOOKING_CREATE_FAILED"
	ErrCodeBookingQueryFailed  ErrorCode = "BOOKING_QUERY_FAILED"

	ErrCodeStorageUploadFailed ErrorCode = "STORAGE_UPLOAD_FAILED"
	ErrCodeExtractionFailed    ErrorCode = "EXTRACTION_FAILED"

	ErrCodePlatformNotConfigured ErrorCode = "PLATFORM_NOT_CONFIGURED"
	ErrCodeTokenIssueFailed      ErrorCode = "TOKEN_ISSUE_FAILED"

	ErrCodeDatabaseConnectionFailed ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeNotificationSendFailed   ErrorCode = "NOTIFICATION_SEND_FAILED"

	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// ==========================
// 2. Error Constructors
// ==========================

// NewInvalidFileError creates a non-retryable upload validation error.
func NewInvalidFileError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidFile,
		Message:   "Uploaded file is not acceptable",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewFileTooLargeError creates a non-retryable size limit error.
func NewFileTooLargeError(size, limit int64) *StandardError {
	return &StandardError{
		Code:      ErrCodeFileTooLarge,
		Message:   "Uploaded file exceeds the size limit",
		Details:   fmt.Sprintf("size: %d bytes, limit: %d bytes", size, limit),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewMissingFieldsError creates a non-retryable request validation error.
func NewMissingFieldsError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeMissingFields,
		Message:   "Required fields are missing or empty",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidDatetimeError creates a non-retryable datetime parse error.
func NewInvalidDatetimeError(value string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidDatetime,
		Message:   "Scheduled datetime could not be parsed",
		Details:   fmt.Sprintf("value: %s", value),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewBookingNotFoundError creates a non-retryable lookup error.
func NewBookingNotFoundError(token string) *StandardError {
	return &StandardError{
		Code:      ErrCodeBookingNotFound,
		Message:   "Booking not found",
		Details:   fmt.Sprintf("token: %s", token),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewBookingCreateFailedError creates a retryable persistence error.
func NewBookingCreateFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeBookingCreateFailed,
		Message:   "Failed to create booking record",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewBookingQueryFailedError creates a retryable query error.
func NewBookingQueryFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeBookingQueryFailed,
		Message:   "Failed to read booking record",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewStorageUploadFailedError creates a retryable object storage error.
func NewStorageUploadFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeStorageUploadFailed,
		Message:   "Resume upload to storage failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewExtractionFailedError creates a non-retryable text extraction error.
// Extraction failures never fail the upload; the API relays the detail string.
func NewExtractionFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeExtractionFailed,
		Message:   "Resume text extraction failed",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewPlatformNotConfiguredError creates a non-retryable server configuration error.
func NewPlatformNotConfiguredError(missing string) *StandardError {
	return &StandardError{
		Code:      ErrCodePlatformNotConfigured,
		Message:   "Real-time platform credentials are not configured",
		Details:   fmt.Sprintf("missing: %s", missing),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewTokenIssueFailedError creates a retryable token generation error.
func NewTokenIssueFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeTokenIssueFailed,
		Message:   "Failed to issue session token",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewDatabaseConnectionFailedError creates a retryable database connection error.
func NewDatabaseConnectionFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDatabaseConnectionFailed,
		Message:   "Database connection error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewNotificationSendFailedError creates a retryable notification send error.
func NewNotificationSendFailedError(channel string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeNotificationSendFailed,
		Message:   "Notification delivery failed",
		Details:   fmt.Sprintf("channel: %s, error: %s", channel, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewInternalError wraps an unclassified failure.
func NewInternalError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeInternal,
		Message:   "Internal server error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// Generic constructors

func NewExternalServiceError(service string, err error) *StandardError {
	return &StandardError{
		Code:      "EXTERNAL_SERVICE_ERROR",
		Message:   fmt.Sprintf("External service '%s' error", service),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func NewTimeoutError(service string, err error) *StandardError {
	return &StandardError{
		Code:      "TIMEOUT_ERROR",
		Message:   fmt.Sprintf("Service '%s' timeout", service),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 3. HTTP Conversion
// ==========================

// HTTPStatusMapping maps internal error codes to HTTP response statuses.
var HTTPStatusMapping = map[ErrorCode]int{
	ErrCodeInvalidFile:     http.StatusBadRequest,
	ErrCodeFileTooLarge:    http.StatusBadRequest,
	ErrCodeMissingFields:   http.StatusBadRequest,
	ErrCodeInvalidDatetime: http.StatusBadRequest,

	ErrCodeBookingNotFound: http.StatusNotFound,

	ErrCodeBookingCreateFailed:      http.StatusInternalServerError,
	ErrCodeBookingQueryFailed:       http.StatusInternalServerError,
	ErrCodeStorageUploadFailed:      http.StatusInternalServerError,
	ErrCodePlatformNotConfigured:    http.StatusInternalServerError,
	ErrCodeTokenIssueFailed:         http.StatusInternalServerError,
	ErrCodeDatabaseConnectionFailed: http.StatusInternalServerError,
	ErrCodeNotificationSendFailed:   http.StatusInternalServerError,
	ErrCodeInternal:                 http.StatusInternalServerError,
}

// HTTPStatus returns the HTTP status for an error code, 500 when unmapped.
func HTTPStatus(code ErrorCode) int {
	if status, exists := HTTPStatusMapping[code]; exists {
		return status
	}
	return http.StatusInternalServerError
}

// ErrorResponse is the JSON body written for failed requests.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// ToResponse converts a StandardError to its wire representation.
func (e *StandardError) ToResponse() ErrorResponse {
	return ErrorResponse{
		Code:    string(e.Code),
		Message: e.Message,
		Details: e.Details,
	}
}

// ==========================
// 4. Utility Functions
// ==========================

// IsClientError reports whether the code maps to a 4xx status.
func IsClientError(code ErrorCode) bool {
	status := HTTPStatus(code)
	return status >= 400 && status < 500
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "FILE") || strings.Contains(codeStr, "EXTRACTION"):
		return "UPLOAD"
	case strings.Contains(codeStr, "BOOKING"):
		return "BOOKING"
	case strings.Contains(codeStr, "STORAGE"):
		return "STORAGE"
	case strings.Contains(codeStr, "PLATFORM") || strings.Contains(codeStr, "TOKEN"):
		return "REALTIME"
	case strings.Contains(codeStr, "DATABASE"):
		return "DATABASE"
	case strings.Contains(codeStr, "NOTIFICATION"):
		return "NOTIFICATION"
	case strings.Contains(codeStr, "MISSING") || strings.Contains(codeStr, "INVALID"):
		return "VALIDATION"
	default:
		return "OTHER"
	}
}
