// Package errors provides the coded error taxonomy shared by the analyzer,
// the GitHub client, the history store and the HTTP layer.
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// ErrorCode identifies a failure class independently of its message.
type ErrorCode string

const (
	// Extraction
	CodeUnsupportedFormat ErrorCode = "UNSUPPORTED_FORMAT"
	CodeCorruptDocument   ErrorCode = "CORRUPT_DOCUMENT"

	// Configuration
	CodeConfigMissing ErrorCode = "CONFIG_MISSING"

	// GitHub
	CodeProfileNotFound ErrorCode = "PROFILE_NOT_FOUND"
	CodeNetworkError    ErrorCode = "NETWORK_ERROR"
	CodeEmptyUsername   ErrorCode = "EMPTY_USERNAME"

	// History store
	CodeStorageError ErrorCode = "STORAGE_ERROR"

	// Request surface
	CodeUnknownRole    ErrorCode = "UNKNOWN_ROLE"
	CodeInvalidRequest ErrorCode = "INVALID_REQUEST"
)

// AppError is a coded application error. Two AppErrors match under errors.Is
// when their codes are equal.
type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Cause   error     `json:"-"`
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// Sentinels for errors.Is checks.
var (
	ErrUnsupportedFormat = &AppError{Code: CodeUnsupportedFormat, Message: "unsupported format"}
	ErrCorruptDocument   = &AppError{Code: CodeCorruptDocument, Message: "corrupt document"}
	ErrConfigMissing     = &AppError{Code: CodeConfigMissing, Message: "configuration missing"}
	ErrProfileNotFound   = &AppError{Code: CodeProfileNotFound, Message: "profile not found"}
	ErrNetwork           = &AppError{Code: CodeNetworkError, Message: "network error"}
	ErrEmptyUsername     = &AppError{Code: CodeEmptyUsername, Message: "username cannot be empty"}
	ErrStorage           = &AppError{Code: CodeStorageError, Message: "storage error"}
	ErrUnknownRole       = &AppError{Code: CodeUnknownRole, Message: "unknown job role"}
	ErrInvalidRequest    = &AppError{Code: CodeInvalidRequest, Message: "invalid request"}
)

func NewUnsupportedFormatError(format string) *AppError {
	return &AppError{
		Code:    CodeUnsupportedFormat,
		Message: fmt.Sprintf("unsupported format: %q (expected pdf or docx)", format),
	}
}

func NewCorruptDocumentError(format string, cause error) *AppError {
	return &AppError{
		Code:    CodeCorruptDocument,
		Message: fmt.Sprintf("failed to parse %s document: %v", format, cause),
		Cause:   cause,
	}
}

func NewConfigMissingError(path string, cause error) *AppError {
	return &AppError{
		Code:    CodeConfigMissing,
		Message: fmt.Sprintf("configuration not found: %s", path),
		Cause:   cause,
	}
}

func NewEmptyUsernameError() *AppError {
	return &AppError{Code: CodeEmptyUsername, Message: "username cannot be empty"}
}

func NewProfileNotFoundError(username string, status int) *AppError {
	return &AppError{
		Code:    CodeProfileNotFound,
		Message: "profile not found",
		Cause:   fmt.Errorf("GET profile %q returned HTTP %d", username, status),
	}
}

func NewNetworkError(cause error) *AppError {
	return &AppError{
		Code:    CodeNetworkError,
		Message: fmt.Sprintf("network error: %v", cause),
		Cause:   cause,
	}
}

func NewStorageError(op string, cause error) *AppError {
	return &AppError{
		Code:    CodeStorageError,
		Message: fmt.Sprintf("storage error during %s: %v", op, cause),
		Cause:   cause,
	}
}

func NewUnknownRoleError(role string) *AppError {
	return &AppError{
		Code:    CodeUnknownRole,
		Message: fmt.Sprintf("unknown job role: %q", role),
	}
}

func NewInvalidRequestError(msg string) *AppError {
	return &AppError{Code: CodeInvalidRequest, Message: msg}
}

// CodeOf returns the code of the first AppError in err's chain, or "" if none.
func CodeOf(err error) ErrorCode {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}

// HTTPStatus maps an error to the status code the API responds with.
func HTTPStatus(err error) int {
	switch CodeOf(err) {
	case CodeUnsupportedFormat, CodeEmptyUsername, CodeUnknownRole, CodeInvalidRequest:
		return http.StatusBadRequest
	case CodeCorruptDocument:
		return http.StatusUnprocessableEntity
	case CodeProfileNotFound:
		return http.StatusNotFound
	case CodeNetworkError:
		return http.StatusBadGateway
	case CodeStorageError, CodeConfigMissing:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
