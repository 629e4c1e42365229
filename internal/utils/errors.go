package utils

import (
	"context"
	"errors"
	"fmt"

	"github.com/dl-alexandre/gxlib/internal/types"
)

// Exit codes
const (
	ExitSuccess = 0
	// Auth errors (10-19)
	ExitAuthRequired = 10
	ExitAuthInvalid  = 12
	// Remote errors (20-29)
	ExitNotFound         = 20
	ExitPermissionDenied = 21
	ExitConflict         = 22
	ExitServerError      = 23
	// Network errors (30-39)
	ExitNetworkError = 30
	ExitTimeout      = 31
	// Validation errors (40-49)
	ExitInvalidArgument = 40
	ExitInvalidPath     = 41
	ExitInvalidConfig   = 42
	// Local runtime errors (50-59)
	ExitQueueError = 50
	ExitLocked     = 51
	ExitCancelled  = 52
	// Unknown
	ExitUnknown = 99
)

// Error codes (tool-owned, stable)
const (
	ErrCodeAuthRequired     = "AUTH_REQUIRED"
	ErrCodeAuthInvalid      = "AUTH_INVALID"
	ErrCodeNotFound         = "NOT_FOUND"
	ErrCodePermissionDenied = "PERMISSION_DENIED"
	ErrCodeConflict         = "CONFLICT"
	ErrCodeServerError      = "SERVER_ERROR"
	ErrCodeNetworkError     = "NETWORK_ERROR"
	ErrCodeTimeout          = "TIMEOUT"
	ErrCodeInvalidArgument  = "INVALID_ARGUMENT"
	ErrCodeInvalidPath      = "INVALID_PATH"
	ErrCodeInvalidConfig    = "INVALID_CONFIG"
	ErrCodeQueueError       = "QUEUE_ERROR"
	ErrCodeLocked           = "LOCKED"
	ErrCodeCancelled        = "CANCELLED"
	ErrCodeUnknown          = "UNKNOWN"
)

// CLIErrorBuilder helps construct CLIError instances
type CLIErrorBuilder struct {
	err types.CLIError
}

// NewCLIError creates a new error builder
func NewCLIError(code, message string) *CLIErrorBuilder {
	return &CLIErrorBuilder{
		err: types.CLIError{
			Code:    code,
			Message: message,
		},
	}
}

func (b *CLIErrorBuilder) WithHTTPStatus(status int) *CLIErrorBuilder {
	b.err.HTTPStatus = status
	return b
}

func (b *CLIErrorBuilder) WithExitCode(code int) *CLIErrorBuilder {
	b.err.ExitCode = code
	return b
}

func (b *CLIErrorBuilder) WithRetryable(retryable bool) *CLIErrorBuilder {
	b.err.Retryable = retryable
	return b
}

func (b *CLIErrorBuilder) WithContext(key string, value interface{}) *CLIErrorBuilder {
	if b.err.Context == nil {
		b.err.Context = make(map[string]interface{})
	}
	b.err.Context[key] = value
	return b
}

func (b *CLIErrorBuilder) Build() types.CLIError {
	return b.err
}

// GetExitCode returns the exit code for an error code
func GetExitCode(errorCode string) int {
	mapping := map[string]int{
		ErrCodeAuthRequired:     ExitAuthRequired,
		ErrCodeAuthInvalid:      ExitAuthInvalid,
		ErrCodeNotFound:         ExitNotFound,
		ErrCodePermissionDenied: ExitPermissionDenied,
		ErrCodeConflict:         ExitConflict,
		ErrCodeServerError:      ExitServerError,
		ErrCodeNetworkError:     ExitNetworkError,
		ErrCodeTimeout:          ExitTimeout,
		ErrCodeInvalidArgument:  ExitInvalidArgument,
		ErrCodeInvalidPath:      ExitInvalidPath,
		ErrCodeInvalidConfig:    ExitInvalidConfig,
		ErrCodeQueueError:       ExitQueueError,
		ErrCodeLocked:           ExitLocked,
		ErrCodeCancelled:        ExitCancelled,
	}
	if code, ok := mapping[errorCode]; ok {
		return code
	}
	return ExitUnknown
}

// AppError is a custom error type that carries CLI error info
type AppError struct {
	CLIError types.CLIError
	cause    error
}

func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.CLIError.Code, e.CLIError.Message)
}

// Unwrap exposes the underlying cause, if any
func (e *AppError) Unwrap() error {
	return e.cause
}

// NewAppError creates an AppError from a CLIError
func NewAppError(cliErr types.CLIError) *AppError {
	return &AppError{CLIError: cliErr}
}

// WrapAppError creates an AppError that keeps cause in its chain
func WrapAppError(cliErr types.CLIError, cause error) *AppError {
	return &AppError{CLIError: cliErr, cause: cause}
}

// ExitCodeFor picks the process exit code for err
func ExitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return GetExitCode(appErr.CLIError.Code)
	}
	if errors.Is(err, context.Canceled) {
		return ExitCancelled
	}
	return ExitUnknown
}

// ToCLIError converts any error into the machine-readable shape
func ToCLIError(err error) types.CLIError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		cliErr := appErr.CLIError
		cliErr.ExitCode = GetExitCode(cliErr.Code)
		return cliErr
	}
	if errors.Is(err, context.Canceled) {
		return NewCLIError(ErrCodeCancelled, err.Error()).WithExitCode(ExitCancelled).Build()
	}
	return NewCLIError(ErrCodeUnknown, err.Error()).WithExitCode(ExitUnknown).Build()
}
