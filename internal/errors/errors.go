package errors

import (
	stderrors "errors"
	"fmt"
)

type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func New(code, message string, cause ...error) *AppError {
	var c error
	if len(cause) > 0 {
		c = cause[0]
	}
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   c,
	}
}

var (
	ErrConfigNotFound = &AppError{Code: "CONFIG_001", Message: "configuration not found"}
	ErrConfigInvalid  = &AppError{Code: "CONFIG_002", Message: "invalid configuration"}

	ErrStoreUnavailable = &AppError{Code: "STORE_001", Message: "record store unavailable"}
	ErrRecordCorrupted  = &AppError{Code: "STORE_002", Message: "stored collection corrupted"}

	ErrDuplicateAccount   = &AppError{Code: "AUTH_001", Message: "an account with this Doctor ID already exists"}
	ErrInvalidCredentials = &AppError{Code: "AUTH_002", Message: "invalid Doctor ID or password"}
	ErrUnauthorized       = &AppError{Code: "AUTH_003", Message: "unauthorized"}

	ErrModelNotConfigured = &AppError{Code: "AI_001", Message: "no model provider configured"}
	ErrTextModelEmpty     = &AppError{Code: "AI_002", Message: "failed to get a response from the text analysis model"}
	ErrImageModelEmpty    = &AppError{Code: "AI_003", Message: "failed to get a response from the image generation model"}
	ErrInvalidInput       = &AppError{Code: "AI_004", Message: "invalid flow input"}

	ErrNotFound   = &AppError{Code: "GEN_001", Message: "resource not found"}
	ErrBadRequest = &AppError{Code: "GEN_002", Message: "bad request"}
	ErrInternal   = &AppError{Code: "GEN_003", Message: "internal error"}
)

// IsAppError reports whether err is or wraps an AppError.
func IsAppError(err error) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr)
}

// GetCode returns the code of the innermost AppError in err's chain.
func GetCode(err error) string {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code
	}
	return "UNKNOWN"
}

func Wrap(err error, code, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   err,
	}
}
