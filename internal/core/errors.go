// internal/core/errors.go
package core

import "fmt"

// Error represents a structured error with code and optional cause.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Cause   error  `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is matching by code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// WrapError creates a new error with the same code but with a cause.
func WrapError(base *Error, cause error) *Error {
	return &Error{
		Code:    base.Code,
		Message: base.Message,
		Cause:   cause,
	}
}

// Predefined errors
var (
	// Engine errors: all locally recovered during replay. The offending
	// transaction is skipped and replay continues with unmodified state.
	ErrEmptySeries          = &Error{Code: "EMPTY_SERIES", Message: "price history empty or malformed"}
	ErrNoTradingDay         = &Error{Code: "NO_TRADING_DAY", Message: "no trading day found within probe window"}
	ErrMissingPriceData     = &Error{Code: "MISSING_PRICE_DATA", Message: "no price data for transaction date"}
	ErrInsufficientHoldings = &Error{Code: "INSUFFICIENT_HOLDINGS", Message: "sell exceeds available holdings"}
	ErrInvalidAction        = &Error{Code: "INVALID_ACTION", Message: "action must be buy or sell"}
	ErrNoData               = &Error{Code: "NO_DATA", Message: "no data available"}

	// Storage errors
	ErrObjectNotFound = &Error{Code: "OBJECT_NOT_FOUND", Message: "object not found"}
	ErrStorageFailed  = &Error{Code: "STORAGE_FAILED", Message: "storage operation failed"}

	// Auth errors
	ErrTokenMissing  = &Error{Code: "TOKEN_MISSING", Message: "missing API token"}
	ErrTokenInvalid  = &Error{Code: "TOKEN_INVALID", Message: "invalid API token"}
	ErrTokenExpired  = &Error{Code: "TOKEN_EXPIRED", Message: "token expired or not yet valid"}
	ErrAdminRequired = &Error{Code: "ADMIN_REQUIRED", Message: "admin privileges required"}

	// Job errors
	ErrJobNotFound = &Error{Code: "JOB_NOT_FOUND", Message: "job not found"}

	// Config errors
	ErrConfigInvalid = &Error{Code: "CONFIG_INVALID", Message: "configuration invalid"}
	ErrConfigMissing = &Error{Code: "CONFIG_MISSING", Message: "required configuration missing"}

	// Chart errors
	ErrChartFailed = &Error{Code: "CHART_FAILED", Message: "chart rendering failed"}
)
