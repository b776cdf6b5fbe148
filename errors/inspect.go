package errors

import (
	stderrors "errors"
)

// IsAppError checks if an error is an AppError.
func IsAppError(err error) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr)
}

// AsAppError converts an error to an AppError if possible.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// CodeOf returns the error code carried by err, or an empty code if err is
// not an AppError.
func CodeOf(err error) ErrorCode {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code
	}
	return ""
}

// IsCode reports whether err carries the given error code.
func IsCode(err error, code ErrorCode) bool {
	return CodeOf(err) == code
}

// Violations extracts the per-variable violations from a VARIABLE_VALIDATION
// error. It returns nil for any other error.
func Violations(err error) []Violation {
	appErr, ok := AsAppError(err)
	if !ok || appErr.Code != ErrCodeVariableValidation {
		return nil
	}
	violations, _ := appErr.Details["violations"].([]Violation)
	return violations
}

// Wrap converts any error into an AppError. AppErrors pass through
// unchanged; other errors become an internal error with the original as
// cause. Wrapping nil returns nil.
func Wrap(err error) *AppError {
	if err == nil {
		return nil
	}
	if appErr, ok := AsAppError(err); ok {
		return appErr
	}
	return Internal(err)
}
