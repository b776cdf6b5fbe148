package errors

import (
	"fmt"
	"strings"
)

// AppError is the unified error type for pipeline construction, templating,
// and execution failures.
type AppError struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Message is a human-readable error message.
	Message string `json:"message"`
	// Retryable indicates if the operation can be retried.
	Retryable bool `json:"retryable"`
	// Details contains additional context for the error.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error that caused this error.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *AppError) Unwrap() error { return e.Cause }

// WithCause sets the underlying cause of the error and returns the receiver.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetails merges the provided details into the error and returns the receiver.
func (e *AppError) WithDetails(details map[string]any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	for k, v := range details {
		e.Details[k] = v
	}
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates a new AppError with automatic retryable detection.
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:      code,
		Message:   message,
		Retryable: IsRetryableCode(code),
	}
}

// Violation describes a single template-variable validation failure.
type Violation struct {
	// Variable is the name of the variable that failed validation.
	Variable string `json:"variable"`
	// Message describes how the variable violated its spec.
	Message string `json:"message"`
}

// String returns the violation as "VARIABLE: message".
func (v Violation) String() string {
	return fmt.Sprintf("%s: %s", v.Variable, v.Message)
}

// --- Common Error Constructors ---

// StageNotFound creates a new AppError for a stage kind/occurrence lookup
// that found no match.
func StageNotFound(kind string, occurrence int) *AppError {
	return &AppError{
		Code: ErrCodeStageNotFound, Message: fmt.Sprintf("no %s stage at occurrence %d", kind, occurrence),
		Details: map[string]any{"kind": kind, "occurrence": occurrence},
	}
}

// StageNameNotFound creates a new AppError for a named stage lookup that
// found no match.
func StageNameNotFound(name string) *AppError {
	return &AppError{
		Code: ErrCodeStageNotFound, Message: fmt.Sprintf("no stage named %q", name),
		Details: map[string]any{"name": name},
	}
}

// PhaseNotFound creates a new AppError for a phase lookup that found no
// tagged stages.
func PhaseNotFound(name string) *AppError {
	return &AppError{
		Code: ErrCodeStageNotFound, Message: fmt.Sprintf("no phase named %q", name),
		Details: map[string]any{"phase": name},
	}
}

// DuplicateStageName creates a new AppError for a stage name collision.
func DuplicateStageName(name string) *AppError {
	return &AppError{
		Code: ErrCodeDuplicateStageName, Message: fmt.Sprintf("a stage named %q already exists", name),
		Details: map[string]any{"name": name},
	}
}

// InvalidStage creates a new AppError for a payload that does not fit its
// stage kind.
func InvalidStage(kind, reason string) *AppError {
	return &AppError{
		Code: ErrCodeInvalidStage, Message: fmt.Sprintf("invalid %s stage: %s", kind, reason),
		Details: map[string]any{"kind": kind},
	}
}

// VariableValidation creates a new AppError reporting every variable
// violation collected during one invocation.
func VariableValidation(violations []Violation) *AppError {
	messages := make([]string, len(violations))
	for i, v := range violations {
		messages[i] = v.String()
	}
	return &AppError{
		Code: ErrCodeVariableValidation, Message: fmt.Sprintf("variable validation failed: %s", strings.Join(messages, "; ")),
		Details: map[string]any{"violations": violations},
	}
}

// UnknownVariable creates a new AppError for placeholders referencing
// variables that were never declared.
func UnknownVariable(names ...string) *AppError {
	return &AppError{
		Code: ErrCodeUnknownVariable, Message: fmt.Sprintf("template references undeclared variables: %s", strings.Join(names, ", ")),
		Details: map[string]any{"variables": names},
	}
}

// InvalidDefinition creates a new AppError for a malformed aggregation
// definition.
func InvalidDefinition(reason string) *AppError {
	return &AppError{
		Code: ErrCodeInvalidDefinition, Message: fmt.Sprintf("invalid aggregation definition: %s", reason),
	}
}

// UnresolvedCollection creates a new AppError for a logical collection key
// with no registered provider.
func UnresolvedCollection(key string) *AppError {
	return &AppError{
		Code: ErrCodeUnresolvedCollection, Message: fmt.Sprintf("no collection provider registered for key %q", key),
		Details: map[string]any{"key": key},
	}
}

// CursorConsumed creates a new AppError for a terminal call on a cursor that
// already executed.
func CursorConsumed() *AppError {
	return &AppError{
		Code: ErrCodeCursorConsumed, Message: "cursor already consumed; create a new cursor to run again",
	}
}

// ConnectionFailed creates a new AppError for a failed connection to the
// backing store.
func ConnectionFailed(target string) *AppError {
	return &AppError{
		Code: ErrCodeConnectionFailed, Message: fmt.Sprintf("unable to connect to %s", target),
		Retryable: true,
		Details:   map[string]any{"target": target},
	}
}

// ExecutionFailed creates a new AppError for an aggregation the backing
// store rejected or aborted.
func ExecutionFailed(collection string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeExecutionFailed, Message: fmt.Sprintf("aggregation against %q failed", collection),
		Retryable: true,
		Details:   map[string]any{"collection": collection},
		Cause:     cause,
	}
}

// Internal creates a new AppError for an unexpected internal error.
func Internal(cause error) *AppError {
	return &AppError{
		Code: ErrCodeInternal, Message: "an unexpected error occurred",
		Cause: cause,
	}
}
