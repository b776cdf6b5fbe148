package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Pipeline construction errors
const (
	// ErrCodeStageNotFound indicates a stage lookup or removal found no match.
	ErrCodeStageNotFound ErrorCode = "STAGE_NOT_FOUND"
	// ErrCodeDuplicateStageName indicates a stage name is already in use within the pipeline.
	ErrCodeDuplicateStageName ErrorCode = "DUPLICATE_STAGE_NAME"
	// ErrCodeInvalidStage indicates a stage payload does not fit its stage kind.
	ErrCodeInvalidStage ErrorCode = "INVALID_STAGE"
)

// Template errors
const (
	// ErrCodeVariableValidation indicates one or more template variables failed validation.
	ErrCodeVariableValidation ErrorCode = "VARIABLE_VALIDATION"
	// ErrCodeUnknownVariable indicates a placeholder references an undeclared variable.
	ErrCodeUnknownVariable ErrorCode = "UNKNOWN_VARIABLE"
	// ErrCodeInvalidDefinition indicates an aggregation definition is malformed.
	ErrCodeInvalidDefinition ErrorCode = "INVALID_DEFINITION"
)

// Execution errors
const (
	// ErrCodeUnresolvedCollection indicates a logical collection key has no registered provider.
	ErrCodeUnresolvedCollection ErrorCode = "UNRESOLVED_COLLECTION"
	// ErrCodeCursorConsumed indicates a terminal call on an already consumed cursor.
	ErrCodeCursorConsumed ErrorCode = "CURSOR_CONSUMED"
	// ErrCodeConnectionFailed indicates a failed connection to the backing store.
	ErrCodeConnectionFailed ErrorCode = "CONNECTION_FAILED"
	// ErrCodeExecutionFailed indicates the backing store rejected or aborted an aggregation.
	ErrCodeExecutionFailed ErrorCode = "EXECUTION_FAILED"
	// ErrCodeInternal indicates an unexpected internal error.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

var retryableCodes = map[ErrorCode]bool{
	ErrCodeConnectionFailed: true,
	ErrCodeExecutionFailed:  true,
	ErrCodeInternal:         false,
}

// IsRetryableCode returns true if the error code indicates a retryable error.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}
