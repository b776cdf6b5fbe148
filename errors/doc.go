// Package errors provides structured error handling for aggregation
// pipeline construction, templating, and execution.
//
// It implements error types with machine-readable codes, contextual
// details, and retryable detection for store-facing failures. Validation
// errors are batched: a VARIABLE_VALIDATION error carries every violation
// collected during one invocation rather than only the first.
package errors
