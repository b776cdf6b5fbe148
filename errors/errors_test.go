package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"testing"
)

func TestAppError_New_Success(t *testing.T) {
	err := New(ErrCodeStageNotFound, "missing stage")
	if err.Code != ErrCodeStageNotFound {
		t.Errorf("expected code %s, got %s", ErrCodeStageNotFound, err.Code)
	}
	if err.Message != "missing stage" {
		t.Errorf("expected message 'missing stage', got %q", err.Message)
	}
	if err.Retryable {
		t.Error("STAGE_NOT_FOUND should not be retryable")
	}
}

func TestAppError_New_Retryable(t *testing.T) {
	err := New(ErrCodeConnectionFailed, "store unreachable")
	if !err.Retryable {
		t.Error("CONNECTION_FAILED should be retryable")
	}
}

func TestAppError_StageNotFound_Success(t *testing.T) {
	err := StageNotFound("match", 1)
	if err.Code != ErrCodeStageNotFound {
		t.Errorf("expected STAGE_NOT_FOUND, got %s", err.Code)
	}
	if err.Details["kind"] != "match" {
		t.Errorf("expected kind=match, got %v", err.Details["kind"])
	}
	if err.Details["occurrence"] != 1 {
		t.Errorf("expected occurrence=1, got %v", err.Details["occurrence"])
	}
	if err.Retryable {
		t.Error("StageNotFound should not be retryable")
	}
}

func TestAppError_StageNameNotFound_Success(t *testing.T) {
	err := StageNameNotFound("matchOrders")
	if err.Code != ErrCodeStageNotFound {
		t.Errorf("expected STAGE_NOT_FOUND, got %s", err.Code)
	}
	if err.Details["name"] != "matchOrders" {
		t.Errorf("expected name=matchOrders, got %v", err.Details["name"])
	}
	if !strings.Contains(err.Message, "matchOrders") {
		t.Errorf("expected message to name the stage, got %q", err.Message)
	}
}

func TestAppError_VariableValidation_AllViolations(t *testing.T) {
	violations := []Violation{
		{Variable: "KEYWORDS", Message: "is required"},
		{Variable: "PAGE_NUM", Message: "must be a number"},
		{Variable: "SORT_DIRECTION", Message: "must be one of: 1, -1"},
	}
	err := VariableValidation(violations)
	if err.Code != ErrCodeVariableValidation {
		t.Errorf("expected VARIABLE_VALIDATION, got %s", err.Code)
	}
	for _, v := range violations {
		if !strings.Contains(err.Message, v.Variable) {
			t.Errorf("expected message to include %s, got %q", v.Variable, err.Message)
		}
	}
	got, ok := err.Details["violations"].([]Violation)
	if !ok {
		t.Fatal("expected violations in details")
	}
	if len(got) != 3 {
		t.Errorf("expected 3 violations, got %d", len(got))
	}
}

func TestAppError_UnknownVariable_Success(t *testing.T) {
	err := UnknownVariable("CATEGORIES", "LIMIT")
	if err.Code != ErrCodeUnknownVariable {
		t.Errorf("expected UNKNOWN_VARIABLE, got %s", err.Code)
	}
	if !strings.Contains(err.Message, "CATEGORIES") || !strings.Contains(err.Message, "LIMIT") {
		t.Errorf("expected message to list all variables, got %q", err.Message)
	}
}

func TestAppError_WithCause_Chain(t *testing.T) {
	cause := fmt.Errorf("root cause")
	err := StageNameNotFound("totals").WithCause(cause)
	if err.Cause != cause {
		t.Error("expected cause to be set via WithCause")
	}
	if !strings.Contains(err.Error(), "root cause") {
		t.Errorf("Error() should contain cause, got %q", err.Error())
	}
}

func TestAppError_WithDetails_Merge(t *testing.T) {
	err := DuplicateStageName("totals").WithDetails(map[string]any{
		"pipeline": "orderStats",
	})
	if err.Details["pipeline"] != "orderStats" {
		t.Error("expected pipeline=orderStats in details")
	}
	if err.Details["name"] != "totals" {
		t.Error("expected original details to be preserved")
	}

	// Merge again into existing details
	err.WithDetails(map[string]any{
		"occurrence": 2,
	})
	if err.Details["occurrence"] != 2 {
		t.Error("expected occurrence=2 to be merged")
	}
	if err.Details["pipeline"] != "orderStats" {
		t.Error("expected pipeline=orderStats to be preserved after second merge")
	}
}

func TestAppError_WithDetail_NilMap(t *testing.T) {
	err := &AppError{}
	err.WithDetail("key", "value")
	if err.Details == nil {
		t.Fatal("expected Details map to be initialized")
	}
	if err.Details["key"] != "value" {
		t.Errorf("expected key=value, got %v", err.Details["key"])
	}
}

func TestAppError_Error_Format(t *testing.T) {
	err := UnresolvedCollection("orders")
	s := err.Error()
	if !strings.Contains(s, "UNRESOLVED_COLLECTION") {
		t.Errorf("expected error string to contain code, got %q", s)
	}
	if !strings.Contains(s, "orders") {
		t.Errorf("expected error string to contain key, got %q", s)
	}
}

func TestAppError_Unwrap_Success(t *testing.T) {
	cause := fmt.Errorf("underlying")
	err := ExecutionFailed("orders", cause)
	if err.Unwrap() != cause {
		t.Error("Unwrap should return the cause")
	}

	err2 := CursorConsumed()
	if err2.Unwrap() != nil {
		t.Error("Unwrap should return nil when no cause")
	}
}

func TestAppError_Constructors_Table(t *testing.T) {
	tests := []struct {
		name      string
		err       *AppError
		code      ErrorCode
		retryable bool
	}{
		{"StageNotFound", StageNotFound("group", 0), ErrCodeStageNotFound, false},
		{"StageNameNotFound", StageNameNotFound("totals"), ErrCodeStageNotFound, false},
		{"DuplicateStageName", DuplicateStageName("totals"), ErrCodeDuplicateStageName, false},
		{"InvalidStage", InvalidStage("limit", "payload must be numeric"), ErrCodeInvalidStage, false},
		{"VariableValidation", VariableValidation([]Violation{{Variable: "X", Message: "is required"}}), ErrCodeVariableValidation, false},
		{"UnknownVariable", UnknownVariable("X"), ErrCodeUnknownVariable, false},
		{"InvalidDefinition", InvalidDefinition("builder returned no stages"), ErrCodeInvalidDefinition, false},
		{"UnresolvedCollection", UnresolvedCollection("orders"), ErrCodeUnresolvedCollection, false},
		{"CursorConsumed", CursorConsumed(), ErrCodeCursorConsumed, false},
		{"ConnectionFailed", ConnectionFailed("mongodb://localhost"), ErrCodeConnectionFailed, true},
		{"ExecutionFailed", ExecutionFailed("orders", nil), ErrCodeExecutionFailed, true},
		{"Internal", Internal(nil), ErrCodeInternal, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.err.Code != tc.code {
				t.Errorf("expected code %s, got %s", tc.code, tc.err.Code)
			}
			if tc.err.Retryable != tc.retryable {
				t.Errorf("expected retryable=%v, got %v", tc.retryable, tc.err.Retryable)
			}
		})
	}
}

func TestErrorCode_IsRetryableCode_Table(t *testing.T) {
	retryable := []ErrorCode{ErrCodeConnectionFailed, ErrCodeExecutionFailed}
	for _, code := range retryable {
		if !IsRetryableCode(code) {
			t.Errorf("expected %s to be retryable", code)
		}
	}

	nonRetryable := []ErrorCode{
		ErrCodeStageNotFound, ErrCodeDuplicateStageName, ErrCodeInvalidStage,
		ErrCodeVariableValidation, ErrCodeUnknownVariable, ErrCodeInvalidDefinition,
		ErrCodeUnresolvedCollection, ErrCodeCursorConsumed, ErrCodeInternal,
	}
	for _, code := range nonRetryable {
		if IsRetryableCode(code) {
			t.Errorf("expected %s to NOT be retryable", code)
		}
	}
}

func TestAppError_IsAppError_Success(t *testing.T) {
	appErr := StageNameNotFound("x")
	if !IsAppError(appErr) {
		t.Error("expected IsAppError to return true for AppError")
	}

	wrapped := fmt.Errorf("wrapped: %w", appErr)
	if !IsAppError(wrapped) {
		t.Error("expected IsAppError to return true for wrapped AppError")
	}

	plain := fmt.Errorf("plain error")
	if IsAppError(plain) {
		t.Error("expected IsAppError to return false for plain error")
	}
}

func TestAppError_AsAppError_Success(t *testing.T) {
	appErr := CursorConsumed()
	wrapped := fmt.Errorf("wrap: %w", appErr)

	got, ok := AsAppError(wrapped)
	if !ok {
		t.Fatal("expected AsAppError to succeed for wrapped AppError")
	}
	if got.Code != ErrCodeCursorConsumed {
		t.Errorf("expected CURSOR_CONSUMED, got %s", got.Code)
	}

	_, ok = AsAppError(fmt.Errorf("not an app error"))
	if ok {
		t.Error("expected AsAppError to return false for non-AppError")
	}
}

func TestCodeOf_Table(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code ErrorCode
	}{
		{"AppError", DuplicateStageName("x"), ErrCodeDuplicateStageName},
		{"WrappedAppError", fmt.Errorf("outer: %w", UnresolvedCollection("orders")), ErrCodeUnresolvedCollection},
		{"PlainError", fmt.Errorf("plain"), ""},
		{"Nil", nil, ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := CodeOf(tc.err); got != tc.code {
				t.Errorf("expected code %q, got %q", tc.code, got)
			}
		})
	}
}

func TestIsCode_Success(t *testing.T) {
	err := StageNotFound("match", 2)
	if !IsCode(err, ErrCodeStageNotFound) {
		t.Error("expected IsCode to match STAGE_NOT_FOUND")
	}
	if IsCode(err, ErrCodeDuplicateStageName) {
		t.Error("expected IsCode to reject a different code")
	}
}

func TestViolations_Success(t *testing.T) {
	violations := []Violation{
		{Variable: "A", Message: "is required"},
		{Variable: "B", Message: "must be a string"},
	}
	err := VariableValidation(violations)

	got := Violations(err)
	if len(got) != 2 {
		t.Fatalf("expected 2 violations, got %d", len(got))
	}
	if got[0].Variable != "A" || got[1].Variable != "B" {
		t.Errorf("expected violations in order, got %v", got)
	}

	wrapped := fmt.Errorf("invoke: %w", err)
	if len(Violations(wrapped)) != 2 {
		t.Error("expected Violations to see through wrapping")
	}
}

func TestViolations_OtherError(t *testing.T) {
	if Violations(StageNameNotFound("x")) != nil {
		t.Error("expected nil violations for a non-validation error")
	}
	if Violations(fmt.Errorf("plain")) != nil {
		t.Error("expected nil violations for a plain error")
	}
}

func TestWrap_NilReturnsNil(t *testing.T) {
	if Wrap(nil) != nil {
		t.Error("Wrap(nil) should return nil")
	}
}

func TestWrap_AppErrorPassthrough(t *testing.T) {
	orig := StageNameNotFound("totals")
	got := Wrap(orig)
	if got != orig {
		t.Error("Wrap should return the original AppError unchanged")
	}
}

func TestWrap_PlainError(t *testing.T) {
	plain := fmt.Errorf("something broke")
	got := Wrap(plain)
	if got.Code != ErrCodeInternal {
		t.Errorf("expected INTERNAL_ERROR, got %s", got.Code)
	}
	if got.Cause != plain {
		t.Error("expected cause to be the original error")
	}
}

func TestViolation_String(t *testing.T) {
	v := Violation{Variable: "PAGE_NUM", Message: "must be a number"}
	if v.String() != "PAGE_NUM: must be a number" {
		t.Errorf("unexpected violation string: %q", v.String())
	}
}

func TestAppError_ImplementsErrorInterface(t *testing.T) {
	var err error = CursorConsumed()
	if err.Error() == "" {
		t.Error("Error() should not be empty")
	}

	var appErr *AppError
	if !stderrors.As(err, &appErr) {
		t.Error("stderrors.As should work with AppError")
	}
}
