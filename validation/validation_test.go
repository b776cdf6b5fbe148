package validation

import (
	"strings"
	"testing"

	"github.com/speedytwenty/mongodb-aggregate/errors"
)

func TestValidatorAddViolation(t *testing.T) {
	v := New()
	if v.HasViolations() {
		t.Error("expected no violations on a fresh validator")
	}

	v.AddViolation("KEYWORDS", "is required")
	if !v.HasViolations() {
		t.Error("expected violations after AddViolation")
	}
	if len(v.Violations()) != 1 {
		t.Fatalf("expected 1 violation, got %d", len(v.Violations()))
	}
	if v.Violations()[0].Variable != "KEYWORDS" {
		t.Errorf("expected variable KEYWORDS, got %q", v.Violations()[0].Variable)
	}
}

func TestValidatorCustom(t *testing.T) {
	v := New()
	v.Custom(true, "A", "should not be recorded")
	if v.HasViolations() {
		t.Error("expected no violation when condition holds")
	}

	v.Custom(false, "B", "must be positive")
	if !v.HasViolations() {
		t.Error("expected violation when condition fails")
	}
}

func TestValidatorOneOf(t *testing.T) {
	v := New()
	v.OneOf("SORT_DIRECTION", float64(1), []any{float64(1), float64(-1)})
	if v.HasViolations() {
		t.Errorf("expected no violation for allowed value, got %v", v.Violations())
	}

	v2 := New()
	v2.OneOf("SORT_DIRECTION", float64(2), []any{float64(1), float64(-1)})
	if !v2.HasViolations() {
		t.Fatal("expected violation for disallowed value")
	}
	if !strings.Contains(v2.Violations()[0].Message, "must be one of") {
		t.Errorf("unexpected message %q", v2.Violations()[0].Message)
	}
}

func TestValidatorCollectsAll(t *testing.T) {
	v := New().
		AddViolation("A", "is required").
		AddViolation("B", "must be a number").
		AddViolation("C", "must be one of: x, y")

	if len(v.Violations()) != 3 {
		t.Fatalf("expected all 3 violations collected, got %d", len(v.Violations()))
	}
}

func TestValidatorValidate(t *testing.T) {
	v := New()
	if err := v.Validate(); err != nil {
		t.Errorf("expected nil error without violations, got %v", err)
	}

	v.AddViolation("PAGE_NUM", "must be a number")
	v.AddViolation("KEYWORDS", "is required")
	appErr := v.Validate()
	if appErr == nil {
		t.Fatal("expected error with violations")
	}
	if appErr.Code != errors.ErrCodeVariableValidation {
		t.Errorf("expected VARIABLE_VALIDATION, got %s", appErr.Code)
	}
	got := errors.Violations(appErr)
	if len(got) != 2 {
		t.Fatalf("expected 2 violations in error, got %d", len(got))
	}
	if got[0].Variable != "PAGE_NUM" || got[1].Variable != "KEYWORDS" {
		t.Errorf("expected violations in insertion order, got %v", got)
	}
}

type testSpec struct {
	Name string `json:"name" validate:"required"`
	Kind string `json:"kind" validate:"required,oneof=string number bool"`
}

func TestValidateStruct_Success(t *testing.T) {
	err := Validate(testSpec{Name: "KEYWORDS", Kind: "string"})
	if err != nil {
		t.Errorf("expected no error for valid spec, got %v", err)
	}
}

func TestValidateStruct_ReportsAllFields(t *testing.T) {
	err := Validate(testSpec{})
	if err == nil {
		t.Fatal("expected error for empty spec")
	}

	appErr, ok := errors.AsAppError(err)
	if !ok {
		t.Fatal("expected an AppError")
	}
	if appErr.Code != errors.ErrCodeInvalidDefinition {
		t.Errorf("expected INVALID_DEFINITION, got %s", appErr.Code)
	}

	fields, ok := appErr.Details["fields"].([]errors.Violation)
	if !ok {
		t.Fatal("expected field violations in details")
	}
	if len(fields) != 2 {
		t.Errorf("expected violations for name and kind, got %v", fields)
	}
}

func TestValidateStruct_OneOf(t *testing.T) {
	err := Validate(testSpec{Name: "X", Kind: "uuid"})
	if err == nil {
		t.Fatal("expected error for disallowed kind")
	}
	if !strings.Contains(err.Error(), "must be one of") {
		t.Errorf("expected oneof message, got %q", err.Error())
	}
}

func TestToSnakeCase(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Name", "name"},
		{"EnumValues", "enum_values"},
		{"maxRetries", "max_retries"},
		{"URI", "u_r_i"},
	}
	for _, tc := range tests {
		if got := toSnakeCase(tc.in); got != tc.want {
			t.Errorf("toSnakeCase(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
