package validation

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/speedytwenty/mongodb-aggregate/errors"
)

// Validator collects template-variable violations. Checks never short
// circuit: every violated rule is recorded so one invocation reports all
// of its problems together.
type Validator struct {
	violations []errors.Violation
}

// New creates a new Validator.
func New() *Validator {
	return &Validator{
		violations: make([]errors.Violation, 0),
	}
}

// AddViolation records a violation for a variable.
func (v *Validator) AddViolation(variable, message string) *Validator {
	v.violations = append(v.violations, errors.Violation{
		Variable: variable,
		Message:  message,
	})
	return v
}

// Custom records a violation when the condition does not hold.
func (v *Validator) Custom(condition bool, variable, message string) *Validator {
	if !condition {
		v.AddViolation(variable, message)
	}
	return v
}

// OneOf checks that a value is one of the allowed values. Callers are
// expected to pass values in canonical form; comparison is deep equality.
func (v *Validator) OneOf(variable string, value any, allowed []any) *Validator {
	for _, a := range allowed {
		if reflect.DeepEqual(value, a) {
			return v
		}
	}
	rendered := make([]string, len(allowed))
	for i, a := range allowed {
		rendered[i] = fmt.Sprintf("%v", a)
	}
	v.AddViolation(variable, fmt.Sprintf("must be one of: %s", strings.Join(rendered, ", ")))
	return v
}

// HasViolations returns true if any violations were recorded.
func (v *Validator) HasViolations() bool {
	return len(v.violations) > 0
}

// Violations returns all recorded violations.
func (v *Validator) Violations() []errors.Violation {
	return v.violations
}

// Validate returns a batch AppError if violations were recorded, nil
// otherwise.
func (v *Validator) Validate() *errors.AppError {
	if !v.HasViolations() {
		return nil
	}
	return errors.VariableValidation(v.violations)
}
