// Package validation provides batch validation for template variables and
// definition specs.
//
// It supports both struct tag validation (using the validator library) and
// programmatic validation with violation collection. Violations are always
// collected in full: one invocation reports every problem together rather
// than failing on the first.
//
// # Struct Tag Validation
//
//	type Spec struct {
//	    Name string `validate:"required"`
//	    Kind string `validate:"required,oneof=string number bool"`
//	}
//	err := validation.Validate(spec)
//
// # Programmatic Validation
//
//	v := validation.New()
//	v.Custom(value != nil, "KEYWORDS", "is required")
//	if appErr := v.Validate(); appErr != nil {
//	    return appErr
//	}
package validation
