package template

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/huandu/go-clone"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/speedytwenty/mongodb-aggregate/errors"
	"github.com/speedytwenty/mongodb-aggregate/validation"
)

// VarKind identifies the value type a template variable accepts.
type VarKind string

const (
	VarString     VarKind = "string"
	VarNumber     VarKind = "number"
	VarBool       VarKind = "bool"
	VarEnum       VarKind = "enum"
	VarStringList VarKind = "string_list"
	VarNumberList VarKind = "number_list"
)

// Variable declares one typed input slot of an aggregation definition.
// Enum lists the admissible values for VarEnum variables and must be
// empty for every other kind.
type Variable struct {
	Name     string  `json:"name" validate:"required"`
	Kind     VarKind `json:"kind" validate:"required,oneof=string number bool enum string_list number_list"`
	Required bool    `json:"required"`
	Default  any     `json:"default,omitempty"`
	Enum     []any   `json:"enum,omitempty"`
}

// normalize checks a raw value against the variable's kind and returns it
// in canonical form: scalars keep their native Go type, lists become
// bson.A. The message is empty on success.
func (v Variable) normalize(raw any) (any, string) {
	switch v.Kind {
	case VarString:
		s, ok := raw.(string)
		if !ok {
			return nil, fmt.Sprintf("must be a string, got %T", raw)
		}
		return s, ""
	case VarNumber:
		if !isNumeric(raw) {
			return nil, fmt.Sprintf("must be a number, got %T", raw)
		}
		return raw, ""
	case VarBool:
		b, ok := raw.(bool)
		if !ok {
			return nil, fmt.Sprintf("must be a bool, got %T", raw)
		}
		return b, ""
	case VarEnum:
		for _, member := range v.Enum {
			if reflect.DeepEqual(raw, member) {
				return raw, ""
			}
		}
		return nil, "must be one of: " + renderEnum(v.Enum)
	case VarStringList:
		list, ok := toList(raw)
		if !ok {
			return nil, fmt.Sprintf("must be a list of strings, got %T", raw)
		}
		out := make(bson.A, len(list))
		for i, el := range list {
			s, ok := el.(string)
			if !ok {
				return nil, fmt.Sprintf("element %d must be a string, got %T", i, el)
			}
			out[i] = s
		}
		return out, ""
	case VarNumberList:
		list, ok := toList(raw)
		if !ok {
			return nil, fmt.Sprintf("must be a list of numbers, got %T", raw)
		}
		out := make(bson.A, len(list))
		for i, el := range list {
			if !isNumeric(el) {
				return nil, fmt.Sprintf("element %d must be a number, got %T", i, el)
			}
			out[i] = el
		}
		return out, ""
	}
	return nil, fmt.Sprintf("has unknown kind %q", v.Kind)
}

// specProblems reports declaration-level defects beyond struct-tag shape.
func (v Variable) specProblems() []string {
	label := fmt.Sprintf("variable %q", v.Name)
	var problems []string
	if v.Kind == VarEnum && len(v.Enum) == 0 {
		problems = append(problems, label+" declares no enum values")
	}
	if v.Kind != VarEnum && len(v.Enum) > 0 {
		problems = append(problems, label+" sets enum values but is not an enum")
	}
	if v.Required && v.Default != nil {
		problems = append(problems, label+" is required and cannot take a default")
	}
	if len(problems) > 0 {
		return problems
	}
	if v.Default != nil {
		if _, msg := v.normalize(v.Default); msg != "" {
			problems = append(problems, label+" default "+msg)
		}
	}
	return problems
}

// Variables is an ordered, immutable set of variable declarations.
type Variables struct {
	order []string
	specs map[string]Variable
}

// NewVariables validates the declarations and freezes them into a set.
// Every declaration defect is collected and reported in one
// INVALID_DEFINITION error: duplicate names, malformed kinds, enum kinds
// without values, and defaults that do not satisfy their own kind.
func NewVariables(specs ...Variable) (*Variables, error) {
	vars := &Variables{specs: make(map[string]Variable, len(specs))}
	var problems []string
	for i, spec := range specs {
		if err := validation.Validate(spec); err != nil {
			if appErr, ok := errors.AsAppError(err); ok {
				problems = append(problems, fmt.Sprintf("variable %d: %s", i, appErr.Message))
			} else {
				problems = append(problems, fmt.Sprintf("variable %d: %v", i, err))
			}
			continue
		}
		if _, dup := vars.specs[spec.Name]; dup {
			problems = append(problems, fmt.Sprintf("variable %q declared more than once", spec.Name))
			continue
		}
		if defects := spec.specProblems(); len(defects) > 0 {
			problems = append(problems, defects...)
			continue
		}
		if spec.Default != nil {
			norm, _ := spec.normalize(spec.Default)
			spec.Default = norm
		}
		vars.order = append(vars.order, spec.Name)
		vars.specs[spec.Name] = spec
	}
	if len(problems) > 0 {
		return nil, errors.InvalidDefinition(strings.Join(problems, "; "))
	}
	return vars, nil
}

// Get returns the declaration for a variable name.
func (vs *Variables) Get(name string) (Variable, bool) {
	spec, ok := vs.specs[name]
	return spec, ok
}

// Names returns the variable names in declaration order.
func (vs *Variables) Names() []string {
	return append([]string(nil), vs.order...)
}

// Len returns the number of declared variables.
func (vs *Variables) Len() int { return len(vs.order) }

// Resolve validates raw invocation input against the declarations and
// produces the resolved inputs for one invocation. Validation is batch:
// every violation is collected before failing, so one failed invocation
// reports all of its problems together. Absent optionals take their
// default, or nil when none is declared; keys naming no declared variable
// are violations. No partial result is ever returned.
func (vs *Variables) Resolve(raw map[string]any) (Inputs, error) {
	check := validation.New()
	out := make(Inputs, len(vs.order))
	for _, name := range vs.order {
		spec := vs.specs[name]
		val, present := raw[name]
		if !present || val == nil {
			if spec.Required {
				check.AddViolation(name, "required variable is missing")
				continue
			}
			if spec.Default == nil {
				out[name] = nil
				continue
			}
			// Defaults are copied so invocations never share state.
			out[name] = clone.Clone(spec.Default)
			continue
		}
		norm, msg := spec.normalize(val)
		if msg != "" {
			check.AddViolation(name, msg)
			continue
		}
		out[name] = norm
	}

	var unknown []string
	for name := range raw {
		if _, ok := vs.specs[name]; !ok {
			unknown = append(unknown, name)
		}
	}
	sort.Strings(unknown)
	for _, name := range unknown {
		check.AddViolation(name, "is not a declared variable")
	}

	if appErr := check.Validate(); appErr != nil {
		return nil, appErr
	}
	return out, nil
}

func isNumeric(v any) bool {
	switch v.(type) {
	case int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return true
	}
	return false
}

func toList(raw any) ([]any, bool) {
	switch l := raw.(type) {
	case bson.A:
		return []any(l), true
	case []any:
		return l, true
	case []string:
		out := make([]any, len(l))
		for i, s := range l {
			out[i] = s
		}
		return out, true
	case []int:
		out := make([]any, len(l))
		for i, n := range l {
			out[i] = n
		}
		return out, true
	case []float64:
		out := make([]any, len(l))
		for i, n := range l {
			out[i] = n
		}
		return out, true
	}
	return nil, false
}

func renderEnum(members []any) string {
	parts := make([]string, len(members))
	for i, m := range members {
		parts[i] = fmt.Sprintf("%v", m)
	}
	return strings.Join(parts, ", ")
}
