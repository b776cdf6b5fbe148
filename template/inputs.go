package template

import (
	"fmt"
	"strconv"
	"strings"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/speedytwenty/mongodb-aggregate/errors"
	"github.com/speedytwenty/mongodb-aggregate/pipeline"
	"github.com/speedytwenty/mongodb-aggregate/stage"
)

// Inputs holds the resolved variable values of one invocation. A fresh
// map is produced per invocation and never shared. Inputs is the
// substituter bound to the invocation's pipeline: placeholder tokens in
// stage payloads resolve directly from it, never through other tokens.
type Inputs map[string]any

var _ pipeline.Substituter = Inputs(nil)

// Has reports whether the variable was declared for this invocation.
func (in Inputs) Has(name string) bool {
	_, ok := in[name]
	return ok
}

// Value returns the raw resolved value, nil for absent optionals.
func (in Inputs) Value(name string) any { return in[name] }

// String returns the value as a string, or "" when it is not one.
func (in Inputs) String(name string) string {
	s, _ := in[name].(string)
	return s
}

// Bool returns the value as a bool, or false when it is not one.
func (in Inputs) Bool(name string) bool {
	b, _ := in[name].(bool)
	return b
}

// Int returns a numeric value as an int, or 0 when it is not numeric.
func (in Inputs) Int(name string) int {
	switch n := in[name].(type) {
	case int:
		return n
	case int8:
		return int(n)
	case int16:
		return int(n)
	case int32:
		return int(n)
	case int64:
		return int(n)
	case uint:
		return int(n)
	case uint8:
		return int(n)
	case uint16:
		return int(n)
	case uint32:
		return int(n)
	case uint64:
		return int(n)
	case float32:
		return int(n)
	case float64:
		return int(n)
	}
	return 0
}

// Float returns a numeric value as a float64, or 0 when it is not numeric.
func (in Inputs) Float(name string) float64 {
	switch n := in[name].(type) {
	case int:
		return float64(n)
	case int8:
		return float64(n)
	case int16:
		return float64(n)
	case int32:
		return float64(n)
	case int64:
		return float64(n)
	case uint:
		return float64(n)
	case uint8:
		return float64(n)
	case uint16:
		return float64(n)
	case uint32:
		return float64(n)
	case uint64:
		return float64(n)
	case float32:
		return float64(n)
	case float64:
		return n
	}
	return 0
}

// List returns a list value, or nil when the variable holds none.
func (in Inputs) List(name string) bson.A {
	l, _ := in[name].(bson.A)
	return l
}

// Strings returns a string-list value as a []string.
func (in Inputs) Strings(name string) []string {
	l, ok := in[name].(bson.A)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(l))
	for _, el := range l {
		if s, ok := el.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// Substitute rewrites placeholder tokens in a stage payload. A string
// that is exactly one token is replaced by the variable's native typed
// value; a token embedded in a larger string splices in the value's
// textual form, leaving the surrounding value a string. Tokens naming a
// variable outside this input set fail with UNKNOWN_VARIABLE.
func (in Inputs) Substitute(payload any) (any, error) {
	return stage.RewriteValues(payload, in.substituteLeaf)
}

func (in Inputs) substituteLeaf(v any) (any, error) {
	s, ok := v.(string)
	if !ok || !strings.Contains(s, stage.TokenSigil) {
		return v, nil
	}
	if name, whole := stage.WholeToken(s); whole {
		val, declared := in[name]
		if !declared {
			return nil, errors.UnknownVariable(name)
		}
		return val, nil
	}
	var unknown []string
	out := stage.ReplaceTokens(s, func(name string) string {
		val, declared := in[name]
		if !declared {
			unknown = append(unknown, name)
			return ""
		}
		return textOf(val)
	})
	if len(unknown) > 0 {
		return nil, errors.UnknownVariable(unknown...)
	}
	return out, nil
}

// textOf renders a resolved value for in-string interpolation. Numbers
// drop insignificant fraction digits, bools render true/false, lists
// join their elements with commas.
func textOf(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bson.A:
		parts := make([]string, len(t))
		for i, el := range t {
			parts[i] = textOf(el)
		}
		return strings.Join(parts, ",")
	case []string:
		return strings.Join(t, ",")
	case []any:
		parts := make([]string, len(t))
		for i, el := range t {
			parts[i] = textOf(el)
		}
		return strings.Join(parts, ",")
	default:
		return fmt.Sprintf("%v", t)
	}
}
