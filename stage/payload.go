package stage

import (
	"regexp"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// TokenSigil prefixes placeholder tokens in string payload positions.
const TokenSigil = "$$$"

var tokenPattern = regexp.MustCompile(`\$\$\$([A-Za-z_][A-Za-z0-9_]*)`)

// TokenFor returns the placeholder token for a variable name, e.g.
// TokenFor("PAGE_NUM") == "$$$PAGE_NUM".
func TokenFor(name string) string {
	return TokenSigil + name
}

// TokensIn returns the names of all placeholder tokens in s, in order of
// appearance. Duplicates are kept.
func TokensIn(s string) []string {
	matches := tokenPattern.FindAllStringSubmatch(s, -1)
	if len(matches) == 0 {
		return nil
	}
	names := make([]string, len(matches))
	for i, m := range matches {
		names[i] = m[1]
	}
	return names
}

// WholeToken returns the variable name when s is exactly one placeholder
// token and nothing else.
func WholeToken(s string) (string, bool) {
	m := tokenPattern.FindStringSubmatch(s)
	if m == nil || m[0] != s {
		return "", false
	}
	return m[1], true
}

// ReplaceTokens substitutes every token in s using repl, which maps a
// variable name to its textual form.
func ReplaceTokens(s string, repl func(name string) string) string {
	return tokenPattern.ReplaceAllStringFunc(s, func(tok string) string {
		return repl(tok[len(TokenSigil):])
	})
}

// RewriteValues walks a payload depth-first and applies fn to every leaf
// value, replacing it with fn's result. Documents and arrays are rebuilt
// with structure, key order (for bson.D), and element order preserved; the
// inputs are never mutated. Leaves include strings, numbers, booleans,
// CollectionRef markers, and any other non-container value.
func RewriteValues(payload any, fn func(any) (any, error)) (any, error) {
	switch p := payload.(type) {
	case bson.M:
		out := make(bson.M, len(p))
		for k, v := range p {
			nv, err := RewriteValues(v, fn)
			if err != nil {
				return nil, err
			}
			out[k] = nv
		}
		return out, nil
	case map[string]any:
		out := make(map[string]any, len(p))
		for k, v := range p {
			nv, err := RewriteValues(v, fn)
			if err != nil {
				return nil, err
			}
			out[k] = nv
		}
		return out, nil
	case bson.D:
		out := make(bson.D, 0, len(p))
		for _, e := range p {
			nv, err := RewriteValues(e.Value, fn)
			if err != nil {
				return nil, err
			}
			out = append(out, bson.E{Key: e.Key, Value: nv})
		}
		return out, nil
	case bson.A:
		out := make(bson.A, 0, len(p))
		for _, v := range p {
			nv, err := RewriteValues(v, fn)
			if err != nil {
				return nil, err
			}
			out = append(out, nv)
		}
		return out, nil
	case []any:
		out := make([]any, 0, len(p))
		for _, v := range p {
			nv, err := RewriteValues(v, fn)
			if err != nil {
				return nil, err
			}
			out = append(out, nv)
		}
		return out, nil
	case []string:
		// Elements may substitute to non-string values, so the slice
		// widens to bson.A.
		out := make(bson.A, 0, len(p))
		for _, v := range p {
			nv, err := RewriteValues(v, fn)
			if err != nil {
				return nil, err
			}
			out = append(out, nv)
		}
		return out, nil
	default:
		return fn(payload)
	}
}

// WalkValues visits every leaf value in a payload without rewriting it.
func WalkValues(payload any, fn func(any) error) error {
	_, err := RewriteValues(payload, func(v any) (any, error) {
		return v, fn(v)
	})
	return err
}
