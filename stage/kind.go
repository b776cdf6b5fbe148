package stage

import "strings"

// Kind identifies an aggregation stage operator family.
type Kind string

const (
	KindMatch       Kind = "match"
	KindUnwind      Kind = "unwind"
	KindLookup      Kind = "lookup"
	KindGroup       Kind = "group"
	KindSort        Kind = "sort"
	KindProject     Kind = "project"
	KindAddFields   Kind = "addFields"
	KindSet         Kind = "set"
	KindUnset       Kind = "unset"
	KindSkip        Kind = "skip"
	KindLimit       Kind = "limit"
	KindCount       Kind = "count"
	KindSample      Kind = "sample"
	KindSortByCount Kind = "sortByCount"
	KindFacet       Kind = "facet"
	KindReplaceRoot Kind = "replaceRoot"
)

// All returns all valid stage kinds.
func All() []Kind {
	return []Kind{
		KindMatch, KindUnwind, KindLookup, KindGroup, KindSort, KindProject,
		KindAddFields, KindSet, KindUnset, KindSkip, KindLimit, KindCount,
		KindSample, KindSortByCount, KindFacet, KindReplaceRoot,
	}
}

// IsValid reports whether the kind is known.
func (k Kind) IsValid() bool {
	for _, v := range All() {
		if k == v {
			return true
		}
	}
	return false
}

// Operator returns the stage operator key as it appears in a pipeline
// document, e.g. "$match".
func (k Kind) Operator() string {
	return "$" + string(k)
}

// KindFromOperator maps an operator key like "$match" back to its Kind.
// The boolean result is false for unknown operators.
func KindFromOperator(op string) (Kind, bool) {
	k := Kind(strings.TrimPrefix(op, "$"))
	if !k.IsValid() {
		return "", false
	}
	return k, true
}

// payloadClass is the coarse shape a stage kind accepts as its payload.
type payloadClass int

const (
	classDocument payloadClass = iota
	classArray
	classString
	classNumber
	classOther
)

func (c payloadClass) String() string {
	switch c {
	case classDocument:
		return "document"
	case classArray:
		return "array"
	case classString:
		return "string"
	case classNumber:
		return "number"
	default:
		return "value"
	}
}

// accepts reports whether the kind takes a payload of the given class.
func (k Kind) accepts(c payloadClass) bool {
	switch k {
	case KindSkip, KindLimit:
		return c == classNumber
	case KindCount:
		return c == classString
	case KindUnwind, KindSortByCount:
		return c == classDocument || c == classString
	case KindUnset:
		return c == classString || c == classArray
	default:
		return c == classDocument
	}
}

// wants describes the accepted payload classes for error messages.
func (k Kind) wants() string {
	switch k {
	case KindSkip, KindLimit:
		return "a number"
	case KindCount:
		return "a string"
	case KindUnwind, KindSortByCount:
		return "a document or string"
	case KindUnset:
		return "a string or array"
	default:
		return "a document"
	}
}
