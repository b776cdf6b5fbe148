package stage

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/huandu/go-clone"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/speedytwenty/mongodb-aggregate/errors"
)

// Stage is a single pipeline entry: a kind, an optional caller-assigned
// name, and an arbitrarily nested payload.
type Stage struct {
	kind    Kind
	name    string
	payload any
}

// New creates a stage after checking that the payload's shape fits the
// kind. Payloads containing placeholder tokens are accepted as-is since
// their final shape is only known after substitution.
func New(kind Kind, payload any) (*Stage, error) {
	return NewNamed(kind, payload, "")
}

// NewNamed creates a named stage. Name uniqueness is the owning pipeline's
// concern, not the stage's.
func NewNamed(kind Kind, payload any, name string) (*Stage, error) {
	if !kind.IsValid() {
		return nil, errors.InvalidStage(string(kind), "unknown stage kind")
	}
	if err := checkPayload(kind, payload); err != nil {
		return nil, err
	}
	return &Stage{kind: kind, name: name, payload: payload}, nil
}

// Kind returns the stage's operator family.
func (s *Stage) Kind() Kind { return s.kind }

// Name returns the caller-assigned name, or "" for unnamed stages.
func (s *Stage) Name() string { return s.name }

// Payload returns the live payload value, not a copy. Mutations through
// the returned value are visible in subsequent builds of the owning
// pipeline; this is the mechanism for retroactive editing.
func (s *Stage) Payload() any { return s.payload }

// SetPayload replaces the payload, applying the same shape check as New.
func (s *Stage) SetPayload(payload any) error {
	if err := checkPayload(s.kind, payload); err != nil {
		return err
	}
	s.payload = payload
	return nil
}

// Clone returns a deep copy of the stage. The copy's payload shares no
// state with the original, so mutating one never affects the other.
func (s *Stage) Clone() *Stage {
	return &Stage{kind: s.kind, name: s.name, payload: clone.Clone(s.payload)}
}

// Document returns the live payload as a bson.M for in-place field edits,
// or nil when the payload is not a document map.
//
//	pl.StageByName("matchOrders").Document()["orderStatus"] = "complete"
func (s *Stage) Document() bson.M {
	switch p := s.payload.(type) {
	case bson.M:
		return p
	case map[string]any:
		return bson.M(p)
	default:
		return nil
	}
}

func (s *Stage) String() string {
	if s.name != "" {
		return fmt.Sprintf("%s(%s)", s.kind.Operator(), s.name)
	}
	return s.kind.Operator()
}

// CollectionRef marks a logical collection reference inside a stage
// payload, e.g. the "from" of a lookup. It is resolved to a real
// collection name at invocation time, never at definition time, so test
// doubles can be swapped in per invocation.
type CollectionRef struct {
	Key string
}

// Collection returns a payload value referencing the logical collection key.
func Collection(key string) CollectionRef {
	return CollectionRef{Key: key}
}

// checkPayload rejects payloads whose coarse shape cannot fit the kind.
// It never inspects operator grammar inside documents; malformed operator
// payloads are the caller's responsibility.
func checkPayload(kind Kind, payload any) error {
	if payload == nil {
		return errors.InvalidStage(string(kind), "payload must not be nil")
	}
	if hasPlaceholderString(payload) {
		return nil
	}
	c := classOf(payload)
	if !kind.accepts(c) {
		return errors.InvalidStage(string(kind), fmt.Sprintf("payload must be %s, got %s", kind.wants(), c))
	}
	return nil
}

// hasPlaceholderString reports whether the payload itself is a string
// carrying a placeholder token.
func hasPlaceholderString(payload any) bool {
	s, ok := payload.(string)
	return ok && strings.Contains(s, TokenSigil)
}

func classOf(payload any) payloadClass {
	switch payload.(type) {
	case bson.M, map[string]any, bson.D:
		return classDocument
	case bson.A, []any, []string:
		return classArray
	case string:
		return classString
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return classNumber
	case CollectionRef:
		return classString
	}

	rv := reflect.ValueOf(payload)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return classOther
		}
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.Map, reflect.Struct:
		return classDocument
	case reflect.Slice, reflect.Array:
		return classArray
	case reflect.String:
		return classString
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return classNumber
	default:
		return classOther
	}
}
