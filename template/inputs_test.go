package template

import (
	"reflect"
	"testing"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/speedytwenty/mongodb-aggregate/errors"
)

func TestSubstitute_WholeTokenKeepsNativeType(t *testing.T) {
	in := Inputs{
		"PAGE_NUM":   3,
		"KEYWORDS":   "shoes",
		"CATEGORIES": bson.A{"c1", "c2"},
		"DRAFTS":     true,
		"RATIO":      0.25,
	}

	tests := []struct {
		name    string
		payload any
		want    any
	}{
		{"number", "$$$PAGE_NUM", 3},
		{"string", "$$$KEYWORDS", "shoes"},
		{"list", "$$$CATEGORIES", bson.A{"c1", "c2"}},
		{"bool", "$$$DRAFTS", true},
		{"float", "$$$RATIO", 0.25},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := in.Substitute(tc.payload)
			if err != nil {
				t.Fatalf("Substitute failed: %v", err)
			}
			if !reflect.DeepEqual(got, tc.want) {
				t.Errorf("got %v (%T), want %v (%T)", got, got, tc.want, tc.want)
			}
		})
	}
}

func TestSubstitute_EmbeddedTokenInterpolatesText(t *testing.T) {
	in := Inputs{
		"PAGE_NUM": 3,
		"REGION":   "west",
		"RATIO":    2.50,
		"DRAFTS":   false,
		"TAGS":     bson.A{"a", "b"},
	}

	tests := []struct {
		name    string
		payload any
		want    string
	}{
		{"number", "page-$$$PAGE_NUM", "page-3"},
		{"string", "idx-$$$REGION-v2", "idx-west-v2"},
		{"float trims zeros", "r=$$$RATIO", "r=2.5"},
		{"bool", "drafts:$$$DRAFTS", "drafts:false"},
		{"list joins", "tags[$$$TAGS]", "tags[a,b]"},
		{"two tokens", "$$$REGION-$$$PAGE_NUM", "west-3"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := in.Substitute(tc.payload)
			if err != nil {
				t.Fatalf("Substitute failed: %v", err)
			}
			if got != tc.want {
				t.Errorf("got %v, want %q", got, tc.want)
			}
		})
	}
}

func TestSubstitute_WalksNestedPayloads(t *testing.T) {
	in := Inputs{"KEYWORDS": "shoes", "LIMIT": 20}

	payload := bson.M{
		"$and": bson.A{
			bson.M{"title": bson.M{"$regex": "$$$KEYWORDS", "$options": "i"}},
			bson.D{{Key: "cap", Value: "$$$LIMIT"}},
		},
	}
	got, err := in.Substitute(payload)
	if err != nil {
		t.Fatalf("Substitute failed: %v", err)
	}
	want := bson.M{
		"$and": bson.A{
			bson.M{"title": bson.M{"$regex": "shoes", "$options": "i"}},
			bson.D{{Key: "cap", Value: 20}},
		},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %#v, want %#v", got, want)
	}
}

func TestSubstitute_NoMacroRecursion(t *testing.T) {
	// A resolved value that happens to look like a token is data, not a
	// reference: it must come through literally.
	in := Inputs{"A": "$$$B", "B": "never"}

	got, err := in.Substitute(bson.M{"v": "$$$A"})
	if err != nil {
		t.Fatalf("Substitute failed: %v", err)
	}
	if got.(bson.M)["v"] != "$$$B" {
		t.Errorf("got %v, want literal $$$B", got.(bson.M)["v"])
	}
}

func TestSubstitute_UnknownVariable(t *testing.T) {
	in := Inputs{"KNOWN": 1}

	_, err := in.Substitute(bson.M{"a": "$$$MISSING"})
	if !errors.IsCode(err, errors.ErrCodeUnknownVariable) {
		t.Fatalf("expected UNKNOWN_VARIABLE, got %v", err)
	}

	_, err = in.Substitute("x-$$$ALSO_MISSING")
	if !errors.IsCode(err, errors.ErrCodeUnknownVariable) {
		t.Fatalf("expected UNKNOWN_VARIABLE for embedded token, got %v", err)
	}
}

func TestSubstitute_NilOptional(t *testing.T) {
	in := Inputs{"NOTE": nil}

	got, err := in.Substitute(bson.M{"note": "$$$NOTE"})
	if err != nil {
		t.Fatalf("Substitute failed: %v", err)
	}
	if got.(bson.M)["note"] != nil {
		t.Errorf("whole token of nil optional = %v, want nil", got.(bson.M)["note"])
	}

	text, err := in.Substitute("n:$$$NOTE")
	if err != nil {
		t.Fatalf("Substitute failed: %v", err)
	}
	if text != "n:" {
		t.Errorf("embedded nil optional = %q, want %q", text, "n:")
	}
}

func TestInputs_Accessors(t *testing.T) {
	in := Inputs{
		"S":  "shoes",
		"N":  int64(7),
		"F":  2.5,
		"B":  true,
		"L":  bson.A{"a", "b"},
		"NL": bson.A{1, 2},
	}

	if !in.Has("S") || in.Has("missing") {
		t.Error("Has misreported")
	}
	if in.Value("S") != "shoes" {
		t.Errorf("Value(S) = %v", in.Value("S"))
	}
	if in.String("S") != "shoes" || in.String("N") != "" {
		t.Error("String misreported")
	}
	if in.Int("N") != 7 || in.Int("F") != 2 || in.Int("S") != 0 {
		t.Error("Int misreported")
	}
	if in.Float("F") != 2.5 || in.Float("N") != 7 {
		t.Error("Float misreported")
	}
	if in.Bool("B") != true || in.Bool("S") != false {
		t.Error("Bool misreported")
	}
	if !reflect.DeepEqual(in.List("L"), bson.A{"a", "b"}) || in.List("S") != nil {
		t.Error("List misreported")
	}
	if !reflect.DeepEqual(in.Strings("L"), []string{"a", "b"}) {
		t.Errorf("Strings(L) = %v", in.Strings("L"))
	}
}
