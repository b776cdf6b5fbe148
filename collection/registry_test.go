package collection

import (
	"context"
	"reflect"
	"testing"

	"github.com/speedytwenty/mongodb-aggregate/errors"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// fakeProvider is a minimal in-package double. The full capturing fake
// lives in collection/testutil.
type fakeProvider struct {
	name  string
	calls int
	err   error
}

func (p *fakeProvider) Name() string { return p.name }

func (p *fakeProvider) Aggregate(_ context.Context, _ []bson.D) (Cursor, error) {
	p.calls++
	if p.err != nil {
		return nil, p.err
	}
	return stubCursor{}, nil
}

type stubCursor struct{}

func (stubCursor) Next(context.Context) bool      { return false }
func (stubCursor) Decode(any) error               { return nil }
func (stubCursor) All(context.Context, any) error { return nil }
func (stubCursor) Close(context.Context) error    { return nil }
func (stubCursor) Err() error                     { return nil }

func TestRegistry_RegisterAndResolve(t *testing.T) {
	reg := NewRegistry()
	reg.Register("orders", &fakeProvider{name: "orders"})
	reg.Register("users", &fakeProvider{name: "users"})

	p, err := reg.Resolve("orders")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Name() != "orders" {
		t.Errorf("expected provider 'orders', got %q", p.Name())
	}
}

func TestRegistry_ResolveMiss(t *testing.T) {
	reg := NewRegistry()

	_, err := reg.Resolve("missing")
	if err == nil {
		t.Fatal("expected error for unregistered key")
	}
	if !errors.IsCode(err, errors.ErrCodeUnresolvedCollection) {
		t.Errorf("expected UNRESOLVED_COLLECTION, got %v", errors.CodeOf(err))
	}
	appErr, _ := errors.AsAppError(err)
	if appErr.Details["key"] != "missing" {
		t.Errorf("expected key detail 'missing', got %v", appErr.Details["key"])
	}
}

func TestRegistry_ReplaceBinding(t *testing.T) {
	reg := NewRegistry()
	reg.Register("orders", &fakeProvider{name: "first"})
	reg.Register("orders", &fakeProvider{name: "second"})

	p, err := reg.Resolve("orders")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Name() != "second" {
		t.Errorf("expected re-registration to replace binding, got %q", p.Name())
	}
	if reg.Len() != 1 {
		t.Errorf("expected 1 binding, got %d", reg.Len())
	}
}

func TestRegistry_Get(t *testing.T) {
	reg := NewRegistry()
	reg.Register("orders", &fakeProvider{name: "orders"})

	if _, ok := reg.Get("orders"); !ok {
		t.Error("expected Get to find registered key")
	}
	if _, ok := reg.Get("missing"); ok {
		t.Error("expected Get to miss unregistered key")
	}
}

func TestRegistry_KeysSorted(t *testing.T) {
	reg := NewRegistry()
	reg.Register("users", &fakeProvider{name: "users"})
	reg.Register("archive", &fakeProvider{name: "archive"})
	reg.Register("orders", &fakeProvider{name: "orders"})

	want := []string{"archive", "orders", "users"}
	if got := reg.Keys(); !reflect.DeepEqual(got, want) {
		t.Errorf("expected keys %v, got %v", want, got)
	}
}
