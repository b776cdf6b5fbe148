package testutil

import (
	"context"
	"fmt"
	"reflect"
	"sync"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/speedytwenty/mongodb-aggregate/collection"
	"github.com/speedytwenty/mongodb-aggregate/observability"
)

// Fake is an in-memory collection.Provider that records every submitted
// pipeline and returns scripted documents or a scripted error.
type Fake struct {
	mu        sync.Mutex
	name      string
	documents []bson.M
	err       error
	cursorErr error
	submitted [][]bson.D
}

// Ensure Fake satisfies the contracts real providers do.
var _ collection.Provider = (*Fake)(nil)
var _ observability.HealthChecker = (*Fake)(nil)

// NewFake creates a fake provider for the given collection name.
func NewFake(name string) *Fake {
	return &Fake{name: name}
}

// WithDocuments sets the documents every Aggregate call returns.
func (f *Fake) WithDocuments(docs ...bson.M) *Fake {
	f.documents = docs
	return f
}

// WithError makes every Aggregate call fail with err.
func (f *Fake) WithError(err error) *Fake {
	f.err = err
	return f
}

// WithCursorError makes returned cursors fail with err once their
// documents are drained, simulating a mid-stream failure.
func (f *Fake) WithCursorError(err error) *Fake {
	f.cursorErr = err
	return f
}

// Name returns the collection name.
func (f *Fake) Name() string { return f.name }

// Aggregate records the submitted stage documents and returns a cursor over
// the scripted documents, or the scripted error.
func (f *Fake) Aggregate(_ context.Context, stages []bson.D) (collection.Cursor, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.submitted = append(f.submitted, stages)
	if f.err != nil {
		return nil, f.err
	}
	cur := NewFakeCursor(f.documents...)
	cur.failAfter = f.cursorErr
	return cur, nil
}

// Calls returns the number of Aggregate calls received.
func (f *Fake) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.submitted)
}

// Submitted returns the stage documents of every call, in call order.
func (f *Fake) Submitted() [][]bson.D {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([][]bson.D, len(f.submitted))
	copy(out, f.submitted)
	return out
}

// LastStages returns the stage documents of the most recent call, or nil
// when no call happened.
func (f *Fake) LastStages() []bson.D {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.submitted) == 0 {
		return nil
	}
	return f.submitted[len(f.submitted)-1]
}

// CheckHealth reports the fake as up, or down when scripted to fail.
func (f *Fake) CheckHealth(_ context.Context) observability.Health {
	f.mu.Lock()
	defer f.mu.Unlock()

	h := observability.Health{Name: f.name, Status: observability.HealthStatusUp}
	if f.err != nil {
		h.Status = observability.HealthStatusDown
		h.Message = f.err.Error()
	}
	return h
}

// FakeCursor iterates a fixed document slice through the collection.Cursor
// interface. Documents round-trip through BSON on decode, matching the
// driver's semantics.
type FakeCursor struct {
	documents []bson.M
	pos       int
	closed    bool
	failAfter error
}

var _ collection.Cursor = (*FakeCursor)(nil)

// NewFakeCursor creates a cursor over the given documents.
func NewFakeCursor(docs ...bson.M) *FakeCursor {
	return &FakeCursor{documents: docs}
}

// Next advances to the next document.
func (c *FakeCursor) Next(_ context.Context) bool {
	if c.closed || c.pos >= len(c.documents) {
		return false
	}
	c.pos++
	return true
}

// Decode unmarshals the current document into v.
func (c *FakeCursor) Decode(v any) error {
	if c.pos == 0 || c.pos > len(c.documents) {
		return fmt.Errorf("no current document")
	}
	raw, err := bson.Marshal(c.documents[c.pos-1])
	if err != nil {
		return err
	}
	return bson.Unmarshal(raw, v)
}

// All decodes every remaining document into results, which must be a
// pointer to a slice, and closes the cursor.
func (c *FakeCursor) All(_ context.Context, results any) error {
	if c.closed {
		return fmt.Errorf("cursor closed")
	}

	resultsVal := reflect.ValueOf(results)
	if resultsVal.Kind() != reflect.Pointer || resultsVal.Elem().Kind() != reflect.Slice {
		return fmt.Errorf("results must be a pointer to a slice, got %T", results)
	}

	sliceVal := resultsVal.Elem()
	out := reflect.MakeSlice(sliceVal.Type(), 0, len(c.documents)-c.pos)
	for _, doc := range c.documents[c.pos:] {
		raw, err := bson.Marshal(doc)
		if err != nil {
			return err
		}
		elem := reflect.New(sliceVal.Type().Elem())
		if err := bson.Unmarshal(raw, elem.Interface()); err != nil {
			return err
		}
		out = reflect.Append(out, elem.Elem())
	}

	c.pos = len(c.documents)
	c.closed = true
	sliceVal.Set(out)
	return c.failAfter
}

// Close marks the cursor closed.
func (c *FakeCursor) Close(_ context.Context) error {
	c.closed = true
	return nil
}

// Err returns the scripted failure once iteration has drained.
func (c *FakeCursor) Err() error {
	if c.pos >= len(c.documents) {
		return c.failAfter
	}
	return nil
}

// Registry creates a collection.Registry with every fake registered under
// its collection name.
func Registry(fakes ...*Fake) *collection.Registry {
	reg := collection.NewRegistry()
	for _, f := range fakes {
		reg.Register(f.Name(), f)
	}
	return reg
}
