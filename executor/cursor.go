package executor

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/speedytwenty/mongodb-aggregate/collection"
	"github.com/speedytwenty/mongodb-aggregate/errors"
	"github.com/speedytwenty/mongodb-aggregate/logger"
	"github.com/speedytwenty/mongodb-aggregate/observability"
	"github.com/speedytwenty/mongodb-aggregate/pipeline"
	"github.com/speedytwenty/mongodb-aggregate/stage"
	"github.com/speedytwenty/mongodb-aggregate/template"
)

// Cursor is a lazy handle on one aggregation. Creating it costs nothing:
// collections resolve, inputs validate, and the pipeline builds only when
// a terminal call (All or ForEach) runs, and the backing provider is
// called exactly once. Until then the pipeline behind the cursor stays
// live and editable; edits made after the terminal call have no effect.
//
// A cursor is spent by its first terminal call, successful or not.
// Further terminal calls fail with CURSOR_CONSUMED. A failed run never
// touches the definition, so a fresh cursor can retry with corrected
// input.
type Cursor struct {
	exec     *Executor
	id       string
	pl       *pipeline.Pipeline
	provider collection.Provider
	key      string
	inv      *template.Invocation
	consumed bool
	mu       sync.Mutex
}

// ID returns the invocation id carried in this cursor's log fields and
// span attributes.
func (c *Cursor) ID() string { return c.id }

// Pipeline returns the live pipeline behind the cursor. For declarative
// cursors this is the invocation's private clone; mutating it never
// reaches the definition.
func (c *Cursor) Pipeline() *pipeline.Pipeline { return c.pl }

// Invocation returns the underlying invocation for declarative cursors,
// nil for ad hoc ones. It gives access to phase handles and, after the
// terminal call, the resolved inputs.
func (c *Cursor) Invocation() *template.Invocation { return c.inv }

// All runs the aggregation and decodes the entire result set. The
// provider cursor is fully drained and released before All returns.
func (c *Cursor) All(ctx context.Context) ([]bson.M, error) {
	if err := c.consume(); err != nil {
		return nil, err
	}
	cur, err := c.execute(ctx)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	results := []bson.M{}
	if err := cur.All(ctx, &results); err != nil {
		return nil, c.fail(ctx, "decode", err)
	}
	return results, nil
}

// ForEach runs the aggregation and streams each document through fn,
// stopping at the first error. Errors returned by fn propagate
// unchanged; mid-stream transport failures surface after the last
// delivered document.
func (c *Cursor) ForEach(ctx context.Context, fn func(doc bson.M) error) error {
	if err := c.consume(); err != nil {
		return err
	}
	cur, err := c.execute(ctx)
	if err != nil {
		return err
	}
	defer cur.Close(ctx)

	for cur.Next(ctx) {
		var doc bson.M
		if err := cur.Decode(&doc); err != nil {
			return c.fail(ctx, "decode", err)
		}
		if err := fn(doc); err != nil {
			return err
		}
	}
	if err := cur.Err(); err != nil {
		return c.fail(ctx, "stream", err)
	}
	return nil
}

// consume flips the cursor to spent. Only the first caller wins; the
// provider can therefore never be called twice for one cursor.
func (c *Cursor) consume() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.consumed {
		return errors.CursorConsumed()
	}
	c.consumed = true
	return nil
}

// execute is the single finalization path shared by both terminals:
// resolve the target and every referenced collection, prepare the
// invocation (validate input, substitute placeholders, run the setup
// hook), build the stage documents, and make the one provider call.
func (c *Cursor) execute(ctx context.Context) (collection.Cursor, error) {
	start := time.Now()

	observability.SetSpanAttribute(ctx, observability.AttrInvocationID, c.id)
	if c.inv != nil {
		observability.SetSpanAttribute(ctx, observability.AttrDefinition, c.inv.Definition().Name())
	}

	target, err := c.resolveTarget()
	if err != nil {
		return nil, c.fail(ctx, "resolve", err)
	}
	if err := c.bindCollections(); err != nil {
		return nil, c.fail(ctx, "resolve", err)
	}
	if c.inv != nil {
		if err := c.inv.Prepare(); err != nil {
			return nil, c.fail(ctx, "prepare", err)
		}
	}

	docs, err := c.pl.Build()
	if err != nil {
		return nil, c.fail(ctx, "build", err)
	}

	cur, err := target.Aggregate(ctx, docs)
	if err != nil {
		return nil, c.fail(ctx, "aggregate", err)
	}
	c.exec.log.Debug("aggregation dispatched", map[string]interface{}{
		logger.FieldInvocationID: c.id,
		logger.FieldCollection:   target.Name(),
		logger.FieldStages:       len(docs),
		logger.FieldDuration:     time.Since(start).Milliseconds(),
	})
	return cur, nil
}

// resolveTarget picks the provider the aggregation runs against. An
// explicit provider wins; otherwise the logical key (for declarative
// cursors, the definition's target mapped through its collection
// bindings) is resolved against the registry.
func (c *Cursor) resolveTarget() (collection.Provider, error) {
	switch {
	case c.provider != nil:
		return c.provider, nil
	case c.inv != nil:
		def := c.inv.Definition()
		return c.exec.registry.Resolve(def.CollectionKey(def.Target()))
	default:
		return c.exec.registry.Resolve(c.key)
	}
}

// bindCollections resolves every collection reference currently in the
// pipeline, so a missing binding fails here rather than halfway through
// a build, then attaches a resolver for references the setup hook may
// add later.
func (c *Cursor) bindCollections() error {
	names := make(map[string]string)
	for _, key := range collectRefKeys(c.pl) {
		name, err := c.resolveRef(key)
		if err != nil {
			return err
		}
		names[key] = name
	}
	c.pl.BindCollections(func(key string) (string, error) {
		if name, ok := names[key]; ok {
			return name, nil
		}
		return c.resolveRef(key)
	})
	return nil
}

// resolveRef maps one logical reference to the backing collection name.
func (c *Cursor) resolveRef(key string) (string, error) {
	lookup := key
	if c.inv != nil {
		lookup = c.inv.Definition().CollectionKey(key)
	}
	p, err := c.exec.registry.Resolve(lookup)
	if err != nil {
		return "", err
	}
	return p.Name(), nil
}

func (c *Cursor) fail(ctx context.Context, op string, err error) error {
	observability.SetSpanError(ctx, err)
	c.exec.log.Error("aggregation failed", map[string]interface{}{
		logger.FieldInvocationID: c.id,
		logger.FieldOperation:    op,
		logger.FieldError:        err.Error(),
	})
	return err
}

// collectRefKeys gathers the distinct logical collection keys referenced
// by the pipeline's current payloads, in stable order.
func collectRefKeys(pl *pipeline.Pipeline) []string {
	seen := make(map[string]bool)
	var keys []string
	pl.ForEach(func(st *stage.Stage) {
		_ = stage.WalkValues(st.Payload(), func(v any) error {
			if ref, ok := v.(stage.CollectionRef); ok && !seen[ref.Key] {
				seen[ref.Key] = true
				keys = append(keys, ref.Key)
			}
			return nil
		})
	})
	sort.Strings(keys)
	return keys
}
