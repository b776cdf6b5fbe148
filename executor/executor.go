package executor

import (
	"github.com/google/uuid"

	"github.com/speedytwenty/mongodb-aggregate/collection"
	"github.com/speedytwenty/mongodb-aggregate/logger"
	"github.com/speedytwenty/mongodb-aggregate/pipeline"
	"github.com/speedytwenty/mongodb-aggregate/template"
)

// Executor turns pipelines and definitions into cursors backed by the
// collection registry. It holds no per-aggregation state; one executor
// serves any number of concurrent cursors.
type Executor struct {
	registry *collection.Registry
	log      *logger.Logger
}

// Option configures an Executor.
type Option func(*Executor)

// WithLogger sets the logger used for per-invocation log lines. The
// default discards everything.
func WithLogger(log *logger.Logger) Option {
	return func(e *Executor) {
		e.log = log
	}
}

// New creates an executor over a collection registry. A nil registry is
// replaced with an empty one, so cursors built from explicit providers
// still work; logical keys then fail with UNRESOLVED_COLLECTION at the
// terminal call.
func New(registry *collection.Registry, opts ...Option) *Executor {
	if registry == nil {
		registry = collection.NewRegistry()
	}
	e := &Executor{
		registry: registry,
		log:      logger.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Collection creates a cursor that will run the pipeline against an
// explicitly supplied provider, bypassing the registry for the target.
// Nothing is validated and no I/O happens until a terminal call.
func (e *Executor) Collection(p collection.Provider, pl *pipeline.Pipeline) *Cursor {
	return e.newCursor(func(c *Cursor) {
		c.provider = p
		c.pl = pl
	})
}

// Pipeline creates a cursor that will run the pipeline against the
// provider registered under the given logical key. The key is resolved
// at the terminal call, so registering or swapping the provider after
// cursor creation still takes effect.
func (e *Executor) Pipeline(key string, pl *pipeline.Pipeline) *Cursor {
	return e.newCursor(func(c *Cursor) {
		c.key = key
		c.pl = pl
	})
}

// Definition creates a cursor for one invocation of a definition. The
// invocation is spawned here, so the cursor's Pipeline is a live clone
// the caller may edit until a terminal call; raw input is held
// unvalidated until then.
func (e *Executor) Definition(def *template.Definition, raw map[string]any) *Cursor {
	inv := def.NewInvocation(raw)
	return e.newCursor(func(c *Cursor) {
		c.inv = inv
		c.pl = inv.Pipeline()
	})
}

func (e *Executor) newCursor(init func(*Cursor)) *Cursor {
	c := &Cursor{
		exec: e,
		id:   uuid.NewString(),
	}
	init(c)
	return c
}
