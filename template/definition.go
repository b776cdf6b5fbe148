package template

import (
	"fmt"

	"github.com/speedytwenty/mongodb-aggregate/errors"
	"github.com/speedytwenty/mongodb-aggregate/pipeline"
	"github.com/speedytwenty/mongodb-aggregate/stage"
	"github.com/speedytwenty/mongodb-aggregate/validation"
)

// HelperFunc is a named helper injected into a definition and callable
// from its setup hook. Helpers are plain dependencies: the hook reaches
// them only through the SetupContext, never through closure scope.
type HelperFunc func(args ...any) (any, error)

// SetupFunc is the per-invocation hook of a definition. It runs exactly
// once per invocation, after variable resolution and placeholder
// substitution and before the final build snapshot, and may mutate the
// invocation's pipeline based on the resolved inputs. It must stay
// synchronous and free of external I/O; builds are repeatable only if
// the hook is deterministic.
type SetupFunc func(sc *SetupContext) error

// Config declares an aggregation definition. Target names the logical
// collection the aggregation runs against; Collections maps the logical
// keys referenced inside stage payloads (stage.Collection) to registry
// keys, with unmapped keys passing through unchanged. Neither is a real
// collection name: resolution happens per invocation, so test doubles
// can stand in without touching the definition.
type Config struct {
	Name        string                `json:"name" validate:"required"`
	Target      string                `json:"target" validate:"required"`
	Collections map[string]string     `json:"collections,omitempty"`
	Variables   []Variable            `json:"variables,omitempty"`
	Setup       SetupFunc             `json:"-"`
	Helpers     map[string]HelperFunc `json:"-"`
}

// Definition is a reusable aggregation template: a frozen pipeline, its
// phase tags, variable declarations, collection bindings, and setup
// hook. A definition is immutable after construction and carries no
// per-invocation state, so it may serve any number of concurrent
// invocations; each one works on its own pipeline clone and input set.
type Definition struct {
	name        string
	target      string
	collections map[string]string
	vars        *Variables
	setup       SetupFunc
	helpers     map[string]HelperFunc
	template    *pipeline.Pipeline
	phaseIdx    map[string][]int
	phaseOrder  []string
}

// NewDefinition runs the builder function once and freezes the result.
// Construction fails outright, before any invocation exists, on a
// malformed config or variable set (INVALID_DEFINITION), a failed
// builder chain, an empty template, or a placeholder token referencing
// an undeclared variable (UNKNOWN_VARIABLE).
func NewDefinition(cfg Config, build BuildFunc) (*Definition, error) {
	if build == nil {
		return nil, errors.InvalidDefinition("a builder function is required")
	}
	if err := validation.Validate(cfg); err != nil {
		return nil, err
	}
	vars, err := NewVariables(cfg.Variables...)
	if err != nil {
		return nil, err
	}

	b := newBuilder()
	build(b)
	if err := b.Err(); err != nil {
		return nil, err
	}
	if b.pl.Len() == 0 {
		return nil, errors.InvalidDefinition("template produced no stages")
	}

	var undeclared []string
	for _, name := range ScanPipeline(b.pl) {
		if _, ok := vars.Get(name); !ok {
			undeclared = append(undeclared, name)
		}
	}
	if len(undeclared) > 0 {
		return nil, errors.UnknownVariable(undeclared...)
	}

	def := &Definition{
		name:        cfg.Name,
		target:      cfg.Target,
		collections: make(map[string]string, len(cfg.Collections)),
		vars:        vars,
		setup:       cfg.Setup,
		helpers:     make(map[string]HelperFunc, len(cfg.Helpers)),
		template:    b.pl,
		phaseIdx:    b.phases,
		phaseOrder:  b.order,
	}
	for key, target := range cfg.Collections {
		def.collections[key] = target
	}
	for name, fn := range cfg.Helpers {
		def.helpers[name] = fn
	}
	return def, nil
}

// Name returns the definition name.
func (d *Definition) Name() string { return d.name }

// Target returns the logical key of the collection the aggregation runs
// against.
func (d *Definition) Target() string { return d.target }

// Collections returns a copy of the logical-to-registry key bindings.
func (d *Definition) Collections() map[string]string {
	out := make(map[string]string, len(d.collections))
	for key, target := range d.collections {
		out[key] = target
	}
	return out
}

// CollectionKey maps a logical key referenced in a payload to its
// registry key. Unmapped keys pass through unchanged.
func (d *Definition) CollectionKey(key string) string {
	if target, ok := d.collections[key]; ok {
		return target
	}
	return key
}

// Variables returns the declared variable set.
func (d *Definition) Variables() *Variables { return d.vars }

// Phases returns the phase names in declaration order.
func (d *Definition) Phases() []string {
	return append([]string(nil), d.phaseOrder...)
}

// NewInvocation spawns an independent invocation of the definition: a
// fresh deep clone of the template pipeline, phase handles rebound onto
// the clone's stages, and the raw input held for resolution. Nothing is
// validated yet; Prepare runs at the terminal call so the invocation's
// pipeline stays editable until then.
func (d *Definition) NewInvocation(raw map[string]any) *Invocation {
	pl := d.template.Clone()
	nodes := pl.Stages()
	phases := make(map[string][]*stage.Stage, len(d.phaseIdx))
	for name, indexes := range d.phaseIdx {
		group := make([]*stage.Stage, len(indexes))
		for i, idx := range indexes {
			group[i] = nodes[idx]
		}
		phases[name] = group
	}
	rawCopy := make(map[string]any, len(raw))
	for name, val := range raw {
		rawCopy[name] = val
	}
	return &Invocation{def: d, pl: pl, raw: rawCopy, phases: phases}
}

// Invocation is one independent use of a definition. Its pipeline and
// inputs are private to it; nothing an invocation does reaches the
// definition or any sibling invocation.
type Invocation struct {
	def      *Definition
	pl       *pipeline.Pipeline
	raw      map[string]any
	phases   map[string][]*stage.Stage
	inputs   Inputs
	prepared bool
}

// Definition returns the owning definition.
func (inv *Invocation) Definition() *Definition { return inv.def }

// Pipeline returns the invocation's live pipeline. It stays mutable
// until the terminal call builds it.
func (inv *Invocation) Pipeline() *pipeline.Pipeline { return inv.pl }

// Inputs returns the resolved inputs, nil before Prepare has run.
func (inv *Invocation) Inputs() Inputs { return inv.inputs }

// Prepared reports whether Prepare has completed.
func (inv *Invocation) Prepared() bool { return inv.prepared }

// Phase returns the handle for a named phase of this invocation.
func (inv *Invocation) Phase(name string) (*Phase, error) {
	group, ok := inv.phases[name]
	if !ok {
		return nil, errors.PhaseNotFound(name)
	}
	return &Phase{name: name, pl: inv.pl, stages: group}, nil
}

// Prepare finalizes the invocation's inputs and pipeline content:
// resolve raw input against the variable declarations (batch, all
// violations at once), substitute placeholders in place across every
// stage payload, then run the setup hook. Prepare runs once; repeated
// calls are no-ops. A failed Prepare leaves the definition untouched
// and reusable; only this invocation is dead.
func (inv *Invocation) Prepare() error {
	if inv.prepared {
		return nil
	}
	in, err := inv.def.vars.Resolve(inv.raw)
	if err != nil {
		return err
	}
	inv.inputs = in
	inv.pl.Bind(in)
	if err := inv.pl.Substitute(); err != nil {
		return err
	}
	if inv.def.setup != nil {
		if err := inv.def.setup(&SetupContext{inv: inv}); err != nil {
			return err
		}
	}
	inv.prepared = true
	return nil
}

// SetupContext is the explicit context handed to a definition's setup
// hook: the invocation's resolved inputs, its live pipeline, its phase
// handles, and the definition's injected helpers.
type SetupContext struct {
	inv *Invocation
}

// Inputs returns the invocation's resolved inputs.
func (sc *SetupContext) Inputs() Inputs { return sc.inv.inputs }

// Pipeline returns the invocation's live pipeline.
func (sc *SetupContext) Pipeline() *pipeline.Pipeline { return sc.inv.pl }

// Phase returns the handle for a named phase.
func (sc *SetupContext) Phase(name string) (*Phase, error) {
	return sc.inv.Phase(name)
}

// Helper returns a named helper from the definition's helper table.
func (sc *SetupContext) Helper(name string) (HelperFunc, bool) {
	fn, ok := sc.inv.def.helpers[name]
	return fn, ok
}

// Call invokes a named helper. An unregistered name is a definition
// defect and fails with INVALID_DEFINITION.
func (sc *SetupContext) Call(name string, args ...any) (any, error) {
	fn, ok := sc.inv.def.helpers[name]
	if !ok {
		return nil, errors.InvalidDefinition(fmt.Sprintf("helper %q is not registered", name))
	}
	return fn(args...)
}
