package template

import (
	"fmt"

	"github.com/speedytwenty/mongodb-aggregate/errors"
	"github.com/speedytwenty/mongodb-aggregate/pipeline"
	"github.com/speedytwenty/mongodb-aggregate/stage"
)

// BuildFunc assembles a definition's template pipeline. It runs exactly
// once, at definition time.
type BuildFunc func(b *Builder)

// Builder is the explicit construction context handed to a BuildFunc.
// Stage appends are fluent; the first failure is latched and every later
// call becomes a no-op, so a chain reads straight through and the error
// surfaces once from Err (NewDefinition checks it).
//
// Phase tags the stages appended since the previous tag under a name.
// The tagged group is retrieved per invocation through SetupContext.Phase
// or Invocation.Phase.
type Builder struct {
	pl       *pipeline.Pipeline
	err      error
	phases   map[string][]int
	order    []string
	taggedTo int
}

func newBuilder() *Builder {
	return &Builder{
		pl:     pipeline.New(),
		phases: make(map[string][]int),
	}
}

// Err returns the first error latched by the chain, if any.
func (b *Builder) Err() error { return b.err }

// Stage appends a stage of any kind.
func (b *Builder) Stage(kind stage.Kind, payload any) *Builder {
	return b.add(kind, payload, "")
}

// NamedStage appends a named stage of any kind.
func (b *Builder) NamedStage(name string, kind stage.Kind, payload any) *Builder {
	return b.add(kind, payload, name)
}

// Match appends a $match stage.
func (b *Builder) Match(filter any) *Builder {
	return b.add(stage.KindMatch, filter, "")
}

// NamedMatch appends a named $match stage.
func (b *Builder) NamedMatch(name string, filter any) *Builder {
	return b.add(stage.KindMatch, filter, name)
}

// Unwind appends a $unwind stage; path may be a field path string or a
// full unwind document.
func (b *Builder) Unwind(path any) *Builder {
	return b.add(stage.KindUnwind, path, "")
}

// NamedUnwind appends a named $unwind stage.
func (b *Builder) NamedUnwind(name string, path any) *Builder {
	return b.add(stage.KindUnwind, path, name)
}

// Lookup appends a $lookup stage.
func (b *Builder) Lookup(spec any) *Builder {
	return b.add(stage.KindLookup, spec, "")
}

// NamedLookup appends a named $lookup stage.
func (b *Builder) NamedLookup(name string, spec any) *Builder {
	return b.add(stage.KindLookup, spec, name)
}

// Group appends a $group stage.
func (b *Builder) Group(spec any) *Builder {
	return b.add(stage.KindGroup, spec, "")
}

// NamedGroup appends a named $group stage.
func (b *Builder) NamedGroup(name string, spec any) *Builder {
	return b.add(stage.KindGroup, spec, name)
}

// Sort appends a $sort stage.
func (b *Builder) Sort(spec any) *Builder {
	return b.add(stage.KindSort, spec, "")
}

// NamedSort appends a named $sort stage.
func (b *Builder) NamedSort(name string, spec any) *Builder {
	return b.add(stage.KindSort, spec, name)
}

// Project appends a $project stage.
func (b *Builder) Project(spec any) *Builder {
	return b.add(stage.KindProject, spec, "")
}

// NamedProject appends a named $project stage.
func (b *Builder) NamedProject(name string, spec any) *Builder {
	return b.add(stage.KindProject, spec, name)
}

// AddFields appends an $addFields stage.
func (b *Builder) AddFields(spec any) *Builder {
	return b.add(stage.KindAddFields, spec, "")
}

// NamedAddFields appends a named $addFields stage.
func (b *Builder) NamedAddFields(name string, spec any) *Builder {
	return b.add(stage.KindAddFields, spec, name)
}

// Skip appends a $skip stage.
func (b *Builder) Skip(n any) *Builder {
	return b.add(stage.KindSkip, n, "")
}

// NamedSkip appends a named $skip stage.
func (b *Builder) NamedSkip(name string, n any) *Builder {
	return b.add(stage.KindSkip, n, name)
}

// Limit appends a $limit stage.
func (b *Builder) Limit(n any) *Builder {
	return b.add(stage.KindLimit, n, "")
}

// NamedLimit appends a named $limit stage.
func (b *Builder) NamedLimit(name string, n any) *Builder {
	return b.add(stage.KindLimit, n, name)
}

// Count appends a $count stage writing the total under field.
func (b *Builder) Count(field string) *Builder {
	return b.add(stage.KindCount, field, "")
}

// NamedCount appends a named $count stage.
func (b *Builder) NamedCount(name, field string) *Builder {
	return b.add(stage.KindCount, field, name)
}

// Phase tags every stage appended since the previous tag under name. A
// phase must tag at least one stage, and a name may be used once.
func (b *Builder) Phase(name string) *Builder {
	if b.err != nil {
		return b
	}
	if name == "" {
		b.err = errors.InvalidDefinition("phase name must not be empty")
		return b
	}
	if _, dup := b.phases[name]; dup {
		b.err = errors.InvalidDefinition(fmt.Sprintf("phase %q declared more than once", name))
		return b
	}
	n := b.pl.Len()
	if n == b.taggedTo {
		b.err = errors.InvalidDefinition(fmt.Sprintf("phase %q tags no stages", name))
		return b
	}
	indexes := make([]int, 0, n-b.taggedTo)
	for i := b.taggedTo; i < n; i++ {
		indexes = append(indexes, i)
	}
	b.phases[name] = indexes
	b.order = append(b.order, name)
	b.taggedTo = n
	return b
}

func (b *Builder) add(kind stage.Kind, payload any, name string) *Builder {
	if b.err != nil {
		return b
	}
	if name == "" {
		_, b.err = b.pl.Add(kind, payload)
	} else {
		_, b.err = b.pl.AddNamed(kind, payload, name)
	}
	return b
}
