package pipeline

import (
	"github.com/speedytwenty/mongodb-aggregate/errors"
	"github.com/speedytwenty/mongodb-aggregate/stage"
)

// Pipeline is an ordered, mutable sequence of stages. Insertion order is
// the execution order. The zero value is not usable; create one with New.
type Pipeline struct {
	stages []*stage.Stage

	// Build-time context, attached via Bind/BindCollections.
	subst   Substituter
	resolve CollectionResolver
}

// New creates an empty pipeline.
func New() *Pipeline {
	return &Pipeline{stages: make([]*stage.Stage, 0, 8)}
}

// Add appends an unnamed stage and returns the live node.
func (p *Pipeline) Add(kind stage.Kind, payload any) (*stage.Stage, error) {
	return p.AddNamed(kind, payload, "")
}

// AddNamed appends a named stage and returns the live node. A name already
// present in the pipeline fails with DUPLICATE_STAGE_NAME.
func (p *Pipeline) AddNamed(kind stage.Kind, payload any, name string) (*stage.Stage, error) {
	if name != "" {
		for _, st := range p.stages {
			if st.Name() == name {
				return nil, errors.DuplicateStageName(name)
			}
		}
	}
	st, err := stage.NewNamed(kind, payload, name)
	if err != nil {
		return nil, err
	}
	p.stages = append(p.stages, st)
	return st, nil
}

// Stage returns the live node for the occurrence-th stage of the given
// kind, counting from zero in pipeline order. A miss fails with
// STAGE_NOT_FOUND carrying the requested kind and occurrence.
func (p *Pipeline) Stage(kind stage.Kind, occurrence int) (*stage.Stage, error) {
	if occurrence >= 0 {
		seen := 0
		for _, st := range p.stages {
			if st.Kind() != kind {
				continue
			}
			if seen == occurrence {
				return st, nil
			}
			seen++
		}
	}
	return nil, errors.StageNotFound(string(kind), occurrence)
}

// StageByName returns the live node with the given name, or STAGE_NOT_FOUND.
func (p *Pipeline) StageByName(name string) (*stage.Stage, error) {
	for _, st := range p.stages {
		if name != "" && st.Name() == name {
			return st, nil
		}
	}
	return nil, errors.StageNameNotFound(name)
}

// Drop removes the occurrence-th stage of the given kind, preserving the
// relative order of the remainder. Removing a stage that does not exist
// fails with STAGE_NOT_FOUND, never a silent no-op, so callers editing
// pipelines know whether the edit applied.
func (p *Pipeline) Drop(kind stage.Kind, occurrence int) error {
	st, err := p.Stage(kind, occurrence)
	if err != nil {
		return err
	}
	return p.Remove(st)
}

// RemoveByName removes the stage with the given name, or fails with
// STAGE_NOT_FOUND.
func (p *Pipeline) RemoveByName(name string) error {
	st, err := p.StageByName(name)
	if err != nil {
		return err
	}
	return p.Remove(st)
}

// Remove removes a stage by node identity. Phase handles and other views
// reduce their removals to this primitive. Removing a node that is not in
// the pipeline fails with STAGE_NOT_FOUND.
func (p *Pipeline) Remove(st *stage.Stage) error {
	for i, cur := range p.stages {
		if cur == st {
			p.stages = append(p.stages[:i], p.stages[i+1:]...)
			return nil
		}
	}
	if st != nil && st.Name() != "" {
		return errors.StageNameNotFound(st.Name())
	}
	kind := ""
	if st != nil {
		kind = string(st.Kind())
	}
	return errors.StageNotFound(kind, 0)
}

// ForEach visits every stage in pipeline order.
func (p *Pipeline) ForEach(visit func(*stage.Stage)) {
	for _, st := range p.stages {
		visit(st)
	}
}

// Len returns the number of stages.
func (p *Pipeline) Len() int { return len(p.stages) }

// Stages returns the stages in order. The slice is a copy but the nodes
// are live: mutating a node edits the pipeline.
func (p *Pipeline) Stages() []*stage.Stage {
	out := make([]*stage.Stage, len(p.stages))
	copy(out, p.stages)
	return out
}

// Names returns the names of all named stages in pipeline order.
func (p *Pipeline) Names() []string {
	names := make([]string, 0, len(p.stages))
	for _, st := range p.stages {
		if st.Name() != "" {
			names = append(names, st.Name())
		}
	}
	return names
}

// Clone returns a deep copy of the pipeline. Stage payloads share no state
// with the original, so the copy can be mutated freely. Bound substitution
// and collection-resolution contexts are not carried over; the clone starts
// unbound.
func (p *Pipeline) Clone() *Pipeline {
	out := &Pipeline{stages: make([]*stage.Stage, len(p.stages))}
	for i, st := range p.stages {
		out.stages[i] = st.Clone()
	}
	return out
}
