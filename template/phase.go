package template

import (
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/speedytwenty/mongodb-aggregate/pipeline"
	"github.com/speedytwenty/mongodb-aggregate/stage"
)

// Phase is a named view over one or more live stages of an invocation's
// pipeline. It holds no state of its own: every operation reduces to
// pipeline and stage primitives against the nodes it refers to, so edits
// through a phase and edits through the pipeline are the same edits.
type Phase struct {
	name   string
	pl     *pipeline.Pipeline
	stages []*stage.Stage
}

// Name returns the phase name.
func (p *Phase) Name() string { return p.name }

// Len returns the number of stages the phase tags.
func (p *Phase) Len() int { return len(p.stages) }

// Stages returns the tagged stage nodes in pipeline order. The slice is
// a copy; the nodes are live.
func (p *Phase) Stages() []*stage.Stage {
	return append([]*stage.Stage(nil), p.stages...)
}

// First returns the first tagged stage.
func (p *Phase) First() *stage.Stage {
	if len(p.stages) == 0 {
		return nil
	}
	return p.stages[0]
}

// Payload returns the first tagged stage's live payload.
func (p *Phase) Payload() any {
	st := p.First()
	if st == nil {
		return nil
	}
	return st.Payload()
}

// Document returns the first tagged stage's live payload as a bson.M for
// in-place edits, or nil when it is not a document.
func (p *Phase) Document() bson.M {
	st := p.First()
	if st == nil {
		return nil
	}
	return st.Document()
}

// Remove removes every tagged stage from the pipeline, in order. A node
// already removed fails with STAGE_NOT_FOUND and stops the sweep there.
func (p *Phase) Remove() error {
	for _, st := range p.stages {
		if err := p.pl.Remove(st); err != nil {
			return err
		}
	}
	return nil
}
