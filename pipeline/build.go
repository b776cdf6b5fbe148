package pipeline

import (
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/speedytwenty/mongodb-aggregate/errors"
	"github.com/speedytwenty/mongodb-aggregate/stage"
)

// Substituter rewrites a stage payload, replacing placeholder tokens with
// resolved values. template.Inputs implements it; Build applies it to a
// deep clone of each payload so the live pipeline is never mutated.
type Substituter interface {
	Substitute(payload any) (any, error)
}

// CollectionResolver maps a logical collection key embedded in a payload
// (stage.Collection) to the backing collection's real name.
type CollectionResolver func(key string) (string, error)

// Bind attaches a substitution context used by Substitute and Build.
// Binding nil detaches.
func (p *Pipeline) Bind(subst Substituter) {
	p.subst = subst
}

// BindCollections attaches a resolver for logical collection references.
// Build fails with UNRESOLVED_COLLECTION for any reference left without a
// resolver.
func (p *Pipeline) BindCollections(resolve CollectionResolver) {
	p.resolve = resolve
}

// Substitute rewrites every live stage payload in place using the bound
// substituter, so later inspection (and the setup hook of a declarative
// definition) sees resolved values. A pipeline with nothing bound is left
// untouched. The rewritten payloads go through the same shape check as
// Add, catching variables whose resolved values cannot fit their stage.
//
// Substitute consumes the binding: payloads are rewritten exactly once,
// and stages added afterwards carry their payloads to Build literally.
// Resolved values never feed a second substitution pass, so tokens can
// only ever resolve directly from the bound inputs.
func (p *Pipeline) Substitute() error {
	if p.subst == nil {
		return nil
	}
	for _, st := range p.stages {
		payload, err := p.subst.Substitute(st.Payload())
		if err != nil {
			return err
		}
		if err := st.SetPayload(payload); err != nil {
			return err
		}
	}
	p.subst = nil
	return nil
}

// Build finalizes the pipeline into an ordered sequence of single-key
// stage documents ready for a collection provider:
//
//	bson.D{{Key: "$match", Value: payload}}
//
// It deep-clones every payload, applies the bound substituter, and
// resolves logical collection references. The live pipeline is never
// mutated: Build is a pure function of the current stages and bound
// contexts, so calling it twice without intervening mutation yields
// structurally identical output.
func (p *Pipeline) Build() ([]bson.D, error) {
	docs := make([]bson.D, 0, len(p.stages))
	for _, st := range p.stages {
		payload := st.Clone().Payload()
		if p.subst != nil {
			substituted, err := p.subst.Substitute(payload)
			if err != nil {
				return nil, err
			}
			payload = substituted
		}
		resolved, err := p.resolveRefs(payload)
		if err != nil {
			return nil, err
		}
		docs = append(docs, bson.D{{Key: st.Kind().Operator(), Value: resolved}})
	}
	return docs, nil
}

// resolveRefs replaces stage.CollectionRef markers with real collection
// names using the bound resolver.
func (p *Pipeline) resolveRefs(payload any) (any, error) {
	return stage.RewriteValues(payload, func(v any) (any, error) {
		ref, ok := v.(stage.CollectionRef)
		if !ok {
			return v, nil
		}
		if p.resolve == nil {
			return nil, errors.UnresolvedCollection(ref.Key)
		}
		name, err := p.resolve(ref.Key)
		if err != nil {
			return nil, err
		}
		return name, nil
	})
}
