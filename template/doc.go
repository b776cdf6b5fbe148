// Package template turns pipelines into reusable, parameterized
// aggregation definitions.
//
// A Definition pairs a builder function, run exactly once, with typed
// variable declarations, named phase tags, logical collection bindings,
// and an optional setup hook. Stage payloads embed $$$NAME placeholder
// tokens; at invocation time the raw input is batch-validated against
// the declarations and every token is substituted, whole-token values by
// their native type and embedded tokens by text interpolation. Tokens
// always resolve directly from the resolved inputs, never from other
// tokens. A token naming an undeclared variable fails definition
// construction, before any invocation exists.
//
// Definitions are immutable and carry no per-invocation state: each
// NewInvocation works on its own deep clone of the template pipeline
// with phase handles rebound onto it, so concurrent invocations never
// interfere. The setup hook runs once per invocation, after
// substitution, and may reshape the cloned pipeline based on the
// resolved inputs; through it empty-input edge cases drop whole phases
// and single-element lists collapse membership tests to equality.
package template
