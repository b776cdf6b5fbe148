// Package stage defines aggregation stage kinds, stage nodes, and the
// operator fragment builders used to assemble stage payloads.
//
// A Stage pairs a Kind (a closed set of operator families such as match,
// unwind, group) with an arbitrarily nested payload and an optional
// caller-assigned name. Payload accessors return live references so a
// stage can be edited retroactively, up to the moment the owning pipeline
// is built.
//
// Fragment builders (Eq, In, Sum, ...) are pure functions producing
// canonical operator fragments; they never touch pipeline state and can be
// embedded at any depth inside a payload. Collection(key) embeds a logical
// collection reference that resolution replaces with a real collection
// name only at invocation time.
package stage
