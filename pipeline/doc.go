// Package pipeline provides an ordered, mutable collection of aggregation
// stages with identity-preserving lookup, mutation, and removal, plus a
// deterministic Build snapshot.
//
// Pipelines are lazy: stages stay live and editable until Build is called.
// Lookup returns the live stage, so a payload retrieved by name or by
// kind/occurrence can be edited retroactively and the edit is reflected in
// the next Build:
//
//	pl := pipeline.New()
//	pl.AddNamed(stage.KindMatch, bson.M{"orderStatus": "pending"}, "matchOrders")
//	pl.Add(stage.KindSort, bson.M{"orderDate": -1})
//
//	st, _ := pl.StageByName("matchOrders")
//	st.Document()["orderStatus"] = "complete"
//
//	docs, _ := pl.Build() // [{$match: {orderStatus: complete}}, {$sort: ...}]
//
// Build deep-clones every payload before substitution, so the returned
// documents share no state with the pipeline: later edits never leak into
// an already built snapshot, and calling Build twice without intervening
// mutation yields structurally identical output.
//
// Stage identity is positional for duplicate kinds (zero-based occurrence
// among stages of the same kind) and exact for names, which are unique per
// pipeline. Removal of a stage that does not exist is an explicit
// STAGE_NOT_FOUND failure, never a silent no-op.
package pipeline
