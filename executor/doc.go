// Package executor runs pipelines and definitions against registered
// collections through lazy cursors.
//
// A cursor is created instantly and does nothing until a terminal call.
// All and ForEach share one finalization path: resolve collections,
// validate declarative input, substitute placeholders, run the setup
// hook, build the stage documents, and call the provider exactly once.
//
//	exec := executor.New(registry, executor.WithLogger(log))
//
//	// Ad hoc: run a hand-built pipeline against a logical key.
//	pl := pipeline.New()
//	pl.Add(stage.Match, bson.M{"status": "active"})
//	docs, err := exec.Pipeline("orders", pl).All(ctx)
//
//	// Declarative: one invocation of a registered definition.
//	cur := exec.Definition(def, map[string]any{"SKU": "A-100"})
//	cur.Pipeline().Add(stage.Limit, 50) // still editable
//	err = cur.ForEach(ctx, func(doc bson.M) error {
//		return process(doc)
//	})
//
// Cursors are single-use. The first terminal call spends the cursor,
// successful or not; later calls fail with CURSOR_CONSUMED. Retrying
// means creating a new cursor, which for definitions spawns a fresh
// invocation.
package executor
