// Package collection defines the provider contract between built pipelines
// and the backing store, a registry binding logical collection keys to
// providers, and composable provider middleware.
//
// A Provider executes fully built stage documents against one collection.
// Aggregation definitions never hold providers directly; they carry logical
// keys that the registry resolves at execution time, which keeps every
// definition runnable against test doubles:
//
//	reg := collection.NewRegistry()
//	reg.Register("orders", client.Collection("orders"))
//
//	p, err := reg.Resolve("orders")
//
// Middleware wraps a provider with cross-cutting behavior. Use Chain to
// compose; the first middleware is outermost:
//
//	wrapped := collection.Chain(
//		collection.WithLogging(log),
//		collection.WithMetrics(metrics),
//		collection.WithTracing(),
//		collection.WithRetry(resilience.DefaultRetryConfig()),
//	)(rawProvider)
//
// The mongodb sub-package adapts the official driver to the Provider
// interface; the testutil sub-package provides in-memory fakes.
package collection
