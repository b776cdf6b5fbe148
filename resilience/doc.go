// Package resilience retries transient store failures with exponential
// backoff and jitter.
//
// The default retry predicate understands the error taxonomy: connection
// and execution failures retry, everything raised before a pipeline
// reaches the store (validation, construction, lookup misses) fails
// immediately. Connecting a client and the collection retry middleware
// both run through Retry:
//
//	client, err := resilience.Retry(ctx, resilience.DefaultRetryConfig(), connect)
package resilience
