// Package testutil provides in-memory collection fakes for testing
// aggregation execution without a running MongoDB deployment.
package testutil
