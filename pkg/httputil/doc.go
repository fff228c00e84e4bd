// Package httputil fetches remote graph documents.
//
// # Overview
//
//   - [Fetch]: GET a document with a size cap and automatic retries
//   - [Retry]: exponential backoff for any operation
//
// # Retry
//
// [Fetch] retries transient failures:
//
//   - Network errors
//   - 5xx server errors
//   - 429 rate limit responses
//
// Other statuses fail immediately. The delay doubles after every attempt.
//
//	data, err := httputil.Fetch(ctx, nil, "https://example.com/graph.json")
//
// Fetched documents are not cached here. The pipeline caches layouts by
// content, so a changed remote document always produces a fresh layout.
package httputil
