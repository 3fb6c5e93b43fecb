// Package retry provides simple exponential backoff retry logic for transient failures.
//
// # Overview
//
// This package offers a minimal retry mechanism with exponential backoff,
// used for remote resource fetches during manifest loading.
//
// # Core Functions
//
//   - Do: Execute function with retry and exponential backoff
//   - DoWithResult: Execute function with retry, returns both result and error
//
// # Usage Examples
//
// Basic retry with defaults:
//
//	err := retry.Do(ctx, retry.DefaultConfig(), func() error {
//	    return fetch()
//	})
//
// Marking an error as permanent stops further attempts:
//
//	return retry.NonRetryable(fmt.Errorf("status %d", resp.StatusCode))
package retry
