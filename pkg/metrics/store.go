package metrics

import (
	"time"
)

// StoreMetrics provides observability for database operations.
//
// Implementations can collect latency and outcome metrics per store
// operation. This interface is optional - pass nil to disable metrics
// collection with zero overhead.
//
// Example usage:
//
//	start := time.Now()
//	user, err := st.GetUser(ctx, username)
//	storeMetrics.ObserveOperation("GetUser", time.Since(start), err)
type StoreMetrics interface {
	// ObserveOperation records a store operation with its duration and
	// outcome.
	//
	// Parameters:
	//   - operation: Store method name (e.g., "AddUser", "MessagesBetween")
	//   - duration: Time taken to perform the operation
	//   - err: Error if the operation failed, nil if successful
	ObserveOperation(operation string, duration time.Duration, err error)
}
