package metrics

import "time"

// ColdTierMetrics provides observability for the storage node's optional S3
// cold-tier offload of checkpoints. This interface is optional -
// pass nil to disable collection with zero overhead.
type ColdTierMetrics interface {
	// ObserveOperation records a completed cold-tier operation (e.g. "put",
	// "get", "delete") with its duration and outcome.
	ObserveOperation(operation string, duration time.Duration, err error)

	// RecordBytes records bytes transferred during a cold-tier operation.
	RecordBytes(operation string, bytes int64)
}
