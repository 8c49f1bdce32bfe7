package metrics

import "time"

// CoordinatorMetrics provides observability for the coordinator's client-
// and node-facing wire protocol handlers.
//
// Implementations can collect metrics about request throughput, connection
// lifecycle, and cluster health. This interface is optional - pass nil to
// disable metrics collection with zero overhead.
//
// Example usage:
//
//	// With metrics enabled
//	m := prometheus.NewCoordinatorMetrics()
//	coord := coordinator.New(cfg, store, m)
//
//	// Without metrics (pass nil for zero overhead)
//	coord := coordinator.New(cfg, store, nil)
type CoordinatorMetrics interface {
	// RecordRequest records a completed client request with its opcode,
	// duration, and outcome.
	RecordRequest(opcode string, duration time.Duration, resultCode uint16)

	// RecordRequestStart increments the in-flight request counter.
	RecordRequestStart(opcode string)

	// RecordRequestEnd decrements the in-flight request counter.
	RecordRequestEnd(opcode string)

	// SetActiveConnections updates the current client connection count.
	SetActiveConnections(count int32)

	// RecordConnectionAccepted increments the total accepted connections counter.
	RecordConnectionAccepted()

	// RecordConnectionClosed increments the total closed connections counter.
	RecordConnectionClosed()

	// RecordConnectionForceClosed increments the force-closed connections counter.
	RecordConnectionForceClosed()

	// RecordHeartbeat records the outcome of a storage node heartbeat check.
	//
	// Parameters:
	//   - nodeID: identifier of the storage node
	//   - alive: whether the node answered the heartbeat with an ACK
	RecordHeartbeat(nodeID string, alive bool)

	// RecordNodeEvicted records a storage node being evicted from the
	// cluster after exceeding NodeEvictionTTL.
	RecordNodeEvicted(nodeID string)

	// SetRegisteredNodes updates the current count of registered storage nodes.
	SetRegisteredNodes(count int)
}

// CacheMetrics provides observability for the coordinator's bounded search
// cache. This interface is optional - pass nil to disable collection with
// zero overhead.
type CacheMetrics interface {
	// ObserveLookup records a search cache lookup, hit or miss.
	ObserveLookup(hit bool, duration time.Duration)

	// RecordCacheSize records the current number of cached entries.
	RecordCacheSize(entries int)

	// RecordInvalidation records a whole-cache invalidation, triggered by a
	// file create or delete.
	RecordInvalidation()

	// RecordEviction records an LRU eviction caused by the cache exceeding
	// its configured capacity.
	RecordEviction()
}

// LockMetrics provides observability for the storage node's per-sentence
// exclusive lock table. This interface is optional - pass nil to disable
// collection with zero overhead.
type LockMetrics interface {
	// RecordLockAcquired records a successful sentence lock acquisition,
	// along with how long the caller waited for it.
	RecordLockAcquired(wait time.Duration)

	// RecordLockContended records a lock request that found the sentence
	// already held by another session.
	RecordLockContended()

	// RecordLockReleased records a sentence lock being released.
	RecordLockReleased()

	// SetHeldLocks updates the current count of held sentence locks.
	SetHeldLocks(count int)
}
