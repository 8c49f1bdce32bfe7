package logger

import (
	"log/slog"
)

// Standard field keys for structured logging across the coordinator and
// storage node. Use these keys consistently across all log statements so
// aggregation/querying doesn't have to deal with ad-hoc naming.
const (
	// ========================================================================
	// Distributed Tracing
	// ========================================================================
	KeyTraceID = "trace_id" // OpenTelemetry trace ID for request correlation
	KeySpanID  = "span_id"  // OpenTelemetry span ID for operation tracking

	// ========================================================================
	// Wire protocol
	// ========================================================================
	KeyOpcode    = "opcode"     // wire opcode name: CREATE, READ, WRITE, HEARTBEAT, ...
	KeyFile      = "file"       // target filename
	KeyFolder    = "folder"     // target folder path
	KeyResult    = "result"     // wire result code name
	KeyRequestID = "request_id" // wire request_id, correlates coordinator<->node hops

	// ========================================================================
	// Client / session identification
	// ========================================================================
	KeyClientIP   = "client_ip"  // client IP address
	KeyClientPort = "client_port"
	KeyUsername   = "username" // authenticated requester

	// ========================================================================
	// Cluster topology
	// ========================================================================
	KeyNodeID     = "node_id"
	KeyNodeIP     = "node_ip"
	KeyControlPort = "control_port"

	// ========================================================================
	// Sentence/word edit protocol
	// ========================================================================
	KeySentenceIndex = "sentence_index"
	KeyWordIndex     = "word_index"
	KeySentenceCount = "sentence_count"
	KeyWordCount     = "word_count"

	// ========================================================================
	// Operation metadata
	// ========================================================================
	KeyDurationMs = "duration_ms"
	KeyError      = "error"
	KeyErrorCode  = "error_code"
	KeySource     = "source" // node, cache, backup, failover

	// ========================================================================
	// Metadata store
	// ========================================================================
	KeyCacheHit  = "cache_hit"
	KeyCacheSize = "cache_size"
	KeyACLUser   = "acl_user"

	// ========================================================================
	// Storage backends
	// ========================================================================
	KeyStoreType = "store_type" // textfile, badger, postgres, s3
	KeyBucket    = "bucket"
	KeyKey       = "key"
	KeyAttempt   = "attempt"
)

// ----------------------------------------------------------------------------
// Field constructors for type safety
// ----------------------------------------------------------------------------

// TraceID returns a slog.Attr for OpenTelemetry trace ID
func TraceID(id string) slog.Attr {
	return slog.String(KeyTraceID, id)
}

// SpanID returns a slog.Attr for OpenTelemetry span ID
func SpanID(id string) slog.Attr {
	return slog.String(KeySpanID, id)
}

// Opcode returns a slog.Attr for the wire opcode name
func Opcode(name string) slog.Attr {
	return slog.String(KeyOpcode, name)
}

// File returns a slog.Attr for the target filename
func File(name string) slog.Attr {
	return slog.String(KeyFile, name)
}

// Result returns a slog.Attr for the wire result code name
func Result(name string) slog.Attr {
	return slog.String(KeyResult, name)
}

// RequestID returns a slog.Attr for the wire request id
func RequestID(id int32) slog.Attr {
	return slog.Int(KeyRequestID, int(id))
}

// ClientIP returns a slog.Attr for the peer IP address
func ClientIP(ip string) slog.Attr {
	return slog.String(KeyClientIP, ip)
}

// Username returns a slog.Attr for the requesting user
func Username(name string) slog.Attr {
	return slog.String(KeyUsername, name)
}

// NodeID returns a slog.Attr for a storage node id
func NodeID(id string) slog.Attr {
	return slog.String(KeyNodeID, id)
}

// SentenceIndex returns a slog.Attr for a sentence index
func SentenceIndex(i int) slog.Attr {
	return slog.Int(KeySentenceIndex, i)
}

// WordIndex returns a slog.Attr for a word index
func WordIndex(i int) slog.Attr {
	return slog.Int(KeyWordIndex, i)
}

// DurationMs returns a slog.Attr for an operation duration in milliseconds
func DurationMs(ms float64) slog.Attr {
	return slog.Float64(KeyDurationMs, ms)
}

// Err returns a slog.Attr for an error value. Returns an empty attr for a
// nil error so callers can pass it unconditionally.
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.String(KeyError, err.Error())
}

// CacheHit returns a slog.Attr for a cache hit/miss indicator
func CacheHit(hit bool) slog.Attr {
	return slog.Bool(KeyCacheHit, hit)
}

// StoreType returns a slog.Attr for a persistence backend name
func StoreType(kind string) slog.Attr {
	return slog.String(KeyStoreType, kind)
}
