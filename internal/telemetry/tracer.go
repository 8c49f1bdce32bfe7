package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Attribute keys for coordinator and storage-node spans, following
// OpenTelemetry semantic conventions where applicable.
const (
	// ========================================================================
	// Client / session attributes
	// ========================================================================
	AttrClientIP   = "client.ip"
	AttrClientPort = "client.port"
	AttrUsername   = "docfs.username"

	// ========================================================================
	// Wire protocol attributes
	// ========================================================================
	AttrOpcode    = "docfs.opcode"     // CREATE, READ, WRITE, HEARTBEAT, ...
	AttrFile      = "docfs.file"       // target filename
	AttrFolder    = "docfs.folder"     // target folder path
	AttrResult    = "docfs.result"     // wire result code name
	AttrRequestID = "docfs.request_id"

	// ========================================================================
	// Cluster topology attributes
	// ========================================================================
	AttrNodeID      = "docfs.node_id"
	AttrNodeIP      = "docfs.node_ip"
	AttrControlPort = "docfs.control_port"

	// ========================================================================
	// Sentence/word edit protocol attributes
	// ========================================================================
	AttrSentenceIndex = "docfs.sentence_index"
	AttrWordIndex     = "docfs.word_index"
	AttrSentenceCount = "docfs.sentence_count"
	AttrWordCount     = "docfs.word_count"

	// ========================================================================
	// Metadata store attributes
	// ========================================================================
	AttrCacheHit  = "docfs.cache_hit"
	AttrCacheSize = "docfs.cache_size"
	AttrACLUser   = "docfs.acl_user"

	// ========================================================================
	// Persistence / cold-tier attributes
	// ========================================================================
	AttrStoreType = "docfs.store_type" // textfile, badger, postgres, s3
	AttrBucket    = "docfs.bucket"
	AttrKey       = "docfs.key"
)

// ClientIP returns an attribute for the peer IP address.
func ClientIP(ip string) attribute.KeyValue {
	return attribute.String(AttrClientIP, ip)
}

// Username returns an attribute for the authenticated requester.
func Username(name string) attribute.KeyValue {
	return attribute.String(AttrUsername, name)
}

// Opcode returns an attribute for the wire opcode name.
func Opcode(name string) attribute.KeyValue {
	return attribute.String(AttrOpcode, name)
}

// File returns an attribute for the target filename.
func File(name string) attribute.KeyValue {
	return attribute.String(AttrFile, name)
}

// Folder returns an attribute for the target folder path.
func Folder(path string) attribute.KeyValue {
	return attribute.String(AttrFolder, path)
}

// Result returns an attribute for the wire result code name.
func Result(name string) attribute.KeyValue {
	return attribute.String(AttrResult, name)
}

// RequestID returns an attribute for the wire request id.
func RequestID(id int32) attribute.KeyValue {
	return attribute.Int64(AttrRequestID, int64(id))
}

// NodeID returns an attribute for a storage node id.
func NodeID(id string) attribute.KeyValue {
	return attribute.String(AttrNodeID, id)
}

// NodeAddr returns attributes for a storage node's control address.
func NodeAddr(ip string, controlPort int) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(AttrNodeIP, ip),
		attribute.Int(AttrControlPort, controlPort),
	}
}

// SentenceIndex returns an attribute for a sentence index.
func SentenceIndex(i int) attribute.KeyValue {
	return attribute.Int(AttrSentenceIndex, i)
}

// WordIndex returns an attribute for a word index.
func WordIndex(i int) attribute.KeyValue {
	return attribute.Int(AttrWordIndex, i)
}

// CacheHit returns an attribute for a search-cache hit/miss indicator.
func CacheHit(hit bool) attribute.KeyValue {
	return attribute.Bool(AttrCacheHit, hit)
}

// StoreType returns an attribute for a persistence backend name.
func StoreType(kind string) attribute.KeyValue {
	return attribute.String(AttrStoreType, kind)
}

// Bucket returns an attribute for an S3 bucket name.
func Bucket(name string) attribute.KeyValue {
	return attribute.String(AttrBucket, name)
}

// StorageKey returns an attribute for an S3 object key.
func StorageKey(key string) attribute.KeyValue {
	return attribute.String(AttrKey, key)
}

// FileHandle formats an opaque identifier (e.g. a checkpoint tag) as a
// hex-encoded attribute, for cases where raw bytes need tracing.
func FileHandle(key string, raw []byte) attribute.KeyValue {
	return attribute.String(key, fmt.Sprintf("%x", raw))
}

// StartOpSpan starts a span for a single wire-protocol operation handled by
// the coordinator or a storage node. This is the primary entry point used by
// connection handlers.
func StartOpSpan(ctx context.Context, opcode string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	allAttrs := append([]attribute.KeyValue{Opcode(opcode)}, attrs...)
	return StartSpan(ctx, "docfs."+opcode, trace.WithAttributes(allAttrs...))
}

// StartMetadataSpan starts a span for a metadata store operation.
func StartMetadataSpan(ctx context.Context, operation string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return StartSpan(ctx, "metadata."+operation, trace.WithAttributes(attrs...))
}

// StartEditSpan starts a span for a sentence/word edit sub-operation on a
// storage node (lock, stream, insert, commit).
func StartEditSpan(ctx context.Context, step string, file string, sentenceIdx int) (context.Context, trace.Span) {
	return StartSpan(ctx, "edit."+step, trace.WithAttributes(
		File(file),
		SentenceIndex(sentenceIdx),
	))
}

// StartColdTierSpan starts a span for an S3-backed cold-tier operation.
func StartColdTierSpan(ctx context.Context, operation, bucket, key string) (context.Context, trace.Span) {
	return StartSpan(ctx, "coldtier."+operation, trace.WithAttributes(
		Bucket(bucket),
		StorageKey(key),
	))
}

// StartHeartbeatSpan starts a span for a coordinator->node heartbeat check.
func StartHeartbeatSpan(ctx context.Context, nodeID string) (context.Context, trace.Span) {
	return StartSpan(ctx, "heartbeat.check", trace.WithAttributes(NodeID(nodeID)))
}
