// Package segio defines the external I/O capability the core depends on to
// populate Indexes and IndexSlices on demand. The core never opens a file
// or a socket itself; every persistence concern is pushed behind this
// interface so the set-algebra and planner packages stay free of I/O
// dependencies, matching this engine's own separation between the index
// reader/writer capability and the in-memory index structures.
package segio

import (
	"context"

	"github.com/shardbit/shardbit/internal/index"
	"github.com/shardbit/shardbit/internal/segment"
	"github.com/shardbit/shardbit/internal/slice"
	"github.com/shardbit/shardbit/pkg/status"
)

// IO is the five-operation external capability a Context uses to
// materialize Indexes, IndexSlices, and Segments that aren't already
// resident in memory.
type IO interface {
	// ReadIndex loads every value's slice for (partition, bucket, field)
	// and returns a freshly constructed Index. A clean miss (no data
	// recorded for this field) returns an empty Index, not an error.
	ReadIndex(ctx context.Context, partition, bucket, field string) (*index.Index, *status.Status)

	// ReadIndexSlice loads the slice for (partition, field, value). A
	// clean miss returns an empty IndexSlice, not an error.
	ReadIndexSlice(ctx context.Context, partition, field, value string) (*slice.IndexSlice, *status.Status)

	// EstimateSize reports a best-effort byte size for (partition, field,
	// value)'s persisted representation, for callers sizing buffers or
	// reporting diagnostics. Implementations that can't estimate cheaply
	// may return 0.
	EstimateSize(ctx context.Context, partition, field, value string) (uint64, *status.Status)

	// SegmentReadWriter embeds the segment-level read/write capability
	// IndexSlice.SetBit uses directly; ReadSegment MUST populate an
	// all-zero segment on a clean miss rather than fail, reporting a
	// KindNotFound Status so the caller can distinguish a miss from a
	// genuine I/O error.
	slice.SegmentReadWriter
}

var _ slice.SegmentReadWriter = (IO)(nil)

// zeroSegment is returned, paired with a KindNotFound Status, whenever an
// IO implementation has no persisted segment at an offset.
var zeroSegment segment.Segment

// NotFoundSegment is a convenience for IO implementations: it returns the
// canonical (zero Segment, KindNotFound Status) pair for a clean miss.
func NotFoundSegment(partition, bucket, field, value string, offset uint64) (segment.Segment, *status.Status) {
	st := status.New(status.KindNotFound, "segment not found").
		WithPartition(partition).
		WithBucket(bucket).
		WithField(field).
		WithValue(value).
		WithOffset(offset)
	return zeroSegment, st
}
