// Package index implements Index: the set of IndexSlices for every
// discrete value of one (partition, bucket, field) tuple, with
// on-demand materialization mirroring this engine's own lazy segment
// loading discipline, carried forward from its in-memory hash table.
package index

import (
	"context"
	stdErrors "errors"
	"strconv"
	"time"

	"github.com/shardbit/shardbit/internal/slice"
	"github.com/shardbit/shardbit/pkg/status"
)

var ErrIndexClosed = stdErrors.New("operation failed: cannot access closed index")

// New creates an Index for (partition, bucket, field), backed by io for
// lazy materialization of value slices.
func New(config *Config) (*Index, *status.Status) {
	if config == nil || config.Partition == "" || config.Field == "" || config.IO == nil || config.Logger == nil {
		return nil, status.New(status.KindInvalidArgument, "index configuration is incomplete")
	}

	return &Index{
		partition: config.Partition,
		bucket:    config.Bucket,
		field:     config.Field,
		io:        config.IO,
		log:       config.Logger,
		metrics:   config.Metrics,
		slices:    make(map[uint64]*slice.IndexSlice),
	}, nil
}

// Close releases the Index's in-memory slices. An Index is not reusable
// after Close.
func (idx *Index) Close() error {
	if !idx.closed.CompareAndSwap(false, true) {
		return ErrIndexClosed
	}

	idx.log.Infow("closing index", "partition", idx.partition, "field", idx.field)

	idx.mu.Lock()
	defer idx.mu.Unlock()
	clear(idx.slices)
	idx.slices = nil

	return nil
}

// valueTag formats a numeric value as the string tag IndexSlice and
// SegmentIO use for routing-key context and logging.
func valueTag(value uint64) string {
	return strconv.FormatUint(value, 10)
}

// getOrLoad returns the slice for value, materializing it via io on
// first reference. Subsequent calls for the same value reuse the
// resident slice.
func (idx *Index) getOrLoad(ctx context.Context, value uint64) (*slice.IndexSlice, *status.Status) {
	idx.mu.RLock()
	s, ok := idx.slices[value]
	idx.mu.RUnlock()
	if ok {
		return s, nil
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()

	if s, ok := idx.slices[value]; ok {
		return s, nil
	}

	loaded, st := idx.io.ReadIndexSlice(ctx, idx.partition, idx.field, valueTag(value))
	if st != nil && status.KindOf(st) != status.KindNotFound {
		return nil, st
	}
	if loaded == nil {
		loaded = slice.New(idx.partition, idx.bucket, idx.field, valueTag(value))
	}

	idx.slices[value] = loaded
	return loaded, nil
}

// SetBit sets or clears bitAddr within value's slice, mutating the
// resident IndexSlice directly (not a copy) so a subsequent Slice or
// SliceAll for the same value observes the write within this Index.
func (idx *Index) SetBit(ctx context.Context, value uint64, bitAddr uint64, set bool) *status.Status {
	s, st := idx.getOrLoad(ctx, value)
	if st != nil {
		return st
	}
	return s.SetBit(ctx, idx.io, bitAddr, set)
}

// Slice copies the slice for value into output.
func (idx *Index) Slice(ctx context.Context, value uint64, output *slice.IndexSlice) *status.Status {
	s, st := idx.getOrLoad(ctx, value)
	if st != nil {
		return st
	}
	output.CopyFrom(s)
	return nil
}

// SliceRanges folds the slices for every value contained in any of
// ranges into output using op (typically Union or Intersection). Ranges
// with Lo > Hi are empty and contribute nothing.
func (idx *Index) SliceRanges(ctx context.Context, ranges []Range, op slice.Op, output *slice.IndexSlice) *status.Status {
	output.Reset()

	first := true
	for _, r := range ranges {
		if r.Empty() {
			continue
		}
		for v := r.Lo; v <= r.Hi; v++ {
			s, st := idx.getOrLoad(ctx, v)
			if st != nil {
				return st
			}

			if first {
				output.CopyFrom(s)
				first = false
				continue
			}
			start := time.Now()
			st = output.Execute(op, output, s, output)
			idx.metrics.ObserveMerge(op.String(), time.Since(start).Seconds())
			if st != nil {
				return st
			}
		}
	}
	return nil
}

// Preload eagerly materializes every value in values, so a subsequent
// SliceAll observes the complete value domain rather than only the
// values a prior point query happened to touch. Callers that construct
// an Index from a SegmentIO's read_index (which enumerates the full
// value domain up front) should call Preload once before handing the
// Index to a query.
func (idx *Index) Preload(ctx context.Context, values []uint64) *status.Status {
	for _, v := range values {
		if _, st := idx.getOrLoad(ctx, v); st != nil {
			return st
		}
	}
	return nil
}

// SliceAll materializes the union of every resident value's slice into
// output: a "field exists" bitset over every value seen so far.
func (idx *Index) SliceAll(ctx context.Context, output *slice.IndexSlice) *status.Status {
	idx.mu.RLock()
	values := make([]uint64, 0, len(idx.slices))
	for v := range idx.slices {
		values = append(values, v)
	}
	idx.mu.RUnlock()

	output.Reset()
	first := true
	for _, v := range values {
		s, st := idx.getOrLoad(ctx, v)
		if st != nil {
			return st
		}
		if first {
			output.CopyFrom(s)
			first = false
			continue
		}
		start := time.Now()
		st = output.Execute(slice.Union, output, s, output)
		idx.metrics.ObserveMerge(slice.Union.String(), time.Since(start).Seconds())
		if st != nil {
			return st
		}
	}
	return nil
}
