// Package registry implements Context: the coordinator that owns one
// Index per (partition, bucket, field) tuple and lazily materializes it
// via a SegmentIO implementation on first reference. The package is named
// registry, not context, so its exported Context type never shadows the
// stdlib context package that every method in this core accepts as its
// first argument.
package registry

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/shardbit/shardbit/internal/index"
	"github.com/shardbit/shardbit/internal/segio"
	"github.com/shardbit/shardbit/pkg/metrics"
	"github.com/shardbit/shardbit/pkg/status"
	"github.com/shardbit/shardbit/pkg/tracing"
)

// ErrContextClosed is returned when attempting to use a Context after Close.
var ErrContextClosed = errors.New("operation failed: cannot access closed registry context")

// key identifies one Index slot in the registry.
type key struct {
	partition string
	bucket    string
	field     string
}

// Context coordinates Index lifecycles across an application's queries.
// It is shared across queries and grows lazily; GetIndex calls for an
// already-registered key take only the read lock, while materializing a
// missing Index holds the Context-wide write lock across ReadIndex, so
// concurrent misses are serialized whatever their key (single-writer per
// Context, matching this core's stated concurrency contract).
type Context struct {
	io      segio.IO
	log     *zap.SugaredLogger
	metrics *metrics.Metrics
	tracer  *tracing.Tracer

	mu      sync.RWMutex
	indexes map[key]*index.Index
	closed  atomic.Bool
}

// Config configures a new Context.
type Config struct {
	IO      segio.IO
	Logger  *zap.SugaredLogger
	Metrics *metrics.Metrics
	Tracer  *tracing.Tracer
}

// New creates a Context backed by config.IO.
func New(config *Config) (*Context, *status.Status) {
	if config == nil || config.IO == nil || config.Logger == nil {
		return nil, status.New(status.KindInvalidArgument, "registry configuration is incomplete")
	}

	return &Context{
		io:      config.IO,
		log:     config.Logger,
		metrics: config.Metrics,
		tracer:  config.Tracer,
		indexes: make(map[key]*index.Index),
	}, nil
}

// GetIndex returns the Index for (partition, bucket, field), creating and
// registering it via the configured SegmentIO if absent.
func (c *Context) GetIndex(ctx context.Context, partition, bucket, field string) (*index.Index, *status.Status) {
	if c.closed.Load() {
		return nil, status.Wrap(ErrContextClosed, status.KindIndexOperation, "registry context closed")
	}

	ctx, span := c.tracer.Start(ctx, "registry.Context.GetIndex")
	defer span.End()

	k := key{partition: partition, bucket: bucket, field: field}

	c.mu.RLock()
	idx, ok := c.indexes[k]
	c.mu.RUnlock()
	if ok {
		return idx, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if idx, ok := c.indexes[k]; ok {
		return idx, nil
	}

	loaded, st := c.io.ReadIndex(ctx, partition, bucket, field)
	if st != nil {
		c.log.Errorw("failed to materialize index",
			"partition", partition, "bucket", bucket, "field", field, "error", st)
		return nil, st.WithPartition(partition).WithBucket(bucket).WithField(field)
	}
	if loaded == nil {
		built, bst := index.New(&index.Config{
			Partition: partition,
			Bucket:    bucket,
			Field:     field,
			IO:        c.io,
			Logger:    c.log,
			Metrics:   c.metrics,
		})
		if bst != nil {
			return nil, bst
		}
		loaded = built
	}

	c.indexes[k] = loaded
	c.log.Debugw("materialized index", "partition", partition, "bucket", bucket, "field", field)
	return loaded, nil
}

// Close releases every Index the Context has materialized. A Context is
// not reusable after Close.
func (c *Context) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return ErrContextClosed
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	var firstErr error
	for k, idx := range c.indexes {
		if err := idx.Close(); err != nil && firstErr == nil {
			firstErr = err
			c.log.Errorw("failed to close index", "partition", k.partition, "field", k.field, "error", err)
		}
	}
	clear(c.indexes)
	c.indexes = nil

	return firstErr
}
