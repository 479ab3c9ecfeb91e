// Package shardbit is the public entry point into the bitmap-index core:
// it wires a SegmentIO implementation, the registry of per-field Indexes,
// and the predicate planner into a single handle a host process queries
// against, the same role this engine's top-level Instance plays for its
// own storage engine.
package shardbit

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/trace"

	"github.com/shardbit/shardbit/internal/ioadapter"
	"github.com/shardbit/shardbit/internal/planner"
	"github.com/shardbit/shardbit/internal/predicate"
	"github.com/shardbit/shardbit/internal/registry"
	"github.com/shardbit/shardbit/internal/segio"
	"github.com/shardbit/shardbit/internal/slice"
	"github.com/shardbit/shardbit/pkg/logger"
	"github.com/shardbit/shardbit/pkg/metrics"
	"github.com/shardbit/shardbit/pkg/options"
	"github.com/shardbit/shardbit/pkg/status"
	"github.com/shardbit/shardbit/pkg/tracing"
)

// Shard is the primary entry point for interacting with the bitmap-index
// core: it owns the registry of per-(partition, bucket, field) Indexes
// and the planner that reduces predicate trees against them.
type Shard struct {
	registry *registry.Context
	planner  *planner.Evaluator
	adapter  *ioadapter.IO // non-nil only when New built the default file-backed adapter
	options  *options.Options
}

// Config carries the dependencies New doesn't construct itself: a
// Prometheus registerer and OpenTelemetry tracer (both optional; nil
// disables the corresponding instrumentation), the RangeExpander a host
// supplies to resolve predicate.Regex slice values, and an IO override
// for hosts that want a SegmentIO backend other than the reference
// file-based ioadapter.
type Config struct {
	Registerer    prometheus.Registerer
	Tracer        trace.Tracer
	RangeExpander planner.RangeExpander
	IO            segio.IO
}

// New creates and initializes a Shard, building the default file-backed
// ioadapter.IO from opts unless config.IO overrides it.
func New(ctx context.Context, service string, config *Config, opts ...options.OptionFunc) (*Shard, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if config == nil {
		config = &Config{}
	}

	log := logger.New(service)

	resolved := options.NewDefaultOptions()
	for _, opt := range opts {
		opt(&resolved)
	}

	m := metrics.New(config.Registerer)
	tr := tracing.New(config.Tracer)

	io := config.IO
	var adapter *ioadapter.IO
	if io == nil {
		var err error
		adapter, err = ioadapter.New(&ioadapter.Config{Options: &resolved, Logger: log, Metrics: m, Tracer: tr})
		if err != nil {
			return nil, fmt.Errorf("shardbit: failed to build default storage adapter: %w", err)
		}
		io = adapter
	}

	reg, st := registry.New(&registry.Config{IO: io, Logger: log, Metrics: m, Tracer: tr})
	if st != nil {
		return nil, st
	}

	eval := &planner.Evaluator{Registry: reg, Expand: config.RangeExpander, Metrics: m, Tracer: tr}

	return &Shard{registry: reg, planner: eval, adapter: adapter, options: &resolved}, nil
}

// Evaluate reduces root against (partition, bucket) into a single
// IndexSlice, materializing and caching any referenced field's Index
// along the way.
func (s *Shard) Evaluate(ctx context.Context, partition, bucket string, root predicate.Node) *planner.Result {
	return s.planner.Evaluate(ctx, partition, bucket, root)
}

// SetBit sets or clears bitAddr within (partition, bucket, field, value),
// materializing the owning Index and segment on demand.
func (s *Shard) SetBit(ctx context.Context, partition, bucket, field string, value uint64, bitAddr uint64, set bool) *status.Status {
	idx, st := s.registry.GetIndex(ctx, partition, bucket, field)
	if st != nil {
		return st
	}
	return idx.SetBit(ctx, value, bitAddr, set)
}

// GetBit reports whether bitAddr is set within (partition, bucket, field,
// value).
func (s *Shard) GetBit(ctx context.Context, partition, bucket, field string, value uint64, bitAddr uint64) (bool, *status.Status) {
	idx, st := s.registry.GetIndex(ctx, partition, bucket, field)
	if st != nil {
		return false, st
	}

	output := slice.New(partition, bucket, field, "")
	if st := idx.Slice(ctx, value, output); st != nil {
		return false, st
	}
	return output.GetBit(bitAddr), nil
}

// Close releases every Index and the default storage adapter, if one was
// built. A Shard is not reusable after Close.
func (s *Shard) Close() error {
	if err := s.registry.Close(); err != nil {
		return err
	}
	if s.adapter != nil {
		s.adapter.Close()
	}
	return nil
}
