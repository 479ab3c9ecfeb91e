package index

import (
	"context"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/shardbit/shardbit/internal/slice"
	"github.com/shardbit/shardbit/pkg/metrics"
	"github.com/shardbit/shardbit/pkg/status"
)

// Range is an inclusive bound [Lo, Hi] over the value domain of a field.
// A Range with Lo > Hi is empty.
type Range struct {
	Lo uint64
	Hi uint64
}

// Empty reports whether r contains no values.
func (r Range) Empty() bool { return r.Lo > r.Hi }

// SliceReader is the minimal capability Index needs to materialize a
// value's slice lazily. It is structurally satisfied by segio.IO without
// this package importing segio, which in turn needs to reference Index's
// own type and would otherwise create an import cycle.
type SliceReader interface {
	ReadIndexSlice(ctx context.Context, partition, field, value string) (*slice.IndexSlice, *status.Status)
	slice.SegmentReadWriter
}

// Index is the set of IndexSlices for every discrete value of one
// (partition, bucket, field) tuple. Slices materialize lazily via the
// configured SliceReader the first time a value is referenced.
type Index struct {
	partition string
	bucket    string
	field     string

	io      SliceReader
	log     *zap.SugaredLogger
	metrics *metrics.Metrics

	mu     sync.RWMutex
	slices map[uint64]*slice.IndexSlice
	closed atomic.Bool
}

// Config configures a new Index.
type Config struct {
	Partition string
	Bucket    string
	Field     string
	IO        SliceReader
	Logger    *zap.SugaredLogger
	Metrics   *metrics.Metrics
}
