package ioadapter

import (
	"github.com/klauspost/compress/zstd"
	"go.uber.org/zap"

	"github.com/colega/zeropool"

	"github.com/shardbit/shardbit/internal/segment"
	"github.com/shardbit/shardbit/pkg/metrics"
	"github.com/shardbit/shardbit/pkg/options"
	"github.com/shardbit/shardbit/pkg/tracing"
)

// IO is the reference, file-backed implementation of segio.IO: every
// Segment is its own file under dataDir/partition/bucket/field/value/,
// named by seginfo. It descends from this engine's append-only segment
// file manager, reworked from rotating write-ahead-log segments into
// one-file-per-fixed-size-bitmap-segment storage.
type IO struct {
	options *options.Options
	log     *zap.SugaredLogger
	metrics *metrics.Metrics
	tracer  *tracing.Tracer

	encoder *zstd.Encoder
	decoder *zstd.Decoder
	bufPool zeropool.Pool[*encodeBuf]
}

// encodeBuf is the scratch buffer zeropool recycles across zstd encodes.
type encodeBuf struct {
	b []byte
}

func newEncodeBufPool() zeropool.Pool[*encodeBuf] {
	return zeropool.New(func() *encodeBuf { return &encodeBuf{b: make([]byte, 0, segment.Bits/8)} })
}

// Config encapsulates the parameters required to initialize an IO.
type Config struct {
	Options *options.Options
	Logger  *zap.SugaredLogger
	Metrics *metrics.Metrics
	Tracer  *tracing.Tracer
}
