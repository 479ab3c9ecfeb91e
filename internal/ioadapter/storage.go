package ioadapter

import (
	"context"
	"fmt"
	"sort"

	"github.com/klauspost/compress/zstd"

	"github.com/shardbit/shardbit/internal/index"
	"github.com/shardbit/shardbit/internal/segio"
	"github.com/shardbit/shardbit/internal/segment"
	"github.com/shardbit/shardbit/internal/slice"
	"github.com/shardbit/shardbit/pkg/filesys"
	"github.com/shardbit/shardbit/pkg/seginfo"
	"github.com/shardbit/shardbit/pkg/status"
)

var _ segio.IO = (*IO)(nil)

// New builds a file-backed IO rooted at config.Options.DataDir.
func New(config *Config) (*IO, error) {
	if config == nil || config.Options == nil || config.Logger == nil {
		return nil, fmt.Errorf("ioadapter: configuration is incomplete")
	}

	if err := filesys.CreateDir(config.Options.DataDir, config.Options.DirPermission); err != nil {
		return nil, fmt.Errorf("ioadapter: failed to create data directory %s: %w", config.Options.DataDir, err)
	}

	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, fmt.Errorf("ioadapter: failed to build zstd encoder: %w", err)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("ioadapter: failed to build zstd decoder: %w", err)
	}

	return &IO{
		options: config.Options,
		log:     config.Logger,
		metrics: config.Metrics,
		tracer:  config.Tracer,
		encoder: enc,
		decoder: dec,
		bufPool: newEncodeBufPool(),
	}, nil
}

// Close releases the zstd encoder/decoder goroutines.
func (io *IO) Close() {
	io.encoder.Close()
	io.decoder.Close()
}

func (io *IO) valueDir(partition, bucket, field, value string) string {
	return filesys.Join(io.options.DataDir, partition, bucket, field, value)
}

// ReadSegment loads the segment at offset from disk, transparently
// decompressing it if it was stored compressed. A clean miss reports
// KindNotFound, never a generic I/O failure.
func (io *IO) ReadSegment(ctx context.Context, partition, bucket, field, value string, offset uint64) (segment.Segment, *status.Status) {
	ctx, span := io.tracer.Start(ctx, "ioadapter.IO.ReadSegment")
	defer span.End()

	if io.options.IOTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, io.options.IOTimeout)
		defer cancel()
	}

	if err := ctx.Err(); err != nil {
		return segment.Segment{}, status.Wrap(err, status.KindIndexIoRead, "read canceled")
	}

	dir := io.valueDir(partition, bucket, field, value)

	for _, compressed := range [...]bool{false, true} {
		path := filesys.Join(dir, seginfo.GenerateName(offset, compressed))
		exists, err := filesys.Exists(path)
		if err != nil {
			io.metrics.ObserveSegmentRead("error")
			return segment.Segment{}, io.ioError(status.KindIndexIoRead, "failed to stat segment file", err, partition, bucket, field, value, offset)
		}
		if !exists {
			continue
		}

		raw, err := filesys.ReadFile(path)
		if err != nil {
			io.metrics.ObserveSegmentRead("error")
			return segment.Segment{}, io.ioError(status.KindIndexIoRead, "failed to read segment file", err, partition, bucket, field, value, offset)
		}

		if compressed {
			raw, err = io.decoder.DecodeAll(raw, nil)
			if err != nil {
				io.metrics.ObserveSegmentRead("error")
				return segment.Segment{}, io.ioError(status.KindIndexIoRead, "failed to decompress segment", err, partition, bucket, field, value, offset)
			}
		}

		if len(raw) != segment.Bits/8 {
			io.metrics.ObserveSegmentRead("error")
			return segment.Segment{}, status.New(status.KindIndexIoRead, "segment file has unexpected size").
				WithPartition(partition).WithBucket(bucket).WithField(field).WithValue(value).WithOffset(offset).
				WithDetail("size", len(raw))
		}

		var arr [segment.Bits / 8]byte
		copy(arr[:], raw)
		io.metrics.ObserveSegmentRead("hit")
		return segment.FromBytes(arr), nil
	}

	io.metrics.ObserveSegmentRead("miss")
	return segio.NotFoundSegment(partition, bucket, field, value, offset)
}

// WriteSegment persists s at offset, compressing it when
// EnableCompression is set and the compressed form is smaller than the
// raw 256-byte encoding. Stale representations under the other extension
// are removed so a later read never finds two conflicting copies.
func (io *IO) WriteSegment(ctx context.Context, partition, bucket, field, value string, offset uint64, s segment.Segment) *status.Status {
	ctx, span := io.tracer.Start(ctx, "ioadapter.IO.WriteSegment")
	defer span.End()

	if io.options.IOTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, io.options.IOTimeout)
		defer cancel()
	}

	if err := ctx.Err(); err != nil {
		return status.Wrap(err, status.KindIndexIoWrite, "write canceled")
	}

	dir := io.valueDir(partition, bucket, field, value)
	if err := filesys.CreateDir(dir, io.options.DirPermission); err != nil {
		io.metrics.ObserveSegmentWrite("error")
		return io.ioError(status.KindIndexIoWrite, "failed to create value directory", err, partition, bucket, field, value, offset)
	}

	raw := s.Bytes()
	payload := raw[:]
	compressed := false

	if io.options.EnableCompression {
		buf := io.bufPool.Get()
		buf.b = io.encoder.EncodeAll(raw[:], buf.b[:0])
		if len(buf.b) < len(raw) {
			payload = buf.b
			compressed = true
		}
		defer io.bufPool.Put(buf)
	}

	path := filesys.Join(dir, seginfo.GenerateName(offset, compressed))
	if err := filesys.WriteFile(path, io.options.FilePermission, payload); err != nil {
		io.metrics.ObserveSegmentWrite("error")
		return io.ioError(status.KindIndexIoWrite, "failed to write segment file", err, partition, bucket, field, value, offset)
	}

	staleName := seginfo.GenerateName(offset, !compressed)
	if err := filesys.RemoveFile(filesys.Join(dir, staleName)); err != nil {
		io.log.Warnw("failed to remove stale segment representation", "path", staleName, "error", err)
	}

	io.metrics.ObserveSegmentWrite("ok")
	return nil
}

// ReadIndexSlice enumerates every segment file in the value's directory
// and assembles them into an ordered IndexSlice. A value with no
// directory yet is a clean miss, not an error. segio.IO carries no
// bucket in this signature, so direct callers address bucket "".
func (io *IO) ReadIndexSlice(ctx context.Context, partition, field, value string) (*slice.IndexSlice, *status.Status) {
	ctx, span := io.tracer.Start(ctx, "ioadapter.IO.ReadIndexSlice")
	defer span.End()
	return io.readIndexSlice(ctx, partition, "", field, value)
}

func (io *IO) readIndexSlice(ctx context.Context, partition, bucket, field, value string) (*slice.IndexSlice, *status.Status) {
	dir := io.valueDir(partition, bucket, field, value)
	names, err := filesys.ListDir(dir)
	if err != nil {
		return nil, io.ioError(status.KindIndexIoRead, "failed to list value directory", err, partition, bucket, field, value, 0)
	}

	offsets := make([]uint64, 0, len(names))
	seen := make(map[uint64]bool, len(names))
	for _, name := range names {
		offset, _, ok := seginfo.ParseName(name)
		if !ok || seen[offset] {
			continue
		}
		seen[offset] = true
		offsets = append(offsets, offset)
	}
	sort.Slice(offsets, func(i, j int) bool { return offsets[i] < offsets[j] })

	nodes := make([]slice.IndexNode, 0, len(offsets))
	for _, offset := range offsets {
		seg, st := io.ReadSegment(ctx, partition, bucket, field, value, offset)
		if st != nil && status.KindOf(st) != status.KindNotFound {
			return nil, st
		}
		nodes = append(nodes, slice.IndexNode{Offset: offset, Segment: seg})
	}

	return slice.FromNodes(partition, bucket, field, value, nodes), nil
}

// ReadIndex enumerates every value subdirectory for (partition, bucket,
// field), builds an Index bound to this store, and preloads every
// discovered value's slice so a subsequent SliceAll observes the full
// value domain rather than only what a point query happened to touch.
func (io *IO) ReadIndex(ctx context.Context, partition, bucket, field string) (*index.Index, *status.Status) {
	ctx, span := io.tracer.Start(ctx, "ioadapter.IO.ReadIndex")
	defer span.End()

	dir := filesys.Join(io.options.DataDir, partition, bucket, field)
	names, err := filesys.ListSubdirs(dir)
	if err != nil {
		return nil, io.ioError(status.KindIndexIoRead, "failed to list field directory", err, partition, bucket, field, "", 0)
	}

	idx, bst := index.New(&index.Config{
		Partition: partition,
		Bucket:    bucket,
		Field:     field,
		IO:        indexReader{io: io, bucket: bucket},
		Logger:    io.log,
		Metrics:   io.metrics,
	})
	if bst != nil {
		return nil, bst
	}

	values := make([]uint64, 0, len(names))
	for _, name := range names {
		var v uint64
		if _, err := fmt.Sscanf(name, "%d", &v); err == nil {
			values = append(values, v)
		}
	}

	if st := idx.Preload(ctx, values); st != nil {
		return nil, st
	}
	return idx, nil
}

// EstimateSize sums the byte size of every segment file for (partition,
// field, value). A best-effort 0 is returned for a value with no
// directory yet.
func (io *IO) EstimateSize(ctx context.Context, partition, field, value string) (uint64, *status.Status) {
	dir := io.valueDir(partition, "", field, value)
	names, err := filesys.ListDir(dir)
	if err != nil {
		return 0, io.ioError(status.KindIndexIoRead, "failed to list value directory", err, partition, "", field, value, 0)
	}

	var total uint64
	for _, name := range names {
		raw, err := filesys.ReadFile(filesys.Join(dir, name))
		if err != nil {
			continue
		}
		total += uint64(len(raw))
	}
	return total, nil
}

func (io *IO) ioError(kind status.Kind, msg string, cause error, partition, bucket, field, value string, offset uint64) *status.Status {
	return status.Wrap(cause, kind, msg).
		WithPartition(partition).WithBucket(bucket).WithField(field).WithValue(value).WithOffset(offset)
}

// indexReader adapts IO to index.SliceReader, binding the bucket that
// segio.IO's ReadIndexSlice signature doesn't carry but the on-disk
// layout still needs to locate a value's directory.
type indexReader struct {
	io     *IO
	bucket string
}

func (r indexReader) ReadIndexSlice(ctx context.Context, partition, field, value string) (*slice.IndexSlice, *status.Status) {
	return r.io.readIndexSlice(ctx, partition, r.bucket, field, value)
}

func (r indexReader) ReadSegment(ctx context.Context, partition, bucket, field, value string, offset uint64) (segment.Segment, *status.Status) {
	return r.io.ReadSegment(ctx, partition, bucket, field, value, offset)
}

func (r indexReader) WriteSegment(ctx context.Context, partition, bucket, field, value string, offset uint64, s segment.Segment) *status.Status {
	return r.io.WriteSegment(ctx, partition, bucket, field, value, offset, s)
}
