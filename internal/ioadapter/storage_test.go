package ioadapter

import (
	"context"
	"testing"

	"github.com/kylelemons/godebug/pretty"
	"go.uber.org/zap"

	"github.com/shardbit/shardbit/internal/segment"
	"github.com/shardbit/shardbit/internal/slice"
	"github.com/shardbit/shardbit/pkg/options"
	"github.com/shardbit/shardbit/pkg/status"
)

func newTestIO(t *testing.T, compress bool) *IO {
	t.Helper()
	opts := options.NewDefaultOptions()
	opts.DataDir = t.TempDir()
	opts.EnableCompression = compress

	io, err := New(&Config{Options: &opts, Logger: zap.NewNop().Sugar()})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(io.Close)
	return io
}

func sparseSegment(bits ...uint) segment.Segment {
	var s segment.Segment
	for _, b := range bits {
		s.SetBit(0, b, true)
	}
	return s
}

func TestWriteThenReadSegmentRoundTrips(t *testing.T) {
	io := newTestIO(t, false)
	ctx := context.Background()
	seg := sparseSegment(1, 5, 63)

	if st := io.WriteSegment(ctx, "p", "b", "f", "7", 3, seg); st != nil {
		t.Fatalf("WriteSegment: %v", st)
	}
	got, st := io.ReadSegment(ctx, "p", "b", "f", "7", 3)
	if st != nil {
		t.Fatalf("ReadSegment: %v", st)
	}
	if diff := pretty.Compare(seg, got); diff != "" {
		t.Fatalf("round-tripped segment differs: %s", diff)
	}
}

func TestReadSegmentMissIsNotFound(t *testing.T) {
	io := newTestIO(t, false)
	_, st := io.ReadSegment(context.Background(), "p", "b", "f", "7", 9)
	if st == nil || status.KindOf(st) != status.KindNotFound {
		t.Fatalf("expected KindNotFound, got %v", st)
	}
}

func TestWriteSegmentCompressesAndDecompressesTransparently(t *testing.T) {
	io := newTestIO(t, true)
	ctx := context.Background()
	seg := sparseSegment(0) // one bit set, highly compressible

	if st := io.WriteSegment(ctx, "p", "b", "f", "7", 0, seg); st != nil {
		t.Fatalf("WriteSegment: %v", st)
	}
	got, st := io.ReadSegment(ctx, "p", "b", "f", "7", 0)
	if st != nil {
		t.Fatalf("ReadSegment: %v", st)
	}
	if got != seg {
		t.Fatal("decompressed segment does not match original")
	}
}

func TestWriteSegmentReplacesStaleCompressedRepresentation(t *testing.T) {
	io := newTestIO(t, true)
	ctx := context.Background()

	sparse := sparseSegment(0)
	if st := io.WriteSegment(ctx, "p", "b", "f", "7", 0, sparse); st != nil {
		t.Fatalf("WriteSegment sparse: %v", st)
	}

	dense := sparseSegment(0, 1, 2, 3, 4, 5, 6, 7)
	if st := io.WriteSegment(ctx, "p", "b", "f", "7", 0, dense); st != nil {
		t.Fatalf("WriteSegment dense: %v", st)
	}

	got, st := io.ReadSegment(ctx, "p", "b", "f", "7", 0)
	if st != nil {
		t.Fatalf("ReadSegment: %v", st)
	}
	if got != dense {
		t.Fatal("expected the later write to win over the earlier representation")
	}
}

func TestReadIndexSliceAssemblesOrderedNodes(t *testing.T) {
	io := newTestIO(t, false)
	ctx := context.Background()

	for _, offset := range []uint64{5, 1, 3} {
		seg := sparseSegment(uint(offset))
		if st := io.WriteSegment(ctx, "p", "", "f", "7", offset, seg); st != nil {
			t.Fatalf("WriteSegment offset %d: %v", offset, st)
		}
	}

	s, st := io.ReadIndexSlice(ctx, "p", "f", "7")
	if st != nil {
		t.Fatalf("ReadIndexSlice: %v", st)
	}
	if s.Len() != 3 {
		t.Fatalf("expected 3 nodes, got %d", s.Len())
	}
	nodes := s.Nodes()
	for i := 1; i < len(nodes); i++ {
		if nodes[i-1].Offset >= nodes[i].Offset {
			t.Fatalf("nodes not strictly ascending: %v", nodes)
		}
	}
}

func TestReadIndexSliceMissingValueIsEmpty(t *testing.T) {
	io := newTestIO(t, false)
	s, st := io.ReadIndexSlice(context.Background(), "p", "f", "missing")
	if st != nil {
		t.Fatalf("ReadIndexSlice: %v", st)
	}
	if s.Len() != 0 {
		t.Fatal("expected an empty slice for a value with no directory")
	}
}

func TestReadIndexPreloadsDiscoveredValues(t *testing.T) {
	io := newTestIO(t, false)
	ctx := context.Background()

	for _, value := range []string{"1", "2"} {
		seg := sparseSegment(0)
		if st := io.WriteSegment(ctx, "p", "b", "f", value, 0, seg); st != nil {
			t.Fatalf("WriteSegment value %s: %v", value, st)
		}
	}

	idx, st := io.ReadIndex(ctx, "p", "b", "f")
	if st != nil {
		t.Fatalf("ReadIndex: %v", st)
	}

	output := slice.New("p", "b", "f", "")
	if st := idx.SliceAll(ctx, output); st != nil {
		t.Fatalf("SliceAll: %v", st)
	}
	if !output.GetBit(0) {
		t.Fatal("expected SliceAll to include bits from both preloaded values")
	}
}

func TestEstimateSizeSumsSegmentFiles(t *testing.T) {
	io := newTestIO(t, false)
	ctx := context.Background()

	if st := io.WriteSegment(ctx, "p", "", "f", "7", 0, sparseSegment(0)); st != nil {
		t.Fatalf("WriteSegment: %v", st)
	}
	if st := io.WriteSegment(ctx, "p", "", "f", "7", 1, sparseSegment(1)); st != nil {
		t.Fatalf("WriteSegment: %v", st)
	}

	size, st := io.EstimateSize(ctx, "p", "f", "7")
	if st != nil {
		t.Fatalf("EstimateSize: %v", st)
	}
	if size != 2*segment.Bits/8 {
		t.Fatalf("expected %d bytes, got %d", 2*segment.Bits/8, size)
	}
}
