package index

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"github.com/shardbit/shardbit/internal/segment"
	"github.com/shardbit/shardbit/internal/slice"
	"github.com/shardbit/shardbit/pkg/status"
)

// fakeReader is a SliceReader backed by an in-memory map, for tests.
type fakeReader struct {
	segments map[uint64]segment.Segment
	slices   map[string]*slice.IndexSlice
}

func newFakeReader() *fakeReader {
	return &fakeReader{
		segments: make(map[uint64]segment.Segment),
		slices:   make(map[string]*slice.IndexSlice),
	}
}

func (f *fakeReader) ReadIndexSlice(_ context.Context, partition, field, value string) (*slice.IndexSlice, *status.Status) {
	if s, ok := f.slices[value]; ok {
		return s, nil
	}
	return nil, status.New(status.KindNotFound, "slice not found")
}

func (f *fakeReader) ReadSegment(_ context.Context, _, _, _, _ string, offset uint64) (segment.Segment, *status.Status) {
	if s, ok := f.segments[offset]; ok {
		return s, nil
	}
	return segment.Segment{}, status.New(status.KindNotFound, "segment not found")
}

func (f *fakeReader) WriteSegment(_ context.Context, _, _, _, _ string, offset uint64, s segment.Segment) *status.Status {
	f.segments[offset] = s
	return nil
}

func newTestIndex(t *testing.T, io SliceReader) *Index {
	t.Helper()
	idx, st := New(&Config{Partition: "p", Bucket: "b", Field: "f", IO: io, Logger: zap.NewNop().Sugar()})
	if st != nil {
		t.Fatalf("New: %v", st)
	}
	return idx
}

func seedValue(reader *fakeReader, value uint64, bits ...uint64) {
	s := slice.New("p", "b", "f", valueTag(value))
	for _, bit := range bits {
		if st := s.SetBit(context.Background(), reader, bit, true); st != nil {
			panic(st)
		}
	}
	reader.slices[valueTag(value)] = s
}

func TestSliceMaterializesOnDemand(t *testing.T) {
	reader := newFakeReader()
	seedValue(reader, 5, 1, 5000)
	idx := newTestIndex(t, reader)

	out := slice.New("p", "b", "f", "out")
	if st := idx.Slice(context.Background(), 5, out); st != nil {
		t.Fatalf("Slice: %v", st)
	}
	if !out.GetBit(1) || !out.GetBit(5000) {
		t.Fatal("expected materialized bits present in the copied output")
	}
}

func TestSliceOfMissingValueIsEmpty(t *testing.T) {
	reader := newFakeReader()
	idx := newTestIndex(t, reader)

	out := slice.New("p", "b", "f", "out")
	if st := idx.Slice(context.Background(), 999, out); st != nil {
		t.Fatalf("Slice of missing value should not error: %v", st)
	}
	if out.Len() != 0 {
		t.Fatal("expected an empty slice for a value with no recorded data")
	}
}

func TestSliceRangesUnion(t *testing.T) {
	reader := newFakeReader()
	seedValue(reader, 1, 100)
	seedValue(reader, 2, 200)
	seedValue(reader, 3, 300)
	idx := newTestIndex(t, reader)

	out := slice.New("p", "b", "f", "out")
	ranges := []Range{{Lo: 1, Hi: 2}}
	if st := idx.SliceRanges(context.Background(), ranges, slice.Union, out); st != nil {
		t.Fatalf("SliceRanges: %v", st)
	}
	if !out.GetBit(100) || !out.GetBit(200) {
		t.Fatal("expected bits from values 1 and 2")
	}
	if out.GetBit(300) {
		t.Fatal("value 3 is outside the requested range")
	}
}

func TestSliceRangesSkipsEmptyRange(t *testing.T) {
	reader := newFakeReader()
	seedValue(reader, 1, 100)
	idx := newTestIndex(t, reader)

	out := slice.New("p", "b", "f", "out")
	ranges := []Range{{Lo: 5, Hi: 1}, {Lo: 1, Hi: 1}}
	if st := idx.SliceRanges(context.Background(), ranges, slice.Union, out); st != nil {
		t.Fatalf("SliceRanges: %v", st)
	}
	if !out.GetBit(100) {
		t.Fatal("expected the non-empty range to still contribute")
	}
}

func TestPreloadThenSliceAll(t *testing.T) {
	reader := newFakeReader()
	seedValue(reader, 1, 10)
	seedValue(reader, 2, 20)
	idx := newTestIndex(t, reader)

	if st := idx.Preload(context.Background(), []uint64{1, 2}); st != nil {
		t.Fatalf("Preload: %v", st)
	}

	out := slice.New("p", "b", "f", "out")
	if st := idx.SliceAll(context.Background(), out); st != nil {
		t.Fatalf("SliceAll: %v", st)
	}
	if !out.GetBit(10) || !out.GetBit(20) {
		t.Fatal("expected union of every preloaded value's slice")
	}
}

func TestSetBitMutatesResidentSliceInPlace(t *testing.T) {
	reader := newFakeReader()
	seedValue(reader, 5, 1)
	idx := newTestIndex(t, reader)

	// materialize value 5 first so SetBit mutates the cached slice, not a copy
	out := slice.New("p", "b", "f", "out")
	if st := idx.Slice(context.Background(), 5, out); st != nil {
		t.Fatalf("Slice: %v", st)
	}

	if st := idx.SetBit(context.Background(), 5, 2000, true); st != nil {
		t.Fatalf("SetBit: %v", st)
	}

	after := slice.New("p", "b", "f", "out")
	if st := idx.Slice(context.Background(), 5, after); st != nil {
		t.Fatalf("Slice after SetBit: %v", st)
	}
	if !after.GetBit(2000) {
		t.Fatal("expected SetBit to be visible to a subsequent Slice on the same Index")
	}
	if !after.GetBit(1) {
		t.Fatal("expected the originally seeded bit to remain set")
	}
}

func TestCloseIsIdempotentProtected(t *testing.T) {
	reader := newFakeReader()
	idx := newTestIndex(t, reader)

	if err := idx.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := idx.Close(); err != ErrIndexClosed {
		t.Fatalf("expected ErrIndexClosed on second Close, got %v", err)
	}
}
