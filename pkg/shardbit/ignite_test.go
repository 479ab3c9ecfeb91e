package shardbit

import (
	"context"
	"testing"

	"github.com/shardbit/shardbit/internal/predicate"
	"github.com/shardbit/shardbit/pkg/options"
)

func newTestShard(t *testing.T) *Shard {
	t.Helper()
	s, err := New(context.Background(), "test", nil, options.WithDataDir(t.TempDir()))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("Close: %v", err)
		}
	})
	return s
}

func TestShardSetBitThenGetBit(t *testing.T) {
	s := newTestShard(t)
	ctx := context.Background()

	if st := s.SetBit(ctx, "p", "b", "color", 7, 42, true); st != nil {
		t.Fatalf("SetBit: %v", st)
	}

	got, st := s.GetBit(ctx, "p", "b", "color", 7, 42)
	if st != nil {
		t.Fatalf("GetBit: %v", st)
	}
	if !got {
		t.Fatal("expected bit 42 to be set")
	}

	got, st = s.GetBit(ctx, "p", "b", "color", 7, 43)
	if st != nil {
		t.Fatalf("GetBit: %v", st)
	}
	if got {
		t.Fatal("bit 43 was never set")
	}
}

func TestShardEvaluateSliceAgainstWrittenBits(t *testing.T) {
	s := newTestShard(t)
	ctx := context.Background()

	if st := s.SetBit(ctx, "p", "b", "color", 7, 100, true); st != nil {
		t.Fatalf("SetBit: %v", st)
	}

	root := predicate.Slice{Field: "color", Values: []predicate.SliceValue{predicate.Range{Lo: 7, Hi: 7}}}
	result := s.Evaluate(ctx, "p", "b", root)
	if result.Status != nil {
		t.Fatalf("Evaluate: %v", result.Status)
	}
	if !result.Slice.GetBit(100) {
		t.Fatal("expected the evaluated slice to contain the bit written via SetBit")
	}
}
