// Package slice implements IndexSlice: a sparse, ordered collection of
// segment-offset-to-Segment nodes that represents one bitset keyed by
// 64-bit addresses. The two-pointer union/intersection/symmetric-difference
// merges are a direct generalization of this engine's source material,
// which only implemented union and intersection; the spec mandates a
// symmetric-difference merge, added here with the same node-finding
// discipline as the other two.
package slice

import (
	"context"

	"github.com/shardbit/shardbit/internal/segment"
	"github.com/shardbit/shardbit/pkg/status"
)

// Op identifies a set-algebra operation Execute can perform.
type Op int

const (
	Union Op = iota
	Intersection
	SymmetricDifference
)

// String names op for metric labels and log fields.
func (op Op) String() string {
	switch op {
	case Union:
		return "union"
	case Intersection:
		return "intersection"
	case SymmetricDifference:
		return "symmetric_difference"
	default:
		return "unknown"
	}
}

// IndexNode is one sparse entry in an IndexSlice: the Segment that owns
// bit addresses [offset*segment.Bits, (offset+1)*segment.Bits).
type IndexNode struct {
	Offset  uint64
	Segment segment.Segment
}

// SegmentReadWriter is the minimal I/O capability IndexSlice needs to
// populate and persist segments it doesn't already hold. It is kept
// separate from the fuller segio.IO interface so this package never needs
// to import segio (which itself depends on slice for its return types).
type SegmentReadWriter interface {
	ReadSegment(ctx context.Context, partition, bucket, field, value string, offset uint64) (segment.Segment, *status.Status)
	WriteSegment(ctx context.Context, partition, bucket, field, value string, offset uint64, s segment.Segment) *status.Status
}

// IndexSlice is an ordered sequence of IndexNodes sorted by Offset
// ascending with unique offsets. A missing offset is equivalent to an
// all-zero segment.
type IndexSlice struct {
	Partition string
	Bucket    string
	Field     string
	Value     string

	nodes []IndexNode
}

// New creates an empty IndexSlice addressed at (partition, bucket, field, value).
func New(partition, bucket, field, value string) *IndexSlice {
	return &IndexSlice{Partition: partition, Bucket: bucket, Field: field, Value: value}
}

// FromNodes builds an IndexSlice directly from a node list a caller has
// already assembled in offset order with unique offsets (e.g. a
// SegmentIO implementation that enumerated persisted segment files).
// The caller is responsible for the ordering invariant; FromNodes does
// not sort or deduplicate.
func FromNodes(partition, bucket, field, value string, nodes []IndexNode) *IndexSlice {
	return &IndexSlice{Partition: partition, Bucket: bucket, Field: field, Value: value, nodes: nodes}
}

// Len reports the number of populated nodes.
func (s *IndexSlice) Len() int { return len(s.nodes) }

// Nodes returns the underlying node slice. Callers must not mutate it;
// it is exposed for read-only iteration by Index and the planner.
func (s *IndexSlice) Nodes() []IndexNode { return s.nodes }

// Reset empties the slice, keeping its (partition, bucket, field, value) tag.
func (s *IndexSlice) Reset() { s.nodes = s.nodes[:0] }

// findInsertionPoint returns the index of the first node whose Offset is
// >= target, or len(nodes) if none. Mirrors this engine's find_insertion_point.
func findInsertionPoint(nodes []IndexNode, target uint64) int {
	lo, hi := 0, len(nodes)
	for lo < hi {
		mid := (lo + hi) / 2
		if nodes[mid].Offset < target {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo
}

// GetBit decomposes bitAddr and reports whether it is set. A missing
// segment node reports false without error.
func (s *IndexSlice) GetBit(bitAddr uint64) bool {
	off, word, bit := segment.Decompose(bitAddr)
	i := findInsertionPoint(s.nodes, off)
	if i == len(s.nodes) || s.nodes[i].Offset != off {
		return false
	}
	return s.nodes[i].Segment.GetBit(word, bit)
}

// SetBit decomposes bitAddr, materializing the owning segment via rw if
// the slice doesn't already hold it (a read miss yields a zero segment,
// not a failure), sets or clears the bit, then persists the segment via
// rw. Failure at the read stage aborts without modifying the slice;
// failure at the write stage leaves the in-memory bit set but is
// reported to the caller.
func (s *IndexSlice) SetBit(ctx context.Context, rw SegmentReadWriter, bitAddr uint64, value bool) *status.Status {
	off, word, bit := segment.Decompose(bitAddr)
	i := findInsertionPoint(s.nodes, off)

	if i == len(s.nodes) || s.nodes[i].Offset != off {
		seg, st := rw.ReadSegment(ctx, s.Partition, s.Bucket, s.Field, s.Value, off)
		if st != nil && status.KindOf(st) != status.KindNotFound {
			return st
		}
		node := IndexNode{Offset: off, Segment: seg}
		s.nodes = append(s.nodes, IndexNode{})
		copy(s.nodes[i+1:], s.nodes[i:])
		s.nodes[i] = node
	}

	s.nodes[i].Segment.SetBit(word, bit, value)
	return rw.WriteSegment(ctx, s.Partition, s.Bucket, s.Field, s.Value, off, s.nodes[i].Segment)
}

// Invert complements every populated segment in place. Because the slice
// is sparse, missing segments are not materialized: a full complement
// would require an upper bound on addressable offsets, which IndexSlice
// does not track. The planner's Not handling calls Invert as is, so
// addresses in missing segments stay false after Not as well.
func (s *IndexSlice) Invert() {
	for i := range s.nodes {
		s.nodes[i].Segment = segment.Invert(s.nodes[i].Segment)
	}
}

// getUnionOutputNode finds or inserts the output node at offset, starting
// the search from position i. It returns the node's position.
func getUnionOutputNode(output *IndexSlice, i int, offset uint64) int {
	i += findInsertionPoint(output.nodes[i:], offset)
	if i == len(output.nodes) || output.nodes[i].Offset != offset {
		output.nodes = append(output.nodes, IndexNode{})
		copy(output.nodes[i+1:], output.nodes[i:])
		output.nodes[i] = IndexNode{Offset: offset}
	}
	return i
}

// getIntersectionOutputNode finds or inserts the output node at offset,
// erasing any output nodes with offsets strictly less than offset along
// the way so that stale contents of an aliased output are pruned.
func getIntersectionOutputNode(output *IndexSlice, i int, offset uint64) int {
	for {
		if i == len(output.nodes) || output.nodes[i].Offset > offset {
			output.nodes = append(output.nodes, IndexNode{})
			copy(output.nodes[i+1:], output.nodes[i:])
			output.nodes[i] = IndexNode{Offset: offset}
			return i
		}
		if output.nodes[i].Offset == offset {
			return i
		}
		output.nodes = append(output.nodes[:i], output.nodes[i+1:]...)
	}
}

// Execute runs the set-algebra operation op over a and b into output.
// Output may alias either input: the merges insert into and erase from
// output by position, which would shift an aliased input's nodes under
// its cursor, so an aliased input is read from a copy of its nodes while
// output starts from its current contents.
func (s *IndexSlice) Execute(op Op, a, b, output *IndexSlice) *status.Status {
	if output == a {
		a = &IndexSlice{nodes: append([]IndexNode(nil), a.nodes...)}
	}
	if output == b {
		b = &IndexSlice{nodes: append([]IndexNode(nil), b.nodes...)}
	}

	switch op {
	case Union:
		unionInto(a, b, output)
	case Intersection:
		intersectionInto(a, b, output)
	case SymmetricDifference:
		symmetricDifferenceInto(a, b, output)
	default:
		return status.New(status.KindIndexOperation, "unknown or unsupported index operation")
	}
	return nil
}

// unionInto implements the two-pointer union merge. When output aliases
// one side, the exhaustion branch that would copy the other side into
// output is skipped (a is already the union's content for its own
// remaining nodes).
func unionInto(a, b, output *IndexSlice) {
	aliasesA := output == a
	aliasesB := output == b

	var ai, bi, oi int
	for {
		aDone := ai >= len(a.nodes)
		bDone := bi >= len(b.nodes)

		switch {
		case aDone && bDone:
			return

		case aDone:
			if aliasesB {
				return
			}
			node := b.nodes[bi]
			oi = getUnionOutputNode(output, oi, node.Offset)
			output.nodes[oi].Segment = node.Segment
			oi++
			bi++

		case bDone:
			if aliasesA {
				return
			}
			node := a.nodes[ai]
			oi = getUnionOutputNode(output, oi, node.Offset)
			output.nodes[oi].Segment = node.Segment
			oi++
			ai++

		case a.nodes[ai].Offset < b.nodes[bi].Offset:
			node := a.nodes[ai]
			oi = getUnionOutputNode(output, oi, node.Offset)
			output.nodes[oi].Segment = node.Segment
			oi++
			ai++

		case a.nodes[ai].Offset > b.nodes[bi].Offset:
			node := b.nodes[bi]
			oi = getUnionOutputNode(output, oi, node.Offset)
			output.nodes[oi].Segment = node.Segment
			oi++
			bi++

		default:
			aSeg, bSeg := a.nodes[ai].Segment, b.nodes[bi].Segment
			offset := a.nodes[ai].Offset
			oi = getUnionOutputNode(output, oi, offset)
			output.nodes[oi].Segment = segment.Union(aSeg, bSeg)
			oi++
			ai++
			bi++
		}
	}
}

// intersectionInto implements the two-pointer intersection merge. When
// either side is exhausted, output is truncated from the current
// position to its end.
func intersectionInto(a, b, output *IndexSlice) {
	var ai, bi, oi int
	for {
		if ai >= len(a.nodes) || bi >= len(b.nodes) {
			output.nodes = output.nodes[:oi]
			return
		}

		switch {
		case a.nodes[ai].Offset < b.nodes[bi].Offset:
			ai++
		case a.nodes[ai].Offset > b.nodes[bi].Offset:
			bi++
		default:
			aSeg, bSeg := a.nodes[ai].Segment, b.nodes[bi].Segment
			offset := a.nodes[ai].Offset
			oi = getIntersectionOutputNode(output, oi, offset)
			output.nodes[oi].Segment = segment.Intersection(aSeg, bSeg)
			ai++
			bi++
			oi++
		}
	}
}

// symmetricDifferenceInto implements the two-pointer XOR merge. Unlike
// intersection, the result at an equal offset is kept even when it comes
// out all-zero: compaction of zero segments is an optional caller
// optimization, never required for correctness.
func symmetricDifferenceInto(a, b, output *IndexSlice) {
	aliasesA := output == a
	aliasesB := output == b

	var ai, bi, oi int
	for {
		aDone := ai >= len(a.nodes)
		bDone := bi >= len(b.nodes)

		switch {
		case aDone && bDone:
			return

		case aDone:
			if aliasesB {
				return
			}
			node := b.nodes[bi]
			oi = getUnionOutputNode(output, oi, node.Offset)
			output.nodes[oi].Segment = node.Segment
			oi++
			bi++

		case bDone:
			if aliasesA {
				return
			}
			node := a.nodes[ai]
			oi = getUnionOutputNode(output, oi, node.Offset)
			output.nodes[oi].Segment = node.Segment
			oi++
			ai++

		case a.nodes[ai].Offset < b.nodes[bi].Offset:
			node := a.nodes[ai]
			oi = getUnionOutputNode(output, oi, node.Offset)
			output.nodes[oi].Segment = node.Segment
			oi++
			ai++

		case a.nodes[ai].Offset > b.nodes[bi].Offset:
			node := b.nodes[bi]
			oi = getUnionOutputNode(output, oi, node.Offset)
			output.nodes[oi].Segment = node.Segment
			oi++
			bi++

		default:
			aSeg, bSeg := a.nodes[ai].Segment, b.nodes[bi].Segment
			offset := a.nodes[ai].Offset
			oi = getUnionOutputNode(output, oi, offset)
			output.nodes[oi].Segment = segment.SymmetricDifference(aSeg, bSeg)
			oi++
			ai++
			bi++
		}
	}
}

// CopyFrom replaces s's nodes with a deep copy of other's, preserving s's
// own (partition, bucket, field, value) tag. Used by Index.Slice to hand
// callers an owned result distinct from the stored slice.
func (s *IndexSlice) CopyFrom(other *IndexSlice) {
	s.nodes = append(s.nodes[:0], other.nodes...)
}
