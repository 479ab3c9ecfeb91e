// Package planner implements the recursive evaluator that reduces a
// predicate tree into a single IndexSlice using IndexSlice's set-algebra
// primitives, consulting a registry.Context for each referenced field.
package planner

import (
	"context"
	"fmt"
	"time"

	"github.com/shardbit/shardbit/internal/index"
	"github.com/shardbit/shardbit/internal/predicate"
	"github.com/shardbit/shardbit/internal/registry"
	"github.com/shardbit/shardbit/internal/slice"
	"github.com/shardbit/shardbit/pkg/metrics"
	"github.com/shardbit/shardbit/pkg/status"
	"github.com/shardbit/shardbit/pkg/tracing"
)

// RangeExpander turns a regex pattern into the flat list of Ranges it
// covers over a field's value domain. The core has no regex engine of
// its own; a host supplies this, typically backed by its own encoding of
// field values (see internal/rangeexpand for a reference implementation).
type RangeExpander func(pattern string) ([]index.Range, error)

// Result is what Evaluate returns: the IndexSlice produced by the tree,
// the first non-OK Status encountered (nil on success), and every regex
// pattern encountered along the way, kept purely for introspection and
// debugging — it never alters the result.
type Result struct {
	Slice   *slice.IndexSlice
	Status  *status.Status
	Regexes []string
}

// Evaluator reduces predicate trees against a shared registry.Context.
type Evaluator struct {
	Registry *registry.Context
	Expand   RangeExpander
	Metrics  *metrics.Metrics
	Tracer   *tracing.Tracer
}

// state is the per-traversal evaluator state: the routing key, a mutable
// invert flag flipped around Not recursion, the first accumulated
// failure, and the regex-encounter log.
type state struct {
	partition string
	bucket    string
	invert    bool
	status    *status.Status
	regexes   []string
}

// Evaluate reduces root against (partition, bucket) into a single
// IndexSlice. Evaluation order is left-to-right and deterministic; the
// first non-OK Status encountered short-circuits further children but
// the partial result built so far is still returned.
func (e *Evaluator) Evaluate(ctx context.Context, partition, bucket string, root predicate.Node) *Result {
	ctx, span := e.Tracer.Start(ctx, "planner.Evaluate")
	defer span.End()

	start := time.Now()
	st := &state{partition: partition, bucket: bucket}
	result := e.eval(ctx, st, root)
	e.Metrics.ObserveEvaluate(time.Since(start).Seconds())

	return &Result{Slice: result, Status: st.status, Regexes: st.regexes}
}

func empty(st *state) *slice.IndexSlice {
	return slice.New(st.partition, st.bucket, "", "")
}

func (e *Evaluator) eval(ctx context.Context, st *state, node predicate.Node) *slice.IndexSlice {
	if st.status != nil {
		return empty(st)
	}

	switch n := node.(type) {
	case predicate.And:
		return e.evalAnd(ctx, st, n)
	case predicate.Or:
		return e.evalOr(ctx, st, n)
	case predicate.Xor:
		return e.evalXor(ctx, st, n)
	case predicate.Not:
		return e.evalNot(ctx, st, n)
	case predicate.Slice:
		return e.evalSlice(ctx, st, n)
	case predicate.Group:
		st.status = status.New(status.KindIndexOperation, "group nodes are reserved and cannot be evaluated")
		return empty(st)
	default:
		st.status = status.New(status.KindInvalidArgument, fmt.Sprintf("unsupported predicate node %T", node))
		return empty(st)
	}
}

// evalOr unions every child's result, left to right, into an
// empty-started accumulator — empty is the union identity.
func (e *Evaluator) evalOr(ctx context.Context, st *state, n predicate.Or) *slice.IndexSlice {
	result := empty(st)
	for _, child := range n.Children {
		if st.status != nil {
			break
		}
		temp := e.eval(ctx, st, child)
		if st.status != nil {
			break
		}
		start := time.Now()
		sst := result.Execute(slice.Union, temp, result, result)
		e.Metrics.ObserveMerge(slice.Union.String(), time.Since(start).Seconds())
		if sst != nil {
			st.status = sst
			break
		}
	}
	return result
}

// evalAnd intersects every child's result, left to right. Empty is the
// absorbing element for intersection, so the first child seeds the
// accumulator instead of an empty slice; every subsequent child
// intersects into it.
func (e *Evaluator) evalAnd(ctx context.Context, st *state, n predicate.And) *slice.IndexSlice {
	if len(n.Children) == 0 {
		return empty(st)
	}

	result := e.eval(ctx, st, n.Children[0])
	if st.status != nil {
		return result
	}

	for _, child := range n.Children[1:] {
		if st.status != nil {
			break
		}
		temp := e.eval(ctx, st, child)
		if st.status != nil {
			break
		}
		start := time.Now()
		sst := result.Execute(slice.Intersection, result, temp, result)
		e.Metrics.ObserveMerge(slice.Intersection.String(), time.Since(start).Seconds())
		if sst != nil {
			st.status = sst
			break
		}
	}
	return result
}

// evalXor folds every child's result with symmetric difference, left to
// right. Unlike And, empty is the identity element for xor, so an
// empty-started accumulator needs no special-casing of the first child.
func (e *Evaluator) evalXor(ctx context.Context, st *state, n predicate.Xor) *slice.IndexSlice {
	result := empty(st)
	for _, child := range n.Children {
		if st.status != nil {
			break
		}
		temp := e.eval(ctx, st, child)
		if st.status != nil {
			break
		}
		start := time.Now()
		sst := result.Execute(slice.SymmetricDifference, result, temp, result)
		e.Metrics.ObserveMerge(slice.SymmetricDifference.String(), time.Since(start).Seconds())
		if sst != nil {
			st.status = sst
			break
		}
	}
	return result
}

// evalNot flips the invert flag, recurses on the child, inverts the
// resulting slice in place (unless the recursion already failed), then
// flips the flag back.
func (e *Evaluator) evalNot(ctx context.Context, st *state, n predicate.Not) *slice.IndexSlice {
	st.invert = !st.invert
	result := e.eval(ctx, st, n.Child)
	st.invert = !st.invert

	if st.status == nil {
		result.Invert()
	}
	return result
}

// evalSlice asks the registry for n.Field's Index, then either
// materializes the full-field slice (Values empty) or expands every
// SliceValue to a flat list of Ranges — resolving each Regex through the
// injected RangeExpander — and unions the resulting ranges' slices.
//
// Bare Range/Regex values can never reach this function at a node
// position where a Node is expected: predicate.SliceValue and
// predicate.Node are distinct interfaces, so the structural error the
// spec describes is rejected by the Go type system at compile time
// rather than at evaluation time.
func (e *Evaluator) evalSlice(ctx context.Context, st *state, n predicate.Slice) *slice.IndexSlice {
	idx, sst := e.Registry.GetIndex(ctx, st.partition, st.bucket, n.Field)
	if sst != nil {
		st.status = sst
		return slice.New(st.partition, st.bucket, n.Field, "")
	}

	output := slice.New(st.partition, st.bucket, n.Field, "")
	if len(n.Values) == 0 {
		if sst := idx.SliceAll(ctx, output); sst != nil {
			st.status = sst
		}
		return output
	}

	ranges := make([]index.Range, 0, len(n.Values))
	for _, v := range n.Values {
		switch val := v.(type) {
		case predicate.Range:
			ranges = append(ranges, index.Range{Lo: val.Lo, Hi: val.Hi})

		case predicate.Regex:
			st.regexes = append(st.regexes, val.Pattern)
			if e.Expand == nil {
				st.status = status.New(status.KindInvalidArgument, "no RangeExpander configured for regex slice values").
					WithField(n.Field)
				return output
			}
			expanded, err := e.Expand(val.Pattern)
			if err != nil {
				st.status = status.Wrap(err, status.KindInvalidArgument, "regex expansion failed").WithField(n.Field)
				return output
			}
			ranges = append(ranges, expanded...)

		default:
			st.status = status.New(status.KindInvalidArgument, "unsupported slice value variant")
			return output
		}
	}

	if sst := idx.SliceRanges(ctx, ranges, slice.Union, output); sst != nil {
		st.status = sst
	}
	return output
}
