// Package predicate defines the predicate tree the planner evaluates: a
// tagged-variant expression tree over Slice leaves connected by set-algebra
// combinators.
package predicate

// Node is implemented by every predicate tree variant. It is a closed,
// tagged-union-style interface: the planner switches on concrete type,
// and Kind names the variant. Range and Regex do not implement Node, so
// they can only appear inside a Slice.
type Node interface {
	Kind() string
}

// And intersects every child's result, left to right, using the first
// child as the fold's initial value.
type And struct{ Children []Node }

func (And) Kind() string { return "And" }

// Or unions every child's result, left to right, starting from an empty
// accumulator.
type Or struct{ Children []Node }

func (Or) Kind() string { return "Or" }

// Xor folds every child's result with symmetric difference, left to
// right, starting from an empty accumulator.
type Xor struct{ Children []Node }

func (Xor) Kind() string { return "Xor" }

// Not evaluates Child with the evaluator's invert flag flipped, then
// complements the resulting slice in place.
type Not struct{ Child Node }

func (Not) Kind() string { return "Not" }

// Group is reserved for future grouping semantics (see the design notes
// on Open Questions). Evaluating a Group is a structural error until a
// concrete meaning is defined.
type Group struct{ Child Node }

func (Group) Kind() string { return "Group" }

// Slice references one field's Index. An empty Values list means
// "materialize the full-field slice"; otherwise each SliceValue is
// expanded to a flat list of Ranges and unioned together.
type Slice struct {
	Field  string
	Values []SliceValue
}

func (Slice) Kind() string { return "Slice" }

// SliceValue is implemented by Range and Regex, the two ways a Slice leaf
// can name the values it wants. A bare SliceValue encountered where a
// Node is expected (i.e. not nested inside a Slice) is a structural error.
type SliceValue interface {
	sliceValue()
}

// Range selects every value v with Lo <= v <= Hi.
type Range struct {
	Lo uint64
	Hi uint64
}

func (Range) sliceValue() {}

// Regex selects every value whose string form matches Pattern. The
// planner expands it to a list of Ranges via an injected RangeExpander
// before the Index ever sees it; the core itself has no regex engine.
type Regex struct {
	Pattern string
}

func (Regex) sliceValue() {}
