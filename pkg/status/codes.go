package status

// Kind categorizes the failure modes the core surfaces through Status.
// Every fallible core operation returns a *Status carrying exactly one
// Kind plus a human-readable message.
type Kind string

const (
	// KindIndexOperation indicates an algebraic or structural operation was
	// asked to do something it cannot: an unknown op code, a structural
	// violation of the predicate tree, or a reserved Group node.
	KindIndexOperation Kind = "INDEX_OPERATION"

	// KindIndexIoRead indicates SegmentIO surfaced a failure while reading
	// a segment, index slice, or index.
	KindIndexIoRead Kind = "INDEX_IO_READ"

	// KindIndexIoWrite indicates SegmentIO surfaced a failure while
	// persisting a segment.
	KindIndexIoWrite Kind = "INDEX_IO_WRITE"

	// KindNotFound indicates SegmentIO has nothing persisted for what was
	// asked (a segment, an index slice, or a field). Callers treat it as
	// a clean miss rather than a failure: a missing segment reads as zero
	// and a missing slice as empty.
	KindNotFound Kind = "NOT_FOUND"

	// KindInvalidArgument indicates malformed inputs, such as a range with
	// lo > hi that the caller demanded be non-empty.
	KindInvalidArgument Kind = "INVALID_ARGUMENT"
)
