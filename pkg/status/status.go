// Package status implements the core's error-kind-plus-message result
// model. Every fallible or composing operation in the bitmap-index core
// returns a *Status: nil means OK, non-nil carries a Kind and a message,
// plus routing-key context (partition/bucket/field/value/offset) useful for
// structured logging and operator diagnosis.
package status

import "go.uber.org/multierr"

// Status is the result type threaded through every mutating or composing
// core operation. A nil *Status means success; every other value is an
// error with a Kind (see codes.go) and a message.
type Status struct {
	*baseError

	partition     string
	bucket        string
	field         string
	value         string
	segmentOffset uint64
	hasOffset     bool
}

// New creates a Status with no underlying cause.
func New(kind Kind, msg string) *Status {
	return &Status{baseError: newBaseError(kind, msg)}
}

// Wrap creates a Status around an existing failure (typically one
// surfaced by a SegmentIO implementation), preserving its cause chain.
func Wrap(cause error, kind Kind, msg string) *Status {
	return &Status{baseError: wrapBaseError(cause, kind, msg)}
}

// OK reports whether s represents success. A nil Status is always OK,
// which lets callers write `if s.OK() { ... }` without a separate nil
// check.
func (s *Status) OK() bool {
	return s == nil
}

// WithDetail attaches a structured detail while preserving the Status type.
func (s *Status) WithDetail(key string, value any) *Status {
	s.baseError.WithDetail(key, value)
	return s
}

// WithPartition records which partition was being addressed.
func (s *Status) WithPartition(partition string) *Status {
	s.partition = partition
	return s
}

// WithBucket records which bucket was being addressed.
func (s *Status) WithBucket(bucket string) *Status {
	s.bucket = bucket
	return s
}

// WithField records which field was being addressed.
func (s *Status) WithField(field string) *Status {
	s.field = field
	return s
}

// WithValue records which field value was being addressed.
func (s *Status) WithValue(value string) *Status {
	s.value = value
	return s
}

// WithOffset records which segment offset was being addressed.
func (s *Status) WithOffset(offset uint64) *Status {
	s.segmentOffset = offset
	s.hasOffset = true
	return s
}

// Partition returns the partition recorded on this Status, if any.
func (s *Status) Partition() string { return s.partition }

// Bucket returns the bucket recorded on this Status, if any.
func (s *Status) Bucket() string { return s.bucket }

// Field returns the field recorded on this Status, if any.
func (s *Status) Field() string { return s.field }

// Value returns the field value recorded on this Status, if any.
func (s *Status) Value() string { return s.value }

// Offset returns the segment offset recorded on this Status and whether
// one was ever set.
func (s *Status) Offset() (uint64, bool) { return s.segmentOffset, s.hasOffset }

// Combine folds zero or more errors (typically validation failures
// collected while checking a batch of inputs) into a single
// KindInvalidArgument Status using multierr, so every failure is reported
// at once instead of only the first. A Combine of no non-nil errors
// returns nil (OK).
func Combine(errs ...error) *Status {
	combined := multierr.Combine(errs...)
	if combined == nil {
		return nil
	}
	return Wrap(combined, KindInvalidArgument, "invalid input")
}
