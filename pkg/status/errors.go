package status

import stdErrors "errors"

// Is reports whether err is, or wraps, a *Status.
func Is(err error) bool {
	var s *Status
	return stdErrors.As(err, &s)
}

// As extracts a *Status from an error chain, for callers that receive a
// plain error (e.g. from a function signature that predates Status) but
// know the underlying cause is one of ours.
func As(err error) (*Status, bool) {
	var s *Status
	if stdErrors.As(err, &s) {
		return s, true
	}
	return nil, false
}

// KindOf extracts the Kind from err, or returns KindIndexOperation as a
// conservative default for errors that don't carry one.
func KindOf(err error) Kind {
	if s, ok := As(err); ok {
		return s.Kind()
	}
	return KindIndexOperation
}

// IsNotFound reports whether err is a Status of KindNotFound.
func IsNotFound(err error) bool {
	s, ok := As(err)
	return ok && s.Kind() == KindNotFound
}

// IsInvalidArgument reports whether err is a Status of KindInvalidArgument.
func IsInvalidArgument(err error) bool {
	s, ok := As(err)
	return ok && s.Kind() == KindInvalidArgument
}
