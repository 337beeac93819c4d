// pkg/report/failkind.go - native failure kinds of the backing operations.
//
// The gallery client never raises platform exception types; each of its
// failures carries one of these closed kinds so that classification in
// the processor is a total function.

package report

import "errors"

// FailKind is the native failure classification of a backing operation.
type FailKind int

const (
	FailUnknown FailKind = iota
	FailInvalidArgument
	FailPermissionDenied
	FailWrite
	FailSecurity
	FailInvalidOperation
	FailConnection
)

// CategoryFor maps a native failure kind to an error category. The
// mapping is total: anything unrecognized falls out as NotSpecified.
func CategoryFor(k FailKind) Category {
	switch k {
	case FailInvalidArgument:
		return CategoryInvalidArgument
	case FailPermissionDenied:
		return CategoryPermissionDenied
	case FailWrite:
		return CategoryWriteError
	case FailSecurity:
		return CategorySecurityError
	case FailInvalidOperation:
		return CategoryInvalidOperation
	case FailConnection:
		return CategoryConnectionError
	default:
		return CategoryNotSpecified
	}
}

// OpError wraps a backing-operation failure with its native kind.
type OpError struct {
	Kind FailKind
	Err  error
}

func (e *OpError) Error() string {
	if e.Err == nil {
		return "operation failed"
	}
	return e.Err.Error()
}

func (e *OpError) Unwrap() error { return e.Err }

// FailKindOf extracts the native kind from err, or FailUnknown when the
// error did not come from a backing operation.
func FailKindOf(err error) FailKind {
	var opErr *OpError
	if errors.As(err, &opErr) {
		return opErr.Kind
	}
	return FailUnknown
}
