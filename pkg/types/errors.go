package types

import "errors"

var (
	// ErrFetch marks transport or timeout failures talking to the content store.
	ErrFetch = errors.New("fetch error")
	// ErrDecode marks a payload that is present but not a valid object record.
	ErrDecode = errors.New("decode error")
	// ErrNotFound marks an identifier that is absent.
	ErrNotFound = errors.New("not found")
	// ErrConsistency marks a violated graph invariant. It is raised as a
	// panic, never returned.
	ErrConsistency = errors.New("consistency error")
)

// ErrorKind returns the taxonomy label used in per-failure log lines.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNotFound):
		return "not-found"
	case errors.Is(err, ErrDecode):
		return "decode"
	case errors.Is(err, ErrFetch):
		return "fetch"
	case errors.Is(err, ErrConsistency):
		return "consistency"
	default:
		return "other"
	}
}
