// Package errs defines the error taxonomy the solrad pipeline reports
// through. Every fallible operation returns either nil or an *Error built
// by one of the constructors below, so cmd/solrad can map the failure to
// the right process exit code without inspecting error text.
package errs

import "fmt"

// Kind classifies a failure for exit-code mapping.
type Kind int

const (
	// KindConfig covers malformed CLI input, unreadable config files and
	// empty input clouds.
	KindConfig Kind = iota
	// KindIO covers filesystem and point-file read/write failures.
	KindIO
	// KindNumeric marks a recoverable per-voxel or per-epoch failure; it
	// is never returned from the top-level pipeline, only logged via
	// logging.Diag and recovered locally (default normal, zero epoch
	// contribution).
	KindNumeric
	// KindDegenerateEpoch marks a sun epoch that produced no illumination
	// at all (e.g. entirely below horizon); informational only.
	KindDegenerateEpoch
)

// Error is the single error type returned across package boundaries in
// solrad. It always carries the process exit code its Kind implies.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Op
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// ExitCode returns the process exit code this error's kind maps to.
// Numeric and degenerate-epoch failures are recovered internally and
// never reach cmd/solrad, but they still report a code for completeness.
func (e *Error) ExitCode() int {
	switch e.Kind {
	case KindConfig:
		return 1
	case KindIO:
		return 2
	default:
		return 3
	}
}

func Config(op string, err error) *Error { return &Error{Kind: KindConfig, Op: op, Err: err} }
func IO(op string, err error) *Error     { return &Error{Kind: KindIO, Op: op, Err: err} }
func Numeric(op string, err error) *Error {
	return &Error{Kind: KindNumeric, Op: op, Err: err}
}
func EmptyInput(op string) *Error {
	return &Error{Kind: KindConfig, Op: op, Err: fmt.Errorf("empty input point cloud")}
}
func DegenerateEpoch(op string) *Error {
	return &Error{Kind: KindDegenerateEpoch, Op: op, Err: fmt.Errorf("epoch produced no illumination")}
}
