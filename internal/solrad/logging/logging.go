// Package logging provides the three-stream leveled logger used across the
// solrad pipeline: ops (user-facing progress), diag (warnings, recoverable
// numeric failures, degenerate-epoch notices) and trace (per-block, per-epoch
// detail). Each stream is independently enabled by assigning it a writer;
// a nil writer silences that stream entirely.
package logging

import (
	"io"
	"log"
)

var (
	opsLogger   *log.Logger
	diagLogger  *log.Logger
	traceLogger *log.Logger
)

func init() {
	SetWriters(io.Discard, io.Discard, nil)
}

// SetWriters assigns the destination for each stream. Pass nil to silence a
// stream.
func SetWriters(ops, diag, trace io.Writer) {
	opsLogger = newLogger("[solrad] ", ops)
	diagLogger = newLogger("[solrad] ", diag)
	traceLogger = newLogger("[solrad] ", trace)
}

// SetLegacyLogger routes the ops and diag streams to w (the same routing as
// --log-level diag); trace stays silent.
func SetLegacyLogger(w io.Writer) {
	SetWriters(w, w, nil)
}

// SetLevel routes streams to w according to the --log-level flag value
// ("ops", "diag" or "trace"), each level enabling itself plus every stream
// below it. Unrecognized levels fall back to "ops".
func SetLevel(level string, w io.Writer) {
	switch level {
	case "trace":
		SetWriters(w, w, w)
	case "diag":
		SetWriters(w, w, nil)
	default:
		SetWriters(w, nil, nil)
	}
}

func newLogger(prefix string, w io.Writer) *log.Logger {
	if w == nil {
		return nil
	}
	return log.New(w, prefix, log.LstdFlags|log.Lmicroseconds)
}

func Ops(format string, args ...interface{}) {
	if opsLogger != nil {
		opsLogger.Printf(format, args...)
	}
}

func Diag(format string, args ...interface{}) {
	if diagLogger != nil {
		diagLogger.Printf(format, args...)
	}
}

func Trace(format string, args ...interface{}) {
	if traceLogger != nil {
		traceLogger.Printf(format, args...)
	}
}
