package polykv

import (
	"fmt"
)

// DataError reports a failure to decode a byte blob (a value, a key, an
// adjacency record, ...). It keeps a short hex excerpt of the offending
// bytes so logs stay readable even for large payloads.
type DataError struct {
	Data []byte
	Off  int
	Err  error
	Msg  string
}

func dataErrf(data []byte, off int, err error, format string, args ...any) error {
	return &DataError{data, off, err, fmt.Sprintf(format, args...)}
}

func (e *DataError) Unwrap() error { return e.Err }

func (e *DataError) Error() string {
	const prefixLen = 64
	const suffixLen = 32
	n := len(e.Data)
	if n <= prefixLen+suffixLen {
		if e.Err != nil {
			return fmt.Sprintf("%s: %v: (%d) %x", e.Msg, e.Err, n, e.Data)
		}
		return fmt.Sprintf("%s: (%d) %x", e.Msg, n, e.Data)
	}
	p, s := e.Data[:prefixLen], e.Data[n-suffixLen:]
	if e.Err != nil {
		return fmt.Sprintf("%s: %v: (%d) %x...%x", e.Msg, e.Err, n, p, s)
	}
	return fmt.Sprintf("%s: (%d) %x...%x", e.Msg, n, p, s)
}

// The error taxonomy below implements spec §7. The types that carry an
// inner cause (InvalidArgumentError, ParseFailureError, SubstrateError)
// expose it (possibly nil) via Unwrap; NotImplementedError and FatalError
// carry only a message. All are pointer types, so callers can use
// errors.As uniformly regardless of which layer raised them.

// InvalidArgumentError: null DB, unsupported format, malformed JSON
// Pointer, scalar-size mismatch on a typed buffer, and similar caller
// mistakes that no retry will fix.
type InvalidArgumentError struct {
	Msg string
	Err error
}

func InvalidArgument(err error, format string, args ...any) *InvalidArgumentError {
	return &InvalidArgumentError{fmt.Sprintf(format, args...), err}
}
func (e *InvalidArgumentError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid argument: %s: %v", e.Msg, e.Err)
	}
	return fmt.Sprintf("invalid argument: %s", e.Msg)
}
func (e *InvalidArgumentError) Unwrap() error { return e.Err }

// ParseFailureError: document bytes could not be decoded into the
// canonical form.
type ParseFailureError struct {
	Format string
	Data   []byte
	Err    error
}

func ParseFailure(format string, data []byte, err error) *ParseFailureError {
	return &ParseFailureError{format, data, err}
}
func (e *ParseFailureError) Error() string {
	return fmt.Sprintf("parse failure (%s, %d bytes): %v", e.Format, len(e.Data), e.Err)
}
func (e *ParseFailureError) Unwrap() error { return e.Err }

// NotImplementedError: requested format code or operation not supported
// by this build.
type NotImplementedError struct {
	What string
}

func NotImplemented(format string, args ...any) *NotImplementedError {
	return &NotImplementedError{fmt.Sprintf(format, args...)}
}
func (e *NotImplementedError) Error() string { return "not implemented: " + e.What }

// SubstrateError: any propagated failure from the KV substrate, including
// a commit conflict (the Retryable field is true in that case).
type SubstrateError struct {
	Op        string
	Err       error
	Retryable bool
}

func Substrate(op string, err error, retryable bool) *SubstrateError {
	return &SubstrateError{op, err, retryable}
}
func (e *SubstrateError) Error() string {
	return fmt.Sprintf("substrate error during %s: %v", e.Op, e.Err)
}
func (e *SubstrateError) Unwrap() error { return e.Err }

// FatalError: adjacency asymmetry detected, sentinel-length overflow, or
// any other violated invariant that indicates a bug rather than bad
// input. Callers should treat this as unrecoverable for the surrounding
// transaction.
type FatalError struct {
	Msg string
}

func Fatal(format string, args ...any) *FatalError {
	return &FatalError{fmt.Sprintf(format, args...)}
}
func (e *FatalError) Error() string { return "fatal: " + e.Msg }
