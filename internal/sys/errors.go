package sys

import (
	"errors"
	"fmt"
	"syscall"
)

// ProbeCode is the high-level category of a probe failure. The public
// barrier API never surfaces these; the capability detector uses them to
// pick the next-weaker strategy and the logs carry them for diagnosis.
type ProbeCode string

const (
	CodeNotImplemented   ProbeCode = "mechanism not implemented"
	CodeCommandRejected  ProbeCode = "command rejected"
	CodePermissionDenied ProbeCode = "permission denied"
	CodeEntryUnresolved  ProbeCode = "entry point unresolved"
	CodeCallFailed       ProbeCode = "call failed"
)

// ProbeError is a structured failure from the OS boundary with the
// kernel errno preserved for classification.
type ProbeError struct {
	Op    string        // Primitive that failed (e.g. "MEMBARRIER_QUERY")
	Cmd   int           // Command value involved (0 if not applicable)
	Code  ProbeCode     // High-level category
	Errno syscall.Errno // Kernel errno (0 if not applicable)
	Inner error         // Wrapped error
}

func (e *ProbeError) Error() string {
	if e.Errno != 0 {
		return fmt.Sprintf("membarrier: %s (op=%s errno=%d)", e.Code, e.Op, int(e.Errno))
	}
	if e.Inner != nil {
		return fmt.Sprintf("membarrier: %s (op=%s): %v", e.Code, e.Op, e.Inner)
	}
	return fmt.Sprintf("membarrier: %s (op=%s)", e.Code, e.Op)
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *ProbeError) Unwrap() error {
	if e.Inner != nil {
		return e.Inner
	}
	if e.Errno != 0 {
		return e.Errno
	}
	return nil
}

// Is matches on the failure category.
func (e *ProbeError) Is(target error) bool {
	te, ok := target.(*ProbeError)
	if !ok {
		return false
	}
	return e.Code == te.Code
}

// wrapErrno builds a ProbeError from a raw syscall failure.
func wrapErrno(op string, cmd int, err error) *ProbeError {
	pe := &ProbeError{Op: op, Cmd: cmd, Code: CodeCallFailed, Inner: err}
	var errno syscall.Errno
	if errors.As(err, &errno) {
		pe.Errno = errno
		pe.Code = classifyErrno(errno)
	}
	return pe
}

// classifyErrno maps a kernel errno to a probe failure category.
func classifyErrno(errno syscall.Errno) ProbeCode {
	switch errno {
	case syscall.ENOSYS:
		return CodeNotImplemented
	case syscall.EINVAL, syscall.EOPNOTSUPP:
		return CodeCommandRejected
	case syscall.EPERM, syscall.EACCES:
		return CodePermissionDenied
	default:
		return CodeCallFailed
	}
}

// IsUnsupported reports whether err means the mechanism or command is
// permanently unavailable on this host, as opposed to a transient or
// environmental failure.
func IsUnsupported(err error) bool {
	var pe *ProbeError
	if !errors.As(err, &pe) {
		return false
	}
	switch pe.Code {
	case CodeNotImplemented, CodeCommandRejected, CodeEntryUnresolved:
		return true
	}
	return false
}
