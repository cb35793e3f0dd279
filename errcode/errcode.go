package errcode

import "errors"

// Code is a stable, bus-facing error identifier.
// It is a string newtype, comparable, allocation-free, and implements error.
type Code string

func (c Code) Error() string { return string(c) }

// Canonical codes (short, stable).
const (
	OK          Code = "ok"
	NotFound    Code = "not_found"
	InvalidType Code = "invalid_type"
	OutOfIndex  Code = "out_of_index"
	OutOfMemory Code = "out_of_memory"
	Unsupported Code = "unsupported"
	Rejected    Code = "rejected"
	Unhandled   Code = "unhandled"
	Timeout     Code = "timeout"

	NoInterrupt    Code = "no_interrupt"
	InvalidName    Code = "invalid_name"
	AlreadyRunning Code = "already_running"

	Error Code = "error" // generic fallback
)

// E keeps context, a cause and an optional platform return code.
// Ret carries vendor SDK codes through verbatim for diagnostics.
type E struct {
	C   Code
	Op  string
	Msg string
	Ret int32
	Err error
}

func (e *E) Error() string {
	s := string(e.C)
	if e.Op != "" {
		s = e.Op + ": " + s
	}
	if e.Msg != "" {
		s += ": " + e.Msg
	}
	return s
}
func (e *E) Unwrap() error { return e.Err }
func (e *E) Code() Code    { return e.C }

// WithCode wraps a platform return code as an Unhandled error.
func WithCode(op string, ret int32, cause error) *E {
	return &E{C: Unhandled, Op: op, Ret: ret, Err: cause}
}

// Of extracts a Code from an error chain, defaulting to Error.
func Of(err error) Code {
	if err == nil {
		return OK
	}
	if c, ok := err.(Code); ok {
		return c
	}
	// The outermost coder wins so that wrappers can re-classify causes.
	type coder interface{ Code() Code }
	var x coder
	if errors.As(err, &x) {
		return x.Code()
	}
	var c Code
	if errors.As(err, &c) {
		return c
	}
	return Error
}

// ReturnCode extracts a platform return code from an error chain.
func ReturnCode(err error) (int32, bool) {
	for err != nil {
		var e *E
		if !errors.As(err, &e) {
			break
		}
		if e.Ret != 0 {
			return e.Ret, true
		}
		err = e.Err
	}
	return 0, false
}
