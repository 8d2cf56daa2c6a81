package vm

import (
	"errors"
	"fmt"
)

// Error kinds a Context can stop with. Context.StopWithError wraps one of
// these with a formatted message so callers can both read ctx.Err.Error()
// and test against the kind with errors.Is.
var (
	errUnknownInstruction = errors.New("unknown instruction")
	errCantMakeNumber     = errors.New("can't make number")
	errCantMakeBoolean    = errors.New("can't make boolean")
	errStackUnderflow     = errors.New("stack underflow")
	errStackOverflow      = errors.New("stack overflow")
	errCallStackUnderflow = errors.New("call stack underflow")
	errDanglingOwner      = errors.New("owner object is gone")
	errIllegalJump        = errors.New("jump target outside handler")
	errHandlerNotFound    = errors.New("handler not found")
)

// ErrUnknownInstruction is reported when the fetched opcode has no entry in
// the Dispatcher (§7 UnknownInstruction).
var ErrUnknownInstruction = errUnknownInstruction

// ErrCantMakeNumber is reported when a Value can't be coerced to a number
// (§7 CantMakeNumber).
var ErrCantMakeNumber = errCantMakeNumber

// ErrCantMakeBoolean is reported when a Value can't be coerced to a boolean
// (§7 CantMakeBoolean).
var ErrCantMakeBoolean = errCantMakeBoolean

// ErrStackUnderflow is reported when an operation would read or pop below
// the current frame's base pointer (§7 StackUnderflow).
var ErrStackUnderflow = errStackUnderflow

// ErrStackOverflow is reported when a push would exceed stack capacity.
// The source treats this as a sibling of StackUnderflow (§8).
var ErrStackOverflow = errStackOverflow

// ErrCallStackUnderflow is reported on a return with no active frame
// (§7 CallStackUnderflow).
var ErrCallStackUnderflow = errCallStackUnderflow

// ErrDanglingOwner is reported when a script's (owner_id, seed) pair no
// longer resolves to a live owner (§7 DanglingOwner).
var ErrDanglingOwner = errDanglingOwner

// ErrIllegalJump is reported when a relative branch would land outside the
// active handler's instruction array (§9 Open Questions: trap rather than
// follow the pointer).
var ErrIllegalJump = errIllegalJump

// ErrHandlerNotFound is reported by intrinsics when a named handler can't be
// resolved in the owning script.
var ErrHandlerNotFound = errHandlerNotFound

// wrapError formats a message and wraps it around kind so errors.Is(err,
// kind) still succeeds after Context.StopWithError records it, the same
// two-level error (coarse kind plus human detail) the source's
// LEOContextStopWithError reports via both errcode and errormessage.
func wrapError(kind error, format string, args ...any) error {
	return fmt.Errorf("%w: %s", kind, fmt.Sprintf(format, args...))
}
