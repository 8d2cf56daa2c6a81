package vm

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind tags the variant a Value currently holds.
type Kind uint8

const (
	KindEmpty Kind = iota
	KindBoolean
	KindNumber
	KindStringConstant // borrowed, non-owning — interned in a Module's string table
	KindString         // owns its buffer
	KindReference      // weak back-reference to another slot; not expanded (§1 out of scope)
)

func (k Kind) String() string {
	switch k {
	case KindEmpty:
		return "empty"
	case KindBoolean:
		return "boolean"
	case KindNumber:
		return "number"
	case KindStringConstant:
		return "string constant"
	case KindString:
		return "string"
	case KindReference:
		return "reference"
	default:
		return "unknown"
	}
}

// ReferencePolicy governs whether constructing a value over an existing
// stack slot tells any outstanding weak references to that slot's previous
// occupant that their target is gone.
type ReferencePolicy uint8

const (
	// InvalidateReferences notifies the owning Context's reference table
	// that the previous occupant of this slot is gone. This is the policy
	// the pushing opcodes (PushStringFromTable, PushBoolean, PushNumber) use.
	InvalidateReferences ReferencePolicy = iota
	// KeepReferences leaves outstanding weak references alone. SetAsString
	// and SetAsNumber are called with this policy by AssignStringFromTable
	// and AddNumber: both opcodes replace a slot's content in place without
	// changing slot identity, so anything weak-referencing the slot itself
	// should keep working.
	KeepReferences
)

// Value is Leonie's tagged dynamic value: empty, boolean, number, a
// borrowed string constant, an owned string, or a weak reference. Every
// push/assign that changes what a slot holds destructs the previous
// occupant first (see Context.initSlot) — leaking Go memory isn't possible
// the way it is in the C original, but the value stack still tracks
// "live owned string" bookkeeping (Group.strings) so the allocator-counter
// invariant in spec.md §8 ("every push is eventually matched by a
// destructor call") is still something tests can observe.
type Value struct {
	kind    Kind
	boolean bool
	number  float64
	str     string
	ref     *Value
}

// Empty reports whether the value is the empty/uninitialized variant.
func (v *Value) Empty() bool { return v.kind == KindEmpty }

// Kind returns the value's current tag.
func (v *Value) Kind() Kind { return v.kind }

func (ctx *Context) initSlot(v *Value, kind Kind, policy ReferencePolicy) {
	if !v.Empty() && policy == InvalidateReferences {
		ctx.group.refs.Invalidate(v)
	}
	if v.kind == KindString {
		ctx.group.strings.free()
	}
	*v = Value{kind: kind}
}

// InitEmpty constructs the empty value in place at slot.
func (ctx *Context) InitEmpty(v *Value, policy ReferencePolicy) {
	ctx.initSlot(v, KindEmpty, policy)
}

// InitNumber constructs a number value in place at slot.
func (ctx *Context) InitNumber(v *Value, n float64, policy ReferencePolicy) {
	ctx.initSlot(v, KindNumber, policy)
	v.number = n
}

// InitBoolean constructs a boolean value in place at slot.
func (ctx *Context) InitBoolean(v *Value, b bool, policy ReferencePolicy) {
	ctx.initSlot(v, KindBoolean, policy)
	v.boolean = b
}

// InitStringConstant constructs a borrowed string-constant value in place
// at slot. No allocator bookkeeping happens here: the string is interned in
// the module's literal table, not owned by this slot.
func (ctx *Context) InitStringConstant(v *Value, s string, policy ReferencePolicy) {
	ctx.initSlot(v, KindStringConstant, policy)
	v.str = s
}

// InitString constructs an owning string value in place at slot.
func (ctx *Context) InitString(v *Value, s string, policy ReferencePolicy) {
	ctx.initSlot(v, KindString, policy)
	v.str = s
	ctx.group.strings.alloc()
}

// Cleanup is the value's destructor: it frees any heap data the value owns
// (an owned string's allocator-counter slot) but never follows references.
func (ctx *Context) Cleanup(v *Value) {
	if v.kind == KindString {
		ctx.group.strings.free()
	}
	*v = Value{}
}

// AsNumber coerces the value to a float64. Empty reads as 0, boolean as
// 0/1, a string parses as a double. A string that doesn't parse stops the
// context with ErrCantMakeNumber and returns 0.
func (ctx *Context) AsNumber(v *Value) float64 {
	switch v.kind {
	case KindEmpty:
		return 0
	case KindBoolean:
		if v.boolean {
			return 1
		}
		return 0
	case KindNumber:
		return v.number
	case KindString, KindStringConstant:
		n, err := strconv.ParseFloat(strings.TrimSpace(v.str), 64)
		if err != nil {
			ctx.StopWithError(ErrCantMakeNumber, "can't make number from %q", v.str)
			return 0
		}
		return n
	default:
		ctx.StopWithError(ErrCantMakeNumber, "can't make number from a %s value", v.kind)
		return 0
	}
}

// AsBoolean coerces the value to a bool: a case-insensitive "true"/"false"
// string, or a numeric zero-test.
func (ctx *Context) AsBoolean(v *Value) bool {
	switch v.kind {
	case KindBoolean:
		return v.boolean
	case KindString, KindStringConstant:
		if strings.EqualFold(v.str, "true") {
			return true
		}
		if strings.EqualFold(v.str, "false") {
			return false
		}
		ctx.StopWithError(ErrCantMakeBoolean, "can't make boolean from %q", v.str)
		return false
	default:
		return ctx.AsNumber(v) != 0
	}
}

// maxPrintLen is the buffer size §4.1/§9 specify get_as_string truncates
// its formatted output to (the Print opcode's 1024-byte buffer).
const maxPrintLen = 1024

// AsString always succeeds, formatting the value and truncating to
// maxPrintLen bytes, mirroring get_as_string's caller-supplied-buffer
// contract.
func (v *Value) AsString() string {
	var s string
	switch v.kind {
	case KindEmpty:
		s = ""
	case KindBoolean:
		if v.boolean {
			s = "true"
		} else {
			s = "false"
		}
	case KindNumber:
		s = formatNumber(v.number)
	case KindString, KindStringConstant:
		s = v.str
	case KindReference:
		if v.ref != nil {
			s = v.ref.AsString()
		}
	default:
		s = ""
	}
	if len(s) > maxPrintLen {
		s = s[:maxPrintLen]
	}
	return s
}

func formatNumber(n float64) string {
	if n == float64(int64(n)) {
		return fmt.Sprintf("%d", int64(n))
	}
	return strconv.FormatFloat(n, 'g', -1, 64)
}

// SetAsString replaces a slot's content with a string. Callers pass
// KeepReferences to preserve slot identity (so anything weak-referencing
// the slot keeps working) or InvalidateReferences to notify the reference
// table that the previous occupant is gone, same as the Init* family.
func (ctx *Context) SetAsString(v *Value, s string, policy ReferencePolicy) {
	if policy == InvalidateReferences {
		ctx.group.refs.Invalidate(v)
	}
	if v.kind == KindString {
		ctx.group.strings.free()
	}
	v.kind = KindString
	v.str = s
	v.number = 0
	v.boolean = false
	ctx.group.strings.alloc()
}

// SetAsNumber replaces a slot's content with a number; see SetAsString for
// the policy argument.
func (ctx *Context) SetAsNumber(v *Value, n float64, policy ReferencePolicy) {
	if policy == InvalidateReferences {
		ctx.group.refs.Invalidate(v)
	}
	if v.kind == KindString {
		ctx.group.strings.free()
	}
	v.kind = KindNumber
	v.number = n
	v.str = ""
	v.boolean = false
}
