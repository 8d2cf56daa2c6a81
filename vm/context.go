package vm

// stackSize is LEO_STACK_SIZE: the fixed value-stack capacity of a Context.
const stackSize = 1024

// CallStackEntry records what a host-registered CallHandler opcode needs to
// resume the caller once a handler returns: the instruction stream and
// program counter to go back to, the base pointer the caller's locals were
// addressed relative to, and the script the callee's handler was retrieved
// from (retained for the duration of the call so the owner disappearing
// mid-call doesn't free the handler out from under the running frame).
type CallStackEntry struct {
	returnInstructions []Instruction
	returnStrings      []string
	returnPC           int
	returnBasePtr      int
	returnScript       *Script
	callee             *Script
}

// PreInstructionHook is invoked before every instruction Step executes. It
// is the sole extension point §6 specifies for observing execution (a
// debugger's single-step/breakpoint logic hangs off this, never off the
// core dispatch loop itself).
type PreInstructionHook func(ctx *Context, instr Instruction)

// PromptHook services the architecturally equivalent of "ask" dialogs: a
// handler may ask the host to read a line of input mid-execution. The core
// never reads stdin directly; it calls this hook, kept nil by default.
type PromptHook func(ctx *Context, message string) string

// Context is one thread of Leonie execution: a value stack, a call stack,
// the instruction stream and borrowed literal-string table currently
// executing, and the bookkeeping needed to report and stop on error
// (LEOContext). A Context is not safe for concurrent use from multiple
// goroutines; the Group it belongs to may be shared across several
// Contexts running on different goroutines.
type Context struct {
	group *Group

	Stack [stackSize]Value
	sp    int // number of valid slots in Stack; top is Stack[sp-1]
	base  int // current frame's base pointer, param1 indices are base+offset

	instructions []Instruction
	strings      []string // borrowed literal string table
	pc           int

	callStack []CallStackEntry

	// ActiveScript is the script whose handler is currently executing. Host
	// intrinsics (CallHandler) use it to resolve the target of a by-name
	// call and to check the owner hasn't been destroyed mid-call.
	ActiveScript *Script

	Err         error
	KeepRunning bool

	// ItemDelimiter is the byte used to split/join list values; "," by
	// default (§4, item delimiter default).
	ItemDelimiter byte

	StepCount uint64

	PreInstruction PreInstructionHook
	Prompt         PromptHook

	// Stdout receives Print opcode output. Defaults to nil, meaning the
	// caller must set it (cmd/leonie wires this to os.Stdout); a nil Stdout
	// makes Print a no-op rather than panicking, so library embedders that
	// never call Print don't have to set it up.
	Stdout interface{ Write([]byte) (int, error) }
}

// NewContext creates a Context sharing group, with an empty stack and
// ItemDelimiter defaulted to ",". The caller still needs Prepare before
// Run/Step will do anything.
func NewContext(group *Group) *Context {
	return &Context{
		group:         group.Retain(),
		ItemDelimiter: ',',
		KeepRunning:   true,
	}
}

// Group returns the context's Group.
func (ctx *Context) Group() *Group { return ctx.group }

// Close releases the context's reference to its group. Call it once the
// context is no longer needed.
func (ctx *Context) Close() {
	for i := 0; i < ctx.sp; i++ {
		ctx.Cleanup(&ctx.Stack[i])
	}
	for len(ctx.callStack) > 0 {
		top := ctx.callStack[len(ctx.callStack)-1]
		ctx.callStack = ctx.callStack[:len(ctx.callStack)-1]
		top.callee.Release()
	}
	if ctx.ActiveScript != nil {
		ctx.ActiveScript.Release()
		ctx.ActiveScript = nil
	}
	ctx.group.Release()
}

// Prepare loads a fresh instruction stream and literal table and resets
// execution state, the Go analogue of pointing LEOContext's base/curInstruction
// fields at a freshly compiled handler (§4.3 lifecycle).
func (ctx *Context) Prepare(instructions []Instruction, strings []string) {
	ctx.instructions = instructions
	ctx.strings = strings
	ctx.pc = 0
	ctx.base = ctx.sp
	ctx.Err = nil
	ctx.KeepRunning = true
	ctx.StepCount = 0
}

// PrepareHandler is Prepare plus retaining script as the context's
// ActiveScript, the entry point used to start running a top-level handler
// (as opposed to one reached through CallHandler). The instruction stream's
// literal strings are taken from script.Strings.
func (ctx *Context) PrepareHandler(script *Script, handler *Handler) {
	if ctx.ActiveScript != nil {
		ctx.ActiveScript.Release()
	}
	ctx.Prepare(handler.Instructions, script.Strings)
	ctx.ActiveScript = script.Retain()
}

// StopWithError records err (wrapped with a formatted message) and clears
// KeepRunning so Run's loop exits after the current instruction, mirroring
// LEOContextStopWithError's "report once, unwind" behavior (§7).
func (ctx *Context) StopWithError(err error, format string, args ...any) {
	if ctx.Err == nil {
		ctx.Err = wrapError(err, format, args...)
	}
	ctx.KeepRunning = false
}

// push reserves a new top-of-stack slot and returns it uninitialized
// (callers must Init it immediately). Overflowing stackSize stops the
// context with ErrStackOverflow and returns nil.
func (ctx *Context) push() *Value {
	if ctx.sp >= stackSize {
		ctx.StopWithError(ErrStackOverflow, "value stack exhausted (capacity %d)", stackSize)
		return nil
	}
	v := &ctx.Stack[ctx.sp]
	ctx.sp++
	return v
}

// pop removes the top-of-stack slot, running its destructor, and returns
// the now-empty slot. Underflowing below the current frame's base stops the
// context with ErrStackUnderflow.
func (ctx *Context) pop() *Value {
	if ctx.sp <= ctx.base {
		ctx.StopWithError(ErrStackUnderflow, "value stack underflow")
		return nil
	}
	ctx.sp--
	v := &ctx.Stack[ctx.sp]
	ctx.Cleanup(v)
	return v
}

// operand resolves param1 to a slot pointer: BackOfStack means "the current
// top of stack", anything else is a base-pointer-relative local index
// (§4.4's uniform operand-addressing rule). It does not pop.
func (ctx *Context) operand(param1 uint16) *Value {
	if param1 == BackOfStack {
		if ctx.sp <= ctx.base {
			ctx.StopWithError(ErrStackUnderflow, "value stack underflow addressing back of stack")
			return nil
		}
		return &ctx.Stack[ctx.sp-1]
	}
	idx := ctx.base + int(param1)
	if idx < 0 || idx >= ctx.sp {
		ctx.StopWithError(ErrStackUnderflow, "operand index %d out of range (base %d, sp %d)", param1, ctx.base, ctx.sp)
		return nil
	}
	return &ctx.Stack[idx]
}

// popOperandIfBackOfStack pops the stack if param1 named the back of stack,
// the "pop-after-read" half of opcodes like Print and the Jump predicates
// (§4.4: "BACK_OF_STACK operands are popped after use").
func (ctx *Context) popOperandIfBackOfStack(param1 uint16) {
	if param1 == BackOfStack {
		ctx.pop()
	}
}

// literal returns the idx'th entry of the current literal string table, or
// the empty string if idx is out of range. Out-of-range string-table
// indices are tolerated everywhere in the literal-table contract — never a
// fault, always the empty string.
func (ctx *Context) literal(idx uint32) string {
	if int(idx) >= len(ctx.strings) {
		return ""
	}
	return ctx.strings[idx]
}

// PushFrame transfers control to callee's handler: saves the caller's
// instruction stream, table, pc and base pointer on the call stack, and
// points the context at the callee's instructions with a new base pointer
// at the current stack top (so the callee's param1 offsets address its own
// locals, never the caller's).
func (ctx *Context) PushFrame(callee *Script, handler *Handler) {
	ctx.callStack = append(ctx.callStack, CallStackEntry{
		returnInstructions: ctx.instructions,
		returnStrings:      ctx.strings,
		returnPC:           ctx.pc,
		returnBasePtr:      ctx.base,
		returnScript:       ctx.ActiveScript,
		callee:             callee.Retain(),
	})
	ctx.instructions = handler.Instructions
	ctx.strings = callee.Strings
	ctx.pc = 0
	ctx.base = ctx.sp
	ctx.ActiveScript = callee
}

// PopFrame restores the caller's instruction stream, table, pc and base
// pointer, releasing the callee script retained by the matching PushFrame.
// Popping with an empty call stack stops the context with
// ErrCallStackUnderflow (§7).
func (ctx *Context) PopFrame() {
	if len(ctx.callStack) == 0 {
		ctx.StopWithError(ErrCallStackUnderflow, "call stack underflow")
		return
	}
	top := ctx.callStack[len(ctx.callStack)-1]
	ctx.callStack = ctx.callStack[:len(ctx.callStack)-1]
	ctx.instructions = top.returnInstructions
	ctx.strings = top.returnStrings
	ctx.pc = top.returnPC
	ctx.base = top.returnBasePtr
	ctx.ActiveScript = top.returnScript
	top.callee.Release()
}

// CallDepth reports how many frames are currently on the call stack.
func (ctx *Context) CallDepth() int { return len(ctx.callStack) }
