package vm

// CallHandler and ReturnFromHandler are host-registered opcodes (ids >= 17,
// see bytecode.go) that exercise the call-stack and owner-registry
// machinery the core data model specifies without the numbered opcode
// catalogue (§4.4, opcodes 0-16) ever assigning a call/return instruction.
// Every embedder wanting handler-to-handler calls registers these two
// (RegisterIntrinsics does it for you) the same way the source's message
// dispatcher layer sits on top of the bare instruction set.
//
// Encoding: Param1 names the handler by string-table index. Param2's low
// bit selects a function handler (1) or a command handler (0); the
// remaining bits are reserved.
const callTargetIsFunction = 0x1

// RegisterIntrinsics installs CallHandler/ReturnFromHandler into group's
// Dispatcher, returning the opcode ids they were assigned so an assembler
// or compiler can emit references to them. Calling it twice on the same
// group registers a second, unreachable pair of entries; callers should
// register once per group.
func RegisterIntrinsics(group *Group) (call, ret Opcode) {
	first := group.Dispatcher().Register(
		[]OpcodeFunc{opCallHandler, opReturnFromHandler},
		[]string{"CallHandler", "ReturnFromHandler"},
	)
	return first, first + 1
}

// opCallHandler resolves ActiveScript's owner, then looks up the named
// handler (function or command per Param2's low bit) and pushes a new call
// frame for it. A destroyed owner reports ErrDanglingOwner; an unresolved
// name reports ErrHandlerNotFound — both per §7 and §8 scenario 6 ("script
// outlives owner").
func opCallHandler(ctx *Context) {
	instr := ctx.currentInstruction()
	target := ctx.ActiveScript
	if target == nil {
		ctx.StopWithError(ErrHandlerNotFound, "call handler: no active script")
		return
	}
	if ctx.group.Owners != nil && !ctx.group.Owners.Resolve(target.OwnerID(), target.OwnerSeed()) {
		ctx.StopWithError(ErrDanglingOwner, "handler owner %d is no longer live", target.OwnerID())
		return
	}
	// Unlike the core literal-table opcodes, an out-of-range name index is
	// this host opcode's own call to make: it is never a valid handler name,
	// so it is reported as ErrHandlerNotFound rather than silently
	// resolving to the empty string and possibly matching a handler
	// literally named "".
	if int(instr.Param1) >= len(ctx.strings) {
		ctx.StopWithError(ErrHandlerNotFound, "handler name index %d out of range", instr.Param1)
		return
	}
	name := ctx.literal(uint32(instr.Param1))
	var handler *Handler
	var ok bool
	if instr.Param2&callTargetIsFunction != 0 {
		handler, ok = target.FindFunctionHandlerNamed(name)
	} else {
		handler, ok = target.FindCommandHandlerNamed(name)
	}
	if !ok {
		ctx.StopWithError(ErrHandlerNotFound, "no handler named %q", name)
		return
	}
	ctx.PushFrame(target, handler)
}

// opReturnFromHandler pops the current call frame, resuming the caller.
// Returning with no active frame reports ErrCallStackUnderflow (§7).
func opReturnFromHandler(ctx *Context) {
	ctx.PopFrame()
}
