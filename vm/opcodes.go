package vm

// coreOpcodeFuncs returns the opcode 0-16 catalogue (§4.4) in opcode-id
// order, for installation at Dispatcher construction time.
func coreOpcodeFuncs() []OpcodeFunc {
	return []OpcodeFunc{
		Invalid:                           opInvalid,
		ExitToTop:                         opExitToTop,
		NoOp:                              opNoOp,
		PushStringFromTable:               opPushStringFromTable,
		Print:                             opPrint,
		Pop:                               opPop,
		PushBoolean:                       opPushBoolean,
		AssignStringFromTable:             opAssignStringFromTable,
		JumpRelative:                      opJumpRelative,
		JumpRelativeIfTrue:                opJumpRelativeIfTrue,
		JumpRelativeIfFalse:               opJumpRelativeIfFalse,
		JumpRelativeIfGreaterThanZero:     opJumpRelativeIfGreaterThanZero,
		JumpRelativeIfLessThanZero:        opJumpRelativeIfLessThanZero,
		JumpRelativeIfGreaterSameThanZero: opJumpRelativeIfGreaterSameThanZero,
		JumpRelativeIfLessSameThanZero:    opJumpRelativeIfLessSameThanZero,
		PushNumber:                        opPushNumber,
		AddNumber:                         opAddNumber,
	}
}

func coreOpcodeNames() []string {
	names := make([]string, int(AddNumber)+1)
	for op, name := range opcodeNames {
		names[op] = name
	}
	return names
}

// opInvalid is the trap every unrecognized or unregistered opcode id falls
// back to (§4.4 step 2, §7 UnknownInstruction).
func opInvalid(ctx *Context) {
	ctx.StopWithError(ErrUnknownInstruction, "opcode %d has no instruction function", ctx.currentOpcode())
}

// opExitToTop unwinds every call frame and halts the context, the
// equivalent of the source's EXIT_TO_TOP_INSTR: a script-level "exit" that
// doesn't return to any caller.
func opExitToTop(ctx *Context) {
	for len(ctx.callStack) > 0 {
		top := ctx.callStack[len(ctx.callStack)-1]
		ctx.callStack = ctx.callStack[:len(ctx.callStack)-1]
		top.callee.Release()
	}
	ctx.KeepRunning = false
}

func opNoOp(*Context) {}

// opPushStringFromTable pushes a borrowed reference to literal string
// param2 of the current handler's string table, or the empty string if
// param2 is out of range (§4.4 #3).
func opPushStringFromTable(ctx *Context) {
	instr := ctx.currentInstruction()
	s := ctx.literal(instr.Param2)
	slot := ctx.push()
	if slot == nil {
		return
	}
	ctx.InitStringConstant(slot, s, InvalidateReferences)
}

// opPrint writes the operand's string form followed by a newline to
// ctx.Stdout, then pops it if it named the back of stack (§6 "stdout").
func opPrint(ctx *Context) {
	instr := ctx.currentInstruction()
	v := ctx.operand(instr.Param1)
	if v == nil {
		return
	}
	if ctx.Stdout != nil {
		ctx.Stdout.Write([]byte(v.AsString()))
		ctx.Stdout.Write([]byte{'\n'})
	}
	ctx.popOperandIfBackOfStack(instr.Param1)
}

// opPop discards and destructs the top of the value stack.
func opPop(ctx *Context) {
	v := ctx.pop()
	if v == nil {
		return
	}
	ctx.Cleanup(v)
}

// opPushBoolean pushes a boolean value; param2 != 0 means true.
func opPushBoolean(ctx *Context) {
	instr := ctx.currentInstruction()
	slot := ctx.push()
	if slot == nil {
		return
	}
	ctx.InitBoolean(slot, instr.Param2 != 0, InvalidateReferences)
}

// opAssignStringFromTable replaces the operand's content with literal
// string param2 (or "" if out of range, §4.4 #7), preserving slot identity
// so a reference into param1's slot keeps working.
func opAssignStringFromTable(ctx *Context) {
	instr := ctx.currentInstruction()
	s := ctx.literal(instr.Param2)
	dst := ctx.operand(instr.Param1)
	if dst == nil {
		return
	}
	ctx.SetAsString(dst, s, KeepReferences)
}

// jumpTo applies a relative displacement (in whole Instruction records)
// from the jump instruction's own position, trapping with ErrIllegalJump if
// the result lands outside the active handler (§9 Open Questions).
func (ctx *Context) jumpTo(displacement int32) {
	origin := ctx.pc - 1 // currentInstruction already advanced pc past itself
	target := origin + int(displacement)
	if target < 0 || target > len(ctx.instructions) {
		ctx.StopWithError(ErrIllegalJump, "jump target %d outside handler of length %d", target, len(ctx.instructions))
		return
	}
	ctx.pc = target
}

func opJumpRelative(ctx *Context) {
	instr := ctx.currentInstruction()
	ctx.jumpTo(instr.asInt32())
}

func jumpIfPredicate(ctx *Context, pred func(v *Value) bool) {
	instr := ctx.currentInstruction()
	v := ctx.operand(instr.Param1)
	if v == nil {
		return
	}
	take := pred(v)
	ctx.popOperandIfBackOfStack(instr.Param1)
	if ctx.Err != nil {
		return
	}
	if take {
		ctx.jumpTo(instr.asInt32())
	}
}

func opJumpRelativeIfTrue(ctx *Context) {
	jumpIfPredicate(ctx, func(v *Value) bool { return ctx.AsBoolean(v) })
}

func opJumpRelativeIfFalse(ctx *Context) {
	jumpIfPredicate(ctx, func(v *Value) bool { return !ctx.AsBoolean(v) })
}

func opJumpRelativeIfGreaterThanZero(ctx *Context) {
	jumpIfPredicate(ctx, func(v *Value) bool { return ctx.AsNumber(v) > 0 })
}

func opJumpRelativeIfLessThanZero(ctx *Context) {
	jumpIfPredicate(ctx, func(v *Value) bool { return ctx.AsNumber(v) < 0 })
}

func opJumpRelativeIfGreaterSameThanZero(ctx *Context) {
	jumpIfPredicate(ctx, func(v *Value) bool { return ctx.AsNumber(v) >= 0 })
}

func opJumpRelativeIfLessSameThanZero(ctx *Context) {
	jumpIfPredicate(ctx, func(v *Value) bool { return ctx.AsNumber(v) <= 0 })
}

// opPushNumber pushes param2, reinterpreted as IEEE-754 single-precision
// bits and widened to float64 (§9: "reinterpret, never lossy-convert").
func opPushNumber(ctx *Context) {
	instr := ctx.currentInstruction()
	slot := ctx.push()
	if slot == nil {
		return
	}
	ctx.InitNumber(slot, float64(instr.asFloat32()), InvalidateReferences)
}

// opAddNumber adds the immediate int32 carried in param2 to the addressed
// slot in place: slot <- as_number(slot) + i32(param2). Unlike the jump
// predicates and Print, it never pops a BackOfStack operand — accumulating
// into the same top-of-stack slot across several AddNumber instructions,
// then reading (and popping) it once with Print, is exactly what the
// "Arithmetic accumulate" scenario relies on.
func opAddNumber(ctx *Context) {
	instr := ctx.currentInstruction()
	dst := ctx.operand(instr.Param1)
	if dst == nil {
		return
	}
	amount := ctx.AsNumber(dst)
	if ctx.Err != nil {
		return
	}
	ctx.SetAsNumber(dst, amount+float64(instr.asInt32()), KeepReferences)
}
