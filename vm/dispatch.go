package vm

// currentInstruction returns the instruction last fetched by Step (i.e. the
// one currently executing). Opcode functions call this instead of indexing
// ctx.instructions directly since Step has already advanced ctx.pc past it.
func (ctx *Context) currentInstruction() Instruction {
	return ctx.instructions[ctx.pc-1]
}

func (ctx *Context) currentOpcode() Opcode {
	return Opcode(ctx.currentInstruction().Opcode)
}

// atEnd reports whether the program counter has run off the end of the
// active handler's instructions.
func (ctx *Context) atEnd() bool {
	return ctx.pc >= len(ctx.instructions)
}

// Step fetches and executes exactly one instruction: it runs the
// PreInstruction hook (if set), advances pc, looks the opcode up in the
// group's Dispatcher, and calls it. If pc has run off the end of the
// current handler, Step pops the call stack (returning to the caller) or,
// with no caller left, halts the context — this is the fall-off-the-end
// completion path, distinct from an explicit ExitToTop.
func (ctx *Context) Step() {
	if !ctx.KeepRunning {
		return
	}
	if ctx.atEnd() {
		if len(ctx.callStack) > 0 {
			ctx.PopFrame()
			return
		}
		ctx.KeepRunning = false
		return
	}
	instr := ctx.instructions[ctx.pc]
	if ctx.PreInstruction != nil {
		ctx.PreInstruction(ctx, instr)
	}
	ctx.pc++
	ctx.StepCount++
	fn := ctx.group.dispatch.lookup(Opcode(instr.Opcode))
	fn(ctx)
}

// Run executes instructions until KeepRunning is false, i.e. until the
// program exits, errors, or a host-registered breakpoint hook clears it.
// Callers wanting single-step/breakpoint control should drive Step
// themselves instead (cmd/leonie's debug subcommand does this).
func (ctx *Context) Run() {
	for ctx.KeepRunning {
		ctx.Step()
	}
}
