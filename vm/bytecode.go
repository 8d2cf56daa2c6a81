package vm

/*
	Leonie's execution core runs a linear stream of fixed-width instructions
	against a per-thread Context holding a value stack, a call stack, and a
	borrowed string literal table.

	Instruction encoding (8 bytes, little-endian):

		opcode (uint16) || param1 (uint16) || param2 (uint32)

	param1 is usually a base-pointer-relative stack slot index. The sentinel
	BackOfStack (0xFFFF) means "operate on stack[end-1] and pop it after the
	read" for opcodes that read such an operand.

	param2 is opcode-specific: an unsigned string-table index
	(PushStringFromTable, AssignStringFromTable), a signed relative
	displacement in whole Instruction records (the Jump* family), a signed
	32-bit immediate (AddNumber), or an IEEE-754 single-precision bit
	pattern (PushNumber).

	Opcode 0 is always the "unimplemented instruction" trap. Opcodes 1-16 are
	the core catalogue below; opcodes >= 17 are host-registered extensions
	added through Dispatcher.Register (see group.go), the Go equivalent of
	the source's add_instructions/LEOAddInstructionsToInstructionArray. This
	module defines two such extensions itself, CallHandler and
	ReturnFromHandler, in intrinsics.go; a group gets them only when
	RegisterIntrinsics is called on it.
*/

// Opcode identifies an instruction function in a Dispatcher's table.
type Opcode uint16

const (
	Invalid                           Opcode = 0
	ExitToTop                         Opcode = 1
	NoOp                              Opcode = 2
	PushStringFromTable               Opcode = 3
	Print                             Opcode = 4
	Pop                               Opcode = 5
	PushBoolean                       Opcode = 6
	AssignStringFromTable             Opcode = 7
	JumpRelative                      Opcode = 8
	JumpRelativeIfTrue                Opcode = 9
	JumpRelativeIfFalse               Opcode = 10
	JumpRelativeIfGreaterThanZero     Opcode = 11
	JumpRelativeIfLessThanZero        Opcode = 12
	JumpRelativeIfGreaterSameThanZero Opcode = 13
	JumpRelativeIfLessSameThanZero    Opcode = 14
	PushNumber                        Opcode = 15
	AddNumber                         Opcode = 16

	// firstHostOpcode is the first opcode id Dispatcher.Register hands out
	// to host extensions such as CallHandler/ReturnFromHandler.
	firstHostOpcode Opcode = 17
)

var opcodeNames = map[Opcode]string{
	Invalid:                           "Invalid",
	ExitToTop:                         "ExitToTop",
	NoOp:                              "NoOp",
	PushStringFromTable:               "PushStringFromTable",
	Print:                             "Print",
	Pop:                               "Pop",
	PushBoolean:                       "PushBoolean",
	AssignStringFromTable:             "AssignStringFromTable",
	JumpRelative:                      "JumpRelative",
	JumpRelativeIfTrue:                "JumpRelativeIfTrue",
	JumpRelativeIfFalse:               "JumpRelativeIfFalse",
	JumpRelativeIfGreaterThanZero:     "JumpRelativeIfGreaterThanZero",
	JumpRelativeIfLessThanZero:        "JumpRelativeIfLessThanZero",
	JumpRelativeIfGreaterSameThanZero: "JumpRelativeIfGreaterSameThanZero",
	JumpRelativeIfLessSameThanZero:    "JumpRelativeIfLessSameThanZero",
	PushNumber:                        "PushNumber",
	AddNumber:                         "AddNumber",
}

// String renders an opcode for logging and debug output. Unknown and
// host-registered opcodes without a name fall back to "?unknown?", matching
// the teacher's Bytecode.String behavior for unrecognized codes.
func (op Opcode) String() string {
	if name, ok := opcodeNames[op]; ok {
		return name
	}
	return "?unknown?"
}

// mnemonics maps the assembler's lowercase source mnemonics to opcodes, the
// Leonie analogue of the teacher's strToInstrMap.
var mnemonics = map[string]Opcode{
	"exittotop": ExitToTop,
	"noop":      NoOp,
	"pushstr":   PushStringFromTable,
	"print":     Print,
	"pop":       Pop,
	"pushbool":  PushBoolean,
	"assignstr": AssignStringFromTable,
	"jmp":       JumpRelative,
	"jiftrue":   JumpRelativeIfTrue,
	"jiffalse":  JumpRelativeIfFalse,
	"jgtz":      JumpRelativeIfGreaterThanZero,
	"jltz":      JumpRelativeIfLessThanZero,
	"jgez":      JumpRelativeIfGreaterSameThanZero,
	"jlez":      JumpRelativeIfLessSameThanZero,
	"pushnum":   PushNumber,
	"addnum":    AddNumber,
}
