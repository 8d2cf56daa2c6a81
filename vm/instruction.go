package vm

import (
	"encoding/binary"
	"math"
)

// BackOfStack is the param1 sentinel meaning "operate on stack[end-1] and
// pop it after the read". The header that originated this VM defines the
// sentinel as INT16_MIN (0x8000) but every opcode body actually tests
// param1 == 0xFFFF; per spec.md's Open Questions the opcode-body value is
// taken as authoritative.
const BackOfStack uint16 = 0xFFFF

// instructionBytes is the on-the-wire size of one Instruction record:
// opcode(2) + param1(2) + param2(4), little-endian.
const instructionBytes = 8

// Instruction is the fixed-width record the dispatcher fetches and
// executes. param2 is reinterpreted differently by different opcodes: as
// an unsigned string-table index, a signed relative displacement, or an
// IEEE-754 single-precision bit pattern (never a lossy numeric
// conversion — see asInt32/asFloat32 below).
type Instruction struct {
	Opcode uint16
	Param1 uint16
	Param2 uint32
}

// NewInstruction builds an Instruction from its three fields, mirroring
// the layout §6 specifies.
func NewInstruction(opcode uint16, param1 uint16, param2 uint32) Instruction {
	return Instruction{Opcode: opcode, Param1: param1, Param2: param2}
}

// asInt32 reinterprets Param2 as a signed 32-bit relative displacement.
func (i Instruction) asInt32() int32 {
	return int32(i.Param2)
}

// asFloat32 reinterprets Param2's bit pattern as an IEEE-754 single
// precision float, per the Design Notes' bit-reinterpretation contract.
func (i Instruction) asFloat32() float32 {
	return math.Float32frombits(i.Param2)
}

// float32BitsOf packs f as the uint32 bit pattern PushNumber expects in
// Param2.
func float32BitsOf(f float32) uint32 {
	return math.Float32bits(f)
}

// EncodeTo writes the instruction's 8-byte little-endian wire form into
// buf, which must be at least instructionBytes long.
func (i Instruction) EncodeTo(buf []byte) {
	binary.LittleEndian.PutUint16(buf[0:2], i.Opcode)
	binary.LittleEndian.PutUint16(buf[2:4], i.Param1)
	binary.LittleEndian.PutUint32(buf[4:8], i.Param2)
}

// DecodeInstruction reads one 8-byte little-endian record from buf.
func DecodeInstruction(buf []byte) Instruction {
	return Instruction{
		Opcode: binary.LittleEndian.Uint16(buf[0:2]),
		Param1: binary.LittleEndian.Uint16(buf[2:4]),
		Param2: binary.LittleEndian.Uint32(buf[4:8]),
	}
}
