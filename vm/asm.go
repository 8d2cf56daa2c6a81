package vm

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Module is an assembled unit ready to run: an instruction stream plus the
// literal string table PushStringFromTable/AssignStringFromTable/CallHandler
// index into. It is the assembler's output and Script's input.
type Module struct {
	Instructions []Instruction
	Strings      []string
}

// comments strips a trailing "// ..." comment from an assembly line, the
// same convention the teacher's assembler uses.
var comments = regexp.MustCompile(`//.*`)

type asmLine struct {
	mnemonic string
	operands []string
	lineNo   int
}

// Assemble compiles Leonie assembly text into a Module. The syntax, one
// instruction per line, is deliberately close to the teacher's own
// assembler (preprocessLine/parseInputLine in the source this package
// grew out of):
//
//	label:                 defines a jump target at the next instruction
//	mnemonic                        no operands (e.g. noop, pop)
//	mnemonic @                      operand addresses the back of stack
//	mnemonic 3                      operand addresses base+3
//	mnemonic @ "literal"            string operand, interned automatically
//	mnemonic @ label                jump operand, resolved to a relative displacement
//	mnemonic @ 3.5                  numeric operand (PushNumber)
//	mnemonic @ true                 boolean operand (PushBoolean)
//
// Comments start with // and run to the end of the line; blank lines are
// skipped.
func Assemble(source string) (*Module, error) {
	lines, labels, err := scanLines(source)
	if err != nil {
		return nil, err
	}

	mod := &Module{}
	stringIndex := map[string]uint32{}
	intern := func(s string) uint32 {
		if idx, ok := stringIndex[s]; ok {
			return idx
		}
		idx := uint32(len(mod.Strings))
		mod.Strings = append(mod.Strings, s)
		stringIndex[s] = idx
		return idx
	}

	for _, ln := range lines {
		op, ok := mnemonics[strings.ToLower(ln.mnemonic)]
		if !ok {
			return nil, fmt.Errorf("asm: line %d: unknown mnemonic %q", ln.lineNo, ln.mnemonic)
		}
		var param1 uint16
		var param2 uint32
		if len(ln.operands) > 0 {
			param1, err = parseParam1(ln.operands[0])
			if err != nil {
				return nil, fmt.Errorf("asm: line %d: %w", ln.lineNo, err)
			}
		}
		if len(ln.operands) > 1 {
			param2, err = parseParam2(op, ln.operands[1], len(mod.Instructions), labels, intern)
			if err != nil {
				return nil, fmt.Errorf("asm: line %d: %w", ln.lineNo, err)
			}
		}
		mod.Instructions = append(mod.Instructions, NewInstruction(uint16(op), param1, param2))
	}
	return mod, nil
}

func scanLines(source string) ([]asmLine, map[string]int, error) {
	labels := map[string]int{}
	var lines []asmLine
	instrIdx := 0
	for i, raw := range strings.Split(source, "\n") {
		lineNo := i + 1
		text := strings.TrimSpace(comments.ReplaceAllString(raw, ""))
		if text == "" {
			continue
		}
		if strings.HasSuffix(text, ":") {
			name := strings.TrimSuffix(text, ":")
			if _, exists := labels[name]; exists {
				return nil, nil, fmt.Errorf("asm: line %d: duplicate label %q", lineNo, name)
			}
			labels[name] = instrIdx
			continue
		}
		fields := tokenizeLine(text)
		if len(fields) == 0 {
			continue
		}
		lines = append(lines, asmLine{mnemonic: fields[0], operands: fields[1:], lineNo: lineNo})
		instrIdx++
	}
	return lines, labels, nil
}

// tokenizeLine splits an assembly line into fields, keeping a double-quoted
// string literal (with spaces) as a single token.
func tokenizeLine(text string) []string {
	var fields []string
	var cur strings.Builder
	inQuotes := false
	flush := func() {
		if cur.Len() > 0 {
			fields = append(fields, cur.String())
			cur.Reset()
		}
	}
	for _, r := range text {
		switch {
		case r == '"':
			inQuotes = !inQuotes
			cur.WriteRune(r)
		case r == ' ' && !inQuotes:
			flush()
		default:
			cur.WriteRune(r)
		}
	}
	flush()
	return fields
}

func parseParam1(tok string) (uint16, error) {
	if tok == "@" {
		return BackOfStack, nil
	}
	n, err := strconv.ParseInt(tok, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("bad operand %q: %w", tok, err)
	}
	return uint16(n), nil
}

func parseParam2(op Opcode, tok string, instrIdx int, labels map[string]int, intern func(string) uint32) (uint32, error) {
	switch op {
	case PushStringFromTable, AssignStringFromTable:
		if len(tok) < 2 || tok[0] != '"' || tok[len(tok)-1] != '"' {
			return 0, fmt.Errorf("expected a quoted string, got %q", tok)
		}
		return intern(tok[1 : len(tok)-1]), nil
	case PushBoolean:
		switch strings.ToLower(tok) {
		case "true":
			return 1, nil
		case "false":
			return 0, nil
		default:
			return 0, fmt.Errorf("expected true/false, got %q", tok)
		}
	case PushNumber:
		f, err := strconv.ParseFloat(tok, 32)
		if err != nil {
			return 0, fmt.Errorf("bad number %q: %w", tok, err)
		}
		return float32BitsOf(float32(f)), nil
	case JumpRelative, JumpRelativeIfTrue, JumpRelativeIfFalse,
		JumpRelativeIfGreaterThanZero, JumpRelativeIfLessThanZero,
		JumpRelativeIfGreaterSameThanZero, JumpRelativeIfLessSameThanZero:
		target, ok := labels[tok]
		if !ok {
			n, err := strconv.ParseInt(tok, 10, 32)
			if err != nil {
				return 0, fmt.Errorf("unknown label %q", tok)
			}
			return uint32(int32(n)), nil
		}
		return uint32(int32(target - instrIdx)), nil
	default:
		n, err := strconv.ParseInt(tok, 10, 32)
		if err != nil {
			return 0, fmt.Errorf("bad operand %q: %w", tok, err)
		}
		return uint32(n), nil
	}
}
