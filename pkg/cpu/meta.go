package cpu

// OpcodeInfo is the disassembler-facing view of one opcode table entry.
type OpcodeInfo struct {
	Opcode   uint8
	Mnemonic string
	Mode     AddressMode
	Illegal  bool
}

// Lookup returns the static decode information for an opcode byte.
// Every byte decodes to something on real 2A03 silicon, so this never
// fails; unused table slots (if any) come back with the mnemonic "???".
func Lookup(opcode uint8) OpcodeInfo {
	e := table[opcode]
	mnemonic := e.mnemonic
	if mnemonic == "" {
		mnemonic = "???"
	}
	return OpcodeInfo{Opcode: opcode, Mnemonic: mnemonic, Mode: e.mode, Illegal: e.illegal}
}

// OperandBytes reports how many bytes beyond the opcode itself this
// addressing mode consumes, for disassembly and instruction-length
// accounting.
func (m AddressMode) OperandBytes() int {
	switch m {
	case AddrImplied, AddrAccumulator, AddrStack, AddrRTS, AddrRTI, AddrBRK:
		return 0
	case AddrImmediate, AddrZeroPage, AddrZeroPageX, AddrZeroPageY,
		AddrIndirectX, AddrIndirectY, AddrRelative:
		return 1
	default: // Absolute, AbsoluteX, AbsoluteY, Indirect, JSR
		return 2
	}
}

// String names an addressing mode the way a disassembler would label
// its operand syntax.
func (m AddressMode) String() string {
	switch m {
	case AddrImplied:
		return "implied"
	case AddrAccumulator:
		return "accumulator"
	case AddrImmediate:
		return "immediate"
	case AddrZeroPage:
		return "zeropage"
	case AddrZeroPageX:
		return "zeropage,X"
	case AddrZeroPageY:
		return "zeropage,Y"
	case AddrAbsolute:
		return "absolute"
	case AddrAbsoluteX:
		return "absolute,X"
	case AddrAbsoluteY:
		return "absolute,Y"
	case AddrIndirect:
		return "indirect"
	case AddrIndirectX:
		return "(indirect,X)"
	case AddrIndirectY:
		return "(indirect),Y"
	case AddrRelative:
		return "relative"
	case AddrStack:
		return "stack"
	case AddrJSR:
		return "JSR"
	case AddrRTS:
		return "RTS"
	case AddrRTI:
		return "RTI"
	case AddrBRK:
		return "BRK"
	default:
		return "?"
	}
}
