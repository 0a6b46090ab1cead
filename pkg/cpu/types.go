package cpu

// AddressMode identifies how an instruction's operand address is formed.
// It drives both the microstep table (pkg/cpu/table.go) and the
// disassembler (pkg/disasm).
type AddressMode int

const (
	AddrImplied AddressMode = iota
	AddrAccumulator
	AddrImmediate
	AddrZeroPage
	AddrZeroPageX
	AddrZeroPageY
	AddrAbsolute
	AddrAbsoluteX
	AddrAbsoluteY
	AddrIndirect // JMP (abs) only
	AddrIndirectX
	AddrIndirectY
	AddrRelative
	AddrStack  // PHA/PHP/PLA/PLP
	AddrJSR
	AddrRTS
	AddrRTI
	AddrBRK
)

// OperandSource identifies where the execute state reads the final
// operand value from, once addressing has completed.
type OperandSource int

const (
	SrcNone OperandSource = iota
	SrcImmediatePC
	SrcTempValue
	SrcOperandLow
	SrcEffectiveAddr
	SrcOperandHL
	SrcAccumulator
)

// instrKind classifies an opcode for table-building and engine purposes:
// whether it reads memory, writes memory, reads-modifies-writes memory,
// or has no memory operand at all.
type instrKind int

const (
	kindRead     instrKind = iota // loads, ALU ops, compares, BIT
	kindWrite                     // stores
	kindRMW                       // INC/DEC/ASL/LSR/ROL/ROR and undoc combos
	kindImplied                   // register-only ops (TAX, CLC, INX, ...)
	kindStack                     // PHA/PHP/PLA/PLP
	kindControl                   // branches, JSR, RTS, RTI, BRK, JMP
	kindHalt                      // JAM/KIL
)

// Variant selects the 2A03 silicon revision, which only affects the
// magic constant used by the "unstable" undocumented opcodes LXA and
// XAA (SHA, SHX, SHY and TAS do not depend on it). Selected once at CPU construction;
// never branched on per-instruction (see spec §9).
type Variant int

const (
	VariantRP2A03G Variant = iota // standard NTSC, M = 0xEE
	VariantRP2A03H                // M = 0xFF
	VariantRP2A07                 // PAL, M = 0x00
)

// unstableMagic returns the variant's magic constant used by LXA/XAA.
func (v Variant) unstableMagic() uint8 {
	switch v {
	case VariantRP2A03H:
		return 0xFF
	case VariantRP2A07:
		return 0x00
	default:
		return 0xEE
	}
}

// CoreState is the read-only register view passed to a pure opcode
// function. EffectiveAddress is exposed so opcode functions that need
// to report a write address (stores, RMW) can build a BusWrite without
// touching the bus themselves.
type CoreState struct {
	A, X, Y, SP      uint8
	PC               uint16
	P                StatusFlags
	EffectiveAddress uint16
	Magic            uint8 // variant's unstable-opcode constant
}

// BusWrite describes a single bus write an opcode function wants the
// engine to perform.
type BusWrite struct {
	Address uint16
	Value   uint8
}

// OpcodeResult is the "all fields optional" delta a pure opcode
// function returns. The engine applies whichever fields are non-nil,
// in the order: A, X, Y, SP, PC, flags, then bus_write, then push.
type OpcodeResult struct {
	A, X, Y, SP *uint8
	PC          *uint16
	Flags       *StatusFlags
	BusWrite    *BusWrite
	Push        *uint8
	Halt        bool
}

// OpcodeFunc is a pure computation: given the current registers and
// the already-fetched operand, it returns the state delta. It must
// never touch the bus or mutate its arguments.
type OpcodeFunc func(s CoreState, operand uint8) OpcodeResult

func u8(v uint8) *uint8    { return &v }
func u16(v uint16) *uint16 { return &v }
