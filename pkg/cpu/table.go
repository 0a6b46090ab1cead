package cpu

// tableEntry is one opcode's complete addressing + dispatch metadata.
type tableEntry struct {
	mnemonic      string
	mode          AddressMode
	kind          instrKind
	steps         []microstep
	maxCycles     int // number of fetch_operand_low steps before execute
	operandSource OperandSource
	fold          bool // execute folds into the final addressing cycle
	fn            OpcodeFunc
	illegal       bool // undocumented opcode, flagged for the disassembler
}

// table is indexed by opcode byte. Entries left at their zero value
// (mnemonic=="") are unused—6502/2A03 has no officially unassigned
// opcodes; every byte decodes to *something*, even if only a JAM.
var table [256]tableEntry

func init() {
	buildOfficialLoadStore()
	buildOfficialALU()
	buildOfficialRMW()
	buildOfficialControl()
	buildOfficialImpliedAndStack()
	buildUnstableTable()
	buildJamTable()
}

// --- addressing step sequences, shared by many opcodes -------------------

var (
	stepsImmediate    = []microstep{fetchOperandLow}
	stepsZeroPage     = []microstep{fetchOperandLow}
	stepsZeroPageX    = []microstep{fetchOperandLow, addXToZeroPage}
	stepsZeroPageY    = []microstep{fetchOperandLow, addYToZeroPage}
	stepsAbsolute     = []microstep{fetchAbsLow, fetchAbsHigh}
	stepsIndirectX    = []microstep{fetchZpBase, addXToBase, fetchIndirectLow, fetchIndirectHigh}
	stepsIndirectYRead = []microstep{fetchZpPointer, fetchPointerLow, fetchPointerHigh, addYCheckPage, fixHighByte}
)

func stepsAbsoluteIndexedRead(reg regSelect) []microstep {
	return []microstep{fetchAbsLow, fetchAbsHigh, calcAbsoluteIndexedRead(reg), fixHighByte}
}

func stepsAbsoluteIndexedWrite(reg regSelect) []microstep {
	return []microstep{fetchAbsLow, fetchAbsHigh, calcAbsoluteIndexedWrite(reg)}
}

func stepsIndirectYWrite() []microstep {
	return []microstep{fetchZpPointer, fetchPointerLow, fetchPointerHigh, addYCheckPageWrite}
}

func addReadEntry(op uint8, mnemonic string, m AddressMode, steps []microstep, src OperandSource, fold bool, fn OpcodeFunc, illegal bool) {
	table[op] = tableEntry{
		mnemonic: mnemonic, mode: m, kind: kindRead,
		steps: steps, maxCycles: len(steps), operandSource: src, fold: fold, fn: fn, illegal: illegal,
	}
}

func addWriteEntry(op uint8, mnemonic string, m AddressMode, steps []microstep, fn OpcodeFunc, illegal bool) {
	table[op] = tableEntry{
		mnemonic: mnemonic, mode: m, kind: kindWrite,
		steps: steps, maxCycles: len(steps), operandSource: SrcNone, fn: fn, illegal: illegal,
	}
}

func addRMWEntry(op uint8, mnemonic string, m AddressMode, addrSteps []microstep, fn OpcodeFunc, illegal bool) {
	steps := append(append([]microstep{}, addrSteps...), readEffective, dummyWriteOriginal)
	table[op] = tableEntry{
		mnemonic: mnemonic, mode: m, kind: kindRMW,
		steps: steps, maxCycles: len(steps), operandSource: SrcTempValue, fn: fn, illegal: illegal,
	}
}

// --- load/store family -----------------------------------------------------

func buildOfficialLoadStore() {
	// LDA
	addReadEntry(0xA9, "LDA", AddrImmediate, stepsImmediate, SrcTempValue, true, opLDA, false)
	addReadEntry(0xA5, "LDA", AddrZeroPage, stepsZeroPage, SrcEffectiveAddr, false, opLDA, false)
	addReadEntry(0xB5, "LDA", AddrZeroPageX, stepsZeroPageX, SrcEffectiveAddr, false, opLDA, false)
	addReadEntry(0xAD, "LDA", AddrAbsolute, stepsAbsolute, SrcEffectiveAddr, false, opLDA, false)
	addReadEntry(0xBD, "LDA", AddrAbsoluteX, stepsAbsoluteIndexedRead(selectX), SrcTempValue, true, opLDA, false)
	addReadEntry(0xB9, "LDA", AddrAbsoluteY, stepsAbsoluteIndexedRead(selectY), SrcTempValue, true, opLDA, false)
	addReadEntry(0xA1, "LDA", AddrIndirectX, stepsIndirectX, SrcEffectiveAddr, false, opLDA, false)
	addReadEntry(0xB1, "LDA", AddrIndirectY, stepsIndirectYRead, SrcTempValue, true, opLDA, false)

	// LDX
	addReadEntry(0xA2, "LDX", AddrImmediate, stepsImmediate, SrcTempValue, true, opLDX, false)
	addReadEntry(0xA6, "LDX", AddrZeroPage, stepsZeroPage, SrcEffectiveAddr, false, opLDX, false)
	addReadEntry(0xB6, "LDX", AddrZeroPageY, stepsZeroPageY, SrcEffectiveAddr, false, opLDX, false)
	addReadEntry(0xAE, "LDX", AddrAbsolute, stepsAbsolute, SrcEffectiveAddr, false, opLDX, false)
	addReadEntry(0xBE, "LDX", AddrAbsoluteY, stepsAbsoluteIndexedRead(selectY), SrcTempValue, true, opLDX, false)

	// LDY
	addReadEntry(0xA0, "LDY", AddrImmediate, stepsImmediate, SrcTempValue, true, opLDY, false)
	addReadEntry(0xA4, "LDY", AddrZeroPage, stepsZeroPage, SrcEffectiveAddr, false, opLDY, false)
	addReadEntry(0xB4, "LDY", AddrZeroPageX, stepsZeroPageX, SrcEffectiveAddr, false, opLDY, false)
	addReadEntry(0xAC, "LDY", AddrAbsolute, stepsAbsolute, SrcEffectiveAddr, false, opLDY, false)
	addReadEntry(0xBC, "LDY", AddrAbsoluteX, stepsAbsoluteIndexedRead(selectX), SrcTempValue, true, opLDY, false)

	// STA
	addWriteEntry(0x85, "STA", AddrZeroPage, stepsZeroPage, opSTA, false)
	addWriteEntry(0x95, "STA", AddrZeroPageX, stepsZeroPageX, opSTA, false)
	addWriteEntry(0x8D, "STA", AddrAbsolute, stepsAbsolute, opSTA, false)
	addWriteEntry(0x9D, "STA", AddrAbsoluteX, stepsAbsoluteIndexedWrite(selectX), opSTA, false)
	addWriteEntry(0x99, "STA", AddrAbsoluteY, stepsAbsoluteIndexedWrite(selectY), opSTA, false)
	addWriteEntry(0x81, "STA", AddrIndirectX, stepsIndirectX, opSTA, false)
	addWriteEntry(0x91, "STA", AddrIndirectY, stepsIndirectYWrite(), opSTA, false)

	// STX / STY
	addWriteEntry(0x86, "STX", AddrZeroPage, stepsZeroPage, opSTX, false)
	addWriteEntry(0x96, "STX", AddrZeroPageY, stepsZeroPageY, opSTX, false)
	addWriteEntry(0x8E, "STX", AddrAbsolute, stepsAbsolute, opSTX, false)
	addWriteEntry(0x84, "STY", AddrZeroPage, stepsZeroPage, opSTY, false)
	addWriteEntry(0x94, "STY", AddrZeroPageX, stepsZeroPageX, opSTY, false)
	addWriteEntry(0x8C, "STY", AddrAbsolute, stepsAbsolute, opSTY, false)
}

// --- ALU / compare / BIT family --------------------------------------------

// addFullReadFamily registers one mnemonic across the eight modes that
// ADC/SBC/AND/ORA/EOR/LDA/CMP all share.
func addFullReadFamily(base uint8, mnemonic string, fn OpcodeFunc) {
	addReadEntry(base+0x09, mnemonic, AddrImmediate, stepsImmediate, SrcTempValue, true, fn, false)
	addReadEntry(base+0x05, mnemonic, AddrZeroPage, stepsZeroPage, SrcEffectiveAddr, false, fn, false)
	addReadEntry(base+0x15, mnemonic, AddrZeroPageX, stepsZeroPageX, SrcEffectiveAddr, false, fn, false)
	addReadEntry(base+0x0D, mnemonic, AddrAbsolute, stepsAbsolute, SrcEffectiveAddr, false, fn, false)
	addReadEntry(base+0x1D, mnemonic, AddrAbsoluteX, stepsAbsoluteIndexedRead(selectX), SrcTempValue, true, fn, false)
	addReadEntry(base+0x19, mnemonic, AddrAbsoluteY, stepsAbsoluteIndexedRead(selectY), SrcTempValue, true, fn, false)
	addReadEntry(base+0x01, mnemonic, AddrIndirectX, stepsIndirectX, SrcEffectiveAddr, false, fn, false)
	addReadEntry(base+0x11, mnemonic, AddrIndirectY, stepsIndirectYRead, SrcTempValue, true, fn, false)
}

func buildOfficialALU() {
	addFullReadFamily(0x60, "ADC", opADC) // 0x69,65,75,6D,7D,79,61,71
	addFullReadFamily(0xE0, "SBC", opSBC) // 0xE9,E5,F5,ED,FD,F9,E1,F1
	addFullReadFamily(0x20, "AND", opAND) // 0x29,25,35,2D,3D,39,21,31
	addFullReadFamily(0x00, "ORA", opORA) // 0x09,05,15,0D,1D,19,01,11
	addFullReadFamily(0x40, "EOR", opEOR) // 0x49,45,55,4D,5D,59,41,51
	addFullReadFamily(0xC0, "CMP", opCMP) // 0xC9,C5,D5,CD,DD,D9,C1,D1

	// CPX / CPY: immediate, zero page, absolute only.
	addReadEntry(0xE0, "CPX", AddrImmediate, stepsImmediate, SrcTempValue, true, opCPX, false)
	addReadEntry(0xE4, "CPX", AddrZeroPage, stepsZeroPage, SrcEffectiveAddr, false, opCPX, false)
	addReadEntry(0xEC, "CPX", AddrAbsolute, stepsAbsolute, SrcEffectiveAddr, false, opCPX, false)
	addReadEntry(0xC0, "CPY", AddrImmediate, stepsImmediate, SrcTempValue, true, opCPY, false)
	addReadEntry(0xC4, "CPY", AddrZeroPage, stepsZeroPage, SrcEffectiveAddr, false, opCPY, false)
	addReadEntry(0xCC, "CPY", AddrAbsolute, stepsAbsolute, SrcEffectiveAddr, false, opCPY, false)

	// BIT: zero page, absolute only.
	addReadEntry(0x24, "BIT", AddrZeroPage, stepsZeroPage, SrcEffectiveAddr, false, opBIT, false)
	addReadEntry(0x2C, "BIT", AddrAbsolute, stepsAbsolute, SrcEffectiveAddr, false, opBIT, false)
}

// --- read-modify-write family -----------------------------------------------

// addFullRMWFamily registers ASL/LSR/ROL/ROR/INC/DEC across their four
// memory addressing modes. Accumulator mode is handled separately
// since it has no memory access at all (kindImplied, not kindRMW).
func addFullRMWFamily(zp, zpx, abs, absx uint8, mnemonic string, fn OpcodeFunc) {
	addRMWEntry(zp, mnemonic, AddrZeroPage, stepsZeroPage, fn, false)
	addRMWEntry(zpx, mnemonic, AddrZeroPageX, stepsZeroPageX, fn, false)
	addRMWEntry(abs, mnemonic, AddrAbsolute, stepsAbsolute, fn, false)
	addRMWEntry(absx, mnemonic, AddrAbsoluteX, stepsAbsoluteIndexedWrite(selectX), fn, false)
}

func buildOfficialRMW() {
	addFullRMWFamily(0x06, 0x16, 0x0E, 0x1E, "ASL", opASL)
	addFullRMWFamily(0x46, 0x56, 0x4E, 0x5E, "LSR", opLSR)
	addFullRMWFamily(0x26, 0x36, 0x2E, 0x3E, "ROL", opROL)
	addFullRMWFamily(0x66, 0x76, 0x6E, 0x7E, "ROR", opROR)
	addFullRMWFamily(0xE6, 0xF6, 0xEE, 0xFE, "INC", opINC)
	addFullRMWFamily(0xC6, 0xD6, 0xCE, 0xDE, "DEC", opDEC)

	// Accumulator-mode shift/rotate: no memory access, operates on A,
	// dispatched as an implied-style opcode with operand_source=Accumulator.
	addAccumulatorEntry(0x0A, "ASL", opASLAcc)
	addAccumulatorEntry(0x4A, "LSR", opLSRAcc)
	addAccumulatorEntry(0x2A, "ROL", opROLAcc)
	addAccumulatorEntry(0x6A, "ROR", opRORAcc)
}

func addAccumulatorEntry(op uint8, mnemonic string, fn OpcodeFunc) {
	table[op] = tableEntry{
		mnemonic: mnemonic, mode: AddrAccumulator, kind: kindImplied,
		steps: nil, maxCycles: 0, operandSource: SrcAccumulator, fn: fn,
	}
}

// --- control flow: branches, JMP, JSR/RTS/RTI/BRK ---------------------------

func buildOfficialControl() {
	addBranch(0x10, "BPL", func(s CoreState) bool { return !s.P.Negative })
	addBranch(0x30, "BMI", func(s CoreState) bool { return s.P.Negative })
	addBranch(0x50, "BVC", func(s CoreState) bool { return !s.P.Overflow })
	addBranch(0x70, "BVS", func(s CoreState) bool { return s.P.Overflow })
	addBranch(0x90, "BCC", func(s CoreState) bool { return !s.P.Carry })
	addBranch(0xB0, "BCS", func(s CoreState) bool { return s.P.Carry })
	addBranch(0xD0, "BNE", func(s CoreState) bool { return !s.P.Zero })
	addBranch(0xF0, "BEQ", func(s CoreState) bool { return s.P.Zero })

	table[0x4C] = tableEntry{
		mnemonic: "JMP", mode: AddrAbsolute, kind: kindControl,
		steps:     []microstep{fetchAbsLow, jmpAbsoluteFinish},
		maxCycles: 2,
	}
	table[0x6C] = tableEntry{
		mnemonic: "JMP", mode: AddrIndirect, kind: kindControl,
		steps:     []microstep{fetchIndirectPtrLow, fetchIndirectPtrHigh, jmpIndirectFetchLow, jmpIndirectFetchHigh},
		maxCycles: 4,
	}

	table[0x20] = tableEntry{
		mnemonic: "JSR", mode: AddrJSR, kind: kindControl,
		steps:     []microstep{fetchAbsLow, jsrInternalDelay, jsrPushHigh, jsrPushLow, jsrFinish},
		maxCycles: 5,
	}
	table[0x60] = tableEntry{
		mnemonic: "RTS", mode: AddrRTS, kind: kindControl,
		steps:     []microstep{stackDummyReadPC, stackDummyReadSP, rtsPullLow, rtsPullHigh, rtsIncrementPC},
		maxCycles: 5,
	}
	table[0x40] = tableEntry{
		mnemonic: "RTI", mode: AddrRTI, kind: kindControl,
		steps:     []microstep{stackDummyReadPC, stackDummyReadSP, rtiPullFlags, rtiPullLow, rtiPullHighAndFinish},
		maxCycles: 5,
	}
	table[0x00] = tableEntry{
		mnemonic: "BRK", mode: AddrBRK, kind: kindControl,
		steps:     []microstep{brkReadOperandByte, brkPushHigh, brkPushLow, brkPushFlags, brkFetchVectorLow, brkFetchVectorHighAndFinish},
		maxCycles: 6,
	}
}

func addBranch(op uint8, mnemonic string, pred func(CoreState) bool) {
	condFn := func(c CPU) bool {
		return pred(CoreState{P: c.P})
	}
	table[op] = tableEntry{
		mnemonic: mnemonic, mode: AddrRelative, kind: kindControl,
		steps:     []microstep{branchFetchOffset(condFn), branchAddOffset, branchFixPch},
		maxCycles: 3,
	}
}

// --- implied-register and stack opcodes -------------------------------------

func buildOfficialImpliedAndStack() {
	addImplied(0xEA, "NOP", opNOP)
	addImplied(0x18, "CLC", opCLC)
	addImplied(0x38, "SEC", opSEC)
	addImplied(0x58, "CLI", opCLI)
	addImplied(0x78, "SEI", opSEI)
	addImplied(0xB8, "CLV", opCLV)
	addImplied(0xD8, "CLD", opCLD)
	addImplied(0xF8, "SED", opSED)
	addImplied(0xAA, "TAX", opTAX)
	addImplied(0x8A, "TXA", opTXA)
	addImplied(0xA8, "TAY", opTAY)
	addImplied(0x98, "TYA", opTYA)
	addImplied(0xBA, "TSX", opTSX)
	addImplied(0x9A, "TXS", opTXS)
	addImplied(0xE8, "INX", opINX)
	addImplied(0xCA, "DEX", opDEX)
	addImplied(0xC8, "INY", opINY)
	addImplied(0x88, "DEY", opDEY)

	table[0x48] = tableEntry{
		mnemonic: "PHA", mode: AddrStack, kind: kindStack,
		steps: []microstep{stackDummyReadPC}, maxCycles: 1, operandSource: SrcAccumulator, fn: opPHA,
	}
	table[0x08] = tableEntry{
		mnemonic: "PHP", mode: AddrStack, kind: kindStack,
		steps: []microstep{stackDummyReadPC}, maxCycles: 1, fn: opPHP,
	}
	table[0x68] = tableEntry{
		mnemonic: "PLA", mode: AddrStack, kind: kindStack,
		steps: []microstep{stackDummyReadPC, stackDummyReadSP, pullByte}, maxCycles: 3, operandSource: SrcTempValue, fold: true, fn: opPLA,
	}
	table[0x28] = tableEntry{
		mnemonic: "PLP", mode: AddrStack, kind: kindStack,
		steps: []microstep{stackDummyReadPC, stackDummyReadSP, pullByte}, maxCycles: 3, operandSource: SrcTempValue, fold: true, fn: opPLP,
	}
}

func addImplied(op uint8, mnemonic string, fn OpcodeFunc) {
	table[op] = tableEntry{
		mnemonic: mnemonic, mode: AddrImplied, kind: kindImplied,
		steps: nil, maxCycles: 0, fn: fn,
	}
}

// --- JAM / KIL -------------------------------------------------------------

// jamOpcodes lists the undocumented opcodes that lock up real 6502/2A03
// silicon (no further fetch cycles ever happen). Listed for completeness;
// an emulator halts the CPU core rather than spin forever.
var jamOpcodes = []uint8{0x02, 0x12, 0x22, 0x32, 0x42, 0x52, 0x62, 0x72, 0x92, 0xB2, 0xD2, 0xF2}

func buildJamTable() {
	for _, op := range jamOpcodes {
		table[op] = tableEntry{
			mnemonic: "JAM", mode: AddrImplied, kind: kindHalt,
			steps: nil, maxCycles: 0, fn: opJAM, illegal: true,
		}
	}
}
