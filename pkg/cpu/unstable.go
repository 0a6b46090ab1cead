package cpu

// The 2A03 decodes all 256 opcode bytes; the ones Nintendo never
// documented still do something, and a handful of commercial ROMs and
// test suites rely on that behavior. This file implements the stable
// undocumented combos (SLO/RLA/SRE/RRA/DCP/ISC/LAX/SAX, ANC/ALR/ARR/
// AXS) plus the small "unstable" family (LXA/XAA/SHA/SHX/SHY/TAS), of
// which LXA and XAA use a silicon-revision-specific magic constant,
// and the various multi-byte NOPs.

// --- combined RMW + ALU illegal opcodes -------------------------------

func opSLO(s CoreState, operand uint8) OpcodeResult {
	shifted, carry := shiftASL(operand)
	result := s.A | shifted
	f := s.P.SetZN(result).SetCarry(carry)
	return OpcodeResult{A: u8(result), Flags: flagsPtr(f), BusWrite: &BusWrite{Address: s.EffectiveAddress, Value: shifted}}
}

func opRLA(s CoreState, operand uint8) OpcodeResult {
	rotated, carry := shiftROL(operand, s.P.Carry)
	result := s.A & rotated
	f := s.P.SetZN(result).SetCarry(carry)
	return OpcodeResult{A: u8(result), Flags: flagsPtr(f), BusWrite: &BusWrite{Address: s.EffectiveAddress, Value: rotated}}
}

func opSRE(s CoreState, operand uint8) OpcodeResult {
	shifted, carry := shiftLSR(operand)
	result := s.A ^ shifted
	f := s.P.SetZN(result).SetCarry(carry)
	return OpcodeResult{A: u8(result), Flags: flagsPtr(f), BusWrite: &BusWrite{Address: s.EffectiveAddress, Value: shifted}}
}

func opRRA(s CoreState, operand uint8) OpcodeResult {
	rotated, carry := shiftROR(operand, s.P.Carry)
	sum, carryOut, overflow := adc(s.A, rotated, carry)
	f := s.P.SetZN(sum).SetCarry(carryOut).SetOverflow(overflow)
	return OpcodeResult{A: u8(sum), Flags: flagsPtr(f), BusWrite: &BusWrite{Address: s.EffectiveAddress, Value: rotated}}
}

func opDCP(s CoreState, operand uint8) OpcodeResult {
	decremented := operand - 1
	f := compareKeepingFlags(s.P, s.A, decremented)
	return OpcodeResult{Flags: flagsPtr(f), BusWrite: &BusWrite{Address: s.EffectiveAddress, Value: decremented}}
}

func opISC(s CoreState, operand uint8) OpcodeResult {
	incremented := operand + 1
	sum, carryOut, overflow := adc(s.A, ^incremented, s.P.Carry)
	f := s.P.SetZN(sum).SetCarry(carryOut).SetOverflow(overflow)
	return OpcodeResult{A: u8(sum), Flags: flagsPtr(f), BusWrite: &BusWrite{Address: s.EffectiveAddress, Value: incremented}}
}

// --- combined load/store illegal opcodes -------------------------------

func opLAX(s CoreState, operand uint8) OpcodeResult {
	return OpcodeResult{A: u8(operand), X: u8(operand), Flags: flagsPtr(s.P.SetZN(operand))}
}

func opSAX(s CoreState, _ uint8) OpcodeResult {
	return OpcodeResult{BusWrite: &BusWrite{Address: s.EffectiveAddress, Value: s.A & s.X}}
}

// --- immediate-mode illegal ALU opcodes ----------------------------------

func opANC(s CoreState, operand uint8) OpcodeResult {
	result := s.A & operand
	f := s.P.SetZN(result).SetCarry(result&0x80 != 0)
	return OpcodeResult{A: u8(result), Flags: flagsPtr(f)}
}

func opALR(s CoreState, operand uint8) OpcodeResult {
	anded := s.A & operand
	result, carry := shiftLSR(anded)
	f := s.P.SetZN(result).SetCarry(carry)
	return OpcodeResult{A: u8(result), Flags: flagsPtr(f)}
}

// opARR implements AND followed by ROR with the well-documented (if
// baroque) flag behavior: Carry becomes bit 6 of the result, Overflow
// becomes bit6 XOR bit5.
func opARR(s CoreState, operand uint8) OpcodeResult {
	anded := s.A & operand
	result, _ := shiftROR(anded, s.P.Carry)
	carry := result&0x40 != 0
	overflow := (result&0x40 != 0) != (result&0x20 != 0)
	f := s.P.SetZN(result).SetCarry(carry).SetOverflow(overflow)
	return OpcodeResult{A: u8(result), Flags: flagsPtr(f)}
}

func opAXS(s CoreState, operand uint8) OpcodeResult {
	anded := s.A & s.X
	result := anded - operand
	f := s.P.SetZN(result).SetCarry(anded >= operand)
	return OpcodeResult{X: u8(result), Flags: flagsPtr(f)}
}

// --- the "unstable" magic-constant family --------------------------------
//
// LXA and XAA combine A with a silicon-revision dependent constant
// (s.Magic) before ANDing in the operand; real hardware's result here
// is influenced by bus capacitance decay and isn't fully deterministic,
// but the magic-constant model reproduces the commonly observed
// behavior for each documented 2A03/2A07 revision. SHA/SHX/SHY/TAS do
// not use s.Magic: they AND their register value with the effective
// address's high byte plus one, identically on every variant.

func opLXA(s CoreState, operand uint8) OpcodeResult {
	result := (s.A | s.Magic) & operand
	return OpcodeResult{A: u8(result), X: u8(result), Flags: flagsPtr(s.P.SetZN(result))}
}

func opXAA(s CoreState, operand uint8) OpcodeResult {
	result := (s.A | s.Magic) & s.X & operand
	return OpcodeResult{A: u8(result), Flags: flagsPtr(s.P.SetZN(result))}
}

// opSHA (AHX) stores A&X&(high byte of the effective address + 1).
func opSHA(s CoreState, _ uint8) OpcodeResult {
	high := uint8(s.EffectiveAddress>>8) + 1
	value := s.A & s.X & high
	return OpcodeResult{BusWrite: &BusWrite{Address: s.EffectiveAddress, Value: value}}
}

func opSHX(s CoreState, _ uint8) OpcodeResult {
	high := uint8(s.EffectiveAddress>>8) + 1
	value := s.X & high
	return OpcodeResult{BusWrite: &BusWrite{Address: s.EffectiveAddress, Value: value}}
}

func opSHY(s CoreState, _ uint8) OpcodeResult {
	high := uint8(s.EffectiveAddress>>8) + 1
	value := s.Y & high
	return OpcodeResult{BusWrite: &BusWrite{Address: s.EffectiveAddress, Value: value}}
}

// opTAS (SHS) stores A&X into SP, then writes SP&(high+1) to memory.
func opTAS(s CoreState, _ uint8) OpcodeResult {
	newSP := s.A & s.X
	high := uint8(s.EffectiveAddress>>8) + 1
	value := newSP & high
	return OpcodeResult{SP: u8(newSP), BusWrite: &BusWrite{Address: s.EffectiveAddress, Value: value}}
}

// opLAE (LAS) ANDs the operand with SP and loads the result into A, X,
// and SP simultaneously.
func opLAE(s CoreState, operand uint8) OpcodeResult {
	result := s.SP & operand
	return OpcodeResult{A: u8(result), X: u8(result), SP: u8(result), Flags: flagsPtr(s.P.SetZN(result))}
}

// --- NOP family -----------------------------------------------------------

// opNOPRead behaves exactly like NOP but the engine still resolves and
// reads its operand (matching real hardware's bus activity for DOP/TOP).
func opNOPRead(s CoreState, _ uint8) OpcodeResult { return OpcodeResult{} }

// --- table wiring -----------------------------------------------------

func buildUnstableTable() {
	addRMWFamily8(0x03, 0x13, 0x07, 0x17, 0x0F, 0x1F, 0x1B, "SLO", opSLO)
	addRMWFamily8(0x23, 0x33, 0x27, 0x37, 0x2F, 0x3F, 0x3B, "RLA", opRLA)
	addRMWFamily8(0x43, 0x53, 0x47, 0x57, 0x4F, 0x5F, 0x5B, "SRE", opSRE)
	addRMWFamily8(0x63, 0x73, 0x67, 0x77, 0x6F, 0x7F, 0x7B, "RRA", opRRA)
	addRMWFamily8(0xC3, 0xD3, 0xC7, 0xD7, 0xCF, 0xDF, 0xDB, "DCP", opDCP)
	addRMWFamily8(0xE3, 0xF3, 0xE7, 0xF7, 0xEF, 0xFF, 0xFB, "ISC", opISC)

	// LAX: (zp,X), zp, abs, (zp),Y, zp,Y, abs,Y — no stable immediate form.
	addReadEntry(0xA3, "LAX", AddrIndirectX, stepsIndirectX, SrcEffectiveAddr, false, opLAX, true)
	addReadEntry(0xA7, "LAX", AddrZeroPage, stepsZeroPage, SrcEffectiveAddr, false, opLAX, true)
	addReadEntry(0xAF, "LAX", AddrAbsolute, stepsAbsolute, SrcEffectiveAddr, false, opLAX, true)
	addReadEntry(0xB3, "LAX", AddrIndirectY, stepsIndirectYRead, SrcTempValue, true, opLAX, true)
	addReadEntry(0xB7, "LAX", AddrZeroPageY, stepsZeroPageY, SrcEffectiveAddr, false, opLAX, true)
	addReadEntry(0xBF, "LAX", AddrAbsoluteY, stepsAbsoluteIndexedRead(selectY), SrcTempValue, true, opLAX, true)

	// SAX: (zp,X), zp, abs, zp,Y.
	addWriteEntry(0x83, "SAX", AddrIndirectX, stepsIndirectX, opSAX, true)
	addWriteEntry(0x87, "SAX", AddrZeroPage, stepsZeroPage, opSAX, true)
	addWriteEntry(0x8F, "SAX", AddrAbsolute, stepsAbsolute, opSAX, true)
	addWriteEntry(0x97, "SAX", AddrZeroPageY, stepsZeroPageY, opSAX, true)

	// SBC alias.
	addReadEntry(0xEB, "SBC", AddrImmediate, stepsImmediate, SrcTempValue, true, opSBC, true)

	// Immediate-only illegal ALU ops.
	addReadEntry(0x0B, "ANC", AddrImmediate, stepsImmediate, SrcTempValue, true, opANC, true)
	addReadEntry(0x2B, "ANC", AddrImmediate, stepsImmediate, SrcTempValue, true, opANC, true)
	addReadEntry(0x4B, "ALR", AddrImmediate, stepsImmediate, SrcTempValue, true, opALR, true)
	addReadEntry(0x6B, "ARR", AddrImmediate, stepsImmediate, SrcTempValue, true, opARR, true)
	addReadEntry(0xCB, "AXS", AddrImmediate, stepsImmediate, SrcTempValue, true, opAXS, true)

	// Unstable magic-constant family.
	addReadEntry(0xAB, "LXA", AddrImmediate, stepsImmediate, SrcTempValue, true, opLXA, true)
	addReadEntry(0x8B, "XAA", AddrImmediate, stepsImmediate, SrcTempValue, true, opXAA, true)
	addReadEntry(0xBB, "LAE", AddrAbsoluteY, stepsAbsoluteIndexedRead(selectY), SrcTempValue, true, opLAE, true)
	addWriteEntry(0x9B, "TAS", AddrAbsoluteY, stepsAbsoluteIndexedWrite(selectY), opTAS, true)
	addWriteEntry(0x9C, "SHY", AddrAbsoluteX, stepsAbsoluteIndexedWrite(selectX), opSHY, true)
	addWriteEntry(0x9E, "SHX", AddrAbsoluteY, stepsAbsoluteIndexedWrite(selectY), opSHX, true)
	addWriteEntry(0x9F, "SHA", AddrAbsoluteY, stepsAbsoluteIndexedWrite(selectY), opSHA, true)
	addWriteEntry(0x93, "SHA", AddrIndirectY, stepsIndirectYWrite(), opSHA, true)

	buildNopTable()
}

// addRMWFamily8 registers an illegal RMW opcode across all seven modes
// it has an encoding for: (zp,X), (zp),Y, zp, zp,X, abs, abs,X, abs,Y.
func addRMWFamily8(indX, indY, zp, zpx, abs, absx, absy uint8, mnemonic string, fn OpcodeFunc) {
	addRMWIllegal(indX, mnemonic, AddrIndirectX, stepsIndirectX, fn)
	addRMWIllegal(indY, mnemonic, AddrIndirectY, stepsIndirectYWrite(), fn)
	addRMWIllegal(zp, mnemonic, AddrZeroPage, stepsZeroPage, fn)
	addRMWIllegal(zpx, mnemonic, AddrZeroPageX, stepsZeroPageX, fn)
	addRMWIllegal(abs, mnemonic, AddrAbsolute, stepsAbsolute, fn)
	addRMWIllegal(absx, mnemonic, AddrAbsoluteX, stepsAbsoluteIndexedWrite(selectX), fn)
	addRMWIllegal(absy, mnemonic, AddrAbsoluteY, stepsAbsoluteIndexedWrite(selectY), fn)
}

func addRMWIllegal(op uint8, mnemonic string, m AddressMode, addrSteps []microstep, fn OpcodeFunc) {
	addRMWEntry(op, mnemonic, m, addrSteps, fn, true)
}

// buildNopTable fills every remaining opcode that merely burns cycles:
// implied single-byte NOPs, and the DOP/TOP multi-byte forms that fetch
// (and discard) an operand but have no side effects.
func buildNopTable() {
	for _, op := range []uint8{0x1A, 0x3A, 0x5A, 0x7A, 0xDA, 0xFA} {
		addImplied(op, "NOP", opNOP)
		table[op].illegal = true
	}
	for _, op := range []uint8{0x80, 0x82, 0x89, 0xC2, 0xE2} {
		addReadEntry(op, "NOP", AddrImmediate, stepsImmediate, SrcTempValue, true, opNOPRead, true)
	}
	for _, op := range []uint8{0x04, 0x44, 0x64} {
		addReadEntry(op, "NOP", AddrZeroPage, stepsZeroPage, SrcEffectiveAddr, false, opNOPRead, true)
	}
	for _, op := range []uint8{0x14, 0x34, 0x54, 0x74, 0xD4, 0xF4} {
		addReadEntry(op, "NOP", AddrZeroPageX, stepsZeroPageX, SrcEffectiveAddr, false, opNOPRead, true)
	}
	addReadEntry(0x0C, "NOP", AddrAbsolute, stepsAbsolute, SrcEffectiveAddr, false, opNOPRead, true)
	for _, op := range []uint8{0x1C, 0x3C, 0x5C, 0x7C, 0xDC, 0xFC} {
		addReadEntry(op, "NOP", AddrAbsoluteX, stepsAbsoluteIndexedRead(selectX), SrcTempValue, true, opNOPRead, true)
	}
}
