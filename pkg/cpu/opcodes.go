package cpu

// Every function here is a pure OpcodeFunc: given the registers before
// the instruction and its resolved operand, it returns the delta the
// engine should apply. None of these touch the bus directly — memory
// effects are expressed as OpcodeResult.BusWrite/Push and applied by
// cpu.go's apply().

// --- loads / stores --------------------------------------------------------

func opLDA(s CoreState, operand uint8) OpcodeResult {
	return OpcodeResult{A: u8(operand), Flags: flagsPtr(s.P.SetZN(operand))}
}

func opLDX(s CoreState, operand uint8) OpcodeResult {
	return OpcodeResult{X: u8(operand), Flags: flagsPtr(s.P.SetZN(operand))}
}

func opLDY(s CoreState, operand uint8) OpcodeResult {
	return OpcodeResult{Y: u8(operand), Flags: flagsPtr(s.P.SetZN(operand))}
}

func opSTA(s CoreState, _ uint8) OpcodeResult {
	return OpcodeResult{BusWrite: &BusWrite{Address: s.EffectiveAddress, Value: s.A}}
}

func opSTX(s CoreState, _ uint8) OpcodeResult {
	return OpcodeResult{BusWrite: &BusWrite{Address: s.EffectiveAddress, Value: s.X}}
}

func opSTY(s CoreState, _ uint8) OpcodeResult {
	return OpcodeResult{BusWrite: &BusWrite{Address: s.EffectiveAddress, Value: s.Y}}
}

func flagsPtr(f StatusFlags) *StatusFlags { return &f }

// --- arithmetic --------------------------------------------------------

// adc implements both ADC and the borrow-as-carry arithmetic SBC needs;
// the 2A03 has no decimal mode, so this is pure binary addition.
func adc(a, operand uint8, carryIn bool) (result uint8, carryOut, overflow bool) {
	sum := uint16(a) + uint16(operand)
	if carryIn {
		sum++
	}
	result = uint8(sum)
	carryOut = sum > 0xFF
	overflow = (a^operand)&0x80 == 0 && (a^result)&0x80 != 0
	return
}

func opADC(s CoreState, operand uint8) OpcodeResult {
	result, carry, overflow := adc(s.A, operand, s.P.Carry)
	flags := s.P.SetZN(result).SetCarry(carry).SetOverflow(overflow)
	return OpcodeResult{A: u8(result), Flags: flagsPtr(flags)}
}

func opSBC(s CoreState, operand uint8) OpcodeResult {
	result, carry, overflow := adc(s.A, ^operand, s.P.Carry)
	flags := s.P.SetZN(result).SetCarry(carry).SetOverflow(overflow)
	return OpcodeResult{A: u8(result), Flags: flagsPtr(flags)}
}

func opAND(s CoreState, operand uint8) OpcodeResult {
	result := s.A & operand
	return OpcodeResult{A: u8(result), Flags: flagsPtr(s.P.SetZN(result))}
}

func opORA(s CoreState, operand uint8) OpcodeResult {
	result := s.A | operand
	return OpcodeResult{A: u8(result), Flags: flagsPtr(s.P.SetZN(result))}
}

func opEOR(s CoreState, operand uint8) OpcodeResult {
	result := s.A ^ operand
	return OpcodeResult{A: u8(result), Flags: flagsPtr(s.P.SetZN(result))}
}

func compare(reg, operand uint8) StatusFlags {
	diff := reg - operand
	return StatusFlags{Carry: reg >= operand}.SetZN(diff)
}

// compareKeepingFlags folds compare's result into f, leaving every
// other flag (including Overflow/Decimal/InterruptDisable) untouched.
func compareKeepingFlags(f StatusFlags, reg, operand uint8) StatusFlags {
	c := compare(reg, operand)
	f.Carry = c.Carry
	f.Zero = c.Zero
	f.Negative = c.Negative
	return f
}

func opCMP(s CoreState, operand uint8) OpcodeResult {
	return OpcodeResult{Flags: flagsPtr(compareKeepingFlags(s.P, s.A, operand))}
}

func opCPX(s CoreState, operand uint8) OpcodeResult {
	return OpcodeResult{Flags: flagsPtr(compareKeepingFlags(s.P, s.X, operand))}
}

func opCPY(s CoreState, operand uint8) OpcodeResult {
	return OpcodeResult{Flags: flagsPtr(compareKeepingFlags(s.P, s.Y, operand))}
}

func opBIT(s CoreState, operand uint8) OpcodeResult {
	f := s.P
	f.Zero = (s.A & operand) == 0
	f.Negative = operand&0x80 != 0
	f.Overflow = operand&0x40 != 0
	return OpcodeResult{Flags: flagsPtr(f)}
}

// --- shifts / rotates, memory (RMW) form -------------------------------

func shiftASL(operand uint8) (result uint8, carryOut bool) { return operand << 1, operand&0x80 != 0 }
func shiftLSR(operand uint8) (result uint8, carryOut bool) { return operand >> 1, operand&0x01 != 0 }

func shiftROL(operand uint8, carryIn bool) (result uint8, carryOut bool) {
	result = operand << 1
	if carryIn {
		result |= 0x01
	}
	return result, operand&0x80 != 0
}

func shiftROR(operand uint8, carryIn bool) (result uint8, carryOut bool) {
	result = operand >> 1
	if carryIn {
		result |= 0x80
	}
	return result, operand&0x01 != 0
}

func opASL(s CoreState, operand uint8) OpcodeResult {
	result, carry := shiftASL(operand)
	return OpcodeResult{Flags: flagsPtr(s.P.SetZN(result).SetCarry(carry)), BusWrite: &BusWrite{Address: s.EffectiveAddress, Value: result}}
}

func opLSR(s CoreState, operand uint8) OpcodeResult {
	result, carry := shiftLSR(operand)
	return OpcodeResult{Flags: flagsPtr(s.P.SetZN(result).SetCarry(carry)), BusWrite: &BusWrite{Address: s.EffectiveAddress, Value: result}}
}

func opROL(s CoreState, operand uint8) OpcodeResult {
	result, carry := shiftROL(operand, s.P.Carry)
	return OpcodeResult{Flags: flagsPtr(s.P.SetZN(result).SetCarry(carry)), BusWrite: &BusWrite{Address: s.EffectiveAddress, Value: result}}
}

func opROR(s CoreState, operand uint8) OpcodeResult {
	result, carry := shiftROR(operand, s.P.Carry)
	return OpcodeResult{Flags: flagsPtr(s.P.SetZN(result).SetCarry(carry)), BusWrite: &BusWrite{Address: s.EffectiveAddress, Value: result}}
}

// --- shifts / rotates, accumulator form ---------------------------------

func opASLAcc(s CoreState, operand uint8) OpcodeResult {
	result, carry := shiftASL(operand)
	return OpcodeResult{A: u8(result), Flags: flagsPtr(s.P.SetZN(result).SetCarry(carry))}
}

func opLSRAcc(s CoreState, operand uint8) OpcodeResult {
	result, carry := shiftLSR(operand)
	return OpcodeResult{A: u8(result), Flags: flagsPtr(s.P.SetZN(result).SetCarry(carry))}
}

func opROLAcc(s CoreState, operand uint8) OpcodeResult {
	result, carry := shiftROL(operand, s.P.Carry)
	return OpcodeResult{A: u8(result), Flags: flagsPtr(s.P.SetZN(result).SetCarry(carry))}
}

func opRORAcc(s CoreState, operand uint8) OpcodeResult {
	result, carry := shiftROR(operand, s.P.Carry)
	return OpcodeResult{A: u8(result), Flags: flagsPtr(s.P.SetZN(result).SetCarry(carry))}
}

func opINC(s CoreState, operand uint8) OpcodeResult {
	result := operand + 1
	return OpcodeResult{Flags: flagsPtr(s.P.SetZN(result)), BusWrite: &BusWrite{Address: s.EffectiveAddress, Value: result}}
}

func opDEC(s CoreState, operand uint8) OpcodeResult {
	result := operand - 1
	return OpcodeResult{Flags: flagsPtr(s.P.SetZN(result)), BusWrite: &BusWrite{Address: s.EffectiveAddress, Value: result}}
}

// --- implied / register opcodes ---------------------------------------------

func opNOP(s CoreState, _ uint8) OpcodeResult { return OpcodeResult{} }

func opCLC(s CoreState, _ uint8) OpcodeResult { return OpcodeResult{Flags: flagsPtr(s.P.SetCarry(false))} }
func opSEC(s CoreState, _ uint8) OpcodeResult { return OpcodeResult{Flags: flagsPtr(s.P.SetCarry(true))} }

func opCLI(s CoreState, _ uint8) OpcodeResult {
	f := s.P
	f.InterruptDisable = false
	return OpcodeResult{Flags: flagsPtr(f)}
}

func opSEI(s CoreState, _ uint8) OpcodeResult {
	f := s.P
	f.InterruptDisable = true
	return OpcodeResult{Flags: flagsPtr(f)}
}

func opCLV(s CoreState, _ uint8) OpcodeResult { return OpcodeResult{Flags: flagsPtr(s.P.SetOverflow(false))} }

func opCLD(s CoreState, _ uint8) OpcodeResult {
	f := s.P
	f.Decimal = false
	return OpcodeResult{Flags: flagsPtr(f)}
}

func opSED(s CoreState, _ uint8) OpcodeResult {
	f := s.P
	f.Decimal = true
	return OpcodeResult{Flags: flagsPtr(f)}
}

func opTAX(s CoreState, _ uint8) OpcodeResult {
	return OpcodeResult{X: u8(s.A), Flags: flagsPtr(s.P.SetZN(s.A))}
}

func opTXA(s CoreState, _ uint8) OpcodeResult {
	return OpcodeResult{A: u8(s.X), Flags: flagsPtr(s.P.SetZN(s.X))}
}

func opTAY(s CoreState, _ uint8) OpcodeResult {
	return OpcodeResult{Y: u8(s.A), Flags: flagsPtr(s.P.SetZN(s.A))}
}

func opTYA(s CoreState, _ uint8) OpcodeResult {
	return OpcodeResult{A: u8(s.Y), Flags: flagsPtr(s.P.SetZN(s.Y))}
}

func opTSX(s CoreState, _ uint8) OpcodeResult {
	return OpcodeResult{X: u8(s.SP), Flags: flagsPtr(s.P.SetZN(s.SP))}
}

func opTXS(s CoreState, _ uint8) OpcodeResult {
	// TXS does not touch the flags — unlike every other transfer.
	return OpcodeResult{SP: u8(s.X)}
}

func opINX(s CoreState, _ uint8) OpcodeResult {
	result := s.X + 1
	return OpcodeResult{X: u8(result), Flags: flagsPtr(s.P.SetZN(result))}
}

func opDEX(s CoreState, _ uint8) OpcodeResult {
	result := s.X - 1
	return OpcodeResult{X: u8(result), Flags: flagsPtr(s.P.SetZN(result))}
}

func opINY(s CoreState, _ uint8) OpcodeResult {
	result := s.Y + 1
	return OpcodeResult{Y: u8(result), Flags: flagsPtr(s.P.SetZN(result))}
}

func opDEY(s CoreState, _ uint8) OpcodeResult {
	result := s.Y - 1
	return OpcodeResult{Y: u8(result), Flags: flagsPtr(s.P.SetZN(result))}
}

// --- stack opcodes -----------------------------------------------------

func opPHA(s CoreState, operand uint8) OpcodeResult {
	return OpcodeResult{Push: u8(s.A)}
}

func opPHP(s CoreState, _ uint8) OpcodeResult {
	return OpcodeResult{Push: u8(s.P.WithBreak(true).ToByte())}
}

func opPLA(s CoreState, operand uint8) OpcodeResult {
	return OpcodeResult{A: u8(operand), Flags: flagsPtr(s.P.SetZN(operand))}
}

func opPLP(s CoreState, operand uint8) OpcodeResult {
	restored := FlagsFromByte(operand)
	restored.Break = s.P.Break // PLP never actually latches a live Break bit
	return OpcodeResult{Flags: flagsPtr(restored)}
}

// --- halt ---------------------------------------------------------------

func opJAM(s CoreState, _ uint8) OpcodeResult {
	return OpcodeResult{Halt: true}
}
