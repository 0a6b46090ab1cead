package cpu

// microstep is one atomic, one-cycle bus operation. It may read or
// write the bus once (or perform a dummy read/write), mutate CPU
// transient fields, and reports whether the instruction's addressing
// phase is already finished as of this cycle (see cpu.go's engine for
// how that combines with the fixed per-opcode cycle count).
type microstep func(c *CPU) (earlyComplete bool)

// --- operand fetch -----------------------------------------------------

// fetchOperandLow reads the byte at PC as a zero-page address (or the
// immediate operand value), advances PC, and leaves the CPU ready for
// either interpretation: effectiveAddress for zero-page mode,
// tempValue for immediate mode.
func fetchOperandLow(c *CPU) bool {
	c.operandLow = c.bus.Read(c.PC)
	c.PC++
	c.effectiveAddress = uint16(c.operandLow)
	c.tempValue = c.operandLow
	return false
}

func fetchAbsLow(c *CPU) bool {
	c.operandLow = c.bus.Read(c.PC)
	c.PC++
	return false
}

func fetchAbsHigh(c *CPU) bool {
	c.operandHigh = c.bus.Read(c.PC)
	c.PC++
	c.effectiveAddress = uint16(c.operandHigh)<<8 | uint16(c.operandLow)
	return false
}

// --- zero-page indexed --------------------------------------------------

// addXToZeroPage performs the mandatory dummy read at the unindexed
// base address, then wraps the sum within page zero.
func addXToZeroPage(c *CPU) bool {
	c.bus.DummyRead(uint16(c.operandLow))
	c.operandLow = c.operandLow + c.X
	c.effectiveAddress = uint16(c.operandLow)
	return false
}

func addYToZeroPage(c *CPU) bool {
	c.bus.DummyRead(uint16(c.operandLow))
	c.operandLow = c.operandLow + c.Y
	c.effectiveAddress = uint16(c.operandLow)
	return false
}

// --- absolute indexed ----------------------------------------------------

func absoluteBase(c *CPU) uint16 {
	return uint16(c.operandHigh)<<8 | uint16(c.operandLow)
}

// regSelect reads an index register (X or Y) off the live CPU at
// microstep-execution time — it must never capture a value at table
// build time, since the table is built once at init() and reused by
// every CPU instance.
type regSelect func(*CPU) uint8

func selectX(c *CPU) uint8 { return c.X }
func selectY(c *CPU) uint8 { return c.Y }

// calcAbsoluteIndexedRead performs the dummy read at the (possibly
// wrong, non-carried) address, and stashes it as temp_value. When no
// page boundary is crossed that dummy read is in fact the real read,
// so the instruction can finish here (early_complete=true).
func calcAbsoluteIndexedRead(reg regSelect) microstep {
	return func(c *CPU) bool {
		index := reg(c)
		base := absoluteBase(c)
		full := base + uint16(index)
		wrapped := (base & 0xFF00) | uint16(uint8(base)+index)
		c.pageCrossed = (full & 0xFF00) != (base & 0xFF00)
		c.effectiveAddress = full
		c.tempValue = c.bus.Read(wrapped)
		return !c.pageCrossed
	}
}

// calcAbsoluteIndexedWrite is the write/RMW variant: it always
// performs the dummy read (at the uncarried address) and never
// completes early — the higher cycle count is mandatory regardless of
// whether a page was actually crossed.
func calcAbsoluteIndexedWrite(reg regSelect) microstep {
	return func(c *CPU) bool {
		index := reg(c)
		base := absoluteBase(c)
		full := base + uint16(index)
		wrapped := (base & 0xFF00) | uint16(uint8(base)+index)
		c.pageCrossed = (full & 0xFF00) != (base & 0xFF00)
		c.effectiveAddress = full
		c.bus.DummyRead(wrapped)
		return false
	}
}

// fixHighByte re-reads the effective address after a confirmed page
// crossing, replacing the stale dummy-read value in temp_value.
func fixHighByte(c *CPU) bool {
	c.tempValue = c.bus.Read(c.effectiveAddress)
	return false
}

// --- indirect,X (pre-indexed indirect) -----------------------------------

func fetchZpBase(c *CPU) bool {
	c.tempAddress = uint16(c.bus.Read(c.PC))
	c.PC++
	return false
}

func addXToBase(c *CPU) bool {
	c.bus.DummyRead(c.tempAddress)
	c.tempAddress = uint16(uint8(c.tempAddress) + c.X)
	return false
}

func fetchIndirectLow(c *CPU) bool {
	c.operandLow = c.bus.Read(c.tempAddress)
	return false
}

// fetchIndirectHigh fetches the pointer's high byte, wrapping within
// zero page, and finalizes effectiveAddress for indirect,X.
func fetchIndirectHigh(c *CPU) bool {
	ptr := uint8(c.tempAddress)
	c.operandHigh = c.bus.Read(uint16(ptr + 1))
	c.effectiveAddress = uint16(c.operandHigh)<<8 | uint16(c.operandLow)
	return false
}

// --- indirect,Y (post-indexed indirect) ----------------------------------

func fetchZpPointer(c *CPU) bool {
	c.tempAddress = uint16(c.bus.Read(c.PC))
	c.PC++
	return false
}

func fetchPointerLow(c *CPU) bool {
	c.operandLow = c.bus.Read(c.tempAddress)
	return false
}

// fetchPointerHigh fetches the pointer's high byte, wrapping within
// zero page (the base address for the subsequent Y-indexing step).
func fetchPointerHigh(c *CPU) bool {
	ptr := uint8(c.tempAddress)
	c.operandHigh = c.bus.Read(uint16(ptr + 1))
	return false
}

// addYCheckPage and its write variant are exactly calcAbsoluteIndexed
// parameterized by Y — indirect,Y shares absolute,Y's indexing rule
// once the base address has been dereferenced from zero page.
func addYCheckPage(c *CPU) bool      { return calcAbsoluteIndexedRead(selectY)(c) }
func addYCheckPageWrite(c *CPU) bool { return calcAbsoluteIndexedWrite(selectY)(c) }

// --- JMP indirect, with the 6502's page-wrap bug -------------------------

func fetchIndirectPtrLow(c *CPU) bool {
	c.operandLow = c.bus.Read(c.PC)
	c.PC++
	return false
}

func fetchIndirectPtrHigh(c *CPU) bool {
	c.operandHigh = c.bus.Read(c.PC)
	c.PC++
	return false
}

// jmpIndirectFetchLow reads the target's low byte through the pointer.
func jmpIndirectFetchLow(c *CPU) bool {
	ptr := uint16(c.operandHigh)<<8 | uint16(c.operandLow)
	c.tempValue = c.bus.Read(ptr)
	return false
}

// jmpIndirectFetchHigh reads the target's high byte. If the pointer's
// low byte is 0xFF, it is (incorrectly, but faithfully) fetched from
// the start of the same page rather than the next page — the
// well-known 6502 JMP (indirect) hardware bug.
func jmpIndirectFetchHigh(c *CPU) bool {
	ptr := uint16(c.operandHigh)<<8 | uint16(c.operandLow)
	var hiAddr uint16
	if uint8(ptr) == 0xFF {
		hiAddr = ptr & 0xFF00
	} else {
		hiAddr = ptr + 1
	}
	hi := c.bus.Read(hiAddr)
	c.PC = uint16(hi)<<8 | uint16(c.tempValue)
	return true
}

// jmpAbsoluteFinish completes JMP absolute: the high-byte fetch cycle
// is itself the cycle that redirects PC, so the instruction ends here.
func jmpAbsoluteFinish(c *CPU) bool {
	c.operandHigh = c.bus.Read(c.PC)
	c.PC = uint16(c.operandHigh)<<8 | uint16(c.operandLow)
	return true
}

// --- RMW read / dummy-write-of-original ----------------------------------

func readEffective(c *CPU) bool {
	c.tempValue = c.bus.Read(c.effectiveAddress)
	return false
}

func dummyWriteOriginal(c *CPU) bool {
	c.bus.Write(c.effectiveAddress, c.tempValue)
	return false
}

// --- stack ---------------------------------------------------------------

// stackDummyReadPC models the internal cycle real 6502 silicon spends
// re-reading (and discarding) the byte after the opcode before a
// stack push or pull.
func stackDummyReadPC(c *CPU) bool {
	c.bus.DummyRead(c.PC)
	return false
}

// stackDummyReadSP models the internal "increment S" cycle of a pull:
// the stack pointer is about to move, and hardware spends a cycle
// reading the pre-increment location before doing so.
func stackDummyReadSP(c *CPU) bool {
	c.bus.DummyRead(0x0100 | uint16(c.SP))
	return false
}

// pullByte increments SP and reads the new top of stack into
// temp_value — the operand a pulling opcode function (PLA/PLP)
// consumes.
func pullByte(c *CPU) bool {
	c.SP++
	c.tempValue = c.bus.Read(0x0100 | uint16(c.SP))
	return true
}

// --- branches --------------------------------------------------------

// branchFetchOffset reads the signed offset byte, then evaluates the
// opcode's condition via cond. If it isn't met, the branch is not taken
// and the 2-cycle instruction ends immediately.
func branchFetchOffset(cond func(CPU) bool) microstep {
	return func(c *CPU) bool {
		c.tempValue = c.bus.Read(c.PC)
		c.PC++
		if !cond(*c) {
			return true
		}
		return false
	}
}

// branchAddOffset performs the mandatory dummy read at the
// not-yet-corrected PC, then computes the branch target. If the
// branch doesn't cross a page, the instruction ends here (3 cycles
// total); otherwise branchFixPch runs next.
func branchAddOffset(c *CPU) bool {
	c.bus.DummyRead(c.PC)
	offset := int8(c.tempValue)
	base := c.PC
	target := uint16(int32(base) + int32(offset))
	c.pageCrossed = (target & 0xFF00) != (base & 0xFF00)
	c.PC = (base & 0xFF00) | (target & 0x00FF)
	c.tempAddress = target
	return !c.pageCrossed
}

// branchFixPch performs the dummy read at the mispredicted (wrong
// page) address and corrects PC to the true target.
func branchFixPch(c *CPU) bool {
	c.bus.DummyRead(c.PC)
	c.PC = c.tempAddress
	return true
}

// --- JSR / RTS / RTI / BRK ------------------------------------------------

// jsrInternalDelay is the idle cycle real silicon spends after fetching
// the target's low byte and before it starts pushing the return address.
func jsrInternalDelay(c *CPU) bool {
	c.bus.DummyRead(0x0100 | uint16(c.SP))
	return false
}

func jsrPushHigh(c *CPU) bool {
	c.bus.Write(0x0100|uint16(c.SP), uint8(c.PC>>8))
	c.SP--
	return false
}

func jsrPushLow(c *CPU) bool {
	c.bus.Write(0x0100|uint16(c.SP), uint8(c.PC))
	c.SP--
	return false
}

// jsrFinish fetches the target's high byte from the still-unincremented
// PC (pointing at the operand's second byte) and redirects control.
func jsrFinish(c *CPU) bool {
	c.operandHigh = c.bus.Read(c.PC)
	c.PC = uint16(c.operandHigh)<<8 | uint16(c.operandLow)
	return true
}

func rtsPullLow(c *CPU) bool {
	c.SP++
	c.operandLow = c.bus.Read(0x0100 | uint16(c.SP))
	return false
}

func rtsPullHigh(c *CPU) bool {
	c.SP++
	c.operandHigh = c.bus.Read(0x0100 | uint16(c.SP))
	c.tempAddress = uint16(c.operandHigh)<<8 | uint16(c.operandLow)
	return false
}

// rtsIncrementPC is RTS's final idle cycle: the pulled address pointed
// at the JSR operand's high byte, not the instruction after it.
func rtsIncrementPC(c *CPU) bool {
	c.PC = c.tempAddress + 1
	return true
}

func rtiPullFlags(c *CPU) bool {
	c.SP++
	v := c.bus.Read(0x0100 | uint16(c.SP))
	c.P = FlagsFromByte(v)
	return false
}

func rtiPullLow(c *CPU) bool {
	c.SP++
	c.operandLow = c.bus.Read(0x0100 | uint16(c.SP))
	return false
}

func rtiPullHighAndFinish(c *CPU) bool {
	c.SP++
	c.operandHigh = c.bus.Read(0x0100 | uint16(c.SP))
	c.PC = uint16(c.operandHigh)<<8 | uint16(c.operandLow)
	return true
}

// brkReadOperandByte reads (and discards) BRK's padding byte, advancing
// PC past it — the pushed return address points one byte beyond the
// BRK opcode itself, matching real hardware.
func brkReadOperandByte(c *CPU) bool {
	c.bus.Read(c.PC)
	c.PC++
	return false
}

func brkPushHigh(c *CPU) bool {
	c.bus.Write(0x0100|uint16(c.SP), uint8(c.PC>>8))
	c.SP--
	return false
}

func brkPushLow(c *CPU) bool {
	c.bus.Write(0x0100|uint16(c.SP), uint8(c.PC))
	c.SP--
	return false
}

// brkPushFlags pushes P with the Break bit set, as a software-initiated
// interrupt, and sets InterruptDisable for the handler about to run.
func brkPushFlags(c *CPU) bool {
	c.bus.Write(0x0100|uint16(c.SP), c.P.WithBreak(true).ToByte())
	c.SP--
	c.P.InterruptDisable = true
	return false
}

func brkFetchVectorLow(c *CPU) bool {
	c.operandLow = c.bus.Read(0xFFFE)
	return false
}

func brkFetchVectorHighAndFinish(c *CPU) bool {
	c.operandHigh = c.bus.Read(0xFFFF)
	c.PC = uint16(c.operandHigh)<<8 | uint16(c.operandLow)
	return true
}
