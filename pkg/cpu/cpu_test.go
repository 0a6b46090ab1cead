package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nescore/nes-core/pkg/bus"
)

// traceBus wraps bus.RAM and records every write in order, for tests
// that need to assert on dummy-write-then-write RMW traces.
type traceBus struct {
	*bus.RAM
	writes []struct {
		Addr  uint16
		Value uint8
	}
}

func newTraceBus() *traceBus {
	return &traceBus{RAM: bus.NewRAM()}
}

func (t *traceBus) Write(addr uint16, value uint8) {
	t.writes = append(t.writes, struct {
		Addr  uint16
		Value uint8
	}{addr, value})
	t.RAM.Write(addr, value)
}

func setResetVector(b *bus.RAM, addr uint16) {
	b.Poke(0xFFFC, uint8(addr))
	b.Poke(0xFFFD, uint8(addr>>8))
}

func newResetCPU(b bus.Bus, resetPC uint16) *CPU {
	if ram, ok := b.(*bus.RAM); ok {
		setResetVector(ram, resetPC)
	}
	c := New(b, VariantRP2A03G)
	c.Reset()
	for !c.InstructionComplete() {
		c.Step()
	}
	return c
}

func runInstruction(c *CPU) {
	for {
		c.Step()
		if c.InstructionComplete() {
			return
		}
	}
}

// stepCountingCycles steps c through exactly one instruction and
// returns how many cycles it took. It always steps at least once
// before checking completion, so it works correctly even when c
// already has a stale InstructionComplete()==true left over from
// whatever finished the previous instruction (Step resets the flag
// the moment it's called).
func stepCountingCycles(c *CPU) int {
	cycles := 0
	for {
		c.Step()
		cycles++
		if c.InstructionComplete() {
			return cycles
		}
	}
}

func TestResetSequenceLoadsVectorAndDecrementsSP(t *testing.T) {
	ram := bus.NewRAM()
	setResetVector(ram, 0x8000)
	c := New(ram, VariantRP2A03G)
	startSP := c.SP
	c.Reset()

	cycles := 0
	for !c.InstructionComplete() {
		c.Step()
		cycles++
	}

	assert.Equal(t, 6, cycles, "RESET dispatch takes 6 cycles (7 including the dummy opcode fetch, which doesn't happen here)")
	assert.Equal(t, uint16(0x8000), c.PCValue())
	assert.Equal(t, startSP-3, c.SP)
	assert.True(t, c.Flags().InterruptDisable)
}

func TestResetSuppressesStackWrites(t *testing.T) {
	tb := newTraceBus()
	setResetVector(tb.RAM, 0x8000)
	c := New(tb, VariantRP2A03G)
	c.Reset()
	for !c.InstructionComplete() {
		c.Step()
	}
	assert.Empty(t, tb.writes, "reset must not actually write to the stack")
}

func TestLDAImmediate(t *testing.T) {
	ram := bus.NewRAM()
	ram.Poke(0x8000, 0xA9) // LDA #$42
	ram.Poke(0x8001, 0x42)
	c := newResetCPU(ram, 0x8000)

	cycles := stepCountingCycles(c)

	assert.Equal(t, 2, cycles)
	assert.Equal(t, uint8(0x42), c.AValue())
	assert.False(t, c.Flags().Zero)
	assert.False(t, c.Flags().Negative)
	assert.Equal(t, uint16(0x8002), c.PCValue())
}

func TestLDAZeroPageXWraparound(t *testing.T) {
	ram := bus.NewRAM()
	ram.Poke(0x8000, 0xB5) // LDA $FF,X
	ram.Poke(0x8001, 0xFF)
	ram.Poke(0x007F, 0x55) // ($FF + 0x80) wraps to $7F within page 0
	c := newResetCPU(ram, 0x8000)
	c.X = 0x80

	runInstruction(c)

	assert.Equal(t, uint8(0x55), c.AValue())
}

func TestStoreAbsoluteIndexedAlwaysSpendsFixupCycle(t *testing.T) {
	ram := bus.NewRAM()
	ram.Poke(0x8000, 0x9D) // STA $1000,X (no page cross)
	ram.Poke(0x8001, 0x00)
	ram.Poke(0x8002, 0x10)
	c := newResetCPU(ram, 0x8000)
	c.X = 0x01
	c.A = 0x7E

	cycles := stepCountingCycles(c)

	assert.Equal(t, 5, cycles, "STA abs,X always takes 5 cycles regardless of page crossing")
	assert.Equal(t, uint8(0x7E), ram.Peek(0x1001))
}

func TestLDAAbsoluteXPageCrossCostsExtraCycle(t *testing.T) {
	ram := bus.NewRAM()
	ram.Poke(0x8000, 0xBD) // LDA $10FF,X
	ram.Poke(0x8001, 0xFF)
	ram.Poke(0x8002, 0x10)
	ram.Poke(0x1100, 0x99) // crosses into next page
	c := newResetCPU(ram, 0x8000)
	c.X = 0x01

	cycles := stepCountingCycles(c)

	assert.Equal(t, 5, cycles)
	assert.Equal(t, uint8(0x99), c.AValue())
}

func TestRMWProducesDummyWriteThenRealWrite(t *testing.T) {
	tb := newTraceBus()
	setResetVector(tb.RAM, 0x8000)
	tb.RAM.Poke(0x8000, 0xE6) // INC $10
	tb.RAM.Poke(0x8001, 0x10)
	tb.RAM.Poke(0x0010, 0x7F)
	c := New(tb, VariantRP2A03G)
	c.Reset()
	for !c.InstructionComplete() {
		c.Step()
	}
	tb.writes = nil

	runInstruction(c)

	if assert.Len(t, tb.writes, 2) {
		assert.Equal(t, uint16(0x10), tb.writes[0].Addr)
		assert.Equal(t, uint8(0x7F), tb.writes[0].Value, "first write is the unmodified original value")
		assert.Equal(t, uint16(0x10), tb.writes[1].Addr)
		assert.Equal(t, uint8(0x80), tb.writes[1].Value, "second write is the incremented result")
	}
}

func TestBranchCycleCounts(t *testing.T) {
	cases := []struct {
		name       string
		pc         uint16
		offset     uint8
		wantCycles int
		wantPC     uint16
	}{
		{"not taken", 0x8000, 0x05, 2, 0x8002},
		{"taken, no page cross", 0x8000, 0x05, 3, 0x8007},
		{"taken, page cross", 0x80FC, 0x05, 4, 0x8103},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ram := bus.NewRAM()
			ram.Poke(tc.pc, 0x90) // BCC
			ram.Poke(tc.pc+1, tc.offset)
			c := newResetCPU(ram, tc.pc)
			if tc.name == "not taken" {
				c.P.Carry = true
			}

			cycles := stepCountingCycles(c)

			assert.Equal(t, tc.wantCycles, cycles)
			if tc.wantCycles != 2 {
				assert.Equal(t, tc.wantPC, c.PCValue())
			}
		})
	}
}

func TestJMPIndirectPageBoundaryBug(t *testing.T) {
	ram := bus.NewRAM()
	ram.Poke(0x8000, 0x6C) // JMP ($30FF)
	ram.Poke(0x8001, 0xFF)
	ram.Poke(0x8002, 0x30)
	ram.Poke(0x30FF, 0x80)
	ram.Poke(0x3000, 0x50) // real hardware wraps the high-byte fetch within the page
	ram.Poke(0x3100, 0x99) // correct (non-buggy) location; must NOT be used
	c := newResetCPU(ram, 0x8000)

	runInstruction(c)

	assert.Equal(t, uint16(0x5080), c.PCValue())
}

func TestJSRRTSRoundTrip(t *testing.T) {
	ram := bus.NewRAM()
	ram.Poke(0x8000, 0x20) // JSR $9000
	ram.Poke(0x8001, 0x00)
	ram.Poke(0x8002, 0x90)
	ram.Poke(0x9000, 0x60) // RTS
	c := newResetCPU(ram, 0x8000)

	jsrCycles := stepCountingCycles(c)
	assert.Equal(t, 6, jsrCycles)
	assert.Equal(t, uint16(0x9000), c.PCValue())

	rtsCycles := stepCountingCycles(c)
	assert.Equal(t, 6, rtsCycles)
	assert.Equal(t, uint16(0x8003), c.PCValue())
}

func TestStackPushPullRoundTrip(t *testing.T) {
	ram := bus.NewRAM()
	ram.Poke(0x8000, 0xA9) // LDA #$37
	ram.Poke(0x8001, 0x37)
	ram.Poke(0x8002, 0x48) // PHA
	ram.Poke(0x8003, 0xA9) // LDA #$00
	ram.Poke(0x8004, 0x00)
	ram.Poke(0x8005, 0x68) // PLA
	c := newResetCPU(ram, 0x8000)

	runInstruction(c) // LDA #$37
	startSP := c.SP

	phaCycles := stepCountingCycles(c)
	assert.Equal(t, 3, phaCycles)
	assert.Equal(t, startSP-1, c.SP)

	runInstruction(c) // LDA #$00
	assert.Equal(t, uint8(0), c.AValue())

	plaCycles := stepCountingCycles(c)
	assert.Equal(t, 4, plaCycles)
	assert.Equal(t, uint8(0x37), c.AValue())
	assert.Equal(t, startSP, c.SP)
}

func TestNMIIsEdgeTriggeredAndSticky(t *testing.T) {
	ram := bus.NewRAM()
	ram.Poke(0xFFFA, 0x00) // NMI vector
	ram.Poke(0xFFFB, 0x90)
	ram.Poke(0x8000, 0xEA) // NOP
	c := newResetCPU(ram, 0x8000)

	c.SetNMILine(true)
	c.Step() // latch the rising edge mid NOP-ish window; NMI only samples between instructions
	c.SetNMILine(false)

	runInstruction(c) // finishes whatever was in flight; NMI should now be serviced next
	// Drain the interrupt dispatch.
	for c.PCValue() != 0x9000 {
		c.Step()
		assert.False(t, c.Halted())
	}
	assert.Equal(t, uint16(0x9000), c.PCValue())
}

func TestIRQIgnoredWhenInterruptDisableSet(t *testing.T) {
	ram := bus.NewRAM()
	ram.Poke(0xFFFE, 0x00) // IRQ/BRK vector
	ram.Poke(0xFFFF, 0x90)
	ram.Poke(0x8000, 0xEA) // NOP
	ram.Poke(0x8001, 0xEA) // NOP
	c := newResetCPU(ram, 0x8000)
	c.P.InterruptDisable = true

	c.SetIRQLine(true)
	runInstruction(c) // first NOP
	runInstruction(c) // second NOP — IRQ must not have fired

	assert.Equal(t, uint16(0x8002), c.PCValue())
}

func TestJAMHaltsCPU(t *testing.T) {
	ram := bus.NewRAM()
	ram.Poke(0x8000, 0x02) // JAM
	c := newResetCPU(ram, 0x8000)

	c.Step()
	assert.True(t, c.Halted())

	pc := c.PCValue()
	c.Step()
	assert.Equal(t, pc, c.PCValue(), "a halted CPU never advances")
}

func TestADCSetsOverflowOnSignedOverflow(t *testing.T) {
	ram := bus.NewRAM()
	ram.Poke(0x8000, 0x69) // ADC #$50
	ram.Poke(0x8001, 0x50)
	c := newResetCPU(ram, 0x8000)
	c.A = 0x50 // 0x50 + 0x50 = 0xA0: two positives producing a negative result

	runInstruction(c)

	assert.Equal(t, uint8(0xA0), c.AValue())
	assert.True(t, c.Flags().Overflow)
	assert.True(t, c.Flags().Negative)
	assert.False(t, c.Flags().Carry)
}

func TestSBCClearsCarryOnBorrow(t *testing.T) {
	ram := bus.NewRAM()
	ram.Poke(0x8000, 0xE9) // SBC #$01
	ram.Poke(0x8001, 0x01)
	c := newResetCPU(ram, 0x8000)
	c.A = 0x00
	c.P.Carry = true // no borrow going in

	runInstruction(c)

	assert.Equal(t, uint8(0xFF), c.AValue())
	assert.False(t, c.Flags().Carry, "borrow occurred, so carry (the inverted borrow) clears")
}

func TestBRKDispatchesThroughIRQVectorAndPushesBFlag(t *testing.T) {
	ram := bus.NewRAM()
	ram.Poke(0xFFFE, 0x00) // IRQ/BRK vector
	ram.Poke(0xFFFF, 0x90)
	ram.Poke(0x8000, 0x00) // BRK
	c := newResetCPU(ram, 0x8000)
	startSP := c.SP

	cycles := stepCountingCycles(c)

	assert.Equal(t, 7, cycles, "opcode fetch plus 6 BRK steps (7 total cycles)")
	assert.Equal(t, uint16(0x9000), c.PCValue())
	assert.Equal(t, startSP-3, c.SP)
	assert.True(t, c.Flags().InterruptDisable)

	pushedFlags := ram.Peek(0x0100 + uint16(c.SP) + 1)
	assert.NotZero(t, pushedFlags&flagBreak, "BRK must push status with the B flag set")
}

func TestUndocumentedLAXLoadsBothAAndX(t *testing.T) {
	ram := bus.NewRAM()
	ram.Poke(0x8000, 0xA7) // LAX $10 (zero page)
	ram.Poke(0x8001, 0x10)
	ram.Poke(0x0010, 0x64)
	c := newResetCPU(ram, 0x8000)

	runInstruction(c)

	assert.Equal(t, uint8(0x64), c.AValue())
	assert.Equal(t, uint8(0x64), c.XValue())
}
