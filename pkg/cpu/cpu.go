package cpu

import "github.com/nescore/nes-core/pkg/bus"

// engineState is the CPU's per-cycle state machine position.
type engineState int

const (
	stateFetchOpcode engineState = iota
	stateFetchOperandLow
	stateExecute
	stateInterruptSequence
)

// interruptKind identifies which of the three hardware interrupt
// sources is latched and/or being serviced.
type interruptKind int

const (
	interruptNone interruptKind = iota
	interruptIRQ
	interruptNMI
	interruptReset
)

// vector addresses, fixed by the 6502 architecture.
const (
	vectorNMI   = 0xFFFA
	vectorReset = 0xFFFC
	vectorIRQ   = 0xFFFE
)

// CPU is a cycle-accurate 2A03/6502 core. Call Step once per CPU clock
// cycle; it advances exactly one cycle regardless of how far through
// an instruction it is.
type CPU struct {
	bus     bus.Bus
	variant Variant

	A, X, Y, SP uint8
	PC          uint16
	P           StatusFlags

	state            engineState
	opcode           uint8
	currentEntry     *tableEntry
	instructionCycle int

	operandLow       uint8
	operandHigh      uint8
	tempValue        uint8
	tempAddress      uint16
	effectiveAddress uint16
	pageCrossed      bool

	halted bool

	nmiLine         bool
	prevNmiLine     bool
	nmiPendingLatch bool
	irqLine         bool
	irqPendingLatch bool
	pendingInterrupt interruptKind
	servicing        interruptKind

	rdyLine bool // true = normal operation; false = held (e.g. for DMA)

	instructionComplete bool
	totalCycles         uint64
}

// New returns a CPU wired to bus b, with its silicon-revision variant
// fixed for the lifetime of the core. Call Reset before the first Step.
func New(b bus.Bus, variant Variant) *CPU {
	return &CPU{
		bus:     b,
		variant: variant,
		rdyLine: true,
		SP:      0x00,
		state:   stateInterruptSequence,
	}
}

// Reset forces the CPU through its power-on/reset sequence: SP is
// decremented three times by stepInterruptSequence itself, without any
// bus write actually happening (real 6502 silicon holds R/W high
// throughout reset), and PC is loaded from the reset vector. Starting
// from power-on SP=0x00, the three decrements land on the documented
// 0xFD. Equivalent to asserting and then releasing the RESET line.
func (c *CPU) Reset() {
	c.halted = false
	c.pendingInterrupt = interruptNone
	c.nmiPendingLatch = false
	c.irqPendingLatch = false
	c.P.InterruptDisable = true
	c.state = stateInterruptSequence
	c.instructionCycle = 0
	c.servicing = interruptReset
	c.instructionComplete = false
}

// SetNMILine sets the physical level of the NMI input. NMI is edge
// triggered: a transition from low to high latches a pending NMI
// regardless of how quickly the line changes back.
func (c *CPU) SetNMILine(asserted bool) {
	c.nmiLine = asserted
}

// SetIRQLine sets the physical level of the IRQ input. IRQ is level
// triggered and gated by the Interrupt Disable flag; it does not
// latch — it's sampled fresh every cycle.
func (c *CPU) SetIRQLine(asserted bool) {
	c.irqLine = asserted
}

// SetRDYLine gates the CPU's clock: while deasserted, Step is a no-op
// (used by DMA controllers that need to borrow cycles).
func (c *CPU) SetRDYLine(asserted bool) {
	c.rdyLine = asserted
}

// Halted reports whether the CPU has executed a JAM/KIL opcode and
// will never fetch again.
func (c *CPU) Halted() bool { return c.halted }

// InstructionComplete reports whether the cycle just executed was the
// last cycle of an instruction (or interrupt dispatch) — useful for
// tests and disassembling trace output one instruction at a time.
func (c *CPU) InstructionComplete() bool { return c.instructionComplete }

// TotalCycles returns the number of cycles actually executed (RDY-held
// cycles don't count).
func (c *CPU) TotalCycles() uint64 { return c.totalCycles }

// Registers accessors, for debuggers and tests.
func (c *CPU) PCValue() uint16    { return c.PC }
func (c *CPU) Flags() StatusFlags { return c.P }
func (c *CPU) AValue() uint8      { return c.A }
func (c *CPU) XValue() uint8      { return c.X }
func (c *CPU) YValue() uint8      { return c.Y }
func (c *CPU) SPValue() uint8     { return c.SP }

// Step executes exactly one CPU clock cycle.
func (c *CPU) Step() {
	c.instructionComplete = false

	if c.state != stateInterruptSequence {
		if c.nmiPendingLatch {
			c.pendingInterrupt = interruptNMI
		} else if c.irqPendingLatch {
			c.pendingInterrupt = interruptIRQ
		} else {
			c.pendingInterrupt = interruptNone
		}
	}

	if !c.rdyLine || c.halted {
		return
	}

	switch c.state {
	case stateFetchOpcode:
		c.stepFetchOpcode()
	case stateFetchOperandLow:
		c.stepFetchOperandLow()
	case stateExecute:
		c.stepExecute()
	case stateInterruptSequence:
		c.stepInterruptSequence()
	}

	c.totalCycles++

	if c.nmiLine && !c.prevNmiLine {
		c.nmiPendingLatch = true
	}
	c.prevNmiLine = c.nmiLine
	c.irqPendingLatch = c.irqLine && !c.P.InterruptDisable
}

func (c *CPU) stepFetchOpcode() {
	if c.pendingInterrupt != interruptNone {
		c.bus.DummyRead(c.PC)
		c.servicing = c.pendingInterrupt
		c.pendingInterrupt = interruptNone
		c.nmiPendingLatch = false
		c.state = stateInterruptSequence
		c.instructionCycle = 0
		return
	}

	c.opcode = c.bus.Read(c.PC)
	c.PC++
	entry := table[c.opcode]
	c.currentEntry = &entry
	c.instructionCycle = 0
	c.pageCrossed = false

	if entry.kind == kindHalt {
		c.runExecute()
		c.instructionComplete = true
		return
	}

	if entry.maxCycles == 0 {
		c.state = stateExecute
	} else {
		c.state = stateFetchOperandLow
	}
}

func (c *CPU) stepFetchOperandLow() {
	entry := c.currentEntry
	step := entry.steps[c.instructionCycle]
	early := step(c)
	c.instructionCycle++
	reachedMax := c.instructionCycle >= entry.maxCycles

	if !early && !reachedMax {
		return
	}

	if entry.kind == kindControl {
		c.state = stateFetchOpcode
		c.instructionComplete = true
		return
	}

	if entry.fold {
		c.runExecute()
		c.state = stateFetchOpcode
		c.instructionComplete = true
		return
	}

	c.state = stateExecute
}

func (c *CPU) stepExecute() {
	c.runExecute()
	c.state = stateFetchOpcode
	c.instructionComplete = true
}

// runExecute resolves the operand, invokes the opcode's pure function,
// and applies its delta. Implied/accumulator-mode opcodes (no
// addressing steps at all) spend a dummy PC read here, matching real
// hardware's internal cycle.
func (c *CPU) runExecute() {
	if c.currentEntry.maxCycles == 0 && c.currentEntry.kind != kindHalt {
		c.bus.DummyRead(c.PC)
	}
	operand := c.resolveOperand()
	state := CoreState{
		A: c.A, X: c.X, Y: c.Y, SP: c.SP, PC: c.PC, P: c.P,
		EffectiveAddress: c.effectiveAddress,
		Magic:            c.variant.unstableMagic(),
	}
	result := c.currentEntry.fn(state, operand)
	c.apply(result)
}

func (c *CPU) resolveOperand() uint8 {
	entry := c.currentEntry
	if entry.kind == kindWrite {
		return 0
	}
	switch entry.operandSource {
	case SrcNone:
		return 0
	case SrcTempValue, SrcImmediatePC, SrcOperandLow:
		return c.tempValue
	case SrcEffectiveAddr:
		return c.bus.Read(c.effectiveAddress)
	case SrcAccumulator:
		return c.A
	default:
		return 0
	}
}

func (c *CPU) apply(r OpcodeResult) {
	if r.A != nil {
		c.A = *r.A
	}
	if r.X != nil {
		c.X = *r.X
	}
	if r.Y != nil {
		c.Y = *r.Y
	}
	if r.SP != nil {
		c.SP = *r.SP
	}
	if r.PC != nil {
		c.PC = *r.PC
	}
	if r.Flags != nil {
		c.P = *r.Flags
	}
	if r.BusWrite != nil {
		c.bus.Write(r.BusWrite.Address, r.BusWrite.Value)
	}
	if r.Push != nil {
		c.bus.Write(0x0100|uint16(c.SP), *r.Push)
		c.SP--
	}
	if r.Halt {
		c.halted = true
	}
}

// stepInterruptSequence drives the 6-microcycle (7 with the leading
// dummy read already spent in stepFetchOpcode) dispatch shared by
// NMI, IRQ, and RESET; BRK runs its own microstep sequence from the
// opcode table instead. RESET reuses the same shape but every push
// is suppressed — SP still decrements three times, but nothing is
// actually written, matching real silicon holding R/W high.
func (c *CPU) stepInterruptSequence() {
	suppressWrites := c.servicing == interruptReset

	switch c.instructionCycle {
	case 0:
		if !suppressWrites {
			c.bus.Write(0x0100|uint16(c.SP), uint8(c.PC>>8))
		}
		c.SP--
	case 1:
		if !suppressWrites {
			c.bus.Write(0x0100|uint16(c.SP), uint8(c.PC))
		}
		c.SP--
	case 2:
		if !suppressWrites {
			c.bus.Write(0x0100|uint16(c.SP), c.P.WithBreak(false).ToByte())
		}
		c.SP--
		c.P.InterruptDisable = true
	case 3:
		c.operandLow = c.bus.Read(c.vectorAddress())
	case 4:
		c.operandHigh = c.bus.Read(c.vectorAddress() + 1)
	case 5:
		c.PC = uint16(c.operandHigh)<<8 | uint16(c.operandLow)
		c.state = stateFetchOpcode
		c.instructionComplete = true
		c.servicing = interruptNone
	}
	c.instructionCycle++
}

func (c *CPU) vectorAddress() uint16 {
	switch c.servicing {
	case interruptNMI:
		return vectorNMI
	case interruptReset:
		return vectorReset
	default:
		return vectorIRQ
	}
}
