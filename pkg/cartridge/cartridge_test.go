package cartridge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makePRG(banks int, fill func(b []uint8)) []uint8 {
	prg := make([]uint8, banks*16*1024)
	if fill != nil {
		fill(prg)
	}
	return prg
}

func TestUnsupportedMapperIsRejected(t *testing.T) {
	_, err := New(99, makePRG(1, nil), nil, MirrorHorizontal, Options{})
	assert.Error(t, err)
}

func TestNROM16KMirrorsIntoBothHalves(t *testing.T) {
	prg := makePRG(1, func(b []uint8) { b[0] = 0xAA; b[0x3FFF] = 0xBB })
	cart, err := New(0, prg, nil, MirrorHorizontal, Options{})
	require.NoError(t, err)

	assert.Equal(t, uint8(0xAA), cart.ReadPRG(0x8000))
	assert.Equal(t, uint8(0xAA), cart.ReadPRG(0xC000), "16KB NROM mirrors into $C000")
	assert.Equal(t, uint8(0xBB), cart.ReadPRG(0xBFFF))
	assert.Equal(t, uint8(0xBB), cart.ReadPRG(0xFFFF))
}

func TestNROM32KDoesNotMirror(t *testing.T) {
	prg := makePRG(2, func(b []uint8) { b[0] = 0x11; b[0x4000] = 0x22 })
	cart, err := New(0, prg, nil, MirrorHorizontal, Options{})
	require.NoError(t, err)

	assert.Equal(t, uint8(0x11), cart.ReadPRG(0x8000))
	assert.Equal(t, uint8(0x22), cart.ReadPRG(0xC000))
}

func TestNROMAllocatesCHRRAMWhenNoCHRROM(t *testing.T) {
	cart, err := New(0, makePRG(1, nil), nil, MirrorHorizontal, Options{})
	require.NoError(t, err)
	cart.WriteCHR(0x0100, 0x42)
	assert.Equal(t, uint8(0x42), cart.ReadCHR(0x0100))
}

func TestUxROMFixesLastBankAtC000(t *testing.T) {
	prg := makePRG(4, func(b []uint8) {
		for bank := 0; bank < 4; bank++ {
			b[bank*16*1024] = uint8(0x10 + bank)
		}
	})
	cart, err := New(2, prg, nil, MirrorHorizontal, Options{})
	require.NoError(t, err)

	cart.WritePRG(0x8000, 1)
	assert.Equal(t, uint8(0x11), cart.ReadPRG(0x8000), "switchable window follows the selected bank")
	assert.Equal(t, uint8(0x13), cart.ReadPRG(0xC000), "last bank stays fixed regardless of the select register")

	cart.WritePRG(0x8000, 2)
	assert.Equal(t, uint8(0x12), cart.ReadPRG(0x8000))
	assert.Equal(t, uint8(0x13), cart.ReadPRG(0xC000))
}

func TestUxROMResetRestoresBankZero(t *testing.T) {
	prg := makePRG(4, func(b []uint8) {
		for bank := 0; bank < 4; bank++ {
			b[bank*16*1024] = uint8(0x10 + bank)
		}
	})
	cart, err := New(2, prg, nil, MirrorHorizontal, Options{})
	require.NoError(t, err)

	cart.WritePRG(0x8000, 2)
	assert.Equal(t, uint8(0x12), cart.ReadPRG(0x8000))

	cart.Reset()
	assert.Equal(t, uint8(0x10), cart.ReadPRG(0x8000), "reset must restore the power-on bank selection")
}

func TestCNROMSwitchesCHROnly(t *testing.T) {
	chr := make([]uint8, 2*8*1024)
	chr[0] = 0xA1
	chr[8*1024] = 0xB2
	cart, err := New(3, makePRG(1, nil), chr, MirrorHorizontal, Options{})
	require.NoError(t, err)

	cart.WritePRG(0x8000, 0)
	assert.Equal(t, uint8(0xA1), cart.ReadCHR(0x0000))
	cart.WritePRG(0x8000, 1)
	assert.Equal(t, uint8(0xB2), cart.ReadCHR(0x0000))
}

func TestCNROMStrictBusConflictMasksWrite(t *testing.T) {
	prg := makePRG(1, func(b []uint8) { b[0] = 0x00 })
	chr := make([]uint8, 2*8*1024)
	cart, err := New(3, prg, chr, MirrorHorizontal, Options{StrictBusConflicts: true})
	require.NoError(t, err)

	// ROM byte at $8000 is 0x00, so a conflicting write of 0xFF must be
	// ANDed down to 0x00 rather than winning outright.
	cart.WritePRG(0x8000, 0xFF)
	assert.Equal(t, uint8(0x00), cart.ReadCHR(0x0000))
}

func TestAxROMSingleScreenSelect(t *testing.T) {
	const axromBankSize = 32 * 1024
	prg := make([]uint8, 4*axromBankSize)
	for bank := 0; bank < 4; bank++ {
		prg[bank*axromBankSize] = uint8(bank)
	}
	cart, err := New(7, prg, nil, MirrorHorizontal, Options{})
	require.NoError(t, err)

	cart.WritePRG(0x8000, 0x03)
	assert.Equal(t, uint8(3), cart.ReadPRG(0x8000))
	assert.Equal(t, MirrorSingleLow, cart.Mirroring())

	cart.WritePRG(0x8000, 0x10)
	assert.Equal(t, MirrorSingleHigh, cart.Mirroring())
}

func TestMMC1FiveWriteShiftRegisterCommit(t *testing.T) {
	prg := makePRG(4, nil)
	cart, err := New(1, prg, nil, MirrorHorizontal, Options{})
	require.NoError(t, err)

	// Only the fifth write actually commits; the first four must be
	// silently accumulated into the shift register without touching
	// chrBank0.
	cart.WritePRG(0xA000, 1)
	cart.WritePRG(0xA000, 1)
	cart.WritePRG(0xA000, 0)
	cart.WritePRG(0xA000, 0)
	assert.Equal(t, uint8(0), cart.mmc1.chrBank0, "no commit until the fifth write")
	cart.WritePRG(0xA000, 1) // fifth write: bits 1 1 0 0 1 (LSB first) = 0b10011 = 19
	assert.Equal(t, uint8(19), cart.mmc1.chrBank0)
}

func TestMMC1ResetWriteMidSequenceRestartsShift(t *testing.T) {
	prg := makePRG(4, nil)
	cart, err := New(1, prg, nil, MirrorHorizontal, Options{})
	require.NoError(t, err)

	cart.WritePRG(0xA000, 1)
	cart.WritePRG(0xA000, 0x80) // reset mid-sequence: discards the partial shift
	cart.WritePRG(0xA000, 1)
	cart.WritePRG(0xA000, 1)
	cart.WritePRG(0xA000, 1)
	cart.WritePRG(0xA000, 1)
	assert.Equal(t, uint8(0), cart.mmc1.chrBank0, "the reset write must not itself count toward a restarted commit")
	cart.WritePRG(0xA000, 1) // fifth write since the reset
	assert.Equal(t, uint8(0x1F), cart.mmc1.chrBank0)
}

func TestMMC1ResetWriteForcesPRGMode3(t *testing.T) {
	prg := makePRG(4, func(b []uint8) {
		b[3*16*1024] = 0x77 // last bank, should be fixed at $C000 in mode 3
	})
	cart, err := New(1, prg, nil, MirrorHorizontal, Options{})
	require.NoError(t, err)

	cart.WritePRG(0x8000, 0x80) // reset: forces control |= 0x0C (mode 3)
	assert.Equal(t, uint8(0x77), cart.ReadPRG(0xC000))
}

func TestMMC1PRGRAMDisabledByBankRegisterBit4(t *testing.T) {
	prg := makePRG(4, nil)
	cart, err := New(1, prg, nil, MirrorHorizontal, Options{})
	require.NoError(t, err)

	cart.WritePRG(0x6000, 0x42)
	assert.Equal(t, uint8(0x42), cart.ReadPRG(0x6000), "PRG-RAM enabled by default")

	writeMMC1(cart, 0xE000, 0x10) // prgBank bit4 set: disables PRG-RAM
	cart.WritePRG(0x6000, 0x99)
	assert.Equal(t, uint8(0), cart.ReadPRG(0x6000), "writes and reads are ignored while PRG-RAM is disabled")
}

func TestMMC1ResetForcesPRGMode3AndDiscardsShift(t *testing.T) {
	prg := makePRG(4, func(b []uint8) {
		b[3*16*1024] = 0x77
	})
	cart, err := New(1, prg, nil, MirrorHorizontal, Options{})
	require.NoError(t, err)

	cart.WritePRG(0xA000, 1) // partial shift, never committed
	cart.Reset()
	assert.Equal(t, uint8(0), cart.mmc1.chrBank0)
	assert.Equal(t, uint8(0x77), cart.ReadPRG(0xC000), "reset forces prgMode 3 (fixed last bank at $C000)")
}

func TestMMC1MirroringControlBits(t *testing.T) {
	prg := makePRG(4, nil)
	cart, err := New(1, prg, nil, MirrorHorizontal, Options{})
	require.NoError(t, err)

	writeMMC1(cart, 0x8000, 0b10) // control = vertical
	assert.Equal(t, MirrorVertical, cart.Mirroring())

	writeMMC1(cart, 0x8000, 0b11) // control = horizontal
	assert.Equal(t, MirrorHorizontal, cart.Mirroring())
}

// writeMMC1 performs the five-write shift sequence to commit value into
// whichever register addr selects.
func writeMMC1(cart *Cartridge, addr uint16, value uint8) {
	for i := 0; i < 5; i++ {
		cart.WritePRG(addr, (value>>uint(i))&0x01)
	}
}

func TestMMC3PRGBanking(t *testing.T) {
	const mmc3BankSize = 8 * 1024
	prg := make([]uint8, 8*mmc3BankSize)
	for bank := 0; bank < 8; bank++ {
		prg[bank*mmc3BankSize] = uint8(0x20 + bank)
	}
	cart, err := New(4, prg, nil, MirrorHorizontal, Options{})
	require.NoError(t, err)

	cart.WritePRG(0x8000, 0x06) // select R6
	cart.WritePRG(0x8001, 0x02) // R6 = bank 2
	cart.WritePRG(0x8000, 0x07) // select R7
	cart.WritePRG(0x8001, 0x05) // R7 = bank 5

	assert.Equal(t, uint8(0x22), cart.ReadPRG(0x8000), "prgMode 0: R6 at $8000")
	assert.Equal(t, uint8(0x25), cart.ReadPRG(0xA000), "R7 always at $A000")
	assert.Equal(t, uint8(0x26), cart.ReadPRG(0xC000), "prgMode 0: second-to-last fixed at $C000")
	assert.Equal(t, uint8(0x27), cart.ReadPRG(0xE000), "last bank always fixed at $E000")
}

func TestMMC3IRQReloadSuppressesThatEdge(t *testing.T) {
	cart := newTestMMC3(t)
	cart.WritePRG(0xC000, 4) // $C000 even: set IRQ latch
	cart.mmc3.irqEnabled = true
	cart.WritePRG(0xC001, 0) // request reload

	cart.ClockA12Rise()

	assert.False(t, cart.IRQPending(), "the reload edge itself must never fire an IRQ")
	assert.Equal(t, uint8(4), cart.mmc3.irqCounter)
}

func TestMMC3IRQFiresWhenCounterReachesZero(t *testing.T) {
	cart := newTestMMC3(t)
	cart.mmc3.irqLatch = 2
	cart.mmc3.irqEnabled = true
	cart.WritePRG(0xC001, 0) // reload request
	cart.ClockA12Rise()      // reload edge: counter=2, no IRQ
	require.False(t, cart.IRQPending())

	cart.ClockA12Rise() // counter 2->1
	assert.False(t, cart.IRQPending())

	cart.ClockA12Rise() // counter 1->0, enabled: fires
	assert.True(t, cart.IRQPending())
}

func TestMMC3IRQAlreadyZeroFiresOnNonReloadEdge(t *testing.T) {
	cart := newTestMMC3(t)
	cart.mmc3.irqLatch = 0
	cart.mmc3.irqEnabled = true
	cart.WritePRG(0xC001, 0)
	cart.ClockA12Rise() // reload: counter stays 0, suppressed
	require.False(t, cart.IRQPending())

	cart.ClockA12Rise() // counter already 0, non-reload edge: fires
	assert.True(t, cart.IRQPending())
}

func TestMMC3IRQDisableClearsPending(t *testing.T) {
	cart := newTestMMC3(t)
	cart.mmc3.irqPending = true
	cart.WritePRG(0xE000, 0) // $E000 disables and acknowledges
	assert.False(t, cart.IRQPending())
	assert.False(t, cart.mmc3.irqEnabled)
}

func TestMMC3IRQEnableDoesNotClearPending(t *testing.T) {
	cart := newTestMMC3(t)
	cart.mmc3.irqPending = true
	cart.WritePRG(0xE001, 0) // $E001 enables future IRQs; must not touch an already-pending one
	assert.True(t, cart.IRQPending())
	assert.True(t, cart.mmc3.irqEnabled)
}

func TestMMC3PRGRAMProtectBlocksWrites(t *testing.T) {
	cart := newTestMMC3(t)

	cart.WritePRG(0x6000, 0x11)
	assert.Equal(t, uint8(0x11), cart.ReadPRG(0x6000), "PRG-RAM enabled by default")

	cart.WritePRG(0xA001, 0x80|0x40) // enabled + write-protected
	cart.WritePRG(0x6000, 0x22)
	assert.Equal(t, uint8(0x11), cart.ReadPRG(0x6000), "write-protected: the new value must not land")

	cart.WritePRG(0xA001, 0x00) // disabled entirely
	assert.Equal(t, uint8(0), cart.ReadPRG(0x6000), "disabled PRG-RAM reads as open bus, not stale contents")
}

func TestMMC3ResetClearsBankSelectAndIRQState(t *testing.T) {
	cart := newTestMMC3(t)
	cart.WritePRG(0x8000, 0x06)
	cart.WritePRG(0x8001, 0x02)
	cart.mmc3.irqEnabled = true
	cart.mmc3.irqPending = true

	cart.Reset()

	assert.Equal(t, uint8(0), cart.mmc3.bankSelect)
	assert.False(t, cart.mmc3.irqEnabled)
	assert.False(t, cart.IRQPending())
}

func newTestMMC3(t *testing.T) *Cartridge {
	t.Helper()
	cart, err := New(4, makePRG(8, nil), nil, MirrorHorizontal, Options{})
	require.NoError(t, err)
	return cart
}
