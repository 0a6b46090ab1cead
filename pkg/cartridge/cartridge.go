// Package cartridge models the NES cartridge mapper chips as a closed
// tagged union dispatched by switch, rather than an open interface.
// The mapper set a cartridge can report is fixed (NROM, MMC1, UxROM,
// CNROM, MMC3, AxROM); there is no scenario where a caller supplies a
// mapper this package doesn't already know about, so a vtable buys
// nothing but an extra indirection on every PRG/CHR access.
package cartridge

import "fmt"

// Mirroring is the nametable mirroring mode a mapper currently reports
// to the PPU side of the bus.
type Mirroring uint8

const (
	MirrorHorizontal Mirroring = iota
	MirrorVertical
	MirrorSingleLow  // single-screen, lower nametable
	MirrorSingleHigh // single-screen, upper nametable
	MirrorFourScreen
)

// Kind tags which mapper chip a Cartridge holds.
type Kind uint8

const (
	KindNROM Kind = iota
	KindMMC1
	KindUxROM
	KindCNROM
	KindMMC3
	KindAxROM
)

func (k Kind) String() string {
	switch k {
	case KindNROM:
		return "NROM"
	case KindMMC1:
		return "MMC1"
	case KindUxROM:
		return "UxROM"
	case KindCNROM:
		return "CNROM"
	case KindMMC3:
		return "MMC3"
	case KindAxROM:
		return "AxROM"
	default:
		return "unknown"
	}
}

// Options configure cartridge-construction-time behavior that isn't
// carried in the iNES header itself.
type Options struct {
	// StrictBusConflicts makes CNROM/UxROM/AxROM (the mappers wired
	// directly off the data bus with no latch) AND the value being
	// written against the ROM byte already selected at that address,
	// exactly like the handful of boards that are wired without a
	// buffer. Off by default: most emulators and most ROMs assume the
	// write wins outright.
	StrictBusConflicts bool
}

// Cartridge is a loaded ROM image plus whichever one mapper chip's
// state it needs. Exactly one of the kind-named fields is non-nil,
// matching Kind.
type Cartridge struct {
	kind Kind
	opts Options

	nrom  *nromState
	mmc1  *mmc1State
	uxrom *uxromState
	cnrom *cnromState
	mmc3  *mmc3State
	axrom *axromState
}

// Kind reports which mapper chip this cartridge uses.
func (c *Cartridge) Kind() Kind { return c.kind }

// Reset restores the mapper's registers to their power-on state,
// mirroring what a console RESET line does to the cartridge side of
// the bus. ROM contents, PRG-RAM/CHR-RAM contents, and the iNES-derived
// mirroring default are untouched — only mapper registers reset.
func (c *Cartridge) Reset() {
	switch c.kind {
	case KindNROM:
		c.nrom.reset()
	case KindMMC1:
		c.mmc1.reset()
	case KindUxROM:
		c.uxrom.reset()
	case KindCNROM:
		c.cnrom.reset()
	case KindMMC3:
		c.mmc3.reset()
	case KindAxROM:
		c.axrom.reset()
	}
}

// New builds a Cartridge around already-extracted PRG/CHR images (see
// pkg/ines for parsing an iNES file into these arguments). For every
// mapper except CNROM, chrROM may be nil/empty, in which case the mapper
// allocates CHR-RAM instead; CNROM does not allocate CHR-RAM and needs
// a non-empty chrROM.
func New(mapperID uint8, prgROM, chrROM []uint8, mirroring Mirroring, opts Options) (*Cartridge, error) {
	c := &Cartridge{opts: opts}
	switch mapperID {
	case 0:
		c.kind = KindNROM
		c.nrom = newNROM(prgROM, chrROM, mirroring)
	case 1:
		c.kind = KindMMC1
		c.mmc1 = newMMC1(prgROM, chrROM)
	case 2:
		c.kind = KindUxROM
		c.uxrom = newUxROM(prgROM, chrROM, mirroring)
	case 3:
		c.kind = KindCNROM
		c.cnrom = newCNROM(prgROM, chrROM, mirroring)
	case 4:
		c.kind = KindMMC3
		c.mmc3 = newMMC3(prgROM, chrROM, mirroring)
	case 7:
		c.kind = KindAxROM
		c.axrom = newAxROM(prgROM, chrROM)
	default:
		return nil, fmt.Errorf("cartridge: unsupported mapper %d", mapperID)
	}
	return c, nil
}

// ReadPRG reads CPU-visible cartridge space ($4020-$FFFF — callers are
// expected to only forward addresses in that range). Addresses with
// nothing behind them ($4020-$5FFF, and $6000-$7FFF on mappers without
// PRG-RAM) read as 0xFF.
func (c *Cartridge) ReadPRG(addr uint16) uint8 {
	if addr < 0x6000 || (addr < 0x8000 && c.kind != KindMMC1 && c.kind != KindMMC3) {
		return 0xFF
	}
	switch c.kind {
	case KindNROM:
		return c.nrom.readPRG(addr)
	case KindMMC1:
		return c.mmc1.readPRG(addr)
	case KindUxROM:
		return c.uxrom.readPRG(addr)
	case KindCNROM:
		return c.cnrom.readPRG(addr)
	case KindMMC3:
		return c.mmc3.readPRG(addr)
	case KindAxROM:
		return c.axrom.readPRG(addr)
	default:
		return 0
	}
}

// WritePRG handles a CPU write into cartridge space. For ROM-only
// regions this is how mapper registers are programmed.
func (c *Cartridge) WritePRG(addr uint16, value uint8) {
	switch c.kind {
	case KindNROM:
		c.nrom.writePRG(addr, value)
	case KindMMC1:
		c.mmc1.writePRG(addr, value)
	case KindUxROM:
		c.uxrom.writePRG(addr, value, c.opts.StrictBusConflicts)
	case KindCNROM:
		c.cnrom.writePRG(addr, value, c.opts.StrictBusConflicts)
	case KindMMC3:
		c.mmc3.writePRG(addr, value)
	case KindAxROM:
		c.axrom.writePRG(addr, value, c.opts.StrictBusConflicts)
	}
}

// ReadCHR reads PPU-visible pattern table space ($0000-$1FFF).
func (c *Cartridge) ReadCHR(addr uint16) uint8 {
	switch c.kind {
	case KindNROM:
		return c.nrom.readCHR(addr)
	case KindMMC1:
		return c.mmc1.readCHR(addr)
	case KindUxROM:
		return c.uxrom.readCHR(addr)
	case KindCNROM:
		return c.cnrom.readCHR(addr)
	case KindMMC3:
		return c.mmc3.readCHR(addr)
	case KindAxROM:
		return c.axrom.readCHR(addr)
	default:
		return 0
	}
}

// WriteCHR writes PPU-visible pattern table space. A no-op wherever
// the cartridge uses CHR-ROM.
func (c *Cartridge) WriteCHR(addr uint16, value uint8) {
	switch c.kind {
	case KindNROM:
		c.nrom.writeCHR(addr, value)
	case KindMMC1:
		c.mmc1.writeCHR(addr, value)
	case KindUxROM:
		c.uxrom.writeCHR(addr, value)
	case KindCNROM:
		c.cnrom.writeCHR(addr, value)
	case KindMMC3:
		c.mmc3.writeCHR(addr, value)
	case KindAxROM:
		c.axrom.writeCHR(addr, value)
	}
}

// Mirroring reports the mapper's current nametable mirroring mode.
func (c *Cartridge) Mirroring() Mirroring {
	switch c.kind {
	case KindNROM:
		return c.nrom.mirroring
	case KindMMC1:
		return c.mmc1.mirroring()
	case KindUxROM:
		return c.uxrom.mirroring
	case KindCNROM:
		return c.cnrom.mirroring
	case KindMMC3:
		return c.mmc3.mirroring
	case KindAxROM:
		return c.axrom.mirroring()
	default:
		return MirrorHorizontal
	}
}

// ClockA12Rise notifies the cartridge of a PPU address-line A12 rising
// edge (one such edge per visible scanline under normal rendering).
// Only MMC3 cares; every other mapper ignores it.
func (c *Cartridge) ClockA12Rise() {
	if c.kind == KindMMC3 {
		c.mmc3.clockA12Rise()
	}
}

// IRQPending reports whether the cartridge wants to assert the
// CPU's IRQ line. Only MMC3 can; every other mapper always reports
// false.
func (c *Cartridge) IRQPending() bool {
	return c.kind == KindMMC3 && c.mmc3.irqPending
}

// AckIRQ clears a pending IRQ (mirrors MMC3's $E000 IRQ-disable/ack
// behavior; writing to that register from the host bus already does
// this — exposed separately for hosts that model IRQ acknowledgement
// as a distinct bus event).
func (c *Cartridge) AckIRQ() {
	if c.kind == KindMMC3 {
		c.mmc3.irqPending = false
	}
}
