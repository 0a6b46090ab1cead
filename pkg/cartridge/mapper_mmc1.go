package cartridge

// mmc1State implements mapper 1 (MMC1/SxROM). The CPU can only shift
// one bit into the mapper's internal register per write (real silicon
// ignores consecutive-cycle writes, which this model doesn't bother
// replicating); after five writes the accumulated 5-bit value commits
// to whichever of the four target registers the address selected on
// the fifth write.
type mmc1State struct {
	prg []uint8
	chr []uint8

	chrIsRAM bool
	prgRAM   [8 * 1024]uint8

	shift      uint8
	shiftCount int

	control uint8 // bit0-1 mirroring, bit2-3 prgMode, bit4 chrMode
	chrBank0 uint8
	chrBank1 uint8
	prgBank  uint8
}

func newMMC1(prgROM, chrROM []uint8) *mmc1State {
	s := &mmc1State{prg: prgROM, control: 0x0C}
	if len(chrROM) == 0 {
		s.chr = make([]uint8, 8*1024)
		s.chrIsRAM = true
	} else {
		s.chr = chrROM
	}
	return s
}

func (m *mmc1State) mirroring() Mirroring {
	switch m.control & 0x03 {
	case 0:
		return MirrorSingleLow
	case 1:
		return MirrorSingleHigh
	case 2:
		return MirrorVertical
	default:
		return MirrorHorizontal
	}
}

func (m *mmc1State) prgMode() uint8 { return (m.control >> 2) & 0x03 }
func (m *mmc1State) chrMode() uint8 { return (m.control >> 4) & 0x01 }

// prgRAMEnabled reports whether $6000-$7FFF is live: bit 4 of the PRG
// bank register disables PRG-RAM when set.
func (m *mmc1State) prgRAMEnabled() bool { return m.prgBank&0x10 == 0 }

func (m *mmc1State) readPRG(addr uint16) uint8 {
	if addr < 0x8000 {
		if !m.prgRAMEnabled() {
			return 0
		}
		return m.prgRAM[addr-0x6000]
	}

	bankSize := 16 * 1024
	numBanks := len(m.prg) / bankSize

	switch m.prgMode() {
	case 0, 1: // 32KB switch, ignoring low bit of bank number
		bank := int(m.prgBank&0x1E) >> 1
		base := bank * 32 * 1024
		return m.prg[(base+int(addr-0x8000))%len(m.prg)]
	case 2: // fixed first bank at $8000, switch $C000
		if addr < 0xC000 {
			return m.prg[int(addr-0x8000)]
		}
		bank := int(m.prgBank&0x0F) % numBanks
		return m.prg[bank*bankSize+int(addr-0xC000)]
	default: // 3: switch $8000, fixed last bank at $C000
		if addr < 0xC000 {
			bank := int(m.prgBank&0x0F) % numBanks
			return m.prg[bank*bankSize+int(addr-0x8000)]
		}
		return m.prg[(numBanks-1)*bankSize+int(addr-0xC000)]
	}
}

func (m *mmc1State) writePRG(addr uint16, value uint8) {
	if addr < 0x8000 {
		if m.prgRAMEnabled() {
			m.prgRAM[addr-0x6000] = value
		}
		return
	}

	if value&0x80 != 0 {
		m.shift = 0
		m.shiftCount = 0
		m.control |= 0x0C
		return
	}

	m.shift |= (value & 0x01) << uint(m.shiftCount)
	m.shiftCount++

	if m.shiftCount < 5 {
		return
	}

	committed := m.shift
	m.shift = 0
	m.shiftCount = 0

	switch {
	case addr < 0xA000:
		m.control = committed
	case addr < 0xC000:
		m.chrBank0 = committed
	case addr < 0xE000:
		m.chrBank1 = committed
	default:
		m.prgBank = committed
	}
}

func (m *mmc1State) readCHR(addr uint16) uint8 {
	if m.chrMode() == 0 {
		bank := int(m.chrBank0&0x1E) >> 1
		base := bank * 8 * 1024
		return m.chr[(base+int(addr))%len(m.chr)]
	}

	bankSize := 4 * 1024
	if addr < 0x1000 {
		bank := int(m.chrBank0) % (len(m.chr) / bankSize)
		return m.chr[bank*bankSize+int(addr)]
	}
	bank := int(m.chrBank1) % (len(m.chr) / bankSize)
	return m.chr[bank*bankSize+int(addr-0x1000)]
}

func (m *mmc1State) writeCHR(addr uint16, value uint8) {
	if m.chrIsRAM {
		m.chr[int(addr)%len(m.chr)] = value
	}
}

// reset restores the power-on register state (prgMode forced to 3,
// same as a mid-sequence $80 write) and discards any in-flight shift.
// PRG-RAM contents survive a console reset.
func (m *mmc1State) reset() {
	m.shift = 0
	m.shiftCount = 0
	m.control = 0x0C
	m.chrBank0 = 0
	m.chrBank1 = 0
	m.prgBank = 0
}
