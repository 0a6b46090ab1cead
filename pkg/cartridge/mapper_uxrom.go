package cartridge

// uxromState implements mapper 2 (UxROM): a single switchable 16KiB
// PRG bank at $8000, with the LAST bank fixed at $C000. CHR is always
// RAM on real UxROM boards.
type uxromState struct {
	prg       []uint8
	chr       []uint8
	mirroring Mirroring

	bank uint8
}

func newUxROM(prgROM, chrROM []uint8, mirroring Mirroring) *uxromState {
	s := &uxromState{prg: prgROM, mirroring: mirroring}
	s.chr = make([]uint8, 8*1024)
	if len(chrROM) > 0 {
		copy(s.chr, chrROM)
	}
	return s
}

func (m *uxromState) readPRG(addr uint16) uint8 {
	const bankSize = 16 * 1024
	numBanks := len(m.prg) / bankSize
	if addr < 0xC000 {
		bank := int(m.bank) % numBanks
		return m.prg[bank*bankSize+int(addr-0x8000)]
	}
	return m.prg[(numBanks-1)*bankSize+int(addr-0xC000)]
}

func (m *uxromState) writePRG(addr uint16, value uint8, strictBusConflict bool) {
	if strictBusConflict {
		value &= m.readPRG(addr)
	}
	m.bank = value
}

func (m *uxromState) readCHR(addr uint16) uint8 {
	return m.chr[int(addr)%len(m.chr)]
}

func (m *uxromState) writeCHR(addr uint16, value uint8) {
	m.chr[int(addr)%len(m.chr)] = value
}

// reset restores the power-on bank selection (bank 0 at $8000); CHR-RAM
// contents and mirroring are untouched by a console reset.
func (m *uxromState) reset() {
	m.bank = 0
}
