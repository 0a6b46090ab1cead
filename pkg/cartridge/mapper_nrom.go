package cartridge

// nromState implements mapper 0 (NROM): no bank switching at all. PRG
// is either 16KiB (mirrored into both halves of $8000-$FFFF) or 32KiB
// (filling it exactly). CHR is typically ROM but some NROM boards ship
// with CHR-RAM.
type nromState struct {
	prg       []uint8
	chr       []uint8
	chrIsRAM  bool
	mirroring Mirroring
}

func newNROM(prgROM, chrROM []uint8, mirroring Mirroring) *nromState {
	s := &nromState{prg: prgROM, mirroring: mirroring}
	if len(chrROM) == 0 {
		s.chr = make([]uint8, 8*1024)
		s.chrIsRAM = true
	} else {
		s.chr = chrROM
	}
	return s
}

func (m *nromState) readPRG(addr uint16) uint8 {
	offset := int(addr-0x8000) % len(m.prg)
	return m.prg[offset]
}

func (m *nromState) writePRG(addr uint16, value uint8) {
	// PRG-ROM only; writes are ignored (no mapper registers on NROM).
}

// reset has nothing to do: NROM has no mapper registers, only a fixed
// ROM mapping and (optionally) CHR-RAM whose contents a console reset
// does not clear.
func (m *nromState) reset() {}

func (m *nromState) readCHR(addr uint16) uint8 {
	return m.chr[int(addr)%len(m.chr)]
}

func (m *nromState) writeCHR(addr uint16, value uint8) {
	if m.chrIsRAM {
		m.chr[int(addr)%len(m.chr)] = value
	}
}
