package cartridge

// cnromState implements mapper 3 (CNROM): fixed PRG (16KiB mirrored or
// 32KiB, same as NROM), with a single switchable 8KiB CHR-ROM bank.
// CNROM is one of the boards with no write-latch between the data bus
// and the CHR bank select, so the bus-conflict option matters here.
type cnromState struct {
	prg       []uint8
	chr       []uint8
	mirroring Mirroring

	bank uint8
}

func newCNROM(prgROM, chrROM []uint8, mirroring Mirroring) *cnromState {
	return &cnromState{prg: prgROM, chr: chrROM, mirroring: mirroring}
}

func (m *cnromState) readPRG(addr uint16) uint8 {
	offset := int(addr-0x8000) % len(m.prg)
	return m.prg[offset]
}

func (m *cnromState) writePRG(addr uint16, value uint8, strictBusConflict bool) {
	if strictBusConflict {
		value &= m.readPRG(addr)
	}
	m.bank = value
}

func (m *cnromState) readCHR(addr uint16) uint8 {
	const bankSize = 8 * 1024
	bank := int(m.bank) % (len(m.chr) / bankSize)
	return m.chr[bank*bankSize+int(addr)]
}

func (m *cnromState) writeCHR(addr uint16, value uint8) {
	// CHR-ROM only; writes are ignored.
}

// reset restores the power-on CHR bank selection (bank 0).
func (m *cnromState) reset() {
	m.bank = 0
}
