// Package ines parses the iNES cartridge dump format into the raw
// PRG/CHR buffers and mapper metadata pkg/cartridge needs to build a
// Cartridge. Only header bytes 0-7 are read; NES 2.0 extension fields
// are ignored. It knows nothing about mapper banking semantics itself.
package ines

import (
	"bytes"
	"fmt"

	"github.com/nescore/nes-core/pkg/cartridge"
)

const (
	headerSize  = 16
	trainerSize = 512
	prgBankSize = 16 * 1024
	chrBankSize = 8 * 1024
)

var magic = [4]byte{'N', 'E', 'S', 0x1A}

// ROM is the parsed contents of an iNES file, ready to hand to
// cartridge.New.
type ROM struct {
	MapperID  uint8
	Mirroring cartridge.Mirroring
	HasBattery bool
	PRG       []uint8
	CHR       []uint8 // empty means the cartridge provides CHR-RAM instead
}

// Parse decodes a complete iNES file image.
func Parse(data []uint8) (*ROM, error) {
	if len(data) < headerSize {
		return nil, fmt.Errorf("ines: file too small (%d bytes)", len(data))
	}
	if !bytes.Equal(data[0:4], magic[:]) {
		return nil, fmt.Errorf("ines: bad magic %q", data[0:4])
	}

	prgBanks := int(data[4])
	chrBanks := int(data[5])
	flags6 := data[6]
	flags7 := data[7]

	hasTrainer := flags6&0x04 != 0
	fourScreen := flags6&0x08 != 0
	hasBattery := flags6&0x02 != 0

	mapperID := (flags7 & 0xF0) | (flags6 >> 4)

	var mirroring cartridge.Mirroring
	switch {
	case fourScreen:
		mirroring = cartridge.MirrorFourScreen
	case flags6&0x01 != 0:
		mirroring = cartridge.MirrorVertical
	default:
		mirroring = cartridge.MirrorHorizontal
	}

	offset := headerSize
	if hasTrainer {
		offset += trainerSize
	}

	prgSize := prgBanks * prgBankSize
	if offset+prgSize > len(data) {
		return nil, fmt.Errorf("ines: PRG-ROM truncated: need %d bytes, have %d", prgSize, len(data)-offset)
	}
	prg := append([]uint8(nil), data[offset:offset+prgSize]...)
	offset += prgSize

	chrSize := chrBanks * chrBankSize
	var chr []uint8
	if chrSize > 0 {
		if offset+chrSize > len(data) {
			return nil, fmt.Errorf("ines: CHR-ROM truncated: need %d bytes, have %d", chrSize, len(data)-offset)
		}
		chr = append([]uint8(nil), data[offset:offset+chrSize]...)
	}

	return &ROM{
		MapperID:   mapperID,
		Mirroring:  mirroring,
		HasBattery: hasBattery,
		PRG:        prg,
		CHR:        chr,
	}, nil
}

// Cartridge parses data and builds a cartridge.Cartridge in one step.
func Cartridge(data []uint8, opts cartridge.Options) (*cartridge.Cartridge, error) {
	rom, err := Parse(data)
	if err != nil {
		return nil, err
	}
	return cartridge.New(rom.MapperID, rom.PRG, rom.CHR, rom.Mirroring, opts)
}
