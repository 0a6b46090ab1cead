// Package disasm renders one 6502/2A03 instruction at a time from a
// byte stream, driven by pkg/cpu's opcode table metadata rather than
// its own copy of the instruction set.
package disasm

import (
	"fmt"
	"strings"

	"github.com/nescore/nes-core/pkg/cpu"
)

// Reader is the minimal memory view the disassembler needs — anything
// that can answer a byte at an address (a RAM bus, a cartridge's PRG
// window addressed starting at $8000, or a plain byte slice wrapper).
type Reader interface {
	Read(addr uint16) uint8
}

// Instruction is one decoded instruction: its address, raw bytes, and
// formatted text.
type Instruction struct {
	Address uint16
	Bytes   []uint8
	Text    string
	Illegal bool
}

// Decode disassembles the instruction at addr and returns it along
// with the address of the next instruction.
func Decode(r Reader, addr uint16) (Instruction, uint16) {
	opcode := r.Read(addr)
	info := cpu.Lookup(opcode)
	n := info.Mode.OperandBytes()

	raw := make([]uint8, 0, n+1)
	raw = append(raw, opcode)
	for i := 0; i < n; i++ {
		raw = append(raw, r.Read(addr+1+uint16(i)))
	}

	text := format(info, raw)
	if info.Illegal {
		text = "*" + text
	}

	return Instruction{
		Address: addr,
		Bytes:   raw,
		Text:    text,
		Illegal: info.Illegal,
	}, addr + 1 + uint16(n)
}

func format(info cpu.OpcodeInfo, raw []uint8) string {
	mnemonic := info.Mnemonic
	switch info.Mode {
	case cpu.AddrImplied, cpu.AddrStack, cpu.AddrRTS, cpu.AddrRTI, cpu.AddrBRK:
		return mnemonic
	case cpu.AddrAccumulator:
		return mnemonic + " A"
	case cpu.AddrImmediate:
		return fmt.Sprintf("%s #$%02X", mnemonic, raw[1])
	case cpu.AddrZeroPage:
		return fmt.Sprintf("%s $%02X", mnemonic, raw[1])
	case cpu.AddrZeroPageX:
		return fmt.Sprintf("%s $%02X,X", mnemonic, raw[1])
	case cpu.AddrZeroPageY:
		return fmt.Sprintf("%s $%02X,Y", mnemonic, raw[1])
	case cpu.AddrAbsolute, cpu.AddrJSR:
		return fmt.Sprintf("%s $%02X%02X", mnemonic, raw[2], raw[1])
	case cpu.AddrAbsoluteX:
		return fmt.Sprintf("%s $%02X%02X,X", mnemonic, raw[2], raw[1])
	case cpu.AddrAbsoluteY:
		return fmt.Sprintf("%s $%02X%02X,Y", mnemonic, raw[2], raw[1])
	case cpu.AddrIndirect:
		return fmt.Sprintf("%s ($%02X%02X)", mnemonic, raw[2], raw[1])
	case cpu.AddrIndirectX:
		return fmt.Sprintf("%s ($%02X,X)", mnemonic, raw[1])
	case cpu.AddrIndirectY:
		return fmt.Sprintf("%s ($%02X),Y", mnemonic, raw[1])
	case cpu.AddrRelative:
		// Displayed as the raw signed offset; computing the taken-branch
		// target needs the instruction's own address, which Decode's
		// caller has and this function doesn't.
		return fmt.Sprintf("%s *%+d", mnemonic, int8(raw[1]))
	default:
		return mnemonic
	}
}

// Range disassembles consecutive instructions from start until end is
// reached or passed.
func Range(r Reader, start, end uint16) []Instruction {
	var out []Instruction
	addr := start
	for addr < end {
		instr, next := Decode(r, addr)
		out = append(out, instr)
		if next <= addr { // end-of-address-space wraparound guard
			break
		}
		addr = next
	}
	return out
}

// FormatBytes renders an instruction's raw bytes as space-separated
// hex, padded to width bytes for column alignment (width is typically
// the longest instruction length disassembled in the same listing, 3).
func FormatBytes(raw []uint8, width int) string {
	parts := make([]string, 0, width)
	for _, b := range raw {
		parts = append(parts, fmt.Sprintf("%02X", b))
	}
	for len(parts) < width {
		parts = append(parts, "  ")
	}
	return strings.Join(parts, " ")
}
