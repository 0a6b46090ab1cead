// Command nescore inspects iNES cartridge dumps and exercises the CPU
// core against them, without any PPU/audio/input surface — header
// info, disassembly, and a raw instruction-throughput benchmark.
package main

import (
	"fmt"
	"os"
	"runtime/pprof"

	"github.com/spf13/cobra"

	"github.com/nescore/nes-core/pkg/cartridge"
	"github.com/nescore/nes-core/pkg/cpu"
	"github.com/nescore/nes-core/pkg/disasm"
	"github.com/nescore/nes-core/pkg/ines"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "nescore",
		Short: "2A03 CPU core and cartridge mapper inspector",
	}

	var strictBusConflicts bool
	rootCmd.PersistentFlags().BoolVar(&strictBusConflicts, "strict-bus-conflicts", false,
		"AND mapper register writes against the already-selected ROM byte (CNROM/UxROM/AxROM)")

	rootCmd.AddCommand(
		newInfoCmd(&strictBusConflicts),
		newDisasmCmd(&strictBusConflicts),
		newBenchCmd(&strictBusConflicts),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadCartridge(romPath string, strict bool) (*cartridge.Cartridge, *ines.ROM, error) {
	data, err := os.ReadFile(romPath)
	if err != nil {
		return nil, nil, fmt.Errorf("reading %s: %w", romPath, err)
	}
	rom, err := ines.Parse(data)
	if err != nil {
		return nil, nil, err
	}
	cart, err := cartridge.New(rom.MapperID, rom.PRG, rom.CHR, rom.Mirroring, cartridge.Options{StrictBusConflicts: strict})
	if err != nil {
		return nil, nil, err
	}
	return cart, rom, nil
}

func newInfoCmd(strict *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "info <rom-file>",
		Short: "Print iNES header fields and confirm the mapper loads",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cart, rom, err := loadCartridge(args[0], *strict)
			if err != nil {
				return err
			}
			fmt.Printf("Mapper:     %d (%s)\n", rom.MapperID, cart.Kind())
			fmt.Printf("PRG-ROM:    %d KiB\n", len(rom.PRG)/1024)
			if len(rom.CHR) == 0 {
				fmt.Println("CHR:        RAM (8 KiB)")
			} else {
				fmt.Printf("CHR-ROM:    %d KiB\n", len(rom.CHR)/1024)
			}
			fmt.Printf("Mirroring:  %v\n", mirroringName(rom.Mirroring))
			fmt.Printf("Battery:    %v\n", rom.HasBattery)
			return nil
		},
	}
}

func mirroringName(m cartridge.Mirroring) string {
	switch m {
	case cartridge.MirrorHorizontal:
		return "horizontal"
	case cartridge.MirrorVertical:
		return "vertical"
	case cartridge.MirrorFourScreen:
		return "four-screen"
	default:
		return "single-screen"
	}
}

// prgReader adapts a Cartridge's CPU-space PRG window to disasm.Reader.
type prgReader struct{ cart *cartridge.Cartridge }

func (p prgReader) Read(addr uint16) uint8 { return p.cart.ReadPRG(addr) }

func newDisasmCmd(strict *bool) *cobra.Command {
	var start, end uint16
	cmd := &cobra.Command{
		Use:   "disasm <rom-file>",
		Short: "Disassemble a range of CPU address space",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cart, _, err := loadCartridge(args[0], *strict)
			if err != nil {
				return err
			}
			for _, instr := range disasm.Range(prgReader{cart}, start, end) {
				fmt.Printf("$%04X  %-8s  %s\n", instr.Address, disasm.FormatBytes(instr.Bytes, 3), instr.Text)
			}
			return nil
		},
	}
	cmd.Flags().Uint16Var(&start, "start", 0x8000, "Start address")
	cmd.Flags().Uint16Var(&end, "end", 0x8100, "End address (exclusive)")
	return cmd
}

func newBenchCmd(strict *bool) *cobra.Command {
	var cycles int
	var profile string
	cmd := &cobra.Command{
		Use:   "bench <rom-file>",
		Short: "Run the CPU core for a fixed cycle count and report the cycles executed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cart, _, err := loadCartridge(args[0], *strict)
			if err != nil {
				return err
			}

			b := &cartridgeBus{cart: cart, ram: make([]uint8, 0x0800)}
			core := cpu.New(b, cpu.VariantRP2A03G)
			core.Reset()
			// Run the reset sequence to completion before timing starts.
			for !core.InstructionComplete() {
				core.Step()
			}

			if profile != "" {
				f, err := os.Create(profile)
				if err != nil {
					return err
				}
				defer f.Close()
				if err := pprof.StartCPUProfile(f); err != nil {
					return err
				}
				defer pprof.StopCPUProfile()
			}

			for i := 0; i < cycles; i++ {
				core.Step()
				if core.Halted() {
					fmt.Printf("halted (JAM) after %d cycles at $%04X\n", i+1, core.PCValue())
					break
				}
			}

			fmt.Printf("executed %d cycles\n", core.TotalCycles())
			return nil
		},
	}
	cmd.Flags().IntVar(&cycles, "cycles", 1_000_000, "Number of CPU cycles to run")
	cmd.Flags().StringVar(&profile, "cpuprofile", "", "Write a pprof CPU profile to this file")
	return cmd
}

// cartridgeBus is a minimal bus.Bus wiring the cartridge's $8000-$FFFF
// PRG window plus 2KiB of mirrored system RAM — everything nescore's CPU-only commands
// need, with no PPU/APU/controller registers behind it.
type cartridgeBus struct {
	cart  *cartridge.Cartridge
	ram   []uint8
	latch uint8
}

func (b *cartridgeBus) Read(addr uint16) uint8 {
	b.latch = b.readNoLatch(addr)
	return b.latch
}

func (b *cartridgeBus) readNoLatch(addr uint16) uint8 {
	switch {
	case addr < 0x2000:
		return b.ram[addr%0x0800]
	case addr >= 0x8000:
		return b.cart.ReadPRG(addr)
	default:
		return b.latch
	}
}

func (b *cartridgeBus) Write(addr uint16, value uint8) {
	b.latch = value
	switch {
	case addr < 0x2000:
		b.ram[addr%0x0800] = value
	case addr >= 0x8000:
		b.cart.WritePRG(addr, value)
	}
}

func (b *cartridgeBus) DummyRead(addr uint16) {
	b.latch = b.readNoLatch(addr)
}

func (b *cartridgeBus) OpenBusLatch() uint8 { return b.latch }
