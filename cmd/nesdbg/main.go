// Command nesdbg is an interactive single-stepping inspector for the
// CPU core running against a loaded cartridge — registers, flags, a
// disassembly window around PC, and a raw state dump on demand.
package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/davecgh/go-spew/spew"

	"github.com/nescore/nes-core/pkg/cartridge"
	"github.com/nescore/nes-core/pkg/cpu"
	"github.com/nescore/nes-core/pkg/disasm"
	"github.com/nescore/nes-core/pkg/ines"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("usage: nesdbg <rom-file>")
		os.Exit(1)
	}

	data, err := os.ReadFile(os.Args[1])
	if err != nil {
		fmt.Println("error:", err)
		os.Exit(1)
	}
	rom, err := ines.Parse(data)
	if err != nil {
		fmt.Println("error:", err)
		os.Exit(1)
	}
	cart, err := cartridge.New(rom.MapperID, rom.PRG, rom.CHR, rom.Mirroring, cartridge.Options{})
	if err != nil {
		fmt.Println("error:", err)
		os.Exit(1)
	}

	b := &dbgBus{cart: cart, ram: make([]uint8, 0x0800)}
	core := cpu.New(b, cpu.VariantRP2A03G)
	core.Reset()

	m, err := tea.NewProgram(model{cpu: core, bus: b}).Run()
	if err != nil {
		fmt.Println("error:", err)
		os.Exit(1)
	}
	_ = m
}

type model struct {
	cpu      *cpu.CPU
	bus      *dbgBus
	cycles   uint64
	showDump bool
}

func (m model) Init() tea.Cmd { return nil }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ", "s":
			m.cpu.Step()
			m.cycles++
		case "n":
			for {
				m.cpu.Step()
				m.cycles++
				if m.cpu.InstructionComplete() || m.cpu.Halted() {
					break
				}
			}
		case "d":
			m.showDump = !m.showDump
		}
	}
	return m, nil
}

func (m model) registers() string {
	f := m.cpu.Flags()
	flagChar := func(set bool, c byte) byte {
		if set {
			return c
		}
		return '-'
	}
	flags := string([]byte{
		flagChar(f.Negative, 'N'),
		flagChar(f.Overflow, 'V'),
		'-',
		flagChar(f.Break, 'B'),
		flagChar(f.Decimal, 'D'),
		flagChar(f.InterruptDisable, 'I'),
		flagChar(f.Zero, 'Z'),
		flagChar(f.Carry, 'C'),
	})
	return fmt.Sprintf(
		"PC: $%04X\nA: $%02X  X: $%02X  Y: $%02X\nSP: $%02X\nFlags: %s\ncycles: %d\nhalted: %v",
		m.cpu.PCValue(), m.cpu.AValue(), m.cpu.XValue(), m.cpu.YValue(), m.cpu.SPValue(), flags, m.cycles, m.cpu.Halted(),
	)
}

func (m model) disassembly() string {
	pc := m.cpu.PCValue()
	var lines []string
	addr := pc
	for i := 0; i < 10 && int(addr) < 0x10000; i++ {
		instr, next := disasm.Decode(prgReader{m.bus}, addr)
		marker := "  "
		if addr == pc {
			marker = "> "
		}
		lines = append(lines, fmt.Sprintf("%s$%04X  %-8s  %s", marker, instr.Address, disasm.FormatBytes(instr.Bytes, 3), instr.Text))
		if next <= addr {
			break
		}
		addr = next
	}
	out := ""
	for _, l := range lines {
		out += l + "\n"
	}
	return out
}

func (m model) View() string {
	view := lipgloss.JoinHorizontal(
		lipgloss.Top,
		m.disassembly(),
		"   ",
		m.registers(),
	)
	view += "\n\n[space/s] step cycle  [n] step instruction  [d] dump  [q] quit\n"
	if m.showDump {
		view += spew.Sdump(m.cpu.Flags())
	}
	return view
}

// prgReader lets the disassembler read through the debugger's bus
// rather than the cartridge directly, so it sees RAM-resident test
// code too.
type prgReader struct{ bus *dbgBus }

func (p prgReader) Read(addr uint16) uint8 { return p.bus.Read(addr) }

// dbgBus is the same minimal RAM+cartridge wiring as nescore's bench
// command; kept as its own small type here rather than shared, since
// nesdbg additionally exposes it to the TUI's disassembly view.
type dbgBus struct {
	cart  *cartridge.Cartridge
	ram   []uint8
	latch uint8
}

func (b *dbgBus) Read(addr uint16) uint8 {
	b.latch = b.readNoLatch(addr)
	return b.latch
}

func (b *dbgBus) readNoLatch(addr uint16) uint8 {
	switch {
	case addr < 0x2000:
		return b.ram[addr%0x0800]
	case addr >= 0x8000:
		return b.cart.ReadPRG(addr)
	default:
		return b.latch
	}
}

func (b *dbgBus) Write(addr uint16, value uint8) {
	b.latch = value
	switch {
	case addr < 0x2000:
		b.ram[addr%0x0800] = value
	case addr >= 0x8000:
		b.cart.WritePRG(addr, value)
	}
}

func (b *dbgBus) DummyRead(addr uint16) { b.latch = b.readNoLatch(addr) }
func (b *dbgBus) OpenBusLatch() uint8   { return b.latch }
