// debug_cpu_sh4.go - DebuggableCPU adapter wrapping the SH4 interpreter.
//
// Grounded on debug_cpu_m68k.go: a thin struct holding a pointer to the
// real CPU plus whatever bus it needs for ReadMemory/WriteMemory, with
// GetRegisters building the display list by hand register-by-register.

package hollycore

// SH4Debugger adapts a CPU/Bus pair to the DebuggableCPU interface a
// monitor front-end drives.
type SH4Debugger struct {
	cpu *CPU
	bus *Bus
}

// NewSH4Debugger wraps a machine's CPU and bus for debug inspection.
func NewSH4Debugger(m *Machine) *SH4Debugger {
	return &SH4Debugger{cpu: m.cpu, bus: m.bus}
}

func (d *SH4Debugger) GetRegisters() []RegisterInfo {
	regs := make([]RegisterInfo, 0, 16+16+8)
	for i := 0; i < 16; i++ {
		regs = append(regs, RegisterInfo{Name: rName(i), BitWidth: 32, Value: uint64(d.cpu.R(i)), Group: "general"})
	}
	for i := 0; i < 16; i++ {
		regs = append(regs, RegisterInfo{Name: frName(i), BitWidth: 32, Value: uint64(d.cpu.FR(i)), Group: "fpu"})
	}
	regs = append(regs,
		RegisterInfo{Name: "PC", BitWidth: 32, Value: uint64(d.cpu.pc), Group: "control"},
		RegisterInfo{Name: "PR", BitWidth: 32, Value: uint64(d.cpu.pr), Group: "control"},
		RegisterInfo{Name: "SR", BitWidth: 32, Value: uint64(d.cpu.sr), Group: "control"},
		RegisterInfo{Name: "GBR", BitWidth: 32, Value: uint64(d.cpu.gbr), Group: "control"},
		RegisterInfo{Name: "VBR", BitWidth: 32, Value: uint64(d.cpu.vbr), Group: "control"},
		RegisterInfo{Name: "SSR", BitWidth: 32, Value: uint64(d.cpu.ssr), Group: "banked"},
		RegisterInfo{Name: "SPC", BitWidth: 32, Value: uint64(d.cpu.spc), Group: "banked"},
		RegisterInfo{Name: "SGR", BitWidth: 32, Value: uint64(d.cpu.sgr), Group: "banked"},
		RegisterInfo{Name: "DBR", BitWidth: 32, Value: uint64(d.cpu.dbr), Group: "banked"},
		RegisterInfo{Name: "MACH", BitWidth: 32, Value: uint64(d.cpu.mach), Group: "general"},
		RegisterInfo{Name: "MACL", BitWidth: 32, Value: uint64(d.cpu.macl), Group: "general"},
		RegisterInfo{Name: "FPSCR", BitWidth: 32, Value: uint64(d.cpu.fpscr), Group: "fpu"},
		RegisterInfo{Name: "FPUL", BitWidth: 32, Value: uint64(d.cpu.fpul), Group: "fpu"},
	)
	return regs
}

func rName(i int) string  { return "R" + itoa(i) }
func frName(i int) string { return "FR" + itoa(i) }

func itoa(i int) string {
	if i == 0 {
		return "0"
	}
	var buf [4]byte
	n := len(buf)
	for i > 0 {
		n--
		buf[n] = byte('0' + i%10)
		i /= 10
	}
	return string(buf[n:])
}

func (d *SH4Debugger) GetRegister(name string) (uint64, bool) {
	for _, r := range d.GetRegisters() {
		if r.Name == name {
			return r.Value, true
		}
	}
	return 0, false
}

func (d *SH4Debugger) SetRegister(name string, value uint64) bool {
	switch {
	case name == "PC":
		d.cpu.pc = uint32(value)
	case name == "PR":
		d.cpu.pr = uint32(value)
	case name == "SR":
		d.cpu.sr = uint32(value)
	default:
		for i := 0; i < 16; i++ {
			if name == rName(i) {
				d.cpu.SetR(i, uint32(value))
				return true
			}
			if name == frName(i) {
				d.cpu.SetFR(i, uint32(value))
				return true
			}
		}
		return false
	}
	return true
}

func (d *SH4Debugger) GetPC() uint64     { return uint64(d.cpu.pc) }
func (d *SH4Debugger) SetPC(addr uint64) { d.cpu.pc = uint32(addr) }

func (d *SH4Debugger) Step() (int, error) { return d.cpu.Step() }

func (d *SH4Debugger) Disassemble(addr uint32, count int) []DisassembledLine {
	lines := make([]DisassembledLine, 0, count)
	for i := 0; i < count; i++ {
		op, err := d.bus.Read16(addr, addr)
		if err != nil {
			break
		}
		lines = append(lines, DisassembledLine{
			Address:  addr,
			HexBytes: hex16(op),
			Mnemonic: disassembleSH4(op),
			Size:     2,
			IsPC:     addr == d.cpu.pc,
		})
		addr += 2
	}
	return lines
}

func (d *SH4Debugger) ReadMemory(addr uint32, size int) []byte {
	out := make([]byte, size)
	for i := 0; i < size; i++ {
		v, err := d.bus.Read8(addr, addr+uint32(i))
		if err != nil {
			return out[:i]
		}
		out[i] = v
	}
	return out
}

func (d *SH4Debugger) WriteMemory(addr uint32, data []byte) {
	for i, b := range data {
		_ = d.bus.Write8(addr, addr+uint32(i), b)
	}
}

func hex16(v uint16) string {
	const digits = "0123456789ABCDEF"
	return string([]byte{
		digits[(v>>12)&0xF], digits[(v>>8)&0xF], digits[(v>>4)&0xF], digits[v&0xF],
	})
}

