// debug_cpu_sh4_test.go - register inspection/mutation and memory/disasm
// passthrough on the debug adapter.

package hollycore

import "testing"

func newDebuggerTestRig() (*Machine, *SH4Debugger) {
	m := NewMachine()
	m.Reset()
	return m, NewSH4Debugger(m)
}

func TestDebuggerGetSetRegister(t *testing.T) {
	_, d := newDebuggerTestRig()

	if !d.SetRegister("R3", 0xCAFEBABE) {
		t.Fatal("expected SetRegister(R3) to succeed")
	}
	v, ok := d.GetRegister("R3")
	if !ok || v != 0xCAFEBABE {
		t.Fatalf("GetRegister(R3) = %#x, ok=%v, want 0xCAFEBABE", v, ok)
	}

	if !d.SetRegister("PC", 0x8C010000) {
		t.Fatal("expected SetRegister(PC) to succeed")
	}
	if d.GetPC() != 0x8C010000 {
		t.Fatalf("GetPC() = %#x, want 0x8c010000", d.GetPC())
	}

	if d.SetRegister("NOPE", 1) {
		t.Fatal("expected SetRegister on an unknown name to fail")
	}
	if _, ok := d.GetRegister("NOPE"); ok {
		t.Fatal("expected GetRegister on an unknown name to report not-found")
	}
}

func TestDebuggerSetPC(t *testing.T) {
	_, d := newDebuggerTestRig()
	d.SetPC(0x8C020000)
	if d.GetPC() != 0x8C020000 {
		t.Fatalf("GetPC() = %#x, want 0x8c020000", d.GetPC())
	}
}

func TestDebuggerGetRegistersIncludesAllGroups(t *testing.T) {
	_, d := newDebuggerTestRig()
	regs := d.GetRegisters()
	seen := make(map[string]bool)
	for _, r := range regs {
		seen[r.Name] = true
	}
	for _, want := range []string{"R0", "R15", "FR0", "FR15", "PC", "SR", "FPSCR"} {
		if !seen[want] {
			t.Fatalf("expected register %q in GetRegisters() output", want)
		}
	}
}

func TestDebuggerDisassembleMarksPC(t *testing.T) {
	m, d := newDebuggerTestRig()
	const addr = RegionSystemRAMStart + 0x1000
	if err := m.bus.Write16(0, addr, 0x332C); err != nil { // ADD R2,R3
		t.Fatal(err)
	}
	d.SetPC(addr)

	lines := d.Disassemble(addr, 1)
	if len(lines) != 1 {
		t.Fatalf("lines = %d, want 1", len(lines))
	}
	if lines[0].Mnemonic != "ADD R2,R3" {
		t.Fatalf("mnemonic = %q, want %q", lines[0].Mnemonic, "ADD R2,R3")
	}
	if !lines[0].IsPC {
		t.Fatal("expected IsPC true at the current PC")
	}
	if lines[0].HexBytes != "332C" {
		t.Fatalf("hex = %q, want %q", lines[0].HexBytes, "332C")
	}
}

func TestDebuggerReadWriteMemory(t *testing.T) {
	_, d := newDebuggerTestRig()
	const addr = RegionSystemRAMStart + 0x2000
	d.WriteMemory(addr, []byte{0x11, 0x22, 0x33})
	got := d.ReadMemory(addr, 3)
	if len(got) != 3 || got[0] != 0x11 || got[1] != 0x22 || got[2] != 0x33 {
		t.Fatalf("ReadMemory = %v, want [0x11 0x22 0x33]", got)
	}
}
