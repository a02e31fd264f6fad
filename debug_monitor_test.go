// debug_monitor_test.go - breakpoint arming and the bounded Run loop
// driving a real SH4Debugger over a short NOP program.

package hollycore

import "testing"

func TestMonitorStepLogsDisassembly(t *testing.T) {
	m := NewMachine()
	m.Reset()
	const addr = RegionSystemRAMStart + 0x1000
	if err := m.bus.Write16(0, addr, 0x0009); err != nil { // NOP
		t.Fatal(err)
	}
	d := NewSH4Debugger(m)
	d.SetPC(addr)

	mon := NewMachineMonitor(d)
	if err := mon.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}
	out := mon.Output()
	if len(out) != 1 {
		t.Fatalf("output lines = %d, want 1", len(out))
	}
	if want := hex32(addr); out[0].Text[:8] != want {
		t.Fatalf("output line = %q, want address prefix %q", out[0].Text, want)
	}
}

func TestMonitorRunStopsAtBreakpoint(t *testing.T) {
	m := NewMachine()
	m.Reset()
	const addr = RegionSystemRAMStart + 0x1000
	for i := 0; i < 5; i++ {
		if err := m.bus.Write16(0, addr+uint32(i)*2, 0x0009); err != nil { // NOP
			t.Fatal(err)
		}
	}
	d := NewSH4Debugger(m)
	d.SetPC(addr)

	mon := NewMachineMonitor(d)
	mon.SetBreakpoint(uint64(addr + 6)) // fourth NOP
	if err := mon.Run(100); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if d.GetPC() != uint64(addr+6) {
		t.Fatalf("PC = %#x, want %#x (stopped at breakpoint)", d.GetPC(), addr+6)
	}
	if mon.IsRunning() {
		t.Fatal("expected IsRunning false after Run returns")
	}

	found := false
	for _, l := range mon.Output() {
		if l.Text == breakpointHitMessage(uint64(addr+6)) {
			found = true
		}
	}
	if !found {
		t.Fatal("expected a breakpoint-hit message in the output log")
	}
}

func TestMonitorClearBreakpoint(t *testing.T) {
	mon := NewMachineMonitor(nil)
	mon.SetBreakpoint(0x1000)
	if !mon.HasBreakpoint(0x1000) {
		t.Fatal("expected breakpoint armed")
	}
	mon.ClearBreakpoint(0x1000)
	if mon.HasBreakpoint(0x1000) {
		t.Fatal("expected breakpoint cleared")
	}
}
