// cpu_sh4_test_helpers_test.go - shared CPU test rig.
//
// Grounded on cpu_z80_test_helpers_test.go's rig shape: a struct pairing a
// bus and a CPU, a resetAndLoad helper that seeds a program at a fixed
// address and points PC at it, plus small requireEqualU32-style assertion
// helpers.

package hollycore

import "testing"

type cpuTestRig struct {
	m   *Machine
	cpu *CPU
}

func newCPUTestRig() *cpuTestRig {
	m := NewMachine()
	m.Reset()
	return &cpuTestRig{m: m, cpu: m.cpu}
}

// loadProgram writes a sequence of 16-bit instruction words into system RAM
// starting at addr and points PC at the first one.
func (r *cpuTestRig) loadProgram(addr uint32, words ...uint16) {
	for i, w := range words {
		if err := r.m.bus.Write16(0, addr+uint32(i)*2, w); err != nil {
			panic(err)
		}
	}
	r.cpu.pc = addr
}

func requireEqualU32(t *testing.T, name string, got, want uint32) {
	t.Helper()
	if got != want {
		t.Fatalf("%s = %#08x, want %#08x", name, got, want)
	}
}

func requireTrue(t *testing.T, name string, got bool) {
	t.Helper()
	if !got {
		t.Fatalf("%s = false, want true", name)
	}
}

func requireFalse(t *testing.T, name string, got bool) {
	t.Helper()
	if got {
		t.Fatalf("%s = true, want false", name)
	}
}
