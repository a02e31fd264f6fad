// cpu_sh4_fpu_test.go - FPU family dispatch and scenarios B/C.

package hollycore

import (
	"math"
	"testing"
)

// TestScenarioFADDSingle is scenario B: FPSCR.PR=0, FR0=1.5, FR1=2.25,
// opcode 0xF100 (FADD FR0,FR1). The originally stated opcode 0xF10C
// decodes to FMOV FR0,FR1 (a plain register move, low nibble 0xC) under
// this dispatch table, not FADD (low nibble 0x0); 0xF100 is the corrected
// encoding (see DESIGN.md).
func TestScenarioFADDSingle(t *testing.T) {
	rig := newCPUTestRig()
	const start = RegionSystemRAMStart + 0x1000
	rig.loadProgram(start, 0xF100)
	rig.cpu.fpscr = 0 // PR=0: single precision
	rig.cpu.setFr32(0, 1.5)
	rig.cpu.setFr32(1, 2.25)

	if _, err := rig.cpu.Step(); err != nil {
		t.Fatalf("step: %v", err)
	}

	got := rig.cpu.fr32(1)
	if got != 3.75 {
		t.Fatalf("FR1 = %v, want 3.75", got)
	}
}

// TestScenarioFTRV is scenario C: FPSCR.PR=0, XF bank holding the identity
// matrix, FV0 = (1,2,3,4), opcode 0xF1FD (FTRV XMTRX,FV0). Expect FV0
// unchanged since multiplying by the identity matrix is a no-op.
func TestScenarioFTRV(t *testing.T) {
	rig := newCPUTestRig()
	const start = RegionSystemRAMStart + 0x1100
	rig.loadProgram(start, 0xF1FD)
	rig.cpu.fpscr = 0 // PR=0, FPSCR.FR=0 so FR is bank 0 and XF is bank 1

	for i := 0; i < 4; i++ {
		rig.cpu.setFr32(i, float32(i+1))
	}
	for row := 0; row < 4; row++ {
		for col := 0; col < 4; col++ {
			v := float32(0)
			if row == col {
				v = 1
			}
			rig.cpu.SetXF(col*4+row, math.Float32bits(v))
		}
	}

	if _, err := rig.cpu.Step(); err != nil {
		t.Fatalf("step: %v", err)
	}

	for i := 0; i < 4; i++ {
		want := float32(i + 1)
		got := rig.cpu.fr32(i)
		if got != want {
			t.Fatalf("FR%d = %v, want %v", i, got, want)
		}
	}
}

func TestFPUBinOpDoublePrecision(t *testing.T) {
	rig := newCPUTestRig()
	const start = RegionSystemRAMStart + 0x1200
	rig.loadProgram(start, 0xF202) // FMUL DR0,DR2 (n=2,m=0, fmt=2)
	rig.cpu.fpscr = 1 << fpscrBitPR
	rig.cpu.setDr(0, 2.0)
	rig.cpu.setDr(2, 3.5)

	if _, err := rig.cpu.Step(); err != nil {
		t.Fatalf("step: %v", err)
	}

	got := rig.cpu.dr(2)
	if got != 7.0 {
		t.Fatalf("DR2 = %v, want 7.0", got)
	}
}

// TestFSCAApproximation documents the intentional simplification recorded
// in DESIGN.md: FSCA computes sin/cos directly via math.Sin/math.Cos rather than
// reproducing the real hardware's table-lookup approximation error.
func TestFSCAApproximation(t *testing.T) {
	rig := newCPUTestRig()
	const start = RegionSystemRAMStart + 0x1300
	rig.loadProgram(start, 0xF0AD) // FSCA FPUL,DR0 (n=0, suboperation 0xA)
	rig.cpu.fpscr = 0
	rig.cpu.fpul = 0 // turns=0 -> angle 0

	if _, err := rig.cpu.Step(); err != nil {
		t.Fatalf("step: %v", err)
	}

	sin := rig.cpu.fr32(0)
	cos := rig.cpu.fr32(1)
	if sin != 0 {
		t.Fatalf("sin = %v, want 0", sin)
	}
	if cos != 1 {
		t.Fatalf("cos = %v, want 1", cos)
	}
}
