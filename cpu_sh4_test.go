// cpu_sh4_test.go - integer ALU, PC advance and register-bank tests.

package hollycore

import "testing"

// TestScenarioADD is scenario A from the behavior tests: R2=7, R3=-2,
// opcode 0x332C (ADD R2,R3), starting at 0x8C010000. The originally stated
// opcode 0x322C decodes to ADD R2,R2 under this dispatch table (n=2), not
// ADD R2,R3; 0x332C is the corrected encoding (see DESIGN.md).
func TestScenarioADD(t *testing.T) {
	rig := newCPUTestRig()
	const start = 0x8C010000
	rig.loadProgram(start, 0x332C)
	rig.cpu.SetR(2, 0x00000007)
	rig.cpu.SetR(3, 0xFFFFFFFE)
	rig.cpu.setT(false)
	srBefore := rig.cpu.sr

	if _, err := rig.cpu.Step(); err != nil {
		t.Fatalf("step: %v", err)
	}

	requireEqualU32(t, "R3", rig.cpu.R(3), 0x00000005)
	requireEqualU32(t, "PC", rig.cpu.pc, start+2)
	requireEqualU32(t, "SR", rig.cpu.sr, srBefore)
}

// TestPCMonotonicity is universal property 3: a non-branch, non-fault
// instruction executed at PC p leaves PC at p+2.
func TestPCMonotonicity(t *testing.T) {
	rig := newCPUTestRig()
	const start = RegionSystemRAMStart + 0x100
	rig.loadProgram(start, 0x6323) // MOV Rm,Rn (R3 = R2)
	rig.cpu.SetR(2, 0x55)

	if _, err := rig.cpu.Step(); err != nil {
		t.Fatalf("step: %v", err)
	}
	requireEqualU32(t, "PC", rig.cpu.pc, start+2)
}

// TestBankInvolution is universal property 4: toggling SR.RB twice restores
// the original R0..R7 contents, since the bank swap only changes which
// physical bank the low registers alias.
func TestBankInvolution(t *testing.T) {
	rig := newCPUTestRig()
	var before [8]uint32
	for i := 0; i < 8; i++ {
		rig.cpu.SetR(i, uint32(0x1000+i))
		before[i] = rig.cpu.R(i)
	}

	rig.cpu.sr = setBit(rig.cpu.sr, srBitRB)
	for i := 0; i < 8; i++ {
		rig.cpu.SetR(i, uint32(0x9000+i))
	}
	rig.cpu.sr = clearBit(rig.cpu.sr, srBitRB)

	for i := 0; i < 8; i++ {
		requireEqualU32(t, "R", rig.cpu.R(i), before[i])
	}
}

func TestExecADDImmediate(t *testing.T) {
	rig := newCPUTestRig()
	const start = RegionSystemRAMStart + 0x200
	rig.loadProgram(start, 0x7105) // ADD #5,R1
	rig.cpu.SetR(1, 10)

	if _, err := rig.cpu.Step(); err != nil {
		t.Fatalf("step: %v", err)
	}
	requireEqualU32(t, "R1", rig.cpu.R(1), 15)
}

func TestExecCMPEQSetsT(t *testing.T) {
	rig := newCPUTestRig()
	const start = RegionSystemRAMStart + 0x300
	rig.loadProgram(start, 0x3120) // CMP/EQ R2,R1
	rig.cpu.SetR(1, 42)
	rig.cpu.SetR(2, 42)

	if _, err := rig.cpu.Step(); err != nil {
		t.Fatalf("step: %v", err)
	}
	requireTrue(t, "T", rig.cpu.t())
}

func TestExecMOVLIndirectDisplacement(t *testing.T) {
	rig := newCPUTestRig()
	const start = RegionSystemRAMStart + 0x400
	rig.loadProgram(start, 0x1120) // MOV.L R2,@(0,R1)
	rig.cpu.SetR(1, RegionSystemRAMStart+0x500)
	rig.cpu.SetR(2, 0xCAFEBABE)

	if _, err := rig.cpu.Step(); err != nil {
		t.Fatalf("step: %v", err)
	}
	got, err := rig.m.bus.Read32(0, RegionSystemRAMStart+0x500)
	if err != nil {
		t.Fatalf("read32: %v", err)
	}
	requireEqualU32(t, "mem", got, 0xCAFEBABE)
}

func TestUnknownOpcodeFaults(t *testing.T) {
	rig := newCPUTestRig()
	const start = RegionSystemRAMStart + 0x600
	// 0xFFFF does not match any branch in execF's dispatch table.
	rig.loadProgram(start, 0xFFFF)

	if _, err := rig.cpu.Step(); err == nil {
		t.Fatal("expected unknown opcode to fault")
	}
}
