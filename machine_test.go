// machine_test.go - ShortcutBoot register seeding and the Step/drainEvents
// dispatch loop wired end to end through a real Machine.

package hollycore

import "testing"

func TestShortcutBootSeedsEntryAndStack(t *testing.T) {
	m := NewMachine()
	m.Reset()
	const entry = RegionSystemRAMStart + 0x10000
	m.ShortcutBoot(entry)

	if m.cpu.pc != entry {
		t.Fatalf("PC = %#x, want %#x", m.cpu.pc, entry)
	}
	wantSP := uint32(RegionSystemRAMStart + systemRAMSize - 16)
	if m.cpu.R(15) != wantSP {
		t.Fatalf("R15 = %#x, want %#x", m.cpu.R(15), wantSP)
	}
	if !checkBit(m.cpu.sr, srBitMD) || !checkBit(m.cpu.sr, srBitRB) {
		t.Fatal("expected SR.MD and SR.RB set after ShortcutBoot")
	}
	if !checkBit(m.cpu.fpscr, fpscrBitPR) {
		t.Fatal("expected FPSCR.PR set after ShortcutBoot")
	}
}

func TestMachineStepExecutesAndAdvancesScheduler(t *testing.T) {
	m := NewMachine()
	m.Reset()
	const entry = RegionSystemRAMStart + 0x10000
	if err := m.bus.Write16(0, entry, 0x0009); err != nil { // NOP
		t.Fatal(err)
	}
	m.ShortcutBoot(entry)

	before := m.sched.Now()
	if err := m.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}
	if m.cpu.pc != entry+2 {
		t.Fatalf("PC = %#x, want %#x", m.cpu.pc, entry+2)
	}
	if m.sched.Now() <= before {
		t.Fatal("expected the scheduler clock to advance after Step")
	}
}

func TestMachineFrameHandlerFiresAtVBlank(t *testing.T) {
	m := NewMachine()
	m.Reset()

	called := false
	m.SetFrameHandler(func(list DisplayList, snap FrameSnapshot) {
		called = true
	})

	// Reset configures vblank-in at scanline 480; advance the clock past
	// it and replay the sync event directly rather than stepping the CPU
	// hundreds of thousands of cycles.
	cyclesPerLine := m.spg.cyclesPerScanline()
	m.sched.Advance(cyclesPerLine * 481)
	if err := m.dispatch(Event{Kind: EventSpgSync}); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if !called {
		t.Fatal("expected the frame handler to fire after crossing the vblank-in scanline")
	}
}

func TestResetSchedulesPeriodicFrameEnd(t *testing.T) {
	m := NewMachine()
	m.Reset()

	found := false
	for _, ev := range m.sched.pending {
		if ev.Kind == EventFrameEnd && ev.Deadline == frameEndCycles {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a FrameEnd event scheduled at deadline %d after Reset, pending=%v", frameEndCycles, m.sched.pending)
	}
}

func TestFrameEndDispatchMarksBoundaryAndReschedules(t *testing.T) {
	m := NewMachine()
	m.Reset()

	m.sched.Advance(frameEndCycles)
	if err := m.dispatch(Event{Kind: EventFrameEnd}); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if got := m.sb.CyclesSinceFrameBoundary(m.sched.Now()); got != 0 {
		t.Fatalf("CyclesSinceFrameBoundary = %d, want 0 immediately after a FrameEnd dispatch", got)
	}

	m.sched.Advance(1000)
	if got := m.sb.CyclesSinceFrameBoundary(m.sched.Now()); got != 1000 {
		t.Fatalf("CyclesSinceFrameBoundary = %d, want 1000", got)
	}

	want := uint64(2 * frameEndCycles)
	rescheduled := false
	for _, ev := range m.sched.pending {
		if ev.Kind == EventFrameEnd && ev.Deadline == want {
			rescheduled = true
		}
	}
	if !rescheduled {
		t.Fatalf("expected a FrameEnd rescheduled at deadline %d, pending=%v", want, m.sched.pending)
	}
}
