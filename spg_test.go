// spg_test.go - scanline periodicity (property 7) and scenario E.

package hollycore

import "testing"

// TestSPGScanlinePeriodicity is universal property 7: over vcount
// successive SpgSync events, the current scanline visits each value
// 0..vcount-1 exactly once.
func TestSPGScanlinePeriodicity(t *testing.T) {
	sb := NewSystemBlock(NewINTC(), NewScheduler())
	spg := NewSPG(sb)
	const vcount = 10
	spg.Configure(857, vcount, 5, 8, 5, 8)

	sched := NewScheduler()
	cyclesPerLine := spg.cyclesPerScanline()

	seen := make(map[uint32]int)
	for i := 0; i < vcount; i++ {
		spg.HandleSpgSync(sched, uint32(cyclesPerLine))
		seen[spg.Scanline()]++
	}

	for line := uint32(0); line < vcount; line++ {
		if seen[line] != 1 {
			t.Fatalf("scanline %d visited %d times, want 1", line, seen[line])
		}
	}
}

// TestScenarioSPGVBlank is scenario E: after advancing to the
// vblank_int_in scanline, the SB normal-IRQ word has bit 3 set; after
// vblank_int_out, bit 4 is set and in_vblank is false.
func TestScenarioSPGVBlank(t *testing.T) {
	sb := NewSystemBlock(NewINTC(), NewScheduler())
	spg := NewSPG(sb)
	spg.Configure(857, 524, 483, 502, 483, 502)

	sched := NewScheduler()
	cyclesPerLine := spg.cyclesPerScanline()

	for spg.Scanline() != 483 {
		spg.HandleSpgSync(sched, uint32(cyclesPerLine))
	}
	if sb.ReadISTNRM()&(1<<NormalBitVBlankIn) == 0 {
		t.Fatal("expected VBlankIn bit set at scanline 483")
	}

	for spg.Scanline() != 502 {
		spg.HandleSpgSync(sched, uint32(cyclesPerLine))
	}
	if sb.ReadISTNRM()&(1<<NormalBitVBlankOut) == 0 {
		t.Fatal("expected VBlankOut bit set at scanline 502")
	}
	if spg.InVBlank() {
		t.Fatal("expected in_vblank false at scanline 502")
	}
}
