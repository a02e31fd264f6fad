// tmu_test.go - scenario D: down-counting channel underflow with a
// prescaler and a deferred interrupt event.
//
// The channel's decrement-then-reload order means an already-zero TCNT is
// what triggers reload+UNF+interrupt, not the tick that first reaches
// zero; with TCOR0=10, TCNT0=1 and a prescale of 4 that underflow lands at
// the 8th accumulated cycle, not the 9th/10th (see DESIGN.md).

package hollycore

import "testing"

func TestScenarioTMUUnderflow(t *testing.T) {
	tm := NewTMU()
	sched := NewScheduler()

	tm.WriteTCR(0, 0x0020) // UNIE set, prescale index 0 -> divisor 4
	tm.WriteTCOR(0, 10)
	tm.WriteTCNT(0, 1)
	tm.WriteTSTR(1)

	for i := 0; i < 7; i++ {
		tm.Tick(sched, 1)
	}
	if sched.Pending() != 0 {
		t.Fatalf("pending = %d after 7 cycles, want 0", sched.Pending())
	}

	tm.Tick(sched, 1) // 8th cycle: underflow

	if tm.ReadTCNT(0) != 10 {
		t.Fatalf("TCNT0 = %d, want 10", tm.ReadTCNT(0))
	}
	if tm.ReadTCR(0)&tcrUNF == 0 {
		t.Fatal("expected UNF bit set in TCR0")
	}
	deadline, ok := sched.NextDeadline()
	if !ok {
		t.Fatal("expected a scheduled TUNI0 event")
	}
	if deadline != sched.Now()+200 {
		t.Fatalf("deadline = %d, want now+200 (%d)", deadline, sched.Now()+200)
	}
}

func TestTMUDisabledChannelDoesNotTick(t *testing.T) {
	tm := NewTMU()
	sched := NewScheduler()
	tm.WriteTCR(0, 0)
	tm.WriteTCNT(0, 5)
	// TSTR left at 0: channel 0 disabled.
	tm.Tick(sched, 1000)
	if tm.ReadTCNT(0) != 5 {
		t.Fatalf("TCNT0 = %d, want unchanged 5", tm.ReadTCNT(0))
	}
}
