// intc_test.go - interrupt priority ordering.

package hollycore

import "testing"

// TestINTCPriority is universal property 6: when sources s1 (level L1) and
// s2 (level L2>L1) are both raised, Ack returns s2 first.
func TestINTCPriority(t *testing.T) {
	ic := NewINTC()
	ic.Raise(SrcIRL10) // level 5
	ic.Raise(SrcIRL2)  // level 13

	src, level, ok := ic.Ack()
	if !ok {
		t.Fatal("expected a pending source")
	}
	if src != SrcIRL2 {
		t.Fatalf("Ack source = %v, want SrcIRL2", src)
	}
	if level != 13 {
		t.Fatalf("Ack level = %d, want 13", level)
	}

	// The lower-priority source is still pending.
	lvl, ok := ic.PendingLevel()
	if !ok || lvl != 5 {
		t.Fatalf("PendingLevel = %d, ok=%v, want 5,true", lvl, ok)
	}
}

func TestINTCOnChipLevelFromIPR(t *testing.T) {
	ic := NewINTC()
	ic.WriteIPRA(0xF000) // TUNI0 nibble (bits 15:12) = 0xF
	ic.Raise(SrcTMUTUNI0)

	_, level, ok := ic.Ack()
	if !ok || level != 0xF {
		t.Fatalf("level = %d, ok=%v, want 15,true", level, ok)
	}
}

func TestINTCAckClearsRequest(t *testing.T) {
	ic := NewINTC()
	ic.Raise(SrcIRL0)
	if _, _, ok := ic.Ack(); !ok {
		t.Fatal("expected pending source")
	}
	if _, ok := ic.PendingLevel(); ok {
		t.Fatal("expected no pending source after Ack")
	}
}
