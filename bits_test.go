// bits_test.go - the generic bit helpers every MMIO register built on top
// of this module relies on.

package hollycore

import "testing"

func TestSetClearCheckBit(t *testing.T) {
	var v uint32
	v = setBit(v, 3)
	if !checkBit(v, 3) {
		t.Fatal("expected bit 3 set")
	}
	if checkBit(v, 4) {
		t.Fatal("expected bit 4 clear")
	}
	v = clearBit(v, 3)
	if checkBit(v, 3) {
		t.Fatal("expected bit 3 cleared")
	}
}

func TestEvalBit(t *testing.T) {
	var v uint16
	v = evalBit(v, 5, true)
	if !checkBit(v, 5) {
		t.Fatal("expected bit 5 set by evalBit(true)")
	}
	v = evalBit(v, 5, false)
	if checkBit(v, 5) {
		t.Fatal("expected bit 5 cleared by evalBit(false)")
	}
}

func TestToggleBit(t *testing.T) {
	var v uint8
	v = toggleBit(v, 0)
	if !checkBit(v, 0) {
		t.Fatal("expected bit 0 set after first toggle")
	}
	v = toggleBit(v, 0)
	if checkBit(v, 0) {
		t.Fatal("expected bit 0 cleared after second toggle")
	}
}

func TestBitField(t *testing.T) {
	v := uint32(0xABCD1234)
	if got := bitField(v, 31, 28); got != 0xA {
		t.Fatalf("bitField(31,28) = %#x, want 0xA", got)
	}
	if got := bitField(v, 7, 0); got != 0x34 {
		t.Fatalf("bitField(7,0) = %#x, want 0x34", got)
	}
	if got := bitField(v, 15, 8); got != 0x12 {
		t.Fatalf("bitField(15,8) = %#x, want 0x12", got)
	}
	if got := bitField(v, 0, 0); got != 0 {
		t.Fatalf("bitField(0,0) = %#x, want 0", got)
	}
}
