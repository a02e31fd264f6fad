// bus_test.go - physical bus round-trip and endianness properties.

package hollycore

import "testing"

func newTestBus() *Bus {
	video := NewVideoSubsystem()
	intc := NewINTC()
	sb := NewSystemBlock(intc, NewScheduler())
	tmu := NewTMU()
	ta := NewTAParser(NewScheduler(), video, sb)
	return NewBus(video, sb, intc, tmu, ta)
}

func TestBusRoundTrip32(t *testing.T) {
	b := newTestBus()
	addr := RegionSystemRAMStart + 0x1000
	if err := b.Write32(0, addr, 0xDEADBEEF); err != nil {
		t.Fatalf("write32: %v", err)
	}
	got, err := b.Read32(0, addr)
	if err != nil {
		t.Fatalf("read32: %v", err)
	}
	requireEqualU32(t, "read32", got, 0xDEADBEEF)
}

func TestBusRoundTrip16(t *testing.T) {
	b := newTestBus()
	addr := RegionSystemRAMStart + 0x1000
	if err := b.Write16(0, addr, 0xBEEF); err != nil {
		t.Fatalf("write16: %v", err)
	}
	got, err := b.Read16(0, addr)
	if err != nil {
		t.Fatalf("read16: %v", err)
	}
	if got != 0xBEEF {
		t.Fatalf("read16 = %#04x, want 0xBEEF", got)
	}
}

func TestBusRoundTrip8(t *testing.T) {
	b := newTestBus()
	addr := RegionSystemRAMStart + 0x1000
	if err := b.Write8(0, addr, 0x7A); err != nil {
		t.Fatalf("write8: %v", err)
	}
	got, err := b.Read8(0, addr)
	if err != nil {
		t.Fatalf("read8: %v", err)
	}
	if got != 0x7A {
		t.Fatalf("read8 = %#02x, want 0x7A", got)
	}
}

func TestBusRoundTrip64(t *testing.T) {
	b := newTestBus()
	addr := RegionSystemRAMStart + 0x2000
	if err := b.Write64(0, addr, 0x1122334455667788); err != nil {
		t.Fatalf("write64: %v", err)
	}
	got, err := b.Read64(0, addr)
	if err != nil {
		t.Fatalf("read64: %v", err)
	}
	if got != 0x1122334455667788 {
		t.Fatalf("read64 = %#016x, want 0x1122334455667788", got)
	}
}

// TestBusByteEndianness is universal property 2: write_32(a,v) followed by
// read_8(a) returns v&0xFF, i.e. system RAM is little-endian.
func TestBusByteEndianness(t *testing.T) {
	b := newTestBus()
	addr := RegionSystemRAMStart + 0x3000
	if err := b.Write32(0, addr, 0x12345678); err != nil {
		t.Fatalf("write32: %v", err)
	}
	lo, err := b.Read8(0, addr)
	if err != nil {
		t.Fatalf("read8: %v", err)
	}
	if lo != 0x78 {
		t.Fatalf("read8(a) = %#02x, want 0x78", lo)
	}
}

func TestBusUnalignedAccessFaults(t *testing.T) {
	b := newTestBus()
	if _, err := b.Read32(0, RegionSystemRAMStart+1); err == nil {
		t.Fatal("expected unaligned read32 to fault")
	}
	if err := b.Write16(0, RegionSystemRAMStart+1, 0); err == nil {
		t.Fatal("expected unaligned write16 to fault")
	}
}

func TestBusUnmappedAddressFaults(t *testing.T) {
	b := newTestBus()
	if _, err := b.Read8(0, 0x003FFFFF); err == nil {
		t.Fatal("expected read from unmapped region to fault")
	}
}
