// diagnostics_test.go - FatalError formatting and onceLog's per-address
// dedup.

package hollycore

import (
	"strings"
	"testing"
)

func TestFatalErrorMessage(t *testing.T) {
	err := newFatal(0x8C010000, nil, "unmapped access at %#x", 0x1234)
	want := "fatal: unmapped access at 0x1234 (pc=0x8c010000)"
	if err.Error() != want {
		t.Fatalf("Error() = %q, want %q", err.Error(), want)
	}
	if !strings.Contains(err.Cause, "unmapped access") {
		t.Fatalf("Cause = %q, want it to mention the condition", err.Cause)
	}
}

func TestOnceLogFiresOncePerAddress(t *testing.T) {
	ol := newOnceLog()
	ol.logOnce(0x1000, "first")
	ol.logOnce(0x1000, "second")
	if len(ol.seen) != 1 {
		t.Fatalf("seen = %d addresses, want 1", len(ol.seen))
	}
	ol.logOnce(0x2000, "third")
	if len(ol.seen) != 2 {
		t.Fatalf("seen = %d addresses, want 2", len(ol.seen))
	}
}
