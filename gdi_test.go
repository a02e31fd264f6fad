// gdi_test.go - manifest parsing, FAD conversion, and the path-escape
// defense ported from media_loader_test.go's sanitizePathLocked coverage.

package hollycore

import (
	"os"
	"path/filepath"
	"testing"
)

func writeGDI(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestParseGDITwoSessionLayout(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"track01.bin", "track02.bin", "track03.bin"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	manifest := "3\n" +
		"1 0 0 2352 track01.bin 0\n" +
		"2 0 0 2352 track02.bin 0\n" +
		"3 0 4 2048 track03.bin 0\n"
	path := writeGDI(t, dir, "disc.gdi", manifest)

	img, err := ParseGDI(path)
	if err != nil {
		t.Fatalf("ParseGDI: %v", err)
	}
	if len(img.Tracks) != 3 {
		t.Fatalf("tracks = %d, want 3", len(img.Tracks))
	}

	hd := img.HighDensityTracks()
	if len(hd) != 1 || hd[0].Number != 3 {
		t.Fatalf("high density tracks = %+v, want just track 3", hd)
	}

	boot, ok := img.BootTrack()
	if !ok || boot.Number != 3 || boot.Type != TrackData {
		t.Fatalf("BootTrack = %+v ok=%v, want track 3 data", boot, ok)
	}

	if fad := img.Tracks[0].FAD(); fad != 150 {
		t.Fatalf("track1 FAD = %d, want 150", fad)
	}
	if fad := boot.FAD(); fad != gdLeadInFAD {
		t.Fatalf("boot track FAD = %d, want %d (LBA 0 + lead-in)", fad, gdLeadInFAD)
	}
}

func TestParseGDIRejectsTrackCountMismatch(t *testing.T) {
	dir := t.TempDir()
	os.WriteFile(filepath.Join(dir, "a.bin"), []byte("x"), 0o644)
	path := writeGDI(t, dir, "disc.gdi", "2\n1 0 0 2352 a.bin 0\n")
	if _, err := ParseGDI(path); err == nil {
		t.Fatal("expected a track-count mismatch error")
	}
}

func TestSanitizeTrackPathRejectsEscape(t *testing.T) {
	if _, ok := sanitizeTrackPath("/base", "../escape.bin"); ok {
		t.Fatal("expected a relative parent-escape to be rejected")
	}
	if _, ok := sanitizeTrackPath("/base", "/abs/path.bin"); ok {
		t.Fatal("expected an absolute path to be rejected")
	}
	if _, ok := sanitizeTrackPath("/base", "safe.bin"); !ok {
		t.Fatal("expected a plain relative filename to be accepted")
	}
}

func TestReadSectorDataHonorsFileOffset(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "track03.bin"), []byte("0123456789"), 0o644); err != nil {
		t.Fatal(err)
	}
	manifest := "1\n3 0 4 2048 track03.bin 4\n"
	path := writeGDI(t, dir, "disc.gdi", manifest)

	img, err := ParseGDI(path)
	if err != nil {
		t.Fatalf("ParseGDI: %v", err)
	}
	data, err := img.ReadSectorData(img.Tracks[0], 2, 3)
	if err != nil {
		t.Fatalf("ReadSectorData: %v", err)
	}
	if string(data) != "678" {
		t.Fatalf("data = %q, want %q (offset 4 + byteOffset 2)", data, "678")
	}
}
