// loader.go - boot ROM, flash and GDI program staging into a Machine.
//
// Grounded on media_loader.go's loadAndStart: read a host file, validate
// its size against the destination region, copy it in, report a typed
// error on anything that doesn't fit rather than silently truncating.

package hollycore

import (
	"fmt"
	"os"
)

// LoadBootROM reads a boot ROM image from disk and installs it. The image
// must fit exactly within the 2MB boot ROM window.
func LoadBootROM(m *Machine, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if len(data) > bootROMSize {
		return fmt.Errorf("loader: boot ROM image is %d bytes, window is %d", len(data), bootROMSize)
	}
	m.Bus().LoadBootROM(data)
	return nil
}

// LoadFlash reads a system flash image from disk and installs it. The
// image must fit exactly within the 128KB flash window.
func LoadFlash(m *Machine, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if len(data) > flashSize {
		return fmt.Errorf("loader: flash image is %d bytes, window is %d", len(data), flashSize)
	}
	m.Bus().LoadFlash(data)
	return nil
}

// ipBinSize is the fixed size of a GD-ROM boot track's IP.BIN header: boot
// identifiers, the hardware ID string, and the initial program load
// parameters, immediately followed by the loaded binary itself.
const ipBinSize = 0x8000

// ipBinLoadOffset is IP.BIN's declared destination within system RAM for
// the program bytes that follow the header, matching the fixed load
// address real Dreamcast firmware uses for 1ST_READ.BIN.
const ipBinLoadOffset = 0x00010000

// LoadGDI opens a disc manifest, reads its boot track's IP.BIN header plus
// the program binary that follows it, and stages the program into system
// RAM at its fixed load address. It returns the entry point ShortcutBoot
// should start execution at.
func LoadGDI(m *Machine, gdiPath string) (uint32, error) {
	img, err := ParseGDI(gdiPath)
	if err != nil {
		return 0, err
	}
	track, ok := img.BootTrack()
	if !ok {
		return 0, fmt.Errorf("loader: %s has no high-density data track", gdiPath)
	}

	header, err := img.ReadSectorData(track, 0, ipBinSize)
	if err != nil {
		return 0, fmt.Errorf("loader: reading IP.BIN header: %w", err)
	}
	if len(header) < ipBinSize {
		return 0, fmt.Errorf("loader: IP.BIN header truncated (%d of %d bytes)", len(header), ipBinSize)
	}

	program, err := readTrackTail(img, track, ipBinSize)
	if err != nil {
		return 0, fmt.Errorf("loader: reading boot program: %w", err)
	}

	ram := m.Bus().RAM()
	if int(ipBinLoadOffset)+len(program) > len(ram) {
		return 0, fmt.Errorf("loader: boot program (%d bytes) overruns system RAM", len(program))
	}
	copy(ram[ipBinLoadOffset:], program)

	return RegionSystemRAMStart + ipBinLoadOffset, nil
}

// readTrackTail reads the remainder of a track's backing file past a
// given byte offset, the boot program bytes that follow IP.BIN's header.
func readTrackTail(img *GDIImage, t Track, afterOffset int64) ([]byte, error) {
	info, err := os.Stat(t.path)
	if err != nil {
		return nil, err
	}
	remaining := info.Size() - t.FileOffset - afterOffset
	if remaining <= 0 {
		return nil, nil
	}
	return img.ReadSectorData(t, afterOffset, int(remaining))
}
