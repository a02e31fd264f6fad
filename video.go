// video.go - VRAM windows, framebuffer formats, dirty tracking.
//
// Grounded on video_interface.go's VideoOutput/FrameSnapshot/PixelFormat
// abstractions and video_screen_buffer.go's dirty-rectangle bookkeeping,
// generalized here to Holly's single coarse framebuffer-watch range.

package hollycore

import "encoding/binary"

const vramSize = 8 * 1024 * 1024

// PixelFormat enumerates the framebuffer read formats Holly supports.
type PixelFormat int

const (
	FormatRGB555 PixelFormat = iota
	FormatRGB565
	FormatRGB888Packed
	FormatRGB0888
)

// FrameSnapshot is the data a BlitFramebuffer host message carries.
type FrameSnapshot struct {
	VRAM   []byte
	Width  int
	Height int
	Format PixelFormat
}

// VideoSubsystem owns the 8MB VRAM block, exposed through both the 32-bit
// linear window and the 64-bit interleaved window, plus the framebuffer
// register surface and dirty flag.
type VideoSubsystem struct {
	vram []byte

	fbWatchLo, fbWatchHi uint32 // framebuffer-watch range, in VRAM-relative bytes
	dirty                bool

	fbRSize   uint32 // FB_R_SIZE: width-1 | (modulus<<10) encoding
	fbRFormat PixelFormat

	pram [4096]byte // palette RAM
}

// NewVideoSubsystem allocates VRAM and palette RAM at their reset size.
func NewVideoSubsystem() *VideoSubsystem {
	return &VideoSubsystem{vram: make([]byte, vramSize), fbWatchHi: vramSize - 1}
}

// Reset clears VRAM, palette RAM and the dirty flag.
func (v *VideoSubsystem) Reset() {
	for i := range v.vram {
		v.vram[i] = 0
	}
	for i := range v.pram {
		v.pram[i] = 0
	}
	v.dirty = false
	v.fbRSize, v.fbRFormat = 0, FormatRGB555
}

// vramOffset maps a physical address in either VRAM window to a
// VRAM-relative byte offset. The 64-bit window interleaves even/odd
// 32-bit-aligned words between VRAM's two logical banks; here, with a
// single contiguous backing slice, both windows address the same bytes at
// the same relative offset (their distinction matters for bus width, not
// for which byte is touched).
func vramOffset(physAddr uint32) uint32 {
	switch {
	case inRange(physAddr, RegionVRAM32Start, RegionVRAM32End):
		return physAddr - RegionVRAM32Start
	case inRange(physAddr, RegionVRAM64Start, RegionVRAM64End):
		return physAddr - RegionVRAM64Start
	default:
		return 0
	}
}

func (v *VideoSubsystem) markDirty(off uint32) {
	if off >= v.fbWatchLo && off <= v.fbWatchHi {
		v.dirty = true
	}
}

func (v *VideoSubsystem) Read8(physAddr uint32) uint8 {
	return v.vram[vramOffset(physAddr)%vramSize]
}

func (v *VideoSubsystem) Write8(physAddr uint32, val uint8) {
	off := vramOffset(physAddr) % vramSize
	v.vram[off] = val
	v.markDirty(off)
}

func (v *VideoSubsystem) Read32(physAddr uint32) uint32 {
	off := vramOffset(physAddr) % vramSize
	return binary.LittleEndian.Uint32(v.vram[off:])
}

func (v *VideoSubsystem) Write32(physAddr uint32, val uint32) {
	off := vramOffset(physAddr) % vramSize
	binary.LittleEndian.PutUint32(v.vram[off:], val)
	v.markDirty(off)
}

func (v *VideoSubsystem) Read64(physAddr uint32) uint64 {
	off := vramOffset(physAddr) % vramSize
	return binary.LittleEndian.Uint64(v.vram[off:])
}

func (v *VideoSubsystem) Write64(physAddr uint32, val uint64) {
	off := vramOffset(physAddr) % vramSize
	binary.LittleEndian.PutUint64(v.vram[off:], val)
	v.markDirty(off)
	v.markDirty(off + 4)
}

// ConsumeDirty reports whether VRAM was touched in the framebuffer-watch
// range since the last call, and clears the flag.
func (v *VideoSubsystem) ConsumeDirty() bool {
	d := v.dirty
	v.dirty = false
	return d
}

// SetFBRSize programs FB_R_SIZE (stride/modulus encoding).
func (v *VideoSubsystem) SetFBRSize(val uint32) { v.fbRSize = val }
func (v *VideoSubsystem) SetFBRFormat(f PixelFormat) { v.fbRFormat = f }

// Snapshot returns an independent copy of all of VRAM, tagged with the
// given dimensions and the current framebuffer format, consumed by a
// BlitFramebuffer host message.
func (v *VideoSubsystem) Snapshot(width, height int) FrameSnapshot {
	buf := make([]byte, len(v.vram))
	copy(buf, v.vram)
	return FrameSnapshot{VRAM: buf, Width: width, Height: height, Format: v.fbRFormat}
}

// PRAM exposes the palette RAM for 8bpp/4bpp texture decode (texture.go).
func (v *VideoSubsystem) PRAM() []byte { return v.pram[:] }
