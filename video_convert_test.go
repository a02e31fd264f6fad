// video_convert_test.go - per-format framebuffer unpack, one pixel per
// format, chosen to land on distinct non-zero channel values.

package hollycore

import (
	"image"
	"testing"
)

func TestFramebufferToRGBAFormats(t *testing.T) {
	cases := []struct {
		name   string
		format PixelFormat
		vram   []byte
		wantR  byte
		wantG  byte
		wantB  byte
	}{
		{
			// RGB555 0b11111_00000_00011 -> R=0xF8 G=0x00 B=0x18
			name: "RGB555", format: FormatRGB555,
			vram: []byte{0x03, 0x7C}, wantR: 0xF8, wantG: 0x00, wantB: 0x18,
		},
		{
			// RGB565 0b11111_000000_00011 -> R=0xF8 G=0x00 B=0x18
			name: "RGB565", format: FormatRGB565,
			vram: []byte{0x03, 0xF8}, wantR: 0xF8, wantG: 0x00, wantB: 0x18,
		},
		{
			name: "RGB888Packed", format: FormatRGB888Packed,
			vram: []byte{0x10, 0x20, 0x30}, wantR: 0x30, wantG: 0x20, wantB: 0x10,
		},
		{
			name: "RGB0888", format: FormatRGB0888,
			vram: []byte{0x10, 0x20, 0x30, 0x00}, wantR: 0x30, wantG: 0x20, wantB: 0x10,
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			snap := FrameSnapshot{VRAM: c.vram, Width: 1, Height: 1, Format: c.format}
			out := framebufferToRGBA(snap)
			if len(out) != 4 {
				t.Fatalf("out len = %d, want 4", len(out))
			}
			if out[0] != c.wantR || out[1] != c.wantG || out[2] != c.wantB || out[3] != 0xFF {
				t.Fatalf("got RGBA=%v, want R=%#x G=%#x B=%#x A=0xFF", out, c.wantR, c.wantG, c.wantB)
			}
		})
	}
}

func TestFramebufferToRGBATruncatedVRAMStopsEarly(t *testing.T) {
	snap := FrameSnapshot{VRAM: []byte{0x00}, Width: 4, Height: 4, Format: FormatRGB555}
	out := framebufferToRGBA(snap)
	if len(out) != 4*4*4 {
		t.Fatalf("out len = %d, want %d", len(out), 4*4*4)
	}
	for i, b := range out {
		if b != 0 {
			t.Fatalf("out[%d] = %#x, want 0 (short VRAM should leave the rest zeroed)", i, b)
		}
	}
}

func TestFrameToImageMatchesUnpackedBytes(t *testing.T) {
	snap := FrameSnapshot{VRAM: []byte{0x10, 0x20, 0x30, 0x00}, Width: 1, Height: 1, Format: FormatRGB0888}
	img := FrameToImage(snap)
	if img.Bounds().Dx() != 1 || img.Bounds().Dy() != 1 {
		t.Fatalf("image size = %v, want 1x1", img.Bounds())
	}
	want := framebufferToRGBA(snap)
	for i, b := range want {
		if img.Pix[i] != b {
			t.Fatalf("img.Pix[%d] = %#x, want %#x", i, img.Pix[i], b)
		}
	}
}

func TestScaleToResolutionChangesDimensionsAndPreservesSolidColor(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 2, 2))
	for i := 0; i < len(src.Pix); i += 4 {
		src.Pix[i], src.Pix[i+1], src.Pix[i+2], src.Pix[i+3] = 0x40, 0x80, 0xC0, 0xFF
	}
	dst := ScaleToResolution(src, 8, 8)
	if dst.Bounds().Dx() != 8 || dst.Bounds().Dy() != 8 {
		t.Fatalf("scaled size = %v, want 8x8", dst.Bounds())
	}
	c := dst.RGBAAt(4, 4)
	if c.R != 0x40 || c.G != 0x80 || c.B != 0xC0 {
		t.Fatalf("scaled solid-color pixel = %+v, want R=0x40 G=0x80 B=0xC0 (resampling a flat field should not shift color)", c)
	}
}
