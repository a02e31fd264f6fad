// video_convert.go - framebuffer-format decode for presentation, grounded
// on texture.go's per-format pixel unpack loops applied to a linear
// framebuffer scan instead of a texture tile.

package hollycore

import (
	"image"

	"golang.org/x/image/draw"
)

// framebufferToRGBA expands a FrameSnapshot's raw VRAM bytes at offset 0
// into a tightly packed RGBA8888 buffer sized width*height*4, the layout
// ebiten.Image.WritePixels expects.
func framebufferToRGBA(snap FrameSnapshot) []byte {
	out := make([]byte, snap.Width*snap.Height*4)
	switch snap.Format {
	case FormatRGB555:
		unpackRGB555(snap.VRAM, snap.Width, snap.Height, out)
	case FormatRGB565:
		unpackRGB565(snap.VRAM, snap.Width, snap.Height, out)
	case FormatRGB888Packed:
		unpackRGB888Packed(snap.VRAM, snap.Width, snap.Height, out)
	case FormatRGB0888:
		unpackRGB0888(snap.VRAM, snap.Width, snap.Height, out)
	}
	return out
}

func unpackRGB555(vram []byte, width, height int, out []byte) {
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			off := (y*width + x) * 2
			if off+1 >= len(vram) {
				return
			}
			px := uint16(vram[off]) | uint16(vram[off+1])<<8
			o := (y*width + x) * 4
			out[o] = uint8((px>>10)&0x1F) << 3
			out[o+1] = uint8((px>>5)&0x1F) << 3
			out[o+2] = uint8(px&0x1F) << 3
			out[o+3] = 0xFF
		}
	}
}

func unpackRGB565(vram []byte, width, height int, out []byte) {
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			off := (y*width + x) * 2
			if off+1 >= len(vram) {
				return
			}
			px := uint16(vram[off]) | uint16(vram[off+1])<<8
			o := (y*width + x) * 4
			out[o] = uint8((px>>11)&0x1F) << 3
			out[o+1] = uint8((px>>5)&0x3F) << 2
			out[o+2] = uint8(px&0x1F) << 3
			out[o+3] = 0xFF
		}
	}
}

func unpackRGB888Packed(vram []byte, width, height int, out []byte) {
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			off := (y*width + x) * 3
			if off+2 >= len(vram) {
				return
			}
			o := (y*width + x) * 4
			out[o] = vram[off+2]
			out[o+1] = vram[off+1]
			out[o+2] = vram[off]
			out[o+3] = 0xFF
		}
	}
}

func unpackRGB0888(vram []byte, width, height int, out []byte) {
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			off := (y*width + x) * 4
			if off+3 >= len(vram) {
				return
			}
			o := (y*width + x) * 4
			out[o] = vram[off+2]
			out[o+1] = vram[off+1]
			out[o+2] = vram[off]
			out[o+3] = 0xFF
		}
	}
}

// FrameToImage converts a FrameSnapshot into a standalone *image.RGBA,
// independent of the snapshot's own VRAM-backed byte slice.
func FrameToImage(snap FrameSnapshot) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, snap.Width, snap.Height))
	copy(img.Pix, framebufferToRGBA(snap))
	return img
}

// ScaleToResolution resamples src to width x height using a Catmull-Rom
// kernel, the same resampling family golang.org/x/image/draw's own example
// tools use for thumbnailing. The console's native mode (320x240, 640x480,
// interlaced or not) rarely matches a screenshot's requested output size.
func ScaleToResolution(src *image.RGBA, width, height int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)
	return dst
}
