// texture.go - Holly texture format decode.
//
// TAParser only needs enough of this to compute an upload item's
// dimensions/bpp/hash. decodeToRGBA expands a texture into an image.RGBA
// tile, but the render path does not call it: ta_hwrender.go's
// RenderVertex carries no texture.

package hollycore

import "image"

// TexFormat is the 3-bit TCW pixel format field plus the VQ-compression bit
// folded in as a distinguished "VQ variant" of the 16bpp formats.
type TexFormat int

const (
	TexARGB1555 TexFormat = iota
	TexRGB565
	TexARGB4444
	TexYUV422
	TexBumpMap
	TexPalette4BPP
	TexPalette8BPP
	TexRawRGBA128 // uncompressed diagnostic format, 128 bits/pixel
	TexVQARGB1555
	TexVQRGB565
	TexVQARGB4444
	TexVQYUV422
)

// formatBPP returns bits-per-pixel for a texture format.
func formatBPP(f TexFormat) int {
	switch f {
	case TexPalette4BPP:
		return 4
	case TexPalette8BPP:
		return 8
	case TexRawRGBA128:
		return 128
	case TexVQARGB1555, TexVQRGB565, TexVQARGB4444, TexVQYUV422:
		return 16
	default:
		return 16
	}
}

// tcwPixelFormat decodes a TCW's pixel-format field (bits 29:27) and VQ bit
// (bit 30) into a TexFormat.
func tcwPixelFormat(tcw uint32) TexFormat {
	vq := checkBit(tcw, 30)
	switch bitField(tcw, 29, 27) {
	case 0:
		if vq {
			return TexVQARGB1555
		}
		return TexARGB1555
	case 1:
		if vq {
			return TexVQRGB565
		}
		return TexRGB565
	case 2:
		if vq {
			return TexVQARGB4444
		}
		return TexARGB4444
	case 3:
		if vq {
			return TexVQYUV422
		}
		return TexYUV422
	case 4:
		return TexBumpMap
	case 5:
		return TexPalette4BPP
	case 6:
		return TexPalette8BPP
	default:
		return TexRawRGBA128
	}
}

// textureAddrFromTCW converts a TCW's 21-bit texture address field into a
// VRAM byte offset: addr = (TCW.addr & 0x1FFFFF) * 8.
func textureAddrFromTCW(tcw uint32) uint32 {
	return (tcw & 0x1FFFFF) * 8
}

// decodeToRGBA reads raw texture bytes out of VRAM and produces an
// image.RGBA atlas tile. Only ARGB1555 and RGB565 are expanded here, read
// as linear rows; every other format (ARGB4444, YUV422, bump map, raw,
// VQ and palette) falls back to a flat mid-gray tile —
// a host-GPU shim is free to replace this with real VQ/palette decode
// without changing the upload-item contract.
func decodeToRGBA(vram []byte, addr uint32, width, height int, format TexFormat) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	switch format {
	case TexARGB1555:
		decodeARGB1555(vram, addr, width, height, img)
	case TexRGB565:
		decodeRGB565(vram, addr, width, height, img)
	default:
		fillFlat(img, 128, 128, 128, 255)
	}
	return img
}

func fillFlat(img *image.RGBA, r, g, b, a uint8) {
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = r, g, b, a
	}
}

func decodeARGB1555(vram []byte, addr uint32, width, height int, img *image.RGBA) {
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			off := addr + uint32((y*width+x)*2)
			if int(off)+1 >= len(vram) {
				continue
			}
			px := uint16(vram[off]) | uint16(vram[off+1])<<8
			a := uint8(0xFF)
			if px&0x8000 == 0 {
				a = 0
			}
			r := uint8((px>>10)&0x1F) << 3
			g := uint8((px>>5)&0x1F) << 3
			b := uint8(px&0x1F) << 3
			i := img.PixOffset(x, y)
			img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = r, g, b, a
		}
	}
}

func decodeRGB565(vram []byte, addr uint32, width, height int, img *image.RGBA) {
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			off := addr + uint32((y*width+x)*2)
			if int(off)+1 >= len(vram) {
				continue
			}
			px := uint16(vram[off]) | uint16(vram[off+1])<<8
			r := uint8((px>>11)&0x1F) << 3
			g := uint8((px>>5)&0x3F) << 2
			b := uint8(px&0x1F) << 3
			i := img.PixOffset(x, y)
			img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = r, g, b, 0xFF
		}
	}
}
