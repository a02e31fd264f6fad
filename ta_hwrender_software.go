// ta_hwrender_software.go - CPU rasterizer used as the hardware render
// path's fallback, and as the entire render path in headless builds.
//
// Grounded on voodoo_vulkan.go's VoodooSoftwareBackend: a flat color
// buffer plus a per-pixel depth buffer, a scanline triangle fill with
// an edge-function test, and depth comparison gating each write.
// Simplified to Gouraud-shaded opaque triangles only, since
// ta_hwrender.go's RenderVertex carries no texture or blend state.

package hollycore

import (
	"math"
	"sync"
)

// SoftwareRenderBackend rasterizes RenderVertex triangles into an RGBA8888
// framebuffer entirely on the CPU. It satisfies RenderBackend on its own
// in headless builds, and backs VulkanRenderBackend's fallback path
// otherwise.
type SoftwareRenderBackend struct {
	mu            sync.Mutex
	width, height int
	color         []byte
	depth         []float32
}

func NewSoftwareRenderBackend() *SoftwareRenderBackend { return &SoftwareRenderBackend{} }

func (b *SoftwareRenderBackend) Init(width, height int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.width, b.height = width, height
	b.color = make([]byte, width*height*4)
	b.depth = make([]float32, width*height)
	b.clearLocked()
	return nil
}

func (b *SoftwareRenderBackend) clearLocked() {
	for i := 0; i < len(b.color); i += 4 {
		b.color[i], b.color[i+1], b.color[i+2], b.color[i+3] = 0, 0, 0, 255
	}
	for i := range b.depth {
		b.depth[i] = math.MaxFloat32
	}
}

// FlushTriangles rasterizes every independent triangle in verts (groups
// of three) against a freshly cleared frame.
func (b *SoftwareRenderBackend) FlushTriangles(verts []RenderVertex) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.clearLocked()
	for i := 0; i+2 < len(verts); i += 3 {
		b.rasterizeTriangle(verts[i], verts[i+1], verts[i+2])
	}
	return nil
}

func (b *SoftwareRenderBackend) rasterizeTriangle(v0, v1, v2 RenderVertex) {
	toScreenX := func(ndc float32) float32 { return (ndc + 1) * 0.5 * float32(b.width) }
	toScreenY := func(ndc float32) float32 { return (1 - ndc) * 0.5 * float32(b.height) }

	x0, y0 := toScreenX(v0.X), toScreenY(v0.Y)
	x1, y1 := toScreenX(v1.X), toScreenY(v1.Y)
	x2, y2 := toScreenX(v2.X), toScreenY(v2.Y)

	minX := clampi(int(math.Floor(float64(min3(x0, x1, x2)))), 0, b.width-1)
	maxX := clampi(int(math.Ceil(float64(max3(x0, x1, x2)))), 0, b.width-1)
	minY := clampi(int(math.Floor(float64(min3(y0, y1, y2)))), 0, b.height-1)
	maxY := clampi(int(math.Ceil(float64(max3(y0, y1, y2)))), 0, b.height-1)

	area := edgeFn(x0, y0, x1, y1, x2, y2)
	if area == 0 {
		return
	}

	for py := minY; py <= maxY; py++ {
		for px := minX; px <= maxX; px++ {
			fx, fy := float32(px)+0.5, float32(py)+0.5
			w0 := edgeFn(x1, y1, x2, y2, fx, fy) / area
			w1 := edgeFn(x2, y2, x0, y0, fx, fy) / area
			w2 := edgeFn(x0, y0, x1, y1, fx, fy) / area
			if w0 < 0 || w1 < 0 || w2 < 0 {
				continue
			}
			z := w0*v0.Z + w1*v1.Z + w2*v2.Z
			idx := py*b.width + px
			if z >= b.depth[idx] {
				continue
			}
			b.depth[idx] = z
			r := w0*v0.R + w1*v1.R + w2*v2.R
			g := w0*v0.G + w1*v1.G + w2*v2.G
			bl := w0*v0.B + w1*v1.B + w2*v2.B
			a := w0*v0.A + w1*v1.A + w2*v2.A
			o := idx * 4
			b.color[o] = toByte(r)
			b.color[o+1] = toByte(g)
			b.color[o+2] = toByte(bl)
			b.color[o+3] = toByte(a)
		}
	}
}

func (b *SoftwareRenderBackend) GetFrame() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.color
}

func (b *SoftwareRenderBackend) Destroy() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.color = nil
	b.depth = nil
}

func edgeFn(ax, ay, bx, by, cx, cy float32) float32 {
	return (cx-ax)*(by-ay) - (cy-ay)*(bx-ax)
}

func min3(a, b, c float32) float32 { return minf(a, minf(b, c)) }
func max3(a, b, c float32) float32 { return maxf(a, maxf(b, c)) }
func minf(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}
func maxf(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}
func clampi(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
func toByte(v float32) byte {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return byte(v * 255)
}
