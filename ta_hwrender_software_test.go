// ta_hwrender_software_test.go - CPU rasterizer clear state and a
// full-canvas triangle fill.

package hollycore

import "testing"

func TestSoftwareRenderBackendClearsToOpaqueBlack(t *testing.T) {
	b := NewSoftwareRenderBackend()
	if err := b.Init(4, 4); err != nil {
		t.Fatalf("Init: %v", err)
	}
	if err := b.FlushTriangles(nil); err != nil {
		t.Fatalf("FlushTriangles: %v", err)
	}
	frame := b.GetFrame()
	if len(frame) != 4*4*4 {
		t.Fatalf("frame len = %d, want %d", len(frame), 4*4*4)
	}
	for i := 0; i < len(frame); i += 4 {
		if frame[i] != 0 || frame[i+1] != 0 || frame[i+2] != 0 || frame[i+3] != 255 {
			t.Fatalf("pixel at %d = %v, want opaque black", i, frame[i:i+4])
		}
	}
}

func TestSoftwareRenderBackendFillsCoveringTriangle(t *testing.T) {
	b := NewSoftwareRenderBackend()
	if err := b.Init(4, 4); err != nil {
		t.Fatalf("Init: %v", err)
	}

	red := func(x, y, z float32) RenderVertex {
		return RenderVertex{X: x, Y: y, Z: z, R: 1, G: 0, B: 0, A: 1}
	}
	// NDC triangle large enough to cover the whole 4x4 canvas.
	verts := []RenderVertex{
		red(-2, -2, 0.1), red(2, -2, 0.1), red(0, 2, 0.1),
	}
	if err := b.FlushTriangles(verts); err != nil {
		t.Fatalf("FlushTriangles: %v", err)
	}

	frame := b.GetFrame()
	// center pixel (2,2)
	o := (2*4 + 2) * 4
	if frame[o] != 255 || frame[o+1] != 0 || frame[o+2] != 0 || frame[o+3] != 255 {
		t.Fatalf("center pixel = %v, want opaque red", frame[o:o+4])
	}
}

func TestSoftwareRenderBackendDepthTestRejectsFartherTriangle(t *testing.T) {
	b := NewSoftwareRenderBackend()
	if err := b.Init(4, 4); err != nil {
		t.Fatalf("Init: %v", err)
	}

	near := RenderVertex{X: -2, Y: -2, Z: 0.1, R: 1, G: 0, B: 0, A: 1}
	near2 := RenderVertex{X: 2, Y: -2, Z: 0.1, R: 1, G: 0, B: 0, A: 1}
	near3 := RenderVertex{X: 0, Y: 2, Z: 0.1, R: 1, G: 0, B: 0, A: 1}
	far := RenderVertex{X: -2, Y: -2, Z: 0.9, R: 0, G: 1, B: 0, A: 1}
	far2 := RenderVertex{X: 2, Y: -2, Z: 0.9, R: 0, G: 1, B: 0, A: 1}
	far3 := RenderVertex{X: 0, Y: 2, Z: 0.9, R: 0, G: 1, B: 0, A: 1}

	// far triangle drawn first, near triangle drawn second: depth test
	// must still let the nearer (smaller Z) triangle win.
	if err := b.FlushTriangles([]RenderVertex{far, far2, far3, near, near2, near3}); err != nil {
		t.Fatalf("FlushTriangles: %v", err)
	}

	frame := b.GetFrame()
	o := (2*4 + 2) * 4
	if frame[o] != 255 || frame[o+1] != 0 {
		t.Fatalf("center pixel = %v, want the nearer red triangle to win", frame[o:o+4])
	}
}
