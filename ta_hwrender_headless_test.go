//go:build headless

// ta_hwrender_headless_test.go - the headless VulkanRenderBackend wrapper
// delegates to SoftwareRenderBackend unchanged.

package hollycore

import "testing"

func TestVulkanRenderBackendHeadlessDelegatesToSoftware(t *testing.T) {
	vb := NewVulkanRenderBackend()
	if err := vb.Init(2, 2); err != nil {
		t.Fatalf("Init: %v", err)
	}
	verts := []RenderVertex{
		{X: -2, Y: -2, Z: 0.1, R: 1, G: 0, B: 0, A: 1},
		{X: 2, Y: -2, Z: 0.1, R: 1, G: 0, B: 0, A: 1},
		{X: 0, Y: 2, Z: 0.1, R: 1, G: 0, B: 0, A: 1},
	}
	if err := vb.FlushTriangles(verts); err != nil {
		t.Fatalf("FlushTriangles: %v", err)
	}
	frame := vb.GetFrame()
	if len(frame) != 2*2*4 {
		t.Fatalf("frame len = %d, want %d", len(frame), 2*2*4)
	}
	vb.Destroy()
}
