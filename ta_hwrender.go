// ta_hwrender.go - hardware-raster entry point: converts a committed
// DisplayList into the flat vertex/index buffers a GPU backend consumes.
//
// Grounded on voodoo_vulkan.go's VulkanBackend/VoodooSoftwareBackend pair:
// one interface both backends satisfy (Init/FlushTriangles/GetFrame/
// Destroy), a software path always available, and a hardware path that
// falls back to it when GPU init fails.

package hollycore

// RenderVertex is one GPU-ready vertex: clip-space position plus a
// straight (non-premultiplied) RGBA color. Texture sampling is out of
// scope for the first hardware path (texture.go's VQ/palette decode
// already falls back to flat gray; see DESIGN.md).
type RenderVertex struct {
	X, Y, Z float32
	R, G, B, A float32
}

// RenderBackend is the interface both the Vulkan and software rasterizer
// implementations satisfy.
type RenderBackend interface {
	Init(width, height int) error
	FlushTriangles(verts []RenderVertex) error
	GetFrame() []byte
	Destroy()
}

// BuildRenderVertices flattens a committed DisplayList's polygon strips
// into an independent triangle list (fan-triangulated per strip, since
// Holly's strips are already fan/strip order coming out of
// display_list.go), ready for FlushTriangles.
func BuildRenderVertices(list DisplayList) []RenderVertex {
	var out []RenderVertex
	for _, item := range list.Items {
		if item.StripLength < 3 {
			continue
		}
		base := item.StartVertex
		for i := 2; i < item.StripLength; i++ {
			// Triangle strip winding: even i keeps order, odd i swaps the
			// last two vertices to preserve a consistent front face.
			var a, b, c int
			if i%2 == 0 {
				a, b, c = base, base+i-1, base+i
			} else {
				a, b, c = base, base+i, base+i-1
			}
			out = append(out,
				renderVertexFromDisplay(list.Vertices[a]),
				renderVertexFromDisplay(list.Vertices[b]),
				renderVertexFromDisplay(list.Vertices[c]),
			)
		}
	}
	return out
}

func renderVertexFromDisplay(v Vertex) RenderVertex {
	return RenderVertex{
		X: v.X, Y: v.Y, Z: v.Z,
		R: float32(v.Color.R) / 255, G: float32(v.Color.G) / 255,
		B: float32(v.Color.B) / 255, A: float32(v.Color.A) / 255,
	}
}
