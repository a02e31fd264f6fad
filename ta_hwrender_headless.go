//go:build headless

// ta_hwrender_headless.go - headless builds skip Vulkan entirely and
// rasterize with SoftwareRenderBackend directly, grounded on
// voodoo_vulkan_headless.go's same-name-wrapper trick: keep the type
// name callers expect (VulkanRenderBackend) but implement it with the
// software path only, so the rest of the codebase compiles unchanged.

package hollycore

func init() { compiledFeatures = append(compiledFeatures, "render:software") }

type VulkanRenderBackend struct {
	software *SoftwareRenderBackend
}

func NewVulkanRenderBackend() *VulkanRenderBackend {
	return &VulkanRenderBackend{software: NewSoftwareRenderBackend()}
}

func (vb *VulkanRenderBackend) Init(width, height int) error {
	return vb.software.Init(width, height)
}

func (vb *VulkanRenderBackend) FlushTriangles(verts []RenderVertex) error {
	return vb.software.FlushTriangles(verts)
}

func (vb *VulkanRenderBackend) GetFrame() []byte { return vb.software.GetFrame() }

func (vb *VulkanRenderBackend) Destroy() { vb.software.Destroy() }
