//go:build !headless

// ta_hwrender_vulkan.go - offscreen Vulkan rasterizer for the hardware
// render path.
//
// Grounded on voodoo_vulkan.go's VulkanBackend: instance -> physical
// device -> logical device -> command pool -> offscreen color+depth
// images -> render pass -> framebuffer -> pipeline -> vertex/staging
// buffers -> command buffer -> fence, with cascading teardown on any
// init stage failing. Condensed to one fixed pipeline (no per-draw
// depth/blend variant cache, since every triangle here comes from the
// same opaque Gouraud-shaded path) and no texture sampling, matching
// ta_hwrender.go's RenderVertex contract.

package hollycore

import (
	"fmt"
	"sync"
	"unsafe"

	vk "github.com/goki/vulkan"
)

func init() { compiledFeatures = append(compiledFeatures, "render:vulkan") }

// vulkanVertex is the GPU-side vertex layout: clip-space position
// followed by straight RGBA color, matching RenderVertex field order.
type vulkanVertex struct {
	Position [3]float32
	Color    [4]float32
}

// VulkanRenderBackend rasterizes triangles offscreen and exposes the
// result as a packed RGBA8888 byte slice. Falls back to a software
// rasterizer if Vulkan initialization fails at any stage.
type VulkanRenderBackend struct {
	mutex sync.Mutex

	instance       vk.Instance
	physicalDevice vk.PhysicalDevice
	device         vk.Device
	graphicsQueue  vk.Queue
	queueFamily    uint32

	width, height    int
	colorImage       vk.Image
	colorImageMemory vk.DeviceMemory
	colorImageView   vk.ImageView
	depthImage       vk.Image
	depthImageMemory vk.DeviceMemory
	depthImageView   vk.ImageView

	renderPass  vk.RenderPass
	framebuffer vk.Framebuffer

	pipelineLayout vk.PipelineLayout
	pipeline       vk.Pipeline

	vertexBuffer       vk.Buffer
	vertexBufferMemory vk.DeviceMemory
	vertexBufferSize   vk.DeviceSize

	stagingBuffer       vk.Buffer
	stagingBufferMemory vk.DeviceMemory

	commandPool   vk.CommandPool
	commandBuffer vk.CommandBuffer
	fence         vk.Fence

	vertShaderModule vk.ShaderModule
	fragShaderModule vk.ShaderModule

	outputFrame []byte
	initialized bool
	software    *SoftwareRenderBackend
}

var vulkanLoaderInitialized bool
var vulkanLoaderMutex sync.Mutex

// NewVulkanRenderBackend returns a backend that prefers Vulkan and
// silently rasterizes on the CPU if the GPU path cannot be set up.
func NewVulkanRenderBackend() *VulkanRenderBackend {
	return &VulkanRenderBackend{software: NewSoftwareRenderBackend()}
}

func (vb *VulkanRenderBackend) Init(width, height int) error {
	vb.mutex.Lock()
	defer vb.mutex.Unlock()

	vb.width = width
	vb.height = height
	vb.outputFrame = make([]byte, width*height*4)

	if err := vb.software.Init(width, height); err != nil {
		return err
	}

	if err := vb.initVulkan(); err != nil {
		vb.initialized = false
		return nil
	}
	vb.initialized = true
	return nil
}

func (vb *VulkanRenderBackend) initVulkan() error {
	vulkanLoaderMutex.Lock()
	defer vulkanLoaderMutex.Unlock()

	if !vulkanLoaderInitialized {
		if err := vk.SetDefaultGetInstanceProcAddr(); err != nil {
			return fmt.Errorf("failed to load vulkan library: %w", err)
		}
		if err := vk.Init(); err != nil {
			return fmt.Errorf("failed to initialize vulkan loader: %w", err)
		}
		vulkanLoaderInitialized = true
	}

	if err := vb.createInstance(); err != nil {
		return fmt.Errorf("create instance: %w", err)
	}
	if err := vb.selectPhysicalDevice(); err != nil {
		vb.destroyInstance()
		return fmt.Errorf("select physical device: %w", err)
	}
	if err := vb.createDevice(); err != nil {
		vb.destroyInstance()
		return fmt.Errorf("create device: %w", err)
	}
	if err := vb.createCommandPool(); err != nil {
		vb.destroyDevice()
		vb.destroyInstance()
		return fmt.Errorf("create command pool: %w", err)
	}
	if err := vb.createOffscreenImages(); err != nil {
		vb.destroyCommandPool()
		vb.destroyDevice()
		vb.destroyInstance()
		return fmt.Errorf("create offscreen images: %w", err)
	}
	if err := vb.createRenderPass(); err != nil {
		vb.destroyOffscreenImages()
		vb.destroyCommandPool()
		vb.destroyDevice()
		vb.destroyInstance()
		return fmt.Errorf("create render pass: %w", err)
	}
	if err := vb.createFramebuffer(); err != nil {
		vb.destroyRenderPass()
		vb.destroyOffscreenImages()
		vb.destroyCommandPool()
		vb.destroyDevice()
		vb.destroyInstance()
		return fmt.Errorf("create framebuffer: %w", err)
	}
	if err := vb.createPipeline(); err != nil {
		vb.destroyFramebuffer()
		vb.destroyRenderPass()
		vb.destroyOffscreenImages()
		vb.destroyCommandPool()
		vb.destroyDevice()
		vb.destroyInstance()
		return fmt.Errorf("create pipeline: %w", err)
	}
	if err := vb.createVertexBuffer(); err != nil {
		vb.destroyPipeline()
		vb.destroyFramebuffer()
		vb.destroyRenderPass()
		vb.destroyOffscreenImages()
		vb.destroyCommandPool()
		vb.destroyDevice()
		vb.destroyInstance()
		return fmt.Errorf("create vertex buffer: %w", err)
	}
	if err := vb.createStagingBuffer(); err != nil {
		vb.destroyVertexBuffer()
		vb.destroyPipeline()
		vb.destroyFramebuffer()
		vb.destroyRenderPass()
		vb.destroyOffscreenImages()
		vb.destroyCommandPool()
		vb.destroyDevice()
		vb.destroyInstance()
		return fmt.Errorf("create staging buffer: %w", err)
	}
	if err := vb.createCommandBuffer(); err != nil {
		vb.destroyStagingBuffer()
		vb.destroyVertexBuffer()
		vb.destroyPipeline()
		vb.destroyFramebuffer()
		vb.destroyRenderPass()
		vb.destroyOffscreenImages()
		vb.destroyCommandPool()
		vb.destroyDevice()
		vb.destroyInstance()
		return fmt.Errorf("create command buffer: %w", err)
	}
	if err := vb.createFence(); err != nil {
		vb.destroyStagingBuffer()
		vb.destroyVertexBuffer()
		vb.destroyPipeline()
		vb.destroyFramebuffer()
		vb.destroyRenderPass()
		vb.destroyOffscreenImages()
		vb.destroyCommandPool()
		vb.destroyDevice()
		vb.destroyInstance()
		return fmt.Errorf("create fence: %w", err)
	}
	return nil
}

func (vb *VulkanRenderBackend) createInstance() error {
	appInfo := vk.ApplicationInfo{
		SType:              vk.StructureTypeApplicationInfo,
		PApplicationName:   safeCString("hollycore"),
		ApplicationVersion: vk.MakeVersion(1, 0, 0),
		PEngineName:        safeCString("hollycore-render"),
		EngineVersion:      vk.MakeVersion(1, 0, 0),
		ApiVersion:         vk.MakeVersion(1, 1, 0),
	}
	createInfo := vk.InstanceCreateInfo{
		SType:            vk.StructureTypeInstanceCreateInfo,
		PApplicationInfo: &appInfo,
	}
	var instance vk.Instance
	if res := vk.CreateInstance(&createInfo, nil, &instance); res != vk.Success {
		return fmt.Errorf("vkCreateInstance failed: %d", res)
	}
	vb.instance = instance
	vk.InitInstance(instance)
	return nil
}

func (vb *VulkanRenderBackend) selectPhysicalDevice() error {
	var deviceCount uint32
	vk.EnumeratePhysicalDevices(vb.instance, &deviceCount, nil)
	if deviceCount == 0 {
		return fmt.Errorf("no vulkan-capable GPUs found")
	}
	devices := make([]vk.PhysicalDevice, deviceCount)
	vk.EnumeratePhysicalDevices(vb.instance, &deviceCount, devices)

	for _, device := range devices {
		var queueFamilyCount uint32
		vk.GetPhysicalDeviceQueueFamilyProperties(device, &queueFamilyCount, nil)
		queueFamilies := make([]vk.QueueFamilyProperties, queueFamilyCount)
		vk.GetPhysicalDeviceQueueFamilyProperties(device, &queueFamilyCount, queueFamilies)
		for i, qf := range queueFamilies {
			qf.Deref()
			if qf.QueueFlags&vk.QueueFlags(vk.QueueGraphicsBit) != 0 {
				vb.physicalDevice = device
				vb.queueFamily = uint32(i)
				return nil
			}
		}
	}
	return fmt.Errorf("no suitable GPU with a graphics queue found")
}

func (vb *VulkanRenderBackend) createDevice() error {
	priority := float32(1.0)
	queueInfo := vk.DeviceQueueCreateInfo{
		SType:            vk.StructureTypeDeviceQueueCreateInfo,
		QueueFamilyIndex: vb.queueFamily,
		QueueCount:       1,
		PQueuePriorities: []float32{priority},
	}
	deviceInfo := vk.DeviceCreateInfo{
		SType:                vk.StructureTypeDeviceCreateInfo,
		QueueCreateInfoCount: 1,
		PQueueCreateInfos:    []vk.DeviceQueueCreateInfo{queueInfo},
	}
	var device vk.Device
	if res := vk.CreateDevice(vb.physicalDevice, &deviceInfo, nil, &device); res != vk.Success {
		return fmt.Errorf("vkCreateDevice failed: %d", res)
	}
	vb.device = device
	var queue vk.Queue
	vk.GetDeviceQueue(device, vb.queueFamily, 0, &queue)
	vb.graphicsQueue = queue
	return nil
}

func (vb *VulkanRenderBackend) createCommandPool() error {
	poolInfo := vk.CommandPoolCreateInfo{
		SType:            vk.StructureTypeCommandPoolCreateInfo,
		QueueFamilyIndex: vb.queueFamily,
		Flags:            vk.CommandPoolCreateFlags(vk.CommandPoolCreateResetCommandBufferBit),
	}
	var pool vk.CommandPool
	if res := vk.CreateCommandPool(vb.device, &poolInfo, nil, &pool); res != vk.Success {
		return fmt.Errorf("vkCreateCommandPool failed: %d", res)
	}
	vb.commandPool = pool
	return nil
}

func (vb *VulkanRenderBackend) createOffscreenImages() error {
	colorInfo := vk.ImageCreateInfo{
		SType:         vk.StructureTypeImageCreateInfo,
		ImageType:     vk.ImageType2d,
		Format:        vk.FormatR8g8b8a8Unorm,
		Extent:        vk.Extent3D{Width: uint32(vb.width), Height: uint32(vb.height), Depth: 1},
		MipLevels:     1,
		ArrayLayers:   1,
		Samples:       vk.SampleCount1Bit,
		Tiling:        vk.ImageTilingOptimal,
		Usage:         vk.ImageUsageFlags(vk.ImageUsageColorAttachmentBit | vk.ImageUsageTransferSrcBit),
		InitialLayout: vk.ImageLayoutUndefined,
	}
	var colorImage vk.Image
	if res := vk.CreateImage(vb.device, &colorInfo, nil, &colorImage); res != vk.Success {
		return fmt.Errorf("vkCreateImage (color) failed: %d", res)
	}
	vb.colorImage = colorImage

	var memReqs vk.MemoryRequirements
	vk.GetImageMemoryRequirements(vb.device, colorImage, &memReqs)
	memReqs.Deref()
	memType, err := vb.findMemoryType(memReqs.MemoryTypeBits, vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit))
	if err != nil {
		return err
	}
	allocInfo := vk.MemoryAllocateInfo{SType: vk.StructureTypeMemoryAllocateInfo, AllocationSize: memReqs.Size, MemoryTypeIndex: memType}
	var colorMem vk.DeviceMemory
	if res := vk.AllocateMemory(vb.device, &allocInfo, nil, &colorMem); res != vk.Success {
		return fmt.Errorf("vkAllocateMemory (color) failed: %d", res)
	}
	vb.colorImageMemory = colorMem
	vk.BindImageMemory(vb.device, colorImage, colorMem, 0)

	colorViewInfo := vk.ImageViewCreateInfo{
		SType:    vk.StructureTypeImageViewCreateInfo,
		Image:    colorImage,
		ViewType: vk.ImageViewType2d,
		Format:   vk.FormatR8g8b8a8Unorm,
		SubresourceRange: vk.ImageSubresourceRange{
			AspectMask: vk.ImageAspectFlags(vk.ImageAspectColorBit), LevelCount: 1, LayerCount: 1,
		},
	}
	var colorView vk.ImageView
	if res := vk.CreateImageView(vb.device, &colorViewInfo, nil, &colorView); res != vk.Success {
		return fmt.Errorf("vkCreateImageView (color) failed: %d", res)
	}
	vb.colorImageView = colorView

	depthFormat := vk.FormatD32Sfloat
	depthInfo := vk.ImageCreateInfo{
		SType:         vk.StructureTypeImageCreateInfo,
		ImageType:     vk.ImageType2d,
		Format:        depthFormat,
		Extent:        vk.Extent3D{Width: uint32(vb.width), Height: uint32(vb.height), Depth: 1},
		MipLevels:     1,
		ArrayLayers:   1,
		Samples:       vk.SampleCount1Bit,
		Tiling:        vk.ImageTilingOptimal,
		Usage:         vk.ImageUsageFlags(vk.ImageUsageDepthStencilAttachmentBit),
		InitialLayout: vk.ImageLayoutUndefined,
	}
	var depthImage vk.Image
	if res := vk.CreateImage(vb.device, &depthInfo, nil, &depthImage); res != vk.Success {
		return fmt.Errorf("vkCreateImage (depth) failed: %d", res)
	}
	vb.depthImage = depthImage

	vk.GetImageMemoryRequirements(vb.device, depthImage, &memReqs)
	memReqs.Deref()
	memType, err = vb.findMemoryType(memReqs.MemoryTypeBits, vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit))
	if err != nil {
		return err
	}
	depthAlloc := vk.MemoryAllocateInfo{SType: vk.StructureTypeMemoryAllocateInfo, AllocationSize: memReqs.Size, MemoryTypeIndex: memType}
	var depthMem vk.DeviceMemory
	if res := vk.AllocateMemory(vb.device, &depthAlloc, nil, &depthMem); res != vk.Success {
		return fmt.Errorf("vkAllocateMemory (depth) failed: %d", res)
	}
	vb.depthImageMemory = depthMem
	vk.BindImageMemory(vb.device, depthImage, depthMem, 0)

	depthViewInfo := vk.ImageViewCreateInfo{
		SType:    vk.StructureTypeImageViewCreateInfo,
		Image:    depthImage,
		ViewType: vk.ImageViewType2d,
		Format:   depthFormat,
		SubresourceRange: vk.ImageSubresourceRange{
			AspectMask: vk.ImageAspectFlags(vk.ImageAspectDepthBit), LevelCount: 1, LayerCount: 1,
		},
	}
	var depthView vk.ImageView
	if res := vk.CreateImageView(vb.device, &depthViewInfo, nil, &depthView); res != vk.Success {
		return fmt.Errorf("vkCreateImageView (depth) failed: %d", res)
	}
	vb.depthImageView = depthView
	return nil
}

func (vb *VulkanRenderBackend) createRenderPass() error {
	colorAttachment := vk.AttachmentDescription{
		Format: vk.FormatR8g8b8a8Unorm, Samples: vk.SampleCount1Bit,
		LoadOp: vk.AttachmentLoadOpClear, StoreOp: vk.AttachmentStoreOpStore,
		StencilLoadOp: vk.AttachmentLoadOpDontCare, StencilStoreOp: vk.AttachmentStoreOpDontCare,
		InitialLayout: vk.ImageLayoutUndefined, FinalLayout: vk.ImageLayoutTransferSrcOptimal,
	}
	depthAttachment := vk.AttachmentDescription{
		Format: vk.FormatD32Sfloat, Samples: vk.SampleCount1Bit,
		LoadOp: vk.AttachmentLoadOpClear, StoreOp: vk.AttachmentStoreOpDontCare,
		StencilLoadOp: vk.AttachmentLoadOpDontCare, StencilStoreOp: vk.AttachmentStoreOpDontCare,
		InitialLayout: vk.ImageLayoutUndefined, FinalLayout: vk.ImageLayoutDepthStencilAttachmentOptimal,
	}
	colorRef := vk.AttachmentReference{Attachment: 0, Layout: vk.ImageLayoutColorAttachmentOptimal}
	depthRef := vk.AttachmentReference{Attachment: 1, Layout: vk.ImageLayoutDepthStencilAttachmentOptimal}
	subpass := vk.SubpassDescription{
		PipelineBindPoint: vk.PipelineBindPointGraphics, ColorAttachmentCount: 1,
		PColorAttachments: []vk.AttachmentReference{colorRef}, PDepthStencilAttachment: &depthRef,
	}
	passInfo := vk.RenderPassCreateInfo{
		SType: vk.StructureTypeRenderPassCreateInfo, AttachmentCount: 2,
		PAttachments: []vk.AttachmentDescription{colorAttachment, depthAttachment},
		SubpassCount: 1, PSubpasses: []vk.SubpassDescription{subpass},
	}
	var pass vk.RenderPass
	if res := vk.CreateRenderPass(vb.device, &passInfo, nil, &pass); res != vk.Success {
		return fmt.Errorf("vkCreateRenderPass failed: %d", res)
	}
	vb.renderPass = pass
	return nil
}

func (vb *VulkanRenderBackend) createFramebuffer() error {
	attachments := []vk.ImageView{vb.colorImageView, vb.depthImageView}
	fbInfo := vk.FramebufferCreateInfo{
		SType: vk.StructureTypeFramebufferCreateInfo, RenderPass: vb.renderPass,
		AttachmentCount: uint32(len(attachments)), PAttachments: attachments,
		Width: uint32(vb.width), Height: uint32(vb.height), Layers: 1,
	}
	var fb vk.Framebuffer
	if res := vk.CreateFramebuffer(vb.device, &fbInfo, nil, &fb); res != vk.Success {
		return fmt.Errorf("vkCreateFramebuffer failed: %d", res)
	}
	vb.framebuffer = fb
	return nil
}

// createPipeline builds the single fixed graphics pipeline: depth test
// enabled (LESS), no blending, no per-draw variants. Requires the
// vertex/fragment SPIR-V bytecode declared in ta_hwrender_shaders.go;
// see that file's header for why it is currently empty, which makes
// this stage (and so the whole Vulkan path) fail closed to the
// software backend.
func (vb *VulkanRenderBackend) createPipeline() error {
	vertModule, err := vb.createShaderModule(renderVertexShaderSPIRV)
	if err != nil {
		return fmt.Errorf("vertex shader module: %w", err)
	}
	vb.vertShaderModule = vertModule

	fragModule, err := vb.createShaderModule(renderFragmentShaderSPIRV)
	if err != nil {
		vk.DestroyShaderModule(vb.device, vertModule, nil)
		return fmt.Errorf("fragment shader module: %w", err)
	}
	vb.fragShaderModule = fragModule

	layoutInfo := vk.PipelineLayoutCreateInfo{SType: vk.StructureTypePipelineLayoutCreateInfo}
	var layout vk.PipelineLayout
	if res := vk.CreatePipelineLayout(vb.device, &layoutInfo, nil, &layout); res != vk.Success {
		return fmt.Errorf("vkCreatePipelineLayout failed: %d", res)
	}
	vb.pipelineLayout = layout

	vertStage := vk.PipelineShaderStageCreateInfo{
		SType: vk.StructureTypePipelineShaderStageCreateInfo, Stage: vk.ShaderStageVertexBit,
		Module: vb.vertShaderModule, PName: safeCString("main"),
	}
	fragStage := vk.PipelineShaderStageCreateInfo{
		SType: vk.StructureTypePipelineShaderStageCreateInfo, Stage: vk.ShaderStageFragmentBit,
		Module: vb.fragShaderModule, PName: safeCString("main"),
	}
	stages := []vk.PipelineShaderStageCreateInfo{vertStage, fragStage}

	binding := vk.VertexInputBindingDescription{Binding: 0, Stride: uint32(unsafe.Sizeof(vulkanVertex{})), InputRate: vk.VertexInputRateVertex}
	attrs := []vk.VertexInputAttributeDescription{
		{Location: 0, Binding: 0, Format: vk.FormatR32g32b32Sfloat, Offset: 0},
		{Location: 1, Binding: 0, Format: vk.FormatR32g32b32a32Sfloat, Offset: uint32(unsafe.Offsetof(vulkanVertex{}.Color))},
	}
	vertexInput := vk.PipelineVertexInputStateCreateInfo{
		SType: vk.StructureTypePipelineVertexInputStateCreateInfo,
		VertexBindingDescriptionCount: 1, PVertexBindingDescriptions: []vk.VertexInputBindingDescription{binding},
		VertexAttributeDescriptionCount: uint32(len(attrs)), PVertexAttributeDescriptions: attrs,
	}
	inputAssembly := vk.PipelineInputAssemblyStateCreateInfo{
		SType: vk.StructureTypePipelineInputAssemblyStateCreateInfo, Topology: vk.PrimitiveTopologyTriangleList,
	}
	viewport := vk.Viewport{Width: float32(vb.width), Height: float32(vb.height), MinDepth: 0, MaxDepth: 1}
	scissorRect := vk.Rect2D{Extent: vk.Extent2D{Width: uint32(vb.width), Height: uint32(vb.height)}}
	viewportState := vk.PipelineViewportStateCreateInfo{
		SType: vk.StructureTypePipelineViewportStateCreateInfo, ViewportCount: 1,
		PViewports: []vk.Viewport{viewport}, ScissorCount: 1, PScissors: []vk.Rect2D{scissorRect},
	}
	rasterizer := vk.PipelineRasterizationStateCreateInfo{
		SType: vk.StructureTypePipelineRasterizationStateCreateInfo, PolygonMode: vk.PolygonModeFill,
		CullMode: vk.CullModeFlags(vk.CullModeNone), FrontFace: vk.FrontFaceCounterClockwise, LineWidth: 1.0,
	}
	multisample := vk.PipelineMultisampleStateCreateInfo{
		SType: vk.StructureTypePipelineMultisampleStateCreateInfo, RasterizationSamples: vk.SampleCount1Bit, MinSampleShading: 1.0,
	}
	depthStencil := vk.PipelineDepthStencilStateCreateInfo{
		SType: vk.StructureTypePipelineDepthStencilStateCreateInfo, DepthTestEnable: vk.True,
		DepthWriteEnable: vk.True, DepthCompareOp: vk.CompareOpLess,
	}
	colorBlendAttachment := vk.PipelineColorBlendAttachmentState{
		ColorWriteMask: vk.ColorComponentFlags(vk.ColorComponentRBit | vk.ColorComponentGBit | vk.ColorComponentBBit | vk.ColorComponentABit),
	}
	colorBlend := vk.PipelineColorBlendStateCreateInfo{
		SType: vk.StructureTypePipelineColorBlendStateCreateInfo, AttachmentCount: 1,
		PAttachments: []vk.PipelineColorBlendAttachmentState{colorBlendAttachment},
	}
	dynamicStates := []vk.DynamicState{vk.DynamicStateScissor}
	dynamicState := vk.PipelineDynamicStateCreateInfo{
		SType: vk.StructureTypePipelineDynamicStateCreateInfo, DynamicStateCount: uint32(len(dynamicStates)), PDynamicStates: dynamicStates,
	}

	pipelineInfo := vk.GraphicsPipelineCreateInfo{
		SType: vk.StructureTypeGraphicsPipelineCreateInfo, StageCount: uint32(len(stages)), PStages: stages,
		PVertexInputState: &vertexInput, PInputAssemblyState: &inputAssembly, PViewportState: &viewportState,
		PRasterizationState: &rasterizer, PMultisampleState: &multisample, PDepthStencilState: &depthStencil,
		PColorBlendState: &colorBlend, PDynamicState: &dynamicState, Layout: vb.pipelineLayout, RenderPass: vb.renderPass,
	}
	pipelines := make([]vk.Pipeline, 1)
	if res := vk.CreateGraphicsPipelines(vb.device, vk.PipelineCache(vk.NullHandle), 1, []vk.GraphicsPipelineCreateInfo{pipelineInfo}, nil, pipelines); res != vk.Success {
		return fmt.Errorf("vkCreateGraphicsPipelines failed: %d", res)
	}
	vb.pipeline = pipelines[0]
	return nil
}

func (vb *VulkanRenderBackend) createShaderModule(code []byte) (vk.ShaderModule, error) {
	if len(code) == 0 {
		return vk.NullShaderModule, fmt.Errorf("no SPIR-V bytecode embedded")
	}
	createInfo := vk.ShaderModuleCreateInfo{SType: vk.StructureTypeShaderModuleCreateInfo, CodeSize: uint64(len(code)), PCode: sliceToUint32(code)}
	var module vk.ShaderModule
	if res := vk.CreateShaderModule(vb.device, &createInfo, nil, &module); res != vk.Success {
		return vk.NullShaderModule, fmt.Errorf("vkCreateShaderModule failed: %d", res)
	}
	return module, nil
}

func (vb *VulkanRenderBackend) createVertexBuffer() error {
	vb.vertexBufferSize = vk.DeviceSize(renderMaxBatchVertices * int(unsafe.Sizeof(vulkanVertex{})))
	bufferInfo := vk.BufferCreateInfo{
		SType: vk.StructureTypeBufferCreateInfo, Size: vb.vertexBufferSize,
		Usage: vk.BufferUsageFlags(vk.BufferUsageVertexBufferBit), SharingMode: vk.SharingModeExclusive,
	}
	var buffer vk.Buffer
	if res := vk.CreateBuffer(vb.device, &bufferInfo, nil, &buffer); res != vk.Success {
		return fmt.Errorf("vkCreateBuffer (vertex) failed: %d", res)
	}
	vb.vertexBuffer = buffer

	var memReqs vk.MemoryRequirements
	vk.GetBufferMemoryRequirements(vb.device, buffer, &memReqs)
	memReqs.Deref()
	memType, err := vb.findMemoryType(memReqs.MemoryTypeBits, vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit|vk.MemoryPropertyHostCoherentBit))
	if err != nil {
		return err
	}
	allocInfo := vk.MemoryAllocateInfo{SType: vk.StructureTypeMemoryAllocateInfo, AllocationSize: memReqs.Size, MemoryTypeIndex: memType}
	var memory vk.DeviceMemory
	if res := vk.AllocateMemory(vb.device, &allocInfo, nil, &memory); res != vk.Success {
		return fmt.Errorf("vkAllocateMemory (vertex) failed: %d", res)
	}
	vb.vertexBufferMemory = memory
	vk.BindBufferMemory(vb.device, buffer, memory, 0)
	return nil
}

func (vb *VulkanRenderBackend) createStagingBuffer() error {
	size := vk.DeviceSize(vb.width * vb.height * 4)
	bufferInfo := vk.BufferCreateInfo{
		SType: vk.StructureTypeBufferCreateInfo, Size: size,
		Usage: vk.BufferUsageFlags(vk.BufferUsageTransferDstBit), SharingMode: vk.SharingModeExclusive,
	}
	var buffer vk.Buffer
	if res := vk.CreateBuffer(vb.device, &bufferInfo, nil, &buffer); res != vk.Success {
		return fmt.Errorf("vkCreateBuffer (staging) failed: %d", res)
	}
	vb.stagingBuffer = buffer

	var memReqs vk.MemoryRequirements
	vk.GetBufferMemoryRequirements(vb.device, buffer, &memReqs)
	memReqs.Deref()
	memType, err := vb.findMemoryType(memReqs.MemoryTypeBits, vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit|vk.MemoryPropertyHostCoherentBit))
	if err != nil {
		return err
	}
	allocInfo := vk.MemoryAllocateInfo{SType: vk.StructureTypeMemoryAllocateInfo, AllocationSize: memReqs.Size, MemoryTypeIndex: memType}
	var memory vk.DeviceMemory
	if res := vk.AllocateMemory(vb.device, &allocInfo, nil, &memory); res != vk.Success {
		return fmt.Errorf("vkAllocateMemory (staging) failed: %d", res)
	}
	vb.stagingBufferMemory = memory
	vk.BindBufferMemory(vb.device, buffer, memory, 0)
	return nil
}

func (vb *VulkanRenderBackend) createCommandBuffer() error {
	allocInfo := vk.CommandBufferAllocateInfo{
		SType: vk.StructureTypeCommandBufferAllocateInfo, CommandPool: vb.commandPool,
		Level: vk.CommandBufferLevelPrimary, CommandBufferCount: 1,
	}
	buffers := make([]vk.CommandBuffer, 1)
	if res := vk.AllocateCommandBuffers(vb.device, &allocInfo, buffers); res != vk.Success {
		return fmt.Errorf("vkAllocateCommandBuffers failed: %d", res)
	}
	vb.commandBuffer = buffers[0]
	return nil
}

func (vb *VulkanRenderBackend) createFence() error {
	fenceInfo := vk.FenceCreateInfo{SType: vk.StructureTypeFenceCreateInfo, Flags: vk.FenceCreateFlags(vk.FenceCreateSignaledBit)}
	var fence vk.Fence
	if res := vk.CreateFence(vb.device, &fenceInfo, nil, &fence); res != vk.Success {
		return fmt.Errorf("vkCreateFence failed: %d", res)
	}
	vb.fence = fence
	return nil
}

func (vb *VulkanRenderBackend) findMemoryType(typeFilter uint32, properties vk.MemoryPropertyFlags) (uint32, error) {
	var memProps vk.PhysicalDeviceMemoryProperties
	vk.GetPhysicalDeviceMemoryProperties(vb.physicalDevice, &memProps)
	memProps.Deref()
	for i := uint32(0); i < memProps.MemoryTypeCount; i++ {
		memProps.MemoryTypes[i].Deref()
		if (typeFilter&(1<<i)) != 0 && (memProps.MemoryTypes[i].PropertyFlags&properties) == properties {
			return i, nil
		}
	}
	return 0, fmt.Errorf("no suitable memory type found")
}

// FlushTriangles uploads a batch of already-triangulated vertices and
// renders one offscreen frame. Always mirrors into the software
// backend so GetFrame has something to return if Vulkan is unavailable.
func (vb *VulkanRenderBackend) FlushTriangles(verts []RenderVertex) error {
	vb.mutex.Lock()
	defer vb.mutex.Unlock()

	vb.software.FlushTriangles(verts)
	if !vb.initialized {
		return nil
	}
	if len(verts) == 0 {
		return nil
	}
	if len(verts) > renderMaxBatchVertices {
		return fmt.Errorf("vulkan render: batch of %d vertices exceeds cap %d", len(verts), renderMaxBatchVertices)
	}

	gpuVerts := make([]vulkanVertex, len(verts))
	for i, v := range verts {
		gpuVerts[i] = vulkanVertex{Position: [3]float32{v.X, v.Y, v.Z}, Color: [4]float32{v.R, v.G, v.B, v.A}}
	}

	var data unsafe.Pointer
	vk.MapMemory(vb.device, vb.vertexBufferMemory, 0, vk.DeviceSize(len(gpuVerts)*int(unsafe.Sizeof(vulkanVertex{}))), 0, &data)
	vk.Memcopy(data, vulkanVerticesToBytes(gpuVerts))
	vk.UnmapMemory(vb.device, vb.vertexBufferMemory)

	vk.WaitForFences(vb.device, 1, []vk.Fence{vb.fence}, vk.True, ^uint64(0))
	vk.ResetFences(vb.device, 1, []vk.Fence{vb.fence})
	vk.ResetCommandBuffer(vb.commandBuffer, 0)

	beginInfo := vk.CommandBufferBeginInfo{SType: vk.StructureTypeCommandBufferBeginInfo, Flags: vk.CommandBufferUsageFlags(vk.CommandBufferUsageOneTimeSubmitBit)}
	vk.BeginCommandBuffer(vb.commandBuffer, &beginInfo)

	clearValues := []vk.ClearValue{
		vk.NewClearValue([]float32{0, 0, 0, 1}),
		vk.NewClearDepthStencil(1.0, 0),
	}
	renderPassBegin := vk.RenderPassBeginInfo{
		SType: vk.StructureTypeRenderPassBeginInfo, RenderPass: vb.renderPass, Framebuffer: vb.framebuffer,
		RenderArea:      vk.Rect2D{Extent: vk.Extent2D{Width: uint32(vb.width), Height: uint32(vb.height)}},
		ClearValueCount: uint32(len(clearValues)), PClearValues: clearValues,
	}
	vk.CmdBeginRenderPass(vb.commandBuffer, &renderPassBegin, vk.SubpassContentsInline)
	vk.CmdBindPipeline(vb.commandBuffer, vk.PipelineBindPointGraphics, vb.pipeline)
	vk.CmdSetScissor(vb.commandBuffer, 0, 1, []vk.Rect2D{{Extent: vk.Extent2D{Width: uint32(vb.width), Height: uint32(vb.height)}}})
	vk.CmdBindVertexBuffers(vb.commandBuffer, 0, 1, []vk.Buffer{vb.vertexBuffer}, []vk.DeviceSize{0})
	vk.CmdDraw(vb.commandBuffer, uint32(len(gpuVerts)), 1, 0, 0)
	vk.CmdEndRenderPass(vb.commandBuffer)
	vk.EndCommandBuffer(vb.commandBuffer)

	submitInfo := vk.SubmitInfo{SType: vk.StructureTypeSubmitInfo, CommandBufferCount: 1, PCommandBuffers: []vk.CommandBuffer{vb.commandBuffer}}
	vk.QueueSubmit(vb.graphicsQueue, 1, []vk.SubmitInfo{submitInfo}, vb.fence)

	vb.readbackFramebuffer()
	return nil
}

func (vb *VulkanRenderBackend) readbackFramebuffer() {
	vk.WaitForFences(vb.device, 1, []vk.Fence{vb.fence}, vk.True, ^uint64(0))
	vk.ResetCommandBuffer(vb.commandBuffer, 0)

	beginInfo := vk.CommandBufferBeginInfo{SType: vk.StructureTypeCommandBufferBeginInfo, Flags: vk.CommandBufferUsageFlags(vk.CommandBufferUsageOneTimeSubmitBit)}
	vk.BeginCommandBuffer(vb.commandBuffer, &beginInfo)

	region := vk.BufferImageCopy{
		ImageSubresource: vk.ImageSubresourceLayers{AspectMask: vk.ImageAspectFlags(vk.ImageAspectColorBit), LayerCount: 1},
		ImageExtent:      vk.Extent3D{Width: uint32(vb.width), Height: uint32(vb.height), Depth: 1},
	}
	vk.CmdCopyImageToBuffer(vb.commandBuffer, vb.colorImage, vk.ImageLayoutTransferSrcOptimal, vb.stagingBuffer, 1, []vk.BufferImageCopy{region})
	vk.EndCommandBuffer(vb.commandBuffer)

	submitInfo := vk.SubmitInfo{SType: vk.StructureTypeSubmitInfo, CommandBufferCount: 1, PCommandBuffers: []vk.CommandBuffer{vb.commandBuffer}}
	vk.ResetFences(vb.device, 1, []vk.Fence{vb.fence})
	vk.QueueSubmit(vb.graphicsQueue, 1, []vk.SubmitInfo{submitInfo}, vb.fence)
	vk.WaitForFences(vb.device, 1, []vk.Fence{vb.fence}, vk.True, ^uint64(0))

	var data unsafe.Pointer
	vk.MapMemory(vb.device, vb.stagingBufferMemory, 0, vk.DeviceSize(len(vb.outputFrame)), 0, &data)
	copy(vb.outputFrame, (*[1 << 30]byte)(data)[:len(vb.outputFrame)])
	vk.UnmapMemory(vb.device, vb.stagingBufferMemory)
}

func (vb *VulkanRenderBackend) GetFrame() []byte {
	vb.mutex.Lock()
	defer vb.mutex.Unlock()
	if vb.initialized {
		return vb.outputFrame
	}
	return vb.software.GetFrame()
}

func (vb *VulkanRenderBackend) Destroy() {
	vb.mutex.Lock()
	defer vb.mutex.Unlock()
	if vb.initialized {
		vk.DeviceWaitIdle(vb.device)
		vk.DestroyFence(vb.device, vb.fence, nil)
		vk.DestroyBuffer(vb.device, vb.stagingBuffer, nil)
		vk.FreeMemory(vb.device, vb.stagingBufferMemory, nil)
		vk.DestroyBuffer(vb.device, vb.vertexBuffer, nil)
		vk.FreeMemory(vb.device, vb.vertexBufferMemory, nil)
		vk.DestroyPipeline(vb.device, vb.pipeline, nil)
		vk.DestroyPipelineLayout(vb.device, vb.pipelineLayout, nil)
		vk.DestroyShaderModule(vb.device, vb.vertShaderModule, nil)
		vk.DestroyShaderModule(vb.device, vb.fragShaderModule, nil)
		vb.destroyFramebuffer()
		vb.destroyRenderPass()
		vb.destroyOffscreenImages()
		vb.destroyCommandPool()
		vb.destroyDevice()
		vb.destroyInstance()
	}
	vb.software.Destroy()
}

func (vb *VulkanRenderBackend) destroyInstance() {
	if vb.instance != nil {
		vk.DestroyInstance(vb.instance, nil)
	}
}
func (vb *VulkanRenderBackend) destroyDevice() {
	if vb.device != nil {
		vk.DestroyDevice(vb.device, nil)
	}
}
func (vb *VulkanRenderBackend) destroyCommandPool() {
	vk.DestroyCommandPool(vb.device, vb.commandPool, nil)
}
func (vb *VulkanRenderBackend) destroyOffscreenImages() {
	vk.DestroyImageView(vb.device, vb.colorImageView, nil)
	vk.DestroyImage(vb.device, vb.colorImage, nil)
	vk.FreeMemory(vb.device, vb.colorImageMemory, nil)
	vk.DestroyImageView(vb.device, vb.depthImageView, nil)
	vk.DestroyImage(vb.device, vb.depthImage, nil)
	vk.FreeMemory(vb.device, vb.depthImageMemory, nil)
}
func (vb *VulkanRenderBackend) destroyRenderPass() {
	vk.DestroyRenderPass(vb.device, vb.renderPass, nil)
}
func (vb *VulkanRenderBackend) destroyFramebuffer() {
	vk.DestroyFramebuffer(vb.device, vb.framebuffer, nil)
}
func (vb *VulkanRenderBackend) destroyPipeline() {
	vk.DestroyPipeline(vb.device, vb.pipeline, nil)
	vk.DestroyPipelineLayout(vb.device, vb.pipelineLayout, nil)
}
func (vb *VulkanRenderBackend) destroyVertexBuffer() {
	vk.DestroyBuffer(vb.device, vb.vertexBuffer, nil)
	vk.FreeMemory(vb.device, vb.vertexBufferMemory, nil)
}
func (vb *VulkanRenderBackend) destroyStagingBuffer() {
	vk.DestroyBuffer(vb.device, vb.stagingBuffer, nil)
	vk.FreeMemory(vb.device, vb.stagingBufferMemory, nil)
}

func safeCString(s string) string { return s + "\x00" }

func sliceToUint32(data []byte) []uint32 {
	out := make([]uint32, len(data)/4)
	for i := range out {
		out[i] = uint32(data[i*4]) | uint32(data[i*4+1])<<8 | uint32(data[i*4+2])<<16 | uint32(data[i*4+3])<<24
	}
	return out
}

func vulkanVerticesToBytes(verts []vulkanVertex) []byte {
	if len(verts) == 0 {
		return nil
	}
	size := int(unsafe.Sizeof(vulkanVertex{}))
	return unsafe.Slice((*byte)(unsafe.Pointer(&verts[0])), len(verts)*size)
}
