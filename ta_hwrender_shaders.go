//go:build !headless

// ta_hwrender_shaders.go - SPIR-V bytecode for the Vulkan render path.
//
// Grounded on voodoo_shaders.go: the teacher embeds compiled SPIR-V as
// raw Go byte slices alongside the GLSL source that produced them,
// built with glslc ahead of time rather than at runtime. Reproducing
// that here would mean hand-authoring valid SPIR-V words by eye, which
// is not something to fabricate and claim as real bytecode. The
// vertex/fragment shaders below are therefore left empty; see
// DESIGN.md for the consequence (createShaderModule fails, Vulkan
// initialization falls back to SoftwareRenderBackend).
//
// The GLSL these would compile from:
//
//   #version 450
//   layout(location = 0) in vec3 inPosition;
//   layout(location = 1) in vec4 inColor;
//   layout(location = 0) out vec4 fragColor;
//   void main() {
//       gl_Position = vec4(inPosition, 1.0);
//       fragColor = inColor;
//   }
//
//   #version 450
//   layout(location = 0) in vec4 fragColor;
//   layout(location = 0) out vec4 outColor;
//   void main() { outColor = fragColor; }

package hollycore

const renderMaxBatchVertices = 65536 * 3

var renderVertexShaderSPIRV []byte
var renderFragmentShaderSPIRV []byte
