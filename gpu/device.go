// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpu

import (
	"errors"

	"github.com/gogpu/drawing/geom"
)

// Resource IDs
//
// These opaque IDs represent GPU resources. Each Device implementation
// maintains a mapping between IDs and actual backend resources.

// BufferID is an opaque handle to a GPU buffer.
type BufferID uint64

// ShaderID is an opaque handle to a compiled shader variant.
type ShaderID uint64

// TextureID is an opaque handle to a GPU texture.
type TextureID uint64

// InvalidID is the zero value, representing an invalid/null resource.
const InvalidID = 0

// Errors reported by devices and the shader cache.
var (
	// ErrInvalidBuffer is returned when a buffer ID is unknown to the device.
	ErrInvalidBuffer = errors.New("gpu: invalid buffer")

	// ErrInvalidTexture is returned when a texture ID is unknown to the device.
	ErrInvalidTexture = errors.New("gpu: invalid texture")

	// ErrShaderCompile is returned when a shader variant fails to compile.
	ErrShaderCompile = errors.New("gpu: shader compilation failed")

	// ErrDeviceLost is returned once a device has been released.
	ErrDeviceLost = errors.New("gpu: device released")
)

// BufferDesc describes a buffer to create.
type BufferDesc struct {
	Label string
	Kind  BufferKind
	Size  int
}

// ShaderDesc describes a shader variant to create.
type ShaderDesc struct {
	Label        string
	Capabilities Capability
	// WGSL is the generated variant source.
	WGSL string
	// SPIRV is the compiled form, if a compiler produced one.
	SPIRV []byte
}

// TextureDesc describes a texture to create. Depth is 1 for 2-D textures.
type TextureDesc struct {
	Label  string
	Width  int
	Height int
	Depth  int
	Format TextureFormat
}

// TextureFormat is the pixel layout of texture data.
type TextureFormat uint8

// Texture formats.
const (
	// TextureFormatRGBA8 is 8-bit RGBA, four bytes per pixel.
	TextureFormatRGBA8 TextureFormat = iota + 1
	// TextureFormatR8 is a single 8-bit channel, used for 3-D volumes.
	TextureFormatR8
)

// BytesPerPixel returns the size of one texel.
func (f TextureFormat) BytesPerPixel() int {
	if f == TextureFormatR8 {
		return 1
	}
	return 4
}

// TextureSlot selects the texture unit a texture is bound to.
type TextureSlot uint8

// Texture slots.
const (
	// SlotTexture2D holds a node's 2-D color texture.
	SlotTexture2D TextureSlot = iota
	// SlotAmbient3D holds a node's 3-D ambient texture.
	SlotAmbient3D
)

// Device creates and destroys GPU resources.
type Device interface {
	// CreateBuffer allocates a buffer of desc.Size bytes.
	CreateBuffer(desc *BufferDesc) (BufferID, error)

	// WriteBuffer uploads data to the start of a buffer.
	// len(data) must not exceed the buffer size.
	WriteBuffer(id BufferID, data []byte) error

	// DestroyBuffer releases a buffer. Unknown IDs are ignored.
	DestroyBuffer(id BufferID)

	// CreateShader creates a shader variant from generated source.
	CreateShader(desc *ShaderDesc) (ShaderID, error)

	// DestroyShader releases a shader. Unknown IDs are ignored.
	DestroyShader(id ShaderID)

	// CreateTexture creates a texture filled with pixels.
	CreateTexture(desc *TextureDesc, pixels []byte) (TextureID, error)

	// DestroyTexture releases a texture. Unknown IDs are ignored.
	DestroyTexture(id TextureID)
}

// VertexBinding attaches a buffer to the attribute slots of its kind.
type VertexBinding struct {
	Kind   BufferKind
	Buffer BufferID
}

// DrawCall is one indexed, possibly instanced draw.
type DrawCall struct {
	Label         string
	Primitive     Primitive
	Elements      BufferID
	ElementCount  int
	Vertices      []VertexBinding
	InstanceCount int
}

// Encoder records the commands of one frame.
//
// Matrix and color state persists across draws until changed. UseShader
// selects the variant for subsequent draws.
type Encoder interface {
	// BeginPass starts a draw pass. Passes do not nest.
	BeginPass(p Pass) error

	// EndPass finishes the current pass.
	EndPass() error

	SetViewMatrix(view geom.Place)
	SetModelMatrix(model geom.Place)
	SetAmbientTextureTransform(tf geom.Place)

	// SetSingleColor sets the color used when no per-vertex or per-instance
	// colors are bound. Components are in 0..1.
	SetSingleColor(rgba [4]float32)

	UseShader(id ShaderID) error
	BindTexture(slot TextureSlot, id TextureID) error
	UnbindTexture(slot TextureSlot)

	// Draw records an indexed draw with the current state.
	Draw(call *DrawCall) error
}
