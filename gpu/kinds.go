// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpu

import "github.com/gogpu/gputypes"

// BufferKind identifies what a buffer holds and how it is bound.
type BufferKind uint8

// Buffer kinds.
const (
	VertexBuffer BufferKind = iota
	NormalBuffer
	VertexColorBuffer
	TexCoordBuffer
	ElementBuffer
	InstanceShiftScaleBuffer
	InstanceMatrixBuffer
	InstanceColorBuffer
	numBufferKinds
)

var bufferKindNames = [...]string{
	VertexBuffer:             "vertices",
	NormalBuffer:             "normals",
	VertexColorBuffer:        "vertex colors",
	TexCoordBuffer:           "texture coordinates",
	ElementBuffer:            "elements",
	InstanceShiftScaleBuffer: "instance shift and scale",
	InstanceMatrixBuffer:     "instance matrices",
	InstanceColorBuffer:      "instance colors",
}

func (k BufferKind) String() string {
	if int(k) < len(bufferKindNames) {
		return bufferKindNames[k]
	}
	return "unknown"
}

// Usage returns the gputypes usage flags a buffer of this kind needs.
func (k BufferKind) Usage() gputypes.BufferUsage {
	if k == ElementBuffer {
		return gputypes.BufferUsageIndex | gputypes.BufferUsageCopyDst
	}
	return gputypes.BufferUsageVertex | gputypes.BufferUsageCopyDst
}

// PerInstance reports whether the buffer advances once per instance.
func (k BufferKind) PerInstance() bool {
	return k == InstanceShiftScaleBuffer || k == InstanceMatrixBuffer || k == InstanceColorBuffer
}

// Shader attribute locations.
const (
	LocationPosition   = 0
	LocationNormal     = 1
	LocationColor      = 2
	LocationTexCoord   = 3
	LocationShiftScale = 4
	LocationMatrix     = 5 // four consecutive columns: 5..8
)

// Layout returns the vertex buffer layout of an attribute buffer kind.
// Element buffers have no layout and return nil.
func (k BufferKind) Layout() *gputypes.VertexBufferLayout {
	step := gputypes.VertexStepModeVertex
	if k.PerInstance() {
		step = gputypes.VertexStepModeInstance
	}
	switch k {
	case VertexBuffer:
		return &gputypes.VertexBufferLayout{ArrayStride: 12, StepMode: step, Attributes: []gputypes.VertexAttribute{
			{Format: gputypes.VertexFormatFloat32x3, Offset: 0, ShaderLocation: LocationPosition},
		}}
	case NormalBuffer:
		return &gputypes.VertexBufferLayout{ArrayStride: 12, StepMode: step, Attributes: []gputypes.VertexAttribute{
			{Format: gputypes.VertexFormatFloat32x3, Offset: 0, ShaderLocation: LocationNormal},
		}}
	case VertexColorBuffer, InstanceColorBuffer:
		return &gputypes.VertexBufferLayout{ArrayStride: 4, StepMode: step, Attributes: []gputypes.VertexAttribute{
			{Format: gputypes.VertexFormatUnorm8x4, Offset: 0, ShaderLocation: LocationColor},
		}}
	case TexCoordBuffer:
		return &gputypes.VertexBufferLayout{ArrayStride: 8, StepMode: step, Attributes: []gputypes.VertexAttribute{
			{Format: gputypes.VertexFormatFloat32x2, Offset: 0, ShaderLocation: LocationTexCoord},
		}}
	case InstanceShiftScaleBuffer:
		return &gputypes.VertexBufferLayout{ArrayStride: 16, StepMode: step, Attributes: []gputypes.VertexAttribute{
			{Format: gputypes.VertexFormatFloat32x4, Offset: 0, ShaderLocation: LocationShiftScale},
		}}
	case InstanceMatrixBuffer:
		return &gputypes.VertexBufferLayout{ArrayStride: 64, StepMode: step, Attributes: []gputypes.VertexAttribute{
			{Format: gputypes.VertexFormatFloat32x4, Offset: 0, ShaderLocation: LocationMatrix},
			{Format: gputypes.VertexFormatFloat32x4, Offset: 16, ShaderLocation: LocationMatrix + 1},
			{Format: gputypes.VertexFormatFloat32x4, Offset: 32, ShaderLocation: LocationMatrix + 2},
			{Format: gputypes.VertexFormatFloat32x4, Offset: 48, ShaderLocation: LocationMatrix + 3},
		}}
	}
	return nil
}

// Primitive is the topology an element array is drawn with.
type Primitive uint8

// Primitive types.
const (
	Triangles Primitive = iota
	Lines
	Points
)

func (p Primitive) String() string {
	switch p {
	case Lines:
		return "lines"
	case Points:
		return "points"
	}
	return "triangles"
}

// Topology maps the primitive to its gputypes topology.
func (p Primitive) Topology() gputypes.PrimitiveTopology {
	switch p {
	case Lines:
		return gputypes.PrimitiveTopologyLineList
	case Points:
		return gputypes.PrimitiveTopologyPointList
	}
	return gputypes.PrimitiveTopologyTriangleList
}

// IndicesPerElement is the number of indices that make up one primitive.
func (p Primitive) IndicesPerElement() int {
	switch p {
	case Lines:
		return 2
	case Points:
		return 1
	}
	return 3
}

// Pass is one full-tree traversal of a frame.
type Pass uint8

// Draw passes, in the order a frame runs them.
const (
	PassOpaque Pass = iota
	PassTransparentDepth
	PassTransparent
	PassSelection
	PassDepth
	PassOverlay
	PassOverlay2D
)

var passNames = [...]string{
	PassOpaque:           "opaque",
	PassTransparentDepth: "transparent depth",
	PassTransparent:      "transparent",
	PassSelection:        "selection",
	PassDepth:            "depth",
	PassOverlay:          "overlay",
	PassOverlay2D:        "overlay 2d",
}

func (p Pass) String() string {
	if int(p) < len(passNames) {
		return passNames[p]
	}
	return "unknown"
}

// PassState is the fixed-function state a pass runs with.
type PassState struct {
	DepthTest  bool
	DepthWrite bool
	ColorWrite bool
	Blend      bool
	// Outline renders into the selection target rather than the frame.
	Outline bool
}

// State returns the fixed-function state of the pass.
func (p Pass) State() PassState {
	switch p {
	case PassTransparentDepth, PassDepth:
		return PassState{DepthTest: true, DepthWrite: true}
	case PassTransparent:
		return PassState{DepthTest: true, ColorWrite: true, Blend: true}
	case PassSelection:
		return PassState{DepthTest: true, DepthWrite: true, ColorWrite: true, Outline: true}
	case PassOverlay, PassOverlay2D:
		return PassState{ColorWrite: true, Blend: true}
	}
	return PassState{DepthTest: true, DepthWrite: true, ColorWrite: true}
}
