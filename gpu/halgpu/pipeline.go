// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogpu

package halgpu

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/drawing/gpu"
)

// maxVertexBindings bounds the buffers one draw binds: position, normal,
// color, texture coordinates and one instance placement buffer.
const maxVertexBindings = 5

// pipelineKey identifies one render pipeline. Vertex layouts follow the
// order of the bound kinds, so the kinds are part of the key.
type pipelineKey struct {
	shader    gpu.ShaderID
	primitive gpu.Primitive
	pass      gpu.Pass
	nkinds    uint8
	kinds     [maxVertexBindings]gpu.BufferKind
}

func newPipelineKey(shader gpu.ShaderID, call *gpu.DrawCall, pass gpu.Pass) (pipelineKey, error) {
	if len(call.Vertices) > maxVertexBindings {
		return pipelineKey{}, fmt.Errorf("halgpu: draw %q binds %d buffers, max %d", call.Label, len(call.Vertices), maxVertexBindings)
	}
	k := pipelineKey{shader: shader, primitive: call.Primitive, pass: pass, nkinds: uint8(len(call.Vertices))} //nolint:gosec // bounded above
	for i, b := range call.Vertices {
		k.kinds[i] = b.Kind
	}
	return k, nil
}

// vertexLayouts returns one buffer layout per bound kind, in slot order.
func (k pipelineKey) vertexLayouts() []gputypes.VertexBufferLayout {
	out := make([]gputypes.VertexBufferLayout, 0, k.nkinds)
	for _, kind := range k.kinds[:k.nkinds] {
		if l := kind.Layout(); l != nil {
			out = append(out, *l)
		}
	}
	return out
}

// colorTarget returns the color target state of a pass.
func colorTarget(format gputypes.TextureFormat, st gpu.PassState) gputypes.ColorTargetState {
	t := gputypes.ColorTargetState{Format: format}
	if st.ColorWrite {
		t.WriteMask = gputypes.ColorWriteMaskAll
	}
	if st.Blend {
		blend := gputypes.BlendStatePremultiplied()
		t.Blend = &blend
	}
	return t
}

// depthState returns the depth state of a pass. Passes without a depth
// test still carry the attachment, compare Always and never write.
func depthState(st gpu.PassState) *hal.DepthStencilState {
	ds := &hal.DepthStencilState{
		Format:            depthFormat,
		DepthWriteEnabled: st.DepthWrite,
		DepthCompare:      gputypes.CompareFunctionAlways,
		StencilFront: hal.StencilFaceState{
			Compare:     gputypes.CompareFunctionAlways,
			FailOp:      hal.StencilOperationKeep,
			DepthFailOp: hal.StencilOperationKeep,
			PassOp:      hal.StencilOperationKeep,
		},
		StencilBack: hal.StencilFaceState{
			Compare:     gputypes.CompareFunctionAlways,
			FailOp:      hal.StencilOperationKeep,
			DepthFailOp: hal.StencilOperationKeep,
			PassOp:      hal.StencilOperationKeep,
		},
	}
	if st.DepthTest {
		ds.DepthCompare = gputypes.CompareFunctionLess
	}
	return ds
}

// pipeline returns the cached pipeline for k, creating it on first use.
func (d *Device) pipeline(k pipelineKey) (hal.RenderPipeline, *shader, error) {
	d.mu.RLock()
	s, ok := d.shaders[k.shader]
	p := d.pipelines[k]
	d.mu.RUnlock()
	if !ok {
		return nil, nil, fmt.Errorf("halgpu: unknown shader %d", k.shader)
	}
	if p != nil {
		return p, s, nil
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if p := d.pipelines[k]; p != nil {
		return p, s, nil
	}
	st := k.pass.State()
	p, err := d.device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  fmt.Sprintf("drawing_%s_%s_%s", s.caps, k.primitive, k.pass),
		Layout: s.pipeLayout,
		Vertex: hal.VertexState{
			Module:     s.module,
			EntryPoint: "vs_main",
			Buffers:    k.vertexLayouts(),
		},
		Fragment: &hal.FragmentState{
			Module:     s.module,
			EntryPoint: "fs_main",
			Targets:    []gputypes.ColorTargetState{colorTarget(d.colorFormat, st)},
		},
		DepthStencil: depthState(st),
		Primitive: gputypes.PrimitiveState{
			Topology: k.primitive.Topology(),
			CullMode: gputypes.CullModeNone,
		},
		Multisample: gputypes.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return nil, nil, fmt.Errorf("halgpu: create pipeline %s/%s/%s: %w", s.caps, k.primitive, k.pass, err)
	}
	d.pipelines[k] = p
	d.logger.Debug("halgpu: pipeline created", "caps", s.caps.String(), "primitive", k.primitive.String(), "pass", k.pass.String())
	return p, s, nil
}
