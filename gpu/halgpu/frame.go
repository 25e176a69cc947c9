// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogpu

package halgpu

import (
	"fmt"
	"time"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/drawing/geom"
	"github.com/gogpu/drawing/gpu"
)

// uniformSize is four column-major mat4x4<f32> followed by a vec4<f32>.
const uniformSize = 4*64 + 16

// Target is the color and depth attachments a frame renders into. The
// outline view receives the selection pass; when nil, selection draws go
// to the color view.
type Target struct {
	Color   hal.TextureView
	Outline hal.TextureView
	Depth   hal.TextureView
	Clear   gputypes.Color
}

// Frame implements gpu.Encoder for one frame of HAL commands.
//
// Per-draw uniforms and bind groups live until Submit.
type Frame struct {
	dev     *Device
	target  Target
	encoder hal.CommandEncoder
	pass    hal.RenderPassEncoder
	current gpu.Pass
	inPass  bool
	cleared map[hal.TextureView]bool

	projection [16]float32
	view       geom.Place
	model      geom.Place
	ambient    geom.Place
	color      [4]float32
	shader     gpu.ShaderID
	textures   map[gpu.TextureSlot]gpu.TextureID

	uniforms   []hal.Buffer
	bindGroups []hal.BindGroup
	draws      int
}

// BeginFrame starts recording a frame into target.
func (d *Device) BeginFrame(target Target) (*Frame, error) {
	d.mu.RLock()
	released := d.released
	d.mu.RUnlock()
	if released {
		return nil, gpu.ErrDeviceLost
	}
	if target.Color == nil || target.Depth == nil {
		return nil, fmt.Errorf("halgpu: frame target needs color and depth views")
	}
	enc, err := d.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: "drawing_frame_encoder"})
	if err != nil {
		return nil, fmt.Errorf("halgpu: create command encoder: %w", err)
	}
	if err := enc.BeginEncoding("drawing_frame"); err != nil {
		return nil, fmt.Errorf("halgpu: begin encoding: %w", err)
	}
	return &Frame{
		dev:        d,
		target:     target,
		encoder:    enc,
		cleared:    make(map[hal.TextureView]bool),
		projection: geom.Identity().Matrix4(),
		view:       geom.Identity(),
		model:      geom.Identity(),
		ambient:    geom.Identity(),
		color:      [4]float32{1, 1, 1, 1},
		textures:   make(map[gpu.TextureSlot]gpu.TextureID),
	}, nil
}

// SetProjection sets the view to clip transform, column-major.
func (f *Frame) SetProjection(m [16]float32) { f.projection = m }

// BeginPass implements gpu.Encoder. The first pass rendering into an
// attachment clears it; later passes load it.
func (f *Frame) BeginPass(p gpu.Pass) error {
	if f.inPass {
		return fmt.Errorf("halgpu: begin %s inside %s", p, f.current)
	}
	color := f.target.Color
	if p.State().Outline && f.target.Outline != nil {
		color = f.target.Outline
	}
	colorLoad, depthLoad := f.loadOp(color), f.loadOp(f.target.Depth)
	f.pass = f.encoder.BeginRenderPass(&hal.RenderPassDescriptor{
		Label: "drawing_" + p.String(),
		ColorAttachments: []hal.RenderPassColorAttachment{{
			View:       color,
			LoadOp:     colorLoad,
			StoreOp:    gputypes.StoreOpStore,
			ClearValue: f.target.Clear,
		}},
		DepthStencilAttachment: &hal.RenderPassDepthStencilAttachment{
			View:              f.target.Depth,
			DepthLoadOp:       depthLoad,
			DepthStoreOp:      gputypes.StoreOpStore,
			DepthClearValue:   1.0,
			StencilLoadOp:     depthLoad,
			StencilStoreOp:    gputypes.StoreOpStore,
			StencilClearValue: 0,
		},
	})
	f.current, f.inPass = p, true
	return nil
}

func (f *Frame) loadOp(v hal.TextureView) gputypes.LoadOp {
	if f.cleared[v] {
		return gputypes.LoadOpLoad
	}
	f.cleared[v] = true
	return gputypes.LoadOpClear
}

// EndPass implements gpu.Encoder.
func (f *Frame) EndPass() error {
	if !f.inPass {
		return fmt.Errorf("halgpu: end pass outside a pass")
	}
	f.pass.End()
	f.pass, f.inPass = nil, false
	return nil
}

func (f *Frame) SetViewMatrix(view geom.Place)            { f.view = view }
func (f *Frame) SetModelMatrix(model geom.Place)          { f.model = model }
func (f *Frame) SetAmbientTextureTransform(tf geom.Place) { f.ambient = tf }
func (f *Frame) SetSingleColor(rgba [4]float32)           { f.color = rgba }

// UseShader implements gpu.Encoder.
func (f *Frame) UseShader(id gpu.ShaderID) error {
	f.dev.mu.RLock()
	_, ok := f.dev.shaders[id]
	f.dev.mu.RUnlock()
	if !ok {
		return fmt.Errorf("halgpu: use unknown shader %d", id)
	}
	f.shader = id
	return nil
}

// BindTexture implements gpu.Encoder.
func (f *Frame) BindTexture(slot gpu.TextureSlot, id gpu.TextureID) error {
	f.dev.mu.RLock()
	_, ok := f.dev.textures[id]
	f.dev.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %d", gpu.ErrInvalidTexture, id)
	}
	f.textures[slot] = id
	return nil
}

// UnbindTexture implements gpu.Encoder.
func (f *Frame) UnbindTexture(slot gpu.TextureSlot) {
	delete(f.textures, slot)
}

// uniformBytes packs the current matrices and color.
func (f *Frame) uniformBytes() []byte {
	fs := make([]float32, 0, uniformSize/4)
	fs = append(fs, f.projection[:]...)
	v, m, a := f.view.Matrix4(), f.model.Matrix4(), f.ambient.Matrix4()
	fs = append(fs, v[:]...)
	fs = append(fs, m[:]...)
	fs = append(fs, a[:]...)
	fs = append(fs, f.color[:]...)
	return gpu.Float32Bytes(fs)
}

// Draw implements gpu.Encoder.
func (f *Frame) Draw(call *gpu.DrawCall) error {
	if !f.inPass {
		return fmt.Errorf("halgpu: draw %q outside a pass", call.Label)
	}
	if call.ElementCount == 0 {
		return nil
	}
	key, err := newPipelineKey(f.shader, call, f.current)
	if err != nil {
		return err
	}
	pipeline, s, err := f.dev.pipeline(key)
	if err != nil {
		return err
	}

	ub, err := f.dev.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "drawing_uniforms",
		Size:  uniformSize,
		Usage: gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("halgpu: draw %q: create uniform buffer: %w", call.Label, err)
	}
	f.uniforms = append(f.uniforms, ub)
	if err := f.dev.queue.WriteBuffer(ub, 0, f.uniformBytes()); err != nil {
		return fmt.Errorf("halgpu: draw %q: write uniforms: %w", call.Label, err)
	}

	ubg, err := f.dev.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  "drawing_uniform_bind",
		Layout: f.dev.uniformLayout,
		Entries: []gputypes.BindGroupEntry{
			{Binding: 0, Resource: gputypes.BufferBinding{Buffer: ub.NativeHandle(), Offset: 0, Size: uniformSize}},
		},
	})
	if err != nil {
		return fmt.Errorf("halgpu: draw %q: create uniform bind group: %w", call.Label, err)
	}
	f.bindGroups = append(f.bindGroups, ubg)

	var tbg hal.BindGroup
	if s.texLayout != nil {
		tbg, err = f.textureBindGroup(s)
		if err != nil {
			return fmt.Errorf("halgpu: draw %q: %w", call.Label, err)
		}
		f.bindGroups = append(f.bindGroups, tbg)
	}

	f.dev.mu.RLock()
	elements, ok := f.dev.buffers[call.Elements]
	vbufs := make([]hal.Buffer, len(call.Vertices))
	for i, b := range call.Vertices {
		vb, vok := f.dev.buffers[b.Buffer]
		if !vok {
			ok = false
			break
		}
		vbufs[i] = vb.buf
	}
	f.dev.mu.RUnlock()
	if !ok {
		return fmt.Errorf("halgpu: draw %q: %w", call.Label, gpu.ErrInvalidBuffer)
	}

	f.pass.SetPipeline(pipeline)
	f.pass.SetBindGroup(0, ubg, nil)
	if tbg != nil {
		f.pass.SetBindGroup(1, tbg, nil)
	}
	for i, vb := range vbufs {
		f.pass.SetVertexBuffer(uint32(i), vb, 0) //nolint:gosec // at most maxVertexBindings
	}
	f.pass.SetIndexBuffer(elements.buf, gputypes.IndexFormatUint32, 0)
	f.pass.DrawIndexed(uint32(call.ElementCount), uint32(max(call.InstanceCount, 1)), 0, 0, 0) //nolint:gosec // counts come from uint32 index arrays
	f.draws++
	return nil
}

// textureBindGroup binds the textures a variant samples, substituting a
// white texture for an unbound slot.
func (f *Frame) textureBindGroup(s *shader) (hal.BindGroup, error) {
	var entries []gputypes.BindGroupEntry
	add := func(slot gpu.TextureSlot, binding uint32) error {
		f.dev.mu.RLock()
		t, ok := f.dev.textures[f.textures[slot]]
		f.dev.mu.RUnlock()
		if !ok {
			var err error
			if t, err = f.dev.dummyTexture(slot); err != nil {
				return err
			}
		}
		entries = append(entries,
			gputypes.BindGroupEntry{Binding: binding, Resource: gputypes.TextureViewBinding{
				TextureView: t.view.NativeHandle(),
			}},
			gputypes.BindGroupEntry{Binding: binding + 1, Resource: gputypes.SamplerBinding{
				Sampler: f.dev.sampler.NativeHandle(),
			}},
		)
		return nil
	}
	if s.caps.Has(gpu.CapTexture2D) {
		if err := add(gpu.SlotTexture2D, 0); err != nil {
			return nil, err
		}
	}
	if s.caps.Has(gpu.CapAmbientTexture3D) {
		if err := add(gpu.SlotAmbient3D, 2); err != nil {
			return nil, err
		}
	}
	bg, err := f.dev.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:   "drawing_texture_bind",
		Layout:  s.texLayout,
		Entries: entries,
	})
	if err != nil {
		return nil, fmt.Errorf("create texture bind group: %w", err)
	}
	return bg, nil
}

// Submit ends the frame, submits it and waits for the GPU. The frame
// cannot be used afterwards.
func (f *Frame) Submit() error {
	defer f.releaseTransient()
	if f.inPass {
		if err := f.EndPass(); err != nil {
			return err
		}
	}
	cmdBuf, err := f.encoder.EndEncoding()
	if err != nil {
		return fmt.Errorf("halgpu: end encoding: %w", err)
	}
	defer f.dev.device.FreeCommandBuffer(cmdBuf)

	idx, err := f.dev.queue.Submit([]hal.CommandBuffer{cmdBuf})
	if err != nil {
		return fmt.Errorf("halgpu: submit: %w", err)
	}
	if err := waitSubmitted(f.dev.queue, idx, submitTimeout); err != nil {
		return err
	}
	f.dev.logger.Debug("halgpu: frame submitted", "draws", f.draws)
	return nil
}

// submitTimeout bounds how long Submit waits for the GPU.
const submitTimeout = 5 * time.Second

// completionPoller reports the last submission index the GPU finished.
type completionPoller interface {
	PollCompleted() uint64
}

// waitSubmitted polls q until submission idx completes or timeout passes.
func waitSubmitted(q completionPoller, idx uint64, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for q.PollCompleted() < idx {
		if time.Now().After(deadline) {
			return fmt.Errorf("halgpu: wait for submission %d: %w", idx, ErrSubmitTimeout)
		}
		time.Sleep(100 * time.Microsecond)
	}
	return nil
}

// Discard abandons a frame without submitting it.
func (f *Frame) Discard() {
	if f.inPass {
		f.pass.End()
		f.inPass = false
	}
	f.encoder.DiscardEncoding()
	f.releaseTransient()
}

func (f *Frame) releaseTransient() {
	for _, bg := range f.bindGroups {
		f.dev.device.DestroyBindGroup(bg)
	}
	for _, b := range f.uniforms {
		f.dev.device.DestroyBuffer(b)
	}
	f.bindGroups, f.uniforms = nil, nil
}

var _ gpu.Encoder = (*Frame)(nil)
