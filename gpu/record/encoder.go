// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package record

import (
	"errors"
	"fmt"
	"maps"

	"github.com/gogpu/drawing/geom"
	"github.com/gogpu/drawing/gpu"
)

var errNoPass = errors.New("record: no pass in progress")

// BeginPass implements gpu.Encoder.
func (d *Device) BeginPass(p gpu.Pass) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.inPass {
		return fmt.Errorf("record: begin %s inside %s", p, d.pass)
	}
	d.pass, d.inPass = p, true
	d.passes = append(d.passes, p)
	return nil
}

// EndPass implements gpu.Encoder.
func (d *Device) EndPass() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.inPass {
		return errNoPass
	}
	d.inPass = false
	return nil
}

// SetViewMatrix implements gpu.Encoder.
func (d *Device) SetViewMatrix(view geom.Place) {
	d.mu.Lock()
	d.view = view
	d.mu.Unlock()
}

// SetModelMatrix implements gpu.Encoder.
func (d *Device) SetModelMatrix(model geom.Place) {
	d.mu.Lock()
	d.model = model
	d.mu.Unlock()
}

// SetAmbientTextureTransform implements gpu.Encoder.
func (d *Device) SetAmbientTextureTransform(tf geom.Place) {
	d.mu.Lock()
	d.ambient = tf
	d.mu.Unlock()
}

// SetSingleColor implements gpu.Encoder.
func (d *Device) SetSingleColor(rgba [4]float32) {
	d.mu.Lock()
	d.color = rgba
	d.mu.Unlock()
}

// UseShader implements gpu.Encoder.
func (d *Device) UseShader(id gpu.ShaderID) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.shaders[id]; !ok {
		return fmt.Errorf("record: use unknown shader %d", id)
	}
	d.shader = id
	return nil
}

// BindTexture implements gpu.Encoder.
func (d *Device) BindTexture(slot gpu.TextureSlot, id gpu.TextureID) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.textures[id]; !ok {
		return fmt.Errorf("record: bind %d: %w", id, gpu.ErrInvalidTexture)
	}
	d.bound[slot] = id
	return nil
}

// UnbindTexture implements gpu.Encoder.
func (d *Device) UnbindTexture(slot gpu.TextureSlot) {
	d.mu.Lock()
	delete(d.bound, slot)
	d.mu.Unlock()
}

// Draw implements gpu.Encoder. It checks that every referenced buffer is
// alive and large enough for the element count.
func (d *Device) Draw(call *gpu.DrawCall) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.inPass {
		return errNoPass
	}
	sh, ok := d.shaders[d.shader]
	if !ok {
		return errors.New("record: draw without shader")
	}
	eb, ok := d.buffers[call.Elements]
	if !ok {
		return fmt.Errorf("record: draw %q elements: %w", call.Label, gpu.ErrInvalidBuffer)
	}
	if 4*call.ElementCount > len(eb.Data) {
		return fmt.Errorf("record: draw %q: %d elements exceed buffer", call.Label, call.ElementCount)
	}
	for _, vb := range call.Vertices {
		if _, ok := d.buffers[vb.Buffer]; !ok {
			return fmt.Errorf("record: draw %q %s: %w", call.Label, vb.Kind, gpu.ErrInvalidBuffer)
		}
	}
	c := *call
	c.Vertices = append([]gpu.VertexBinding(nil), call.Vertices...)
	d.draws = append(d.draws, Draw{
		Pass:         d.pass,
		Shader:       d.shader,
		Capabilities: sh.Desc.Capabilities,
		Call:         c,
		View:         d.view,
		Model:        d.model,
		Color:        d.color,
		Textures:     maps.Clone(d.bound),
	})
	return nil
}
