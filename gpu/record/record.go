// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package record provides an in-memory GPU device that keeps every resource
// on the CPU and records every command.
//
// It backs headless runs of the scene renderer and doubles as the
// instrumented device in tests: upload counts, live resources and the
// recorded draws of each pass can all be inspected.
package record

import (
	"fmt"
	"sync"

	"github.com/gogpu/drawing/geom"
	"github.com/gogpu/drawing/gpu"
)

// Buffer is the CPU copy of a device buffer.
type Buffer struct {
	Label   string
	Kind    gpu.BufferKind
	Data    []byte
	Uploads int
}

// Texture is the CPU copy of a device texture.
type Texture struct {
	Desc   gpu.TextureDesc
	Pixels []byte
}

// Shader is a created shader variant.
type Shader struct {
	Desc gpu.ShaderDesc
}

// Draw is one recorded draw call with the state it ran under.
type Draw struct {
	Pass         gpu.Pass
	Shader       gpu.ShaderID
	Capabilities gpu.Capability
	Call         gpu.DrawCall
	View         geom.Place
	Model        geom.Place
	Color        [4]float32
	Textures     map[gpu.TextureSlot]gpu.TextureID
}

// Device implements gpu.Device and gpu.Encoder in memory.
//
// Device is safe for concurrent use.
type Device struct {
	mu sync.Mutex

	nextID   uint64
	buffers  map[gpu.BufferID]*Buffer
	shaders  map[gpu.ShaderID]*Shader
	textures map[gpu.TextureID]*Texture

	// Counters since the last ResetCounters.
	uploads        int
	bufferCreates  int
	shaderCreates  int
	textureCreates int

	// Encoder state.
	pass     gpu.Pass
	inPass   bool
	passes   []gpu.Pass
	shader   gpu.ShaderID
	view     geom.Place
	model    geom.Place
	ambient  geom.Place
	color    [4]float32
	bound    map[gpu.TextureSlot]gpu.TextureID
	draws    []Draw
	released bool

	// FailShaders makes CreateShader fail for these capability sets.
	FailShaders map[gpu.Capability]bool
}

// New creates an empty recording device.
func New() *Device {
	return &Device{
		nextID:   1,
		buffers:  make(map[gpu.BufferID]*Buffer),
		shaders:  make(map[gpu.ShaderID]*Shader),
		textures: make(map[gpu.TextureID]*Texture),
		bound:    make(map[gpu.TextureSlot]gpu.TextureID),
		view:     geom.Identity(),
		model:    geom.Identity(),
		ambient:  geom.Identity(),
	}
}

func (d *Device) newID() uint64 {
	id := d.nextID
	d.nextID++
	return id
}

// === gpu.Device ===

// CreateBuffer implements gpu.Device.
func (d *Device) CreateBuffer(desc *gpu.BufferDesc) (gpu.BufferID, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.released {
		return gpu.InvalidID, gpu.ErrDeviceLost
	}
	if desc.Size <= 0 {
		return gpu.InvalidID, fmt.Errorf("record: buffer %q: size %d", desc.Label, desc.Size)
	}
	id := gpu.BufferID(d.newID())
	d.buffers[id] = &Buffer{Label: desc.Label, Kind: desc.Kind, Data: make([]byte, desc.Size)}
	d.bufferCreates++
	return id, nil
}

// WriteBuffer implements gpu.Device.
func (d *Device) WriteBuffer(id gpu.BufferID, data []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	b, ok := d.buffers[id]
	if !ok {
		return fmt.Errorf("record: write %d: %w", id, gpu.ErrInvalidBuffer)
	}
	if len(data) > len(b.Data) {
		return fmt.Errorf("record: write %d bytes to %d-byte buffer %q", len(data), len(b.Data), b.Label)
	}
	copy(b.Data, data)
	b.Uploads++
	d.uploads++
	return nil
}

// DestroyBuffer implements gpu.Device.
func (d *Device) DestroyBuffer(id gpu.BufferID) {
	d.mu.Lock()
	delete(d.buffers, id)
	d.mu.Unlock()
}

// CreateShader implements gpu.Device.
func (d *Device) CreateShader(desc *gpu.ShaderDesc) (gpu.ShaderID, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.released {
		return gpu.InvalidID, gpu.ErrDeviceLost
	}
	if d.FailShaders[desc.Capabilities] {
		return gpu.InvalidID, fmt.Errorf("record: shader %q rejected", desc.Label)
	}
	id := gpu.ShaderID(d.newID())
	d.shaders[id] = &Shader{Desc: *desc}
	d.shaderCreates++
	return id, nil
}

// DestroyShader implements gpu.Device.
func (d *Device) DestroyShader(id gpu.ShaderID) {
	d.mu.Lock()
	delete(d.shaders, id)
	d.mu.Unlock()
}

// CreateTexture implements gpu.Device.
func (d *Device) CreateTexture(desc *gpu.TextureDesc, pixels []byte) (gpu.TextureID, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.released {
		return gpu.InvalidID, gpu.ErrDeviceLost
	}
	depth := max(desc.Depth, 1)
	want := desc.Width * desc.Height * depth * desc.Format.BytesPerPixel()
	if len(pixels) != want {
		return gpu.InvalidID, fmt.Errorf("record: texture %q: got %d bytes, want %d", desc.Label, len(pixels), want)
	}
	id := gpu.TextureID(d.newID())
	d.textures[id] = &Texture{Desc: *desc, Pixels: append([]byte(nil), pixels...)}
	d.textureCreates++
	return id, nil
}

// DestroyTexture implements gpu.Device.
func (d *Device) DestroyTexture(id gpu.TextureID) {
	d.mu.Lock()
	delete(d.textures, id)
	d.mu.Unlock()
}

// Release drops every resource; later creations fail with gpu.ErrDeviceLost.
func (d *Device) Release() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.buffers = make(map[gpu.BufferID]*Buffer)
	d.shaders = make(map[gpu.ShaderID]*Shader)
	d.textures = make(map[gpu.TextureID]*Texture)
	d.released = true
}

// === inspection ===

// Uploads returns the number of WriteBuffer calls since the last reset.
func (d *Device) Uploads() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.uploads
}

// UploadsByKind returns the per-kind upload totals of live buffers.
func (d *Device) UploadsByKind() map[gpu.BufferKind]int {
	d.mu.Lock()
	defer d.mu.Unlock()

	out := make(map[gpu.BufferKind]int)
	for _, b := range d.buffers {
		out[b.Kind] += b.Uploads
	}
	return out
}

// Buffer returns the CPU copy of a live buffer.
func (d *Device) Buffer(id gpu.BufferID) (*Buffer, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	b, ok := d.buffers[id]
	return b, ok
}

// Texture returns the CPU copy of a live texture.
func (d *Device) Texture(id gpu.TextureID) (*Texture, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	t, ok := d.textures[id]
	return t, ok
}

// Shader returns a live shader.
func (d *Device) Shader(id gpu.ShaderID) (*Shader, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	s, ok := d.shaders[id]
	return s, ok
}

// Live returns the number of live buffers, shaders and textures.
func (d *Device) Live() (buffers, shaders, textures int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.buffers), len(d.shaders), len(d.textures)
}

// Creates returns how many buffers, shaders and textures were created since
// the last reset.
func (d *Device) Creates() (buffers, shaders, textures int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.bufferCreates, d.shaderCreates, d.textureCreates
}

// Draws returns the draws recorded since the last reset.
func (d *Device) Draws() []Draw {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]Draw(nil), d.draws...)
}

// DrawsIn returns the recorded draws of one pass.
func (d *Device) DrawsIn(p gpu.Pass) []Draw {
	d.mu.Lock()
	defer d.mu.Unlock()

	var out []Draw
	for _, dr := range d.draws {
		if dr.Pass == p {
			out = append(out, dr)
		}
	}
	return out
}

// Passes returns the passes begun since the last reset, in order.
func (d *Device) Passes() []gpu.Pass {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]gpu.Pass(nil), d.passes...)
}

// ResetCounters clears upload and creation counters, recorded passes and
// draws. Resources stay alive.
func (d *Device) ResetCounters() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.uploads, d.bufferCreates, d.shaderCreates, d.textureCreates = 0, 0, 0, 0
	for _, b := range d.buffers {
		b.Uploads = 0
	}
	d.passes = nil
	d.draws = nil
}

var (
	_ gpu.Device  = (*Device)(nil)
	_ gpu.Encoder = (*Device)(nil)
)
