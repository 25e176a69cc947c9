// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogpu

// Package halgpu implements the gpu interfaces on top of gogpu/wgpu's HAL.
//
// A Device wraps the hal.Device and hal.Queue of a shared
// gpucontext.DeviceProvider. Resources are tracked in ID maps; render
// pipelines are created lazily, one per shader, primitive, pass and vertex
// layout, and cached for the lifetime of the device.
//
// Frames are recorded with BeginFrame and submitted with Frame.Submit,
// which waits for the GPU before returning.
package halgpu

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/drawing/gpu"
)

// ErrNoHAL is returned for providers that do not expose HAL objects.
var ErrNoHAL = errors.New("halgpu: provider does not expose HAL types")

// ErrSubmitTimeout is returned when a submitted frame does not complete in time.
var ErrSubmitTimeout = errors.New("halgpu: GPU did not complete submission")

// depthFormat is the depth attachment format of every frame.
const depthFormat = gputypes.TextureFormatDepth24PlusStencil8

type buffer struct {
	buf  hal.Buffer
	kind gpu.BufferKind
	size int
}

type shader struct {
	module     hal.ShaderModule
	caps       gpu.Capability
	texLayout  hal.BindGroupLayout // nil when the variant samples no texture
	pipeLayout hal.PipelineLayout
}

type texture struct {
	tex  hal.Texture
	view hal.TextureView
	desc gpu.TextureDesc
}

// Option configures a Device.
type Option func(*Device)

// WithLogger sets the logger for resource lifecycle and frame diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(d *Device) {
		if l != nil {
			d.logger = l
		}
	}
}

// WithColorFormat overrides the color target format, which otherwise
// follows the provider's surface format.
func WithColorFormat(f gputypes.TextureFormat) Option {
	return func(d *Device) { d.colorFormat = f }
}

// Device implements gpu.Device with a HAL device.
//
// Device is safe for concurrent use; frames recorded from it are not.
type Device struct {
	mu     sync.RWMutex
	nextID atomic.Uint64

	device      hal.Device
	queue       hal.Queue
	colorFormat gputypes.TextureFormat
	logger      *slog.Logger

	buffers   map[gpu.BufferID]*buffer
	shaders   map[gpu.ShaderID]*shader
	textures  map[gpu.TextureID]*texture
	pipelines map[pipelineKey]hal.RenderPipeline

	uniformLayout hal.BindGroupLayout
	sampler       hal.Sampler
	dummy2D       *texture
	dummy3D       *texture

	released bool
}

// New wraps the HAL device of provider. The provider must implement
// HalDevice() any and HalQueue() any returning hal.Device and hal.Queue.
func New(provider gpucontext.DeviceProvider, opts ...Option) (*Device, error) {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return nil, ErrNoHAL
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return nil, fmt.Errorf("%w: HalDevice is not hal.Device", ErrNoHAL)
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return nil, fmt.Errorf("%w: HalQueue is not hal.Queue", ErrNoHAL)
	}

	d := &Device{
		device:      device,
		queue:       queue,
		colorFormat: provider.SurfaceFormat(),
		logger:      gpu.DiscardLogger(),
		buffers:     make(map[gpu.BufferID]*buffer),
		shaders:     make(map[gpu.ShaderID]*shader),
		textures:    make(map[gpu.TextureID]*texture),
		pipelines:   make(map[pipelineKey]hal.RenderPipeline),
	}
	d.nextID.Store(1)
	for _, opt := range opts {
		opt(d)
	}
	if d.colorFormat == gputypes.TextureFormatUndefined {
		d.colorFormat = gputypes.TextureFormatBGRA8Unorm
	}
	if err := d.createShared(); err != nil {
		d.Release()
		return nil, err
	}
	d.logger.Info("halgpu: device ready", "color_format", d.colorFormat)
	return d, nil
}

func (d *Device) newID() uint64 {
	return d.nextID.Add(1) - 1
}

// createShared creates the uniform layout and sampler every variant uses.
func (d *Device) createShared() error {
	ul, err := d.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "drawing_uniform_layout",
		Entries: []gputypes.BindGroupLayoutEntry{{
			Binding:    0,
			Visibility: gputypes.ShaderStageVertex | gputypes.ShaderStageFragment,
			Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform},
		}},
	})
	if err != nil {
		return fmt.Errorf("halgpu: create uniform layout: %w", err)
	}
	d.uniformLayout = ul

	s, err := d.device.CreateSampler(&hal.SamplerDescriptor{
		Label:        "drawing_sampler",
		AddressModeU: gputypes.AddressModeClampToEdge,
		AddressModeV: gputypes.AddressModeClampToEdge,
		AddressModeW: gputypes.AddressModeClampToEdge,
		MagFilter:    gputypes.FilterModeLinear,
		MinFilter:    gputypes.FilterModeLinear,
		MipmapFilter: gputypes.FilterModeLinear,
	})
	if err != nil {
		return fmt.Errorf("halgpu: create sampler: %w", err)
	}
	d.sampler = s
	return nil
}

// CreateBuffer implements gpu.Device.
func (d *Device) CreateBuffer(desc *gpu.BufferDesc) (gpu.BufferID, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.released {
		return gpu.InvalidID, gpu.ErrDeviceLost
	}
	// Buffer sizes must be 4-byte aligned for queue writes.
	size := uint64((desc.Size + 3) &^ 3)
	buf, err := d.device.CreateBuffer(&hal.BufferDescriptor{
		Label: desc.Label,
		Size:  size,
		Usage: desc.Kind.Usage(),
	})
	if err != nil {
		return gpu.InvalidID, fmt.Errorf("halgpu: create buffer %q: %w", desc.Label, err)
	}
	id := gpu.BufferID(d.newID())
	d.buffers[id] = &buffer{buf: buf, kind: desc.Kind, size: desc.Size}
	return id, nil
}

// WriteBuffer implements gpu.Device.
func (d *Device) WriteBuffer(id gpu.BufferID, data []byte) error {
	d.mu.RLock()
	b, ok := d.buffers[id]
	d.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %d", gpu.ErrInvalidBuffer, id)
	}
	if len(data) > b.size {
		return fmt.Errorf("halgpu: write %d bytes to %d byte buffer: %w", len(data), b.size, gpu.ErrInvalidBuffer)
	}
	if n := len(data); n%4 != 0 {
		padded := make([]byte, (n+3)&^3)
		copy(padded, data)
		data = padded
	}
	if err := d.queue.WriteBuffer(b.buf, 0, data); err != nil {
		return fmt.Errorf("halgpu: write buffer %d: %w", id, err)
	}
	return nil
}

// DestroyBuffer implements gpu.Device.
func (d *Device) DestroyBuffer(id gpu.BufferID) {
	d.mu.Lock()
	b, ok := d.buffers[id]
	delete(d.buffers, id)
	d.mu.Unlock()
	if ok {
		d.device.DestroyBuffer(b.buf)
	}
}

// CreateShader implements gpu.Device. The variant's WGSL source is handed
// to the HAL, which performs its own lowering.
func (d *Device) CreateShader(desc *gpu.ShaderDesc) (gpu.ShaderID, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.released {
		return gpu.InvalidID, gpu.ErrDeviceLost
	}
	module, err := d.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  desc.Label,
		Source: hal.ShaderSource{WGSL: desc.WGSL},
	})
	if err != nil {
		return gpu.InvalidID, fmt.Errorf("halgpu: create shader %q: %w", desc.Label, err)
	}
	s := &shader{module: module, caps: desc.Capabilities}

	layouts := []hal.BindGroupLayout{d.uniformLayout}
	if entries := textureLayoutEntries(desc.Capabilities); len(entries) > 0 {
		tl, err := d.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
			Label:   desc.Label + "_texture_layout",
			Entries: entries,
		})
		if err != nil {
			d.device.DestroyShaderModule(module)
			return gpu.InvalidID, fmt.Errorf("halgpu: create texture layout %q: %w", desc.Label, err)
		}
		s.texLayout = tl
		layouts = append(layouts, tl)
	}
	pl, err := d.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            desc.Label + "_pipe_layout",
		BindGroupLayouts: layouts,
	})
	if err != nil {
		d.destroyShader(s)
		return gpu.InvalidID, fmt.Errorf("halgpu: create pipeline layout %q: %w", desc.Label, err)
	}
	s.pipeLayout = pl

	id := gpu.ShaderID(d.newID())
	d.shaders[id] = s
	return id, nil
}

// textureLayoutEntries returns the group 1 layout of a variant: a 2-D
// texture and sampler at bindings 0 and 1, a 3-D texture and sampler at
// bindings 2 and 3.
func textureLayoutEntries(caps gpu.Capability) []gputypes.BindGroupLayoutEntry {
	var entries []gputypes.BindGroupLayoutEntry
	add := func(binding uint32, dim gputypes.TextureViewDimension) {
		entries = append(entries,
			gputypes.BindGroupLayoutEntry{
				Binding:    binding,
				Visibility: gputypes.ShaderStageFragment,
				Texture: &gputypes.TextureBindingLayout{
					SampleType:    gputypes.TextureSampleTypeFloat,
					ViewDimension: dim,
				},
			},
			gputypes.BindGroupLayoutEntry{
				Binding:    binding + 1,
				Visibility: gputypes.ShaderStageFragment,
				Sampler:    &gputypes.SamplerBindingLayout{Type: gputypes.SamplerBindingTypeFiltering},
			},
		)
	}
	if caps.Has(gpu.CapTexture2D) {
		add(0, gputypes.TextureViewDimension2D)
	}
	if caps.Has(gpu.CapAmbientTexture3D) {
		add(2, gputypes.TextureViewDimension3D)
	}
	return entries
}

// DestroyShader implements gpu.Device. Pipelines built from the shader are
// destroyed with it.
func (d *Device) DestroyShader(id gpu.ShaderID) {
	d.mu.Lock()
	defer d.mu.Unlock()
	s, ok := d.shaders[id]
	if !ok {
		return
	}
	delete(d.shaders, id)
	for k, p := range d.pipelines {
		if k.shader == id {
			d.device.DestroyRenderPipeline(p)
			delete(d.pipelines, k)
		}
	}
	d.destroyShader(s)
}

func (d *Device) destroyShader(s *shader) {
	if s.pipeLayout != nil {
		d.device.DestroyPipelineLayout(s.pipeLayout)
	}
	if s.texLayout != nil {
		d.device.DestroyBindGroupLayout(s.texLayout)
	}
	d.device.DestroyShaderModule(s.module)
}

// CreateTexture implements gpu.Device.
func (d *Device) CreateTexture(desc *gpu.TextureDesc, pixels []byte) (gpu.TextureID, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.released {
		return gpu.InvalidID, gpu.ErrDeviceLost
	}
	t, err := d.createTexture(desc, pixels)
	if err != nil {
		return gpu.InvalidID, err
	}
	id := gpu.TextureID(d.newID())
	d.textures[id] = t
	return id, nil
}

func (d *Device) createTexture(desc *gpu.TextureDesc, pixels []byte) (*texture, error) {
	depth := max(desc.Depth, 1)
	want := desc.Width * desc.Height * depth * desc.Format.BytesPerPixel()
	if len(pixels) != want {
		return nil, fmt.Errorf("halgpu: texture %q: %d bytes, want %d: %w", desc.Label, len(pixels), want, gpu.ErrInvalidTexture)
	}

	format := gputypes.TextureFormatRGBA8Unorm
	if desc.Format == gpu.TextureFormatR8 {
		format = gputypes.TextureFormatR8Unorm
	}
	dim, viewDim := gputypes.TextureDimension2D, gputypes.TextureViewDimension2D
	if desc.Depth > 1 || desc.Format == gpu.TextureFormatR8 {
		dim, viewDim = gputypes.TextureDimension3D, gputypes.TextureViewDimension3D
	}
	size := hal.Extent3D{Width: uint32(desc.Width), Height: uint32(desc.Height), DepthOrArrayLayers: uint32(depth)} //nolint:gosec // texture sizes are bounded by the max texture size

	tex, err := d.device.CreateTexture(&hal.TextureDescriptor{
		Label:         desc.Label,
		Size:          size,
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     dim,
		Format:        format,
		Usage:         gputypes.TextureUsageTextureBinding | gputypes.TextureUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("halgpu: create texture %q: %w", desc.Label, err)
	}
	view, err := d.device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label:         desc.Label + "_view",
		Format:        format,
		Dimension:     viewDim,
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: 1,
	})
	if err != nil {
		d.device.DestroyTexture(tex)
		return nil, fmt.Errorf("halgpu: create texture view %q: %w", desc.Label, err)
	}

	bpr := uint32(desc.Width * desc.Format.BytesPerPixel()) //nolint:gosec // bounded as above
	err = d.queue.WriteTexture(
		&hal.ImageCopyTexture{Texture: tex, MipLevel: 0},
		pixels,
		&hal.ImageDataLayout{Offset: 0, BytesPerRow: bpr, RowsPerImage: uint32(desc.Height)}, //nolint:gosec // bounded as above
		&size,
	)
	if err != nil {
		d.device.DestroyTextureView(view)
		d.device.DestroyTexture(tex)
		return nil, fmt.Errorf("halgpu: upload texture %q: %w", desc.Label, err)
	}
	return &texture{tex: tex, view: view, desc: *desc}, nil
}

// DestroyTexture implements gpu.Device.
func (d *Device) DestroyTexture(id gpu.TextureID) {
	d.mu.Lock()
	t, ok := d.textures[id]
	delete(d.textures, id)
	d.mu.Unlock()
	if ok {
		d.destroyTexture(t)
	}
}

func (d *Device) destroyTexture(t *texture) {
	d.device.DestroyTextureView(t.view)
	d.device.DestroyTexture(t.tex)
}

// dummyTexture returns a 1x1 white texture standing in for an unbound
// slot, so a variant's bind group is always complete.
func (d *Device) dummyTexture(slot gpu.TextureSlot) (*texture, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	p, desc, px := &d.dummy2D, gpu.TextureDesc{Label: "drawing_dummy_2d", Width: 1, Height: 1, Depth: 1, Format: gpu.TextureFormatRGBA8}, []byte{255, 255, 255, 255}
	if slot == gpu.SlotAmbient3D {
		p, desc, px = &d.dummy3D, gpu.TextureDesc{Label: "drawing_dummy_3d", Width: 1, Height: 1, Depth: 1, Format: gpu.TextureFormatR8}, []byte{255}
	}
	if *p != nil {
		return *p, nil
	}
	t, err := d.createTexture(&desc, px)
	if err != nil {
		return nil, err
	}
	*p = t
	return t, nil
}

// Stats reports the number of live resources of each kind.
type Stats struct {
	Buffers, Shaders, Textures, Pipelines int
}

// Stats returns the live resource counts.
func (d *Device) Stats() Stats {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return Stats{
		Buffers:   len(d.buffers),
		Shaders:   len(d.shaders),
		Textures:  len(d.textures),
		Pipelines: len(d.pipelines),
	}
}

// Release destroys every resource the device created. The underlying HAL
// device belongs to the provider and stays alive.
func (d *Device) Release() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.released {
		return
	}
	d.released = true
	for k, p := range d.pipelines {
		d.device.DestroyRenderPipeline(p)
		delete(d.pipelines, k)
	}
	for id, s := range d.shaders {
		d.destroyShader(s)
		delete(d.shaders, id)
	}
	for id, b := range d.buffers {
		d.device.DestroyBuffer(b.buf)
		delete(d.buffers, id)
	}
	for id, t := range d.textures {
		d.destroyTexture(t)
		delete(d.textures, id)
	}
	for _, t := range []*texture{d.dummy2D, d.dummy3D} {
		if t != nil {
			d.destroyTexture(t)
		}
	}
	d.dummy2D, d.dummy3D = nil, nil
	if d.sampler != nil {
		d.device.DestroySampler(d.sampler)
		d.sampler = nil
	}
	if d.uniformLayout != nil {
		d.device.DestroyBindGroupLayout(d.uniformLayout)
		d.uniformLayout = nil
	}
	d.logger.Info("halgpu: device released")
}

var _ gpu.Device = (*Device)(nil)
