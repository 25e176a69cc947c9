// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpu

import (
	"fmt"
	"log/slog"

	"github.com/gogpu/drawing/internal/cache"
)

// ShaderCache maps capability bitmasks to shader variants.
//
// Each variant is generated, compiled and created on the device the first
// time its bitmask is requested and is immutable afterwards. The cache is
// shared by every node drawn on the same device and is safe for concurrent
// use.
type ShaderCache struct {
	dev      Device
	compiler Compiler
	logger   *slog.Logger
	variants *cache.Cache[Capability, ShaderID]
}

// NewShaderCache creates a cache that compiles with compiler and creates
// shaders on dev. A nil compiler means NagaCompiler; a nil logger discards.
func NewShaderCache(dev Device, compiler Compiler, logger *slog.Logger) *ShaderCache {
	if compiler == nil {
		compiler = NagaCompiler{}
	}
	if logger == nil {
		logger = DiscardLogger()
	}
	return &ShaderCache{
		dev:      dev,
		compiler: compiler,
		logger:   logger,
		variants: cache.New[Capability, ShaderID](),
	}
}

// Get returns the shader for caps, compiling it on first use.
// Compile failures wrap ErrShaderCompile and are not cached.
func (c *ShaderCache) Get(caps Capability) (ShaderID, error) {
	return c.variants.GetOrCreate(caps, func() (ShaderID, error) {
		label := "drawing_" + caps.String()
		src := ShaderSource(caps)
		spirv, err := c.compiler.Compile(label, src)
		if err != nil {
			return InvalidID, fmt.Errorf("%w: %s: %w", ErrShaderCompile, caps, err)
		}
		id, err := c.dev.CreateShader(&ShaderDesc{
			Label:        label,
			Capabilities: caps,
			WGSL:         src,
			SPIRV:        spirv,
		})
		if err != nil {
			return InvalidID, fmt.Errorf("%w: create %s: %w", ErrShaderCompile, caps, err)
		}
		c.logger.Debug("shader variant compiled", "caps", caps.String(), "spirv_bytes", len(spirv))
		return id, nil
	})
}

// Len returns the number of compiled variants.
func (c *ShaderCache) Len() int {
	return c.variants.Len()
}

// Variants returns the compiled bitmasks in compilation order.
func (c *ShaderCache) Variants() []Capability {
	return c.variants.Keys()
}

// Release destroys every compiled shader.
func (c *ShaderCache) Release() {
	for _, id := range c.variants.Clear() {
		c.dev.DestroyShader(id)
	}
}
