// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package gpu defines the GPU abstraction the scene graph renders through.
//
// The scene graph never issues backend calls directly. It talks to two
// interfaces:
//
//   - [Device] owns resources: buffers, shaders and textures, addressed by
//     opaque IDs.
//   - [Encoder] records the commands of one frame: pass changes, matrix and
//     color state, texture binding and indexed draws.
//
// On top of these, [Buffer] mirrors one typed array on the device and only
// re-uploads when the array's version changes, and [ShaderCache] maps a
// [Capability] bitmask to a compiled shader variant, compiling each variant
// once.
//
// Implementations live in sub-packages: gpu/record keeps everything in
// memory and counts every call, gpu/halgpu drives gogpu/wgpu.
package gpu
