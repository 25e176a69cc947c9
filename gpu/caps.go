// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpu

import "strings"

// Capability is a bitmask selecting a shader variant.
type Capability uint32

// Shader capabilities.
const (
	// CapLighting shades with vertex normals.
	CapLighting Capability = 1 << iota
	// CapVertexColors reads a per-vertex or per-instance color attribute.
	CapVertexColors
	// CapTexture2D samples a 2-D texture with texture coordinates.
	CapTexture2D
	// CapAmbientTexture3D modulates by a 3-D ambient texture.
	CapAmbientTexture3D
	// CapShiftAndScale places instances with a shift and isotropic scale.
	CapShiftAndScale
	// CapInstancing places instances with full 4x4 matrices.
	CapInstancing
	// CapSelection writes the flat outline color.
	CapSelection
	// CapDepthOnly writes depth without color.
	CapDepthOnly

	numCapabilities = iota
)

var capNames = [numCapabilities]string{
	"lighting",
	"vertex-colors",
	"texture-2d",
	"ambient-texture-3d",
	"shift-and-scale",
	"instancing",
	"selection",
	"depth-only",
}

// Has reports whether all bits of c2 are set in c.
func (c Capability) Has(c2 Capability) bool {
	return c&c2 == c2
}

// String lists the set capabilities, e.g. "lighting|instancing".
func (c Capability) String() string {
	if c == 0 {
		return "none"
	}
	var parts []string
	for i := 0; i < numCapabilities; i++ {
		if c&(1<<i) != 0 {
			parts = append(parts, capNames[i])
		}
	}
	return strings.Join(parts, "|")
}
