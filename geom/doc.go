// Package geom provides the 3-D value types used by the scene graph:
// vectors, affine placements, placement sequences and axis-aligned bounds.
//
// All types are small values using float32 components, matching what is
// uploaded to the GPU.
package geom
