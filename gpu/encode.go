// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpu

import (
	"encoding/binary"
	"math"

	"github.com/gogpu/drawing/geom"
)

// Float32Bytes packs floats little-endian.
func Float32Bytes(fs []float32) []byte {
	if len(fs) == 0 {
		return nil
	}
	buf := make([]byte, 4*len(fs))
	for i, f := range fs {
		binary.LittleEndian.PutUint32(buf[4*i:], math.Float32bits(f))
	}
	return buf
}

// Vec3Bytes packs 3-vectors as consecutive float32 triples.
func Vec3Bytes(vs []geom.Vec3) []byte {
	if len(vs) == 0 {
		return nil
	}
	buf := make([]byte, 12*len(vs))
	for i, v := range vs {
		o := 12 * i
		binary.LittleEndian.PutUint32(buf[o:], math.Float32bits(v.X))
		binary.LittleEndian.PutUint32(buf[o+4:], math.Float32bits(v.Y))
		binary.LittleEndian.PutUint32(buf[o+8:], math.Float32bits(v.Z))
	}
	return buf
}

// Vec2Bytes packs 2-vectors as consecutive float32 pairs.
func Vec2Bytes(vs [][2]float32) []byte {
	if len(vs) == 0 {
		return nil
	}
	buf := make([]byte, 8*len(vs))
	for i, v := range vs {
		binary.LittleEndian.PutUint32(buf[8*i:], math.Float32bits(v[0]))
		binary.LittleEndian.PutUint32(buf[8*i+4:], math.Float32bits(v[1]))
	}
	return buf
}

// Uint32Bytes packs indices little-endian.
func Uint32Bytes(us []uint32) []byte {
	if len(us) == 0 {
		return nil
	}
	buf := make([]byte, 4*len(us))
	for i, u := range us {
		binary.LittleEndian.PutUint32(buf[4*i:], u)
	}
	return buf
}

// RGBABytes packs 8-bit RGBA colors.
func RGBABytes(cs [][4]uint8) []byte {
	if len(cs) == 0 {
		return nil
	}
	buf := make([]byte, 0, 4*len(cs))
	for _, c := range cs {
		buf = append(buf, c[0], c[1], c[2], c[3])
	}
	return buf
}
