// Package intercept implements the geometric kernels behind picking and
// element-array derivation: segment/triangle intersection and masked
// triangle and edge index lists.
package intercept

import (
	"github.com/chewxy/math32"

	"github.com/gogpu/drawing/geom"
)

// parallelEpsilon rejects segments lying in (or nearly in) a triangle's plane.
const parallelEpsilon = 1e-12

// SegmentTriangle returns the fraction along the segment p0→p1 at which it
// crosses triangle (a, b, c). ok is false when they do not meet within the
// segment.
func SegmentTriangle(p0, p1, a, b, c geom.Vec3) (f float32, ok bool) {
	d := p1.Sub(p0)
	e1 := b.Sub(a)
	e2 := c.Sub(a)
	h := d.Cross(e2)
	det := e1.Dot(h)
	if math32.Abs(det) < parallelEpsilon {
		return 0, false
	}
	inv := 1 / det
	s := p0.Sub(a)
	u := inv * s.Dot(h)
	if u < 0 || u > 1 {
		return 0, false
	}
	q := s.Cross(e1)
	v := inv * d.Dot(q)
	if v < 0 || u+v > 1 {
		return 0, false
	}
	f = inv * e2.Dot(q)
	if f < 0 || f > 1 {
		return 0, false
	}
	return f, true
}

// ClosestTriangle finds the triangle crossed nearest to p0 along p0→p1.
// Triangles whose mask entry is false are skipped; a nil mask keeps all.
// On equal fractions the lowest triangle index wins.
func ClosestTriangle(vertices []geom.Vec3, triangles [][3]uint32, mask []bool, p0, p1 geom.Vec3) (f float32, tri int, ok bool) {
	tri = -1
	for t, ijk := range triangles {
		if mask != nil && !mask[t] {
			continue
		}
		ft, hit := SegmentTriangle(p0, p1, vertices[ijk[0]], vertices[ijk[1]], vertices[ijk[2]])
		if hit && (tri < 0 || ft < f) {
			f, tri = ft, t
		}
	}
	return f, tri, tri >= 0
}
