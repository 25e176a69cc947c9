package geom

import "github.com/chewxy/math32"

// Bounds is an axis-aligned bounding box.
// The empty box has Min at +Inf and Max at -Inf so that Union behaves.
type Bounds struct {
	Min, Max Vec3
}

// EmptyBounds returns a box containing nothing.
func EmptyBounds() Bounds {
	inf := math32.Inf(1)
	return Bounds{
		Min: Vec3{inf, inf, inf},
		Max: Vec3{-inf, -inf, -inf},
	}
}

// IsEmpty reports whether the box contains no point.
func (b Bounds) IsEmpty() bool {
	return b.Min.X > b.Max.X || b.Min.Y > b.Max.Y || b.Min.Z > b.Max.Z
}

// PointBounds returns the bounds of points, empty when there are none.
func PointBounds(points []Vec3) Bounds {
	b := EmptyBounds()
	for _, p := range points {
		b = b.UnionPoint(p)
	}
	return b
}

// UnionPoint expands the box to include p.
func (b Bounds) UnionPoint(p Vec3) Bounds {
	return Bounds{Min: b.Min.Min(p), Max: b.Max.Max(p)}
}

// Union returns the smallest box containing b and o.
func (b Bounds) Union(o Bounds) Bounds {
	if o.IsEmpty() {
		return b
	}
	if b.IsEmpty() {
		return o
	}
	return Bounds{Min: b.Min.Min(o.Min), Max: b.Max.Max(o.Max)}
}

// Corners returns the eight corners of the box.
func (b Bounds) Corners() [8]Vec3 {
	lo, hi := b.Min, b.Max
	return [8]Vec3{
		{lo.X, lo.Y, lo.Z}, {hi.X, lo.Y, lo.Z}, {lo.X, hi.Y, lo.Z}, {hi.X, hi.Y, lo.Z},
		{lo.X, lo.Y, hi.Z}, {hi.X, lo.Y, hi.Z}, {lo.X, hi.Y, hi.Z}, {hi.X, hi.Y, hi.Z},
	}
}

// Transform returns the bounds of the box after applying p to its corners.
func (b Bounds) Transform(p Place) Bounds {
	if b.IsEmpty() {
		return b
	}
	if p.IsIdentity() {
		return b
	}
	if p.IsTranslation() {
		t := p.Shift()
		return Bounds{Min: b.Min.Add(t), Max: b.Max.Add(t)}
	}
	out := EmptyBounds()
	for _, c := range b.Corners() {
		out = out.UnionPoint(p.Apply(c))
	}
	return out
}

// CopiesBounds returns the union of b placed at every placement of ps.
func (b Bounds) CopiesBounds(ps Places) Bounds {
	if b.IsEmpty() {
		return b
	}
	if ps.IsIdentity() {
		return b
	}
	out := EmptyBounds()
	if sas := ps.ShiftAndScale(); sas != nil {
		for _, s := range sas {
			lo, hi := b.Min.Scale(s.Scale).Add(s.Shift), b.Max.Scale(s.Scale).Add(s.Shift)
			out = out.UnionPoint(lo).UnionPoint(hi)
		}
		return out
	}
	for i := 0; i < ps.Len(); i++ {
		out = out.Union(b.Transform(ps.At(i)))
	}
	return out
}

// Center returns the midpoint of the box.
func (b Bounds) Center() Vec3 {
	return b.Min.Add(b.Max).Scale(0.5)
}

// Size returns the edge lengths of the box.
func (b Bounds) Size() Vec3 {
	if b.IsEmpty() {
		return Vec3{}
	}
	return b.Max.Sub(b.Min)
}

// Radius returns half the diagonal length.
func (b Bounds) Radius() float32 {
	return b.Size().Len() / 2
}

// Expand grows the box by d on every side.
func (b Bounds) Expand(d float32) Bounds {
	if b.IsEmpty() {
		return b
	}
	pad := Vec3{d, d, d}
	return Bounds{Min: b.Min.Sub(pad), Max: b.Max.Add(pad)}
}

// IntersectsSegment reports whether the segment from p0 to p1 touches the box.
func (b Bounds) IntersectsSegment(p0, p1 Vec3) bool {
	if b.IsEmpty() {
		return false
	}
	d := p1.Sub(p0)
	tmin, tmax := float32(0), float32(1)
	o, lo, hi, dd := p0.Array(), b.Min.Array(), b.Max.Array(), d.Array()
	for a := 0; a < 3; a++ {
		if dd[a] == 0 {
			if o[a] < lo[a] || o[a] > hi[a] {
				return false
			}
			continue
		}
		inv := 1 / dd[a]
		t0, t1 := (lo[a]-o[a])*inv, (hi[a]-o[a])*inv
		if t0 > t1 {
			t0, t1 = t1, t0
		}
		tmin = math32.Max(tmin, t0)
		tmax = math32.Min(tmax, t1)
		if tmin > tmax {
			return false
		}
	}
	return true
}
