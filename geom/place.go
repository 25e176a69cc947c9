package geom

import "github.com/chewxy/math32"

// Place represents a 3-D affine transformation.
// It uses a 3x4 matrix in row-major order:
//
//	| m00 m01 m02 m03 |
//	| m10 m11 m12 m13 |
//	| m20 m21 m22 m23 |
//
// The left 3x3 block is the linear part and the last column is the shift:
//
//	p' = L*p + shift
type Place struct {
	M [3][4]float32
}

// Identity returns the identity placement.
func Identity() Place {
	return Place{M: [3][4]float32{
		{1, 0, 0, 0},
		{0, 1, 0, 0},
		{0, 0, 1, 0},
	}}
}

// Translation creates a placement that shifts by t.
func Translation(t Vec3) Place {
	return Place{M: [3][4]float32{
		{1, 0, 0, t.X},
		{0, 1, 0, t.Y},
		{0, 0, 1, t.Z},
	}}
}

// Scale creates a placement scaling each axis independently.
func Scale(sx, sy, sz float32) Place {
	return Place{M: [3][4]float32{
		{sx, 0, 0, 0},
		{0, sy, 0, 0},
		{0, 0, sz, 0},
	}}
}

// UniformScale creates an isotropic scaling placement.
func UniformScale(s float32) Place {
	return Scale(s, s, s)
}

// ShiftScalePlace creates a placement that scales by s and then shifts by t.
func ShiftScalePlace(t Vec3, s float32) Place {
	return Place{M: [3][4]float32{
		{s, 0, 0, t.X},
		{0, s, 0, t.Y},
		{0, 0, s, t.Z},
	}}
}

// Rotation creates a rotation about axis through the origin (angle in degrees).
func Rotation(axis Vec3, degrees float32) Place {
	a := axis.Normalize()
	rad := degrees * math32.Pi / 180
	c, s := math32.Cos(rad), math32.Sin(rad)
	k := 1 - c
	return Place{M: [3][4]float32{
		{c + a.X*a.X*k, a.X*a.Y*k - a.Z*s, a.X*a.Z*k + a.Y*s, 0},
		{a.Y*a.X*k + a.Z*s, c + a.Y*a.Y*k, a.Y*a.Z*k - a.X*s, 0},
		{a.Z*a.X*k - a.Y*s, a.Z*a.Y*k + a.X*s, c + a.Z*a.Z*k, 0},
	}}
}

// Mul composes two placements (p * q): q is applied first, then p.
func (p Place) Mul(q Place) Place {
	var r Place
	for i := 0; i < 3; i++ {
		for j := 0; j < 4; j++ {
			v := p.M[i][0]*q.M[0][j] + p.M[i][1]*q.M[1][j] + p.M[i][2]*q.M[2][j]
			if j == 3 {
				v += p.M[i][3]
			}
			r.M[i][j] = v
		}
	}
	return r
}

// Apply transforms a point.
func (p Place) Apply(v Vec3) Vec3 {
	return Vec3{
		X: p.M[0][0]*v.X + p.M[0][1]*v.Y + p.M[0][2]*v.Z + p.M[0][3],
		Y: p.M[1][0]*v.X + p.M[1][1]*v.Y + p.M[1][2]*v.Z + p.M[1][3],
		Z: p.M[2][0]*v.X + p.M[2][1]*v.Y + p.M[2][2]*v.Z + p.M[2][3],
	}
}

// ApplyVector transforms a direction (no shift).
func (p Place) ApplyVector(v Vec3) Vec3 {
	return Vec3{
		X: p.M[0][0]*v.X + p.M[0][1]*v.Y + p.M[0][2]*v.Z,
		Y: p.M[1][0]*v.X + p.M[1][1]*v.Y + p.M[1][2]*v.Z,
		Z: p.M[2][0]*v.X + p.M[2][1]*v.Y + p.M[2][2]*v.Z,
	}
}

// Shift returns the translation column.
func (p Place) Shift() Vec3 {
	return Vec3{p.M[0][3], p.M[1][3], p.M[2][3]}
}

// Determinant returns the determinant of the linear part.
func (p Place) Determinant() float32 {
	m := &p.M
	return m[0][0]*(m[1][1]*m[2][2]-m[1][2]*m[2][1]) -
		m[0][1]*(m[1][0]*m[2][2]-m[1][2]*m[2][0]) +
		m[0][2]*(m[1][0]*m[2][1]-m[1][1]*m[2][0])
}

// Inverse returns the inverse placement.
// Returns the identity if the placement is not invertible.
func (p Place) Inverse() Place {
	det := p.Determinant()
	if math32.Abs(det) < 1e-12 {
		return Identity()
	}
	m := &p.M
	inv := 1 / det
	var r Place
	r.M[0][0] = (m[1][1]*m[2][2] - m[1][2]*m[2][1]) * inv
	r.M[0][1] = (m[0][2]*m[2][1] - m[0][1]*m[2][2]) * inv
	r.M[0][2] = (m[0][1]*m[1][2] - m[0][2]*m[1][1]) * inv
	r.M[1][0] = (m[1][2]*m[2][0] - m[1][0]*m[2][2]) * inv
	r.M[1][1] = (m[0][0]*m[2][2] - m[0][2]*m[2][0]) * inv
	r.M[1][2] = (m[0][2]*m[1][0] - m[0][0]*m[1][2]) * inv
	r.M[2][0] = (m[1][0]*m[2][1] - m[1][1]*m[2][0]) * inv
	r.M[2][1] = (m[0][1]*m[2][0] - m[0][0]*m[2][1]) * inv
	r.M[2][2] = (m[0][0]*m[1][1] - m[0][1]*m[1][0]) * inv
	t := r.ApplyVector(p.Shift())
	r.M[0][3], r.M[1][3], r.M[2][3] = -t.X, -t.Y, -t.Z
	return r
}

// IsIdentity reports whether p is exactly the identity placement.
func (p Place) IsIdentity() bool {
	return p == Identity()
}

// IsTranslation reports whether p only shifts.
func (p Place) IsTranslation() bool {
	m := &p.M
	return m[0][0] == 1 && m[0][1] == 0 && m[0][2] == 0 &&
		m[1][0] == 0 && m[1][1] == 1 && m[1][2] == 0 &&
		m[2][0] == 0 && m[2][1] == 0 && m[2][2] == 1
}

// ShiftAndScale decomposes p into a shift and an isotropic scale.
// ok is false when p rotates, shears or scales anisotropically.
func (p Place) ShiftAndScale() (shift Vec3, scale float32, ok bool) {
	m := &p.M
	s := m[0][0]
	if m[1][1] != s || m[2][2] != s ||
		m[0][1] != 0 || m[0][2] != 0 ||
		m[1][0] != 0 || m[1][2] != 0 ||
		m[2][0] != 0 || m[2][1] != 0 {
		return Vec3{}, 0, false
	}
	return p.Shift(), s, true
}

// Matrix4 returns p as a column-major 4x4 matrix for GPU upload.
func (p Place) Matrix4() [16]float32 {
	m := &p.M
	return [16]float32{
		m[0][0], m[1][0], m[2][0], 0,
		m[0][1], m[1][1], m[2][1], 0,
		m[0][2], m[1][2], m[2][2], 0,
		m[0][3], m[1][3], m[2][3], 1,
	}
}
