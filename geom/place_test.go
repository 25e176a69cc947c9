package geom

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func vecNear(t *testing.T, want, got Vec3) {
	t.Helper()
	assert.InDelta(t, want.X, got.X, 1e-5)
	assert.InDelta(t, want.Y, got.Y, 1e-5)
	assert.InDelta(t, want.Z, got.Z, 1e-5)
}

func TestPlaceApply(t *testing.T) {
	tests := []struct {
		name string
		p    Place
		in   Vec3
		want Vec3
	}{
		{"identity", Identity(), V3(1, 2, 3), V3(1, 2, 3)},
		{"translation", Translation(V3(5, 0, -1)), V3(1, 2, 3), V3(6, 2, 2)},
		{"uniform scale", UniformScale(2), V3(1, 2, 3), V3(2, 4, 6)},
		{"shift scale", ShiftScalePlace(V3(1, 1, 1), 3), V3(1, 0, 0), V3(4, 1, 1)},
		{"rotate z 90", Rotation(V3(0, 0, 1), 90), V3(1, 0, 0), V3(0, 1, 0)},
		{"rotate x 180", Rotation(V3(1, 0, 0), 180), V3(0, 1, 0), V3(0, -1, 0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vecNear(t, tt.want, tt.p.Apply(tt.in))
		})
	}
}

func TestPlaceMulOrder(t *testing.T) {
	// Scale first, then translate.
	p := Translation(V3(10, 0, 0)).Mul(UniformScale(2))
	vecNear(t, V3(12, 0, 0), p.Apply(V3(1, 0, 0)))

	// Translate first, then scale.
	q := UniformScale(2).Mul(Translation(V3(10, 0, 0)))
	vecNear(t, V3(22, 0, 0), q.Apply(V3(1, 0, 0)))
}

func TestPlaceInverse(t *testing.T) {
	places := []Place{
		Identity(),
		Translation(V3(1, -2, 3)),
		Rotation(V3(1, 1, 0), 33).Mul(ShiftScalePlace(V3(4, 5, 6), 0.5)),
		Scale(1, 2, 4),
	}
	pt := V3(0.3, -7, 2)
	for _, p := range places {
		vecNear(t, pt, p.Inverse().Apply(p.Apply(pt)))
		assert.True(t, p.Mul(p.Inverse()).IsIdentity() || closeToIdentity(p.Mul(p.Inverse())))
	}
	assert.True(t, Scale(0, 1, 1).Inverse().IsIdentity(), "singular placement inverts to identity")
}

func closeToIdentity(p Place) bool {
	id := Identity()
	for i := 0; i < 3; i++ {
		for j := 0; j < 4; j++ {
			d := p.M[i][j] - id.M[i][j]
			if d > 1e-5 || d < -1e-5 {
				return false
			}
		}
	}
	return true
}

func TestPlaceShiftAndScale(t *testing.T) {
	tests := []struct {
		name  string
		p     Place
		ok    bool
		shift Vec3
		scale float32
	}{
		{"identity", Identity(), true, Vec3{}, 1},
		{"translation", Translation(V3(1, 2, 3)), true, V3(1, 2, 3), 1},
		{"shift scale", ShiftScalePlace(V3(1, 2, 3), 4), true, V3(1, 2, 3), 4},
		{"anisotropic", Scale(1, 2, 1), false, Vec3{}, 0},
		{"rotation", Rotation(V3(0, 0, 1), 10), false, Vec3{}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			shift, scale, ok := tt.p.ShiftAndScale()
			assert.Equal(t, tt.ok, ok)
			if ok {
				assert.Equal(t, tt.shift, shift)
				assert.Equal(t, tt.scale, scale)
			}
		})
	}
}

func TestPlaceMatrix4(t *testing.T) {
	m := Translation(V3(1, 2, 3)).Matrix4()
	assert.Equal(t, [16]float32{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 1, 2, 3, 1}, m)
}
