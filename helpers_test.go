package drawing

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gogpu/drawing/geom"
	"github.com/gogpu/drawing/gpu"
	"github.com/gogpu/drawing/gpu/record"
)

// unitTriangle returns a node holding the triangle (0,0,0) (1,0,0) (0,1,0)
// with normals along +Z.
func unitTriangle(t *testing.T, name string) *Node {
	t.Helper()
	n := NewNode(name)
	require.NoError(t, n.SetGeometry(
		[]geom.Vec3{geom.V3(0, 0, 0), geom.V3(1, 0, 0), geom.V3(0, 1, 0)},
		[][3]uint32{{0, 1, 2}},
		[]geom.Vec3{geom.V3(0, 0, 1), geom.V3(0, 0, 1), geom.V3(0, 0, 1)},
	))
	return n
}

// unitSquare returns two triangles covering [0,1]x[0,1] at z=0.
func unitSquare(t *testing.T, name string) *Node {
	t.Helper()
	n := NewNode(name)
	require.NoError(t, n.SetGeometry(
		[]geom.Vec3{geom.V3(0, 0, 0), geom.V3(1, 0, 0), geom.V3(1, 1, 0), geom.V3(0, 1, 0)},
		[][3]uint32{{0, 1, 2}, {0, 2, 3}},
		nil,
	))
	return n
}

func newTestRenderer(t *testing.T) (*record.Device, *SceneRenderer) {
	t.Helper()
	dev := record.New()
	r := NewSceneRenderer(dev, WithShaderCompiler(gpu.PassthroughCompiler{}))
	t.Cleanup(r.Release)
	return dev, r
}

func labels(draws []record.Draw) []string {
	out := make([]string, len(draws))
	for i, d := range draws {
		out[i] = d.Call.Label
	}
	return out
}

func bindingKinds(d record.Draw) []gpu.BufferKind {
	out := make([]gpu.BufferKind, len(d.Call.Vertices))
	for i, vb := range d.Call.Vertices {
		out[i] = vb.Kind
	}
	return out
}

func translations(ts ...geom.Vec3) geom.Places {
	ps := make([]geom.Place, len(ts))
	for i, v := range ts {
		ps[i] = geom.Translation(v)
	}
	return geom.NewPlaces(ps...)
}
