package drawing

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/drawing/geom"
	"github.com/gogpu/drawing/gpu"
)

func TestNewNodeDefaults(t *testing.T) {
	n := NewNode("empty")
	assert.True(t, n.Empty())
	assert.True(t, n.Display())
	assert.True(t, n.Shown())
	assert.True(t, n.UseLighting())
	assert.Equal(t, Solid, n.DisplayStyle())
	assert.Equal(t, []Color{DefaultColor}, n.Colors())
	assert.True(t, n.Positions().IsIdentity())
	assert.Nil(t, n.DisplayPositions())
	assert.Nil(t, n.SelectedPositions())
	assert.False(t, n.Selected())
	assert.True(t, n.Bounds(true).IsEmpty())
	assert.Equal(t, 1, n.InstanceCount())
}

func TestAddChildReparents(t *testing.T) {
	a, b := NewNode("a"), NewNode("b")
	c := a.NewChild("c")
	require.Same(t, a, c.Parent())

	require.NoError(t, b.AddChild(c))
	assert.Same(t, b, c.Parent())
	assert.Empty(t, a.Children())
	assert.Equal(t, []*Node{c}, b.Children())
}

func TestAddChildRejectsCycles(t *testing.T) {
	root := NewNode("root")
	mid := root.NewChild("mid")
	leaf := mid.NewChild("leaf")

	tests := []struct {
		name   string
		parent *Node
		child  *Node
	}{
		{"self", root, root},
		{"parent", mid, root},
		{"grandparent", leaf, root},
		{"nil", root, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.parent.AddChild(tt.child)
			assert.ErrorIs(t, err, ErrInvalidArgument)
		})
	}
	assert.Equal(t, []*Node{root, mid, leaf}, leaf.Lineage())
}

func TestRemoveChild(t *testing.T) {
	root := NewNode("root")
	a := root.NewChild("a")
	b := root.NewChild("b")
	other := NewNode("other")

	assert.ErrorIs(t, root.RemoveChild(other, false), ErrInvalidArgument)

	require.NoError(t, root.RemoveChild(a, false))
	assert.Nil(t, a.Parent())
	assert.False(t, a.Deleted())
	assert.Equal(t, []*Node{b}, root.Children())

	require.NoError(t, root.RemoveChild(b, true))
	assert.True(t, b.Deleted())
	assert.ErrorIs(t, b.SetColors([]Color{DefaultColor}), ErrDeleted)
	assert.ErrorIs(t, root.AddChild(b), ErrDeleted)
}

func TestRemoveChildrenIsAtomic(t *testing.T) {
	root := NewNode("root")
	a := root.NewChild("a")
	b := root.NewChild("b")

	err := root.RemoveChildren([]*Node{a, NewNode("stranger")}, false)
	assert.ErrorIs(t, err, ErrInvalidArgument)
	assert.Len(t, root.Children(), 2)

	require.NoError(t, root.RemoveChildren([]*Node{a, b}, false))
	assert.Zero(t, root.NumChildren())
}

func TestDeleteReleasesSubtreeBuffers(t *testing.T) {
	dev, r := newTestRenderer(t)
	root := NewNode("root")
	require.NoError(t, root.AddChild(unitTriangle(t, "a")))
	require.NoError(t, root.AddChild(unitTriangle(t, "b")))
	top := NewNode("top")
	require.NoError(t, top.AddChild(root))

	require.NoError(t, r.DrawScene(dev, geom.Identity(), []*Node{top}))
	buffers, _, _ := dev.Live()
	require.NotZero(t, buffers)

	root.Delete()
	buffers, shaders, _ := dev.Live()
	assert.Zero(t, buffers)
	assert.NotZero(t, shaders, "shaders belong to the renderer")
	assert.Empty(t, top.Children())
	assert.True(t, root.Deleted())
	root.Delete()
}

func TestDeletedNodeRejectsMutation(t *testing.T) {
	n := unitTriangle(t, "tri")
	n.Delete()

	setters := map[string]func() error{
		"SetGeometry":             func() error { return n.SetGeometry(n.Vertices(), n.Triangles(), nil) },
		"SetNormals":              func() error { return n.SetNormals(nil) },
		"SetVertexColors":         func() error { return n.SetVertexColors(nil) },
		"SetTextureCoordinates":   func() error { return n.SetTextureCoordinates(nil) },
		"SetDisplayStyle":         func() error { return n.SetDisplayStyle(Mesh) },
		"SetTriangleMask":         func() error { return n.SetTriangleMask(nil) },
		"SetEdgeMask":             func() error { return n.SetEdgeMask(nil) },
		"SetPositions":            func() error { return n.SetPositions(geom.IdentityPlaces()) },
		"SetColors":               func() error { return n.SetColors([]Color{DefaultColor}) },
		"SetDisplayPositions":     func() error { return n.SetDisplayPositions(nil) },
		"SetSelectedPositions":    func() error { return n.SetSelectedPositions([]bool{true}) },
		"SetSelectedTriangleMask": func() error { return n.SetSelectedTriangleMask([]bool{true}) },
	}
	for name, set := range setters {
		assert.ErrorIs(t, set(), ErrDeleted, name)
	}

	before := n.Snapshot()
	n.SetTexture(&Texture{})
	n.SetAmbientTexture(&AmbientTexture{}, geom.Identity())
	n.SetUseLighting(false)
	n.SetPosition(geom.Translation(geom.V3(1, 2, 3)))
	n.SetColor(Color{1, 2, 3, 4})
	n.SetDisplay(false)
	n.SetSelected(true)
	n.SetReverseOrderChildren(true)
	assert.Equal(t, before, n.Snapshot(), "deleted node left unchanged")
	assert.Equal(t, Solid, n.DisplayStyle())
}

func TestRemoveAllChildren(t *testing.T) {
	root := NewNode("root")
	a := root.NewChild("a")
	root.NewChild("b")
	root.RemoveAllChildren(true)
	assert.Zero(t, root.NumChildren())
	assert.True(t, a.Deleted())
	assert.Nil(t, a.Parent())
}

func TestScenePositionAndAllNodes(t *testing.T) {
	root := NewNode("root")
	root.SetPosition(geom.Translation(geom.V3(1, 0, 0)))
	mid := root.NewChild("mid")
	mid.SetPosition(geom.Translation(geom.V3(0, 2, 0)))
	leaf := mid.NewChild("leaf")
	other := root.NewChild("other")

	got := leaf.ScenePosition().Apply(geom.Vec3{})
	assert.Equal(t, geom.V3(1, 2, 0), got)
	assert.Equal(t, []*Node{root, mid, leaf, other}, root.AllNodes())
}

func TestNumberOfTriangles(t *testing.T) {
	root := NewNode("root")
	require.NoError(t, root.SetPositions(translations(geom.V3(0, 0, 0), geom.V3(9, 0, 0))))
	sq := unitSquare(t, "square")
	require.NoError(t, sq.SetPositions(translations(geom.V3(0, 0, 0), geom.V3(2, 0, 0), geom.V3(4, 0, 0))))
	require.NoError(t, root.AddChild(sq))

	assert.Equal(t, 2*3*2, root.NumberOfTriangles(false))

	require.NoError(t, sq.SetDisplayPositions([]bool{true, false, true}))
	require.NoError(t, sq.SetTriangleMask([]bool{true, false}))
	assert.Equal(t, 1*2*2, root.NumberOfTriangles(true))
	assert.Equal(t, 2*3*2, root.NumberOfTriangles(false))
}

func TestNumberOfPositionsHiddenNode(t *testing.T) {
	n := unitSquare(t, "square")
	require.NoError(t, n.SetPositions(translations(geom.V3(0, 0, 0), geom.V3(2, 0, 0), geom.V3(4, 0, 0))))
	require.NoError(t, n.SetDisplayPositions([]bool{true, false, true}))
	assert.Equal(t, 2, n.NumberOfPositions(true))

	n.SetDisplay(false)
	assert.Zero(t, n.NumberOfPositions(true))
	assert.Equal(t, 3, n.NumberOfPositions(false))
	assert.Zero(t, n.NumberOfTriangles(true))
	assert.False(t, n.Shown())

	n.SetDisplay(true)
	assert.Equal(t, 2, n.NumberOfPositions(true), "mask kept while hidden")
}

func TestSetGeometryValidation(t *testing.T) {
	n := unitTriangle(t, "tri")
	before := n.Bounds(true)

	tests := []struct {
		name      string
		vertices  []geom.Vec3
		triangles [][3]uint32
		normals   []geom.Vec3
	}{
		{"index equals vertex count", []geom.Vec3{{}, {X: 1}, {Y: 1}}, [][3]uint32{{0, 1, 3}}, nil},
		{"triangles without vertices", nil, [][3]uint32{{0, 0, 0}}, nil},
		{"short normals", []geom.Vec3{{}, {X: 1}, {Y: 1}}, [][3]uint32{{0, 1, 2}}, []geom.Vec3{{Z: 1}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := n.SetGeometry(tt.vertices, tt.triangles, tt.normals)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidGeometry))
			assert.Len(t, n.Triangles(), 1)
			assert.Equal(t, [3]uint32{0, 1, 2}, n.Triangles()[0])
			assert.Equal(t, before, n.Bounds(true))
		})
	}
}

func TestSetGeometryResetsMasksAndDropsStaleArrays(t *testing.T) {
	n := unitSquare(t, "square")
	require.NoError(t, n.SetTriangleMask([]bool{true, false}))
	require.NoError(t, n.SetEdgeMask([]uint8{7, 7}))
	require.NoError(t, n.SetSelectedTriangleMask([]bool{false, true}))
	require.NoError(t, n.SetVertexColors(make([]Color, 4)))
	require.NoError(t, n.SetTextureCoordinates(make([][2]float32, 4)))

	require.NoError(t, n.SetGeometry([]geom.Vec3{{}, {X: 1}, {Y: 1}}, [][3]uint32{{0, 1, 2}}, nil))
	assert.Nil(t, n.TriangleMask())
	assert.Nil(t, n.EdgeMask())
	assert.Nil(t, n.SelectedTriangleMask())
	assert.Nil(t, n.VertexColors())
	assert.Nil(t, n.TextureCoordinates())
}

func TestSetterDimensionChecks(t *testing.T) {
	n := unitSquare(t, "square")
	require.NoError(t, n.SetPositions(translations(geom.V3(0, 0, 0), geom.V3(1, 0, 0))))

	assert.ErrorIs(t, n.SetColors([]Color{DefaultColor, DefaultColor, DefaultColor}), ErrDimensionMismatch)
	assert.ErrorIs(t, n.SetColors(nil), ErrInvalidArgument)
	assert.ErrorIs(t, n.SetPositions(geom.Places{}), ErrInvalidArgument)
	assert.ErrorIs(t, n.SetDisplayPositions([]bool{true}), ErrDimensionMismatch)
	assert.ErrorIs(t, n.SetSelectedPositions([]bool{true, true, true}), ErrDimensionMismatch)
	assert.ErrorIs(t, n.SetTriangleMask([]bool{true}), ErrDimensionMismatch)
	assert.ErrorIs(t, n.SetEdgeMask([]uint8{1, 2, 3}), ErrDimensionMismatch)
	assert.ErrorIs(t, n.SetSelectedTriangleMask([]bool{}), ErrDimensionMismatch)
	assert.ErrorIs(t, n.SetVertexColors(make([]Color, 3)), ErrDimensionMismatch)
	assert.ErrorIs(t, n.SetTextureCoordinates(make([][2]float32, 5)), ErrDimensionMismatch)
	assert.ErrorIs(t, n.SetNormals(make([]geom.Vec3, 2)), ErrInvalidGeometry)
	assert.ErrorIs(t, n.SetDisplayStyle(DisplayStyle(9)), ErrInvalidArgument)

	require.NoError(t, n.SetColors([]Color{DefaultColor, {255, 0, 0, 255}}))
}

func TestSetPositionsResetsMasks(t *testing.T) {
	n := unitTriangle(t, "tri")
	require.NoError(t, n.SetPositions(translations(geom.V3(0, 0, 0), geom.V3(1, 0, 0))))
	require.NoError(t, n.SetColors([]Color{{1, 1, 1, 255}, {2, 2, 2, 255}}))
	require.NoError(t, n.SetDisplayPositions([]bool{false, true}))
	require.NoError(t, n.SetSelectedPositions([]bool{true, false}))

	require.NoError(t, n.SetPositions(translations(geom.V3(0, 0, 0), geom.V3(1, 0, 0), geom.V3(2, 0, 0))))
	assert.Nil(t, n.DisplayPositions())
	assert.Nil(t, n.SelectedPositions())
	assert.Equal(t, []Color{{1, 1, 1, 255}}, n.Colors(), "colors collapse to the first one")

	require.NoError(t, n.SetColors([]Color{{1, 1, 1, 255}, {2, 2, 2, 255}, {3, 3, 3, 255}}))
	require.NoError(t, n.SetPositions(translations(geom.V3(5, 0, 0), geom.V3(6, 0, 0), geom.V3(7, 0, 0))))
	assert.Len(t, n.Colors(), 3, "matching colors are kept")
}

func TestShaderCapabilitiesInvalidation(t *testing.T) {
	n := unitTriangle(t, "tri")
	assert.Equal(t, gpu.CapLighting, n.ShaderCapabilities())

	unchanged := []struct {
		name   string
		mutate func() error
	}{
		{"single color", func() error { n.SetColor(Color{1, 2, 3, 255}); return nil }},
		{"same position count", func() error { return n.SetPositions(translations(geom.V3(1, 0, 0))) }},
		{"geometry", func() error {
			return n.SetGeometry([]geom.Vec3{{}, {X: 2}, {Y: 2}}, [][3]uint32{{0, 1, 2}}, nil)
		}},
		{"triangle mask", func() error { return n.SetTriangleMask([]bool{false}) }},
		{"selection", func() error { n.SetSelected(true); return nil }},
		{"display", func() error { n.SetDisplay(false); return nil }},
		{"style", func() error { return n.SetDisplayStyle(Mesh) }},
	}
	for _, tt := range unchanged {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, tt.mutate())
			assert.True(t, n.capsValid, "caps must survive %s", tt.name)
		})
	}

	changed := []struct {
		name   string
		mutate func() error
		want   gpu.Capability
	}{
		{"multiple positions", func() error {
			return n.SetPositions(translations(geom.V3(0, 0, 0), geom.V3(1, 0, 0)))
		}, gpu.CapLighting | gpu.CapInstancing},
		{"per-position colors", func() error {
			return n.SetColors([]Color{DefaultColor, DefaultColor})
		}, gpu.CapLighting | gpu.CapInstancing | gpu.CapVertexColors},
		{"shift and scale", func() error {
			return n.SetPositions(geom.NewShiftScalePlaces([]geom.ShiftScale{{Scale: 1}, {Scale: 2}}))
		}, gpu.CapLighting | gpu.CapShiftAndScale | gpu.CapVertexColors},
		{"lighting off", func() error { n.SetUseLighting(false); return nil }, gpu.CapShiftAndScale | gpu.CapVertexColors},
		{"texture", func() error {
			tex, err := NewTexture(solidImage(2, 2, 255))
			n.SetTexture(tex)
			return err
		}, gpu.CapShiftAndScale | gpu.CapVertexColors | gpu.CapTexture2D},
	}
	for _, tt := range changed {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, tt.mutate())
			assert.False(t, n.capsValid, "caps must be invalidated by %s", tt.name)
			assert.Equal(t, tt.want, n.ShaderCapabilities())
		})
	}
}

func TestOpaque(t *testing.T) {
	n := unitTriangle(t, "tri")
	assert.True(t, n.Opaque())

	n.SetColor(Color{255, 0, 0, 128})
	assert.False(t, n.Opaque())

	require.NoError(t, n.SetVertexColors([]Color{{0, 0, 0, 255}, {0, 0, 0, 255}, {0, 0, 0, 255}}))
	assert.True(t, n.Opaque(), "vertex colors take precedence")

	tex, err := NewTexture(solidImage(2, 2, 10))
	require.NoError(t, err)
	n.SetTexture(tex)
	assert.False(t, n.Opaque())
}

func TestShowingTransparent(t *testing.T) {
	root := NewNode("root")
	child := unitTriangle(t, "glass")
	require.NoError(t, root.AddChild(child))
	assert.False(t, root.ShowingTransparent())

	child.SetColor(Color{0, 0, 255, 100})
	assert.True(t, root.ShowingTransparent())

	child.SetDisplay(false)
	assert.False(t, root.ShowingTransparent())
	assert.False(t, AnyTransparent([]*Node{root}))
}
