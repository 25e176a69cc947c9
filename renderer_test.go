package drawing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/drawing/geom"
	"github.com/gogpu/drawing/gpu"
)

func TestOpaqueTransparentPartition(t *testing.T) {
	dev, r := newTestRenderer(t)
	root := NewNode("root")
	solid := unitTriangle(t, "solid")
	glass := unitTriangle(t, "glass")
	glass.SetColor(Color{0, 0, 255, 128})
	require.NoError(t, root.AddChild(solid))
	require.NoError(t, root.AddChild(glass))

	scene := []*Node{root}
	require.NoError(t, r.DrawScene(dev, geom.Identity(), scene))
	assert.Equal(t, []gpu.Pass{gpu.PassOpaque, gpu.PassTransparentDepth, gpu.PassTransparent}, dev.Passes())
	assert.Equal(t, []string{"solid"}, labels(dev.DrawsIn(gpu.PassOpaque)))
	assert.Equal(t, []string{"glass"}, labels(dev.DrawsIn(gpu.PassTransparentDepth)))
	assert.Equal(t, []string{"glass"}, labels(dev.DrawsIn(gpu.PassTransparent)))

	depth := dev.DrawsIn(gpu.PassTransparentDepth)[0]
	assert.True(t, depth.Capabilities.Has(gpu.CapDepthOnly))
	assert.False(t, depth.Capabilities.Has(gpu.CapLighting))

	require.NoError(t, root.RemoveChild(glass, true))
	assert.False(t, AnyTransparent(scene))

	dev.ResetCounters()
	require.NoError(t, r.DrawScene(dev, geom.Identity(), scene))
	assert.Equal(t, []gpu.Pass{gpu.PassOpaque}, dev.Passes())
}

func TestSecondDrawUploadsNothing(t *testing.T) {
	dev, r := newTestRenderer(t)
	root := NewNode("root")
	atoms := unitTriangle(t, "atoms")
	require.NoError(t, atoms.SetPositions(geom.NewShiftScalePlaces([]geom.ShiftScale{
		{Shift: geom.V3(0, 0, 0), Scale: 1}, {Shift: geom.V3(3, 0, 0), Scale: 0.5},
	})))
	require.NoError(t, atoms.SetColors([]Color{{255, 0, 0, 255}, {0, 255, 0, 255}}))
	require.NoError(t, atoms.SetSelectedPositions([]bool{true, false}))
	bonds := unitSquare(t, "bonds")
	require.NoError(t, bonds.SetPositions(translations(geom.V3(0, 0, 0), geom.V3(0, 5, 0))))
	require.NoError(t, root.AddChild(atoms))
	require.NoError(t, root.AddChild(bonds))
	scene := []*Node{root}

	frame := func() {
		require.NoError(t, r.DrawScene(dev, geom.Identity(), scene))
		require.NoError(t, r.DrawOutline(dev, geom.Identity(), scene))
	}
	frame()
	require.NotZero(t, dev.Uploads())

	dev.ResetCounters()
	frame()
	assert.Zero(t, dev.Uploads())
	buffers, shaders, textures := dev.Creates()
	assert.Zero(t, buffers)
	assert.Zero(t, shaders)
	assert.Zero(t, textures)
	assert.NotEmpty(t, dev.Draws())

	// One mutation re-uploads only what depends on it.
	dev.ResetCounters()
	gray := Color{90, 90, 90, 255}
	require.NoError(t, bonds.SetVertexColors([]Color{gray, gray, gray, gray}))
	frame()
	assert.Equal(t, 1, dev.Uploads())
	assert.Equal(t, 1, dev.UploadsByKind()[gpu.VertexColorBuffer])
}

func TestElementArrayRebuiltOnlyOnItsInputs(t *testing.T) {
	dev, r := newTestRenderer(t)
	n := unitSquare(t, "surface")
	scene := []*Node{n}
	draw := func() {
		require.NoError(t, r.DrawScene(dev, geom.Identity(), scene))
	}
	draw()
	s := &n.res.shapes[shapeNormal]
	require.Equal(t, 1, s.elemBuilds)

	n.SetColor(Color{10, 20, 30, 255})
	n.SetPosition(geom.Translation(geom.V3(1, 1, 1)))
	require.NoError(t, n.SetSelectedTriangleMask([]bool{true, false}))
	require.NoError(t, n.SetDisplayStyle(Dot))
	draw()
	assert.Equal(t, 1, s.elemBuilds)
	assert.Equal(t, gpu.Points, dev.Draws()[len(dev.Draws())-1].Call.Primitive)

	require.NoError(t, n.SetTriangleMask([]bool{true, false}))
	draw()
	assert.Equal(t, 2, s.elemBuilds)
	assert.Equal(t, []uint32{0, 1, 2}, s.elems)

	require.NoError(t, n.SetDisplayStyle(Mesh))
	draw()
	assert.Equal(t, 3, s.elemBuilds)
	last := dev.Draws()[len(dev.Draws())-1]
	assert.Equal(t, gpu.Lines, last.Call.Primitive)
	assert.Equal(t, 6, last.Call.ElementCount)

	require.NoError(t, n.SetEdgeMask([]uint8{1, 7}))
	draw()
	assert.Equal(t, 4, s.elemBuilds)
	assert.Equal(t, 2, dev.Draws()[len(dev.Draws())-1].Call.ElementCount)
}

func TestInstancingPaths(t *testing.T) {
	tests := []struct {
		name      string
		positions geom.Places
		wantKind  gpu.BufferKind
		wantCap   gpu.Capability
		count     int
		model     geom.Place
	}{
		{
			name:      "identity",
			positions: geom.IdentityPlaces(),
			count:     1,
			model:     geom.Identity(),
		},
		{
			name:      "single placement folds into model",
			positions: translations(geom.V3(1, 2, 3)),
			count:     1,
			model:     geom.Translation(geom.V3(1, 2, 3)),
		},
		{
			name:      "matrices",
			positions: translations(geom.V3(0, 0, 0), geom.V3(1, 0, 0), geom.V3(2, 0, 0)),
			wantKind:  gpu.InstanceMatrixBuffer,
			wantCap:   gpu.CapInstancing,
			count:     3,
			model:     geom.Identity(),
		},
		{
			name: "shift and scale",
			positions: geom.NewShiftScalePlaces([]geom.ShiftScale{
				{Shift: geom.V3(1, 0, 0), Scale: 2}, {Shift: geom.V3(0, 1, 0), Scale: 3},
			}),
			wantKind: gpu.InstanceShiftScaleBuffer,
			wantCap:  gpu.CapShiftAndScale,
			count:    2,
			model:    geom.Identity(),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dev, r := newTestRenderer(t)
			n := unitTriangle(t, "tri")
			require.NoError(t, n.SetPositions(tt.positions))
			require.NoError(t, r.DrawScene(dev, geom.Identity(), []*Node{n}))

			draws := dev.DrawsIn(gpu.PassOpaque)
			require.Len(t, draws, 1)
			d := draws[0]
			assert.Equal(t, tt.count, d.Call.InstanceCount)
			assert.Equal(t, tt.model, d.Model)
			kinds := bindingKinds(d)
			assert.NotContains(t, kinds, gpu.VertexColorBuffer)
			if tt.wantCap == 0 {
				assert.Equal(t, []gpu.BufferKind{gpu.VertexBuffer, gpu.NormalBuffer}, kinds)
				return
			}
			assert.True(t, d.Capabilities.Has(tt.wantCap))
			assert.Contains(t, kinds, tt.wantKind)
			assert.False(t, d.Capabilities.Has(gpu.CapInstancing) && d.Capabilities.Has(gpu.CapShiftAndScale),
				"exactly one instancing representation")
		})
	}
}

func TestInstanceArraysRespectMasks(t *testing.T) {
	n := unitTriangle(t, "tri")
	require.NoError(t, n.SetPositions(translations(geom.V3(0, 0, 0), geom.V3(1, 0, 0), geom.V3(2, 0, 0))))
	require.NoError(t, n.SetColors([]Color{{1, 0, 0, 255}, {2, 0, 0, 255}, {3, 0, 0, 255}}))
	require.NoError(t, n.SetDisplayPositions([]bool{true, false, true}))

	ia := buildInstances(n, n.displayMask)
	assert.Equal(t, 2, ia.count)
	assert.Len(t, ia.matrices, 32)
	assert.Equal(t, []Color{{1, 0, 0, 255}, {3, 0, 0, 255}}, ia.colors)
	assert.Equal(t, float32(2), ia.matrices[16+12], "second kept copy is the third position")

	n.SetColor(Color{9, 9, 9, 255})
	ia = buildInstances(n, nil)
	assert.Equal(t, []Color{{9, 9, 9, 255}, {9, 9, 9, 255}, {9, 9, 9, 255}}, ia.colors, "broadcast color expanded")
	assert.Equal(t, 2, n.InstanceCount())
}

func TestSelectionPass(t *testing.T) {
	dev, r := newTestRenderer(t)
	n := unitTriangle(t, "atoms")
	require.NoError(t, n.SetPositions(geom.NewShiftScalePlaces([]geom.ShiftScale{
		{Scale: 1}, {Shift: geom.V3(2, 0, 0), Scale: 1}, {Shift: geom.V3(4, 0, 0), Scale: 1}, {Shift: geom.V3(6, 0, 0), Scale: 1},
	})))
	scene := []*Node{n}

	require.NoError(t, r.DrawOutline(dev, geom.Identity(), scene))
	assert.Empty(t, dev.Passes(), "nothing selected, no selection pass")

	require.NoError(t, n.SetSelectedPositions([]bool{true, false, true, false}))
	require.NoError(t, n.SetDisplayPositions([]bool{false, true, true, true}))
	require.NoError(t, r.DrawOutline(dev, geom.Identity(), scene))

	draws := dev.DrawsIn(gpu.PassSelection)
	require.Len(t, draws, 1)
	d := draws[0]
	assert.Equal(t, 1, d.Call.InstanceCount, "displayed and selected")
	assert.True(t, d.Capabilities.Has(gpu.CapSelection))
	assert.False(t, d.Capabilities.Has(gpu.CapLighting))
	assert.Equal(t, Color{0, 255, 0, 255}.Float(), d.Color)

	buf, ok := dev.Buffer(d.Call.Vertices[len(d.Call.Vertices)-1].Buffer)
	require.True(t, ok)
	assert.Len(t, buf.Data, 16, "one shift-and-scale entry")
}

func TestSelectionPassTriangleMask(t *testing.T) {
	dev, r := newTestRenderer(t)
	n := unitSquare(t, "surface")
	require.NoError(t, n.SetSelectedTriangleMask([]bool{false, true}))
	require.NoError(t, r.DrawOutline(dev, geom.Identity(), []*Node{n}))

	draws := dev.DrawsIn(gpu.PassSelection)
	require.Len(t, draws, 1)
	assert.Equal(t, 3, draws[0].Call.ElementCount)
	eb, ok := dev.Buffer(draws[0].Call.Elements)
	require.True(t, ok)
	assert.Equal(t, gpu.Uint32Bytes([]uint32{0, 2, 3}), eb.Data)
}

func TestSelectedParentOutlinesChildren(t *testing.T) {
	dev, r := newTestRenderer(t)
	group := NewNode("residue")
	require.NoError(t, group.SetPositions(translations(geom.V3(0, 0, 0), geom.V3(0, 3, 0))))
	require.NoError(t, group.SetSelectedPositions([]bool{false, true}))
	atom := unitTriangle(t, "atom")
	require.NoError(t, group.AddChild(atom))

	require.NoError(t, r.DrawOutline(dev, geom.Identity(), []*Node{group}))
	draws := dev.DrawsIn(gpu.PassSelection)
	require.Len(t, draws, 1)
	assert.Equal(t, geom.Translation(geom.V3(0, 3, 0)), draws[0].Model)
}

func TestChildrenDrawnPerParentPositionAndOrder(t *testing.T) {
	dev, r := newTestRenderer(t)
	group := NewNode("group")
	require.NoError(t, group.SetPositions(translations(geom.V3(0, 0, 0), geom.V3(10, 0, 0))))
	require.NoError(t, group.AddChild(unitTriangle(t, "inner")))
	require.NoError(t, group.AddChild(unitTriangle(t, "outer")))

	require.NoError(t, r.DrawScene(dev, geom.Identity(), []*Node{group}))
	draws := dev.DrawsIn(gpu.PassOpaque)
	assert.Equal(t, []string{"inner", "outer", "inner", "outer"}, labels(draws))
	assert.Equal(t, geom.Translation(geom.V3(10, 0, 0)), draws[2].Model)

	dev.ResetCounters()
	group.SetReverseOrderChildren(true)
	require.NoError(t, r.DrawScene(dev, geom.Identity(), []*Node{group}))
	assert.Equal(t, []string{"outer", "inner", "outer", "inner"}, labels(dev.DrawsIn(gpu.PassOpaque)))

	dev.ResetCounters()
	group.SetDisplay(false)
	require.NoError(t, r.DrawScene(dev, geom.Identity(), []*Node{group}))
	assert.Empty(t, dev.Draws(), "hiding a group hides its subtree")
}

func TestDrawTimeCapabilityOverrides(t *testing.T) {
	dev, r := newTestRenderer(t)
	n := unitSquare(t, "no normals")
	tex, err := NewTexture(solidImage(4, 4, 255))
	require.NoError(t, err)
	n.SetTexture(tex)

	require.NoError(t, r.DrawScene(dev, geom.Identity(), []*Node{n}))
	d := dev.DrawsIn(gpu.PassOpaque)[0]
	assert.False(t, d.Capabilities.Has(gpu.CapLighting), "no normals")
	assert.False(t, d.Capabilities.Has(gpu.CapTexture2D), "no texture coordinates")
	assert.Equal(t, gpu.CapLighting|gpu.CapTexture2D, n.ShaderCapabilities())
	assert.True(t, n.capsValid)
	_, _, textures := dev.Live()
	assert.Zero(t, textures, "unused texture is not uploaded")

	require.NoError(t, n.SetTextureCoordinates([][2]float32{{0, 0}, {1, 0}, {1, 1}, {0, 1}}))
	require.NoError(t, r.DrawScene(dev, geom.Identity(), []*Node{n}))
	d = dev.DrawsIn(gpu.PassOpaque)[1]
	assert.True(t, d.Capabilities.Has(gpu.CapTexture2D))
	assert.Contains(t, bindingKinds(d), gpu.TexCoordBuffer)
	require.Contains(t, d.Textures, gpu.SlotTexture2D)
	live, ok := dev.Texture(d.Textures[gpu.SlotTexture2D])
	require.True(t, ok)
	assert.Equal(t, 4, live.Desc.Width)
}

func TestAmbientTextureDraw(t *testing.T) {
	dev, r := newTestRenderer(t)
	n := unitTriangle(t, "surface")
	amb, err := NewAmbientTexture(2, 2, 2, make([]uint8, 8))
	require.NoError(t, err)
	n.SetAmbientTexture(amb, geom.UniformScale(0.5))

	require.NoError(t, r.DrawScene(dev, geom.Identity(), []*Node{n}))
	d := dev.DrawsIn(gpu.PassOpaque)[0]
	assert.True(t, d.Capabilities.Has(gpu.CapAmbientTexture3D))
	id, ok := d.Textures[gpu.SlotAmbient3D]
	require.True(t, ok)
	tex, ok := dev.Texture(id)
	require.True(t, ok)
	assert.Equal(t, 2, tex.Desc.Depth)

	n.SetAmbientTexture(nil, geom.Identity())
	require.NoError(t, r.DrawScene(dev, geom.Identity(), []*Node{n}))
	n.Delete()
	_, _, textures := dev.Live()
	assert.Zero(t, textures)
}

func TestDepthAndOverlayPasses(t *testing.T) {
	dev, r := newTestRenderer(t)
	solid := unitTriangle(t, "solid")
	glass := unitTriangle(t, "glass")
	glass.SetColor(Color{255, 255, 255, 64})
	nodes := []*Node{solid, glass}

	require.NoError(t, r.DrawDepth(dev, geom.Identity(), nodes))
	assert.Equal(t, []string{"solid"}, labels(dev.DrawsIn(gpu.PassDepth)))
	assert.True(t, dev.DrawsIn(gpu.PassDepth)[0].Capabilities.Has(gpu.CapDepthOnly))

	require.NoError(t, r.DrawOverlays(dev, geom.Translation(geom.V3(0, 0, -5)), []*Node{glass, solid}))
	assert.Equal(t, []string{"solid", "glass"}, labels(dev.DrawsIn(gpu.PassOverlay)))

	require.NoError(t, r.Draw2DOverlays(dev, nodes))
	overlay := dev.DrawsIn(gpu.PassOverlay2D)
	require.Len(t, overlay, 2)
	assert.Equal(t, geom.Identity(), overlay[0].View)

	stats := r.TakeStats()
	assert.Equal(t, 3, stats.Passes)
	assert.Equal(t, 5, stats.Draws)
	assert.Zero(t, r.TakeStats().Passes)
}

func TestShaderCompileErrorPropagates(t *testing.T) {
	dev, r := newTestRenderer(t)
	n := unitTriangle(t, "tri")
	dev.FailShaders = map[gpu.Capability]bool{gpu.CapLighting: true}

	err := r.DrawScene(dev, geom.Identity(), []*Node{n})
	require.ErrorIs(t, err, gpu.ErrShaderCompile)
	assert.Contains(t, err.Error(), `"tri"`)
	assert.Equal(t, []gpu.Pass{gpu.PassOpaque}, dev.Passes(), "pass is still ended")

	delete(dev.FailShaders, gpu.CapLighting)
	dev.ResetCounters()
	require.NoError(t, r.DrawScene(dev, geom.Identity(), []*Node{n}))
}

func TestNodeDrawInsideCallerPass(t *testing.T) {
	dev, r := newTestRenderer(t)
	n := unitTriangle(t, "tri")
	require.NoError(t, dev.BeginPass(gpu.PassOpaque))
	require.NoError(t, n.Draw(r, dev, geom.Translation(geom.V3(0, 0, 1)), gpu.PassOpaque))
	require.NoError(t, dev.EndPass())

	draws := dev.Draws()
	require.Len(t, draws, 1)
	assert.Equal(t, geom.Translation(geom.V3(0, 0, 1)), draws[0].Model)
	assert.Equal(t, 1, r.TakeStats().Draws)
}
