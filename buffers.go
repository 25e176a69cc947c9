package drawing

import (
	"fmt"

	"github.com/gogpu/drawing/gpu"
	"github.com/gogpu/drawing/internal/intercept"
)

// nodeGPU holds the device resources of one node. The vertex attribute
// buffers are shared by the normal and the selection shape.
type nodeGPU struct {
	vertices     *gpu.Buffer
	normals      *gpu.Buffer
	vertexColors *gpu.Buffer
	texCoords    *gpu.Buffer

	shapes [2]drawShape

	texture       *Texture
	textureID     gpu.TextureID
	ambient       *AmbientTexture
	ambientID     gpu.TextureID
	textureDevice gpu.Device
}

const (
	shapeNormal = iota
	shapeSelection
)

// drawShape is the element and instance state of one way of drawing a
// node: everything displayed, or only the selected part.
type drawShape struct {
	elements   *gpu.Buffer
	shiftScale *gpu.Buffer
	matrices   *gpu.Buffer
	colors     *gpu.Buffer

	elemVersion uint64
	elemValid   bool
	elems       []uint32
	elemBuilds  int

	instVersion uint64
	instValid   bool
	inst        instanceArrays
	instBuilds  int
}

func newNodeGPU(name string) *nodeGPU {
	g := &nodeGPU{
		vertices:     gpu.NewBuffer(gpu.VertexBuffer, name+" vertices"),
		normals:      gpu.NewBuffer(gpu.NormalBuffer, name+" normals"),
		vertexColors: gpu.NewBuffer(gpu.VertexColorBuffer, name+" vertex colors"),
		texCoords:    gpu.NewBuffer(gpu.TexCoordBuffer, name+" texture coordinates"),
	}
	for i, suffix := range [2]string{"", " selection"} {
		s := &g.shapes[i]
		s.elements = gpu.NewBuffer(gpu.ElementBuffer, name+suffix+" elements")
		s.shiftScale = gpu.NewBuffer(gpu.InstanceShiftScaleBuffer, name+suffix+" shift and scale")
		s.matrices = gpu.NewBuffer(gpu.InstanceMatrixBuffer, name+suffix+" instance matrices")
		s.colors = gpu.NewBuffer(gpu.InstanceColorBuffer, name+suffix+" instance colors")
	}
	return g
}

func (n *Node) gpuState() *nodeGPU {
	if n.res == nil {
		n.res = newNodeGPU(n.name)
	}
	return n.res
}

// releaseGPU frees every device resource of n. Derived arrays are kept.
func (n *Node) releaseGPU() {
	g := n.res
	if g == nil {
		return
	}
	for _, b := range g.buffers() {
		b.Release()
	}
	g.releaseTextures()
}

func (g *nodeGPU) buffers() []*gpu.Buffer {
	bs := []*gpu.Buffer{g.vertices, g.normals, g.vertexColors, g.texCoords}
	for i := range g.shapes {
		s := &g.shapes[i]
		bs = append(bs, s.elements, s.shiftScale, s.matrices, s.colors)
	}
	return bs
}

func (g *nodeGPU) releaseTextures() {
	if g.textureDevice != nil {
		if g.textureID != gpu.InvalidID {
			g.textureDevice.DestroyTexture(g.textureID)
		}
		if g.ambientID != gpu.InvalidID {
			g.textureDevice.DestroyTexture(g.ambientID)
		}
	}
	g.texture, g.textureID = nil, gpu.InvalidID
	g.ambient, g.ambientID = nil, gpu.InvalidID
	g.textureDevice = nil
}

// elementArray returns the element indices for the shape, rebuilding them
// only when the triangles, masks or Mesh-ness changed.
func (s *drawShape) elementArray(n *Node, selection bool) []uint32 {
	version := n.ver.elements
	if selection {
		version = n.ver.selElements
	}
	if s.elemValid && s.elemVersion == version {
		return s.elems
	}
	mask := n.triangleMask
	if selection {
		mask = intercept.AndMasks(n.triangleMask, n.selectedTriangleMask)
	}
	if n.style == Mesh {
		s.elems = intercept.EdgeElements(n.triangles, mask, n.edgeMask)
	} else {
		s.elems = intercept.TriangleElements(n.triangles, mask)
	}
	s.elemVersion, s.elemValid = version, true
	s.elemBuilds++
	return s.elems
}

// instanceArrays returns the instance data for the shape, rebuilding it
// only when positions, colors or the relevant masks changed.
func (s *drawShape) instanceArrays(n *Node, selection bool) instanceArrays {
	version := n.ver.instances
	mask := n.displayMask
	if selection {
		version = n.ver.selInstances
		if n.selectedMask != nil {
			mask = intercept.AndMasks(n.displayMask, n.selectedMask)
		}
	}
	if s.instValid && s.instVersion == version {
		return s.inst
	}
	s.inst = buildInstances(n, mask)
	s.instVersion, s.instValid = version, true
	s.instBuilds++
	return s.inst
}

// updateBuffers uploads every buffer whose source changed since the last
// upload to dev. It returns the number of uploads.
func (n *Node) updateBuffers(dev gpu.Device, g *nodeGPU, s *drawShape, elems []uint32, inst instanceArrays, selection bool) (int, error) {
	type update struct {
		buf     *gpu.Buffer
		version uint64
		encode  func() []byte
	}
	elemVersion, instVersion := n.ver.elements, n.ver.instances
	if selection {
		elemVersion, instVersion = n.ver.selElements, n.ver.selInstances
	}
	updates := [...]update{
		{g.vertices, n.ver.vertices, func() []byte { return gpu.Vec3Bytes(n.vertices) }},
		{g.normals, n.ver.normals, func() []byte { return gpu.Vec3Bytes(n.normals) }},
		{g.vertexColors, n.ver.vertexColors, func() []byte { return colorBytes(n.vertexColors) }},
		{g.texCoords, n.ver.texCoords, func() []byte { return gpu.Vec2Bytes(n.texCoords) }},
		{s.elements, elemVersion, func() []byte { return gpu.Uint32Bytes(elems) }},
		{s.shiftScale, instVersion, func() []byte { return gpu.Float32Bytes(inst.shiftScale) }},
		{s.matrices, instVersion, func() []byte { return gpu.Float32Bytes(inst.matrices) }},
		{s.colors, instVersion, func() []byte { return colorBytes(inst.colors) }},
	}
	uploads := 0
	for _, u := range updates {
		wrote, err := u.buf.Update(dev, u.version, u.encode)
		if err != nil {
			return uploads, fmt.Errorf("drawing: update buffers of %q: %w", n.name, err)
		}
		if wrote {
			uploads++
		}
	}
	return uploads, nil
}

// textures makes sure the device holds n's current textures.
func (n *Node) textures(dev gpu.Device, g *nodeGPU) error {
	if g.textureDevice != nil && g.textureDevice != dev {
		g.releaseTextures()
	}
	if g.texture != n.texture {
		if g.textureID != gpu.InvalidID {
			g.textureDevice.DestroyTexture(g.textureID)
			g.textureID = gpu.InvalidID
		}
		g.texture = nil
		if t := n.texture; t != nil {
			w, h := t.Size()
			id, err := dev.CreateTexture(&gpu.TextureDesc{
				Label:  n.name + " texture",
				Width:  w,
				Height: h,
				Depth:  1,
				Format: gpu.TextureFormatRGBA8,
			}, t.img.Pix)
			if err != nil {
				return fmt.Errorf("drawing: create texture of %q: %w", n.name, err)
			}
			g.texture, g.textureID, g.textureDevice = t, id, dev
		}
	}
	if g.ambient != n.ambient {
		if g.ambientID != gpu.InvalidID {
			g.textureDevice.DestroyTexture(g.ambientID)
			g.ambientID = gpu.InvalidID
		}
		g.ambient = nil
		if t := n.ambient; t != nil {
			id, err := dev.CreateTexture(&gpu.TextureDesc{
				Label:  n.name + " ambient texture",
				Width:  t.size[0],
				Height: t.size[1],
				Depth:  t.size[2],
				Format: gpu.TextureFormatR8,
			}, t.data)
			if err != nil {
				return fmt.Errorf("drawing: create ambient texture of %q: %w", n.name, err)
			}
			g.ambient, g.ambientID, g.textureDevice = t, id, dev
		}
	}
	return nil
}
