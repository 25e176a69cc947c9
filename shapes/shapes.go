// Package shapes generates node geometry: SDF solids tessellated with
// marching cubes, and flat textured rectangles.
package shapes

import (
	"fmt"
	"math"

	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/gogpu/drawing"
	"github.com/gogpu/drawing/geom"
)

// DefaultCells is the marching cubes resolution along the longest axis.
const DefaultCells = 24

// Mesh is indexed triangle geometry ready to be set on a node.
type Mesh struct {
	Vertices  []geom.Vec3
	Normals   []geom.Vec3
	Triangles [][3]uint32
	TexCoords [][2]float32
}

// Apply sets m as the geometry of n. The mesh slices are retained by n.
func (m *Mesh) Apply(n *drawing.Node) error {
	if err := n.SetGeometry(m.Vertices, m.Triangles, m.Normals); err != nil {
		return err
	}
	if m.TexCoords != nil {
		return n.SetTextureCoordinates(m.TexCoords)
	}
	return nil
}

// Bounds returns the bounding box of the vertices.
func (m *Mesh) Bounds() geom.Bounds { return geom.PointBounds(m.Vertices) }

// Sphere tessellates a sphere centered at the origin.
func Sphere(radius float32, cells int) (*Mesh, error) {
	s, err := sdf.Sphere3D(float64(radius))
	if err != nil {
		return nil, fmt.Errorf("shapes: sphere r=%g: %v: %w", radius, err, drawing.ErrInvalidArgument)
	}
	return tessellate(s, cells)
}

// Box tessellates an axis-aligned box of the given edge lengths centered
// at the origin.
func Box(size geom.Vec3, cells int) (*Mesh, error) {
	s, err := sdf.Box3D(v3.Vec{X: float64(size.X), Y: float64(size.Y), Z: float64(size.Z)}, 0)
	if err != nil {
		return nil, fmt.Errorf("shapes: box %v: %v: %w", size, err, drawing.ErrInvalidArgument)
	}
	return tessellate(s, cells)
}

// Cylinder tessellates a capped cylinder along Z centered at the origin.
func Cylinder(height, radius float32, cells int) (*Mesh, error) {
	s, err := sdf.Cylinder3D(float64(height), float64(radius), 0)
	if err != nil {
		return nil, fmt.Errorf("shapes: cylinder h=%g r=%g: %v: %w", height, radius, err, drawing.ErrInvalidArgument)
	}
	return tessellate(s, cells)
}

func tessellate(s sdf.SDF3, cells int) (*Mesh, error) {
	if cells < 2 {
		return nil, fmt.Errorf("shapes: %d cells: %w", cells, drawing.ErrInvalidArgument)
	}
	tris := render.ToTriangles(s, render.NewMarchingCubesUniform(cells))

	bb := s.BoundingBox()
	size := bb.Size()
	eps := math.Max(size.X, math.Max(size.Y, size.Z)) * 1e-6

	w := newWelder(eps)
	m := &Mesh{}
	for _, t := range tris {
		var idx [3]uint32
		for j := range 3 {
			idx[j] = w.vertex(t[j])
		}
		if idx[0] == idx[1] || idx[1] == idx[2] || idx[2] == idx[0] {
			continue
		}
		m.Triangles = append(m.Triangles, idx)
	}
	m.Vertices = w.vertices
	m.Normals = vertexNormals(m.Vertices, m.Triangles)
	return m, nil
}

// welder merges marching cubes vertices that coincide up to eps, so that
// neighbouring triangles share indices.
type welder struct {
	eps      float64
	index    map[[3]int64]uint32
	vertices []geom.Vec3
}

func newWelder(eps float64) *welder {
	return &welder{eps: eps, index: make(map[[3]int64]uint32)}
}

func (w *welder) vertex(v v3.Vec) uint32 {
	key := [3]int64{
		int64(math.Round(v.X / w.eps)),
		int64(math.Round(v.Y / w.eps)),
		int64(math.Round(v.Z / w.eps)),
	}
	if i, ok := w.index[key]; ok {
		return i
	}
	i := uint32(len(w.vertices))
	w.index[key] = i
	w.vertices = append(w.vertices, geom.V3(float32(v.X), float32(v.Y), float32(v.Z)))
	return i
}

// vertexNormals averages the area-weighted face normals around each vertex.
func vertexNormals(vertices []geom.Vec3, triangles [][3]uint32) []geom.Vec3 {
	normals := make([]geom.Vec3, len(vertices))
	for _, t := range triangles {
		a, b, c := vertices[t[0]], vertices[t[1]], vertices[t[2]]
		fn := b.Sub(a).Cross(c.Sub(a))
		for _, i := range t {
			normals[i] = normals[i].Add(fn)
		}
	}
	for i, n := range normals {
		normals[i] = n.Normalize()
	}
	return normals
}

// Rectangle returns a w by h rectangle in the XY plane centered at the
// origin, facing +Z, with texture coordinates spanning the unit square.
func Rectangle(w, h float32) *Mesh {
	x, y := w/2, h/2
	return &Mesh{
		Vertices: []geom.Vec3{
			geom.V3(-x, -y, 0), geom.V3(x, -y, 0), geom.V3(x, y, 0), geom.V3(-x, y, 0),
		},
		Normals: []geom.Vec3{
			geom.V3(0, 0, 1), geom.V3(0, 0, 1), geom.V3(0, 0, 1), geom.V3(0, 0, 1),
		},
		Triangles: [][3]uint32{{0, 1, 2}, {0, 2, 3}},
		TexCoords: [][2]float32{{0, 0}, {1, 0}, {1, 1}, {0, 1}},
	}
}
