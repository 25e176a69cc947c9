package drawing

import (
	"fmt"
	"slices"

	"github.com/gogpu/drawing/geom"
)

// Empty reports whether n has no triangles to draw.
func (n *Node) Empty() bool {
	return len(n.vertices) == 0 || len(n.triangles) == 0
}

// Vertices returns the vertex positions. The slice must not be modified.
func (n *Node) Vertices() []geom.Vec3 { return n.vertices }

// Normals returns the vertex normals, or nil.
func (n *Node) Normals() []geom.Vec3 { return n.normals }

// Triangles returns the vertex index triples.
func (n *Node) Triangles() [][3]uint32 { return n.triangles }

// VertexColors returns the per-vertex colors, or nil.
func (n *Node) VertexColors() []Color { return n.vertexColors }

// TextureCoordinates returns the per-vertex texture coordinates, or nil.
func (n *Node) TextureCoordinates() [][2]float32 { return n.texCoords }

// TriangleMask returns which triangles are drawn, or nil for all.
func (n *Node) TriangleMask() []bool { return n.triangleMask }

// EdgeMask returns the per-triangle edge bits drawn in Mesh style, or nil.
func (n *Node) EdgeMask() []uint8 { return n.edgeMask }

// DisplayStyle returns the display style.
func (n *Node) DisplayStyle() DisplayStyle { return n.style }

// UseLighting reports whether normals shade the geometry.
func (n *Node) UseLighting() bool { return n.useLighting }

// Texture returns the 2-D color texture, or nil.
func (n *Node) Texture() *Texture { return n.texture }

// AmbientTexture returns the 3-D ambient texture and the transform from
// scene coordinates to its texture coordinates.
func (n *Node) AmbientTexture() (*AmbientTexture, geom.Place) {
	return n.ambient, n.ambientTransform
}

// SetGeometry replaces the mesh. Pass nil for all three to make n a pure
// group. normals may be nil.
//
// Every triangle index must be below len(vertices) and normals, when set,
// must have one entry per vertex; otherwise SetGeometry fails with
// ErrInvalidGeometry and n is left unchanged.
//
// The triangle, edge and selected-triangle masks are cleared. Vertex colors
// and texture coordinates are dropped when their length no longer matches.
// The slices are retained, not copied.
func (n *Node) SetGeometry(vertices []geom.Vec3, triangles [][3]uint32, normals []geom.Vec3) error {
	if n.deleted {
		return fmt.Errorf("drawing: set geometry of %q: %w", n.name, ErrDeleted)
	}
	nv := uint32(len(vertices))
	for i, t := range triangles {
		for _, v := range t {
			if v >= nv {
				return fmt.Errorf("drawing: set geometry of %q: triangle %d index %d out of range for %d vertices: %w",
					n.name, i, v, nv, ErrInvalidGeometry)
			}
		}
	}
	if normals != nil && len(normals) != len(vertices) {
		return fmt.Errorf("drawing: set geometry of %q: %d normals for %d vertices: %w",
			n.name, len(normals), len(vertices), ErrInvalidGeometry)
	}

	change := ShapeChanged
	if n.selectedTriangleMask != nil {
		change |= SelectionChanged
	}

	n.vertices, n.triangles, n.normals = vertices, triangles, normals
	n.triangleMask, n.edgeMask, n.selectedTriangleMask = nil, nil, nil
	n.boundsValid = false
	n.ver.bump(&n.ver.vertices, &n.ver.normals, &n.ver.elements, &n.ver.selElements)

	if n.vertexColors != nil && len(n.vertexColors) != len(vertices) {
		n.vertexColors = nil
		n.ver.bump(&n.ver.vertexColors)
		n.capsValid, n.opaqueValid = false, false
	}
	if n.texCoords != nil && len(n.texCoords) != len(vertices) {
		n.texCoords = nil
		n.ver.bump(&n.ver.texCoords)
	}
	n.notify(change)
	return nil
}

// SetNormals replaces the vertex normals. nil removes them, which also
// turns lighting off when drawing.
func (n *Node) SetNormals(normals []geom.Vec3) error {
	if n.deleted {
		return fmt.Errorf("drawing: set normals of %q: %w", n.name, ErrDeleted)
	}
	if normals != nil && len(normals) != len(n.vertices) {
		return fmt.Errorf("drawing: set normals of %q: %d normals for %d vertices: %w",
			n.name, len(normals), len(n.vertices), ErrInvalidGeometry)
	}
	n.normals = normals
	n.ver.bump(&n.ver.normals)
	n.notify(ShapeChanged)
	return nil
}

// SetVertexColors sets per-vertex colors, which take precedence over the
// position colors. nil removes them.
func (n *Node) SetVertexColors(colors []Color) error {
	if n.deleted {
		return fmt.Errorf("drawing: set vertex colors of %q: %w", n.name, ErrDeleted)
	}
	if colors != nil && len(colors) != len(n.vertices) {
		return fmt.Errorf("drawing: set vertex colors of %q: %d colors for %d vertices: %w",
			n.name, len(colors), len(n.vertices), ErrDimensionMismatch)
	}
	if (colors == nil) != (n.vertexColors == nil) {
		n.capsValid = false
	}
	n.vertexColors = colors
	n.opaqueValid = false
	n.ver.bump(&n.ver.vertexColors)
	n.notify(ShapeChanged)
	return nil
}

// SetTextureCoordinates sets per-vertex texture coordinates. nil removes
// them, which also disables texturing when drawing.
func (n *Node) SetTextureCoordinates(uv [][2]float32) error {
	if n.deleted {
		return fmt.Errorf("drawing: set texture coordinates of %q: %w", n.name, ErrDeleted)
	}
	if uv != nil && len(uv) != len(n.vertices) {
		return fmt.Errorf("drawing: set texture coordinates of %q: %d coordinates for %d vertices: %w",
			n.name, len(uv), len(n.vertices), ErrDimensionMismatch)
	}
	n.texCoords = uv
	n.ver.bump(&n.ver.texCoords)
	n.notify(ShapeChanged)
	return nil
}

// SetTexture sets the 2-D color texture. nil removes it.
func (n *Node) SetTexture(t *Texture) {
	if n.deleted {
		return
	}
	if (t == nil) != (n.texture == nil) {
		n.capsValid = false
	}
	n.texture = t
	n.opaqueValid = false
	n.notify(ShapeChanged)
}

// SetAmbientTexture sets the 3-D ambient texture and the transform from
// scene coordinates to its 0..1 texture coordinates. nil removes it.
func (n *Node) SetAmbientTexture(t *AmbientTexture, transform geom.Place) {
	if n.deleted {
		return
	}
	if (t == nil) != (n.ambient == nil) {
		n.capsValid = false
	}
	n.ambient = t
	n.ambientTransform = transform
	n.notify(ShapeChanged)
}

// SetUseLighting turns normal-based shading on or off.
func (n *Node) SetUseLighting(on bool) {
	if n.deleted || on == n.useLighting {
		return
	}
	n.useLighting = on
	n.capsValid = false
	n.notify(ShapeChanged)
}

// SetDisplayStyle sets the display style. Switching into or out of Mesh
// style rebuilds the element array.
func (n *Node) SetDisplayStyle(s DisplayStyle) error {
	if n.deleted {
		return fmt.Errorf("drawing: set display style of %q: %w", n.name, ErrDeleted)
	}
	if s > Dot {
		return fmt.Errorf("drawing: set display style of %q: %s: %w", n.name, s, ErrInvalidArgument)
	}
	if s == n.style {
		return nil
	}
	if (s == Mesh) != (n.style == Mesh) {
		n.ver.bump(&n.ver.elements, &n.ver.selElements)
	}
	n.style = s
	n.notify(ShapeChanged)
	return nil
}

// SetTriangleMask hides the triangles whose entry is false. nil shows all.
func (n *Node) SetTriangleMask(mask []bool) error {
	if n.deleted {
		return fmt.Errorf("drawing: set triangle mask of %q: %w", n.name, ErrDeleted)
	}
	if mask != nil && len(mask) != len(n.triangles) {
		return fmt.Errorf("drawing: set triangle mask of %q: %d entries for %d triangles: %w",
			n.name, len(mask), len(n.triangles), ErrDimensionMismatch)
	}
	n.triangleMask = slices.Clone(mask)
	n.ver.bump(&n.ver.elements, &n.ver.selElements)
	n.notify(ShapeChanged)
	return nil
}

// SetEdgeMask sets, per triangle, which of its edges are drawn in Mesh
// style: bit 0 for edge 0-1, bit 1 for 1-2 and bit 2 for 2-0. nil draws all.
func (n *Node) SetEdgeMask(mask []uint8) error {
	if n.deleted {
		return fmt.Errorf("drawing: set edge mask of %q: %w", n.name, ErrDeleted)
	}
	if mask != nil && len(mask) != len(n.triangles) {
		return fmt.Errorf("drawing: set edge mask of %q: %d entries for %d triangles: %w",
			n.name, len(mask), len(n.triangles), ErrDimensionMismatch)
	}
	n.edgeMask = slices.Clone(mask)
	n.ver.bump(&n.ver.elements, &n.ver.selElements)
	n.notify(ShapeChanged)
	return nil
}
