package drawing

import "github.com/gogpu/drawing/geom"

// Bounds returns the axis-aligned box around n's own geometry and the
// bounds of its displayed children, in n's coordinates. With
// includePositions the box is then placed at every displayed position of
// n, giving bounds in the parent's coordinates. An empty box means nothing
// is visible in the subtree.
func (n *Node) Bounds(includePositions bool) geom.Bounds {
	b := n.geometryBounds()
	for _, c := range n.children {
		if c.display {
			b = b.Union(c.Bounds(true))
		}
	}
	if includePositions && !b.IsEmpty() {
		b = b.CopiesBounds(n.DisplayedPositions())
	}
	return b
}

// geometryBounds returns the cached bounds of the vertex array.
func (n *Node) geometryBounds() geom.Bounds {
	if !n.boundsValid {
		if n.Empty() {
			n.ownBounds = geom.EmptyBounds()
		} else {
			n.ownBounds = geom.PointBounds(n.vertices)
		}
		n.boundsValid = true
	}
	return n.ownBounds
}

// Opaque reports whether n draws without blending: every color it uses has
// full alpha and its texture, if any, is opaque.
func (n *Node) Opaque() bool {
	if !n.opaqueValid {
		if n.vertexColors != nil {
			n.opaque = allOpaque(n.vertexColors)
		} else {
			n.opaque = allOpaque(n.colors)
		}
		if n.texture != nil && !n.texture.Opaque() {
			n.opaque = false
		}
		n.opaqueValid = true
	}
	return n.opaque
}

// ShowingTransparent reports whether any shown geometry in the subtree
// needs blending.
func (n *Node) ShowingTransparent() bool {
	if !n.Shown() {
		return false
	}
	if !n.Empty() && !n.Opaque() {
		return true
	}
	for _, c := range n.children {
		if c.ShowingTransparent() {
			return true
		}
	}
	return false
}

// AnyTransparent reports whether any of the trees shows transparent
// geometry.
func AnyTransparent(nodes []*Node) bool {
	for _, n := range nodes {
		if n.ShowingTransparent() {
			return true
		}
	}
	return false
}
