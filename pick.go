package drawing

import (
	"fmt"
	"slices"

	"github.com/gogpu/drawing/geom"
	"github.com/gogpu/drawing/internal/intercept"
)

// Pick is the closest intersection of a segment with scene triangles.
type Pick struct {
	// Distance is the fraction along the segment, from 0 at its start to
	// 1 at its end.
	Distance float32
	// Node is the node whose geometry was hit.
	Node *Node
	// Instance is the index of the hit position of Node.
	Instance int
	// Triangle is the index of the hit triangle of Node.
	Triangle int
}

// Description names the hit, e.g. "atoms #12 triangle 40".
func (p *Pick) Description() string {
	if p.Node.positions.Len() > 1 {
		return fmt.Sprintf("%s #%d triangle %d", p.Node.name, p.Instance, p.Triangle)
	}
	return fmt.Sprintf("%s triangle %d", p.Node.name, p.Triangle)
}

// Select selects the hit copy, or flips its selection with toggle.
func (p *Pick) Select(toggle bool) {
	n := p.Node
	mask := n.selectedMask
	if mask == nil {
		mask = make([]bool, n.positions.Len())
	} else {
		mask = slices.Clone(mask)
	}
	if toggle {
		mask[p.Instance] = !mask[p.Instance]
	} else {
		mask[p.Instance] = true
	}
	if !anyTrue(mask) {
		mask = nil
	}
	// The mask length matches the positions, so this cannot fail.
	_ = n.SetSelectedPositions(mask)
}

// ExcludeFunc reports whether a node and its subtree are skipped by
// picking.
type ExcludeFunc func(n *Node) bool

// FirstIntercept returns the closest hit of the segment from start to end,
// given in the coordinates of n's parent, with n's subtree, or nil.
//
// Hidden nodes and positions are skipped, as are nodes for which exclude
// returns true. Only Solid style triangles can be hit. On equal distances
// the hit found first in traversal order is kept.
func (n *Node) FirstIntercept(start, end geom.Vec3, exclude ExcludeFunc) *Pick {
	var best *Pick
	n.intercept(start, end, exclude, &best)
	return best
}

// FirstIntercept returns the closest hit among several trees, or nil.
func FirstIntercept(nodes []*Node, start, end geom.Vec3, exclude ExcludeFunc) *Pick {
	var best *Pick
	for _, n := range nodes {
		n.intercept(start, end, exclude, &best)
	}
	return best
}

// intercept tests the segment, in parent coordinates, against n's
// displayed copies and recurses into the children under each copy.
func (n *Node) intercept(p0, p1 geom.Vec3, exclude ExcludeFunc, best **Pick) {
	if !n.Shown() || (exclude != nil && exclude(n)) {
		return
	}
	pickable := !n.Empty() && n.style == Solid
	var box geom.Bounds
	if pickable {
		gb := n.geometryBounds()
		box = gb.Expand(1e-4 * (1 + gb.Radius()))
	}
	dm := n.displayMask
	for i := 0; i < n.positions.Len(); i++ {
		if dm != nil && !dm[i] {
			continue
		}
		q0, q1 := p0, p1
		if p := n.positions.At(i); !p.IsIdentity() {
			inv := p.Inverse()
			q0, q1 = inv.Apply(p0), inv.Apply(p1)
		}
		if pickable && box.IntersectsSegment(q0, q1) {
			f, tri, ok := intercept.ClosestTriangle(n.vertices, n.triangles, n.triangleMask, q0, q1)
			if ok && (*best == nil || f < (*best).Distance) {
				*best = &Pick{Distance: f, Node: n, Instance: i, Triangle: tri}
			}
		}
		for _, c := range n.children {
			c.intercept(q0, q1, exclude, best)
		}
	}
}
