package drawing

import (
	"fmt"
	"slices"

	"github.com/gogpu/drawing/geom"
	"github.com/gogpu/drawing/gpu"
)

// DisplayStyle selects how a node's triangles are drawn.
type DisplayStyle uint8

// Display styles.
const (
	// Solid draws filled triangles.
	Solid DisplayStyle = iota
	// Mesh draws the triangle edges as lines, honoring the edge mask.
	Mesh
	// Dot draws the vertices as points.
	Dot
)

func (s DisplayStyle) String() string {
	switch s {
	case Solid:
		return "solid"
	case Mesh:
		return "mesh"
	case Dot:
		return "dot"
	}
	return fmt.Sprintf("DisplayStyle(%d)", uint8(s))
}

// ParseDisplayStyle returns the style named by String.
func ParseDisplayStyle(s string) (DisplayStyle, error) {
	switch s {
	case "solid", "":
		return Solid, nil
	case "mesh":
		return Mesh, nil
	case "dot":
		return Dot, nil
	}
	return Solid, fmt.Errorf("drawing: display style %q: %w", s, ErrInvalidArgument)
}

func (s DisplayStyle) primitive() gpu.Primitive {
	switch s {
	case Mesh:
		return gpu.Lines
	case Dot:
		return gpu.Points
	}
	return gpu.Triangles
}

// Node is one element of the scene tree.
//
// A Node optionally owns a triangle mesh and is placed by one or more
// positions in its parent's coordinate space. Children are owned
// exclusively; the parent pointer is a back-reference used for reparenting
// and lineage only.
//
// Node is not safe for concurrent use. All mutation, drawing and picking of
// one scene happens on a single goroutine.
type Node struct {
	name     string
	parent   *Node
	children []*Node
	deleted  bool
	redraw   RedrawFunc

	// Geometry. Either vertices and triangles are both set or the node is
	// a pure group.
	vertices     []geom.Vec3
	normals      []geom.Vec3
	triangles    [][3]uint32
	vertexColors []Color
	texCoords    [][2]float32

	triangleMask         []bool
	edgeMask             []uint8
	selectedTriangleMask []bool

	style            DisplayStyle
	useLighting      bool
	texture          *Texture
	ambient          *AmbientTexture
	ambientTransform geom.Place

	// Instancing.
	positions    geom.Places
	colors       []Color
	display      bool
	displayMask  []bool
	selectedMask []bool

	reverseOrderChildren bool

	promotionDepth int
	promotions     [][]promotion

	// Derived state.
	boundsValid bool
	ownBounds   geom.Bounds
	capsValid   bool
	caps        gpu.Capability
	opaqueValid bool
	opaque      bool

	ver versions
	res *nodeGPU
}

// versions stamps each input array with the node counter value at its last
// change. Derived arrays and device buffers are keyed by these stamps.
type versions struct {
	counter uint64

	vertices     uint64
	normals      uint64
	vertexColors uint64
	texCoords    uint64
	elements     uint64
	selElements  uint64
	instances    uint64
	selInstances uint64
}

func (v *versions) bump(stamps ...*uint64) {
	v.counter++
	for _, s := range stamps {
		*s = v.counter
	}
}

// NewNode creates an empty, displayed node with a single identity position
// and the default color.
func NewNode(name string, opts ...NodeOption) *Node {
	n := &Node{
		name:             name,
		display:          true,
		useLighting:      true,
		positions:        geom.IdentityPlaces(),
		colors:           []Color{DefaultColor},
		ambientTransform: geom.Identity(),
		promotionDepth:   DefaultPromotionDepth,
	}
	for _, opt := range opts {
		opt(n)
	}
	n.ver.bump(&n.ver.vertices, &n.ver.normals, &n.ver.vertexColors, &n.ver.texCoords,
		&n.ver.elements, &n.ver.selElements, &n.ver.instances, &n.ver.selInstances)
	return n
}

// Name returns the node name.
func (n *Node) Name() string { return n.name }

// SetName renames the node. Names are informational only.
func (n *Node) SetName(name string) { n.name = name }

func (n *Node) String() string {
	return fmt.Sprintf("Node(%q, %d triangles, %d positions, %d children)",
		n.name, len(n.triangles), n.positions.Len(), len(n.children))
}

// Deleted reports whether Delete was called.
func (n *Node) Deleted() bool { return n.deleted }

// SetRedrawCallback installs f on this node and its whole subtree.
// Children added later inherit the callback of their new parent.
func (n *Node) SetRedrawCallback(f RedrawFunc) {
	n.redraw = f
	for _, c := range n.children {
		c.SetRedrawCallback(f)
	}
}

func (n *Node) notify(c Change) {
	if n.redraw != nil {
		n.redraw(n, c)
	}
}

// === tree ===

// Parent returns the parent, or nil for a root or detached node.
func (n *Node) Parent() *Node { return n.parent }

// Children returns the children in traversal order.
func (n *Node) Children() []*Node {
	return slices.Clone(n.children)
}

// NumChildren returns the number of children.
func (n *Node) NumChildren() int { return len(n.children) }

// AddChild attaches c as the last child of n. A child that already has a
// parent is detached from it first. Adding n itself or one of its
// ancestors fails with ErrInvalidArgument.
func (n *Node) AddChild(c *Node) error {
	if c == nil {
		return fmt.Errorf("drawing: add nil child to %q: %w", n.name, ErrInvalidArgument)
	}
	if n.deleted || c.deleted {
		return fmt.Errorf("drawing: add %q to %q: %w", c.name, n.name, ErrDeleted)
	}
	for a := n; a != nil; a = a.parent {
		if a == c {
			return fmt.Errorf("drawing: add %q to %q would create a cycle: %w", c.name, n.name, ErrInvalidArgument)
		}
	}
	if old := c.parent; old != nil {
		old.detach(c)
		old.notify(ShapeChanged)
	}
	n.attach(c)
	return nil
}

// NewChild creates a node and attaches it to n.
func (n *Node) NewChild(name string, opts ...NodeOption) *Node {
	c := NewNode(name, opts...)
	if !n.deleted {
		n.attach(c)
	}
	return c
}

func (n *Node) attach(c *Node) {
	c.parent = n
	n.children = append(n.children, c)
	c.SetRedrawCallback(n.redraw)
	n.notify(ShapeChanged)
}

func (n *Node) detach(c *Node) bool {
	i := slices.Index(n.children, c)
	if i < 0 {
		return false
	}
	n.children = slices.Delete(n.children, i, i+1)
	c.parent = nil
	c.SetRedrawCallback(nil)
	return true
}

// RemoveChild detaches c from n. The detached subtree stops notifying the
// redraw callback of n. With release set, c is deleted: its GPU resources
// and those of its subtree are freed.
func (n *Node) RemoveChild(c *Node, release bool) error {
	if c == nil || c.parent != n {
		return fmt.Errorf("drawing: remove from %q: not a child: %w", n.name, ErrInvalidArgument)
	}
	n.detach(c)
	if release {
		c.Delete()
	}
	n.notify(ShapeChanged)
	return nil
}

// RemoveChildren detaches every node of cs. It fails without changing
// anything when one of them is not a child of n.
func (n *Node) RemoveChildren(cs []*Node, release bool) error {
	for _, c := range cs {
		if c == nil || c.parent != n {
			return fmt.Errorf("drawing: remove from %q: not a child: %w", n.name, ErrInvalidArgument)
		}
	}
	for _, c := range cs {
		n.detach(c)
		if release {
			c.Delete()
		}
	}
	if len(cs) > 0 {
		n.notify(ShapeChanged)
	}
	return nil
}

// RemoveAllChildren detaches every child.
func (n *Node) RemoveAllChildren(release bool) {
	if len(n.children) == 0 {
		return
	}
	cs := n.children
	n.children = nil
	for _, c := range cs {
		c.parent = nil
		c.SetRedrawCallback(nil)
		if release {
			c.Delete()
		}
	}
	n.notify(ShapeChanged)
}

// Delete detaches n from its parent, frees the GPU resources of n and its
// subtree and marks them deleted. Deleting twice is a no-op.
func (n *Node) Delete() {
	if n.deleted {
		return
	}
	if p := n.parent; p != nil {
		p.detach(n)
		p.notify(ShapeChanged)
	}
	n.deleteSubtree()
}

func (n *Node) deleteSubtree() {
	n.releaseGPU()
	for _, c := range n.children {
		c.parent = nil
		c.deleteSubtree()
	}
	n.children = nil
	n.promotions = nil
	n.redraw = nil
	n.deleted = true
}

// Lineage returns the path from the root to n, both included.
func (n *Node) Lineage() []*Node {
	var out []*Node
	for a := n; a != nil; a = a.parent {
		out = append(out, a)
	}
	slices.Reverse(out)
	return out
}

// ScenePosition returns the placement of n's first position in root
// coordinates, composing the first position of every ancestor.
func (n *Node) ScenePosition() geom.Place {
	p := geom.Identity()
	for _, a := range n.Lineage() {
		p = p.Mul(a.positions.At(0))
	}
	return p
}

// AllNodes returns n and its descendants in pre-order.
func (n *Node) AllNodes() []*Node {
	out := []*Node{n}
	for _, c := range n.children {
		out = append(out, c.AllNodes()...)
	}
	return out
}

// NumberOfTriangles returns the triangles drawn for n and its subtree,
// counting every copy. With displayedOnly, hidden nodes, positions and
// masked triangles are left out.
func (n *Node) NumberOfTriangles(displayedOnly bool) int {
	np := n.NumberOfPositions(displayedOnly)
	if np == 0 {
		return 0
	}
	own := len(n.triangles)
	if displayedOnly && n.triangleMask != nil {
		own = countTrue(n.triangleMask)
	}
	total := own * np
	for _, c := range n.children {
		total += c.NumberOfTriangles(displayedOnly) * np
	}
	return total
}

func countTrue(mask []bool) int {
	k := 0
	for _, b := range mask {
		if b {
			k++
		}
	}
	return k
}

func allTrue(mask []bool) bool {
	for _, b := range mask {
		if !b {
			return false
		}
	}
	return true
}

func anyTrue(mask []bool) bool {
	return slices.Contains(mask, true)
}
