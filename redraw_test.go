package drawing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/drawing/geom"
)

func TestRedrawPropagatesToAddedSubtree(t *testing.T) {
	var tracker RedrawTracker
	root := NewNode("root")
	root.SetRedrawCallback(tracker.Notify)

	sub := NewNode("sub")
	leaf := sub.NewChild("leaf")
	require.NoError(t, root.AddChild(sub))
	tracker.Take()

	leaf.SetColor(Color{1, 2, 3, 255})
	c, n := tracker.Take()
	assert.Equal(t, ShapeChanged, c)
	assert.Equal(t, 1, n)

	leaf.SetSelected(true)
	assert.Equal(t, SelectionChanged, tracker.Pending())
}

func TestRedrawCoalescesBetweenFrames(t *testing.T) {
	var tracker RedrawTracker
	n := unitTriangle(t, "tri")
	n.SetRedrawCallback(tracker.Notify)

	n.SetPosition(geom.Translation(geom.V3(1, 0, 0)))
	n.SetColor(Color{0, 0, 0, 255})
	n.SetSelected(true)
	require.NoError(t, n.SetSelectedPositions(nil))

	c, count := tracker.Take()
	assert.Equal(t, ShapeChanged|SelectionChanged, c)
	assert.Equal(t, 4, count)
	assert.Equal(t, "shape|selection", c.String())

	c, count = tracker.Take()
	assert.Equal(t, Change(0), c)
	assert.Zero(t, count)
}

func TestRedrawStopsAfterRemoval(t *testing.T) {
	calls := 0
	root := NewNode("root")
	root.SetRedrawCallback(func(*Node, Change) { calls++ })
	child := root.NewChild("child")
	calls = 0

	require.NoError(t, root.RemoveChild(child, true))
	assert.Equal(t, 1, calls, "parent reports the removal")
	child.SetColor(DefaultColor)
	assert.Equal(t, 1, calls, "deleted nodes no longer notify")
}

func TestDetachedSubtreeStopsNotifying(t *testing.T) {
	tests := []struct {
		name   string
		remove func(root, child *Node) error
	}{
		{"RemoveChild", func(root, child *Node) error { return root.RemoveChild(child, false) }},
		{"RemoveChildren", func(root, child *Node) error { return root.RemoveChildren([]*Node{child}, false) }},
		{"RemoveAllChildren", func(root, _ *Node) error { root.RemoveAllChildren(false); return nil }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var tracker RedrawTracker
			root := NewNode("root")
			root.SetRedrawCallback(tracker.Notify)
			child := root.NewChild("child")
			leaf := child.NewChild("leaf")
			require.NoError(t, tt.remove(root, child))
			tracker.Take()

			require.False(t, child.Deleted())
			child.SetColor(Color{9, 9, 9, 255})
			leaf.SetSelected(true)
			assert.Zero(t, tracker.Pending())

			require.NoError(t, root.AddChild(child))
			tracker.Take()
			leaf.SetDisplay(false)
			assert.Equal(t, ShapeChanged, tracker.Pending(), "re-attached subtree notifies again")
		})
	}
}

func TestReparentSwitchesCallback(t *testing.T) {
	var a, b RedrawTracker
	rootA, rootB := NewNode("a"), NewNode("b")
	rootA.SetRedrawCallback(a.Notify)
	rootB.SetRedrawCallback(b.Notify)
	child := rootA.NewChild("child")
	require.NoError(t, rootB.AddChild(child))
	a.Take()
	b.Take()

	child.SetColor(Color{1, 1, 1, 255})
	assert.Zero(t, a.Pending())
	assert.Equal(t, ShapeChanged, b.Pending())
}

func TestSetPositionsReportsSelectionChange(t *testing.T) {
	var got []Change
	n := unitTriangle(t, "tri")
	n.SetRedrawCallback(func(_ *Node, c Change) { got = append(got, c) })

	n.SetSelected(true)
	n.SetPosition(geom.Identity())
	assert.Equal(t, []Change{SelectionChanged, ShapeChanged | SelectionChanged}, got)
}
