package drawing

import (
	"fmt"
	"slices"
)

// SelectedPositions returns the per-position selection mask, or nil when
// no position is selected.
func (n *Node) SelectedPositions() []bool { return slices.Clone(n.selectedMask) }

// SelectedTriangleMask returns the per-triangle selection mask, or nil.
func (n *Node) SelectedTriangleMask() []bool { return slices.Clone(n.selectedTriangleMask) }

// SetSelected selects every position, or clears both the position and the
// triangle selection.
func (n *Node) SetSelected(on bool) {
	if n.deleted {
		return
	}
	if on {
		n.selectedMask = slices.Repeat([]bool{true}, n.positions.Len())
	} else {
		n.selectedMask = nil
		if n.selectedTriangleMask != nil {
			n.selectedTriangleMask = nil
			n.ver.bump(&n.ver.selElements)
		}
	}
	n.ver.bump(&n.ver.selInstances)
	n.notify(SelectionChanged)
}

// SetSelectedPositions sets which positions are selected. nil selects none.
func (n *Node) SetSelectedPositions(mask []bool) error {
	if n.deleted {
		return fmt.Errorf("drawing: set selected positions of %q: %w", n.name, ErrDeleted)
	}
	if mask != nil && len(mask) != n.positions.Len() {
		return fmt.Errorf("drawing: set selected positions of %q: %d entries for %d positions: %w",
			n.name, len(mask), n.positions.Len(), ErrDimensionMismatch)
	}
	n.selectedMask = slices.Clone(mask)
	n.ver.bump(&n.ver.selInstances)
	n.notify(SelectionChanged)
	return nil
}

// SetSelectedTriangleMask selects individual triangles. nil selects none.
func (n *Node) SetSelectedTriangleMask(mask []bool) error {
	if n.deleted {
		return fmt.Errorf("drawing: set selected triangles of %q: %w", n.name, ErrDeleted)
	}
	if mask != nil && len(mask) != len(n.triangles) {
		return fmt.Errorf("drawing: set selected triangles of %q: %d entries for %d triangles: %w",
			n.name, len(mask), len(n.triangles), ErrDimensionMismatch)
	}
	n.selectedTriangleMask = slices.Clone(mask)
	n.ver.bump(&n.ver.selElements)
	n.notify(SelectionChanged)
	return nil
}

// Selected reports whether any position or any triangle of n is selected.
func (n *Node) Selected() bool {
	return anyTrue(n.selectedMask) || anyTrue(n.selectedTriangleMask)
}

// AnyPartSelected reports whether n or any descendant is selected.
func (n *Node) AnyPartSelected() bool {
	if n.Selected() {
		return true
	}
	for _, c := range n.children {
		if c.AnyPartSelected() {
			return true
		}
	}
	return false
}

// FullySelected reports whether every position of n is selected, or, for
// a node whose own positions are not all selected, whether it has children
// and all of them are fully selected.
func (n *Node) FullySelected() bool {
	if n.selectedMask != nil && allTrue(n.selectedMask) {
		return true
	}
	if len(n.children) == 0 {
		return false
	}
	for _, c := range n.children {
		if !c.FullySelected() {
			return false
		}
	}
	return true
}

// ClearSelection deselects n and its subtree and forgets the promotion
// history of n.
func (n *Node) ClearSelection() {
	n.SetSelected(false)
	for _, c := range n.children {
		c.ClearSelection()
	}
	n.promotions = nil
}

// promotion is the selection mask of one node before it was promoted.
type promotion struct {
	node *Node
	mask []bool
}

type promotable struct {
	level int
	node  *Node
}

// deepestPromotable returns the deepest nodes whose selection is partial:
// some but not all positions selected, or some but not all children fully
// selected.
func (n *Node) deepestPromotable(level int) []promotable {
	sp := n.selectedMask
	if sp != nil && allTrue(sp) {
		return nil
	}
	if len(n.children) > 0 {
		var partial []*Node
		for _, c := range n.children {
			if !c.FullySelected() {
				partial = append(partial, c)
			}
		}
		if len(partial) > 0 {
			var pd []promotable
			for _, c := range partial {
				pd = append(pd, c.deepestPromotable(level+1)...)
			}
			if len(pd) == 0 && len(partial) < len(n.children) {
				for _, c := range partial {
					pd = append(pd, promotable{level: level + 1, node: c})
				}
			}
			if len(pd) > 0 {
				return pd
			}
		}
	}
	if sp != nil {
		if ns := countTrue(sp); ns > 0 && ns < len(sp) {
			return []promotable{{level: level, node: n}}
		}
	}
	return nil
}

// PromoteSelection widens the selection one level: the shallowest of the
// deepest partially selected nodes in the subtree become fully selected.
// Their previous masks are remembered for DemoteSelection. It reports
// whether anything was promoted.
func (n *Node) PromoteSelection() bool {
	pd := n.deepestPromotable(0)
	if len(pd) == 0 {
		return false
	}
	level := pd[0].level
	for _, p := range pd[1:] {
		level = min(level, p.level)
	}
	var step []promotion
	for _, p := range pd {
		if p.level == level {
			step = append(step, promotion{node: p.node, mask: slices.Clone(p.node.selectedMask)})
		}
	}
	if len(n.promotions) >= n.promotionDepth {
		drop := len(n.promotions) - n.promotionDepth + 1
		Logger().Warn("drawing: promotion history full, dropping oldest",
			"node", n.name, "depth", n.promotionDepth, "dropped", drop)
		n.promotions = slices.Delete(n.promotions, 0, drop)
	}
	n.promotions = append(n.promotions, step)
	for _, p := range step {
		p.node.SetSelected(true)
	}
	return true
}

// DemoteSelection undoes the last PromoteSelection, restoring the exact
// previous masks. Nodes deleted or re-positioned since are skipped. It
// reports whether there was anything to undo.
func (n *Node) DemoteSelection() bool {
	if len(n.promotions) == 0 {
		return false
	}
	step := n.promotions[len(n.promotions)-1]
	n.promotions = n.promotions[:len(n.promotions)-1]
	for _, p := range step {
		if p.node.deleted {
			continue
		}
		if err := p.node.SetSelectedPositions(p.mask); err != nil {
			Logger().Debug("drawing: demote skipped", "node", p.node.name, "err", err)
		}
	}
	return true
}

// PromotionLevels returns the number of promotions DemoteSelection can undo.
func (n *Node) PromotionLevels() int { return len(n.promotions) }

// ClearPromotionHistory forgets all promotions of n.
func (n *Node) ClearPromotionHistory() {
	n.promotions = nil
}
