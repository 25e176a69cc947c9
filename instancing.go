package drawing

import (
	"fmt"
	"slices"

	"github.com/gogpu/drawing/geom"
)

// Positions returns the placements of n in its parent's coordinates.
func (n *Node) Positions() geom.Places { return n.positions }

// NumberOfPositions returns the number of placements, or only the
// displayed ones with displayedOnly. A hidden node displays none.
func (n *Node) NumberOfPositions(displayedOnly bool) int {
	if displayedOnly && !n.display {
		return 0
	}
	if displayedOnly && n.displayMask != nil {
		return countTrue(n.displayMask)
	}
	return n.positions.Len()
}

// DisplayedPositions returns the placements whose display mask entry is set.
func (n *Node) DisplayedPositions() geom.Places {
	return n.positions.Masked(n.displayMask)
}

// SetPositions replaces the placements. It fails with ErrInvalidArgument
// when ps is empty.
//
// The display mask is reset so every position is shown, and the selected
// mask is reset so none is selected. Per-position colors that no longer
// fit collapse to a broadcast of the first color.
func (n *Node) SetPositions(ps geom.Places) error {
	if n.deleted {
		return fmt.Errorf("drawing: set positions of %q: %w", n.name, ErrDeleted)
	}
	if ps.Len() == 0 {
		return fmt.Errorf("drawing: set positions of %q: no positions: %w", n.name, ErrInvalidArgument)
	}
	n.setPositions(ps)
	return nil
}

// SetPosition places n once.
func (n *Node) SetPosition(p geom.Place) {
	if n.deleted {
		return
	}
	n.setPositions(geom.NewPlaces(p))
}

func (n *Node) setPositions(ps geom.Places) {
	old := n.positions
	if old.IsShiftAndScale() != ps.IsShiftAndScale() || (old.Len() > 1) != (ps.Len() > 1) {
		n.capsValid = false
	}
	change := ShapeChanged
	if n.selectedMask != nil {
		change |= SelectionChanged
	}
	n.positions = ps
	n.displayMask = nil
	n.selectedMask = nil
	if len(n.colors) != 1 && len(n.colors) != ps.Len() {
		n.colors = []Color{n.colors[0]}
		n.capsValid = false
		n.opaqueValid = false
	}
	n.ver.bump(&n.ver.instances, &n.ver.selInstances)
	n.notify(change)
}

// Colors returns the per-position colors; a single entry applies to every
// position.
func (n *Node) Colors() []Color { return slices.Clone(n.colors) }

// Color returns the first position color.
func (n *Node) Color() Color { return n.colors[0] }

// SetColors sets one color per position, or a single color for all of
// them. Any other non-zero length fails with ErrDimensionMismatch.
func (n *Node) SetColors(colors []Color) error {
	if n.deleted {
		return fmt.Errorf("drawing: set colors of %q: %w", n.name, ErrDeleted)
	}
	if len(colors) == 0 {
		return fmt.Errorf("drawing: set colors of %q: no colors: %w", n.name, ErrInvalidArgument)
	}
	if len(colors) != 1 && len(colors) != n.positions.Len() {
		return fmt.Errorf("drawing: set colors of %q: %d colors for %d positions: %w",
			n.name, len(colors), n.positions.Len(), ErrDimensionMismatch)
	}
	n.setColors(slices.Clone(colors))
	return nil
}

// SetColor sets one color for every position.
func (n *Node) SetColor(c Color) {
	if n.deleted {
		return
	}
	n.setColors([]Color{c})
}

func (n *Node) setColors(colors []Color) {
	if (len(colors) > 1) != (len(n.colors) > 1) {
		n.capsValid = false
	}
	n.colors = colors
	n.opaqueValid = false
	n.ver.bump(&n.ver.instances, &n.ver.selInstances)
	n.notify(ShapeChanged)
}

// Display returns the node-level display flag.
func (n *Node) Display() bool { return n.display }

// SetDisplay shows or hides n and its whole subtree. The per-position
// display mask is kept.
func (n *Node) SetDisplay(on bool) {
	if n.deleted || on == n.display {
		return
	}
	n.display = on
	n.notify(ShapeChanged)
}

// DisplayPositions returns the per-position display mask, or nil when all
// positions are shown.
func (n *Node) DisplayPositions() []bool { return slices.Clone(n.displayMask) }

// SetDisplayPositions sets which positions are drawn. nil shows all.
func (n *Node) SetDisplayPositions(mask []bool) error {
	if n.deleted {
		return fmt.Errorf("drawing: set display positions of %q: %w", n.name, ErrDeleted)
	}
	if mask != nil && len(mask) != n.positions.Len() {
		return fmt.Errorf("drawing: set display positions of %q: %d entries for %d positions: %w",
			n.name, len(mask), n.positions.Len(), ErrDimensionMismatch)
	}
	n.displayMask = slices.Clone(mask)
	n.ver.bump(&n.ver.instances, &n.ver.selInstances)
	n.notify(ShapeChanged)
	return nil
}

// Shown reports whether n is drawn at all: displayed with at least one
// displayed position.
func (n *Node) Shown() bool {
	return n.display && (n.displayMask == nil || anyTrue(n.displayMask))
}

// ReverseOrderChildren reports whether children are drawn last to first.
func (n *Node) ReverseOrderChildren() bool { return n.reverseOrderChildren }

// SetReverseOrderChildren reverses the drawing order of the children.
func (n *Node) SetReverseOrderChildren(on bool) {
	if n.deleted {
		return
	}
	n.reverseOrderChildren = on
	n.notify(ShapeChanged)
}

// InstanceCount returns the number of copies the normal draw issues.
func (n *Node) InstanceCount() int {
	return buildInstances(n, n.displayMask).count
}

// instanceArrays is the per-instance data of one draw.
type instanceArrays struct {
	shiftScale []float32
	matrices   []float32
	colors     []Color
	count      int
}

// buildInstances derives the instance arrays under a position mask.
//
// A single general position needs no array: an identity is drawn as is and
// anything else is folded into the model matrix. Shift-and-scale and
// matrix placement are exclusive.
func buildInstances(n *Node, mask []bool) instanceArrays {
	ps := n.positions
	np := ps.Len()
	sas := ps.IsShiftAndScale()
	if !sas && np == 1 {
		if mask != nil && !mask[0] {
			return instanceArrays{}
		}
		return instanceArrays{count: 1}
	}

	masked := ps.Masked(mask)
	var ia instanceArrays
	if sas {
		ia.shiftScale = masked.InstanceShiftScale()
	} else {
		ia.matrices = masked.InstanceMatrices()
	}
	colors := n.colors
	if len(colors) == 1 && np > 1 {
		colors = slices.Repeat(colors, np)
	}
	if mask != nil {
		kept := make([]Color, 0, len(colors))
		for i, c := range colors {
			if mask[i] {
				kept = append(kept, c)
			}
		}
		colors = kept
	}
	ia.colors = colors
	ia.count = masked.Len()
	return ia
}
