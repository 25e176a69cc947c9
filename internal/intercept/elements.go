package intercept

// Edge mask bits, one per triangle edge.
const (
	EdgeAB uint8 = 1 << iota
	EdgeBC
	EdgeCA

	AllEdges = EdgeAB | EdgeBC | EdgeCA
)

// TriangleElements flattens the triangles whose mask entry is true into
// an index list. A nil mask keeps all triangles.
func TriangleElements(triangles [][3]uint32, mask []bool) []uint32 {
	out := make([]uint32, 0, 3*len(triangles))
	for t, ijk := range triangles {
		if mask != nil && !mask[t] {
			continue
		}
		out = append(out, ijk[0], ijk[1], ijk[2])
	}
	return out
}

type edgeKey struct{ lo, hi uint32 }

func makeEdgeKey(a, b uint32) edgeKey {
	if a > b {
		a, b = b, a
	}
	return edgeKey{a, b}
}

// EdgeElements returns line-segment index pairs for the edges of the
// triangles kept by triMask, honouring the per-triangle edgeMask bits.
// Edges shared by several triangles appear once, in first-seen order.
// Nil masks keep everything.
func EdgeElements(triangles [][3]uint32, triMask []bool, edgeMask []uint8) []uint32 {
	seen := make(map[edgeKey]struct{}, 3*len(triangles)/2)
	out := make([]uint32, 0, 3*len(triangles))
	for t, ijk := range triangles {
		if triMask != nil && !triMask[t] {
			continue
		}
		bits := AllEdges
		if edgeMask != nil {
			bits = edgeMask[t]
		}
		for e := 0; e < 3; e++ {
			if bits&(1<<e) == 0 {
				continue
			}
			a, b := ijk[e], ijk[(e+1)%3]
			k := makeEdgeKey(a, b)
			if _, dup := seen[k]; dup {
				continue
			}
			seen[k] = struct{}{}
			out = append(out, a, b)
		}
	}
	return out
}

// AndMasks returns the element-wise AND of a and b. A nil mask counts as
// all true; the result is nil only when both are nil.
func AndMasks(a, b []bool) []bool {
	switch {
	case a == nil && b == nil:
		return nil
	case a == nil:
		return append([]bool(nil), b...)
	case b == nil:
		return append([]bool(nil), a...)
	}
	out := make([]bool, len(a))
	for i := range a {
		out[i] = a[i] && b[i]
	}
	return out
}
