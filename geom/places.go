package geom

// ShiftScale is a placement restricted to an isotropic scale followed by a shift.
type ShiftScale struct {
	Shift Vec3
	Scale float32
}

// Place returns the equivalent general placement.
func (s ShiftScale) Place() Place {
	return ShiftScalePlace(s.Shift, s.Scale)
}

// Places is an ordered sequence of placements.
//
// A Places value is backed either by general affine placements or by
// shift-and-scale pairs; never both. The zero value is empty.
// Places values are treated as immutable once constructed.
type Places struct {
	places []Place
	sas    []ShiftScale
}

// NewPlaces returns a sequence of general placements.
func NewPlaces(places ...Place) Places {
	return Places{places: append([]Place(nil), places...)}
}

// NewShiftScalePlaces returns a sequence backed by shift-and-scale pairs.
func NewShiftScalePlaces(sas []ShiftScale) Places {
	return Places{sas: append([]ShiftScale(nil), sas...)}
}

// IdentityPlaces returns a sequence holding a single identity placement.
func IdentityPlaces() Places {
	return Places{places: []Place{Identity()}}
}

// Len returns the number of placements.
func (ps Places) Len() int {
	if ps.sas != nil {
		return len(ps.sas)
	}
	return len(ps.places)
}

// At returns placement i.
func (ps Places) At(i int) Place {
	if ps.sas != nil {
		return ps.sas[i].Place()
	}
	return ps.places[i]
}

// ShiftAndScale returns the shift-and-scale backing, or nil for general placements.
func (ps Places) ShiftAndScale() []ShiftScale {
	return ps.sas
}

// IsShiftAndScale reports whether the sequence is shift-and-scale backed.
func (ps Places) IsShiftAndScale() bool {
	return ps.sas != nil
}

// IsIdentity reports whether the sequence is a single identity placement.
func (ps Places) IsIdentity() bool {
	return ps.Len() == 1 && ps.At(0).IsIdentity()
}

// Masked returns the placements whose mask entry is true.
// A nil mask keeps everything.
func (ps Places) Masked(mask []bool) Places {
	if mask == nil {
		return ps
	}
	if ps.sas != nil {
		out := make([]ShiftScale, 0, len(ps.sas))
		for i, s := range ps.sas {
			if mask[i] {
				out = append(out, s)
			}
		}
		return Places{sas: out}
	}
	out := make([]Place, 0, len(ps.places))
	for i, p := range ps.places {
		if mask[i] {
			out = append(out, p)
		}
	}
	return Places{places: out}
}

// MulPlace returns parent * p for every placement p.
// A shift-and-scale sequence stays shift-and-scale when parent is itself
// a shift and an isotropic scale.
func (ps Places) MulPlace(parent Place) Places {
	if parent.IsIdentity() {
		return ps
	}
	if ps.sas != nil {
		if shift, scale, ok := parent.ShiftAndScale(); ok {
			out := make([]ShiftScale, len(ps.sas))
			for i, s := range ps.sas {
				out[i] = ShiftScale{Shift: s.Shift.Scale(scale).Add(shift), Scale: s.Scale * scale}
			}
			return Places{sas: out}
		}
	}
	out := make([]Place, ps.Len())
	for i := range out {
		out[i] = parent.Mul(ps.At(i))
	}
	return Places{places: out}
}

// All returns a copy of the placements as general transforms.
func (ps Places) All() []Place {
	out := make([]Place, ps.Len())
	for i := range out {
		out[i] = ps.At(i)
	}
	return out
}

// InstanceMatrices returns the column-major 4x4 matrices of all placements
// packed into one slice.
func (ps Places) InstanceMatrices() []float32 {
	out := make([]float32, 0, 16*ps.Len())
	for i := 0; i < ps.Len(); i++ {
		m := ps.At(i).Matrix4()
		out = append(out, m[:]...)
	}
	return out
}

// InstanceShiftScale returns (x, y, z, scale) per placement packed into one
// slice, or nil for general placements.
func (ps Places) InstanceShiftScale() []float32 {
	if ps.sas == nil {
		return nil
	}
	out := make([]float32, 0, 4*len(ps.sas))
	for _, s := range ps.sas {
		out = append(out, s.Shift.X, s.Shift.Y, s.Shift.Z, s.Scale)
	}
	return out
}
