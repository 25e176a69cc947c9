package drawing

import (
	"fmt"
	"image"
	"slices"

	"github.com/gogpu/drawing/geom"
)

// SnapshotVersion is the layout version written by Node.Snapshot.
const SnapshotVersion = 1

// Snapshot is the complete, self-contained state of a node and its
// subtree, in a form that serializes with encoding/json or msgpack.
// Children keep their order.
type Snapshot struct {
	Version int    `json:"version" codec:"version"`
	Name    string `json:"name" codec:"name"`

	Vertices             [][3]float32 `json:"vertices,omitempty" codec:"vertices,omitempty"`
	Normals              [][3]float32 `json:"normals,omitempty" codec:"normals,omitempty"`
	Triangles            [][3]uint32  `json:"triangles,omitempty" codec:"triangles,omitempty"`
	VertexColors         [][4]uint8   `json:"vertex_colors,omitempty" codec:"vertex_colors,omitempty"`
	TextureCoordinates   [][2]float32 `json:"texture_coordinates,omitempty" codec:"texture_coordinates,omitempty"`
	TriangleMask         []bool       `json:"triangle_mask,omitempty" codec:"triangle_mask,omitempty"`
	EdgeMask             []int        `json:"edge_mask,omitempty" codec:"edge_mask,omitempty"`
	SelectedTriangleMask []bool       `json:"selected_triangle_mask,omitempty" codec:"selected_triangle_mask,omitempty"`
	DisplayStyle         string       `json:"display_style" codec:"display_style"`
	UseLighting          bool         `json:"use_lighting" codec:"use_lighting"`

	Texture        *TextureSnapshot        `json:"texture,omitempty" codec:"texture,omitempty"`
	AmbientTexture *AmbientTextureSnapshot `json:"ambient_texture,omitempty" codec:"ambient_texture,omitempty"`

	// Exactly one of Positions and ShiftScale is set.
	Positions  [][12]float32 `json:"positions,omitempty" codec:"positions,omitempty"`
	ShiftScale [][4]float32  `json:"shift_scale,omitempty" codec:"shift_scale,omitempty"`
	Colors     [][4]uint8    `json:"colors" codec:"colors"`

	Display              bool   `json:"display" codec:"display"`
	DisplayPositions     []bool `json:"display_positions,omitempty" codec:"display_positions,omitempty"`
	SelectedPositions    []bool `json:"selected_positions,omitempty" codec:"selected_positions,omitempty"`
	ReverseOrderChildren bool   `json:"reverse_order_children" codec:"reverse_order_children"`

	Children []*Snapshot `json:"children,omitempty" codec:"children,omitempty"`
}

// TextureSnapshot holds the RGBA pixels of a texture, rows top to bottom.
type TextureSnapshot struct {
	Width  int    `json:"width" codec:"width"`
	Height int    `json:"height" codec:"height"`
	Pixels []byte `json:"pixels" codec:"pixels"`
}

// AmbientTextureSnapshot holds a 3-D ambient volume and its transform.
type AmbientTextureSnapshot struct {
	Size      [3]int      `json:"size" codec:"size"`
	Data      []byte      `json:"data" codec:"data"`
	Transform [12]float32 `json:"transform" codec:"transform"`
}

// Snapshot captures n and its subtree. Texture pixels are shared with the
// node; every other array is copied.
func (n *Node) Snapshot() *Snapshot {
	s := &Snapshot{
		Version:              SnapshotVersion,
		Name:                 n.name,
		Triangles:            slices.Clone(n.triangles),
		TriangleMask:         slices.Clone(n.triangleMask),
		SelectedTriangleMask: slices.Clone(n.selectedTriangleMask),
		TextureCoordinates:   slices.Clone(n.texCoords),
		DisplayStyle:         n.style.String(),
		UseLighting:          n.useLighting,
		Display:              n.display,
		DisplayPositions:     slices.Clone(n.displayMask),
		SelectedPositions:    slices.Clone(n.selectedMask),
		ReverseOrderChildren: n.reverseOrderChildren,
		Vertices:             vec3Array(n.vertices),
		Normals:              vec3Array(n.normals),
		VertexColors:         colorArray(n.vertexColors),
		Colors:               colorArray(n.colors),
	}
	for _, m := range n.edgeMask {
		s.EdgeMask = append(s.EdgeMask, int(m))
	}
	if t := n.texture; t != nil {
		w, h := t.Size()
		s.Texture = &TextureSnapshot{Width: w, Height: h, Pixels: t.img.Pix}
	}
	if a := n.ambient; a != nil {
		s.AmbientTexture = &AmbientTextureSnapshot{Size: a.size, Data: a.data, Transform: placeArray(n.ambientTransform)}
	}
	if sas := n.positions.ShiftAndScale(); sas != nil {
		s.ShiftScale = make([][4]float32, len(sas))
		for i, v := range sas {
			s.ShiftScale[i] = [4]float32{v.Shift.X, v.Shift.Y, v.Shift.Z, v.Scale}
		}
	} else {
		s.Positions = make([][12]float32, n.positions.Len())
		for i := range s.Positions {
			s.Positions[i] = placeArray(n.positions.At(i))
		}
	}
	for _, c := range n.children {
		s.Children = append(s.Children, c.Snapshot())
	}
	return s
}

// RestoreNode rebuilds a subtree from a snapshot.
//
// Children are restored first, then geometry, then per-vertex arrays and
// masks, then positions and colors, and display and selection state last,
// since setting positions resets the display and selection masks.
func RestoreNode(s *Snapshot, opts ...NodeOption) (*Node, error) {
	if s == nil {
		return nil, fmt.Errorf("drawing: restore nil snapshot: %w", ErrInvalidArgument)
	}
	if s.Version != SnapshotVersion {
		return nil, fmt.Errorf("drawing: restore %q: snapshot version %d, want %d: %w",
			s.Name, s.Version, SnapshotVersion, ErrInvalidArgument)
	}
	n := NewNode(s.Name, opts...)
	for _, cs := range s.Children {
		c, err := RestoreNode(cs, opts...)
		if err != nil {
			return nil, err
		}
		n.attach(c)
	}

	if err := n.SetGeometry(vec3Slice(s.Vertices), s.Triangles, vec3Slice(s.Normals)); err != nil {
		return nil, err
	}
	if s.VertexColors != nil {
		if err := n.SetVertexColors(colorSlice(s.VertexColors)); err != nil {
			return nil, err
		}
	}
	if s.TextureCoordinates != nil {
		if err := n.SetTextureCoordinates(s.TextureCoordinates); err != nil {
			return nil, err
		}
	}
	if s.TriangleMask != nil {
		if err := n.SetTriangleMask(s.TriangleMask); err != nil {
			return nil, err
		}
	}
	if s.EdgeMask != nil {
		em := make([]uint8, len(s.EdgeMask))
		for i, m := range s.EdgeMask {
			em[i] = uint8(m)
		}
		if err := n.SetEdgeMask(em); err != nil {
			return nil, err
		}
	}
	style, err := ParseDisplayStyle(s.DisplayStyle)
	if err != nil {
		return nil, err
	}
	if err := n.SetDisplayStyle(style); err != nil {
		return nil, err
	}
	n.SetUseLighting(s.UseLighting)
	if ts := s.Texture; ts != nil {
		t, err := textureFromSnapshot(ts)
		if err != nil {
			return nil, fmt.Errorf("drawing: restore %q: %w", s.Name, err)
		}
		n.SetTexture(t)
	}
	if as := s.AmbientTexture; as != nil {
		a, err := NewAmbientTexture(as.Size[0], as.Size[1], as.Size[2], as.Data)
		if err != nil {
			return nil, fmt.Errorf("drawing: restore %q: %w", s.Name, err)
		}
		n.SetAmbientTexture(a, placeFromArray(as.Transform))
	}

	switch {
	case s.ShiftScale != nil:
		sas := make([]geom.ShiftScale, len(s.ShiftScale))
		for i, v := range s.ShiftScale {
			sas[i] = geom.ShiftScale{Shift: geom.V3(v[0], v[1], v[2]), Scale: v[3]}
		}
		err = n.SetPositions(geom.NewShiftScalePlaces(sas))
	case s.Positions != nil:
		ps := make([]geom.Place, len(s.Positions))
		for i, a := range s.Positions {
			ps[i] = placeFromArray(a)
		}
		err = n.SetPositions(geom.NewPlaces(ps...))
	}
	if err != nil {
		return nil, err
	}
	if s.Colors != nil {
		if err := n.SetColors(colorSlice(s.Colors)); err != nil {
			return nil, err
		}
	}

	n.SetDisplay(s.Display)
	if err := n.SetDisplayPositions(s.DisplayPositions); err != nil {
		return nil, err
	}
	if err := n.SetSelectedPositions(s.SelectedPositions); err != nil {
		return nil, err
	}
	if s.SelectedTriangleMask != nil {
		if err := n.SetSelectedTriangleMask(s.SelectedTriangleMask); err != nil {
			return nil, err
		}
	}
	n.SetReverseOrderChildren(s.ReverseOrderChildren)
	return n, nil
}

func textureFromSnapshot(ts *TextureSnapshot) (*Texture, error) {
	if ts.Width <= 0 || ts.Height <= 0 || len(ts.Pixels) != 4*ts.Width*ts.Height {
		return nil, fmt.Errorf("texture %dx%d with %d bytes: %w", ts.Width, ts.Height, len(ts.Pixels), ErrDimensionMismatch)
	}
	img := &image.RGBA{
		Pix:    ts.Pixels,
		Stride: 4 * ts.Width,
		Rect:   image.Rect(0, 0, ts.Width, ts.Height),
	}
	return NewTexture(img, WithMaxTextureSize(max(ts.Width, ts.Height)))
}

func vec3Array(vs []geom.Vec3) [][3]float32 {
	if vs == nil {
		return nil
	}
	out := make([][3]float32, len(vs))
	for i, v := range vs {
		out[i] = v.Array()
	}
	return out
}

func vec3Slice(as [][3]float32) []geom.Vec3 {
	if as == nil {
		return nil
	}
	out := make([]geom.Vec3, len(as))
	for i, a := range as {
		out[i] = geom.V3(a[0], a[1], a[2])
	}
	return out
}

func colorArray(cs []Color) [][4]uint8 {
	if cs == nil {
		return nil
	}
	out := make([][4]uint8, len(cs))
	for i, c := range cs {
		out[i] = c
	}
	return out
}

func colorSlice(as [][4]uint8) []Color {
	out := make([]Color, len(as))
	for i, a := range as {
		out[i] = a
	}
	return out
}

func placeArray(p geom.Place) [12]float32 {
	var a [12]float32
	for r := range 3 {
		copy(a[4*r:4*r+4], p.M[r][:])
	}
	return a
}

func placeFromArray(a [12]float32) geom.Place {
	var p geom.Place
	for r := range 3 {
		copy(p.M[r][:], a[4*r:4*r+4])
	}
	return p
}
