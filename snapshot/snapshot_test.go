package snapshot

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/drawing"
	"github.com/gogpu/drawing/geom"
)

func testScene(t *testing.T) *drawing.Node {
	t.Helper()
	root := drawing.NewNode("scene")

	atoms := root.NewChild("atoms")
	require.NoError(t, atoms.SetGeometry(
		[]geom.Vec3{geom.V3(0, 0, 0), geom.V3(1, 0, 0), geom.V3(0, 1, 0)},
		[][3]uint32{{0, 1, 2}},
		[]geom.Vec3{geom.V3(0, 0, 1), geom.V3(0, 0, 1), geom.V3(0, 0, 1)},
	))
	require.NoError(t, atoms.SetPositions(geom.NewShiftScalePlaces([]geom.ShiftScale{
		{Shift: geom.V3(0, 0, 0), Scale: 1},
		{Shift: geom.V3(3, 0, 0), Scale: 0.5},
	})))
	require.NoError(t, atoms.SetColors([]drawing.Color{{255, 0, 0, 255}, {0, 0, 255, 255}}))
	require.NoError(t, atoms.SetSelectedPositions([]bool{false, true}))

	img := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	img.SetNRGBA(0, 0, color.NRGBA{R: 255, A: 255})
	img.SetNRGBA(1, 0, color.NRGBA{B: 255, A: 255})
	tex, err := drawing.NewTexture(img)
	require.NoError(t, err)

	label := root.NewChild("label")
	require.NoError(t, label.SetGeometry(
		[]geom.Vec3{geom.V3(0, 0, 0), geom.V3(1, 0, 0), geom.V3(0, 1, 0)},
		[][3]uint32{{0, 1, 2}},
		nil,
	))
	require.NoError(t, label.SetTextureCoordinates([][2]float32{{0, 0}, {1, 0}, {0, 1}}))
	label.SetTexture(tex)
	label.SetPosition(geom.Rotation(geom.V3(1, 0, 0), 90))
	return root
}

func TestRoundTrip(t *testing.T) {
	for _, f := range []Format{FormatMsgpack, FormatJSON} {
		t.Run(f.String(), func(t *testing.T) {
			doc := New(testScene(t))
			var buf bytes.Buffer
			require.NoError(t, Encode(&buf, doc, f))

			got, err := Decode(&buf, f)
			require.NoError(t, err)
			assert.Equal(t, doc, got)

			n, err := got.Restore()
			require.NoError(t, err)
			assert.Equal(t, doc.Root, n.Snapshot())
			assert.Equal(t, []bool{false, true}, n.Children()[0].SelectedPositions())
		})
	}
}

func TestValidateRejectsMalformed(t *testing.T) {
	good, err := json.Marshal(New(testScene(t)))
	require.NoError(t, err)
	require.NoError(t, Validate(good))

	tests := []struct {
		name string
		doc  string
	}{
		{"not an object", `[1, 2]`},
		{"missing root", `{"kind": "drawing.session", "version": "1.0.0"}`},
		{"wrong kind", `{"kind": "other", "version": "1.0.0", "root": {}}`},
		{"bad style", `{"kind": "drawing.session", "version": "1.0.0", "root":
			{"version": 1, "name": "n", "display_style": "wire", "colors": [[1,2,3,4]], "display": true, "positions": [[1,0,0,0,0,1,0,0,0,0,1,0]]}}`},
		{"short vertex", `{"kind": "drawing.session", "version": "1.0.0", "root":
			{"version": 1, "name": "n", "display_style": "solid", "colors": [[1,2,3,4]], "display": true,
			 "vertices": [[0, 1]], "shift_scale": [[0,0,0,1]]}}`},
		{"both placements", `{"kind": "drawing.session", "version": "1.0.0", "root":
			{"version": 1, "name": "n", "display_style": "solid", "colors": [[1,2,3,4]], "display": true,
			 "shift_scale": [[0,0,0,1]], "positions": [[1,0,0,0,0,1,0,0,0,0,1,0]]}}`},
		{"color out of range", `{"kind": "drawing.session", "version": "1.0.0", "root":
			{"version": 1, "name": "n", "display_style": "solid", "colors": [[1,2,3,400]], "display": true,
			 "shift_scale": [[0,0,0,1]]}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate([]byte(tt.doc))
			assert.ErrorIs(t, err, ErrInvalidDocument)

			_, err = Decode(bytes.NewReader([]byte(tt.doc)), FormatJSON)
			assert.ErrorIs(t, err, ErrInvalidDocument)
		})
	}
}

func TestVersionGate(t *testing.T) {
	tests := []struct {
		version string
		want    error
	}{
		{"1.0.0", nil},
		{"1.4.2", nil},
		{"2.0.0", ErrUnsupportedVersion},
		{"0.9.0", ErrUnsupportedVersion},
		{"one", ErrInvalidDocument},
	}
	for _, tt := range tests {
		t.Run(tt.version, func(t *testing.T) {
			doc := New(testScene(t))
			doc.Version = tt.version
			var buf bytes.Buffer
			require.NoError(t, Encode(&buf, doc, FormatMsgpack))
			_, err := Decode(&buf, FormatMsgpack)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestCloneIsDeep(t *testing.T) {
	doc := New(testScene(t))
	c, err := Clone(doc)
	require.NoError(t, err)
	require.NotSame(t, doc.Root, c.Root)
	require.Len(t, c.Root.Children, 2)

	c.Root.Children[0].Name = "renamed"
	c.Root.Children[0].Vertices[0][0] = 42
	c.Root.Children[0].Colors[0] = [4]uint8{}

	assert.Equal(t, "atoms", doc.Root.Children[0].Name)
	assert.Equal(t, float32(0), doc.Root.Children[0].Vertices[0][0])
	assert.Equal(t, [4]uint8{255, 0, 0, 255}, doc.Root.Children[0].Colors[0])
}

func TestFormats(t *testing.T) {
	f, err := FormatFromPath("scene.json")
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, f)

	f, err = FormatFromPath("/tmp/scene.MSGPACK")
	require.NoError(t, err)
	assert.Equal(t, FormatMsgpack, f)

	_, err = FormatFromPath("scene.xml")
	assert.ErrorIs(t, err, ErrUnknownFormat)

	assert.ErrorIs(t, Encode(&bytes.Buffer{}, New(drawing.NewNode("n")), Format(9)), ErrUnknownFormat)
}
