package drawing

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/gogpu/drawing/geom"
	"github.com/gogpu/drawing/gpu"
)

// drawFilter restricts a traversal to opaque or transparent nodes.
type drawFilter uint8

const (
	drawAll drawFilter = iota
	drawOpaque
	drawTransparent
)

func filterFor(p gpu.Pass) drawFilter {
	switch p {
	case gpu.PassOpaque, gpu.PassDepth:
		return drawOpaque
	case gpu.PassTransparentDepth, gpu.PassTransparent:
		return drawTransparent
	}
	return drawAll
}

// shadingCaps are the capabilities that only affect color.
const shadingCaps = gpu.CapLighting | gpu.CapVertexColors | gpu.CapTexture2D | gpu.CapAmbientTexture3D

// drawContext is the state of one pass traversal.
type drawContext struct {
	dev     gpu.Device
	enc     gpu.Encoder
	shaders *gpu.ShaderCache
	logger  *slog.Logger
	pass    gpu.Pass
	filter  drawFilter
	outline [4]float32

	draws   int
	uploads int
}

// ShaderCapabilities returns the cached capability bitmask of n's shader.
// It is recomputed only after the lighting flag, the presence of vertex
// colors, textures or shift-and-scale positions, or whether there is more
// than one color or position changed.
func (n *Node) ShaderCapabilities() gpu.Capability {
	if !n.capsValid {
		var c gpu.Capability
		if n.useLighting {
			c |= gpu.CapLighting
		}
		if n.vertexColors != nil || len(n.colors) > 1 {
			c |= gpu.CapVertexColors
		}
		if n.texture != nil {
			c |= gpu.CapTexture2D
		}
		if n.ambient != nil {
			c |= gpu.CapAmbientTexture3D
		}
		if n.positions.IsShiftAndScale() {
			c |= gpu.CapShiftAndScale
		} else if n.positions.Len() > 1 {
			c |= gpu.CapInstancing
		}
		n.caps, n.capsValid = c, true
	}
	return n.caps
}

// drawCapabilities adjusts the cached bitmask to what a pass can use
// without touching the cache.
func (n *Node) drawCapabilities(pass gpu.Pass) gpu.Capability {
	caps := n.ShaderCapabilities()
	if n.normals == nil {
		caps &^= gpu.CapLighting
	}
	if n.texCoords == nil {
		caps &^= gpu.CapTexture2D
	}
	switch pass {
	case gpu.PassSelection:
		caps = caps&^shadingCaps | gpu.CapSelection
	case gpu.PassTransparentDepth, gpu.PassDepth:
		caps = caps&^shadingCaps | gpu.CapDepthOnly
	}
	return caps
}

// Draw draws n and its subtree under place into the pass the encoder is
// in. The selection pass draws only selected copies. Most callers use
// SceneRenderer, which runs whole frames.
func (n *Node) Draw(r *SceneRenderer, enc gpu.Encoder, place geom.Place, pass gpu.Pass) error {
	ctx := r.newContext(enc, pass)
	ctx.filter = filterFor(pass)
	err := n.draw(ctx, place, pass == gpu.PassSelection)
	r.record(ctx)
	return err
}

func (n *Node) draw(ctx *drawContext, place geom.Place, selectedOnly bool) error {
	if !n.Shown() {
		return nil
	}
	if !n.Empty() {
		if err := n.drawSelf(ctx, place, selectedOnly); err != nil {
			return err
		}
	}
	if len(n.children) > 0 {
		return n.drawChildren(ctx, place, selectedOnly)
	}
	return nil
}

// drawChildren draws the children once per displayed position. Under a
// selected position the whole subtree counts as selected.
func (n *Node) drawChildren(ctx *drawContext, place geom.Place, selectedOnly bool) error {
	children := n.children
	if n.reverseOrderChildren {
		children = slices.Clone(children)
		slices.Reverse(children)
	}
	dm, sm := n.displayMask, n.selectedMask
	for i := 0; i < n.positions.Len(); i++ {
		if dm != nil && !dm[i] {
			continue
		}
		so := selectedOnly && (sm == nil || !sm[i])
		pp := place
		if p := n.positions.At(i); !p.IsIdentity() {
			pp = place.Mul(p)
		}
		for _, c := range children {
			if err := c.draw(ctx, pp, so); err != nil {
				return err
			}
		}
	}
	return nil
}

func (n *Node) drawSelf(ctx *drawContext, place geom.Place, selectedOnly bool) error {
	if selectedOnly && !n.Selected() {
		return nil
	}
	switch ctx.filter {
	case drawOpaque:
		if !n.Opaque() {
			return nil
		}
	case drawTransparent:
		if n.Opaque() {
			return nil
		}
	}
	model := place
	if n.positions.Len() == 1 && !n.positions.IsShiftAndScale() {
		if p := n.positions.At(0); !p.IsIdentity() {
			model = place.Mul(p)
		}
	}
	return n.drawGeometry(ctx, model, selectedOnly)
}

func (n *Node) drawGeometry(ctx *drawContext, model geom.Place, selectedOnly bool) error {
	g := n.gpuState()
	s := &g.shapes[shapeNormal]
	if selectedOnly {
		s = &g.shapes[shapeSelection]
	}
	elems := s.elementArray(n, selectedOnly)
	inst := s.instanceArrays(n, selectedOnly)
	if len(elems) == 0 || inst.count == 0 {
		return nil
	}

	caps := n.drawCapabilities(ctx.pass)
	shader, err := ctx.shaders.Get(caps)
	if err != nil {
		return fmt.Errorf("drawing: draw %q: %w", n.name, err)
	}
	uploads, err := n.updateBuffers(ctx.dev, g, s, elems, inst, selectedOnly)
	ctx.uploads += uploads
	if err != nil {
		return err
	}
	if caps&(gpu.CapTexture2D|gpu.CapAmbientTexture3D) != 0 {
		if err := n.textures(ctx.dev, g); err != nil {
			return err
		}
	}

	enc := ctx.enc
	if err := enc.UseShader(shader); err != nil {
		return fmt.Errorf("drawing: draw %q: %w", n.name, err)
	}
	enc.SetModelMatrix(model)
	switch {
	case ctx.pass == gpu.PassSelection:
		enc.SetSingleColor(ctx.outline)
	case !caps.Has(gpu.CapVertexColors):
		enc.SetSingleColor(n.colors[0].Float())
	}

	bindings := []gpu.VertexBinding{{Kind: gpu.VertexBuffer, Buffer: g.vertices.ID()}}
	if caps.Has(gpu.CapLighting) {
		bindings = append(bindings, gpu.VertexBinding{Kind: gpu.NormalBuffer, Buffer: g.normals.ID()})
	}
	if caps.Has(gpu.CapVertexColors) {
		if n.vertexColors != nil {
			bindings = append(bindings, gpu.VertexBinding{Kind: gpu.VertexColorBuffer, Buffer: g.vertexColors.ID()})
		} else {
			bindings = append(bindings, gpu.VertexBinding{Kind: gpu.InstanceColorBuffer, Buffer: s.colors.ID()})
		}
	}
	if caps.Has(gpu.CapTexture2D) {
		bindings = append(bindings, gpu.VertexBinding{Kind: gpu.TexCoordBuffer, Buffer: g.texCoords.ID()})
	}
	switch {
	case caps.Has(gpu.CapShiftAndScale):
		bindings = append(bindings, gpu.VertexBinding{Kind: gpu.InstanceShiftScaleBuffer, Buffer: s.shiftScale.ID()})
	case caps.Has(gpu.CapInstancing):
		bindings = append(bindings, gpu.VertexBinding{Kind: gpu.InstanceMatrixBuffer, Buffer: s.matrices.ID()})
	}

	if caps.Has(gpu.CapTexture2D) {
		if err := enc.BindTexture(gpu.SlotTexture2D, g.textureID); err != nil {
			return fmt.Errorf("drawing: draw %q: %w", n.name, err)
		}
		defer enc.UnbindTexture(gpu.SlotTexture2D)
	}
	if caps.Has(gpu.CapAmbientTexture3D) {
		enc.SetAmbientTextureTransform(n.ambientTransform)
		if err := enc.BindTexture(gpu.SlotAmbient3D, g.ambientID); err != nil {
			return fmt.Errorf("drawing: draw %q: %w", n.name, err)
		}
		defer enc.UnbindTexture(gpu.SlotAmbient3D)
	}

	err = enc.Draw(&gpu.DrawCall{
		Label:         n.name,
		Primitive:     n.style.primitive(),
		Elements:      s.elements.ID(),
		ElementCount:  len(elems),
		Vertices:      bindings,
		InstanceCount: inst.count,
	})
	if err != nil {
		return fmt.Errorf("drawing: draw %q: %w", n.name, err)
	}
	ctx.draws++
	return nil
}
