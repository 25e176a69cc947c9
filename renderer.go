package drawing

import (
	"fmt"
	"log/slog"

	"github.com/gogpu/drawing/geom"
	"github.com/gogpu/drawing/gpu"
)

// FrameStats counts the work of the passes drawn since the last TakeStats.
type FrameStats struct {
	Passes  int
	Draws   int
	Uploads int
}

// SceneRenderer draws scene trees pass by pass on one device.
//
// The renderer owns the shader variant cache; nodes own their buffers.
// A frame is DrawScene followed by DrawOutline when anything is selected.
type SceneRenderer struct {
	dev     gpu.Device
	shaders *gpu.ShaderCache
	logger  *slog.Logger
	outline Color
	stats   FrameStats
}

// NewSceneRenderer creates a renderer for dev.
func NewSceneRenderer(dev gpu.Device, opts ...Option) *SceneRenderer {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	logger := o.logger
	if logger == nil {
		logger = Logger()
	}
	r := &SceneRenderer{
		dev:     dev,
		shaders: gpu.NewShaderCache(dev, o.compiler, logger),
		logger:  logger,
		outline: o.outline,
	}
	logger.Info("drawing: scene renderer created", "outline", fmt.Sprint(o.outline))
	return r
}

// Device returns the device the renderer draws on.
func (r *SceneRenderer) Device() gpu.Device { return r.dev }

// Shaders returns the shader variant cache.
func (r *SceneRenderer) Shaders() *gpu.ShaderCache { return r.shaders }

// TakeStats returns the counters accumulated since the previous call and
// resets them.
func (r *SceneRenderer) TakeStats() FrameStats {
	s := r.stats
	r.stats = FrameStats{}
	return s
}

func (r *SceneRenderer) newContext(enc gpu.Encoder, pass gpu.Pass) *drawContext {
	return &drawContext{
		dev:     r.dev,
		enc:     enc,
		shaders: r.shaders,
		logger:  r.logger,
		pass:    pass,
		outline: r.outline.Float(),
	}
}

func (r *SceneRenderer) record(ctx *drawContext) {
	r.stats.Draws += ctx.draws
	r.stats.Uploads += ctx.uploads
}

// runPass draws the trees once per filter inside a single pass.
func (r *SceneRenderer) runPass(enc gpu.Encoder, pass gpu.Pass, nodes []*Node, filters ...drawFilter) error {
	if err := enc.BeginPass(pass); err != nil {
		return fmt.Errorf("drawing: begin %s pass: %w", pass, err)
	}
	ctx := r.newContext(enc, pass)
	selectedOnly := pass == gpu.PassSelection
	var err error
draw:
	for _, f := range filters {
		ctx.filter = f
		for _, n := range nodes {
			if err = n.draw(ctx, geom.Identity(), selectedOnly); err != nil {
				break draw
			}
		}
	}
	if endErr := enc.EndPass(); endErr != nil && err == nil {
		err = fmt.Errorf("drawing: end %s pass: %w", pass, endErr)
	}
	r.stats.Passes++
	r.record(ctx)
	r.logger.Debug("drawing: pass drawn", "pass", pass.String(), "draws", ctx.draws, "uploads", ctx.uploads)
	return err
}

// DrawScene draws the opaque pass, then the transparent depth and color
// passes. The transparent passes are skipped when nothing shown is
// transparent.
func (r *SceneRenderer) DrawScene(enc gpu.Encoder, view geom.Place, nodes []*Node) error {
	enc.SetViewMatrix(view)
	if err := r.runPass(enc, gpu.PassOpaque, nodes, drawOpaque); err != nil {
		return err
	}
	if !AnyTransparent(nodes) {
		r.logger.Debug("drawing: no transparent geometry, skipping transparent passes")
		return nil
	}
	if err := r.runPass(enc, gpu.PassTransparentDepth, nodes, drawTransparent); err != nil {
		return err
	}
	return r.runPass(enc, gpu.PassTransparent, nodes, drawTransparent)
}

// DrawOutline draws the selected copies in the selection pass with the
// outline color. Nothing is drawn when nothing is selected.
func (r *SceneRenderer) DrawOutline(enc gpu.Encoder, view geom.Place, nodes []*Node) error {
	if !anyPartSelected(nodes) {
		return nil
	}
	enc.SetViewMatrix(view)
	return r.runPass(enc, gpu.PassSelection, nodes, drawAll)
}

// DrawDepth draws the depth of the opaque geometry only, as for shadow
// maps. Lighting, colors and textures are disabled.
func (r *SceneRenderer) DrawDepth(enc gpu.Encoder, view geom.Place, nodes []*Node) error {
	enc.SetViewMatrix(view)
	return r.runPass(enc, gpu.PassDepth, nodes, drawOpaque)
}

// DrawOverlays draws overlay trees on top of the scene without depth
// testing: opaque nodes first, then transparent ones.
func (r *SceneRenderer) DrawOverlays(enc gpu.Encoder, view geom.Place, nodes []*Node) error {
	enc.SetViewMatrix(view)
	return r.runPass(enc, gpu.PassOverlay, nodes, drawOpaque, drawTransparent)
}

// Draw2DOverlays draws overlay trees in normalized window coordinates:
// like DrawOverlays with an identity view.
func (r *SceneRenderer) Draw2DOverlays(enc gpu.Encoder, nodes []*Node) error {
	enc.SetViewMatrix(geom.Identity())
	return r.runPass(enc, gpu.PassOverlay2D, nodes, drawOpaque, drawTransparent)
}

// Release destroys the compiled shaders. Node buffers are released by
// Node.Delete.
func (r *SceneRenderer) Release() {
	n := r.shaders.Len()
	r.shaders.Release()
	r.logger.Info("drawing: scene renderer released", "shaders", n)
}

func anyPartSelected(nodes []*Node) bool {
	for _, n := range nodes {
		if n.display && n.AnyPartSelected() {
			return true
		}
	}
	return false
}
