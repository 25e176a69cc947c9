package drawing

import (
	"log/slog"

	"github.com/gogpu/drawing/gpu"
)

// Option configures a SceneRenderer during creation.
//
// Example:
//
//	// Default: naga compiler, package logger
//	r := drawing.NewSceneRenderer(dev)
//
//	// Headless tests that skip shader compilation
//	r := drawing.NewSceneRenderer(dev, drawing.WithShaderCompiler(gpu.PassthroughCompiler{}))
type Option func(*options)

// options holds optional configuration for SceneRenderer creation.
type options struct {
	compiler gpu.Compiler
	logger   *slog.Logger
	outline  Color
}

// defaultOptions returns the default renderer options.
func defaultOptions() options {
	return options{
		compiler: nil, // gpu.NagaCompiler
		logger:   nil, // Logger() at creation time
		outline:  Color{0, 255, 0, 255},
	}
}

// WithShaderCompiler sets the compiler used for shader variants.
func WithShaderCompiler(c gpu.Compiler) Option {
	return func(o *options) {
		o.compiler = c
	}
}

// WithLogger sets the renderer's logger instead of the package logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithOutlineColor sets the color the selection pass draws with.
func WithOutlineColor(c Color) Option {
	return func(o *options) {
		o.outline = c
	}
}

// NodeOption configures a Node during creation.
type NodeOption func(*Node)

// DefaultPromotionDepth is the number of promotion steps a node remembers.
const DefaultPromotionDepth = 64

// WithPromotionDepth bounds the selection promotion history. Older steps
// are dropped once the bound is reached. Values below 1 are ignored.
func WithPromotionDepth(depth int) NodeOption {
	return func(n *Node) {
		if depth >= 1 {
			n.promotionDepth = depth
		}
	}
}

// TextureOption configures a Texture during creation.
type TextureOption func(*textureOptions)

type textureOptions struct {
	maxSize int
}

// DefaultMaxTextureSize is the longest texture edge kept without scaling.
const DefaultMaxTextureSize = 4096

// WithMaxTextureSize limits the longest edge of a texture. Larger images
// are downscaled preserving aspect ratio.
func WithMaxTextureSize(px int) TextureOption {
	return func(o *textureOptions) {
		if px > 0 {
			o.maxSize = px
		}
	}
}
