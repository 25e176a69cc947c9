package drawing

import (
	"fmt"
	"image"

	xdraw "golang.org/x/image/draw"
)

// Texture is an immutable 2-D RGBA image applied with texture coordinates.
//
// A Texture may be shared by several nodes; each node uploads its own
// device copy on first draw.
type Texture struct {
	img    *image.RGBA
	opaque bool
}

// NewTexture converts src to RGBA. Images whose longest edge exceeds the
// maximum texture size are downscaled with Catmull-Rom filtering.
func NewTexture(src image.Image, opts ...TextureOption) (*Texture, error) {
	o := textureOptions{maxSize: DefaultMaxTextureSize}
	for _, opt := range opts {
		opt(&o)
	}
	sb := src.Bounds()
	w, h := sb.Dx(), sb.Dy()
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("drawing: texture %dx%d: %w", w, h, ErrInvalidArgument)
	}

	dw, dh := w, h
	if longest := max(w, h); longest > o.maxSize {
		dw = max(1, w*o.maxSize/longest)
		dh = max(1, h*o.maxSize/longest)
		Logger().Warn("drawing: texture downscaled",
			"from", fmt.Sprintf("%dx%d", w, h), "to", fmt.Sprintf("%dx%d", dw, dh))
	}

	dst := image.NewRGBA(image.Rect(0, 0, dw, dh))
	if dw == w && dh == h {
		xdraw.Draw(dst, dst.Bounds(), src, sb.Min, xdraw.Src)
	} else {
		xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, sb, xdraw.Src, nil)
	}
	return &Texture{img: dst, opaque: dst.Opaque()}, nil
}

// Image returns the texture pixels. The image must not be modified.
func (t *Texture) Image() *image.RGBA { return t.img }

// Size returns the texture width and height in pixels.
func (t *Texture) Size() (width, height int) {
	b := t.img.Bounds()
	return b.Dx(), b.Dy()
}

// Opaque reports whether every pixel has full alpha.
func (t *Texture) Opaque() bool { return t.opaque }

// AmbientTexture is a single-channel 3-D volume modulating the lit color,
// typically ambient occlusion sampled around atoms.
type AmbientTexture struct {
	size [3]int
	data []uint8
}

// NewAmbientTexture wraps a volume of width*height*depth bytes stored
// x fastest, then y, then z.
func NewAmbientTexture(width, height, depth int, data []uint8) (*AmbientTexture, error) {
	if width <= 0 || height <= 0 || depth <= 0 {
		return nil, fmt.Errorf("drawing: ambient texture %dx%dx%d: %w", width, height, depth, ErrInvalidArgument)
	}
	if want := width * height * depth; len(data) != want {
		return nil, fmt.Errorf("drawing: ambient texture %dx%dx%d: %d bytes, want %d: %w",
			width, height, depth, len(data), want, ErrDimensionMismatch)
	}
	return &AmbientTexture{size: [3]int{width, height, depth}, data: data}, nil
}

// Size returns the volume dimensions.
func (t *AmbientTexture) Size() [3]int { return t.size }

// Data returns the volume bytes. The slice must not be modified.
func (t *AmbientTexture) Data() []uint8 { return t.data }
