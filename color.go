package drawing

// Color is an 8-bit RGBA color.
type Color [4]uint8

// DefaultColor is the color of a new node: light gray, opaque.
var DefaultColor = Color{178, 178, 178, 255}

// RGBA returns a Color from components.
func RGBA(r, g, b, a uint8) Color {
	return Color{r, g, b, a}
}

// Opaque reports whether alpha is 255.
func (c Color) Opaque() bool {
	return c[3] == 255
}

// Float returns the components scaled to 0..1.
func (c Color) Float() [4]float32 {
	return [4]float32{
		float32(c[0]) / 255,
		float32(c[1]) / 255,
		float32(c[2]) / 255,
		float32(c[3]) / 255,
	}
}

func colorBytes(cs []Color) []byte {
	if len(cs) == 0 {
		return nil
	}
	buf := make([]byte, 0, 4*len(cs))
	for _, c := range cs {
		buf = append(buf, c[0], c[1], c[2], c[3])
	}
	return buf
}

func allOpaque(cs []Color) bool {
	for _, c := range cs {
		if c[3] != 255 {
			return false
		}
	}
	return true
}
