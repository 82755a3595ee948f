package frame

// Color is a raw color frame as delivered by the capture boundary:
// one pixel per four bytes in R,G,B,A order, row-major.
type Color struct {
	Width  int
	Height int
	Pix    []uint8
}

// NewColor creates a color frame of the given dimensions with all
// pixels transparent black.
func NewColor(width, height int) *Color {
	return &Color{
		Width:  width,
		Height: height,
		Pix:    make([]uint8, width*height*4),
	}
}

// SetRGBA sets the pixel at (x, y). Out-of-range coordinates are a
// caller contract violation and will panic via the slice bounds check.
func (c *Color) SetRGBA(x, y int, r, g, b, a uint8) {
	o := (y*c.Width + x) * 4
	c.Pix[o] = r
	c.Pix[o+1] = g
	c.Pix[o+2] = b
	c.Pix[o+3] = a
}

// Fill sets every pixel to the given color.
func (c *Color) Fill(r, g, b, a uint8) {
	for i := 0; i < len(c.Pix); i += 4 {
		c.Pix[i] = r
		c.Pix[i+1] = g
		c.Pix[i+2] = b
		c.Pix[i+3] = a
	}
}
