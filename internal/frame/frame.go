// Package frame provides fixed-size 8-bit intensity frames and the
// per-pixel arithmetic the wave detection pipeline is built from.
package frame

import (
	"errors"
	"image"
	"image/color"
)

// ErrDimensionMismatch is returned when a two-frame operation is given
// frames of different dimensions.
var ErrDimensionMismatch = errors.New("frame dimensions do not match")

// Intensity is a 2D grid of 8-bit intensity samples stored row-major.
// All arithmetic operations mutate the frame in place and saturate to
// the 0-255 range.
type Intensity struct {
	Width   int
	Height  int
	Samples []uint8
}

// NewIntensity creates an empty 0x0 intensity frame. The frame grows
// lazily via ResizeIfNeeded when the first source frame arrives.
func NewIntensity() *Intensity {
	return &Intensity{}
}

// clamp saturates an integer into the 0-255 sample range.
func clamp(v int) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

// ResizeIfNeeded reallocates the sample buffer to width x height and
// zero-fills it if the dimensions differ from the current ones.
// Prior contents are discarded on resize. No-op otherwise.
func (f *Intensity) ResizeIfNeeded(width, height int) {
	if f.Width == width && f.Height == height && f.Samples != nil {
		return
	}
	f.Width = width
	f.Height = height
	f.Samples = make([]uint8, width*height)
}

// LoadColor resizes to the color frame's dimensions and sets each
// sample to the unweighted average of that pixel's red, green and blue
// channels. The alpha channel is ignored.
func (f *Intensity) LoadColor(src *Color) {
	f.ResizeIfNeeded(src.Width, src.Height)
	for i := range f.Samples {
		o := i * 4
		f.Samples[i] = uint8((int(src.Pix[o]) + int(src.Pix[o+1]) + int(src.Pix[o+2])) / 3)
	}
}

// CopyFrom resizes to match other and copies every sample value.
func (f *Intensity) CopyFrom(other *Intensity) {
	f.ResizeIfNeeded(other.Width, other.Height)
	copy(f.Samples, other.Samples)
}

// Subtract sets each sample to clamp(self - other + 128). The +128
// re-centers signed differences into the unsigned range, so 128 means
// "no change". Returns ErrDimensionMismatch if the frames differ in
// size.
func (f *Intensity) Subtract(other *Intensity) error {
	if f.Width != other.Width || f.Height != other.Height {
		return ErrDimensionMismatch
	}
	for i := range f.Samples {
		f.Samples[i] = clamp(int(f.Samples[i]) - int(other.Samples[i]) + 128)
	}
	return nil
}

// IncreaseContrast pushes each sample away from the 128 midpoint:
// clamp(v + (v-128)*factor). A factor of 0 is the identity transform;
// larger factors saturate values toward 0 or 255.
func (f *Intensity) IncreaseContrast(factor float64) {
	for i, v := range f.Samples {
		f.Samples[i] = clamp(int(v) + int(float64(int(v)-128)*factor))
	}
}

// Binarize sets each sample to 255 if it is at least whiteThreshold,
// otherwise 0. The boundary is inclusive: a sample equal to the
// threshold becomes white. Applying Binarize twice with the same
// non-zero threshold is idempotent.
func (f *Intensity) Binarize(whiteThreshold uint8) {
	for i, v := range f.Samples {
		if v >= whiteThreshold {
			f.Samples[i] = 255
		} else {
			f.Samples[i] = 0
		}
	}
}

// Sum returns the unclamped total of all sample values. It is used as
// a coarse "is anything non-zero" signal after binarization.
func (f *Intensity) Sum() int64 {
	var total int64
	for _, v := range f.Samples {
		total += int64(v)
	}
	return total
}

// SuppressIsolatedPixels applies a 3x3 neighbourhood-majority filter.
// An interior pixel becomes 255 when the sum of its 3x3 neighbourhood
// (itself and 8 neighbours) is at least neighbourFraction times the
// maximum neighbourhood sum (9*255), otherwise 0.
//
// Border pixels (first and last row and column) have no full
// neighbourhood and are always set to 0; the processed region shrinks
// to the interior. The filter reads from a snapshot of the pre-update
// samples and writes into a separate buffer, so results do not depend
// on pixel evaluation order.
func (f *Intensity) SuppressIsolatedPixels(neighbourFraction float64) {
	out := make([]uint8, len(f.Samples))
	if f.Width < 3 || f.Height < 3 {
		f.Samples = out
		return
	}
	threshold := int(neighbourFraction * 9 * 255)
	for y := 1; y < f.Height-1; y++ {
		for x := 1; x < f.Width-1; x++ {
			i := y*f.Width + x
			sum := 0
			for _, row := range [3]int{i - f.Width, i, i + f.Width} {
				sum += int(f.Samples[row-1]) + int(f.Samples[row]) + int(f.Samples[row+1])
			}
			if sum >= threshold {
				out[i] = 255
			}
		}
	}
	f.Samples = out
}

// RenderRGBA exports the frame to an RGBA image of matching
// dimensions. With a nil level map each sample maps directly to an
// opaque grey pixel. With a level map, the color registered for the
// exact sample value is used, falling back to fallback when the value
// is absent. The frame itself is not modified.
func (f *Intensity) RenderRGBA(dst *image.RGBA, levels map[uint8]color.RGBA, fallback color.RGBA) error {
	bounds := dst.Bounds()
	if bounds.Dx() != f.Width || bounds.Dy() != f.Height {
		return ErrDimensionMismatch
	}
	for i, v := range f.Samples {
		o := i * 4
		c := color.RGBA{R: v, G: v, B: v, A: 255}
		if levels != nil {
			mapped, ok := levels[v]
			if !ok {
				mapped = fallback
			}
			c = mapped
		}
		dst.Pix[o] = c.R
		dst.Pix[o+1] = c.G
		dst.Pix[o+2] = c.B
		dst.Pix[o+3] = c.A
	}
	return nil
}
