// Package testdata synthesizes camera frames for tests. The detector
// only cares about brightness changes between frames, so solid frames
// and flicker sequences are enough to exercise every pipeline stage.
package testdata

import (
	"gocv.io/x/gocv"
)

// SolidFrame creates a BGR frame of uniform brightness.
// The caller is responsible for closing the returned Mat.
func SolidFrame(width, height int, brightness float64) *gocv.Mat {
	mat := gocv.NewMatWithSize(height, width, gocv.MatTypeCV8UC3)
	mat.SetTo(gocv.NewScalar(brightness, brightness, brightness, 0))
	return &mat
}

// FlickerSequence creates a dark/bright alternating frame sequence,
// the synthetic equivalent of a hand waving across the whole view.
// The caller is responsible for closing the returned Mats.
func FlickerSequence(width, height, count int) []*gocv.Mat {
	frames := make([]*gocv.Mat, 0, count)
	for i := 0; i < count; i++ {
		brightness := float64(0)
		if i%2 == 1 {
			brightness = 255
		}
		frames = append(frames, SolidFrame(width, height, brightness))
	}
	return frames
}

// CloseFrames closes every Mat in a fixture sequence.
func CloseFrames(frames []*gocv.Mat) {
	for _, f := range frames {
		f.Close()
	}
}
