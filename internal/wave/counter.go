// Package wave turns a stream of greyscale webcam frames into a
// boolean "someone is waving" signal. It combines a per-pixel
// transition-counting state machine with the frame arithmetic from the
// frame package.
package wave

import (
	"github.com/BernieSumption/webcam-wave/internal/frame"
)

// TransitionCounter tracks, independently for every pixel, how many
// times the pixel has alternated between the black and white extremes
// of a binarized difference stream. A pixel that keeps flipping is a
// pixel that something is waving across.
//
// The counter owns an intensity frame holding the per-pixel transition
// counts plus two parallel arrays: the extremum each pixel must reach
// next, and a staleness timer that retires pixels which stop making
// progress. All three resize together when the source dimensions
// change.
type TransitionCounter struct {
	counts       frame.Intensity
	nextExpected []uint8
	staleness    []uint8
}

// NewTransitionCounter creates an empty counter. It adopts the
// dimensions of the first frame passed to Update.
func NewTransitionCounter() *TransitionCounter {
	return &TransitionCounter{}
}

// Counts returns the per-pixel transition counts as an intensity
// frame. A value of 0 means the pixel is idle; an active pixel's value
// is the number of extremes it has reached since it last went idle.
// The returned frame is owned by the counter and must not be mutated.
func (c *TransitionCounter) Counts() *frame.Intensity {
	return &c.counts
}

// Update consumes one binarized frame and advances every pixel's state
// machine. Input samples are expected to be exactly 0 or 255; any
// other value matches neither extremum and leaves the pixel's count
// unchanged (the staleness timer still runs).
//
// Per pixel:
//   - An idle pixel (count 0) activates on either extremum with count 1
//     and starts expecting the opposite one.
//   - An active pixel's staleness timer is incremented each tick. If it
//     exceeds maxInterval the pixel goes idle and sits out the rest of
//     the tick.
//   - An active pixel that reads its expected extremum increments its
//     count (saturating at 255), flips the expectation, and resets the
//     staleness timer.
//
// Pixels never interact, so the update is order-independent.
func (c *TransitionCounter) Update(src *frame.Intensity, maxInterval int) {
	if c.counts.Width != src.Width || c.counts.Height != src.Height {
		c.counts.ResizeIfNeeded(src.Width, src.Height)
		c.nextExpected = make([]uint8, len(c.counts.Samples))
		c.staleness = make([]uint8, len(c.counts.Samples))
	}

	for i, v := range src.Samples {
		count := c.counts.Samples[i]
		if count == 0 {
			switch v {
			case 0:
				c.counts.Samples[i] = 1
				c.nextExpected[i] = 255
				c.staleness[i] = 0
			case 255:
				c.counts.Samples[i] = 1
				c.nextExpected[i] = 0
				c.staleness[i] = 0
			}
			continue
		}

		if c.staleness[i] < 255 {
			c.staleness[i]++
		}
		if int(c.staleness[i]) > maxInterval {
			c.counts.Samples[i] = 0
			continue
		}
		if v == c.nextExpected[i] {
			if count < 255 {
				c.counts.Samples[i] = count + 1
			}
			c.nextExpected[i] = 255 - c.nextExpected[i]
			c.staleness[i] = 0
		}
	}
}

// Reset returns every pixel to the idle state without resizing.
func (c *TransitionCounter) Reset() {
	for i := range c.counts.Samples {
		c.counts.Samples[i] = 0
		c.nextExpected[i] = 0
		c.staleness[i] = 0
	}
}
