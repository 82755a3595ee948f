package wave

import (
	"github.com/BernieSumption/webcam-wave/internal/frame"
)

// WhiteThreshold is the binarization cutoff applied to the
// contrast-boosted difference frame. Differences land at 128 when
// nothing changed, so anything at or above the midpoint counts as a
// brightening pixel.
const WhiteThreshold = 128

// Params are the tunable detection parameters supplied on every tick.
type Params struct {
	// ContrastFactor amplifies the inter-frame difference before
	// binarization. Must be >= 0; 0 disables amplification.
	ContrastFactor float64 `json:"contrast_factor"`
	// MaxInterval is the number of ticks a pixel may go without a
	// transition before its count resets. Must be > 0.
	MaxInterval int `json:"max_interval"`
	// TransitionThreshold is the per-pixel transition count at which a
	// pixel is considered part of a wave.
	TransitionThreshold uint8 `json:"transition_threshold"`
	// OutlierThreshold is the fraction (0..1) of the maximum 3x3
	// neighbourhood sum a wave pixel needs to survive outlier
	// suppression.
	OutlierThreshold float64 `json:"outlier_threshold"`
}

// DefaultParams returns the detection parameters used when nothing has
// been tuned yet.
func DefaultParams() Params {
	return Params{
		ContrastFactor:      8,
		MaxInterval:         10,
		TransitionThreshold: 6,
		OutlierThreshold:    0.5,
	}
}

// Valid reports whether every parameter is inside its documented range.
func (p Params) Valid() bool {
	return p.ContrastFactor >= 0 &&
		p.MaxInterval > 0 &&
		p.OutlierThreshold >= 0 && p.OutlierThreshold <= 1
}

// Result is the outcome of processing one tick.
type Result struct {
	// IsWaving is true when at least one pixel survived the full
	// pipeline this tick.
	IsWaving bool
	// ActivePixels is the number of pixels that survived outlier
	// suppression.
	ActivePixels int
}

// Detector runs the per-tick wave detection pipeline:
//
//	diff -> contrast boost -> binarize -> transition count ->
//	count threshold -> outlier suppression -> sum
//
// It owns all intermediate buffers and the transition counter; the
// input frames are never mutated. Given the same two frames, the same
// parameters and the same prior counter state, Process is
// deterministic.
type Detector struct {
	counter  *TransitionCounter
	diff     frame.Intensity
	boosted  frame.Intensity
	binary   frame.Intensity
	waveMap  frame.Intensity
	filtered frame.Intensity
}

// NewDetector creates a Detector with an empty transition counter.
func NewDetector() *Detector {
	return &Detector{counter: NewTransitionCounter()}
}

// Process runs one tick of the pipeline over the current and previous
// greyscale frames. Both frames must have the same dimensions;
// frame.ErrDimensionMismatch is returned otherwise and the counter is
// left untouched.
func (d *Detector) Process(current, previous *frame.Intensity, p Params) (Result, error) {
	d.diff.CopyFrom(current)
	if err := d.diff.Subtract(previous); err != nil {
		return Result{}, err
	}

	d.boosted.CopyFrom(&d.diff)
	d.boosted.IncreaseContrast(p.ContrastFactor)

	d.binary.CopyFrom(&d.boosted)
	d.binary.Binarize(WhiteThreshold)

	d.counter.Update(&d.binary, p.MaxInterval)

	d.waveMap.CopyFrom(d.counter.Counts())
	d.waveMap.Binarize(p.TransitionThreshold)

	d.filtered.CopyFrom(&d.waveMap)
	d.filtered.SuppressIsolatedPixels(p.OutlierThreshold)

	sum := d.filtered.Sum()
	return Result{
		IsWaving:     sum > 0,
		ActivePixels: int(sum / 255),
	}, nil
}

// Reset returns the transition counter to the idle state.
func (d *Detector) Reset() {
	d.counter.Reset()
}

// The intermediate buffers below are exposed read-only so the debug
// stream can render every stage of the pipeline. They are owned by the
// detector and overwritten on every Process call.

// Diff returns the 128-centered difference between the last two frames.
func (d *Detector) Diff() *frame.Intensity { return &d.diff }

// Boosted returns the contrast-amplified difference frame.
func (d *Detector) Boosted() *frame.Intensity { return &d.boosted }

// Binary returns the binarized difference frame fed to the counter.
func (d *Detector) Binary() *frame.Intensity { return &d.binary }

// Counts returns the per-pixel transition counts.
func (d *Detector) Counts() *frame.Intensity { return d.counter.Counts() }

// WaveMap returns the count-thresholded wave pixel map.
func (d *Detector) WaveMap() *frame.Intensity { return &d.waveMap }

// Filtered returns the wave map after outlier suppression.
func (d *Detector) Filtered() *frame.Intensity { return &d.filtered }
