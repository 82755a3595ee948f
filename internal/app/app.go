// Package app wires the camera, the wave detector and the store into
// the periodically ticking detection loop.
package app

import (
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"gocv.io/x/gocv"

	"github.com/BernieSumption/webcam-wave/internal/capture"
	"github.com/BernieSumption/webcam-wave/internal/frame"
	"github.com/BernieSumption/webcam-wave/internal/store"
	"github.com/BernieSumption/webcam-wave/internal/wave"
)

// TickFPS is the detection cadence. Every tick reads one frame and
// runs the full pipeline to completion.
const TickFPS = 20

// ErrUnknownBuffer is returned by SnapshotBuffer for an unrecognized
// buffer name.
var ErrUnknownBuffer = errors.New("unknown debug buffer")

// Config holds configuration options for the application.
type Config struct {
	Store    *store.Store
	CameraID int
	Params   wave.Params
}

// Status is the per-tick detection outcome pushed to subscribers.
type Status struct {
	Waving       bool  `json:"waving"`
	ActivePixels int   `json:"active_pixels"`
	Timestamp    int64 `json:"timestamp"`
}

// App owns the detection loop. It reads frames from the camera at
// TickFPS, runs the wave detector, records wave events in the store
// and pushes status updates to subscribers.
type App struct {
	config   Config
	camera   capture.Camera
	detector *wave.Detector

	// grey and prevGrey are handed off explicitly between ticks: after
	// a tick, prevGrey holds the frame just processed and grey is the
	// scratch buffer the next capture loads into.
	grey     *frame.Intensity
	prevGrey *frame.Intensity
	primed   bool
	procMu   sync.Mutex

	params    wave.Params
	enabled   bool
	waving    bool
	eventID   string
	peak      int
	listeners []func(Status)
	mu        sync.RWMutex

	stopCh chan struct{}
}

// New creates a new App instance with the given configuration.
func New(config Config) *App {
	params := config.Params
	if !params.Valid() {
		params = wave.DefaultParams()
	}

	return &App{
		config:   config,
		camera:   capture.NewCamera(config.CameraID),
		detector: wave.NewDetector(),
		grey:     frame.NewIntensity(),
		prevGrey: frame.NewIntensity(),
		params:   params,
		enabled:  true,
	}
}

// SetEnabled enables or disables wave detection. Disabling also
// resets the transition counter so stale counts cannot fire when
// detection resumes.
func (a *App) SetEnabled(enabled bool) {
	a.mu.Lock()
	a.enabled = enabled
	a.mu.Unlock()

	if !enabled {
		a.procMu.Lock()
		a.detector.Reset()
		a.primed = false
		a.procMu.Unlock()
	}
}

// IsEnabled returns whether wave detection is currently enabled.
func (a *App) IsEnabled() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.enabled
}

// Params returns the current detection parameters.
func (a *App) Params() wave.Params {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.params
}

// SetParams applies new detection parameters on the next tick and
// persists them when a store is configured. Invalid parameter sets are
// rejected.
func (a *App) SetParams(p wave.Params) error {
	if !p.Valid() {
		return errors.New("invalid detection parameters")
	}

	a.mu.Lock()
	a.params = p
	a.mu.Unlock()

	if a.config.Store != nil {
		return a.config.Store.Settings().SaveParams(p)
	}
	return nil
}

// Subscribe registers a listener invoked with the status of every
// processed tick. Listeners must not block.
func (a *App) Subscribe(fn func(Status)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.listeners = append(a.listeners, fn)
}

// SetCamera replaces the camera implementation. Used by tests to
// inject a mock.
func (a *App) SetCamera(c capture.Camera) {
	a.camera = c
}

// Camera returns the camera instance.
func (a *App) Camera() capture.Camera {
	return a.camera
}

// Start opens the camera and begins the detection loop.
func (a *App) Start() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.stopCh != nil {
		return nil
	}

	if err := a.camera.Open(); err != nil {
		return err
	}
	a.camera.SetFPS(TickFPS)

	a.stopCh = make(chan struct{})
	go a.runPipeline()

	log.Println("Detection pipeline started")
	return nil
}

// Stop halts the detection loop and releases the camera.
func (a *App) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.stopCh != nil {
		close(a.stopCh)
		a.stopCh = nil
	}

	if err := a.camera.Close(); err != nil {
		log.Printf("Error closing camera: %v", err)
	}

	log.Println("Detection pipeline stopped")
}

// processTick converts one captured frame and runs the detector over
// it. The first frame after start (or re-enable) only primes the
// previous-frame buffer; detection begins on the second frame.
func (a *App) processTick(mat *gocv.Mat) (Status, bool, error) {
	cf, err := capture.ToColorFrame(mat)
	if err != nil {
		return Status{}, false, err
	}

	a.mu.RLock()
	params := a.params
	a.mu.RUnlock()

	a.procMu.Lock()
	a.grey.LoadColor(cf)

	if !a.primed {
		a.prevGrey.CopyFrom(a.grey)
		a.primed = true
		a.procMu.Unlock()
		return Status{}, false, nil
	}

	result, err := a.detector.Process(a.grey, a.prevGrey, params)
	if err != nil {
		a.procMu.Unlock()
		return Status{}, false, err
	}

	// Hand the just-processed frame off as the next tick's previous.
	a.grey, a.prevGrey = a.prevGrey, a.grey
	a.procMu.Unlock()

	status := Status{
		Waving:       result.IsWaving,
		ActivePixels: result.ActivePixels,
		Timestamp:    time.Now().UnixMilli(),
	}
	a.handleStatus(status)

	return status, true, nil
}

// handleStatus records wave event boundaries and notifies subscribers.
func (a *App) handleStatus(status Status) {
	a.mu.Lock()
	started := status.Waving && !a.waving
	ended := !status.Waving && a.waving
	a.waving = status.Waving

	if status.Waving && status.ActivePixels > a.peak {
		a.peak = status.ActivePixels
	}
	if started {
		a.eventID = uuid.New().String()
		a.peak = status.ActivePixels
	}
	eventID := a.eventID
	peak := a.peak
	if ended {
		a.eventID = ""
		a.peak = 0
	}

	listeners := make([]func(Status), len(a.listeners))
	copy(listeners, a.listeners)
	a.mu.Unlock()

	if started {
		log.Printf("Wave started (%d active pixels)", status.ActivePixels)
		if a.config.Store != nil {
			err := a.config.Store.Events().Begin(&store.WaveEvent{
				ID:         eventID,
				StartedAt:  time.UnixMilli(status.Timestamp).UTC(),
				PeakPixels: peak,
			})
			if err != nil {
				log.Printf("Error recording wave start: %v", err)
			}
		}
	}
	if ended {
		log.Printf("Wave ended (peak %d active pixels)", peak)
		if a.config.Store != nil && eventID != "" {
			err := a.config.Store.Events().Finish(eventID, time.UnixMilli(status.Timestamp).UTC(), peak)
			if err != nil {
				log.Printf("Error recording wave end: %v", err)
			}
		}
	}

	for _, fn := range listeners {
		fn(status)
	}
}

// SnapshotBuffer copies one of the pipeline's intermediate buffers for
// debug rendering. Valid names: grey, diff, boosted, binary, counts,
// wave, filtered.
func (a *App) SnapshotBuffer(name string) (*frame.Intensity, error) {
	a.procMu.Lock()
	defer a.procMu.Unlock()

	var src *frame.Intensity
	switch name {
	case "grey":
		// After the tick hand-off the most recent capture lives in
		// prevGrey.
		src = a.prevGrey
	case "diff":
		src = a.detector.Diff()
	case "boosted":
		src = a.detector.Boosted()
	case "binary":
		src = a.detector.Binary()
	case "counts":
		src = a.detector.Counts()
	case "wave":
		src = a.detector.WaveMap()
	case "filtered":
		src = a.detector.Filtered()
	default:
		return nil, ErrUnknownBuffer
	}

	out := frame.NewIntensity()
	out.CopyFrom(src)
	return out, nil
}
