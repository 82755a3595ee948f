package app

import (
	"errors"
	"path/filepath"
	"testing"

	"gocv.io/x/gocv"

	"github.com/BernieSumption/webcam-wave/internal/store"
	"github.com/BernieSumption/webcam-wave/internal/wave"
)

func newTestApp(t *testing.T) (*App, *store.Store) {
	t.Helper()

	s, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("store.New() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })

	return New(Config{Store: s, Params: wave.DefaultParams()}), s
}

// solidMat builds a h x w BGR mat filled with one brightness value.
func solidMat(t *testing.T, v float64) *gocv.Mat {
	t.Helper()

	mat := gocv.NewMatWithSize(16, 16, gocv.MatTypeCV8UC3)
	mat.SetTo(gocv.NewScalar(v, v, v, 0))
	t.Cleanup(func() { mat.Close() })
	return &mat
}

func TestApp_DetectsFrameWideFlicker(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test that requires GoCV")
	}

	a, s := newTestApp(t)

	var statuses []Status
	a.Subscribe(func(st Status) {
		statuses = append(statuses, st)
	})

	dark := solidMat(t, 0)
	bright := solidMat(t, 255)

	// Alternate dark and bright frames: every pixel flips each tick,
	// which is exactly the repetitive signal the detector counts.
	frames := []*gocv.Mat{dark, bright}
	waved := false
	for tick := 0; tick < 30; tick++ {
		st, processed, err := a.processTick(frames[tick%2])
		if err != nil {
			t.Fatalf("tick %d: processTick() error = %v", tick, err)
		}
		if tick == 0 && processed {
			t.Fatal("first tick should only prime the previous frame")
		}
		if st.Waving {
			waved = true
		}
	}

	if !waved {
		t.Fatal("app never reported waving for frame-wide flicker")
	}
	if len(statuses) == 0 {
		t.Fatal("subscriber was never notified")
	}

	// A wave event must have been opened in the store.
	events, err := s.Events().List(10)
	if err != nil {
		t.Fatalf("Events().List() error = %v", err)
	}
	if len(events) == 0 {
		t.Error("no wave event recorded")
	}
}

func TestApp_StaticSceneDoesNotWave(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test that requires GoCV")
	}

	a, s := newTestApp(t)

	still := solidMat(t, 120)
	for tick := 0; tick < 30; tick++ {
		st, _, err := a.processTick(still)
		if err != nil {
			t.Fatalf("tick %d: processTick() error = %v", tick, err)
		}
		if st.Waving {
			t.Fatalf("tick %d: Waving = true for static scene", tick)
		}
	}

	events, err := s.Events().List(10)
	if err != nil {
		t.Fatalf("Events().List() error = %v", err)
	}
	if len(events) != 0 {
		t.Errorf("recorded %d wave events for static scene, want 0", len(events))
	}
}

func TestApp_WaveEventIsClosed(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test that requires GoCV")
	}

	a, s := newTestApp(t)

	dark := solidMat(t, 0)
	bright := solidMat(t, 255)
	still := solidMat(t, 0)

	frames := []*gocv.Mat{dark, bright}
	for tick := 0; tick < 20; tick++ {
		if _, _, err := a.processTick(frames[tick%2]); err != nil {
			t.Fatalf("flicker tick %d error = %v", tick, err)
		}
	}

	// Hold the scene still until all counts go stale and the wave ends.
	for tick := 0; tick < 20; tick++ {
		if _, _, err := a.processTick(still); err != nil {
			t.Fatalf("still tick %d error = %v", tick, err)
		}
	}

	events, err := s.Events().List(10)
	if err != nil {
		t.Fatalf("Events().List() error = %v", err)
	}
	if len(events) == 0 {
		t.Fatal("no wave event recorded")
	}
	if events[0].EndedAt == nil {
		t.Error("wave event was never closed")
	}
	if events[0].PeakPixels <= 0 {
		t.Errorf("PeakPixels = %d, want > 0", events[0].PeakPixels)
	}
}

func TestApp_SnapshotBuffer(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test that requires GoCV")
	}

	a, _ := newTestApp(t)

	dark := solidMat(t, 0)
	bright := solidMat(t, 255)
	a.processTick(dark)
	a.processTick(bright)

	names := []string{"grey", "diff", "boosted", "binary", "counts", "wave", "filtered"}
	for _, name := range names {
		buf, err := a.SnapshotBuffer(name)
		if err != nil {
			t.Fatalf("SnapshotBuffer(%q) error = %v", name, err)
		}
		if buf.Width != 16 || buf.Height != 16 {
			t.Errorf("SnapshotBuffer(%q) dimensions = %dx%d, want 16x16", name, buf.Width, buf.Height)
		}
	}

	if _, err := a.SnapshotBuffer("bogus"); !errors.Is(err, ErrUnknownBuffer) {
		t.Errorf("SnapshotBuffer(bogus) error = %v, want ErrUnknownBuffer", err)
	}
}

func TestApp_SetParams(t *testing.T) {
	a, s := newTestApp(t)

	bad := wave.Params{ContrastFactor: -1, MaxInterval: 0, OutlierThreshold: 2}
	if err := a.SetParams(bad); err == nil {
		t.Error("SetParams() accepted invalid parameters")
	}

	good := wave.Params{
		ContrastFactor:      3,
		MaxInterval:         7,
		TransitionThreshold: 4,
		OutlierThreshold:    0.25,
	}
	if err := a.SetParams(good); err != nil {
		t.Fatalf("SetParams() error = %v", err)
	}
	if a.Params() != good {
		t.Errorf("Params() = %+v, want %+v", a.Params(), good)
	}

	// Parameters must have been persisted.
	loaded, err := s.Settings().LoadParams()
	if err != nil {
		t.Fatalf("LoadParams() error = %v", err)
	}
	if loaded != good {
		t.Errorf("persisted params = %+v, want %+v", loaded, good)
	}
}

func TestApp_InvalidConfigParamsFallBackToDefaults(t *testing.T) {
	a := New(Config{})
	if a.Params() != wave.DefaultParams() {
		t.Errorf("Params() = %+v, want defaults", a.Params())
	}
}

func TestApp_EnableToggle(t *testing.T) {
	a := New(Config{})

	if !a.IsEnabled() {
		t.Error("new app should start enabled")
	}

	a.SetEnabled(false)
	if a.IsEnabled() {
		t.Error("IsEnabled() = true after SetEnabled(false)")
	}

	a.SetEnabled(true)
	if !a.IsEnabled() {
		t.Error("IsEnabled() = false after SetEnabled(true)")
	}
}
