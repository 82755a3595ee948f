package server

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"net/http"
	"time"

	"gocv.io/x/gocv"

	"github.com/BernieSumption/webcam-wave/internal/app"
)

// countLevels colors the transition-count buffer for the debug stream:
// raw counts are tiny greyscale values, so a ramp from dark red to
// bright green makes progress toward the threshold visible.
var countLevels = map[uint8]color.RGBA{
	0: {R: 0, G: 0, B: 0, A: 255},
	1: {R: 96, G: 0, B: 0, A: 255},
	2: {R: 160, G: 32, B: 0, A: 255},
	3: {R: 208, G: 96, B: 0, A: 255},
	4: {R: 224, G: 160, B: 0, A: 255},
	5: {R: 192, G: 224, B: 0, A: 255},
	6: {R: 96, G: 255, B: 0, A: 255},
}

// countFallback marks counts beyond the ramp.
var countFallback = color.RGBA{R: 0, G: 255, B: 128, A: 255}

// StreamHandler serves MJPEG renderings of the pipeline's intermediate
// buffers. The buffer query parameter selects the stage; see
// app.SnapshotBuffer for the valid names.
type StreamHandler struct {
	app *app.App
}

// NewStreamHandler creates a new StreamHandler for the given app.
func NewStreamHandler(a *app.App) *StreamHandler {
	return &StreamHandler{app: a}
}

// ServeHTTP streams MJPEG frames of the requested buffer.
func (h *StreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	name := r.URL.Query().Get("buffer")
	if name == "" {
		name = "grey"
	}
	if _, err := h.app.SnapshotBuffer(name); errors.Is(err, app.ErrUnknownBuffer) {
		http.Error(w, "Unknown buffer", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary=frame")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	for {
		select {
		case <-r.Context().Done():
			return
		default:
		}

		buf, err := h.renderJPEG(name)
		if err != nil {
			time.Sleep(100 * time.Millisecond)
			continue
		}

		fmt.Fprintf(w, "--frame\r\n")
		fmt.Fprintf(w, "Content-Type: image/jpeg\r\n")
		fmt.Fprintf(w, "Content-Length: %d\r\n\r\n", len(buf))
		w.Write(buf)
		fmt.Fprintf(w, "\r\n")

		if f, ok := w.(http.Flusher); ok {
			f.Flush()
		}

		time.Sleep(time.Second / app.TickFPS)
	}
}

// renderJPEG snapshots a buffer, renders it to RGBA and encodes it as
// JPEG.
func (h *StreamHandler) renderJPEG(name string) ([]byte, error) {
	snap, err := h.app.SnapshotBuffer(name)
	if err != nil {
		return nil, err
	}
	if snap.Width == 0 || snap.Height == 0 {
		return nil, errors.New("buffer is empty")
	}

	img := image.NewRGBA(image.Rect(0, 0, snap.Width, snap.Height))
	var levels map[uint8]color.RGBA
	if name == "counts" {
		levels = countLevels
	}
	if err := snap.RenderRGBA(img, levels, countFallback); err != nil {
		return nil, err
	}

	mat, err := gocv.ImageToMatRGBA(img)
	if err != nil {
		return nil, err
	}
	defer mat.Close()

	bgr := gocv.NewMat()
	defer bgr.Close()
	gocv.CvtColor(mat, &bgr, gocv.ColorRGBAToBGR)

	encoded, err := gocv.IMEncode(".jpg", bgr)
	if err != nil {
		return nil, err
	}
	defer encoded.Close()

	out := make([]byte, encoded.Len())
	copy(out, encoded.GetBytes())
	return out, nil
}
