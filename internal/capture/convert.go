package capture

import (
	"errors"

	"gocv.io/x/gocv"

	"github.com/BernieSumption/webcam-wave/internal/frame"
)

// ToColorFrame converts a captured Mat to the pipeline's RGBA color
// frame. Webcams deliver 3-channel BGR through OpenCV; single-channel
// greyscale captures are promoted to RGBA as well. The Mat is not
// consumed; the caller still owns it.
func ToColorFrame(mat *gocv.Mat) (*frame.Color, error) {
	if mat == nil || mat.Empty() {
		return nil, errors.New("cannot convert empty frame")
	}

	switch mat.Channels() {
	case 1:
		bgr := gocv.NewMat()
		defer bgr.Close()
		gocv.CvtColor(*mat, &bgr, gocv.ColorGrayToBGR)
		return bgrToColorFrame(&bgr)
	case 3:
		return bgrToColorFrame(mat)
	case 4:
		return &frame.Color{
			Width:  mat.Cols(),
			Height: mat.Rows(),
			Pix:    mat.ToBytes(),
		}, nil
	default:
		return nil, errors.New("unsupported channel count")
	}
}

// bgrToColorFrame expands a 3-channel BGR Mat into RGBA bytes.
func bgrToColorFrame(mat *gocv.Mat) (*frame.Color, error) {
	rgba := gocv.NewMat()
	defer rgba.Close()
	gocv.CvtColor(*mat, &rgba, gocv.ColorBGRToRGBA)

	return &frame.Color{
		Width:  rgba.Cols(),
		Height: rgba.Rows(),
		Pix:    rgba.ToBytes(),
	}, nil
}
