package capture

import (
	"testing"

	"gocv.io/x/gocv"
)

func TestToColorFrame_BGR(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	mat := gocv.NewMatWithSize(3, 4, gocv.MatTypeCV8UC3)
	defer mat.Close()
	// BGR order: blue=10, green=20, red=30.
	mat.SetTo(gocv.NewScalar(10, 20, 30, 0))

	cf, err := ToColorFrame(&mat)
	if err != nil {
		t.Fatalf("ToColorFrame() error = %v", err)
	}

	if cf.Width != 4 || cf.Height != 3 {
		t.Fatalf("dimensions = %dx%d, want 4x3", cf.Width, cf.Height)
	}
	if len(cf.Pix) != 4*3*4 {
		t.Fatalf("len(Pix) = %d, want %d", len(cf.Pix), 4*3*4)
	}

	// RGBA order after conversion.
	if cf.Pix[0] != 30 || cf.Pix[1] != 20 || cf.Pix[2] != 10 {
		t.Errorf("first pixel RGB = %d,%d,%d, want 30,20,10", cf.Pix[0], cf.Pix[1], cf.Pix[2])
	}
}

func TestToColorFrame_Grey(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	mat := gocv.NewMatWithSize(2, 2, gocv.MatTypeCV8UC1)
	defer mat.Close()
	mat.SetTo(gocv.NewScalar(77, 0, 0, 0))

	cf, err := ToColorFrame(&mat)
	if err != nil {
		t.Fatalf("ToColorFrame() error = %v", err)
	}

	if cf.Pix[0] != 77 || cf.Pix[1] != 77 || cf.Pix[2] != 77 {
		t.Errorf("grey pixel RGB = %d,%d,%d, want 77,77,77", cf.Pix[0], cf.Pix[1], cf.Pix[2])
	}
}

func TestToColorFrame_Empty(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	mat := gocv.NewMat()
	defer mat.Close()

	if _, err := ToColorFrame(&mat); err == nil {
		t.Error("ToColorFrame() on empty Mat should fail")
	}
}

func TestToColorFrame_Nil(t *testing.T) {
	if _, err := ToColorFrame(nil); err == nil {
		t.Error("ToColorFrame(nil) should fail")
	}
}
