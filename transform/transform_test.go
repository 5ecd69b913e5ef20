package transform

import (
	"errors"
	"image"
	"image/color"
	"testing"
)

func grid(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), A: 255})
		}
	}
	return img
}

func TestResizeDimensions(t *testing.T) {
	src := grid(200, 100)
	cases := []struct {
		scale float64
		w, h  int
	}{
		{2.0, 400, 200},
		{1.5, 300, 150},
		{0.5, 100, 50},
	}
	for _, c := range cases {
		out, err := Resize(src, c.scale)
		if err != nil {
			t.Fatalf("Resize(%v) error: %v", c.scale, err)
		}
		if out.Bounds().Dx() != c.w || out.Bounds().Dy() != c.h {
			t.Fatalf("Resize(%v) = %v, want %dx%d", c.scale, out.Bounds(), c.w, c.h)
		}
	}
}

func TestResizeIdentityClones(t *testing.T) {
	src := grid(50, 50)
	out, err := Resize(src, 1)
	if err != nil {
		t.Fatalf("Resize(1) error: %v", err)
	}
	if out == image.Image(src) {
		t.Fatal("Resize must allocate a fresh buffer even at scale 1")
	}
	if out.Bounds() != src.Bounds() {
		t.Fatalf("bounds changed: %v", out.Bounds())
	}
}

func TestResizeBadGeometry(t *testing.T) {
	src := grid(10, 10)
	for _, scale := range []float64{0, -1, 0.001} {
		if _, err := Resize(src, scale); !errors.Is(err, ErrBadGeometry) {
			t.Fatalf("Resize(%v) error = %v, want ErrBadGeometry", scale, err)
		}
	}
	if _, err := Resize(nil, 2); !errors.Is(err, ErrBadGeometry) {
		t.Fatalf("nil image error = %v, want ErrBadGeometry", err)
	}
}

func TestDownscaleDimensions(t *testing.T) {
	out, err := Downscale(grid(800, 600), 0.5)
	if err != nil {
		t.Fatalf("Downscale error: %v", err)
	}
	if out.Bounds().Dx() != 400 || out.Bounds().Dy() != 300 {
		t.Fatalf("Downscale bounds = %v, want 400x300", out.Bounds())
	}
	if _, err := Downscale(grid(10, 10), 1.5); !errors.Is(err, ErrBadGeometry) {
		t.Fatalf("upscale through Downscale should fail, got %v", err)
	}
}

func TestRotate180MovesPixels(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 4, 2))
	mark := color.RGBA{R: 255, A: 255}
	src.Set(0, 0, mark)

	out, err := Rotate(src, 180)
	if err != nil {
		t.Fatalf("Rotate error: %v", err)
	}
	if out.Bounds().Dx() != 4 || out.Bounds().Dy() != 2 {
		t.Fatalf("180 rotation changed dimensions: %v", out.Bounds())
	}
	r, _, _, _ := out.At(3, 1).RGBA()
	if r == 0 {
		t.Fatal("marked pixel did not move to the opposite corner")
	}
}

func TestRotate90SwapsDimensions(t *testing.T) {
	out, err := Rotate(grid(30, 10), 90)
	if err != nil {
		t.Fatalf("Rotate error: %v", err)
	}
	if out.Bounds().Dx() != 10 || out.Bounds().Dy() != 30 {
		t.Fatalf("90 rotation bounds = %v, want 10x30", out.Bounds())
	}
}

func TestRotateNormalizesAngle(t *testing.T) {
	out, err := Rotate(grid(8, 8), -180)
	if err != nil {
		t.Fatalf("Rotate(-180) error: %v", err)
	}
	if out.Bounds().Dx() != 8 || out.Bounds().Dy() != 8 {
		t.Fatalf("unexpected bounds %v", out.Bounds())
	}
}

func TestCrop(t *testing.T) {
	src := grid(100, 100)
	out, err := Crop(src, image.Rect(10, 20, 60, 50))
	if err != nil {
		t.Fatalf("Crop error: %v", err)
	}
	if out.Bounds().Dx() != 50 || out.Bounds().Dy() != 30 {
		t.Fatalf("crop bounds = %v, want 50x30", out.Bounds())
	}

	if _, err := Crop(src, image.Rect(0, 0, 0, 0)); !errors.Is(err, ErrBadGeometry) {
		t.Fatalf("empty rect error = %v, want ErrBadGeometry", err)
	}
	if _, err := Crop(src, image.Rect(50, 50, 150, 150)); !errors.Is(err, ErrBadGeometry) {
		t.Fatalf("out-of-bounds rect error = %v, want ErrBadGeometry", err)
	}
}
