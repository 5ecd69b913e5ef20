// Package transform provides the pure image primitives the scan pipeline
// composes: scaling, fixed-angle rotation, and rectangular cropping. Every
// function allocates a fresh buffer and never mutates its input; errors occur
// only for malformed geometry.
package transform

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
	xdraw "golang.org/x/image/draw"
)

// ErrBadGeometry reports a degenerate scale factor or rectangle.
var ErrBadGeometry = errors.New("transform: bad geometry")

// Resize scales the image by the given positive factor using Lanczos
// resampling, the quality/cost tradeoff retry attempts want when magnifying
// small code regions.
func Resize(img image.Image, scale float64) (image.Image, error) {
	if img == nil {
		return nil, fmt.Errorf("%w: nil image", ErrBadGeometry)
	}
	if scale <= 0 || math.IsNaN(scale) || math.IsInf(scale, 0) {
		return nil, fmt.Errorf("%w: scale %v", ErrBadGeometry, scale)
	}
	if scale == 1 {
		return imaging.Clone(img), nil
	}
	b := img.Bounds()
	w := int(math.Round(float64(b.Dx()) * scale))
	h := int(math.Round(float64(b.Dy()) * scale))
	if w < 1 || h < 1 {
		return nil, fmt.Errorf("%w: %dx%d at scale %v", ErrBadGeometry, b.Dx(), b.Dy(), scale)
	}
	return imaging.Resize(img, w, h, imaging.Lanczos), nil
}

// Downscale produces a detection-quality reduction of the image using the
// approximate bilinear scaler, which is considerably cheaper than Resize and
// sufficient for estimating code positions.
func Downscale(img image.Image, scale float64) (image.Image, error) {
	if img == nil {
		return nil, fmt.Errorf("%w: nil image", ErrBadGeometry)
	}
	if scale <= 0 || scale > 1 || math.IsNaN(scale) {
		return nil, fmt.Errorf("%w: downscale factor %v", ErrBadGeometry, scale)
	}
	b := img.Bounds()
	w := int(math.Round(float64(b.Dx()) * scale))
	h := int(math.Round(float64(b.Dy()) * scale))
	if w < 1 || h < 1 {
		return nil, fmt.Errorf("%w: %dx%d at scale %v", ErrBadGeometry, b.Dx(), b.Dy(), scale)
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, b, xdraw.Src, nil)
	return dst, nil
}

// Rotate returns the image rotated counter-clockwise by the given angle in
// degrees. Right angles use the exact lossless rotations; any other angle is
// resampled onto a white background, matching scanned-paper margins.
func Rotate(img image.Image, degrees float64) (image.Image, error) {
	if img == nil {
		return nil, fmt.Errorf("%w: nil image", ErrBadGeometry)
	}
	if math.IsNaN(degrees) || math.IsInf(degrees, 0) {
		return nil, fmt.Errorf("%w: angle %v", ErrBadGeometry, degrees)
	}
	deg := math.Mod(degrees, 360)
	if deg < 0 {
		deg += 360
	}
	switch deg {
	case 0:
		return imaging.Clone(img), nil
	case 90:
		return imaging.Rotate90(img), nil
	case 180:
		return imaging.Rotate180(img), nil
	case 270:
		return imaging.Rotate270(img), nil
	}
	return imaging.Rotate(img, deg, color.White), nil
}

// Crop extracts the given rectangle into a fresh buffer. The rectangle must
// be non-empty and lie within the image bounds.
func Crop(img image.Image, rect image.Rectangle) (image.Image, error) {
	if img == nil {
		return nil, fmt.Errorf("%w: nil image", ErrBadGeometry)
	}
	r := rect.Canon()
	if r.Empty() {
		return nil, fmt.Errorf("%w: empty rect %v", ErrBadGeometry, rect)
	}
	if !r.In(img.Bounds()) {
		return nil, fmt.Errorf("%w: rect %v outside bounds %v", ErrBadGeometry, rect, img.Bounds())
	}
	return imaging.Crop(img, r), nil
}
