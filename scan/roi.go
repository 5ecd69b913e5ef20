package scan

import (
	"fmt"
	"image"
	"math"
	"sort"
	"strings"

	"github.com/wudi/barkit/barcode"
	"github.com/wudi/barkit/transform"
)

// ROI is a padded crop rectangle derived from one or more detected code
// positions. Created once per page from a single detection snapshot and never
// mutated.
type ROI struct {
	// Rect is the crop rectangle, clamped to the image bounds.
	Rect image.Rectangle
	// Format is the symbology the region was built for, FormatMixed for a
	// union region spanning several.
	Format barcode.Format
	// Label is a human-readable tag used for logging and tie-breaking.
	Label string
	// ContainedCount is the number of original detections the region covers.
	// Set for union regions only.
	ContainedCount int
}

// Area returns the region's pixel area.
func (r ROI) Area() int { return r.Rect.Dx() * r.Rect.Dy() }

// ROISet is the output of one BuildROIs call: the individual regions plus the
// merged union region, when one could be formed.
type ROISet struct {
	ROIs  []ROI
	Union *ROI
}

// ROIBuilder computes prioritized crop regions from rough detection
// positions. Builders are stateless and safe to share across pages.
type ROIBuilder struct {
	cfg Config
}

// NewROIBuilder returns a builder using the given padding and size tuning.
func NewROIBuilder(cfg Config) *ROIBuilder {
	return &ROIBuilder{cfg: cfg.withDefaults()}
}

// BuildROIs derives one padded, clamped region per positioned detection and
// a union region covering all of them. Detections without position data are
// skipped. Padding is a fraction of the detection's own size, wider for
// matrix symbologies than for linear ones. A padded region that falls below
// the minimum size floor is re-centered on the detection at the floor size
// instead of being discarded.
func (b *ROIBuilder) BuildROIs(codes []barcode.Code, imageWidth, imageHeight int) ROISet {
	var set ROISet
	if imageWidth <= 0 || imageHeight <= 0 {
		return set
	}
	bounds := image.Rect(0, 0, imageWidth, imageHeight)

	formats := make(map[barcode.Format]bool)
	for _, code := range codes {
		if code.Position == nil || code.Position.IsEmpty() {
			continue
		}
		rect := b.padded(*code.Position, code.Format)
		rect = rect.Intersect(bounds)
		if rect.Dx() < b.cfg.MinROISize || rect.Dy() < b.cfg.MinROISize {
			rect = b.minimumBox(*code.Position, bounds)
		}
		if rect.Empty() {
			continue
		}
		formats[code.Format] = true
		set.ROIs = append(set.ROIs, ROI{
			Rect:   rect,
			Format: code.Format,
			Label:  fmt.Sprintf("%s-%d", strings.ToLower(string(code.Format)), len(set.ROIs)+1),
		})
	}
	if len(set.ROIs) == 0 {
		return set
	}

	union := set.ROIs[0].Rect
	for _, roi := range set.ROIs[1:] {
		union = union.Union(roi.Rect)
	}
	padX := int(math.Round(float64(union.Dx()) * b.cfg.UnionPadding))
	padY := int(math.Round(float64(union.Dy()) * b.cfg.UnionPadding))
	union = image.Rect(union.Min.X-padX, union.Min.Y-padY, union.Max.X+padX, union.Max.Y+padY)
	union = union.Intersect(bounds)

	unionFormat := set.ROIs[0].Format
	if len(formats) > 1 {
		unionFormat = barcode.FormatMixed
	}
	set.Union = &ROI{
		Rect:           union,
		Format:         unionFormat,
		Label:          "union",
		ContainedCount: len(set.ROIs),
	}
	return set
}

// padded expands the detection box by the format-specific fraction on every
// side.
func (b *ROIBuilder) padded(pos barcode.Position, format barcode.Format) image.Rectangle {
	frac := b.cfg.LinearPadding
	if format.IsMatrix() || format == barcode.FormatMixed {
		frac = b.cfg.MatrixPadding
	}
	padX := int(math.Round(float64(pos.Width) * frac))
	padY := int(math.Round(float64(pos.Height) * frac))
	r := pos.Rect()
	return image.Rect(r.Min.X-padX, r.Min.Y-padY, r.Max.X+padX, r.Max.Y+padY)
}

// minimumBox centers a floor-sized box on the detection and clamps it back
// into the image by sliding rather than shrinking, so the floor holds
// whenever the image itself is large enough.
func (b *ROIBuilder) minimumBox(pos barcode.Position, bounds image.Rectangle) image.Rectangle {
	size := b.cfg.MinROISize
	cx := pos.X + pos.Width/2
	cy := pos.Y + pos.Height/2
	x0 := cx - size/2
	y0 := cy - size/2
	if x0 < bounds.Min.X {
		x0 = bounds.Min.X
	}
	if y0 < bounds.Min.Y {
		y0 = bounds.Min.Y
	}
	if x0+size > bounds.Max.X {
		x0 = bounds.Max.X - size
	}
	if y0+size > bounds.Max.Y {
		y0 = bounds.Max.Y - size
	}
	return image.Rect(x0, y0, x0+size, y0+size).Intersect(bounds)
}

// DecodePriority flattens a set into decode order: the union region first,
// since one decode there may resolve every code on the page, then individual
// regions by descending area, larger regions being cheaper to decode
// reliably. Ties break on label for determinism.
func (b *ROIBuilder) DecodePriority(set ROISet) []ROI {
	var out []ROI
	if set.Union != nil && ValidROI(*set.Union) {
		out = append(out, *set.Union)
	}
	individual := make([]ROI, 0, len(set.ROIs))
	for _, roi := range set.ROIs {
		if ValidROI(roi) {
			individual = append(individual, roi)
		}
	}
	sort.SliceStable(individual, func(i, j int) bool {
		if individual[i].Area() != individual[j].Area() {
			return individual[i].Area() > individual[j].Area()
		}
		return individual[i].Label < individual[j].Label
	})
	return append(out, individual...)
}

// Crop extracts the region's pixels into a fresh buffer, or returns nil for
// a degenerate region rather than failing.
func (b *ROIBuilder) Crop(img image.Image, roi ROI) image.Image {
	if img == nil || !ValidROI(roi) {
		return nil
	}
	out, err := transform.Crop(img, roi.Rect)
	if err != nil {
		return nil
	}
	return out
}

// ValidROI is a pure sanity check used defensively before any crop or decode
// call: the region must have positive dimensions and a non-negative origin.
func ValidROI(roi ROI) bool {
	return roi.Rect.Min.X >= 0 && roi.Rect.Min.Y >= 0 &&
		roi.Rect.Dx() > 0 && roi.Rect.Dy() > 0
}
