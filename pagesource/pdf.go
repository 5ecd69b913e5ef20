package pagesource

import (
	"context"
	"fmt"
	"image"
	"os"
	"sort"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// PDFSource extracts the embedded page rasters of a scanned PDF. Scanned
// documents carry one full-page image per page; when a page holds several
// images the largest one is taken as the page raster.
type PDFSource struct {
	path string
	conf *model.Configuration
}

// NewPDFSource builds a source over a scanned PDF file.
func NewPDFSource(path string) *PDFSource {
	return &PDFSource{path: path, conf: model.NewDefaultConfiguration()}
}

// Pages extracts and decodes the per-page images.
func (s *PDFSource) Pages(ctx context.Context) ([]PageImage, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	byPage := make(map[int]image.Image)
	digest := func(img model.Image, singleImgPerPage bool, maxPageDigits int) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		decoded, _, err := image.Decode(img)
		if err != nil {
			// Unsupported embedded encodings (e.g. JBIG2) are skipped, not
			// fatal: the remaining pages are still worth scanning.
			return nil
		}
		if prev, ok := byPage[img.PageNr]; ok {
			if area(prev) >= area(decoded) {
				return nil
			}
		}
		byPage[img.PageNr] = decoded
		return nil
	}
	if err := api.ExtractImages(f, nil, digest, s.conf); err != nil {
		return nil, fmt.Errorf("extract images from %s: %w", s.path, err)
	}

	numbers := make([]int, 0, len(byPage))
	for nr := range byPage {
		numbers = append(numbers, nr)
	}
	sort.Ints(numbers)
	pages := make([]PageImage, 0, len(byPage))
	for _, nr := range numbers {
		pages = append(pages, PageImage{Number: nr, Image: byPage[nr]})
	}
	return pages, nil
}

func area(img image.Image) int {
	b := img.Bounds()
	return b.Dx() * b.Dy()
}
