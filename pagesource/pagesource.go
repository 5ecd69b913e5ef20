// Package pagesource supplies already-rendered page images to the scan
// pipeline. The pipeline itself never rasterizes pages; these adapters sit at
// that boundary and produce plain decoded images from the artifacts scanning
// workflows actually have: image files and scanned PDFs with embedded page
// rasters.
package pagesource

import (
	"context"
	"fmt"
	"image"
	"os"

	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/tiff"
)

// PageImage couples a decoded page image with its one-based page number.
type PageImage struct {
	Number int
	Image  image.Image
}

// Source yields the pages of one document in order.
type Source interface {
	Pages(ctx context.Context) ([]PageImage, error)
}

// FileSource treats a list of image files (PNG, JPEG, TIFF) as consecutive
// pages, in argument order.
type FileSource struct {
	paths []string
}

// NewFileSource builds a source over the given image file paths.
func NewFileSource(paths ...string) *FileSource {
	return &FileSource{paths: append([]string(nil), paths...)}
}

// Pages decodes every file. A single unreadable file fails the whole call;
// partial batches are the caller's concern, not this adapter's.
func (s *FileSource) Pages(ctx context.Context) ([]PageImage, error) {
	pages := make([]PageImage, 0, len(s.paths))
	for i, path := range s.paths {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		img, err := decodeFile(path)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", i+1, err)
		}
		pages = append(pages, PageImage{Number: i + 1, Image: img})
	}
	return pages, nil
}

func decodeFile(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return img, nil
}
