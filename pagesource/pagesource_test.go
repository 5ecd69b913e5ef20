package pagesource

import (
	"context"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func writePNG(t *testing.T, dir, name string, w, h int) string {
	t.Helper()
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()
	if err := png.Encode(f, image.NewRGBA(image.Rect(0, 0, w, h))); err != nil {
		t.Fatalf("encode %s: %v", path, err)
	}
	return path
}

func TestFileSourceNumbersPagesInOrder(t *testing.T) {
	dir := t.TempDir()
	first := writePNG(t, dir, "a.png", 40, 30)
	second := writePNG(t, dir, "b.png", 20, 10)

	pages, err := NewFileSource(first, second).Pages(context.Background())
	if err != nil {
		t.Fatalf("Pages error: %v", err)
	}
	if len(pages) != 2 {
		t.Fatalf("got %d pages, want 2", len(pages))
	}
	if pages[0].Number != 1 || pages[1].Number != 2 {
		t.Fatalf("page numbers = %d, %d, want 1, 2", pages[0].Number, pages[1].Number)
	}
	if pages[0].Image.Bounds().Dx() != 40 || pages[1].Image.Bounds().Dx() != 20 {
		t.Fatalf("pages decoded out of order")
	}
}

func TestFileSourceMissingFileFails(t *testing.T) {
	if _, err := NewFileSource("does-not-exist.png").Pages(context.Background()); err == nil {
		t.Fatal("expected an error for a missing file")
	}
}

func TestFileSourceHonorsContext(t *testing.T) {
	dir := t.TempDir()
	path := writePNG(t, dir, "p.png", 10, 10)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewFileSource(path).Pages(ctx); err == nil {
		t.Fatal("expected a context error")
	}
}
