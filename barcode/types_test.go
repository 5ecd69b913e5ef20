package barcode

import (
	"image"
	"testing"
)

func TestFormatIsMatrix(t *testing.T) {
	matrix := []Format{FormatQRCode, FormatDataMatrix, FormatAztec, FormatPDF417}
	for _, f := range matrix {
		if !f.IsMatrix() {
			t.Fatalf("%s should classify as matrix", f)
		}
	}
	linear := []Format{FormatCode128, FormatCode39, FormatEAN13, FormatEAN8, FormatITF, FormatUPCA}
	for _, f := range linear {
		if f.IsMatrix() {
			t.Fatalf("%s should not classify as matrix", f)
		}
	}
	if FormatMixed.IsMatrix() {
		t.Fatal("mixed is not a matrix symbology")
	}
}

func TestPositionRect(t *testing.T) {
	p := Position{X: 10, Y: 20, Width: 30, Height: 40}
	if got, want := p.Rect(), image.Rect(10, 20, 40, 60); got != want {
		t.Fatalf("Rect() = %v, want %v", got, want)
	}
	if p.IsEmpty() {
		t.Fatal("positive position reported empty")
	}
	if !(Position{X: 1, Y: 1}).IsEmpty() {
		t.Fatal("zero-size position should be empty")
	}
}
