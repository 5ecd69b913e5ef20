package barcode

import (
	"context"
	"image"
)

// Format identifies a barcode symbology. The values follow the conventional
// ZXing spelling so they round-trip cleanly through decoder engines and logs.
type Format string

const (
	FormatQRCode     Format = "QR_CODE"
	FormatDataMatrix Format = "DATA_MATRIX"
	FormatAztec      Format = "AZTEC"
	FormatPDF417     Format = "PDF_417"
	FormatCode128    Format = "CODE_128"
	FormatCode39     Format = "CODE_39"
	FormatEAN13      Format = "EAN_13"
	FormatEAN8       Format = "EAN_8"
	FormatITF        Format = "ITF"
	FormatUPCA       Format = "UPC_A"

	// FormatMixed labels a region or attempt that targets codes of more than
	// one symbology at once.
	FormatMixed Format = "MIXED"
)

// IsMatrix reports whether the format is a 2-D matrix symbology. Matrix codes
// carry their own error correction and larger quiet zones, so callers use this
// to pick padding and retry behavior.
func (f Format) IsMatrix() bool {
	switch f {
	case FormatQRCode, FormatDataMatrix, FormatAztec, FormatPDF417:
		return true
	}
	return false
}

// Position is an approximate pixel bounding box with the origin in the
// upper-left corner of the image.
type Position struct {
	X      int
	Y      int
	Width  int
	Height int
}

// Rect converts the position to an image.Rectangle.
func (p Position) Rect() image.Rectangle {
	return image.Rect(p.X, p.Y, p.X+p.Width, p.Y+p.Height)
}

// IsEmpty reports whether the position has non-positive dimensions.
func (p Position) IsEmpty() bool { return p.Width <= 0 || p.Height <= 0 }

// Code is a single machine-readable code returned by a decode attempt.
// Immutable once returned by a Decoder.
type Code struct {
	// Value is the decoded payload.
	Value string
	// Format tags the symbology the code was read as.
	Format Format
	// Position is the approximate bounding box in the decoded image, or nil
	// when the engine cannot localize the code.
	Position *Position
}

// DecodeResult captures the outcome of one decode call. An image with no
// readable code is reported as Success == false with an empty Codes slice,
// never as an error.
type DecodeResult struct {
	Success bool
	Codes   []Code
}

// Decoder is the decode primitive: one image in, zero or more codes out.
// Implementations must not treat "no code present" as an error and should
// return position data when the underlying engine provides it.
type Decoder interface {
	Name() string
	Decode(ctx context.Context, img image.Image) (DecodeResult, error)
}
