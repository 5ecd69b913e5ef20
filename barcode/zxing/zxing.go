// Package zxing adapts the pure-Go gozxing readers to the barcode.Decoder
// contract.
package zxing

import (
	"context"
	"fmt"
	"image"
	"math"

	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/aztec"
	"github.com/makiuchi-d/gozxing/datamatrix"
	"github.com/makiuchi-d/gozxing/multi"
	"github.com/makiuchi-d/gozxing/oned"
	"github.com/makiuchi-d/gozxing/qrcode"

	"github.com/wudi/barkit/barcode"
)

var formatNames = map[gozxing.BarcodeFormat]barcode.Format{
	gozxing.BarcodeFormat_QR_CODE:     barcode.FormatQRCode,
	gozxing.BarcodeFormat_DATA_MATRIX: barcode.FormatDataMatrix,
	gozxing.BarcodeFormat_AZTEC:       barcode.FormatAztec,
	gozxing.BarcodeFormat_CODE_128:    barcode.FormatCode128,
	gozxing.BarcodeFormat_CODE_39:     barcode.FormatCode39,
	gozxing.BarcodeFormat_EAN_13:      barcode.FormatEAN13,
	gozxing.BarcodeFormat_EAN_8:       barcode.FormatEAN8,
	gozxing.BarcodeFormat_ITF:         barcode.FormatITF,
	gozxing.BarcodeFormat_UPC_A:       barcode.FormatUPCA,
}

// Option mutates a Decoder during construction.
type Option func(*Decoder)

// WithTryHarder toggles the TRY_HARDER hint, trading decode time for better
// recovery on low-quality scans. Enabled by default.
func WithTryHarder(enabled bool) Option {
	return func(d *Decoder) { d.tryHarder = enabled }
}

// WithFormats restricts the reader set to the given symbologies. Unknown
// formats are ignored; an empty selection keeps the full default set.
func WithFormats(formats ...barcode.Format) Option {
	return func(d *Decoder) {
		if len(formats) == 0 {
			return
		}
		keep := make(map[barcode.Format]bool, len(formats))
		for _, f := range formats {
			keep[f] = true
		}
		var readers []namedReader
		for _, r := range d.readers {
			if keep[r.format] {
				readers = append(readers, r)
			}
		}
		if len(readers) > 0 {
			d.readers = readers
		}
	}
}

type namedReader struct {
	format barcode.Format
	reader gozxing.Reader
	// multi resolves several codes of the same symbology in one pass. Set
	// for the matrix readers, nil for the linear ones.
	multi multi.MultipleBarcodeReader
}

func matrixReader(format barcode.Format, r gozxing.Reader) namedReader {
	return namedReader{format: format, reader: r, multi: multi.NewGenericMultipleBarcodeReader(r)}
}

func linearReader(format barcode.Format, r gozxing.Reader) namedReader {
	return namedReader{format: format, reader: r}
}

// Decoder reads barcodes with the gozxing reader family. Each Decode call
// binarizes the image once and runs every configured reader against it, so a
// page holding codes of several symbologies yields all of them in one call.
// Matrix readers go through the generic multi-reader, so a region holding two
// QR codes yields both as well.
type Decoder struct {
	readers   []namedReader
	tryHarder bool
}

// New returns a Decoder covering the common 2-D and linear symbologies.
func New(opts ...Option) *Decoder {
	d := &Decoder{
		readers: []namedReader{
			matrixReader(barcode.FormatQRCode, qrcode.NewQRCodeReader()),
			matrixReader(barcode.FormatDataMatrix, datamatrix.NewDataMatrixReader()),
			matrixReader(barcode.FormatAztec, aztec.NewAztecReader()),
			linearReader(barcode.FormatCode128, oned.NewCode128Reader()),
			linearReader(barcode.FormatCode39, oned.NewCode39Reader()),
			linearReader(barcode.FormatEAN13, oned.NewEAN13Reader()),
			linearReader(barcode.FormatEAN8, oned.NewEAN8Reader()),
			linearReader(barcode.FormatITF, oned.NewITFReader()),
			linearReader(barcode.FormatUPCA, oned.NewUPCAReader()),
		},
		tryHarder: true,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Name implements barcode.Decoder.
func (d *Decoder) Name() string { return "gozxing" }

// Decode implements barcode.Decoder. A failed reader means "this symbology is
// not present" and is skipped; only bitmap construction can fail.
func (d *Decoder) Decode(ctx context.Context, img image.Image) (barcode.DecodeResult, error) {
	bmp, err := gozxing.NewBinaryBitmapFromImage(img)
	if err != nil {
		return barcode.DecodeResult{}, fmt.Errorf("build binary bitmap: %w", err)
	}
	var hints map[gozxing.DecodeHintType]interface{}
	if d.tryHarder {
		hints = map[gozxing.DecodeHintType]interface{}{
			gozxing.DecodeHintType_TRY_HARDER: true,
		}
	}
	var codes []barcode.Code
	for _, r := range d.readers {
		select {
		case <-ctx.Done():
			return barcode.DecodeResult{}, ctx.Err()
		default:
		}
		if r.multi != nil {
			results, err := r.multi.DecodeMultiple(bmp, hints)
			if err != nil {
				continue
			}
			for _, res := range results {
				codes = append(codes, toCode(res, r.format))
			}
			continue
		}
		res, err := r.reader.Decode(bmp, hints)
		if err != nil {
			continue
		}
		codes = append(codes, toCode(res, r.format))
	}
	return barcode.DecodeResult{Success: len(codes) > 0, Codes: codes}, nil
}

func toCode(res *gozxing.Result, fallback barcode.Format) barcode.Code {
	format := fallback
	if f, ok := formatNames[res.GetBarcodeFormat()]; ok {
		format = f
	}
	return barcode.Code{
		Value:    res.GetText(),
		Format:   format,
		Position: positionFromPoints(res.GetResultPoints()),
	}
}

// positionFromPoints derives a bounding box from the engine's result points.
// Linear readers report two points on the scan line, which collapses one
// dimension; the box is still useful as an anchor for region construction.
func positionFromPoints(points []gozxing.ResultPoint) *barcode.Position {
	if len(points) == 0 {
		return nil
	}
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, p := range points {
		minX = math.Min(minX, p.GetX())
		minY = math.Min(minY, p.GetY())
		maxX = math.Max(maxX, p.GetX())
		maxY = math.Max(maxY, p.GetY())
	}
	pos := &barcode.Position{
		X:      int(math.Floor(minX)),
		Y:      int(math.Floor(minY)),
		Width:  int(math.Ceil(maxX - minX)),
		Height: int(math.Ceil(maxY - minY)),
	}
	// A scan-line box from a linear reader has zero height; give it a single
	// pixel so it stays a valid anchor.
	if pos.Width < 1 {
		pos.Width = 1
	}
	if pos.Height < 1 {
		pos.Height = 1
	}
	return pos
}
