package scan

import (
	"testing"

	"github.com/wudi/barkit/barcode"
)

func TestNextROIScaleWalksLadderOnce(t *testing.T) {
	rc := NewRetryController(Config{ROIScales: []float64{1.5, 2.0, 3.0}})
	required := []FormatRequirement{{Format: barcode.FormatQRCode, Count: 1}}

	for _, want := range []float64{1.5, 2.0, 3.0} {
		got, ok := rc.NextROIScale(required)
		if !ok || got != want {
			t.Fatalf("NextROIScale = %v, %v; want %v, true", got, ok, want)
		}
		rc.RecordAttempt(Attempt{Scale: got, ROILabel: "qr_code-1", Format: barcode.FormatQRCode})
	}
	if got, ok := rc.NextROIScale(required); ok {
		t.Fatalf("expected exhausted ladder, got %v", got)
	}
}

func TestROIAndFullPageLaddersAreIndependent(t *testing.T) {
	rc := NewRetryController(Config{
		ROIScales:      []float64{2.0},
		FullPageScales: []float64{1.0, 2.0},
	})
	rc.RecordAttempt(Attempt{Scale: 2.0, ROILabel: "union", Format: barcode.FormatMixed})

	// Spending 2.0 in the ROI phase must not consume it in the fallback.
	got, ok := rc.NextFullPageScale()
	if !ok || got != 1.0 {
		t.Fatalf("NextFullPageScale = %v, %v; want 1.0, true", got, ok)
	}
	rc.RecordAttempt(Attempt{Scale: 1.0, Format: barcode.FormatMixed})
	got, ok = rc.NextFullPageScale()
	if !ok || got != 2.0 {
		t.Fatalf("NextFullPageScale = %v, %v; want 2.0, true", got, ok)
	}
}

func TestShouldContinueRetryStopsWhenRequiredFound(t *testing.T) {
	rc := NewRetryController(Config{})
	required := []FormatRequirement{
		{Format: barcode.FormatQRCode, Count: 1},
		{Format: barcode.FormatCode128, Count: 1},
	}
	if !rc.ShouldContinueRetry(required) {
		t.Fatal("fresh controller should continue")
	}
	rc.RecordAttempt(Attempt{Scale: 1.5, ROILabel: "qr_code-1", Format: barcode.FormatQRCode, Success: true})
	if !rc.ShouldContinueRetry(required) {
		t.Fatal("one of two formats found, should still continue")
	}
	rc.MarkFormatFound(barcode.FormatCode128)
	if rc.ShouldContinueRetry(required) {
		t.Fatal("all required formats found, should stop")
	}
	if _, ok := rc.NextROIScale(required); ok {
		t.Fatal("satisfied controller must not hand out further scales")
	}
}

func TestShouldContinueRetryWithoutRequirements(t *testing.T) {
	rc := NewRetryController(Config{})
	if !rc.ShouldContinueRetry(nil) {
		t.Fatal("nothing found yet, should continue")
	}
	rc.RecordAttempt(Attempt{Scale: 1.5, ROILabel: "ean_13-1", Format: barcode.FormatEAN13, Success: true})
	if rc.ShouldContinueRetry(nil) {
		t.Fatal("anything found satisfies an empty requirement set")
	}
}

func TestMixedSuccessDoesNotMarkFormat(t *testing.T) {
	rc := NewRetryController(Config{})
	required := []FormatRequirement{{Format: barcode.FormatQRCode, Count: 1}}
	rc.RecordAttempt(Attempt{Scale: 1.5, ROILabel: "union", Format: barcode.FormatMixed, Success: true})
	if !rc.ShouldContinueRetry(required) {
		t.Fatal("a mixed attempt alone cannot satisfy a concrete requirement")
	}
}

func TestRotationPolicy(t *testing.T) {
	rc := NewRetryController(Config{})
	if !rc.ShouldRotate() || rc.RotationDegrees() != 180 {
		t.Fatalf("default rotation policy = %v/%v, want enabled at 180", rc.ShouldRotate(), rc.RotationDegrees())
	}
	off := NewRetryController(Config{DisableRotation: true})
	if off.ShouldRotate() {
		t.Fatal("rotation should be disabled")
	}
}

func TestAttemptLogIsOrderedCopy(t *testing.T) {
	rc := NewRetryController(Config{})
	rc.RecordAttempt(Attempt{Scale: 1.5, ROILabel: "union", Format: barcode.FormatMixed})
	rc.RecordAttempt(Attempt{Scale: 1.5, Rotated: true, ROILabel: "union", Format: barcode.FormatMixed, Success: true})

	log := rc.AttemptLog()
	if len(log) != 2 || rc.Attempts() != 2 {
		t.Fatalf("log length = %d, attempts = %d, want 2", len(log), rc.Attempts())
	}
	if log[0].Rotated || !log[1].Rotated {
		t.Fatalf("log order broken: %+v", log)
	}
	log[0].Scale = 99
	if rc.AttemptLog()[0].Scale == 99 {
		t.Fatal("AttemptLog must return a copy")
	}
}
