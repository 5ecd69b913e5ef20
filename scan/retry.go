package scan

import "github.com/wudi/barkit/barcode"

// Attempt is one decode trial, recorded for bookkeeping and diagnostics.
type Attempt struct {
	// Scale is the magnification applied before decoding.
	Scale float64
	// Rotated reports whether the fixed-angle rotation was applied.
	Rotated bool
	// ROILabel tags the region decoded; empty means full-page fallback.
	ROILabel string
	// Format is the symbology the attempt targeted, FormatMixed for regions
	// covering several.
	Format barcode.Format
	// Success reports whether the attempt yielded at least one code.
	Success bool
}

// RetryController tracks which scale/rotation combinations have been spent
// and which required formats are already satisfied, and hands the
// orchestrator the next candidate to try. It never returns errors; an
// exhausted ladder simply reports no next scale.
type RetryController struct {
	cfg            Config
	log            []Attempt
	usedROIScales  map[float64]bool
	usedFullScales map[float64]bool
	found          map[barcode.Format]bool
}

// NewRetryController builds a controller for a single page. Controllers are
// single-owner and never outlive the page call.
func NewRetryController(cfg Config) *RetryController {
	return &RetryController{
		cfg:            cfg.withDefaults(),
		usedROIScales:  make(map[float64]bool),
		usedFullScales: make(map[float64]bool),
		found:          make(map[barcode.Format]bool),
	}
}

// RecordAttempt appends to the attempt log, marks the attempt's scale as
// spent in its phase, and on success marks the targeted format as found.
func (rc *RetryController) RecordAttempt(a Attempt) {
	rc.log = append(rc.log, a)
	if a.ROILabel != "" {
		rc.usedROIScales[a.Scale] = true
	} else {
		rc.usedFullScales[a.Scale] = true
	}
	if a.Success && a.Format != "" && a.Format != barcode.FormatMixed {
		rc.found[a.Format] = true
	}
}

// MarkFormatFound records a format satisfied by a mixed-region attempt, where
// the attempt itself carries no single symbology.
func (rc *RetryController) MarkFormatFound(f barcode.Format) {
	if f != "" && f != barcode.FormatMixed {
		rc.found[f] = true
	}
}

// ShouldContinueRetry reports whether further attempts can still improve the
// page. With required formats it is false once every one of them has been
// found; with none it is false once anything at all has been found.
func (rc *RetryController) ShouldContinueRetry(required []FormatRequirement) bool {
	if len(required) == 0 {
		return len(rc.found) == 0
	}
	for _, req := range required {
		if !rc.found[req.Format] {
			return true
		}
	}
	return false
}

// NextROIScale returns the next untried scale from the ROI ladder, or false
// when retrying is no longer warranted or the ladder is exhausted.
func (rc *RetryController) NextROIScale(required []FormatRequirement) (float64, bool) {
	if !rc.ShouldContinueRetry(required) {
		return 0, false
	}
	for _, s := range rc.cfg.ROIScales {
		if !rc.usedROIScales[s] {
			return s, true
		}
	}
	return 0, false
}

// markROIScaleTried spends a scale up front so the ladder advances even when
// every region at that scale turns out degenerate and no attempt is recorded.
func (rc *RetryController) markROIScaleTried(s float64) { rc.usedROIScales[s] = true }

// NextFullPageScale returns the next untried scale from the fallback ladder,
// or false when it is exhausted.
func (rc *RetryController) NextFullPageScale() (float64, bool) {
	for _, s := range rc.cfg.FullPageScales {
		if !rc.usedFullScales[s] {
			return s, true
		}
	}
	return 0, false
}

// ShouldRotate reports whether the rotation policy is enabled. Rotation is
// only ever a second attempt after an upright failure at the same scale,
// never a first choice.
func (rc *RetryController) ShouldRotate() bool { return !rc.cfg.DisableRotation }

// RotationDegrees returns the fixed rotation angle.
func (rc *RetryController) RotationDegrees() float64 { return rc.cfg.RotationDegrees }

// Attempts returns the number of recorded attempts.
func (rc *RetryController) Attempts() int { return len(rc.log) }

// AttemptLog returns a copy of the ordered attempt log.
func (rc *RetryController) AttemptLog() []Attempt {
	out := make([]Attempt, len(rc.log))
	copy(out, rc.log)
	return out
}
