// Package recovery defines pluggable policies for handling attempt-level
// failures inside the scan pipeline: a transform or decode call that fails for
// one region must not necessarily fail the whole page.
package recovery

// Strategy decides how the pipeline reacts to an error raised by a single
// decode or transform call.
type Strategy interface {
	OnError(err error, location Location) Action
}

// Location identifies where in the pipeline an error occurred.
type Location struct {
	// Page is the one-based page number being processed.
	Page int
	// Phase names the pipeline phase: detect, roi, fallback.
	Phase string
	// Component names the failing operation: decode, crop, resize, rotate.
	Component string
	// ROILabel tags the region being decoded, empty for full-page work.
	ROILabel string
}

type Action int

const (
	// ActionFail aborts the page and yields a failed result.
	ActionFail Action = iota
	// ActionSkip drops the attempt silently and moves on.
	ActionSkip
	// ActionWarn logs the error and treats the attempt as empty.
	ActionWarn
)
