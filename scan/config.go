package scan

// Config carries the tunables of the recovery pipeline. The zero value is not
// usable directly; call DefaultConfig or leave fields zero to have them filled
// with defaults at construction.
type Config struct {
	// DetectionScale is the reduction factor for the position-estimation
	// pass. Detection never produces final results, so a cheap low scale
	// suffices.
	DetectionScale float64

	// ROIScales is the ascending magnification ladder applied to region
	// crops during the ROI phase.
	ROIScales []float64

	// FullPageScales is the shorter ladder reserved for the full-page
	// fallback phase.
	FullPageScales []float64

	// RotationDegrees is the single fixed angle tried after a failed upright
	// decode at a given scale.
	RotationDegrees float64

	// DisableRotation turns rotation retries off entirely.
	DisableRotation bool

	// MatrixPadding and LinearPadding are the fractions of a detected box's
	// own size added on each side when building its region. Matrix codes get
	// wider padding to preserve their quiet zones.
	MatrixPadding float64
	LinearPadding float64

	// UnionPadding is the smaller fraction applied to the merged region that
	// covers all detections.
	UnionPadding float64

	// MinROISize is the pixel floor for region edges. Sub-minimum regions
	// are re-centered on the detection at this size instead of being
	// discarded.
	MinROISize int

	// DisableROI switches the pipeline to its degraded single-ladder mode:
	// detection and region decoding are skipped and only the full-page
	// ladder runs.
	DisableROI bool
}

// DefaultConfig returns the tuning used in production.
func DefaultConfig() Config {
	return Config{
		DetectionScale:  0.5,
		ROIScales:       []float64{1.5, 2.0, 3.0},
		FullPageScales:  []float64{1.0, 2.0},
		RotationDegrees: 180,
		MatrixPadding:   0.5,
		LinearPadding:   0.25,
		UnionPadding:    0.1,
		MinROISize:      64,
	}
}

// withDefaults fills unset fields so partially specified configs behave.
func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.DetectionScale <= 0 || c.DetectionScale > 1 {
		c.DetectionScale = def.DetectionScale
	}
	if len(c.ROIScales) == 0 {
		c.ROIScales = def.ROIScales
	}
	if len(c.FullPageScales) == 0 {
		c.FullPageScales = def.FullPageScales
	}
	if c.RotationDegrees == 0 {
		c.RotationDegrees = def.RotationDegrees
	}
	if c.MatrixPadding <= 0 {
		c.MatrixPadding = def.MatrixPadding
	}
	if c.LinearPadding <= 0 {
		c.LinearPadding = def.LinearPadding
	}
	if c.UnionPadding <= 0 {
		c.UnionPadding = def.UnionPadding
	}
	if c.MinROISize <= 0 {
		c.MinROISize = def.MinROISize
	}
	return c
}
