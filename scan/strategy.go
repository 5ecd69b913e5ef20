package scan

import (
	"context"
	"errors"
	"fmt"
	"image"

	"github.com/wudi/barkit/barcode"
	"github.com/wudi/barkit/observability"
	"github.com/wudi/barkit/recovery"
	"github.com/wudi/barkit/transform"
)

// Option configures a Strategy.
type Option func(*Strategy)

// WithConfig replaces the default pipeline tuning. Unset fields are filled
// with defaults.
func WithConfig(cfg Config) Option {
	return func(s *Strategy) { s.cfg = cfg.withDefaults() }
}

// WithLogger attaches a structured log sink. Events are fire-and-forget and
// carry no control-flow meaning back into the pipeline.
func WithLogger(l observability.Logger) Option {
	return func(s *Strategy) { s.log = l }
}

// WithTracer attaches a tracer spanning each page call.
func WithTracer(t observability.Tracer) Option {
	return func(s *Strategy) { s.tracer = t }
}

// WithRecovery sets the attempt-failure policy. The default is lenient:
// failed transforms and decoder errors are logged and treated as empty
// attempts.
func WithRecovery(r recovery.Strategy) Option {
	return func(s *Strategy) { s.recover = r }
}

// Strategy drives the four-phase recovery pipeline for one page at a time:
// detect, region decode, full-page fallback, done. A Strategy holds no
// per-page state and may be invoked concurrently for independent pages.
type Strategy struct {
	decoder barcode.Decoder
	cfg     Config
	builder *ROIBuilder
	log     observability.Logger
	tracer  observability.Tracer
	recover recovery.Strategy
}

// NewStrategy builds a pipeline around the given decode primitive.
func NewStrategy(decoder barcode.Decoder, opts ...Option) *Strategy {
	s := &Strategy{
		decoder: decoder,
		cfg:     DefaultConfig(),
		log:     observability.NopLogger{},
		tracer:  observability.NopTracer(),
		recover: recovery.NewLenientStrategy(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.builder = NewROIBuilder(s.cfg)
	return s
}

// ProcessPage runs the full pipeline on one already-rendered page image and
// returns the aggregated result. It never returns an error: a malformed page
// or an aborting recovery policy yields a well-formed failed result, so a
// single bad page cannot take down a batch.
func (s *Strategy) ProcessPage(ctx context.Context, img image.Image, pageNumber int, required []FormatRequirement) (result AggregatedResult) {
	logger := s.log.With(observability.Int("page", pageNumber))
	agg := NewResultAggregator(pageNumber, required)
	rc := NewRetryController(s.cfg)

	defer func() {
		if r := recover(); r != nil {
			logger.Error("page processing aborted",
				observability.String("panic", fmt.Sprint(r)))
			result = failedResult(pageNumber, required)
		}
	}()

	ctx, span := s.tracer.StartSpan(ctx, "scan.ProcessPage")
	defer span.Finish()
	span.SetTag("page", pageNumber)

	if img == nil || img.Bounds().Empty() {
		logger.Error("invalid page image")
		return failedResult(pageNumber, required)
	}
	bounds := img.Bounds()

	var detected []barcode.Code
	if !s.cfg.DisableROI {
		logger.Debug("phase transition", observability.String("phase", "detect"))
		detected = s.detect(ctx, logger, img)
	}

	var phaseErr error
	if len(detected) > 0 {
		logger.Debug("phase transition",
			observability.String("phase", "roi_decode"),
			observability.Int("detections", len(detected)))
		set := s.builder.BuildROIs(detected, bounds.Dx(), bounds.Dy())
		phaseErr = s.roiDecode(ctx, logger, img, set, rc, agg)
	} else if !s.cfg.DisableROI {
		logger.Debug("detection found no positioned codes, skipping region decode")
	}

	if phaseErr == nil && !agg.Complete() {
		logger.Debug("phase transition", observability.String("phase", "fallback"))
		phaseErr = s.fallback(ctx, logger, img, rc, agg)
	}

	if phaseErr != nil {
		logger.Error("page processing aborted", observability.Error("err", phaseErr))
		if errors.Is(phaseErr, context.Canceled) || errors.Is(phaseErr, context.DeadlineExceeded) {
			// Best effort: hand back whatever was gathered before the
			// deadline; the caller decides whether to keep it.
			result = agg.Result()
			result.Attempts = rc.AttemptLog()
			return result
		}
		span.SetError(phaseErr)
		return failedResult(pageNumber, required)
	}

	result = agg.Result()
	result.Attempts = rc.AttemptLog()
	logger.Info("page scan complete",
		observability.Bool("success", result.Success),
		observability.Bool("complete", result.IsComplete),
		observability.Int("codes", len(result.Codes)),
		observability.Int("attempts", result.TotalAttempts))
	return result
}

// detect runs the decode primitive once on a cheap reduction of the page to
// estimate code positions. Its codes never reach the aggregator; positions
// are mapped back to base-image coordinates for region construction.
func (s *Strategy) detect(ctx context.Context, logger observability.Logger, img image.Image) []barcode.Code {
	small, err := transform.Downscale(img, s.cfg.DetectionScale)
	if err != nil {
		logger.Warn("detection downscale failed", observability.Error("err", err))
		return nil
	}
	res, err := s.decoder.Decode(ctx, small)
	if err != nil {
		logger.Warn("detection decode failed", observability.Error("err", err))
		return nil
	}
	inv := 1 / s.cfg.DetectionScale
	var out []barcode.Code
	for _, code := range res.Codes {
		if code.Position == nil || code.Position.IsEmpty() {
			continue
		}
		p := *code.Position
		code.Position = &barcode.Position{
			X:      int(float64(p.X) * inv),
			Y:      int(float64(p.Y) * inv),
			Width:  int(float64(p.Width) * inv),
			Height: int(float64(p.Height) * inv),
		}
		out = append(out, code)
	}
	return out
}

// roiDecode iterates the scale ladder over the prioritized regions, trying
// the fixed rotation as a second attempt whenever an upright decode fails.
// The stop predicate is consulted after every attempt so a satisfied page
// exits both loops immediately.
func (s *Strategy) roiDecode(ctx context.Context, logger observability.Logger, img image.Image, set ROISet, rc *RetryController, agg *ResultAggregator) error {
	priority := s.builder.DecodePriority(set)
	if len(priority) == 0 {
		return nil
	}
	required := agg.required
	for {
		scale, ok := rc.NextROIScale(required)
		if !ok {
			return nil
		}
		rc.markROIScaleTried(scale)
		for _, roi := range priority {
			if err := ctx.Err(); err != nil {
				return err
			}
			crop := s.builder.Crop(img, roi)
			if crop == nil {
				logger.Warn("degenerate region skipped",
					observability.String("roi", roi.Label))
				continue
			}
			scaled, err := transform.Resize(crop, scale)
			if err != nil {
				if abort := s.handleAttemptError(logger, err, recovery.Location{
					Page: agg.pageNumber, Phase: "roi", Component: "resize", ROILabel: roi.Label,
				}); abort != nil {
					return abort
				}
				agg.AddCodes(nil, AttemptMeta{Scale: scale, ROILabel: roi.Label})
				rc.RecordAttempt(Attempt{Scale: scale, ROILabel: roi.Label, Format: roi.Format})
				continue
			}

			stop, err := s.attempt(ctx, logger, scaled, rc, agg, Attempt{
				Scale: scale, ROILabel: roi.Label, Format: roi.Format,
			})
			if err != nil {
				return err
			}
			if stop {
				return nil
			}

			last := rc.log[len(rc.log)-1]
			if !last.Success && rc.ShouldRotate() {
				rotated, err := transform.Rotate(scaled, rc.RotationDegrees())
				if err != nil {
					if abort := s.handleAttemptError(logger, err, recovery.Location{
						Page: agg.pageNumber, Phase: "roi", Component: "rotate", ROILabel: roi.Label,
					}); abort != nil {
						return abort
					}
					agg.AddCodes(nil, AttemptMeta{Scale: scale, Rotated: true, ROILabel: roi.Label})
					rc.RecordAttempt(Attempt{Scale: scale, Rotated: true, ROILabel: roi.Label, Format: roi.Format})
					continue
				}
				stop, err := s.attempt(ctx, logger, rotated, rc, agg, Attempt{
					Scale: scale, Rotated: true, ROILabel: roi.Label, Format: roi.Format,
				})
				if err != nil {
					return err
				}
				if stop {
					return nil
				}
			}
		}
	}
}

// fallback decodes the whole page along the short fallback ladder. No
// rotation attempts here: full-page rotations are the most expensive
// transform in the pipeline and rarely pay off.
func (s *Strategy) fallback(ctx context.Context, logger observability.Logger, img image.Image, rc *RetryController, agg *ResultAggregator) error {
	for {
		scale, ok := rc.NextFullPageScale()
		if !ok {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		page := img
		if scale != 1 {
			scaled, err := transform.Resize(img, scale)
			if err != nil {
				if abort := s.handleAttemptError(logger, err, recovery.Location{
					Page: agg.pageNumber, Phase: "fallback", Component: "resize",
				}); abort != nil {
					return abort
				}
				agg.AddCodes(nil, AttemptMeta{Scale: scale})
				rc.RecordAttempt(Attempt{Scale: scale, Format: barcode.FormatMixed})
				continue
			}
			page = scaled
		}
		stop, err := s.attempt(ctx, logger, page, rc, agg, Attempt{
			Scale: scale, Format: barcode.FormatMixed,
		})
		if err != nil {
			return err
		}
		if stop {
			return nil
		}
	}
}

// attempt runs one decode trial, feeds the aggregator and the controller
// either way, and reports whether scanning should stop.
func (s *Strategy) attempt(ctx context.Context, logger observability.Logger, img image.Image, rc *RetryController, agg *ResultAggregator, a Attempt) (bool, error) {
	phase := "roi"
	if a.ROILabel == "" {
		phase = "fallback"
	}
	res, err := s.decoder.Decode(ctx, img)
	if err != nil {
		if abort := s.handleAttemptError(logger, err, recovery.Location{
			Page: agg.pageNumber, Phase: phase, Component: "decode", ROILabel: a.ROILabel,
		}); abort != nil {
			return false, abort
		}
		res = barcode.DecodeResult{}
	}
	a.Success = res.Success && len(res.Codes) > 0

	agg.AddCodes(res.Codes, AttemptMeta{Scale: a.Scale, Rotated: a.Rotated, ROILabel: a.ROILabel})
	rc.RecordAttempt(a)
	for _, code := range res.Codes {
		rc.MarkFormatFound(code.Format)
	}

	logger.Debug("decode attempt",
		observability.String("phase", phase),
		observability.String("roi", a.ROILabel),
		observability.Float64("scale", a.Scale),
		observability.Bool("rotated", a.Rotated),
		observability.Bool("success", a.Success),
		observability.Int("codes", len(res.Codes)))

	return agg.ShouldStopScanning(rc), nil
}

// handleAttemptError routes an attempt-level failure through the recovery
// policy. A non-nil return means the page must abort.
func (s *Strategy) handleAttemptError(logger observability.Logger, err error, loc recovery.Location) error {
	switch s.recover.OnError(err, loc) {
	case recovery.ActionFail:
		return fmt.Errorf("%s/%s failed: %w", loc.Phase, loc.Component, err)
	case recovery.ActionWarn:
		logger.Warn("attempt failed",
			observability.String("phase", loc.Phase),
			observability.String("component", loc.Component),
			observability.String("roi", loc.ROILabel),
			observability.Error("err", err))
	}
	return nil
}

// failedResult is the terminal outcome for a page that could not be
// processed at all.
func failedResult(pageNumber int, required []FormatRequirement) AggregatedResult {
	res := AggregatedResult{PageNumber: pageNumber}
	for _, req := range required {
		res.MissingFormats = append(res.MissingFormats, req.Format)
	}
	return res
}
