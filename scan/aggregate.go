package scan

import "github.com/wudi/barkit/barcode"

// FormatRequirement states that a page is expected to contain Count codes of
// Format. Requirements are kept as an ordered slice so missing-format
// reporting stays deterministic.
type FormatRequirement struct {
	Format barcode.Format
	Count  int
}

// AttemptMeta describes the attempt an AddCodes call came from.
type AttemptMeta struct {
	Scale    float64
	Rotated  bool
	ROILabel string
}

// AggregatedResult is the page-level outcome snapshot.
type AggregatedResult struct {
	PageNumber int
	// Success reports whether at least one code was found.
	Success bool
	// Codes is the deduplicated list of codes, in discovery order.
	Codes []barcode.Code
	// FoundFormats lists the distinct formats present, in discovery order.
	FoundFormats []barcode.Format
	// IsComplete reports whether every required format was satisfied with
	// sufficient count.
	IsComplete bool
	// MissingFormats lists required formats not found, in requirement order.
	MissingFormats []barcode.Format
	// TotalAttempts counts every decode attempt fed to the aggregator.
	TotalAttempts int
	// BestAttempt identifies the single attempt that yielded the most codes,
	// nil if no attempt yielded any.
	BestAttempt *AttemptMeta
	// Attempts is the ordered attempt log, attached for diagnostics.
	Attempts []Attempt
}

type codeKey struct {
	value  string
	format barcode.Format
}

// ResultAggregator accumulates codes across a page's decode attempts,
// deduplicating by (value, format) and evaluating the completion predicate
// against the required-format set. One aggregator exists per page and is
// discarded with it.
type ResultAggregator struct {
	pageNumber int
	required   []FormatRequirement

	codes       []barcode.Code
	seen        map[codeKey]bool
	foundOrder  []barcode.Format
	foundCounts map[barcode.Format]int

	complete  bool
	attempts  int
	best      *AttemptMeta
	bestCount int
}

// NewResultAggregator builds an aggregator for one page. An empty required
// set means "accept anything found".
func NewResultAggregator(pageNumber int, required []FormatRequirement) *ResultAggregator {
	req := make([]FormatRequirement, len(required))
	copy(req, required)
	return &ResultAggregator{
		pageNumber:  pageNumber,
		required:    req,
		seen:        make(map[codeKey]bool),
		foundCounts: make(map[barcode.Format]int),
	}
}

// AddCodes records one attempt's outcome. Codes already seen under any
// earlier scale or rotation are not re-added. Completeness is recomputed and,
// once reached, never revoked.
func (a *ResultAggregator) AddCodes(codes []barcode.Code, meta AttemptMeta) {
	a.attempts++
	for _, code := range codes {
		key := codeKey{value: code.Value, format: code.Format}
		if a.seen[key] {
			continue
		}
		a.seen[key] = true
		a.codes = append(a.codes, code)
		if a.foundCounts[code.Format] == 0 {
			a.foundOrder = append(a.foundOrder, code.Format)
		}
		a.foundCounts[code.Format]++
	}
	if len(codes) > a.bestCount {
		m := meta
		a.best = &m
		a.bestCount = len(codes)
	}
	a.recomputeComplete()
}

func (a *ResultAggregator) recomputeComplete() {
	if a.complete {
		return
	}
	if len(a.required) == 0 {
		a.complete = len(a.codes) > 0
		return
	}
	total := 0
	for _, req := range a.required {
		if a.foundCounts[req.Format] == 0 {
			return
		}
		total += req.Count
	}
	a.complete = len(a.codes) >= total
}

// Complete reports whether the completion predicate currently holds.
func (a *ResultAggregator) Complete() bool { return a.complete }

// FoundFormat reports whether at least one code of the format was collected.
func (a *ResultAggregator) FoundFormat(f barcode.Format) bool { return a.foundCounts[f] > 0 }

// ShouldStopScanning is the join point the orchestrator checks after every
// attempt: true once the page is complete or the retry controller reports no
// further attempts are worthwhile.
func (a *ResultAggregator) ShouldStopScanning(rc *RetryController) bool {
	if a.complete {
		return true
	}
	return !rc.ShouldContinueRetry(a.required)
}

// Result produces the immutable snapshot. Safe to call at any point, which
// supports best-effort returns when every ladder is exhausted.
func (a *ResultAggregator) Result() AggregatedResult {
	res := AggregatedResult{
		PageNumber:    a.pageNumber,
		Success:       len(a.codes) > 0,
		Codes:         make([]barcode.Code, len(a.codes)),
		FoundFormats:  make([]barcode.Format, len(a.foundOrder)),
		IsComplete:    a.complete,
		TotalAttempts: a.attempts,
	}
	copy(res.Codes, a.codes)
	copy(res.FoundFormats, a.foundOrder)
	for _, req := range a.required {
		if a.foundCounts[req.Format] == 0 {
			res.MissingFormats = append(res.MissingFormats, req.Format)
		}
	}
	if a.best != nil {
		m := *a.best
		res.BestAttempt = &m
	}
	return res
}
