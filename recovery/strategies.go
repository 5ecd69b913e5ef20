package recovery

import (
	"fmt"
	"sync"
)

// StrictStrategy fails the page on the first attempt-level error. Useful in
// tests and in deployments that prefer a hard failure over a silent partial
// result.
type StrictStrategy struct{}

func NewStrictStrategy() *StrictStrategy {
	return &StrictStrategy{}
}

func (s *StrictStrategy) OnError(err error, location Location) Action {
	return ActionFail
}

// LenientStrategy is the default best-effort policy: it records the error and
// lets the pipeline treat the attempt as empty, so retries at other scales
// still get their chance. Safe for concurrent use: one instance may serve
// several pages being processed in parallel.
type LenientStrategy struct {
	mu   sync.Mutex
	errs []error
}

func NewLenientStrategy() *LenientStrategy {
	return &LenientStrategy{}
}

func (s *LenientStrategy) OnError(err error, location Location) Action {
	annotated := fmt.Errorf("page %d %s/%s %s: %w",
		location.Page, location.Phase, location.Component, location.ROILabel, err)
	s.mu.Lock()
	s.errs = append(s.errs, annotated)
	s.mu.Unlock()
	return ActionWarn
}

// Errors returns a snapshot of every error recorded so far.
func (s *LenientStrategy) Errors() []error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]error(nil), s.errs...)
}
