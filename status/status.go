// Package status provides the cooperative progress and cancellation sink
// polled by long-running searches.
package status

import (
	"context"
	"sync"

	"github.com/golang/glog"
	"github.com/pkg/errors"

	"github.com/timpalpant/gonash/failure"
)

// Status is polled by the engine at bounded intervals (every pivot,
// every recursive call, every dominance test).
type Status interface {
	// Poll returns an error wrapping failure.ErrCanceled if the caller
	// has requested cancellation. The engine unwinds immediately and
	// returns the results collected so far.
	Poll() error
	// ReportProgress reports the fraction of work completed, in [0, 1].
	ReportProgress(fraction float64, message string)
}

// Null never cancels and discards progress reports.
var Null Status = nullStatus{}

type nullStatus struct{}

func (nullStatus) Poll() error                    { return nil }
func (nullStatus) ReportProgress(float64, string) {}

// ContextStatus is canceled when its context is done. Progress reports
// are logged at verbosity 1 and retained for inspection.
type ContextStatus struct {
	ctx context.Context

	mu       sync.Mutex
	fraction float64
	message  string
}

// FromContext returns a Status canceled by ctx.
func FromContext(ctx context.Context) *ContextStatus {
	return &ContextStatus{ctx: ctx}
}

// Poll implements Status.
func (s *ContextStatus) Poll() error {
	select {
	case <-s.ctx.Done():
		return errors.Wrap(failure.ErrCanceled, s.ctx.Err().Error())
	default:
		return nil
	}
}

// ReportProgress implements Status.
func (s *ContextStatus) ReportProgress(fraction float64, message string) {
	s.mu.Lock()
	s.fraction = fraction
	s.message = message
	s.mu.Unlock()

	glog.V(1).Infof("[%5.1f%%] %s", 100*fraction, message)
}

// Progress returns the last reported fraction and message.
func (s *ContextStatus) Progress() (float64, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fraction, s.message
}

// OrNull returns s, or Null if s is nil.
func OrNull(s Status) Status {
	if s == nil {
		return Null
	}

	return s
}
