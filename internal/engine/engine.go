// Package engine runs the registered detectors over one ledger view and
// assembles their results into a report.
package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/carson-networks/ledger-forensics/internal/detector"
	"github.com/carson-networks/ledger-forensics/internal/ledger"
	"github.com/carson-networks/ledger-forensics/internal/logging"
	"github.com/carson-networks/ledger-forensics/internal/metrics"
	"github.com/carson-networks/ledger-forensics/internal/report"
)

const DefaultDetectorTimeout = 5 * time.Minute

// Engine fans detectors out over a shared, read-only view. A failing
// detector is recorded in the report and never stops the others.
type Engine struct {
	detectors   []detector.Detector
	timeout     time.Duration
	concurrency int
	currency    string
}

type Option func(*Engine)

// WithDetectors replaces the default detector set.
func WithDetectors(detectors ...detector.Detector) Option {
	return func(e *Engine) {
		e.detectors = detectors
	}
}

// WithDetectorTimeout bounds each detector run; 0 disables the bound.
func WithDetectorTimeout(d time.Duration) Option {
	return func(e *Engine) {
		e.timeout = d
	}
}

// WithConcurrency limits how many detectors run at once; 0 runs all of
// them in parallel.
func WithConcurrency(n int) Option {
	return func(e *Engine) {
		e.concurrency = n
	}
}

func WithCurrency(currency string) Option {
	return func(e *Engine) {
		e.currency = currency
	}
}

func New(opts ...Option) *Engine {
	e := &Engine{
		detectors: detector.All(),
		timeout:   DefaultDetectorTimeout,
		currency:  report.DefaultCurrency,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Register adds d to the detector set.
func (e *Engine) Register(d detector.Detector) {
	e.detectors = append(e.detectors, d)
}

func (e *Engine) Detectors() []detector.Detector {
	return e.detectors
}

type outcome struct {
	finding detector.Finding
	err     error
}

// Run executes every detector and returns the report. It only returns
// early when ctx itself is done; detector errors end up in the report's
// failures.
func (e *Engine) Run(ctx context.Context, view *ledger.View) *report.Report {
	logData := logging.GetLogData(ctx)
	endTimer := logData.AddTiming("engine")
	defer endTimer()

	outcomes := make([]outcome, len(e.detectors))

	var group errgroup.Group
	if e.concurrency > 0 {
		group.SetLimit(e.concurrency)
	}
	for i, d := range e.detectors {
		group.Go(func() error {
			outcomes[i] = e.runOne(ctx, d, view)
			return nil
		})
	}
	_ = group.Wait()

	rep := report.New(report.MetadataFor(view, e.currency))
	for i, d := range e.detectors {
		name := d.Name()
		if err := outcomes[i].err; err != nil {
			rep.AddFailure(name, err)
			logrus.WithError(err).WithFields(logrus.Fields{
				"detector": name,
				"kind":     ledger.KindOf(err),
			}).Warn("Engine.Detector.Failed")
			continue
		}
		rep.AddFinding(name, outcomes[i].finding)
	}

	logData.AddData("rows", view.Len())
	logData.AddData("findings", len(rep.Findings))
	logData.AddData("failures", len(rep.Failures))
	metrics.LedgerRows.Observe(float64(view.Len()))

	return rep
}

func (e *Engine) runOne(ctx context.Context, d detector.Detector, view *ledger.View) (out outcome) {
	name := d.Name()
	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			out = outcome{err: fmt.Errorf("%s: panic: %v", name, r)}
		}
		metrics.DetectorDurationSeconds.WithLabelValues(name).Observe(time.Since(start).Seconds())
		if out.err != nil {
			metrics.DetectorRunsTotal.WithLabelValues(name, metrics.OutcomeFailed).Inc()
			metrics.DetectorFailuresTotal.WithLabelValues(name, string(ledger.KindOf(out.err))).Inc()
			return
		}
		metrics.DetectorRunsTotal.WithLabelValues(name, metrics.OutcomeSuccess).Inc()
	}()

	finding, err := d.Run(ctx, view)
	if err == nil && finding == nil {
		err = fmt.Errorf("returned no finding")
	}
	if err != nil {
		return outcome{err: fmt.Errorf("%s: %w", name, err)}
	}
	logging.GetLogData(ctx).AddData("detector_"+name+"_ms", time.Since(start).Milliseconds())
	return outcome{finding: finding}
}

// Explain returns the standard explanation for a finding of the named
// detector. ok is false when no such detector is registered.
func (e *Engine) Explain(detectorName, findingID string) (explanation string, ok bool) {
	for _, d := range e.detectors {
		if d.Name() == detectorName {
			return detector.Explain(d, findingID), true
		}
	}
	return "", false
}
