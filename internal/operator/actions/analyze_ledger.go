package actions

import (
	"context"

	"github.com/carson-networks/ledger-forensics/internal/ledger"
	"github.com/carson-networks/ledger-forensics/internal/report"
	"github.com/carson-networks/ledger-forensics/internal/service"
	"github.com/carson-networks/ledger-forensics/internal/storage"
)

// Analyzer is implemented by *service.AnalysisService.
type Analyzer interface {
	Analyze(ctx context.Context, source service.SourceType, table *ledger.Table, opts service.Options) (*report.Report, error)
}

// AnalyzeLedger runs every detector over Table. Report holds the result
// once Perform returns nil.
type AnalyzeLedger struct {
	Analyzer Analyzer
	Source   service.SourceType
	Table    *ledger.Table
	Options  service.Options

	Report *report.Report
}

func (a *AnalyzeLedger) Perform(ctx context.Context, _ *storage.Writer) error {
	rep, err := a.Analyzer.Analyze(ctx, a.Source, a.Table, a.Options)
	if err != nil {
		return err
	}
	a.Report = rep
	return nil
}

func (a *AnalyzeLedger) Writes() bool {
	return false
}
