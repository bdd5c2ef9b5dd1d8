// Package report defines the analysis report and renders it as JSON or
// HTML.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/shopspring/decimal"

	"github.com/carson-networks/ledger-forensics/internal/detector"
	"github.com/carson-networks/ledger-forensics/internal/ledger"
)

// DefaultCurrency is reported when no currency is configured.
const DefaultCurrency = "IDR"

// Report is the outcome of one analysis. Findings and Failures are keyed by
// detector name; a detector appears in exactly one of them.
type Report struct {
	Metadata Metadata                    `json:"metadata"`
	Findings map[string]detector.Finding `json:"findings"`
	Failures map[string]Failure          `json:"failures"`
}

// Metadata describes the analysed ledger. TotalAmount is exact and
// serialised as a decimal string.
type Metadata struct {
	TotalRows   int             `json:"total_rows"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Currency    string          `json:"currency"`
}

// Failure records why a detector produced no finding.
type Failure struct {
	Detector string      `json:"detector"`
	Kind     ledger.Kind `json:"kind"`
	Message  string      `json:"message"`
}

func New(meta Metadata) *Report {
	if meta.Currency == "" {
		meta.Currency = DefaultCurrency
	}
	return &Report{
		Metadata: meta,
		Findings: make(map[string]detector.Finding),
		Failures: make(map[string]Failure),
	}
}

// MetadataFor summarises view.
func MetadataFor(view *ledger.View, currency string) Metadata {
	return Metadata{
		TotalRows:   view.Len(),
		TotalAmount: view.TotalAmount(),
		Currency:    currency,
	}
}

func (r *Report) AddFinding(name string, f detector.Finding) {
	r.Findings[name] = f
}

func (r *Report) AddFailure(name string, err error) {
	r.Failures[name] = Failure{
		Detector: name,
		Kind:     ledger.KindOf(err),
		Message:  err.Error(),
	}
}

// WriteJSON writes r as indented JSON.
func WriteJSON(w io.Writer, r *Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(r)
}

// Save writes r as JSON to path, replacing any existing file.
func Save(path string, r *Report) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report %s: %w", path, err)
	}
	if err := WriteJSON(f, r); err != nil {
		f.Close()
		return fmt.Errorf("write report %s: %w", path, err)
	}
	return f.Close()
}
