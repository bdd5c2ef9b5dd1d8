// Package detector holds the forensic detectors. Every detector is a pure
// function of a ledger.View: it keeps no state between runs, never mutates
// the view and may run concurrently with the others.
package detector

import (
	"context"
	"fmt"

	"github.com/carson-networks/ledger-forensics/internal/ledger"
)

// Detector is the contract every forensic test implements.
type Detector interface {
	Name() string
	Description() string
	Run(ctx context.Context, view *ledger.View) (Finding, error)
}

// Finding is the typed result of one detector run. Each implementation
// serialises to a JSON object of primitives.
type Finding interface {
	DetectorName() string
}

// Names of the built-in detectors, used as report keys.
const (
	NameStatistical = "statistical"
	NameTemporal    = "temporal"
	NameNetwork     = "network"
	NameFuzzyNames  = "fuzzy_names"
)

// All returns one instance of every built-in detector with default bounds.
func All() []Detector {
	return []Detector{
		NewStatisticalDetector(),
		NewTemporalDetector(),
		NewNetworkDetector(),
		NewFuzzyNameDetector(),
	}
}

// Explain returns the standard audit explanation for a finding of d.
func Explain(d Detector, findingID string) string {
	return fmt.Sprintf("Finding %s was flagged by the %s rules.", findingID, d.Name())
}
