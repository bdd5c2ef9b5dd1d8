package detector

import (
	"context"
	"sort"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/carson-networks/ledger-forensics/internal/ledger"
)

// CliffStatus labels the December/average spending ratio.
type CliffStatus string

const (
	CliffExtremeDumping      CliffStatus = "Extreme dumping"
	CliffSignificantIncrease CliffStatus = "Significant increase"
	CliffNormal              CliffStatus = "Normal"
)

const (
	cliffExtreme     = 2.5
	cliffSignificant = 1.5
	december         = 12

	velocityThreshold = 5
	velocityTopN      = 10

	fiscalCliffExplanation = "Compares December spending with the average monthly spending. A high ratio points to budget dumping at the end of the fiscal year."
	velocityExplanation    = "Flags entities with more than 5 transactions on a single calendar day."
	temporalDescribe       = "Time-series anomalies: fiscal-cliff budget dumping and transaction velocity."
)

// TemporalFinding is the result of the temporal detector.
type TemporalFinding struct {
	Detector    string            `json:"detector"`
	FiscalCliff FiscalCliffResult `json:"fiscal_cliff"`
	Velocity    VelocityResult    `json:"velocity"`
}

func (f *TemporalFinding) DetectorName() string { return f.Detector }

// FiscalCliffResult holds per-month totals keyed "1".."12"; months without
// transactions are absent.
type FiscalCliffResult struct {
	MonthlyTotals map[string]float64 `json:"monthly_totals"`
	Ratio         float64            `json:"december_ratio"`
	Status        CliffStatus        `json:"status"`
	Explanation   string             `json:"explanation"`
}

// VelocityEvent is one (entity, day) group above the threshold.
type VelocityEvent struct {
	Entity string `json:"entity"`
	Date   string `json:"date"`
	Count  int    `json:"count"`
}

// VelocityResult lists the busiest flagged (entity, day) groups.
type VelocityResult struct {
	HighVelocity []VelocityEvent `json:"high_velocity_events"`
	Explanation  string          `json:"explanation"`
}

// TemporalDetector looks at when money moves.
type TemporalDetector struct{}

func NewTemporalDetector() *TemporalDetector {
	return &TemporalDetector{}
}

func (d *TemporalDetector) Name() string {
	return NameTemporal
}

func (d *TemporalDetector) Description() string {
	return temporalDescribe
}

func (d *TemporalDetector) Run(ctx context.Context, view *ledger.View) (Finding, error) {
	if err := view.Require(ledger.RoleDate, ledger.RoleAmount, ledger.RoleEntity); err != nil {
		return nil, err
	}
	months, err := view.Months()
	if err != nil {
		return nil, err
	}
	days, err := view.Days()
	if err != nil {
		return nil, err
	}
	amounts, err := view.DecimalAmounts()
	if err != nil {
		return nil, err
	}
	entities, err := view.Column(ledger.RoleEntity)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return &TemporalFinding{
		Detector:    d.Name(),
		FiscalCliff: FiscalCliff(months, amounts),
		Velocity:    Velocity(entities, days),
	}, nil
}

// FiscalCliff sums amounts per calendar month and compares December with
// the mean of the month totals. Years are folded together. A missing
// December or a non-positive mean gives ratio 0.
func FiscalCliff(months []int, amounts []decimal.Decimal) FiscalCliffResult {
	totals := make(map[int]decimal.Decimal)
	for i, m := range months {
		totals[m] = totals[m].Add(amounts[i])
	}

	monthly := make(map[string]float64, len(totals))
	sum := decimal.Zero
	for m, total := range totals {
		monthly[strconv.Itoa(m)] = total.InexactFloat64()
		sum = sum.Add(total)
	}

	ratio := 0.0
	if len(totals) > 0 {
		mean := sum.Div(decimal.NewFromInt(int64(len(totals))))
		if mean.IsPositive() {
			ratio = totals[december].InexactFloat64() / mean.InexactFloat64()
		}
	}

	return FiscalCliffResult{
		MonthlyTotals: monthly,
		Ratio:         ratio,
		Status:        classifyCliff(ratio),
		Explanation:   fiscalCliffExplanation,
	}
}

func classifyCliff(ratio float64) CliffStatus {
	switch {
	case ratio > cliffExtreme:
		return CliffExtremeDumping
	case ratio > cliffSignificant:
		return CliffSignificantIncrease
	default:
		return CliffNormal
	}
}

type entityDay struct {
	entity, day string
}

// Velocity counts transactions per (entity, day) and returns the groups
// above the threshold, busiest first. Ties are ordered by entity, then day.
func Velocity(entities, days []string) VelocityResult {
	counts := make(map[entityDay]int)
	for i, e := range entities {
		counts[entityDay{e, days[i]}]++
	}

	events := make([]VelocityEvent, 0)
	for key, n := range counts {
		if n > velocityThreshold {
			events = append(events, VelocityEvent{Entity: key.entity, Date: key.day, Count: n})
		}
	}
	sort.Slice(events, func(i, j int) bool {
		if events[i].Count != events[j].Count {
			return events[i].Count > events[j].Count
		}
		if events[i].Entity != events[j].Entity {
			return events[i].Entity < events[j].Entity
		}
		return events[i].Date < events[j].Date
	})
	if len(events) > velocityTopN {
		events = events[:velocityTopN]
	}

	return VelocityResult{
		HighVelocity: events,
		Explanation:  velocityExplanation,
	}
}
