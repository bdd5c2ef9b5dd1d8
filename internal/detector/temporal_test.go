package detector

import (
	"context"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carson-networks/ledger-forensics/internal/ledger"
)

var temporalColumns = []string{"date", "amount", "vendor_id"}

func decimals(values ...int64) []decimal.Decimal {
	out := make([]decimal.Decimal, len(values))
	for i, v := range values {
		out[i] = decimal.NewFromInt(v)
	}
	return out
}

// -- FiscalCliff tests --

func TestFiscalCliff_ExtremeDumping(t *testing.T) {
	months := []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12}
	amounts := decimals(100, 100, 100, 100, 100, 100, 100, 100, 100, 100, 100, 1000)

	result := FiscalCliff(months, amounts)

	// mean = 2100/12 = 175
	assert.InDelta(t, 1000.0/175.0, result.Ratio, 1e-9)
	assert.Equal(t, CliffExtremeDumping, result.Status)
	assert.Len(t, result.MonthlyTotals, 12)
	assert.Equal(t, 1000.0, result.MonthlyTotals["12"])
}

func TestFiscalCliff_SignificantIncrease(t *testing.T) {
	result := FiscalCliff([]int{1, 2, 12}, decimals(100, 100, 250))

	assert.InDelta(t, 250.0/150.0, result.Ratio, 1e-9)
	assert.Equal(t, CliffSignificantIncrease, result.Status)
}

func TestFiscalCliff_NoDecember(t *testing.T) {
	result := FiscalCliff([]int{1, 1, 6}, decimals(100, 200, 300))

	assert.Equal(t, 0.0, result.Ratio)
	assert.Equal(t, CliffNormal, result.Status)
	assert.Equal(t, map[string]float64{"1": 300, "6": 300}, result.MonthlyTotals)
}

func TestFiscalCliff_ZeroMean(t *testing.T) {
	result := FiscalCliff([]int{11, 12}, decimals(-50, 50))

	assert.Equal(t, 0.0, result.Ratio)
	assert.Equal(t, CliffNormal, result.Status)
}

func TestFiscalCliff_FoldsYears(t *testing.T) {
	view := newView(t, temporalColumns,
		[]string{"2023-12-01", "100", "A"},
		[]string{"2024-12-01", "100", "A"},
		[]string{"2024-06-01", "50", "A"},
	)

	finding, err := NewTemporalDetector().Run(context.Background(), view)
	require.NoError(t, err)

	cliff := finding.(*TemporalFinding).FiscalCliff
	assert.Equal(t, map[string]float64{"12": 200, "6": 50}, cliff.MonthlyTotals)
	assert.InDelta(t, 200.0/125.0, cliff.Ratio, 1e-9)
}

func TestFiscalCliff_MonthlyTotalsSumToLedgerTotal(t *testing.T) {
	rows := make([][]string, 0)
	for i := 0; i < 40; i++ {
		date := fmt.Sprintf("2025-%02d-%02d", i%12+1, i%27+1)
		rows = append(rows, []string{date, fmt.Sprintf("%d.25", 1000+i*37), "V"})
	}
	view := newView(t, temporalColumns, rows...)

	finding, err := NewTemporalDetector().Run(context.Background(), view)
	require.NoError(t, err)

	sum := 0.0
	for _, v := range finding.(*TemporalFinding).FiscalCliff.MonthlyTotals {
		sum += v
	}
	assert.InDelta(t, view.TotalAmount().InexactFloat64(), sum, 1e-6)
}

// -- Velocity tests --

func repeat(entity, day string, n int) ([]string, []string) {
	entities := make([]string, n)
	days := make([]string, n)
	for i := range entities {
		entities[i] = entity
		days[i] = day
	}
	return entities, days
}

func TestVelocity_ThresholdAndOrdering(t *testing.T) {
	var entities, days []string
	for _, group := range []struct {
		entity, day string
		n           int
	}{
		{"C", "2025-03-01", 6},
		{"B", "2025-03-01", 5},
		{"A", "2025-03-02", 6},
		{"A", "2025-03-01", 6},
		{"D", "2025-03-01", 9},
	} {
		e, d := repeat(group.entity, group.day, group.n)
		entities = append(entities, e...)
		days = append(days, d...)
	}

	result := Velocity(entities, days)

	assert.Equal(t, []VelocityEvent{
		{Entity: "D", Date: "2025-03-01", Count: 9},
		{Entity: "A", Date: "2025-03-01", Count: 6},
		{Entity: "A", Date: "2025-03-02", Count: 6},
		{Entity: "C", Date: "2025-03-01", Count: 6},
	}, result.HighVelocity)
}

func TestVelocity_TopTen(t *testing.T) {
	var entities, days []string
	for i := 0; i < 12; i++ {
		e, d := repeat(fmt.Sprintf("E%02d", i), "2025-01-01", 6)
		entities = append(entities, e...)
		days = append(days, d...)
	}

	result := Velocity(entities, days)

	require.Len(t, result.HighVelocity, velocityTopN)
	assert.Equal(t, "E00", result.HighVelocity[0].Entity)
	assert.Equal(t, "E09", result.HighVelocity[9].Entity)
}

func TestVelocity_SameDayDifferentTimes(t *testing.T) {
	view := newView(t, temporalColumns,
		[]string{"2025-05-05T01:00:00Z", "1", "X"},
		[]string{"2025-05-05T02:00:00Z", "1", "X"},
		[]string{"2025-05-05 03:00:00", "1", "X"},
		[]string{"2025-05-05", "1", "X"},
		[]string{"2025-05-05T23:59:59Z", "1", "X"},
		[]string{"2025-05-05T12:00:00Z", "1", "X"},
	)

	finding, err := NewTemporalDetector().Run(context.Background(), view)
	require.NoError(t, err)

	events := finding.(*TemporalFinding).Velocity.HighVelocity
	require.Len(t, events, 1)
	assert.Equal(t, VelocityEvent{Entity: "X", Date: "2025-05-05", Count: 6}, events[0])
}

// -- TemporalDetector tests --

func TestTemporalDetector_InvalidTimestamp(t *testing.T) {
	view := newView(t, temporalColumns, []string{"not a date", "10", "A"})

	_, err := NewTemporalDetector().Run(context.Background(), view)

	require.Error(t, err)
	assert.Equal(t, ledger.KindInvalidTimestamp, ledger.KindOf(err))
}

func TestTemporalDetector_MissingDateColumn(t *testing.T) {
	view := newView(t, []string{"amount", "vendor_id"}, []string{"10", "A"})

	_, err := NewTemporalDetector().Run(context.Background(), view)

	require.Error(t, err)
	assert.Equal(t, ledger.KindMissingColumn, ledger.KindOf(err))
}

func TestTemporalDetector_EmptyLedger(t *testing.T) {
	view := newView(t, temporalColumns)

	finding, err := NewTemporalDetector().Run(context.Background(), view)
	require.NoError(t, err)

	tf := finding.(*TemporalFinding)
	assert.Equal(t, NameTemporal, tf.DetectorName())
	assert.Equal(t, CliffNormal, tf.FiscalCliff.Status)
	assert.Empty(t, tf.FiscalCliff.MonthlyTotals)
	assert.Empty(t, tf.Velocity.HighVelocity)
}
