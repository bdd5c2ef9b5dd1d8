package ledger

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DayLayout formats calendar-day keys.
const DayLayout = "2006-01-02"

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05 -0700 MST",
	DayLayout,
	"2006/01/02",
}

// View is the read-only, precomputed projection of a Table through a
// Mapping. It is built once per run and shared by every detector; nothing
// in it is mutated after NewView returns.
type View struct {
	rows    int
	mapping Mapping
	columns map[Role][]string

	amounts    []decimal.Decimal
	amountsF   []float64
	amountErr  error
	total      decimal.Decimal
	timestamps []time.Time
	months     []int
	days       []string
	timeErr    error
}

// NewView resolves every mapped role against table and parses the derived
// columns (amounts, timestamps, month and day keys). Roles whose column is
// absent are remembered and reported by Require.
func NewView(table *Table, mapping Mapping) *View {
	v := &View{
		rows:    table.Len(),
		mapping: mapping,
		columns: make(map[Role][]string),
		total:   decimal.Zero,
	}

	for _, role := range Roles {
		name, ok := mapping[role]
		if !ok || name == "" {
			continue
		}
		idx := table.ColumnIndex(name)
		if idx < 0 {
			continue
		}
		col := make([]string, v.rows)
		for i, row := range table.Rows {
			if idx < len(row) {
				col[i] = row[idx]
			}
		}
		v.columns[role] = col
	}

	v.parseAmounts()
	v.parseTimestamps()

	return v
}

func (v *View) parseAmounts() {
	raw, ok := v.columns[RoleAmount]
	if !ok {
		return
	}
	v.amounts = make([]decimal.Decimal, len(raw))
	v.amountsF = make([]float64, len(raw))
	for i, cell := range raw {
		d, err := ParseAmount(cell)
		if err != nil {
			if v.amountErr == nil {
				v.amountErr = newError(KindInvalidAmount, RoleAmount, v.mapping[RoleAmount], i, err.Error())
			}
			continue
		}
		v.amounts[i] = d
		v.amountsF[i] = d.InexactFloat64()
		v.total = v.total.Add(d)
	}
}

func (v *View) parseTimestamps() {
	raw, ok := v.columns[RoleDate]
	if !ok {
		return
	}
	v.timestamps = make([]time.Time, len(raw))
	v.months = make([]int, len(raw))
	v.days = make([]string, len(raw))
	for i, cell := range raw {
		ts, err := ParseTimestamp(cell)
		if err != nil {
			if v.timeErr == nil {
				v.timeErr = newError(KindInvalidTimestamp, RoleDate, v.mapping[RoleDate], i, err.Error())
			}
			continue
		}
		v.timestamps[i] = ts
		v.months[i] = int(ts.Month())
		v.days[i] = ts.Format(DayLayout)
	}
}

// ParseAmount parses one amount cell. Blank, non-numeric and NaN cells are
// rejected.
func ParseAmount(cell string) (decimal.Decimal, error) {
	s := strings.TrimSpace(cell)
	if s == "" {
		return decimal.Zero, fmt.Errorf("empty amount")
	}
	if strings.EqualFold(s, "nan") || strings.EqualFold(s, "inf") || strings.EqualFold(s, "-inf") {
		return decimal.Zero, fmt.Errorf("non-finite amount %q", s)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("non-numeric amount %q", s)
	}
	if f := d.InexactFloat64(); math.IsInf(f, 0) || math.IsNaN(f) {
		return decimal.Zero, fmt.Errorf("amount %q out of range", s)
	}
	return d, nil
}

// ParseTimestamp accepts RFC3339 and the common date/datetime layouts of
// spreadsheet and database exports.
func ParseTimestamp(cell string) (time.Time, error) {
	s := strings.TrimSpace(cell)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised timestamp %q", s)
}

// Len returns the number of rows.
func (v *View) Len() int {
	return v.rows
}

// Mapping returns the mapping the view was built with.
func (v *View) Mapping() Mapping {
	return v.mapping
}

// Has reports whether role resolved to a column.
func (v *View) Has(role Role) bool {
	_, ok := v.columns[role]
	return ok
}

// Require fails with a MissingColumn error for the first role that did not
// resolve to a column.
func (v *View) Require(roles ...Role) error {
	for _, role := range roles {
		if v.Has(role) {
			continue
		}
		column := v.mapping[role]
		detail := "role not mapped"
		if column != "" {
			detail = "column not present in ledger"
		}
		return newError(KindMissingColumn, role, column, -1, detail)
	}
	return nil
}

// Column returns the raw cells for role. The slice is shared; callers must
// not modify it.
func (v *View) Column(role Role) ([]string, error) {
	if err := v.Require(role); err != nil {
		return nil, err
	}
	return v.columns[role], nil
}

// Amounts returns the amount column as float64. It fails with
// InvalidAmount when any cell did not parse.
func (v *View) Amounts() ([]float64, error) {
	if err := v.Require(RoleAmount); err != nil {
		return nil, err
	}
	if v.amountErr != nil {
		return nil, v.amountErr
	}
	return v.amountsF, nil
}

// DecimalAmounts returns the exact amount column.
func (v *View) DecimalAmounts() ([]decimal.Decimal, error) {
	if err := v.Require(RoleAmount); err != nil {
		return nil, err
	}
	if v.amountErr != nil {
		return nil, v.amountErr
	}
	return v.amounts, nil
}

// Timestamps returns the parsed date column.
func (v *View) Timestamps() ([]time.Time, error) {
	if err := v.Require(RoleDate); err != nil {
		return nil, err
	}
	if v.timeErr != nil {
		return nil, v.timeErr
	}
	return v.timestamps, nil
}

// Months returns the calendar month (1-12) of every row.
func (v *View) Months() ([]int, error) {
	if _, err := v.Timestamps(); err != nil {
		return nil, err
	}
	return v.months, nil
}

// Days returns the calendar day key (YYYY-MM-DD) of every row.
func (v *View) Days() ([]string, error) {
	if _, err := v.Timestamps(); err != nil {
		return nil, err
	}
	return v.days, nil
}

// TotalAmount sums every amount that parsed. It is run metadata and does
// not fail on bad cells.
func (v *View) TotalAmount() decimal.Decimal {
	return v.total
}
