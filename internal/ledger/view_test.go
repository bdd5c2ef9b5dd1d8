package ledger

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTable() *Table {
	return &Table{
		Columns: []string{"transaction_id", "date", "amount", "vendor_id", "vendor_name", "sender_id", "receiver_id"},
		Rows: [][]string{
			{"1", "2025-01-05", "100.50", "V1", "PT. Maju Jaya", "T", "V1"},
			{"2", "2025-12-28T10:00:00Z", "2000", "V2", "CV. Sumber", "T", "V2"},
			{"3", "2025-12-28 11:30:00", "-5", "V1", "PT. Maju Jaya", "V1", "T"},
		},
	}
}

func TestNewView_ResolvesDefaultMapping(t *testing.T) {
	v := NewView(sampleTable(), DefaultMapping())

	assert.Equal(t, 3, v.Len())
	for _, role := range Roles {
		assert.True(t, v.Has(role), "role %s", role)
	}

	amounts, err := v.Amounts()
	require.NoError(t, err)
	assert.Equal(t, []float64{100.5, 2000, -5}, amounts)
	assert.True(t, v.TotalAmount().Equal(decimal.RequireFromString("2095.50")))

	months, err := v.Months()
	require.NoError(t, err)
	assert.Equal(t, []int{1, 12, 12}, months)

	days, err := v.Days()
	require.NoError(t, err)
	assert.Equal(t, []string{"2025-01-05", "2025-12-28", "2025-12-28"}, days)
}

func TestView_RequireMissingColumn(t *testing.T) {
	table := &Table{Columns: []string{"amount"}, Rows: [][]string{{"1"}}}
	v := NewView(table, DefaultMapping())

	err := v.Require(RoleAmount, RoleSender)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingColumn))
	assert.Equal(t, KindMissingColumn, KindOf(err))

	var lerr *Error
	require.True(t, errors.As(err, &lerr))
	assert.Equal(t, RoleSender, lerr.Role)
	assert.Equal(t, "sender_id", lerr.Column)
}

func TestView_InvalidAmountFailsFast(t *testing.T) {
	table := &Table{Columns: []string{"amount"}, Rows: [][]string{{"10"}, {"abc"}, {"NaN"}}}
	v := NewView(table, DefaultMapping())

	_, err := v.Amounts()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidAmount))

	var lerr *Error
	require.True(t, errors.As(err, &lerr))
	assert.Equal(t, 1, lerr.Row)

	assert.True(t, v.TotalAmount().Equal(decimal.NewFromInt(10)))
}

func TestView_InvalidTimestamp(t *testing.T) {
	table := &Table{Columns: []string{"date"}, Rows: [][]string{{"yesterday"}}}
	v := NewView(table, DefaultMapping())

	_, err := v.Days()
	assert.True(t, errors.Is(err, ErrInvalidTimestamp))
}

func TestView_EmptyTable(t *testing.T) {
	v := NewView(&Table{Columns: []string{"amount", "date"}}, DefaultMapping())

	amounts, err := v.Amounts()
	require.NoError(t, err)
	assert.Empty(t, amounts)
	assert.True(t, v.TotalAmount().IsZero())
}

func TestParseAmount(t *testing.T) {
	d, err := ParseAmount(" 1.5e3 ")
	require.NoError(t, err)
	assert.True(t, d.Equal(decimal.NewFromInt(1500)))

	for _, bad := range []string{"", "nan", "Inf", "12,5", "x"} {
		_, err := ParseAmount(bad)
		assert.Error(t, err, bad)
	}
}

func TestFromTransactions_RoundTripsThroughView(t *testing.T) {
	ts := time.Date(2025, 12, 1, 9, 0, 0, 0, time.UTC)
	table := FromTransactions([]Transaction{{
		ID:         "tx-1",
		Timestamp:  ts,
		Amount:     decimal.RequireFromString("12.34"),
		EntityID:   "V9",
		EntityName: "Dinas Kesehatan",
		SenderID:   "Treasury",
		ReceiverID: "V9",
	}}, DefaultMapping())

	v := NewView(table, DefaultMapping())
	stamps, err := v.Timestamps()
	require.NoError(t, err)
	assert.True(t, stamps[0].Equal(ts))

	names, err := v.Column(RoleName)
	require.NoError(t, err)
	assert.Equal(t, []string{"Dinas Kesehatan"}, names)
}

func TestMapping_WithOverridesAndValidate(t *testing.T) {
	m := DefaultMapping().WithOverrides(map[Role]string{RoleAmount: "nilai", RoleName: ""})
	assert.Equal(t, "nilai", m[RoleAmount])
	assert.Equal(t, "vendor_name", m[RoleName])
	assert.NoError(t, m.Validate())

	m[Role("colour")] = "x"
	assert.Error(t, m.Validate())
}

func TestParseMapping(t *testing.T) {
	m, err := ParseMapping(map[string]string{"entity": "kode_vendor"})
	require.NoError(t, err)
	assert.Equal(t, "kode_vendor", m[RoleEntity])
	assert.Equal(t, "date", m[RoleDate])

	_, err = ParseMapping(map[string]string{"colour": "c"})
	assert.Error(t, err)
}
