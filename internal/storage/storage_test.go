package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carson-networks/ledger-forensics/internal/ingest"
	"github.com/carson-networks/ledger-forensics/internal/ledger"
)

func newSQLite(t *testing.T) *Storage {
	t.Helper()
	s, err := NewSQLiteStorage(filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	_, post, err := s.Migrate()
	require.NoError(t, err)
	require.Equal(t, uint(1), post)
	return s
}

func TestMigrate_IsIdempotent(t *testing.T) {
	s := newSQLite(t)

	pre, post, err := s.Migrate()

	require.NoError(t, err)
	assert.Equal(t, uint(1), pre)
	assert.Equal(t, uint(1), post)
}

func TestWriter_InsertThenLoad(t *testing.T) {
	s := newSQLite(t)
	ctx := context.Background()
	view := ledger.NewView(ingest.Sample(40, 7), ledger.DefaultMapping())

	w, err := s.Write(ctx)
	require.NoError(t, err)
	n, err := w.Transactions.Insert(ctx, view)
	require.NoError(t, err)
	require.NoError(t, w.Commit())
	assert.Equal(t, 40, n)

	table, err := s.Transactions.LoadTable(ctx)
	require.NoError(t, err)
	require.Equal(t, 40, table.Len())

	loaded := ledger.NewView(table, ledger.DefaultMapping())
	require.NoError(t, loaded.Require(ledger.Roles...))
	assert.True(t, loaded.TotalAmount().Equal(view.TotalAmount()))

	dates, err := loaded.Column(ledger.RoleDate)
	require.NoError(t, err)
	for i := 1; i < len(dates); i++ {
		assert.LessOrEqual(t, dates[i-1], dates[i])
	}
}

func TestWriter_RollbackDiscards(t *testing.T) {
	s := newSQLite(t)
	ctx := context.Background()
	view := ledger.NewView(ingest.Sample(5, 1), ledger.DefaultMapping())

	w, err := s.Write(ctx)
	require.NoError(t, err)
	_, err = w.Transactions.Insert(ctx, view)
	require.NoError(t, err)
	require.NoError(t, w.Rollback())

	table, err := s.Transactions.LoadTable(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, table.Len())
}

func TestInsert_GeneratesMissingIDs(t *testing.T) {
	s := newSQLite(t)
	ctx := context.Background()
	table := &ledger.Table{
		Columns: []string{"date", "amount", "vendor_id"},
		Rows: [][]string{
			{"2025-01-02", "10.50", "V1"},
			{"2025-01-01", "3", "V2"},
		},
	}

	n, err := s.Transactions.Insert(ctx, ledger.NewView(table, ledger.DefaultMapping()))
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	loaded, err := s.Transactions.LoadTable(ctx)
	require.NoError(t, err)
	view := ledger.NewView(loaded, ledger.DefaultMapping())
	ids, err := view.Column(ledger.RoleID)
	require.NoError(t, err)
	assert.NotEmpty(t, ids[0])
	assert.NotEqual(t, ids[0], ids[1])

	entities, err := view.Column(ledger.RoleEntity)
	require.NoError(t, err)
	assert.Equal(t, []string{"V2", "V1"}, entities)
}

func TestInsert_InvalidAmount(t *testing.T) {
	s := newSQLite(t)
	table := &ledger.Table{
		Columns: []string{"date", "amount"},
		Rows:    [][]string{{"2025-01-01", "n/a"}},
	}

	_, err := s.Transactions.Insert(context.Background(), ledger.NewView(table, ledger.DefaultMapping()))

	require.Error(t, err)
	assert.Equal(t, ledger.KindInvalidAmount, ledger.KindOf(err))
}
