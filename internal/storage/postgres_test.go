package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/carson-networks/ledger-forensics/internal/config"
	"github.com/carson-networks/ledger-forensics/internal/ingest"
	"github.com/carson-networks/ledger-forensics/internal/ledger"
)

// newPostgres starts a throwaway Postgres and returns migrated storage.
func newPostgres(t *testing.T) *Storage {
	t.Helper()
	if testing.Short() {
		t.Skip("postgres container tests are skipped in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	ctr, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("forensics"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("testpassword"),
		tcpostgres.BasicWaitStrategies(),
	)
	testcontainers.CleanupContainer(t, ctr)
	require.NoError(t, err)

	host, err := ctr.Host(ctx)
	require.NoError(t, err)
	port, err := ctr.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	s, err := NewStorage(&config.Config{
		PostgresAddress:  host,
		PostgresPort:     port.Port(),
		PostgresDB:       "forensics",
		PostgresUsername: "postgres",
		PostgresPassword: "testpassword",
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	_, post, err := s.Migrate()
	require.NoError(t, err)
	require.Equal(t, uint(1), post)
	return s
}

func TestPostgres_InsertThenLoad(t *testing.T) {
	s := newPostgres(t)
	ctx := context.Background()
	view := ledger.NewView(ingest.Sample(30, 5), ledger.DefaultMapping())

	w, err := s.Write(ctx)
	require.NoError(t, err)
	n, err := w.Transactions.Insert(ctx, view)
	require.NoError(t, err)
	require.NoError(t, w.Commit())
	assert.Equal(t, 30, n)

	table, err := s.Transactions.LoadTable(ctx)
	require.NoError(t, err)
	loaded := ledger.NewView(table, ledger.DefaultMapping())
	assert.Equal(t, 30, loaded.Len())
	assert.True(t, loaded.TotalAmount().Equal(view.TotalAmount()))

	timestamps, err := loaded.Timestamps()
	require.NoError(t, err)
	for i := 1; i < len(timestamps); i++ {
		assert.False(t, timestamps[i].Before(timestamps[i-1]))
	}
}
