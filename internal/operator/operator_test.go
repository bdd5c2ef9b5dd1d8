package operator

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carson-networks/ledger-forensics/internal/ingest"
	"github.com/carson-networks/ledger-forensics/internal/ledger"
	"github.com/carson-networks/ledger-forensics/internal/operator/actions"
	"github.com/carson-networks/ledger-forensics/internal/report"
	"github.com/carson-networks/ledger-forensics/internal/service"
	"github.com/carson-networks/ledger-forensics/internal/storage"
)

// funcAction runs fn without storage.
type funcAction struct {
	fn func(ctx context.Context) error
}

func (f *funcAction) Perform(ctx context.Context, _ *storage.Writer) error { return f.fn(ctx) }
func (f *funcAction) Writes() bool                                         { return false }

type stubAnalyzer struct {
	rep *report.Report
	err error
}

func (s *stubAnalyzer) Analyze(context.Context, service.SourceType, *ledger.Table, service.Options) (*report.Report, error) {
	return s.rep, s.err
}

func newDelegator(t *testing.T, s *storage.Storage, workers int) *OperatorDelegator {
	t.Helper()
	d := NewOperatorDelegator(s, workers)
	d.Start()
	t.Cleanup(d.Stop)
	return d
}

func newSQLite(t *testing.T) *storage.Storage {
	t.Helper()
	s, err := storage.NewSQLiteStorage(filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	_, _, err = s.Migrate()
	require.NoError(t, err)
	return s
}

// -- OperatorDelegator tests --

func TestProcess_ReturnsActionError(t *testing.T) {
	d := newDelegator(t, nil, 1)

	err := d.Process(context.Background(), &funcAction{fn: func(context.Context) error {
		return errors.New("boom")
	}})

	assert.EqualError(t, err, "boom")
}

func TestProcess_BoundsConcurrency(t *testing.T) {
	d := newDelegator(t, nil, 2)

	var running, peak atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := d.Process(context.Background(), &funcAction{fn: func(context.Context) error {
				n := running.Add(1)
				for {
					p := peak.Load()
					if n <= p || peak.CompareAndSwap(p, n) {
						break
					}
				}
				time.Sleep(10 * time.Millisecond)
				running.Add(-1)
				return nil
			}})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.LessOrEqual(t, peak.Load(), int32(2))
	assert.GreaterOrEqual(t, peak.Load(), int32(1))
}

func TestProcess_ContextCancelledWhileWaiting(t *testing.T) {
	d := newDelegator(t, nil, 1)
	release := make(chan struct{})
	started := make(chan struct{})

	go func() {
		_ = d.Process(context.Background(), &funcAction{fn: func(context.Context) error {
			close(started)
			<-release
			return nil
		}})
	}()
	<-started

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	var ran atomic.Bool
	err := d.Process(ctx, &funcAction{fn: func(context.Context) error {
		ran.Store(true)
		return nil
	}})
	close(release)

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	d.Stop()
	assert.False(t, ran.Load())
}

func TestProcess_WritingActionWithoutStorage(t *testing.T) {
	d := newDelegator(t, nil, 1)

	err := d.Process(context.Background(), &actions.ImportLedger{Table: ingest.Sample(3, 1)})

	assert.ErrorIs(t, err, ErrNoStorage)
}

func TestNewOperatorDelegator_AtLeastOneWorker(t *testing.T) {
	d := NewOperatorDelegator(nil, 0)
	assert.Equal(t, 1, d.numWorkers)
}

// -- Action tests --

func TestAnalyzeLedger_SetsReport(t *testing.T) {
	d := newDelegator(t, nil, 1)
	expected := report.New(report.Metadata{TotalRows: 2})
	action := &actions.AnalyzeLedger{
		Analyzer: &stubAnalyzer{rep: expected},
		Source:   service.SourceRequest,
		Table:    &ledger.Table{},
	}

	require.NoError(t, d.Process(context.Background(), action))

	assert.Same(t, expected, action.Report)
}

func TestAnalyzeLedger_Error(t *testing.T) {
	d := newDelegator(t, nil, 1)
	action := &actions.AnalyzeLedger{Analyzer: &stubAnalyzer{err: errors.New("mapping: unknown roles [x]")}}

	err := d.Process(context.Background(), action)

	assert.Error(t, err)
	assert.Nil(t, action.Report)
}

func TestImportLedger_Commits(t *testing.T) {
	s := newSQLite(t)
	d := newDelegator(t, s, 1)
	action := &actions.ImportLedger{Table: ingest.Sample(25, 9)}

	require.NoError(t, d.Process(context.Background(), action))
	assert.Equal(t, 25, action.Written)

	table, err := s.Transactions.LoadTable(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 25, table.Len())
}

func TestImportLedger_RollsBackOnError(t *testing.T) {
	s := newSQLite(t)
	d := newDelegator(t, s, 1)
	table := &ledger.Table{
		Columns: []string{"date", "amount"},
		Rows:    [][]string{{"2025-01-01", "1"}, {"2025-01-02", "bad"}},
	}

	err := d.Process(context.Background(), &actions.ImportLedger{Table: table})

	require.Error(t, err)
	assert.Equal(t, ledger.KindInvalidAmount, ledger.KindOf(err))
	loaded, err := s.Transactions.LoadTable(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, loaded.Len())
}
