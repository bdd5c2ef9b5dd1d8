package service

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/carson-networks/ledger-forensics/internal/engine"
	"github.com/carson-networks/ledger-forensics/internal/ingest"
	"github.com/carson-networks/ledger-forensics/internal/ledger"
	"github.com/carson-networks/ledger-forensics/internal/logging"
	"github.com/carson-networks/ledger-forensics/internal/metrics"
	"github.com/carson-networks/ledger-forensics/internal/report"
	"github.com/carson-networks/ledger-forensics/internal/storage"
)

// ErrPostgresNotConfigured is returned when a postgres source is requested
// without a database.
var ErrPostgresNotConfigured = errors.New("postgres source is not configured")

// ReportPublisher receives every completed report. *eventbus.Publisher
// implements it.
type ReportPublisher interface {
	PublishReport(source string, rep *report.Report) (string, error)
}

// Options tune one analysis.
type Options struct {
	// Mapping binds roles to columns; nil uses ledger.DefaultMapping.
	Mapping ledger.Mapping
	// Currency overrides the engine currency when set.
	Currency string
}

// AnalysisService loads ledgers, runs the engine and publishes the result.
type AnalysisService struct {
	engine     *engine.Engine
	storage    *storage.Storage
	publisher  ReportPublisher
	openSQLite func(path string) (*storage.Storage, error)
}

// NewAnalysisService creates a new AnalysisService. store backs the
// postgres source and may be nil.
func NewAnalysisService(eng *engine.Engine, store *storage.Storage) *AnalysisService {
	return &AnalysisService{
		engine:     eng,
		storage:    store,
		openSQLite: storage.NewSQLiteStorage,
	}
}

// SetPublisher makes the service publish every report to p.
func (s *AnalysisService) SetPublisher(p ReportPublisher) {
	s.publisher = p
}

// Engine returns the engine reports are produced with.
func (s *AnalysisService) Engine() *engine.Engine {
	return s.engine
}

// Load reads the raw ledger described by src.
func (s *AnalysisService) Load(ctx context.Context, src Source) (*ledger.Table, error) {
	if src.needsPath() && src.Path == "" {
		return nil, fmt.Errorf("%s source needs an input path", src.Type)
	}

	endTimer := logging.GetLogData(ctx).AddTiming("load")
	defer endTimer()

	switch src.Type {
	case SourceCSV:
		return ingest.LoadCSVFile(src.Path)
	case SourceJSON:
		return ingest.LoadJSONFile(src.Path)
	case SourceSample:
		rows := src.SampleRows
		if rows <= 0 {
			rows = ingest.DefaultSampleRows
		}
		return ingest.Sample(rows, src.Seed), nil
	case SourceSQLite:
		return s.loadSQLite(ctx, src.Path)
	case SourcePostgres:
		if s.storage == nil {
			return nil, ErrPostgresNotConfigured
		}
		return s.storage.Transactions.LoadTable(ctx)
	default:
		return nil, fmt.Errorf("unknown source type %q", src.Type)
	}
}

func (s *AnalysisService) loadSQLite(ctx context.Context, path string) (*ledger.Table, error) {
	// opening a missing file would silently create an empty database
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	db, err := s.openSQLite(path)
	if err != nil {
		return nil, err
	}
	defer db.Close()
	return db.Transactions.LoadTable(ctx)
}

// Analyze builds the view over table and runs every detector. The error is
// non-nil only when the mapping is unusable; detector errors are reported
// as failures inside the report.
func (s *AnalysisService) Analyze(ctx context.Context, source SourceType, table *ledger.Table, opts Options) (*report.Report, error) {
	mapping := opts.Mapping
	if mapping == nil {
		mapping = ledger.DefaultMapping()
	}
	if err := mapping.Validate(); err != nil {
		return nil, err
	}

	logData := logging.GetLogData(ctx)
	logData.AddData("source", string(source))

	view := ledger.NewView(table, mapping)
	rep := s.engine.Run(ctx, view)
	if opts.Currency != "" {
		rep.Metadata.Currency = opts.Currency
	}
	metrics.AnalysesTotal.WithLabelValues(string(source)).Inc()

	if s.publisher != nil {
		id, err := s.publisher.PublishReport(string(source), rep)
		if err != nil {
			logrus.WithError(err).Warn("AnalysisService.Analyze.Publish")
		} else {
			logData.AddData("event_id", id)
		}
	}

	return rep, nil
}

// AnalyzeSource loads src and analyses it.
func (s *AnalysisService) AnalyzeSource(ctx context.Context, src Source, opts Options) (*report.Report, error) {
	table, err := s.Load(ctx, src)
	if err != nil {
		return nil, err
	}
	return s.Analyze(ctx, src.Type, table, opts)
}
