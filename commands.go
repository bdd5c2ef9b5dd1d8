package main

import (
	"fmt"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/carson-networks/ledger-forensics/api"
	"github.com/carson-networks/ledger-forensics/internal/config"
	"github.com/carson-networks/ledger-forensics/internal/detector"
	"github.com/carson-networks/ledger-forensics/internal/engine"
	"github.com/carson-networks/ledger-forensics/internal/eventbus"
	"github.com/carson-networks/ledger-forensics/internal/ingest"
	"github.com/carson-networks/ledger-forensics/internal/ledger"
	"github.com/carson-networks/ledger-forensics/internal/logging"
	"github.com/carson-networks/ledger-forensics/internal/operator"
	"github.com/carson-networks/ledger-forensics/internal/operator/actions"
	"github.com/carson-networks/ledger-forensics/internal/report"
	"github.com/carson-networks/ledger-forensics/internal/service"
	"github.com/carson-networks/ledger-forensics/internal/storage"
)

const defaultOutput = "laporan_fraud.json"

// app carries what Before prepares for every command.
type app struct {
	logger *logrus.Logger
	env    *config.Config
}

var columnFlags = map[ledger.Role]string{
	ledger.RoleID:       "col-id",
	ledger.RoleDate:     "col-date",
	ledger.RoleAmount:   "col-amount",
	ledger.RoleEntity:   "col-entity",
	ledger.RoleSender:   "col-sender",
	ledger.RoleReceiver: "col-receiver",
	ledger.RoleName:     "col-name",
}

func newApp() *cli.App {
	a := &app{}

	sourceFlags := []cli.Flag{
		&cli.StringFlag{Name: "type", Aliases: []string{"t"}, Value: string(service.SourceSample), Usage: "ledger source: csv, json, sqlite, postgres or sample"},
		&cli.StringFlag{Name: "input", Aliases: []string{"i"}, Usage: "input file for csv, json and sqlite sources"},
		&cli.IntFlag{Name: "sample-rows", Value: ingest.DefaultSampleRows, Usage: "rows generated by the sample source"},
		&cli.Int64Flag{Name: "seed", Usage: "sample generator seed, random when unset"},
	}
	for _, role := range ledger.Roles {
		sourceFlags = append(sourceFlags, &cli.StringFlag{
			Name:  columnFlags[role],
			Usage: fmt.Sprintf("column holding the %s role", role),
		})
	}

	return &cli.App{
		Name:  "ledger-forensics",
		Usage: "forensic anomaly detection over static ledgers",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "debug", Usage: "debug logging and a full report dump"},
		},
		Before: a.before,
		Commands: []*cli.Command{
			{
				Name:  "analyze",
				Usage: "run every detector over a ledger and write the report",
				Flags: append([]cli.Flag{
					&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Value: defaultOutput, Usage: "JSON report path"},
					&cli.StringFlag{Name: "html", Usage: "also write an HTML report to this path"},
					&cli.StringFlag{Name: "currency", Usage: "currency shown in the report metadata"},
				}, sourceFlags...),
				Action: a.analyze,
			},
			{
				Name:  "import",
				Usage: "store a ledger in the transactions table",
				Flags: append([]cli.Flag{
					&cli.StringFlag{Name: "sqlite", Usage: "import into this SQLite file instead of Postgres"},
				}, sourceFlags...),
				Action: a.importLedger,
			},
			{
				Name:  "migrate",
				Usage: "apply the transactions schema",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "sqlite", Usage: "migrate this SQLite file instead of Postgres"},
				},
				Action: a.migrate,
			},
			{
				Name:  "serve",
				Usage: "start the HTTP API",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "port", Usage: "listen port, defaults to FORENSICS_HTTP_PORT"},
				},
				Action: a.serve,
			},
		},
	}
}

func (a *app) before(c *cli.Context) error {
	a.logger = logging.SetupLogging(c.Bool("debug"))

	env, err := config.ProcessEnvironmentVariables()
	if err != nil {
		return fmt.Errorf("config.ProcessEnvironmentVariables: %w", err)
	}
	a.env = env
	return nil
}

// applyFlags folds command flags into the environment config.
func (a *app) applyFlags(c *cli.Context) {
	for role, name := range columnFlags {
		if c.IsSet(name) {
			a.env.ColumnOverrides[role] = c.String(name)
		}
	}
	if c.IsSet("currency") {
		a.env.Currency = c.String("currency")
	}
}

func (a *app) source(c *cli.Context) (service.Source, error) {
	sourceType, err := service.ParseSourceType(c.String("type"))
	if err != nil {
		return service.Source{}, err
	}

	seed := c.Int64("seed")
	if !c.IsSet("seed") {
		seed = time.Now().UnixNano()
	}
	if sourceType == service.SourceSample {
		a.logger.WithFields(logrus.Fields{
			"rows": c.Int("sample-rows"),
			"seed": seed,
		}).Info("Analyze.Sample")
	}

	return service.Source{
		Type:       sourceType,
		Path:       c.String("input"),
		SampleRows: c.Int("sample-rows"),
		Seed:       seed,
	}, nil
}

// newEngine builds the detector set with the configured budgets.
func newEngine(env *config.Config) *engine.Engine {
	network := detector.NewNetworkDetector()
	network.SetMaxCycles(env.MaxCycles)
	network.SetMaxCycleLength(env.MaxCycleLength)

	return engine.New(
		engine.WithDetectors(
			detector.NewStatisticalDetector(),
			detector.NewTemporalDetector(),
			network,
			detector.NewFuzzyNameDetector(),
		),
		engine.WithDetectorTimeout(env.DetectorTimeout),
		engine.WithConcurrency(env.Concurrency),
		engine.WithCurrency(env.Currency),
	)
}

// openStorage opens the SQLite file at path, or Postgres when path is empty.
func (a *app) openStorage(path string) (*storage.Storage, error) {
	if path != "" {
		return storage.NewSQLiteStorage(path)
	}
	return storage.NewStorage(a.env)
}

func (a *app) newAnalysisService(sourceType service.SourceType) (*service.AnalysisService, func(), error) {
	var store *storage.Storage
	cleanup := func() {}
	if sourceType == service.SourcePostgres {
		var err error
		store, err = storage.NewStorage(a.env)
		if err != nil {
			return nil, nil, err
		}
		cleanup = func() { _ = store.Close() }
	}

	svc := service.NewAnalysisService(newEngine(a.env), store)
	if a.env.NatsURL != "" {
		publisher, err := eventbus.NewPublisher(a.env.NatsURL, a.env.NatsSubject)
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("eventbus.NewPublisher: %w", err)
		}
		svc.SetPublisher(publisher)
		prev := cleanup
		cleanup = func() {
			publisher.Close()
			prev()
		}
	}
	return svc, cleanup, nil
}

func (a *app) analyze(c *cli.Context) error {
	a.applyFlags(c)
	src, err := a.source(c)
	if err != nil {
		return err
	}

	svc, cleanup, err := a.newAnalysisService(src.Type)
	if err != nil {
		return err
	}
	defer cleanup()

	logData := logging.NewLogData(a.logger)
	ctx := logging.WithLogData(c.Context, logData)

	rep, err := svc.AnalyzeSource(ctx, src, service.Options{Mapping: a.env.Mapping()})
	if err != nil {
		return err
	}

	output := c.String("output")
	if err := report.Save(output, rep); err != nil {
		return err
	}
	logData.AddData("output", output)
	if path := c.String("html"); path != "" {
		if err := report.SaveHTML(path, rep, time.Now()); err != nil {
			return err
		}
		logData.AddData("html", path)
	}

	if c.Bool("debug") {
		a.logger.Debug(spew.Sdump(rep))
	}
	a.logSummary(rep)
	logData.Log().Info("Analyze.Complete")
	return nil
}

// logSummary logs one line per detector in name order.
func (a *app) logSummary(rep *report.Report) {
	names := make([]string, 0, len(rep.Findings)+len(rep.Failures))
	for name := range rep.Findings {
		names = append(names, name)
	}
	for name := range rep.Failures {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if failure, ok := rep.Failures[name]; ok {
			a.logger.WithFields(logrus.Fields{
				"detector": name,
				"kind":     failure.Kind,
			}).Warn(failure.Message)
			continue
		}
		a.logger.WithField("detector", name).Info("Analyze.Finding")
	}
}

func (a *app) importLedger(c *cli.Context) error {
	a.applyFlags(c)
	src, err := a.source(c)
	if err != nil {
		return err
	}

	if src.Type == service.SourcePostgres {
		return fmt.Errorf("cannot import from the postgres source into itself")
	}
	loader := service.NewAnalysisService(newEngine(a.env), nil)
	table, err := loader.Load(c.Context, src)
	if err != nil {
		return err
	}

	store, err := a.openStorage(c.String("sqlite"))
	if err != nil {
		return err
	}
	defer store.Close()
	if _, _, err := store.Migrate(); err != nil {
		return err
	}

	op := operator.NewOperatorDelegator(store, 1)
	op.Start()
	defer op.Stop()

	action := &actions.ImportLedger{Table: table, Mapping: a.env.Mapping()}
	if err := op.Process(c.Context, action); err != nil {
		return err
	}

	a.logger.WithFields(logrus.Fields{
		"source":  src.Type,
		"dialect": store.Dialect,
		"written": action.Written,
	}).Info("Import.Complete")
	return nil
}

func (a *app) migrate(c *cli.Context) error {
	store, err := a.openStorage(c.String("sqlite"))
	if err != nil {
		return err
	}
	defer store.Close()

	_, _, err = store.Migrate()
	return err
}

func (a *app) serve(c *cli.Context) error {
	port := a.env.HTTPPort
	if c.IsSet("port") {
		port = c.String("port")
	}

	store, err := storage.NewStorage(a.env)
	if err != nil {
		return err
	}
	defer store.Close()

	eng := newEngine(a.env)
	svc := service.NewService(eng, store)
	if a.env.NatsURL != "" {
		publisher, err := eventbus.NewPublisher(a.env.NatsURL, a.env.NatsSubject)
		if err != nil {
			return fmt.Errorf("eventbus.NewPublisher: %w", err)
		}
		defer publisher.Close()
		svc.Analysis.SetPublisher(publisher)
	}

	op := operator.NewOperatorDelegator(store, a.env.Workers)
	op.Start()
	defer op.Stop()

	ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rest := api.Rest{
		Logger:       a.logger,
		Port:         port,
		Service:      svc,
		Operator:     op,
		WriteTimeout: a.env.DetectorTimeout + time.Minute,
	}
	return rest.Serve(ctx)
}
