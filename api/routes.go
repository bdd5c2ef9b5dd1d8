package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humago"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/carson-networks/ledger-forensics/internal/handlers/v1/analysis"
	"github.com/carson-networks/ledger-forensics/internal/handlers/v1/ledger"
	"github.com/carson-networks/ledger-forensics/internal/handlers/v1/status"
	"github.com/carson-networks/ledger-forensics/internal/logging"
	"github.com/carson-networks/ledger-forensics/internal/operator"
	"github.com/carson-networks/ledger-forensics/internal/service"
)

const shutdownGrace = 10 * time.Second

type Rest struct {
	Logger   *logrus.Logger
	Port     string
	Service  *service.Service
	Operator *operator.OperatorDelegator
	// WriteTimeout bounds a whole request, analysis included.
	WriteTimeout time.Duration
}

// Handler builds the HTTP routes.
func (r *Rest) Handler() http.Handler {
	mux := http.NewServeMux()

	eng := r.Service.Analysis.Engine()
	statusHandler := status.NewHandler(eng)
	mux.HandleFunc("/status", logging.LoggingWrapper("Status", r.Logger, statusHandler.Handler))
	mux.Handle("/metrics", promhttp.Handler())

	api := humago.New(mux, huma.DefaultConfig("Ledger Forensics API", "1.0.0"))
	api.UseMiddleware(r.logMiddleware)

	analysis.NewCreateAnalysisHandler(r.Operator, r.Service.Analysis).Register(api)
	analysis.NewExplainHandler(eng).Register(api)
	ledger.NewImportLedgerHandler(r.Operator).Register(api)

	return mux
}

// logMiddleware gives every huma request its own LogData, flushed once the
// handler returns.
func (r *Rest) logMiddleware(ctx huma.Context, next func(huma.Context)) {
	name := ctx.Operation().OperationID
	logData := logging.NewLogData(r.Logger)
	logData.AddData("method", ctx.Method())
	logData.AddData("path", ctx.URL().Path)

	r.Logger.Debugf("Handler.%v.Start", name)
	endTimer := logData.AddTiming("duration")
	next(huma.WithContext(ctx, logging.WithLogData(ctx.Context(), logData)))
	endTimer()

	logData.AddData("status", ctx.Status())
	logData.Log().Infof("Handler.%v.Complete", name)
}

// Serve listens until ctx is done, then shuts down gracefully.
func (r *Rest) Serve(ctx context.Context) error {
	writeTimeout := r.WriteTimeout
	if writeTimeout <= 0 {
		writeTimeout = time.Duration(30) * time.Second
	}

	server := http.Server{
		Addr:              ":" + r.Port,
		Handler:           r.Handler(),
		ReadTimeout:       time.Duration(30) * time.Second,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       time.Duration(10) * time.Second,
		ReadHeaderTimeout: time.Duration(10) * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			r.Logger.WithError(err).Error("HttpServer.Serve.shutdown error")
		}
	}()

	r.Logger.WithField("port", r.Port).Info("HttpServer.Serve.listening")
	err := server.ListenAndServe()
	r.Logger.Info("HttpServer.Serve.shutting down")
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		r.Logger.WithError(err).Error("HttpServer.Serve.listen error")
		return err
	}
	return nil
}
