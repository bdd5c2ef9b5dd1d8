package analysis

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/carson-networks/ledger-forensics/internal/ingest"
	"github.com/carson-networks/ledger-forensics/internal/ledger"
	"github.com/carson-networks/ledger-forensics/internal/operator/actions"
	"github.com/carson-networks/ledger-forensics/internal/report"
	"github.com/carson-networks/ledger-forensics/internal/service"
)

// CreateAnalysisBody is the request body for analysing a ledger.
type CreateAnalysisBody struct {
	Currency string `json:"currency,omitempty" maxLength:"8" doc:"Currency reported in metadata, defaults to the server currency"`
	LedgerBody
}

// CreateAnalysisInput is the Huma input for analysing a ledger.
type CreateAnalysisInput struct {
	Body CreateAnalysisBody
}

// CreateAnalysisOutput is the Huma output for analysing a ledger.
type CreateAnalysisOutput struct {
	Body *report.Report
}

// CreateAnalysisHandler handles POST /v1/analysis.
type CreateAnalysisHandler struct {
	Operator processor
	Analyzer actions.Analyzer
}

// NewCreateAnalysisHandler creates a new CreateAnalysisHandler.
func NewCreateAnalysisHandler(op processor, analyzer actions.Analyzer) *CreateAnalysisHandler {
	return &CreateAnalysisHandler{Operator: op, Analyzer: analyzer}
}

// Register registers the analysis endpoint with the Huma API.
func (h *CreateAnalysisHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "create-analysis",
		Method:      http.MethodPost,
		Path:        "/v1/analysis",
		Summary:     "Analyse ledger",
		Description: "Runs every detector over the submitted ledger and returns the report. Detector failures are reported inside the report, not as HTTP errors.",
		Tags:        []string{"Analysis"},
	}, h.handle)
}

func parseLedgerBody(body LedgerBody) (*ledger.Table, ledger.Mapping, error) {
	mapping, err := ledger.ParseMapping(body.Mapping)
	if err != nil {
		return nil, nil, huma.Error400BadRequest("invalid mapping", err)
	}
	table, err := ingest.FromRecords(body.Transactions)
	if err != nil {
		return nil, nil, huma.Error400BadRequest("invalid transactions", err)
	}
	return table, mapping, nil
}

func (h *CreateAnalysisHandler) handle(ctx context.Context, input *CreateAnalysisInput) (*CreateAnalysisOutput, error) {
	table, mapping, err := parseLedgerBody(input.Body.LedgerBody)
	if err != nil {
		return nil, err
	}

	action := &actions.AnalyzeLedger{
		Analyzer: h.Analyzer,
		Source:   service.SourceRequest,
		Table:    table,
		Options: service.Options{
			Mapping:  mapping,
			Currency: input.Body.Currency,
		},
	}

	if err := h.Operator.Process(ctx, action); err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return nil, huma.Error503ServiceUnavailable("analysis did not finish in time", err)
		}
		return nil, huma.NewError(http.StatusInternalServerError, "failed to analyse ledger", err)
	}

	return &CreateAnalysisOutput{Body: action.Report}, nil
}
