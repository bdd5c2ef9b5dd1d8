package ledger

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/carson-networks/ledger-forensics/internal/ingest"
	domain "github.com/carson-networks/ledger-forensics/internal/ledger"
	"github.com/carson-networks/ledger-forensics/internal/operator"
	"github.com/carson-networks/ledger-forensics/internal/operator/actions"
)

// processor queues actions; *operator.OperatorDelegator implements it.
type processor interface {
	Process(ctx context.Context, action actions.IAction) error
}

// ImportLedgerBody is the request body for importing ledger rows.
type ImportLedgerBody struct {
	Mapping      map[string]string `json:"mapping,omitempty" doc:"Role to column name overrides (id, date, amount, entity, sender, receiver, name)"`
	Transactions []map[string]any  `json:"transactions" required:"true" minItems:"1" maxItems:"200000" doc:"Ledger rows as flat JSON objects"`
}

// ImportLedgerInput is the Huma input for importing ledger rows.
type ImportLedgerInput struct {
	Body ImportLedgerBody
}

// ImportLedgerResponse is the response body of an import.
type ImportLedgerResponse struct {
	Written int `json:"written" doc:"Number of rows stored"`
}

// ImportLedgerOutput is the Huma output for importing ledger rows.
type ImportLedgerOutput struct {
	Status int
	Body   ImportLedgerResponse
}

// ImportLedgerHandler handles POST /v1/ledger/import.
type ImportLedgerHandler struct {
	Operator processor
}

// NewImportLedgerHandler creates a new ImportLedgerHandler.
func NewImportLedgerHandler(op processor) *ImportLedgerHandler {
	return &ImportLedgerHandler{Operator: op}
}

// Register registers the import endpoint with the Huma API.
func (h *ImportLedgerHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID:   "import-ledger",
		Method:        http.MethodPost,
		Path:          "/v1/ledger/import",
		Summary:       "Import ledger",
		Description:   "Stores ledger rows in the transactions table read by the postgres source. Dates and amounts must parse; the import is all or nothing.",
		Tags:          []string{"Ledger"},
		DefaultStatus: http.StatusCreated,
	}, h.handle)
}

func (h *ImportLedgerHandler) handle(ctx context.Context, input *ImportLedgerInput) (*ImportLedgerOutput, error) {
	mapping, err := domain.ParseMapping(input.Body.Mapping)
	if err != nil {
		return nil, huma.Error400BadRequest("invalid mapping", err)
	}
	table, err := ingest.FromRecords(input.Body.Transactions)
	if err != nil {
		return nil, huma.Error400BadRequest("invalid transactions", err)
	}

	action := &actions.ImportLedger{Table: table, Mapping: mapping}
	if err := h.Operator.Process(ctx, action); err != nil {
		var lerr *domain.Error
		switch {
		case errors.Is(err, operator.ErrNoStorage):
			return nil, huma.Error503ServiceUnavailable("no ledger storage configured", err)
		case errors.As(err, &lerr):
			return nil, huma.Error422UnprocessableEntity("ledger rows are invalid", err)
		default:
			return nil, huma.NewError(http.StatusInternalServerError, "failed to import ledger", err)
		}
	}

	return &ImportLedgerOutput{
		Status: http.StatusCreated,
		Body:   ImportLedgerResponse{Written: action.Written},
	}, nil
}
