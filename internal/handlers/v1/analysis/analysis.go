package analysis

import (
	"context"

	"github.com/carson-networks/ledger-forensics/internal/operator/actions"
)

// processor queues actions; *operator.OperatorDelegator implements it.
type processor interface {
	Process(ctx context.Context, action actions.IAction) error
}

// LedgerBody is the ledger part of a request body.
type LedgerBody struct {
	Mapping      map[string]string `json:"mapping,omitempty" doc:"Role to column name overrides (id, date, amount, entity, sender, receiver, name)"`
	Transactions []map[string]any  `json:"transactions" required:"true" maxItems:"200000" doc:"Ledger rows as flat JSON objects"`
}
